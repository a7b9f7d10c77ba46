package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bsource/dbbackup/internal/config"
)

// New builds the process logger: human-readable console output, plus the Seq
// sink when SEQ_URL is configured. The sink is purely additive; its absence
// or failure only reduces observability.
func New(cfg config.SeqConfig, appEnv string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	var w io.Writer = console
	if cfg.URL != "" {
		w = zerolog.MultiLevelWriter(console, NewSeqWriter(cfg.URL, cfg.APIKey, map[string]string{
			"Application": "BSource.DbBackup",
			"Environment": appEnv,
		}))
	}

	return zerolog.New(w).With().Timestamp().Logger()
}
