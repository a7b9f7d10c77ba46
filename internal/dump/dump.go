package dump

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/bsource/dbbackup/internal/config"
)

// stderr excerpts are capped so a chatty tool cannot blow up notification
// payloads or object metadata.
const maxStderrExcerpt = 2048

// Result describes a completed dump. Path is only meaningful when the dump
// succeeded; the caller owns the file and is responsible for deleting it.
type Result struct {
	Path  string
	Bytes int64
}

// Error reports a failed dump: the tool exited non-zero, could not be
// located, or produced an empty artifact.
type Error struct {
	Engine   string
	ExitCode int
	Stderr   string
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s dump failed (exit %d): %s", e.Engine, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s dump failed (exit %d)", e.Engine, e.ExitCode)
}

// Dumper produces a local backup file for one database engine.
type Dumper interface {
	// Engine returns the engine tag (postgres, mysql, mariadb, mssql).
	Engine() string
	// Extension returns the artifact file extension, dot included.
	Extension() string
	// Metadata returns engine-level audit metadata attached to the upload.
	Metadata() map[string]string
	// Dump writes exactly one backup file to outputPath.
	Dump(ctx context.Context, outputPath string) (Result, error)
}

// FromConfig maps the configured engine tag to a Dumper. This is the only
// place engine dispatch happens.
func FromConfig(db config.DatabaseConfig) (Dumper, error) {
	switch db.Type {
	case "postgres":
		return &postgresDumper{conn: db}, nil
	case "mysql", "mariadb":
		// mysqldump handles both engines; the tag only differs in metadata.
		return &mysqlDumper{conn: db, engine: db.Type}, nil
	case "mssql":
		return &mssqlDumper{conn: db}, nil
	default:
		return nil, fmt.Errorf("DB_TYPE %q not supported (accepted: %v)", db.Type, config.SupportedDatabaseTypes)
	}
}

// baseMetadata is shared by every engine variant.
func baseMetadata(engine, database string) map[string]string {
	return map[string]string{
		"uploaded-by": "bsource-db-backup",
		"database":    database,
		"backup-type": engine,
	}
}

// runDump executes the dump command and verifies the artifact. extraEnv
// carries the credential variable so the password never appears on the
// command line.
func runDump(ctx context.Context, engine string, name string, args []string, extraEnv []string, outputPath string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), extraEnv...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Result{}, asDumpError(engine, err, stderr.Bytes())
	}

	return finishDump(engine, outputPath, stderr.Bytes())
}

// finishDump stats the artifact after a zero exit. A missing or empty file
// means the tool produced no data and the run must fail before any upload.
func finishDump(engine, outputPath string, stderr []byte) (Result, error) {
	info, err := os.Stat(outputPath)
	if err != nil {
		return Result{}, &Error{
			Engine:   engine,
			ExitCode: 0,
			Stderr:   fmt.Sprintf("tool exited 0 but produced no file at %s", outputPath),
		}
	}
	if info.Size() == 0 {
		return Result{}, &Error{
			Engine:   engine,
			ExitCode: 0,
			Stderr:   "tool exited 0 but produced an empty file: " + excerpt(stderr),
		}
	}
	return Result{Path: outputPath, Bytes: info.Size()}, nil
}

func asDumpError(engine string, err error, stderr []byte) *Error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Error{Engine: engine, ExitCode: exitErr.ExitCode(), Stderr: excerpt(stderr)}
	}
	// Covers exec.ErrNotFound and start failures; there is no exit code.
	return &Error{Engine: engine, ExitCode: -1, Stderr: err.Error()}
}

func excerpt(stderr []byte) string {
	s := string(bytes.TrimSpace(stderr))
	if len(s) > maxStderrExcerpt {
		s = s[len(s)-maxStderrExcerpt:]
	}
	return s
}
