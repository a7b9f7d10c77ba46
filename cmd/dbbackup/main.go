package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bsource/dbbackup/internal/config"
	"github.com/bsource/dbbackup/internal/dump"
	"github.com/bsource/dbbackup/internal/job"
	"github.com/bsource/dbbackup/internal/logging"
	"github.com/bsource/dbbackup/internal/schedule"
	"github.com/bsource/dbbackup/internal/storage"
)

// shutdownTimeout bounds how long a stop waits for an in-flight backup.
const shutdownTimeout = 5 * time.Minute

func main() {
	app := &cli.App{
		Name:  "dbbackup",
		Usage: "scheduled database backups to object storage",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run backups on the configured cron schedule",
				Action: runDaemon,
			},
			{
				Name:   "backup",
				Usage:  "run a single backup immediately and exit",
				Action: runOnce,
			},
			{
				Name:   "check",
				Usage:  "validate configuration and probe storage connectivity",
				Action: runCheck,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadValidatedConfig is the single fatal gate: a config error here exits
// non-zero before any scheduling starts.
func loadValidatedConfig() (*config.Config, error) {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func runDaemon(c *cli.Context) error {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Seq, cfg.AppEnv)
	log.Info().
		Str("engine", cfg.Database.Type).
		Str("database", cfg.Database.Database).
		Str("storage", cfg.Storage.Type).
		Str("schedule", cfg.CronSchedule).
		Str("timezone", cfg.Timezone).
		Msg("dbbackup starting")

	runner, err := job.NewRunner(cfg, log)
	if err != nil {
		return err
	}

	sched, err := schedule.New(cfg.CronSchedule, log, func() {
		// A failed run is reported by the runner; the daemon keeps going.
		runner.Run(c.Context)
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start(ctx)

	log.Info().Msg("shutdown requested")
	sched.Stop(shutdownTimeout)
	return nil
}

func runOnce(c *cli.Context) error {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Seq, cfg.AppEnv)
	runner, err := job.NewRunner(cfg, log)
	if err != nil {
		return err
	}

	if res := runner.Run(c.Context); res.Err != nil {
		return fmt.Errorf("backup failed: %w", res.Err)
	}
	return nil
}

func runCheck(c *cli.Context) error {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return err
	}

	if _, err := dump.FromConfig(cfg.Database); err != nil {
		return err
	}

	st, err := storage.FromConfig(cfg.Storage)
	if err != nil {
		return err
	}
	if err := st.Check(c.Context); err != nil {
		return fmt.Errorf("storage connectivity check failed: %w", err)
	}

	fmt.Printf("ok: engine=%s storage=%s bucket=%s\n", cfg.Database.Type, cfg.Storage.Type, cfg.Storage.Bucket)
	return nil
}
