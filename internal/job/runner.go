package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bsource/dbbackup/internal/config"
	"github.com/bsource/dbbackup/internal/dump"
	"github.com/bsource/dbbackup/internal/notify"
	"github.com/bsource/dbbackup/internal/storage"
)

// Notifications get their own deadline, detached from the run context, so a
// failed or canceled run can still report its outcome.
const notificationTimeout = 10 * time.Second

// Result is the terminal outcome of one run. NotifyErr is recorded for
// observability only: a failed notification never changes Status.
type Result struct {
	Status    string
	Engine    string
	Database  string
	RemoteKey string
	Bytes     int64
	Duration  time.Duration
	Err       error
	NotifyErr error
}

// Runner executes one dump → upload → notify → cleanup cycle per Run call.
// Runs are strictly sequential internally; the scheduler guarantees they are
// never invoked concurrently.
type Runner struct {
	dumper     dump.Dumper
	newStorage func() (storage.Storage, error)
	notifier   notify.Notifier
	log        zerolog.Logger

	database string
	dumpDir  string
	loc      *time.Location

	now func() time.Time
}

// NewRunner wires a Runner from the process configuration. The storage
// backend is constructed fresh on every run so its client lifetime matches
// the job, per the one-client-per-run resource model.
func NewRunner(cfg *config.Config, log zerolog.Logger) (*Runner, error) {
	dumper, err := dump.FromConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	notifier, err := notify.NewEmail(cfg.Email)
	if err != nil {
		return nil, err
	}

	loc, ok := cfg.Location()
	if !ok {
		log.Warn().
			Str("timezone", cfg.Timezone).
			Str("fallback", loc.String()).
			Msg("unknown timezone, using fallback")
	}

	storageCfg := cfg.Storage
	return &Runner{
		dumper:     dumper,
		newStorage: func() (storage.Storage, error) { return storage.FromConfig(storageCfg) },
		notifier:   notifier,
		log:        log,
		database:   cfg.Database.Database,
		dumpDir:    cfg.DumpDir,
		loc:        loc,
		now:        time.Now,
	}, nil
}

// Run executes one backup job. It never returns an error to the caller; a
// failed job is reported through the Result, the notifier and the log, and
// the process keeps scheduling future runs.
func (r *Runner) Run(ctx context.Context) (res Result) {
	started := r.now().In(r.loc)
	res = Result{
		Status:   notify.StatusFailure,
		Engine:   r.dumper.Engine(),
		Database: r.database,
	}

	filename := fmt.Sprintf("backup_%s_%s%s", r.database, started.Format("20060102_150405"), r.dumper.Extension())
	localPath := filepath.Join(r.dumpDir, filename)

	// Cleanup runs on every exit path, even when the tool left a partial
	// file behind.
	defer func() {
		r.removeArtifact(localPath)
		res.Duration = time.Since(started)
		r.logOutcome(res)
	}()

	r.log.Info().
		Str("engine", res.Engine).
		Str("database", r.database).
		Str("file", filename).
		Msg("starting backup")

	dumpRes, err := r.dumper.Dump(ctx, localPath)
	if err != nil {
		res.Err = err
		r.notifyOutcome(ctx, &res, started)
		return res
	}
	res.Bytes = dumpRes.Bytes

	st, err := r.newStorage()
	if err != nil {
		res.Err = err
		r.notifyOutcome(ctx, &res, started)
		return res
	}

	key, err := st.Upload(ctx, storage.UploadRequest{
		LocalPath:     dumpRes.Path,
		Filename:      filename,
		PartitionDate: started,
		Metadata:      r.buildMetadata(started),
	})
	if err != nil {
		res.Err = err
		r.notifyOutcome(ctx, &res, started)
		return res
	}

	res.Status = notify.StatusSuccess
	res.RemoteKey = key
	r.notifyOutcome(ctx, &res, started)
	return res
}

// buildMetadata assembles the audit metadata attached verbatim to the stored
// object. It is not mutated after this point.
func (r *Runner) buildMetadata(started time.Time) map[string]string {
	md := r.dumper.Metadata()
	md["timestamp"] = started.Format(time.RFC3339)
	md["timezone"] = r.loc.String()
	return md
}

// notifyOutcome makes exactly one best-effort delivery attempt. Failures are
// logged and recorded but swallowed: a lost email must never mask a
// successful backup, and a failed backup must still try to reach the
// operator.
func (r *Runner) notifyOutcome(ctx context.Context, res *Result, started time.Time) {
	payload := notify.Payload{
		Status:    res.Status,
		Engine:    res.Engine,
		Database:  res.Database,
		Timestamp: started.Format("02/01/2006 15:04:05"),
		Timezone:  r.loc.String(),
		RemoteKey: res.RemoteKey,
	}
	if res.Err != nil {
		payload.Error = res.Err.Error()
	}

	nctx, cancel := notificationContext(ctx)
	defer cancel()

	if err := r.notifier.Notify(nctx, payload); err != nil {
		res.NotifyErr = err
		r.log.Warn().
			Err(err).
			Str("database", res.Database).
			Str("status", res.Status).
			Msg("notification failed, outcome unchanged")
	}
}

func notificationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), notificationTimeout)
	}
	return context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
}

func (r *Runner) removeArtifact(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := os.Remove(path); err != nil {
		r.log.Warn().Err(err).Str("path", path).Msg("failed to remove local artifact")
		return
	}
	r.log.Info().Str("path", path).Msg("local artifact removed")
}

func (r *Runner) logOutcome(res Result) {
	evt := r.log.Info()
	if res.Err != nil {
		evt = r.log.Error().Err(res.Err)
	}
	evt.
		Str("engine", res.Engine).
		Str("database", res.Database).
		Str("status", res.Status).
		Int64("bytes", res.Bytes).
		Str("remote_key", res.RemoteKey).
		Dur("duration", res.Duration).
		Msg("backup finished")
}
