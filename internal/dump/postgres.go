package dump

import (
	"context"
	"strconv"

	"github.com/bsource/dbbackup/internal/config"
)

type postgresDumper struct {
	conn config.DatabaseConfig
}

func (d *postgresDumper) Engine() string    { return "postgres" }
func (d *postgresDumper) Extension() string { return ".sql" }

func (d *postgresDumper) Metadata() map[string]string {
	return baseMetadata(d.Engine(), d.conn.Database)
}

// command builds the pg_dump invocation: custom-format archive with blobs.
// The password travels via PGPASSWORD, never as an argument.
func (d *postgresDumper) command(outputPath string) (name string, args []string, env []string) {
	args = []string{
		"-h", d.conn.Host,
		"-p", strconv.Itoa(d.conn.Port),
		"-U", d.conn.User,
		"-F", "c",
		"-b",
		"-v",
		"-f", outputPath,
		d.conn.Database,
	}
	return "pg_dump", args, []string{"PGPASSWORD=" + d.conn.Password}
}

func (d *postgresDumper) Dump(ctx context.Context, outputPath string) (Result, error) {
	name, args, env := d.command(outputPath)
	return runDump(ctx, d.Engine(), name, args, env, outputPath)
}
