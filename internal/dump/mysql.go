package dump

import (
	"context"
	"strconv"

	"github.com/bsource/dbbackup/internal/config"
)

// mysqlDumper covers both mysql and mariadb; mysqldump is backwards
// compatible with MariaDB servers, so only the engine tag differs.
type mysqlDumper struct {
	conn   config.DatabaseConfig
	engine string
}

func (d *mysqlDumper) Engine() string    { return d.engine }
func (d *mysqlDumper) Extension() string { return ".sql" }

func (d *mysqlDumper) Metadata() map[string]string {
	return baseMetadata(d.Engine(), d.conn.Database)
}

// command builds the mysqldump invocation. MYSQL_PWD keeps the password out
// of the process list.
func (d *mysqlDumper) command(outputPath string) (name string, args []string, env []string) {
	args = []string{
		"--host=" + d.conn.Host,
		"--port=" + strconv.Itoa(d.conn.Port),
		"--user=" + d.conn.User,
		"--single-transaction",
		"--routines",
		"--triggers",
		"--databases", d.conn.Database,
		"--result-file=" + outputPath,
	}
	return "mysqldump", args, []string{"MYSQL_PWD=" + d.conn.Password}
}

func (d *mysqlDumper) Dump(ctx context.Context, outputPath string) (Result, error) {
	name, args, env := d.command(outputPath)
	return runDump(ctx, d.Engine(), name, args, env, outputPath)
}
