package dump

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bsource/dbbackup/internal/config"
)

type mssqlDumper struct {
	conn config.DatabaseConfig
}

func (d *mssqlDumper) Engine() string    { return "mssql" }
func (d *mssqlDumper) Extension() string { return ".bak" }

func (d *mssqlDumper) Metadata() map[string]string {
	return baseMetadata(d.Engine(), d.conn.Database)
}

// command builds the sqlcmd invocation. BACKUP DATABASE is executed by the
// server, which writes the .bak to outputPath; this assumes the server shares
// the local dump volume. SQLCMDPASSWORD keeps the password off the command
// line, and -C trusts the server certificate.
func (d *mssqlDumper) command(outputPath string) (name string, args []string, env []string) {
	query := fmt.Sprintf(
		"BACKUP DATABASE [%s] TO DISK = N'%s' WITH FORMAT, INIT, COMPRESSION, NAME = N'%s-backup'",
		d.conn.Database, outputPath, d.conn.Database,
	)
	args = []string{
		"-S", d.conn.Host + "," + strconv.Itoa(d.conn.Port),
		"-U", d.conn.User,
		"-Q", query,
		"-C",
	}
	return "sqlcmd", args, []string{"SQLCMDPASSWORD=" + d.conn.Password}
}

func (d *mssqlDumper) Dump(ctx context.Context, outputPath string) (Result, error) {
	name, args, env := d.command(outputPath)
	return runDump(ctx, d.Engine(), name, args, env, outputPath)
}
