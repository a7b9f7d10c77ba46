package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultTimezone is used when TIMEZONE is unset or cannot be resolved.
const DefaultTimezone = "America/Sao_Paulo"

const (
	defaultCronSchedule      = "0 */12 * * *"
	defaultDestinationFolder = "backups"
)

// Config is the process-wide configuration. It is loaded once at startup and
// treated as immutable for the process lifetime; components receive it
// explicitly instead of reading the environment themselves.
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Email    EmailConfig

	CronSchedule string
	Timezone     string
	DumpDir      string

	Seq    SeqConfig
	AppEnv string
}

type DatabaseConfig struct {
	Type     string
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type StorageConfig struct {
	Type              string
	EndpointURL       string
	AccessKeyID       string
	SecretAccessKey   string
	Bucket            string
	Region            string
	DestinationFolder string
}

type EmailConfig struct {
	From     string
	To       string
	SMTPHost string
	SMTPPort int
	Username string
	Password string
}

// SeqConfig points at an optional structured-log sink. An empty URL disables
// the sink without changing any other behavior.
type SeqConfig struct {
	URL    string
	APIKey string
}

// FromEnv builds a Config from the process environment. It does not validate;
// callers run Validate before using the result.
func FromEnv() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("CRON_SCHEDULE", defaultCronSchedule)
	v.SetDefault("TIMEZONE", DefaultTimezone)
	v.SetDefault("STORAGE_DESTINATION_FOLDER", defaultDestinationFolder)
	v.SetDefault("DUMP_DIR", os.TempDir())
	v.SetDefault("APP_ENV", "Development")

	return &Config{
		Database: DatabaseConfig{
			Type:     strings.ToLower(strings.TrimSpace(v.GetString("DB_TYPE"))),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
		},
		Storage: StorageConfig{
			Type:              strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_TYPE"))),
			EndpointURL:       v.GetString("STORAGE_ENDPOINT_URL"),
			AccessKeyID:       v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey:   v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			Bucket:            v.GetString("STORAGE_BUCKET_NAME"),
			Region:            v.GetString("STORAGE_REGION"),
			DestinationFolder: v.GetString("STORAGE_DESTINATION_FOLDER"),
		},
		Email: EmailConfig{
			From:     v.GetString("EMAIL_FROM"),
			To:       v.GetString("EMAIL_TO"),
			SMTPHost: v.GetString("EMAIL_SMTP"),
			SMTPPort: v.GetInt("EMAIL_PORT"),
			Username: v.GetString("EMAIL_USER"),
			Password: v.GetString("EMAIL_PASSWORD"),
		},
		CronSchedule: v.GetString("CRON_SCHEDULE"),
		Timezone:     v.GetString("TIMEZONE"),
		DumpDir:      v.GetString("DUMP_DIR"),
		Seq: SeqConfig{
			URL:    v.GetString("SEQ_URL"),
			APIKey: v.GetString("SEQ_API_KEY"),
		},
		AppEnv: v.GetString("APP_ENV"),
	}
}

// Location resolves the configured timezone. An unknown name falls back to
// the default instead of failing, so a typo degrades the partition date
// rather than stopping backups; ok reports whether the configured name
// resolved.
func (c *Config) Location() (loc *time.Location, ok bool) {
	loc, err := time.LoadLocation(c.Timezone)
	if err == nil {
		return loc, true
	}
	loc, err = time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC, false
	}
	return loc, false
}
