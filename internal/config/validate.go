package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// SupportedDatabaseTypes lists the accepted DB_TYPE values.
var SupportedDatabaseTypes = []string{"postgres", "mysql", "mariadb", "mssql"}

// SupportedStorageTypes lists the accepted STORAGE_TYPE values.
var SupportedStorageTypes = []string{"r2", "s3"}

// Validate checks that the configuration is complete enough to run backups.
// Any error returned here is fatal: the process must exit before the
// scheduler starts.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	if err := c.Email.validate(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.CronSchedule); err != nil {
		return fmt.Errorf("invalid CRON_SCHEDULE %q: %w", c.CronSchedule, err)
	}
	if c.DumpDir == "" {
		return fmt.Errorf("DUMP_DIR must not be empty")
	}
	return nil
}

func (d DatabaseConfig) validate() error {
	if !contains(SupportedDatabaseTypes, d.Type) {
		return fmt.Errorf("DB_TYPE %q not supported (accepted: %v)", d.Type, SupportedDatabaseTypes)
	}
	if d.Host == "" || d.User == "" || d.Password == "" || d.Database == "" {
		return fmt.Errorf("database configuration incomplete: DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_DATABASE are required")
	}
	if d.Port <= 0 {
		return fmt.Errorf("DB_PORT must be a positive integer, got %d", d.Port)
	}
	return nil
}

func (s StorageConfig) validate() error {
	if !contains(SupportedStorageTypes, s.Type) {
		return fmt.Errorf("STORAGE_TYPE %q not supported (accepted: %v)", s.Type, SupportedStorageTypes)
	}
	if s.AccessKeyID == "" || s.SecretAccessKey == "" || s.Bucket == "" {
		return fmt.Errorf("storage configuration incomplete: STORAGE_ACCESS_KEY_ID, STORAGE_SECRET_ACCESS_KEY and STORAGE_BUCKET_NAME are required")
	}

	switch s.Type {
	case "r2":
		// Region is fixed to "auto" for R2; only the endpoint is mandatory.
		if s.EndpointURL == "" {
			return fmt.Errorf("STORAGE_ENDPOINT_URL is required for Cloudflare R2")
		}
	case "s3":
		if s.Region == "" {
			return fmt.Errorf("STORAGE_REGION is required for AWS S3 (e.g. us-east-1)")
		}
	}
	return nil
}

func (e EmailConfig) validate() error {
	if e.From == "" || e.To == "" || e.SMTPHost == "" {
		return fmt.Errorf("email configuration incomplete: EMAIL_FROM, EMAIL_TO and EMAIL_SMTP are required")
	}
	if e.SMTPPort <= 0 {
		return fmt.Errorf("EMAIL_PORT must be a positive integer, got %d", e.SMTPPort)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
