package config

import "time"

// SheetsConfig - конфигурация выгрузки регистраций в Google Sheets.
type SheetsConfig struct {
	Enabled          bool          `yaml:"enabled" env:"REGISTRATIONS_SHEETS_ENABLED" env-default:"false"`
	SpreadsheetID    string        `yaml:"spreadsheet_id" env:"REGISTRATIONS_SHEETS_SPREADSHEET_ID"`
	CredentialsFile  string        `yaml:"credentials_file" env:"REGISTRATIONS_SHEETS_CREDENTIALS_FILE" env-default:"credentials.json"`
	Range            string        `yaml:"range" env:"REGISTRATIONS_SHEETS_RANGE" env-default:"Registros!A:K"`
	Timeout          time.Duration `yaml:"timeout" env:"REGISTRATIONS_SHEETS_TIMEOUT" env-default:"10s"`
	ErrorThreshold   int           `yaml:"error_threshold" env:"REGISTRATIONS_SHEETS_ERROR_THRESHOLD" env-default:"5"`
	SuccessThreshold int           `yaml:"success_threshold" env:"REGISTRATIONS_SHEETS_SUCCESS_THRESHOLD" env-default:"2"`
	OpenTimeout      time.Duration `yaml:"open_timeout" env:"REGISTRATIONS_SHEETS_OPEN_TIMEOUT" env-default:"30s"`
	RetryAttempts    int           `yaml:"retry_attempts" env:"REGISTRATIONS_SHEETS_RETRY_ATTEMPTS" env-default:"3"`
	RetryBackoff     time.Duration `yaml:"retry_backoff" env:"REGISTRATIONS_SHEETS_RETRY_BACKOFF" env-default:"200ms"`
	ExportDeadline   time.Duration `yaml:"export_deadline" env:"REGISTRATIONS_SHEETS_EXPORT_DEADLINE" env-default:"1m"`
}
