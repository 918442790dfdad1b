package config

import "time"

// Ticket sources.
const (
	TicketSourceAPI = "api"
	TicketSourceS3  = "s3"
)

// Config holds runtime settings for the Cofit CLI.
//
// Fields:
//   - APIURL / AppType: backend base URL and app flavour ("cofitpro" or other).
//   - DatabasePath: SQLite file holding the session and the media library.
//   - RequestTimeout: per-request timeout of the API HTTP client.
//   - StoreSecret: when set, persisted session values are encrypted.
//   - TicketSource: "api" asks the backend for upload slots, "s3" presigns
//     against the S3* settings directly.
//   - UploadMaxAttempts / UploadBaseDelay: retry policy for ticket and
//     transfer steps. One attempt disables retrying.
type Config struct {
	APIURL            string
	AppType           string
	DatabasePath      string
	RequestTimeout    time.Duration
	LogLevel          string
	LogFormat         string
	StoreSecret       string
	TicketSource      string
	UploadMaxAttempts int
	UploadBaseDelay   time.Duration
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
	S3AccessKey       string
	S3SecretKey       string
	S3PublicBaseURL   string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://127.0.0.1:3000"
	c.AppType = "cofitpro"
	c.DatabasePath = "data/cofit.db"
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.TicketSource = TicketSourceAPI
	c.UploadMaxAttempts = 3
	c.UploadBaseDelay = 500 * time.Millisecond
	c.S3Bucket = "cofit"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
}

// LoadConfig applies defaults, then the JSON file, then the environment, then
// command-line flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
