package config

import (
	"encoding/json"
	"os"

	"github.com/cofit/cofitcli/internal/flagx"
	"github.com/cofit/cofitcli/internal/timex"
)

// JsonConfig is a DTO used only for JSON unmarshalling. Pointer and zero
// values mean "not set" and leave the current Config value alone.
type JsonConfig struct {
	APIURL            string          `json:"api_url"`
	AppType           string          `json:"app_type"`
	DatabasePath      string          `json:"database_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	LogLevel          string          `json:"log_level"`
	LogFormat         string          `json:"log_format"`
	StoreSecret       string          `json:"store_secret"`
	TicketSource      string          `json:"ticket_source"`
	UploadMaxAttempts *int            `json:"upload_max_attempts"`
	UploadBaseDelay   *timex.Duration `json:"upload_base_delay"`
	S3Bucket          string          `json:"s3_bucket"`
	S3Region          string          `json:"s3_region"`
	S3BaseEndpoint    string          `json:"s3_base_endpoint"`
	S3AccessKey       string          `json:"s3_access_key"`
	S3SecretKey       string          `json:"s3_secret_key"`
	S3PublicBaseURL   string          `json:"s3_public_base_url"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays cfg with the file named by -c/-config, if any. Read and
// decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIURL, jc.APIURL)
	setString(&cfg.AppType, jc.AppType)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.StoreSecret, jc.StoreSecret)
	setString(&cfg.TicketSource, jc.TicketSource)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.UploadMaxAttempts != nil {
		cfg.UploadMaxAttempts = *jc.UploadMaxAttempts
	}
	if jc.UploadBaseDelay != nil {
		cfg.UploadBaseDelay = jc.UploadBaseDelay.Duration
	}
}
