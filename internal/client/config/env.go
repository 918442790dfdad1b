package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cofit/cofitcli/internal/flagx"
	"github.com/joho/godotenv"
)

// lookupEnv is swapped in tests.
var lookupEnv = os.LookupEnv

// loadEnv merges the dotenv file named by -e/-env with the process
// environment. Process variables win, as with godotenv.Load.
func loadEnv() map[string]string {
	env := map[string]string{}

	if path := flagx.EnvFileFlag(os.Args[1:]); path != "" {
		file, err := godotenv.Read(path)
		if err != nil {
			panic(err)
		}
		for k, v := range file {
			env[k] = v
		}
	}

	for _, k := range envKeys {
		if v, ok := lookupEnv(k); ok {
			env[k] = v
		}
	}
	return env
}

var envKeys = []string{
	"API_URL", "APP_TYPE", "DB_PATH", "LOG_LEVEL", "LOG_FORMAT", "REQUEST_TIMEOUT",
	"STORE_SECRET", "TICKET_SOURCE", "UPLOAD_MAX_ATTEMPTS", "UPLOAD_BASE_DELAY",
	"S3_BUCKET", "S3_REGION", "S3_BASE_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY",
	"S3_PUBLIC_BASE_URL",
}

// parseEnv overlays cfg with environment values. Malformed numbers or
// durations panic.
func parseEnv(cfg *Config) {
	env := loadEnv()

	str := func(key string, dst *string) {
		if v, ok := env[key]; ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := env[key]; ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", key, err))
			}
			*dst = d
		}
	}

	str("API_URL", &cfg.APIURL)
	str("APP_TYPE", &cfg.AppType)
	str("DB_PATH", &cfg.DatabasePath)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("STORE_SECRET", &cfg.StoreSecret)
	str("TICKET_SOURCE", &cfg.TicketSource)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_PUBLIC_BASE_URL", &cfg.S3PublicBaseURL)
	dur("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur("UPLOAD_BASE_DELAY", &cfg.UploadBaseDelay)

	if v, ok := env["UPLOAD_MAX_ATTEMPTS"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("UPLOAD_MAX_ATTEMPTS: %w", err))
		}
		cfg.UploadMaxAttempts = n
	}
}
