// Package config loads runtime configuration for the Cofit CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment: an optional dotenv file selected with -e or -env, then the
//     process environment, which wins over the file.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   backend API base URL
//	-t string   app type
//	-d string   SQLite database path
//	-l string   log level (debug, info, warn, error)
//	-r int      upload attempts per step
//
// Environment
//
//	API_URL, APP_TYPE, DB_PATH, LOG_LEVEL, LOG_FORMAT, REQUEST_TIMEOUT,
//	STORE_SECRET, TICKET_SOURCE, UPLOAD_MAX_ATTEMPTS, UPLOAD_BASE_DELAY,
//	S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY,
//	S3_PUBLIC_BASE_URL
//
// # JSON schema
//
// Durations use timex.Duration, so "30s" and integer nanoseconds both work:
//
//	{
//	  "api_url": "https://api.example.com",
//	  "app_type": "cofitpro",
//	  "database_path": "data/cofit.db",
//	  "request_timeout": "30s",
//	  "ticket_source": "api",
//	  "upload_max_attempts": 3,
//	  "upload_base_delay": "500ms"
//	}
//
// Invalid values in any source cause a panic at startup.
package config
