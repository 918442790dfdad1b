package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	orig := lookupEnv
	t.Cleanup(func() { lookupEnv = orig })
	lookupEnv = func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func noEnv(t *testing.T) { withEnv(t, nil) }

func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestParseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("process env", func(t *testing.T) {
		os.Args = []string{"cmd"}
		withEnv(t, map[string]string{
			"API_URL":             "https://env.example.com",
			"STORE_SECRET":        "s3cret",
			"UPLOAD_MAX_ATTEMPTS": "4",
			"UPLOAD_BASE_DELAY":   "2s",
			"S3_ACCESS_KEY":       "minio",
			"LOG_LEVEL":           "",
		})

		cfg := &Config{LogLevel: "info"}
		parseEnv(cfg)

		assert.Equal(t, "https://env.example.com", cfg.APIURL)
		assert.Equal(t, "s3cret", cfg.StoreSecret)
		assert.Equal(t, 4, cfg.UploadMaxAttempts)
		assert.Equal(t, 2*time.Second, cfg.UploadBaseDelay)
		assert.Equal(t, "minio", cfg.S3AccessKey)
		assert.Equal(t, "info", cfg.LogLevel, "empty values are ignored")
	})

	t.Run("dotenv file, process env wins", func(t *testing.T) {
		path := writeTempEnv(t, "API_URL=https://file.example.com\nTICKET_SOURCE=s3\n# comment\nREQUEST_TIMEOUT=5s\n")
		os.Args = []string{"cmd", "-env", path}
		withEnv(t, map[string]string{"API_URL": "https://process.example.com"})

		cfg := &Config{}
		parseEnv(cfg)

		assert.Equal(t, "https://process.example.com", cfg.APIURL)
		assert.Equal(t, TicketSourceS3, cfg.TicketSource)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	})

	t.Run("bad values panic", func(t *testing.T) {
		os.Args = []string{"cmd"}
		withEnv(t, map[string]string{"UPLOAD_MAX_ATTEMPTS": "x"})
		require.Panics(t, func() { parseEnv(&Config{}) })

		withEnv(t, map[string]string{"REQUEST_TIMEOUT": "soon"})
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("missing dotenv file panics", func(t *testing.T) {
		os.Args = []string{"cmd", "-e", filepath.Join(t.TempDir(), "nope.env")}
		noEnv(t)
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}
