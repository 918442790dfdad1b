package config

import (
	"flag"
	"os"

	"github.com/cofit/cofitcli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   backend API base URL
//	-t string   app type
//	-d string   SQLite database path
//	-l string   log level
//	-r int      upload attempts per step
//
// os.Args is filtered with flagx.FilterArgs first, so flags owned by other
// loaders (-c, -e) do not trip the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-l", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "backend API base URL")
	fs.StringVar(&cfg.AppType, "t", cfg.AppType, "app type")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.IntVar(&cfg.UploadMaxAttempts, "r", cfg.UploadMaxAttempts, "upload attempts per step")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
