package config

import (
	"flag"
	"io"
)

// parseFlags overlays command-line flags:
//
//	-a string   HTTP bind address (e.g. "0.0.0.0:5009")
//	-t string   database driver, sqlite or mysql
//	-d string   database DSN
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("user-directory-service", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.DBDriver, "t", cfg.DBDriver, "database driver")
	fs.StringVar(&cfg.DBDSN, "d", cfg.DBDSN, "database DSN")

	return fs.Parse(args)
}
