// Package config loads the service settings once at startup: defaults, then
// an optional .env file, then the process environment, then command-line flags.
package config

import (
	"time"
)

// Config holds runtime settings for the user directory service.
//
// Fields:
//   - Addr: bind address of the HTTP server.
//   - DBDriver / DBDSN: datastore driver ("sqlite" or "mysql") and its DSN.
//   - BcryptCost: work factor for password hashes.
//   - RedisAddr / RedisTTL: user cache; empty address disables caching.
//   - KafkaBrokers / KafkaTopic: change events; no brokers disables publishing.
//   - LogLevel: zerolog level name.
type Config struct {
	Addr         string
	DBDriver     string
	DBDSN        string
	BcryptCost   int
	RedisAddr    string
	RedisTTL     time.Duration
	KafkaBrokers []string
	KafkaTopic   string
	LogLevel     string
}

// LoadDefaults listens on every interface on the fixed service port and keeps
// users in a local SQLite file.
func (c *Config) LoadDefaults() {
	c.Addr = "0.0.0.0:5009"
	c.DBDriver = "sqlite"
	c.DBDSN = "file:users.db?_pragma=busy_timeout(5000)"
	c.BcryptCost = 10
	c.RedisAddr = ""
	c.RedisTTL = 5 * time.Minute
	c.KafkaBrokers = nil
	c.KafkaTopic = "user-topic"
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, .env, environment and args
// (os.Args[1:] in production).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
