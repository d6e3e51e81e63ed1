// Package config loads and validates server configuration from flags,
// environment variables, and an optional config file.
package config

import (
	"time"

	"github.com/go-sql-driver/mysql"

	"mysql-graphql/internal/logging"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  logging.Config `mapstructure:"logging"`
	Schema   SchemaConfig   `mapstructure:"schema"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	GraphiQL        bool          `mapstructure:"graphiql"`
	Pretty          bool          `mapstructure:"pretty"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
	Host     string     `mapstructure:"host"`
	Port     int        `mapstructure:"port"`
	User     string     `mapstructure:"user"`
	Password string     `mapstructure:"password"`
	Database string     `mapstructure:"database"`
	Params   string     `mapstructure:"params"`
	Pool     PoolConfig `mapstructure:"pool"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// SchemaConfig controls GraphQL schema synthesis.
type SchemaConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`

	// SerializedJSONColumns names text columns that hold serialized JSON
	// and should be exposed with JSON semantics. Keys are table names,
	// values are column glob patterns.
	SerializedJSONColumns map[string][]string `mapstructure:"serialized_json_columns"`

	PluralOverrides   map[string]string `mapstructure:"plural_overrides"`
	SingularOverrides map[string]string `mapstructure:"singular_overrides"`
}

// DSN renders the connection settings as a go-sql-driver DSN.
func (d DatabaseConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = addr(d.Host, d.Port)
	cfg.DBName = d.Database
	cfg.ParseTime = true
	if d.Params != "" {
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		for _, kv := range splitParams(d.Params) {
			cfg.Params[kv[0]] = kv[1]
		}
	}
	return cfg.FormatDSN()
}
