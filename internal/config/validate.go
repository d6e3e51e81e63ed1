package config

import (
	"fmt"
	"path"
	"strings"
)

// ValidationError describes one configuration problem with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every problem found in one pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration, reporting all problems at once.
func (c *Config) Validate() error {
	var errs ValidationErrors

	c.Server.validate(&errs)
	c.Database.validate(&errs)
	c.Schema.validate(&errs)

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
			Hint:    "use debug, info, warn, or error",
		})
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q", c.Logging.Format),
			Hint:    "use json or text",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s ServerConfig) validate(errs *ValidationErrors) {
	if s.Port < 1 || s.Port > 65535 {
		*errs = append(*errs, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d out of range", s.Port),
			Hint:    "use a port between 1 and 65535",
		})
	}
}

func (d DatabaseConfig) validate(errs *ValidationErrors) {
	if d.Host == "" {
		*errs = append(*errs, ValidationError{
			Field:   "database.host",
			Message: "host is required",
		})
	}
	if d.Port < 1 || d.Port > 65535 {
		*errs = append(*errs, ValidationError{
			Field:   "database.port",
			Message: fmt.Sprintf("port %d out of range", d.Port),
		})
	}
	if d.Database == "" {
		*errs = append(*errs, ValidationError{
			Field:   "database.database",
			Message: "database name is required",
			Hint:    "set --database.database or MYGQL_DATABASE_DATABASE",
		})
	}
	if d.Pool.MaxIdle > d.Pool.MaxOpen && d.Pool.MaxOpen > 0 {
		*errs = append(*errs, ValidationError{
			Field:   "database.pool.max_idle",
			Message: "max_idle exceeds max_open",
			Hint:    "idle connections above max_open are never used",
		})
	}
}

func (s SchemaConfig) validate(errs *ValidationErrors) {
	if s.DefaultLimit < 0 {
		*errs = append(*errs, ValidationError{
			Field:   "schema.default_limit",
			Message: "must not be negative",
		})
	}
	if s.MaxLimit > 0 && s.DefaultLimit > s.MaxLimit {
		*errs = append(*errs, ValidationError{
			Field:   "schema.default_limit",
			Message: "exceeds schema.max_limit",
		})
	}
	for table, patterns := range s.SerializedJSONColumns {
		for _, pattern := range patterns {
			if _, err := path.Match(pattern, "probe"); err != nil {
				*errs = append(*errs, ValidationError{
					Field:   "schema.serialized_json_columns." + table,
					Message: fmt.Sprintf("bad pattern %q: %v", pattern, err),
				})
			}
		}
	}
}
