package config

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	MinRateHz = 1
	MaxRateHz = 240
)

// FieldError is a single invalid setting.
type FieldError struct {
	Key     string
	Message string
}

// ValidationErrors collects all validation errors
type ValidationErrors struct {
	Fields []FieldError
}

func (e *ValidationErrors) add(key, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Key: key, Message: fmt.Sprintf(format, args...)})
}

// HasErrors returns true if any validation errors exist
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error formats all validation errors into a clear message
func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", f.Key, f.Message))
	}
	return sb.String()
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs.add("server.port", "must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs.add("server.shutdown_timeout", "must be positive, got %s", c.Server.ShutdownTimeout)
	}

	if c.Broadcast.RateHz < MinRateHz || c.Broadcast.RateHz > MaxRateHz {
		errs.add("broadcast.rate_hz", "must be between %d and %d, got %d", MinRateHz, MaxRateHz, c.Broadcast.RateHz)
	}

	validateRelayURL(errs, c.Relay.URL)
	if c.Relay.ReconnectInterval <= 0 {
		errs.add("relay.reconnect_interval", "must be positive, got %s", c.Relay.ReconnectInterval)
	}
	if c.Relay.HandshakeTimeout <= 0 {
		errs.add("relay.handshake_timeout", "must be positive, got %s", c.Relay.HandshakeTimeout)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		errs.add("logging.level", "unknown level %q", c.Logging.Level)
	}
	if c.Logging.File != "" {
		if c.Logging.MaxSizeMB < 1 {
			errs.add("logging.max_size_mb", "must be at least 1, got %d", c.Logging.MaxSizeMB)
		}
		if c.Logging.MaxBackups < 0 {
			errs.add("logging.max_backups", "must not be negative, got %d", c.Logging.MaxBackups)
		}
		if c.Logging.MaxAgeDays < 0 {
			errs.add("logging.max_age_days", "must not be negative, got %d", c.Logging.MaxAgeDays)
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateRelayURL(errs *ValidationErrors, raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		errs.add("relay.url", "invalid url: %v", err)
		return
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		errs.add("relay.url", "scheme must be ws or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		errs.add("relay.url", "missing host")
	}
}
