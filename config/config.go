// Package config holds the server settings assembled from flags, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string
	// Port is the TCP port.
	Port int
	// AllowedOrigins restricts WebSocket browser origins. Empty or "*"
	// allows any origin.
	AllowedOrigins []string
}

// Addr returns the "host:port" listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string
	// Format is the log output format: "json" or "console".
	Format string
}

// NgrokConfig controls the optional public tunnel.
type NgrokConfig struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Ngrok   NgrokConfig
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateNgrok(c.Ngrok); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Host == "" {
		errs = append(errs, "server.host must not be empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	for _, origin := range s.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			errs = append(errs, "server.allowed_origins must not contain empty entries")
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateNgrok(n NgrokConfig) error {
	if n.Enabled && n.AuthToken == "" {
		return errors.New("ngrok.auth_token must be set when the tunnel is enabled")
	}
	return nil
}

// SplitOrigins parses a comma-separated origin list, dropping blanks.
func SplitOrigins(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
