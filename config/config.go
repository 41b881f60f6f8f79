// Package config loads service configuration from YAML with environment
// variable substitution.
package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document.
type Config struct {
	Service Service `yaml:"service"`
}

// Service configures the HTTP listener.
type Service struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	BasePath string `yaml:"basePath"`
}

// Addr returns the host:port listen address.
func (s Service) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Service: Service{
			Port: 3000,
			Host: "0.0.0.0",
		},
	}
}

// Load reads path, substitutes environment variables and parses the result
// over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, os.LookupEnv)
}

// Parse substitutes variables using lookup and decodes b over the defaults.
func Parse(b []byte, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(Substitute(string(b), lookup)), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Service.Port < 0 || cfg.Service.Port > 65535 {
		return Config{}, fmt.Errorf("parse config: port %d out of range", cfg.Service.Port)
	}
	return cfg, nil
}

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(?::([^}]*))?\}`)

// Substitute replaces every {NAME} or {NAME:default} in s with the value of
// NAME from lookup, or the default when NAME is unset. Unset names without a
// default become empty.
func Substitute(s string, lookup func(string) (string, bool)) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		if v, ok := lookup(sub[1]); ok {
			return v
		}
		return sub[2]
	})
}
