// Package gitsplitconfig loads engine-level runtime tunables: worker count,
// fingerprint hash truncation, log verbosity, and the default A/B traversal
// mode. This is distinct from the declarative path-rules file (include,
// exclude, rename), which a surrounding CLI layer parses on its own and
// hands to the engine as an already-built rule list.
package gitsplitconfig

import (
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultWorkers          = 0 // 0 means fastexport.Workers()
	DefaultFingerprintBytes = 8
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultTraversalMode    = "topbase"
)

// Config holds the engine tunables loadable from an optional TOML file.
// Zero values mean "use the built-in default"; Overwrite only takes fields
// the overriding config actually set.
type Config struct {
	Workers          int    `toml:"workers,omitempty"`
	FingerprintBytes int    `toml:"fingerprint_bytes,omitempty"`
	LogLevel         string `toml:"log_level,omitempty"`
	LogFormat        string `toml:"log_format,omitempty"`
	TraversalMode    string `toml:"traversal_mode,omitempty"`
}

// Default returns a Config with every tunable set to its built-in default.
func Default() *Config {
	return &Config{
		Workers:          DefaultWorkers,
		FingerprintBytes: DefaultFingerprintBytes,
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
		TraversalMode:    DefaultTraversalMode,
	}
}

// Load reads path as a TOML file and overlays it onto Default(). A missing
// file is not an error; Load returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	var fromFile Config
	if _, err := toml.DecodeFile(path, &fromFile); err != nil {
		return nil, err
	}
	cfg.Overwrite(&fromFile)
	return cfg, nil
}

func overwriteString(a, b string) string {
	if len(b) != 0 {
		return b
	}
	return a
}

func overwriteInt(a, b int) int {
	if b != 0 {
		return b
	}
	return a
}

// Overwrite applies any non-zero field of o onto c, in place.
func (c *Config) Overwrite(o *Config) {
	c.Workers = overwriteInt(c.Workers, o.Workers)
	c.FingerprintBytes = overwriteInt(c.FingerprintBytes, o.FingerprintBytes)
	c.LogLevel = overwriteString(c.LogLevel, o.LogLevel)
	c.LogFormat = overwriteString(c.LogFormat, o.LogFormat)
	c.TraversalMode = overwriteString(c.TraversalMode, o.TraversalMode)
}
