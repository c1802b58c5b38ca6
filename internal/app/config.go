package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Dump formats accepted by Config.Dump.
const (
	DumpYAML = "yaml"
	DumpJSON = "json"
	DumpNone = "none"
)

// DefaultSampleRate is handed to fragments when the config leaves it unset.
const DefaultSampleRate = 44100

var configValidate = validator.New()

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PatchPath string `validate:"required"` // hcl file or directory

	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`

	// Port of the HTTP server. 0 runs the patch once and exits.
	Port       int     `validate:"gte=0,lte=65535"`
	Watch      bool    // reload the patch when its files change; server mode only
	Repair     bool    // run one rank repair pass after loading
	Dump       string  `validate:"oneof=yaml json none"`
	Monitor    string  `validate:"omitempty,url"`
	SampleRate float32 `validate:"gt=0"`
	CacheSize  int     `validate:"gte=0"`
}

// NewConfig fills defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Dump == "" {
		cfg.Dump = DumpYAML
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}

	if err := configValidate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Watch && cfg.Port == 0 {
		return nil, fmt.Errorf("invalid configuration: watch needs a server port")
	}
	return &cfg, nil
}
