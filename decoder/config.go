package decoder

import (
	"fmt"
	"os"
	"strings"

	"github.com/hakobera/go-ivf-decoder/decoder/ivf"
	"github.com/hakobera/go-ivf-decoder/decoder/source"
	"gopkg.in/yaml.v3"
)

// LogLevelEnv overrides Config.LogLevel when set.
const LogLevelEnv = "IVFDEC_LOG_LEVEL"

// Config holds the decoder settings.
type Config struct {
	QueueCapacity int       `yaml:"queue_capacity"` // decoded frames buffered ahead (default: 10)
	MaxFrameSize  uint32    `yaml:"max_frame_size"` // largest accepted compressed frame in bytes
	LogLevel      string    `yaml:"log_level"`      // debug, info, warn, error
	LogFormat     string    `yaml:"log_format"`     // text, json
	AOM           AOMConfig `yaml:"aom"`
	RTP           RTPConfig `yaml:"rtp"`
}

// AOMConfig configures the libaom engine.
type AOMConfig struct {
	LibraryPath string `yaml:"library_path"` // explicit path to libaom, searched first
	ABIVersion  int    `yaml:"abi_version"`  // AOM_DECODER_ABI_VERSION of the installed library
	Threads     int    `yaml:"threads"`
}

// RTPConfig configures RTP-fed sources.
type RTPConfig struct {
	MaxLate uint16 `yaml:"max_late"` // reorder window in sequence numbers
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		QueueCapacity: DefaultQueueCapacity,
		MaxFrameSize:  ivf.DefaultMaxFrameSize,
		LogLevel:      "info",
		LogFormat:     "text",
		AOM: AOMConfig{
			ABIVersion: 22,
			Threads:    1,
		},
		RTP: RTPConfig{
			MaxLate: source.DefaultMaxLate,
		},
	}
}

// LoadConfig reads a YAML configuration file. Settings missing from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if level := os.Getenv(LogLevelEnv); level != "" {
		c.LogLevel = level
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.QueueCapacity < 1 {
		return fmt.Errorf("%w: queue_capacity must be at least 1, got %d", ErrInvalidConfig, c.QueueCapacity)
	}
	if c.MaxFrameSize == 0 {
		return fmt.Errorf("%w: max_frame_size must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.AOM.Threads < 0 {
		return fmt.Errorf("%w: aom.threads must not be negative", ErrInvalidConfig)
	}
	return nil
}
