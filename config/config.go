// Package config loads the reservecidd daemon configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"xdao.co/reservecid/storage/casconfig"
)

const (
	DefaultListenAddress = "127.0.0.1:7420"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config is the top-level daemon configuration.
type Config struct {
	// ListenAddress is the TCP address the gRPC server binds.
	ListenAddress string `yaml:"listen_address"`

	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// MaxMsgBytes caps gRPC message sizes in both directions. Zero keeps the
	// grpc defaults.
	MaxMsgBytes int `yaml:"max_msg_bytes"`

	// Storage configures the block store served next to the codec service.
	// When nil only the codec service runs.
	Storage *casconfig.Config `yaml:"storage,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	return Config{
		ListenAddress: DefaultListenAddress,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}
	if _, _, err := net.SplitHostPort(c.ListenAddress); err != nil {
		return fmt.Errorf("listen_address: %w", err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.MaxMsgBytes < 0 {
		return fmt.Errorf("max_msg_bytes must not be negative")
	}
	if c.Storage != nil {
		if err := c.Storage.Validate(); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	return nil
}

// SetFlagsFromEnv sets every flag in fs that was not given on the command
// line from PREFIX_FLAG_NAME (dashes become underscores).
func SetFlagsFromEnv(fs *pflag.FlagSet, prefix string) error {
	alreadySet := make(map[string]bool)
	fs.Visit(func(f *pflag.Flag) {
		alreadySet[f.Name] = true
	})
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if alreadySet[f.Name] || err != nil {
			return
		}
		key := prefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if val := os.Getenv(key); val != "" {
			if serr := fs.Set(f.Name, val); serr != nil {
				err = fmt.Errorf("invalid value %q for %s: %v", val, key, serr)
			}
		}
	})
	return err
}

// NewLogger builds the daemon logger for c.
func (c Config) NewLogger(fields logrus.Fields) (logrus.FieldLogger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	logger := logrus.New()
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "01-02-2006 15:04:05",
		})
	}
	return logger.WithFields(fields), nil
}
