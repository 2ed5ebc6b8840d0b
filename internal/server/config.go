package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/heatpump-forecast/internal/config"
	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address       string   `yaml:"address"`
	MaxUploadSize ByteSize `yaml:"maxUploadSize"`
	// ShutdownTimeout is how long in-flight projections may finish after a
	// stop signal.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// RequestTimeout cancels a request's context, stopping model fits that
	// wait on the cache or the price history.
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	// ForecastConfig is the forecasting configuration whose evolution
	// section backs model fitting. Empty means the --config path.
	ForecastConfig string               `yaml:"forecastConfig"`
	Logging        config.LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   ByteSize(constants.DefaultMaxUploadSizeBytes),
		ShutdownTimeout: constants.DefaultShutdownTimeout,
		RequestTimeout:  constants.DefaultRequestTimeout,
	}
}

// LoadConfig reads the server configuration. A missing or empty file yields
// DefaultConfig; unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults restores defaults for zeroed or negative settings.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.Address) == "" {
		c.Address = defaults.Address
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = defaults.MaxUploadSize
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.RequestTimeout < 0 {
		c.RequestTimeout = 0
	}
}

// ByteSize is a request body limit written as "256K", "2MB" or a plain byte
// count.
type ByteSize int64

// UnmarshalYAML parses a size through ParseSize.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	size, err := ParseSize(raw)
	if err != nil {
		return err
	}
	*b = ByteSize(size)
	return nil
}

func (b ByteSize) String() string {
	for _, u := range sizeUnits {
		if u.bytes > 1 && b >= ByteSize(u.bytes) && int64(b)%u.bytes == 0 {
			return strconv.FormatInt(int64(b)/u.bytes, 10) + u.suffix
		}
	}
	return strconv.FormatInt(int64(b), 10)
}

// sizeUnits runs from the largest unit down.
var sizeUnits = []struct {
	suffix string
	bytes  int64
}{
	{"G", 1 << 30},
	{"M", 1 << 20},
	{"K", 1 << 10},
	{"B", 1},
}

// ParseSize converts "256K", "10MB" or "4096" into bytes. An empty value
// is the default upload limit.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	digits := strings.TrimRightFunc(trimmed, func(r rune) bool { return !unicode.IsDigit(r) })
	unit := strings.TrimSpace(trimmed[len(digits):])
	n, err := strconv.ParseInt(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", value, err)
	}

	multiplier := int64(-1)
	for _, u := range sizeUnits {
		if unit == u.suffix || (u.bytes > 1 && unit == u.suffix+"B") || (u.bytes == 1 && unit == "") {
			multiplier = u.bytes
			break
		}
	}
	if multiplier < 0 {
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}
	if n > 0 && n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
