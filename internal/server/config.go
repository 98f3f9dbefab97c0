package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/capacity-forecast/internal/config"
	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime parameters of the forecast API server.
type Config struct {
	Address           string               `yaml:"address"`
	MaxBodySize       ByteSize             `yaml:"maxBodySize"`
	CacheCapacity     int                  `yaml:"cacheCapacity"`
	ReadHeaderTimeout time.Duration        `yaml:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration        `yaml:"shutdownTimeout"`
	Logging           config.LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Address:           constants.DefaultServerAddress,
		MaxBodySize:       ByteSize(constants.DefaultMaxBodySizeBytes),
		CacheCapacity:     constants.DefaultCacheCapacity,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		ShutdownTimeout:   constants.DefaultShutdownTimeout,
	}
}

// LoadConfig reads the server configuration at path over DefaultConfig. A
// missing file yields the defaults. Unknown keys are rejected so a misspelt
// limit does not silently fall back to its default.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate fills zero values with defaults and rejects values the server
// cannot run with.
func (c *Config) Validate() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("address %q must be host:port: %w", c.Address, err)
	}

	switch {
	case c.MaxBodySize < 0:
		return fmt.Errorf("maxBodySize must not be negative, got %d", c.MaxBodySize)
	case c.MaxBodySize == 0:
		c.MaxBodySize = ByteSize(constants.DefaultMaxBodySizeBytes)
	}

	switch {
	case c.CacheCapacity < 0:
		return fmt.Errorf("cacheCapacity must not be negative, got %d", c.CacheCapacity)
	case c.CacheCapacity == 0:
		c.CacheCapacity = constants.DefaultCacheCapacity
	}

	if c.ReadHeaderTimeout < 0 || c.ShutdownTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = constants.DefaultReadHeaderTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = constants.DefaultShutdownTimeout
	}
	return nil
}

// ByteSize is a byte count written in YAML either as a plain integer or with
// a binary unit suffix such as "256K" or "2MB".
type ByteSize int64

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize converts a human-friendly byte string into a ByteSize.
func ParseSize(value string) (ByteSize, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	num, unit := s, ""
	if i := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '-' }); i >= 0 {
		num, unit = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
	}

	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q in %q", unit, value)
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("size %q must not be negative", value)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size %q overflows", value)
	}
	return ByteSize(n * multiplier), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", node.Line)
	}
	size, err := ParseSize(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*b = size
	return nil
}

// String renders b with the largest unit that divides it exactly.
func (b ByteSize) String() string {
	for _, u := range []struct {
		suffix string
		size   int64
	}{{"G", 1 << 30}, {"M", 1 << 20}, {"K", 1 << 10}} {
		if b != 0 && int64(b)%u.size == 0 {
			return strconv.FormatInt(int64(b)/u.size, 10) + u.suffix
		}
	}
	return strconv.FormatInt(int64(b), 10)
}
