package slship

import (
	"fmt"
	"strings"
	"time"

	"github.com/bft-labs/slship/internal/adapters/compress"
	"github.com/bft-labs/slship/internal/app"
	"github.com/bft-labs/slship/internal/domain"
)

// Overflow policy names accepted by Config.OverflowPolicy.
const (
	OverflowDropNewest = "drop_newest"
	OverflowDropOldest = "drop_oldest"
)

// Config holds the configuration for a Shipper.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// Endpoint is the regional service host, e.g. "cn-hangzhou.log.aliyuncs.com".
	Endpoint string

	// Project and Logstore identify the destination.
	Project  string
	Logstore string

	// AccessKey and AccessSecret sign every request.
	AccessKey    string
	AccessSecret string

	// ShardKey routes all uploads to one shard. Empty means load balanced.
	ShardKey string

	// Scheme is "https" by default. Use "http" only for local endpoints.
	Scheme string

	// Compression is one of "none", "lz4", "deflate" or "zstd".
	Compression string

	// CompressionLevel applies to deflate (1..9, default 6).
	CompressionLevel int

	// HTTPTimeout bounds one upload when the default HTTP client is used.
	HTTPTimeout time.Duration

	// DrainInterval is the period between drains.
	DrainInterval time.Duration

	// ShutdownTimeout bounds how long Stop waits for the final drain.
	ShutdownTimeout time.Duration

	// LogVecCapacity is the initial record capacity of a new batch.
	LogVecCapacity int

	// GroupCapacity is the baseline size of the grouping map.
	GroupCapacity int

	// VecPoolCapacity bounds the number of record slices kept for reuse.
	VecPoolCapacity int

	// MaxGroupBytes caps the encoded size of one upload. 0 selects the
	// default of 5 MiB; a negative value disables the cap.
	MaxGroupBytes int

	// QueueLimit bounds the intake queue. 0 keeps it unbounded.
	QueueLimit int

	// OverflowPolicy is "drop_newest" or "drop_oldest" and only applies
	// when QueueLimit is set.
	OverflowPolicy string

	// PrintInternalErrors prints failed deliveries to stderr when no
	// logger is supplied.
	PrintInternalErrors bool
}

// DefaultConfig returns a Config with default values. Endpoint, Project,
// Logstore, AccessKey and AccessSecret must still be set.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	if c.Scheme == "" {
		c.Scheme = "https"
	}
	if c.Compression == "" {
		c.Compression = compress.NameLZ4
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.DrainInterval <= 0 {
		c.DrainInterval = app.DefaultDrainInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = app.ShutdownTimeout
	}
	if c.LogVecCapacity <= 0 {
		c.LogVecCapacity = app.DefaultLogVecCapacity
	}
	if c.GroupCapacity <= 0 {
		c.GroupCapacity = app.DefaultGroupCapacity
	}
	if c.VecPoolCapacity <= 0 {
		c.VecPoolCapacity = app.DefaultVecPoolCapacity
	}
	if c.MaxGroupBytes == 0 {
		c.MaxGroupBytes = app.DefaultMaxGroupBytes
	}
	if c.OverflowPolicy == "" {
		c.OverflowPolicy = OverflowDropNewest
	}
}

// Validate checks that required fields are present and that enumerated
// settings hold known values.
func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"access_key", c.AccessKey},
		{"access_secret", c.AccessSecret},
		{"endpoint", c.Endpoint},
		{"project", c.Project},
		{"logstore", c.Logstore},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %w: %s", domain.ErrInvalidConfig, domain.ErrMissingField, r.name)
		}
	}

	switch c.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme must be http or https, got %q", domain.ErrInvalidConfig, c.Scheme)
	}

	if _, err := compress.ByName(c.Compression, c.CompressionLevel); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}

	if _, err := parseOverflowPolicy(c.OverflowPolicy); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}

	if c.QueueLimit < 0 {
		return fmt.Errorf("%w: queue limit must not be negative", domain.ErrInvalidConfig)
	}

	return nil
}

func parseOverflowPolicy(name string) (app.OverflowPolicy, error) {
	switch strings.ToLower(name) {
	case "", OverflowDropNewest:
		return app.OverflowDropNewest, nil
	case OverflowDropOldest:
		return app.OverflowDropOldest, nil
	default:
		return 0, fmt.Errorf("unknown overflow policy %q", name)
	}
}
