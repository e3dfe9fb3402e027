package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/slship/pkg/slship"
)

// DefaultEndpoint is the regional host used when none is configured.
const DefaultEndpoint = "cn-hangzhou.log.aliyuncs.com"

// Config holds CLI configuration for slship.
type Config struct {
	Endpoint     string
	Project      string
	Logstore     string
	AccessKey    string
	AccessSecret string
	ShardKey     string
	Scheme       string

	Compression      string
	CompressionLevel int

	HTTPTimeout     time.Duration
	DrainInterval   time.Duration
	ShutdownTimeout time.Duration

	LogVecCapacity  int
	GroupCapacity   int
	VecPoolCapacity int
	MaxGroupBytes   int
	QueueLimit      int
	OverflowPolicy  string

	Topic      string
	Source     string
	Tags       map[string]string
	InstanceID string

	// File is tailed instead of reading stdin when set.
	File string
	// JSON parses each input line as a zerolog-style JSON object.
	JSON bool

	PrintInternalErrors bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	lib := slship.DefaultConfig()
	return Config{
		Endpoint:         DefaultEndpoint,
		Scheme:           lib.Scheme,
		Compression:      lib.Compression,
		CompressionLevel: 6,
		HTTPTimeout:      lib.HTTPTimeout,
		DrainInterval:    lib.DrainInterval,
		ShutdownTimeout:  lib.ShutdownTimeout,
		LogVecCapacity:   lib.LogVecCapacity,
		GroupCapacity:    lib.GroupCapacity,
		VecPoolCapacity:  lib.VecPoolCapacity,
		MaxGroupBytes:    lib.MaxGroupBytes,
		OverflowPolicy:   lib.OverflowPolicy,
		Tags:             map[string]string{},
		AccessKey:        os.Getenv("SLSHIP_ACCESS_KEY"),
		AccessSecret:     os.Getenv("SLSHIP_ACCESS_SECRET"),
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("project is required")
	}
	if c.Logstore == "" {
		return fmt.Errorf("logstore is required")
	}
	if c.AccessKey == "" || c.AccessSecret == "" {
		return fmt.Errorf("access-key and access-secret are required")
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}

	// Accept endpoints pasted with a scheme or trailing slash.
	if i := strings.Index(c.Endpoint, "://"); i >= 0 {
		if c.Scheme == "" || c.Scheme == "https" {
			c.Scheme = c.Endpoint[:i]
		}
		c.Endpoint = c.Endpoint[i+3:]
	}
	c.Endpoint = strings.TrimSuffix(c.Endpoint, "/")

	if c.DrainInterval <= 0 {
		return fmt.Errorf("drain interval must be positive")
	}
	if c.Source == "" {
		if h, err := os.Hostname(); err == nil {
			c.Source = h
		}
	}
	return nil
}

// ShipperConfig converts c into the library configuration.
func (c *Config) ShipperConfig() slship.Config {
	return slship.Config{
		Endpoint:            c.Endpoint,
		Project:             c.Project,
		Logstore:            c.Logstore,
		AccessKey:           c.AccessKey,
		AccessSecret:        c.AccessSecret,
		ShardKey:            c.ShardKey,
		Scheme:              c.Scheme,
		Compression:         c.Compression,
		CompressionLevel:    c.CompressionLevel,
		HTTPTimeout:         c.HTTPTimeout,
		DrainInterval:       c.DrainInterval,
		ShutdownTimeout:     c.ShutdownTimeout,
		LogVecCapacity:      c.LogVecCapacity,
		GroupCapacity:       c.GroupCapacity,
		VecPoolCapacity:     c.VecPoolCapacity,
		MaxGroupBytes:       c.MaxGroupBytes,
		QueueLimit:          c.QueueLimit,
		OverflowPolicy:      c.OverflowPolicy,
		PrintInternalErrors: c.PrintInternalErrors,
	}
}

// Masked returns a copy safe for logging.
func (c Config) Masked() Config {
	if c.AccessSecret != "" {
		c.AccessSecret = "*****"
	}
	return c
}

// configSetter applies values only when the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if non-zero and flag not changed. Negative values
// pass through since some settings use them as "disabled".
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setTags merges tags into dst unless the flag was set.
func (s *configSetter) setTags(flag string, tags map[string]string, dst *map[string]string) {
	if len(tags) == 0 || s.changed[flag] {
		return
	}
	if *dst == nil {
		*dst = make(map[string]string, len(tags))
	}
	for k, v := range tags {
		(*dst)[k] = v
	}
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i == 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// parseTags reads "k=v,k2=v2".
func parseTags(value string) (map[string]string, error) {
	if value == "" {
		return nil, nil
	}
	tags := map[string]string{}
	for _, kv := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid tag %q, want key=value", kv)
		}
		tags[k] = v
	}
	return tags, nil
}
