package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config with string durations so it reads well as TOML
// or YAML.
type FileConfig struct {
	Endpoint         string            `toml:"endpoint" yaml:"endpoint"`
	Project          string            `toml:"project" yaml:"project"`
	Logstore         string            `toml:"logstore" yaml:"logstore"`
	AccessKey        string            `toml:"access_key" yaml:"access_key"`
	AccessSecret     string            `toml:"access_secret" yaml:"access_secret"`
	ShardKey         string            `toml:"shard_key" yaml:"shard_key"`
	Scheme           string            `toml:"scheme" yaml:"scheme"`
	Compression      string            `toml:"compression" yaml:"compression"`
	CompressionLevel int               `toml:"compression_level" yaml:"compression_level"`
	HTTPTimeout      string            `toml:"http_timeout" yaml:"http_timeout"`
	DrainInterval    string            `toml:"drain_interval" yaml:"drain_interval"`
	ShutdownTimeout  string            `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogVecCapacity   int               `toml:"log_vec_capacity" yaml:"log_vec_capacity"`
	GroupCapacity    int               `toml:"group_capacity" yaml:"group_capacity"`
	VecPoolCapacity  int               `toml:"vec_pool_capacity" yaml:"vec_pool_capacity"`
	MaxGroupBytes    int               `toml:"max_group_bytes" yaml:"max_group_bytes"`
	QueueLimit       int               `toml:"queue_limit" yaml:"queue_limit"`
	OverflowPolicy   string            `toml:"overflow_policy" yaml:"overflow_policy"`
	Topic            string            `toml:"topic" yaml:"topic"`
	Source           string            `toml:"source" yaml:"source"`
	Tags             map[string]string `toml:"tags" yaml:"tags"`
	InstanceID       string            `toml:"instance_id" yaml:"instance_id"`
	File             string            `toml:"file" yaml:"file"`
	JSON             *bool             `toml:"json" yaml:"json"`
	PrintErrors      *bool             `toml:"print_internal_errors" yaml:"print_internal_errors"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.slship/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".slship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", fc.Endpoint, &cfg.Endpoint)
	s.setString("project", fc.Project, &cfg.Project)
	s.setString("logstore", fc.Logstore, &cfg.Logstore)
	s.setString("access-key", fc.AccessKey, &cfg.AccessKey)
	s.setString("access-secret", fc.AccessSecret, &cfg.AccessSecret)
	s.setString("shard-key", fc.ShardKey, &cfg.ShardKey)
	s.setString("scheme", fc.Scheme, &cfg.Scheme)
	s.setString("compression", fc.Compression, &cfg.Compression)
	s.setString("overflow-policy", fc.OverflowPolicy, &cfg.OverflowPolicy)
	s.setString("topic", fc.Topic, &cfg.Topic)
	s.setString("source", fc.Source, &cfg.Source)
	s.setString("instance-id", fc.InstanceID, &cfg.InstanceID)
	s.setString("file", fc.File, &cfg.File)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("drain-interval", fc.DrainInterval, &cfg.DrainInterval); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setInt("compression-level", fc.CompressionLevel, &cfg.CompressionLevel)
	s.setInt("log-vec-capacity", fc.LogVecCapacity, &cfg.LogVecCapacity)
	s.setInt("group-capacity", fc.GroupCapacity, &cfg.GroupCapacity)
	s.setInt("vec-pool-capacity", fc.VecPoolCapacity, &cfg.VecPoolCapacity)
	s.setInt("max-group-bytes", fc.MaxGroupBytes, &cfg.MaxGroupBytes)
	s.setInt("queue-limit", fc.QueueLimit, &cfg.QueueLimit)

	s.setTags("tag", fc.Tags, &cfg.Tags)

	s.setBool("json", fc.JSON, &cfg.JSON)
	s.setBool("print-internal-errors", fc.PrintErrors, &cfg.PrintInternalErrors)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
