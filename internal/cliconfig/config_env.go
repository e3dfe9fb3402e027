package cliconfig

import "os"

// ApplyEnvConfig applies configuration from SLSHIP_* environment variables.
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", os.Getenv("SLSHIP_ENDPOINT"), &cfg.Endpoint)
	s.setString("project", os.Getenv("SLSHIP_PROJECT"), &cfg.Project)
	s.setString("logstore", os.Getenv("SLSHIP_LOGSTORE"), &cfg.Logstore)
	s.setString("access-key", os.Getenv("SLSHIP_ACCESS_KEY"), &cfg.AccessKey)
	s.setString("access-secret", os.Getenv("SLSHIP_ACCESS_SECRET"), &cfg.AccessSecret)
	s.setString("shard-key", os.Getenv("SLSHIP_SHARD_KEY"), &cfg.ShardKey)
	s.setString("scheme", os.Getenv("SLSHIP_SCHEME"), &cfg.Scheme)
	s.setString("compression", os.Getenv("SLSHIP_COMPRESSION"), &cfg.Compression)
	s.setString("overflow-policy", os.Getenv("SLSHIP_OVERFLOW_POLICY"), &cfg.OverflowPolicy)
	s.setString("topic", os.Getenv("SLSHIP_TOPIC"), &cfg.Topic)
	s.setString("source", os.Getenv("SLSHIP_SOURCE"), &cfg.Source)
	s.setString("instance-id", os.Getenv("SLSHIP_INSTANCE_ID"), &cfg.InstanceID)
	s.setString("file", os.Getenv("SLSHIP_FILE"), &cfg.File)

	if err := s.setDuration("timeout", os.Getenv("SLSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("drain-interval", os.Getenv("SLSHIP_DRAIN_INTERVAL"), &cfg.DrainInterval); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("SLSHIP_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"compression-level", "SLSHIP_COMPRESSION_LEVEL", &cfg.CompressionLevel},
		{"log-vec-capacity", "SLSHIP_LOG_VEC_CAPACITY", &cfg.LogVecCapacity},
		{"group-capacity", "SLSHIP_GROUP_CAPACITY", &cfg.GroupCapacity},
		{"vec-pool-capacity", "SLSHIP_VEC_POOL_CAPACITY", &cfg.VecPoolCapacity},
		{"max-group-bytes", "SLSHIP_MAX_GROUP_BYTES", &cfg.MaxGroupBytes},
		{"queue-limit", "SLSHIP_QUEUE_LIMIT", &cfg.QueueLimit},
	}
	for _, i := range ints {
		if err := s.setIntFromString(i.flag, os.Getenv(i.env), i.dst); err != nil {
			return err
		}
	}

	tags, err := parseTags(os.Getenv("SLSHIP_TAGS"))
	if err != nil {
		return err
	}
	s.setTags("tag", tags, &cfg.Tags)

	s.setBoolFromString("json", os.Getenv("SLSHIP_JSON"), &cfg.JSON)
	s.setBoolFromString("print-internal-errors", os.Getenv("SLSHIP_PRINT_INTERNAL_ERRORS"), &cfg.PrintInternalErrors)

	return nil
}
