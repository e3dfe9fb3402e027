package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/slship/internal/cliconfig"
	"github.com/bft-labs/slship/internal/tail"
	"github.com/bft-labs/slship/pkg/bridge"
	publog "github.com/bft-labs/slship/pkg/log"
	"github.com/bft-labs/slship/pkg/slship"
)

const helpDescription = `
Ship log lines to an Aliyun Log Service logstore.

Lines are read from stdin, or followed from --file, and batched per
topic/source/tags before being uploaded with the PutLogs API.

Highlights:
  - Never blocks the producer; batches drain on a timer.
  - lz4, deflate or zstd compression with signed requests.
  - Configure via file ($HOME/.slship/config.toml), SLSHIP_* env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  myapp 2>&1 | slship --project my-proj --logstore app --access-key <ak> --access-secret <sk>
  slship --config $HOME/.slship/config.toml --file /var/log/app.log --json
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return slship.Version
}

// dropLogger reports records lost before upload.
type dropLogger struct {
	slship.BaseEventHandler
	log zerolog.Logger
}

func (d dropLogger) OnRecordDropped(e slship.RecordDroppedEvent) {
	d.log.Warn().Str("reason", e.Reason).Int("count", e.Count).Msg("records dropped")
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var fromStart bool

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "slship",
		Short:   "Ship log lines to an Aliyun Log Service logstore",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Env overrides the file; flags override both.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.InstanceID == "" {
				cfg.InstanceID = uuid.NewString()
			}

			log.Info().Interface("config", cfg.Masked()).Msg("configuration")

			shipper, err := slship.New(cfg.ShipperConfig(),
				slship.WithLogger(publog.NewZerologAdapterWithLogger(log)),
				slship.WithEventHandler(dropLogger{log: log}),
			)
			if err != nil {
				return fmt.Errorf("create shipper: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			if err := shipper.Start(context.Background()); err != nil {
				return fmt.Errorf("start shipper: %w", err)
			}
			log.Info().Str("url", shipper.URL()).Msg("shipping")

			meta := bridge.BuildMetadata(cfg.Topic, cfg.Source, cfg.Tags, cfg.InstanceID)
			report := lineReporter(shipper, meta, cfg.JSON)

			inputDone := make(chan error, 1)
			go func() {
				if cfg.File != "" {
					var opts []tail.Option
					if fromStart {
						opts = append(opts, tail.FromStart())
					}
					opts = append(opts, tail.WithLogger(publog.NewZerologAdapterWithLogger(log)))
					inputDone <- tail.New(cfg.File, opts...).Run(ctx, report)
					return
				}
				inputDone <- scanLines(ctx, os.Stdin, report)
			}()

			var inputErr error
			select {
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
				cancel()
			case inputErr = <-inputDone:
				if inputErr != nil {
					log.Error().Err(inputErr).Msg("input failed")
				}
			}

			if err := shipper.Stop(); err != nil && !errors.Is(err, slship.ErrNotRunning) {
				return fmt.Errorf("stop shipper: %w", err)
			}
			return inputErr
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file, .toml or .yaml (default: $HOME/.slship/config.toml)")

	root.Flags().StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "regional service endpoint")
	root.Flags().StringVar(&cfg.Project, "project", cfg.Project, "destination project")
	root.Flags().StringVar(&cfg.Logstore, "logstore", cfg.Logstore, "destination logstore")
	root.Flags().StringVar(&cfg.AccessKey, "access-key", cfg.AccessKey, "access key id")
	root.Flags().StringVar(&cfg.AccessSecret, "access-secret", cfg.AccessSecret, "access key secret")
	root.Flags().StringVar(&cfg.ShardKey, "shard-key", cfg.ShardKey, "route every upload to this shard hash key")
	root.Flags().StringVar(&cfg.Scheme, "scheme", cfg.Scheme, "http or https")
	if err := root.Flags().MarkHidden("scheme"); err != nil {
		log.Info().Err(err).Msg("failed to hide scheme flag")
	}

	root.Flags().StringVar(&cfg.Compression, "compression", cfg.Compression, "none, lz4, deflate or zstd")
	root.Flags().IntVar(&cfg.CompressionLevel, "compression-level", cfg.CompressionLevel, "deflate level (1-9)")

	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout per upload")
	root.Flags().DurationVar(&cfg.DrainInterval, "drain-interval", cfg.DrainInterval, "period between batch drains")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "how long to wait for the final drain")

	root.Flags().IntVar(&cfg.LogVecCapacity, "log-vec-capacity", cfg.LogVecCapacity, "initial record capacity of a batch")
	root.Flags().IntVar(&cfg.GroupCapacity, "group-capacity", cfg.GroupCapacity, "baseline size of the group map")
	root.Flags().IntVar(&cfg.VecPoolCapacity, "vec-pool-capacity", cfg.VecPoolCapacity, "record slices kept for reuse")
	root.Flags().IntVar(&cfg.MaxGroupBytes, "max-group-bytes", cfg.MaxGroupBytes, "maximum encoded bytes per upload (negative disables)")
	root.Flags().IntVar(&cfg.QueueLimit, "queue-limit", cfg.QueueLimit, "bound on queued records (0 is unbounded)")
	root.Flags().StringVar(&cfg.OverflowPolicy, "overflow-policy", cfg.OverflowPolicy, "drop_newest or drop_oldest when the queue is full")

	root.Flags().StringVar(&cfg.Topic, "topic", cfg.Topic, "log topic")
	root.Flags().StringVar(&cfg.Source, "source", cfg.Source, "log source (defaults to the hostname)")
	root.Flags().StringToStringVar(&cfg.Tags, "tag", cfg.Tags, "log tag as key=value (repeatable)")
	root.Flags().StringVar(&cfg.InstanceID, "instance-id", cfg.InstanceID, "instance_id tag (defaults to a random UUID)")

	root.Flags().StringVar(&cfg.File, "file", cfg.File, "follow this file instead of reading stdin")
	root.Flags().BoolVar(&fromStart, "from-start", false, "with --file, ship lines already in the file")
	root.Flags().BoolVar(&cfg.JSON, "json", cfg.JSON, "parse each line as a JSON log event")
	root.Flags().BoolVar(&cfg.PrintInternalErrors, "print-internal-errors", cfg.PrintInternalErrors, "print failed deliveries to stderr")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("slship")
		os.Exit(1)
	}
}

// lineReporter turns input lines into records.
func lineReporter(s *slship.Shipper, meta *slship.Metadata, json bool) func(string) {
	return func(line string) {
		if line == "" {
			return
		}
		if json {
			if rec, err := bridge.ParseJSONRecord([]byte(line), zerolog.TimestampFieldName); err == nil {
				s.Report(meta, rec)
				return
			}
		}
		rec := slship.Now(slship.WithContentCapacity(2, 0))
		rec.With(bridge.KeyMessage, line)
		s.Report(meta, rec)
	}
}

// scanLines reads r until EOF or ctx is cancelled.
func scanLines(ctx context.Context, r io.Reader, fn func(string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 1<<20)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		fn(sc.Text())
	}
	return sc.Err()
}
