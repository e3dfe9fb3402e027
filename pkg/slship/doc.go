// Package slship provides an embeddable client that ships structured log
// records to an Aliyun Simple Log Service logstore.
//
// # Basic Usage
//
//	cfg := slship.DefaultConfig()
//	cfg.Endpoint = "cn-hangzhou.log.aliyuncs.com"
//	cfg.Project = "my-project"
//	cfg.Logstore = "app"
//	cfg.AccessKey = os.Getenv("SLS_ACCESS_KEY")
//	cfg.AccessSecret = os.Getenv("SLS_ACCESS_SECRET")
//
//	shipper, err := slship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := shipper.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer shipper.Stop()
//
//	meta := slship.NewMetadata().Topic("http").Source(hostname).Build()
//	rec := slship.Now()
//	rec.With("message", "request served").With("status", "200")
//	shipper.Report(meta, rec)
//
// # Batching
//
// Records are grouped by metadata. Two Metadata values with the same topic,
// source and tags share a batch regardless of tag order, so build one
// Metadata per logical stream and reuse it. Every DrainInterval each batch
// is uploaded as one request; a batch that would exceed MaxGroupBytes is
// uploaded early. A single record larger than MaxGroupBytes is dropped.
//
// Report never blocks. By default the intake queue is unbounded; set
// QueueLimit and OverflowPolicy to bound memory under sustained overload.
//
// # Failures
//
// Each upload is attempted once. Failures are logged through the configured
// Logger and reported to the EventHandler, then the records are discarded.
//
// # Lifecycle States
//
//	Idle -> Reporting -> Closing -> Closed
//
// A Shipper runs once. Stop moves it to Closing, delivers everything already
// reported and ends in Closed.
package slship
