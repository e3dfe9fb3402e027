package bridge

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/slship/pkg/slship"
)

type reported struct {
	meta *slship.Metadata
	rec  slship.Record
}

type memorySink struct {
	mu   sync.Mutex
	recs []reported
}

func (s *memorySink) Report(meta *slship.Metadata, rec slship.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, reported{meta, rec})
}

func (s *memorySink) last(t *testing.T) reported {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recs) == 0 {
		t.Fatal("nothing reported")
	}
	return s.recs[len(s.recs)-1]
}

func content(t *testing.T, r slship.Record, key string) string {
	t.Helper()
	v, ok := r.Contents.Get(key)
	if !ok {
		t.Fatalf("content %q missing; have %v", key, r.Contents.Pairs())
	}
	return v
}

func TestHandlerRecord(t *testing.T) {
	sink := &memorySink{}
	logger := slog.New(NewHandler(sink, HandlerOptions{
		Topic:      "svc",
		Source:     "host-1",
		Tags:       map[string]string{"env": "prod"},
		InstanceID: "abc",
		AddSource:  true,
	}))

	logger.Info("request served", "status", 200, slog.Group("http", "method", "GET"))

	got := sink.last(t)
	if topic, _ := got.meta.Topic(); topic != "svc" {
		t.Errorf("topic = %q", topic)
	}
	if id, _ := got.meta.Tag("instance_id"); id != "abc" {
		t.Errorf("instance_id = %q", id)
	}
	if v := content(t, got.rec, KeyLevel); v != "INFO" {
		t.Errorf("level = %q", v)
	}
	if v := content(t, got.rec, KeyMessage); v != "request served" {
		t.Errorf("message = %q", v)
	}
	if v := content(t, got.rec, "status"); v != "200" {
		t.Errorf("status = %q", v)
	}
	if v := content(t, got.rec, "http.method"); v != "GET" {
		t.Errorf("http.method = %q", v)
	}
	content(t, got.rec, KeyFile)
	content(t, got.rec, KeyLine)
	if _, ok := got.rec.SubsecNanos(); !ok {
		t.Error("sub-second nanos not recorded")
	}
}

func TestHandlerLevelAndDerived(t *testing.T) {
	sink := &memorySink{}
	base := NewHandler(sink, HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(base).With("component", "db").WithGroup("q").With("table", "users")

	logger.Info("hidden")
	if len(sink.recs) != 0 {
		t.Fatal("info record shipped below warn level")
	}

	logger.Warn("slow query", "ms", 1500)
	got := sink.last(t)
	if v := content(t, got.rec, "component"); v != "db" {
		t.Errorf("component = %q", v)
	}
	if v := content(t, got.rec, "q.table"); v != "users" {
		t.Errorf("q.table = %q", v)
	}
	if v := content(t, got.rec, "q.ms"); v != "1500" {
		t.Errorf("q.ms = %q", v)
	}

	slog.New(base).Error("other")
	if sink.recs[0].meta != sink.recs[1].meta {
		t.Error("derived handlers should share metadata")
	}
}

func TestHandlerSpans(t *testing.T) {
	sink := &memorySink{}
	h := NewHandler(sink, HandlerOptions{
		Topic:      "svc",
		Source:     "host-1",
		InstanceID: "abc",
		Spans:      true,
	})

	req := slog.New(h).WithGroup("req").With("id", 1)
	job := slog.New(h).WithGroup("job")

	req.Info("first", "k", "v")
	job.Info("second")
	req.Info("third")

	if len(sink.recs) != 3 {
		t.Fatalf("reported %d records, want 3", len(sink.recs))
	}
	reqMeta, jobMeta := sink.recs[0].meta, sink.recs[1].meta
	if sink.recs[2].meta != reqMeta {
		t.Error("records of one span should share metadata")
	}
	if reqMeta.Equal(jobMeta) {
		t.Fatal("different spans should not share a group")
	}

	tests := []struct {
		meta  *slship.Metadata
		topic string
		tags  map[string]string
	}{
		{reqMeta, "req", map[string]string{"instance_id": "abc", KeyParentSpan: "svc", "id": "1"}},
		{jobMeta, "job", map[string]string{"instance_id": "abc", KeyParentSpan: "svc"}},
	}
	for _, tt := range tests {
		if topic, _ := tt.meta.Topic(); topic != tt.topic {
			t.Errorf("topic = %q, want %q", topic, tt.topic)
		}
		if source, _ := tt.meta.Source(); source != "host-1" {
			t.Errorf("source = %q, want host-1", source)
		}
		if len(tt.meta.Tags()) != len(tt.tags) {
			t.Errorf("%s tags = %v, want %v", tt.topic, tt.meta.Tags(), tt.tags)
		}
		for k, v := range tt.tags {
			if got, _ := tt.meta.Tag(k); got != v {
				t.Errorf("%s tag %q = %q, want %q", tt.topic, k, got, v)
			}
		}
	}

	// Span attributes are tags, record attributes stay contents, unprefixed.
	first := sink.recs[0].rec
	if content(t, first, "k") != "v" {
		t.Error("record attribute missing")
	}
	if _, ok := first.Contents.Get("id"); ok {
		t.Error("span attribute should not be a content pair")
	}
}

func TestHandlerSpansNested(t *testing.T) {
	sink := &memorySink{}
	h := NewHandler(sink, HandlerOptions{Spans: true})

	slog.New(h).WithGroup("outer").WithGroup("inner").Info("msg")

	meta := sink.last(t).meta
	if topic, _ := meta.Topic(); topic != "inner" {
		t.Errorf("topic = %q, want inner", topic)
	}
	if parent, _ := meta.Tag(KeyParentSpan); parent != "outer" {
		t.Errorf("parent_span = %q, want outer", parent)
	}
}

type countingClient struct{ n atomic.Int32 }

func (c *countingClient) Do(req *http.Request) (*http.Response, error) {
	io.Copy(io.Discard, req.Body)
	c.n.Add(1)
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

func TestHandlerSpansDeliverSeparately(t *testing.T) {
	cfg := slship.DefaultConfig()
	cfg.Endpoint = "example.com"
	cfg.Project = "p"
	cfg.Logstore = "ls"
	cfg.AccessKey = "ak"
	cfg.AccessSecret = "sk"
	cfg.DrainInterval = time.Hour

	client := &countingClient{}
	s, err := slship.New(cfg, slship.WithHTTPClient(client))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	root := slog.New(NewHandler(s, HandlerOptions{Topic: "svc", Spans: true}))
	a := root.WithGroup("a")
	b := root.WithGroup("b")
	a.Info("one")
	b.Info("two")
	a.Info("three")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := client.n.Load(); got != 2 {
		t.Errorf("uploads = %d, want one per span (2)", got)
	}
}

func TestZerologWriter(t *testing.T) {
	sink := &memorySink{}
	meta := slship.NewMetadata().Topic("z").Build()
	logger := zerolog.New(NewZerologWriter(sink, meta)).With().Timestamp().Logger()

	logger.Warn().Str("user", "ann").Int("attempt", 3).Bool("ok", false).Msg("login failed")

	got := sink.last(t)
	if got.meta != meta {
		t.Error("metadata not passed through")
	}
	if v := content(t, got.rec, "level"); v != "warn" {
		t.Errorf("level = %q", v)
	}
	if v := content(t, got.rec, "message"); v != "login failed" {
		t.Errorf("message = %q", v)
	}
	if v := content(t, got.rec, "attempt"); v != "3" {
		t.Errorf("attempt = %q", v)
	}
	if v := content(t, got.rec, "ok"); v != "false" {
		t.Errorf("ok = %q", v)
	}
	if _, ok := got.rec.Contents.Get(zerolog.TimestampFieldName); ok {
		t.Error("timestamp kept as content")
	}
	if d := time.Since(time.Unix(int64(got.rec.Timestamp), 0)); d < 0 || d > time.Minute {
		t.Errorf("timestamp %d not recent", got.rec.Timestamp)
	}
}

func TestParseJSONRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantTS  uint32
		wantKV  map[string]string
		wantErr bool
	}{
		{
			name:   "rfc3339",
			line:   `{"time":"2023-11-14T22:13:20Z","msg":"hi","n":1.5}`,
			wantTS: 1700000000,
			wantKV: map[string]string{"msg": "hi", "n": "1.5"},
		},
		{
			name:   "unix seconds",
			line:   `{"time":1700000000,"nested":{"a":[1,2]}}`,
			wantTS: 1700000000,
			wantKV: map[string]string{"nested": `{"a":[1,2]}`},
		},
		{name: "not an object", line: `[1,2]`, wantErr: true},
		{name: "invalid", line: `{"a":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseJSONRecord([]byte(tt.line), "time")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseJSONRecord() error = %v", err)
			}
			if err != nil {
				return
			}
			if rec.Timestamp != tt.wantTS {
				t.Errorf("Timestamp = %d, want %d", rec.Timestamp, tt.wantTS)
			}
			for k, want := range tt.wantKV {
				if got := content(t, rec, k); got != want {
					t.Errorf("%s = %q, want %q", k, got, want)
				}
			}
		})
	}
}
