package slship

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/slship/internal/wire"
)

// captureClient answers every request with status and records the bodies.
type captureClient struct {
	mu     sync.Mutex
	status int
	reqs   []*http.Request
	bodies [][]byte
}

func (c *captureClient) Do(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	c.mu.Lock()
	c.reqs = append(c.reqs, req)
	c.bodies = append(c.bodies, body)
	c.mu.Unlock()

	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte("{}"))),
		Header:     make(http.Header),
	}, nil
}

func (c *captureClient) Bodies() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.bodies...)
}

type recordingHandler struct {
	BaseEventHandler
	mu       sync.Mutex
	states   []State
	success  int
	failures []DeliveryErrorEvent
}

func (h *recordingHandler) OnStateChange(e StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, e.Current)
}

func (h *recordingHandler) OnDeliverySuccess(DeliverySuccessEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.success++
}

func (h *recordingHandler) OnDeliveryError(e DeliveryErrorEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = append(h.failures, e)
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Endpoint = "cn-hangzhou.log.example.com"
	cfg.Project = "proj"
	cfg.Logstore = "store"
	cfg.AccessKey = "key"
	cfg.AccessSecret = "secret"
	cfg.Compression = "none"
	cfg.DrainInterval = time.Hour
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, true},
		{"missing secret", func(c *Config) { c.AccessSecret = "" }, true},
		{"bad compression", func(c *Config) { c.Compression = "brotli" }, true},
		{"bad scheme", func(c *Config) { c.Scheme = "ftp" }, true},
		{"bad policy", func(c *Config) { c.OverflowPolicy = "block" }, true},
		{"negative queue", func(c *Config) { c.QueueLimit = -1 }, true},
		{"zstd", func(c *Config) { c.Compression = "zstd" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v is not ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigMissingFieldNamed(t *testing.T) {
	cfg := validConfig()
	cfg.AccessKey = ""
	err := cfg.Validate()
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("Validate() error = %v, want ErrMissingField", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte("access_key")) {
		t.Errorf("error %q does not name access_key", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Compression != "lz4" || cfg.MaxGroupBytes != 5<<20 || cfg.LogVecCapacity != 1024 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestShipperLifecycleErrors(t *testing.T) {
	s, err := New(validConfig(), WithHTTPClient(&captureClient{}))
	if err != nil {
		t.Fatal(err)
	}
	if s.Status() != StateIdle {
		t.Errorf("Status() = %v, want Idle", s.Status())
	}
	if err := s.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() before Start = %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if s.Status() != StateClosed {
		t.Errorf("Status() = %v, want Closed", s.Status())
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Start() after Stop = %v", err)
	}
}

func TestShipperStopDeliversReported(t *testing.T) {
	client := &captureClient{}
	handler := &recordingHandler{}
	s, err := New(validConfig(), WithHTTPClient(client), WithEventHandler(handler))
	if err != nil {
		t.Fatal(err)
	}

	meta := NewMetadata().Topic("t").Source("host").Tag("env", "test").Build()
	var logs []Record
	for i := 0; i < 3; i++ {
		r := NewRecord(1700000000)
		r.With("message", "hello")
		logs = append(logs, r)
		s.Report(meta, r)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	bodies := client.Bodies()
	if len(bodies) != 1 {
		t.Fatalf("got %d requests, want 1", len(bodies))
	}
	if !bytes.Equal(bodies[0], wire.Encode(meta, logs)) {
		t.Error("request body differs from encoded group")
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if handler.success != 1 {
		t.Errorf("success events = %d", handler.success)
	}
	want := []State{StateReporting, StateClosing, StateClosed}
	if len(handler.states) != len(want) {
		t.Fatalf("states = %v, want %v", handler.states, want)
	}
	for i := range want {
		if handler.states[i] != want[i] {
			t.Errorf("states = %v, want %v", handler.states, want)
		}
	}
}

func TestShipperFlush(t *testing.T) {
	client := &captureClient{}
	s, err := New(validConfig(), WithHTTPClient(client))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	s.Report(NewMetadata().Topic("a").Build(), Now())
	s.Report(NewMetadata().Topic("b").Build(), Now())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if n := len(client.Bodies()); n != 2 {
		t.Errorf("got %d requests, want 2", n)
	}
}

func TestShipperDeliveryFailureEvent(t *testing.T) {
	client := &captureClient{status: http.StatusForbidden}
	handler := &recordingHandler{}
	s, err := New(validConfig(), WithHTTPClient(client), WithEventHandler(handler))
	if err != nil {
		t.Fatal(err)
	}
	s.Report(NewMetadata().Build(), Now())
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.failures) != 1 {
		t.Fatalf("failure events = %d, want 1", len(handler.failures))
	}
	var de *DeliveryError
	if !errors.As(handler.failures[0].Error, &de) || de.Status != http.StatusForbidden {
		t.Errorf("failure = %v", handler.failures[0].Error)
	}
}

func TestShipperDeliverDirect(t *testing.T) {
	client := &captureClient{}
	s, err := New(validConfig(), WithHTTPClient(client))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Deliver(context.Background(), NewMetadata().Build(), []Record{Now()}); err != nil {
		t.Fatal(err)
	}
	if len(client.Bodies()) != 1 {
		t.Error("Deliver() did not send a request")
	}
	if s.URL() != "https://proj.cn-hangzhou.log.example.com/logstores/store/shards/lb" {
		t.Errorf("URL() = %q", s.URL())
	}
}
