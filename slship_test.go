package slship_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/bft-labs/slship"
	pkgslship "github.com/bft-labs/slship/pkg/slship"
)

type countingClient struct{ n atomic.Int32 }

func (c *countingClient) Do(req *http.Request) (*http.Response, error) {
	io.Copy(io.Discard, req.Body)
	c.n.Add(1)
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

func testConfig() slship.Config {
	cfg := slship.DefaultConfig()
	cfg.Endpoint = "example.com"
	cfg.Project = "p"
	cfg.Logstore = "ls"
	cfg.AccessKey = "ak"
	cfg.AccessSecret = "sk"
	return cfg
}

func TestRun_DeliversOnReturn(t *testing.T) {
	client := &countingClient{}
	meta := slship.NewMetadata().Topic("t").Build()

	err := slship.Run(context.Background(), testConfig(), func(ctx context.Context, s *slship.Shipper) error {
		rec := slship.Now()
		rec.With("message", "hello")
		s.Report(meta, rec)
		return nil
	}, pkgslship.WithHTTPClient(client))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := client.n.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestRun_ReturnsProducerError(t *testing.T) {
	want := errors.New("boom")
	err := slship.Run(context.Background(), testConfig(), func(context.Context, *slship.Shipper) error {
		return want
	}, pkgslship.WithHTTPClient(&countingClient{}))
	if !errors.Is(err, want) {
		t.Fatalf("Run() error = %v, want %v", err, want)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	called := false
	err := slship.Run(context.Background(), slship.DefaultConfig(), func(context.Context, *slship.Shipper) error {
		called = true
		return nil
	})
	if !errors.Is(err, pkgslship.ErrInvalidConfig) {
		t.Fatalf("Run() error = %v, want ErrInvalidConfig", err)
	}
	if called {
		t.Error("producer called with invalid config")
	}
}
