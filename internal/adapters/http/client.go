package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bft-labs/slship/internal/domain"
	"github.com/bft-labs/slship/internal/ports"
	"github.com/bft-labs/slship/internal/signer"
	"github.com/bft-labs/slship/internal/wire"
	"github.com/bft-labs/slship/pkg/log"
)

// Version is sent in the user-agent header.
const Version = "0.3.0"

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 64 << 10

// ClientConfig identifies the destination logstore and credentials.
type ClientConfig struct {
	Endpoint     string
	Project      string
	Logstore     string
	AccessKey    string
	AccessSecret string

	// ShardKey pins every request to one shard. Empty means load balanced.
	ShardKey string

	// Scheme is "https" unless set. Plain "http" is meant for local endpoints.
	Scheme string
}

// Client implements ports.Deliverer against the ingestion HTTP API.
type Client struct {
	client     ports.HTTPClient
	compressor ports.Compressor
	signer     *signer.Signer
	logger     ports.Logger
	url        string
	userAgent  string
}

// NewClient validates cfg and builds the request URL and signer once.
// compressor may be nil for uncompressed uploads.
func NewClient(cfg ClientConfig, client ports.HTTPClient, compressor ports.Compressor, logger ports.Logger, opts ...signer.Option) (*Client, error) {
	required := []struct{ name, value string }{
		{"access_key", cfg.AccessKey},
		{"access_secret", cfg.AccessSecret},
		{"endpoint", cfg.Endpoint},
		{"project", cfg.Project},
		{"logstore", cfg.Logstore},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingField, r.name)
		}
	}

	resource := signer.CanonicalResource(cfg.Logstore, cfg.ShardKey)
	s, err := signer.New(cfg.AccessKey, cfg.AccessSecret, resource, opts...)
	if err != nil {
		return nil, err
	}

	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	return &Client{
		client:     client,
		compressor: compressor,
		signer:     s,
		logger:     logger,
		url:        scheme + "://" + cfg.Project + "." + cfg.Endpoint + resource,
		userAgent:  "slship/" + Version,
	}, nil
}

// URL returns the upload URL.
func (c *Client) URL() string {
	return c.url
}

// Deliver encodes logs under meta, compresses and signs the payload, and
// POSTs it. An empty logs slice sends nothing. Failures are returned as
// *DeliveryError.
func (c *Client) Deliver(ctx context.Context, meta *domain.Metadata, logs []domain.Record) error {
	if len(logs) == 0 {
		return nil
	}

	raw := wire.Encode(meta, logs)
	body, compressType, err := c.compress(raw)
	if err != nil {
		return &DeliveryError{Err: err}
	}

	sig := c.signer.Sign(len(raw), body, compressType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("create request: %w", err)}
	}

	req.ContentLength = int64(len(body))
	req.Header.Set("Authorization", sig.Authorization)
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.Header.Set("Content-MD5", sig.ContentMD5)
	req.Header.Set("Content-Type", signer.ContentType)
	req.Header.Set("Date", sig.Date)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(signer.HeaderAPIVersion, signer.APIVersion)
	req.Header.Set(signer.HeaderBodyRawSize, sig.RawLength)
	req.Header.Set(signer.HeaderSignatureMethod, signer.SignatureMethod)
	if compressType != "" {
		req.Header.Set(signer.HeaderCompressType, compressType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{Status: resp.StatusCode, Body: string(respBody)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("log group delivered",
		log.Int("records", len(logs)),
		log.Int("raw_bytes", len(raw)),
		log.Int("body_bytes", len(body)),
	)
	return nil
}

func (c *Client) compress(raw []byte) ([]byte, string, error) {
	if c.compressor == nil {
		return raw, "", nil
	}
	out, err := c.compressor.Compress(raw)
	if errors.Is(err, ports.ErrIncompressible) {
		return raw, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("compress %s: %w", c.compressor.Name(), err)
	}
	return out, c.compressor.Name(), nil
}
