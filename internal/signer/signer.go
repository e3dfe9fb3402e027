// Package signer computes the authorization headers for a log upload.
package signer

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/slship/internal/domain"
)

// Protocol constants shared with the delivery client.
const (
	APIVersion      = "0.6.0"
	SignatureMethod = "hmac-sha1"
	ContentType     = "application/x-protobuf"

	// DateFormat is the RFC 1123 layout with a literal GMT zone.
	DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// Header names. All custom headers share the x-log- prefix and appear in
// the string to sign sorted by name.
const (
	HeaderAPIVersion      = "x-log-apiversion"
	HeaderBodyRawSize     = "x-log-bodyrawsize"
	HeaderCompressType    = "x-log-compresstype"
	HeaderSignatureMethod = "x-log-signaturemethod"
)

// Signature is the per-request signing output.
type Signature struct {
	Date          string
	RawLength     string
	ContentMD5    string
	Authorization string
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock replaces the time source used for the date header.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// Signer signs upload requests for one access key and canonical resource.
// A Signer is safe for concurrent use.
type Signer struct {
	accessKey string
	secret    []byte
	resource  string
	now       func() time.Time
}

// CanonicalResource returns the resource path for a logstore. An empty
// shardKey selects load-balanced delivery; otherwise every request is routed
// to the shard owning shardKey.
func CanonicalResource(logstore, shardKey string) string {
	if shardKey == "" {
		return "/logstores/" + logstore + "/shards/lb"
	}
	return "/logstores/" + logstore + "/shards/route?key=" + shardKey
}

// New creates a Signer. The secret keys an HMAC-SHA1; an empty secret is rejected.
func New(accessKey, accessSecret, resource string, opts ...Option) (*Signer, error) {
	if accessSecret == "" {
		return nil, fmt.Errorf("%w: empty", domain.ErrInvalidSecret)
	}
	s := &Signer{
		accessKey: accessKey,
		secret:    []byte(accessSecret),
		resource:  resource,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Resource returns the canonical resource the signer was built for.
func (s *Signer) Resource() string {
	return s.resource
}

// Sign signs payload, the bytes to be sent. rawLength is the payload size
// before compression and compressType names the codec, "" when uncompressed.
func (s *Signer) Sign(rawLength int, payload []byte, compressType string) Signature {
	sum := md5.Sum(payload)
	sig := Signature{
		Date:       s.now().UTC().Format(DateFormat),
		RawLength:  strconv.Itoa(rawLength),
		ContentMD5: strings.ToUpper(hex.EncodeToString(sum[:])),
	}

	mac := hmac.New(sha1.New, s.secret)
	mac.Write([]byte(StringToSign(sig, compressType, s.resource)))
	sig.Authorization = "LOG " + s.accessKey + ":" + base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return sig
}

// StringToSign builds the canonical string for sig.
func StringToSign(sig Signature, compressType, resource string) string {
	var b strings.Builder
	b.Grow(160 + len(resource))
	b.WriteString("POST\n")
	b.WriteString(sig.ContentMD5)
	b.WriteByte('\n')
	b.WriteString(ContentType)
	b.WriteByte('\n')
	b.WriteString(sig.Date)
	b.WriteByte('\n')

	writeHeader(&b, HeaderAPIVersion, APIVersion)
	writeHeader(&b, HeaderBodyRawSize, sig.RawLength)
	if compressType != "" {
		writeHeader(&b, HeaderCompressType, compressType)
	}
	writeHeader(&b, HeaderSignatureMethod, SignatureMethod)

	b.WriteString(resource)
	return b.String()
}

func writeHeader(b *strings.Builder, name, value string) {
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte('\n')
}
