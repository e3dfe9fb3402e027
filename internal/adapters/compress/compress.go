// Package compress provides the payload codecs understood by the ingestion
// service: lz4 (raw block), deflate (zlib stream) and zstd.
package compress

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bft-labs/slship/internal/ports"
)

// Codec names, as sent in x-log-compresstype.
const (
	NameNone    = "none"
	NameLZ4     = "lz4"
	NameDeflate = "deflate"
	NameZstd    = "zstd"
)

// DefaultDeflateLevel is used when a level of 0 is requested.
const DefaultDeflateLevel = 6

// ByName returns the codec registered under name. "none" and "" select no
// compression and return a nil Compressor. level only applies to deflate.
func ByName(name string, level int) (ports.Compressor, error) {
	switch strings.ToLower(name) {
	case "", NameNone:
		return nil, nil
	case NameLZ4:
		return LZ4(), nil
	case NameDeflate:
		return Deflate(level), nil
	case NameZstd:
		return Zstd()
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}

type lz4Block struct{}

// LZ4 returns a codec producing a single raw lz4 block. The service learns
// the decompressed size from x-log-bodyrawsize.
func LZ4() ports.Compressor {
	return lz4Block{}
}

func (lz4Block) Name() string { return NameLZ4 }

func (lz4Block) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible input.
	if n == 0 {
		return nil, ports.ErrIncompressible
	}
	return dst[:n], nil
}

type deflate struct {
	level int
}

// Deflate returns a zlib-wrapped deflate codec. level is clamped to 1..9;
// 0 selects DefaultDeflateLevel.
func Deflate(level int) ports.Compressor {
	switch {
	case level == 0:
		level = DefaultDeflateLevel
	case level < 1:
		level = 1
	case level > 9:
		level = 9
	}
	return deflate{level: level}
}

func (deflate) Name() string { return NameDeflate }

func (d deflate) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(src)/2 + 64)
	w, err := zlib.NewWriterLevel(&buf, d.level)
	if err != nil {
		return nil, fmt.Errorf("deflate writer: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("deflate compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate close: %w", err)
	}
	return buf.Bytes(), nil
}

type zstdCodec struct {
	enc *zstd.Encoder
}

// Zstd returns a zstd codec. The encoder is shared and safe for concurrent
// EncodeAll calls.
func Zstd() (ports.Compressor, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	return zstdCodec{enc: enc}, nil
}

func (zstdCodec) Name() string { return NameZstd }

func (z zstdCodec) Compress(src []byte) ([]byte, error) {
	return z.enc.EncodeAll(src, make([]byte, 0, len(src)/2+16)), nil
}
