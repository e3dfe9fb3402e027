package ports

import "errors"

// ErrIncompressible is returned by a Compressor when the output would not be
// smaller than the input. Callers send such payloads uncompressed.
var ErrIncompressible = errors.New("payload is incompressible")

// Compressor is a payload codec applied after encoding and before signing.
type Compressor interface {
	// Name is the value of the x-log-compresstype header.
	Name() string

	// Compress returns the compressed form of src. src is not modified.
	Compress(src []byte) ([]byte, error)
}
