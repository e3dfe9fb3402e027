package domain

import "errors"

// Domain errors represent error conditions in the slship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("slship: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("slship: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("slship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("slship: invalid configuration")

	// ErrMissingField is returned when a required client setting is empty.
	ErrMissingField = errors.New("slship: missing required field")

	// ErrInvalidSecret is returned when the access secret cannot key the signer.
	ErrInvalidSecret = errors.New("slship: invalid access secret length")
)

// CapacityError is returned when a key/value pair does not fit into a
// record's contents or a metadata's tags. The rejected pair is handed back
// so the caller can decide whether to drop or propagate it.
type CapacityError struct {
	Key   string
	Value string
}

func (e *CapacityError) Error() string {
	return "reached capacity limit"
}
