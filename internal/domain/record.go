package domain

import "time"

// Record is a single log entry: a second-resolution UNIX timestamp, an
// optional sub-second nanosecond part and ordered key/value contents.
type Record struct {
	// Timestamp is the UNIX time in seconds.
	Timestamp uint32

	// Contents holds the record's key/value pairs in insertion order.
	Contents Fields

	nanos    uint32
	hasNanos bool
}

// RecordOption configures a new Record.
type RecordOption func(*Record)

// WithSubsecNanos sets the sub-second nanosecond part of the timestamp.
func WithSubsecNanos(nanos uint32) RecordOption {
	return func(r *Record) {
		r.nanos = nanos
		r.hasNanos = true
	}
}

// WithContentCapacity sizes the record contents. See NewFields.
func WithContentCapacity(inline, capacity int) RecordOption {
	return func(r *Record) {
		r.Contents = NewFields(inline, capacity)
	}
}

// NewRecord creates a record stamped with the given UNIX seconds.
func NewRecord(timestamp uint32, opts ...RecordOption) Record {
	r := Record{
		Timestamp: timestamp,
		Contents:  NewFields(DefaultInlinePairs, DefaultCapacity),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RecordAt creates a record stamped with t, including its nanoseconds.
func RecordAt(t time.Time, opts ...RecordOption) Record {
	opts = append([]RecordOption{WithSubsecNanos(uint32(t.Nanosecond()))}, opts...)
	return NewRecord(uint32(t.Unix()), opts...)
}

// Now creates a record stamped with the current time.
func Now(opts ...RecordOption) Record {
	return RecordAt(time.Now(), opts...)
}

// SubsecNanos returns the sub-second nanosecond part, if set.
func (r *Record) SubsecNanos() (uint32, bool) {
	return r.nanos, r.hasNanos
}

// SetSubsecNanos sets the sub-second nanosecond part.
func (r *Record) SetSubsecNanos(nanos uint32) {
	r.nanos = nanos
	r.hasNanos = true
}

// With adds a content pair, silently dropping it if contents are full.
func (r *Record) With(key, value string) *Record {
	r.Contents.Insert(key, value)
	return r
}

// TryWith adds a content pair, returning a *CapacityError if contents are full.
func (r *Record) TryWith(key, value string) error {
	return r.Contents.TryInsert(key, value)
}

// Clone returns a copy whose contents share no memory with r.
func (r *Record) Clone() Record {
	c := *r
	c.Contents = r.Contents.Clone()
	return c
}

// Remove deletes a content pair.
func (r *Record) Remove(key string) {
	r.Contents.Remove(key)
}
