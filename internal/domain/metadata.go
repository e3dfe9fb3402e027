package domain

import (
	"slices"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// Metadata is the topic, source and tags shared by a log group.
//
// Metadata is immutable: build it with a MetadataBuilder and share the
// resulting pointer. Two Metadata values describe the same group when their
// Key values are equal.
type Metadata struct {
	topic     string
	source    string
	hasTopic  bool
	hasSource bool
	tags      Fields
	key       string
}

// Topic returns the log topic, if set.
func (m *Metadata) Topic() (string, bool) {
	return m.topic, m.hasTopic
}

// Source returns the log source, if set.
func (m *Metadata) Source() (string, bool) {
	return m.source, m.hasSource
}

// Tags returns the tag pairs in insertion order. The slice must not be modified.
func (m *Metadata) Tags() []Pair {
	return m.tags.Pairs()
}

// Tag returns a single tag value.
func (m *Metadata) Tag(key string) (string, bool) {
	return m.tags.Get(key)
}

// Key returns the grouping key. It covers topic and source presence and
// value plus the tag set; tag insertion order does not affect it.
func (m *Metadata) Key() string {
	return m.key
}

// EncodedLen returns the number of bytes the group-level fields occupy on
// the wire. Tag order does not change the length.
func (m *Metadata) EncodedLen() int {
	return len(m.key)
}

// Equal reports whether m and other describe the same group.
func (m *Metadata) Equal(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.key == other.key
}

// MetadataBuilder assembles a Metadata. A builder may be reused after Build;
// later changes do not affect metadata already built.
type MetadataBuilder struct {
	m Metadata
}

// NewMetadata returns a builder with the default tag sizing.
func NewMetadata() *MetadataBuilder {
	return NewMetadataWithCapacity(DefaultInlinePairs, DefaultCapacity)
}

// NewMetadataWithCapacity returns a builder whose tags are sized as in NewFields.
func NewMetadataWithCapacity(inline, capacity int) *MetadataBuilder {
	return &MetadataBuilder{m: Metadata{tags: NewFields(inline, capacity)}}
}

// Topic sets the topic.
func (b *MetadataBuilder) Topic(topic string) *MetadataBuilder {
	b.m.topic, b.m.hasTopic = topic, true
	return b
}

// Source sets the source.
func (b *MetadataBuilder) Source(source string) *MetadataBuilder {
	b.m.source, b.m.hasSource = source, true
	return b
}

// Tag adds a tag, silently dropping it if the tags are full.
func (b *MetadataBuilder) Tag(key, value string) *MetadataBuilder {
	b.m.tags.Insert(key, value)
	return b
}

// TryTag adds a tag, returning a *CapacityError if the tags are full.
func (b *MetadataBuilder) TryTag(key, value string) error {
	return b.m.tags.TryInsert(key, value)
}

// RemoveTag deletes a tag.
func (b *MetadataBuilder) RemoveTag(key string) *MetadataBuilder {
	b.m.tags.Remove(key)
	return b
}

// Build publishes an immutable snapshot of the builder's state.
func (b *MetadataBuilder) Build() *Metadata {
	m := &Metadata{
		topic:     b.m.topic,
		source:    b.m.source,
		hasTopic:  b.m.hasTopic,
		hasSource: b.m.hasSource,
		tags:      b.m.tags.Clone(),
	}
	m.key = groupKey(m)
	return m
}

// groupKey encodes the metadata fields the way they appear on the wire,
// with tags sorted by key.
func groupKey(m *Metadata) string {
	var b []byte
	if m.hasTopic {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, m.topic)
	}
	if m.hasSource {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, m.source)
	}
	tags := slices.Clone(m.tags.Pairs())
	slices.SortFunc(tags, func(x, y Pair) int { return strings.Compare(x.Key, y.Key) })
	var inner []byte
	for _, t := range tags {
		inner = inner[:0]
		inner = protowire.AppendTag(inner, 1, protowire.BytesType)
		inner = protowire.AppendString(inner, t.Key)
		inner = protowire.AppendTag(inner, 2, protowire.BytesType)
		inner = protowire.AppendString(inner, t.Value)
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	}
	return string(b)
}
