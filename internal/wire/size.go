package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bft-labs/slship/internal/domain"
)

// Field numbers.
const (
	fieldLogs   protowire.Number = 1
	fieldTopic  protowire.Number = 3
	fieldSource protowire.Number = 4
	fieldTags   protowire.Number = 6

	fieldLogTime     protowire.Number = 1
	fieldLogContents protowire.Number = 2
	fieldLogNanos    protowire.Number = 4

	fieldKey   protowire.Number = 1
	fieldValue protowire.Number = 2
)

// stringLen is the size of a string field including its key and length.
func stringLen(num protowire.Number, s string) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(len(s))
}

// messageLen is the size of a nested message field whose body is inner bytes.
func messageLen(num protowire.Number, inner int) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(inner)
}

func pairBodyLen(p domain.Pair) int {
	return stringLen(fieldKey, p.Key) + stringLen(fieldValue, p.Value)
}

func recordBodyLen(r *domain.Record) int {
	n := protowire.SizeTag(fieldLogTime) + protowire.SizeVarint(uint64(r.Timestamp))
	for _, p := range r.Contents.Pairs() {
		n += messageLen(fieldLogContents, pairBodyLen(p))
	}
	if _, ok := r.SubsecNanos(); ok {
		n += protowire.SizeTag(fieldLogNanos) + protowire.SizeFixed32()
	}
	return n
}

// RecordLen returns the number of bytes r occupies inside a log group,
// including its field key and length prefix.
func RecordLen(r *domain.Record) int {
	return messageLen(fieldLogs, recordBodyLen(r))
}

// MetadataLen returns the number of bytes the group-level fields of m occupy.
// A nil m has no group-level fields.
func MetadataLen(m *domain.Metadata) int {
	if m == nil {
		return 0
	}
	n := 0
	if topic, ok := m.Topic(); ok {
		n += stringLen(fieldTopic, topic)
	}
	if source, ok := m.Source(); ok {
		n += stringLen(fieldSource, source)
	}
	for _, p := range m.Tags() {
		n += messageLen(fieldTags, pairBodyLen(p))
	}
	return n
}

// EncodedLen returns the exact size of the encoded log group.
func EncodedLen(m *domain.Metadata, logs []domain.Record) int {
	n := MetadataLen(m)
	for i := range logs {
		n += RecordLen(&logs[i])
	}
	return n
}
