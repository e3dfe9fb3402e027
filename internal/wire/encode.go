package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bft-labs/slship/internal/domain"
)

// Encode returns the encoded log group in a buffer of exactly EncodedLen bytes.
func Encode(m *domain.Metadata, logs []domain.Record) []byte {
	return Append(make([]byte, 0, EncodedLen(m, logs)), m, logs)
}

// Append appends the encoded log group to dst. Records come first, then
// topic, source and tags.
func Append(dst []byte, m *domain.Metadata, logs []domain.Record) []byte {
	for i := range logs {
		dst = appendRecord(dst, &logs[i])
	}
	if m == nil {
		return dst
	}
	if topic, ok := m.Topic(); ok {
		dst = appendString(dst, fieldTopic, topic)
	}
	if source, ok := m.Source(); ok {
		dst = appendString(dst, fieldSource, source)
	}
	for _, p := range m.Tags() {
		dst = appendPair(dst, fieldTags, p)
	}
	return dst
}

func appendRecord(dst []byte, r *domain.Record) []byte {
	dst = protowire.AppendTag(dst, fieldLogs, protowire.BytesType)
	dst = protowire.AppendVarint(dst, uint64(recordBodyLen(r)))
	dst = protowire.AppendTag(dst, fieldLogTime, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(r.Timestamp))
	for _, p := range r.Contents.Pairs() {
		dst = appendPair(dst, fieldLogContents, p)
	}
	if nanos, ok := r.SubsecNanos(); ok {
		dst = protowire.AppendTag(dst, fieldLogNanos, protowire.Fixed32Type)
		dst = protowire.AppendFixed32(dst, nanos)
	}
	return dst
}

func appendPair(dst []byte, num protowire.Number, p domain.Pair) []byte {
	dst = protowire.AppendTag(dst, num, protowire.BytesType)
	dst = protowire.AppendVarint(dst, uint64(pairBodyLen(p)))
	dst = appendString(dst, fieldKey, p.Key)
	return appendString(dst, fieldValue, p.Value)
}

func appendString(dst []byte, num protowire.Number, s string) []byte {
	dst = protowire.AppendTag(dst, num, protowire.BytesType)
	return protowire.AppendString(dst, s)
}
