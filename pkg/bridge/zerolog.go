package bridge

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"

	"github.com/bft-labs/slship/pkg/slship"
)

var parserPool fastjson.ParserPool

// ZerologWriter is a zerolog output that reports every event as a record.
type ZerologWriter struct {
	sink Sink
	meta *slship.Metadata
}

// NewZerologWriter returns a writer for zerolog.New. Each Write must hold
// one JSON event, which is how zerolog calls its output.
func NewZerologWriter(sink Sink, meta *slship.Metadata) *ZerologWriter {
	return &ZerologWriter{sink: sink, meta: meta}
}

// Write implements io.Writer.
func (w *ZerologWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter. The level is only added when
// the event does not carry one.
func (w *ZerologWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	rec, err := ParseJSONRecord(p, zerolog.TimestampFieldName)
	if err != nil {
		return 0, err
	}
	if _, ok := rec.Contents.Get(zerolog.LevelFieldName); !ok && level != zerolog.NoLevel {
		rec.With(zerolog.LevelFieldName, level.String())
	}
	w.sink.Report(w.meta, rec)
	return len(p), nil
}

// ParseJSONRecord converts one JSON object into a record. The field named
// tsField sets the timestamp (RFC 3339 string or UNIX number in the unit of
// zerolog.TimeFieldFormat); every other top-level field becomes a content
// pair, strings verbatim and other values as their JSON text.
func ParseJSONRecord(line []byte, tsField string) (slship.Record, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(line)
	if err != nil {
		return slship.Record{}, fmt.Errorf("parse json event: %w", err)
	}
	obj, err := v.Object()
	if err != nil {
		return slship.Record{}, fmt.Errorf("json event is not an object: %w", err)
	}

	ts := time.Now()
	if tsv := obj.Get(tsField); tsv != nil {
		if t, ok := parseTimestamp(tsv); ok {
			ts = t
		}
	}

	rec := slship.RecordAt(ts, unboundedContents())
	obj.Visit(func(key []byte, v *fastjson.Value) {
		k := string(key)
		if k == tsField {
			return
		}
		if v.Type() == fastjson.TypeString {
			rec.With(k, string(v.GetStringBytes()))
			return
		}
		rec.With(k, v.String())
	})
	return rec, nil
}

func parseTimestamp(v *fastjson.Value) (time.Time, bool) {
	switch v.Type() {
	case fastjson.TypeString:
		s := string(v.GetStringBytes())
		for _, layout := range []string{time.RFC3339Nano, zerolog.TimeFieldFormat} {
			if layout == "" {
				continue
			}
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return unixIn(n, zerolog.TimeFieldFormat), true
		}
	case fastjson.TypeNumber:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return time.Time{}, false
			}
			sec := int64(f)
			return time.Unix(sec, int64((f-float64(sec))*1e9)), true
		}
		return unixIn(n, zerolog.TimeFieldFormat), true
	}
	return time.Time{}, false
}

func unixIn(n int64, format string) time.Time {
	switch format {
	case zerolog.TimeFormatUnixMs:
		return time.UnixMilli(n)
	case zerolog.TimeFormatUnixMicro:
		return time.UnixMicro(n)
	case zerolog.TimeFormatUnixNano:
		return time.Unix(0, n)
	default:
		return time.Unix(n, 0)
	}
}
