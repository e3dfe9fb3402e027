package bridge

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/bft-labs/slship/pkg/slship"
)

// HandlerOptions configures NewHandler.
type HandlerOptions struct {
	// Metadata, when set, is used as is and the fields below are ignored.
	Metadata *slship.Metadata

	Topic  string
	Source string
	Tags   map[string]string

	// InstanceID is added as the instance_id tag when not empty.
	InstanceID string

	// Level is the minimum level shipped. Defaults to slog.LevelInfo.
	Level slog.Leveler

	// AddSource records the caller's file and line.
	AddSource bool

	// Spans makes every WithGroup start a log group of its own: the group
	// name becomes the topic, the parent topic is kept as the parent_span
	// tag, and WithAttrs adds tags instead of contents. Records logged
	// through different spans are then batched and uploaded separately.
	Spans bool
}

// KeyParentSpan tags a span's metadata with the topic it was derived from.
const KeyParentSpan = "parent_span"

type handler struct {
	sink      Sink
	meta      *slship.Metadata
	level     slog.Leveler
	addSource bool
	attrs     []slship.Pair
	prefix    string

	spans bool
	topic string
	tags  []slship.Pair
}

// NewHandler returns a slog.Handler reporting every enabled record to sink.
// The metadata is built once and shared by all derived handlers, unless
// opts.Spans is set, in which case each derived span builds its own.
func NewHandler(sink Sink, opts HandlerOptions) slog.Handler {
	meta := opts.Metadata
	if meta == nil {
		meta = BuildMetadata(opts.Topic, opts.Source, opts.Tags, opts.InstanceID)
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	h := &handler{sink: sink, meta: meta, level: level, addSource: opts.AddSource, spans: opts.Spans}
	if h.spans {
		h.topic, _ = meta.Topic()
		h.tags = append([]slship.Pair(nil), meta.Tags()...)
	}
	return h
}

// BuildMetadata builds group metadata from plain settings. Empty topic and
// source are left unset; a non-empty instanceID becomes the instance_id tag.
func BuildMetadata(topic, source string, tags map[string]string, instanceID string) *slship.Metadata {
	b := slship.NewMetadataWithCapacity(8, 0)
	if topic != "" {
		b.Topic(topic)
	}
	if source != "" {
		b.Source(source)
	}
	for k, v := range tags {
		b.Tag(k, v)
	}
	if instanceID != "" {
		b.Tag("instance_id", instanceID)
	}
	return b.Build()
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	rec := slship.RecordAt(t, unboundedContents())
	rec.With(KeyLevel, r.Level.String())
	rec.With(KeyMessage, r.Message)

	if h.addSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		rec.With(KeyFile, f.File)
		rec.With(KeyLine, strconv.Itoa(f.Line))
	}

	for _, p := range h.attrs {
		rec.With(p.Key, p.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&rec, h.prefix, a)
		return true
	})

	h.sink.Report(h.meta, rec)
	return nil
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	scratch := slship.NewRecord(0, unboundedContents())
	for _, a := range attrs {
		appendAttr(&scratch, h.prefix, a)
	}

	h2 := *h
	if h.spans {
		h2.tags = make([]slship.Pair, 0, len(h.tags)+scratch.Contents.Len())
		h2.tags = append(h2.tags, h.tags...)
		h2.tags = append(h2.tags, scratch.Contents.Pairs()...)
		h2.meta = h2.spanMetadata()
		return &h2
	}
	h2.attrs = make([]slship.Pair, 0, len(h.attrs)+scratch.Contents.Len())
	h2.attrs = append(h2.attrs, h.attrs...)
	h2.attrs = append(h2.attrs, scratch.Contents.Pairs()...)
	return &h2
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h.spans {
		h2.topic = name
		h2.tags = append([]slship.Pair(nil), h.tags...)
		if h.topic != "" {
			h2.tags = append(h2.tags, slship.Pair{Key: KeyParentSpan, Value: h.topic})
		}
		h2.meta = h2.spanMetadata()
		return &h2
	}
	h2.prefix = h.prefix + name + "."
	return &h2
}

// spanMetadata builds the metadata shared by every record logged through h.
// Later tags replace earlier ones with the same key.
func (h *handler) spanMetadata() *slship.Metadata {
	b := slship.NewMetadataWithCapacity(8, 0)
	if h.topic != "" {
		b.Topic(h.topic)
	}
	if source, ok := h.meta.Source(); ok {
		b.Source(source)
	}
	for _, t := range h.tags {
		b.Tag(t.Key, t.Value)
	}
	return b.Build()
}

// appendAttr flattens a into rec. Group members are keyed "group.key".
func appendAttr(rec *slship.Record, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		if len(members) == 0 {
			return
		}
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, m := range members {
			appendAttr(rec, prefix, m)
		}
		return
	}
	rec.With(prefix+a.Key, valueString(a.Value))
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return v.String()
	}
}
