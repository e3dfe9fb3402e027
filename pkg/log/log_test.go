package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologAdapterFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf))

	l.Error("delivery failed",
		Err(errors.New("boom")),
		Int("records", 3),
		String("topic", "t"),
		Duration("took", time.Second),
		Bool("retry", false),
	)

	out := buf.String()
	for _, want := range []string{`"level":"error"`, `"error":"boom"`, `"records":3`, `"topic":"t"`, `"retry":false`, `"message":"delivery failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestConsoleAdapterLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleAdapter(&buf, zerolog.WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("below-level message written: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message missing: %s", buf.String())
	}
}

type captureLogger struct {
	NoopLogger
	fields []Field
}

func (c *captureLogger) Info(msg string, fields ...Field) { c.fields = fields }

func TestWith(t *testing.T) {
	c := &captureLogger{}
	l := With(With(c, String("a", "1")), String("b", "2"))

	l.Info("msg", String("c", "3"))

	if len(c.fields) != 3 || c.fields[0].Key != "a" || c.fields[1].Key != "b" || c.fields[2].Key != "c" {
		t.Errorf("fields = %+v", c.fields)
	}
	if With(c) != Logger(c) {
		t.Error("With() without fields should return the logger unchanged")
	}
}
