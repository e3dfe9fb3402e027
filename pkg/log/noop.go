package log

// NoopLogger drops every entry. It is the Shipper's logger unless one is
// supplied or Config.PrintInternalErrors is set.
type NoopLogger struct{}

// NewNoopLogger returns a silent Logger.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}
