package logging

// MockLogger captures log entries for verification in tests. Derived loggers
// from WithError/WithField share the parent's entry list but carry their own
// pending error and fields, so one derivation never bleeds into later entries
// recorded on the parent.
type MockLogger struct {
	Entries       []LogEntry
	parent        *MockLogger
	pendingError  error
	pendingFields []Field
}

// NewMockLogger returns an empty capturing logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// LogEntry is a single log entry captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// root returns the logger all entries are recorded on.
func (m *MockLogger) root() *MockLogger {
	if m.parent != nil {
		return m.parent
	}
	return m
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	allFields := append(append([]Field(nil), m.pendingFields...), fields...)
	r := m.root()
	r.Entries = append(r.Entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  allFields,
		Error:   m.pendingError,
	})
}

// Debug logs a debug-level message with optional fields.
func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }

// Info logs an info-level message with optional fields.
func (m *MockLogger) Info(msg string, fields ...Field) { m.record("INFO", msg, fields) }

// Warn logs a warning-level message with optional fields.
func (m *MockLogger) Warn(msg string, fields ...Field) { m.record("WARN", msg, fields) }

// Error logs an error-level message with optional fields.
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// WithError returns a derived logger carrying the error; the receiver is
// unchanged.
func (m *MockLogger) WithError(err error) Logger {
	return &MockLogger{
		parent:        m.root(),
		pendingError:  err,
		pendingFields: append([]Field(nil), m.pendingFields...),
	}
}

// WithField returns a derived logger carrying the field; the receiver is
// unchanged.
func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return &MockLogger{
		parent:        m.root(),
		pendingError:  m.pendingError,
		pendingFields: append(append([]Field(nil), m.pendingFields...), Field{Key: key, Value: value}),
	}
}

// HasMessage reports whether any captured entry contains the given message.
func (m *MockLogger) HasMessage(msg string) bool {
	for _, e := range m.root().Entries {
		if e.Message == msg {
			return true
		}
	}
	return false
}
