package crypto

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LoggerHelper builds structured log entries with the fields every package
// in this module attaches: the function and package name.
type LoggerHelper struct {
	fields logrus.Fields
}

// NewLogger creates a helper for the named function in the crypto package.
func NewLogger(function string) *LoggerHelper {
	return NewPackageLogger("crypto", function)
}

// NewPackageLogger creates a helper for a function in another package.
func NewPackageLogger(pkg, function string) *LoggerHelper {
	return &LoggerHelper{
		fields: logrus.Fields{
			"function": function,
			"package":  pkg,
		},
	}
}

// WithField adds a custom field.
func (l *LoggerHelper) WithField(key string, value interface{}) *LoggerHelper {
	l.fields[key] = value
	return l
}

// WithFields adds multiple custom fields.
func (l *LoggerHelper) WithFields(fields logrus.Fields) *LoggerHelper {
	for k, v := range fields {
		l.fields[k] = v
	}
	return l
}

// WithError records err together with its category and the failed operation.
func (l *LoggerHelper) WithError(err error, errorType, operation string) *LoggerHelper {
	l.fields["error"] = err.Error()
	l.fields["error_type"] = errorType
	l.fields["operation"] = operation
	return l
}

// Entry returns the underlying logrus entry.
func (l *LoggerHelper) Entry() *logrus.Entry {
	return logrus.WithFields(l.fields)
}

// Debug logs a debug message.
func (l *LoggerHelper) Debug(message string) { l.Entry().Debug(message) }

// Info logs an info message.
func (l *LoggerHelper) Info(message string) { l.Entry().Info(message) }

// Warn logs a warning message.
func (l *LoggerHelper) Warn(message string) { l.Entry().Warn(message) }

// Error logs an error message.
func (l *LoggerHelper) Error(message string) { l.Entry().Error(message) }

// KeyPrefix shortens an exported key or other identifier for logs. Peer ids
// are long base64 strings; the tail is where P-256 SPKI encodings differ.
func KeyPrefix(id string) string {
	const n = 12
	if len(id) <= n {
		return id
	}
	return "..." + id[len(id)-n:]
}

// SecureFieldHash creates a short preview of sensitive bytes for logging.
func SecureFieldHash(data []byte, name string) logrus.Fields {
	preview := "nil"
	if len(data) > 0 {
		previewLen := 8
		if len(data) < previewLen {
			previewLen = len(data)
		}
		preview = fmt.Sprintf("%x", data[:previewLen])
		if len(data) > previewLen {
			preview += "..."
		}
	}

	return logrus.Fields{
		name + "_preview": preview,
		name + "_size":    len(data),
	}
}
