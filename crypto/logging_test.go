package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func setupTestLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevLevel, prevFormatter := logrus.StandardLogger().Out, logrus.GetLevel(), logrus.StandardLogger().Formatter
	logrus.SetOutput(&buf)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
		logrus.SetFormatter(prevFormatter)
	})
	return &buf
}

func TestNewLogger(t *testing.T) {
	l := NewLogger("DeriveSharedKey")
	assert.Equal(t, "DeriveSharedKey", l.fields["function"])
	assert.Equal(t, "crypto", l.fields["package"])

	p := NewPackageLogger("directory", "Resolve")
	assert.Equal(t, "directory", p.fields["package"])
}

func TestLoggerHelperFields(t *testing.T) {
	l := NewLogger("Seal").
		WithField("suite", "AES-256-GCM").
		WithFields(logrus.Fields{"size": 12, "peer": "abc"}).
		WithError(errors.New("boom"), "crypto", "seal")

	entry := l.Entry()
	assert.Equal(t, "AES-256-GCM", entry.Data["suite"])
	assert.Equal(t, 12, entry.Data["size"])
	assert.Equal(t, "abc", entry.Data["peer"])
	assert.Equal(t, "boom", entry.Data["error"])
	assert.Equal(t, "crypto", entry.Data["error_type"])
	assert.Equal(t, "seal", entry.Data["operation"])
}

func TestLoggerHelperLevels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*LoggerHelper, string)
		level string
	}{
		{"debug", (*LoggerHelper).Debug, "level=debug"},
		{"info", (*LoggerHelper).Info, "level=info"},
		{"warn", (*LoggerHelper).Warn, "level=warning"},
		{"error", (*LoggerHelper).Error, "level=error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := setupTestLogger(t)
			tt.log(NewLogger("Test"), "hello")

			out := buf.String()
			assert.Contains(t, out, tt.level)
			assert.Contains(t, out, `msg=hello`)
			assert.Contains(t, out, "function=Test")
		})
	}
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "short", KeyPrefix("short"))
	assert.Equal(t, "", KeyPrefix(""))

	long := strings.Repeat("A", 80) + "tail12345678"
	assert.Equal(t, "...tail12345678", KeyPrefix(long))
}

func TestSecureFieldHash(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		preview string
	}{
		{"nil", nil, "nil"},
		{"short", []byte{0xde, 0xad}, "dead"},
		{"exact", []byte{1, 2, 3, 4, 5, 6, 7, 8}, "0102030405060708"},
		{"long", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, "0102030405060708..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := SecureFieldHash(tt.data, "iv")
			assert.Equal(t, tt.preview, fields["iv_preview"])
			assert.Equal(t, len(tt.data), fields["iv_size"])
		})
	}
}
