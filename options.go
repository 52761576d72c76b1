package shadowlink

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/shadowlink/assistant"
	"github.com/opd-ai/shadowlink/crypto"
	"github.com/opd-ai/shadowlink/directory"
)

// Options contains the configuration of a Session.
type Options struct {
	// DisplayName is announced to peers. It is trimmed and must be non-empty.
	DisplayName string

	// ResolveTimeout bounds directory resolutions.
	ResolveTimeout time.Duration

	// HandshakeDelay postpones the handshake sent to a newly linked contact.
	HandshakeDelay time.Duration

	// CipherSuite must match the suite of every peer.
	CipherSuite crypto.CipherSuite

	// EnableMetrics adds Go runtime and process collectors to the registry.
	EnableMetrics bool

	// LogLevel is the verbosity installed by ApplyLogLevel.
	LogLevel logrus.Level

	TimeProvider crypto.TimeProvider

	// Responder answers messages sent to the assistant contact.
	Responder assistant.Responder

	// Directory replaces the broadcast resolver for outgoing lookups. The
	// session still answers queries for its own code on the transport.
	Directory directory.Directory
}

// NewOptions returns the default options.
func NewOptions() *Options {
	return &Options{
		DisplayName:    "OPERATOR",
		ResolveTimeout: directory.DefaultResolveTimeout,
		HandshakeDelay: 0,
		CipherSuite:    crypto.CipherAES256GCM,
		EnableMetrics:  false,
		LogLevel:       logrus.InfoLevel,
		TimeProvider:   crypto.DefaultTimeProvider{},
		Responder:      assistant.OfflineResponder{},
	}
}

// ApplyLogLevel sets logger to the configured LogLevel. A nil logger means
// the logrus standard logger, which every package of this module logs to.
func (o *Options) ApplyLogLevel(logger *logrus.Logger) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.SetLevel(o.LogLevel)
}
