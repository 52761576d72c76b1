package identity

import (
	"github.com/opd-ai/shadowlink/crypto"
)

// Manager holds the single identity of a session and computes its current
// linking code from an injectable clock.
type Manager struct {
	identity     *Identity
	timeProvider crypto.TimeProvider
}

// NewManager generates a new identity for displayName. A nil time provider
// uses the wall clock.
func NewManager(displayName string, tp crypto.TimeProvider) (*Manager, error) {
	tp = crypto.OrDefault(tp)
	id, err := generate(displayName, nil, tp.Now())
	if err != nil {
		return nil, err
	}
	return &Manager{identity: id, timeProvider: tp}, nil
}

// NewManagerWithIdentity wraps an existing identity.
func NewManagerWithIdentity(id *Identity, tp crypto.TimeProvider) *Manager {
	return &Manager{identity: id, timeProvider: crypto.OrDefault(tp)}
}

// Identity returns the managed identity.
func (m *Manager) Identity() *Identity { return m.identity }

// PublicKey returns the canonical identifier of the local participant.
func (m *Manager) PublicKey() string { return m.identity.PublicKey }

// DisplayName returns the local display name.
func (m *Manager) DisplayName() string { return m.identity.DisplayName }

// CurrentCode returns today's linking code. It changes at UTC midnight.
func (m *Manager) CurrentCode() string {
	return ComputeLinkingCode(m.identity.PublicKey, m.timeProvider.Now())
}
