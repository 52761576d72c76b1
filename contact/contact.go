package contact

import (
	"crypto/ecdh"
	"errors"
	"time"
)

const (
	// AssistantContactID is the fixed id of the automated assistant.
	AssistantContactID = "shadow-bot-ai"

	// AssistantDisplayName is the display name of the automated assistant.
	AssistantDisplayName = "ShadowBot_AI"

	// UnknownDisplayName is used for auto-linked senders that did not
	// announce a usable name.
	UnknownDisplayName = "UNKNOWN_AGENT"
)

var (
	// ErrReservedID is returned when an operation targets the assistant
	// contact through a path reserved for human peers.
	ErrReservedID = errors.New("contact id is reserved")

	// ErrNotFound is returned for unknown contact ids.
	ErrNotFound = errors.New("contact not found")
)

// Contact is a peer the local user can message.
type Contact struct {
	ID          string
	DisplayName string
	PublicKey   *ecdh.PublicKey
	AddedAt     time.Time
	IsAutomated bool
}

// AssistantContact returns the synthetic assistant contact.
func AssistantContact(addedAt time.Time) Contact {
	return Contact{
		ID:          AssistantContactID,
		DisplayName: AssistantDisplayName,
		AddedAt:     addedAt,
		IsAutomated: true,
	}
}

func hasPlaceholderName(c Contact) bool {
	return c.DisplayName == "" || c.DisplayName == UnknownDisplayName
}
