package messaging

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryState represents the delivery state of a message.
type DeliveryState uint8

const (
	// StateSending means the message is being encrypted and submitted.
	StateSending DeliveryState = iota
	// StateSent means the transport accepted the message.
	StateSent
	// StateDelivered means the recipient acknowledged the message.
	StateDelivered
	// StateRead means the message has been read. Received messages start here.
	StateRead
	// StateFailed means the message could not be sent. It is terminal.
	StateFailed
)

// String returns the lower-case name of the state.
func (s DeliveryState) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateSent:
		return "sent"
	case StateDelivered:
		return "delivered"
	case StateRead:
		return "read"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanTransition reports whether a message may move from s to next.
func (s DeliveryState) CanTransition(next DeliveryState) bool {
	switch s {
	case StateSending:
		return next == StateSent || next == StateFailed
	case StateSent:
		return next == StateDelivered || next == StateRead
	case StateDelivered:
		return next == StateRead
	default:
		return false
	}
}

// DeliveryCallback is called when a message's delivery state changes.
type DeliveryCallback func(message Message, previous DeliveryState)

// Attachment is a file carried alongside a message. Data holds the binary
// for locally created or reassembled attachments and URL a local handle
// for display.
type Attachment struct {
	Name     string
	Size     int64
	MimeType string
	Data     []byte
	URL      string
}

// Metadata returns the part of the attachment that travels inside the
// encrypted envelope.
func (a *Attachment) Metadata() *AttachmentMetadata {
	if a == nil {
		return nil
	}
	return &AttachmentMetadata{Name: a.Name, Size: a.Size, MimeType: a.MimeType}
}

// Message is one entry in a conversation.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Content     string
	Attachment  *Attachment
	Timestamp   time.Time
	State       DeliveryState
}

// NewMessageID returns a fresh unique message id.
func NewMessageID() string {
	return uuid.NewString()
}

// IsBetween reports whether m belongs to the conversation of a and b.
func (m Message) IsBetween(a, b string) bool {
	return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
}

func (m Message) clone() Message {
	if m.Attachment != nil {
		att := *m.Attachment
		if att.Data != nil {
			att.Data = append([]byte(nil), att.Data...)
		}
		m.Attachment = &att
	}
	return m
}
