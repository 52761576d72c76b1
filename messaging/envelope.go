package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/shadowlink/limits"
)

// ErrMalformedEnvelope indicates an envelope that could not be decoded or
// is missing required fields.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// AttachmentMetadata describes an attachment without its content.
type AttachmentMetadata struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"type"`
}

// EncryptedEnvelope is the wire form of one encrypted message. IV and
// Ciphertext are base64 strings; Timestamp is milliseconds since the epoch.
type EncryptedEnvelope struct {
	IV                 string              `json:"iv"`
	Ciphertext         string              `json:"data"`
	SenderPublicKey    string              `json:"senderPublicKey"`
	Timestamp          int64               `json:"timestamp"`
	AttachmentMetadata *AttachmentMetadata `json:"attachmentMetadata,omitempty"`
}

// Time returns the sender's timestamp.
func (e *EncryptedEnvelope) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Marshal encodes the envelope as JSON.
func (e *EncryptedEnvelope) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// Validate checks that the required fields are present and the attachment
// metadata is within limits.
func (e *EncryptedEnvelope) Validate() error {
	switch {
	case e.IV == "":
		return fmt.Errorf("%w: missing iv", ErrMalformedEnvelope)
	case e.Ciphertext == "":
		return fmt.Errorf("%w: missing data", ErrMalformedEnvelope)
	case e.SenderPublicKey == "":
		return fmt.Errorf("%w: missing sender public key", ErrMalformedEnvelope)
	}
	if m := e.AttachmentMetadata; m != nil {
		if err := limits.ValidateAttachment(m.Name, m.Size); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
	}
	return nil
}

// ParseEnvelope decodes and validates an envelope.
func ParseEnvelope(data []byte) (*EncryptedEnvelope, error) {
	var e EncryptedEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
