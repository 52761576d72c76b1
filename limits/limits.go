// Package limits provides centralized size limits for ShadowLink so that
// every component validates user input and packets the same way.
package limits

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxDisplayName is the longest accepted display name in bytes.
	MaxDisplayName = 128

	// MaxMessageContent is the largest plaintext body a session will send.
	// The codec itself imposes no limit; this is a practical cap.
	MaxMessageContent = 1024 * 1024

	// MaxAttachmentName is the longest accepted attachment file name in bytes.
	MaxAttachmentName = 255

	// MaxAttachmentSize caps out-of-band attachment payloads (5 GiB).
	MaxAttachmentSize int64 = 5 << 30

	// MaxDirectoryPacket caps directory QUERY/RESPONSE packets. They carry a
	// code, a key and a name, so anything larger is rejected unparsed.
	MaxDirectoryPacket = 16384
)

var (
	// ErrEmpty indicates an empty value where content is required.
	ErrEmpty = errors.New("empty value")

	// ErrTooLarge indicates a value exceeds its limit.
	ErrTooLarge = errors.New("value too large")

	// ErrInvalid indicates a value with forbidden characters or encoding.
	ErrInvalid = errors.New("invalid value")
)

// ValidateSize validates data against maxSize. Returns an error with context
// including the actual and maximum sizes.
func ValidateSize(data []byte, maxSize int) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if len(data) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrTooLarge, len(data), maxSize)
	}
	return nil
}

// ValidateDisplayName checks a trimmed display name.
func ValidateDisplayName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: display name", ErrEmpty)
	}
	if len(name) > MaxDisplayName {
		return fmt.Errorf("%w: display name size %d exceeds limit %d", ErrTooLarge, len(name), MaxDisplayName)
	}
	return validatePrintable("display name", name)
}

// ValidateContent checks an outgoing message body. An empty body is only
// allowed when the message carries an attachment.
func ValidateContent(content string, hasAttachment bool) error {
	if content == "" && !hasAttachment {
		return fmt.Errorf("%w: message has neither text nor attachment", ErrEmpty)
	}
	if len(content) > MaxMessageContent {
		return fmt.Errorf("%w: content size %d exceeds limit %d", ErrTooLarge, len(content), MaxMessageContent)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrInvalid)
	}
	return nil
}

// ValidateAttachment checks attachment metadata before it is sent.
func ValidateAttachment(name string, size int64) error {
	if name == "" {
		return fmt.Errorf("%w: attachment name", ErrEmpty)
	}
	if len(name) > MaxAttachmentName {
		return fmt.Errorf("%w: attachment name size %d exceeds limit %d", ErrTooLarge, len(name), MaxAttachmentName)
	}
	if size < 0 {
		return fmt.Errorf("%w: negative attachment size %d", ErrInvalid, size)
	}
	if size > MaxAttachmentSize {
		return fmt.Errorf("%w: attachment size %d exceeds limit %d", ErrTooLarge, size, MaxAttachmentSize)
	}
	return validatePrintable("attachment name", name)
}

// ValidateDirectoryPacket checks a raw directory packet before parsing.
func ValidateDirectoryPacket(data []byte) error {
	return ValidateSize(data, MaxDirectoryPacket)
}

func validatePrintable(field, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalid, field)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %s contains control characters", ErrInvalid, field)
		}
	}
	return nil
}
