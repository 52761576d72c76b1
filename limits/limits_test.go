package limits

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSize(t *testing.T) {
	assert.ErrorIs(t, ValidateSize(nil, 10), ErrEmpty)
	assert.NoError(t, ValidateSize([]byte("hello"), 10))
	assert.NoError(t, ValidateSize(make([]byte, 10), 10))

	err := ValidateSize(make([]byte, 11), 10)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "size 11 exceeds limit 10")
}

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"normal", "NEO", nil},
		{"unicode", "友達", nil},
		{"max length", strings.Repeat("a", MaxDisplayName), nil},
		{"empty", "", ErrEmpty},
		{"too long", strings.Repeat("a", MaxDisplayName+1), ErrTooLarge},
		{"control char", "bad\x00name", ErrInvalid},
		{"newline", "two\nlines", ErrInvalid},
		{"invalid utf8", string([]byte{0xff, 0xfe}), ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDisplayName(tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateContent(t *testing.T) {
	assert.NoError(t, ValidateContent("hi", false))
	assert.NoError(t, ValidateContent("", true), "attachment-only messages are allowed")
	assert.ErrorIs(t, ValidateContent("", false), ErrEmpty)
	assert.ErrorIs(t, ValidateContent(strings.Repeat("x", MaxMessageContent+1), false), ErrTooLarge)
	assert.ErrorIs(t, ValidateContent(string([]byte{0xc3, 0x28}), false), ErrInvalid)
}

func TestValidateAttachment(t *testing.T) {
	assert.NoError(t, ValidateAttachment("photo.png", 1024))
	assert.NoError(t, ValidateAttachment("empty.txt", 0))
	assert.ErrorIs(t, ValidateAttachment("", 10), ErrEmpty)
	assert.ErrorIs(t, ValidateAttachment(strings.Repeat("n", MaxAttachmentName+1), 10), ErrTooLarge)
	assert.ErrorIs(t, ValidateAttachment("big.iso", MaxAttachmentSize+1), ErrTooLarge)
	assert.ErrorIs(t, ValidateAttachment("neg.bin", -1), ErrInvalid)
	assert.ErrorIs(t, ValidateAttachment("tab\tname", 1), ErrInvalid)
}

func TestValidateDirectoryPacket(t *testing.T) {
	assert.NoError(t, ValidateDirectoryPacket([]byte(`{"type":"QUERY"}`)))
	assert.ErrorIs(t, ValidateDirectoryPacket(nil), ErrEmpty)
	assert.ErrorIs(t, ValidateDirectoryPacket(make([]byte, MaxDirectoryPacket+1)), ErrTooLarge)
}
