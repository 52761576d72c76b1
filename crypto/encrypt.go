package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// IVSize is the size of the per-message initialization vector (96 bits).
const IVSize = 12

// CipherSuite selects the AEAD used for message payloads. Both peers of a
// conversation must use the same suite.
type CipherSuite uint8

const (
	// CipherAES256GCM is AES-256 in Galois/Counter Mode. It is the default.
	CipherAES256GCM CipherSuite = iota
	// CipherChaCha20Poly1305 is the IETF ChaCha20-Poly1305 construction.
	CipherChaCha20Poly1305
)

// String returns the conventional name of the suite.
func (c CipherSuite) String() string {
	switch c {
	case CipherAES256GCM:
		return "AES-256-GCM"
	case CipherChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	default:
		return fmt.Sprintf("CipherSuite(%d)", uint8(c))
	}
}

// NewAEAD returns the AEAD for the suite keyed with key.
func NewAEAD(suite CipherSuite, key SymmetricKey) (cipher.AEAD, error) {
	switch suite {
	case CipherAES256GCM:
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case CipherChaCha20Poly1305:
		return chacha20poly1305.New(key[:])
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCipher, suite)
	}
}

// GenerateIV returns a fresh random 96-bit IV.
func GenerateIV() ([IVSize]byte, error) {
	var iv [IVSize]byte
	if _, err := rand.Read(iv[:]); err != nil {
		return [IVSize]byte{}, err
	}
	return iv, nil
}

// Seal encrypts plaintext under key with a freshly generated IV. The
// additional data is authenticated but not encrypted and may be nil.
func Seal(suite CipherSuite, key SymmetricKey, plaintext, additionalData []byte) (iv [IVSize]byte, ciphertext []byte, err error) {
	aead, err := NewAEAD(suite, key)
	if err != nil {
		return iv, nil, err
	}

	iv, err = GenerateIV()
	if err != nil {
		return iv, nil, fmt.Errorf("generate iv: %w", err)
	}

	ciphertext = aead.Seal(nil, iv[:], plaintext, additionalData)
	return iv, ciphertext, nil
}
