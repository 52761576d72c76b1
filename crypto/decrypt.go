package crypto

import "fmt"

// Open authenticates and decrypts ciphertext. Any failure, including a
// wrongly sized IV, is reported as ErrDecryption and no plaintext is returned.
func Open(suite CipherSuite, key SymmetricKey, iv, ciphertext, additionalData []byte) ([]byte, error) {
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrDecryption, IVSize, len(iv))
	}

	aead, err := NewAEAD(suite, key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrDecryption)
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, additionalData)
	if err != nil {
		NewLogger("Open").
			WithField("suite", suite.String()).
			WithFields(SecureFieldHash(iv, "iv")).
			Debug("Message authentication failed")
		return nil, fmt.Errorf("%w: message authentication failed", ErrDecryption)
	}
	return plaintext, nil
}
