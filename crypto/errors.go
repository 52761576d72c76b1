package crypto

import "errors"

// Error taxonomy for the cryptographic layer. Provider errors are always
// wrapped with one of these sentinels so callers can rely on errors.Is.
var (
	// ErrKeyGeneration indicates the key provider could not produce a keypair.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrKeyAgreement indicates ECDH failed, usually because one of the keys
	// is missing, malformed or on an incompatible curve.
	ErrKeyAgreement = errors.New("key agreement failed")

	// ErrDecryption indicates the AEAD tag did not verify or the envelope
	// fields could not be decoded. It is terminal for the envelope.
	ErrDecryption = errors.New("decryption failed")

	// ErrMalformedKey indicates an exported public key could not be imported.
	ErrMalformedKey = errors.New("malformed public key")

	// ErrUnsupportedCipher indicates an unknown CipherSuite value.
	ErrUnsupportedCipher = errors.New("unsupported cipher suite")
)
