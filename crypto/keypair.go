// Package crypto implements the cryptographic primitives of the ShadowLink
// protocol: P-256 identity keys, ECDH key agreement, AEAD message sealing and
// the linking-code digest.
//
// Example:
//
//	priv, err := crypto.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	id, _ := crypto.ExportPublicKey(priv.PublicKey())
//	fmt.Println("Public key:", id)
package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// GenerateKeyPair creates a new random P-256 key pair suitable for ECDH.
func GenerateKeyPair() (*ecdh.PrivateKey, error) {
	return GenerateKeyPairFrom(rand.Reader)
}

// GenerateKeyPairFrom creates a P-256 key pair using the given entropy source.
func GenerateKeyPairFrom(r io.Reader) (*ecdh.PrivateKey, error) {
	logger := NewLogger("GenerateKeyPair")

	priv, err := ecdh.P256().GenerateKey(r)
	if err != nil {
		logger.WithError(err, "provider", "generate_key").Error("P-256 key generation failed")
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	logger.Debug("P-256 key pair generated")
	return priv, nil
}

// ExportPublicKey serializes a public key as base64 of its SPKI DER encoding.
// The result is the canonical peer identifier.
func ExportPublicKey(pub *ecdh.PublicKey) (string, error) {
	if pub == nil {
		return "", fmt.Errorf("%w: nil public key", ErrMalformedKey)
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// ImportPublicKey parses a key produced by ExportPublicKey. Only P-256 keys
// are accepted.
func ImportPublicKey(encoded string) (*ecdh.PublicKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty key", ErrMalformedKey)
	}

	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrMalformedKey, err)
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SPKI: %v", ErrMalformedKey, err)
	}

	switch key := parsed.(type) {
	case *ecdh.PublicKey:
		if key.Curve() != ecdh.P256() {
			return nil, fmt.Errorf("%w: unsupported curve", ErrMalformedKey)
		}
		return key, nil
	case *ecdsa.PublicKey:
		if key.Curve != elliptic.P256() {
			return nil, fmt.Errorf("%w: unsupported curve %s", ErrMalformedKey, key.Curve.Params().Name)
		}
		pub, err := key.ECDH()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected key type %T", ErrMalformedKey, parsed)
	}
}
