package crypto

import (
	"crypto/ecdh"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SymmetricKeySize is the size of a derived AEAD key (AES-256 / ChaCha20).
const SymmetricKeySize = 32

// sharedKeyInfo binds derived keys to this protocol and version.
var sharedKeyInfo = []byte("shadowlink/v1 message key")

// SymmetricKey is a pairwise 256-bit AEAD key.
type SymmetricKey [SymmetricKeySize]byte

// DeriveSharedKey performs P-256 ECDH between the local private key and the
// peer public key and expands the shared secret into a 256-bit AEAD key with
// HKDF-SHA256. The result is identical on both sides of the pair and stable
// across calls, so it may be cached per contact.
func DeriveSharedKey(localPrivate *ecdh.PrivateKey, peerPublic *ecdh.PublicKey) (SymmetricKey, error) {
	logger := NewLogger("DeriveSharedKey")

	if localPrivate == nil || peerPublic == nil {
		logger.Warn("Key agreement attempted with a missing key")
		return SymmetricKey{}, fmt.Errorf("%w: missing key", ErrKeyAgreement)
	}

	secret, err := localPrivate.ECDH(peerPublic)
	if err != nil {
		logger.WithError(err, "ecdh", "agree").Error("ECDH computation failed")
		return SymmetricKey{}, fmt.Errorf("%w: %v", ErrKeyAgreement, err)
	}
	defer ZeroBytes(secret)

	var key SymmetricKey
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, sharedKeyInfo), key[:]); err != nil {
		logger.WithError(err, "hkdf", "expand").Error("Key expansion failed")
		return SymmetricKey{}, fmt.Errorf("%w: %v", ErrKeyAgreement, err)
	}

	logger.Debug("Shared key derived, intermediate secret wiped")
	return key, nil
}
