// Package identity owns the local asymmetric identity of a session and
// derives its rotating linking code.
//
// Example:
//
//	mgr, err := identity.NewManager("NEO", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Share this code:", mgr.CurrentCode())
package identity

import (
	"crypto/ecdh"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/opd-ai/shadowlink/crypto"
	"github.com/opd-ai/shadowlink/limits"
)

// Identity is the long-lived keypair of one participant. The private key
// never leaves this struct and is never serialized.
type Identity struct {
	DisplayName string
	PublicKey   string
	CreatedAt   time.Time

	privateKey *ecdh.PrivateKey
}

// Generate creates a new identity with a fresh P-256 keypair.
func Generate(displayName string) (*Identity, error) {
	return generate(displayName, nil, time.Now())
}

// GenerateFrom creates an identity drawing key material from r.
func GenerateFrom(displayName string, r io.Reader, now time.Time) (*Identity, error) {
	return generate(displayName, r, now)
}

func generate(displayName string, r io.Reader, now time.Time) (*Identity, error) {
	displayName = strings.TrimSpace(displayName)
	if err := limits.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}

	var (
		priv *ecdh.PrivateKey
		err  error
	)
	if r == nil {
		priv, err = crypto.GenerateKeyPair()
	} else {
		priv, err = crypto.GenerateKeyPairFrom(r)
	}
	if err != nil {
		return nil, err
	}

	pub, err := crypto.ExportPublicKey(priv.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crypto.ErrKeyGeneration, err)
	}

	crypto.NewPackageLogger("identity", "Generate").
		WithField("display_name", displayName).
		WithField("public_key", crypto.KeyPrefix(pub)).
		Info("Identity created")

	return &Identity{
		DisplayName: displayName,
		PublicKey:   pub,
		CreatedAt:   now,
		privateKey:  priv,
	}, nil
}

// Agree derives the pairwise key with a peer. It is the only path through
// which the private key is used.
func (id *Identity) Agree(peer *ecdh.PublicKey) (crypto.SymmetricKey, error) {
	return crypto.DeriveSharedKey(id.privateKey, peer)
}

// ExportPublicKey returns the canonical identifier of id.
func ExportPublicKey(id *Identity) string {
	return id.PublicKey
}

// ComputeLinkingCode returns the linking code of publicKey on the UTC day
// containing t.
func ComputeLinkingCode(publicKey string, t time.Time) string {
	return crypto.LinkingCodeAt(publicKey, t)
}

var codePattern = regexp.MustCompile(`^[0-9A-Z]{6}$`)

// ErrInvalidCode indicates user input that cannot be a linking code.
var ErrInvalidCode = fmt.Errorf("%w: linking code must be %d letters or digits", limits.ErrInvalid, crypto.LinkingCodeLength)

// NormalizeCode trims and upper-cases a typed code and checks its shape.
func NormalizeCode(input string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(input))
	if !codePattern.MatchString(code) {
		return "", ErrInvalidCode
	}
	return code, nil
}
