package messaging

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opd-ai/shadowlink/crypto"
)

// Codec encrypts and decrypts message payloads with one cipher suite.
type Codec struct {
	suite crypto.CipherSuite
}

// NewCodec returns a codec for suite.
func NewCodec(suite crypto.CipherSuite) (*Codec, error) {
	if _, err := crypto.NewAEAD(suite, crypto.SymmetricKey{}); err != nil {
		return nil, err
	}
	return &Codec{suite: suite}, nil
}

// Suite returns the codec's cipher suite.
func (c *Codec) Suite() crypto.CipherSuite {
	return c.suite
}

// Encrypt seals plaintext under key with a fresh IV and returns both as
// base64 strings.
func (c *Codec) Encrypt(key crypto.SymmetricKey, plaintext []byte) (iv, ciphertext string, err error) {
	return c.encrypt(key, plaintext, nil)
}

// Decrypt reverses Encrypt. Malformed encodings and authentication failures
// are both reported as crypto.ErrDecryption.
func (c *Codec) Decrypt(key crypto.SymmetricKey, iv, ciphertext string) ([]byte, error) {
	return c.decrypt(key, iv, ciphertext, nil)
}

// Seal builds a complete envelope for plaintext. The sender key, the
// timestamp and the attachment metadata travel in the clear and are
// authenticated along with the ciphertext.
func (c *Codec) Seal(key crypto.SymmetricKey, plaintext []byte, senderPublicKey string, meta *AttachmentMetadata, now time.Time) (*EncryptedEnvelope, error) {
	env := &EncryptedEnvelope{
		SenderPublicKey:    senderPublicKey,
		Timestamp:          now.UnixMilli(),
		AttachmentMetadata: meta,
	}
	ad, err := additionalData(env)
	if err != nil {
		return nil, err
	}
	env.IV, env.Ciphertext, err = c.encrypt(key, plaintext, ad)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// Open authenticates and decrypts env.
func (c *Codec) Open(key crypto.SymmetricKey, env *EncryptedEnvelope) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", crypto.ErrDecryption, err)
	}
	ad, err := additionalData(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crypto.ErrDecryption, err)
	}
	return c.decrypt(key, env.IV, env.Ciphertext, ad)
}

func (c *Codec) encrypt(key crypto.SymmetricKey, plaintext, ad []byte) (string, string, error) {
	iv, ciphertext, err := crypto.Seal(c.suite, key, plaintext, ad)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(iv[:]), base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (c *Codec) decrypt(key crypto.SymmetricKey, ivText, ciphertextText string, ad []byte) ([]byte, error) {
	iv, err := base64.StdEncoding.DecodeString(ivText)
	if err != nil {
		return nil, fmt.Errorf("%w: iv is not base64", crypto.ErrDecryption)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextText)
	if err != nil {
		return nil, fmt.Errorf("%w: data is not base64", crypto.ErrDecryption)
	}
	return crypto.Open(c.suite, key, iv, ciphertext, ad)
}

// envelopeHeader is the cleartext part of an envelope covered by the AEAD
// tag.
type envelopeHeader struct {
	SenderPublicKey    string              `json:"senderPublicKey"`
	Timestamp          int64               `json:"timestamp"`
	AttachmentMetadata *AttachmentMetadata `json:"attachmentMetadata,omitempty"`
}

// additionalData is the canonical encoding of the envelope header. Field
// order is fixed by the struct, so both sides produce the same bytes.
func additionalData(env *EncryptedEnvelope) ([]byte, error) {
	return json.Marshal(envelopeHeader{
		SenderPublicKey:    env.SenderPublicKey,
		Timestamp:          env.Timestamp,
		AttachmentMetadata: env.AttachmentMetadata,
	})
}
