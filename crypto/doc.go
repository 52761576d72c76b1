// Package crypto implements the cryptographic primitives of the ShadowLink
// protocol.
//
// # Core Types
//
//   - P-256 identity keys from crypto/ecdh, exported as base64 SPKI. The
//     exported string is the peer identifier used everywhere else.
//   - [SymmetricKey]: a 256-bit pairwise key from [DeriveSharedKey].
//   - [CipherSuite]: the AEAD used for payloads (AES-256-GCM by default).
//
// # Key Agreement
//
// Both sides of a pair derive the same key:
//
//	alice, _ := crypto.GenerateKeyPair()
//	bob, _ := crypto.GenerateKeyPair()
//	k1, _ := crypto.DeriveSharedKey(alice, bob.PublicKey())
//	k2, _ := crypto.DeriveSharedKey(bob, alice.PublicKey())
//	// k1 == k2
//
// Derivation is deterministic, so sessions memoize it with a [KeyCache].
//
// # Sealing
//
// [Seal] draws a fresh random 96-bit IV on every call; reusing an IV under
// the same key breaks AEAD confidentiality, so IVs are never accepted from
// callers. [Open] reports every failure as [ErrDecryption].
//
// # Linking Codes
//
// [LinkingCode] maps (public key, UTC day) to a six character base-36 code
// via SHA-256. Codes rotate daily and are not unique; resolution happens
// through the directory, not through the code itself.
//
// # Errors
//
// Provider errors never escape unwrapped. Each is mapped onto one of
// [ErrKeyGeneration], [ErrKeyAgreement], [ErrDecryption] or [ErrMalformedKey].
package crypto
