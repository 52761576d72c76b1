package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) SymmetricKey {
	t.Helper()
	alice, err := GenerateKeyPair()
	require.NoError(t, err)
	bob, err := GenerateKeyPair()
	require.NoError(t, err)
	key, err := DeriveSharedKey(alice, bob.PublicKey())
	require.NoError(t, err)
	return key
}

var suites = []CipherSuite{CipherAES256GCM, CipherChaCha20Poly1305}

func TestSealOpenRoundTrip(t *testing.T) {
	key := testKey(t)
	plaintexts := [][]byte{
		{},
		[]byte("HELLO"),
		[]byte("unicode: 友達 ✓"),
		make([]byte, 64*1024),
	}

	for _, suite := range suites {
		t.Run(suite.String(), func(t *testing.T) {
			for _, pt := range plaintexts {
				iv, ct, err := Seal(suite, key, pt, nil)
				require.NoError(t, err)

				out, err := Open(suite, key, iv[:], ct, nil)
				require.NoError(t, err)
				assert.Equal(t, len(pt), len(out))
				assert.Equal(t, string(pt), string(out))
			}
		})
	}
}

func TestOpenDetectsTampering(t *testing.T) {
	key := testKey(t)

	for _, suite := range suites {
		t.Run(suite.String(), func(t *testing.T) {
			iv, ct, err := Seal(suite, key, []byte("attack at dawn"), nil)
			require.NoError(t, err)

			for i := 0; i < len(ct)*8; i++ {
				tampered := append([]byte(nil), ct...)
				tampered[i/8] ^= 1 << (i % 8)
				_, err := Open(suite, key, iv[:], tampered, nil)
				require.ErrorIs(t, err, ErrDecryption, "ciphertext bit %d", i)
			}

			for i := 0; i < IVSize*8; i++ {
				badIV := iv
				badIV[i/8] ^= 1 << (i % 8)
				_, err := Open(suite, key, badIV[:], ct, nil)
				require.ErrorIs(t, err, ErrDecryption, "iv bit %d", i)
			}
		})
	}
}

func TestOpenAdditionalDataMismatch(t *testing.T) {
	key := testKey(t)
	iv, ct, err := Seal(CipherAES256GCM, key, []byte("payload"), []byte("meta-a"))
	require.NoError(t, err)

	_, err = Open(CipherAES256GCM, key, iv[:], ct, []byte("meta-b"))
	assert.ErrorIs(t, err, ErrDecryption)

	_, err = Open(CipherAES256GCM, key, iv[:], ct, nil)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestOpenWrongKey(t *testing.T) {
	iv, ct, err := Seal(CipherAES256GCM, testKey(t), []byte("secret"), nil)
	require.NoError(t, err)

	_, err = Open(CipherAES256GCM, testKey(t), iv[:], ct, nil)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestOpenMalformedInputs(t *testing.T) {
	key := testKey(t)
	iv, ct, err := Seal(CipherAES256GCM, key, []byte("x"), nil)
	require.NoError(t, err)

	_, err = Open(CipherAES256GCM, key, iv[:8], ct, nil)
	assert.ErrorIs(t, err, ErrDecryption)

	_, err = Open(CipherAES256GCM, key, iv[:], ct[:4], nil)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestSealIVFreshness(t *testing.T) {
	key := testKey(t)
	seenIV := make(map[[IVSize]byte]bool)
	seenCT := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		iv, ct, err := Seal(CipherAES256GCM, key, []byte("same plaintext"), nil)
		require.NoError(t, err)
		require.False(t, seenIV[iv], "IV reused at trial %d", i)
		require.False(t, seenCT[string(ct)], "ciphertext repeated at trial %d", i)
		seenIV[iv] = true
		seenCT[string(ct)] = true
	}
}

func TestUnsupportedCipherSuite(t *testing.T) {
	_, _, err := Seal(CipherSuite(42), testKey(t), []byte("x"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedCipher)
	assert.Equal(t, "CipherSuite(42)", CipherSuite(42).String())
}
