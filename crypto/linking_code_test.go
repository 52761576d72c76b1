package crypto

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^[0-9A-Z]{6}$`)

func TestLinkingCodeDeterminism(t *testing.T) {
	priv, err := GenerateKeyPair()
	require.NoError(t, err)
	pub, err := ExportPublicKey(priv.PublicKey())
	require.NoError(t, err)

	first := LinkingCode(pub, "2024-01-01")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, LinkingCode(pub, "2024-01-01"))
	}
	assert.Regexp(t, codePattern, first)
	assert.NotEqual(t, first, LinkingCode(pub, "2024-01-02"), "code must rotate with the day")
}

func TestLinkingCodeKnownAnswers(t *testing.T) {
	tests := []struct {
		name string
		key  string
		day  string
		want string
	}{
		// sha256("abc:2024-01-01")[:4] = e3659b4c = 3815086924 = "1R3EJWS" in base 36
		{"truncated to six", "abc", "2024-01-01", "1R3EJW"},
		{"key prefix", "MFkwEwYHKoZIzj0CAQYIKoZIzj0DAQcDQgAE", "2025-06-15", "1DNLNF"},
		{"other key", "key-1", "2024-01-01", "1LZTY3"},
		// sha256("pad-39:2024-01-01")[:4] = 033cf7f8 = 54327288 = "WCF7C" in base 36
		{"left padded", "pad-39", "2024-01-01", "0WCF7C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkingCode(tt.key, tt.day))
		})
	}
}

func TestLinkingCodeFormat(t *testing.T) {
	for _, key := range []string{"abc", "key-1", "key-2", ""} {
		code := LinkingCode(key, "2024-01-01")
		assert.Len(t, code, LinkingCodeLength)
		assert.Regexp(t, codePattern, code)
	}
}

func TestLinkingCodeAtUsesUTCDay(t *testing.T) {
	pub := "example-public-key"

	// 23:30 at UTC-5 on Jan 1 is already Jan 2 in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	local := time.Date(2024, 1, 1, 23, 30, 0, 0, loc)

	assert.Equal(t, LinkingCode(pub, "2024-01-02"), LinkingCodeAt(pub, local))

	morning := time.Date(2024, 1, 2, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, LinkingCodeAt(pub, morning), LinkingCodeAt(pub, evening), "stable within a UTC day")
}

func TestLinkingCodeDistribution(t *testing.T) {
	seen := make(map[string]int)
	for i := 0; i < 200; i++ {
		priv, err := GenerateKeyPair()
		require.NoError(t, err)
		pub, err := ExportPublicKey(priv.PublicKey())
		require.NoError(t, err)
		seen[LinkingCode(pub, "2024-01-01")]++
	}
	// Codes are collision tolerant, but 200 keys should rarely collide.
	assert.Greater(t, len(seen), 190)
}
