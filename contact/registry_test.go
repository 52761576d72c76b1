package contact

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/shadowlink/crypto"
	"github.com/opd-ai/shadowlink/directory"
	"github.com/opd-ai/shadowlink/limits"
)

type mockTimeProvider struct {
	currentTime time.Time
}

func (m *mockTimeProvider) Now() time.Time { return m.currentTime }

// mockDirectory answers from a fixed table.
type mockDirectory struct {
	entries map[string]directory.Result
	calls   atomic.Int32
}

func (d *mockDirectory) Resolve(_ context.Context, code string) (directory.Result, error) {
	d.calls.Add(1)
	res, ok := d.entries[code]
	if !ok {
		return directory.Result{}, directory.ErrCodeNotFound
	}
	return res, nil
}

func newPublicKey(t *testing.T) string {
	t.Helper()
	priv, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	pub, err := crypto.ExportPublicKey(priv.PublicKey())
	require.NoError(t, err)
	return pub
}

func newX25519PublicKey(t *testing.T) string {
	t.Helper()
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(priv.PublicKey())
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(der)
}

func TestNewRegistryHoldsAssistant(t *testing.T) {
	clock := &mockTimeProvider{currentTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg := NewRegistry("self", nil, clock)

	require.Equal(t, 1, reg.Len())
	c, ok := reg.Get(AssistantContactID)
	require.True(t, ok)
	assert.Equal(t, AssistantDisplayName, c.DisplayName)
	assert.True(t, c.IsAutomated)
	assert.Nil(t, c.PublicKey)
	assert.Equal(t, clock.currentTime, c.AddedAt)
}

func TestResolveAndLink(t *testing.T) {
	self := newPublicKey(t)
	bob := newPublicKey(t)
	dir := &mockDirectory{entries: map[string]directory.Result{
		"B0B000": {Code: "B0B000", PublicKey: bob, DisplayName: "BOB"},
		"SELF00": {Code: "SELF00", PublicKey: self, DisplayName: "ME"},
		"BADKEY": {Code: "BADKEY", PublicKey: "garbage", DisplayName: "EVE"},
	}}
	reg := NewRegistry(self, dir, nil)

	var added []string
	reg.OnContactAdded(func(c Contact) { added = append(added, c.DisplayName) })

	c, created, err := reg.ResolveAndLink(context.Background(), " b0b000 ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, bob, c.ID)
	assert.Equal(t, "BOB", c.DisplayName)
	assert.NotNil(t, c.PublicKey)
	assert.False(t, c.IsAutomated)

	again, created, err := reg.ResolveAndLink(context.Background(), "B0B000")
	require.NoError(t, err)
	assert.False(t, created, "second link returns existing contact")
	assert.Equal(t, c.ID, again.ID)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"BOB"}, added)

	_, _, err = reg.ResolveAndLink(context.Background(), "SELF00")
	assert.ErrorIs(t, err, directory.ErrSelfLink)

	_, _, err = reg.ResolveAndLink(context.Background(), "NOPE00")
	assert.ErrorIs(t, err, directory.ErrCodeNotFound)

	_, _, err = reg.ResolveAndLink(context.Background(), "BADKEY")
	assert.ErrorIs(t, err, crypto.ErrMalformedKey)

	calls := dir.calls.Load()
	_, _, err = reg.ResolveAndLink(context.Background(), "??")
	assert.ErrorIs(t, err, limits.ErrInvalid)
	assert.Equal(t, calls, dir.calls.Load(), "invalid codes never reach the directory")

	assert.Equal(t, 2, reg.Len())
}

func TestResolveAndLinkWithoutDirectory(t *testing.T) {
	reg := NewRegistry("self", nil, nil)
	_, _, err := reg.ResolveAndLink(context.Background(), "ABCDEF")
	assert.ErrorIs(t, err, directory.ErrCodeNotFound)
}

func TestAutoLink(t *testing.T) {
	self := newPublicKey(t)
	reg := NewRegistry(self, nil, nil)
	sender := newPublicKey(t)

	c, created, err := reg.AutoLink(sender, "CARL")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "CARL", c.DisplayName)

	_, created, err = reg.AutoLink(sender, "SOMEONE ELSE")
	require.NoError(t, err)
	assert.False(t, created)
	got, _ := reg.Get(sender)
	assert.Equal(t, "CARL", got.DisplayName)

	_, _, err = reg.AutoLink(self, "ME")
	assert.ErrorIs(t, err, directory.ErrSelfLink)

	_, _, err = reg.AutoLink(AssistantContactID, "BOT")
	assert.ErrorIs(t, err, ErrReservedID)

	_, _, err = reg.AutoLink("not-a-key", "X")
	assert.ErrorIs(t, err, crypto.ErrMalformedKey)

	_, _, err = reg.AutoLink(newX25519PublicKey(t), "X")
	assert.ErrorIs(t, err, crypto.ErrMalformedKey, "only P-256 keys are accepted")

	assert.Equal(t, 2, reg.Len())
}

func TestAutoLinkFallbackName(t *testing.T) {
	reg := NewRegistry("self", nil, nil)

	for _, name := range []string{"", "   ", "bad\x00name"} {
		c, created, err := reg.AutoLink(newPublicKey(t), name)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, UnknownDisplayName, c.DisplayName)
	}
}

func TestAutoLinkConcurrentIsIdempotent(t *testing.T) {
	reg := NewRegistry("self", nil, nil)
	sender := newPublicKey(t)

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := reg.AutoLink(sender, "DUP")
			if err == nil && ok {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, 2, reg.Len())
}

func TestListPreservesInsertionOrder(t *testing.T) {
	reg := NewRegistry("self", nil, nil)

	names := []string{"ZED", "AMY", "MAX"}
	for _, n := range names {
		_, _, err := reg.AutoLink(newPublicKey(t), n)
		require.NoError(t, err)
	}

	var got []string
	for _, c := range reg.List() {
		got = append(got, c.DisplayName)
	}
	assert.Equal(t, append([]string{AssistantDisplayName}, names...), got)
}

func TestBackfillDisplayName(t *testing.T) {
	reg := NewRegistry("self", nil, nil)
	unnamed := newPublicKey(t)
	named := newPublicKey(t)

	_, _, err := reg.AutoLink(unnamed, "")
	require.NoError(t, err)
	_, _, err = reg.AutoLink(named, "KEEP")
	require.NoError(t, err)

	assert.True(t, reg.BackfillDisplayName(unnamed, "DANA"))
	c, _ := reg.Get(unnamed)
	assert.Equal(t, "DANA", c.DisplayName)

	assert.False(t, reg.BackfillDisplayName(named, "OTHER"))
	assert.False(t, reg.BackfillDisplayName(AssistantContactID, "OTHER"))
	assert.False(t, reg.BackfillDisplayName("missing", "OTHER"))
	assert.False(t, reg.BackfillDisplayName(unnamed, ""))
}

func TestInsertRejectsEmptyID(t *testing.T) {
	reg := NewRegistry("self", nil, nil)
	_, _, err := reg.Insert(Contact{DisplayName: "X"})
	assert.ErrorIs(t, err, limits.ErrEmpty)
}
