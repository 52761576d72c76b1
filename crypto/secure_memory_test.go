package crypto

import (
	"bytes"
	"testing"
)

func TestSecureWipe(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	if err := SecureWipe(data); err != nil {
		t.Fatalf("SecureWipe failed: %v", err)
	}
	if !bytes.Equal(data, make([]byte, 5)) {
		t.Errorf("expected zeroed data, got %v", data)
	}

	if err := SecureWipe(nil); err == nil {
		t.Error("expected error wiping nil data")
	}
}

func TestWipeSymmetricKey(t *testing.T) {
	key := SymmetricKey{1, 2, 3}
	WipeSymmetricKey(&key)
	if key != (SymmetricKey{}) {
		t.Errorf("key was not wiped: %x", key)
	}

	// nil must be tolerated
	WipeSymmetricKey(nil)
}
