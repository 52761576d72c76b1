package crypto

import (
	"crypto/subtle"
	"errors"
	"runtime"
)

// SecureWipe overwrites sensitive bytes with zeros. It returns an error if
// the slice is nil.
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("cannot wipe nil data")
	}

	zeros := make([]byte, len(data))
	subtle.ConstantTimeCopy(1, data, zeros)

	// Keep the overwrite observable so the compiler cannot drop it.
	runtime.KeepAlive(data)
	return nil
}

// ZeroBytes is SecureWipe without the error, for use in defers.
func ZeroBytes(data []byte) {
	_ = SecureWipe(data)
}

// WipeSymmetricKey erases a derived key in place.
func WipeSymmetricKey(key *SymmetricKey) {
	if key == nil {
		return
	}
	ZeroBytes(key[:])
}
