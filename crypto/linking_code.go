package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"strings"
	"time"
)

// LinkingCodeLength is the number of characters in a linking code.
const LinkingCodeLength = 6

// DayFormat is the ISO calendar-day layout mixed into the linking code.
const DayFormat = "2006-01-02"

// LinkingCode derives the short code for publicKey on the given ISO day
// (YYYY-MM-DD). The first four bytes of SHA-256(publicKey ":" day) are read
// as a big-endian integer, rendered in upper-case base 36 and cut or
// zero-padded to LinkingCodeLength characters.
func LinkingCode(publicKey, isoDay string) string {
	digest := sha256.Sum256([]byte(publicKey + ":" + isoDay))
	n := binary.BigEndian.Uint32(digest[:4])

	code := strings.ToUpper(strconv.FormatUint(uint64(n), 36))
	if len(code) > LinkingCodeLength {
		code = code[:LinkingCodeLength]
	}
	if len(code) < LinkingCodeLength {
		code = strings.Repeat("0", LinkingCodeLength-len(code)) + code
	}
	return code
}

// LinkingCodeAt returns the code for publicKey on the UTC calendar day of t.
func LinkingCodeAt(publicKey string, t time.Time) string {
	return LinkingCode(publicKey, t.UTC().Format(DayFormat))
}
