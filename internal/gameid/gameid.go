// Package gameid issues identifiers for game sessions. IDs are UUIDv7
// values rendered as 26 characters of Crockford base32, so they sort by
// creation time and are safe to paste into chat and logs.
package gameid

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of every ID
const Length = 26

// New returns a fresh ID.
func New() string {
	return Encode(uuid.Must(uuid.NewV7()))
}

// Encode renders a 128-bit UUID, left-padded to 130 bits, five bits per
// character.
func Encode(id uuid.UUID) string {
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])

	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

// Decode parses an ID back into its UUID.
func Decode(s string) (uuid.UUID, error) {
	if err := Validate(s); err != nil {
		return uuid.UUID{}, err
	}

	var hi, lo uint64
	for i := 0; i < Length; i++ {
		v := uint64(strings.IndexByte(alphabet, s[i]))
		hi = hi<<5 | lo>>59
		lo = lo<<5 | v
	}

	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], hi)
	binary.BigEndian.PutUint64(id[8:], lo)
	return id, nil
}

// Validate checks that s is a well-formed ID.
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(s))
	}
	// The two padding bits keep the first character in 0-7.
	if s[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", s[0])
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", s[i], i)
		}
	}
	return nil
}
