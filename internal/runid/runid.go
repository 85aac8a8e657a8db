// Package runid names trials with short reproducible IDs.
//
// An ID is a random (version 4) UUID drawn from a stream derived from the
// run seed and trial index, encoded as 26 lowercase Crockford base32
// characters. The same seed and trial always produce the same ID, so a
// trial in a report can be replayed from its seed alone.
package runid

import (
	"encoding/base32"
	"fmt"

	"github.com/google/uuid"

	"github.com/lox/congestion/internal/randutil"
)

// Crockford's base32 alphabet, lowercase
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an encoded ID.
const Length = 26

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// ForTrial returns the ID of trial i in a run seeded with seed.
func ForTrial(seed int64, i int) string {
	id, err := uuid.NewRandomFromReader(randutil.NewReader(randutil.Derive(seed, i)))
	if err != nil {
		// ChaCha8 reads never fail
		panic("runid: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID in the 26-character form.
func Encode(id uuid.UUID) string {
	return encoding.EncodeToString(id[:])
}

// Validate checks that s is a well-formed encoded ID.
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("trial ID must be exactly %d characters, got %d", Length, len(s))
	}
	for i := 0; i < len(s); i++ {
		if indexOf(s[i]) < 0 {
			return fmt.Errorf("invalid character %q at position %d", s[i], i)
		}
	}
	// 128 bits leave the two low bits of the final character unused
	if indexOf(s[Length-1])&0x3 != 0 {
		return fmt.Errorf("trial ID has non-zero trailing bits")
	}
	return nil
}

func indexOf(c byte) int {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return i
		}
	}
	return -1
}
