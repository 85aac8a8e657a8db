package runid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(s string) (uuid.UUID, error) {
	raw, err := encoding.DecodeString(s)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.FromBytes(raw)
}

func TestForTrialDeterministic(t *testing.T) {
	assert.Equal(t, ForTrial(42, 0), ForTrial(42, 0))
	assert.NotEqual(t, ForTrial(42, 0), ForTrial(42, 1))
	assert.NotEqual(t, ForTrial(42, 0), ForTrial(43, 0))
}

func TestForTrialValid(t *testing.T) {
	seen := make(map[string]bool)
	for i := range 200 {
		id := ForTrial(7, i)
		require.Len(t, id, Length)
		require.NoError(t, Validate(id), id)
		require.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true

		u, err := decode(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), u.Version())
		assert.Equal(t, uuid.RFC4122, u.Variant())
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	u := uuid.MustParse("0190c5a4-6b2e-7d3f-8a1b-2c3d4e5f6071")
	s := Encode(u)
	require.NoError(t, Validate(s))

	back, err := decode(s)
	require.NoError(t, err)
	assert.Equal(t, u, back)
}

func TestValidate(t *testing.T) {
	valid := ForTrial(1, 1)

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid ID", valid, false},
		{"too short", valid[:20], true},
		{"too long", valid + "00", true},
		{"invalid character", valid[:Length-2] + "u" + valid[Length-1:], true},
		{"uppercase not allowed", strings.ToUpper(valid[:Length-1]) + valid[Length-1:], strings.ToUpper(valid[:Length-1]) != valid[:Length-1]},
		{"trailing bits set", valid[:Length-1] + "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAlphabet(t *testing.T) {
	if len(alphabet) != 32 {
		t.Errorf("alphabet should have 32 characters, got %d", len(alphabet))
	}

	seen := make(map[rune]bool)
	for _, char := range alphabet {
		if seen[char] {
			t.Errorf("duplicate character in alphabet: %c", char)
		}
		seen[char] = true
	}

	for _, char := range "ilou" {
		if strings.ContainsRune(alphabet, char) {
			t.Errorf("alphabet should not contain %c", char)
		}
	}
}
