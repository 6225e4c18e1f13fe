package gameid

import (
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := New()
	assert.Len(t, id, Length)
	require.NoError(t, Validate(id))

	u, err := Decode(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		require.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
}

func TestNewTimeOrdered(t *testing.T) {
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, New())
		time.Sleep(2 * time.Millisecond)
	}
	assert.True(t, sort.StringsAreSorted(ids), "%v", ids)
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []uuid.UUID{
		{},
		uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"),
		uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057"),
	}
	for _, u := range tests {
		s := Encode(u)
		require.NoError(t, Validate(s), u.String())
		back, err := Decode(s)
		require.NoError(t, err)
		assert.Equal(t, u, back)
	}

	assert.Equal(t, "00000000000000000000000000", Encode(uuid.UUID{}))
	assert.Equal(t, "7zzzzzzzzzzzzzzzzzzzzzzzzz", Encode(uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"too short", "0123"},
		{"too long", "000000000000000000000000000"},
		{"first character overflow", "80000000000000000000000000"},
		{"excluded letter", "0000000000000000000000000i"},
		{"upper case", "0000000000000000000000000A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate(tt.id))
		})
	}
}
