package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeFullFirstEntry(t *testing.T) {
	entries, err := Decode("0:10:0:-;5:2:0:i")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, Entry{S: 0, L: 10, F: 0, J: "-"}, entries[0])
	require.Equal(t, Entry{S: 5, L: 2, F: 0, J: "i"}, entries[1])
}

func TestDecodeInheritance(t *testing.T) {
	entries, err := Decode("10:20:1:o;;;30::2:")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	// entry 1 (empty segment): inherits everything.
	require.Equal(t, entries[0], entries[1])
	require.Equal(t, entries[0], entries[2])
	// entry 3: s and f explicit, l and j inherited.
	require.Equal(t, Entry{S: 30, L: 20, F: 2, J: "o"}, entries[3])
}

func TestDecodeSyntheticInstruction(t *testing.T) {
	entries, err := Decode("0:1:-1:-")
	require.NoError(t, err)
	require.True(t, entries[0].IsSynthetic())
}

func TestDecodeEntryCountMatchesInstructionCount(t *testing.T) {
	// three instructions, three segments
	entries, err := Decode("0:1:0:-;1:1:0:-;2:1:0:-")
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestDecodeTrimsWhitespace(t *testing.T) {
	entries, err := Decode("  0:1:0:-  \n")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDecodeEmpty(t *testing.T) {
	entries, err := Decode("")
	require.NoError(t, err)
	require.Nil(t, entries)
}

func TestDecodeMalformedNumber(t *testing.T) {
	_, err := Decode("x:1:0:-")
	require.Error(t, err)
	var merr *MalformedError
	require.ErrorAs(t, err, &merr)
}
