package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyEdits_NoEdits(t *testing.T) {
	source := []byte("unchanged")
	out, err := ApplyEdits(source, nil)
	require.NoError(t, err)
	require.Equal(t, source, out)
}

func TestApplyEdits_Delete(t *testing.T) {
	out, err := ApplyEdits([]byte("keep DROP keep"), []Edit{{Start: 5, End: 10}})
	require.NoError(t, err)
	require.Equal(t, "keep keep", string(out))
}

func TestApplyEdits_Replace(t *testing.T) {
	out, err := ApplyEdits([]byte("a [[B]] c"), []Edit{{Start: 2, End: 7, Replacement: []byte("_B_")}})
	require.NoError(t, err)
	require.Equal(t, "a _B_ c", string(out))
}

func TestApplyEdits_MultipleOutOfOrder(t *testing.T) {
	// Supplied in source order; must be applied back-to-front internally.
	out, err := ApplyEdits([]byte("one two three"), []Edit{
		{Start: 0, End: 3, Replacement: []byte("1")},
		{Start: 8, End: 13, Replacement: []byte("3")},
	})
	require.NoError(t, err)
	require.Equal(t, "1 two 3", string(out))
}

func TestApplyEdits_OverlapRejected(t *testing.T) {
	_, err := ApplyEdits([]byte("abcdef"), []Edit{
		{Start: 0, End: 4},
		{Start: 2, End: 6},
	})
	require.Error(t, err)
}

func TestApplyEdits_OutOfBoundsRejected(t *testing.T) {
	_, err := ApplyEdits([]byte("ab"), []Edit{{Start: 0, End: 5}})
	require.Error(t, err)
}
