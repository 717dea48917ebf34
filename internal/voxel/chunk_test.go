package voxel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyDeltaTracksCountAndPromotesSaveMode(t *testing.T) {
	c := NewChunk(Coord{}, NewBuffer(4))
	require.Equal(t, GeneratedOnly, c.Meta.SaveMode)

	c.ApplyDelta(0, 3)
	require.Equal(t, DeltaBacked, c.Meta.SaveMode)
	require.Equal(t, int32(1), c.Meta.DeltaCount)
	require.Equal(t, MaterialID(3), c.Buffer.Materials[0])

	c.ApplyDelta(1, 5)
	require.Equal(t, int32(2), c.Meta.DeltaCount)

	// Re-applying an already-edited index doesn't grow the set.
	c.ApplyDelta(0, 9)
	require.Equal(t, int32(2), c.Meta.DeltaCount)
	require.Equal(t, MaterialID(9), c.Buffer.Materials[0])
}

func TestApplyDeltaPreservesSnapshotBackedSaveMode(t *testing.T) {
	c := NewChunk(Coord{}, NewBuffer(4))
	c.Meta.SaveMode = SnapshotBacked

	c.ApplyDelta(0, 2)

	require.Equal(t, SnapshotBacked, c.Meta.SaveMode, "a snapshot-backed chunk stays snapshot-backed across edits")
}
