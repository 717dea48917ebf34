package svo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelstream/internal/voxel"
)

func TestBuildFromBufferUniformBufferCollapsesToSingleLeaf(t *testing.T) {
	buf := voxel.NewBuffer(4)
	for i := range buf.Materials {
		buf.Materials[i] = 3
	}
	root := BuildFromBuffer(buf)
	require.True(t, root.IsLeaf())
	require.Equal(t, voxel.MaterialID(3), root.Material)
	require.Equal(t, int32(4), root.Size)
}

func TestBuildFromBufferAllAirCollapsesToEmptyLeaf(t *testing.T) {
	buf := voxel.NewBuffer(4)
	root := BuildFromBuffer(buf)
	require.True(t, root.IsLeaf())
	require.True(t, root.IsEmpty())
}

func TestBuildFromBufferMixedContentSubdivides(t *testing.T) {
	buf := voxel.NewBuffer(4)
	buf.Set(0, 0, 0, 1)
	root := BuildFromBuffer(buf)
	require.False(t, root.IsLeaf())

	var countLeaves func(n *Node) int
	countLeaves = func(n *Node) int {
		if n == nil {
			return 0
		}
		if n.IsLeaf() {
			return 1
		}
		total := 0
		for _, c := range n.Children {
			total += countLeaves(c)
		}
		return total
	}
	// The octant containing (0,0,0) is non-uniform and fully subdivides
	// into 8 size-1 leaves; the other 7 octants are uniform air and each
	// collapse to a single leaf: 8 + 7 = 15.
	require.Equal(t, 15, countLeaves(root))
}

func TestBuildFromBufferSingleVoxelAlwaysLeaf(t *testing.T) {
	buf := voxel.NewBuffer(1)
	buf.Set(0, 0, 0, 7)
	root := BuildFromBuffer(buf)
	require.True(t, root.IsLeaf())
	require.Equal(t, voxel.MaterialID(7), root.Material)
}

func TestSampleAtDescendsToCorrectLeaf(t *testing.T) {
	buf := voxel.NewBuffer(4)
	buf.Set(3, 3, 3, 9)
	root := BuildFromBuffer(buf)
	require.Equal(t, voxel.MaterialID(9), root.sampleAt(3, 3, 3))
	require.Equal(t, voxel.MaterialAir, root.sampleAt(0, 0, 0))
}

func TestSampleAtOutOfBoundsIsAir(t *testing.T) {
	buf := voxel.NewBuffer(2)
	root := BuildFromBuffer(buf)
	require.Equal(t, voxel.MaterialAir, root.sampleAt(-1, 0, 0))
	require.Equal(t, voxel.MaterialAir, root.sampleAt(5, 5, 5))
}
