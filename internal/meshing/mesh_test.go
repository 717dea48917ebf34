package meshing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelstream/internal/voxel"
)

func TestMeshScenarioS1(t *testing.T) {
	buf := voxel.NewBuffer(2)
	for x := int32(0); x < 2; x++ {
		for z := int32(0); z < 2; z++ {
			buf.Set(x, 0, z, 1)
		}
	}

	md := Mesh(buf, [6]*voxel.Buffer{}, 1, 65535, 0)
	require.Equal(t, 24, len(md.Positions)/3)
	require.Equal(t, 24, len(md.Colors))
	require.Equal(t, 16, md.IndexFormat)
	require.Equal(t, 36, len(md.Indices16))
}

func TestMeshIsDeterministic(t *testing.T) {
	buf := voxel.NewBuffer(4)
	for i := range buf.Materials {
		if i%3 == 0 {
			buf.Materials[i] = 2
		}
	}
	neighbors := [6]*voxel.Buffer{}
	a := Mesh(buf, neighbors, 1, 65535, 0)
	b := Mesh(buf, neighbors, 1, 65535, 0)
	require.Equal(t, a.Positions, b.Positions)
	require.Equal(t, a.Indices16, b.Indices16)
	require.Equal(t, a.Colors, b.Colors)
}

func TestMeshFullyEnclosedChunkProducesNoFaces(t *testing.T) {
	buf := voxel.NewBuffer(2)
	for i := range buf.Materials {
		buf.Materials[i] = 1
	}
	// All six neighbors fully solid too, so every boundary is interior.
	solidSlab := voxel.NewBuffer(2)
	for i := range solidSlab.Materials {
		solidSlab.Materials[i] = 1
	}
	neighbors := [6]*voxel.Buffer{solidSlab, solidSlab, solidSlab, solidSlab, solidSlab, solidSlab}

	md := Mesh(buf, neighbors, 1, 65535, 0)
	require.Equal(t, 0, len(md.Positions))
}

func TestMeshLodDownsamplesBeforeMeshing(t *testing.T) {
	buf := voxel.NewBuffer(4)
	for x := int32(0); x < 4; x++ {
		for z := int32(0); z < 4; z++ {
			buf.Set(x, 0, z, 1)
		}
	}
	md := Mesh(buf, [6]*voxel.Buffer{}, 2, 65535, 0)
	// Downsampled to a 2x2x2 buffer with only y=0 solid: same topology as
	// S1, so the same 6-quad, 24-vertex shape, just scaled by lodStep.
	require.Equal(t, 24, len(md.Positions)/3)
	maxCoord := float32(0)
	for _, p := range md.Positions {
		if p > maxCoord {
			maxCoord = p
		}
	}
	require.Equal(t, float32(4), maxCoord) // scaled by lodStep=2 across a 2-wide downsampled axis
}
