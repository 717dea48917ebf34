package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelstream/internal/voxel"
)

func TestContentHashIsDeterministic(t *testing.T) {
	materials := []voxel.MaterialID{1, 2, 3}
	var neighbors [6]*voxel.Buffer
	h1 := ContentHash(materials, neighbors, 1, nil)
	h2 := ContentHash(materials, neighbors, 1, nil)
	require.Equal(t, h1, h2)
}

func TestContentHashChangesWithMaterials(t *testing.T) {
	var neighbors [6]*voxel.Buffer
	h1 := ContentHash([]voxel.MaterialID{1, 2, 3}, neighbors, 1, nil)
	h2 := ContentHash([]voxel.MaterialID{1, 2, 4}, neighbors, 1, nil)
	require.NotEqual(t, h1, h2)
}

func TestContentHashChangesWithPresentNeighbor(t *testing.T) {
	materials := []voxel.MaterialID{1}
	var none [6]*voxel.Buffer
	var withOne [6]*voxel.Buffer
	withOne[0] = voxel.NewBuffer(2)

	h1 := ContentHash(materials, none, 1, nil)
	h2 := ContentHash(materials, withOne, 1, nil)
	require.NotEqual(t, h1, h2)
}

func TestContentHashChangesWithLodStep(t *testing.T) {
	materials := []voxel.MaterialID{1}
	var neighbors [6]*voxel.Buffer
	h1 := ContentHash(materials, neighbors, 1, nil)
	h2 := ContentHash(materials, neighbors, 2, nil)
	require.NotEqual(t, h1, h2)
}

func TestContentHashChangesWithDensityPresence(t *testing.T) {
	materials := []voxel.MaterialID{1}
	var neighbors [6]*voxel.Buffer
	h1 := ContentHash(materials, neighbors, 1, nil)
	h2 := ContentHash(materials, neighbors, 1, []float32{0.5})
	require.NotEqual(t, h1, h2)
}
