package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelstream/internal/voxel"
)

func bufWithMaterial(size int32, m voxel.MaterialID) *voxel.Buffer {
	buf := voxel.NewBuffer(size)
	for i := range buf.Materials {
		buf.Materials[i] = m
	}
	return buf
}

func TestDataCacheInsertAndTakeRemovesEntry(t *testing.T) {
	c := NewDataCache(10, 10)
	c.BeginFrame()
	coord := voxel.Coord{CX: 0, CY: 0, CZ: 0}
	require.True(t, c.Insert(coord, bufWithMaterial(2, 1)))
	require.Equal(t, 1, c.Len())

	got, ok := c.Take(coord, 2)
	require.True(t, ok)
	require.Equal(t, voxel.MaterialID(1), got.Materials[0])
	require.Equal(t, 0, c.Len())

	_, ok = c.Take(coord, 2)
	require.False(t, ok)
}

func TestDataCacheFIFOEvictionAtCapacity(t *testing.T) {
	c := NewDataCache(2, 10)
	c.BeginFrame()
	c.Insert(voxel.Coord{CX: 0}, bufWithMaterial(1, 1))
	c.Insert(voxel.Coord{CX: 1}, bufWithMaterial(1, 2))
	c.Insert(voxel.Coord{CX: 2}, bufWithMaterial(1, 3))

	require.Equal(t, 2, c.Len())
	_, ok := c.Take(voxel.Coord{CX: 0}, 1)
	require.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Take(voxel.Coord{CX: 1}, 1)
	require.True(t, ok)
}

func TestDataCachePerFrameInsertCap(t *testing.T) {
	c := NewDataCache(10, 1)
	c.BeginFrame()
	require.True(t, c.Insert(voxel.Coord{CX: 0}, bufWithMaterial(1, 1)))
	require.False(t, c.Insert(voxel.Coord{CX: 1}, bufWithMaterial(1, 2)))

	c.BeginFrame()
	require.True(t, c.Insert(voxel.Coord{CX: 1}, bufWithMaterial(1, 2)))
}

func TestDataCacheInvalidateDropsEntry(t *testing.T) {
	c := NewDataCache(10, 10)
	c.BeginFrame()
	coord := voxel.Coord{CX: 5}
	c.Insert(coord, bufWithMaterial(1, 7))
	c.Invalidate(coord)

	_, ok := c.Take(coord, 1)
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestDataCacheSetInsertCapHalvesUnderMemoryPressure(t *testing.T) {
	c := NewDataCache(10, 4)
	c.SetInsertCap(2)
	c.BeginFrame()
	require.True(t, c.Insert(voxel.Coord{CX: 0}, bufWithMaterial(1, 1)))
	require.True(t, c.Insert(voxel.Coord{CX: 1}, bufWithMaterial(1, 1)))
	require.False(t, c.Insert(voxel.Coord{CX: 2}, bufWithMaterial(1, 1)))
}
