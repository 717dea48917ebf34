package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelstream/internal/meshing"
)

func TestMeshCacheInsertAndGet(t *testing.T) {
	c := NewMeshCache()
	md := meshing.MeshData{Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0}}

	c.Insert(42, md, "handle-a")
	got, handle, ok := c.Get(42)
	require.True(t, ok)
	require.Equal(t, "handle-a", handle)
	require.Equal(t, md.Positions, got.Positions)
}

func TestMeshCacheMissReportsFalse(t *testing.T) {
	c := NewMeshCache()
	_, _, ok := c.Get(1)
	require.False(t, ok)
}

func TestMeshCacheRefCountedEntryNotEvictedWhileReferenced(t *testing.T) {
	c := NewMeshCache()
	c.Insert(1, meshing.MeshData{}, "h1")
	c.Get(1) // bump ref count to 2

	destroyed := 0
	n := c.EvictUpTo(10, func(any) { destroyed++ })
	require.Equal(t, 0, n)
	require.Equal(t, 0, destroyed)
	require.Equal(t, 1, c.Len())
}

func TestMeshCacheEvictsZeroRefLargestVertexCountFirst(t *testing.T) {
	c := NewMeshCache()
	small := meshing.MeshData{Positions: make([]float32, 3*4)}
	big := meshing.MeshData{Positions: make([]float32, 3*100)}
	c.Insert(1, small, "small")
	c.Insert(2, big, "big")
	c.Release(1)
	c.Release(2)

	var order []any
	n := c.EvictUpTo(1, func(h any) { order = append(order, h) })
	require.Equal(t, 1, n)
	require.Equal(t, []any{"big"}, order)
	require.Equal(t, 1, c.Len())
}

func TestMeshCacheEvictsLRUWhenVertexCountsTie(t *testing.T) {
	c := NewMeshCache()
	md := meshing.MeshData{Positions: make([]float32, 3*4)}
	c.Insert(1, md, "first")
	c.Insert(2, md, "second")
	c.Release(1)
	c.Release(2)
	// touch "first" so "second" becomes the least recently used
	c.Get(1)
	c.Release(1)

	var order []any
	c.EvictUpTo(1, func(h any) { order = append(order, h) })
	require.Equal(t, []any{"second"}, order)
}

func TestMeshCacheEvictCapLimitsPerCallEvictions(t *testing.T) {
	c := NewMeshCache()
	for i := uint64(0); i < 5; i++ {
		c.Insert(i, meshing.MeshData{}, i)
		c.Release(i)
	}
	n := c.EvictUpTo(2, nil)
	require.Equal(t, 2, n)
	require.Equal(t, 3, c.Len())
}
