package svo

import (
	"sort"
	"sync"

	"voxelstream/internal/meshing"
)

// Cache holds synthesized SVO meshes keyed by a content hash the caller
// supplies (the scheduler hashes the chunk's materials and voxel size):
// a chunk whose content hash is already cached doesn't need its octree
// rebuilt and re-walked. Ref-counting and eviction ordering mirror
// cache.MeshCache; kept as a separate type because SVO entries also carry
// the built Node tree (useful for a future point-query collider, distinct
// from the near-field mesh cache's pure-mesh payload).
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]*svoEntry
	seq     uint64
}

type svoEntry struct {
	Root        *Node
	Mesh        meshing.MeshData
	Handle      any
	RefCount    int
	VertexCount int
	lastUsedSeq uint64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]*svoEntry)}
}

// Get returns a cache hit and bumps its ref count.
func (c *Cache) Get(key uint64) (meshing.MeshData, any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return meshing.MeshData{}, nil, false
	}
	e.RefCount++
	c.seq++
	e.lastUsedSeq = c.seq
	return e.Mesh, e.Handle, true
}

// Insert adds a freshly built octree+mesh pair under key with an initial
// ref count of 1, or bumps the ref count if key already exists.
func (c *Cache) Insert(key uint64, root *Node, mesh meshing.MeshData, handle any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.RefCount++
		c.seq++
		e.lastUsedSeq = c.seq
		return
	}
	c.seq++
	c.entries[key] = &svoEntry{
		Root:        root,
		Mesh:        mesh,
		Handle:      handle,
		RefCount:    1,
		VertexCount: len(mesh.Positions) / 3,
		lastUsedSeq: c.seq,
	}
}

// Release drops one reference to key's entry.
func (c *Cache) Release(key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.RefCount == 0 {
		return
	}
	e.RefCount--
}

// EvictUpTo evicts at most max zero-ref entries, largest vertex count
// first and then least-recently-used, calling destroy on each evicted
// entry's handle. Returns how many were evicted.
func (c *Cache) EvictUpTo(max int, destroy func(handle any)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if max <= 0 {
		return 0
	}

	type candidate struct {
		key uint64
		e   *svoEntry
	}
	var candidates []candidate
	for k, e := range c.entries {
		if e.RefCount == 0 {
			candidates = append(candidates, candidate{k, e})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].e.VertexCount != candidates[j].e.VertexCount {
			return candidates[i].e.VertexCount > candidates[j].e.VertexCount
		}
		return candidates[i].e.lastUsedSeq < candidates[j].e.lastUsedSeq
	})

	evicted := 0
	for i := 0; i < len(candidates) && evicted < max; i++ {
		cand := candidates[i]
		delete(c.entries, cand.key)
		if destroy != nil && cand.e.Handle != nil {
			destroy(cand.e.Handle)
		}
		evicted++
	}
	return evicted
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
