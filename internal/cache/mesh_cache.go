package cache

import (
	"sort"
	"sync"

	"voxelstream/internal/meshing"
)

// meshEntry is one cached mesh, ref-counted so the same geometry can be
// shared across identical-content chunks (e.g. a flat plain repeats the
// same materials+neighbor pattern often).
type meshEntry struct {
	Mesh        meshing.MeshData
	Handle      any // host mesh handle, opaque to this package
	RefCount    int
	VertexCount int
	lastUsedSeq uint64
}

// MeshCache maps a content hash (ContentHash) to a shared, ref-counted
// mesh. Grounded on the eviction-order and ref-count bookkeeping ideas in
// the pack's LRU-style chunk caches, generalized to rank eviction
// candidates by largest vertex count first, then least-recently-used.
type MeshCache struct {
	mu      sync.Mutex
	entries map[uint64]*meshEntry
	seq     uint64
}

func NewMeshCache() *MeshCache {
	return &MeshCache{entries: make(map[uint64]*meshEntry)}
}

// Get returns a cache hit and bumps its ref count, or reports a miss.
func (c *MeshCache) Get(key uint64) (meshing.MeshData, any, bool) {
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

// Insert adds a freshly built mesh under key with an initial ref count of
// 1 (the caller that just built it). If key already exists, its ref
// count is bumped instead (the caller is treated as a new reference to
// the existing entry).
func (c *MeshCache) Insert(key uint64, mesh meshing.MeshData, handle any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.RefCount++
		c.seq++
		e.lastUsedSeq = c.seq
		return
	}
	c.seq++
	c.entries[key] = &meshEntry{
		Mesh:        mesh,
		Handle:      handle,
		RefCount:    1,
		VertexCount: len(mesh.Positions) / 3,
		lastUsedSeq: c.seq,
	}
}

// Release drops one reference to key's entry. The entry becomes eligible
// for eviction once its ref count reaches zero, but isn't destroyed until
// EvictUpTo actually selects it (eviction is cap-rate-limited per frame).
func (c *MeshCache) Release(key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.RefCount == 0 {
		return
	}
	e.RefCount--
}

// EvictUpTo evicts at most max zero-ref entries, ordered by largest
// vertex count first and then least-recently-used, calling destroy on
// each evicted entry's handle. Returns how many were evicted.
func (c *MeshCache) EvictUpTo(max int, destroy func(handle any)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if max <= 0 {
		return 0
	}

	type candidate struct {
		key uint64
		e   *meshEntry
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
func (c *MeshCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
