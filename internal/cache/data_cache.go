package cache

import (
	"sync"

	"voxelstream/internal/voxel"
)

// dataEntry is a deep copy of an evicted chunk's voxel content, kept
// around in case the chunk respawns before persistence would otherwise
// have to regenerate or reload it.
type dataEntry struct {
	Materials []voxel.MaterialID
	Density   []float32
}

// DataCache is a FIFO-evicted cache of evicted chunks' voxel buffers,
// grounded on the cubetopia chunk manager's `cache`/`cacheOrder`
// slice-plus-map unload cache (same insertion-order eviction), adapted
// here to hold materials+density buffers instead of whole chunk objects
// and adding the per-frame insert cap and memory-pressure halving spec.md
// §4.6 requires.
type DataCache struct {
	mu         sync.Mutex
	entries    map[voxel.Coord]dataEntry
	order      []voxel.Coord
	maxEntries int

	insertCapPerFrame int
	insertedThisFrame int
}

// NewDataCache creates a data cache bounded to maxEntries, accepting at
// most insertCapPerFrame new entries per BeginFrame-to-BeginFrame window.
func NewDataCache(maxEntries, insertCapPerFrame int) *DataCache {
	return &DataCache{
		entries:           make(map[voxel.Coord]dataEntry),
		maxEntries:        maxEntries,
		insertCapPerFrame: insertCapPerFrame,
	}
}

// BeginFrame resets the per-frame insert counter; the scheduler calls
// this once at the start of its tick.
func (c *DataCache) BeginFrame() {
	c.mu.Lock()
	c.insertedThisFrame = 0
	c.mu.Unlock()
}

// SetInsertCap updates the per-frame insert cap, e.g. halved under memory
// pressure by the scheduler's adaptive-limit throttling.
func (c *DataCache) SetInsertCap(cap int) {
	c.mu.Lock()
	c.insertCapPerFrame = cap
	c.mu.Unlock()
}

// Insert deep-copies buf into the cache under coord, evicting the oldest
// entry if at capacity. Returns false (no-op) if this frame's insert cap
// has already been spent.
func (c *DataCache) Insert(coord voxel.Coord, buf *voxel.Buffer) bool {
	if buf == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.insertCapPerFrame > 0 && c.insertedThisFrame >= c.insertCapPerFrame {
		return false
	}
	if _, exists := c.entries[coord]; exists {
		return false
	}

	for c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	entry := dataEntry{Materials: append([]voxel.MaterialID(nil), buf.Materials...)}
	if buf.Density != nil {
		entry.Density = append([]float32(nil), buf.Density...)
	}
	c.entries[coord] = entry
	c.order = append(c.order, coord)
	c.insertedThisFrame++
	return true
}

func (c *DataCache) evictOldestLocked() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

// Take removes and returns coord's cached buffer, if present. A hit
// removes the entry (spec.md §4.6: "a hit removes the entry").
func (c *DataCache) Take(coord voxel.Coord, size int32) (*voxel.Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[coord]
	if !ok {
		return nil, false
	}
	delete(c.entries, coord)
	c.removeFromOrderLocked(coord)

	buf := &voxel.Buffer{Size: size, Materials: entry.Materials, Density: entry.Density}
	return buf, true
}

// Invalidate drops coord's cached entry without returning it, used when a
// chunk has persisted deltas that must take precedence over the cached
// pre-edit buffer.
func (c *DataCache) Invalidate(coord voxel.Coord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[coord]; !ok {
		return
	}
	delete(c.entries, coord)
	c.removeFromOrderLocked(coord)
}

func (c *DataCache) removeFromOrderLocked(coord voxel.Coord) {
	for i, k := range c.order {
		if k == coord {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Len reports how many entries are currently cached.
func (c *DataCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
