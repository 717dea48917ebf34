package persistence

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voxelstream/internal/voxel"
)

// memFS is a minimal in-memory hostio.Filesystem double for tests; it
// skips the real temp-file+rename dance since there's no real filesystem
// to need atomicity from.
type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string][]byte)}
}

func (f *memFS) ReadFile(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, errNotExist
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (f *memFS) WriteFileAtomic(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.files[path] = cp
	return nil
}

func (f *memFS) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	return nil
}

func (f *memFS) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok
}

func (f *memFS) MkdirAll(path string) error { return nil }

type notExistError struct{}

func (notExistError) Error() string { return "file does not exist" }

var errNotExist = notExistError{}

func waitForWrite(t *testing.T, fs *memFS, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fs.Exists(path) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("write to %s never landed", path)
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	fs := newMemFS()
	store := NewSnapshotStore(fs, "/world", "seed_1", 16, 4, 8)
	defer store.Close(true, time.Second)

	coord := voxel.Coord{CX: 1, CY: 2, CZ: 3}
	buf := voxel.NewBuffer(4)
	buf.Materials[0] = 9
	meta := voxel.Meta{SaveMode: voxel.SnapshotBacked, GeneratorVersion: 1}

	store.Enqueue(coord, buf, meta)
	waitForWrite(t, fs, store.path(coord))

	decoded, ok, err := store.Load(coord)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, coord, decoded.Coord)
	require.Equal(t, buf.Materials, decoded.Buf.Materials)
}

func TestSnapshotStoreMissing(t *testing.T) {
	fs := newMemFS()
	store := NewSnapshotStore(fs, "/world", "seed_1", 16, 4, 8)
	defer store.Close(true, time.Second)

	_, ok, err := store.Load(voxel.Coord{CX: 99})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeltaStoreRoundTrip(t *testing.T) {
	fs := newMemFS()
	store := NewDeltaStore(fs, "/world", "seed_1", 16, 16, 8)
	defer store.Close(true, time.Second)

	coord := voxel.Coord{CX: 5, CY: 0, CZ: -2}
	deltas := map[int32]voxel.MaterialID{1: 2, 3: 4}
	store.Enqueue(coord, voxel.Meta{GeneratorVersion: 1}, deltas)
	waitForWrite(t, fs, store.path(coord))

	decoded, ok, err := store.Load(coord)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, deltas, decoded.Deltas)
}

func TestSnapshotStoreDeleteRemovesFile(t *testing.T) {
	fs := newMemFS()
	store := NewSnapshotStore(fs, "/world", "seed_1", 16, 4, 8)
	defer store.Close(true, time.Second)

	coord := voxel.Coord{CX: 1}
	store.Enqueue(coord, voxel.NewBuffer(4), voxel.Meta{})
	waitForWrite(t, fs, store.path(coord))

	require.NoError(t, store.Delete(coord))
	require.False(t, fs.Exists(store.path(coord)))
}

func TestSnapshotStorePathIsRegionSharded(t *testing.T) {
	fs := newMemFS()
	store := NewSnapshotStore(fs, "/world", "seed_1", 16, 4, 8)
	defer store.Close(true, time.Second)

	path := store.path(voxel.Coord{CX: -17, CY: 2, CZ: 20})
	require.Equal(t, "/world/seed_1/chunks/r.-2.1/c.-17.2.20.tvx", path)
}

func TestDeltaStorePathIsRegionSharded(t *testing.T) {
	fs := newMemFS()
	store := NewDeltaStore(fs, "/world", "seed_1", 16, 16, 8)
	defer store.Close(true, time.Second)

	path := store.path(voxel.Coord{CX: 31, CY: 0, CZ: -1})
	require.Equal(t, "/world/seed_1/mods/r.1.-1/m.31.0.-1.tvxm", path)
}
