package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voxelstream/internal/generator"
	"voxelstream/internal/hostadapters"
	"voxelstream/internal/lod"
	"voxelstream/internal/meshing"
	"voxelstream/internal/persistence"
	"voxelstream/internal/voxel"
)

type constSampler struct{ h float32 }

func (c constSampler) HeightAt(wx, wz int32) float32 { return c.h }

type zeroMemoryProbe struct{}

func (zeroMemoryProbe) ProcessMB() float64  { return 0 }
func (zeroMemoryProbe) GraphicsMB() float64 { return 0 }

func testResolver() *lod.Resolver {
	return lod.NewResolver([]lod.LodLevel{
		{MinDist: 0, MaxDist: 4, LodStep: 1, Mode: lod.ModeMesh},
		{MinDist: 5, MaxDist: 100, LodStep: 2, Mode: lod.ModeMesh},
	}, lod.LodLevel{MinDist: 0, MaxDist: 100, LodStep: 1, Mode: lod.ModeMesh}, 1)
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ChunkSize = 8
	cfg.ColumnChunks = 1
	cfg.LoadRadius = 1
	cfg.PreloadRadius = 1
	cfg.UnloadRadius = 2

	dir := t.TempDir()
	fs := hostadapters.OSFilesystem{}
	snapshots := persistence.NewSnapshotStore(fs, dir, "testworld", cfg.RegionSize, cfg.ChunkSize, 16)
	deltas := persistence.NewDeltaStore(fs, dir, "testworld", cfg.RegionSize, cfg.ChunkSize, 16)

	s := NewScheduler(
		cfg,
		hostadapters.NewSystemClock(),
		zeroMemoryProbe{},
		hostadapters.NullMeshAllocator{},
		hostadapters.NullColliderAllocator{},
		constSampler{h: 4},
		generator.Config{DefaultMaterial: 1, GeneratorVersion: 1},
		snapshots,
		deltas,
		testResolver(),
		2, 2, 32,
	)
	t.Cleanup(s.Shutdown)
	return s
}

func runTicksUntil(t *testing.T, s *Scheduler, fc FrameContext, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.Tick(fc)
		return cond()
	}, 2*time.Second, time.Millisecond)
}

func TestTickSpawnsChunksAroundPlayer(t *testing.T) {
	s := newTestScheduler(t)
	fc := FrameContext{View: View{PlayerPos: [3]float32{0, 0, 0}, Forward: [3]float32{0, 0, 1}, FOVCosine: 0.5}}

	runTicksUntil(t, s, fc, func() bool { return len(s.active) > 0 })
	require.NotZero(t, len(s.active))

	origin := voxel.Coord{CX: 0, CY: 0, CZ: 0}
	_, ok := s.active[origin]
	require.True(t, ok, "origin chunk should be active once spawned")
}

func TestTickAppliesMeshToSpawnedChunk(t *testing.T) {
	s := newTestScheduler(t)
	fc := FrameContext{View: View{PlayerPos: [3]float32{0, 0, 0}, Forward: [3]float32{0, 0, 1}, FOVCosine: 0.5}}

	runTicksUntil(t, s, fc, func() bool {
		c, ok := s.active[voxel.Coord{}]
		return ok && c.MeshHandle != nil
	})

	chunk := s.active[voxel.Coord{}]
	mh, ok := chunk.MeshHandle.(*hostadapters.NullMesh)
	require.True(t, ok)
	require.False(t, mh.Destroyed)
}

func TestRemoveChunkReleasesMeshCacheReference(t *testing.T) {
	s := newTestScheduler(t)
	fc := FrameContext{View: View{PlayerPos: [3]float32{0, 0, 0}, Forward: [3]float32{0, 0, 1}, FOVCosine: 0.5}}

	runTicksUntil(t, s, fc, func() bool {
		_, tracked := s.meshKeys[voxel.Coord{}]
		return tracked
	})

	require.Equal(t, 1, s.meshCache.Len())
	s.removeChunk(voxel.Coord{}, false)
	_, tracked := s.meshKeys[voxel.Coord{}]
	require.False(t, tracked)
}

func TestApplyMeshCacheHitDoesNotDoubleCountReference(t *testing.T) {
	s := newTestScheduler(t)
	coord := voxel.Coord{}
	chunk := voxel.NewChunk(coord, voxel.NewBuffer(s.cfg.ChunkSize))
	s.active[coord] = chunk

	mesh := meshing.MeshData{Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0}}
	key := uint64(123)

	// A freshly-built mesh inserts with ref count 1.
	s.applyMesh(coord, chunk, mesh, nil, key, false)
	require.Equal(t, 1, s.meshCache.Len())

	// A later remesh that hashes to the same key (e.g. a spurious
	// neighbor-triggered remesh whose content didn't actually change)
	// takes the cache-hit path: Get bumps the ref count, and applyMesh
	// must recognize coord already held this key and cancel the bump
	// rather than stack a second reference on top of it.
	got, handle, hit := s.meshCache.Get(key)
	require.True(t, hit)
	s.applyMesh(coord, chunk, got, handle, key, true)

	s.removeChunk(coord, false)

	destroyed := 0
	evicted := s.meshCache.EvictUpTo(10, func(any) { destroyed++ })
	require.Equal(t, 1, evicted, "one Release from removeChunk must be enough to make the entry evictable")
}

func TestRemoveChunkPromotesDeltaBackedWhenGeneratorVersionChanges(t *testing.T) {
	s := newTestScheduler(t)
	coord := voxel.Coord{CX: 5}
	chunk := voxel.NewChunk(coord, voxel.NewBuffer(s.cfg.ChunkSize))
	chunk.Meta = voxel.Meta{
		SaveMode:         voxel.DeltaBacked,
		GeneratorVersion: s.genConfig.GeneratorVersion - 1,
		DeltaCount:       1,
	}
	chunk.Deltas = map[int32]voxel.MaterialID{0: 7}
	s.active[coord] = chunk

	s.removeChunk(coord, false)

	require.Eventually(t, func() bool {
		_, ok, err := s.snapshots.Load(coord)
		return err == nil && ok
	}, time.Second, time.Millisecond, "a generator-version mismatch must promote the chunk to a full snapshot")

	require.Eventually(t, func() bool {
		_, ok, err := s.deltas.Load(coord)
		return err == nil && !ok
	}, time.Second, time.Millisecond, "promotion must delete the now-redundant delta file")
}

func TestRemoveChunkDeletesEmptyDeltaFile(t *testing.T) {
	s := newTestScheduler(t)
	coord := voxel.Coord{CX: 6}
	s.deltas.Enqueue(coord, voxel.Meta{GeneratorVersion: s.genConfig.GeneratorVersion}, map[int32]voxel.MaterialID{0: 1})
	require.Eventually(t, func() bool {
		_, ok, err := s.deltas.Load(coord)
		return err == nil && ok
	}, time.Second, time.Millisecond, "setup write must land before the assertion")

	chunk := voxel.NewChunk(coord, voxel.NewBuffer(s.cfg.ChunkSize))
	chunk.Meta = voxel.Meta{SaveMode: voxel.DeltaBacked, DeltaCount: 0}
	s.active[coord] = chunk

	s.removeChunk(coord, false)

	require.Eventually(t, func() bool {
		_, ok, err := s.deltas.Load(coord)
		return err == nil && !ok
	}, time.Second, time.Millisecond, "a chunk with no remaining deltas must have its stale delta file cleaned up")
}

func TestRemoveChunkAlwaysSaveWritesSnapshotAndDropsDelta(t *testing.T) {
	s := newTestScheduler(t)
	s.cfg.AlwaysSaveSnapshots = true
	coord := voxel.Coord{CX: 7}
	s.deltas.Enqueue(coord, voxel.Meta{GeneratorVersion: s.genConfig.GeneratorVersion}, map[int32]voxel.MaterialID{0: 1})
	require.Eventually(t, func() bool {
		_, ok, err := s.deltas.Load(coord)
		return err == nil && ok
	}, time.Second, time.Millisecond, "setup write must land before the assertion")

	chunk := voxel.NewChunk(coord, voxel.NewBuffer(s.cfg.ChunkSize))
	chunk.Meta = voxel.Meta{SaveMode: voxel.GeneratedOnly}
	s.active[coord] = chunk

	s.removeChunk(coord, false)

	require.Eventually(t, func() bool {
		_, ok, err := s.snapshots.Load(coord)
		return err == nil && ok
	}, time.Second, time.Millisecond, "always-save must write a snapshot regardless of save mode")

	require.Eventually(t, func() bool {
		_, ok, err := s.deltas.Load(coord)
		return err == nil && !ok
	}, time.Second, time.Millisecond, "always-save must drop any delta file")
}

func TestMaintainRadiusQueuesRemovalsOutsideKeepRadius(t *testing.T) {
	s := newTestScheduler(t)
	far := voxel.Coord{CX: 100, CY: 0, CZ: 100}
	s.active[far] = voxel.NewChunk(far, voxel.NewBuffer(s.cfg.ChunkSize))

	s.maintainRadius(View{PlayerPos: [3]float32{0, 0, 0}, Forward: [3]float32{0, 0, 1}})

	found := false
	for _, c := range s.removeQueue {
		if c == far {
			found = true
		}
	}
	require.True(t, found, "far chunk should be queued for removal")
}

func TestEpochBumpClearsPendingButKeepsRemesh(t *testing.T) {
	s := newTestScheduler(t)
	s.pendingSet[voxel.Coord{CX: 1}] = struct{}{}
	s.pendingFIFO = []voxel.Coord{{CX: 1}}
	s.queueRemesh(voxel.Coord{CX: 2})
	s.haveEpochHistory = true
	s.lastEpochCenter = voxel.Coord{}
	s.lastEpochForward = [3]float32{0, 0, 1}
	s.lastEpochBumpSeconds = -1000

	s.maybeBumpEpoch(voxel.Coord{CX: 1000}, [3]float32{0, 0, 1})

	require.Equal(t, 0, len(s.pendingSet))
	require.Equal(t, uint64(1), s.epoch)
	_, stillQueued := s.remeshSet[voxel.Coord{CX: 2}]
	require.True(t, stillQueued, "remesh membership must survive an epoch bump")
}
