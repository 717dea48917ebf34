package scheduler

import (
	"github.com/rs/zerolog/log"

	"voxelstream/internal/cache"
	"voxelstream/internal/generator"
	"voxelstream/internal/hostio"
	"voxelstream/internal/lod"
	"voxelstream/internal/meshing"
	"voxelstream/internal/persistence"
	"voxelstream/internal/priority"
	"voxelstream/internal/profiling"
	"voxelstream/internal/svo"
	"voxelstream/internal/voxel"
)

// View is the viewer's position and facing for this frame, in world units.
type View struct {
	PlayerPos [3]float32
	Forward   [3]float32
	FOVCosine float32
}

// FrameContext is everything the scheduler's Tick needs from the host for
// one frame: the current view and whether streaming work is paused.
type FrameContext struct {
	View   View
	Paused bool
}

// pendingIntegration holds a completed mesh result waiting for its turn
// through ProcessIntegration's per-frame cap.
type pendingIntegration struct {
	coord voxel.Coord
	epoch uint64
	mesh  meshing.MeshData
	key   uint64
}

// Scheduler is the sole owner and mutator of every named queue/set in the
// chunk lifecycle. One instance drives one world; Tick runs once per
// frame on the control thread and never blocks on worker output.
type Scheduler struct {
	cfg     Config
	baseCfg Config

	clock    hostio.Clock
	memProbe hostio.MemoryProbe
	meshAlloc hostio.MeshAllocator
	colliderAlloc hostio.ColliderAllocator

	sampler      generator.HeightSampler
	genConfig    generator.Config

	snapshots *persistence.SnapshotStore
	deltas    *persistence.DeltaStore

	dataCache *cache.DataCache
	meshCache *cache.MeshCache
	svoCache  *svo.Cache

	resolver *lod.Resolver
	pending  *priority.Queue

	genPool  *genPool
	meshPool *meshing.WorkerPool

	active     map[voxel.Coord]*voxel.Chunk
	pendingSet map[voxel.Coord]struct{}
	pendingFIFO []voxel.Coord

	preloadSet  map[voxel.Coord]struct{}
	preloadFIFO []voxel.Coord

	genJobsSet  map[voxel.Coord]struct{}
	meshJobsSet map[voxel.Coord]struct{}
	meshJobKeys map[voxel.Coord]uint64 // content hash submitted with the in-flight job, by coord
	meshKeys    map[voxel.Coord]uint64 // content hash of the mesh currently applied to the active chunk
	svoKeys     map[voxel.Coord]uint64 // content hash of the SVO mesh currently applied, by coord
	meshResults chan meshing.Result

	integrationQueue []pendingIntegration

	removeQueue []voxel.Coord

	remeshSet   map[voxel.Coord]struct{}
	remeshFIFO  []voxel.Coord

	// integratedOnce marks a coord once its first mesh has been applied,
	// so integrateMeshes only fans out neighbor remesh
	// requests the first time a chunk becomes visible.
	integratedOnce map[voxel.Coord]struct{}
	lodCurrent     map[voxel.Coord]lod.Current

	epoch                 uint64
	lastRebuildCenter     voxel.Coord
	lastEpochCenter       voxel.Coord
	lastEpochForward      [3]float32
	lastEpochBumpSeconds  float64
	haveEpochHistory      bool

	lastGenMs         float64
	lastMeshMs        float64
	lastIntegrationMs float64
	throttled         bool
	throttledSince    float64
}

// NewScheduler wires every dependency together. genWorkers/meshWorkers/
// queueSize size the two async job pools.
func NewScheduler(
	cfg Config,
	clock hostio.Clock,
	memProbe hostio.MemoryProbe,
	meshAlloc hostio.MeshAllocator,
	colliderAlloc hostio.ColliderAllocator,
	sampler generator.HeightSampler,
	genConfig generator.Config,
	snapshots *persistence.SnapshotStore,
	deltas *persistence.DeltaStore,
	resolver *lod.Resolver,
	genWorkers, meshWorkers, queueSize int,
) *Scheduler {
	s := &Scheduler{
		cfg:           cfg,
		baseCfg:       cfg,
		clock:         clock,
		memProbe:      memProbe,
		meshAlloc:     meshAlloc,
		colliderAlloc: colliderAlloc,
		sampler:       sampler,
		genConfig:     genConfig,
		snapshots:     snapshots,
		deltas:        deltas,
		dataCache:     cache.NewDataCache(cfg.DataCacheMaxEntries, cfg.DataCacheInsertCapPerFrame),
		meshCache:     cache.NewMeshCache(),
		svoCache:      svo.NewCache(),
		resolver:      resolver,
		pending: priority.NewQueue(priority.ScoreWeights{
			DistanceWeight: 1, DotWeight: 1,
			SurfaceBand: float32(cfg.ChunkSize), BaseHeight: float32(cfg.ChunkSize) * float32(cfg.ColumnChunks) / 2,
		}),
		genPool:     newGenPool(genWorkers, queueSize, genConfig, sampler),
		meshPool:    meshing.NewWorkerPool(meshWorkers, queueSize),
		active:      make(map[voxel.Coord]*voxel.Chunk),
		pendingSet:  make(map[voxel.Coord]struct{}),
		preloadSet:  make(map[voxel.Coord]struct{}),
		genJobsSet:     make(map[voxel.Coord]struct{}),
		meshJobsSet:    make(map[voxel.Coord]struct{}),
		meshJobKeys:    make(map[voxel.Coord]uint64),
		meshKeys:       make(map[voxel.Coord]uint64),
		svoKeys:        make(map[voxel.Coord]uint64),
		meshResults:    make(chan meshing.Result, queueSize),
		remeshSet:      make(map[voxel.Coord]struct{}),
		integratedOnce: make(map[voxel.Coord]struct{}),
		lodCurrent:     make(map[voxel.Coord]lod.Current),
	}
	return s
}

// Shutdown stops the worker pools. Call once, after the final Tick.
func (s *Scheduler) Shutdown() {
	s.genPool.shutdown()
	s.meshPool.Shutdown()
}

// Tick runs the fixed per-frame ordering (spec §4.1): begin budget ->
// adapt limits -> drain completed gen jobs -> drain completed mesh jobs
// -> integrate meshes -> maintain radius -> process pending -> process
// preload -> process removals -> process remesh -> LOD transitions ->
// occlusion tick -> physics tick.
func (s *Scheduler) Tick(fc FrameContext) {
	defer profiling.Track("scheduler.Tick")()
	profiling.ResetFrame()

	budgetStart := s.clock.NowSeconds()
	s.dataCache.BeginFrame()

	s.adaptLimits()

	s.drainGenJobs()
	s.drainMeshJobs()
	s.integrateMeshes()

	if !fc.Paused {
		s.maintainRadius(fc.View)
	}

	s.processPending(fc.View)
	s.processPreload(fc.View)
	s.processRemovals()
	s.processRemesh()
	s.lodTransitions(fc.View)
	s.occlusionTick(fc.View)
	s.physicsTick(fc.View)

	elapsed := s.clock.NowSeconds() - budgetStart
	if budget := s.cfg.StreamingBudget.Seconds(); budget > 0 && elapsed > budget {
		log.Warn().Float64("elapsed_s", elapsed).Float64("budget_s", budget).
			Msg("scheduler: frame exceeded streaming budget")
	}
}
