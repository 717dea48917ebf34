package scheduler

import (
	"math"

	"github.com/rs/zerolog/log"

	"voxelstream/internal/cache"
	"voxelstream/internal/hostio"
	"voxelstream/internal/meshing"
	"voxelstream/internal/voxel"
)

// meshingJobFrom builds a meshing.Job from already-cloned inputs. The
// caller owns buf/neighbors exclusively (invariant I3); the worker never
// touches live scheduler state.
func meshingJobFrom(coord voxel.Coord, epoch uint64, buf *voxel.Buffer, neighbors [6]*voxel.Buffer,
	lodStep int32, maxMaterialIndex, fallbackMaterial voxel.MaterialID, resultChan chan meshing.Result) meshing.Job {
	return meshing.Job{
		Coord:            coord,
		Buf:              buf,
		Neighbors:        neighbors,
		LodStep:          lodStep,
		MaxMaterialIndex: maxMaterialIndex,
		FallbackMaterial: fallbackMaterial,
		Epoch:            epoch,
		ResultChan:       resultChan,
	}
}

// uploadMesh pushes mesh's geometry to chunk's host mesh handle
// (allocating one on first use) and attaches a collider. Shared by the
// greedy-mesh and SVO integration paths; cache bookkeeping is each
// path's own responsibility since they track separate caches.
func (s *Scheduler) uploadMesh(coord voxel.Coord, chunk *voxel.Chunk, mesh meshing.MeshData) {
	if chunk.MeshHandle == nil {
		chunk.MeshHandle = s.meshAlloc.CreateMesh()
	}
	mh, ok := chunk.MeshHandle.(hostio.MeshHandle)
	if !ok {
		return
	}

	indices := mesh.Indices32
	if mesh.IndexFormat == 16 {
		indices = make([]uint32, len(mesh.Indices16))
		for i, v := range mesh.Indices16 {
			indices[i] = uint32(v)
		}
	}
	if err := mh.Replace(mesh.Positions, indices, mesh.Normals, mesh.Colors, mesh.IndexFormat); err != nil {
		log.Warn().Err(err).Str("coord", coord.String()).Msg("scheduler: mesh upload failed")
	}

	if chunk.ColliderHandle == nil && s.colliderAlloc != nil {
		chunk.ColliderHandle = s.colliderAlloc.CreateCollider()
	}
	if ch, ok := chunk.ColliderHandle.(hostio.ColliderHandle); ok {
		ch.Attach(mh)
	}
}

// applyMesh uploads a greedy mesh and records key as the mesh cache entry
// now referenced by this chunk so removeChunk can release it later.
// fromCacheHit distinguishes the two ways a ref for key was just
// acquired: true means the caller already called meshCache.Get (which
// bumps the ref count on a hit); false means mesh was just built by a
// worker and still needs meshCache.Insert to register it (Insert also
// bumps the ref count, whether the key is new or a concurrent job beat
// this one to it).
func (s *Scheduler) applyMesh(coord voxel.Coord, chunk *voxel.Chunk, mesh meshing.MeshData, handle any, key uint64, fromCacheHit bool) {
	s.uploadMesh(coord, chunk, mesh)

	if !fromCacheHit {
		s.meshCache.Insert(key, mesh, handle)
	}

	prev, tracked := s.meshKeys[coord]
	switch {
	case tracked && prev == key:
		// The Get or Insert above just added a reference for this call,
		// but coord already held exactly one reference to key — release
		// the redundant one so the count doesn't drift upward forever.
		s.meshCache.Release(key)
	case tracked:
		s.meshCache.Release(prev)
	}
	s.meshKeys[coord] = key
}

// spawnChunk installs buf as the active chunk at coord: it first prefers
// a persisted snapshot over the generated/cached buffer (a snapshot means
// the chunk was saved with player edits baked in), then replays any
// sparse delta record on top (spec.md's "safe-spawn patch + delta
// replay"), and finally schedules a mesh job for the freshly active chunk.
func (s *Scheduler) spawnChunk(coord voxel.Coord, generated *voxel.Buffer) {
	buf := generated
	meta := voxel.Meta{GeneratorVersion: s.genConfig.GeneratorVersion, SaveMode: voxel.GeneratedOnly}

	if snap, ok, err := s.snapshots.Load(coord); err == nil && ok {
		buf = snap.Buf
		meta = snap.Meta
	}

	var deltas map[int32]voxel.MaterialID
	if dec, ok, err := s.deltas.Load(coord); err == nil && ok && len(dec.Deltas) > 0 {
		deltas = dec.Deltas
		voxel.ReplayDeltas(buf, deltas)
		meta.GeneratorVersion = dec.Meta.GeneratorVersion
		meta.DeltaCount = int32(len(deltas))
		meta.HasSimulatedData = meta.HasSimulatedData || dec.Meta.HasSimulatedData
		meta.IsStructurallyInvalid = meta.IsStructurallyInvalid || dec.Meta.IsStructurallyInvalid
		if meta.SaveMode == voxel.GeneratedOnly {
			meta.SaveMode = voxel.DeltaBacked
		}
		s.dataCache.Invalidate(coord)
	}

	chunk := voxel.NewChunk(coord, buf)
	chunk.Meta = meta
	chunk.Deltas = deltas
	chunk.Epoch = s.epoch
	s.active[coord] = chunk

	s.scheduleMesh(coord)
}

// scheduleMesh copies coord's chunk inputs (buffer + present neighbor
// boundary slabs) and submits a mesh job, consulting the mesh cache first
// per invariant I4: a cached mesh is only reused when all six neighbors
// are present and not mid-generation.
func (s *Scheduler) scheduleMesh(coord voxel.Coord) {
	chunk, ok := s.active[coord]
	if !ok {
		return
	}

	var neighbors [6]*voxel.Buffer
	allNeighborsReady := true
	for i, nc := range coord.Neighbors() {
		neighbor, active := s.active[nc]
		if !active {
			allNeighborsReady = false
			continue
		}
		if _, generating := s.genJobsSet[nc]; generating {
			allNeighborsReady = false
			continue
		}
		dir := oppositeDir(i)
		neighbors[i] = neighbor.Buffer.FaceSlab(dir)
	}

	key := cache.ContentHash(chunk.Buffer.Materials, neighbors, chunk.LODStep, chunk.Buffer.Density)

	if allNeighborsReady {
		if mesh, handle, hit := s.meshCache.Get(key); hit {
			s.applyMesh(coord, chunk, mesh, handle, key, true)
			return
		}
	}

	s.meshJobsSet[coord] = struct{}{}
	s.meshJobKeys[coord] = key
	job := meshingJobFrom(coord, s.epoch, chunk.Buffer.Clone(), cloneNeighbors(neighbors),
		chunk.LODStep, voxel.MaterialID(s.cfg.MaxMaterialIndex), voxel.MaterialID(s.cfg.FallbackMaterial), s.meshResults)
	if !s.meshPool.SubmitJob(job) {
		delete(s.meshJobsSet, coord)
		delete(s.meshJobKeys, coord)
		log.Warn().Str("coord", coord.String()).Msg("scheduler: mesh queue full, dropping job")
	}
}

func cloneNeighbors(in [6]*voxel.Buffer) [6]*voxel.Buffer {
	var out [6]*voxel.Buffer
	for i, b := range in {
		if b != nil {
			out[i] = b.Clone()
		}
	}
	return out
}

// oppositeDir maps a neighbor-direction index to the boundary slab that
// neighbor must contribute: the face it shares with the chunk being
// meshed is the neighbor's OPPOSITE face (e.g. the -X neighbor's shared
// boundary is that neighbor's own +X slab).
func oppositeDir(dir int) int {
	return dir ^ 1
}

// removeChunk tears down the active chunk at coord: persists it per the
// hybrid promotion policy, releases its mesh cache reference, destroys
// its host handles, and optionally parks its buffer in the data cache.
func (s *Scheduler) removeChunk(coord voxel.Coord, parkInDataCache bool) {
	chunk, ok := s.active[coord]
	if !ok {
		return
	}
	delete(s.active, coord)

	s.persistOnUnload(coord, chunk)

	if key, tracked := s.meshKeys[coord]; tracked {
		s.meshCache.Release(key)
		delete(s.meshKeys, coord)
	}
	if key, tracked := s.svoKeys[coord]; tracked {
		s.svoCache.Release(key)
		delete(s.svoKeys, coord)
	}
	delete(s.lodCurrent, coord)
	if chunk.ColliderHandle != nil {
		if ch, ok := chunk.ColliderHandle.(interface{ Detach() }); ok {
			ch.Detach()
		}
	}

	if parkInDataCache {
		s.dataCache.Insert(coord, chunk.Buffer)
	}
}

// persistOnUnload implements the hybrid promotion policy: always-save
// configurations write a snapshot and drop any delta file outright; an
// already-SnapshotBacked chunk just gets rewritten; a chunk with no
// accumulated deltas has its (possibly stale) delta file cleaned up; and
// a DeltaBacked chunk is promoted to a full snapshot once its edit set
// grows too costly to keep replaying, or once the delta record can no
// longer be trusted to reconstruct the chunk faithfully. Anything left
// over after those checks is cheap enough to keep as a delta.
func (s *Scheduler) persistOnUnload(coord voxel.Coord, chunk *voxel.Chunk) {
	meta := chunk.Meta

	switch {
	case s.cfg.AlwaysSaveSnapshots:
		s.snapshots.Enqueue(coord, chunk.Buffer, meta)
		s.deltas.Delete(coord)
	case meta.SaveMode == voxel.SnapshotBacked:
		s.snapshots.Enqueue(coord, chunk.Buffer, meta)
	case meta.DeltaCount == 0:
		s.deltas.Delete(coord)
	case s.shouldPromoteToSnapshot(meta):
		s.snapshots.Enqueue(coord, chunk.Buffer, meta)
		s.deltas.Delete(coord)
	case len(chunk.Deltas) > 0:
		s.deltas.Enqueue(coord, meta, chunk.Deltas)
	}
}

// shouldPromoteToSnapshot reports whether a DeltaBacked chunk's delta
// record is no longer trustworthy or cheap enough to keep: the world's
// generator moved on since this chunk was generated (replaying deltas
// over a new generator's output could reconstruct the wrong base),
// simulation state or structural corruption makes a delta replay
// insufficient, or the edit set has simply grown past the configured
// fraction of the chunk's voxel count.
func (s *Scheduler) shouldPromoteToSnapshot(meta voxel.Meta) bool {
	if meta.GeneratorVersion != s.genConfig.GeneratorVersion {
		return true
	}
	if meta.HasSimulatedData || meta.IsStructurallyInvalid {
		return true
	}
	voxelCount := int64(s.cfg.ChunkSize) * int64(s.cfg.ChunkSize) * int64(s.cfg.ChunkSize)
	threshold := int64(math.Floor(float64(voxelCount) * s.cfg.DeltaPromoteThreshold))
	return int64(meta.DeltaCount) > threshold
}
