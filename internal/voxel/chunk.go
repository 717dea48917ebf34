package voxel

import "time"

// SaveMode classifies how a chunk's persisted state should be written back.
type SaveMode uint8

const (
	// GeneratedOnly chunks have no player edits and need no file at all.
	GeneratedOnly SaveMode = iota
	// DeltaBacked chunks keep only a sparse set of overrides on top of the
	// deterministic generator output.
	DeltaBacked
	// SnapshotBacked chunks persist their full voxel buffer.
	SnapshotBacked
)

// Meta travels with every persisted chunk record (spec.md ChunkMeta).
type Meta struct {
	SaveMode               SaveMode
	GeneratorVersion       int32
	LastSimTick            int32
	DeltaCount             int32
	HasSimulatedData       bool
	IsStructurallyInvalid  bool
}

// DeltaRecord is a single sparse voxel override: Index = x + N*(y + N*z).
type DeltaRecord struct {
	Index    int32
	Material MaterialID
}

// MeshHandle, ColliderHandle and RendererHandle below are intentionally
// NOT redeclared here: a Chunk only stores the host-provided handles via
// the hostio interfaces, defined in package hostio, to avoid a cyclic
// import (hostio doesn't need to know about voxel.Chunk).

// Chunk is the active in-memory instance for a loaded chunk. Exactly one
// Chunk exists per Coord at a time (invariant I1); it is created by the
// scheduler's SpawnChunk, mutated only by the scheduler and by
// integration, and destroyed by RemoveChunk.
type Chunk struct {
	Coord Coord
	Buffer *Buffer
	Meta   Meta

	// Deltas maps voxel index -> material for edits applied after
	// generation. The latest write wins (map semantics already give us
	// that). nil until the first edit or delta replay.
	Deltas map[int32]MaterialID

	// MeshHandle and ColliderHandle are opaque host resources; stored as
	// `any` here to avoid importing hostio (which would create a cycle
	// since hostio has no reason to import voxel). The scheduler casts
	// them to the concrete hostio interface types it holds.
	MeshHandle     any
	ColliderHandle any

	LODStep      int32 // >= 1
	UsesSVO      bool
	IsLowLOD     bool
	LODStartTime time.Time

	// Epoch is the scheduler epoch stamped when this chunk's last job was
	// scheduled; used for work-dropping (spec.md §4.1).
	Epoch uint64
}

// NewChunk creates a fresh active chunk instance with LODStep defaulted to 1.
func NewChunk(coord Coord, buf *Buffer) *Chunk {
	return &Chunk{
		Coord:   coord,
		Buffer:  buf,
		LODStep: 1,
	}
}

// ApplyDelta records an edit and marks it in the in-memory delta map, also
// writing through to the live buffer if present.
func (c *Chunk) ApplyDelta(index int32, material MaterialID) {
	if c.Deltas == nil {
		c.Deltas = make(map[int32]MaterialID)
	}
	c.Deltas[index] = material
	if c.Buffer != nil && index >= 0 && int(index) < len(c.Buffer.Materials) {
		c.Buffer.Materials[index] = material
	}
	c.Meta.DeltaCount = int32(len(c.Deltas))
	if c.Meta.SaveMode == GeneratedOnly {
		c.Meta.SaveMode = DeltaBacked
	}
}

// ReplayDeltas applies every recorded delta onto buf. Applying the same
// delta set twice is idempotent (D3): re-running simply reassigns the same
// final materials.
func ReplayDeltas(buf *Buffer, deltas map[int32]MaterialID) {
	if buf == nil {
		return
	}
	for idx, mat := range deltas {
		if idx >= 0 && int(idx) < len(buf.Materials) {
			buf.Materials[idx] = mat
		}
	}
}
