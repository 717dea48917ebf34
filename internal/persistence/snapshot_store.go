package persistence

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"voxelstream/internal/codec"
	"voxelstream/internal/hostio"
	"voxelstream/internal/voxel"
)

// SnapshotStore persists full chunk buffers under the region-sharded
// layout spec.md §6 lays out:
// <root>/<world_id>/chunks/r.<rx>.<rz>/c.<cx>.<cy>.<cz>.tvx. Writes are
// handed to a single async writer goroutine (O4: at most one in-flight
// write per path); loads are synchronous since a cache miss sits directly
// on the scheduler's generate-or-load critical path.
type SnapshotStore struct {
	fs         hostio.Filesystem
	root       string
	worldID    string
	regionSize int32
	chunkSize  int32
	w          *writer
}

// NewSnapshotStore creates a snapshot store rooted at root/worldID,
// creating it if missing. regionSize groups chunk coordinates into the
// r.<rx>.<rz> directories spec.md §6 shards chunk files under. queueCap
// bounds the writer's backlog; once full, further Enqueue calls are
// dropped rather than blocking the caller.
func NewSnapshotStore(fs hostio.Filesystem, root, worldID string, regionSize, chunkSize int32, queueCap int) *SnapshotStore {
	base := filepath.Join(root, worldID, "chunks")
	if err := fs.MkdirAll(base); err != nil {
		log.Warn().Err(err).Str("dir", base).Msg("persistence: could not create snapshot directory")
	}
	return &SnapshotStore{fs: fs, root: root, worldID: worldID, regionSize: regionSize, chunkSize: chunkSize, w: newWriter(fs, queueCap)}
}

func (s *SnapshotStore) regionDir(coord voxel.Coord) string {
	rx := floorDiv(coord.CX, s.regionSize)
	rz := floorDiv(coord.CZ, s.regionSize)
	return filepath.Join(s.root, s.worldID, "chunks", fmt.Sprintf("r.%d.%d", rx, rz))
}

func (s *SnapshotStore) path(coord voxel.Coord) string {
	return filepath.Join(s.regionDir(coord), fmt.Sprintf("c.%d.%d.%d.tvx", coord.CX, coord.CY, coord.CZ))
}

// Enqueue schedules a snapshot write. Non-blocking: if the writer's queue
// is full the write is dropped (writesDropped is incremented) and the
// chunk simply keeps whatever it last had on disk until the next
// promotion attempt retries.
func (s *SnapshotStore) Enqueue(coord voxel.Coord, buf *voxel.Buffer, meta voxel.Meta) {
	dir := s.regionDir(coord)
	if err := s.fs.MkdirAll(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("persistence: could not create region directory")
	}
	data := codec.EncodeSnapshot(coord, buf, meta)
	writesQueued.WithLabelValues("snapshot").Inc()
	if !s.w.enqueue(writeJob{path: s.path(coord), data: data, kind: "snapshot"}) {
		writesDropped.WithLabelValues("snapshot").Inc()
		log.Warn().Str("coord", coord.String()).Msg("persistence: snapshot writer queue full, dropping write")
	}
}

// Load reads and decodes a chunk's snapshot, if one exists. ok is false
// with a nil error when no file is present or the recorded chunk size no
// longer matches (treated as absent per spec.md §6's hybrid promotion
// rules, not as corruption).
func (s *SnapshotStore) Load(coord voxel.Coord) (codec.DecodedSnapshot, bool, error) {
	path := s.path(coord)
	if !s.fs.Exists(path) {
		loadsTotal.WithLabelValues("snapshot", "miss").Inc()
		return codec.DecodedSnapshot{}, false, nil
	}
	raw, err := s.fs.ReadFile(path)
	if err != nil {
		loadsTotal.WithLabelValues("snapshot", "miss").Inc()
		return codec.DecodedSnapshot{}, false, err
	}
	decoded, err := codec.DecodeSnapshot(raw, s.chunkSize)
	if errors.Is(err, codec.ErrSizeMismatch) {
		loadsTotal.WithLabelValues("snapshot", "size_mismatch").Inc()
		return codec.DecodedSnapshot{}, false, nil
	}
	if err != nil {
		loadsTotal.WithLabelValues("snapshot", "corrupted").Inc()
		log.Error().Err(err).Str("path", path).Msg("persistence: snapshot decode failed")
		return codec.DecodedSnapshot{}, false, err
	}
	loadsTotal.WithLabelValues("snapshot", "hit").Inc()
	return decoded, true, nil
}

// Delete removes a chunk's snapshot file, if present. Used when a chunk
// transitions back to GeneratedOnly (no edits left worth persisting).
func (s *SnapshotStore) Delete(coord voxel.Coord) error {
	path := s.path(coord)
	if !s.fs.Exists(path) {
		return nil
	}
	return s.fs.Remove(path)
}

// Close stops the writer goroutine. If drain is true, pending writes are
// flushed first (bounded by timeout); otherwise they are discarded.
func (s *SnapshotStore) Close(drain bool, timeout time.Duration) {
	s.w.close(drain, timeout)
}
