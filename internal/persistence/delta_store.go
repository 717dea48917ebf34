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

// DeltaStore persists a chunk's sparse edit set under the region-sharded
// layout spec.md §6 lays out:
// <root>/<world_id>/mods/r.<rx>.<rz>/m.<cx>.<cy>.<cz>.tvxm. It mirrors
// SnapshotStore but writes the much smaller delta-only record spec.md
// §4.7 calls for below the snapshot-promotion threshold.
type DeltaStore struct {
	fs         hostio.Filesystem
	root       string
	worldID    string
	regionSize int32
	chunkSize  int32
	w          *writer
}

// NewDeltaStore creates a delta store rooted at root/worldID, creating it
// if missing. regionSize groups chunk coordinates into the r.<rx>.<rz>
// directories spec.md §6 shards mod files under.
func NewDeltaStore(fs hostio.Filesystem, root, worldID string, regionSize, chunkSize int32, queueCap int) *DeltaStore {
	base := filepath.Join(root, worldID, "mods")
	if err := fs.MkdirAll(base); err != nil {
		log.Warn().Err(err).Str("dir", base).Msg("persistence: could not create delta directory")
	}
	return &DeltaStore{fs: fs, root: root, worldID: worldID, regionSize: regionSize, chunkSize: chunkSize, w: newWriter(fs, queueCap)}
}

func (s *DeltaStore) regionDir(coord voxel.Coord) string {
	rx := floorDiv(coord.CX, s.regionSize)
	rz := floorDiv(coord.CZ, s.regionSize)
	return filepath.Join(s.root, s.worldID, "mods", fmt.Sprintf("r.%d.%d", rx, rz))
}

func (s *DeltaStore) path(coord voxel.Coord) string {
	return filepath.Join(s.regionDir(coord), fmt.Sprintf("m.%d.%d.%d.tvxm", coord.CX, coord.CY, coord.CZ))
}

// Enqueue schedules a full rewrite of a chunk's delta file. The whole map
// is re-encoded every time (delta files are small enough that appending
// entries incrementally isn't worth the complexity); entries are written
// in sorted order so repeated writes of the same map are byte-identical.
func (s *DeltaStore) Enqueue(coord voxel.Coord, meta voxel.Meta, deltas map[int32]voxel.MaterialID) {
	dir := s.regionDir(coord)
	if err := s.fs.MkdirAll(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("persistence: could not create region directory")
	}
	data := codec.EncodeDelta(coord, s.chunkSize, meta, deltas)
	writesQueued.WithLabelValues("delta").Inc()
	if !s.w.enqueue(writeJob{path: s.path(coord), data: data, kind: "delta"}) {
		writesDropped.WithLabelValues("delta").Inc()
		log.Warn().Str("coord", coord.String()).Msg("persistence: delta writer queue full, dropping write")
	}
}

// Load reads and decodes a chunk's delta file, if one exists.
func (s *DeltaStore) Load(coord voxel.Coord) (codec.DecodedDelta, bool, error) {
	path := s.path(coord)
	if !s.fs.Exists(path) {
		loadsTotal.WithLabelValues("delta", "miss").Inc()
		return codec.DecodedDelta{}, false, nil
	}
	raw, err := s.fs.ReadFile(path)
	if err != nil {
		loadsTotal.WithLabelValues("delta", "miss").Inc()
		return codec.DecodedDelta{}, false, err
	}
	decoded, err := codec.DecodeDelta(raw, s.chunkSize)
	if errors.Is(err, codec.ErrSizeMismatch) {
		loadsTotal.WithLabelValues("delta", "size_mismatch").Inc()
		return codec.DecodedDelta{}, false, nil
	}
	if err != nil {
		loadsTotal.WithLabelValues("delta", "corrupted").Inc()
		log.Error().Err(err).Str("path", path).Msg("persistence: delta decode failed")
		return codec.DecodedDelta{}, false, err
	}
	loadsTotal.WithLabelValues("delta", "hit").Inc()
	return decoded, true, nil
}

// Delete removes a chunk's delta file, if present. Used when a chunk is
// promoted to a full snapshot (the delta record becomes redundant).
func (s *DeltaStore) Delete(coord voxel.Coord) error {
	path := s.path(coord)
	if !s.fs.Exists(path) {
		return nil
	}
	return s.fs.Remove(path)
}

// Close stops the writer goroutine, draining pending writes first when
// drain is true.
func (s *DeltaStore) Close(drain bool, timeout time.Duration) {
	s.w.close(drain, timeout)
}
