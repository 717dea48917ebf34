package codec

import (
	"sort"

	"voxelstream/internal/voxel"
)

// Delta magic "TVXM" and the current on-disk version (spec.md §6). Only
// the current version round-trips; older header layouts are treated as
// unsupported rather than partially parsed.
const (
	deltaMagic   uint32 = 0x5456584D
	deltaVersion uint16 = 3
)

// flag bits packed into the delta header's u16 flags field.
const (
	deltaFlagCompressed     uint16 = 1 << 0
	deltaFlagCompressionLz4 uint16 = 1 << 1
	deltaFlagMaterials16    uint16 = 1 << 2
)

// EncodeDelta serializes a chunk's sparse edit set: magic, version,
// flags, chunk_size, coord, save_mode, meta_flags, generator_version,
// last_sim_tick, delta_count, entry_count, the raw/compressed body
// lengths, a CRC32 of the uncompressed body, then the LZ4-compressed body
// (each entry is a 4-byte index followed by a 2-byte material id).
// Entries are written in ascending index order so two encodes of the same
// delta map always produce byte-identical output (round-trip law R4).
func EncodeDelta(coord voxel.Coord, chunkSize int32, meta voxel.Meta, deltas map[int32]voxel.MaterialID) []byte {
	indices := make([]int32, 0, len(deltas))
	for idx := range deltas {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	raw := make([]byte, 0, len(indices)*6)
	for _, idx := range indices {
		raw = appendI32(raw, idx)
		raw = appendU16(raw, deltas[idx])
	}
	crc := CRC32(raw)
	compressed := CompressBlock(raw)

	flags := deltaFlagCompressed | deltaFlagCompressionLz4 | deltaFlagMaterials16
	var metaFlags uint8
	if meta.HasSimulatedData {
		metaFlags |= metaFlagHasSimulatedData
	}
	if meta.IsStructurallyInvalid {
		metaFlags |= metaFlagIsStructurallyInvalid
	}

	out := make([]byte, 0, 48+len(compressed))
	out = appendU32(out, deltaMagic)
	out = appendU16(out, deltaVersion)
	out = appendU16(out, flags)
	out = appendI32(out, chunkSize)
	out = appendI32(out, coord.CX)
	out = appendI32(out, coord.CY)
	out = appendI32(out, coord.CZ)
	out = append(out, byte(meta.SaveMode))
	out = append(out, metaFlags)
	out = appendI32(out, meta.GeneratorVersion)
	out = appendI32(out, meta.LastSimTick)
	out = appendI32(out, meta.DeltaCount)
	out = appendI32(out, int32(len(indices)))
	out = appendI32(out, int32(len(raw)))
	out = appendI32(out, int32(len(compressed)))
	out = appendU32(out, crc)
	out = append(out, compressed...)
	return out
}

// DecodedDelta is the deserialized form of a delta record.
type DecodedDelta struct {
	Coord  voxel.Coord
	Meta   voxel.Meta
	Deltas map[int32]voxel.MaterialID
}

// DecodeDelta parses a record written by EncodeDelta. As with
// DecodeSnapshot, a chunk_size mismatch against expectedChunkSize yields
// ErrSizeMismatch rather than ErrCorrupted.
func DecodeDelta(data []byte, expectedChunkSize int32) (DecodedDelta, error) {
	var out DecodedDelta
	r := newReader(data)

	magic, ok := r.u32()
	if !ok || magic != deltaMagic {
		return out, ErrCorrupted
	}
	version, ok := r.u16()
	if !ok {
		return out, ErrCorrupted
	}
	if version != deltaVersion {
		return out, ErrUnsupportedVersion
	}
	if _, ok := r.u16(); !ok { // flags: every field is fixed-shape in this version
		return out, ErrCorrupted
	}
	size, ok := r.i32()
	if !ok {
		return out, ErrCorrupted
	}
	if expectedChunkSize != 0 && size != expectedChunkSize {
		return out, ErrSizeMismatch
	}
	cx, ok1 := r.i32()
	cy, ok2 := r.i32()
	cz, ok3 := r.i32()
	saveMode, ok4 := r.u8()
	metaFlags, ok5 := r.u8()
	genVersion, ok6 := r.i32()
	lastSimTick, ok7 := r.i32()
	deltaCount, ok8 := r.i32()
	entryCount, ok9 := r.i32()
	rawLen, ok10 := r.i32()
	bodyLen, ok11 := r.i32()
	crc, ok12 := r.u32()
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8 && ok9 && ok10 && ok11 && ok12) {
		return out, ErrCorrupted
	}
	if entryCount < 0 || rawLen < 0 {
		return out, ErrCorrupted
	}
	compressed, ok := r.bytes(int(bodyLen))
	if !ok {
		return out, ErrCorrupted
	}
	raw, err := DecompressBlock(compressed, int(rawLen))
	if err != nil {
		return out, err
	}
	if len(raw) != int(rawLen) || int64(len(raw)) != int64(entryCount)*6 {
		return out, ErrCorrupted
	}
	if CRC32(raw) != crc {
		return out, ErrCorrupted
	}

	deltas := make(map[int32]voxel.MaterialID, entryCount)
	rr := newReader(raw)
	for i := int32(0); i < entryCount; i++ {
		idx, ok1 := rr.i32()
		mat, ok2 := rr.u16()
		if !ok1 || !ok2 {
			return out, ErrCorrupted
		}
		deltas[idx] = mat
	}

	out.Coord = voxel.Coord{CX: cx, CY: cy, CZ: cz}
	out.Meta = voxel.Meta{
		SaveMode:              voxel.SaveMode(saveMode),
		GeneratorVersion:      genVersion,
		LastSimTick:           lastSimTick,
		DeltaCount:            deltaCount,
		HasSimulatedData:      metaFlags&metaFlagHasSimulatedData != 0,
		IsStructurallyInvalid: metaFlags&metaFlagIsStructurallyInvalid != 0,
	}
	out.Deltas = deltas
	return out, nil
}
