package codec

import (
	"encoding/binary"
	"math"

	"voxelstream/internal/voxel"
)

// Snapshot magic "TVXC" and the current on-disk version (spec.md §6).
// Only the current version round-trips; older header layouts are treated
// as unsupported rather than partially parsed.
const (
	snapshotMagic   uint32 = 0x54565843
	snapshotVersion uint16 = 4
)

// flag bits packed into the snapshot header's u16 flags field.
const (
	flagCompressed     uint16 = 1 << 0
	flagHasDensity     uint16 = 1 << 1
	flagCompressionLz4 uint16 = 1 << 2
	flagMaterials16    uint16 = 1 << 3
)

// flag bits packed into the snapshot header's meta_flags byte.
const (
	metaFlagHasSimulatedData      uint8 = 1 << 0
	metaFlagIsStructurallyInvalid uint8 = 1 << 1
)

// EncodeSnapshot serializes a full chunk buffer, matching spec.md §6's
// snapshot record: magic, version, flags, chunk_size, coord, save_mode,
// meta_flags, generator_version, last_sim_tick, delta_count, the
// materials/density/body lengths, a CRC32 of the uncompressed body, then
// the LZ4-compressed body itself (materials array followed by density
// array, when present).
func EncodeSnapshot(coord voxel.Coord, buf *voxel.Buffer, meta voxel.Meta) []byte {
	materialsRaw := make([]byte, 0, len(buf.Materials)*2)
	for _, m := range buf.Materials {
		materialsRaw = appendU16(materialsRaw, m)
	}
	hasDensity := buf.Density != nil
	densityRaw := make([]byte, 0, len(buf.Density)*4)
	if hasDensity {
		for _, d := range buf.Density {
			densityRaw = appendF32(densityRaw, d)
		}
	}
	raw := append(materialsRaw, densityRaw...)
	crc := CRC32(raw)
	compressed := CompressBlock(raw)

	flags := flagCompressed | flagCompressionLz4 | flagMaterials16
	if hasDensity {
		flags |= flagHasDensity
	}
	var metaFlags uint8
	if meta.HasSimulatedData {
		metaFlags |= metaFlagHasSimulatedData
	}
	if meta.IsStructurallyInvalid {
		metaFlags |= metaFlagIsStructurallyInvalid
	}

	out := make([]byte, 0, 64+len(compressed))
	out = appendU32(out, snapshotMagic)
	out = appendU16(out, snapshotVersion)
	out = appendU16(out, flags)
	out = appendI32(out, buf.Size)
	out = appendI32(out, coord.CX)
	out = appendI32(out, coord.CY)
	out = appendI32(out, coord.CZ)
	out = append(out, byte(meta.SaveMode))
	out = append(out, metaFlags)
	out = appendI32(out, meta.GeneratorVersion)
	out = appendI32(out, meta.LastSimTick)
	out = appendI32(out, meta.DeltaCount)
	out = appendI32(out, int32(len(materialsRaw)))
	out = appendI32(out, int32(len(densityRaw)))
	out = appendI32(out, int32(len(compressed)))
	out = appendU32(out, crc)
	out = append(out, compressed...)
	return out
}

// DecodedSnapshot is the deserialized form of a snapshot record.
type DecodedSnapshot struct {
	Coord voxel.Coord
	Buf   *voxel.Buffer
	Meta  voxel.Meta
}

// DecodeSnapshot parses a record written by EncodeSnapshot. If chunkSize
// does not match the caller's currently configured edge size it returns
// ErrSizeMismatch, which callers are expected to treat as "absent" per
// spec.md §6's hybrid-promotion rules rather than as corruption.
func DecodeSnapshot(data []byte, expectedChunkSize int32) (DecodedSnapshot, error) {
	var out DecodedSnapshot
	r := newReader(data)

	magic, ok := r.u32()
	if !ok || magic != snapshotMagic {
		return out, ErrCorrupted
	}
	version, ok := r.u16()
	if !ok {
		return out, ErrCorrupted
	}
	if version != snapshotVersion {
		return out, ErrUnsupportedVersion
	}
	flags, ok := r.u16()
	if !ok {
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
	materialsLen, ok9 := r.i32()
	densityLen, ok10 := r.i32()
	bodyLen, ok11 := r.i32()
	crc, ok12 := r.u32()
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8 && ok9 && ok10 && ok11 && ok12) {
		return out, ErrCorrupted
	}
	if materialsLen < 0 || densityLen < 0 {
		return out, ErrCorrupted
	}
	compressed, ok := r.bytes(int(bodyLen))
	if !ok {
		return out, ErrCorrupted
	}
	rawLen := int(materialsLen) + int(densityLen)
	raw, err := DecompressBlock(compressed, rawLen)
	if err != nil {
		return out, err
	}
	if len(raw) != rawLen {
		return out, ErrCorrupted
	}
	if CRC32(raw) != crc {
		return out, ErrCorrupted
	}

	hasDensity := flags&flagHasDensity != 0
	n := int64(size) * int64(size) * int64(size)
	wantLen := n * 2
	if hasDensity {
		wantLen += n * 4
	}
	if int64(len(raw)) != wantLen {
		return out, ErrCorrupted
	}

	buf := &voxel.Buffer{Size: size, Materials: make([]voxel.MaterialID, n)}
	rr := newReader(raw)
	for i := int64(0); i < n; i++ {
		v, _ := rr.u16()
		buf.Materials[i] = v
	}
	if hasDensity {
		buf.Density = make([]float32, n)
		for i := int64(0); i < n; i++ {
			v, _ := rr.f32()
			buf.Density[i] = v
		}
	}

	out.Coord = voxel.Coord{CX: cx, CY: cy, CZ: cz}
	out.Buf = buf
	out.Meta = voxel.Meta{
		SaveMode:              voxel.SaveMode(saveMode),
		GeneratorVersion:      genVersion,
		LastSimTick:           lastSimTick,
		DeltaCount:            deltaCount,
		HasSimulatedData:      metaFlags&metaFlagHasSimulatedData != 0,
		IsStructurallyInvalid: metaFlags&metaFlagIsStructurallyInvalid != 0,
	}
	return out, nil
}

// --- little-endian helpers shared by snapshot.go and delta.go ---

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendI32(b []byte, v int32) []byte {
	return appendU32(b, uint32(v))
}

func appendU16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendF32(b []byte, v float32) []byte {
	return appendU32(b, math.Float32bits(v))
}

type byteReader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

func (r *byteReader) bytes(n int) ([]byte, bool) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, false
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

func (r *byteReader) u8() (uint8, bool) {
	b, ok := r.bytes(1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (r *byteReader) u16() (uint16, bool) {
	b, ok := r.bytes(2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

func (r *byteReader) u32() (uint32, bool) {
	b, ok := r.bytes(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (r *byteReader) i32() (int32, bool) {
	v, ok := r.u32()
	return int32(v), ok
}

func (r *byteReader) f32() (float32, bool) {
	v, ok := r.u32()
	if !ok {
		return 0, false
	}
	return math.Float32frombits(v), true
}
