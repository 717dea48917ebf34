package voxel

// MaterialID is a 16-bit voxel material id. 0 (MaterialAir) is air; a
// non-zero id indexes a texture-array layer on the host renderer.
type MaterialID = uint16

// MaterialAir is the id for empty space.
const MaterialAir MaterialID = 0

// ClampMaterial saturates a material id to fallback when it exceeds the
// configured maximum index, per spec: "non-zero ids index a texture-array
// layer (saturates to a fallback if > MaxMaterialIndex)".
func ClampMaterial(id MaterialID, maxMaterialIndex MaterialID, fallback MaterialID) MaterialID {
	if id == MaterialAir {
		return MaterialAir
	}
	if id > maxMaterialIndex {
		return fallback
	}
	return id
}

// Buffer holds one chunk's voxel content: a flat materials array of length
// Size^3 plus an optional density array of the same length. Ownership is
// exclusive to whoever holds the Buffer; async work must take a Clone
// before handing a copy across a goroutine boundary (invariant I3).
type Buffer struct {
	Materials []MaterialID
	Density   []float32 // nil if the chunk carries no density data
	Size      int32
}

// NewBuffer allocates a zeroed buffer (all air, no density) of edge size n.
func NewBuffer(n int32) *Buffer {
	return &Buffer{
		Materials: make([]MaterialID, int64(n)*int64(n)*int64(n)),
		Size:      n,
	}
}

// NewBufferWithDensity allocates a zeroed buffer with both materials and
// density arrays populated.
func NewBufferWithDensity(n int32) *Buffer {
	b := NewBuffer(n)
	b.Density = make([]float32, len(b.Materials))
	return b
}

// Index converts local (x, y, z) to the flat array index: x + N*(y + N*z).
func (b *Buffer) Index(x, y, z int32) int {
	n := b.Size
	return int(x + n*(y+n*z))
}

// InBounds reports whether (x, y, z) is a valid local coordinate.
func (b *Buffer) InBounds(x, y, z int32) bool {
	n := b.Size
	return x >= 0 && x < n && y >= 0 && y < n && z >= 0 && z < n
}

// At returns the material at local (x, y, z), or MaterialAir if out of
// bounds (missing neighbors are treated as open/air throughout meshing).
func (b *Buffer) At(x, y, z int32) MaterialID {
	if b == nil || !b.InBounds(x, y, z) {
		return MaterialAir
	}
	return b.Materials[b.Index(x, y, z)]
}

// Set writes the material at local (x, y, z). No-op out of bounds.
func (b *Buffer) Set(x, y, z int32, m MaterialID) {
	if !b.InBounds(x, y, z) {
		return
	}
	b.Materials[b.Index(x, y, z)] = m
}

// DensityAt returns the density at local (x, y, z), or 0 if the buffer has
// no density array or the coordinate is out of bounds.
func (b *Buffer) DensityAt(x, y, z int32) float32 {
	if b == nil || b.Density == nil || !b.InBounds(x, y, z) {
		return 0
	}
	return b.Density[b.Index(x, y, z)]
}

// Clone performs a deep copy of the buffer. Every in-flight job carries a
// clone of its inputs (invariant I3): mutating the source after handing a
// clone to a worker goroutine cannot corrupt the job.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	out := &Buffer{
		Size:      b.Size,
		Materials: make([]MaterialID, len(b.Materials)),
	}
	copy(out.Materials, b.Materials)
	if b.Density != nil {
		out.Density = make([]float32, len(b.Density))
		copy(out.Density, b.Density)
	}
	return out
}

// FaceSlab extracts the single-voxel-thick boundary slab of this buffer
// facing the given axis direction, for use as a neighbor's input to face
// culling. dir selects which face: 0=-X,1=+X,2=-Y,3=+Y,4=-Z,5=+Z. The
// returned buffer has Size==b.Size but only the slab layer populated
// (everything else stays air); callers index it as if it were a full
// neighbor buffer and only ever read the boundary layer back.
func (b *Buffer) FaceSlab(dir int) *Buffer {
	if b == nil {
		return nil
	}
	n := b.Size
	slab := NewBuffer(n)
	var hasDensity = b.Density != nil
	if hasDensity {
		slab.Density = make([]float32, len(slab.Materials))
	}
	copyPlane := func(fixedAxis int, fixedVal int32) {
		for u := int32(0); u < n; u++ {
			for v := int32(0); v < n; v++ {
				var x, y, z int32
				switch fixedAxis {
				case 0: // X fixed
					x, y, z = fixedVal, u, v
				case 1: // Y fixed
					x, y, z = u, fixedVal, v
				default: // Z fixed
					x, y, z = u, v, fixedVal
				}
				idx := slab.Index(x, y, z)
				slab.Materials[idx] = b.At(x, y, z)
				if hasDensity {
					slab.Density[idx] = b.DensityAt(x, y, z)
				}
			}
		}
	}
	switch dir {
	case 0:
		copyPlane(0, 0)
	case 1:
		copyPlane(0, n-1)
	case 2:
		copyPlane(1, 0)
	case 3:
		copyPlane(1, n-1)
	case 4:
		copyPlane(2, 0)
	case 5:
		copyPlane(2, n-1)
	}
	return slab
}
