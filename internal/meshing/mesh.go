package meshing

import "voxelstream/internal/voxel"

// MeshData is the host-ready geometry a mesh job produces: flat
// position/normal streams (3 floats per vertex), one packed color per
// vertex, and an index stream in either 16- or 32-bit form depending on
// vertex count.
type MeshData struct {
	Positions []float32
	Normals   []float32
	Colors    []uint32
	Indices16 []uint16
	Indices32 []uint32
	// IndexFormat is 16 or 32, matching whichever of Indices16/Indices32
	// is populated; an empty mesh has IndexFormat 0 and both nil.
	IndexFormat int
}

// maskCell is one cell of a single-axis boundary mask: which material sits
// at the boundary and which side is solid.
type maskCell struct {
	material voxel.MaterialID
	sign     int8 // +1 lower solid/upper air, -1 inverse, 0 no face
}

func (c maskCell) sameAs(o maskCell) bool {
	return c.sign == o.sign && c.material == o.material
}

// Mesh greedy-meshes buf against up to six neighbor boundary slabs,
// downsampling both to lodStep first when lodStep > 1. It is a pure
// function of its inputs (D1): identical buf/neighbors/lodStep always
// produce byte-identical output streams, which is what makes mesh-cache
// reuse sound.
//
// neighbors is indexed the same way voxel.Coord.Neighbors() is: -X, +X,
// -Y, +Y, -Z, +Z. neighbors[i] must be the *other* chunk's face slab
// facing back toward buf (i.e. FaceSlab of the opposite direction on the
// neighbor's own buffer); a nil entry is treated as open air.
func Mesh(buf *voxel.Buffer, neighbors [6]*voxel.Buffer, lodStep int32, maxMaterialIndex, fallbackMaterial voxel.MaterialID) MeshData {
	if lodStep < 1 {
		lodStep = 1
	}
	work := buf
	workNeighbors := neighbors
	if lodStep > 1 {
		work = Downsample(buf, lodStep)
		for i, nb := range neighbors {
			workNeighbors[i] = Downsample(nb, lodStep)
		}
	}

	b := &builder{
		positions: make([]float32, 0, 256),
		normals:   make([]float32, 0, 256),
		colors:    make([]uint32, 0, 256),
		scale:     float32(lodStep),
		maxMat:    maxMaterialIndex,
		fallback:  fallbackMaterial,
	}
	for axis := 0; axis < 3; axis++ {
		b.meshAxis(work, workNeighbors, axis)
	}
	return b.finish()
}

type builder struct {
	positions []float32
	normals   []float32
	colors    []uint32
	indices   []uint32
	scale     float32
	maxMat    voxel.MaterialID
	fallback  voxel.MaterialID
}

func (b *builder) finish() MeshData {
	md := MeshData{Positions: b.positions, Normals: b.normals, Colors: b.colors}
	if len(b.positions)/3 <= 0xFFFF {
		idx16 := make([]uint16, len(b.indices))
		for i, v := range b.indices {
			idx16[i] = uint16(v)
		}
		md.Indices16 = idx16
		md.IndexFormat = 16
	} else {
		md.Indices32 = b.indices
		md.IndexFormat = 32
	}
	return md
}

// axisInfo describes how to map (axis, u, v, layer) to an (x,y,z) triple.
func coordFor(axis int, u, v, layer int32) (x, y, z int32) {
	switch axis {
	case 0:
		return layer, u, v
	case 1:
		return u, layer, v
	default:
		return u, v, layer
	}
}

func neighborDirs(axis int) (neg, pos int) {
	switch axis {
	case 0:
		return 0, 1
	case 1:
		return 2, 3
	default:
		return 4, 5
	}
}

// neighborMaterialAt reads the material a neighbor slab reports at the
// boundary-adjacent position (u, v); slab is nil when that neighbor isn't
// loaded, treated as open air. dir selects which of the slab's boundary
// planes carries the data, per the FaceSlab convention: a -X neighbor's
// relevant data sits on ITS +X boundary (x = size-1), and so on.
func neighborMaterialAt(slab *voxel.Buffer, dir int, u, v int32) voxel.MaterialID {
	if slab == nil {
		return voxel.MaterialAir
	}
	n := slab.Size
	switch dir {
	case 0:
		return slab.At(n-1, u, v)
	case 1:
		return slab.At(0, u, v)
	case 2:
		return slab.At(u, n-1, v)
	case 3:
		return slab.At(u, 0, v)
	case 4:
		return slab.At(u, v, n-1)
	default:
		return slab.At(u, v, 0)
	}
}

func (b *builder) meshAxis(buf *voxel.Buffer, neighbors [6]*voxel.Buffer, axis int) {
	n := buf.Size
	negDir, posDir := neighborDirs(axis)
	negSlab, posSlab := neighbors[negDir], neighbors[posDir]

	mask := make([]maskCell, n*n)
	for layer := int32(0); layer <= n; layer++ {
		for u := int32(0); u < n; u++ {
			for v := int32(0); v < n; v++ {
				var lowerMat, upperMat voxel.MaterialID
				if layer-1 >= 0 {
					x, y, z := coordFor(axis, u, v, layer-1)
					lowerMat = buf.At(x, y, z)
				} else {
					lowerMat = neighborMaterialAt(negSlab, negDir, u, v)
				}
				if layer < n {
					x, y, z := coordFor(axis, u, v, layer)
					upperMat = buf.At(x, y, z)
				} else {
					upperMat = neighborMaterialAt(posSlab, posDir, u, v)
				}

				lowerSolid := lowerMat != voxel.MaterialAir
				upperSolid := upperMat != voxel.MaterialAir
				idx := u*n + v
				switch {
				case lowerSolid == upperSolid:
					mask[idx] = maskCell{}
				case lowerSolid && !upperSolid:
					mask[idx] = maskCell{material: voxel.ClampMaterial(lowerMat, b.maxMat, b.fallback), sign: 1}
				default:
					mask[idx] = maskCell{material: voxel.ClampMaterial(upperMat, b.maxMat, b.fallback), sign: -1}
				}
			}
		}
		b.greedyMergeLayer(mask, n, axis, layer)
	}
}

func (b *builder) greedyMergeLayer(mask []maskCell, n int32, axis int, layer int32) {
	for i := 0; i < len(mask); i++ {
		cell := mask[i]
		if cell.sign == 0 {
			continue
		}
		u0 := int32(i) / n
		v0 := int32(i) % n

		width := int32(1)
		for v1 := v0 + width; v1 < n && mask[int(u0*n+v1)].sameAs(cell); v1++ {
			width++
		}

		height := int32(1)
	outer:
		for u1 := u0 + 1; u1 < n; u1++ {
			for v1 := v0; v1 < v0+width; v1++ {
				if !mask[int(u1*n+v1)].sameAs(cell) {
					break outer
				}
			}
			height++
		}

		b.emitQuad(axis, layer, u0, v0, width, height, cell)

		for uu := u0; uu < u0+height; uu++ {
			for vv := v0; vv < v0+width; vv++ {
				mask[int(uu*n+vv)] = maskCell{}
			}
		}
	}
}

func (b *builder) emitQuad(axis int, layer, u0, v0, width, height int32, cell maskCell) {
	var p0, p1, p2, p3 [3]int32
	corners := [4][2]int32{{u0, v0}, {u0 + height, v0}, {u0 + height, v0 + width}, {u0, v0 + width}}
	for i, c := range corners {
		x, y, z := coordFor(axis, c[0], c[1], layer)
		switch i {
		case 0:
			p0 = [3]int32{x, y, z}
		case 1:
			p1 = [3]int32{x, y, z}
		case 2:
			p2 = [3]int32{x, y, z}
		case 3:
			p3 = [3]int32{x, y, z}
		}
	}

	var normal [3]float32
	normal[axis] = float32(cell.sign)

	base := uint32(len(b.positions) / 3)
	pts := [4][3]int32{p0, p1, p2, p3}
	if cell.sign < 0 {
		pts = [4][3]int32{p0, p3, p2, p1}
	}
	color := uint32(cell.material)
	for _, p := range pts {
		b.positions = append(b.positions,
			float32(p[0])*b.scale, float32(p[1])*b.scale, float32(p[2])*b.scale)
		b.normals = append(b.normals, normal[0], normal[1], normal[2])
		b.colors = append(b.colors, color)
	}
	b.indices = append(b.indices, base, base+1, base+2, base, base+2, base+3)
}
