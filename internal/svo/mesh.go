package svo

import (
	"voxelstream/internal/meshing"
	"voxelstream/internal/voxel"
)

// sampleAt point-queries the octree for the material at a voxel
// coordinate, descending from n; out-of-bounds reads as air.
func (n *Node) sampleAt(x, y, z int32) voxel.MaterialID {
	if n == nil {
		return voxel.MaterialAir
	}
	if x < n.Origin[0] || y < n.Origin[1] || z < n.Origin[2] ||
		x >= n.Origin[0]+n.Size || y >= n.Origin[1]+n.Size || z >= n.Origin[2]+n.Size {
		return voxel.MaterialAir
	}
	if n.IsLeaf() {
		return n.Material
	}
	half := n.Size / 2
	idx := 0
	if x >= n.Origin[0]+half {
		idx |= 1
	}
	if y >= n.Origin[1]+half {
		idx |= 2
	}
	if z >= n.Origin[2]+half {
		idx |= 4
	}
	return n.Children[idx].sampleAt(x, y, z)
}

// faceDirs is indexed the same way voxel.Coord.Neighbors() is:
// -X, +X, -Y, +Y, -Z, +Z.
var faceDirs = [6][3]int32{
	{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1},
}

// SynthesizeMesh walks every non-air leaf and emits one quad per exposed
// face, using the same CCW winding and per-vertex color/normal convention
// as meshing.Mesh so a host mesh handle never needs to tell the two
// apart. Exposure is approximated per-leaf-face (sampling the face
// center's neighbor) rather than per-voxel, which is the resolution
// tradeoff that makes SVO meshing cheap enough for distant LOD.
func SynthesizeMesh(root *Node, voxelScale float32) meshing.MeshData {
	b := &svoBuilder{scale: voxelScale}
	b.walk(root, root)
	return b.finish()
}

type svoBuilder struct {
	positions []float32
	normals   []float32
	colors    []uint32
	indices   []uint32
	scale     float32
}

func (b *svoBuilder) walk(root, n *Node) {
	if n == nil || n.Material == voxel.MaterialAir && n.IsLeaf() {
		return
	}
	if !n.IsLeaf() {
		for _, c := range n.Children {
			b.walk(root, c)
		}
		return
	}

	half := n.Size / 2
	for dir := range faceDirs {
		probe := [3]int32{n.Origin[0] + half, n.Origin[1] + half, n.Origin[2] + half}
		axis := dir / 2
		if dir%2 == 0 {
			probe[axis] = n.Origin[axis] - 1
		} else {
			probe[axis] = n.Origin[axis] + n.Size
		}
		if root.sampleAt(probe[0], probe[1], probe[2]) != voxel.MaterialAir {
			continue
		}
		b.emitFace(n, dir)
	}
}

func (b *svoBuilder) emitFace(n *Node, dir int) {
	o := n.Origin
	s := n.Size
	var corners [4][3]int32
	switch dir {
	case 0: // -X
		corners = [4][3]int32{{o[0], o[1], o[2]}, {o[0], o[1], o[2] + s}, {o[0], o[1] + s, o[2] + s}, {o[0], o[1] + s, o[2]}}
	case 1: // +X
		corners = [4][3]int32{{o[0] + s, o[1], o[2]}, {o[0] + s, o[1] + s, o[2]}, {o[0] + s, o[1] + s, o[2] + s}, {o[0] + s, o[1], o[2] + s}}
	case 2: // -Y
		corners = [4][3]int32{{o[0], o[1], o[2]}, {o[0] + s, o[1], o[2]}, {o[0] + s, o[1], o[2] + s}, {o[0], o[1], o[2] + s}}
	case 3: // +Y
		corners = [4][3]int32{{o[0], o[1] + s, o[2]}, {o[0], o[1] + s, o[2] + s}, {o[0] + s, o[1] + s, o[2] + s}, {o[0] + s, o[1] + s, o[2]}}
	case 4: // -Z
		corners = [4][3]int32{{o[0], o[1], o[2]}, {o[0], o[1] + s, o[2]}, {o[0] + s, o[1] + s, o[2]}, {o[0] + s, o[1], o[2]}}
	default: // +Z
		corners = [4][3]int32{{o[0], o[1], o[2] + s}, {o[0] + s, o[1], o[2] + s}, {o[0] + s, o[1] + s, o[2] + s}, {o[0], o[1] + s, o[2] + s}}
	}

	var normal [3]float32
	normal[dir/2] = 1
	if dir%2 == 0 {
		normal[dir/2] = -1
	}

	base := uint32(len(b.positions) / 3)
	for _, c := range corners {
		b.positions = append(b.positions, float32(c[0])*b.scale, float32(c[1])*b.scale, float32(c[2])*b.scale)
		b.normals = append(b.normals, normal[0], normal[1], normal[2])
		b.colors = append(b.colors, uint32(n.Material))
	}
	b.indices = append(b.indices, base, base+1, base+2, base, base+2, base+3)
}

func (b *svoBuilder) finish() meshing.MeshData {
	md := meshing.MeshData{Positions: b.positions, Normals: b.normals, Colors: b.colors}
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
