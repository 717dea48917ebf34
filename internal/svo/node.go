// Package svo builds a sparse voxel octree over a chunk's materials for
// distant-LOD rendering, and synthesizes a greedy-mesher-compatible mesh
// from it. Grounded on the general recursive octree-build shape plus the
// pack's BVH builder (an 8-way/2-way spatial tree constructed by
// recursively subdividing a volume and collapsing empty/uniform regions
// into leaves).
package svo

import "voxelstream/internal/voxel"

// Node is one octree node. Interior nodes have all eight Children
// populated (nil entries mean an empty octant); leaves have Children ==
// nil and report a single Material for their whole extent (which may be
// MaterialAir, representing an empty leaf collapsed during the build).
type Node struct {
	// Origin and Size describe the node's extent in the source buffer's
	// local voxel coordinates.
	Origin [3]int32
	Size   int32

	Material voxel.MaterialID
	Children [8]*Node
}

// IsLeaf reports whether this node has no children.
func (n *Node) IsLeaf() bool {
	return n == nil || n.Children == [8]*Node{}
}

// IsEmpty reports whether this node (leaf or not) contributes no geometry.
func (n *Node) IsEmpty() bool {
	return n == nil || (n.IsLeaf() && n.Material == voxel.MaterialAir)
}

// childOffsets lists, in index order, which octant each of the eight
// children occupies relative to the parent's origin.
var childOffsets = [8][3]int32{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

// BuildFromBuffer constructs a sparse voxel octree over buf's materials,
// recursively subdividing until a region is either a single voxel or
// uniformly one material (including uniformly air), at which point it
// collapses into a leaf. buf.Size must be a power of two.
func BuildFromBuffer(buf *voxel.Buffer) *Node {
	if buf == nil || buf.Size <= 0 {
		return nil
	}
	return build(buf, [3]int32{0, 0, 0}, buf.Size)
}

func build(buf *voxel.Buffer, origin [3]int32, size int32) *Node {
	if size == 1 {
		return &Node{Origin: origin, Size: 1, Material: buf.At(origin[0], origin[1], origin[2])}
	}

	uniform, mat := regionIsUniform(buf, origin, size)
	if uniform {
		return &Node{Origin: origin, Size: size, Material: mat}
	}

	half := size / 2
	node := &Node{Origin: origin, Size: size}
	for i, off := range childOffsets {
		childOrigin := [3]int32{
			origin[0] + off[0]*half,
			origin[1] + off[1]*half,
			origin[2] + off[2]*half,
		}
		node.Children[i] = build(buf, childOrigin, half)
	}
	return node
}

func regionIsUniform(buf *voxel.Buffer, origin [3]int32, size int32) (bool, voxel.MaterialID) {
	first := buf.At(origin[0], origin[1], origin[2])
	for z := int32(0); z < size; z++ {
		for y := int32(0); y < size; y++ {
			for x := int32(0); x < size; x++ {
				if buf.At(origin[0]+x, origin[1]+y, origin[2]+z) != first {
					return false, 0
				}
			}
		}
	}
	return true, first
}
