// Package voxel defines the grid primitives shared by every other package:
// chunk coordinates, voxel materials, voxel buffers, the active Chunk
// instance, and the persisted-metadata envelope that travels with it.
package voxel

import "fmt"

// Coord identifies a chunk uniquely in the world. It is value-typed and
// hashable, so it can be used directly as a map key.
type Coord struct {
	CX, CY, CZ int32
}

// String renders the coordinate the way it appears in persisted paths
// ("cx.cy.cz") and log lines.
func (c Coord) String() string {
	return fmt.Sprintf("%d.%d.%d", c.CX, c.CY, c.CZ)
}

// Add returns the coordinate offset by (dx, dy, dz).
func (c Coord) Add(dx, dy, dz int32) Coord {
	return Coord{CX: c.CX + dx, CY: c.CY + dy, CZ: c.CZ + dz}
}

// Neighbors returns the six axis-adjacent coordinates in a fixed order:
// -X, +X, -Y, +Y, -Z, +Z. Callers that need face indices can rely on this
// order; it matches the face-index convention used throughout meshing.
func (c Coord) Neighbors() [6]Coord {
	return [6]Coord{
		c.Add(-1, 0, 0),
		c.Add(1, 0, 0),
		c.Add(0, -1, 0),
		c.Add(0, 1, 0),
		c.Add(0, 0, -1),
		c.Add(0, 0, 1),
	}
}

// DistSqXZ returns the squared XZ distance between two coordinates,
// ignoring Y. This is the metric MaintainRadius and eviction use.
func (c Coord) DistSqXZ(o Coord) int64 {
	dx := int64(c.CX - o.CX)
	dz := int64(c.CZ - o.CZ)
	return dx*dx + dz*dz
}
