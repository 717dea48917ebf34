package hostadapters

import "voxelstream/internal/hostio"

// NullMesh and NullCollider satisfy the hostio handle interfaces without
// touching any real renderer or physics engine; they back
// cmd/voxelstreamd's headless simulation and any test that needs a
// scheduler wired up without a real host. NullMesh also satisfies
// hostio.RendererHandle, since this host has no separate renderer
// resource to allocate.

type NullMesh struct {
	Destroyed bool
	Enabled   bool
}

// SetEnabled lets a NullMesh double as its own renderer handle: the
// scheduler's occlusion tick toggles visibility through whatever handle
// type the host's mesh allocator hands back, without needing a separate
// allocator just for visibility.
func (m *NullMesh) SetEnabled(enabled bool) {
	m.Enabled = enabled
}

func (m *NullMesh) Replace(positions []float32, indices []uint32, normals []float32, colors []uint32, indexFormat int) error {
	return nil
}

func (m *NullMesh) Destroy() {
	m.Destroyed = true
}

type NullMeshAllocator struct{}

func (NullMeshAllocator) CreateMesh() hostio.MeshHandle { return &NullMesh{} }

type NullCollider struct {
	Enabled bool
	Mesh    hostio.MeshHandle
}

func (c *NullCollider) Attach(mesh hostio.MeshHandle) {
	c.Mesh = mesh
}
func (c *NullCollider) Detach() {
	c.Mesh = nil
}
func (c *NullCollider) SetEnabled(enabled bool) {
	c.Enabled = enabled
}

type NullColliderAllocator struct{}

func (NullColliderAllocator) CreateCollider() hostio.ColliderHandle { return &NullCollider{} }
