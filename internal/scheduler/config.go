// Package scheduler implements the streaming core's central state
// machine: it owns every queue and set named in the chunk lifecycle,
// enforces per-frame budgets, and runs the fixed phase ordering once per
// frame on the control thread. Grounded on the teacher's
// internal/world.ChunkStreamer/World tick loop, generalized from a
// single async-generation queue into the full
// pending/preload/gen/mesh/integration/remesh/removal pipeline.
package scheduler

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the scheduler enforces. The Scheduler keeps
// two copies: baseCfg, as configured at startup, and cfg, the working copy
// whose caps adaptive throttling temporarily lowers and resets back to
// baseCfg once clear of a cooldown.
type Config struct {
	ChunkSize  int32
	VoxelSize  float32
	LoadRadius int32
	PreloadRadius int32
	UnloadRadius  int32
	ColumnChunks  int32

	MaxSpawnsPerFrame       int
	MaxRemeshPerFrame       int
	MaxRemovalsPerFrame     int
	MaxGenJobsInFlight      int
	MaxMeshJobsInFlight     int
	MaxIntegrationsPerFrame int
	MaxPreloadsPerFrame     int
	RemovalBudget           time.Duration
	StreamingBudget         time.Duration

	GenSlow         time.Duration
	MeshSlow        time.Duration
	IntegrationSlow time.Duration
	MemoryPressureThresholdMB   float64
	GraphicsMemoryThresholdMB   float64
	AdaptiveCooldown time.Duration

	PendingQueueCap       int
	PendingResetDistance  int32
	UseViewConePrioritizer bool

	WorkDropDistance     int32
	WorkDropAngleDeg     float32
	WorkDropMoveAngleDeg float32
	WorkDropCooldown     time.Duration

	RemeshDepthCap int

	MaxMaterialIndex  uint16
	FallbackMaterial  uint16
	MeshCacheEvictPerFrame int
	DataCacheMaxEntries    int
	DataCacheInsertCapPerFrame int

	AlwaysSaveSnapshots    bool
	DeltaPromoteThreshold  float64
	RegionSize             int32
}

// DefaultConfig returns reasonable defaults matching the magnitudes
// spec.md's worked examples use.
func DefaultConfig() Config {
	return Config{
		ChunkSize:     32,
		VoxelSize:     1,
		LoadRadius:    8,
		PreloadRadius: 12,
		UnloadRadius:  9,
		ColumnChunks:  4,

		MaxSpawnsPerFrame:       4,
		MaxRemeshPerFrame:       8,
		MaxRemovalsPerFrame:     4,
		MaxGenJobsInFlight:      8,
		MaxMeshJobsInFlight:     8,
		MaxIntegrationsPerFrame: 4,
		MaxPreloadsPerFrame:     4,
		RemovalBudget:           2 * time.Millisecond,
		StreamingBudget:         4 * time.Millisecond,

		GenSlow:                   8 * time.Millisecond,
		MeshSlow:                  8 * time.Millisecond,
		IntegrationSlow:           4 * time.Millisecond,
		MemoryPressureThresholdMB: 2048,
		GraphicsMemoryThresholdMB: 2048,
		AdaptiveCooldown:          2 * time.Second,

		PendingQueueCap:        4096,
		PendingResetDistance:   4,
		UseViewConePrioritizer: true,

		WorkDropDistance:     6,
		WorkDropAngleDeg:     60,
		WorkDropMoveAngleDeg: 90,
		WorkDropCooldown:     500 * time.Millisecond,

		RemeshDepthCap: 2,

		MaxMaterialIndex:           4095,
		FallbackMaterial:           1,
		MeshCacheEvictPerFrame:     4,
		DataCacheMaxEntries:        2048,
		DataCacheInsertCapPerFrame: 32,

		AlwaysSaveSnapshots:   false,
		DeltaPromoteThreshold: 0.1,
		RegionSize:            16,
	}
}

// yamlConfig mirrors Config field-for-field but spells duration tunables
// as human-writable strings ("8ms", "2s") since time.Duration's default
// YAML encoding is an opaque integer count of nanoseconds. Load converts
// between the two; every other field round-trips directly.
type yamlConfig struct {
	ChunkSize     int32   `yaml:"chunk_size"`
	VoxelSize     float32 `yaml:"voxel_size"`
	LoadRadius    int32   `yaml:"load_radius"`
	PreloadRadius int32   `yaml:"preload_radius"`
	UnloadRadius  int32   `yaml:"unload_radius"`
	ColumnChunks  int32   `yaml:"column_chunks"`

	MaxSpawnsPerFrame       int    `yaml:"max_spawns_per_frame"`
	MaxRemeshPerFrame       int    `yaml:"max_remesh_per_frame"`
	MaxRemovalsPerFrame     int    `yaml:"max_removals_per_frame"`
	MaxGenJobsInFlight      int    `yaml:"max_gen_jobs_in_flight"`
	MaxMeshJobsInFlight     int    `yaml:"max_mesh_jobs_in_flight"`
	MaxIntegrationsPerFrame int    `yaml:"max_integrations_per_frame"`
	MaxPreloadsPerFrame     int    `yaml:"max_preloads_per_frame"`
	RemovalBudget           string `yaml:"removal_budget"`
	StreamingBudget         string `yaml:"streaming_budget"`

	GenSlow                   string  `yaml:"gen_slow"`
	MeshSlow                  string  `yaml:"mesh_slow"`
	IntegrationSlow           string  `yaml:"integration_slow"`
	MemoryPressureThresholdMB float64 `yaml:"memory_pressure_threshold_mb"`
	GraphicsMemoryThresholdMB float64 `yaml:"graphics_memory_threshold_mb"`
	AdaptiveCooldown          string  `yaml:"adaptive_cooldown"`

	PendingQueueCap        int   `yaml:"pending_queue_cap"`
	PendingResetDistance   int32 `yaml:"pending_reset_distance"`
	UseViewConePrioritizer bool  `yaml:"use_view_cone_prioritizer"`

	WorkDropDistance     int32   `yaml:"work_drop_distance"`
	WorkDropAngleDeg     float32 `yaml:"work_drop_angle_deg"`
	WorkDropMoveAngleDeg float32 `yaml:"work_drop_move_angle_deg"`
	WorkDropCooldown     string  `yaml:"work_drop_cooldown"`

	RemeshDepthCap int `yaml:"remesh_depth_cap"`

	MaxMaterialIndex           uint16 `yaml:"max_material_index"`
	FallbackMaterial           uint16 `yaml:"fallback_material"`
	MeshCacheEvictPerFrame     int    `yaml:"mesh_cache_evict_per_frame"`
	DataCacheMaxEntries        int    `yaml:"data_cache_max_entries"`
	DataCacheInsertCapPerFrame int    `yaml:"data_cache_insert_cap_per_frame"`

	AlwaysSaveSnapshots   bool    `yaml:"always_save_snapshots"`
	DeltaPromoteThreshold float64 `yaml:"delta_promote_threshold"`
	RegionSize            int32   `yaml:"region_size"`
}

// Load parses a YAML document into a Config, starting from DefaultConfig
// so an omitted field keeps its default rather than zeroing out. The
// result is validated before being returned.
func Load(data []byte) (Config, error) {
	cfg := DefaultConfig()
	raw := toYAMLConfig(cfg)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("scheduler: parsing config: %w", err)
	}

	merged, err := fromYAMLConfig(raw)
	if err != nil {
		return Config{}, fmt.Errorf("scheduler: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

func toYAMLConfig(c Config) yamlConfig {
	return yamlConfig{
		ChunkSize: c.ChunkSize, VoxelSize: c.VoxelSize,
		LoadRadius: c.LoadRadius, PreloadRadius: c.PreloadRadius,
		UnloadRadius: c.UnloadRadius, ColumnChunks: c.ColumnChunks,

		MaxSpawnsPerFrame: c.MaxSpawnsPerFrame, MaxRemeshPerFrame: c.MaxRemeshPerFrame,
		MaxRemovalsPerFrame: c.MaxRemovalsPerFrame, MaxGenJobsInFlight: c.MaxGenJobsInFlight,
		MaxMeshJobsInFlight: c.MaxMeshJobsInFlight, MaxIntegrationsPerFrame: c.MaxIntegrationsPerFrame,
		MaxPreloadsPerFrame: c.MaxPreloadsPerFrame,
		RemovalBudget:       c.RemovalBudget.String(), StreamingBudget: c.StreamingBudget.String(),

		GenSlow: c.GenSlow.String(), MeshSlow: c.MeshSlow.String(), IntegrationSlow: c.IntegrationSlow.String(),
		MemoryPressureThresholdMB: c.MemoryPressureThresholdMB, GraphicsMemoryThresholdMB: c.GraphicsMemoryThresholdMB,
		AdaptiveCooldown: c.AdaptiveCooldown.String(),

		PendingQueueCap: c.PendingQueueCap, PendingResetDistance: c.PendingResetDistance,
		UseViewConePrioritizer: c.UseViewConePrioritizer,

		WorkDropDistance: c.WorkDropDistance, WorkDropAngleDeg: c.WorkDropAngleDeg,
		WorkDropMoveAngleDeg: c.WorkDropMoveAngleDeg, WorkDropCooldown: c.WorkDropCooldown.String(),

		RemeshDepthCap: c.RemeshDepthCap,

		MaxMaterialIndex: c.MaxMaterialIndex, FallbackMaterial: c.FallbackMaterial,
		MeshCacheEvictPerFrame: c.MeshCacheEvictPerFrame, DataCacheMaxEntries: c.DataCacheMaxEntries,
		DataCacheInsertCapPerFrame: c.DataCacheInsertCapPerFrame,

		AlwaysSaveSnapshots: c.AlwaysSaveSnapshots, DeltaPromoteThreshold: c.DeltaPromoteThreshold,
		RegionSize: c.RegionSize,
	}
}

func fromYAMLConfig(raw yamlConfig) (Config, error) {
	removalBudget, err := time.ParseDuration(raw.RemovalBudget)
	if err != nil {
		return Config{}, fmt.Errorf("removal_budget: %w", err)
	}
	streamingBudget, err := time.ParseDuration(raw.StreamingBudget)
	if err != nil {
		return Config{}, fmt.Errorf("streaming_budget: %w", err)
	}
	genSlow, err := time.ParseDuration(raw.GenSlow)
	if err != nil {
		return Config{}, fmt.Errorf("gen_slow: %w", err)
	}
	meshSlow, err := time.ParseDuration(raw.MeshSlow)
	if err != nil {
		return Config{}, fmt.Errorf("mesh_slow: %w", err)
	}
	integrationSlow, err := time.ParseDuration(raw.IntegrationSlow)
	if err != nil {
		return Config{}, fmt.Errorf("integration_slow: %w", err)
	}
	adaptiveCooldown, err := time.ParseDuration(raw.AdaptiveCooldown)
	if err != nil {
		return Config{}, fmt.Errorf("adaptive_cooldown: %w", err)
	}
	workDropCooldown, err := time.ParseDuration(raw.WorkDropCooldown)
	if err != nil {
		return Config{}, fmt.Errorf("work_drop_cooldown: %w", err)
	}

	return Config{
		ChunkSize: raw.ChunkSize, VoxelSize: raw.VoxelSize,
		LoadRadius: raw.LoadRadius, PreloadRadius: raw.PreloadRadius,
		UnloadRadius: raw.UnloadRadius, ColumnChunks: raw.ColumnChunks,

		MaxSpawnsPerFrame: raw.MaxSpawnsPerFrame, MaxRemeshPerFrame: raw.MaxRemeshPerFrame,
		MaxRemovalsPerFrame: raw.MaxRemovalsPerFrame, MaxGenJobsInFlight: raw.MaxGenJobsInFlight,
		MaxMeshJobsInFlight: raw.MaxMeshJobsInFlight, MaxIntegrationsPerFrame: raw.MaxIntegrationsPerFrame,
		MaxPreloadsPerFrame: raw.MaxPreloadsPerFrame,
		RemovalBudget:       removalBudget, StreamingBudget: streamingBudget,

		GenSlow: genSlow, MeshSlow: meshSlow, IntegrationSlow: integrationSlow,
		MemoryPressureThresholdMB: raw.MemoryPressureThresholdMB, GraphicsMemoryThresholdMB: raw.GraphicsMemoryThresholdMB,
		AdaptiveCooldown: adaptiveCooldown,

		PendingQueueCap: raw.PendingQueueCap, PendingResetDistance: raw.PendingResetDistance,
		UseViewConePrioritizer: raw.UseViewConePrioritizer,

		WorkDropDistance: raw.WorkDropDistance, WorkDropAngleDeg: raw.WorkDropAngleDeg,
		WorkDropMoveAngleDeg: raw.WorkDropMoveAngleDeg, WorkDropCooldown: workDropCooldown,

		RemeshDepthCap: raw.RemeshDepthCap,

		MaxMaterialIndex: raw.MaxMaterialIndex, FallbackMaterial: raw.FallbackMaterial,
		MeshCacheEvictPerFrame: raw.MeshCacheEvictPerFrame, DataCacheMaxEntries: raw.DataCacheMaxEntries,
		DataCacheInsertCapPerFrame: raw.DataCacheInsertCapPerFrame,

		AlwaysSaveSnapshots: raw.AlwaysSaveSnapshots, DeltaPromoteThreshold: raw.DeltaPromoteThreshold,
		RegionSize: raw.RegionSize,
	}, nil
}

// Validate reports the first structurally invalid tunable: radii and
// caps that don't make sense together would otherwise surface as
// confusing runtime behavior (chunks never loading, remesh starving)
// far from the config that caused it.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("scheduler: chunk_size must be positive")
	}
	if c.ColumnChunks <= 0 {
		return fmt.Errorf("scheduler: column_chunks must be positive")
	}
	if c.LoadRadius < 0 || c.PreloadRadius < 0 || c.UnloadRadius < 0 {
		return fmt.Errorf("scheduler: radii must be non-negative")
	}
	if c.PreloadRadius < c.LoadRadius {
		return fmt.Errorf("scheduler: preload_radius (%d) must be >= load_radius (%d)", c.PreloadRadius, c.LoadRadius)
	}
	if c.MaxMaterialIndex == 0 {
		return fmt.Errorf("scheduler: max_material_index must be positive")
	}
	if c.MaxGenJobsInFlight <= 0 || c.MaxMeshJobsInFlight <= 0 {
		return fmt.Errorf("scheduler: job-in-flight caps must be positive")
	}
	if c.RemeshDepthCap < 0 {
		return fmt.Errorf("scheduler: remesh_depth_cap must be non-negative")
	}
	if c.DeltaPromoteThreshold < 0 || c.DeltaPromoteThreshold > 1 {
		return fmt.Errorf("scheduler: delta_promote_threshold must be within [0, 1]")
	}
	if c.RegionSize <= 0 {
		return fmt.Errorf("scheduler: region_size must be positive")
	}
	return nil
}
