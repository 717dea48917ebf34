package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"voxelstream/internal/generator"
	"voxelstream/internal/hostadapters"
	"voxelstream/internal/lod"
	"voxelstream/internal/persistence"
	"voxelstream/internal/scheduler"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		dataDir    string
		frames     int
		statsEvery int
		orbitRadius float64
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Step the scheduler through a scripted orbit for a fixed number of frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := scheduler.DefaultConfig()
			if configPath != "" {
				data, err := os.ReadFile(configPath)
				if err != nil {
					return fmt.Errorf("reading config: %w", err)
				}
				cfg, err = scheduler.Load(data)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
			}

			clock := hostadapters.NewSystemClock()
			sched, shutdown, err := buildScheduler(cfg, dataDir, seed, clock)
			if err != nil {
				return err
			}
			defer shutdown()

			for frame := 0; frame < frames; frame++ {
				clock.Advance()

				angle := float64(frame) / 120.0 * 2 * math.Pi
				pos := mgl32.Vec3{
					float32(orbitRadius * math.Cos(angle)),
					float32(cfg.ChunkSize * cfg.ColumnChunks / 2),
					float32(orbitRadius * math.Sin(angle)),
				}
				forward := mgl32.Vec3{float32(-math.Sin(angle)), 0, float32(math.Cos(angle))}.Normalize()
				view := scheduler.View{
					PlayerPos: [3]float32(pos),
					Forward:   [3]float32(forward),
					FOVCosine: 0.5,
				}

				sched.Tick(scheduler.FrameContext{View: view})

				if statsEvery > 0 && frame%statsEvery == 0 {
					s := sched.Stats()
					log.Info().
						Int("frame", frame).
						Uint64("epoch", s.Epoch).
						Int("active_chunks", s.ActiveChunks).
						Int("pending", s.PendingCount).
						Int("gen_in_flight", s.GenJobsInFlight).
						Int("mesh_in_flight", s.MeshJobsInFlight).
						Int("mesh_cache", s.MeshCacheEntries).
						Bool("throttled", s.Throttled).
						Msg("streaming stats")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML scheduler config")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "snapshot/delta storage directory (defaults to an ephemeral temp dir)")
	cmd.Flags().IntVar(&frames, "frames", 600, "number of simulated frames to run")
	cmd.Flags().IntVar(&statsEvery, "stats-every", 60, "log a stats snapshot every N frames (0 disables)")
	cmd.Flags().Float64Var(&orbitRadius, "orbit-radius", 256, "radius in world units of the scripted camera orbit")
	cmd.Flags().Int64Var(&seed, "seed", 1, "terrain generator seed")

	return cmd
}

// buildScheduler wires a Scheduler with headless host adapters: the
// caller's clock, a real memory probe, null mesh/collider allocators, an
// OS-backed persistence layer rooted at dataDir, and a layered-noise
// sampler seeded from the CLI flag.
func buildScheduler(cfg scheduler.Config, dataDir string, seed int64, clock *hostadapters.SystemClock) (*scheduler.Scheduler, func(), error) {
	if dataDir == "" {
		tmp, err := os.MkdirTemp("", "voxelstreamd-")
		if err != nil {
			return nil, nil, fmt.Errorf("creating data dir: %w", err)
		}
		dataDir = tmp
	}

	worldID := fmt.Sprintf("seed_%d", seed)
	fs := hostadapters.OSFilesystem{}
	snapshots := persistence.NewSnapshotStore(fs, dataDir, worldID, cfg.RegionSize, cfg.ChunkSize, 64)
	deltas := persistence.NewDeltaStore(fs, dataDir, worldID, cfg.RegionSize, cfg.ChunkSize, 64)

	sampler := &generator.LayeredSampler{
		DefaultHeight: 32,
		Layers: []generator.Layer{
			{Weight: 1.0, Scale: 128, Seed: seed, Octaves: 4, Persistence: 0.5, Lacunarity: 2.0, Amplitude: 24},
			{Weight: 0.4, Scale: 32, Seed: seed + 1, Octaves: 2, Persistence: 0.5, Lacunarity: 2.0, Amplitude: 6},
		},
	}
	genConfig := generator.Config{DefaultMaterial: 1, GeneratorVersion: 1}

	resolver := lod.NewResolver([]lod.LodLevel{
		{MinDist: 0, MaxDist: 128, LodStep: 1, Mode: lod.ModeMesh},
		{MinDist: 128, MaxDist: 384, LodStep: 2, Mode: lod.ModeMesh},
		{MinDist: 384, MaxDist: 768, LodStep: 4, Mode: lod.ModeSvo},
		{MinDist: 768, MaxDist: 1 << 20, LodStep: 8, Mode: lod.ModeNone},
	}, lod.LodLevel{MinDist: 0, MaxDist: 1 << 20, LodStep: 8, Mode: lod.ModeNone}, 8)

	sched := scheduler.NewScheduler(
		cfg,
		clock,
		hostadapters.NewGopsutilMemoryProbe(),
		hostadapters.NullMeshAllocator{},
		hostadapters.NullColliderAllocator{},
		sampler,
		genConfig,
		snapshots,
		deltas,
		resolver,
		4, 4, 256,
	)

	return sched, sched.Shutdown, nil
}
