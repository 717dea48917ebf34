package generator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelstream/internal/voxel"
)

type constSampler struct{ h float32 }

func (c constSampler) HeightAt(wx, wz int32) float32 { return c.h }

func TestGenerateScenarioS1(t *testing.T) {
	buf := voxel.NewBuffer(2)
	coord := voxel.Coord{}
	cfg := Config{DefaultMaterial: 1}
	Generate(buf, coord, cfg, constSampler{h: 0.6}, FullRange(buf))

	// wy=0 -> 0 <= floor(0.6)=0 -> material 1; wy=1 -> 1 <= 0 false -> air.
	for x := int32(0); x < 2; x++ {
		for z := int32(0); z < 2; z++ {
			require.Equal(t, voxel.MaterialID(1), buf.At(x, 0, z))
			require.Equal(t, voxel.MaterialAir, buf.At(x, 1, z))
		}
	}
}

func TestGenerateSliceChaining(t *testing.T) {
	buf := voxel.NewBuffer(4)
	coord := voxel.Coord{}
	cfg := Config{DefaultMaterial: 2}
	sampler := constSampler{h: 10}

	full := FullRange(buf)
	half := full.Count / 2
	Generate(buf, coord, cfg, sampler, SliceRange{Start: 0, Count: half})
	require.False(t, IsComplete(buf, SliceRange{Start: 0, Count: half}))
	Generate(buf, coord, cfg, sampler, SliceRange{Start: half, Count: full.Count - half})
	require.True(t, IsComplete(buf, SliceRange{Start: half, Count: full.Count - half}))

	for _, m := range buf.Materials {
		require.Equal(t, voxel.MaterialID(2), m)
	}
}

func TestLayeredSamplerZeroWeightCollapsesToDefault(t *testing.T) {
	s := &LayeredSampler{DefaultHeight: 5, Layers: []Layer{{Weight: 0}}}
	require.Equal(t, float32(5), s.HeightAt(1, 1))
}

func TestLayeredSamplerBlendIsBounded(t *testing.T) {
	s := &LayeredSampler{
		Layers: []Layer{
			{Weight: 1, Scale: 32, Octaves: 3, Persistence: 0.5, Lacunarity: 2, Amplitude: 20, Seed: 1},
			{Weight: 2, Scale: 8, Octaves: 2, Persistence: 0.5, Lacunarity: 2, Amplitude: 4, Seed: 2},
		},
	}
	for wx := int32(0); wx < 20; wx++ {
		h := s.HeightAt(wx, wx*3)
		require.GreaterOrEqual(t, h, float32(0))
		require.LessOrEqual(t, h, float32(20))
	}
}
