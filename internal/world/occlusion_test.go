package world

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectionOpposite(t *testing.T) {
	for _, d := range Directions {
		require.Equal(t, d, d.Opposite().Opposite())
		require.Zero(t, d.OffsetX()+d.Opposite().OffsetX())
		require.Zero(t, d.OffsetY()+d.Opposite().OffsetY())
		require.Zero(t, d.OffsetZ()+d.Opposite().OffsetZ())
	}
	require.Equal(t, South, North.Opposite())
	require.Equal(t, "east", East.String())
}

func sectionWith(fill func(x, y, z int) BlockType) *ClonedSection {
	s := &Section{}
	for y := 0; y < SectionSize; y++ {
		for z := 0; z < SectionSize; z++ {
			for x := 0; x < SectionSize; x++ {
				s.Set(x, y, z, fill(x, y, z))
			}
		}
	}
	return s.clone()
}

func TestBuildOcclusionDataOpenSection(t *testing.T) {
	data := BuildOcclusionData(nil)
	require.Equal(t, OpenOcclusionData(), data)

	// A handful of opaque blocks cannot separate any faces.
	sparse := sectionWith(func(x, y, z int) BlockType {
		if x == y && y == z {
			return BlockTypeStone
		}
		return BlockTypeAir
	})
	require.Equal(t, OpenOcclusionData(), BuildOcclusionData(sparse))
}

func TestBuildOcclusionDataSolidSection(t *testing.T) {
	solid := sectionWith(func(x, y, z int) BlockType { return BlockTypeStone })

	data := BuildOcclusionData(solid)
	for _, a := range Directions {
		for _, b := range Directions {
			require.False(t, data.IsVisibleThrough(a, b), "%s -> %s", a, b)
		}
	}
}

func TestBuildOcclusionDataHorizontalWall(t *testing.T) {
	// A stone floor at y=8 splits the section into an upper and a lower half.
	wall := sectionWith(func(x, y, z int) BlockType {
		if y == 8 {
			return BlockTypeStone
		}
		return BlockTypeAir
	})

	data := BuildOcclusionData(wall)
	require.False(t, data.IsVisibleThrough(Up, Down))
	require.False(t, data.IsVisibleThrough(Down, Up))
	require.True(t, data.IsVisibleThrough(Up, North))
	require.True(t, data.IsVisibleThrough(Down, East))
	require.True(t, data.IsVisibleThrough(West, East))
	require.True(t, data.IsVisibleThrough(North, North))
}

func TestBuildOcclusionDataGlassIsTransparent(t *testing.T) {
	glass := sectionWith(func(x, y, z int) BlockType { return BlockTypeGlass })
	require.Equal(t, OpenOcclusionData(), BuildOcclusionData(glass))
}

func TestPrepareSlice(t *testing.T) {
	cs := NewChunkStore(0, 2)
	cs.Set(BlockPos{X: 1, Y: 1, Z: 1}, BlockTypeStone)
	cs.Set(BlockPos{X: 16, Y: 2, Z: 0}, BlockTypeGlass)
	cs.Set(BlockPos{X: 3, Y: 17, Z: -1}, BlockTypeWater)

	cache := NewSectionCache(cs)
	require.Nil(t, PrepareSlice(cache, SectionPos{X: 5, Y: 0, Z: 5}))

	s := PrepareSlice(cache, SectionPos{})
	require.NotNil(t, s)
	require.Equal(t, SectionPos{}, s.Origin())
	require.Equal(t, 1, s.Center().OpaqueCount())

	require.Equal(t, BlockTypeStone, s.BlockAt(1, 1, 1))
	require.Equal(t, BlockTypeGlass, s.BlockAt(16, 2, 0))
	require.Equal(t, BlockTypeWater, s.BlockAt(3, 17, -1))
	require.Equal(t, BlockTypeAir, s.BlockAt(-16, -16, -16))
	require.Equal(t, BlockTypeAir, s.BlockAt(48, 0, 0))
}
