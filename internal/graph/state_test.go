package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

func TestStateSizes(t *testing.T) {
	s := NewState(2, 8)
	require.Equal(t, 8, s.SizeXZ())
	require.Equal(t, 8, s.SizeY())
	require.Equal(t, 512, s.Size())

	s = NewState(12, 24)
	require.Equal(t, 32, s.SizeXZ())
	require.Equal(t, 32, s.SizeY())
}

func TestStateIndexIsBijection(t *testing.T) {
	s := NewState(3, 5)
	seen := make([]bool, s.Size())

	for y := 0; y < s.SizeY(); y++ {
		for z := 0; z < s.SizeXZ(); z++ {
			for x := 0; x < s.SizeXZ(); x++ {
				id := s.Index(x, y, z)
				require.False(t, seen[id], "slot %d reused", id)
				seen[id] = true
			}
		}
	}

	// Coordinates wrap around the torus.
	require.Equal(t, s.Index(1, 2, 3), s.Index(1+s.SizeXZ(), 2+s.SizeY(), 3-s.SizeXZ()))
	require.Equal(t, s.Index(s.SizeXZ()-1, 0, 0), s.Index(-1, 0, 0))
}

func TestStateResetKeepsSections(t *testing.T) {
	s := NewState(2, 4)
	id := s.Index(1, 1, 1)
	sec := section.New(world.SectionPos{X: 1, Y: 1, Z: 1})

	s.SetSection(id, sec)
	s.SetVisibilityData(id, DefaultVisibilityData)
	s.MarkVisible(id)
	s.AddCulling(id, 0, world.East)
	s.AddDirection(id, world.East)
	s.SetFrustumCache(id, Intersect)

	require.True(t, s.IsVisible(id))
	require.Equal(t, 1, s.VisibleCount())
	require.Equal(t, byte(1<<world.East), s.CullingState(id))
	require.Equal(t, byte(1<<world.East), s.Direction(id))

	s.Reset()
	require.False(t, s.IsVisible(id))
	require.Zero(t, s.CullingState(id))
	require.Zero(t, s.Direction(id))
	require.Zero(t, s.FrustumCache(id))
	require.Same(t, sec, s.Section(id))
	require.Equal(t, DefaultVisibilityData, s.VisibilityData(id))
}

func TestFrustumCachePacking(t *testing.T) {
	s := NewState(2, 2)
	s.SetFrustumCache(4, Outside)
	s.SetFrustumCache(5, Inside)
	s.SetFrustumCache(6, Intersect)

	require.Zero(t, s.FrustumCache(7))
	require.Equal(t, Outside, s.FrustumCache(4))
	require.Equal(t, Inside, s.FrustumCache(5))
	require.Equal(t, Intersect, s.FrustumCache(6))

	s.SetFrustumCache(5, Outside)
	require.Equal(t, Outside, s.FrustumCache(5))
	require.Equal(t, Intersect, s.FrustumCache(6))
}

func TestVisibilityData(t *testing.T) {
	require.Equal(t, DefaultVisibilityData, VisibilityData(world.OpenOcclusionData()))

	var o world.OcclusionData
	o.SetVisibleThrough(world.Up, world.North)
	data := VisibilityData(o)
	require.True(t, IsVisibleThrough(data, world.Up, world.North))
	require.True(t, IsVisibleThrough(data, world.North, world.Up))
	require.False(t, IsVisibleThrough(data, world.Up, world.Down))
}

func TestBitArray(t *testing.T) {
	b := NewBitArray(130)
	require.Len(t, b, 3)

	b.Set(0)
	b.Set(64)
	b.Set(129)
	require.True(t, b.Get(129))
	require.False(t, b.Get(128))
	require.Equal(t, 3, b.Count())

	b.Unset(64)
	require.False(t, b.Get(64))
	b.Clear()
	require.Zero(t, b.Count())
}
