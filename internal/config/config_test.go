package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderDistanceClamp(t *testing.T) {
	defer Reset()

	SetRenderDistance(0)
	require.Equal(t, MinRenderDistance, GetRenderDistance())

	SetRenderDistance(1000)
	require.Equal(t, MaxRenderDistance, GetRenderDistance())

	SetRenderDistance(7)
	require.Equal(t, 7, GetRenderDistance())
	require.Greater(t, GetChunkEvictRadius(), GetChunkLoadRadius())
}

func TestSnapshotIsACopy(t *testing.T) {
	defer Reset()

	SetUseOcclusionCulling(true)
	snap := Snapshot()

	SetUseOcclusionCulling(false)
	SetAlwaysDeferChunkUpdates(true)
	require.True(t, snap.UseOcclusionCulling)
	require.False(t, snap.AlwaysDeferChunkUpdates)

	next := Snapshot()
	require.False(t, next.UseOcclusionCulling)
	require.True(t, next.AlwaysDeferChunkUpdates)
}

func TestApply(t *testing.T) {
	defer Reset()

	Apply(FrameOptions{
		RenderDistance: 64,
		BuilderThreads: 3,
		ArenaAllocator: "unknown",
	})

	snap := Snapshot()
	require.Equal(t, MaxRenderDistance, snap.RenderDistance)
	require.Equal(t, 3, BuilderThreads())
	require.Equal(t, ArenaAsync, snap.ArenaAllocator)
	require.False(t, snap.UseBlockFaceCulling)

	Reset()
	require.True(t, Snapshot().UseBlockFaceCulling)
	require.GreaterOrEqual(t, BuilderThreads(), 1)
}

func TestWorldHeight(t *testing.T) {
	bottom, top := GetWorldHeight()
	defer SetWorldHeight(bottom, top)

	SetWorldHeight(-4, -4)
	b, tp := GetWorldHeight()
	require.Equal(t, -4, b)
	require.Equal(t, -3, tp)
}
