package config

import (
	"runtime"
	"sync"
)

const (
	MinRenderDistance = 2
	MaxRenderDistance = 32
)

// Arena allocator modes for region geometry buffers.
const (
	// ArenaAsync uploads through a staging buffer and keeps the arena in place.
	ArenaAsync = "async"
	// ArenaSwap rebuilds the whole arena when it must grow.
	ArenaSwap = "swap"
)

// RenderSettings holds render configuration
type RenderSettings struct {
	mu             sync.RWMutex
	renderDistance int // in chunks

	builderThreads            int
	alwaysDeferChunkUpdates   bool
	useBlockFaceCulling       bool
	useOcclusionCulling       bool
	useRasterOcclusionCulling bool
	arenaAllocator            string
}

var globalRenderSettings = newRenderSettings()

func newRenderSettings() *RenderSettings {
	return &RenderSettings{
		renderDistance:            12,
		useBlockFaceCulling:       true,
		useOcclusionCulling:       true,
		useRasterOcclusionCulling: true,
		arenaAllocator:            ArenaAsync,
	}
}

// FrameOptions is an immutable copy of the settings, sampled once per frame
// so that a traversal never observes a half-applied change.
type FrameOptions struct {
	RenderDistance            int
	BuilderThreads            int
	AlwaysDeferChunkUpdates   bool
	UseBlockFaceCulling       bool
	UseOcclusionCulling       bool
	UseRasterOcclusionCulling bool
	ArenaAllocator            string
}

// Snapshot returns the current settings.
func Snapshot() FrameOptions {
	s := globalRenderSettings
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Apply replaces every setting at once. Values are clamped the same way as
// the individual setters.
func Apply(o FrameOptions) {
	s := globalRenderSettings
	s.mu.Lock()
	defer s.mu.Unlock()

	s.renderDistance = clampRenderDistance(o.RenderDistance)
	s.builderThreads = max(o.BuilderThreads, 0)
	s.alwaysDeferChunkUpdates = o.AlwaysDeferChunkUpdates
	s.useBlockFaceCulling = o.UseBlockFaceCulling
	s.useOcclusionCulling = o.UseOcclusionCulling
	s.useRasterOcclusionCulling = o.UseRasterOcclusionCulling
	s.arenaAllocator = normalizeArena(o.ArenaAllocator)
}

// Reset restores the defaults.
func Reset() {
	Apply(newRenderSettings().snapshotLocked())
}

func (s *RenderSettings) snapshotLocked() FrameOptions {
	return FrameOptions{
		RenderDistance:            s.renderDistance,
		BuilderThreads:            s.builderThreads,
		AlwaysDeferChunkUpdates:   s.alwaysDeferChunkUpdates,
		UseBlockFaceCulling:       s.useBlockFaceCulling,
		UseOcclusionCulling:       s.useOcclusionCulling,
		UseRasterOcclusionCulling: s.useRasterOcclusionCulling,
		ArenaAllocator:            s.arenaAllocator,
	}
}

// GetRenderDistance returns the current render distance in chunks
func GetRenderDistance() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.renderDistance
}

// SetRenderDistance sets the render distance in chunks
func SetRenderDistance(distance int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.renderDistance = clampRenderDistance(distance)
}

func clampRenderDistance(distance int) int {
	// Clamp to reasonable values
	if distance < MinRenderDistance {
		distance = MinRenderDistance
	}
	if distance > MaxRenderDistance {
		distance = MaxRenderDistance
	}
	return distance
}

func normalizeArena(name string) string {
	if name == ArenaSwap {
		return ArenaSwap
	}
	return ArenaAsync
}

// GetChunkLoadRadius returns radius for chunk loading (slightly larger than render distance)
func GetChunkLoadRadius() int {
	return GetRenderDistance() + 1
}

// GetChunkEvictRadius returns radius for chunk eviction (larger than load radius)
func GetChunkEvictRadius() int {
	return GetRenderDistance() + 3
}

// BuilderThreads resolves the configured worker count. Zero picks one less
// than the number of CPUs, with a minimum of one.
func BuilderThreads() int {
	globalRenderSettings.mu.RLock()
	n := globalRenderSettings.builderThreads
	globalRenderSettings.mu.RUnlock()
	if n > 0 {
		return n
	}
	return max(runtime.NumCPU()-1, 1)
}

func SetAlwaysDeferChunkUpdates(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.alwaysDeferChunkUpdates = enabled
}

func SetUseOcclusionCulling(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.useOcclusionCulling = enabled
}

func SetUseRasterOcclusionCulling(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.useRasterOcclusionCulling = enabled
}

func SetUseBlockFaceCulling(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.useBlockFaceCulling = enabled
}
