package config

import "sync"

// WorldGenSettings holds world generation configuration
type WorldGenSettings struct {
	mu       sync.RWMutex
	seed     int64
	seaLevel int
	caves    bool
	// Section coordinate range [bottom, top) of generated columns.
	bottom, top int
}

var globalWorldGenSettings = &WorldGenSettings{
	seed:     1337,
	seaLevel: 40,
	caves:    true,
	bottom:   0,
	top:      8,
}

// GetSeed returns the terrain seed
func GetSeed() int64 {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seed
}

// SetSeed sets the terrain seed
func SetSeed(seed int64) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.seed = seed
}

// GetSeaLevel returns the configured sea level
func GetSeaLevel() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seaLevel
}

// SetSeaLevel sets the sea level
func SetSeaLevel(level int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.seaLevel = level
}

// GetCaves returns whether caves are enabled
func GetCaves() bool {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.caves
}

// SetCaves sets whether caves are enabled
func SetCaves(enabled bool) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.caves = enabled
}

// GetWorldHeight returns the section coordinate range [bottom, top)
func GetWorldHeight() (int, int) {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.bottom, globalWorldGenSettings.top
}

// SetWorldHeight sets the section coordinate range. An empty range is
// widened to a single section.
func SetWorldHeight(bottom, top int) {
	if top <= bottom {
		top = bottom + 1
	}
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.bottom = bottom
	globalWorldGenSettings.top = top
}
