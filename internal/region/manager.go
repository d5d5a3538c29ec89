package region

import (
	"github.com/aukilabs/go-tooling/pkg/logs"

	"sectionrender/internal/builder"
	"sectionrender/internal/config"
	"sectionrender/internal/profiling"
	"sectionrender/internal/section"
)

// Stats is a snapshot of device memory use.
type Stats struct {
	Allocator       string
	DeviceUsed      int
	DeviceAllocated int
	BufferCount     int
	Staging         string
}

// Manager owns the regions of the loaded sections and the geometry uploaded
// for them. It is used from the frame goroutine only.
type Manager struct {
	mode    string
	regions map[int64]*Region
	staging StagingBuffer
}

// NewManager creates a manager whose arenas grow with the given allocator
// mode (config.ArenaAsync or config.ArenaSwap).
func NewManager(mode string) *Manager {
	if mode != config.ArenaSwap {
		mode = config.ArenaAsync
	}
	return &Manager{
		mode:    mode,
		regions: make(map[int64]*Region),
	}
}

// Allocate registers a newly loaded section with its region, creating the
// region when needed.
func (m *Manager) Allocate(s *section.Section) {
	key := Key(s.Pos())
	r, ok := m.regions[key]
	if !ok {
		r = newRegion(s.Pos(), m.mode)
		m.regions[key] = r
		instrumentRegions(len(m.regions))
	}
	r.add(s)
}

// Release removes an unloaded section and frees its geometry. Empty regions
// stay around until Cleanup.
func (m *Manager) Release(s *section.Section) {
	r, ok := m.regions[s.RegionID()]
	if !ok {
		return
	}
	r.remove(s)
}

// Region returns a loaded region.
func (m *Manager) Region(id int64) *Region {
	return m.regions[id]
}

// UploadMeshes copies the meshes of finished builds into the arenas of their
// regions, one region at a time.
func (m *Manager) UploadMeshes(results []*builder.Result) {
	defer profiling.Track("region.UploadMeshes")()

	batches := make(map[int64][]*builder.Result)
	var order []int64
	for _, res := range results {
		key := Key(res.Pos)
		if _, ok := batches[key]; !ok {
			order = append(order, key)
		}
		batches[key] = append(batches[key], res)
	}

	for _, key := range order {
		r, ok := m.regions[key]
		if !ok {
			logs.WithTag("region", key).Warn("upload to unloaded region")
			continue
		}
		for _, res := range batches[key] {
			n := r.upload(LocalIndex(res.Pos), res.Meshes)
			m.staging.stage(n)
			instrumentUpload(n)
		}
	}
	m.staging.flush()
	m.instrumentMemory()
}

// Cleanup deletes regions without sections.
func (m *Manager) Cleanup() {
	removed := 0
	for key, r := range m.regions {
		if r.IsEmpty() {
			delete(m.regions, key)
			removed++
		}
	}
	if removed > 0 {
		instrumentRegions(len(m.regions))
		m.instrumentMemory()
	}
}

// LoadedRegions returns the number of regions.
func (m *Manager) LoadedRegions() int {
	return len(m.regions)
}

// Stats sums the device usage of every region.
func (m *Manager) Stats() Stats {
	st := Stats{
		Allocator: m.mode,
		Staging:   m.staging.String(),
	}
	for _, r := range m.regions {
		used, allocated, buffers := r.deviceUsage()
		st.DeviceUsed += used
		st.DeviceAllocated += allocated
		st.BufferCount += buffers
	}
	return st
}

// Destroy drops every region.
func (m *Manager) Destroy() {
	clear(m.regions)
	instrumentRegions(0)
	m.instrumentMemory()
}

func (m *Manager) instrumentMemory() {
	st := m.Stats()
	instrumentDeviceMemory(st.DeviceUsed, st.DeviceAllocated)
}
