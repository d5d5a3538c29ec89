// Package render decides every frame which sections are visible, which
// sections must be rebuilt, and feeds finished builds back into the graph.
package render

import (
	"fmt"
	"iter"
	"math"
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/gammazero/deque"
	"github.com/go-gl/mathgl/mgl32"

	"sectionrender/internal/builder"
	"sectionrender/internal/config"
	"sectionrender/internal/graph"
	"sectionrender/internal/region"
	"sectionrender/internal/renderlist"
	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

const (
	ErrTypeSectionLoaded    = "section-already-loaded"
	ErrTypeSectionNotLoaded = "section-not-loaded"
	ErrTypeDrainInterrupted = "build-drain-interrupted"
)

// Executor runs build tasks. *builder.Builder implements it.
type Executor interface {
	Schedule(task builder.Task) *builder.Future
	ScheduleDeferred(task builder.Task) *builder.Future
	AsyncResults() iter.Seq[*builder.Result]
	StealTask() bool
	IsIdle() bool
	SchedulingBudget() int
	Shutdown()
}

// TaskFactory snapshots the world for a section build.
type TaskFactory interface {
	NewSectionCache() *world.SectionCache
	CreateTask(cache *world.SectionCache, s *section.Section, frame int) builder.Task
}

// Drawer receives the geometry of the visible sections of a pass.
type Drawer interface {
	DrawSection(r *region.Region, g *region.Geometry, s *section.Section, faces section.FaceMask)
}

// Options configure a Manager. The render distance is fixed for the lifetime
// of a manager.
type Options struct {
	RenderDistance int
	ArenaAllocator string
	// OnSectionBuilt is called after a build result has been applied.
	OnSectionBuilt func(s *section.Section)
}

// Manager owns the render sections of the loaded world. All methods must be
// called from the frame goroutine.
type Manager struct {
	provider world.Provider
	executor Executor
	factory  TaskFactory
	regions  *region.Manager
	onBuilt  func(s *section.Section)

	state          *graph.State
	renderDistance int
	bottom, top    int
	sectionCount   int

	renderList    *renderlist.List
	tickable      []*section.Section
	blockEntities []*section.Section
	rebuildQueues [len(section.UpdateTypes)]deque.Deque[*section.Section]
	frontier      deque.Deque[int]

	opts         config.FrameOptions
	useOcclusion bool
	camera       mgl32.Vec3
	cameraSec    world.SectionPos
	frustum      graph.Frustum
	frame        int
	needsUpdate  bool
}

// NewManager creates a manager for the world of provider.
func NewManager(provider world.Provider, executor Executor, factory TaskFactory, o Options) *Manager {
	rd := min(max(o.RenderDistance, config.MinRenderDistance), config.MaxRenderDistance)
	bottom, top := provider.BottomSectionCoord(), provider.TopSectionCoord()

	return &Manager{
		provider:       provider,
		executor:       executor,
		factory:        factory,
		regions:        region.NewManager(o.ArenaAllocator),
		onBuilt:        o.OnSectionBuilt,
		state:          graph.NewState(rd, top-bottom),
		renderDistance: rd,
		bottom:         bottom,
		top:            top,
		renderList:     renderlist.New(),
		opts:           config.Snapshot(),
		frustum:        graph.AcceptAll{},
		needsUpdate:    true,
	}
}

// RenderDistance returns the radius in columns the manager can hold.
func (m *Manager) RenderDistance() int { return m.renderDistance }

// sectionAt returns the loaded section at pos and its slot.
func (m *Manager) sectionAt(pos world.SectionPos) (*section.Section, int) {
	if pos.Y < m.bottom || pos.Y >= m.top {
		return nil, -1
	}
	id := m.state.Index(pos.X, pos.Y, pos.Z)
	s := m.state.Section(id)
	if s == nil || s.Pos() != pos {
		return nil, id
	}
	return s, id
}

// LoadChunk creates the sections of a column. Non-empty sections are queued
// for their initial build.
func (m *Manager) LoadChunk(x, z int) {
	for y := m.bottom; y < m.top; y++ {
		pos := world.SectionPos{X: x, Y: y, Z: z}
		id := m.state.Index(x, y, z)
		if m.state.Section(id) != nil {
			panic(errors.New("section slot is occupied").
				WithType(ErrTypeSectionLoaded).
				WithTag("section", pos.String()).
				WithTag("occupant", m.state.Section(id).Pos().String()))
		}

		s := section.New(pos)
		m.state.SetSection(id, s)
		m.state.SetVisibilityData(id, graph.DefaultVisibilityData)
		m.regions.Allocate(s)

		if m.provider.IsSectionEmpty(pos) {
			s.SetData(section.EmptyRenderData)
		} else {
			s.MarkForUpdate(section.UpdateInitialBuild)
		}
		m.sectionCount++
	}

	m.needsUpdate = true
	instrumentLoadedSections(m.sectionCount)
}

// UnloadChunk disposes the sections of a column and cancels their builds.
func (m *Manager) UnloadChunk(x, z int) {
	for y := m.bottom; y < m.top; y++ {
		pos := world.SectionPos{X: x, Y: y, Z: z}
		s, id := m.sectionAt(pos)
		if s == nil {
			panic(errors.New("section is not loaded").
				WithType(ErrTypeSectionNotLoaded).
				WithTag("section", pos.String()))
		}

		s.CancelRebuild()
		s.Dispose()
		m.regions.Release(s)
		m.state.SetSection(id, nil)
		m.sectionCount--
	}

	m.needsUpdate = true
	instrumentLoadedSections(m.sectionCount)
}

// ScheduleRebuild requests a rebuild of a built section. Important rebuilds
// are awaited in the next UpdateChunks unless updates are always deferred.
func (m *Manager) ScheduleRebuild(x, y, z int, important bool) {
	s, _ := m.sectionAt(world.SectionPos{X: x, Y: y, Z: z})
	if s == nil || !s.IsBuilt() {
		return
	}

	t := section.UpdateRebuild
	if important && !m.opts.AlwaysDeferChunkUpdates {
		t = section.UpdateImportantRebuild
	}
	s.MarkForUpdate(t)
	m.needsUpdate = true
}

// OnChunkRenderUpdates stores the occlusion data of a rebuilt section in the
// graph.
func (m *Manager) OnChunkRenderUpdates(x, y, z int, data *section.RenderData) {
	_, id := m.sectionAt(world.SectionPos{X: x, Y: y, Z: z})
	if id < 0 {
		return
	}
	vis := graph.DefaultVisibilityData
	if data != nil {
		vis = graph.VisibilityData(data.Occlusion)
	}
	m.state.SetVisibilityData(id, vis)
}

func (m *Manager) MarkGraphDirty() {
	m.needsUpdate = true
}

// IsGraphDirty reports whether the visible set may have changed since the
// last Update.
func (m *Manager) IsGraphDirty() bool {
	return m.needsUpdate
}

// RenderLayer draws the visible sections that have geometry in pass.
func (m *Manager) RenderLayer(pass section.Pass, d Drawer) {
	m.renderList.ForPass(pass, func(regionID int64, e renderlist.Entry) {
		r := m.regions.Region(regionID)
		if r == nil {
			return
		}
		g := r.Geometry(e.Section.LocalID(), pass)
		if g == nil {
			return
		}
		d.DrawSection(r, g, e.Section, e.Faces)
	})
}

// TickVisibleRenders advances the visible sections with animated textures
// and returns the sprites to animate, sorted.
func (m *Manager) TickVisibleRenders() []string {
	seen := make(map[string]struct{})
	var sprites []string
	for _, s := range m.tickable {
		for _, name := range s.Tick() {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				sprites = append(sprites, name)
			}
		}
	}
	sort.Strings(sprites)
	return sprites
}

// VisibleBlockEntities returns the block entities of the visible sections.
func (m *Manager) VisibleBlockEntities() []world.BlockPos {
	var positions []world.BlockPos
	for _, s := range m.blockEntities {
		positions = append(positions, s.Data().BlockEntities...)
	}
	return positions
}

// IsSectionVisible reports whether the last Update reached the section.
func (m *Manager) IsSectionVisible(x, y, z int) bool {
	s, id := m.sectionAt(world.SectionPos{X: x, Y: y, Z: z})
	return s != nil && m.state.IsVisible(id)
}

func (m *Manager) TotalSections() int { return m.sectionCount }

// VisibleChunkCount returns the number of visible sections with geometry.
func (m *Manager) VisibleChunkCount() int { return m.renderList.Count() }

func (m *Manager) DebugStrings() []string {
	st := m.regions.Stats()
	return []string{
		fmt.Sprintf("Chunk arena allocator: %s", st.Allocator),
		fmt.Sprintf("Device buffer objects: %d", st.BufferCount),
		fmt.Sprintf("Device memory: %d/%d MiB", st.DeviceUsed>>20, st.DeviceAllocated>>20),
		fmt.Sprintf("Staging buffer: %s", st.Staging),
	}
}

// Destroy cancels every build, stops the executor and frees all sections.
func (m *Manager) Destroy() {
	for id := 0; id < m.state.Size(); id++ {
		s := m.state.Section(id)
		if s == nil {
			continue
		}
		s.CancelRebuild()
		s.Dispose()
		m.state.SetSection(id, nil)
	}
	m.executor.Shutdown()

	for i := range m.rebuildQueues {
		m.rebuildQueues[i].Clear()
	}
	m.renderList.Clear()
	m.tickable = nil
	m.blockEntities = nil
	m.regions.Destroy()
	m.sectionCount = 0
	instrumentLoadedSections(0)

	logs.Debug("render section manager destroyed")
}

func floorToInt(v float32) int {
	return int(math.Floor(float64(v)))
}
