package render

import (
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"sectionrender/internal/config"
	"sectionrender/internal/graph"
	"sectionrender/internal/profiling"
	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

// Update walks the section graph outwards from the camera and rebuilds the
// render list, the tick list, the block entity list and the rebuild queues.
// Spectators inside an opaque block see through everything for the frame.
func (m *Manager) Update(camera mgl32.Vec3, frustum graph.Frustum, frame int, spectator bool) {
	defer profiling.Track("render.Update")()
	start := time.Now()

	m.opts = config.Snapshot()
	m.camera = camera
	m.frustum = frustum
	m.frame = frame
	m.useOcclusion = m.opts.UseOcclusionCulling

	m.resetLists()
	m.initSearch(spectator)
	m.iterateChunks()

	m.needsUpdate = false
	instrumentTraversal(time.Since(start), m.state.VisibleCount(), m.renderList.Count())
}

func (m *Manager) resetLists() {
	m.state.Reset()
	m.renderList.Clear()
	clear(m.tickable)
	m.tickable = m.tickable[:0]
	clear(m.blockEntities)
	m.blockEntities = m.blockEntities[:0]
	for i := range m.rebuildQueues {
		m.rebuildQueues[i].Clear()
	}
	m.frontier.Clear()
}

func (m *Manager) initSearch(spectator bool) {
	origin := world.BlockPos{
		X: floorToInt(m.camera.X()),
		Y: floorToInt(m.camera.Y()),
		Z: floorToInt(m.camera.Z()),
	}
	m.cameraSec = origin.Section()

	if root, id := m.sectionAt(m.cameraSec); root != nil {
		if spectator && m.provider.IsOpaqueFullCube(origin) {
			m.useOcclusion = false
		}
		m.enqueue(id)
		return
	}

	// The camera is outside the loaded world. Seed with the columns at the
	// closest height, farthest first.
	y := min(max(m.cameraSec.Y, m.bottom), m.top-1)
	cx, cz := m.cameraSec.X, m.cameraSec.Z

	type seed struct {
		id, dist int
	}
	var seeds []seed
	for x := cx - m.renderDistance; x <= cx+m.renderDistance; x++ {
		for z := cz - m.renderDistance; z <= cz+m.renderDistance; z++ {
			pos := world.SectionPos{X: x, Y: y, Z: z}
			s, id := m.sectionAt(pos)
			if s == nil || m.isCulledByFrustum(id, pos) {
				continue
			}
			dx, dz := x-cx, z-cz
			seeds = append(seeds, seed{id: id, dist: dx*dx + dz*dz})
		}
	}

	sort.SliceStable(seeds, func(i, j int) bool { return seeds[i].dist > seeds[j].dist })
	for _, s := range seeds {
		m.enqueue(s.id)
	}
}

func (m *Manager) enqueue(id int) {
	m.state.MarkVisible(id)
	m.frontier.PushBack(id)
}

func (m *Manager) iterateChunks() {
	raycast := m.useOcclusion && m.opts.UseRasterOcclusionCulling

	for m.frontier.Len() > 0 {
		id := m.frontier.PopFront()
		s := m.state.Section(id)
		m.addSectionToLists(s)

		pos := s.Pos()
		if raycast && m.raycast(pos, m.cameraSec) {
			continue
		}

		for _, dir := range world.Directions {
			adjPos := pos.Offset(dir)
			adj, adjID := m.sectionAt(adjPos)
			if adj == nil {
				continue
			}
			if m.useOcclusion && (m.isCulledByGraph(id, dir) || m.isCulledByFrustum(adjID, adjPos)) {
				continue
			}

			if !m.state.IsVisible(adjID) {
				m.state.AddCulling(adjID, m.state.CullingState(id), dir)
				m.enqueue(adjID)
			}
			m.state.AddDirection(adjID, dir)
		}
	}
}

// isCulledByGraph reports whether leaving slot id towards dir is pointless:
// either it turns back on the path taken so far, or no face the section was
// entered through can see the face towards dir.
func (m *Manager) isCulledByGraph(id int, dir world.Direction) bool {
	if m.state.CullingState(id)&(1<<dir.Opposite()) != 0 {
		return true
	}

	entered := m.state.Direction(id)
	if entered == 0 {
		return false
	}

	vis := m.state.VisibilityData(id)
	for _, from := range world.Directions {
		if entered&(1<<from) != 0 && graph.IsVisibleThrough(vis, from.Opposite(), dir) {
			return false
		}
	}
	return true
}

func (m *Manager) isCulledByFrustum(id int, pos world.SectionPos) bool {
	return m.frustumCheck(id, pos) == graph.Outside
}

// frustumCheck tests a section box once per frame and caches the result.
func (m *Manager) frustumCheck(id int, pos world.SectionPos) graph.Visibility {
	if v := m.state.FrustumCache(id); v != 0 {
		return v
	}

	o := pos.Origin()
	x, y, z := float32(o.X), float32(o.Y), float32(o.Z)
	v := m.frustum.TestBox(x, y, z, x+world.SectionSize, y+world.SectionSize, z+world.SectionSize)
	m.state.SetFrustumCache(id, v)
	return v
}

func (m *Manager) addSectionToLists(s *section.Section) {
	if s.NeedsSubmit() {
		t := s.PendingUpdate()
		q := &m.rebuildQueues[t-1]
		if q.Len() < t.MaximumQueueSize() {
			q.PushBack(s)
		}
	}

	if s.HasFlag(section.FlagHasBlockGeometry) {
		m.renderList.Add(s, m.visibleFaces(s))
	}
	if s.HasFlag(section.FlagHasAnimatedSprites) {
		m.tickable = append(m.tickable, s)
	}
	if s.HasFlag(section.FlagHasBlockEntities) {
		m.blockEntities = append(m.blockEntities, s)
	}
}

// visibleFaces returns the facings of s that can face the camera.
func (m *Manager) visibleFaces(s *section.Section) section.FaceMask {
	if !m.opts.UseBlockFaceCulling {
		return section.FaceAll
	}

	b := s.Bounds()
	c := m.camera
	faces := section.FaceUnassigned
	if c.Y() > b.Min.Y() {
		faces |= section.FaceUp
	}
	if c.Y() < b.Max.Y() {
		faces |= section.FaceDown
	}
	if c.X() > b.Min.X() {
		faces |= section.FaceEast
	}
	if c.X() < b.Max.X() {
		faces |= section.FaceWest
	}
	if c.Z() > b.Min.Z() {
		faces |= section.FaceSouth
	}
	if c.Z() < b.Max.Z() {
		faces |= section.FaceNorth
	}
	return faces
}
