package render

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"sectionrender/internal/builder"
	"sectionrender/internal/config"
	"sectionrender/internal/graph"
	"sectionrender/internal/meshing"
	"sectionrender/internal/region"
	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

var camera = mgl32.Vec3{8, 8, 8}

func newTestManager(t *testing.T, store *world.ChunkStore, rd int) *Manager {
	t.Helper()
	m := NewManager(store, builder.New(2), meshing.NewFactory(store), Options{RenderDistance: rd})
	t.Cleanup(m.Destroy)
	return m
}

func loadGrid(m *Manager, rd int) {
	for x := -rd; x <= rd; x++ {
		for z := -rd; z <= rd; z++ {
			m.LoadChunk(x, z)
		}
	}
}

func flatStore(rd int) *world.ChunkStore {
	store := world.NewChunkStore(0, 1)
	gen := world.NewFlatGenerator(2)
	for x := -rd; x <= rd; x++ {
		for z := -rd; z <= rd; z++ {
			gen.PopulateChunk(store.GetChunk(world.ColumnPos{X: x, Z: z}, true))
		}
	}
	return store
}

// wallStore returns an empty world with a stone wall filling the sections
// at column x=1.
func wallStore() *world.ChunkStore {
	store := world.NewChunkStore(0, 1)
	for z := -2 * world.SectionSize; z < 3*world.SectionSize; z++ {
		for y := 0; y < world.SectionSize; y++ {
			for x := world.SectionSize; x < 2*world.SectionSize; x++ {
				store.Set(world.BlockPos{X: x, Y: y, Z: z}, world.BlockTypeStone)
			}
		}
	}
	return store
}

func buildAll(t *testing.T, m *Manager, frame int) {
	t.Helper()
	buildAllFrom(t, m, camera, frame)
}

func buildAllFrom(t *testing.T, m *Manager, cam mgl32.Vec3, frame int) {
	t.Helper()
	m.Update(cam, graph.AcceptAll{}, frame, false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, m.UpdateAllChunksNow(ctx))
	require.False(t, m.IsGraphDirty())
}

type countingDrawer map[world.SectionPos]int

func (d countingDrawer) DrawSection(r *region.Region, g *region.Geometry, s *section.Section, faces section.FaceMask) {
	d[s.Pos()]++
}

func TestOpenGridIsFullyVisible(t *testing.T) {
	m := newTestManager(t, world.NewChunkStore(0, 1), 2)
	loadGrid(m, 2)
	require.Equal(t, 25, m.TotalSections())
	require.True(t, m.IsGraphDirty())

	m.Update(camera, graph.AcceptAll{}, 1, false)
	require.False(t, m.IsGraphDirty())

	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			require.True(t, m.IsSectionVisible(x, 0, z), "%d,%d", x, z)
		}
	}
	require.Zero(t, m.VisibleChunkCount())
	require.False(t, m.IsSectionVisible(3, 0, 0))
}

func TestEverySectionIsDrawnOnce(t *testing.T) {
	m := newTestManager(t, flatStore(2), 2)
	loadGrid(m, 2)
	buildAll(t, m, 1)

	m.Update(camera, graph.AcceptAll{}, 2, false)
	require.Equal(t, 25, m.VisibleChunkCount())

	d := countingDrawer{}
	m.RenderLayer(section.PassSolid, d)
	require.Len(t, d, 25)
	for pos, n := range d {
		require.Equal(t, 1, n, pos.String())
	}

	lines := m.DebugStrings()
	require.Len(t, lines, 4)
	require.Equal(t, "Chunk arena allocator: async", lines[0])
	require.Contains(t, lines[2], "Device memory: ")
}

func TestTallWorldIsFullyVisible(t *testing.T) {
	const bottom, top = -4, 20

	// One stone block per section: every section has geometry and stays
	// open on all faces.
	store := world.NewChunkStore(bottom, top)
	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			for y := bottom; y < top; y++ {
				o := world.SectionPos{X: x, Y: y, Z: z}.Origin()
				store.Set(world.BlockPos{X: o.X + 8, Y: o.Y + 8, Z: o.Z + 8}, world.BlockTypeStone)
			}
		}
	}

	m := newTestManager(t, store, 2)
	loadGrid(m, 2)
	require.Equal(t, 25*(top-bottom), m.TotalSections())

	cam := mgl32.Vec3{8, 168, 8}
	m.Update(cam, graph.AcceptAll{}, 1, false)
	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			for y := bottom; y < top; y++ {
				require.True(t, m.IsSectionVisible(x, y, z), "%d,%d,%d", x, y, z)
			}
		}
	}
	require.False(t, m.IsSectionVisible(0, bottom-1, 0))
	require.False(t, m.IsSectionVisible(0, top, 0))

	buildAllFrom(t, m, cam, 2)
	m.Update(cam, graph.AcceptAll{}, 3, false)
	require.Equal(t, 25*(top-bottom), m.VisibleChunkCount())

	d := countingDrawer{}
	m.RenderLayer(section.PassSolid, d)
	require.Len(t, d, 25*(top-bottom))
}

func TestSolidWallHidesSectionsBehindIt(t *testing.T) {
	m := newTestManager(t, wallStore(), 2)
	loadGrid(m, 2)

	// Unbuilt sections are see-through.
	m.Update(camera, graph.AcceptAll{}, 1, false)
	require.True(t, m.IsSectionVisible(2, 0, 0))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, m.UpdateAllChunksNow(ctx))
	require.False(t, m.IsGraphDirty())

	m.Update(camera, graph.AcceptAll{}, 2, false)
	for z := -2; z <= 2; z++ {
		require.True(t, m.IsSectionVisible(1, 0, z))
		require.False(t, m.IsSectionVisible(2, 0, z))
		require.True(t, m.IsSectionVisible(-2, 0, z))
	}
	require.Equal(t, 5, m.VisibleChunkCount())
}

func TestOcclusionCullingDisabledVisitsEverything(t *testing.T) {
	t.Cleanup(config.Reset)

	m := newTestManager(t, wallStore(), 2)
	loadGrid(m, 2)
	buildAll(t, m, 1)

	config.SetUseOcclusionCulling(false)
	m.Update(camera, graph.AcceptAll{}, 2, false)

	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			require.True(t, m.IsSectionVisible(x, 0, z))
		}
	}

	d := countingDrawer{}
	m.RenderLayer(section.PassSolid, d)
	require.Len(t, d, 5)
	for _, n := range d {
		require.Equal(t, 1, n)
	}
}

func TestSpectatorInsideBlockSeesEverything(t *testing.T) {
	store := wallStore()
	store.Set(world.BlockPos{X: 8, Y: 8, Z: 8}, world.BlockTypeStone)

	m := newTestManager(t, store, 2)
	loadGrid(m, 2)
	buildAll(t, m, 1)

	m.Update(camera, graph.AcceptAll{}, 2, false)
	require.False(t, m.IsSectionVisible(2, 0, 0))

	m.Update(camera, graph.AcceptAll{}, 3, true)
	require.True(t, m.IsSectionVisible(2, 0, 0))
}

func TestCameraOutsideWorldSeedsFarthestFirst(t *testing.T) {
	m := newTestManager(t, flatStore(2), 2)
	loadGrid(m, 2)
	buildAll(t, m, 1)

	m.Update(mgl32.Vec3{8, 100, 8}, graph.AcceptAll{}, 2, false)
	require.Equal(t, 25, m.VisibleChunkCount())

	first := m.renderList.Batches()[0].Entries[0].Section
	require.Equal(t, world.SectionPos{X: -2, Y: 0, Z: -2}, first.Pos())
}

type rejectAll struct{}

func (rejectAll) TestBox(minX, minY, minZ, maxX, maxY, maxZ float32) graph.Visibility {
	return graph.Outside
}

func TestFrustumCullsSections(t *testing.T) {
	m := newTestManager(t, world.NewChunkStore(0, 1), 2)
	loadGrid(m, 2)

	m.Update(camera, rejectAll{}, 1, false)
	require.True(t, m.IsSectionVisible(0, 0, 0))
	require.False(t, m.IsSectionVisible(1, 0, 0))
}

func TestRaycast(t *testing.T) {
	m := newTestManager(t, world.NewChunkStore(0, 4), 2)
	m.state.Reset()

	// The target is outside the usable height.
	require.False(t, m.raycast(world.SectionPos{X: 3, Y: 1}, world.SectionPos{Y: 0}))
	require.False(t, m.raycast(world.SectionPos{X: 3, Y: 1}, world.SectionPos{Y: 4}))

	// Unreached cells inside the frustum occlude.
	require.True(t, m.raycast(world.SectionPos{X: 3, Y: 1}, world.SectionPos{Y: 2}))

	// Reached cells build confidence.
	for x := 0; x < 8; x++ {
		m.state.MarkVisible(m.state.Index(x, 2, 0))
	}
	require.False(t, m.raycast(world.SectionPos{X: 7, Y: 2}, world.SectionPos{Y: 2}))

	m.state.Reset()
	m.frustum = rejectAll{}
	require.False(t, m.raycast(world.SectionPos{X: 3, Y: 1}, world.SectionPos{Y: 2}))
}

func TestLoadAndUnloadPreconditions(t *testing.T) {
	m := newTestManager(t, world.NewChunkStore(0, 2), 2)
	m.LoadChunk(0, 0)
	require.Equal(t, 2, m.TotalSections())

	require.Panics(t, func() { m.LoadChunk(0, 0) })
	require.Panics(t, func() { m.UnloadChunk(1, 1) })

	m.UnloadChunk(0, 0)
	require.Zero(t, m.TotalSections())
	require.False(t, m.IsSectionVisible(0, 0, 0))
}

type gatedFactory struct {
	*meshing.Factory
	gate chan struct{}
}

func (f gatedFactory) CreateTask(cache *world.SectionCache, s *section.Section, frame int) builder.Task {
	return gatedTask{Task: f.Factory.CreateTask(cache, s, frame), gate: f.gate}
}

type gatedTask struct {
	builder.Task
	gate <-chan struct{}
}

func (t gatedTask) Execute(ctx context.Context) (*builder.Result, error) {
	<-t.gate
	return t.Task.Execute(context.Background())
}

func TestUnloadWhileBuildInFlight(t *testing.T) {
	store := flatStore(0)
	exec := builder.New(1)
	gate := make(chan struct{})
	m := NewManager(store, exec, gatedFactory{Factory: meshing.NewFactory(store), gate: gate}, Options{RenderDistance: 2})
	t.Cleanup(m.Destroy)

	m.LoadChunk(0, 0)
	m.Update(camera, graph.AcceptAll{}, 1, false)
	m.UpdateChunks()

	old, _ := m.sectionAt(world.SectionPos{})
	require.False(t, old.NeedsSubmit())

	m.UnloadChunk(0, 0)
	m.LoadChunk(0, 0)
	close(gate)

	require.Eventually(t, exec.IsIdle, 5*time.Second, time.Millisecond)
	m.UpdateChunks()

	s, _ := m.sectionAt(world.SectionPos{})
	require.NotSame(t, old, s)
	require.False(t, s.IsBuilt())
	require.True(t, s.NeedsSubmit())

	m.Update(camera, graph.AcceptAll{}, 2, false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, m.UpdateAllChunksNow(ctx))
	require.True(t, s.IsBuilt())
	require.Equal(t, section.UpdateNone, s.PendingUpdate())
}

func TestStaleResultsAreDiscarded(t *testing.T) {
	m := newTestManager(t, flatStore(0), 2)
	m.LoadChunk(0, 0)
	s, _ := m.sectionAt(world.SectionPos{})
	s.SetRebuildFuture(nil, 5)

	released := 0
	release := func() { released++ }
	results := []*builder.Result{
		builder.NewResult(uuid.New(), s.Pos(), 5, section.EmptyRenderData, release),
		builder.NewResult(s.ID(), s.Pos(), 4, section.EmptyRenderData, release),
		builder.NewResult(s.ID(), world.SectionPos{X: 1}, 5, section.EmptyRenderData, release),
	}
	require.False(t, m.processBuiltChunks(slices.Values(results)))
	require.Equal(t, 3, released)
	require.False(t, s.IsBuilt())

	require.True(t, m.processBuiltChunks(slices.Values([]*builder.Result{
		builder.NewResult(s.ID(), s.Pos(), 5, section.EmptyRenderData, release),
	})))
	require.Equal(t, 4, released)
	require.True(t, s.IsBuilt())
}

func TestUpdateAllChunksNowInterrupted(t *testing.T) {
	store := flatStore(0)
	gate := make(chan struct{})
	defer close(gate)
	m := NewManager(store, builder.New(1), gatedFactory{Factory: meshing.NewFactory(store), gate: gate}, Options{RenderDistance: 2})
	t.Cleanup(m.Destroy)

	m.LoadChunk(0, 0)
	m.Update(camera, graph.AcceptAll{}, 1, false)
	// A deferred build keeps the executor busy.
	m.UpdateChunks()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.UpdateAllChunksNow(ctx)
	require.Error(t, err)
	require.True(t, m.IsGraphDirty())
}

func TestScheduleRebuild(t *testing.T) {
	t.Cleanup(config.Reset)

	m := newTestManager(t, flatStore(4), 4)
	loadGrid(m, 4)

	// Unbuilt sections are ignored.
	m.ScheduleRebuild(0, 0, 0, true)
	s, _ := m.sectionAt(world.SectionPos{})
	require.Equal(t, section.UpdateInitialBuild, s.PendingUpdate())

	buildAll(t, m, 1)
	require.Equal(t, section.UpdateNone, s.PendingUpdate())

	m.ScheduleRebuild(0, 0, 0, true)
	require.Equal(t, section.UpdateImportantRebuild, s.PendingUpdate())
	require.True(t, m.IsGraphDirty())

	// The defer setting is sampled when a frame starts.
	config.SetAlwaysDeferChunkUpdates(true)
	sampled, _ := m.sectionAt(world.SectionPos{X: 1})
	m.ScheduleRebuild(1, 0, 0, true)
	require.Equal(t, section.UpdateImportantRebuild, sampled.PendingUpdate())

	m.Update(camera, graph.AcceptAll{}, 2, false)
	other, _ := m.sectionAt(world.SectionPos{X: 2})
	m.ScheduleRebuild(2, 0, 0, true)
	require.Equal(t, section.UpdateRebuild, other.PendingUpdate())

	for x := -4; x <= 4; x++ {
		for z := -4; z <= 4; z++ {
			m.ScheduleRebuild(x, 0, z, false)
		}
	}
	m.Update(camera, graph.AcceptAll{}, 3, false)
	require.Equal(t, 2, m.rebuildQueues[section.UpdateImportantRebuild-1].Len())
	require.Equal(t, section.UpdateRebuild.MaximumQueueSize(), m.rebuildQueues[section.UpdateRebuild-1].Len())

	// Important rebuilds are awaited within the call.
	m.UpdateChunks()
	require.Equal(t, section.UpdateNone, s.PendingUpdate())
	require.Equal(t, section.UpdateNone, sampled.PendingUpdate())
}

func TestTickablesAndBlockEntities(t *testing.T) {
	store := flatStore(1)
	store.Set(world.BlockPos{X: 3, Y: 3, Z: 3}, world.BlockTypeLava)
	store.Set(world.BlockPos{X: 20, Y: 3, Z: 4}, world.BlockTypeChest)

	var built []world.SectionPos
	m := NewManager(store, builder.New(2), meshing.NewFactory(store), Options{
		RenderDistance: 2,
		OnSectionBuilt: func(s *section.Section) { built = append(built, s.Pos()) },
	})
	t.Cleanup(m.Destroy)
	loadGrid(m, 1)
	buildAll(t, m, 1)
	require.Len(t, built, 9)

	m.Update(camera, graph.AcceptAll{}, 2, false)
	require.Equal(t, []string{"lava_still"}, m.TickVisibleRenders())
	require.Equal(t, []world.BlockPos{{X: 20, Y: 3, Z: 4}}, m.VisibleBlockEntities())
}
