package main

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl32"

	"sectionrender/internal/camera"
	"sectionrender/internal/config"
	"sectionrender/internal/graph"
	"sectionrender/internal/profiling"
	"sectionrender/internal/region"
	"sectionrender/internal/render"
	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

const (
	cameraHeight = 72
	orbitSpeed   = 0.01
	evictEvery   = 60
)

// FrameLoop drives the renderer headless: the camera orbits the origin while
// terrain streams in around it.
type FrameLoop struct {
	store    *world.ChunkStore
	streamer *world.ChunkStreamer
	manager  *render.Manager
	opts     options
	rng      *rand.Rand
	view     *camera.Camera

	loaded   map[world.ColumnPos]struct{}
	center   world.ColumnPos
	centered bool
	frame    int
	angle  float64
	drawer countingDrawer

	lastStats time.Time
}

func NewFrameLoop(store *world.ChunkStore, streamer *world.ChunkStreamer, manager *render.Manager, opts options) *FrameLoop {
	return &FrameLoop{
		store:     store,
		streamer:  streamer,
		manager:   manager,
		opts:      opts,
		rng:       rand.New(rand.NewPCG(uint64(opts.Seed), 0)),
		view:      newView(manager.RenderDistance()),
		loaded:    make(map[world.ColumnPos]struct{}),
		lastStats: time.Now(),
	}
}

// Run renders frames until ctx is done or the configured frame count is
// reached.
func (l *FrameLoop) Run(ctx context.Context) error {
	if l.opts.Warmup {
		if err := l.warmup(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(l.opts.FrameDuration)
	defer ticker.Stop()

	for l.opts.Frames == 0 || l.frame < l.opts.Frames {
		l.tick()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// warmup generates the terrain around the first camera position and builds
// every section before the first frame.
func (l *FrameLoop) warmup(ctx context.Context) error {
	camera := l.camera()
	cx, cz := columnOf(camera)
	added := l.streamer.StreamAroundSync(cx, cz, l.manager.RenderDistance())
	l.syncLoadedColumns(cx, cz, added)

	l.manager.Update(camera, l.frustum(), l.frame, false)
	start := time.Now()
	if err := l.manager.UpdateAllChunksNow(ctx); err != nil {
		return err
	}

	logs.WithTag("sections", l.manager.TotalSections()).
		WithTag("duration", time.Since(start).String()).
		Info("warmup done")
	return nil
}

func (l *FrameLoop) tick() {
	profiling.ResetFrame()
	l.frame++
	l.angle += orbitSpeed

	camera := l.camera()
	cx, cz := columnOf(camera)

	l.processWorldUpdates(cx, cz)

	func() {
		defer profiling.Track("render.Frame")()
		l.manager.Update(camera, l.frustum(), l.frame, false)
		l.manager.UpdateChunks()
		l.renderFrame()
	}()

	if time.Since(l.lastStats) >= l.opts.StatsInterval {
		l.logStats()
		l.lastStats = time.Now()
	}
}

// camera moves the view along the orbit, looking along its tangent and
// slightly down.
func (l *FrameLoop) camera() mgl32.Vec3 {
	r := l.opts.OrbitRadius
	l.view.Position = mgl32.Vec3{
		float32(math.Cos(l.angle) * r),
		cameraHeight,
		float32(math.Sin(l.angle) * r),
	}
	l.view.Look(l.angle*180/math.Pi+90, -15)
	return l.view.Position
}

func (l *FrameLoop) frustum() graph.Frustum {
	return l.view.Frustum(1)
}

func newView(renderDistance int) *camera.Camera {
	c := camera.New(16, 9)
	c.FOV = 70
	c.NearPlane = 0.05
	c.FarPlane = float32(renderDistance * world.SectionSize * 2)
	return c
}

func columnOf(camera mgl32.Vec3) (int, int) {
	return world.BlockToSection(int(math.Floor(float64(camera.X())))),
		world.BlockToSection(int(math.Floor(float64(camera.Z()))))
}

func (l *FrameLoop) processWorldUpdates(cx, cz int) {
	rd := l.manager.RenderDistance()

	l.streamer.StreamAroundAsync(cx, cz, config.GetChunkLoadRadius())
	l.syncLoadedColumns(cx, cz, l.streamer.DrainReady())

	if l.frame%evictEvery == 0 {
		func() {
			defer profiling.Track("world.EvictFarChunks")()
			l.streamer.EvictOutside(cx, cz, max(config.GetChunkEvictRadius(), rd+1))
		}()
	}

	if l.opts.EditInterval > 0 && l.frame%l.opts.EditInterval == 0 {
		l.editRandomBlock(cx, cz)
	}
}

// syncLoadedColumns keeps the renderer's columns in step with the camera.
// While the camera stays in its column only the freshly generated columns in
// ready are loaded. When it moves, the columns that left the render distance
// are unloaded first, which frees their graph slots, and the whole area is
// scanned for stored columns that came into range.
func (l *FrameLoop) syncLoadedColumns(cx, cz int, ready []world.ColumnPos) {
	defer profiling.Track("render.SyncColumns")()
	rd := l.manager.RenderDistance()
	center := world.ColumnPos{X: cx, Z: cz}

	if l.centered && center == l.center {
		for _, pos := range ready {
			if max(abs(pos.X-cx), abs(pos.Z-cz)) <= rd {
				l.loadColumn(pos)
			}
		}
		return
	}
	l.center, l.centered = center, true

	for pos := range l.loaded {
		if max(abs(pos.X-cx), abs(pos.Z-cz)) > rd {
			l.manager.UnloadChunk(pos.X, pos.Z)
			delete(l.loaded, pos)
		}
	}

	for x := cx - rd; x <= cx+rd; x++ {
		for z := cz - rd; z <= cz+rd; z++ {
			l.loadColumn(world.ColumnPos{X: x, Z: z})
		}
	}
}

func (l *FrameLoop) loadColumn(pos world.ColumnPos) {
	if _, ok := l.loaded[pos]; ok || !l.store.HasChunk(pos) {
		return
	}
	l.manager.LoadChunk(pos.X, pos.Z)
	l.loaded[pos] = struct{}{}
}

// editRandomBlock toggles a block around the camera column and rebuilds the touched
// sections.
func (l *FrameLoop) editRandomBlock(cx, cz int) []world.SectionPos {
	x := cx*world.SectionSize + l.rng.IntN(world.SectionSize*3) - world.SectionSize
	z := cz*world.SectionSize + l.rng.IntN(world.SectionSize*3) - world.SectionSize
	bottom := l.store.BottomSectionCoord() * world.SectionSize
	y := bottom + l.rng.IntN(l.store.TopSectionCoord()*world.SectionSize-bottom)
	pos := world.BlockPos{X: x, Y: y, Z: z}

	b := world.BlockTypeGlass
	if l.store.Get(pos) != world.BlockTypeAir {
		b = world.BlockTypeAir
	}

	dirty := l.store.Set(pos, b)
	for _, s := range dirty {
		important := s.Column() == world.ColumnPos{X: cx, Z: cz}
		l.manager.ScheduleRebuild(s.X, s.Y, s.Z, important)
	}
	return dirty
}

func (l *FrameLoop) renderFrame() {
	defer profiling.Track("render.Draw")()

	l.drawer.reset()
	for _, pass := range section.Passes {
		l.manager.RenderLayer(pass, &l.drawer)
	}
	l.drawer.sprites = len(l.manager.TickVisibleRenders())
	l.drawer.blockEntities = len(l.manager.VisibleBlockEntities())
}

func (l *FrameLoop) logStats() {
	logs.WithTag("frame", l.frame).
		WithTag("sections", l.manager.TotalSections()).
		WithTag("visible", l.manager.VisibleChunkCount()).
		WithTag("draws", l.drawer.draws).
		WithTag("vertices", l.drawer.vertices).
		WithTag("animated_sprites", l.drawer.sprites).
		WithTag("block_entities", l.drawer.blockEntities).
		WithTag("pending_columns", l.streamer.Pending()).
		WithTag("top", profiling.TopN(5)).
		Info("frame stats")

	for _, line := range l.manager.DebugStrings() {
		logs.Debug(line)
	}
}

// HandleDebug writes the slowest operations of the current frame.
func (l *FrameLoop) HandleDebug(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, strings.ReplaceAll(profiling.TopN(10), ", ", "\n")+"\n")
}

// Close stops the renderer and optionally saves the world.
func (l *FrameLoop) Close(savePath string) error {
	l.manager.Destroy()
	l.streamer.Close()

	if savePath == "" {
		return nil
	}
	return saveWorld(savePath, l.store)
}

// countingDrawer records what a real renderer would draw.
type countingDrawer struct {
	draws         int
	vertices      int
	sprites       int
	blockEntities int
}

func (d *countingDrawer) reset() {
	*d = countingDrawer{}
}

func (d *countingDrawer) DrawSection(r *region.Region, g *region.Geometry, s *section.Section, faces section.FaceMask) {
	for f := range section.Facing(section.FacingCount) {
		if faces.Has(f) && g.Parts[f].Count > 0 {
			d.draws++
			d.vertices += g.Parts[f].Count
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
