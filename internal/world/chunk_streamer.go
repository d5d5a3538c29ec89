package world

import (
	"runtime"
	"sync"

	"sectionrender/internal/profiling"
)

// ChunkStreamer manages asynchronous column generation around a moving centre.
// Columns installed into the store are reported through DrainReady.
type ChunkStreamer struct {
	jobs       chan ColumnPos
	pending    map[ColumnPos]struct{}
	ready      []ColumnPos
	pendingMu  sync.Mutex
	maxPending int

	maxJobsPerCall int

	wg sync.WaitGroup

	store *ChunkStore
	gen   TerrainGenerator
}

// NewChunkStreamer creates a streamer with the given number of generation
// workers. A non-positive count uses one worker per CPU.
func NewChunkStreamer(store *ChunkStore, gen TerrainGenerator, workers int) *ChunkStreamer {
	cs := &ChunkStreamer{
		jobs:           make(chan ColumnPos, 1024),
		pending:        make(map[ColumnPos]struct{}),
		maxJobsPerCall: 256,
		maxPending:     4096,
		store:          store,
		gen:            gen,
	}

	if workers <= 0 {
		workers = max(runtime.NumCPU(), 1)
	}
	cs.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go cs.worker()
	}

	return cs
}

// Close stops the generation workers and waits for them to exit.
func (cs *ChunkStreamer) Close() {
	close(cs.jobs)
	cs.wg.Wait()
}

func (cs *ChunkStreamer) worker() {
	defer cs.wg.Done()

	for pos := range cs.jobs {
		added := cs.generateColumn(pos)

		cs.pendingMu.Lock()
		delete(cs.pending, pos)
		if added {
			cs.ready = append(cs.ready, pos)
		}
		cs.pendingMu.Unlock()
	}
}

// generateColumn builds and installs a column if missing.
func (cs *ChunkStreamer) generateColumn(pos ColumnPos) bool {
	if cs.store.HasChunk(pos) {
		return false
	}

	chunk := NewChunk(pos.X, pos.Z, cs.store.BottomSectionCoord(), cs.store.TopSectionCoord())
	cs.gen.PopulateChunk(chunk)

	return cs.store.AddChunk(chunk)
}

// DrainReady returns the columns installed since the previous call.
func (cs *ChunkStreamer) DrainReady() []ColumnPos {
	cs.pendingMu.Lock()
	defer cs.pendingMu.Unlock()
	out := cs.ready
	cs.ready = nil
	return out
}

// Pending returns the number of queued or in-progress columns.
func (cs *ChunkStreamer) Pending() int {
	cs.pendingMu.Lock()
	defer cs.pendingMu.Unlock()
	return len(cs.pending)
}

// StreamAroundSync generates every missing column within radius of the
// centre column on the calling goroutine.
func (cs *ChunkStreamer) StreamAroundSync(cx, cz, radius int) []ColumnPos {
	defer profiling.Track("world.StreamAroundSync")()

	var added []ColumnPos
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			pos := ColumnPos{X: cx + dx, Z: cz + dz}
			if cs.generateColumn(pos) {
				added = append(added, pos)
			}
		}
	}
	return added
}

// StreamAroundAsync queues missing columns ring by ring, nearest first.
func (cs *ChunkStreamer) StreamAroundAsync(cx, cz, radius int) {
	defer profiling.Track("world.StreamAroundAsync")()

	jobsPushed := 0
	for r := 0; r <= radius; r++ {
		if jobsPushed >= cs.maxJobsPerCall {
			return
		}

		if r == 0 {
			if cs.request(ColumnPos{X: cx, Z: cz}) {
				jobsPushed++
			}
			continue
		}

		x0, x1 := cx-r, cx+r
		z0, z1 := cz-r, cz+r

		for xk := x0; xk <= x1; xk++ {
			if cs.request(ColumnPos{X: xk, Z: z0}) {
				jobsPushed++
			}
			if cs.request(ColumnPos{X: xk, Z: z1}) {
				jobsPushed++
			}
		}
		for zk := z0 + 1; zk <= z1-1; zk++ {
			if cs.request(ColumnPos{X: x0, Z: zk}) {
				jobsPushed++
			}
			if cs.request(ColumnPos{X: x1, Z: zk}) {
				jobsPushed++
			}
		}
	}
}

// request respects the pending cap and reports whether the column was queued.
func (cs *ChunkStreamer) request(pos ColumnPos) bool {
	if cs.store.HasChunk(pos) {
		return false
	}

	cs.pendingMu.Lock()
	if _, ok := cs.pending[pos]; ok {
		cs.pendingMu.Unlock()
		return false
	}
	if cs.maxPending > 0 && len(cs.pending) >= cs.maxPending {
		cs.pendingMu.Unlock()
		return false
	}
	cs.pending[pos] = struct{}{}
	cs.pendingMu.Unlock()

	select {
	case cs.jobs <- pos:
		return true
	default:
		// queue full: rollback
		cs.pendingMu.Lock()
		delete(cs.pending, pos)
		cs.pendingMu.Unlock()
		return false
	}
}

// EvictOutside removes stored columns outside the square radius and returns
// their positions so the caller can unload them from the renderer.
func (cs *ChunkStreamer) EvictOutside(cx, cz, radius int) []ColumnPos {
	removed := cs.store.EvictOutside(cx, cz, radius)
	if len(removed) == 0 {
		return nil
	}

	// A column can be evicted after it was reported ready but before the
	// caller drained it.
	gone := make(map[ColumnPos]struct{}, len(removed))
	for _, pos := range removed {
		gone[pos] = struct{}{}
	}
	cs.pendingMu.Lock()
	kept := cs.ready[:0]
	for _, pos := range cs.ready {
		if _, ok := gone[pos]; !ok {
			kept = append(kept, pos)
		}
	}
	cs.ready = kept
	cs.pendingMu.Unlock()

	return removed
}
