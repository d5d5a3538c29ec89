package render

import (
	"context"
	"iter"
	"math"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"

	"sectionrender/internal/builder"
	"sectionrender/internal/profiling"
	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

// pollInterval is how long UpdateAllChunksNow sleeps while builds are in
// flight.
const pollInterval = time.Millisecond

// UpdateChunks submits the queued rebuilds and applies finished results.
// Important rebuilds are awaited before it returns.
func (m *Manager) UpdateChunks() {
	defer profiling.Track("render.UpdateChunks")()
	m.updateChunks(false)
}

// UpdateAllChunksNow submits every queued build as blocking and waits until
// the executor has nothing left. When ctx ends first the remaining builds
// keep running and the graph stays dirty.
func (m *Manager) UpdateAllChunksNow(ctx context.Context) error {
	defer profiling.Track("render.UpdateAllChunksNow")()

	m.updateChunks(true)
	for {
		idle := m.executor.IsIdle()
		m.processBuiltChunks(m.executor.AsyncResults())
		if idle {
			m.regions.Cleanup()
			m.needsUpdate = false
			return nil
		}

		select {
		case <-ctx.Done():
			m.needsUpdate = true
			err := errors.New("waiting for chunk builds interrupted").
				WithType(ErrTypeDrainInterrupted).
				Wrap(ctx.Err())
			logs.Warn(err)
			return err
		case <-time.After(pollInterval):
		}
	}
}

func (m *Manager) updateChunks(allImmediately bool) {
	var blocking []*builder.Future

	m.submitRebuildTasks(section.UpdateImportantRebuild, &blocking, true)
	m.submitRebuildTasks(section.UpdateInitialBuild, &blocking, allImmediately)
	m.submitRebuildTasks(section.UpdateRebuild, &blocking, allImmediately)

	dirty := m.processBuiltChunks(m.executor.AsyncResults())
	if len(blocking) > 0 {
		if m.processBuiltChunks(builder.DrainFutures(blocking, m.executor.StealTask)) {
			dirty = true
		}
	}
	if dirty {
		m.needsUpdate = true
	}

	m.regions.Cleanup()
}

// submitRebuildTasks hands the queued sections of one kind to the executor.
// Entries that went stale since the traversal are skipped.
func (m *Manager) submitRebuildTasks(t section.UpdateType, blocking *[]*builder.Future, immediate bool) {
	q := &m.rebuildQueues[t-1]
	if q.Len() == 0 {
		return
	}

	budget := math.MaxInt
	if !immediate {
		budget = m.executor.SchedulingBudget()
	}

	var cache *world.SectionCache
	for budget > 0 && q.Len() > 0 {
		s := q.PopFront()
		if s.IsDisposed() || s.PendingUpdate() != t || !s.NeedsSubmit() {
			continue
		}

		if cache == nil {
			cache = m.factory.NewSectionCache()
		}
		s.CancelRebuild()
		task := m.factory.CreateTask(cache, s, m.frame)

		var f *builder.Future
		if immediate {
			f = m.executor.Schedule(task)
			*blocking = append(*blocking, f)
		} else {
			f = m.executor.ScheduleDeferred(task)
		}
		s.SetRebuildFuture(f, m.frame)

		instrumentSubmit(t)
		budget--
	}
}

// processBuiltChunks applies the results that still belong to a live
// section and reports whether any were applied.
func (m *Manager) processBuiltChunks(results iter.Seq[*builder.Result]) bool {
	var accepted []*builder.Result
	for res := range results {
		s, _ := m.sectionAt(res.Pos)
		if s == nil || s.ID() != res.SectionID || s.IsDisposed() || res.Frame < s.LastRebuildFrame() {
			logs.WithTag("section", res.Pos.String()).
				WithTag("frame", res.Frame).
				Debug("discarding stale build result")
			res.Release()
			instrumentResult(resultDiscarded)
			continue
		}
		accepted = append(accepted, res)
	}
	if len(accepted) == 0 {
		return false
	}

	m.regions.UploadMeshes(accepted)

	for _, res := range accepted {
		s, _ := m.sectionAt(res.Pos)
		m.OnChunkRenderUpdates(res.Pos.X, res.Pos.Y, res.Pos.Z, res.Data)
		s.SetData(res.Data)
		s.FinishRebuild()
		res.Release()
		instrumentResult(resultApplied)

		if m.onBuilt != nil {
			m.onBuilt(s)
		}
	}
	return true
}
