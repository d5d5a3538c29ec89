package meshing

import (
	"context"
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/uuid"

	"sectionrender/internal/builder"
	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

const ErrTypeBuildCancelled = "build-cancelled"

// RebuildTask meshes one section from an immutable slice of the world.
type RebuildTask struct {
	id    uuid.UUID
	pos   world.SectionPos
	frame int
	slice *world.Slice
}

// NewRebuildTask creates a task for the section whose neighbourhood was
// captured in slice.
func NewRebuildTask(id uuid.UUID, slice *world.Slice, frame int) *RebuildTask {
	return &RebuildTask{
		id:    id,
		pos:   slice.Origin(),
		frame: frame,
		slice: slice,
	}
}

func (t *RebuildTask) Execute(ctx context.Context) (*builder.Result, error) {
	m := mesher{
		slice:   t.slice,
		sprites: make(map[string]struct{}),
	}
	for p := range m.buffers {
		m.buffers[p] = getBuffer()
	}
	release := func() {
		for _, b := range m.buffers {
			putBuffer(b)
		}
	}

	for f := section.Facing(0); f < section.FacingUnassigned; f++ {
		if err := m.meshFacing(ctx, f); err != nil {
			release()
			return nil, errors.New("build cancelled").
				WithType(ErrTypeBuildCancelled).
				WithTag("section", t.pos.String()).
				Wrap(err)
		}
	}

	data := &section.RenderData{
		Occlusion:     world.BuildOcclusionData(t.slice.Center()),
		BlockEntities: t.blockEntities(),
	}

	res := builder.NewResult(t.id, t.pos, t.frame, data, release)
	for p := range m.buffers {
		if len(*m.buffers[p]) == 0 {
			continue
		}
		res.Meshes[p] = &section.Mesh{
			Vertices: *m.buffers[p],
			Parts:    m.parts[p],
		}
		data.Passes[p] = true
		data.Flags |= section.FlagHasBlockGeometry
	}

	if len(data.BlockEntities) > 0 {
		data.Flags |= section.FlagHasBlockEntities
	}
	if len(m.sprites) > 0 {
		for name := range m.sprites {
			data.AnimatedSprites = append(data.AnimatedSprites, name)
		}
		sort.Strings(data.AnimatedSprites)
		data.Flags |= section.FlagHasAnimatedSprites
	}

	return res, nil
}

func (t *RebuildTask) blockEntities() []world.BlockPos {
	center := t.slice.Center()
	origin := t.pos.Origin()

	var out []world.BlockPos
	for i := 0; i < world.SectionVolume; i++ {
		x, y, z := i&15, (i>>8)&15, (i>>4)&15
		if center.Get(x, y, z).Properties().HasBlockEntity {
			out = append(out, world.BlockPos{X: origin.X + x, Y: origin.Y + y, Z: origin.Z + z})
		}
	}
	return out
}

// EmptyBuildTask completes a section that has nothing to draw.
type EmptyBuildTask struct {
	id    uuid.UUID
	pos   world.SectionPos
	frame int
}

func NewEmptyBuildTask(id uuid.UUID, pos world.SectionPos, frame int) *EmptyBuildTask {
	return &EmptyBuildTask{id: id, pos: pos, frame: frame}
}

func (t *EmptyBuildTask) Execute(ctx context.Context) (*builder.Result, error) {
	return builder.NewResult(t.id, t.pos, t.frame, section.EmptyRenderData, nil), nil
}

// Factory creates build tasks from the world.
type Factory struct {
	provider world.Provider
}

func NewFactory(p world.Provider) *Factory {
	return &Factory{provider: p}
}

// NewSectionCache returns a cache to share across the tasks of one
// scheduling pass.
func (f *Factory) NewSectionCache() *world.SectionCache {
	return world.NewSectionCache(f.provider)
}

// CreateTask snapshots the neighbourhood of s. When there is nothing to
// snapshot the section gets an empty build.
func (f *Factory) CreateTask(cache *world.SectionCache, s *section.Section, frame int) builder.Task {
	slice := world.PrepareSlice(cache, s.Pos())
	if slice == nil {
		return NewEmptyBuildTask(s.ID(), s.Pos(), frame)
	}
	return NewRebuildTask(s.ID(), slice, frame)
}
