package section

import (
	"sectionrender/internal/world"
)

// Flags summarise what a built section contains.
type Flags uint8

const (
	FlagHasBlockGeometry Flags = 1 << iota
	FlagHasBlockEntities
	FlagHasAnimatedSprites
)

// VertexRange is a run of vertices inside a pass mesh.
type VertexRange struct {
	Start, Count int
}

// Mesh is the geometry of one pass, with the vertices of each facing stored
// contiguously.
type Mesh struct {
	Vertices []byte
	Parts    [FacingCount]VertexRange
}

// VertexCount returns the number of vertices over all facings.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, p := range m.Parts {
		n += p.Count
	}
	return n
}

// RenderData is the last finished build of a section. It is immutable once
// published.
type RenderData struct {
	Occlusion world.OcclusionData
	Flags     Flags
	// Passes records which passes have geometry.
	Passes          [PassCount]bool
	BlockEntities   []world.BlockPos
	AnimatedSprites []string
}

var (
	// AbsentRenderData marks a section that has never been built.
	AbsentRenderData = &RenderData{Occlusion: world.OpenOcclusionData()}
	// EmptyRenderData is the result of building a section with nothing to draw.
	EmptyRenderData = &RenderData{Occlusion: world.OpenOcclusionData()}
)

func (d *RenderData) HasFlag(f Flags) bool {
	return d.Flags&f != 0
}
