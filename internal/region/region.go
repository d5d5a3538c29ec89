package region

import (
	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

// Region dimensions in sections.
const (
	Width  = 8
	Height = 4
	Length = 8

	Size = Width * Height * Length
)

const initialArenaSize = 256 * 1024

// Geometry locates the mesh of one section pass inside a region arena.
type Geometry struct {
	Alloc *Allocation
	Parts [section.FacingCount]section.VertexRange
}

// Region groups the sections of an 8x4x8 block of the world so that their
// geometry shares one arena per pass.
type Region struct {
	id      int64
	x, y, z int

	sections [Size]*section.Section
	count    int

	mode     string
	arenas   [section.PassCount]*Arena
	geometry [Size][section.PassCount]*Geometry
}

// Key returns the id of the region containing a section.
func Key(pos world.SectionPos) int64 {
	rx, ry, rz := regionCoords(pos)
	return int64(rx&0x3fffff)<<42 | int64(rz&0x3fffff)<<20 | int64(ry&0xfffff)
}

func regionCoords(pos world.SectionPos) (int, int, int) {
	return pos.X >> 3, pos.Y >> 2, pos.Z >> 3
}

// LocalIndex returns the slot of a section inside its region.
func LocalIndex(pos world.SectionPos) int {
	return (pos.Y&(Height-1))<<6 | (pos.Z&(Length-1))<<3 | pos.X&(Width-1)
}

func newRegion(pos world.SectionPos, mode string) *Region {
	x, y, z := regionCoords(pos)
	return &Region{id: Key(pos), x: x, y: y, z: z, mode: mode}
}

func (r *Region) ID() int64 { return r.id }

// Origin returns the region coordinates.
func (r *Region) Origin() (int, int, int) { return r.x, r.y, r.z }

// SectionCount returns the number of loaded sections in the region.
func (r *Region) SectionCount() int { return r.count }

func (r *Region) IsEmpty() bool { return r.count == 0 }

func (r *Region) Section(localID int) *section.Section { return r.sections[localID] }

// Geometry returns the uploaded mesh of a section pass, nil when it has none.
func (r *Region) Geometry(localID int, pass section.Pass) *Geometry {
	return r.geometry[localID][pass]
}

// Arena returns the buffer of a pass, nil before the first upload.
func (r *Region) Arena(pass section.Pass) *Arena { return r.arenas[pass] }

func (r *Region) add(s *section.Section) {
	id := LocalIndex(s.Pos())
	r.sections[id] = s
	r.count++
	s.SetRegion(r.id, id)
}

func (r *Region) remove(s *section.Section) {
	id := s.LocalID()
	if r.sections[id] != s {
		return
	}
	r.freeGeometry(id)
	r.sections[id] = nil
	r.count--
}

func (r *Region) freeGeometry(localID int) {
	for pass, g := range r.geometry[localID] {
		if g != nil {
			r.arenas[pass].Free(g.Alloc)
			r.geometry[localID][pass] = nil
		}
	}
}

// upload replaces the geometry of a section and returns the bytes copied.
func (r *Region) upload(localID int, meshes [section.PassCount]*section.Mesh) int {
	r.freeGeometry(localID)

	n := 0
	for pass, m := range meshes {
		if m == nil || len(m.Vertices) == 0 {
			continue
		}
		if r.arenas[pass] == nil {
			r.arenas[pass] = newArena(r.mode, initialArenaSize)
		}
		r.geometry[localID][pass] = &Geometry{
			Alloc: r.arenas[pass].Upload(m.Vertices),
			Parts: m.Parts,
		}
		n += len(m.Vertices)
	}
	return n
}

func (r *Region) deviceUsage() (used, allocated, buffers int) {
	for _, a := range r.arenas {
		if a == nil {
			continue
		}
		used += a.Used()
		allocated += a.Capacity()
		buffers++
	}
	return used, allocated, buffers
}
