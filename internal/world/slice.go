package world

// Provider is the read side of the world consumed by the section renderer.
// Implementations must be safe for concurrent use.
type Provider interface {
	BottomSectionCoord() int
	TopSectionCoord() int
	IsSectionEmpty(pos SectionPos) bool
	// CloneSection returns an immutable copy of the section, or nil when it is
	// not loaded or contains only air.
	CloneSection(pos SectionPos) *ClonedSection
	IsOpaqueFullCube(pos BlockPos) bool
}

// ClonedSection is an immutable copy of a section's blocks. It is safe to
// hand to build workers.
type ClonedSection struct {
	blocks []BlockType
	opaque int
}

func (c *ClonedSection) Get(x, y, z int) BlockType {
	if c == nil {
		return BlockTypeAir
	}
	return c.blocks[SectionIndex(x, y, z)]
}

func (c *ClonedSection) OpaqueCount() int {
	if c == nil {
		return 0
	}
	return c.opaque
}

// SectionCache deduplicates section clones during one scheduling pass.
// It is not safe for concurrent use.
type SectionCache struct {
	provider Provider
	entries  map[SectionPos]*ClonedSection
}

func NewSectionCache(p Provider) *SectionCache {
	return &SectionCache{
		provider: p,
		entries:  make(map[SectionPos]*ClonedSection),
	}
}

func (c *SectionCache) Get(pos SectionPos) *ClonedSection {
	if s, ok := c.entries[pos]; ok {
		return s
	}
	s := c.provider.CloneSection(pos)
	c.entries[pos] = s
	return s
}

// Slice is the 3x3x3 section neighbourhood a build task reads from.
type Slice struct {
	origin   SectionPos
	sections [27]*ClonedSection
}

// PrepareSlice snapshots the neighbourhood of pos. It returns nil when the
// centre section is missing or empty, in which case there is nothing to build.
func PrepareSlice(cache *SectionCache, pos SectionPos) *Slice {
	center := cache.Get(pos)
	if center == nil {
		return nil
	}

	s := &Slice{origin: pos}
	for dy := -1; dy <= 1; dy++ {
		for dz := -1; dz <= 1; dz++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					s.sections[sliceIndex(0, 0, 0)] = center
					continue
				}
				s.sections[sliceIndex(dx, dy, dz)] = cache.Get(SectionPos{X: pos.X + dx, Y: pos.Y + dy, Z: pos.Z + dz})
			}
		}
	}
	return s
}

func sliceIndex(dx, dy, dz int) int {
	return ((dy+1)*3+(dz+1))*3 + (dx + 1)
}

func (s *Slice) Origin() SectionPos {
	return s.origin
}

func (s *Slice) Center() *ClonedSection {
	return s.sections[sliceIndex(0, 0, 0)]
}

// BlockAt returns the block at coordinates relative to the centre section's
// origin. Valid coordinates span [-16, 32) on every axis.
func (s *Slice) BlockAt(x, y, z int) BlockType {
	sx, sy, sz := x>>SectionShift, y>>SectionShift, z>>SectionShift
	if sx < -1 || sx > 1 || sy < -1 || sy > 1 || sz < -1 || sz > 1 {
		return BlockTypeAir
	}
	return s.sections[sliceIndex(sx, sy, sz)].Get(x&15, y&15, z&15)
}
