package world

// Section represents a 16x16x16 sub-volume of a column.
// Block storage is allocated lazily on the first non-air write.
type Section struct {
	blocks   []BlockType
	nonAir   int
	opaque   int
	modCount uint64
}

// Chunk represents a full-height column of sections.
type Chunk struct {
	X, Z     int
	bottom   int
	sections []*Section
}

// NewChunk creates a column covering sections [bottom, top).
func NewChunk(x, z, bottom, top int) *Chunk {
	return &Chunk{
		X:        x,
		Z:        z,
		bottom:   bottom,
		sections: make([]*Section, top-bottom),
	}
}

func (s *Section) Get(x, y, z int) BlockType {
	if s == nil || s.blocks == nil {
		return BlockTypeAir
	}
	return s.blocks[SectionIndex(x, y, z)]
}

// Set stores a block and reports whether the section changed.
func (s *Section) Set(x, y, z int, b BlockType) bool {
	if s.blocks == nil {
		if b == BlockTypeAir {
			return false
		}
		s.blocks = make([]BlockType, SectionVolume)
	}

	idx := SectionIndex(x, y, z)
	old := s.blocks[idx]
	if old == b {
		return false
	}

	s.blocks[idx] = b
	if old == BlockTypeAir {
		s.nonAir++
	} else if b == BlockTypeAir {
		s.nonAir--
	}
	if old.IsOpaque() {
		s.opaque--
	}
	if b.IsOpaque() {
		s.opaque++
	}
	s.modCount++

	if s.nonAir == 0 {
		s.blocks = nil
	}
	return true
}

// IsEmpty reports whether the section has no non-air blocks.
func (s *Section) IsEmpty() bool {
	return s == nil || s.nonAir == 0
}

// OpaqueCount returns the number of opaque full-cube blocks.
func (s *Section) OpaqueCount() int {
	if s == nil {
		return 0
	}
	return s.opaque
}

// Section returns the section at section coordinate y, or nil.
func (c *Chunk) Section(y int) *Section {
	i := y - c.bottom
	if i < 0 || i >= len(c.sections) {
		return nil
	}
	return c.sections[i]
}

func (c *Chunk) sectionForWrite(y int) *Section {
	i := y - c.bottom
	if i < 0 || i >= len(c.sections) {
		return nil
	}
	if c.sections[i] == nil {
		c.sections[i] = &Section{}
	}
	return c.sections[i]
}

// GetBlock returns the block at world block coordinates inside this column.
func (c *Chunk) GetBlock(pos BlockPos) BlockType {
	lx, ly, lz := pos.Local()
	return c.Section(BlockToSection(pos.Y)).Get(lx, ly, lz)
}

// SetBlock sets the block at world block coordinates inside this column.
func (c *Chunk) SetBlock(pos BlockPos, b BlockType) bool {
	sec := c.sectionForWrite(BlockToSection(pos.Y))
	if sec == nil {
		return false
	}
	lx, ly, lz := pos.Local()
	return sec.Set(lx, ly, lz, b)
}

// clone returns an immutable copy of the section's blocks.
func (s *Section) clone() *ClonedSection {
	if s.IsEmpty() {
		return nil
	}
	blocks := make([]BlockType, SectionVolume)
	copy(blocks, s.blocks)
	return &ClonedSection{blocks: blocks, opaque: s.opaque}
}
