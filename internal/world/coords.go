package world

import "fmt"

const (
	// SectionSize is the edge length of a section in blocks.
	SectionSize   = 16
	SectionShift  = 4
	SectionVolume = SectionSize * SectionSize * SectionSize
)

// SectionPos addresses a section in section coordinates.
type SectionPos struct {
	X, Y, Z int
}

// ColumnPos addresses a vertical column of sections (a chunk).
type ColumnPos struct {
	X, Z int
}

// BlockPos addresses a single block in world coordinates.
type BlockPos struct {
	X, Y, Z int
}

func (p SectionPos) Offset(d Direction) SectionPos {
	return SectionPos{X: p.X + d.OffsetX(), Y: p.Y + d.OffsetY(), Z: p.Z + d.OffsetZ()}
}

func (p SectionPos) Column() ColumnPos {
	return ColumnPos{X: p.X, Z: p.Z}
}

// Origin returns the minimum block corner of the section.
func (p SectionPos) Origin() BlockPos {
	return BlockPos{X: p.X << SectionShift, Y: p.Y << SectionShift, Z: p.Z << SectionShift}
}

func (p SectionPos) String() string {
	return fmt.Sprintf("[x=%d, y=%d, z=%d]", p.X, p.Y, p.Z)
}

// Section returns the section containing the block.
func (b BlockPos) Section() SectionPos {
	return SectionPos{X: b.X >> SectionShift, Y: b.Y >> SectionShift, Z: b.Z >> SectionShift}
}

// Local returns the block coordinates inside its section.
func (b BlockPos) Local() (int, int, int) {
	return b.X & (SectionSize - 1), b.Y & (SectionSize - 1), b.Z & (SectionSize - 1)
}

// SectionIndex packs local coordinates as y<<8 | z<<4 | x.
func SectionIndex(x, y, z int) int {
	return (y&15)<<8 | (z&15)<<4 | (x & 15)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// BlockToSection converts a block coordinate on one axis to its section coordinate.
func BlockToSection(v int) int {
	return floorDiv(v, SectionSize)
}
