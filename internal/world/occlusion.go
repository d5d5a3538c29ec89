package world

import "github.com/gammazero/deque"

// OcclusionData records which pairs of section faces are connected by a
// sight line through non-opaque blocks. The zero value blocks everything.
type OcclusionData struct {
	bits uint64
}

// openOcclusionBits has every from/to pair set.
const openOcclusionBits = (uint64(1) << (DirectionCount * DirectionCount)) - 1

// OpenOcclusionData returns data where every face sees every other face.
func OpenOcclusionData() OcclusionData {
	return OcclusionData{bits: openOcclusionBits}
}

// Bits returns the matrix packed as from*6+to bit indices.
func (o OcclusionData) Bits() uint64 { return o.bits }

func (o OcclusionData) IsVisibleThrough(from, to Direction) bool {
	return o.bits&(1<<(int(from)*DirectionCount+int(to))) != 0
}

// SetVisibleThrough marks a sight line between two faces in both directions.
func (o *OcclusionData) SetVisibleThrough(a, b Direction) {
	o.bits |= 1 << (int(a)*DirectionCount + int(b))
	o.bits |= 1 << (int(b)*DirectionCount + int(a))
}

// minOpaqueForOcclusion is the number of opaque blocks below which a section
// cannot separate any two faces: a full wall needs 16*16 blocks.
const minOpaqueForOcclusion = SectionSize * SectionSize

// BuildOcclusionData flood fills the open cells of a section and links every
// pair of faces touched by the same connected component.
func BuildOcclusionData(s *ClonedSection) OcclusionData {
	if s.OpaqueCount() < minOpaqueForOcclusion {
		return OpenOcclusionData()
	}

	var data OcclusionData
	var visited [SectionVolume / 64]uint64
	var queue deque.Deque[int]

	mark := func(i int) bool {
		if visited[i>>6]&(1<<(i&63)) != 0 {
			return false
		}
		visited[i>>6] |= 1 << (i & 63)
		return true
	}

	for start := 0; start < SectionVolume; start++ {
		if s.blocks[start].IsOpaque() || !mark(start) {
			continue
		}

		var faces uint8
		queue.PushBack(start)

		for queue.Len() > 0 {
			i := queue.PopFront()
			x, y, z := i&15, (i>>8)&15, (i>>4)&15
			faces |= touchedFaces(x, y, z)

			for _, d := range Directions {
				nx, ny, nz := x+d.OffsetX(), y+d.OffsetY(), z+d.OffsetZ()
				if nx < 0 || nx > 15 || ny < 0 || ny > 15 || nz < 0 || nz > 15 {
					continue
				}
				n := SectionIndex(nx, ny, nz)
				if s.blocks[n].IsOpaque() || !mark(n) {
					continue
				}
				queue.PushBack(n)
			}
		}

		for _, a := range Directions {
			if faces&(1<<a) == 0 {
				continue
			}
			for _, b := range Directions {
				if faces&(1<<b) != 0 {
					data.SetVisibleThrough(a, b)
				}
			}
		}
	}

	return data
}

func touchedFaces(x, y, z int) uint8 {
	var faces uint8
	if x == 0 {
		faces |= 1 << West
	} else if x == 15 {
		faces |= 1 << East
	}
	if y == 0 {
		faces |= 1 << Down
	} else if y == 15 {
		faces |= 1 << Up
	}
	if z == 0 {
		faces |= 1 << North
	} else if z == 15 {
		faces |= 1 << South
	}
	return faces
}
