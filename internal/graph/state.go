package graph

import (
	"math/bits"

	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

// DefaultVisibilityData lets every face see every other face. Sections use it
// until their first build publishes real occlusion data.
const DefaultVisibilityData uint64 = (1 << (world.DirectionCount * world.DirectionCount)) - 1

// VisibilityData packs occlusion data for the graph arrays.
func VisibilityData(o world.OcclusionData) uint64 {
	return o.Bits()
}

// IsVisibleThrough tests a packed visibility word.
func IsVisibleThrough(data uint64, from, to world.Direction) bool {
	return data&(1<<(int(from)*world.DirectionCount+int(to))) != 0
}

// State is the per-slot storage of the visibility graph. Section coordinates
// are wrapped into a torus of power-of-two size, so every loaded section
// within render distance of the camera has a unique slot.
type State struct {
	sizeXZ, sizeY   int
	maskXZ, maskY   int
	offsetZ, offset int

	sections       []*section.Section
	visible        BitArray
	visibilityData []uint64
	cullingState   []byte
	direction      []byte
	frustumCache   []byte
}

// NewState sizes the arrays for a render distance and a world height in
// sections.
func NewState(renderDistance, worldHeight int) *State {
	sizeXZ := nextPow2(renderDistance*2 + 1)
	sizeY := nextPow2(worldHeight)
	offsetZ := bits.TrailingZeros(uint(sizeXZ))

	size := sizeXZ * sizeXZ * sizeY
	return &State{
		sizeXZ:         sizeXZ,
		sizeY:          sizeY,
		maskXZ:         sizeXZ - 1,
		maskY:          sizeY - 1,
		offsetZ:        offsetZ,
		offset:         offsetZ * 2,
		sections:       make([]*section.Section, size),
		visible:        NewBitArray(size),
		visibilityData: make([]uint64, size),
		cullingState:   make([]byte, size),
		direction:      make([]byte, size),
		frustumCache:   make([]byte, (size+3)/4),
	}
}

func nextPow2(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}

// Size is the number of slots.
func (s *State) Size() int { return len(s.sections) }

func (s *State) SizeXZ() int { return s.sizeXZ }

func (s *State) SizeY() int { return s.sizeY }

// Index maps section coordinates to a slot.
func (s *State) Index(x, y, z int) int {
	return ((y & s.maskY) << s.offset) | ((z & s.maskXZ) << s.offsetZ) | (x & s.maskXZ)
}

// Reset clears the per-frame traversal state. Sections and visibility data
// survive.
func (s *State) Reset() {
	s.visible.Clear()
	clear(s.cullingState)
	clear(s.direction)
	clear(s.frustumCache)
}

func (s *State) Section(id int) *section.Section { return s.sections[id] }

func (s *State) SetSection(id int, sec *section.Section) { s.sections[id] = sec }

func (s *State) VisibilityData(id int) uint64 { return s.visibilityData[id] }

func (s *State) SetVisibilityData(id int, data uint64) { s.visibilityData[id] = data }

func (s *State) IsVisible(id int) bool { return s.visible.Get(id) }

func (s *State) MarkVisible(id int) { s.visible.Set(id) }

// VisibleCount returns the number of slots reached this frame.
func (s *State) VisibleCount() int { return s.visible.Count() }

func (s *State) CullingState(id int) byte { return s.cullingState[id] }

// AddCulling ORs the culling state of a parent and the direction taken from
// it into a newly reached slot.
func (s *State) AddCulling(id int, parent byte, dir world.Direction) {
	s.cullingState[id] |= parent | 1<<dir
}

func (s *State) Direction(id int) byte { return s.direction[id] }

// AddDirection records that the slot was entered moving in dir.
func (s *State) AddDirection(id int, dir world.Direction) {
	s.direction[id] |= 1 << dir
}

// FrustumCache returns the cached test result for a slot, zero if untested.
func (s *State) FrustumCache(id int) Visibility {
	return Visibility(s.frustumCache[id>>2]>>((id&3)<<1)) & 3
}

func (s *State) SetFrustumCache(id int, v Visibility) {
	shift := (id & 3) << 1
	s.frustumCache[id>>2] = s.frustumCache[id>>2]&^(3<<shift) | byte(v&3)<<shift
}
