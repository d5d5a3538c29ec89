package world

// Direction is one of the six axis-aligned neighbour directions of a section.
// The ordinal order matters: it is used as a bit index in occlusion and graph state.
type Direction int

const (
	Down Direction = iota
	Up
	North
	South
	West
	East

	DirectionCount = 6
)

var directionOffsets = [DirectionCount][3]int{
	Down:  {0, -1, 0},
	Up:    {0, 1, 0},
	North: {0, 0, -1},
	South: {0, 0, 1},
	West:  {-1, 0, 0},
	East:  {1, 0, 0},
}

var directionNames = [DirectionCount]string{"down", "up", "north", "south", "west", "east"}

// Directions lists all directions in ordinal order.
var Directions = [DirectionCount]Direction{Down, Up, North, South, West, East}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return d ^ 1
}

func (d Direction) OffsetX() int { return directionOffsets[d][0] }
func (d Direction) OffsetY() int { return directionOffsets[d][1] }
func (d Direction) OffsetZ() int { return directionOffsets[d][2] }

func (d Direction) String() string {
	if d < 0 || d >= DirectionCount {
		return "invalid"
	}
	return directionNames[d]
}
