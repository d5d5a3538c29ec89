package section

// Facing is the direction a quad faces. Quads that can be seen from any
// side are Unassigned.
type Facing int

const (
	FacingUp Facing = iota
	FacingDown
	FacingEast
	FacingWest
	FacingSouth
	FacingNorth
	FacingUnassigned

	FacingCount = 7
)

var facingNames = [FacingCount]string{"up", "down", "east", "west", "south", "north", "unassigned"}

func (f Facing) String() string {
	if f < 0 || f >= FacingCount {
		return "invalid"
	}
	return facingNames[f]
}

// FaceMask is a set of facings.
type FaceMask uint8

const (
	FaceUp         FaceMask = 1 << FacingUp
	FaceDown       FaceMask = 1 << FacingDown
	FaceEast       FaceMask = 1 << FacingEast
	FaceWest       FaceMask = 1 << FacingWest
	FaceSouth      FaceMask = 1 << FacingSouth
	FaceNorth      FaceMask = 1 << FacingNorth
	FaceUnassigned FaceMask = 1 << FacingUnassigned

	FaceAll FaceMask = 1<<FacingCount - 1
)

func (m FaceMask) Has(f Facing) bool {
	return m&(1<<f) != 0
}

// Pass is a block render pass. Passes are drawn in ordinal order.
type Pass int

const (
	PassSolid Pass = iota
	PassCutout
	PassTranslucent

	PassCount = 3
)

var passNames = [PassCount]string{"solid", "cutout", "translucent"}

// Passes lists all passes in draw order.
var Passes = [PassCount]Pass{PassSolid, PassCutout, PassTranslucent}

func (p Pass) String() string {
	if p < 0 || p >= PassCount {
		return "invalid"
	}
	return passNames[p]
}

// IsReverseOrder reports whether sections must be drawn back to front.
func (p Pass) IsReverseOrder() bool {
	return p == PassTranslucent
}
