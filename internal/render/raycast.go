package render

import (
	"sectionrender/internal/graph"
	"sectionrender/internal/world"
)

// raycastConfidence is the number of reached cells after which a line is
// considered clear.
const raycastConfidence = 5

// raycast walks a 3D Bresenham line from a section towards the camera
// section and reports whether the section should be treated as occluded.
func (m *Manager) raycast(from, to world.SectionPos) bool {
	if to.Y <= m.bottom || to.Y >= m.top {
		return false
	}

	dx, dy, dz := to.X-from.X, to.Y-from.Y, to.Z-from.Z
	ax, ay, az := abs(dx), abs(dy), abs(dz)
	sx, sy, sz := sign(dx), sign(dy), sign(dz)

	longest := max(ax, ay, az)
	errX, errY, errZ := longest>>1, longest>>1, longest>>1
	x, y, z := from.X, from.Y, from.Z

	valid := 0
	for step := 0; step < longest; step++ {
		errX -= ax
		errY -= ay
		errZ -= az
		if errX < 0 {
			errX += longest
			x += sx
		}
		if errY < 0 {
			errY += longest
			y += sy
		}
		if errZ < 0 {
			errZ += longest
			z += sz
		}

		id := m.state.Index(x, y, z)
		if m.state.IsVisible(id) {
			valid++
		} else {
			switch m.frustumCheck(id, world.SectionPos{X: x, Y: y, Z: z}) {
			case graph.Outside:
				return false
			case graph.Inside:
				return true
			}
		}

		if valid >= raycastConfidence {
			break
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
