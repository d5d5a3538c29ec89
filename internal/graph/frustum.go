package graph

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Visibility is the result of testing a box against a frustum. The zero
// value means "not tested" in the frustum cache.
type Visibility uint8

const (
	Outside Visibility = iota + 1
	Intersect
	Inside
)

func (v Visibility) String() string {
	switch v {
	case Outside:
		return "outside"
	case Intersect:
		return "intersect"
	case Inside:
		return "inside"
	default:
		return "unknown"
	}
}

// Frustum classifies world-space boxes.
type Frustum interface {
	TestBox(minX, minY, minZ, maxX, maxY, maxZ float32) Visibility
}

// plane is a*x + b*y + c*z + d = 0 with the normal pointing inwards.
type plane struct {
	a, b, c, d float32
}

// PlaneFrustum is a view frustum described by six planes.
type PlaneFrustum struct {
	planes [6]plane
	margin float32
}

// NewPlaneFrustum builds the frustum of a combined projection*view matrix.
// Boxes are inflated by margin blocks before they are tested.
func NewPlaneFrustum(clip mgl32.Mat4, margin float32) *PlaneFrustum {
	return &PlaneFrustum{planes: extractFrustumPlanes(clip), margin: margin}
}

// extractFrustumPlanes builds six planes from the combined projection*view matrix.
// Planes are returned in order: left, right, bottom, top, near, far.
func extractFrustumPlanes(clip mgl32.Mat4) [6]plane {
	// Matrix is in column-major order in mgl32
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	return [6]plane{
		normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03}),
		normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03}),
		normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13}),
		normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13}),
		normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23}),
		normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23}),
	}
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// TestBox uses the positive vertex of each plane to reject boxes and the
// negative vertex to detect boxes crossing a plane.
func (f *PlaneFrustum) TestBox(minX, minY, minZ, maxX, maxY, maxZ float32) Visibility {
	minX, minY, minZ = minX-f.margin, minY-f.margin, minZ-f.margin
	maxX, maxY, maxZ = maxX+f.margin, maxY+f.margin, maxZ+f.margin

	result := Inside
	for _, p := range f.planes {
		px, nx := maxX, minX
		if p.a < 0 {
			px, nx = minX, maxX
		}
		py, ny := maxY, minY
		if p.b < 0 {
			py, ny = minY, maxY
		}
		pz, nz := maxZ, minZ
		if p.c < 0 {
			pz, nz = minZ, maxZ
		}

		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return Outside
		}
		if p.a*nx+p.b*ny+p.c*nz+p.d < 0 {
			result = Intersect
		}
	}
	return result
}

// AcceptAll is a frustum that contains everything.
type AcceptAll struct{}

func (AcceptAll) TestBox(minX, minY, minZ, maxX, maxY, maxZ float32) Visibility {
	return Inside
}
