package graph

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func testFrustum() *PlaneFrustum {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return NewPlaneFrustum(proj.Mul4(view), 0)
}

func TestPlaneFrustum(t *testing.T) {
	f := testFrustum()

	require.Equal(t, Inside, f.TestBox(-1, -1, -11, 1, 1, -9))
	require.Equal(t, Outside, f.TestBox(-1, -1, 9, 1, 1, 11))
	require.Equal(t, Outside, f.TestBox(-1, -1, -300, 1, 1, -200))
	require.Equal(t, Intersect, f.TestBox(-100, -1, -11, 1, 1, -9))
}

func TestPlaneFrustumMargin(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})

	// Just behind the camera.
	require.Equal(t, Outside, NewPlaneFrustum(proj.Mul4(view), 0).TestBox(-1, -1, 1, 1, 1, 2))
	require.Equal(t, Intersect, NewPlaneFrustum(proj.Mul4(view), 2).TestBox(-1, -1, 1, 1, 1, 2))
}

func TestAcceptAll(t *testing.T) {
	require.Equal(t, Inside, AcceptAll{}.TestBox(0, 0, 0, 1e9, 1e9, 1e9))
	require.Equal(t, "intersect", Intersect.String())
}
