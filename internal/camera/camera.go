package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"sectionrender/internal/graph"
)

// Camera handles the view and projection matrices
type Camera struct {
	Position mgl32.Vec3
	// Yaw and Pitch are in degrees. Yaw 0 looks towards +X.
	Yaw   float64
	Pitch float64

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func New(width, height int) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// Look points the camera, keeping the pitch away from the poles.
func (c *Camera) Look(yaw, pitch float64) {
	c.Yaw = yaw
	c.Pitch = min(max(pitch, -89.0), 89.0)
}

func (c *Camera) FrontVector() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(c.Yaw))
	pt := mgl32.DegToRad(float32(c.Pitch))
	fx := float32(math.Cos(float64(y)) * math.Cos(float64(pt)))
	fy := float32(math.Sin(float64(pt)))
	fz := float32(math.Sin(float64(y)) * math.Cos(float64(pt)))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.FrontVector()), mgl32.Vec3{0, 1, 0})
}

// Frustum returns the view frustum, with boxes inflated by margin blocks.
func (c *Camera) Frustum(margin float32) *graph.PlaneFrustum {
	return graph.NewPlaneFrustum(c.ProjectionMatrix().Mul4(c.ViewMatrix()), margin)
}
