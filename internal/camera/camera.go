// Package camera provides the fixed look-at camera used by viewer sessions.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/mesh"
)

// Camera looks from Position at Target.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	FieldOfView float32 // Vertical, radians
	Near        float32
	Far         float32
}

// Default returns the camera every session starts with: five units back
// on +Z at eye height 2, looking level.
func Default() Camera {
	return Camera{
		Position:    mgl32.Vec3{0, 2, 5},
		Target:      mgl32.Vec3{0, 2, 0},
		Up:          mgl32.Vec3{0, 1, 0},
		FieldOfView: mgl32.DegToRad(60),
		Near:        0.1,
		Far:         50,
	}
}

// Matrix returns the camera-to-world transform.
func (c Camera) Matrix() mgl32.Mat4 {
	z := c.Position.Sub(c.Target).Normalize()
	x := c.Up.Cross(z).Normalize()
	y := z.Cross(x).Normalize()
	return mgl32.Mat4{
		x[0], x[1], x[2], 0,
		y[0], y[1], y[2], 0,
		z[0], z[1], z[2], 0,
		c.Position[0], c.Position[1], c.Position[2], 1,
	}
}

// View returns the world-to-camera transform.
func (c Camera) View() mgl32.Mat4 {
	return c.Matrix().Inv()
}

// Projection returns the perspective projection for a drawable aspect ratio.
func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(c.FieldOfView, aspect, c.Near, c.Far)
}

// Fit moves the camera along its current view direction so the bounding
// sphere of b fills the vertical field of view. The far plane grows to keep
// the whole mesh visible.
func (c Camera) Fit(b mesh.Bounds) Camera {
	radius := b.Radius()
	if radius <= 0 {
		return c
	}
	center := mgl32.Vec3(b.Center())

	dir := c.Position.Sub(c.Target)
	if dir.Len() < 1e-6 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	dir = dir.Normalize()

	// Distance at which a sphere of this radius touches the frustum
	halfFOV := float64(c.FieldOfView) / 2
	dist := radius / float32(math.Sin(halfFOV))

	c.Target = center
	c.Position = center.Add(dir.Mul(dist))
	if c.Near > dist-radius && dist-radius > 0 {
		c.Near = (dist - radius) / 2
	}
	if far := dist + radius*2; far > c.Far {
		c.Far = far
	}
	return c
}
