package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/meshview/internal/mesh"
)

func assertMatNear(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-5), "want %v\ngot  %v", want, got)
}

func TestDefaultView(t *testing.T) {
	c := Default()
	assertMatNear(t, mgl32.Translate3D(0, -2, -5), c.View())
	assertMatNear(t, mgl32.LookAtV(c.Position, c.Target, c.Up), c.View())
	assertMatNear(t, mgl32.Ident4(), c.Matrix().Mul4(c.View()))
}

func TestViewFromAngle(t *testing.T) {
	c := Default()
	c.Position = mgl32.Vec3{3, 2, -5}
	c.Target = mgl32.Vec3{1, 0, 1}
	assertMatNear(t, mgl32.LookAtV(c.Position, c.Target, c.Up), c.View())
}

func TestProjectionFollowsAspect(t *testing.T) {
	c := Default()
	wide := c.Projection(2)
	square := c.Projection(1)

	assert.NotEqual(t, wide, square)
	assertMatNear(t, mgl32.Perspective(mgl32.DegToRad(60), 2, 0.1, 50), wide)
	assert.InDelta(t, square[0]/2, wide[0], 1e-6)
	assert.Equal(t, square, c.Projection(0))
}

func TestFit(t *testing.T) {
	c := Default().Fit(mesh.Bounds{Min: [3]float32{-1, -1, -1}, Max: [3]float32{1, 1, 1}})

	assert.Equal(t, mgl32.Vec3{0, 0, 0}, c.Target)
	assert.InDelta(t, 0, c.Position[0], 1e-6)
	assert.InDelta(t, 3.4641, c.Position[2], 1e-3)
	assert.Equal(t, float32(50), c.Far)

	big := Default().Fit(mesh.Bounds{Min: [3]float32{90, 0, 0}, Max: [3]float32{110, 20, 20}})
	assert.Equal(t, mgl32.Vec3{100, 10, 10}, big.Target)
	assert.Greater(t, big.Far, big.Position.Sub(big.Target).Len())

	// Empty bounds leave the camera alone
	assert.Equal(t, Default(), Default().Fit(mesh.Bounds{}))
}
