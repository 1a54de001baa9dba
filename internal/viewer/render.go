package viewer

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/camera"
	"github.com/Faultbox/meshview/internal/gpu"
)

// Uniform names of the mesh program.
const (
	UniformLightDirection = "u_lightDirection"
	UniformView           = "u_view"
	UniformProjection     = "u_projection"
	UniformWorld          = "u_world"
	UniformDiffuse        = "u_diffuse"
)

var (
	// LightDirection is the fixed direction toward the light.
	LightDirection = mgl32.Vec3{-1, 3, 5}.Normalize()
	// Diffuse is the fixed surface color.
	Diffuse = mgl32.Vec4{1, 0.7, 0.5, 1}
)

// Frame holds the uniform values for one draw.
type Frame struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	World      mgl32.Mat4
}

// Rotation returns the world transform after elapsed time: one radian per
// second about +Y, wrapping every 2π seconds.
func Rotation(elapsed time.Duration) mgl32.Mat4 {
	angle := math.Mod(elapsed.Seconds(), 2*math.Pi)
	return mgl32.HomogRotate3DY(float32(angle))
}

// ComputeFrame derives the transforms for a drawable of the given size.
func ComputeFrame(cam camera.Camera, size gpu.Size, elapsed time.Duration) Frame {
	return Frame{
		View:       cam.View(),
		Projection: cam.Projection(size.Aspect()),
		World:      Rotation(elapsed),
	}
}

// Uniforms returns every uniform the mesh program reads.
func (f Frame) Uniforms() gpu.Uniforms {
	return gpu.Uniforms{
		UniformLightDirection: LightDirection,
		UniformView:           f.View,
		UniformProjection:     f.Projection,
		UniformWorld:          f.World,
		UniformDiffuse:        Diffuse,
	}
}
