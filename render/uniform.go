package render

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v3/core1_0"
)

type UniformBufferObject struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// NewTransform spins the quad a quarter turn per second around Z, seen from
// (2, 2, 2) with Z up.
func NewTransform(elapsed time.Duration, extent core1_0.Extent2D) UniformBufferObject {
	timePeriod := math.Mod(elapsed.Seconds(), 4.0)

	aspectRatio := float32(1)
	if extent.Height > 0 {
		aspectRatio = float32(extent.Width) / float32(extent.Height)
	}

	near := float32(0.1)
	far := float32(10.0)
	fovy := float32(math.Pi / 4.0)

	ubo := UniformBufferObject{
		Model: mgl32.HomogRotate3DZ(float32(timePeriod * math.Pi / 2.0)),
		View: mgl32.LookAtV(
			mgl32.Vec3{2, 2, 2},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 0, 1},
		),
		Proj: mgl32.Perspective(fovy, aspectRatio, near, far),
	}

	// Vulkan clip space has Y pointing down.
	ubo.Proj[5] *= -1

	return ubo
}
