package render_test

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/RadicalTray/image-viewer/render"
)

func TestNewTransform_Rotation(t *testing.T) {
	extent := core1_0.Extent2D{Width: 800, Height: 600}

	start := render.NewTransform(0, extent)
	require.True(t, start.Model.ApproxEqual(mgl32.Ident4()))

	quarter := render.NewTransform(time.Second, extent)
	rotated := quarter.Model.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	require.True(t, rotated.ApproxEqualThreshold(mgl32.Vec4{0, 1, 0, 1}, 1e-5))

	// The animation repeats every four seconds.
	full := render.NewTransform(4*time.Second, extent)
	require.True(t, full.Model.ApproxEqualThreshold(start.Model, 1e-5))
}

func TestNewTransform_Projection(t *testing.T) {
	ubo := render.NewTransform(0, core1_0.Extent2D{Width: 800, Height: 600})
	expected := mgl32.Perspective(mgl32.DegToRad(45), 800.0/600.0, 0.1, 10)

	require.Less(t, ubo.Proj[5], float32(0))
	require.InDelta(t, -expected[5], ubo.Proj[5], 1e-5)
	require.InDelta(t, expected[0], ubo.Proj[0], 1e-5)

	require.True(t, ubo.View.ApproxEqual(mgl32.LookAtV(mgl32.Vec3{2, 2, 2}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})))
}

func TestNewTransform_ZeroHeight(t *testing.T) {
	ubo := render.NewTransform(0, core1_0.Extent2D{Width: 800, Height: 0})
	expected := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 10)

	require.InDelta(t, expected[0], ubo.Proj[0], 1e-5)
}
