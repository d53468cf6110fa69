package render_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/RadicalTray/image-viewer/render"
	"github.com/RadicalTray/image-viewer/render/rendertest"
)

func newRenderer(t *testing.T, mutate func(gpu *rendertest.GPU, opts *render.Options)) (*render.Renderer, *rendertest.GPU) {
	t.Helper()

	gpu := rendertest.NewGPU(t)
	opts := gpu.Options()
	if mutate != nil {
		mutate(gpu, &opts)
	}

	renderer, err := render.New(opts)
	require.NoError(t, err)
	return renderer, gpu
}

func drawFrames(t *testing.T, renderer *render.Renderer, count int) {
	t.Helper()

	for i := 0; i < count; i++ {
		require.NoError(t, renderer.DrawFrame(), "frame %d", i)
	}
}

func TestRenderer_New(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)
	device := gpu.Device()

	require.Equal(t, 0, renderer.CurrentFrame())
	require.Equal(t, render.MaxFramesInFlight, renderer.Frames().Len())
	require.Equal(t, []core1_0.CommandPoolCreateFlags{core1_0.CommandPoolCreateResetBuffer}, device.CommandPoolFlags)

	for i := 0; i < renderer.Frames().Len(); i++ {
		slot := renderer.Frames().Slot(i)
		require.True(t, device.FenceSignaled(slot.InFlight))
		require.NotEqual(t, slot.ImageAvailable, slot.RenderFinished)
		require.NotNil(t, slot.Uniforms.Mapped())
		require.Equal(t, slot.Uniforms.Handle(), device.UniformBinding(slot.Descriptors))
	}

	// Shader modules only live while the pipeline is built.
	require.Equal(t, 0, device.Live("ShaderModule"))
	require.Len(t, device.Pipelines, 1)
	require.Equal(t, renderer.PipelineCache(), device.Pipelines[0].Cache)
	require.Equal(t,
		[]core1_0.DynamicState{core1_0.DynamicStateViewport, core1_0.DynamicStateScissor},
		device.Pipelines[0].Info.DynamicState.DynamicStates)
	require.Len(t, device.Pipelines[0].Info.Stages, 2)
	require.Equal(t, "main", device.Pipelines[0].Info.Stages[0].Name)

	vertices := &bytes.Buffer{}
	require.NoError(t, binary.Write(vertices, common.ByteOrder, render.QuadVertices))
	require.Equal(t, vertices.Bytes(), device.Contents(renderer.VertexBuffer().Handle()))
}

func TestRenderer_NoSuitableDevice(t *testing.T) {
	gpu := rendertest.NewGPU(t)
	gpu.Physical.DeviceExtensions = nil

	_, err := render.New(gpu.Options())
	require.True(t, errors.Is(err, render.ErrNoSuitableDevice))
	require.Equal(t, 1, gpu.Journal.Count("destroy:Surface"))
	require.Equal(t, 1, gpu.Journal.Count("destroy:Instance"))
	require.Nil(t, gpu.Device())
}

func TestRenderer_FailedInitReleasesEverything(t *testing.T) {
	gpu := rendertest.NewGPU(t)
	opts := gpu.Options()
	opts.FragmentShader = []byte{1, 2, 3}

	_, err := render.New(opts)
	require.Error(t, err)
	require.Empty(t, gpu.Device().Leaks())
	require.True(t, gpu.Device().Destroyed)
	require.Zero(t, countPrefix(gpu.Journal.Events, "invalid-destroy:"))
}

func TestRenderer_FrameSlotsAlternate(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)
	device := gpu.Device()
	ring := renderer.Frames()
	mark := gpu.Journal.Mark()

	var indices []int
	for i := 0; i < 4; i++ {
		require.NoError(t, renderer.DrawFrame())
		indices = append(indices, renderer.CurrentFrame())
	}
	require.Equal(t, []int{1, 0, 1, 0}, indices)

	require.Len(t, device.Submits, 4+2)
	frames := device.Submits[2:]
	for i, submit := range frames {
		slot := ring.Slot(i % render.MaxFramesInFlight)
		require.Equal(t, slot.InFlight, submit.Fence)
		require.Equal(t, []core1_0.Semaphore{slot.ImageAvailable}, submit.WaitSemaphores)
		require.Equal(t, []core1_0.Semaphore{slot.RenderFinished}, submit.SignalSemaphores)
		require.Equal(t, []core1_0.CommandBuffer{slot.Commands}, submit.CommandBuffers)
		require.Equal(t, []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput}, submit.WaitDstStageMask)
		require.Equal(t, []core1_0.Semaphore{slot.RenderFinished}, device.Presents[i].WaitSemaphores)
		require.Equal(t, []int{i % renderer.Swapchain().ImageCount()}, device.Presents[i].ImageIndices)
	}

	events := gpu.Journal.Since(mark)
	for _, event := range []string{"WaitForFences", "ResetFences", "QueueSubmit", "QueuePresent"} {
		require.Equal(t, 4, countPrefix(events, event), event)
	}
	// Each frame waits on its slot fence before resetting it.
	require.Less(t, indexOf(events, "WaitForFences"), indexOf(events, "ResetFences"))
	require.Less(t, indexOf(events, "ResetFences"), indexOf(events, "QueueSubmit"))
}

func TestRenderer_RecordsDrawCommands(t *testing.T) {
	renderer, gpu := newRenderer(t, func(gpu *rendertest.GPU, opts *render.Options) {
		opts.Config.ClearColor = [4]float32{0.1, 0.2, 0.3, 1}
	})
	device := gpu.Device()

	require.NoError(t, renderer.DrawFrame())

	slot := renderer.Frames().Slot(0)
	ops := device.Commands(slot.Commands)

	var names []string
	for _, op := range ops {
		names = append(names, op.Name)
	}
	require.Equal(t, []string{
		"BeginRenderPass",
		"BindPipeline",
		"BindVertexBuffers",
		"BindIndexBuffer",
		"SetViewport",
		"SetScissor",
		"BindDescriptorSets",
		"DrawIndexed",
		"EndRenderPass",
	}, names)

	extent := renderer.Swapchain().Extent()
	require.Equal(t, renderer.Swapchain().Framebuffer(0), ops[0].Framebuffer)
	require.Equal(t, extent, ops[0].Extent)
	require.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, ops[0].ClearColor)
	require.Equal(t, renderer.VertexBuffer().Handle(), ops[2].Src)
	require.Equal(t, renderer.IndexBuffer().Handle(), ops[3].Src)
	require.Equal(t, core1_0.IndexTypeUInt32, ops[3].IndexType)
	require.Equal(t, float32(extent.Width), ops[4].Viewport.Width)
	require.Equal(t, float32(extent.Height), ops[4].Viewport.Height)
	require.Equal(t, float32(1), ops[4].Viewport.MaxDepth)
	require.Equal(t, extent, ops[5].Scissor.Extent)
	require.Equal(t, slot.Descriptors, ops[6].Set)
	require.Equal(t, len(render.QuadIndices), ops[7].IndexCount)
	require.Zero(t, countPrefix(gpu.Journal.Events, "record-outside-begin:"))
}

func TestRenderer_WritesUniformsForCurrentSlot(t *testing.T) {
	now := 3 * time.Second
	renderer, gpu := newRenderer(t, func(gpu *rendertest.GPU, opts *render.Options) {
		opts.Clock = func() time.Duration { return now }
	})
	device := gpu.Device()

	now += time.Second
	require.NoError(t, renderer.DrawFrame())

	expected := render.NewTransform(time.Second, renderer.Swapchain().Extent())
	encoded := &bytes.Buffer{}
	require.NoError(t, binary.Write(encoded, common.ByteOrder, &expected))

	require.Equal(t, encoded.Bytes(), device.Contents(renderer.Frames().Slot(0).Uniforms.Handle()))
	require.NotEqual(t, encoded.Bytes(), device.Contents(renderer.Frames().Slot(1).Uniforms.Handle()))
}

func TestRenderer_OutOfDateAcquireRebuildsAndContinues(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)
	device := gpu.Device()
	device.AcquireResults = []common.VkResult{core1_0.VKSuccess, core1_0.VKSuccess, khr_swapchain.VKErrorOutOfDate}

	drawFrames(t, renderer, 5)

	require.Equal(t, 2, renderer.Swapchain().Generation())
	require.Equal(t, 5, gpu.Journal.Count("AcquireNextImage"))
	require.Len(t, device.Presents, 4)
	require.Equal(t, 1, renderer.CurrentFrame())
	require.Equal(t, 1, device.WaitIdleCalls)
	require.Zero(t, countPrefix(gpu.Journal.Events, "invalid-destroy:"))

	// The abandoned frame never reset its fence, so its slot is reusable.
	for i := 0; i < renderer.Frames().Len(); i++ {
		require.True(t, device.FenceSignaled(renderer.Frames().Slot(i).InFlight))
	}
	require.Equal(t, []khr_swapchain.Swapchain{renderer.Swapchain().Handle()}, device.Presents[3].Swapchains)
}

func TestRenderer_SuboptimalAcquirePresents(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)
	device := gpu.Device()
	device.AcquireResults = []common.VkResult{khr_swapchain.VKSuboptimal}

	require.NoError(t, renderer.DrawFrame())
	require.Len(t, device.Presents, 1)
	require.Equal(t, 1, renderer.Swapchain().Generation())
}

func TestRenderer_SuboptimalPresent(t *testing.T) {
	t.Run("RebuildsImmediately", func(t *testing.T) {
		renderer, gpu := newRenderer(t, nil)
		gpu.Device().PresentResults = []common.VkResult{khr_swapchain.VKSuboptimal}

		require.NoError(t, renderer.DrawFrame())
		require.Equal(t, 2, renderer.Swapchain().Generation())
	})

	t.Run("Tolerated", func(t *testing.T) {
		renderer, gpu := newRenderer(t, func(gpu *rendertest.GPU, opts *render.Options) {
			opts.Config.SuboptimalTolerance = 1
		})
		gpu.Device().PresentResults = []common.VkResult{
			khr_swapchain.VKSuboptimal,
			core1_0.VKSuccess,
			khr_swapchain.VKSuboptimal,
			khr_swapchain.VKSuboptimal,
		}

		drawFrames(t, renderer, 3)
		require.Equal(t, 1, renderer.Swapchain().Generation())

		require.NoError(t, renderer.DrawFrame())
		require.Equal(t, 2, renderer.Swapchain().Generation())
	})
}

func TestRenderer_OutOfDatePresentRebuilds(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)
	gpu.Device().PresentResults = []common.VkResult{khr_swapchain.VKErrorOutOfDate}

	require.NoError(t, renderer.DrawFrame())
	require.Equal(t, 2, renderer.Swapchain().Generation())
	require.Equal(t, 1, renderer.CurrentFrame())
}

func TestRenderer_ResizeRebuildsAfterPresent(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)

	renderer.Resize()
	mark := gpu.Journal.Mark()
	require.NoError(t, renderer.DrawFrame())

	events := gpu.Journal.Since(mark)
	require.Less(t, indexOf(events, "QueuePresent"), indexOf(events, "create:Swapchain"))
	require.Equal(t, 2, renderer.Swapchain().Generation())

	require.NoError(t, renderer.DrawFrame())
	require.Equal(t, 2, renderer.Swapchain().Generation())
}

func TestRenderer_RepeatedResizeRebuildsOnce(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)
	device := gpu.Device()
	before := device.Leaks()

	renderer.Resize()
	renderer.Resize()
	require.NoError(t, renderer.DrawFrame())

	require.Equal(t, 2, renderer.Swapchain().Generation())
	require.Equal(t, 1, device.WaitIdleCalls)
	require.Len(t, device.SwapchainInfos, 2)
	require.Equal(t, before, device.Leaks())
	require.Zero(t, countPrefix(gpu.Journal.Events, "invalid-destroy:"))

	require.NoError(t, renderer.Shutdown())
	require.Empty(t, device.Leaks())
}

func TestRenderer_ZeroSizeWindowDefersRebuild(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)
	device := gpu.Device()

	gpu.Window.Width, gpu.Window.Height = 0, 0
	renderer.Resize()
	require.NoError(t, renderer.DrawFrame())
	require.True(t, renderer.RecreatePending())
	require.Equal(t, 1, renderer.Swapchain().Generation())
	require.Equal(t, 1, renderer.CurrentFrame())

	// Frames are skipped while the window has no area.
	require.NoError(t, renderer.DrawFrame())
	require.NoError(t, renderer.DrawFrame())
	require.Len(t, device.Presents, 1)
	require.Equal(t, 1, renderer.CurrentFrame())
	require.Equal(t, 0, device.WaitIdleCalls)

	gpu.Window.Width, gpu.Window.Height = 640, 480
	require.NoError(t, renderer.DrawFrame())
	require.False(t, renderer.RecreatePending())
	require.Equal(t, 2, renderer.Swapchain().Generation())
	require.Len(t, device.Presents, 2)
}

func TestRenderer_HungFenceIsDeviceLost(t *testing.T) {
	renderer, gpu := newRenderer(t, func(gpu *rendertest.GPU, opts *render.Options) {
		opts.Config.FenceTimeout = time.Millisecond
	})
	gpu.Device().HangFences = true

	drawFrames(t, renderer, render.MaxFramesInFlight)

	err := renderer.DrawFrame()
	require.True(t, errors.Is(err, render.ErrDeviceLost))
}

func TestRenderer_FatalPresent(t *testing.T) {
	t.Run("DeviceLost", func(t *testing.T) {
		renderer, gpu := newRenderer(t, nil)
		gpu.Device().PresentResults = []common.VkResult{core1_0.VKErrorDeviceLost}

		err := renderer.DrawFrame()
		require.True(t, errors.Is(err, render.ErrDeviceLost))
	})

	t.Run("Unknown", func(t *testing.T) {
		renderer, gpu := newRenderer(t, nil)
		gpu.Device().PresentResults = []common.VkResult{core1_0.VKErrorUnknown}

		err := renderer.DrawFrame()
		require.Error(t, err)
		require.False(t, errors.Is(err, render.ErrDeviceLost))
		require.Equal(t, 1, renderer.Swapchain().Generation())
	})
}

func TestRenderer_FatalAcquire(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)
	gpu.Device().AcquireResults = []common.VkResult{core1_0.VKErrorDeviceLost}

	err := renderer.DrawFrame()
	require.True(t, errors.Is(err, render.ErrDeviceLost))
	require.Empty(t, gpu.Device().Presents)
}

func TestRenderer_ShutdownOrder(t *testing.T) {
	renderer, gpu := newRenderer(t, nil)
	device := gpu.Device()
	drawFrames(t, renderer, 3)

	mark := gpu.Journal.Mark()
	require.NoError(t, renderer.Shutdown())
	events := gpu.Journal.Since(mark)

	require.Equal(t, "WaitIdle", events[0])
	require.Empty(t, device.Leaks())
	require.Zero(t, countPrefix(events, "invalid-destroy:"))
	require.Zero(t, countPrefix(events, "free-mapped:"))

	order := []string{
		"destroy:Semaphore",
		"destroy:CommandPool",
		"destroy:Buffer",
		"destroy:Pipeline",
		"destroy:RenderPass",
		"destroy:Swapchain",
		"destroy:Surface",
		"destroy:Device",
		"destroy:Instance",
	}
	for i := 1; i < len(order); i++ {
		require.Less(t, lastIndexOf(events, order[i-1]), indexOf(events, order[i]), "%s before %s", order[i-1], order[i])
	}
	require.Less(t, lastIndexOf(events, "destroy:Fence"), indexOf(events, "destroy:CommandPool"))
	require.Less(t, lastIndexOf(events, "destroy:Framebuffer"), indexOf(events, "destroy:Swapchain"))
	require.Less(t, lastIndexOf(events, "destroy:ImageView"), indexOf(events, "destroy:Swapchain"))

	require.ErrorIs(t, renderer.DrawFrame(), render.ErrRendererClosed)
	require.NoError(t, renderer.Shutdown())
	require.Equal(t, 1, gpu.Journal.Count("destroy:Device"))
}

func TestRenderer_PipelineCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.cache")
	saved := cacheBlob(t, matchingHeader(), 1, 2, 3, 4)
	require.NoError(t, os.WriteFile(path, saved, 0o644))

	renderer, gpu := newRenderer(t, func(gpu *rendertest.GPU, opts *render.Options) {
		opts.Config.PipelineCachePath = path
		opts.PipelineCacheData = saved
	})
	device := gpu.Device()
	require.Equal(t, [][]byte{saved}, device.CacheInitialData)

	updated := cacheBlob(t, matchingHeader(), 5, 6, 7, 8, 9)
	device.CacheData = updated
	require.NoError(t, renderer.Shutdown())

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, updated, written)
}

func TestRenderer_MismatchedPipelineCacheDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.cache")
	header := matchingHeader()
	header.DeviceID = 0x1
	stale := cacheBlob(t, header, 1, 2, 3, 4)
	require.NoError(t, os.WriteFile(path, stale, 0o644))

	renderer, gpu := newRenderer(t, func(gpu *rendertest.GPU, opts *render.Options) {
		opts.Config.PipelineCachePath = path
		opts.PipelineCacheData = stale
	})
	require.Equal(t, [][]byte{nil}, gpu.Device().CacheInitialData)

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, renderer.Shutdown())
}

func indexOf(events []string, event string) int {
	for i, e := range events {
		if e == event {
			return i
		}
	}
	return -1
}

func lastIndexOf(events []string, event string) int {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i] == event {
			return i
		}
	}
	return -1
}

func countPrefix(events []string, prefix string) int {
	count := 0
	for _, e := range events {
		if strings.HasPrefix(e, prefix) {
			count++
		}
	}
	return count
}
