package render

import (
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

type Options struct {
	// Instance and Surface are owned by the Renderer once New is called,
	// whether or not it succeeds.
	Instance Instance
	Surface  khr_surface.Surface
	Window   Window

	Config Config
	Logger *slog.Logger

	VertexShader   []byte
	FragmentShader []byte

	// PipelineCacheData is the previous run's pipeline cache, if any.
	PipelineCacheData []byte

	// Clock drives the animation. It defaults to hrtime.Now.
	Clock func() time.Duration
}

// Renderer draws the quad into a window surface, keeping up to
// MaxFramesInFlight frames in flight. All methods must be called from the
// same goroutine.
type Renderer struct {
	config Config
	logger *slog.Logger
	clock  func() time.Duration
	start  time.Duration

	instance Instance
	surface  *Surface
	window   Window

	ctx            *DeviceContext
	swapchain      *Swapchain
	pipeline       *graphicsPipeline
	commandPool    core1_0.CommandPool
	descriptorPool core1_0.DescriptorPool
	vertexBuffer   *Buffer
	indexBuffer    *Buffer
	frames         *FrameRing

	framebufferResized bool
	pendingRecreate    bool
	suboptimalCount    int
	closed             bool
}

func New(opts Options) (*Renderer, error) {
	r := &Renderer{
		config:   opts.Config,
		logger:   opts.Logger,
		clock:    opts.Clock,
		instance: opts.Instance,
		window:   opts.Window,
	}
	if r.instance != nil {
		r.surface = &Surface{Extension: r.instance.SurfaceExtension(), Handle: opts.Surface}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.clock == nil {
		r.clock = hrtime.Now
	}

	err := r.init(opts)
	if err != nil {
		r.release()
		return nil, err
	}

	r.start = r.clock()
	return r, nil
}

func (r *Renderer) init(opts Options) error {
	physical, indices, err := SelectDevice(r.instance.Driver(), r.surface, r.config.requirements())
	if err != nil {
		return err
	}

	r.ctx, err = NewDeviceContext(r.instance, physical, indices, r.config.requirements(), r.logger)
	if err != nil {
		return err
	}
	driver := r.ctx.Driver

	r.swapchain, err = NewSwapchain(r.ctx, r.surface, r.window, &r.config, r.logger)
	if err != nil {
		return err
	}

	cacheData := validPipelineCacheData(opts.PipelineCacheData, r.ctx.Properties, r.config.PipelineCachePath, r.logger)
	cache, _, err := driver.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: cacheData,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create pipeline cache")
	}

	r.pipeline, err = createGraphicsPipeline(driver, r.swapchain.Format().Format, cache, opts.VertexShader, opts.FragmentShader)
	if err != nil {
		return err
	}

	err = r.swapchain.AttachRenderPass(r.pipeline.renderPass)
	if err != nil {
		return err
	}

	r.commandPool, _, err = driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: *indices.GraphicsFamily,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create command pool")
	}

	r.vertexBuffer, err = r.ctx.UploadStaged(r.commandPool, QuadVertices, core1_0.BufferUsageVertexBuffer)
	if err != nil {
		return errors.Wrap(err, "failed to create vertex buffer")
	}

	r.indexBuffer, err = r.ctx.UploadStaged(r.commandPool, QuadIndices, core1_0.BufferUsageIndexBuffer)
	if err != nil {
		return errors.Wrap(err, "failed to create index buffer")
	}

	r.descriptorPool, err = createDescriptorPool(driver, MaxFramesInFlight)
	if err != nil {
		return errors.Wrap(err, "failed to create descriptor pool")
	}

	r.frames, err = newFrameRing(r.ctx, r.commandPool, r.descriptorPool, r.pipeline.setLayout, MaxFramesInFlight)
	return err
}

func (r *Renderer) CurrentFrame() int                      { return r.frames.Index() }
func (r *Renderer) Frames() *FrameRing                     { return r.frames }
func (r *Renderer) Swapchain() *Swapchain                  { return r.swapchain }
func (r *Renderer) DeviceContext() *DeviceContext          { return r.ctx }
func (r *Renderer) RecreatePending() bool                  { return r.pendingRecreate }
func (r *Renderer) VertexBuffer() *Buffer                  { return r.vertexBuffer }
func (r *Renderer) IndexBuffer() *Buffer                   { return r.indexBuffer }
func (r *Renderer) PipelineCache() core1_0.PipelineCache   { return r.pipeline.cache }
func (r *Renderer) CommandPool() core1_0.CommandPool       { return r.commandPool }
func (r *Renderer) DescriptorPool() core1_0.DescriptorPool { return r.descriptorPool }

// Resize records that the window changed size. The swapchain is rebuilt at
// the end of the next frame.
func (r *Renderer) Resize() {
	r.framebufferResized = true
}

// RecreateSwapchain rebuilds the swapchain for the window's current size.
// While the window has no drawable area the rebuild stays pending and
// DrawFrame skips frames.
func (r *Renderer) RecreateSwapchain() error {
	if r.closed {
		return ErrRendererClosed
	}

	width, height := r.window.DrawableSize()
	if width == 0 || height == 0 {
		if !r.pendingRecreate {
			r.logger.Debug("window has no drawable area, deferring swapchain rebuild")
		}
		r.pendingRecreate = true
		return nil
	}

	err := r.swapchain.Recreate()
	if err != nil {
		return errors.Wrap(err, "failed to recreate swapchain")
	}

	r.pendingRecreate = false
	r.framebufferResized = false
	r.suboptimalCount = 0
	return nil
}

func (r *Renderer) waitForFrame(slot *FrameSlot) error {
	timeout := r.config.FenceTimeout
	if timeout <= 0 {
		timeout = common.NoTimeout
	}

	res, err := r.ctx.Driver.WaitForFences(true, timeout, slot.InFlight)
	if res == core1_0.VKTimeout || res == core1_0.VKErrorDeviceLost {
		return errors.Wrapf(ErrDeviceLost, "frame %d not finished after %s", r.frames.Index(), timeout)
	}
	if err != nil {
		return errors.Wrap(err, "failed to wait for frame fence")
	}
	return nil
}

// DrawFrame renders and presents one frame. Any returned error is fatal.
func (r *Renderer) DrawFrame() error {
	if r.closed {
		return ErrRendererClosed
	}

	if r.pendingRecreate {
		err := r.RecreateSwapchain()
		if err != nil {
			return err
		}
		if r.pendingRecreate {
			return nil
		}
	}

	defer r.frames.Advance()
	slot := r.frames.Current()
	driver := r.ctx.Driver

	err := r.waitForFrame(slot)
	if err != nil {
		return err
	}

	imageIndex, res, err := r.ctx.Swapchains.AcquireNextImage(r.swapchain.Handle(), common.NoTimeout, &slot.ImageAvailable, nil)
	switch classifyAcquire(res, err) {
	case outcomeRecreate:
		r.logger.Debug("swapchain out of date on acquire")
		return r.RecreateSwapchain()
	case outcomeFatal:
		return resultError("acquire next image", res, err)
	}

	_, err = driver.ResetCommandBuffer(slot.Commands, 0)
	if err != nil {
		return errors.Wrap(err, "failed to reset command buffer")
	}

	err = recordFrame(driver, slot.Commands, drawState{
		renderPass:   r.pipeline.renderPass,
		framebuffer:  r.swapchain.Framebuffer(imageIndex),
		extent:       r.swapchain.Extent(),
		clearColor:   r.config.ClearColor,
		pipeline:     r.pipeline.pipeline,
		layout:       r.pipeline.layout,
		vertexBuffer: r.vertexBuffer.Handle(),
		indexBuffer:  r.indexBuffer.Handle(),
		indexCount:   len(QuadIndices),
		descriptors:  slot.Descriptors,
	})
	if err != nil {
		return err
	}

	ubo := NewTransform(r.clock()-r.start, r.swapchain.Extent())
	err = slot.Uniforms.Write(&ubo)
	if err != nil {
		return errors.Wrap(err, "failed to update uniform buffer")
	}

	_, err = driver.ResetFences(slot.InFlight)
	if err != nil {
		return errors.Wrap(err, "failed to reset fence")
	}

	_, err = driver.QueueSubmit(r.ctx.GraphicsQueue, &slot.InFlight, core1_0.SubmitInfo{
		WaitSemaphores:   []core1_0.Semaphore{slot.ImageAvailable},
		WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []core1_0.CommandBuffer{slot.Commands},
		SignalSemaphores: []core1_0.Semaphore{slot.RenderFinished},
	})
	if err != nil {
		return errors.Wrap(err, "failed to submit draw command buffer")
	}

	res, err = r.ctx.Swapchains.QueuePresent(r.ctx.PresentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{slot.RenderFinished},
		Swapchains:     []khr_swapchain.Swapchain{r.swapchain.Handle()},
		ImageIndices:   []int{imageIndex},
	})

	recreate := r.framebufferResized
	switch classifyPresent(res, err) {
	case outcomeFatal:
		return resultError("present", res, err)
	case outcomeRecreate:
		if res == khr_swapchain.VKSuboptimal {
			r.suboptimalCount++
			if r.suboptimalCount > r.config.SuboptimalTolerance {
				recreate = true
			}
		} else {
			recreate = true
		}
	default:
		r.suboptimalCount = 0
	}

	if recreate {
		r.logger.Debug("rebuilding swapchain after present", slog.Any("result", res))
		return r.RecreateSwapchain()
	}
	return nil
}

// Shutdown waits for the device to go idle, saves the pipeline cache when a
// path is configured, and destroys every object in reverse creation order.
func (r *Renderer) Shutdown() error {
	if r.closed {
		return nil
	}

	var err error
	if r.ctx != nil && r.ctx.Driver != nil {
		_, err = r.ctx.Driver.DeviceWaitIdle()
		if err != nil {
			err = errors.Wrap(err, "failed to wait for device idle")
		}

		if r.pipeline != nil && r.pipeline.cache.Initialized() && r.config.PipelineCachePath != "" {
			err = errors.CombineErrors(err, savePipelineCache(r.ctx.Driver, r.pipeline.cache, r.config.PipelineCachePath))
		}
	}

	r.release()
	r.logger.Info("renderer shut down")
	return err
}

func (r *Renderer) release() {
	if r.ctx != nil && r.ctx.Driver != nil {
		driver := r.ctx.Driver

		if r.frames != nil {
			r.frames.destroySync()
		}

		if r.descriptorPool.Initialized() {
			driver.DestroyDescriptorPool(r.descriptorPool, nil)
			r.descriptorPool = core1_0.DescriptorPool{}
		}
		if r.commandPool.Initialized() {
			driver.DestroyCommandPool(r.commandPool, nil)
			r.commandPool = core1_0.CommandPool{}
		}

		if r.frames != nil {
			r.frames.destroyBuffers()
		}
		r.indexBuffer.Destroy()
		r.vertexBuffer.Destroy()

		if r.pipeline != nil {
			r.pipeline.destroy(driver)
			r.pipeline.destroyRenderPass(driver)
		}

		r.swapchain.Destroy()
	}

	if r.surface != nil {
		r.surface.Destroy()
		r.surface = nil
	}

	if r.ctx != nil {
		r.ctx.Destroy()
	}

	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}

	r.closed = true
}
