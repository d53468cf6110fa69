package render

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

type SwapchainState int

const (
	SwapchainUninitialized SwapchainState = iota
	SwapchainReady
	SwapchainRecreating
	SwapchainDestroyed
)

var swapchainStateNames = map[SwapchainState]string{
	SwapchainUninitialized: "Uninitialized",
	SwapchainReady:         "Ready",
	SwapchainRecreating:    "Recreating",
	SwapchainDestroyed:     "Destroyed",
}

func (s SwapchainState) String() string {
	name, ok := swapchainStateNames[s]
	if !ok {
		return "Unknown"
	}
	return name
}

// undefinedExtent is the surface's CurrentExtent width when the window
// system lets the swapchain pick its own size.
const undefinedExtent = -1

func ChooseSurfaceFormat(availableFormats []khr_surface.SurfaceFormat, preferred khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == preferred.Format && format.ColorSpace == preferred.ColorSpace {
			return format
		}
	}

	return availableFormats[0]
}

func ChoosePresentMode(availablePresentModes []khr_surface.PresentMode, preferred khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range availablePresentModes {
		if presentMode == preferred {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

func ChooseSwapExtent(capabilities *khr_surface.SurfaceCapabilities, drawableWidth, drawableHeight int) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != undefinedExtent {
		return capabilities.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(drawableWidth, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(drawableHeight, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// SwapchainImageCount asks for one image more than the minimum, capped at
// the maximum when the surface has one.
func SwapchainImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

// Swapchain owns the presentable images of a surface together with their
// views and framebuffers. It is never resized in place; Recreate tears
// everything down and builds it again from the surface's current state.
type Swapchain struct {
	ctx     *DeviceContext
	surface *Surface
	window  Window
	config  *Config
	logger  *slog.Logger

	swapchain    khr_swapchain.Swapchain
	images       []core1_0.Image
	views        []core1_0.ImageView
	framebuffers []core1_0.Framebuffer
	format       khr_surface.SurfaceFormat
	extent       core1_0.Extent2D
	presentMode  khr_surface.PresentMode

	renderPass core1_0.RenderPass
	state      SwapchainState
	generation int
}

func NewSwapchain(ctx *DeviceContext, surface *Surface, window Window, config *Config, logger *slog.Logger) (*Swapchain, error) {
	if logger == nil {
		logger = slog.Default()
	}

	swapchain := &Swapchain{
		ctx:     ctx,
		surface: surface,
		window:  window,
		config:  config,
		logger:  logger,
	}

	err := swapchain.build()
	if err != nil {
		swapchain.destroyResources()
		return nil, err
	}
	swapchain.state = SwapchainReady
	return swapchain, nil
}

func (s *Swapchain) Handle() khr_swapchain.Swapchain                { return s.swapchain }
func (s *Swapchain) Format() khr_surface.SurfaceFormat              { return s.format }
func (s *Swapchain) Extent() core1_0.Extent2D                       { return s.extent }
func (s *Swapchain) PresentMode() khr_surface.PresentMode           { return s.presentMode }
func (s *Swapchain) State() SwapchainState                          { return s.state }
func (s *Swapchain) ImageCount() int                                { return len(s.images) }
func (s *Swapchain) Framebuffer(imageIndex int) core1_0.Framebuffer { return s.framebuffers[imageIndex] }

// Generation counts how many times the swapchain has been built.
func (s *Swapchain) Generation() int { return s.generation }

func (s *Swapchain) build() error {
	driver := s.ctx.Driver

	capabilities, err := s.surface.Capabilities(s.ctx.Physical)
	if err != nil {
		return errors.Wrap(err, "failed to query surface capabilities")
	}

	formats, err := s.surface.Formats(s.ctx.Physical)
	if err != nil {
		return errors.Wrap(err, "failed to query surface formats")
	}
	if len(formats) == 0 {
		return errors.New("surface reports no formats")
	}

	presentModes, err := s.surface.PresentModes(s.ctx.Physical)
	if err != nil {
		return errors.Wrap(err, "failed to query surface present modes")
	}

	surfaceFormat := ChooseSurfaceFormat(formats, s.config.PreferredFormat)
	presentMode := ChoosePresentMode(presentModes, s.config.PreferredPresentMode)
	width, height := s.window.DrawableSize()
	extent := ChooseSwapExtent(capabilities, width, height)

	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int

	indices := s.ctx.Indices
	if *indices.GraphicsFamily != *indices.PresentFamily {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = append(queueFamilyIndices, *indices.GraphicsFamily, *indices.PresentFamily)
	}

	s.swapchain, _, err = s.ctx.Swapchains.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: s.surface.Handle,

		MinImageCount:    SwapchainImageCount(capabilities),
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create swapchain")
	}

	if s.renderPass.Initialized() && surfaceFormat.Format != s.format.Format {
		s.logger.Warn("surface format changed, reusing render pass",
			slog.Any("old", s.format.Format), slog.Any("new", surfaceFormat.Format))
	}
	s.format = surfaceFormat
	s.extent = extent
	s.presentMode = presentMode

	s.images, _, err = s.ctx.Swapchains.GetSwapchainImages(s.swapchain)
	if err != nil {
		return errors.Wrap(err, "failed to get swapchain images")
	}

	for _, image := range s.images {
		view, _, err := driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   s.format.Format,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return errors.Wrap(err, "failed to create swapchain image view")
		}
		s.views = append(s.views, view)
	}

	s.generation++
	s.logger.Info("built swapchain",
		slog.Int("images", len(s.images)),
		slog.Int("width", extent.Width),
		slog.Int("height", extent.Height),
		slog.Any("format", surfaceFormat.Format),
		slog.Any("presentMode", presentMode))

	if s.renderPass.Initialized() {
		return s.createFramebuffers()
	}
	return nil
}

func (s *Swapchain) createFramebuffers() error {
	for _, view := range s.views {
		framebuffer, _, err := s.ctx.Driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass:  s.renderPass,
			Layers:      1,
			Attachments: []core1_0.ImageView{view},
			Width:       s.extent.Width,
			Height:      s.extent.Height,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create framebuffer")
		}
		s.framebuffers = append(s.framebuffers, framebuffer)
	}
	return nil
}

// AttachRenderPass creates one framebuffer per image for renderPass. The
// same render pass is reused by every later Recreate.
func (s *Swapchain) AttachRenderPass(renderPass core1_0.RenderPass) error {
	s.renderPass = renderPass
	return s.createFramebuffers()
}

// Recreate waits for the device to go idle, then replaces the swapchain,
// its views and its framebuffers.
func (s *Swapchain) Recreate() error {
	if s.state == SwapchainDestroyed {
		return errors.New("recreate of destroyed swapchain")
	}
	s.state = SwapchainRecreating

	_, err := s.ctx.Driver.DeviceWaitIdle()
	if err != nil {
		return errors.Wrap(err, "failed to wait for device idle")
	}

	s.destroyResources()

	err = s.build()
	if err != nil {
		return err
	}

	s.state = SwapchainReady
	return nil
}

// destroyResources releases framebuffers, views and the swapchain. The
// images belong to the swapchain and go with it.
func (s *Swapchain) destroyResources() {
	driver := s.ctx.Driver

	for _, framebuffer := range s.framebuffers {
		driver.DestroyFramebuffer(framebuffer, nil)
	}
	s.framebuffers = nil

	for _, view := range s.views {
		driver.DestroyImageView(view, nil)
	}
	s.views = nil
	s.images = nil

	if s.swapchain.Initialized() {
		s.ctx.Swapchains.DestroySwapchain(s.swapchain, nil)
		s.swapchain = khr_swapchain.Swapchain{}
	}
}

func (s *Swapchain) Destroy() {
	if s == nil || s.state == SwapchainDestroyed {
		return
	}
	s.destroyResources()
	s.state = SwapchainDestroyed
}
