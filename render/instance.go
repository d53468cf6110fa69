package render

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// Instance is the Vulkan instance the renderer draws through, together with
// the extension drivers it needs for presentation.
type Instance interface {
	Driver() core1_0.CoreInstanceDriver
	SurfaceExtension() khr_surface.ExtensionDriver
	// SwapchainExtension loads the swapchain extension for a device created
	// from this instance.
	SwapchainExtension(device core1_0.CoreDeviceDriver) khr_swapchain.ExtensionDriver
	Destroy()
}

// Window reports the drawable size of the window backing the surface, in pixels.
type Window interface {
	DrawableSize() (int, int)
}

// Surface pairs a presentation surface with the extension driver that
// queries it.
type Surface struct {
	Extension khr_surface.ExtensionDriver
	Handle    khr_surface.Surface
}

func (s *Surface) SupportsPresent(physical core1_0.PhysicalDevice, family int) (bool, error) {
	supported, _, err := s.Extension.GetPhysicalDeviceSurfaceSupport(s.Handle, physical, family)
	return supported, err
}

func (s *Surface) Capabilities(physical core1_0.PhysicalDevice) (*khr_surface.SurfaceCapabilities, error) {
	capabilities, _, err := s.Extension.GetPhysicalDeviceSurfaceCapabilities(s.Handle, physical)
	return capabilities, err
}

func (s *Surface) Formats(physical core1_0.PhysicalDevice) ([]khr_surface.SurfaceFormat, error) {
	formats, _, err := s.Extension.GetPhysicalDeviceSurfaceFormats(s.Handle, physical)
	return formats, err
}

func (s *Surface) PresentModes(physical core1_0.PhysicalDevice) ([]khr_surface.PresentMode, error) {
	presentModes, _, err := s.Extension.GetPhysicalDeviceSurfacePresentModes(s.Handle, physical)
	return presentModes, err
}

func (s *Surface) Destroy() {
	if s.Handle.Initialized() {
		s.Extension.DestroySurface(s.Handle, nil)
		s.Handle = khr_surface.Surface{}
	}
}
