package render

import (
	"time"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// MaxFramesInFlight is the number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

const defaultFenceTimeout = 5 * time.Second

type Config struct {
	// PreferredFormat is used when the surface reports it; otherwise the
	// first reported format is used.
	PreferredFormat khr_surface.SurfaceFormat
	// PreferredPresentMode falls back to FIFO, which every surface supports.
	PreferredPresentMode khr_surface.PresentMode

	DeviceExtensions []string
	RequiredFeatures core1_0.PhysicalDeviceFeatures

	// FenceTimeout bounds the wait for a frame slot's previous submission.
	FenceTimeout time.Duration
	// SuboptimalTolerance is the number of consecutive suboptimal presents
	// accepted before the swapchain is rebuilt. Zero rebuilds immediately.
	SuboptimalTolerance int

	ClearColor [4]float32

	// PipelineCachePath is where pipeline cache data is written on shutdown.
	// Empty disables persistence.
	PipelineCachePath string
}

func DefaultConfig() Config {
	return Config{
		PreferredFormat: khr_surface.SurfaceFormat{
			Format:     core1_0.FormatB8G8R8A8SRGB,
			ColorSpace: khr_surface.ColorSpaceSRGBNonlinear,
		},
		PreferredPresentMode: khr_surface.PresentModeFIFO,
		DeviceExtensions:     []string{khr_swapchain.ExtensionName},
		RequiredFeatures: core1_0.PhysicalDeviceFeatures{
			SamplerAnisotropy: true,
			GeometryShader:    true,
		},
		FenceTimeout: defaultFenceTimeout,
		ClearColor:   [4]float32{0, 0, 0, 1},
	}
}

func (c Config) requirements() DeviceRequirements {
	return DeviceRequirements{
		Extensions: c.DeviceExtensions,
		Features:   c.RequiredFeatures,
	}
}
