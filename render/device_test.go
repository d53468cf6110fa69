package render_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/RadicalTray/image-viewer/render"
	"github.com/RadicalTray/image-viewer/render/rendertest"
)

func defaultRequirements() render.DeviceRequirements {
	config := render.DefaultConfig()
	return render.DeviceRequirements{
		Extensions: config.DeviceExtensions,
		Features:   config.RequiredFeatures,
	}
}

func newDeviceContext(t *testing.T, gpu *rendertest.GPU) *render.DeviceContext {
	t.Helper()

	indices, err := render.FindQueueFamilies(gpu.Driver(), gpu.Surface(), gpu.Physical.Handle)
	require.NoError(t, err)

	ctx, err := render.NewDeviceContext(gpu.Instance, gpu.Physical.Handle, indices, defaultRequirements(), nil)
	require.NoError(t, err)
	return ctx
}

func queueFamilies(info core1_0.DeviceCreateInfo) []int {
	var families []int
	for _, queue := range info.QueueCreateInfos {
		families = append(families, queue.QueueFamilyIndex)
	}
	return families
}

func TestSelectDevice_NoCandidates(t *testing.T) {
	gpu := rendertest.NewGPU(t)
	gpu.Devices = nil

	_, _, err := render.SelectDevice(gpu.Driver(), gpu.Surface(), defaultRequirements())
	require.True(t, errors.Is(err, render.ErrNoSuitableDevice))
}

func TestSelectDevice_Rejections(t *testing.T) {
	testCases := map[string]func(pd *rendertest.PhysicalDevice){
		"MissingSwapchainExtension": func(pd *rendertest.PhysicalDevice) {
			pd.DeviceExtensions = nil
		},
		"MissingSamplerAnisotropy": func(pd *rendertest.PhysicalDevice) {
			pd.DeviceFeatures.SamplerAnisotropy = false
		},
		"MissingGeometryShader": func(pd *rendertest.PhysicalDevice) {
			pd.DeviceFeatures.GeometryShader = false
		},
		"NoGraphicsQueue": func(pd *rendertest.PhysicalDevice) {
			pd.Families = []core1_0.QueueFamilyProperties{{QueueFlags: core1_0.QueueTransfer, QueueCount: 1}}
		},
		"NoPresentQueue": func(pd *rendertest.PhysicalDevice) {
			pd.PresentFamilies = nil
		},
		"NoSurfaceFormats": func(pd *rendertest.PhysicalDevice) {
			pd.SurfaceFormats = nil
		},
		"NoPresentModes": func(pd *rendertest.PhysicalDevice) {
			pd.SurfacePresentModes = nil
		},
	}

	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			gpu := rendertest.NewGPU(t)
			mutate(gpu.Physical)

			_, _, err := render.SelectDevice(gpu.Driver(), gpu.Surface(), defaultRequirements())
			require.True(t, errors.Is(err, render.ErrNoSuitableDevice))
		})
	}
}

func TestSelectDevice_FirstSuitableWins(t *testing.T) {
	gpu := rendertest.NewGPU(t)
	gpu.Physical.DeviceExtensions = nil
	first := gpu.AddPhysicalDevice("first")
	gpu.AddPhysicalDevice("second")

	selected, indices, err := render.SelectDevice(gpu.Driver(), gpu.Surface(), defaultRequirements())
	require.NoError(t, err)
	require.Equal(t, first.Handle, selected)
	require.Equal(t, 0, *indices.GraphicsFamily)
	require.Equal(t, 0, *indices.PresentFamily)
}

func TestFindQueueFamilies_KeepsFirstOfEachRole(t *testing.T) {
	gpu := rendertest.NewGPU(t)
	pd := gpu.Physical
	pd.Families = []core1_0.QueueFamilyProperties{
		{QueueFlags: core1_0.QueueTransfer, QueueCount: 1},
		{QueueFlags: core1_0.QueueGraphics, QueueCount: 1},
		{QueueFlags: core1_0.QueueGraphics, QueueCount: 1},
	}
	pd.PresentFamilies = map[int]bool{0: true, 2: true}

	indices, err := render.FindQueueFamilies(gpu.Driver(), gpu.Surface(), pd.Handle)
	require.NoError(t, err)
	require.True(t, indices.IsComplete())
	require.Equal(t, 1, *indices.GraphicsFamily)
	require.Equal(t, 0, *indices.PresentFamily)
	require.Equal(t, []int{1, 0}, indices.Unique())
}

func TestNewDeviceContext_DeduplicatesQueueFamilies(t *testing.T) {
	gpu := rendertest.NewGPU(t)
	ctx := newDeviceContext(t, gpu)

	require.Len(t, gpu.CreateInfos, 1)
	info := gpu.CreateInfos[0]
	require.Equal(t, []int{0}, queueFamilies(info))
	require.True(t, info.EnabledFeatures.SamplerAnisotropy)
	require.True(t, info.EnabledFeatures.GeometryShader)
	require.NotContains(t, info.EnabledExtensionNames, khr_portability_subset.ExtensionName)
	require.Equal(t, ctx.GraphicsQueue, ctx.PresentQueue)
	require.Equal(t, "Fake GPU", ctx.Properties.DriverName)
	require.NotNil(t, ctx.Swapchains)
}

func TestNewDeviceContext_EnablesPortabilitySubset(t *testing.T) {
	gpu := rendertest.NewGPU(t)
	gpu.Physical.DeviceExtensions = append(gpu.Physical.DeviceExtensions, khr_portability_subset.ExtensionName)

	newDeviceContext(t, gpu)
	require.Contains(t, gpu.CreateInfos[0].EnabledExtensionNames, khr_portability_subset.ExtensionName)
}

func TestNewDeviceContext_SwapchainExtensionInactive(t *testing.T) {
	gpu := rendertest.NewGPU(t)
	indices, err := render.FindQueueFamilies(gpu.Driver(), gpu.Surface(), gpu.Physical.Handle)
	require.NoError(t, err)

	req := defaultRequirements()
	req.Extensions = nil

	_, err = render.NewDeviceContext(gpu.Instance, gpu.Physical.Handle, indices, req, nil)
	require.ErrorContains(t, err, "is not active on the device")
	require.True(t, gpu.Device().Destroyed)
}

func TestNewSwapchain_ConcurrentSharingAcrossFamilies(t *testing.T) {
	gpu := rendertest.NewGPU(t)
	gpu.Physical.Families = []core1_0.QueueFamilyProperties{
		{QueueFlags: core1_0.QueueGraphics, QueueCount: 1},
		{QueueFlags: core1_0.QueueTransfer, QueueCount: 1},
	}
	gpu.Physical.PresentFamilies = map[int]bool{1: true}

	ctx := newDeviceContext(t, gpu)
	require.Equal(t, []int{0, 1}, queueFamilies(gpu.CreateInfos[0]))
	require.NotEqual(t, ctx.GraphicsQueue, ctx.PresentQueue)

	config := render.DefaultConfig()
	swapchain, err := render.NewSwapchain(ctx, gpu.Surface(), gpu.Window, &config, nil)
	require.NoError(t, err)

	info := gpu.Device().SwapchainInfos[0]
	require.Equal(t, core1_0.SharingModeConcurrent, info.ImageSharingMode)
	require.Equal(t, []int{0, 1}, info.QueueFamilyIndices)
	require.Equal(t, gpu.SurfaceHandle, info.Surface)
	require.Equal(t, khr_surface.PresentModeFIFO, swapchain.PresentMode())
	require.Equal(t, core1_0.FormatB8G8R8A8SRGB, swapchain.Format().Format)
	require.Equal(t, 3, swapchain.ImageCount())

	swapchain.Destroy()
	require.Equal(t, 0, gpu.Device().Live("Swapchain"))
	require.Equal(t, 0, gpu.Device().Live("ImageView"))
}
