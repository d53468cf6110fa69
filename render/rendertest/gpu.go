package rendertest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/loader"
	"github.com/vkngwrapper/core/v3/mocks"
	"github.com/vkngwrapper/core/v3/mocks/mocks1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	mock_surface "github.com/vkngwrapper/extensions/v3/khr_surface/mocks"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"go.uber.org/mock/gomock"

	"github.com/RadicalTray/image-viewer/render"
)

// CacheUUID is the pipeline cache UUID every fake physical device reports.
var CacheUUID = uuid.MustParse("6f1c1b8e-2a61-4d7e-9c3b-5b0d7a6e4f21")

// ShaderCode is the smallest bytecode the pipeline accepts: the SPIR-V magic
// number and a version word.
var ShaderCode = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}

// PhysicalDevice describes what one fake GPU reports through the instance
// driver and the surface extension. Tests mutate the fields before the
// renderer queries them.
type PhysicalDevice struct {
	Handle core1_0.PhysicalDevice
	Props  core1_0.PhysicalDeviceProperties

	Families        []core1_0.QueueFamilyProperties
	PresentFamilies map[int]bool

	DeviceExtensions []string
	DeviceFeatures   core1_0.PhysicalDeviceFeatures
	Memory           []core1_0.MemoryType

	SurfaceCaps         khr_surface.SurfaceCapabilities
	SurfaceFormats      []khr_surface.SurfaceFormat
	SurfacePresentModes []khr_surface.PresentMode
}

// Window is a resizable stand-in for the SDL window.
type Window struct {
	Width, Height int
}

func (w *Window) DrawableSize() (int, int) {
	return w.Width, w.Height
}

// GPU is a Vulkan instance with a window surface and any number of physical
// devices, built on gomock doubles of the instance driver and the surface
// extension. At most one logical device is created from it.
type GPU struct {
	Journal  *Journal
	Instance *Instance
	Window   *Window

	// Physical is the device NewGPU adds. Devices lists every device in
	// enumeration order.
	Physical *PhysicalDevice
	Devices  []*PhysicalDevice

	SurfaceHandle khr_surface.Surface
	CreateInfos   []core1_0.DeviceCreateInfo

	t                *testing.T
	ctrl             *gomock.Controller
	instance         core1_0.Instance
	instanceDriver   *mocks1_0.MockCoreInstanceDriver
	surfaceExtension *MockSurfaceExtension
	selected         *PhysicalDevice
	device           *Device
}

func NewGPU(t *testing.T) *GPU {
	t.Helper()

	ctrl := gomock.NewController(t)
	instance := mocks.NewDummyInstance(common.Vulkan1_0, []string{khr_surface.ExtensionName})

	g := &GPU{
		Journal:          &Journal{},
		Window:           &Window{Width: 800, Height: 600},
		SurfaceHandle:    mock_surface.NewDummySurface(instance),
		t:                t,
		ctrl:             ctrl,
		instance:         instance,
		instanceDriver:   mocks1_0.NewMockCoreInstanceDriver(ctrl),
		surfaceExtension: NewMockSurfaceExtension(ctrl),
	}
	g.Instance = &Instance{gpu: g}
	g.Physical = g.AddPhysicalDevice("Fake GPU")

	g.expectInstance()
	g.expectSurface()
	return g
}

// AddPhysicalDevice appends a device with the default capabilities to the
// enumeration order.
func (g *GPU) AddPhysicalDevice(name string) *PhysicalDevice {
	pd := &PhysicalDevice{
		Handle: mocks.NewDummyPhysicalDevice(g.instance, common.Vulkan1_0),
		Props: core1_0.PhysicalDeviceProperties{
			APIVersion:        common.Vulkan1_0,
			DriverName:        name,
			VendorID:          0x10de,
			DeviceID:          0x2204,
			DriverType:        core1_0.PhysicalDeviceTypeDiscreteGPU,
			PipelineCacheUUID: CacheUUID,
		},
		Families: []core1_0.QueueFamilyProperties{
			{QueueFlags: core1_0.QueueGraphics | core1_0.QueueTransfer, QueueCount: 1},
		},
		PresentFamilies:  map[int]bool{0: true},
		DeviceExtensions: []string{khr_swapchain.ExtensionName},
		DeviceFeatures: core1_0.PhysicalDeviceFeatures{
			SamplerAnisotropy: true,
			GeometryShader:    true,
		},
		Memory: []core1_0.MemoryType{
			{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
			{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
		},
		SurfaceCaps: khr_surface.SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    8,
			CurrentExtent:    core1_0.Extent2D{Width: 800, Height: 600},
			MinImageExtent:   core1_0.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   core1_0.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform: khr_surface.TransformIdentity,
		},
		SurfaceFormats: []khr_surface.SurfaceFormat{
			{Format: core1_0.FormatR8G8B8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
			{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		},
		SurfacePresentModes: []khr_surface.PresentMode{khr_surface.PresentModeMailbox, khr_surface.PresentModeFIFO},
	}
	g.Devices = append(g.Devices, pd)
	return pd
}

// Device returns the logical device, or nil before one is created.
func (g *GPU) Device() *Device {
	return g.device
}

// Driver returns the instance driver double.
func (g *GPU) Driver() core1_0.CoreInstanceDriver {
	return g.instanceDriver
}

func (g *GPU) Surface() *render.Surface {
	return &render.Surface{Extension: g.surfaceExtension, Handle: g.SurfaceHandle}
}

// Options returns renderer options wired to this GPU, with valid shaders and
// the default configuration.
func (g *GPU) Options() render.Options {
	return render.Options{
		Instance:       g.Instance,
		Surface:        g.SurfaceHandle,
		Window:         g.Window,
		Config:         render.DefaultConfig(),
		VertexShader:   ShaderCode,
		FragmentShader: ShaderCode,
	}
}

func (g *GPU) physical(handle core1_0.PhysicalDevice) *PhysicalDevice {
	for _, pd := range g.Devices {
		if pd.Handle == handle {
			return pd
		}
	}
	g.t.Fatalf("unknown physical device %v", handle.Handle())
	return nil
}

func (g *GPU) expectInstance() {
	d := g.instanceDriver.EXPECT()

	d.Instance().Return(g.instance).AnyTimes()

	d.EnumeratePhysicalDevices().DoAndReturn(
		func() ([]core1_0.PhysicalDevice, common.VkResult, error) {
			var handles []core1_0.PhysicalDevice
			for _, pd := range g.Devices {
				handles = append(handles, pd.Handle)
			}
			return handles, core1_0.VKSuccess, nil
		}).AnyTimes()

	d.GetPhysicalDeviceProperties(gomock.Any()).DoAndReturn(
		func(handle core1_0.PhysicalDevice) (*core1_0.PhysicalDeviceProperties, error) {
			props := g.physical(handle).Props
			return &props, nil
		}).AnyTimes()

	d.GetPhysicalDeviceQueueFamilyProperties(gomock.Any()).DoAndReturn(
		func(handle core1_0.PhysicalDevice) []*core1_0.QueueFamilyProperties {
			var families []*core1_0.QueueFamilyProperties
			for _, family := range g.physical(handle).Families {
				families = append(families, &family)
			}
			return families
		}).AnyTimes()

	d.EnumerateDeviceExtensionProperties(gomock.Any()).DoAndReturn(
		func(handle core1_0.PhysicalDevice) (map[string]*core1_0.ExtensionProperties, common.VkResult, error) {
			extensions := make(map[string]*core1_0.ExtensionProperties)
			for _, name := range g.physical(handle).DeviceExtensions {
				extensions[name] = &core1_0.ExtensionProperties{ExtensionName: name, SpecVersion: 1}
			}
			return extensions, core1_0.VKSuccess, nil
		}).AnyTimes()

	d.GetPhysicalDeviceFeatures(gomock.Any()).DoAndReturn(
		func(handle core1_0.PhysicalDevice) *core1_0.PhysicalDeviceFeatures {
			features := g.physical(handle).DeviceFeatures
			return &features
		}).AnyTimes()

	d.GetPhysicalDeviceMemoryProperties(gomock.Any()).DoAndReturn(
		func(handle core1_0.PhysicalDevice) *core1_0.PhysicalDeviceMemoryProperties {
			return &core1_0.PhysicalDeviceMemoryProperties{
				MemoryTypes: append([]core1_0.MemoryType(nil), g.physical(handle).Memory...),
				MemoryHeaps: []core1_0.MemoryHeap{{Size: 1 << 30}},
			}
		}).AnyTimes()

	d.CreateDevice(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(handle core1_0.PhysicalDevice, _ *loader.AllocationCallbacks, info core1_0.DeviceCreateInfo) (core1_0.Device, common.VkResult, error) {
			g.Journal.Record("create:Device")
			g.CreateInfos = append(g.CreateInfos, info)
			g.selected = g.physical(handle)
			return mocks.NewDummyDevice(common.Vulkan1_0, info.EnabledExtensionNames), core1_0.VKSuccess, nil
		}).AnyTimes()

	d.BuildDeviceDriver(gomock.Any()).DoAndReturn(
		func(device core1_0.Device) (core1_0.CoreDeviceDriver, error) {
			g.device = newDevice(g, device, g.selected)
			return g.device.driver, nil
		}).AnyTimes()

	d.DestroyInstance(gomock.Any()).Do(
		func(_ *loader.AllocationCallbacks) {
			g.Journal.Record("destroy:Instance")
		}).AnyTimes()
}

func (g *GPU) expectSurface() {
	s := g.surfaceExtension.EXPECT()

	s.GetPhysicalDeviceSurfaceSupport(g.SurfaceHandle, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ khr_surface.Surface, handle core1_0.PhysicalDevice, family int) (bool, common.VkResult, error) {
			return g.physical(handle).PresentFamilies[family], core1_0.VKSuccess, nil
		}).AnyTimes()

	s.GetPhysicalDeviceSurfaceCapabilities(g.SurfaceHandle, gomock.Any()).DoAndReturn(
		func(_ khr_surface.Surface, handle core1_0.PhysicalDevice) (*khr_surface.SurfaceCapabilities, common.VkResult, error) {
			caps := g.physical(handle).SurfaceCaps
			return &caps, core1_0.VKSuccess, nil
		}).AnyTimes()

	s.GetPhysicalDeviceSurfaceFormats(g.SurfaceHandle, gomock.Any()).DoAndReturn(
		func(_ khr_surface.Surface, handle core1_0.PhysicalDevice) ([]khr_surface.SurfaceFormat, common.VkResult, error) {
			return append([]khr_surface.SurfaceFormat(nil), g.physical(handle).SurfaceFormats...), core1_0.VKSuccess, nil
		}).AnyTimes()

	s.GetPhysicalDeviceSurfacePresentModes(g.SurfaceHandle, gomock.Any()).DoAndReturn(
		func(_ khr_surface.Surface, handle core1_0.PhysicalDevice) ([]khr_surface.PresentMode, common.VkResult, error) {
			return append([]khr_surface.PresentMode(nil), g.physical(handle).SurfacePresentModes...), core1_0.VKSuccess, nil
		}).AnyTimes()

	s.DestroySurface(g.SurfaceHandle, gomock.Any()).Do(
		func(_ khr_surface.Surface, _ *loader.AllocationCallbacks) {
			g.Journal.Record("destroy:Surface")
		}).AnyTimes()
}

// Instance implements render.Instance on top of the GPU's doubles.
type Instance struct {
	gpu *GPU
}

var _ render.Instance = (*Instance)(nil)

func (i *Instance) Driver() core1_0.CoreInstanceDriver {
	return i.gpu.instanceDriver
}

func (i *Instance) SurfaceExtension() khr_surface.ExtensionDriver {
	return i.gpu.surfaceExtension
}

// SwapchainExtension returns the swapchain double when the device was
// created with the swapchain extension enabled, and nil otherwise.
func (i *Instance) SwapchainExtension(device core1_0.CoreDeviceDriver) khr_swapchain.ExtensionDriver {
	d := i.gpu.device
	if d == nil || device != d.driver || !d.handle.IsDeviceExtensionActive(khr_swapchain.ExtensionName) {
		return nil
	}
	return d.swapchains
}

func (i *Instance) Destroy() {
	i.gpu.instanceDriver.DestroyInstance(nil)
}
