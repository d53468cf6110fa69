package render

import (
	"log/slog"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

// Unique returns the graphics family followed by the present family when
// the two differ.
func (i *QueueFamilyIndices) Unique() []int {
	families := []int{*i.GraphicsFamily}
	if *i.PresentFamily != *i.GraphicsFamily {
		families = append(families, *i.PresentFamily)
	}
	return families
}

type DeviceRequirements struct {
	Extensions []string
	Features   core1_0.PhysicalDeviceFeatures
}

// FindQueueFamilies scans the device's queue families once, keeping the
// first family with graphics support and the first family that can present
// to the surface.
func FindQueueFamilies(instance core1_0.CoreInstanceDriver, surface *Surface, device core1_0.PhysicalDevice) (QueueFamilyIndices, error) {
	indices := QueueFamilyIndices{}

	queueFamilies := instance.GetPhysicalDeviceQueueFamilyProperties(device)
	for queueFamilyIdx, queueFamily := range queueFamilies {
		if indices.GraphicsFamily == nil && (queueFamily.QueueFlags&core1_0.QueueGraphics) != 0 {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		if indices.PresentFamily == nil {
			supported, err := surface.SupportsPresent(device, queueFamilyIdx)
			if err != nil {
				return indices, err
			}

			if supported {
				indices.PresentFamily = new(int)
				*indices.PresentFamily = queueFamilyIdx
			}
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}

func checkDeviceExtensionSupport(instance core1_0.CoreInstanceDriver, device core1_0.PhysicalDevice, required []string) bool {
	extensions, _, err := instance.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return false
	}

	for _, extension := range required {
		_, hasExtension := extensions[extension]
		if !hasExtension {
			return false
		}
	}

	return true
}

// hasFeatures reports whether every feature enabled in required is also
// enabled in available.
func hasFeatures(available *core1_0.PhysicalDeviceFeatures, required core1_0.PhysicalDeviceFeatures) bool {
	if available == nil {
		return reflect.ValueOf(required).IsZero()
	}

	have := reflect.ValueOf(*available)
	want := reflect.ValueOf(required)
	for i := 0; i < want.NumField(); i++ {
		field := want.Field(i)
		if field.Kind() != reflect.Bool || !field.Bool() {
			continue
		}
		if !have.Field(i).Bool() {
			return false
		}
	}

	return true
}

func isDeviceSuitable(instance core1_0.CoreInstanceDriver, surface *Surface, device core1_0.PhysicalDevice, req DeviceRequirements) (QueueFamilyIndices, bool) {
	indices, err := FindQueueFamilies(instance, surface, device)
	if err != nil || !indices.IsComplete() {
		return indices, false
	}

	if !checkDeviceExtensionSupport(instance, device, req.Extensions) {
		return indices, false
	}

	if !hasFeatures(instance.GetPhysicalDeviceFeatures(device), req.Features) {
		return indices, false
	}

	formats, err := surface.Formats(device)
	if err != nil || len(formats) == 0 {
		return indices, false
	}

	presentModes, err := surface.PresentModes(device)
	if err != nil || len(presentModes) == 0 {
		return indices, false
	}

	return indices, true
}

// SelectDevice returns the first physical device, in enumeration order,
// that satisfies req and can present to surface.
func SelectDevice(instance core1_0.CoreInstanceDriver, surface *Surface, req DeviceRequirements) (core1_0.PhysicalDevice, QueueFamilyIndices, error) {
	physicalDevices, _, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		return core1_0.PhysicalDevice{}, QueueFamilyIndices{}, errors.Wrap(err, "failed to enumerate physical devices")
	}

	for _, device := range physicalDevices {
		indices, suitable := isDeviceSuitable(instance, surface, device, req)
		if suitable {
			return device, indices, nil
		}
	}

	return core1_0.PhysicalDevice{}, QueueFamilyIndices{}, ErrNoSuitableDevice
}

// DeviceContext bundles the selected physical device with the logical
// device created from it and its queues.
type DeviceContext struct {
	Physical      core1_0.PhysicalDevice
	Properties    *core1_0.PhysicalDeviceProperties
	Driver        core1_0.CoreDeviceDriver
	Swapchains    khr_swapchain.ExtensionDriver
	Indices       QueueFamilyIndices
	GraphicsQueue core1_0.Queue
	PresentQueue  core1_0.Queue

	memoryTypes []core1_0.MemoryType
	logger      *slog.Logger
}

// NewDeviceContext creates a logical device with one queue per unique
// family. The portability subset extension is enabled whenever the device
// offers it.
func NewDeviceContext(instance Instance, physical core1_0.PhysicalDevice, indices QueueFamilyIndices, req DeviceRequirements, logger *slog.Logger) (*DeviceContext, error) {
	if logger == nil {
		logger = slog.Default()
	}
	instanceDriver := instance.Driver()

	props, err := instanceDriver.GetPhysicalDeviceProperties(physical)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read physical device properties")
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range indices.Unique() {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	var extensionNames []string
	extensionNames = append(extensionNames, req.Extensions...)

	extensions, _, err := instanceDriver.EnumerateDeviceExtensionProperties(physical)
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate device extensions")
	}

	_, portability := extensions[khr_portability_subset.ExtensionName]
	if portability {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	features := req.Features
	device, _, err := instanceDriver.CreateDevice(physical, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &features,
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logical device")
	}

	deviceDriver, err := instanceDriver.BuildDeviceDriver(device)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load device driver")
	}

	swapchains := instance.SwapchainExtension(deviceDriver)
	if swapchains == nil {
		deviceDriver.DestroyDevice(nil)
		return nil, errors.Newf("%s is not active on the device", khr_swapchain.ExtensionName)
	}

	logger.Info("created logical device",
		slog.String("device", props.DriverName),
		slog.Int("graphicsFamily", *indices.GraphicsFamily),
		slog.Int("presentFamily", *indices.PresentFamily),
		slog.Bool("portabilitySubset", portability))

	return &DeviceContext{
		Physical:      physical,
		Properties:    props,
		Driver:        deviceDriver,
		Swapchains:    swapchains,
		Indices:       indices,
		GraphicsQueue: deviceDriver.GetQueue(*indices.GraphicsFamily, 0),
		PresentQueue:  deviceDriver.GetQueue(*indices.PresentFamily, 0),
		memoryTypes:   instanceDriver.GetPhysicalDeviceMemoryProperties(physical).MemoryTypes,
		logger:        logger,
	}, nil
}

func (c *DeviceContext) Destroy() {
	if c.Driver != nil {
		c.Driver.DestroyDevice(nil)
		c.Driver = nil
	}
}
