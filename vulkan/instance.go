// Package vulkan loads the Vulkan instance the renderer draws through, with
// an SDL2 window as the presentation target.
package vulkan

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/RadicalTray/image-viewer/render"
)

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}

var _ render.Instance = (*Instance)(nil)

type InstanceOptions struct {
	ApplicationName string
	// Validation enables the Khronos validation layer and routes its
	// messages to Logger.
	Validation bool
	Logger     *slog.Logger
}

// Instance owns the Vulkan instance, the debug messenger when validation is
// enabled, and the surface extension.
type Instance struct {
	logger *slog.Logger

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver

	debugDriver      ext_debug_utils.ExtensionDriver
	debugMessenger   ext_debug_utils.DebugUtilsMessenger
	surfaceExtension khr_surface.ExtensionDriver
}

// NewInstance creates an instance with the extensions window needs for
// presentation.
func NewInstance(window *sdl.Window, opts InstanceOptions) (*Instance, error) {
	i := &Instance{logger: opts.Logger}
	if i.logger == nil {
		i.logger = slog.Default()
	}

	var err error
	i.globalDriver, err = core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load vulkan")
	}

	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    opts.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	sdlExtensions := window.VulkanGetInstanceExtensions()
	extensions, _, err := i.globalDriver.AvailableExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate instance extensions")
	}

	for _, ext := range sdlExtensions {
		_, hasExt := extensions[ext]
		if !hasExt {
			return nil, errors.Newf("missing instance extension %s required by the window", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if opts.Validation {
		layers, _, err := i.globalDriver.AvailableLayers()
		if err != nil {
			return nil, errors.Wrap(err, "failed to enumerate instance layers")
		}

		for _, layer := range validationLayers {
			_, hasValidation := layers[layer]
			if !hasValidation {
				return nil, errors.Newf("validation layer %s not available, install the LunarG Vulkan SDK", layer)
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
		instanceOptions.Next = i.debugMessengerOptions()
	}

	instance, _, err := i.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create instance")
	}

	i.instanceDriver, err = i.globalDriver.BuildInstanceDriver(instance)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load instance commands")
	}

	if opts.Validation {
		i.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(i.instanceDriver)
		i.debugMessenger, _, err = i.debugDriver.CreateDebugUtilsMessenger(nil, i.debugMessengerOptions())
		if err != nil {
			i.Destroy()
			return nil, errors.Wrap(err, "failed to create debug messenger")
		}
	}

	i.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(i.instanceDriver)
	return i, nil
}

func (i *Instance) debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityInfo,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    i.logDebug,
	}
}

func (i *Instance) logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	level := slog.LevelDebug
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		level = slog.LevelError
	case severity&ext_debug_utils.SeverityWarning != 0:
		level = slog.LevelWarn
	case severity&ext_debug_utils.SeverityInfo != 0:
		level = slog.LevelInfo
	}

	i.logger.Log(context.Background(), level, data.Message,
		slog.Any("type", msgType),
		slog.String("id", data.MessageIDName))
	return false
}

// CreateSurface creates a presentation surface for window.
func (i *Instance) CreateSurface(window *sdl.Window) (khr_surface.Surface, error) {
	surface, err := vkng_sdl2.CreateSurface(i.instanceDriver.Instance(), i.surfaceExtension, window)
	if err != nil {
		return khr_surface.Surface{}, errors.Wrap(err, "failed to create window surface")
	}
	return surface, nil
}

func (i *Instance) Driver() core1_0.CoreInstanceDriver {
	return i.instanceDriver
}

func (i *Instance) SurfaceExtension() khr_surface.ExtensionDriver {
	return i.surfaceExtension
}

func (i *Instance) SwapchainExtension(device core1_0.CoreDeviceDriver) khr_swapchain.ExtensionDriver {
	return khr_swapchain.CreateExtensionDriverFromCoreDriver(device)
}

func (i *Instance) Destroy() {
	if i.debugMessenger.Initialized() {
		i.debugDriver.DestroyDebugUtilsMessenger(i.debugMessenger, nil)
		i.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if i.instanceDriver != nil {
		i.instanceDriver.DestroyInstance(nil)
		i.instanceDriver = nil
	}
}

// Window reports the drawable size of an SDL window, which can differ from
// its size in screen coordinates on high-DPI displays.
type Window struct {
	*sdl.Window
}

func (w Window) DrawableSize() (int, int) {
	width, height := w.VulkanGetDrawableSize()
	return int(width), int(height)
}
