package rendertest

import (
	reflect "reflect"
	time "time"

	common "github.com/vkngwrapper/core/v3/common"
	core1_0 "github.com/vkngwrapper/core/v3/core1_0"
	loader "github.com/vkngwrapper/core/v3/loader"
	khr_surface "github.com/vkngwrapper/extensions/v3/khr_surface"
	khr_surface_loader "github.com/vkngwrapper/extensions/v3/khr_surface/loader"
	khr_swapchain "github.com/vkngwrapper/extensions/v3/khr_swapchain"
	khr_swapchain_driver "github.com/vkngwrapper/extensions/v3/khr_swapchain/loader"
	gomock "go.uber.org/mock/gomock"
)

// The extensions module only ships mocks of the raw loaders, which speak C
// structs. These mock the ExtensionDriver interfaces the renderer calls, in
// the layout mockgen produces.

// MockSurfaceExtension is a mock of khr_surface.ExtensionDriver.
type MockSurfaceExtension struct {
	ctrl     *gomock.Controller
	recorder *MockSurfaceExtensionMockRecorder
	isgomock struct{}
}

// MockSurfaceExtensionMockRecorder is the mock recorder for MockSurfaceExtension.
type MockSurfaceExtensionMockRecorder struct {
	mock *MockSurfaceExtension
}

// NewMockSurfaceExtension creates a new mock instance.
func NewMockSurfaceExtension(ctrl *gomock.Controller) *MockSurfaceExtension {
	mock := &MockSurfaceExtension{ctrl: ctrl}
	mock.recorder = &MockSurfaceExtensionMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSurfaceExtension) EXPECT() *MockSurfaceExtensionMockRecorder {
	return m.recorder
}

// CreateSurfaceFromHandle mocks base method.
func (m *MockSurfaceExtension) CreateSurfaceFromHandle(surfaceHandle khr_surface_loader.VkSurfaceKHR) (khr_surface.Surface, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateSurfaceFromHandle", surfaceHandle)
	ret0, _ := ret[0].(khr_surface.Surface)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CreateSurfaceFromHandle indicates an expected call of CreateSurfaceFromHandle.
func (mr *MockSurfaceExtensionMockRecorder) CreateSurfaceFromHandle(surfaceHandle any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateSurfaceFromHandle", reflect.TypeOf((*MockSurfaceExtension)(nil).CreateSurfaceFromHandle), surfaceHandle)
}

// DestroySurface mocks base method.
func (m *MockSurfaceExtension) DestroySurface(surface khr_surface.Surface, callbacks *loader.AllocationCallbacks) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "DestroySurface", surface, callbacks)
}

// DestroySurface indicates an expected call of DestroySurface.
func (mr *MockSurfaceExtensionMockRecorder) DestroySurface(surface, callbacks any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DestroySurface", reflect.TypeOf((*MockSurfaceExtension)(nil).DestroySurface), surface, callbacks)
}

// GetPhysicalDeviceSurfaceCapabilities mocks base method.
func (m *MockSurfaceExtension) GetPhysicalDeviceSurfaceCapabilities(surface khr_surface.Surface, device core1_0.PhysicalDevice) (*khr_surface.SurfaceCapabilities, common.VkResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetPhysicalDeviceSurfaceCapabilities", surface, device)
	ret0, _ := ret[0].(*khr_surface.SurfaceCapabilities)
	ret1, _ := ret[1].(common.VkResult)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// GetPhysicalDeviceSurfaceCapabilities indicates an expected call of GetPhysicalDeviceSurfaceCapabilities.
func (mr *MockSurfaceExtensionMockRecorder) GetPhysicalDeviceSurfaceCapabilities(surface, device any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetPhysicalDeviceSurfaceCapabilities", reflect.TypeOf((*MockSurfaceExtension)(nil).GetPhysicalDeviceSurfaceCapabilities), surface, device)
}

// GetPhysicalDeviceSurfaceFormats mocks base method.
func (m *MockSurfaceExtension) GetPhysicalDeviceSurfaceFormats(surface khr_surface.Surface, device core1_0.PhysicalDevice) ([]khr_surface.SurfaceFormat, common.VkResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetPhysicalDeviceSurfaceFormats", surface, device)
	ret0, _ := ret[0].([]khr_surface.SurfaceFormat)
	ret1, _ := ret[1].(common.VkResult)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// GetPhysicalDeviceSurfaceFormats indicates an expected call of GetPhysicalDeviceSurfaceFormats.
func (mr *MockSurfaceExtensionMockRecorder) GetPhysicalDeviceSurfaceFormats(surface, device any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetPhysicalDeviceSurfaceFormats", reflect.TypeOf((*MockSurfaceExtension)(nil).GetPhysicalDeviceSurfaceFormats), surface, device)
}

// GetPhysicalDeviceSurfacePresentModes mocks base method.
func (m *MockSurfaceExtension) GetPhysicalDeviceSurfacePresentModes(surface khr_surface.Surface, device core1_0.PhysicalDevice) ([]khr_surface.PresentMode, common.VkResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetPhysicalDeviceSurfacePresentModes", surface, device)
	ret0, _ := ret[0].([]khr_surface.PresentMode)
	ret1, _ := ret[1].(common.VkResult)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// GetPhysicalDeviceSurfacePresentModes indicates an expected call of GetPhysicalDeviceSurfacePresentModes.
func (mr *MockSurfaceExtensionMockRecorder) GetPhysicalDeviceSurfacePresentModes(surface, device any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetPhysicalDeviceSurfacePresentModes", reflect.TypeOf((*MockSurfaceExtension)(nil).GetPhysicalDeviceSurfacePresentModes), surface, device)
}

// GetPhysicalDeviceSurfaceSupport mocks base method.
func (m *MockSurfaceExtension) GetPhysicalDeviceSurfaceSupport(surface khr_surface.Surface, physicalDevice core1_0.PhysicalDevice, queueFamilyIndex int) (bool, common.VkResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetPhysicalDeviceSurfaceSupport", surface, physicalDevice, queueFamilyIndex)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(common.VkResult)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// GetPhysicalDeviceSurfaceSupport indicates an expected call of GetPhysicalDeviceSurfaceSupport.
func (mr *MockSurfaceExtensionMockRecorder) GetPhysicalDeviceSurfaceSupport(surface, physicalDevice, queueFamilyIndex any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetPhysicalDeviceSurfaceSupport", reflect.TypeOf((*MockSurfaceExtension)(nil).GetPhysicalDeviceSurfaceSupport), surface, physicalDevice, queueFamilyIndex)
}

// MockSwapchainExtension is a mock of khr_swapchain.ExtensionDriver.
type MockSwapchainExtension struct {
	ctrl     *gomock.Controller
	recorder *MockSwapchainExtensionMockRecorder
	isgomock struct{}
}

// MockSwapchainExtensionMockRecorder is the mock recorder for MockSwapchainExtension.
type MockSwapchainExtensionMockRecorder struct {
	mock *MockSwapchainExtension
}

// NewMockSwapchainExtension creates a new mock instance.
func NewMockSwapchainExtension(ctrl *gomock.Controller) *MockSwapchainExtension {
	mock := &MockSwapchainExtension{ctrl: ctrl}
	mock.recorder = &MockSwapchainExtensionMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSwapchainExtension) EXPECT() *MockSwapchainExtensionMockRecorder {
	return m.recorder
}

// APIVersion mocks base method.
func (m *MockSwapchainExtension) APIVersion() common.APIVersion {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "APIVersion")
	ret0, _ := ret[0].(common.APIVersion)
	return ret0
}

// APIVersion indicates an expected call of APIVersion.
func (mr *MockSwapchainExtensionMockRecorder) APIVersion() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "APIVersion", reflect.TypeOf((*MockSwapchainExtension)(nil).APIVersion))
}

// AcquireNextImage mocks base method.
func (m *MockSwapchainExtension) AcquireNextImage(swapchain khr_swapchain.Swapchain, timeout time.Duration, semaphore *core1_0.Semaphore, fence *core1_0.Fence) (int, common.VkResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AcquireNextImage", swapchain, timeout, semaphore, fence)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(common.VkResult)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// AcquireNextImage indicates an expected call of AcquireNextImage.
func (mr *MockSwapchainExtensionMockRecorder) AcquireNextImage(swapchain, timeout, semaphore, fence any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AcquireNextImage", reflect.TypeOf((*MockSwapchainExtension)(nil).AcquireNextImage), swapchain, timeout, semaphore, fence)
}

// CreateSwapchain mocks base method.
func (m *MockSwapchainExtension) CreateSwapchain(allocation *loader.AllocationCallbacks, options khr_swapchain.SwapchainCreateInfo) (khr_swapchain.Swapchain, common.VkResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateSwapchain", allocation, options)
	ret0, _ := ret[0].(khr_swapchain.Swapchain)
	ret1, _ := ret[1].(common.VkResult)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// CreateSwapchain indicates an expected call of CreateSwapchain.
func (mr *MockSwapchainExtensionMockRecorder) CreateSwapchain(allocation, options any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateSwapchain", reflect.TypeOf((*MockSwapchainExtension)(nil).CreateSwapchain), allocation, options)
}

// DestroySwapchain mocks base method.
func (m *MockSwapchainExtension) DestroySwapchain(swapchain khr_swapchain.Swapchain, callbacks *loader.AllocationCallbacks) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "DestroySwapchain", swapchain, callbacks)
}

// DestroySwapchain indicates an expected call of DestroySwapchain.
func (mr *MockSwapchainExtensionMockRecorder) DestroySwapchain(swapchain, callbacks any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DestroySwapchain", reflect.TypeOf((*MockSwapchainExtension)(nil).DestroySwapchain), swapchain, callbacks)
}

// Device mocks base method.
func (m *MockSwapchainExtension) Device() core1_0.Device {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Device")
	ret0, _ := ret[0].(core1_0.Device)
	return ret0
}

// Device indicates an expected call of Device.
func (mr *MockSwapchainExtensionMockRecorder) Device() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Device", reflect.TypeOf((*MockSwapchainExtension)(nil).Device))
}

// GetSwapchainImages mocks base method.
func (m *MockSwapchainExtension) GetSwapchainImages(swapchain khr_swapchain.Swapchain) ([]core1_0.Image, common.VkResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetSwapchainImages", swapchain)
	ret0, _ := ret[0].([]core1_0.Image)
	ret1, _ := ret[1].(common.VkResult)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// GetSwapchainImages indicates an expected call of GetSwapchainImages.
func (mr *MockSwapchainExtensionMockRecorder) GetSwapchainImages(swapchain any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetSwapchainImages", reflect.TypeOf((*MockSwapchainExtension)(nil).GetSwapchainImages), swapchain)
}

// Loader mocks base method.
func (m *MockSwapchainExtension) Loader() khr_swapchain_driver.Loader {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Loader")
	ret0, _ := ret[0].(khr_swapchain_driver.Loader)
	return ret0
}

// Loader indicates an expected call of Loader.
func (mr *MockSwapchainExtensionMockRecorder) Loader() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Loader", reflect.TypeOf((*MockSwapchainExtension)(nil).Loader))
}

// QueuePresent mocks base method.
func (m *MockSwapchainExtension) QueuePresent(queue core1_0.Queue, o khr_swapchain.PresentInfo) (common.VkResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "QueuePresent", queue, o)
	ret0, _ := ret[0].(common.VkResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// QueuePresent indicates an expected call of QueuePresent.
func (mr *MockSwapchainExtensionMockRecorder) QueuePresent(queue, o any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "QueuePresent", reflect.TypeOf((*MockSwapchainExtension)(nil).QueuePresent), queue, o)
}

var (
	_ khr_surface.ExtensionDriver   = (*MockSurfaceExtension)(nil)
	_ khr_swapchain.ExtensionDriver = (*MockSwapchainExtension)(nil)
)
