package render

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/mocks"
	"github.com/vkngwrapper/core/v3/mocks/mocks1_0"
	"go.uber.org/mock/gomock"
)

func TestBytesToBytecode(t *testing.T) {
	code := bytesToBytecode([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	require.Equal(t, []uint32{0x07230203, 0x00010000}, code)
}

func TestCreateShaderModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks1_0.NewMockCoreDeviceDriver(ctrl)
	device := mocks.NewDummyDevice(common.Vulkan1_0, []string{})
	expected := mocks.NewDummyShaderModule(device)

	driver.EXPECT().CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: []uint32{0x07230203, 0x00010000},
	}).Return(expected, core1_0.VKSuccess, nil)

	module, err := createShaderModule(driver, []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	require.Equal(t, expected, module)
}

func TestCreateShaderModule_RejectsTruncatedBytecode(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mocks1_0.NewMockCoreDeviceDriver(ctrl)

	_, err := createShaderModule(driver, []byte{0x03, 0x02, 0x23})
	require.ErrorContains(t, err, "not a multiple of 4")

	_, err = createShaderModule(driver, nil)
	require.Error(t, err)
}
