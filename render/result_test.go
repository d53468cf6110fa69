package render

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

func TestClassifyResults(t *testing.T) {
	failure := errors.New("driver failure")

	testCases := map[string]struct {
		res     common.VkResult
		err     error
		acquire outcome
		present outcome
	}{
		"Success": {
			res:     core1_0.VKSuccess,
			acquire: outcomeContinue,
			present: outcomeContinue,
		},
		"Suboptimal": {
			res:     khr_swapchain.VKSuboptimal,
			acquire: outcomeContinue,
			present: outcomeRecreate,
		},
		"OutOfDate": {
			res:     khr_swapchain.VKErrorOutOfDate,
			err:     failure,
			acquire: outcomeRecreate,
			present: outcomeRecreate,
		},
		"DeviceLost": {
			res:     core1_0.VKErrorDeviceLost,
			err:     failure,
			acquire: outcomeFatal,
			present: outcomeFatal,
		},
		"SuccessWithError": {
			res:     core1_0.VKSuccess,
			err:     failure,
			acquire: outcomeFatal,
			present: outcomeFatal,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.acquire, classifyAcquire(tc.res, tc.err), "acquire: %s", classifyAcquire(tc.res, tc.err))
			require.Equal(t, tc.present, classifyPresent(tc.res, tc.err), "present: %s", classifyPresent(tc.res, tc.err))
		})
	}
}

func TestResultError(t *testing.T) {
	err := resultError("present", core1_0.VKErrorDeviceLost, errors.New("lost"))
	require.True(t, errors.Is(err, ErrDeviceLost))

	cause := errors.New("unknown failure")
	err = resultError("acquire next image", core1_0.VKErrorUnknown, cause)
	require.True(t, errors.Is(err, cause))
	require.False(t, errors.Is(err, ErrDeviceLost))
}
