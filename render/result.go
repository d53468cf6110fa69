package render

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

type outcome int

const (
	outcomeContinue outcome = iota
	outcomeRecreate
	outcomeFatal
)

func (o outcome) String() string {
	switch o {
	case outcomeContinue:
		return "continue"
	case outcomeRecreate:
		return "recreate"
	default:
		return "fatal"
	}
}

// classifyAcquire maps the result of acquiring a swapchain image. A
// suboptimal image can still be presented, so only an out-of-date swapchain
// abandons the frame.
func classifyAcquire(res common.VkResult, err error) outcome {
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return outcomeRecreate
	case core1_0.VKSuccess, khr_swapchain.VKSuboptimal:
		if err != nil {
			return outcomeFatal
		}
		return outcomeContinue
	default:
		return outcomeFatal
	}
}

// classifyPresent maps the result of presenting an image. Both out-of-date
// and suboptimal ask for a rebuild.
func classifyPresent(res common.VkResult, err error) outcome {
	switch res {
	case khr_swapchain.VKErrorOutOfDate, khr_swapchain.VKSuboptimal:
		return outcomeRecreate
	case core1_0.VKSuccess:
		if err != nil {
			return outcomeFatal
		}
		return outcomeContinue
	default:
		return outcomeFatal
	}
}

// resultError produces the error returned for a fatal acquire or present.
func resultError(op string, res common.VkResult, err error) error {
	if res == core1_0.VKErrorDeviceLost {
		return errors.Wrapf(ErrDeviceLost, "%s", op)
	}
	if err != nil {
		return errors.Wrapf(err, "%s failed", op)
	}
	return errors.Newf("%s failed: %v", op, res)
}
