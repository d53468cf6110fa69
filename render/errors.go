package render

import "github.com/cockroachdb/errors"

var (
	// ErrNoSuitableDevice is returned when no enumerated GPU satisfies the
	// device requirements.
	ErrNoSuitableDevice = errors.New("failed to find a suitable GPU")

	// ErrMemoryTypeNotFound is returned when no memory type matches both the
	// resource's type filter and the requested property flags.
	ErrMemoryTypeNotFound = errors.New("failed to find any suitable memory type")

	// ErrDeviceLost is returned when a frame's fence is not signaled within
	// the configured timeout, or the driver reports the device as lost.
	ErrDeviceLost = errors.New("device lost")

	ErrInvalidPipelineCache = errors.New("invalid pipeline cache data")
	ErrRendererClosed       = errors.New("renderer has been shut down")
)
