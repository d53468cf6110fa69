package render

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// PipelineCacheHeader is the version header every pipeline cache blob
// starts with:
//
//	offset  size  field
//	     0     4  header length in bytes
//	     4     4  header version
//	     8     4  vendor ID
//	    12     4  device ID
//	    16    16  pipeline cache UUID
type PipelineCacheHeader struct {
	Length   uint32
	Version  uint32
	VendorID uint32
	DeviceID uint32
	UUID     uuid.UUID
}

const pipelineCacheHeaderSize = 32

func ParsePipelineCacheHeader(data []byte) (PipelineCacheHeader, error) {
	var header PipelineCacheHeader
	if len(data) < pipelineCacheHeaderSize {
		return header, errors.Wrapf(ErrInvalidPipelineCache, "%d bytes is shorter than the header", len(data))
	}

	err := binary.Read(bytes.NewReader(data), common.ByteOrder, &header)
	if err != nil {
		return header, errors.Wrap(ErrInvalidPipelineCache, err.Error())
	}
	return header, nil
}

// Validate checks that the cache was produced by the same driver and device
// as props describes.
func (h PipelineCacheHeader) Validate(props *core1_0.PhysicalDeviceProperties) error {
	if h.Length < pipelineCacheHeaderSize {
		return errors.Wrapf(ErrInvalidPipelineCache, "bad header length 0x%x", h.Length)
	}
	if core1_0.PipelineCacheHeaderVersion(h.Version) != core1_0.PipelineCacheHeaderVersionOne {
		return errors.Wrapf(ErrInvalidPipelineCache, "unsupported header version 0x%x", h.Version)
	}
	if h.VendorID != props.VendorID {
		return errors.Wrapf(ErrInvalidPipelineCache, "vendor ID mismatch: cache 0x%x, driver 0x%x", h.VendorID, props.VendorID)
	}
	if h.DeviceID != props.DeviceID {
		return errors.Wrapf(ErrInvalidPipelineCache, "device ID mismatch: cache 0x%x, driver 0x%x", h.DeviceID, props.DeviceID)
	}
	if h.UUID != props.PipelineCacheUUID {
		return errors.Wrapf(ErrInvalidPipelineCache, "UUID mismatch: cache %s, driver %s", h.UUID, props.PipelineCacheUUID)
	}
	return nil
}

// validPipelineCacheData returns data if its header matches props. Data that
// does not match is discarded, and the file it came from is removed so the
// next run repopulates it.
func validPipelineCacheData(data []byte, props *core1_0.PhysicalDeviceProperties, path string, logger *slog.Logger) []byte {
	if len(data) == 0 {
		return nil
	}

	header, err := ParsePipelineCacheHeader(data)
	if err == nil {
		err = header.Validate(props)
	}
	if err == nil {
		logger.Debug("pipeline cache hit", slog.Int("bytes", len(data)))
		return data
	}

	logger.Warn("discarding pipeline cache", slog.String("reason", err.Error()))
	if path != "" {
		_ = os.Remove(path)
	}
	return nil
}

func savePipelineCache(driver core1_0.DeviceDriver, cache core1_0.PipelineCache, path string) error {
	data, _, err := driver.GetPipelineCacheData(cache)
	if err != nil {
		return errors.Wrap(err, "failed to read pipeline cache data")
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to write pipeline cache")
	}
	return nil
}
