package render

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func (c *DeviceContext) beginSingleTimeCommands(pool core1_0.CommandPool) (core1_0.CommandBuffer, error) {
	buffers, _, err := c.Driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return core1_0.CommandBuffer{}, err
	}

	buffer := buffers[0]
	_, err = c.Driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		c.Driver.FreeCommandBuffers(buffer)
		return core1_0.CommandBuffer{}, err
	}
	return buffer, nil
}

// endSingleTimeCommands submits buffer with no synchronization primitives
// and blocks until the graphics queue is idle.
func (c *DeviceContext) endSingleTimeCommands(buffer core1_0.CommandBuffer) error {
	defer c.Driver.FreeCommandBuffers(buffer)

	_, err := c.Driver.EndCommandBuffer(buffer)
	if err != nil {
		return err
	}

	_, err = c.Driver.QueueSubmit(c.GraphicsQueue, nil, core1_0.SubmitInfo{
		CommandBuffers: []core1_0.CommandBuffer{buffer},
	})
	if err != nil {
		return err
	}

	_, err = c.Driver.QueueWaitIdle(c.GraphicsQueue)
	return err
}

func (c *DeviceContext) copyBuffer(pool core1_0.CommandPool, src, dst *Buffer, size int) error {
	buffer, err := c.beginSingleTimeCommands(pool)
	if err != nil {
		return err
	}

	err = c.Driver.CmdCopyBuffer(buffer, src.Handle(), dst.Handle(),
		core1_0.BufferCopy{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		},
	)
	if err != nil {
		c.Driver.FreeCommandBuffers(buffer)
		return err
	}

	return c.endSingleTimeCommands(buffer)
}

// UploadStaged copies payload into a new device-local buffer through a
// temporary host-visible staging buffer. It blocks until the copy has
// completed, so it is meant for initialization only.
func (c *DeviceContext) UploadStaged(pool core1_0.CommandPool, payload any, usage core1_0.BufferUsageFlags) (*Buffer, error) {
	bufferSize := binary.Size(payload)
	if bufferSize <= 0 {
		return nil, errors.Newf("cannot upload %T", payload)
	}

	stagingBuffer, err := c.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create staging buffer")
	}
	defer stagingBuffer.Destroy()

	_, err = stagingBuffer.Map()
	if err != nil {
		return nil, err
	}
	err = stagingBuffer.Write(payload)
	stagingBuffer.Unmap()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fill staging buffer")
	}

	buffer, err := c.CreateBuffer(bufferSize, core1_0.BufferUsageTransferDst|usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	err = c.copyBuffer(pool, stagingBuffer, buffer, bufferSize)
	if err != nil {
		buffer.Destroy()
		return nil, errors.Wrap(err, "failed to copy staging buffer")
	}

	c.logger.Debug("uploaded buffer", "size", bufferSize, "usage", usage)
	return buffer, nil
}
