package render

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// FindMemoryType returns the lowest memory type index allowed by typeFilter
// whose property flags include every flag in properties.
func FindMemoryType(memoryTypes []core1_0.MemoryType, typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range memoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Wrapf(ErrMemoryTypeNotFound, "filter 0x%x, properties %v", typeFilter, properties)
}

// Buffer is a GPU buffer bound to its own memory allocation.
type Buffer struct {
	driver core1_0.DeviceDriver
	buffer core1_0.Buffer
	memory core1_0.DeviceMemory
	size   int
	mapped []byte
}

func (b *Buffer) Handle() core1_0.Buffer       { return b.buffer }
func (b *Buffer) Memory() core1_0.DeviceMemory { return b.memory }
func (b *Buffer) Size() int                    { return b.size }

// Mapped returns the host view of the buffer, or nil when it is not mapped.
func (b *Buffer) Mapped() []byte { return b.mapped }

// Map maps the whole buffer. The returned slice is only valid until Unmap or
// Destroy. Only host-coherent memory is mapped by the engine, so writes need
// no explicit flush.
func (b *Buffer) Map() ([]byte, error) {
	if b.mapped != nil {
		return b.mapped, nil
	}

	memoryPtr, _, err := b.driver.MapMemory(b.memory, 0, b.size, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map buffer memory")
	}
	b.mapped = unsafe.Slice((*byte)(memoryPtr), b.size)
	return b.mapped, nil
}

func (b *Buffer) Unmap() {
	if b.mapped == nil {
		return
	}
	b.driver.UnmapMemory(b.memory)
	b.mapped = nil
}

// Write encodes data into the mapped region in the API's byte order.
func (b *Buffer) Write(data any) error {
	if b.mapped == nil {
		return errors.New("write to unmapped buffer")
	}

	size := binary.Size(data)
	if size < 0 {
		return errors.Newf("cannot encode %T", data)
	}
	if size > len(b.mapped) {
		return errors.Newf("write of %d bytes overflows buffer of %d bytes", size, len(b.mapped))
	}

	buf := &bytes.Buffer{}
	err := binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return err
	}

	copy(b.mapped, buf.Bytes())
	return nil
}

func (b *Buffer) Destroy() {
	if b == nil || b.driver == nil {
		return
	}
	b.Unmap()

	if b.buffer.Initialized() {
		b.driver.DestroyBuffer(b.buffer, nil)
		b.buffer = core1_0.Buffer{}
	}

	if b.memory.Initialized() {
		b.driver.FreeMemory(b.memory, nil)
		b.memory = core1_0.DeviceMemory{}
	}
}

// CreateBuffer creates a buffer, allocates memory with the requested
// properties and binds the two. Nothing is left allocated on failure.
func (c *DeviceContext) CreateBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (*Buffer, error) {
	if size <= 0 {
		return nil, errors.Newf("invalid buffer size %d", size)
	}

	handle, _, err := c.Driver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create buffer")
	}
	buffer := &Buffer{driver: c.Driver, buffer: handle, size: size}

	memRequirements := c.Driver.GetBufferMemoryRequirements(handle)
	memoryTypeIndex, err := FindMemoryType(c.memoryTypes, memRequirements.MemoryTypeBits, properties)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	buffer.memory, _, err = c.Driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		buffer.Destroy()
		return nil, errors.Wrap(err, "failed to allocate buffer memory")
	}

	_, err = c.Driver.BindBufferMemory(handle, buffer.memory, 0)
	if err != nil {
		buffer.Destroy()
		return nil, errors.Wrap(err, "failed to bind buffer memory")
	}

	return buffer, nil
}
