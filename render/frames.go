package render

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// FrameSlot holds everything one in-flight frame needs. Slots are created
// once and reused round-robin; nothing in a slot depends on the swapchain.
type FrameSlot struct {
	InFlight       core1_0.Fence
	ImageAvailable core1_0.Semaphore
	RenderFinished core1_0.Semaphore
	Commands       core1_0.CommandBuffer
	Uniforms       *Buffer
	Descriptors    core1_0.DescriptorSet
}

// FrameRing is the fixed set of frame slots and the index of the slot the
// next frame will use.
type FrameRing struct {
	driver  core1_0.DeviceDriver
	slots   []FrameSlot
	current int
}

func (r *FrameRing) Current() *FrameSlot { return &r.slots[r.current] }
func (r *FrameRing) Index() int          { return r.current }
func (r *FrameRing) Len() int            { return len(r.slots) }
func (r *FrameRing) Slot(i int) *FrameSlot {
	return &r.slots[i]
}

// Advance moves to the next slot. It is called once per draw attempt,
// whether or not the attempt reached presentation.
func (r *FrameRing) Advance() {
	r.current = (r.current + 1) % len(r.slots)
}

// newFrameRing creates the per-frame sync objects, command buffers and
// persistently mapped uniform buffers, and points each descriptor set at its
// slot's uniform buffer.
func newFrameRing(ctx *DeviceContext, pool core1_0.CommandPool, descriptorPool core1_0.DescriptorPool, setLayout core1_0.DescriptorSetLayout, count int) (*FrameRing, error) {
	driver := ctx.Driver
	ring := &FrameRing{driver: driver, slots: make([]FrameSlot, count)}

	commandBuffers, _, err := driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return ring, errors.Wrap(err, "failed to allocate frame command buffers")
	}

	layouts := make([]core1_0.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = setLayout
	}
	descriptorSets, _, err := driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: descriptorPool,
		SetLayouts:     layouts,
	})
	if err != nil {
		return ring, errors.Wrap(err, "failed to allocate descriptor sets")
	}

	uniformSize := int(unsafe.Sizeof(UniformBufferObject{}))

	for i := range ring.slots {
		slot := &ring.slots[i]
		slot.Commands = commandBuffers[i]
		slot.Descriptors = descriptorSets[i]

		slot.ImageAvailable, _, err = driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return ring, errors.Wrap(err, "failed to create semaphore")
		}

		slot.RenderFinished, _, err = driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return ring, errors.Wrap(err, "failed to create semaphore")
		}

		slot.InFlight, _, err = driver.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			return ring, errors.Wrap(err, "failed to create fence")
		}

		slot.Uniforms, err = ctx.CreateBuffer(uniformSize, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err != nil {
			return ring, errors.Wrap(err, "failed to create uniform buffer")
		}

		_, err = slot.Uniforms.Map()
		if err != nil {
			return ring, err
		}

		err = driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
			{
				DstSet:          slot.Descriptors,
				DstBinding:      0,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeUniformBuffer,

				BufferInfo: []core1_0.DescriptorBufferInfo{
					{
						Buffer: slot.Uniforms.Handle(),
						Offset: 0,
						Range:  uniformSize,
					},
				},
			},
		}, nil)
		if err != nil {
			return ring, errors.Wrap(err, "failed to write uniform descriptor")
		}
	}

	return ring, nil
}

// destroySync destroys the fences and semaphores of every slot.
func (r *FrameRing) destroySync() {
	for i := range r.slots {
		slot := &r.slots[i]
		if slot.InFlight.Initialized() {
			r.driver.DestroyFence(slot.InFlight, nil)
			slot.InFlight = core1_0.Fence{}
		}
		if slot.RenderFinished.Initialized() {
			r.driver.DestroySemaphore(slot.RenderFinished, nil)
			slot.RenderFinished = core1_0.Semaphore{}
		}
		if slot.ImageAvailable.Initialized() {
			r.driver.DestroySemaphore(slot.ImageAvailable, nil)
			slot.ImageAvailable = core1_0.Semaphore{}
		}
	}
}

// destroyBuffers releases the uniform buffers. Command buffers and
// descriptor sets go away with their pools.
func (r *FrameRing) destroyBuffers() {
	for i := range r.slots {
		r.slots[i].Uniforms.Destroy()
		r.slots[i].Uniforms = nil
		r.slots[i].Commands = core1_0.CommandBuffer{}
		r.slots[i].Descriptors = core1_0.DescriptorSet{}
	}
}
