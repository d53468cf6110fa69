package rendertest

import (
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/loader"
	"github.com/vkngwrapper/core/v3/mocks"
	"github.com/vkngwrapper/core/v3/mocks/mocks1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"go.uber.org/mock/gomock"
)

// Op is one command recorded into a command buffer. Only the fields that
// matter for Name are set.
type Op struct {
	Name string

	RenderPass  core1_0.RenderPass
	Framebuffer core1_0.Framebuffer
	Extent      core1_0.Extent2D
	ClearColor  [4]float32

	Pipeline core1_0.Pipeline
	Layout   core1_0.PipelineLayout
	Set      core1_0.DescriptorSet

	Src, Dst  core1_0.Buffer
	Size      int
	IndexType core1_0.IndexType

	Viewport   core1_0.Viewport
	Scissor    core1_0.Rect2D
	IndexCount int
}

// Submission is one SubmitInfo passed to QueueSubmit with the fence it
// signals.
type Submission struct {
	Fence core1_0.Fence
	core1_0.SubmitInfo
}

// PipelineCreation is one graphics pipeline create call.
type PipelineCreation struct {
	Cache core1_0.PipelineCache
	Info  core1_0.GraphicsPipelineCreateInfo
}

type allocation struct {
	typeIndex int
	data      []byte
	mapped    bool
}

type bufferState struct {
	size   int
	usage  core1_0.BufferUsageFlags
	memory core1_0.DeviceMemory
	bound  bool
}

type commandBufferState struct {
	pool      core1_0.CommandPool
	recording bool
	ops       []Op
}

type swapchainState struct {
	info   khr_swapchain.SwapchainCreateInfo
	images []core1_0.Image
	next   int
}

// Device is a logical device created from a GPU. Its driver and swapchain
// extension are gomock doubles whose calls run against in-memory state.
type Device struct {
	// MemoryTypeBits is reported in every buffer's memory requirements.
	MemoryTypeBits uint32

	// AcquireResults and PresentResults are consumed one per call. Once
	// empty, calls succeed.
	AcquireResults []common.VkResult
	PresentResults []common.VkResult

	// HangFences leaves submitted fences unsignaled, so the next wait on
	// them times out.
	HangFences bool

	// CacheData is what GetPipelineCacheData returns.
	CacheData []byte

	Submits            []Submission
	Presents           []khr_swapchain.PresentInfo
	SwapchainInfos     []khr_swapchain.SwapchainCreateInfo
	CacheInitialData   [][]byte
	Pipelines          []PipelineCreation
	CommandPoolFlags   []core1_0.CommandPoolCreateFlags
	WaitIdleCalls      int
	QueueWaitIdleCalls int
	Destroyed          bool

	gpu        *GPU
	handle     core1_0.Device
	physical   *PhysicalDevice
	driver     *mocks1_0.MockCoreDeviceDriver
	swapchains *MockSwapchainExtension

	live           map[string]map[any]bool
	buffers        map[core1_0.Buffer]*bufferState
	memory         map[core1_0.DeviceMemory]*allocation
	commandBuffers map[core1_0.CommandBuffer]*commandBufferState
	descriptorSets map[core1_0.DescriptorSet]core1_0.DescriptorPool
	uniforms       map[core1_0.DescriptorSet]core1_0.Buffer
	fences         map[core1_0.Fence]bool
	swapchainState map[khr_swapchain.Swapchain]*swapchainState
	queues         map[int]core1_0.Queue
}

func newDevice(g *GPU, handle core1_0.Device, physical *PhysicalDevice) *Device {
	d := &Device{
		MemoryTypeBits: uint32(1)<<len(physical.Memory) - 1,
		gpu:            g,
		handle:         handle,
		physical:       physical,
		driver:         mocks1_0.NewMockCoreDeviceDriver(g.ctrl),
		swapchains:     NewMockSwapchainExtension(g.ctrl),
		live:           make(map[string]map[any]bool),
		buffers:        make(map[core1_0.Buffer]*bufferState),
		memory:         make(map[core1_0.DeviceMemory]*allocation),
		commandBuffers: make(map[core1_0.CommandBuffer]*commandBufferState),
		descriptorSets: make(map[core1_0.DescriptorSet]core1_0.DescriptorPool),
		uniforms:       make(map[core1_0.DescriptorSet]core1_0.Buffer),
		fences:         make(map[core1_0.Fence]bool),
		swapchainState: make(map[khr_swapchain.Swapchain]*swapchainState),
		queues:         make(map[int]core1_0.Queue),
	}

	d.expectLifetime()
	d.expectMemory()
	d.expectCommands()
	d.expectSync()
	d.expectPipeline()
	d.expectSwapchain()
	return d
}

func (d *Device) create(kind string, obj any) {
	if d.live[kind] == nil {
		d.live[kind] = make(map[any]bool)
	}
	d.live[kind][obj] = true
	d.gpu.Journal.Record("create:" + kind)
}

func (d *Device) destroy(kind string, obj any) {
	if !d.live[kind][obj] {
		d.gpu.Journal.Record("invalid-destroy:" + kind)
		return
	}
	delete(d.live[kind], obj)
	d.gpu.Journal.Record("destroy:" + kind)
}

func (d *Device) alive(kind string, obj any) bool {
	return d.live[kind][obj]
}

// Live returns the number of live objects of kind, for example "Buffer" or
// "Fence".
func (d *Device) Live(kind string) int {
	return len(d.live[kind])
}

// Leaks returns the number of live objects of each kind that has any.
func (d *Device) Leaks() map[string]int {
	leaks := make(map[string]int)
	for kind, objects := range d.live {
		if len(objects) > 0 {
			leaks[kind] = len(objects)
		}
	}
	return leaks
}

// Contents returns the bytes of the memory bound to buffer.
func (d *Device) Contents(buffer core1_0.Buffer) []byte {
	state := d.buffers[buffer]
	if state == nil || !state.bound {
		return nil
	}
	return append([]byte(nil), d.memory[state.memory].data[:state.size]...)
}

func (d *Device) Usage(buffer core1_0.Buffer) core1_0.BufferUsageFlags {
	return d.buffers[buffer].usage
}

// MemoryTypeOf returns the memory type index backing buffer, or -1.
func (d *Device) MemoryTypeOf(buffer core1_0.Buffer) int {
	state := d.buffers[buffer]
	if state == nil || !state.bound {
		return -1
	}
	return d.memory[state.memory].typeIndex
}

func (d *Device) Mapped(buffer core1_0.Buffer) bool {
	state := d.buffers[buffer]
	if state == nil || !state.bound {
		return false
	}
	return d.memory[state.memory].mapped
}

// Commands returns the commands last recorded into buffer.
func (d *Device) Commands(buffer core1_0.CommandBuffer) []Op {
	state := d.commandBuffers[buffer]
	if state == nil {
		return nil
	}
	return state.ops
}

// UniformBinding returns the buffer written to binding 0 of set.
func (d *Device) UniformBinding(set core1_0.DescriptorSet) core1_0.Buffer {
	return d.uniforms[set]
}

func (d *Device) FenceSignaled(fence core1_0.Fence) bool {
	return d.fences[fence]
}

func popResult(results *[]common.VkResult) common.VkResult {
	if len(*results) == 0 {
		return core1_0.VKSuccess
	}
	res := (*results)[0]
	*results = (*results)[1:]
	return res
}

func (d *Device) expectLifetime() {
	m := d.driver.EXPECT()

	m.Device().Return(d.handle).AnyTimes()

	m.GetQueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(family, _ int) core1_0.Queue {
			queue, ok := d.queues[family]
			if !ok {
				queue = mocks.NewDummyQueue(d.handle)
				d.queues[family] = queue
			}
			return queue
		}).AnyTimes()

	m.DeviceWaitIdle().DoAndReturn(
		func() (common.VkResult, error) {
			d.WaitIdleCalls++
			d.gpu.Journal.Record("WaitIdle")
			return core1_0.VKSuccess, nil
		}).AnyTimes()

	m.QueueWaitIdle(gomock.Any()).DoAndReturn(
		func(core1_0.Queue) (common.VkResult, error) {
			d.QueueWaitIdleCalls++
			d.gpu.Journal.Record("QueueWaitIdle")
			return core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyDevice(gomock.Any()).Do(
		func(*loader.AllocationCallbacks) {
			if d.Destroyed {
				d.gpu.Journal.Record("invalid-destroy:Device")
				return
			}
			d.Destroyed = true
			d.gpu.Journal.Record("destroy:Device")
		}).AnyTimes()
}

func (d *Device) expectMemory() {
	m := d.driver.EXPECT()

	m.CreateBuffer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *loader.AllocationCallbacks, info core1_0.BufferCreateInfo) (core1_0.Buffer, common.VkResult, error) {
			buffer := mocks.NewDummyBuffer(d.handle)
			d.buffers[buffer] = &bufferState{size: info.Size, usage: info.Usage}
			d.create("Buffer", buffer)
			return buffer, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyBuffer(gomock.Any(), gomock.Any()).Do(
		func(buffer core1_0.Buffer, _ *loader.AllocationCallbacks) {
			d.destroy("Buffer", buffer)
		}).AnyTimes()

	m.GetBufferMemoryRequirements(gomock.Any()).DoAndReturn(
		func(buffer core1_0.Buffer) *core1_0.MemoryRequirements {
			return &core1_0.MemoryRequirements{
				Size:           d.buffers[buffer].size,
				Alignment:      4,
				MemoryTypeBits: d.MemoryTypeBits,
			}
		}).AnyTimes()

	m.AllocateMemory(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *loader.AllocationCallbacks, info core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, common.VkResult, error) {
			if info.MemoryTypeIndex < 0 || info.MemoryTypeIndex >= len(d.physical.Memory) {
				return core1_0.DeviceMemory{}, core1_0.VKErrorOutOfDeviceMemory, errors.Newf("memory type %d out of range", info.MemoryTypeIndex)
			}
			memory := mocks.NewDummyDeviceMemory(d.handle, info.AllocationSize)
			d.memory[memory] = &allocation{typeIndex: info.MemoryTypeIndex, data: make([]byte, info.AllocationSize)}
			d.create("Memory", memory)
			return memory, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.FreeMemory(gomock.Any(), gomock.Any()).Do(
		func(memory core1_0.DeviceMemory, _ *loader.AllocationCallbacks) {
			if alloc := d.memory[memory]; alloc != nil && alloc.mapped {
				d.gpu.Journal.Record("free-mapped:Memory")
			}
			d.destroy("Memory", memory)
		}).AnyTimes()

	m.BindBufferMemory(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(buffer core1_0.Buffer, memory core1_0.DeviceMemory, offset int) (common.VkResult, error) {
			state := d.buffers[buffer]
			alloc := d.memory[memory]
			if state == nil || alloc == nil || offset+state.size > len(alloc.data) {
				return core1_0.VKErrorUnknown, errors.New("invalid buffer memory binding")
			}
			state.memory = memory
			state.bound = true
			return core1_0.VKSuccess, nil
		}).AnyTimes()

	m.MapMemory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(memory core1_0.DeviceMemory, offset, size int, _ core1_0.MemoryMapFlags) (unsafe.Pointer, common.VkResult, error) {
			alloc := d.memory[memory]
			if alloc == nil || alloc.mapped || offset+size > len(alloc.data) {
				return nil, core1_0.VKErrorMemoryMapFailed, errors.New("invalid memory map")
			}
			flags := d.physical.Memory[alloc.typeIndex].PropertyFlags
			if flags&core1_0.MemoryPropertyHostVisible == 0 {
				return nil, core1_0.VKErrorMemoryMapFailed, errors.New("memory is not host visible")
			}
			alloc.mapped = true
			return unsafe.Pointer(&alloc.data[offset]), core1_0.VKSuccess, nil
		}).AnyTimes()

	m.UnmapMemory(gomock.Any()).Do(
		func(memory core1_0.DeviceMemory) {
			if alloc := d.memory[memory]; alloc != nil {
				alloc.mapped = false
			}
		}).AnyTimes()
}

func (d *Device) record(buffer core1_0.CommandBuffer, op Op) {
	state := d.commandBuffers[buffer]
	if state == nil || !state.recording {
		d.gpu.Journal.Record("record-outside-begin:" + op.Name)
		return
	}
	state.ops = append(state.ops, op)
}

func (d *Device) freeCommandBuffer(buffer core1_0.CommandBuffer) {
	d.destroy("CommandBuffer", buffer)
	delete(d.commandBuffers, buffer)
}

func (d *Device) expectCommands() {
	m := d.driver.EXPECT()

	m.CreateCommandPool(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *loader.AllocationCallbacks, info core1_0.CommandPoolCreateInfo) (core1_0.CommandPool, common.VkResult, error) {
			if info.QueueFamilyIndex < 0 || info.QueueFamilyIndex >= len(d.physical.Families) {
				return core1_0.CommandPool{}, core1_0.VKErrorUnknown, errors.Newf("unknown queue family %d", info.QueueFamilyIndex)
			}
			pool := mocks.NewDummyCommandPool(d.handle)
			d.CommandPoolFlags = append(d.CommandPoolFlags, info.Flags)
			d.create("CommandPool", pool)
			return pool, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyCommandPool(gomock.Any(), gomock.Any()).Do(
		func(pool core1_0.CommandPool, _ *loader.AllocationCallbacks) {
			for buffer, state := range d.commandBuffers {
				if state.pool == pool {
					d.freeCommandBuffer(buffer)
				}
			}
			d.destroy("CommandPool", pool)
		}).AnyTimes()

	m.AllocateCommandBuffers(gomock.Any()).DoAndReturn(
		func(info core1_0.CommandBufferAllocateInfo) ([]core1_0.CommandBuffer, common.VkResult, error) {
			if !d.alive("CommandPool", info.CommandPool) {
				return nil, core1_0.VKErrorUnknown, errors.New("allocate from unknown command pool")
			}
			var buffers []core1_0.CommandBuffer
			for i := 0; i < info.CommandBufferCount; i++ {
				buffer := mocks.NewDummyCommandBuffer(info.CommandPool, d.handle)
				d.commandBuffers[buffer] = &commandBufferState{pool: info.CommandPool}
				d.create("CommandBuffer", buffer)
				buffers = append(buffers, buffer)
			}
			return buffers, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.FreeCommandBuffers(gomock.Any()).Do(
		func(buffers ...core1_0.CommandBuffer) {
			for _, buffer := range buffers {
				d.freeCommandBuffer(buffer)
			}
		}).AnyTimes()

	m.BeginCommandBuffer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(buffer core1_0.CommandBuffer, _ core1_0.CommandBufferBeginInfo) (common.VkResult, error) {
			state := d.commandBuffers[buffer]
			if state == nil || state.recording {
				return core1_0.VKErrorUnknown, errors.New("begin of unknown or recording command buffer")
			}
			state.recording = true
			state.ops = nil
			return core1_0.VKSuccess, nil
		}).AnyTimes()

	m.EndCommandBuffer(gomock.Any()).DoAndReturn(
		func(buffer core1_0.CommandBuffer) (common.VkResult, error) {
			state := d.commandBuffers[buffer]
			if state == nil || !state.recording {
				return core1_0.VKErrorUnknown, errors.New("end of command buffer that is not recording")
			}
			state.recording = false
			return core1_0.VKSuccess, nil
		}).AnyTimes()

	m.ResetCommandBuffer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(buffer core1_0.CommandBuffer, _ core1_0.CommandBufferResetFlags) (common.VkResult, error) {
			state := d.commandBuffers[buffer]
			if state == nil {
				return core1_0.VKErrorUnknown, errors.New("reset of unknown command buffer")
			}
			state.recording = false
			state.ops = nil
			return core1_0.VKSuccess, nil
		}).AnyTimes()

	m.CmdCopyBuffer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(buffer core1_0.CommandBuffer, src, dst core1_0.Buffer, regions ...core1_0.BufferCopy) error {
			for _, region := range regions {
				d.record(buffer, Op{Name: "CopyBuffer", Src: src, Dst: dst, Size: region.Size})
			}
			return nil
		}).AnyTimes()

	m.CmdBeginRenderPass(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(buffer core1_0.CommandBuffer, _ core1_0.SubpassContents, info core1_0.RenderPassBeginInfo) error {
			op := Op{
				Name:        "BeginRenderPass",
				RenderPass:  info.RenderPass,
				Framebuffer: info.Framebuffer,
				Extent:      info.RenderArea.Extent,
			}
			if len(info.ClearValues) > 0 {
				if color, ok := info.ClearValues[0].(core1_0.ClearValueFloat); ok {
					op.ClearColor = [4]float32(color)
				}
			}
			d.record(buffer, op)
			return nil
		}).AnyTimes()

	m.CmdEndRenderPass(gomock.Any()).Do(
		func(buffer core1_0.CommandBuffer) {
			d.record(buffer, Op{Name: "EndRenderPass"})
		}).AnyTimes()

	m.CmdBindPipeline(gomock.Any(), gomock.Any(), gomock.Any()).Do(
		func(buffer core1_0.CommandBuffer, _ core1_0.PipelineBindPoint, pipeline core1_0.Pipeline) {
			d.record(buffer, Op{Name: "BindPipeline", Pipeline: pipeline})
		}).AnyTimes()

	m.CmdBindVertexBuffers(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Do(
		func(buffer core1_0.CommandBuffer, _ int, buffers []core1_0.Buffer, _ []int) {
			for _, vertices := range buffers {
				d.record(buffer, Op{Name: "BindVertexBuffers", Src: vertices})
			}
		}).AnyTimes()

	m.CmdBindIndexBuffer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Do(
		func(buffer core1_0.CommandBuffer, indices core1_0.Buffer, _ int, indexType core1_0.IndexType) {
			d.record(buffer, Op{Name: "BindIndexBuffer", Src: indices, IndexType: indexType})
		}).AnyTimes()

	m.CmdSetViewport(gomock.Any(), gomock.Any()).Do(
		func(buffer core1_0.CommandBuffer, viewports ...core1_0.Viewport) {
			for _, viewport := range viewports {
				d.record(buffer, Op{Name: "SetViewport", Viewport: viewport})
			}
		}).AnyTimes()

	m.CmdSetScissor(gomock.Any(), gomock.Any()).Do(
		func(buffer core1_0.CommandBuffer, scissors ...core1_0.Rect2D) {
			for _, scissor := range scissors {
				d.record(buffer, Op{Name: "SetScissor", Scissor: scissor})
			}
		}).AnyTimes()

	m.CmdBindDescriptorSets(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Do(
		func(buffer core1_0.CommandBuffer, _ core1_0.PipelineBindPoint, layout core1_0.PipelineLayout, _ int, sets []core1_0.DescriptorSet, _ []int) {
			for _, set := range sets {
				d.record(buffer, Op{Name: "BindDescriptorSets", Layout: layout, Set: set})
			}
		}).AnyTimes()

	m.CmdDrawIndexed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Do(
		func(buffer core1_0.CommandBuffer, indexCount, _ int, _ uint32, _ int, _ uint32) {
			d.record(buffer, Op{Name: "DrawIndexed", IndexCount: indexCount})
		}).AnyTimes()
}

// execute runs the copies recorded in buffer against host memory.
func (d *Device) execute(buffer core1_0.CommandBuffer) {
	for _, op := range d.commandBuffers[buffer].ops {
		if op.Name != "CopyBuffer" {
			continue
		}
		src, dst := d.buffers[op.Src], d.buffers[op.Dst]
		copy(d.memory[dst.memory].data[:op.Size], d.memory[src.memory].data[:op.Size])
	}
}

func (d *Device) expectSync() {
	m := d.driver.EXPECT()

	m.CreateSemaphore(gomock.Any(), gomock.Any()).DoAndReturn(
		func(*loader.AllocationCallbacks, core1_0.SemaphoreCreateInfo) (core1_0.Semaphore, common.VkResult, error) {
			semaphore := mocks.NewDummySemaphore(d.handle)
			d.create("Semaphore", semaphore)
			return semaphore, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroySemaphore(gomock.Any(), gomock.Any()).Do(
		func(semaphore core1_0.Semaphore, _ *loader.AllocationCallbacks) {
			d.destroy("Semaphore", semaphore)
		}).AnyTimes()

	m.CreateFence(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *loader.AllocationCallbacks, info core1_0.FenceCreateInfo) (core1_0.Fence, common.VkResult, error) {
			fence := mocks.NewDummyFence(d.handle)
			d.fences[fence] = info.Flags&core1_0.FenceCreateSignaled != 0
			d.create("Fence", fence)
			return fence, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyFence(gomock.Any(), gomock.Any()).Do(
		func(fence core1_0.Fence, _ *loader.AllocationCallbacks) {
			d.destroy("Fence", fence)
			delete(d.fences, fence)
		}).AnyTimes()

	m.WaitForFences(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ bool, _ time.Duration, fences ...core1_0.Fence) (common.VkResult, error) {
			d.gpu.Journal.Record("WaitForFences")
			for _, fence := range fences {
				if !d.fences[fence] {
					return core1_0.VKTimeout, nil
				}
			}
			return core1_0.VKSuccess, nil
		}).AnyTimes()

	m.ResetFences(gomock.Any()).DoAndReturn(
		func(fences ...core1_0.Fence) (common.VkResult, error) {
			d.gpu.Journal.Record("ResetFences")
			for _, fence := range fences {
				d.fences[fence] = false
			}
			return core1_0.VKSuccess, nil
		}).AnyTimes()

	m.QueueSubmit(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ core1_0.Queue, fence *core1_0.Fence, infos ...core1_0.SubmitInfo) (common.VkResult, error) {
			d.gpu.Journal.Record("QueueSubmit")

			var signal core1_0.Fence
			if fence != nil {
				signal = *fence
				if d.fences[signal] {
					return core1_0.VKErrorUnknown, errors.New("submit with a signaled fence")
				}
			}

			for _, info := range infos {
				for _, buffer := range info.CommandBuffers {
					state := d.commandBuffers[buffer]
					if state == nil || state.recording {
						return core1_0.VKErrorUnknown, errors.New("submit of unknown or recording command buffer")
					}
				}
			}

			for _, info := range infos {
				d.Submits = append(d.Submits, Submission{Fence: signal, SubmitInfo: info})
				for _, buffer := range info.CommandBuffers {
					d.execute(buffer)
				}
			}

			if fence != nil && !d.HangFences {
				d.fences[signal] = true
			}
			return core1_0.VKSuccess, nil
		}).AnyTimes()
}

func (d *Device) expectPipeline() {
	m := d.driver.EXPECT()

	m.CreateShaderModule(gomock.Any(), gomock.Any()).DoAndReturn(
		func(*loader.AllocationCallbacks, core1_0.ShaderModuleCreateInfo) (core1_0.ShaderModule, common.VkResult, error) {
			module := mocks.NewDummyShaderModule(d.handle)
			d.create("ShaderModule", module)
			return module, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyShaderModule(gomock.Any(), gomock.Any()).Do(
		func(module core1_0.ShaderModule, _ *loader.AllocationCallbacks) {
			d.destroy("ShaderModule", module)
		}).AnyTimes()

	m.CreateRenderPass(gomock.Any(), gomock.Any()).DoAndReturn(
		func(*loader.AllocationCallbacks, core1_0.RenderPassCreateInfo) (core1_0.RenderPass, common.VkResult, error) {
			renderPass := mocks.NewDummyRenderPass(d.handle)
			d.create("RenderPass", renderPass)
			return renderPass, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyRenderPass(gomock.Any(), gomock.Any()).Do(
		func(renderPass core1_0.RenderPass, _ *loader.AllocationCallbacks) {
			d.destroy("RenderPass", renderPass)
		}).AnyTimes()

	m.CreateDescriptorSetLayout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(*loader.AllocationCallbacks, core1_0.DescriptorSetLayoutCreateInfo) (core1_0.DescriptorSetLayout, common.VkResult, error) {
			layout := mocks.NewDummyDescriptorSetLayout(d.handle)
			d.create("DescriptorSetLayout", layout)
			return layout, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyDescriptorSetLayout(gomock.Any(), gomock.Any()).Do(
		func(layout core1_0.DescriptorSetLayout, _ *loader.AllocationCallbacks) {
			d.destroy("DescriptorSetLayout", layout)
		}).AnyTimes()

	m.CreatePipelineLayout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(*loader.AllocationCallbacks, core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, common.VkResult, error) {
			layout := mocks.NewDummyPipelineLayout(d.handle)
			d.create("PipelineLayout", layout)
			return layout, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyPipelineLayout(gomock.Any(), gomock.Any()).Do(
		func(layout core1_0.PipelineLayout, _ *loader.AllocationCallbacks) {
			d.destroy("PipelineLayout", layout)
		}).AnyTimes()

	m.CreatePipelineCache(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *loader.AllocationCallbacks, info core1_0.PipelineCacheCreateInfo) (core1_0.PipelineCache, common.VkResult, error) {
			cache := mocks.NewDummyPipelineCache(d.handle)
			d.CacheInitialData = append(d.CacheInitialData, info.InitialData)
			d.create("PipelineCache", cache)
			return cache, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.GetPipelineCacheData(gomock.Any()).DoAndReturn(
		func(cache core1_0.PipelineCache) ([]byte, common.VkResult, error) {
			if !d.alive("PipelineCache", cache) {
				return nil, core1_0.VKErrorUnknown, errors.New("read of unknown pipeline cache")
			}
			return append([]byte(nil), d.CacheData...), core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyPipelineCache(gomock.Any(), gomock.Any()).Do(
		func(cache core1_0.PipelineCache, _ *loader.AllocationCallbacks) {
			d.destroy("PipelineCache", cache)
		}).AnyTimes()

	m.CreateGraphicsPipelines(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(cache *core1_0.PipelineCache, _ *loader.AllocationCallbacks, infos ...core1_0.GraphicsPipelineCreateInfo) ([]core1_0.Pipeline, common.VkResult, error) {
			var pipelines []core1_0.Pipeline
			for _, info := range infos {
				for _, stage := range info.Stages {
					if !d.alive("ShaderModule", stage.Module) {
						return nil, core1_0.VKErrorUnknown, errors.New("pipeline stage uses a destroyed shader module")
					}
				}

				creation := PipelineCreation{Info: info}
				if cache != nil {
					creation.Cache = *cache
				}
				d.Pipelines = append(d.Pipelines, creation)

				pipeline := mocks.NewDummyPipeline(d.handle)
				d.create("Pipeline", pipeline)
				pipelines = append(pipelines, pipeline)
			}
			return pipelines, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyPipeline(gomock.Any(), gomock.Any()).Do(
		func(pipeline core1_0.Pipeline, _ *loader.AllocationCallbacks) {
			d.destroy("Pipeline", pipeline)
		}).AnyTimes()

	m.CreateDescriptorPool(gomock.Any(), gomock.Any()).DoAndReturn(
		func(*loader.AllocationCallbacks, core1_0.DescriptorPoolCreateInfo) (core1_0.DescriptorPool, common.VkResult, error) {
			pool := mocks.NewDummyDescriptorPool(d.handle)
			d.create("DescriptorPool", pool)
			return pool, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyDescriptorPool(gomock.Any(), gomock.Any()).Do(
		func(pool core1_0.DescriptorPool, _ *loader.AllocationCallbacks) {
			for set, owner := range d.descriptorSets {
				if owner == pool {
					d.destroy("DescriptorSet", set)
					delete(d.descriptorSets, set)
				}
			}
			d.destroy("DescriptorPool", pool)
		}).AnyTimes()

	m.AllocateDescriptorSets(gomock.Any()).DoAndReturn(
		func(info core1_0.DescriptorSetAllocateInfo) ([]core1_0.DescriptorSet, common.VkResult, error) {
			if !d.alive("DescriptorPool", info.DescriptorPool) {
				return nil, core1_0.VKErrorUnknown, errors.New("allocate from unknown descriptor pool")
			}
			var sets []core1_0.DescriptorSet
			for range info.SetLayouts {
				set := mocks.NewDummyDescriptorSet(info.DescriptorPool, d.handle)
				d.descriptorSets[set] = info.DescriptorPool
				d.create("DescriptorSet", set)
				sets = append(sets, set)
			}
			return sets, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.UpdateDescriptorSets(gomock.Any(), gomock.Any()).DoAndReturn(
		func(writes []core1_0.WriteDescriptorSet, _ []core1_0.CopyDescriptorSet) error {
			for _, write := range writes {
				if write.DescriptorType != core1_0.DescriptorTypeUniformBuffer || write.DstBinding != 0 || len(write.BufferInfo) == 0 {
					continue
				}
				d.uniforms[write.DstSet] = write.BufferInfo[0].Buffer
			}
			return nil
		}).AnyTimes()
}

func (d *Device) expectSwapchain() {
	m := d.driver.EXPECT()

	m.CreateImageView(gomock.Any(), gomock.Any()).DoAndReturn(
		func(*loader.AllocationCallbacks, core1_0.ImageViewCreateInfo) (core1_0.ImageView, common.VkResult, error) {
			view := mocks.NewDummyImageView(d.handle)
			d.create("ImageView", view)
			return view, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyImageView(gomock.Any(), gomock.Any()).Do(
		func(view core1_0.ImageView, _ *loader.AllocationCallbacks) {
			d.destroy("ImageView", view)
		}).AnyTimes()

	m.CreateFramebuffer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *loader.AllocationCallbacks, info core1_0.FramebufferCreateInfo) (core1_0.Framebuffer, common.VkResult, error) {
			if !d.alive("RenderPass", info.RenderPass) {
				return core1_0.Framebuffer{}, core1_0.VKErrorUnknown, errors.New("framebuffer for unknown render pass")
			}
			framebuffer := mocks.NewDummyFramebuffer(d.handle)
			d.create("Framebuffer", framebuffer)
			return framebuffer, core1_0.VKSuccess, nil
		}).AnyTimes()

	m.DestroyFramebuffer(gomock.Any(), gomock.Any()).Do(
		func(framebuffer core1_0.Framebuffer, _ *loader.AllocationCallbacks) {
			d.destroy("Framebuffer", framebuffer)
		}).AnyTimes()

	s := d.swapchains.EXPECT()

	s.Device().Return(d.handle).AnyTimes()
	s.APIVersion().Return(common.Vulkan1_0).AnyTimes()

	s.CreateSwapchain(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *loader.AllocationCallbacks, info khr_swapchain.SwapchainCreateInfo) (khr_swapchain.Swapchain, common.VkResult, error) {
			if info.Surface != d.gpu.SurfaceHandle {
				return khr_swapchain.Swapchain{}, core1_0.VKErrorUnknown, errors.New("swapchain for unknown surface")
			}
			swapchain := khr_swapchain.NewDummySwapchain(d.handle)
			state := &swapchainState{info: info}
			for i := 0; i < info.MinImageCount; i++ {
				state.images = append(state.images, mocks.NewDummyImage(d.handle))
			}
			d.swapchainState[swapchain] = state
			d.SwapchainInfos = append(d.SwapchainInfos, info)
			d.create("Swapchain", swapchain)
			return swapchain, core1_0.VKSuccess, nil
		}).AnyTimes()

	s.DestroySwapchain(gomock.Any(), gomock.Any()).Do(
		func(swapchain khr_swapchain.Swapchain, _ *loader.AllocationCallbacks) {
			d.destroy("Swapchain", swapchain)
			delete(d.swapchainState, swapchain)
		}).AnyTimes()

	s.GetSwapchainImages(gomock.Any()).DoAndReturn(
		func(swapchain khr_swapchain.Swapchain) ([]core1_0.Image, common.VkResult, error) {
			state := d.swapchainState[swapchain]
			if state == nil {
				return nil, core1_0.VKErrorUnknown, errors.New("images of unknown swapchain")
			}
			return append([]core1_0.Image(nil), state.images...), core1_0.VKSuccess, nil
		}).AnyTimes()

	s.AcquireNextImage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(swapchain khr_swapchain.Swapchain, _ time.Duration, _ *core1_0.Semaphore, _ *core1_0.Fence) (int, common.VkResult, error) {
			d.gpu.Journal.Record("AcquireNextImage")
			state := d.swapchainState[swapchain]
			if state == nil {
				return 0, core1_0.VKErrorUnknown, errors.New("acquire from unknown swapchain")
			}

			res := popResult(&d.AcquireResults)
			if res < 0 {
				return 0, res, res.ToError()
			}
			index := state.next
			state.next = (state.next + 1) % len(state.images)
			return index, res, nil
		}).AnyTimes()

	s.QueuePresent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ core1_0.Queue, info khr_swapchain.PresentInfo) (common.VkResult, error) {
			d.gpu.Journal.Record("QueuePresent")
			for _, swapchain := range info.Swapchains {
				if d.swapchainState[swapchain] == nil {
					return core1_0.VKErrorUnknown, errors.New("present to unknown swapchain")
				}
			}
			d.Presents = append(d.Presents, info)

			res := popResult(&d.PresentResults)
			return res, res.ToError()
		}).AnyTimes()
}
