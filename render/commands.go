package render

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// drawState is everything recordFrame needs to record one frame.
type drawState struct {
	renderPass   core1_0.RenderPass
	framebuffer  core1_0.Framebuffer
	extent       core1_0.Extent2D
	clearColor   [4]float32
	pipeline     core1_0.Pipeline
	layout       core1_0.PipelineLayout
	vertexBuffer core1_0.Buffer
	indexBuffer  core1_0.Buffer
	indexCount   int
	descriptors  core1_0.DescriptorSet
}

// recordFrame records the full draw of one frame into buffer. The sequence
// never varies; only the framebuffer, extent and descriptor set change
// between frames.
func recordFrame(driver core1_0.DeviceDriver, buffer core1_0.CommandBuffer, state drawState) error {
	_, err := driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return errors.Wrap(err, "failed to begin recording command buffer")
	}

	err = driver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  state.renderPass,
			Framebuffer: state.framebuffer,
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: state.extent,
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat(state.clearColor),
			},
		})
	if err != nil {
		return err
	}

	driver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, state.pipeline)
	driver.CmdBindVertexBuffers(buffer, 0, []core1_0.Buffer{state.vertexBuffer}, []int{0})
	driver.CmdBindIndexBuffer(buffer, state.indexBuffer, 0, core1_0.IndexTypeUInt32)
	driver.CmdSetViewport(buffer, core1_0.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(state.extent.Width),
		Height:   float32(state.extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	driver.CmdSetScissor(buffer, core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: 0, Y: 0},
		Extent: state.extent,
	})
	driver.CmdBindDescriptorSets(buffer, core1_0.PipelineBindPointGraphics, state.layout, 0,
		[]core1_0.DescriptorSet{state.descriptors}, nil)
	driver.CmdDrawIndexed(buffer, state.indexCount, 1, 0, 0, 0)
	driver.CmdEndRenderPass(buffer)

	_, err = driver.EndCommandBuffer(buffer)
	if err != nil {
		return errors.Wrap(err, "failed to record command buffer")
	}
	return nil
}
