package render

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// graphicsPipeline is the single fixed pipeline the engine draws with.
type graphicsPipeline struct {
	renderPass core1_0.RenderPass
	setLayout  core1_0.DescriptorSetLayout
	layout     core1_0.PipelineLayout
	cache      core1_0.PipelineCache
	pipeline   core1_0.Pipeline
}

func createRenderPass(driver core1_0.DeviceDriver, format core1_0.Format) (core1_0.RenderPass, error) {
	renderPass, _, err := driver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	return renderPass, err
}

func createDescriptorSetLayout(driver core1_0.DeviceDriver) (core1_0.DescriptorSetLayout, error) {
	layout, _, err := driver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,

				StageFlags: core1_0.StageVertex,
			},
		},
	})
	return layout, err
}

func createDescriptorPool(driver core1_0.DeviceDriver, count int) (core1_0.DescriptorPool, error) {
	pool, _, err := driver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets: count,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: count,
			},
		},
	})
	return pool, err
}

// createShaderModule wraps SPIR-V code. len(code) must be a multiple of four.
func createShaderModule(driver core1_0.DeviceDriver, code []byte) (core1_0.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return core1_0.ShaderModule{}, errors.Newf("shader bytecode length %d is not a multiple of 4", len(code))
	}

	module, _, err := driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: bytesToBytecode(code),
	})
	return module, err
}

// createGraphicsPipeline builds the render pass, layouts and pipeline for
// format. Shader modules only live for the duration of the call. Viewport
// and scissor are dynamic, so the pipeline survives swapchain rebuilds.
func createGraphicsPipeline(driver core1_0.DeviceDriver, format core1_0.Format, cache core1_0.PipelineCache, vertexCode, fragmentCode []byte) (*graphicsPipeline, error) {
	p := &graphicsPipeline{cache: cache}
	var err error

	p.renderPass, err = createRenderPass(driver, format)
	if err != nil {
		return p, errors.Wrap(err, "failed to create render pass")
	}

	p.setLayout, err = createDescriptorSetLayout(driver)
	if err != nil {
		return p, errors.Wrap(err, "failed to create descriptor set layout")
	}

	p.layout, _, err = driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{p.setLayout},
	})
	if err != nil {
		return p, errors.Wrap(err, "failed to create pipeline layout")
	}

	vertShader, err := createShaderModule(driver, vertexCode)
	if err != nil {
		return p, errors.Wrap(err, "failed to create vertex shader module")
	}
	defer driver.DestroyShaderModule(vertShader, nil)

	fragShader, err := createShaderModule(driver, fragmentCode)
	if err != nil {
		return p, errors.Wrap(err, "failed to create fragment shader module")
	}
	defer driver.DestroyShaderModule(fragShader, nil)

	var pipelineCache *core1_0.PipelineCache
	if cache.Initialized() {
		pipelineCache = &cache
	}

	pipelines, _, err := driver.CreateGraphicsPipelines(pipelineCache, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				{
					Stage:  core1_0.StageVertex,
					Module: vertShader,
					Name:   "main",
				},
				{
					Stage:  core1_0.StageFragment,
					Module: fragShader,
					Name:   "main",
				},
			},
			VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{
				VertexBindingDescriptions:   getVertexBindingDescription(),
				VertexAttributeDescriptions: getVertexAttributeDescriptions(),
			},
			InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
				Topology:               core1_0.PrimitiveTopologyTriangleList,
				PrimitiveRestartEnable: false,
			},
			ViewportState: &core1_0.PipelineViewportStateCreateInfo{
				Viewports: []core1_0.Viewport{{MinDepth: 0, MaxDepth: 1}},
				Scissors:  []core1_0.Rect2D{{}},
			},
			RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
				DepthClampEnable:        false,
				RasterizerDiscardEnable: false,

				PolygonMode: core1_0.PolygonModeFill,
				CullMode:    core1_0.CullModeBack,
				FrontFace:   core1_0.FrontFaceClockwise,

				DepthBiasEnable: false,

				LineWidth: 1.0,
			},
			MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
				SampleShadingEnable:  false,
				RasterizationSamples: core1_0.Samples1,
				MinSampleShading:     1.0,
			},
			ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
				LogicOpEnabled: false,
				LogicOp:        core1_0.LogicOpCopy,

				BlendConstants: [4]float32{0, 0, 0, 0},
				Attachments: []core1_0.PipelineColorBlendAttachmentState{
					{
						BlendEnabled:   false,
						ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
					},
				},
			},
			DynamicState: &core1_0.PipelineDynamicStateCreateInfo{
				DynamicStates: []core1_0.DynamicState{core1_0.DynamicStateViewport, core1_0.DynamicStateScissor},
			},
			Layout:            p.layout,
			RenderPass:        p.renderPass,
			Subpass:           0,
			BasePipelineIndex: -1,
		},
	)
	if err != nil {
		return p, errors.Wrap(err, "failed to create graphics pipeline")
	}
	p.pipeline = pipelines[0]

	return p, nil
}

// destroy releases the pipeline objects. The render pass is destroyed
// separately because it outlives the pipeline during teardown.
func (p *graphicsPipeline) destroy(driver core1_0.DeviceDriver) {
	if p.pipeline.Initialized() {
		driver.DestroyPipeline(p.pipeline, nil)
		p.pipeline = core1_0.Pipeline{}
	}
	if p.layout.Initialized() {
		driver.DestroyPipelineLayout(p.layout, nil)
		p.layout = core1_0.PipelineLayout{}
	}
	if p.cache.Initialized() {
		driver.DestroyPipelineCache(p.cache, nil)
		p.cache = core1_0.PipelineCache{}
	}
	if p.setLayout.Initialized() {
		driver.DestroyDescriptorSetLayout(p.setLayout, nil)
		p.setLayout = core1_0.DescriptorSetLayout{}
	}
}

func (p *graphicsPipeline) destroyRenderPass(driver core1_0.DeviceDriver) {
	if p.renderPass.Initialized() {
		driver.DestroyRenderPass(p.renderPass, nil)
		p.renderPass = core1_0.RenderPass{}
	}
}
