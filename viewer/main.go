package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/RadicalTray/image-viewer/render"
	"github.com/RadicalTray/image-viewer/vulkan"
)

var presentModes = map[string]khr_surface.PresentMode{
	"fifo":         khr_surface.PresentModeFIFO,
	"fifo-relaxed": khr_surface.PresentModeFIFORelaxed,
	"mailbox":      khr_surface.PresentModeMailbox,
	"immediate":    khr_surface.PresentModeImmediate,
}

type flags struct {
	width         int
	height        int
	shaders       string
	pipelineCache string
	validation    bool
	presentMode   string
	fenceTimeout  time.Duration
	verbose       bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("viewer", flag.ContinueOnError)
	fs.IntVar(&f.width, "width", 800, "initial window width")
	fs.IntVar(&f.height, "height", 600, "initial window height")
	fs.StringVar(&f.shaders, "shaders", "viewer/shaders",
		"directory holding vert.spv and frag.spv, built with go generate ./viewer; the default resolves from the repository root")
	fs.StringVar(&f.pipelineCache, "pipeline-cache", "pipeline_cache.bin", "pipeline cache file, empty to disable")
	fs.BoolVar(&f.validation, "validation", false, "enable the Khronos validation layer")
	fs.StringVar(&f.presentMode, "present-mode", "fifo", "preferred present mode: fifo, fifo-relaxed, mailbox or immediate")
	fs.DurationVar(&f.fenceTimeout, "fence-timeout", 5*time.Second, "give up on a frame after this long")
	fs.BoolVar(&f.verbose, "verbose", false, "log per-frame events")
	err := fs.Parse(args)
	return f, err
}

type Viewer struct {
	flags  flags
	logger *slog.Logger

	window   *sdl.Window
	renderer *render.Renderer
}

func (v *Viewer) Run() error {
	err := v.initWindow()
	if err != nil {
		return err
	}
	defer v.destroyWindow()

	err = v.initRenderer()
	if err != nil {
		return err
	}

	err = v.mainLoop()
	return errors.CombineErrors(err, v.renderer.Shutdown())
}

func (v *Viewer) initWindow() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return errors.Wrap(err, "failed to initialize SDL")
	}

	window, err := sdl.CreateWindow("Vulkan", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(v.flags.width), int32(v.flags.height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return errors.Wrap(err, "failed to create window")
	}
	v.window = window

	return nil
}

func (v *Viewer) destroyWindow() {
	if v.window != nil {
		v.window.Destroy()
		v.window = nil
	}
	sdl.Quit()
}

func (v *Viewer) initRenderer() error {
	presentMode, ok := presentModes[strings.ToLower(v.flags.presentMode)]
	if !ok {
		return errors.Newf("unknown present mode %q", v.flags.presentMode)
	}

	assets, err := loadAssets(v.flags.shaders, v.flags.pipelineCache)
	if err != nil {
		return err
	}

	instance, err := vulkan.NewInstance(v.window, vulkan.InstanceOptions{
		ApplicationName: "Image Viewer",
		Validation:      v.flags.validation,
		Logger:          v.logger.With(slog.String("component", "vulkan")),
	})
	if err != nil {
		return err
	}

	surface, err := instance.CreateSurface(v.window)
	if err != nil {
		instance.Destroy()
		return err
	}

	config := render.DefaultConfig()
	config.PreferredPresentMode = presentMode
	config.FenceTimeout = v.flags.fenceTimeout
	config.PipelineCachePath = v.flags.pipelineCache

	v.renderer, err = render.New(render.Options{
		Instance:          instance,
		Surface:           surface,
		Window:            vulkan.Window{Window: v.window},
		Config:            config,
		Logger:            v.logger,
		VertexShader:      assets.vertexShader,
		FragmentShader:    assets.fragmentShader,
		PipelineCacheData: assets.pipelineCache,
	})
	return err
}

func (v *Viewer) mainLoop() error {
	rendering := true

appLoop:
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				break appLoop
			case *sdl.WindowEvent:
				switch e.Event {
				case sdl.WINDOWEVENT_MINIMIZED:
					rendering = false
				case sdl.WINDOWEVENT_RESTORED:
					rendering = true
				case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
					v.renderer.Resize()
				}
			}
		}

		if rendering {
			err := v.renderer.DrawFrame()
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func main() {
	runtime.LockOSThread()

	f, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	app := &Viewer{
		flags:  f,
		logger: logger,
	}

	err = app.Run()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
