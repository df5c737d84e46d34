package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"lodcraft/internal/config"
	"lodcraft/internal/graphics"
	"lodcraft/internal/graphics/renderables/chunks"
	"lodcraft/internal/lod"
	"lodcraft/internal/registry"
	"lodcraft/internal/source"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "settings.yml", "settings file")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		log.Printf("main: %v (using defaults)", err)
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("main: glfw init: %v", err)
	}
	closer.Bind(glfw.Terminate)

	window, err := setupWindow()
	if err != nil {
		log.Fatalf("main: %v", err)
	}

	// Startup order: attributes, allocators, shaders. closer unwinds it in
	// reverse on exit.
	registry.Init()
	if err := graphics.InitBuffers(); err != nil {
		log.Fatalf("main: gpu buffers: %v", err)
	}
	closer.Bind(graphics.ShutdownBuffers)
	graphics.UploadMaterials(registry.MaterialWords())
	graphics.UploadPalette(registry.PaletteWords())

	src := newChunkSource()
	manager := lod.NewManager(src, meshingGPU(), config.GetHighestLOD(), max(runtime.NumCPU()-1, 1))
	closer.Bind(manager.Shutdown)

	renderer := chunks.NewRenderer(manager)
	w, h := window.GetFramebufferSize()
	if err := renderer.Init(w, h); err != nil {
		log.Fatalf("main: renderer: %v", err)
	}
	closer.Bind(renderer.Dispose)

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gl.Viewport(0, 0, int32(w), int32(h))
		renderer.Resize(w, h)
	})

	loop := newGameLoop(window, manager, renderer)
	loop.run()
	closer.Close()
}

// newChunkSource picks the remote websocket collaborator when a server is
// configured, the local generator otherwise.
func newChunkSource() source.ChunkSource {
	if url := config.GetServerURL(); url != "" {
		s, err := source.NewRemoteSource(url)
		if err == nil {
			return s
		}
		log.Printf("main: remote source unavailable (%v), falling back to local generation", err)
	}
	return source.NewLocalSource(config.GetSeed(), max(runtime.NumCPU()/2, 1))
}
