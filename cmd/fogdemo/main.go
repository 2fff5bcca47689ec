// Command fogdemo drives the volumetric fog pass headlessly for a number of
// frames and logs what each frame recorded.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/fog"
	"github.com/gogpu/fog/camera"
	"github.com/gogpu/fog/geometry"
	"github.com/gogpu/fog/material"
	"github.com/gogpu/fog/raster"
	"github.com/gogpu/fog/target"
	"github.com/gogpu/fog/volume"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/math/f32"
	"golang.org/x/term"
)

type config struct {
	backend  string
	width    int
	height   int
	resizeW  int
	resizeH  int
	resizeAt int
	frames   int
	volumes  int
	dropAt   int
	gltf     string
	spirv    bool
	verbose  bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.backend, "backend", "", "HAL backend (default: best available)")
	flag.IntVar(&cfg.width, "width", 1920, "viewport width")
	flag.IntVar(&cfg.height, "height", 1080, "viewport height")
	flag.IntVar(&cfg.resizeW, "resize-width", 2560, "viewport width after the resize frame")
	flag.IntVar(&cfg.resizeH, "resize-height", 1440, "viewport height after the resize frame")
	flag.IntVar(&cfg.resizeAt, "resize-at", 3, "frame at which the viewport is resized (negative: never)")
	flag.IntVar(&cfg.frames, "frames", 6, "number of frames to draw")
	flag.IntVar(&cfg.volumes, "volumes", 3, "number of fog volumes")
	flag.IntVar(&cfg.dropAt, "drop-at", 4, "frame at which the first volume is unregistered (negative: never)")
	flag.StringVar(&cfg.gltf, "gltf", "", "glTF file whose first mesh is drawn over the fog")
	flag.BoolVar(&cfg.spirv, "spirv", false, "compile the fog shader to SPIR-V with naga")
	flag.BoolVar(&cfg.verbose, "v", false, "debug logging")
	flag.Parse()

	logger := newLogger(cfg.verbose)
	fog.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fogdemo failed", "err", err)
		os.Exit(1)
	}
}

// newLogger logs text to a terminal and JSON otherwise.
func newLogger(verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// backends lists the HAL backends the demo can open, best first.
func backends() *gpucontext.Registry[hal.Backend] {
	r := gpucontext.NewRegistry[hal.Backend](gpucontext.WithPriority("noop"))
	r.Register("noop", func() hal.Backend { return noop.API{} })
	return r
}

// gpu is an opened device and queue.
type gpu struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
}

func openGPU(name string) (*gpu, error) {
	reg := backends()
	var backend hal.Backend
	if name == "" {
		name = reg.BestName()
		backend = reg.Best()
	} else {
		backend = reg.Get(name)
	}
	if backend == nil {
		return nil, fmt.Errorf("backend %q not available (have %v)", name, reg.Available())
	}

	instance, err := backend.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("create %s instance: %w", name, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no adapters")
	}
	opened, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open adapter: %w", err)
	}
	return &gpu{instance: instance, device: opened.Device, queue: opened.Queue}, nil
}

func (g *gpu) close() {
	g.device.Destroy()
	g.instance.Destroy()
}

func run(cfg config, logger *slog.Logger) error {
	g, err := openGPU(cfg.backend)
	if err != nil {
		return err
	}
	defer g.close()

	var opts []fog.Option
	if cfg.spirv {
		def, err := material.Lookup(volume.FogMaterial)
		if err != nil {
			return err
		}
		m, err := material.New(g.device, *def, material.WithSPIRV())
		if err != nil {
			return err
		}
		defer m.Destroy()
		opts = append(opts, fog.WithMaterial(m, false))
	}

	feature, err := fog.NewFeatureWithDevice(g.device, g.queue, opts...)
	if err != nil {
		return err
	}
	defer feature.Destroy()

	fogs := make([]*volume.Fog, cfg.volumes)
	for i := range fogs {
		//nolint:gosec // G115: small volume counts
		fogs[i] = volume.NewFog(f32.Vec3{float32(i*25 - cfg.volumes*10), 0, -40})
		feature.Registry().Register(fogs[i])
	}

	s, err := newScene(g, cfg, feature.Pass().Helper())
	if err != nil {
		return err
	}
	defer func() {
		if err := s.close(); err != nil {
			logger.Warn("scene teardown", "err", err)
		}
	}()

	var passes fog.PassList
	width, height := cfg.width, cfg.height
	for frame := 0; frame < cfg.frames; frame++ {
		if frame == cfg.resizeAt {
			width, height = cfg.resizeW, cfg.resizeH
		}
		if frame == cfg.dropAt && len(fogs) > 0 {
			feature.Registry().Unregister(fogs[0])
		}

		v, err := s.viewport(width, height, frame)
		if err != nil {
			return err
		}
		feature.AddRenderPasses(&passes, v)
		if err := passes.Run(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := s.overlay(feature.Pass(), v); err != nil {
			return fmt.Errorf("frame %d overlay: %w", frame, err)
		}

		pass := feature.Pass()
		logger.Info("frame",
			"index", frame,
			"size", fmt.Sprintf("%dx%d", width, height),
			"state", pass.State(),
			"skipped", pass.Skipped(),
			"volumes", pass.Registry().Len(),
			"allocations", pass.Target().Allocations(),
			"in_flight", pass.Helper().InFlight(),
		)
	}
	return nil
}

// scene stands in for the host renderer: a primary output with depth and
// an optional custom mesh drawn over the fog.
type scene struct {
	device hal.Device
	output *target.Offscreen
	depth  *target.Offscreen
	meshes *geometry.MeshCache
	mesh   *geometry.Mesh
}

func newScene(g *gpu, cfg config, h *raster.Helper) (*scene, error) {
	s := &scene{
		device: g.device,
		output: target.NewOffscreen(g.device, "primary_output"),
		depth:  target.NewOffscreen(g.device, "scene_depth"),
	}
	s.output.SetDeferrer(h)
	s.depth.SetDeferrer(h)
	if cfg.gltf != "" {
		s.meshes = geometry.NewMeshCache(g.device, g.queue, 0)
		s.meshes.SetDeferrer(h)
		mesh, err := s.meshes.Load(cfg.gltf, 0)
		if err != nil {
			s.meshes.Evict()
			return nil, err
		}
		s.mesh = mesh
	}
	return s, nil
}

func (s *scene) viewport(width, height, frame int) (fog.Viewport, error) {
	d := target.Descriptor{
		Width:       width,
		Height:      height,
		Format:      gputypes.TextureFormatRGBA8Unorm,
		DepthFormat: gputypes.TextureFormatDepth32Float,
	}
	if _, err := s.output.SetDescriptor(d); err != nil {
		return fog.Viewport{}, err
	}
	if _, err := s.depth.SetDescriptor(d); err != nil {
		return fog.Viewport{}, err
	}
	//nolint:gosec // G115: viewport sizes fit float32
	aspect := float32(width) / float32(height)
	return fog.Viewport{
		Width:   width,
		Height:  height,
		Primary: true,
		Output: raster.Output{
			Color:       s.output.ColorView(),
			ColorFormat: s.output.ColorFormat(),
			Depth:       s.output.DepthView(),
			DepthFormat: s.output.DepthFormat(),
			Width:       width,
			Height:      height,
		},
		Camera: camera.DefaultView(aspect),
		Time:   float32(frame) / 60,
	}, nil
}

// overlay copies the scene depth into the output and draws the custom mesh
// textured with the last fog image, depth tested against the scene.
func (s *scene) overlay(pass *fog.Pass, v fog.Viewport) error {
	if s.mesh == nil || !pass.Target().IsAllocated() {
		return nil
	}
	h := pass.Helper()
	f, err := h.BeginFrame("fogdemo_overlay")
	if err != nil {
		return err
	}
	defer f.Release()

	if err := s.depth.Clear(f.Encoder(), gputypes.Color{}, target.DefaultClearDepth); err != nil {
		return err
	}
	if err := h.CopyDepthOntoPrimaryOutput(f, s.depth, v.Output); err != nil {
		return err
	}
	model := f32.Mat4{
		0.5, 0, 0, 0,
		0, 0.5, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0, 1,
	}
	if err := h.RasterizeOntoPrimaryOutput(f, pass.Target().Front(), s.depth, s.mesh, &model, v.Output, nil); err != nil {
		return err
	}
	return f.Submit()
}

// close waits for the frames still drawing into the scene, then releases
// it. The scene is released even when the wait fails.
func (s *scene) close() error {
	err := s.device.WaitIdle()
	s.release()
	if err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	return nil
}

func (s *scene) release() {
	if s.mesh != nil {
		s.mesh.Release()
		s.meshes.Evict()
	}
	s.depth.Release()
	s.output.Release()
}
