package fog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/fog/volume"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"
)

// plainProvider is a device provider without HAL accessors.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return nil }
func (plainProvider) Queue() gpucontext.Queue               { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (plainProvider) Adapter() gpucontext.Adapter           { return nil }
func (plainProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

// halBackedProvider exposes HAL handles the way wgpu-backed providers do.
type halBackedProvider struct {
	plainProvider
	device any
	queue  any
}

func (p halBackedProvider) HalDevice() any { return p.device }
func (p halBackedProvider) HalQueue() any  { return p.queue }

func TestNewFeatureFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	f, err := NewFeature(halBackedProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("NewFeature failed: %v", err)
	}
	defer f.Destroy()
	if f.Pass().Helper().Device() != device {
		t.Error("feature does not use the provider's device")
	}
}

func TestNewFeatureProviderErrors(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
	}{
		{"nil", nil},
		{"no HAL accessors", plainProvider{}},
		{"wrong device type", halBackedProvider{device: "gpu", queue: queue}},
		{"wrong queue type", halBackedProvider{device: device, queue: 42}},
		{"nil handles", halBackedProvider{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFeature(tt.provider); !errors.Is(err, ErrNoHALDevice) {
				t.Errorf("NewFeature error = %v, want ErrNoHALDevice", err)
			}
		})
	}
}

func TestFeatureEnqueuesPrimaryOnly(t *testing.T) {
	base, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	device := &spyDevice{Device: base}

	f, err := NewFeatureWithDevice(device, queue)
	if err != nil {
		t.Fatalf("NewFeatureWithDevice failed: %v", err)
	}
	t.Cleanup(f.Destroy)
	f.Registry().Register(volume.NewFog(f32.Vec3{0, 0, -10}))

	fx := &fixture{base: base, queue: queue, device: device, pass: f.Pass()}
	v := fx.viewport(t, 320, 200)

	var list PassList
	secondary := v
	secondary.Primary = false
	if f.AddRenderPasses(&list, secondary) {
		t.Error("AddRenderPasses enqueued for a secondary camera")
	}
	if list.Len() != 0 {
		t.Fatalf("list has %d passes for a secondary camera, want 0", list.Len())
	}

	if !f.AddRenderPasses(&list, v) {
		t.Fatal("AddRenderPasses did not enqueue for the primary camera")
	}
	if list.Len() != 1 {
		t.Fatalf("list has %d passes, want 1", list.Len())
	}
	if err := list.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if list.Len() != 0 {
		t.Error("Run should empty the list")
	}
	if n := device.encoderCount(); n != 1 {
		t.Errorf("recorded %d encoders, want 1", n)
	}
	if n := len(device.lastEncoder().accumulations()); n != 1 {
		t.Errorf("recorded %d accumulation draws, want 1", n)
	}
}

func TestFeatureNilQueue(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	f, err := NewFeatureWithDevice(device, queue)
	if err != nil {
		t.Fatalf("NewFeatureWithDevice failed: %v", err)
	}
	defer f.Destroy()
	if f.AddRenderPasses(nil, Viewport{Primary: true}) {
		t.Error("AddRenderPasses reported success with a nil queue")
	}
}

// recordingPass logs its calls into a shared trace.
type recordingPass struct {
	name       string
	event      PassEvent
	trace      *[]string
	setupErr   error
	executeErr error
}

func (p *recordingPass) Event() PassEvent { return p.event }

func (p *recordingPass) Setup(Viewport) error {
	*p.trace = append(*p.trace, "setup "+p.name)
	return p.setupErr
}

func (p *recordingPass) Execute(Viewport) error {
	*p.trace = append(*p.trace, "execute "+p.name)
	return p.executeErr
}

func TestPassListOrdersByEvent(t *testing.T) {
	var trace []string
	var list PassList
	list.EnqueuePass(&recordingPass{name: "post", event: AfterRenderingPostProcessing, trace: &trace}, Viewport{})
	list.EnqueuePass(&recordingPass{name: "fog", event: BeforeRenderingPostProcessing, trace: &trace}, Viewport{})
	list.EnqueuePass(&recordingPass{name: "opaque", event: AfterRenderingOpaques, trace: &trace}, Viewport{})
	list.EnqueuePass(&recordingPass{name: "fog2", event: BeforeRenderingPostProcessing, trace: &trace}, Viewport{})

	if err := list.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{
		"setup opaque", "setup fog", "setup fog2", "setup post",
		"execute opaque", "execute fog", "execute fog2", "execute post",
	}
	if fmt.Sprint(trace) != fmt.Sprint(want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestPassListErrors(t *testing.T) {
	errSetup := errors.New("setup failed")
	errExec := errors.New("execute failed")

	t.Run("setup stops the frame", func(t *testing.T) {
		var trace []string
		var list PassList
		list.EnqueuePass(&recordingPass{name: "a", trace: &trace, setupErr: errSetup}, Viewport{})
		list.EnqueuePass(&recordingPass{name: "b", event: AfterRendering, trace: &trace}, Viewport{})

		if err := list.Run(); !errors.Is(err, errSetup) {
			t.Fatalf("Run error = %v, want %v", err, errSetup)
		}
		for _, s := range trace {
			if s == "execute a" || s == "execute b" {
				t.Errorf("%q ran after a setup failure", s)
			}
		}
		if list.Len() != 0 {
			t.Error("list not reset after a failed run")
		}
	})

	t.Run("execute errors are joined", func(t *testing.T) {
		var trace []string
		var list PassList
		list.EnqueuePass(&recordingPass{name: "a", trace: &trace, executeErr: errExec}, Viewport{})
		list.EnqueuePass(&recordingPass{name: "b", event: AfterRendering, trace: &trace}, Viewport{})

		if err := list.Run(); !errors.Is(err, errExec) {
			t.Fatalf("Run error = %v, want %v", err, errExec)
		}
		if trace[len(trace)-1] != "execute b" {
			t.Error("later pass did not run after an execute error")
		}
	})
}

func TestSettingsDefaults(t *testing.T) {
	s := DefaultSettings()
	if s.Event != BeforeRenderingPostProcessing {
		t.Errorf("Event = %v, want BeforeRenderingPostProcessing", s.Event)
	}
	if s.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want RGBA8Unorm", s.Format)
	}
	if s.Filter != gputypes.FilterModeLinear || s.Wrap != gputypes.AddressModeClampToEdge {
		t.Errorf("sampling = %v/%v, want linear/clamp", s.Filter, s.Wrap)
	}
	if s.ClearColor != (gputypes.Color{}) {
		t.Errorf("ClearColor = %v, want transparent black", s.ClearColor)
	}
	if s.TargetName != DefaultTargetName || s.Material != nil || s.InstantiateMaterial {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestWithSettingsEmptyTargetName(t *testing.T) {
	s := DefaultSettings()
	s.TargetName = ""
	fx := newFixture(t, WithSettings(s))
	if fx.pass.Target().Name() != DefaultTargetName {
		t.Errorf("target name = %q, want %q", fx.pass.Target().Name(), DefaultTargetName)
	}
}

var _ hal.Device = (*spyDevice)(nil)
