package willowvr

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// ErrDeviceIndex is returned when a backend has no device at the requested
// index.
var ErrDeviceIndex = errors.New("device index out of range")

// FovPort describes an asymmetric field of view as tangents of the half
// angles from the view axis.
type FovPort struct {
	UpTan, DownTan, LeftTan, RightTan float64
}

// SymmetricFov returns a FovPort with the given full vertical and horizontal
// angles in degrees.
func SymmetricFov(vertical, horizontal float64) FovPort {
	v := math.Tan(mgl64.DegToRad(vertical) / 2)
	h := math.Tan(mgl64.DegToRad(horizontal) / 2)
	return FovPort{UpTan: v, DownTan: v, LeftTan: h, RightTan: h}
}

// Projection returns the off-axis perspective matrix for this field of view.
func (f FovPort) Projection(near, far float64) mgl64.Mat4 {
	return mgl64.Frustum(-f.LeftTan*near, f.RightTan*near, -f.DownTan*near, f.UpTan*near, near, far)
}

// VerticalDegrees returns the full vertical angle in degrees.
func (f FovPort) VerticalDegrees() float64 {
	return mgl64.RadToDeg(math.Atan(f.UpTan) + math.Atan(f.DownTan))
}

// OculusHmdDesc describes a headset reported by an Oculus-style runtime.
type OculusHmdDesc struct {
	ProductName string
	Resolution  [2]int
	DefaultFov  [EyeCount]FovPort
}

// OculusEyeRenderDesc is the runtime's render description of one eye.
type OculusEyeRenderDesc struct {
	Fov          FovPort
	HmdToEyePose Pose
}

// OculusTrackingState is one pose sample for the head and both hands.
type OculusTrackingState struct {
	HeadPose  Pose
	HandPoses [2]Pose
}

// OculusLayer is the eye-fov layer submitted to the compositor.
type OculusLayer struct {
	FrameIndex  uint64
	Texture     *ebiten.Image
	Viewports   [EyeCount]Rect
	Fov         [EyeCount]FovPort
	RenderPoses [EyeCount]Pose
}

// OculusRuntime is the opaque driver of an Oculus-style device: bitmask
// controller input, a controller-type mask, and a single eye-fov layer.
type OculusRuntime interface {
	Create() (OculusHmdDesc, error)
	Destroy()
	EyeRenderDesc(eye Eye, fov FovPort) OculusEyeRenderDesc
	FovTextureSize(eye Eye, fov FovPort, pixelsPerDisplayPixel float64) (w, h int)
	TrackingState(frameIndex uint64) OculusTrackingState
	ConnectedControllerTypes() uint32
	InputState(controllerType uint32) (OculusInputState, error)
	SetTrackingOriginType(origin TrackingOrigin) error
	RecenterTrackingOrigin() error
	SubmitFrame(layer OculusLayer) (visible bool, err error)
	MirrorTexture() *ebiten.Image
}

// OculusBackend opens devices through an OculusRuntime.
type OculusBackend struct {
	name string
	open func() (OculusRuntime, error)
}

// NewOculusBackend returns a backend that creates a runtime with open for
// each session.
func NewOculusBackend(name string, open func() (OculusRuntime, error)) *OculusBackend {
	return &OculusBackend{name: name, open: open}
}

// Name returns the backend name.
func (b *OculusBackend) Name() string { return b.name }

// Open creates the runtime and connects to its single headset.
func (b *OculusBackend) Open(opts SessionOptions, deviceIndex int) (Device, error) {
	if deviceIndex != 0 {
		return nil, fmt.Errorf("%s: %d: %w", b.name, deviceIndex, ErrDeviceIndex)
	}
	rt, err := b.open()
	if err != nil {
		return nil, fmt.Errorf("%s: open runtime: %w", b.name, err)
	}
	desc, err := rt.Create()
	if err != nil {
		rt.Destroy()
		return nil, fmt.Errorf("%s: create session: %w", b.name, err)
	}
	return newOculusDevice(rt, desc, opts.ScreenPercentage), nil
}

// Close is a no-op; runtimes are released per device.
func (b *OculusBackend) Close() error { return nil }

type oculusDevice struct {
	rt       OculusRuntime
	desc     OculusHmdDesc
	eyeDescs [EyeCount]OculusEyeRenderDesc
	width    int
	height   int
	state    OculusTrackingState
	visible  bool
}

func newOculusDevice(rt OculusRuntime, desc OculusHmdDesc, screenPercentage float64) *oculusDevice {
	d := &oculusDevice{rt: rt, desc: desc, visible: true}
	if screenPercentage <= 0 {
		screenPercentage = 1
	}
	for e := EyeLeft; e <= EyeRight; e++ {
		d.eyeDescs[e] = rt.EyeRenderDesc(e, desc.DefaultFov[e])
		w, h := rt.FovTextureSize(e, desc.DefaultFov[e], 1)
		d.width += int(math.Round(float64(w) * screenPercentage))
		d.height = max(d.height, int(math.Round(float64(h)*screenPercentage)))
	}
	return d
}

func (d *oculusDevice) Description() string { return d.desc.ProductName }

func (d *oculusDevice) BeginFrame(frameIndex uint64) {
	d.state = d.rt.TrackingState(frameIndex)
}

// HeadPose returns the sampled head pose. While the compositor is not
// showing the application the pose is reported invalid.
func (d *oculusDevice) HeadPose() Pose {
	p := d.state.HeadPose
	p.Valid = p.Valid && d.visible
	return p
}

func (d *oculusDevice) ControllerPose(c *Controller) Pose {
	switch c.typ {
	case ControllerLeft:
		return d.state.HandPoses[handLeft]
	case ControllerRight:
		return d.state.HandPoses[handRight]
	}
	return Pose{}
}

func (d *oculusDevice) EyePose(eye Eye) Pose {
	if eye > EyeRight {
		return IdentityPose
	}
	return d.eyeDescs[eye].HmdToEyePose
}

func (d *oculusDevice) EyeProjection(eye Eye, near, far float64) mgl64.Mat4 {
	if eye > EyeRight {
		return identity
	}
	return d.eyeDescs[eye].Fov.Projection(near, far)
}

func (d *oculusDevice) RenderTargetSize() (w, h int) { return d.width, d.height }

func (d *oculusDevice) FullFov() float64 {
	return d.desc.DefaultFov[EyeLeft].VerticalDegrees()
}

func (d *oculusDevice) SetTrackingOrigin(origin TrackingOrigin) error {
	if origin == TrackingOriginDeviceDefault {
		return nil
	}
	return d.rt.SetTrackingOriginType(origin)
}

func (d *oculusDevice) RecenterTrackingOrigin() error {
	return d.rt.RecenterTrackingOrigin()
}

// ScanControllers adds controllers the runtime reports connected and
// disconnects the ones it no longer reports.
func (d *oculusDevice) ScanControllers(s *Session) {
	mask := d.rt.ConnectedControllerTypes()
	for i := 0; i < oculusControllerScanBits; i++ {
		bit := uint32(1) << uint(i)
		t := oculusControllerType(bit)
		if t == ControllerUnknown {
			continue
		}
		present := s.HasController(t)
		switch {
		case mask&bit != 0 && !present:
			spec, _ := oculusSpecFor(bit)
			s.AddController(NewController(s, s.api, spec))
		case mask&bit == 0 && present:
			s.DisconnectController(t)
		}
	}
}

// ProcessEvents samples input for every connected controller.
func (d *oculusDevice) ProcessEvents(s *Session) {
	if st, ok := d.rt.(stepper); ok {
		st.StepInput(frameDelta())
	}
	for _, c := range snapshot(s.controllers) {
		bit := oculusControllerBit(c.typ)
		if bit == 0 || s.Controller(c.typ) != c {
			continue
		}
		in, err := d.rt.InputState(bit)
		if err != nil {
			continue
		}
		c.processOculusInput(in)
	}
}

func (d *oculusDevice) SubmitFrame(frameIndex uint64, target *ebiten.Image, viewports [EyeCount]Rect) (bool, error) {
	layer := OculusLayer{
		FrameIndex: frameIndex,
		Texture:    target,
		Viewports:  viewports,
	}
	head := d.state.HeadPose.Matrix()
	for e := EyeLeft; e <= EyeRight; e++ {
		layer.Fov[e] = d.eyeDescs[e].Fov
		layer.RenderPoses[e] = PoseFromMatrix(head.Mul4(d.eyeDescs[e].HmdToEyePose.Matrix()))
	}
	visible, err := d.rt.SubmitFrame(layer)
	if err != nil {
		return d.visible, err
	}
	d.visible = visible
	return visible, nil
}

func (d *oculusDevice) MirrorTexture() *ebiten.Image { return d.rt.MirrorTexture() }

func (d *oculusDevice) Close() error {
	d.rt.Destroy()
	return nil
}

// oculusControllerBit maps a controller type back to its runtime bit.
func oculusControllerBit(t ControllerType) uint32 {
	switch t {
	case ControllerLeft:
		return OculusControllerLTouch
	case ControllerRight:
		return OculusControllerRTouch
	case ControllerRemote:
		return OculusControllerRemote
	case ControllerXbox:
		return OculusControllerXbox
	}
	return 0
}

// snapshot copies a controller list so callbacks may connect or disconnect
// while it is iterated.
func snapshot(cs []*Controller) []*Controller {
	return append([]*Controller(nil), cs...)
}
