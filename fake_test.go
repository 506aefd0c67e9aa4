package willowvr

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func vecNear(a, b mgl64.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-9)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDevice is a scriptable Device. Poses are returned as set; scan and
// process hooks run when the session calls them.
type fakeDevice struct {
	head  Pose
	hands map[ControllerType]Pose
	eyes  [EyeCount]Pose
	w, h  int
	fov   float64

	scan    func(s *Session)
	process func(s *Session)
	scans   int
	updates int

	origin    TrackingOrigin
	originErr error
	recenters int

	submits   int
	visible   bool
	submitErr error
	closed    bool
	closeErr  error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		hands: make(map[ControllerType]Pose),
		eyes: [EyeCount]Pose{
			{Position: mgl64.Vec3{-0.032, 0, 0}, Orientation: mgl64.QuatIdent(), Valid: true},
			{Position: mgl64.Vec3{0.032, 0, 0}, Orientation: mgl64.QuatIdent(), Valid: true},
		},
		w:       200,
		h:       100,
		fov:     100,
		visible: true,
	}
}

func (d *fakeDevice) Description() string { return "fake headset" }
func (d *fakeDevice) BeginFrame(uint64) {}
func (d *fakeDevice) HeadPose() Pose { return d.head }

func (d *fakeDevice) ControllerPose(c *Controller) Pose { return d.hands[c.typ] }

func (d *fakeDevice) EyePose(eye Eye) Pose {
	if eye > EyeRight {
		return IdentityPose
	}
	return d.eyes[eye]
}

func (d *fakeDevice) EyeProjection(_ Eye, near, far float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(90), 1, near, far)
}

func (d *fakeDevice) RenderTargetSize() (w, h int) { return d.w, d.h }
func (d *fakeDevice) FullFov() float64 { return d.fov }

func (d *fakeDevice) SetTrackingOrigin(origin TrackingOrigin) error {
	d.origin = origin
	return d.originErr
}

func (d *fakeDevice) RecenterTrackingOrigin() error {
	d.recenters++
	return nil
}

func (d *fakeDevice) ScanControllers(s *Session) {
	d.scans++
	if d.scan != nil {
		d.scan(s)
	}
}

func (d *fakeDevice) ProcessEvents(s *Session) {
	d.updates++
	if d.process != nil {
		d.process(s)
	}
}

func (d *fakeDevice) SubmitFrame(uint64, *ebiten.Image, [EyeCount]Rect) (bool, error) {
	d.submits++
	return d.visible, d.submitErr
}

func (d *fakeDevice) MirrorTexture() *ebiten.Image { return nil }

func (d *fakeDevice) Close() error {
	d.closed = true
	return d.closeErr
}

// fakeBackend hands out one fakeDevice per Open.
type fakeBackend struct {
	name    string
	openErr error
	devices []*fakeDevice
	closed  bool
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Open(SessionOptions, int) (Device, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	d := newFakeDevice()
	b.devices = append(b.devices, d)
	return d, nil
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

// fakeSink records every event it receives.
type fakeSink struct {
	events []ControllerEvent
}

func (s *fakeSink) EmitEvent(ev ControllerEvent) { s.events = append(s.events, ev) }

// fakeClock is a settable time source for scan interval tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession(dev Device) *Session {
	return newTestSessionWith(dev, DefaultSessionOptions())
}

func newTestSessionWith(dev Device, opts SessionOptions) *Session {
	s := newSession(ApiCustom, 0, dev, opts.normalized(), discardLogger())
	s.begin()
	return s
}

// headPose builds a valid pose at position with a yaw about +Y.
func headPose(position mgl64.Vec3, yaw float64) Pose {
	return Pose{Position: position, Orientation: mgl64.QuatRotate(yaw, up), Valid: true}
}
