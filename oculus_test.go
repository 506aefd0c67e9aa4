package willowvr

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newSimSession(t *testing.T) (*Session, *SimRuntime) {
	t.Helper()
	sim := NewSimRuntime(false)
	b := NewOculusBackend("sim", func() (OculusRuntime, error) { return sim, nil })
	dev, err := b.Open(DefaultSessionOptions(), 0)
	if err != nil {
		t.Fatal(err)
	}
	s := newSession(ApiCustom, 0, dev, DefaultSessionOptions(), discardLogger())
	s.begin()
	return s, sim
}

func TestOculusBackendOpen(t *testing.T) {
	b := NewOculusBackend("sim", func() (OculusRuntime, error) { return NewSimRuntime(false), nil })
	if _, err := b.Open(DefaultSessionOptions(), 1); !errors.Is(err, ErrDeviceIndex) {
		t.Errorf("err = %v, want ErrDeviceIndex", err)
	}

	openErr := errors.New("service not running")
	bad := NewOculusBackend("bad", func() (OculusRuntime, error) { return nil, openErr })
	if _, err := bad.Open(DefaultSessionOptions(), 0); !errors.Is(err, openErr) {
		t.Errorf("err = %v, want wrapped open error", err)
	}
}

// noHeadset fails session creation the way a runtime with no headset
// attached does.
type noHeadset struct {
	*SimRuntime
	destroyed int
}

var errNoHeadset = errors.New("no headset")

func (r *noHeadset) Create() (OculusHmdDesc, error) { return OculusHmdDesc{}, errNoHeadset }
func (r *noHeadset) Destroy() { r.destroyed++ }

func TestOculusBackendCreateFailureReleasesRuntime(t *testing.T) {
	rt := &noHeadset{SimRuntime: NewSimRuntime(false)}
	b := NewOculusBackend("sim", func() (OculusRuntime, error) { return rt, nil })
	if _, err := b.Open(DefaultSessionOptions(), 0); !errors.Is(err, errNoHeadset) {
		t.Errorf("err = %v, want wrapped create error", err)
	}
	if rt.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", rt.destroyed)
	}
}

func TestOculusDeviceDescription(t *testing.T) {
	s, sim := newSimSession(t)
	if s.Simulator() != sim {
		t.Fatal("Simulator() should return the runtime")
	}
	if got := s.Hmd().Description(); got != "Willow VR Simulator" {
		t.Errorf("Description = %q", got)
	}
	w, h := s.Hmd().RenderTargetSize()
	if w != 2*simEyeWidth || h != simEyeHeight {
		t.Errorf("RenderTargetSize = %dx%d, want %dx%d", w, h, 2*simEyeWidth, simEyeHeight)
	}
	if !approxEqual(s.Hmd().FullFov(), 90, 1e-9) {
		t.Errorf("FullFov = %v, want 90", s.Hmd().FullFov())
	}
	assertVec(t, "left eye", s.Hmd().EyeOffset(EyeLeft), mgl64.Vec3{-simIPD / 2, 0, 0})
}

func TestOculusScreenPercentage(t *testing.T) {
	sim := NewSimRuntime(false)
	opts := DefaultSessionOptions()
	opts.ScreenPercentage = 0.5
	dev, err := NewOculusBackend("sim", func() (OculusRuntime, error) { return sim, nil }).Open(opts, 0)
	if err != nil {
		t.Fatal(err)
	}
	w, h := dev.RenderTargetSize()
	if w != simEyeWidth || h != simEyeHeight/2 {
		t.Errorf("RenderTargetSize = %dx%d, want %dx%d", w, h, simEyeWidth, simEyeHeight/2)
	}
}

func TestOculusScanControllers(t *testing.T) {
	s, sim := newSimSession(t)
	want := []ControllerType{ControllerLeft, ControllerRight, ControllerRemote}
	if len(s.Controllers()) != len(want) {
		t.Fatalf("controllers = %d, want %d", len(s.Controllers()), len(want))
	}
	for i, c := range s.Controllers() {
		if c.Type() != want[i] {
			t.Errorf("controller %d = %v, want %v", i, c.Type(), want[i])
		}
	}

	var gone []ControllerType
	s.OnControllerDisconnected(func(c *Controller) { gone = append(gone, c.Type()) })
	sim.Disconnect(ControllerRemote)
	sim.Connect(ControllerXbox)
	s.Device().ScanControllers(s)

	if s.HasController(ControllerRemote) {
		t.Error("remote should be disconnected")
	}
	if !s.HasController(ControllerXbox) {
		t.Error("xbox should be connected")
	}
	if len(gone) != 1 || gone[0] != ControllerRemote {
		t.Errorf("disconnected = %v, want [remote]", gone)
	}

	// A second scan with no change is a no-op.
	s.Device().ScanControllers(s)
	if len(s.Controllers()) != 3 {
		t.Errorf("controllers = %d, want 3", len(s.Controllers()))
	}
}

func TestOculusReconnectIsFresh(t *testing.T) {
	s, sim := newSimSession(t)
	old := s.Controller(ControllerRemote)
	sim.Disconnect(ControllerRemote)
	s.Device().ScanControllers(s)
	sim.Connect(ControllerRemote)
	s.Device().ScanControllers(s)
	if c := s.Controller(ControllerRemote); c == nil || c == old {
		t.Error("reconnect should create a new controller")
	}
}

func TestSimInjectPressRelease(t *testing.T) {
	s, sim := newSimSession(t)
	var log []string
	s.OnButtonDown(func(b *Button) { log = append(log, "down "+b.Name()) })
	s.OnButtonUp(func(b *Button) { log = append(log, "up "+b.Name()) })

	sim.InjectPress(ControllerRight, ButtonTouchA)
	if sim.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", sim.Pending())
	}
	s.Update()
	a := s.Controller(ControllerRight).Button(ButtonTouchA)
	if !a.IsDown() {
		t.Fatal("A should be down after the first frame")
	}

	sim.InjectRelease(ControllerRight, ButtonTouchA)
	s.Update()
	if a.State() != StateUp {
		t.Errorf("A = %v, want UP", a.State())
	}

	sim.InjectClick(ControllerRemote, ButtonRemoteEnter)
	s.Update()
	s.Update()

	want := []string{"down A", "up A", "down Enter", "up Enter"}
	if len(log) != len(want) {
		t.Fatalf("events = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestSimInjectUnknownIgnored(t *testing.T) {
	_, sim := newSimSession(t)
	sim.InjectPress(ControllerRemote, ButtonTouchY)
	sim.InjectTrigger(ControllerRemote, TriggerXboxLeft, 1)
	sim.InjectAxis(ControllerLeft, AxisTouchRThumb, mgl64.Vec2{1, 0})
	sim.InjectPress(ControllerCustomStart, ButtonViveGrip)
	if sim.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", sim.Pending())
	}
}

func TestSimInjectTriggerAndAxis(t *testing.T) {
	s, sim := newSimSession(t)
	sim.InjectTrigger(ControllerRight, TriggerTouchRightHand, 0.57)
	sim.InjectAxis(ControllerLeft, AxisTouchLThumb, mgl64.Vec2{0.5, -0.5})
	s.Update()
	s.Update()

	if got := s.Controller(ControllerRight).Trigger(TriggerTouchRightHand).Value(); !approxEqual(got, 0.5, 1e-9) {
		t.Errorf("hand trigger = %v, want 0.5", got)
	}
	if got := s.Controller(ControllerLeft).Axis(AxisTouchLThumb).Value(); got != (mgl64.Vec2{0.5, -0.5}) {
		t.Errorf("thumbstick = %v, want (0.5, -0.5)", got)
	}

	// Values persist across frames with no new injection.
	s.Update()
	if got := s.Controller(ControllerRight).Trigger(TriggerTouchRightHand).Value(); !approxEqual(got, 0.5, 1e-9) {
		t.Errorf("hand trigger after idle frame = %v, want 0.5", got)
	}
}

func TestSimInjectWait(t *testing.T) {
	s, sim := newSimSession(t)
	sim.InjectWait(2)
	sim.InjectPress(ControllerRemote, ButtonRemoteBack)
	s.Update()
	s.Update()
	if s.Controller(ControllerRemote).Button(ButtonRemoteBack).IsDown() {
		t.Error("Back should not be down during the wait")
	}
	s.Update()
	if !s.Controller(ControllerRemote).Button(ButtonRemoteBack).IsDown() {
		t.Error("Back should be down after the wait")
	}
}

func TestOculusVisibilityGatesHeadPose(t *testing.T) {
	s, sim := newSimSession(t)
	dev := s.Device()

	dev.BeginFrame(1)
	if !dev.HeadPose().Valid {
		t.Fatal("head pose should be valid while visible")
	}

	sim.SetVisible(false)
	if err := s.Hmd().SubmitFrame(); err != nil {
		t.Fatal(err)
	}
	if s.Hmd().IsVisible() {
		t.Error("IsVisible = true, want false")
	}
	dev.BeginFrame(2)
	if dev.HeadPose().Valid {
		t.Error("head pose should be invalid while hidden")
	}
	if sim.Submits() != 1 {
		t.Errorf("Submits = %d, want 1", sim.Submits())
	}
}

func TestOculusSubmitLayer(t *testing.T) {
	s, sim := newSimSession(t)
	sim.SetHeadPose(mgl64.Vec3{0, 1.5, 0}, 0, 0)
	s.Device().BeginFrame(7)
	if err := s.Device().(*oculusDevice).rt.RecenterTrackingOrigin(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Device().SubmitFrame(7, nil, eyeViewports(200, 100)); err != nil {
		t.Fatal(err)
	}
	layer := sim.LastLayer()
	if layer.FrameIndex != 7 {
		t.Errorf("FrameIndex = %d, want 7", layer.FrameIndex)
	}
	assertVec(t, "right render pose", layer.RenderPoses[EyeRight].Position, mgl64.Vec3{simIPD / 2, 1.5, 0})
	if layer.Viewports[EyeRight].X != 100 {
		t.Errorf("right viewport X = %v, want 100", layer.Viewports[EyeRight].X)
	}
	if sim.Recenters() != 1 {
		t.Errorf("Recenters = %d, want 1", sim.Recenters())
	}
}

func TestSimHeadTracking(t *testing.T) {
	s, sim := newSimSession(t)
	h := s.Hmd()
	sim.SetHeadTracked(false)
	s.Device().BeginFrame(1)
	h.applyPose(s.Device().HeadPose())
	if h.OriginState() != OriginPending {
		t.Errorf("state = %v, want pending", h.OriginState())
	}

	sim.SetHeadTracked(true)
	sim.SetHeadPose(mgl64.Vec3{0, 1.6, 0}, math.Pi/2, 0)
	s.Device().BeginFrame(2)
	h.applyPose(s.Device().HeadPose())
	if h.OriginState() != OriginActive {
		t.Errorf("state = %v, want active", h.OriginState())
	}
	// Facing -X with the default one meter forward offset.
	assertVec(t, "origin", translation(h.OriginMatrix()), mgl64.Vec3{-1, 1.6, 0})
}

func TestSimTrackingOrigin(t *testing.T) {
	sim := NewSimRuntime(false)
	sim.SetTrackingOriginType(TrackingOriginSeated)
	if sim.headPos[1] != 0 {
		t.Errorf("seated head height = %v, want 0", sim.headPos[1])
	}
	sim.SetTrackingOriginType(TrackingOriginSeated)
	if sim.headPos[1] != 0 {
		t.Errorf("repeated seated head height = %v, want 0", sim.headPos[1])
	}
	sim.SetTrackingOriginType(TrackingOriginStanding)
	if !approxEqual(sim.headPos[1], simEyeHeightM, 1e-9) {
		t.Errorf("standing head height = %v, want %v", sim.headPos[1], simEyeHeightM)
	}
}

func TestSimInputBeforeCreate(t *testing.T) {
	sim := NewSimRuntime(false)
	if _, err := sim.InputState(OculusControllerRemote); !errors.Is(err, ErrNotCreated) {
		t.Errorf("err = %v, want ErrNotCreated", err)
	}
}

func TestFovPort(t *testing.T) {
	f := SymmetricFov(90, 60)
	if !approxEqual(f.UpTan, 1, 1e-12) || !approxEqual(f.DownTan, 1, 1e-12) {
		t.Errorf("vertical tans = %v, %v, want 1, 1", f.UpTan, f.DownTan)
	}
	if !approxEqual(f.VerticalDegrees(), 90, 1e-9) {
		t.Errorf("VerticalDegrees = %v, want 90", f.VerticalDegrees())
	}
	want := mgl64.Perspective(mgl64.DegToRad(90), f.LeftTan/f.UpTan, 0.1, 100)
	if !f.Projection(0.1, 100).ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("Projection = %v, want %v", f.Projection(0.1, 100), want)
	}
}
