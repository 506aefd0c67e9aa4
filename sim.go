package willowvr

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// Simulator defaults.
const (
	simEyeWidth    = 960
	simEyeHeight   = 1080
	simIPD         = 0.064
	simEyeHeightM  = 1.6
	simMoveSpeed   = 1.5 // meters per second
	simTurnSpeed   = 1.5 // radians per second
	simMaxPitch    = math.Pi/2 - 0.01
	simHandTrigger = touchHandTriggerMax
)

// ErrNotCreated is returned by simulator calls made before Create.
var ErrNotCreated = errors.New("simulator: not created")

// simFrame is one queued input mutation, applied on a single frame.
type simFrame struct {
	controller uint32
	apply      func(*simInput)
}

// simInput is the raw input of one simulated controller, split by source.
// Injected buttons are ORed with the desktop; an injected trigger or stick
// value replaces the desktop value from the frame it is applied on.
type simInput struct {
	desktop  OculusInputState
	injected OculusInputState
	// live is nonzero in every slot holding an injected value.
	live OculusInputState
}

func (in *simInput) merged() OculusInputState {
	out := in.desktop
	out.Buttons |= in.injected.Buttons
	for i := range 2 {
		if in.live.IndexTrigger[i] != 0 {
			out.IndexTrigger[i] = in.injected.IndexTrigger[i]
		}
		if in.live.HandTrigger[i] != 0 {
			out.HandTrigger[i] = in.injected.HandTrigger[i]
		}
		if in.live.Thumbstick[i] != (mgl64.Vec2{}) {
			out.Thumbstick[i] = in.injected.Thumbstick[i]
		}
	}
	return out
}

// SimRuntime is an OculusRuntime backed by the desktop. With ReadInput set,
// the keyboard moves the head (WASD, Q/E, arrows), the remote maps to
// Enter/Backspace/IJKL, the mouse drives the right Touch triggers, 1/2 press
// A/B, and a standard gamepad appears as the Xbox controller. Injected
// presses hold alongside the desktop until released, and injected trigger
// and stick values override the desktop until cleared.
type SimRuntime struct {
	// ReadInput polls ebiten keyboard, mouse, and gamepads each frame.
	ReadInput bool
	// ProductName is reported as the headset description.
	ProductName string

	eyeW, eyeH int
	fov        FovPort
	ipd        float64

	created   bool
	visible   bool
	connected uint32
	origin    TrackingOrigin

	headPos    mgl64.Vec3
	yaw, pitch float64
	headValid  bool
	hands      [2]Pose
	handOffset [2]mgl64.Vec3

	host   hostInput
	inputs map[uint32]*simInput
	queue  []simFrame

	submits   int
	lastLayer OculusLayer
	recenters int
}

// NewSimRuntime creates a simulator with a Touch pair and a remote
// connected.
func NewSimRuntime(readInput bool) *SimRuntime {
	return &SimRuntime{
		ReadInput:   readInput,
		ProductName: "Willow VR Simulator",
		eyeW:        simEyeWidth,
		eyeH:        simEyeHeight,
		fov:         SymmetricFov(90, 90),
		ipd:         simIPD,
		visible:     true,
		headValid:   true,
		connected:   OculusControllerLTouch | OculusControllerRTouch | OculusControllerRemote,
		origin:      TrackingOriginStanding,
		headPos:     mgl64.Vec3{0, simEyeHeightM, 0},
		handOffset: [2]mgl64.Vec3{
			{-0.2, -0.3, -0.4},
			{0.2, -0.3, -0.4},
		},
		host:   ebitenHost{},
		inputs: make(map[uint32]*simInput),
	}
}

// NewSimBackend returns a backend whose sessions run on a SimRuntime that
// reads desktop input. Register it under ApiSimulator.
func NewSimBackend() *OculusBackend {
	return NewOculusBackend("simulator", func() (OculusRuntime, error) {
		return NewSimRuntime(true), nil
	})
}

// SetEyeResolution sets the per-eye render size reported to the session.
func (r *SimRuntime) SetEyeResolution(w, h int) {
	r.eyeW, r.eyeH = w, h
}

// SetFov sets the field of view of both eyes.
func (r *SimRuntime) SetFov(f FovPort) { r.fov = f }

// --- OculusRuntime ---

func (r *SimRuntime) Create() (OculusHmdDesc, error) {
	r.created = true
	return OculusHmdDesc{
		ProductName: r.ProductName,
		Resolution:  [2]int{2 * r.eyeW, r.eyeH},
		DefaultFov:  [EyeCount]FovPort{r.fov, r.fov},
	}, nil
}

func (r *SimRuntime) Destroy() {
	r.created = false
	r.queue = nil
}

func (r *SimRuntime) EyeRenderDesc(eye Eye, fov FovPort) OculusEyeRenderDesc {
	x := r.ipd / 2
	if eye == EyeLeft {
		x = -x
	}
	return OculusEyeRenderDesc{
		Fov:          fov,
		HmdToEyePose: Pose{Position: mgl64.Vec3{x, 0, 0}, Orientation: mgl64.QuatIdent(), Valid: true},
	}
}

func (r *SimRuntime) FovTextureSize(_ Eye, _ FovPort, pixelsPerDisplayPixel float64) (w, h int) {
	return int(float64(r.eyeW) * pixelsPerDisplayPixel), int(float64(r.eyeH) * pixelsPerDisplayPixel)
}

func (r *SimRuntime) TrackingState(uint64) OculusTrackingState {
	head := r.headPose()
	rot := head.Orientation
	var st OculusTrackingState
	st.HeadPose = head
	for i := range r.hands {
		if r.connected&(OculusControllerLTouch<<uint(i)) == 0 {
			continue
		}
		st.HandPoses[i] = Pose{
			Position:    head.Position.Add(rot.Rotate(r.handOffset[i])),
			Orientation: rot,
			Valid:       head.Valid,
		}
	}
	r.hands = st.HandPoses
	return st
}

func (r *SimRuntime) ConnectedControllerTypes() uint32 { return r.connected }

func (r *SimRuntime) InputState(controllerType uint32) (OculusInputState, error) {
	if !r.created {
		return OculusInputState{}, ErrNotCreated
	}
	if in, ok := r.inputs[controllerType]; ok {
		return in.merged(), nil
	}
	return OculusInputState{}, nil
}

func (r *SimRuntime) SetTrackingOriginType(origin TrackingOrigin) error {
	if r.origin == origin {
		return nil
	}
	switch origin {
	case TrackingOriginSeated:
		r.headPos[1] -= simEyeHeightM
	case TrackingOriginStanding:
		r.headPos[1] += simEyeHeightM
	}
	r.origin = origin
	return nil
}

// RecenterTrackingOrigin resets heading and horizontal position.
func (r *SimRuntime) RecenterTrackingOrigin() error {
	r.yaw, r.pitch = 0, 0
	r.headPos[0], r.headPos[2] = 0, 0
	r.recenters++
	return nil
}

func (r *SimRuntime) SubmitFrame(layer OculusLayer) (bool, error) {
	if !r.created {
		return false, ErrNotCreated
	}
	r.submits++
	r.lastLayer = layer
	return r.visible, nil
}

// MirrorTexture returns nil; the simulator has no distortion pass.
func (r *SimRuntime) MirrorTexture() *ebiten.Image { return nil }

// --- Frame input ---

// StepInput applies one queued injection and, when ReadInput is set,
// samples the current desktop input. Called once per frame before
// controller input is sampled.
func (r *SimRuntime) StepInput(dt float64) {
	if len(r.queue) > 0 {
		f := r.queue[0]
		copy(r.queue, r.queue[1:])
		r.queue = r.queue[:len(r.queue)-1]
		f.apply(r.input(f.controller))
	}
	if r.ReadInput {
		r.pollDesktop(dt)
	}
}

func (r *SimRuntime) input(controller uint32) *simInput {
	in, ok := r.inputs[controller]
	if !ok {
		in = &simInput{}
		r.inputs[controller] = in
	}
	return in
}

func (r *SimRuntime) headPose() Pose {
	q := mgl64.QuatRotate(r.yaw, up).Mul(mgl64.QuatRotate(r.pitch, mgl64.Vec3{1, 0, 0}))
	return Pose{Position: r.headPos, Orientation: q.Normalize(), Valid: r.headValid}
}

// --- State control ---

// SetHeadPose places the head directly. Orientation is reduced to yaw and
// pitch.
func (r *SimRuntime) SetHeadPose(position mgl64.Vec3, yaw, pitch float64) {
	r.headPos = position
	r.yaw = yaw
	r.pitch = math.Max(-simMaxPitch, math.Min(pitch, simMaxPitch))
}

// SetHeadTracked toggles the validity of head poses, simulating tracking
// loss.
func (r *SimRuntime) SetHeadTracked(tracked bool) { r.headValid = tracked }

// SetVisible sets whether submitted frames are reported as displayed.
func (r *SimRuntime) SetVisible(visible bool) { r.visible = visible }

// Connect reports a controller type as present on the next scan.
func (r *SimRuntime) Connect(t ControllerType) {
	r.connected |= oculusControllerBit(t)
}

// Disconnect reports a controller type as absent on the next scan.
func (r *SimRuntime) Disconnect(t ControllerType) {
	bit := oculusControllerBit(t)
	r.connected &^= bit
	delete(r.inputs, bit)
}

// Submits returns the number of frames submitted.
func (r *SimRuntime) Submits() int { return r.submits }

// LastLayer returns the most recently submitted layer.
func (r *SimRuntime) LastLayer() OculusLayer { return r.lastLayer }

// Pending returns the number of queued injection frames.
func (r *SimRuntime) Pending() int { return len(r.queue) }

// pollDesktop maps ebiten input onto the head and the simulated controllers.
func (r *SimRuntime) pollDesktop(dt float64) {
	r.pollHead(dt)

	remote := &r.input(OculusControllerRemote).desktop
	remote.Buttons = r.keyBits(map[ebiten.Key]uint32{
		ebiten.KeyEnter:     OculusButtonEnter,
		ebiten.KeyBackspace: OculusButtonBack,
		ebiten.KeyI:         OculusButtonUp,
		ebiten.KeyK:         OculusButtonDown,
		ebiten.KeyJ:         OculusButtonLeft,
		ebiten.KeyL:         OculusButtonRight,
	})

	right := &r.input(OculusControllerRTouch).desktop
	right.Buttons = r.keyBits(map[ebiten.Key]uint32{
		ebiten.KeyDigit1: OculusButtonA,
		ebiten.KeyDigit2: OculusButtonB,
	})
	right.IndexTrigger[handRight] = boolValue(r.host.IsMouseButtonPressed(ebiten.MouseButtonLeft), 1)
	right.HandTrigger[handRight] = boolValue(r.host.IsMouseButtonPressed(ebiten.MouseButtonRight), simHandTrigger)

	left := &r.input(OculusControllerLTouch).desktop
	left.Buttons = r.keyBits(map[ebiten.Key]uint32{
		ebiten.KeyDigit3: OculusButtonX,
		ebiten.KeyDigit4: OculusButtonY,
	})

	r.pollGamepad()
}

func (r *SimRuntime) pollHead(dt float64) {
	if r.host.IsKeyPressed(ebiten.KeyArrowLeft) {
		r.yaw += simTurnSpeed * dt
	}
	if r.host.IsKeyPressed(ebiten.KeyArrowRight) {
		r.yaw -= simTurnSpeed * dt
	}
	if r.host.IsKeyPressed(ebiten.KeyArrowUp) {
		r.pitch = math.Min(r.pitch+simTurnSpeed*dt, simMaxPitch)
	}
	if r.host.IsKeyPressed(ebiten.KeyArrowDown) {
		r.pitch = math.Max(r.pitch-simTurnSpeed*dt, -simMaxPitch)
	}

	fwd := mgl64.Vec3{-math.Sin(r.yaw), 0, -math.Cos(r.yaw)}
	right := fwd.Cross(up)
	var move mgl64.Vec3
	if r.host.IsKeyPressed(ebiten.KeyW) {
		move = move.Add(fwd)
	}
	if r.host.IsKeyPressed(ebiten.KeyS) {
		move = move.Sub(fwd)
	}
	if r.host.IsKeyPressed(ebiten.KeyD) {
		move = move.Add(right)
	}
	if r.host.IsKeyPressed(ebiten.KeyA) {
		move = move.Sub(right)
	}
	if r.host.IsKeyPressed(ebiten.KeyE) {
		move = move.Add(up)
	}
	if r.host.IsKeyPressed(ebiten.KeyQ) {
		move = move.Sub(up)
	}
	if move.Len() > 0 {
		r.headPos = r.headPos.Add(move.Normalize().Mul(simMoveSpeed * dt))
	}
}

var gamepadButtons = map[ebiten.StandardGamepadButton]uint32{
	ebiten.StandardGamepadButtonRightBottom:   OculusButtonA,
	ebiten.StandardGamepadButtonRightRight:    OculusButtonB,
	ebiten.StandardGamepadButtonRightLeft:     OculusButtonX,
	ebiten.StandardGamepadButtonRightTop:      OculusButtonY,
	ebiten.StandardGamepadButtonLeftStick:     OculusButtonLThumb,
	ebiten.StandardGamepadButtonRightStick:    OculusButtonRThumb,
	ebiten.StandardGamepadButtonFrontTopLeft:  OculusButtonLShoulder,
	ebiten.StandardGamepadButtonFrontTopRight: OculusButtonRShoulder,
	ebiten.StandardGamepadButtonCenterRight:   OculusButtonEnter,
	ebiten.StandardGamepadButtonCenterLeft:    OculusButtonBack,
	ebiten.StandardGamepadButtonCenterCenter:  OculusButtonHome,
	ebiten.StandardGamepadButtonLeftTop:       OculusButtonUp,
	ebiten.StandardGamepadButtonLeftBottom:    OculusButtonDown,
	ebiten.StandardGamepadButtonLeftLeft:      OculusButtonLeft,
	ebiten.StandardGamepadButtonLeftRight:     OculusButtonRight,
}

// pollGamepad exposes the first standard-layout gamepad as the Xbox
// controller.
func (r *SimRuntime) pollGamepad() {
	pad, found := r.host.StandardGamepad()
	if !found {
		r.connected &^= OculusControllerXbox
		return
	}
	r.connected |= OculusControllerXbox

	in := &r.input(OculusControllerXbox).desktop
	in.Buttons = 0
	for b, bit := range gamepadButtons {
		if r.host.IsStandardGamepadButtonPressed(pad, b) {
			in.Buttons |= bit
		}
	}
	in.IndexTrigger[handLeft] = r.host.StandardGamepadButtonValue(pad, ebiten.StandardGamepadButtonFrontBottomLeft)
	in.IndexTrigger[handRight] = r.host.StandardGamepadButtonValue(pad, ebiten.StandardGamepadButtonFrontBottomRight)
	in.Thumbstick[handLeft] = mgl64.Vec2{
		r.host.StandardGamepadAxisValue(pad, ebiten.StandardGamepadAxisLeftStickHorizontal),
		-r.host.StandardGamepadAxisValue(pad, ebiten.StandardGamepadAxisLeftStickVertical),
	}
	in.Thumbstick[handRight] = mgl64.Vec2{
		r.host.StandardGamepadAxisValue(pad, ebiten.StandardGamepadAxisRightStickHorizontal),
		-r.host.StandardGamepadAxisValue(pad, ebiten.StandardGamepadAxisRightStickVertical),
	}
}

func (r *SimRuntime) keyBits(keys map[ebiten.Key]uint32) uint32 {
	var bits uint32
	for k, bit := range keys {
		if r.host.IsKeyPressed(k) {
			bits |= bit
		}
	}
	return bits
}

func boolValue(on bool, v float64) float64 {
	if on {
		return v
	}
	return 0
}

// hostInput is the desktop input the simulator samples.
type hostInput interface {
	IsKeyPressed(k ebiten.Key) bool
	IsMouseButtonPressed(b ebiten.MouseButton) bool
	// StandardGamepad returns the first gamepad with the standard layout.
	StandardGamepad() (ebiten.GamepadID, bool)
	IsStandardGamepadButtonPressed(id ebiten.GamepadID, b ebiten.StandardGamepadButton) bool
	StandardGamepadButtonValue(id ebiten.GamepadID, b ebiten.StandardGamepadButton) float64
	StandardGamepadAxisValue(id ebiten.GamepadID, a ebiten.StandardGamepadAxis) float64
}

// ebitenHost reads input through ebiten.
type ebitenHost struct{}

func (ebitenHost) IsKeyPressed(k ebiten.Key) bool { return ebiten.IsKeyPressed(k) }

func (ebitenHost) IsMouseButtonPressed(b ebiten.MouseButton) bool {
	return ebiten.IsMouseButtonPressed(b)
}

func (ebitenHost) StandardGamepad() (ebiten.GamepadID, bool) {
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			return id, true
		}
	}
	return 0, false
}

func (ebitenHost) IsStandardGamepadButtonPressed(id ebiten.GamepadID, b ebiten.StandardGamepadButton) bool {
	return ebiten.IsStandardGamepadButtonPressed(id, b)
}

func (ebitenHost) StandardGamepadButtonValue(id ebiten.GamepadID, b ebiten.StandardGamepadButton) float64 {
	return ebiten.StandardGamepadButtonValue(id, b)
}

func (ebitenHost) StandardGamepadAxisValue(id ebiten.GamepadID, a ebiten.StandardGamepadAxis) float64 {
	return ebiten.StandardGamepadAxisValue(id, a)
}

// stepper is implemented by runtimes that advance simulated input once per
// frame.
type stepper interface {
	StepInput(dt float64)
}

// Simulator returns the session's SimRuntime, or nil when the session runs
// on real hardware.
func (s *Session) Simulator() *SimRuntime {
	if d, ok := s.device.(*oculusDevice); ok {
		if sim, ok := d.rt.(*SimRuntime); ok {
			return sim
		}
	}
	return nil
}
