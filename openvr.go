package willowvr

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// OpenVRMaxTrackedDeviceCount is the size of the OpenVR pose array.
const OpenVRMaxTrackedDeviceCount = 64

// openVRHmdIndex is the tracked device index of the headset.
const openVRHmdIndex = 0

// openVRFullFov is the vertical field of view used for the combined view.
const openVRFullFov = 110.0

// TrackedDeviceClass classifies an OpenVR tracked device.
type TrackedDeviceClass uint8

const (
	TrackedDeviceClassInvalid    TrackedDeviceClass = 0
	TrackedDeviceClassHMD        TrackedDeviceClass = 1
	TrackedDeviceClassController TrackedDeviceClass = 2
)

// TrackedControllerRole is the hand an OpenVR controller is assigned to.
type TrackedControllerRole uint8

const (
	TrackedControllerRoleInvalid   TrackedControllerRole = 0
	TrackedControllerRoleLeftHand  TrackedControllerRole = 1
	TrackedControllerRoleRightHand TrackedControllerRole = 2
)

// OpenVR event types handled by the backend.
const (
	OpenVREventTrackedDeviceActivated              uint32 = 100
	OpenVREventTrackedDeviceDeactivated            uint32 = 101
	OpenVREventTrackedDeviceUserInteractionStarted uint32 = 103
	OpenVREventTrackedDeviceUserInteractionEnded   uint32 = 104
	OpenVREventTrackedDeviceRoleChanged            uint32 = 108
)

// VREvent is one event from the OpenVR event queue.
type VREvent struct {
	Type               uint32
	TrackedDeviceIndex int
}

// TrackedDevicePose is the pose of one tracked device in absolute tracking
// space.
type TrackedDevicePose struct {
	DeviceToAbsoluteTracking mgl64.Mat4
	PoseIsValid              bool
}

// OpenVRSystem is the opaque driver of an OpenVR-style device: a per-device
// pose array, an event queue, controller packets, and per-eye submission.
type OpenVRSystem interface {
	HmdName() string
	RecommendedRenderTargetSize() (w, h int)
	WaitGetPoses(poses []TrackedDevicePose) error
	TrackedDeviceClass(index int) TrackedDeviceClass
	ControllerRole(index int) TrackedControllerRole
	ControllerState(index int) (VRControllerState, bool)
	PollNextEvent() (VREvent, bool)
	EyeToHeadTransform(eye Eye) mgl64.Mat4
	ProjectionMatrix(eye Eye, near, far float64) mgl64.Mat4
	SetTrackingSpace(origin TrackingOrigin)
	ResetSeatedZeroPose()
	Submit(eye Eye, texture *ebiten.Image, bounds Rect) error
	IsInputFocusCapturedByAnotherProcess() bool
	Shutdown()
}

// OpenVRBackend opens devices through an OpenVRSystem.
type OpenVRBackend struct {
	name string
	open func() (OpenVRSystem, error)
}

// NewOpenVRBackend returns a backend that initializes a system with open for
// each session.
func NewOpenVRBackend(name string, open func() (OpenVRSystem, error)) *OpenVRBackend {
	return &OpenVRBackend{name: name, open: open}
}

// Name returns the backend name.
func (b *OpenVRBackend) Name() string { return b.name }

// Open initializes the system. OpenVR exposes a single headset.
func (b *OpenVRBackend) Open(opts SessionOptions, deviceIndex int) (Device, error) {
	if deviceIndex != 0 {
		return nil, fmt.Errorf("%s: %d: %w", b.name, deviceIndex, ErrDeviceIndex)
	}
	sys, err := b.open()
	if err != nil {
		return nil, fmt.Errorf("%s: init: %w", b.name, err)
	}
	return newOpenVRDevice(sys, opts.ScreenPercentage), nil
}

// Close is a no-op; systems are shut down per device.
func (b *OpenVRBackend) Close() error { return nil }

type openVRDevice struct {
	sys    OpenVRSystem
	poses  []TrackedDevicePose
	width  int
	height int
	hands  map[ControllerType]*viveState
}

func newOpenVRDevice(sys OpenVRSystem, screenPercentage float64) *openVRDevice {
	if screenPercentage <= 0 {
		screenPercentage = 1
	}
	w, h := sys.RecommendedRenderTargetSize()
	return &openVRDevice{
		sys:    sys,
		poses:  make([]TrackedDevicePose, OpenVRMaxTrackedDeviceCount),
		width:  int(float64(2*w) * screenPercentage),
		height: int(float64(h) * screenPercentage),
		hands:  make(map[ControllerType]*viveState),
	}
}

func (d *openVRDevice) Description() string { return d.sys.HmdName() }

func (d *openVRDevice) BeginFrame(uint64) {
	if err := d.sys.WaitGetPoses(d.poses); err != nil {
		for i := range d.poses {
			d.poses[i].PoseIsValid = false
		}
	}
}

func (d *openVRDevice) pose(index int) Pose {
	if index < 0 || index >= len(d.poses) || !d.poses[index].PoseIsValid {
		return Pose{}
	}
	return PoseFromMatrix(d.poses[index].DeviceToAbsoluteTracking)
}

func (d *openVRDevice) HeadPose() Pose { return d.pose(openVRHmdIndex) }

func (d *openVRDevice) ControllerPose(c *Controller) Pose { return d.pose(c.deviceIndex) }

func (d *openVRDevice) EyePose(eye Eye) Pose {
	if eye > EyeRight {
		return IdentityPose
	}
	return PoseFromMatrix(d.sys.EyeToHeadTransform(eye))
}

func (d *openVRDevice) EyeProjection(eye Eye, near, far float64) mgl64.Mat4 {
	if eye > EyeRight {
		return identity
	}
	return d.sys.ProjectionMatrix(eye, near, far)
}

func (d *openVRDevice) RenderTargetSize() (w, h int) { return d.width, d.height }

func (d *openVRDevice) FullFov() float64 { return openVRFullFov }

func (d *openVRDevice) SetTrackingOrigin(origin TrackingOrigin) error {
	if origin == TrackingOriginSeated {
		d.sys.SetTrackingSpace(TrackingOriginSeated)
		return nil
	}
	d.sys.SetTrackingSpace(TrackingOriginStanding)
	return nil
}

func (d *openVRDevice) RecenterTrackingOrigin() error {
	d.sys.ResetSeatedZeroPose()
	return nil
}

// handFor returns the controller type for a tracked device index, or
// ControllerUnknown when the device is not a hand controller.
func (d *openVRDevice) handFor(index int) ControllerType {
	if d.sys.TrackedDeviceClass(index) != TrackedDeviceClassController {
		return ControllerUnknown
	}
	switch d.sys.ControllerRole(index) {
	case TrackedControllerRoleLeftHand:
		return ControllerLeft
	case TrackedControllerRoleRightHand:
		return ControllerRight
	}
	return ControllerUnknown
}

// ScanControllers connects a Vive controller for each hand with an assigned
// device. Hands whose device lost its role are disconnected.
func (d *openVRDevice) ScanControllers(s *Session) {
	found := map[ControllerType]int{}
	for i := 0; i < OpenVRMaxTrackedDeviceCount; i++ {
		if t := d.handFor(i); t != ControllerUnknown {
			if _, dup := found[t]; !dup {
				found[t] = i
			}
		}
	}
	for _, t := range [...]ControllerType{ControllerLeft, ControllerRight} {
		idx, ok := found[t]
		cur := s.Controller(t)
		switch {
		case ok && cur == nil:
			d.connect(s, t, idx)
		case !ok && cur != nil:
			d.disconnect(s, t)
		case ok && cur.deviceIndex != idx:
			d.disconnect(s, t)
			d.connect(s, t, idx)
		}
	}
}

func (d *openVRDevice) connect(s *Session, t ControllerType, index int) {
	d.hands[t] = &viveState{}
	s.AddController(newViveController(s, t, index))
}

func (d *openVRDevice) disconnect(s *Session, t ControllerType) {
	s.DisconnectController(t)
	delete(d.hands, t)
}

// resync drops both hands and reconnects from the current device roles.
func (d *openVRDevice) resync(s *Session) {
	d.disconnect(s, ControllerLeft)
	d.disconnect(s, ControllerRight)
	d.ScanControllers(s)
}

// ProcessEvents drains the event queue, then reads one input packet per
// connected hand unless another process holds input focus.
func (d *openVRDevice) ProcessEvents(s *Session) {
	for {
		ev, ok := d.sys.PollNextEvent()
		if !ok {
			break
		}
		switch ev.Type {
		case OpenVREventTrackedDeviceActivated,
			OpenVREventTrackedDeviceRoleChanged,
			OpenVREventTrackedDeviceUserInteractionStarted:
			d.resync(s)
		case OpenVREventTrackedDeviceDeactivated:
			for _, c := range snapshot(s.controllers) {
				if c.deviceIndex == ev.TrackedDeviceIndex {
					d.disconnect(s, c.typ)
				}
			}
		}
	}

	if d.sys.IsInputFocusCapturedByAnotherProcess() {
		return
	}
	for _, c := range snapshot(s.controllers) {
		vs := d.hands[c.typ]
		if vs == nil || s.Controller(c.typ) != c {
			continue
		}
		st, ok := d.sys.ControllerState(c.deviceIndex)
		if !ok {
			continue
		}
		c.processViveInput(vs, st)
	}
}

func (d *openVRDevice) SubmitFrame(_ uint64, target *ebiten.Image, viewports [EyeCount]Rect) (bool, error) {
	for e := EyeLeft; e <= EyeRight; e++ {
		if err := d.sys.Submit(e, target, viewports[e]); err != nil {
			return true, fmt.Errorf("submit %s eye: %w", e, err)
		}
	}
	return true, nil
}

// MirrorTexture returns nil; the window shows the eye buffers side by side.
func (d *openVRDevice) MirrorTexture() *ebiten.Image { return nil }

func (d *openVRDevice) Close() error {
	d.sys.Shutdown()
	return nil
}
