package willowvr

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// OriginState is the pose engine's initialization state.
type OriginState uint8

const (
	OriginUninitialized OriginState = iota // no pose processed yet
	OriginPending                          // waiting for the first valid head pose
	OriginActive                           // origin computed; steady-state updates
)

func (s OriginState) String() string {
	switch s {
	case OriginPending:
		return "pending"
	case OriginActive:
		return "active"
	}
	return "uninitialized"
}

var up = mgl64.Vec3{0, 1, 0}

// Hmd is the headset of a session. It turns head poses into the device,
// origin, and look matrices, derives the per-eye cameras and the gaze ray,
// and owns the side-by-side eye render target.
type Hmd struct {
	session *Session
	device  Device

	state        OriginState
	originMode   OriginMode
	originOffset mgl64.Vec3
	recenter     bool

	deviceToTracking mgl64.Mat4
	trackingToDevice mgl64.Mat4
	origin           mgl64.Mat4
	invOrigin        mgl64.Mat4
	look             mgl64.Mat4
	invLook          mgl64.Mat4
	lookPos          mgl64.Vec3
	lookTween        *LookAtTween
	inputRay         Ray

	eyePoses   [EyeCount]Pose
	eyeToHead  [EyeCount]mgl64.Mat4
	monoscopic bool
	cameras    [EyeCount]*EyeCamera
	hmdCamera  *EyeCamera
	near, far  float64

	mirrorMode MirrorMode
	mirrorRect Rect
	target     *ebiten.Image
	targetW    int
	targetH    int
	viewports  [EyeCount]Rect
	clearColor color.Color

	frameIndex    uint64
	elapsedFrames uint64
	visible       bool
	bound         bool
	antiAlias     bool
	stats         frameStats
}

func newHmd(s *Session, dev Device, opts SessionOptions) *Hmd {
	h := &Hmd{
		session:          s,
		device:           dev,
		originMode:       opts.OriginMode,
		originOffset:     opts.OriginOffset.Mgl(),
		deviceToTracking: identity,
		trackingToDevice: identity,
		origin:           identity,
		invOrigin:        identity,
		look:             identity,
		invLook:          identity,
		hmdCamera:        newEyeCamera(),
		near:             opts.NearClip,
		far:              opts.FarClip,
		mirrorMode:       opts.MirrorMode,
		clearColor:       color.Black,
		visible:          true,
		antiAlias:        opts.SampleCount > 1,
	}
	h.targetW, h.targetH = dev.RenderTargetSize()
	h.viewports = eyeViewports(h.targetW, h.targetH)
	h.mirrorRect = Rect{Width: float64(h.targetW) / 2, Height: float64(h.targetH)}
	for e := EyeLeft; e <= EyeRight; e++ {
		h.cameras[e] = newEyeCamera()
		h.eyePoses[e] = dev.EyePose(e)
	}
	h.updateEyeOffsets()
	h.updateProjections()
	h.updateEyeViews()
	return h
}

// eyeViewports splits a w×h render target into left and right halves.
func eyeViewports(w, h int) [EyeCount]Rect {
	rightX := (w + 1) / 2
	return [EyeCount]Rect{
		{X: 0, Y: 0, Width: float64(w / 2), Height: float64(h)},
		{X: float64(rightX), Y: 0, Width: float64(w - rightX), Height: float64(h)},
	}
}

// --- Frame ---

// Bind samples this frame's poses and prepares the eye render target.
// Call once per frame before EnableEye.
func (h *Hmd) Bind() {
	var t0 time.Time
	if h.session.debug {
		t0 = time.Now()
	}

	h.frameIndex++
	h.device.BeginFrame(h.frameIndex)
	h.applyPose(h.device.HeadPose())
	for _, c := range h.session.controllers {
		if p := h.device.ControllerPose(c); p.Valid {
			c.ProcessPose(h.invLook, h.invOrigin, p.Matrix())
		}
	}

	h.ensureTarget()
	h.target.Fill(h.clearColor)
	h.bound = true

	if h.session.debug {
		h.stats.bindTime = time.Since(t0)
	}
}

// Unbind ends eye rendering for the frame.
func (h *Hmd) Unbind() {
	h.bound = false
}

// IsBound reports whether the frame is between Bind and Unbind.
func (h *Hmd) IsBound() bool { return h.bound }

// applyPose advances the origin state machine with one head pose sample.
// Invalid samples leave the previous matrices in place.
func (h *Hmd) applyPose(p Pose) {
	if h.state == OriginUninitialized {
		h.state = OriginPending
	}
	if p.Valid {
		h.deviceToTracking = p.Matrix()
		h.trackingToDevice = affineInverse(h.deviceToTracking)
		if h.state == OriginPending || h.recenter {
			h.CalculateOriginMatrix()
			h.state = OriginActive
			h.recenter = false
		}
	}
	if h.state == OriginActive {
		h.elapsedFrames++
		h.calculateInputRay()
	}
	h.updateEyeViews()
}

// CalculateOriginMatrix recomputes the origin from the current device pose
// and the configured origin mode and offset.
func (h *Hmd) CalculateOriginMatrix() {
	h.origin = originMatrix(h.originMode, h.originOffset, h.deviceToTracking)
	h.invOrigin = affineInverse(h.origin)
}

// originMatrix anchors the application world in tracking space.
func originMatrix(mode OriginMode, offset mgl64.Vec3, deviceToTracking mgl64.Mat4) mgl64.Mat4 {
	head := translation(deviceToTracking)
	switch mode {
	case OriginModeOffsetted:
		return translate(offset)
	case OriginModeHmdOffsetted:
		return translate(mgl64.Vec3{0, 0, head[2]}.Add(offset))
	case OriginModeHmdOriented:
		w := headingOf(deviceToTracking)
		u := w.Cross(up)
		t := head.Add(u.Mul(offset[0])).Add(up.Mul(offset[1])).Sub(w.Mul(offset[2]))
		return translate(t).Mul4(yawTo(w))
	}
	return identity
}

func (h *Hmd) calculateInputRay() {
	h.inputRay = rayFrom(h.invLook, h.invOrigin, h.deviceToTracking)
}

// --- Origin and look ---

// OriginState returns the pose engine state.
func (h *Hmd) OriginState() OriginState { return h.state }

// OriginMode returns the anchoring policy.
func (h *Hmd) OriginMode() OriginMode { return h.originMode }

// SetOriginMode changes the anchoring policy. Once active, the origin is
// recomputed immediately from the current pose.
func (h *Hmd) SetOriginMode(mode OriginMode) {
	h.originMode = mode
	if h.state == OriginActive {
		h.CalculateOriginMatrix()
	}
}

// OriginOffset returns the configured origin offset.
func (h *Hmd) OriginOffset() mgl64.Vec3 { return h.originOffset }

// SetOriginOffset changes the origin offset. Once active, the origin is
// recomputed immediately from the current pose.
func (h *Hmd) SetOriginOffset(offset mgl64.Vec3) {
	h.originOffset = offset
	if h.state == OriginActive {
		h.CalculateOriginMatrix()
	}
}

// RecenterTrackingOrigin asks the runtime to recenter and recomputes the
// origin on the next valid head pose.
func (h *Hmd) RecenterTrackingOrigin() error {
	if err := h.device.RecenterTrackingOrigin(); err != nil {
		return err
	}
	h.recenter = true
	return nil
}

// SetLookAt places the viewer at position in world space. The configured
// origin depth offset is applied so the viewer, not the origin, lands there.
func (h *Hmd) SetLookAt(position mgl64.Vec3) {
	if h.lookTween != nil {
		h.lookTween.Done = true
		h.lookTween = nil
	}
	h.setLookPos(position.Add(mgl64.Vec3{0, 0, h.originOffset[2]}))
}

func (h *Hmd) setLookPos(p mgl64.Vec3) {
	h.lookPos = p
	h.look = translate(p.Mul(-1))
	h.invLook = translate(p)
}

// LookPosition returns the current look-at position including the origin
// depth offset.
func (h *Hmd) LookPosition() mgl64.Vec3 { return h.lookPos }

// update advances the look-at animation. Called from Session.Update.
func (h *Hmd) update(dt float32) {
	if h.lookTween == nil {
		return
	}
	if h.lookTween.update(h, dt) {
		h.lookTween = nil
	}
}

// --- Matrices ---

// DeviceToTracking returns the head's device-to-tracking matrix.
func (h *Hmd) DeviceToTracking() mgl64.Mat4 { return h.deviceToTracking }

// TrackingToDevice returns the inverse of DeviceToTracking.
func (h *Hmd) TrackingToDevice() mgl64.Mat4 { return h.trackingToDevice }

// OriginMatrix returns the origin transform.
func (h *Hmd) OriginMatrix() mgl64.Mat4 { return h.origin }

// InverseOriginMatrix returns the cached inverse of OriginMatrix.
func (h *Hmd) InverseOriginMatrix() mgl64.Mat4 { return h.invOrigin }

// LookMatrix returns the look-at transform.
func (h *Hmd) LookMatrix() mgl64.Mat4 { return h.look }

// InverseLookMatrix returns the inverse of LookMatrix.
func (h *Hmd) InverseLookMatrix() mgl64.Mat4 { return h.invLook }

// InputRay returns the gaze ray in world space.
func (h *Hmd) InputRay() Ray { return h.inputRay }

// --- Eyes ---

// updateEyeOffsets recomputes the effective eye-to-head transforms. In
// monoscopic mode both eyes sit at the average of the two eye positions.
func (h *Hmd) updateEyeOffsets() {
	center := h.eyePoses[EyeLeft].Position.Add(h.eyePoses[EyeRight].Position).Mul(0.5)
	for e := EyeLeft; e <= EyeRight; e++ {
		p := h.eyePoses[e]
		if h.monoscopic {
			p.Position = center
		}
		h.eyeToHead[e] = p.Matrix()
	}
}

// updateEyeViews derives the eye and head views from the device pose.
func (h *Hmd) updateEyeViews() {
	for e := EyeLeft; e <= EyeRight; e++ {
		h.cameras[e].SetView(affineInverse(h.deviceToTracking.Mul4(h.eyeToHead[e])))
	}
	h.hmdCamera.SetView(h.trackingToDevice)
}

func (h *Hmd) updateProjections() {
	for e := EyeLeft; e <= EyeRight; e++ {
		h.cameras[e].SetProjection(h.device.EyeProjection(e, h.near, h.far))
	}
	h.updateHmdProjection()
}

// updateHmdProjection sizes the combined view to the mirror rectangle.
func (h *Hmd) updateHmdProjection() {
	aspect := h.mirrorRect.Aspect()
	fov := mgl64.DegToRad(h.device.FullFov() / aspect)
	h.hmdCamera.SetProjection(mgl64.Perspective(fov, aspect, h.near, h.far))
}

// EnableMonoscopic collapses both eyes to their average position.
func (h *Hmd) EnableMonoscopic(enabled bool) {
	if h.monoscopic == enabled {
		return
	}
	h.monoscopic = enabled
	h.updateEyeOffsets()
	h.updateEyeViews()
}

// IsMonoscopic reports whether monoscopic rendering is enabled.
func (h *Hmd) IsMonoscopic() bool { return h.monoscopic }

// EyeOffset returns the effective eye position relative to the head.
func (h *Hmd) EyeOffset(eye Eye) mgl64.Vec3 {
	if eye > EyeRight {
		return mgl64.Vec3{}
	}
	return translation(h.eyeToHead[eye])
}

// SetClip changes the near and far clip planes and rebuilds projections.
func (h *Hmd) SetClip(near, far float64) {
	if near <= 0 || far <= near {
		return
	}
	h.near, h.far = near, far
	h.updateProjections()
}

// Clip returns the near and far clip planes.
func (h *Hmd) Clip() (near, far float64) { return h.near, h.far }

// EyeCamera returns the camera for eye, or the combined view for EyeHmd.
// Returns nil for unknown eyes.
func (h *Hmd) EyeCamera(eye Eye) *EyeCamera {
	switch eye {
	case EyeLeft, EyeRight:
		return h.cameras[eye]
	case EyeHmd:
		return h.hmdCamera
	}
	return nil
}

// EyeView is everything a renderer needs to draw one eye.
type EyeView struct {
	Eye        Eye
	View       mgl64.Mat4
	Projection mgl64.Mat4
	Model      mgl64.Mat4
	// Viewport is in Target's coordinate space.
	Viewport Rect
	// Target is the eye's render target. Nil for EyeHmd.
	Target *ebiten.Image
	// AntiAlias is set when the session asks for multisampling.
	AntiAlias bool
}

// MVP returns Projection · View · Model.
func (v EyeView) MVP() mgl64.Mat4 {
	return v.Projection.Mul4(v.View).Mul4(v.Model)
}

// Project maps a model-space point to viewport pixels. ok is false for
// points behind the eye.
func (v EyeView) Project(p mgl64.Vec3) (x, y float64, ok bool) {
	clip := v.MVP().Mul4x1(p.Vec4(1))
	if clip[3] <= 1e-9 {
		return 0, 0, false
	}
	return v.toViewport(clip)
}

func (v EyeView) toViewport(clip mgl64.Vec4) (x, y float64, ok bool) {
	nx, ny := clip[0]/clip[3], clip[1]/clip[3]
	x = v.Viewport.X + (nx+1)/2*v.Viewport.Width
	y = v.Viewport.Y + (1-ny)/2*v.Viewport.Height
	return x, y, true
}

// EnableEye returns the view for eye with the model matrix composed for
// coordSys: Device applies the head transform, World applies origin then
// look, Tracking and None apply nothing.
func (h *Hmd) EnableEye(eye Eye, coordSys CoordSys) EyeView {
	v := EyeView{Eye: eye, View: identity, Projection: identity, Model: h.modelFor(coordSys), AntiAlias: h.antiAlias}
	switch eye {
	case EyeLeft, EyeRight:
		h.debugCheckBound("EnableEye")
		v.View = h.cameras[eye].View()
		v.Projection = h.cameras[eye].Projection()
		v.Viewport = h.viewports[eye]
		v.Target = h.EyeTarget(eye)
	case EyeHmd:
		h.updateHmdProjection()
		v.View = h.hmdCamera.View()
		v.Projection = h.hmdCamera.Projection()
		v.Viewport = h.mirrorRect
	}
	return v
}

func (h *Hmd) modelFor(coordSys CoordSys) mgl64.Mat4 {
	switch coordSys {
	case CoordSysDevice:
		return h.deviceToTracking
	case CoordSysWorld:
		return h.origin.Mul4(h.look)
	}
	return identity
}

// --- Render target ---

// RenderTargetSize returns the side-by-side render target size.
func (h *Hmd) RenderTargetSize() (width, height int) { return h.targetW, h.targetH }

// EyeViewport returns the render target region of eye.
func (h *Hmd) EyeViewport(eye Eye) Rect {
	if eye > EyeRight {
		return Rect{}
	}
	return h.viewports[eye]
}

func (h *Hmd) ensureTarget() {
	if h.target == nil {
		h.target = ebiten.NewImage(max(h.targetW, 1), max(h.targetH, 1))
	}
}

// RenderTarget returns the side-by-side eye render target.
func (h *Hmd) RenderTarget() *ebiten.Image {
	h.ensureTarget()
	return h.target
}

// EyeTarget returns the region of the render target for eye. The sub-image
// keeps the render target's coordinates, matching EyeView.Viewport.
func (h *Hmd) EyeTarget(eye Eye) *ebiten.Image {
	if eye > EyeRight {
		return nil
	}
	h.ensureTarget()
	vp := h.viewports[eye]
	return h.target.SubImage(image.Rect(
		int(vp.X), int(vp.Y),
		int(vp.X+vp.Width), int(vp.Y+vp.Height),
	)).(*ebiten.Image)
}

// SetClearColor sets the color the render target is cleared to on Bind.
func (h *Hmd) SetClearColor(c color.Color) { h.clearColor = c }

// --- State ---

// FrameIndex returns the number of frames bound so far.
func (h *Hmd) FrameIndex() uint64 { return h.frameIndex }

// ElapsedFrames returns the number of frames since the first valid pose.
func (h *Hmd) ElapsedFrames() uint64 { return h.elapsedFrames }

// IsVisible reports whether the compositor displayed the last submitted frame.
func (h *Hmd) IsVisible() bool { return h.visible }

// Description returns the headset product name.
func (h *Hmd) Description() string { return h.device.Description() }

// FullFov returns the vertical field of view in degrees of the combined view.
func (h *Hmd) FullFov() float64 { return h.device.FullFov() }

// HeadPosition returns the head position in world space.
func (h *Hmd) HeadPosition() mgl64.Vec3 {
	return transformPoint(h.invLook.Mul4(h.invOrigin).Mul4(h.deviceToTracking), mgl64.Vec3{})
}

// HeadYaw returns the head heading in radians about +Y, zero facing -Z.
func (h *Hmd) HeadYaw() float64 {
	w := headingOf(h.deviceToTracking)
	return math.Atan2(-w[0], -w[2])
}
