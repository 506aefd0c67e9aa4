package willowvr

import "github.com/go-gl/mathgl/mgl64"

// OpenVR button ids. The pressed and touched masks carry 1<<id.
const (
	OpenVRButtonAppMenu  = 1
	OpenVRButtonGrip     = 2
	OpenVRButtonTouchpad = 32
	OpenVRButtonTrigger  = 33
)

// OpenVR controller axis slots.
const (
	openVRAxisTouchpad = 0
	openVRAxisTrigger  = 1
	openVRAxisCount    = 5
)

// OpenVRButtonMask returns the mask bit for an OpenVR button id.
func OpenVRButtonMask(id int) uint64 {
	return uint64(1) << uint(id)
}

// VRControllerState is one raw input packet from an OpenVR-style runtime.
type VRControllerState struct {
	PacketNum     uint32
	ButtonPressed uint64
	ButtonTouched uint64
	Axis          [openVRAxisCount]mgl64.Vec2
}

// ViveSpec describes a Vive wand for the given hand.
func ViveSpec(hand ControllerType) ControllerSpec {
	name := "HTC Vive Controller (Right)"
	trigger, axis := TriggerViveRight, AxisViveRight
	if hand == ControllerLeft {
		name = "HTC Vive Controller (Left)"
		trigger, axis = TriggerViveLeft, AxisViveLeft
	}
	return ControllerSpec{
		Type: hand,
		Name: name,
		Buttons: []ButtonSpec{
			{ID: ButtonViveAppMenu, Name: "Application Menu", Mask: OpenVRButtonMask(OpenVRButtonAppMenu)},
			{ID: ButtonViveGrip, Name: "Grip", Mask: OpenVRButtonMask(OpenVRButtonGrip)},
			{ID: ButtonViveTouchpad, Name: "Touchpad", Mask: OpenVRButtonMask(OpenVRButtonTouchpad)},
			{ID: ButtonViveTrigger, Name: "Trigger", Mask: OpenVRButtonMask(OpenVRButtonTrigger)},
		},
		Triggers: []TriggerSpec{{ID: trigger, Name: "Trigger", MinLimit: 0, MaxLimit: 1}},
		Axes:     []AxisSpec{{ID: axis, Name: "Touchpad"}},
		InputRay: true,
	}
}

// viveState tracks per-controller packet bookkeeping for OpenVR input.
type viveState struct {
	lastPacket uint32
	seen       bool
}

// newViveController builds a Vive controller whose buttons start Up without
// emitting.
func newViveController(s *Session, hand ControllerType, deviceIndex int) *Controller {
	c := NewController(s, ApiOpenVR, ViveSpec(hand))
	for _, b := range c.buttons {
		b.state = StateUp
	}
	c.deviceIndex = deviceIndex
	return c
}

// processViveInput applies one controller packet. Packets with an unchanged
// packet number are ignored. Trigger and touchpad values are only read while
// touched and fall back to zero on release.
func (c *Controller) processViveInput(vs *viveState, st VRControllerState) {
	if vs.seen && st.PacketNum == vs.lastPacket {
		return
	}
	vs.seen = true
	vs.lastPacket = st.PacketNum

	c.ProcessButtons(st.ButtonPressed)

	if t := c.Trigger(TriggerAny); t != nil {
		if st.ButtonTouched&OpenVRButtonMask(OpenVRButtonTrigger) != 0 {
			t.setValue(st.Axis[openVRAxisTrigger][0])
		} else {
			t.setValue(0)
		}
	}
	if a := c.Axis(AxisAny); a != nil {
		if st.ButtonTouched&OpenVRButtonMask(OpenVRButtonTouchpad) != 0 {
			a.setValue(st.Axis[openVRAxisTouchpad])
		} else {
			a.setValue(mgl64.Vec2{})
		}
	}
}
