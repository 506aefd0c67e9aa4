package willowvr

import "github.com/go-gl/mathgl/mgl64"

// Raw button bits reported by an Oculus-style runtime.
const (
	OculusButtonA         uint32 = 0x00000001
	OculusButtonB         uint32 = 0x00000002
	OculusButtonRThumb    uint32 = 0x00000004
	OculusButtonRShoulder uint32 = 0x00000008
	OculusButtonX         uint32 = 0x00000100
	OculusButtonY         uint32 = 0x00000200
	OculusButtonLThumb    uint32 = 0x00000400
	OculusButtonLShoulder uint32 = 0x00000800
	OculusButtonUp        uint32 = 0x00010000
	OculusButtonDown      uint32 = 0x00020000
	OculusButtonLeft      uint32 = 0x00040000
	OculusButtonRight     uint32 = 0x00080000
	OculusButtonEnter     uint32 = 0x00100000
	OculusButtonBack      uint32 = 0x00200000
	OculusButtonHome      uint32 = 0x01000000
)

// Controller type bits reported by an Oculus-style runtime.
const (
	OculusControllerLTouch uint32 = 0x01
	OculusControllerRTouch uint32 = 0x02
	OculusControllerRemote uint32 = 0x04
	OculusControllerXbox   uint32 = 0x10

	oculusControllerScanBits = 5
)

// Hand trigger raw travel. The physical grip never reaches either end.
const (
	touchHandTriggerMin = 0.2
	touchHandTriggerMax = 0.94
)

// Hand indices in OculusInputState arrays.
const (
	handLeft  = 0
	handRight = 1
)

// OculusInputState is one raw input sample for an Oculus-style controller.
type OculusInputState struct {
	Buttons      uint32
	IndexTrigger [2]float64
	HandTrigger  [2]float64
	Thumbstick   [2]mgl64.Vec2
}

// oculusControllerType maps a runtime controller bit to a controller type.
func oculusControllerType(bit uint32) ControllerType {
	switch bit {
	case OculusControllerLTouch:
		return ControllerLeft
	case OculusControllerRTouch:
		return ControllerRight
	case OculusControllerRemote:
		return ControllerRemote
	case OculusControllerXbox:
		return ControllerXbox
	}
	return ControllerUnknown
}

func dpadButtons() []ButtonSpec {
	return []ButtonSpec{
		{ID: ButtonDpadUp, Name: "Up", Mask: uint64(OculusButtonUp)},
		{ID: ButtonDpadDown, Name: "Down", Mask: uint64(OculusButtonDown)},
		{ID: ButtonDpadLeft, Name: "Left", Mask: uint64(OculusButtonLeft)},
		{ID: ButtonDpadRight, Name: "Right", Mask: uint64(OculusButtonRight)},
	}
}

// OculusRemoteSpec describes the handheld remote.
func OculusRemoteSpec() ControllerSpec {
	return ControllerSpec{
		Type: ControllerRemote,
		Name: "Oculus Remote",
		Buttons: append([]ButtonSpec{
			{ID: ButtonRemoteEnter, Name: "Enter", Mask: uint64(OculusButtonEnter)},
			{ID: ButtonRemoteBack, Name: "Back", Mask: uint64(OculusButtonBack)},
		}, dpadButtons()...),
	}
}

// OculusXboxSpec describes an Xbox gamepad reported through the runtime.
func OculusXboxSpec() ControllerSpec {
	return ControllerSpec{
		Type: ControllerXbox,
		Name: "Oculus Xbox",
		Buttons: append([]ButtonSpec{
			{ID: ButtonXboxA, Name: "A", Mask: uint64(OculusButtonA)},
			{ID: ButtonXboxB, Name: "B", Mask: uint64(OculusButtonB)},
			{ID: ButtonXboxX, Name: "X", Mask: uint64(OculusButtonX)},
			{ID: ButtonXboxY, Name: "Y", Mask: uint64(OculusButtonY)},
			{ID: ButtonXboxLThumb, Name: "Left Thumbstick", Mask: uint64(OculusButtonLThumb)},
			{ID: ButtonXboxRThumb, Name: "Right Thumbstick", Mask: uint64(OculusButtonRThumb)},
			{ID: ButtonXboxLShoulder, Name: "Left Shoulder", Mask: uint64(OculusButtonLShoulder)},
			{ID: ButtonXboxRShoulder, Name: "Right Shoulder", Mask: uint64(OculusButtonRShoulder)},
			{ID: ButtonXboxMenu, Name: "Menu", Mask: uint64(OculusButtonEnter)},
			{ID: ButtonXboxView, Name: "View", Mask: uint64(OculusButtonBack)},
			{ID: ButtonXboxHome, Name: "Home", Mask: uint64(OculusButtonHome)},
		}, dpadButtons()...),
		Triggers: []TriggerSpec{
			{ID: TriggerXboxLeft, Name: "Left Trigger", MinLimit: 0, MaxLimit: 1},
			{ID: TriggerXboxRight, Name: "Right Trigger", MinLimit: 0, MaxLimit: 1},
		},
		Axes: []AxisSpec{
			{ID: AxisXboxLThumb, Name: "Left Thumbstick"},
			{ID: AxisXboxRThumb, Name: "Right Thumbstick"},
		},
	}
}

// OculusTouchSpec describes one Touch hand controller.
func OculusTouchSpec(t ControllerType) ControllerSpec {
	if t == ControllerLeft {
		return ControllerSpec{
			Type: ControllerLeft,
			Name: "Oculus Left Touch",
			Buttons: []ButtonSpec{
				{ID: ButtonTouchX, Name: "X", Mask: uint64(OculusButtonX)},
				{ID: ButtonTouchY, Name: "Y", Mask: uint64(OculusButtonY)},
				{ID: ButtonTouchLThumb, Name: "Left Thumbstick", Mask: uint64(OculusButtonLThumb)},
				{ID: ButtonTouchEnter, Name: "Enter", Mask: uint64(OculusButtonEnter)},
			},
			Triggers: []TriggerSpec{
				{ID: TriggerTouchLeftIndex, Name: "Left Index Trigger", MinLimit: 0, MaxLimit: 1},
				{ID: TriggerTouchLeftHand, Name: "Left Hand Trigger", MinLimit: touchHandTriggerMin, MaxLimit: touchHandTriggerMax},
			},
			Axes:     []AxisSpec{{ID: AxisTouchLThumb, Name: "Left Thumbstick"}},
			InputRay: true,
		}
	}
	return ControllerSpec{
		Type: ControllerRight,
		Name: "Oculus Right Touch",
		Buttons: []ButtonSpec{
			{ID: ButtonTouchA, Name: "A", Mask: uint64(OculusButtonA)},
			{ID: ButtonTouchB, Name: "B", Mask: uint64(OculusButtonB)},
			{ID: ButtonTouchRThumb, Name: "Right Thumbstick", Mask: uint64(OculusButtonRThumb)},
		},
		Triggers: []TriggerSpec{
			{ID: TriggerTouchRightIndex, Name: "Right Index Trigger", MinLimit: 0, MaxLimit: 1},
			{ID: TriggerTouchRightHand, Name: "Right Hand Trigger", MinLimit: touchHandTriggerMin, MaxLimit: touchHandTriggerMax},
		},
		Axes:     []AxisSpec{{ID: AxisTouchRThumb, Name: "Right Thumbstick"}},
		InputRay: true,
	}
}

// oculusSpecFor returns the controller spec for a runtime controller bit.
func oculusSpecFor(bit uint32) (ControllerSpec, bool) {
	switch bit {
	case OculusControllerLTouch:
		return OculusTouchSpec(ControllerLeft), true
	case OculusControllerRTouch:
		return OculusTouchSpec(ControllerRight), true
	case OculusControllerRemote:
		return OculusRemoteSpec(), true
	case OculusControllerXbox:
		return OculusXboxSpec(), true
	}
	return ControllerSpec{}, false
}

// processOculusInput routes one raw sample through the controller's action
// states according to its type.
func (c *Controller) processOculusInput(in OculusInputState) {
	c.ProcessButtons(uint64(in.Buttons))
	switch c.typ {
	case ControllerXbox:
		c.ProcessTrigger(TriggerXboxLeft, in.IndexTrigger[handLeft])
		c.ProcessTrigger(TriggerXboxRight, in.IndexTrigger[handRight])
		c.ProcessAxis(AxisXboxLThumb, in.Thumbstick[handLeft])
		c.ProcessAxis(AxisXboxRThumb, in.Thumbstick[handRight])
	case ControllerLeft:
		c.ProcessTrigger(TriggerTouchLeftIndex, in.IndexTrigger[handLeft])
		c.ProcessTrigger(TriggerTouchLeftHand, in.HandTrigger[handLeft])
		c.ProcessAxis(AxisTouchLThumb, in.Thumbstick[handLeft])
	case ControllerRight:
		c.ProcessTrigger(TriggerTouchRightIndex, in.IndexTrigger[handRight])
		c.ProcessTrigger(TriggerTouchRightHand, in.HandTrigger[handRight])
		c.ProcessAxis(AxisTouchRThumb, in.Thumbstick[handRight])
	}
}
