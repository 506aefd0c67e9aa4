package willowvr

import "github.com/go-gl/mathgl/mgl64"

// InjectPress queues a button press on the simulated controller of type t.
// The press is applied on the next frame's input step and held until a
// matching InjectRelease. Unknown buttons are ignored.
func (r *SimRuntime) InjectPress(t ControllerType, id ButtonID) {
	bit, mask := r.buttonMask(t, id)
	if mask == 0 {
		return
	}
	r.queue = append(r.queue, simFrame{controller: bit, apply: func(in *simInput) {
		in.injected.Buttons |= mask
	}})
}

// InjectRelease queues a button release on the simulated controller of type t.
func (r *SimRuntime) InjectRelease(t ControllerType, id ButtonID) {
	bit, mask := r.buttonMask(t, id)
	if mask == 0 {
		return
	}
	r.queue = append(r.queue, simFrame{controller: bit, apply: func(in *simInput) {
		in.injected.Buttons &^= mask
	}})
}

// InjectClick is a convenience that queues a press followed by a release.
// Consumes two frames.
func (r *SimRuntime) InjectClick(t ControllerType, id ButtonID) {
	r.InjectPress(t, id)
	r.InjectRelease(t, id)
}

// InjectTrigger queues a raw trigger sample. The value overrides desktop
// input and persists until the next injection for the same trigger.
func (r *SimRuntime) InjectTrigger(t ControllerType, id TriggerID, raw float64) {
	bit := oculusControllerBit(t)
	field := triggerField(t, id)
	if bit == 0 || field == nil {
		return
	}
	r.queue = append(r.queue, simFrame{controller: bit, apply: func(in *simInput) {
		*field(&in.injected) = raw
		*field(&in.live) = 1
	}})
}

// InjectAxis queues an axis sample. The value overrides desktop input and
// persists until the next injection for the same axis.
func (r *SimRuntime) InjectAxis(t ControllerType, id AxisID, v mgl64.Vec2) {
	bit := oculusControllerBit(t)
	hand, ok := axisHand(t, id)
	if bit == 0 || !ok {
		return
	}
	r.queue = append(r.queue, simFrame{controller: bit, apply: func(in *simInput) {
		in.injected.Thumbstick[hand] = v
		in.live.Thumbstick[hand] = mgl64.Vec2{1, 1}
	}})
}

// InjectWait queues a frame that changes nothing.
func (r *SimRuntime) InjectWait(frames int) {
	for i := 0; i < frames; i++ {
		r.queue = append(r.queue, simFrame{apply: func(*simInput) {}})
	}
}

// Recenters returns how many times the tracking origin was recentered.
func (r *SimRuntime) Recenters() int { return r.recenters }

// buttonMask resolves a button id to the runtime controller bit and raw
// button mask of the simulated controller.
func (r *SimRuntime) buttonMask(t ControllerType, id ButtonID) (bit, mask uint32) {
	bit = oculusControllerBit(t)
	spec, ok := oculusSpecFor(bit)
	if !ok {
		return 0, 0
	}
	for _, b := range spec.Buttons {
		if b.ID == id {
			return bit, uint32(b.Mask)
		}
	}
	return 0, 0
}

// triggerField returns an accessor for the raw slot feeding a trigger.
func triggerField(t ControllerType, id TriggerID) func(*OculusInputState) *float64 {
	switch {
	case t == ControllerXbox && id == TriggerXboxLeft:
		return func(in *OculusInputState) *float64 { return &in.IndexTrigger[handLeft] }
	case t == ControllerXbox && id == TriggerXboxRight:
		return func(in *OculusInputState) *float64 { return &in.IndexTrigger[handRight] }
	case t == ControllerLeft && id == TriggerTouchLeftIndex:
		return func(in *OculusInputState) *float64 { return &in.IndexTrigger[handLeft] }
	case t == ControllerLeft && id == TriggerTouchLeftHand:
		return func(in *OculusInputState) *float64 { return &in.HandTrigger[handLeft] }
	case t == ControllerRight && id == TriggerTouchRightIndex:
		return func(in *OculusInputState) *float64 { return &in.IndexTrigger[handRight] }
	case t == ControllerRight && id == TriggerTouchRightHand:
		return func(in *OculusInputState) *float64 { return &in.HandTrigger[handRight] }
	}
	return nil
}

// axisHand returns the thumbstick slot feeding an axis.
func axisHand(t ControllerType, id AxisID) (int, bool) {
	switch {
	case t == ControllerXbox && id == AxisXboxLThumb, t == ControllerLeft && id == AxisTouchLThumb:
		return handLeft, true
	case t == ControllerXbox && id == AxisXboxRThumb, t == ControllerRight && id == AxisTouchRThumb:
		return handRight, true
	}
	return 0, false
}
