package willowvr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// scriptStep represents a single action in a script.
type scriptStep struct {
	Action     string    `json:"action"`
	Label      string    `json:"label,omitempty"`
	Controller string    `json:"controller,omitempty"`
	Button     string    `json:"button,omitempty"`
	Trigger    string    `json:"trigger,omitempty"`
	Axis       string    `json:"axis,omitempty"`
	Value      float64   `json:"value,omitempty"`
	X          float64   `json:"x,omitempty"`
	Y          float64   `json:"y,omitempty"`
	Z          float64   `json:"z,omitempty"`
	Yaw        float64   `json:"yaw,omitempty"`
	Pitch      float64   `json:"pitch,omitempty"`
	Frames     int       `json:"frames,omitempty"`
	Tracked    *bool     `json:"tracked,omitempty"`
	Position   []float64 `json:"position,omitempty"`
}

// script is the top-level JSON structure for a script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences simulated controller input, head poses, and
// screenshots across frames. Attach to a Session running on the simulator
// via SetScriptRunner.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// LoadScript parses a JSON script and returns a ScriptRunner ready to be
// attached to a Session.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if !knownAction(st.Action) {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

func knownAction(a string) bool {
	switch a {
	case "press", "release", "click", "trigger", "axis", "pose", "tracking",
		"connect", "disconnect", "recenter", "look", "wait", "screenshot":
		return true
	}
	return false
}

// Done reports whether all steps in the script have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Errors returns the steps that could not be applied, such as references to
// buttons the controller does not have.
func (r *ScriptRunner) Errors() []error {
	return r.errs
}

// step advances the runner by one frame. Called from Session.Update.
func (r *ScriptRunner) step(s *Session) {
	if r.done {
		return
	}
	sim := s.Simulator()
	if sim != nil && sim.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	if err := r.apply(s, sim, st); err != nil {
		err = fmt.Errorf("step %d (%s): %w", r.cursor-1, st.Action, err)
		r.errs = append(r.errs, err)
		s.logger.Warn("script", "err", err)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && (sim == nil || sim.Pending() == 0) {
		r.done = true
	}
}

func (r *ScriptRunner) apply(s *Session, sim *SimRuntime, st scriptStep) error {
	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
		return nil
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
		return nil
	case "recenter":
		return s.hmd.RecenterTrackingOrigin()
	case "look":
		s.hmd.SetLookAt(vecOf(st.Position))
		return nil
	}

	if sim == nil {
		return fmt.Errorf("session %s is not simulated", s.api)
	}
	switch st.Action {
	case "pose":
		sim.SetHeadPose(mgl64.Vec3{st.X, st.Y, st.Z}, mgl64.DegToRad(st.Yaw), mgl64.DegToRad(st.Pitch))
		return nil
	case "tracking":
		sim.SetHeadTracked(st.Tracked == nil || *st.Tracked)
		return nil
	}

	t, err := parseControllerType(st.Controller)
	if err != nil {
		return err
	}
	spec, ok := oculusSpecFor(oculusControllerBit(t))
	if !ok {
		return fmt.Errorf("controller %s cannot be simulated", t)
	}
	switch st.Action {
	case "connect":
		sim.Connect(t)
	case "disconnect":
		sim.Disconnect(t)
	case "press", "release", "click":
		id, ok := findButton(spec, st.Button)
		if !ok {
			return fmt.Errorf("%s has no button %q", spec.Name, st.Button)
		}
		switch st.Action {
		case "press":
			sim.InjectPress(t, id)
		case "release":
			sim.InjectRelease(t, id)
		default:
			sim.InjectClick(t, id)
		}
	case "trigger":
		id, ok := findTrigger(spec, st.Trigger)
		if !ok {
			return fmt.Errorf("%s has no trigger %q", spec.Name, st.Trigger)
		}
		sim.InjectTrigger(t, id, st.Value)
	case "axis":
		id, ok := findAxis(spec, st.Axis)
		if !ok {
			return fmt.Errorf("%s has no axis %q", spec.Name, st.Axis)
		}
		sim.InjectAxis(t, id, mgl64.Vec2{st.X, st.Y})
	}
	return nil
}

func parseControllerType(name string) (ControllerType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left":
		return ControllerLeft, nil
	case "right":
		return ControllerRight, nil
	case "remote":
		return ControllerRemote, nil
	case "xbox":
		return ControllerXbox, nil
	}
	return ControllerUnknown, fmt.Errorf("unknown controller %q", name)
}

func findButton(spec ControllerSpec, name string) (ButtonID, bool) {
	for _, b := range spec.Buttons {
		if strings.EqualFold(b.Name, name) {
			return b.ID, true
		}
	}
	return ButtonUnknown, false
}

func findTrigger(spec ControllerSpec, name string) (TriggerID, bool) {
	for _, t := range spec.Triggers {
		if strings.EqualFold(t.Name, name) {
			return t.ID, true
		}
	}
	return TriggerUnknown, false
}

func findAxis(spec ControllerSpec, name string) (AxisID, bool) {
	for _, a := range spec.Axes {
		if strings.EqualFold(a.Name, name) {
			return a.ID, true
		}
	}
	return AxisUnknown, false
}

func vecOf(v []float64) mgl64.Vec3 {
	var out mgl64.Vec3
	copy(out[:], v)
	return out
}
