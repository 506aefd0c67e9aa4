package willowvr

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestLoadScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "click", "controller": "right", "button": "A"},
			{"action": "wait", "frames": 3},
			{"action": "pose", "x": 0, "y": 1.6, "z": 0, "yaw": 90}
		]
	}`)

	runner, err := LoadScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "screenshot" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Controller != "right" || runner.steps[1].Button != "A" {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
	if runner.steps[3].Y != 1.6 || runner.steps[3].Yaw != 90 {
		t.Error("step 3 mismatch")
	}
}

func TestLoadScript_Invalid(t *testing.T) {
	if _, err := LoadScript([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadScript_Empty(t *testing.T) {
	if _, err := LoadScript([]byte(`{"steps": []}`)); err == nil {
		t.Error("expected error for empty steps")
	}
}

func TestLoadScript_UnknownAction(t *testing.T) {
	_, err := LoadScript([]byte(`{"steps": [{"action": "wait"}, {"action": "teleport"}]}`))
	if err == nil || !strings.Contains(err.Error(), `step 1: unknown action "teleport"`) {
		t.Errorf("err = %v, want unknown action at step 1", err)
	}
}

func TestRunnerStep_Wait(t *testing.T) {
	s := newTestSession(newFakeDevice())

	data := []byte(`{"steps": [
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "done"}
	]}`)
	runner, err := LoadScript(data)
	if err != nil {
		t.Fatal(err)
	}

	// Frame 1: execute wait (waitCount becomes 2).
	runner.step(s)
	if runner.Done() {
		t.Error("should not be done during wait")
	}

	// Frames 2 and 3 count down.
	runner.step(s)
	runner.step(s)
	if runner.Done() {
		t.Error("should not be done before the screenshot step")
	}

	// Frame 4: execute screenshot step, runner finishes.
	runner.step(s)
	if !runner.Done() {
		t.Error("runner should be done after screenshot step")
	}
	if len(s.screenshotQueue) != 1 || s.screenshotQueue[0] != "done" {
		t.Errorf("expected screenshot 'done', got %v", s.screenshotQueue)
	}
}

func TestRunnerDone(t *testing.T) {
	s := newTestSession(newFakeDevice())

	runner, err := LoadScript([]byte(`{"steps": [{"action": "screenshot", "label": "only"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if runner.Done() {
		t.Error("runner should not be done before any steps")
	}
	runner.step(s)
	if !runner.Done() {
		t.Error("runner should be done after single screenshot step")
	}
}

func TestRunnerWaitsForInjectQueue(t *testing.T) {
	s, _ := newSimSession(t)

	data := []byte(`{"steps": [
		{"action": "click", "controller": "right", "button": "a"},
		{"action": "screenshot", "label": "after"}
	]}`)
	runner, err := LoadScript(data)
	if err != nil {
		t.Fatal(err)
	}
	s.SetScriptRunner(runner)
	a := s.Controller(ControllerRight).Button(ButtonTouchA)

	// Frame 1: click queues press and release; the press is consumed.
	s.Update()
	if !a.IsDown() {
		t.Error("A should be down after frame 1")
	}
	if runner.cursor != 1 {
		t.Errorf("cursor = %d, want 1", runner.cursor)
	}

	// Frame 2: runner holds while the release is pending.
	s.Update()
	if a.State() != StateUp {
		t.Errorf("A = %v, want UP after frame 2", a.State())
	}
	if runner.cursor != 1 {
		t.Errorf("cursor = %d, want 1", runner.cursor)
	}

	// Frame 3: screenshot step runs and the script finishes.
	s.Update()
	if len(s.screenshotQueue) != 1 || s.screenshotQueue[0] != "after" {
		t.Errorf("expected screenshot 'after', got %v", s.screenshotQueue)
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
	if len(runner.Errors()) != 0 {
		t.Errorf("Errors = %v", runner.Errors())
	}
}

func TestRunnerTriggerAndAxis(t *testing.T) {
	s, _ := newSimSession(t)
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "trigger", "controller": "right", "trigger": "right index trigger", "value": 0.75},
		{"action": "axis", "controller": "left", "axis": "Left Thumbstick", "x": -1, "y": 0.5}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetScriptRunner(runner)
	for i := 0; i < 3; i++ {
		s.Update()
	}
	if got := s.Controller(ControllerRight).Trigger(TriggerTouchRightIndex).Value(); got != 0.75 {
		t.Errorf("index trigger = %v, want 0.75", got)
	}
	if got := s.Controller(ControllerLeft).Axis(AxisTouchLThumb).Value(); got != (mgl64.Vec2{-1, 0.5}) {
		t.Errorf("thumbstick = %v, want (-1, 0.5)", got)
	}
}

func TestRunnerPoseAndConnect(t *testing.T) {
	s, sim := newSimSession(t)
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "pose", "x": 1, "y": 1.2, "z": -2, "yaw": 90, "pitch": 10},
		{"action": "tracking", "tracked": false},
		{"action": "disconnect", "controller": "remote"},
		{"action": "connect", "controller": "xbox"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetScriptRunner(runner)
	for i := 0; i < 4; i++ {
		s.Update()
	}
	if !vecNear(sim.headPos, mgl64.Vec3{1, 1.2, -2}) {
		t.Errorf("headPos = %v, want (1, 1.2, -2)", sim.headPos)
	}
	if !approxEqual(sim.yaw, math.Pi/2, 1e-9) {
		t.Errorf("yaw = %v, want pi/2", sim.yaw)
	}
	if sim.headValid {
		t.Error("head should be untracked")
	}
	if sim.ConnectedControllerTypes()&OculusControllerRemote != 0 {
		t.Error("remote should be reported absent")
	}
	if sim.ConnectedControllerTypes()&OculusControllerXbox == 0 {
		t.Error("xbox should be reported present")
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestRunnerLookAndRecenter(t *testing.T) {
	dev := newFakeDevice()
	s := newTestSession(dev)
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "look", "position": [1, 0, 2]},
		{"action": "recenter"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	runner.step(s)
	runner.step(s)
	assertVec(t, "LookPosition", s.Hmd().LookPosition(), mgl64.Vec3{1, 0, 1})
	if dev.recenters != 1 {
		t.Errorf("recenters = %d, want 1", dev.recenters)
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestRunnerErrors(t *testing.T) {
	s := newTestSession(newFakeDevice())
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "press", "controller": "right", "button": "A"},
		{"action": "screenshot", "label": "still-runs"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	runner.step(s)
	runner.step(s)
	if len(runner.Errors()) != 1 || !strings.Contains(runner.Errors()[0].Error(), "not simulated") {
		t.Errorf("Errors = %v, want one not-simulated error", runner.Errors())
	}
	if len(s.screenshotQueue) != 1 {
		t.Error("later steps should still run after an error")
	}

	simulated, _ := newSimSession(t)
	runner, _ = LoadScript([]byte(`{"steps": [
		{"action": "press", "controller": "remote", "button": "A"},
		{"action": "trigger", "controller": "pogo", "trigger": "x"}
	]}`))
	runner.step(simulated)
	runner.step(simulated)
	errs := runner.Errors()
	if len(errs) != 2 {
		t.Fatalf("Errors = %v, want 2", errs)
	}
	if !strings.Contains(errs[0].Error(), `Oculus Remote has no button "A"`) {
		t.Errorf("errs[0] = %v", errs[0])
	}
	if !strings.Contains(errs[1].Error(), `unknown controller "pogo"`) {
		t.Errorf("errs[1] = %v", errs[1])
	}
}
