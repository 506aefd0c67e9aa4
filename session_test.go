package willowvr

import (
	"testing"
	"time"
)

func TestAddControllerDuplicate(t *testing.T) {
	s := newTestSession(newFakeDevice())
	var connects int
	s.OnControllerConnected(func(*Controller) { connects++ })

	first := NewController(s, ApiCustom, OculusRemoteSpec())
	if !s.AddController(first) {
		t.Fatal("first AddController should succeed")
	}
	if s.AddController(NewController(s, ApiCustom, OculusRemoteSpec())) {
		t.Error("duplicate AddController should fail")
	}
	if s.AddController(nil) {
		t.Error("AddController(nil) should fail")
	}
	if connects != 1 {
		t.Errorf("connects = %d, want 1", connects)
	}
	if s.Controller(ControllerRemote) != first {
		t.Error("first controller should win")
	}
}

func TestDisconnectEmitsBeforeRemoval(t *testing.T) {
	s := newTestSession(newFakeDevice())
	s.AddController(NewController(s, ApiCustom, OculusTouchSpec(ControllerLeft)))

	var present bool
	s.OnControllerDisconnected(func(c *Controller) {
		present = s.HasController(c.Type())
	})
	if !s.DisconnectController(ControllerLeft) {
		t.Fatal("DisconnectController should succeed")
	}
	if !present {
		t.Error("controller should still be present in the disconnect callback")
	}
	if s.HasController(ControllerLeft) {
		t.Error("controller should be removed")
	}
	if s.DisconnectController(ControllerLeft) {
		t.Error("second DisconnectController should fail")
	}
}

func TestRemoveControllerSilent(t *testing.T) {
	s := newTestSession(newFakeDevice())
	c := NewController(s, ApiCustom, OculusXboxSpec())
	s.AddController(c)

	var disconnects int
	s.OnControllerDisconnected(func(*Controller) { disconnects++ })
	if got := s.RemoveController(ControllerXbox); got != c {
		t.Errorf("RemoveController = %v, want %v", got, c)
	}
	if disconnects != 0 {
		t.Errorf("disconnects = %d, want 0", disconnects)
	}
	if s.RemoveController(ControllerXbox) != nil {
		t.Error("RemoveController on absent type should return nil")
	}
}

func TestDisconnectAllReverseOrder(t *testing.T) {
	s := newTestSession(newFakeDevice())
	s.AddController(NewController(s, ApiCustom, OculusRemoteSpec()))
	s.AddController(NewController(s, ApiCustom, OculusTouchSpec(ControllerLeft)))
	s.AddController(NewController(s, ApiCustom, OculusTouchSpec(ControllerRight)))

	var order []ControllerType
	s.OnControllerDisconnected(func(c *Controller) { order = append(order, c.Type()) })
	s.DisconnectAll()

	want := []ControllerType{ControllerRight, ControllerLeft, ControllerRemote}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %v, want %v", i, order[i], want[i])
		}
	}
	if len(s.Controllers()) != 0 {
		t.Errorf("Controllers = %d, want 0", len(s.Controllers()))
	}
}

func TestOptionCallbacks(t *testing.T) {
	var connected, disconnected []string
	opts := DefaultSessionOptions()
	opts.ControllerConnected = func(c *Controller) { connected = append(connected, c.Name()) }
	opts.ControllerDisconnected = func(c *Controller) { disconnected = append(disconnected, c.Name()) }

	dev := newFakeDevice()
	dev.scan = func(s *Session) {
		s.AddController(NewController(s, ApiCustom, OculusRemoteSpec()))
	}
	s := newTestSessionWith(dev, opts)
	if err := s.end(); err != nil {
		t.Fatal(err)
	}
	if len(connected) != 1 || connected[0] != "Oculus Remote" {
		t.Errorf("connected = %v, want [Oculus Remote]", connected)
	}
	if len(disconnected) != 1 {
		t.Errorf("disconnected = %v, want one entry", disconnected)
	}
	if !dev.closed {
		t.Error("device should be closed")
	}
}

func TestBeginAppliesTrackingOrigin(t *testing.T) {
	dev := newFakeDevice()
	opts := DefaultSessionOptions()
	opts.TrackingOrigin = TrackingOriginStanding
	newTestSessionWith(dev, opts)
	if dev.origin != TrackingOriginStanding {
		t.Errorf("origin = %v, want standing", dev.origin)
	}
	if dev.scans != 1 {
		t.Errorf("scans = %d, want 1", dev.scans)
	}
}

func TestScanInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval float64
		steps    []time.Duration
		want     int
	}{
		{"disabled", 0, []time.Duration{time.Hour, time.Hour}, 1},
		{"before period", 2, []time.Duration{time.Second, 500 * time.Millisecond}, 1},
		{"on period", 2, []time.Duration{2 * time.Second}, 2},
		{"twice", 1, []time.Duration{time.Second, 300 * time.Millisecond, 700 * time.Millisecond}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := &fakeClock{t: time.Unix(1000, 0)}
			dev := newFakeDevice()
			opts := DefaultSessionOptions()
			opts.SetControllerScanInterval(tt.interval)
			s := newSession(ApiCustom, 0, dev, opts.normalized(), discardLogger())
			s.now = clk.now
			s.begin()

			for _, d := range tt.steps {
				clk.advance(d)
				s.Update()
			}
			if dev.scans != tt.want {
				t.Errorf("scans = %d, want %d", dev.scans, tt.want)
			}
			if dev.updates != len(tt.steps) {
				t.Errorf("updates = %d, want %d", dev.updates, len(tt.steps))
			}
		})
	}
}

func TestSetControllerScanIntervalClamps(t *testing.T) {
	var opts SessionOptions
	opts.SetControllerScanInterval(-3)
	if opts.ControllerScanInterval != 0 {
		t.Errorf("interval = %v, want 0", opts.ControllerScanInterval)
	}
	if opts.ScanInterval() != 0 {
		t.Errorf("ScanInterval = %v, want 0", opts.ScanInterval())
	}
	opts.SetControllerScanInterval(1.5)
	if opts.ScanInterval() != 1500*time.Millisecond {
		t.Errorf("ScanInterval = %v, want 1.5s", opts.ScanInterval())
	}
}

func TestUpdateAfterEndIsNoop(t *testing.T) {
	dev := newFakeDevice()
	s := newTestSession(dev)
	if err := s.end(); err != nil {
		t.Fatal(err)
	}
	s.Update()
	if dev.updates != 0 {
		t.Errorf("updates = %d, want 0", dev.updates)
	}
	if !s.Ended() {
		t.Error("Ended = false")
	}
	// Ending twice is harmless.
	if err := s.end(); err != nil {
		t.Errorf("second end = %v", err)
	}
}

func TestCallbackHandleRemove(t *testing.T) {
	s := newTestSession(newFakeDevice())
	c := NewController(s, ApiCustom, OculusRemoteSpec())

	var a, b int
	ha := s.OnButtonDown(func(*Button) { a++ })
	s.OnButtonDown(func(*Button) { b++ })

	c.ProcessButtons(uint64(OculusButtonEnter))
	ha.Remove()
	c.ProcessButtons(0)
	c.ProcessButtons(uint64(OculusButtonEnter))

	if a != 1 {
		t.Errorf("removed handler calls = %d, want 1", a)
	}
	if b != 2 {
		t.Errorf("kept handler calls = %d, want 2", b)
	}

	// Removing twice and removing the zero handle are no-ops.
	ha.Remove()
	CallbackHandle{}.Remove()
}

func TestHandlerRemovesItselfDuringDispatch(t *testing.T) {
	s := newTestSession(newFakeDevice())
	var calls []string

	var once CallbackHandle
	once = s.OnButtonDown(func(*Button) {
		calls = append(calls, "once")
		once.Remove()
	})
	s.OnButtonDown(func(b *Button) { calls = append(calls, "every "+b.Name()) })

	var first CallbackHandle
	first = s.OnControllerConnected(func(*Controller) {
		calls = append(calls, "connected once")
		first.Remove()
	})
	s.OnControllerConnected(func(c *Controller) { calls = append(calls, "connected "+c.Type().String()) })

	c := NewController(s, ApiCustom, OculusXboxSpec())
	s.AddController(c)
	c.ProcessButtons(uint64(OculusButtonA))
	c.ProcessButtons(uint64(OculusButtonA | OculusButtonB))
	s.AddController(NewController(s, ApiCustom, OculusRemoteSpec()))

	want := []string{"connected once", "connected xbox", "once", "every A", "every B", "connected remote"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestTickDelta(t *testing.T) {
	tests := []struct {
		tps    int
		actual float64
		want   float64
	}{
		{60, 0, 1.0 / 60},
		{90, 55, 1.0 / 90},
		{-1, 120, 1.0 / 120},
		{-1, 0, 1.0 / 60},
	}
	for _, tt := range tests {
		if got := tickDelta(tt.tps, tt.actual); !approxEqual(got, tt.want, epsilon) {
			t.Errorf("tickDelta(%d, %v) = %v, want %v", tt.tps, tt.actual, got, tt.want)
		}
	}
}

func TestEventSink(t *testing.T) {
	s := newTestSession(newFakeDevice())
	sink := &fakeSink{}
	s.SetEventSink(sink)

	c := NewController(s, ApiCustom, OculusXboxSpec())
	s.AddController(c)
	c.ProcessButtons(uint64(OculusButtonA))
	c.Trigger(TriggerXboxLeft).setValue(0.5)
	s.DisconnectController(ControllerXbox)

	want := []EventType{EventControllerConnected, EventButtonDown, EventTrigger, EventControllerDisconnected}
	if len(sink.events) != len(want) {
		t.Fatalf("events = %v, want %d", sink.events, len(want))
	}
	for i, typ := range want {
		if sink.events[i].Type != typ {
			t.Errorf("event %d = %v, want %v", i, sink.events[i].Type, typ)
		}
		if sink.events[i].Controller != ControllerXbox {
			t.Errorf("event %d controller = %v, want xbox", i, sink.events[i].Controller)
		}
	}
	if ev := sink.events[1]; ev.Button != ButtonXboxA || ev.State != StateDown {
		t.Errorf("button event = %+v", ev)
	}
	if ev := sink.events[2]; ev.Trigger != TriggerXboxLeft || ev.Value != 0.5 {
		t.Errorf("trigger event = %+v", ev)
	}

	s.SetEventSink(nil)
	c.ProcessButtons(0)
	if len(sink.events) != len(want) {
		t.Error("detached sink should not receive events")
	}
}
