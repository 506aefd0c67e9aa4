package willowvr

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

// Session owns one Hmd and the controllers connected to it. Sessions are
// created by Registry.BeginSession and torn down by Registry.EndSession.
// All methods must be called from the goroutine driving the frame loop.
type Session struct {
	id          uuid.UUID
	api         Api
	deviceIndex int
	opts        SessionOptions
	device      Device
	hmd         *Hmd
	controllers []*Controller
	handlers    handlerRegistry
	store       EventSink
	logger      *slog.Logger
	debug       bool
	ended       bool

	now      func() time.Time
	lastScan time.Time

	runner *ScriptRunner

	// ScreenshotDir is the directory where Screenshot writes PNG files.
	// Defaults to "screenshots".
	ScreenshotDir   string
	screenshotQueue []string
}

func newSession(api Api, deviceIndex int, dev Device, opts SessionOptions, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	s := &Session{
		id:            id,
		api:           api,
		deviceIndex:   deviceIndex,
		opts:          opts,
		device:        dev,
		logger:        logger.With("session", id.String(), "api", api.String()),
		now:           time.Now,
		ScreenshotDir: "screenshots",
	}
	if opts.ControllerConnected != nil {
		s.OnControllerConnected(opts.ControllerConnected)
	}
	if opts.ControllerDisconnected != nil {
		s.OnControllerDisconnected(opts.ControllerDisconnected)
	}
	s.hmd = newHmd(s, dev, opts)
	return s
}

// begin applies the tracking origin and performs the initial controller scan.
func (s *Session) begin() {
	if err := s.device.SetTrackingOrigin(s.opts.TrackingOrigin); err != nil {
		s.logger.Warn("set tracking origin", "origin", s.opts.TrackingOrigin.String(), "err", err)
	}
	s.device.ScanControllers(s)
	s.lastScan = s.now()
	s.logger.Info("session started", "device", s.device.Description(), "controllers", len(s.controllers))
}

// end disconnects every controller and closes the device.
func (s *Session) end() error {
	if s.ended {
		return nil
	}
	s.DisconnectAll()
	s.ended = true
	s.logger.Info("session ended")
	return s.device.Close()
}

// ID returns the unique session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Api returns the runtime api servicing the session.
func (s *Session) Api() Api { return s.api }

// DeviceIndex returns the device index the session was opened with.
func (s *Session) DeviceIndex() int { return s.deviceIndex }

// Options returns the options the session was started with.
func (s *Session) Options() SessionOptions { return s.opts }

// Hmd returns the session's headset.
func (s *Session) Hmd() *Hmd { return s.hmd }

// Device returns the driver servicing the session.
func (s *Session) Device() Device { return s.device }

// Ended reports whether the session has been torn down.
func (s *Session) Ended() bool { return s.ended }

// SetEventSink sets the sink that receives a copy of every controller event.
// Pass nil to disconnect.
func (s *Session) SetEventSink(sink EventSink) {
	s.store = sink
}

// SetDebugMode enables or disables per-frame timing logs.
func (s *Session) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// SetLogger replaces the session logger. Nil restores slog.Default.
func (s *Session) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.logger = l.With("session", s.id.String(), "api", s.api.String())
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Update runs the per-frame input step: script runner, look-at animation,
// periodic controller re-scan, then driver events and controller input.
func (s *Session) Update() {
	if s.ended {
		return
	}
	if s.runner != nil {
		s.runner.step(s)
	}

	s.hmd.update(float32(frameDelta()))

	if iv := s.opts.ScanInterval(); iv > 0 {
		now := s.now()
		if now.Sub(s.lastScan) >= iv {
			s.lastScan = now
			s.device.ScanControllers(s)
		}
	}
	s.device.ProcessEvents(s)
}

// --- Controllers ---

// AddController appends c and emits the connect event. It is a no-op
// returning false when a controller of the same type is already present.
func (s *Session) AddController(c *Controller) bool {
	if c == nil || s.HasController(c.typ) {
		return false
	}
	s.controllers = append(s.controllers, c)
	s.logger.Debug("controller connected", "name", c.name, "type", c.typ.String())
	s.emitConnected(c)
	return true
}

// RemoveController erases the controller of type t without emitting and
// returns it, or nil when absent.
func (s *Session) RemoveController(t ControllerType) *Controller {
	for i, c := range s.controllers {
		if c.typ == t {
			copy(s.controllers[i:], s.controllers[i+1:])
			s.controllers[len(s.controllers)-1] = nil
			s.controllers = s.controllers[:len(s.controllers)-1]
			return c
		}
	}
	return nil
}

// DisconnectController emits the disconnect event for the controller of
// type t and then removes it. Returns false when absent.
func (s *Session) DisconnectController(t ControllerType) bool {
	c := s.Controller(t)
	if c == nil {
		return false
	}
	s.logger.Debug("controller disconnected", "name", c.name, "type", c.typ.String())
	s.emitDisconnected(c)
	s.RemoveController(t)
	return true
}

// DisconnectAll disconnects every controller in reverse connect order.
func (s *Session) DisconnectAll() {
	for i := len(s.controllers) - 1; i >= 0; i-- {
		if i < len(s.controllers) {
			s.DisconnectController(s.controllers[i].typ)
		}
	}
}

// HasController reports whether a controller of type t is connected.
func (s *Session) HasController(t ControllerType) bool {
	return s.Controller(t) != nil
}

// Controller returns the connected controller of type t, or nil.
func (s *Session) Controller(t ControllerType) *Controller {
	for _, c := range s.controllers {
		if c.typ == t {
			return c
		}
	}
	return nil
}

// Controllers returns the connected controllers in connect order. The slice
// is owned by the session and valid until the next Update.
func (s *Session) Controllers() []*Controller {
	return s.controllers
}

// SetScriptRunner attaches a ScriptRunner. Its step method is called from
// Session.Update before controller input is processed.
func (s *Session) SetScriptRunner(r *ScriptRunner) {
	s.runner = r
}

// frameDelta returns the duration of one tick in seconds.
func frameDelta() float64 {
	return tickDelta(ebiten.TPS(), ebiten.ActualTPS())
}

// tickDelta converts a tick rate to seconds per tick. Under SyncWithFPS the
// rate is not fixed, so the measured rate is used, then the default.
func tickDelta(tps int, actual float64) float64 {
	switch {
	case tps > 0:
		return 1 / float64(tps)
	case actual > 0:
		return 1 / actual
	}
	return 1 / float64(ebiten.DefaultTPS)
}
