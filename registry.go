package willowvr

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

var (
	// ErrNoBackends is returned by BeginSession when nothing is registered.
	ErrNoBackends = errors.New("no backends registered")
	// ErrBackendExists is returned by Register for an api already in use.
	ErrBackendExists = errors.New("backend already registered")
	// ErrBackendNotFound is returned when no registered backend matches the
	// requested api flags.
	ErrBackendNotFound = errors.New("no backend matches requested api")
	// ErrDeviceBusy is returned when a session is already active for the
	// requested device.
	ErrDeviceBusy = errors.New("device already has an active session")
	// ErrSessionNotFound is returned by EndSession for a session this
	// registry did not create or already ended.
	ErrSessionNotFound = errors.New("session not found")
)

// BackendCandidate is a backend the registry may probe during Initialize.
type BackendCandidate struct {
	Api  Api
	Open func() (Backend, error)
}

type registeredBackend struct {
	api     Api
	backend Backend
	own     bool
}

// Registry is a caller-owned table of backends and the sessions they
// service. One registry may run several sessions on different devices.
type Registry struct {
	backends []registeredBackend
	sessions []*Session
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default().With("pkg", "willowvr")}
}

// SetLogger replaces the registry logger. Sessions begun afterwards derive
// their logger from it. Nil restores slog.Default.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	r.logger = l.With("pkg", "willowvr")
}

// Register adds a backend under api. When own is true the registry closes
// the backend in Close.
func (r *Registry) Register(api Api, b Backend, own bool) error {
	if b == nil {
		return fmt.Errorf("register %s: nil backend", api)
	}
	if r.Backend(api) != nil {
		return fmt.Errorf("register %s: %w", api, ErrBackendExists)
	}
	r.backends = append(r.backends, registeredBackend{api: api, backend: b, own: own})
	r.logger.Debug("backend registered", "api", api.String(), "backend", b.Name())
	return nil
}

// Initialize probes candidates whose api matches flags in order and
// registers the first that opens. Failures are logged and skipped.
func (r *Registry) Initialize(flags Api, candidates ...BackendCandidate) (Api, error) {
	for _, c := range candidates {
		if !c.Api.matches(flags) || r.Backend(c.Api) != nil {
			continue
		}
		b, err := c.Open()
		if err != nil {
			r.logger.Warn("backend unavailable", "api", c.Api.String(), "err", err)
			continue
		}
		if err := r.Register(c.Api, b, true); err != nil {
			_ = b.Close()
			return ApiUnknown, err
		}
		return c.Api, nil
	}
	return ApiUnknown, fmt.Errorf("initialize %s: %w", flags, ErrBackendNotFound)
}

// Backend returns the backend registered under exactly api, or nil.
func (r *Registry) Backend(api Api) Backend {
	for _, rb := range r.backends {
		if rb.api == api {
			return rb.backend
		}
	}
	return nil
}

// Apis returns the registered apis in registration order.
func (r *Registry) Apis() []Api {
	out := make([]Api, 0, len(r.backends))
	for _, rb := range r.backends {
		out = append(out, rb.api)
	}
	return out
}

// BeginSession opens a session on the first registered backend whose api is
// contained in flags.
func (r *Registry) BeginSession(opts SessionOptions, flags Api, deviceIndex int) (*Session, error) {
	if len(r.backends) == 0 {
		return nil, fmt.Errorf("begin session: %w", ErrNoBackends)
	}
	for _, rb := range r.backends {
		if !rb.api.matches(flags) {
			continue
		}
		if r.active(rb.api, deviceIndex) {
			return nil, fmt.Errorf("begin session %s device %d: %w", rb.api, deviceIndex, ErrDeviceBusy)
		}
		opts = opts.normalized()
		dev, err := rb.backend.Open(opts, deviceIndex)
		if err != nil {
			return nil, fmt.Errorf("begin session %s device %d: %w", rb.api, deviceIndex, err)
		}
		s := newSession(rb.api, deviceIndex, dev, opts, r.logger)
		r.sessions = append(r.sessions, s)
		s.begin()
		return s, nil
	}
	return nil, fmt.Errorf("begin session %s: %w", flags, ErrBackendNotFound)
}

func (r *Registry) active(api Api, deviceIndex int) bool {
	for _, s := range r.sessions {
		if s.api == api && s.deviceIndex == deviceIndex {
			return true
		}
	}
	return false
}

// EndSession disconnects the session's controllers and closes its device.
func (r *Registry) EndSession(s *Session) error {
	for i, cur := range r.sessions {
		if cur == s {
			copy(r.sessions[i:], r.sessions[i+1:])
			r.sessions[len(r.sessions)-1] = nil
			r.sessions = r.sessions[:len(r.sessions)-1]
			if err := s.end(); err != nil {
				return fmt.Errorf("end session %s: %w", s.id, err)
			}
			return nil
		}
	}
	return ErrSessionNotFound
}

// Sessions returns the active sessions in begin order.
func (r *Registry) Sessions() []*Session {
	return r.sessions
}

// Session returns the active session with the given id, or nil.
func (r *Registry) Session(id uuid.UUID) *Session {
	for _, s := range r.sessions {
		if s.id == id {
			return s
		}
	}
	return nil
}

// Close ends every session and closes owned backends.
func (r *Registry) Close() error {
	var errs []error
	for len(r.sessions) > 0 {
		if err := r.EndSession(r.sessions[len(r.sessions)-1]); err != nil {
			errs = append(errs, err)
		}
	}
	for _, rb := range r.backends {
		if !rb.own {
			continue
		}
		if err := rb.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", rb.api, err))
		}
	}
	r.backends = nil
	return errors.Join(errs...)
}
