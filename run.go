package willowvr

import (
	"errors"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// App is the application driven by Run.
type App interface {
	// Update runs once per tick after the session processed input.
	Update() error
	// DrawEye renders one eye. Called between Bind and Unbind for EyeLeft
	// and EyeRight each frame.
	DrawEye(h *Hmd, eye Eye)
}

// RunConfig configures the mirror window opened by Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the window size in pixels. Zero uses half the
	// render target width and its full height.
	Width, Height int
	// ShowFPS draws the debug overlay over the mirror.
	ShowFPS bool
	// Debug enables per-frame timing logs on the session.
	Debug bool
}

// ErrQuit may be returned from App.Update to end Run without an error.
var ErrQuit = errors.New("quit")

type gameShell struct {
	session *Session
	app     App
	cfg     RunConfig
}

// Run opens a mirror window and drives s until the window is closed or
// app.Update returns an error. Each tick runs Session.Update then
// app.Update; each frame binds the headset, renders both eyes, and submits
// through DrawMirrored.
func Run(s *Session, app App, cfg RunConfig) error {
	w, h := s.hmd.RenderTargetSize()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = max(w/2, 1), max(h, 1)
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetVsyncEnabled(s.opts.VerticalSync)
	if s.opts.FrameRate > 0 {
		ebiten.SetTPS(tickRate(s.opts.FrameRate))
	}
	s.SetDebugMode(cfg.Debug)

	err := ebiten.RunGame(&gameShell{session: s, app: app, cfg: cfg})
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

func (g *gameShell) Update() error {
	g.session.Update()
	if g.session.runner != nil && g.session.runner.Done() && len(g.session.screenshotQueue) == 0 {
		return ErrQuit
	}
	return g.app.Update()
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	h := g.session.hmd
	h.Bind()
	for e := EyeLeft; e <= EyeRight; e++ {
		g.app.DrawEye(h, e)
	}
	h.Unbind()

	b := screen.Bounds()
	rect := Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), Width: float64(b.Dx()), Height: float64(b.Dy())}
	_ = h.DrawMirrored(screen, rect, true)
	if g.cfg.ShowFPS {
		h.DrawDebugInfo(screen)
	}
}

func (g *gameShell) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// tickRate rounds a frame rate in hertz to an ebiten tick rate.
func tickRate(hz float64) int {
	return max(int(math.Round(hz)), 1)
}
