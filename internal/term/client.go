package term

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"

	server "merge-and-wander/server"
	"merge-and-wander/server/internal/game"
	"merge-and-wander/server/internal/grid"
)

// Config carries what the terminal client needs to run.
type Config struct {
	Session *server.Session
	Logger  *log.Logger
}

const (
	// drawInterval paces repaints. Text repaints are cheap; this mostly
	// keeps the status line and the walk feeling immediate.
	drawInterval = 50 * time.Millisecond
	// walkInterval paces synthetic live fixes. It stays under the
	// session's position rate so fixes are not throttled away.
	walkInterval = 500 * time.Millisecond
)

const helpLine = "arrows/hjkl move   click pick/place   g walk   r reset   q quit"

// Run owns the screen lifecycle and drives the session until the
// context is canceled or the player quits.
func Run(ctx context.Context, cfg Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	return newClient(screen, cfg).run(ctx)
}

// client is the event-loop state. Everything below runs on the loop
// goroutine; the display carries its own lock for surface calls coming
// back from the session.
type client struct {
	screen  tcell.Screen
	session *server.Session
	display *Display
	logger  *log.Logger
	mapper  grid.Mapper
	cell    float64
	rng     *rand.Rand

	mouseDown bool
	walking   bool
	walkPos   grid.LatLng
}

func newClient(screen tcell.Screen, cfg Config) *client {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	rules := cfg.Session.Rules()
	return &client{
		screen:  screen,
		session: cfg.Session,
		display: NewDisplay(screen, rules.CellSizeDegrees),
		logger:  logger,
		mapper:  rules.Mapper(),
		cell:    rules.CellSizeDegrees,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *client) run(ctx context.Context) error {
	c.session.AttachSurface(ctx, "terminal", c.display)
	defer c.session.DetachSurface()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	draw := time.NewTicker(drawInterval)
	defer draw.Stop()
	walk := time.NewTicker(walkInterval)
	defer walk.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !c.handleEvent(ctx, ev) {
				return nil
			}
		case <-walk.C:
			c.stepWalk(ctx)
		case <-draw.C:
			if b, changed := c.display.Viewport(); changed {
				c.session.HandleViewportSettled(ctx, b)
			}
			c.display.Draw()
		}
	}
}

// handleEvent dispatches one terminal event. It returns false when the
// player asked to quit.
func (c *client) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(ctx, ev)
	case *tcell.EventMouse:
		c.handleMouse(ctx, ev)
	case *tcell.EventResize:
		c.screen.Sync()
		c.display.Invalidate()
	}
	return true
}

func (c *client) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		c.session.PressMove(1, 0)
	case tcell.KeyDown:
		c.session.PressMove(-1, 0)
	case tcell.KeyLeft:
		c.session.PressMove(0, -1)
	case tcell.KeyRight:
		c.session.PressMove(0, 1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'h':
			c.session.PressMove(0, -1)
		case 'j':
			c.session.PressMove(-1, 0)
		case 'k':
			c.session.PressMove(1, 0)
		case 'l':
			c.session.PressMove(0, 1)
		case 'g':
			c.toggleWalk(ctx)
		case 'r':
			c.reset(ctx)
		}
	}
	return true
}

// handleMouse fires a cell click on the press transition only, so a
// held or dragged button does not repeat the activation.
func (c *client) handleMouse(ctx context.Context, ev *tcell.EventMouse) {
	pressed := ev.Buttons()&tcell.Button1 != 0
	defer func() { c.mouseDown = pressed }()
	if !pressed || c.mouseDown {
		return
	}
	x, y := ev.Position()
	p, ok := c.display.PointAt(x, y)
	if !ok {
		return
	}
	c.session.HandleCellClick(ctx, c.mapper.CellAt(p))
}

// toggleWalk flips between button movement and a synthetic
// live-location feed that wanders from the player's position.
func (c *client) toggleWalk(ctx context.Context) {
	if c.walking {
		if err := c.session.SwitchMovementMode(ctx, game.MovementButtons); err != nil {
			c.logger.Printf("switch to buttons failed: %v", err)
			return
		}
		c.walking = false
		return
	}
	if err := c.session.SwitchMovementMode(ctx, game.MovementLive); err != nil {
		c.logger.Printf("switch to live failed: %v", err)
		return
	}
	c.walking = true
	c.walkPos = c.mapper.Center(c.session.State().Player)
}

// stepWalk feeds the next synthetic fix. Steps are at most one cell per
// axis so the walk reads as a plausible stroll.
func (c *client) stepWalk(ctx context.Context) {
	if !c.walking {
		return
	}
	c.walkPos.Lat += (c.rng.Float64() - 0.5) * 2 * c.cell
	c.walkPos.Lng += (c.rng.Float64() - 0.5) * 2 * c.cell
	c.session.PushPosition(c.walkPos)
}

// reset starts the game over. The session switches movement back to
// buttons, so the local walk flag drops with it.
func (c *client) reset(ctx context.Context) {
	c.walking = false
	c.session.Reset(ctx)
}
