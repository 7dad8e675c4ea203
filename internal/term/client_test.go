package term

import (
	"context"
	"io"
	"log"
	"math/rand"
	"testing"

	"github.com/gdamore/tcell/v2"

	server "merge-and-wander/server"
	"merge-and-wander/server/internal/game"
	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/save"
	"merge-and-wander/server/internal/world"
)

// newTestClient builds a client over a fully spawning world so every
// cell holds a token. The rng is reseeded so walk tests are stable.
func newTestClient(t *testing.T) *client {
	t.Helper()
	rules := world.Rules{
		Seed:              "term-test",
		SpawnProbability:  1,
		InteractionRadius: 3,
		WinTarget:         32,
	}.Normalized()
	session := server.NewSession(server.SessionConfig{
		Rules:  rules,
		Store:  save.NewMemoryStore(),
		Logger: log.New(io.Discard, "", 0),
	})
	t.Cleanup(session.Close)

	c := newClient(newSimScreen(t, 42, 13), Config{
		Session: session,
		Logger:  log.New(io.Discard, "", 0),
	})
	c.rng = rand.New(rand.NewSource(1))
	session.AttachSurface(context.Background(), "test", c.display)
	return c
}

func TestClientKeysDriveMovement(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	steps := []struct {
		name string
		ev   *tcell.EventKey
		want grid.Cell
	}{
		{"k goes north", tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), grid.Cell{I: 1}},
		{"right arrow goes east", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), grid.Cell{I: 1, J: 1}},
		{"h goes west", tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModNone), grid.Cell{I: 1}},
		{"down arrow goes south", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), grid.Cell{}},
	}
	for _, tc := range steps {
		if !c.handleKey(ctx, tc.ev) {
			t.Fatalf("%s: expected the loop to keep running", tc.name)
		}
		if got := c.session.State().Player; got != tc.want {
			t.Fatalf("%s: expected the player at %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestClientQuitKeys(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	quits := []struct {
		name string
		ev   *tcell.EventKey
	}{
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)},
	}
	for _, tc := range quits {
		if c.handleKey(ctx, tc.ev) {
			t.Fatalf("expected %s to quit", tc.name)
		}
	}
	if !c.handleKey(ctx, tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Fatalf("expected an unbound key to keep the loop running")
	}
}

func TestClientMouseClicks(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	// Column 28 row 5 is one tile east of the camera, cell (0,1).
	press := tcell.NewEventMouse(28, 5, tcell.Button1, tcell.ModNone)
	release := tcell.NewEventMouse(28, 5, tcell.ButtonNone, tcell.ModNone)

	c.handleEvent(ctx, press)
	if got := c.session.State().Held; got != 1 {
		t.Fatalf("expected the click to pick up 1, got held %d", got)
	}

	t.Run("held button does not repeat", func(t *testing.T) {
		c.handleEvent(ctx, tcell.NewEventMouse(29, 5, tcell.Button1, tcell.ModNone))
		if got := c.session.State().Held; got != 1 {
			t.Fatalf("expected a dragged button to change nothing, got held %d", got)
		}
	})

	t.Run("release rearms the click", func(t *testing.T) {
		c.handleEvent(ctx, release)
		c.handleEvent(ctx, press)
		if got := c.session.State().Held; got != 0 {
			t.Fatalf("expected the second click to place the token, got held %d", got)
		}
	})

	t.Run("status rows are dead", func(t *testing.T) {
		c.handleEvent(ctx, release)
		c.handleEvent(ctx, tcell.NewEventMouse(5, 12, tcell.Button1, tcell.ModNone))
		if got := c.session.State().Held; got != 0 {
			t.Fatalf("expected a click on the help line to change nothing, got held %d", got)
		}
	})
}

func TestClientWalkToggle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	c.handleKey(ctx, tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone))
	if got := c.session.ActiveMode(); got != game.MovementLive {
		t.Fatalf("expected live mode after g, got %q", got)
	}
	if !c.walking {
		t.Fatalf("expected the walk to be on")
	}
	if want := c.mapper.Center(c.session.State().Player); c.walkPos != want {
		t.Fatalf("expected the walk to start at %+v, got %+v", want, c.walkPos)
	}

	c.stepWalk(ctx)
	if got, want := c.session.State().Player, c.mapper.CellAt(c.walkPos); got != want {
		t.Fatalf("expected the player to follow the fix to %+v, got %+v", want, got)
	}

	c.handleKey(ctx, tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone))
	if got := c.session.ActiveMode(); got != game.MovementButtons {
		t.Fatalf("expected buttons mode after the second g, got %q", got)
	}
	if c.walking {
		t.Fatalf("expected the walk to be off")
	}
}

func TestClientResetKey(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	c.handleEvent(ctx, tcell.NewEventMouse(28, 5, tcell.Button1, tcell.ModNone))
	c.handleKey(ctx, tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone))
	c.handleKey(ctx, tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))

	if got := c.session.State().Held; got != 0 {
		t.Fatalf("expected reset to drop the held token, got %d", got)
	}
	if c.walking {
		t.Fatalf("expected reset to stop the walk")
	}
	if got := c.session.ActiveMode(); got != game.MovementButtons {
		t.Fatalf("expected reset to fall back to buttons, got %q", got)
	}
}
