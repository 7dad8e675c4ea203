package server

import (
	"context"
	"log"
	"strconv"
	"sync"

	"merge-and-wander/server/internal/game"
	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/movement"
	"merge-and-wander/server/internal/save"
	"merge-and-wander/server/internal/view"
	"merge-and-wander/server/internal/world"
	"merge-and-wander/server/logging"
	loggingGameplay "merge-and-wander/server/logging/gameplay"
	loggingMovement "merge-and-wander/server/logging/movement"
	loggingPersistence "merge-and-wander/server/logging/persistence"
	loggingViewport "merge-and-wander/server/logging/viewport"
)

// SessionConfig carries the collaborators a session needs. Zero values get
// safe defaults: default rules, an in-memory store, a nop publisher.
type SessionConfig struct {
	Rules         world.Rules
	Store         save.Store
	SaveKey       string
	Publisher     logging.Publisher
	Logger        *log.Logger
	MaxCells      int
	PositionRate  float64
	PositionBurst int
}

// Session is the authoritative hub for one game. Every external stimulus
// funnels through its mutex, so the engine underneath only ever sees one
// logical turn at a time. After each mutating turn the session saves
// best-effort; a failed save is logged and counted, never fatal.
type Session struct {
	mu  sync.Mutex
	seq uint64

	world   *world.World
	engine  *game.Engine
	views   *view.Manager
	surface view.Surface

	sources *movement.Supervisor
	buttons *movement.Buttons
	live    *movement.LiveLocation

	store   save.Store
	saveKey string

	pub       logging.Publisher
	logger    *log.Logger
	telemetry *telemetryCounters

	status string
}

type diagnosticsSnapshot struct {
	Seq          uint64 `json:"seq"`
	Held         int    `json:"held"`
	Won          bool   `json:"won"`
	Player       string `json:"player"`
	Mode         string `json:"mode"`
	Overrides    int    `json:"overrides"`
	Store        string `json:"store"`
	VisibleCells int    `json:"visibleCells"`
}

// NewSession builds a session, restoring state from the store when a valid
// save exists and starting from defaults otherwise. The movement source for
// the restored mode is started before the constructor returns.
func NewSession(cfg SessionConfig) *Session {
	rules := cfg.Rules.Normalized()
	store := cfg.Store
	if store == nil {
		store = save.NewMemoryStore()
	}
	key := cfg.SaveKey
	if key == "" {
		key = DefaultSaveKey
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Session{
		world:     world.New(rules),
		surface:   view.NopSurface{},
		sources:   movement.NewSupervisor(),
		store:     store,
		saveKey:   key,
		pub:       pub,
		logger:    logger,
		telemetry: newTelemetryCounters(),
	}
	s.views = view.NewManager(s.surface, s.world.Mapper(), cfg.MaxCells)

	st, entries := s.loadOrDefaults()
	s.world.RestoreOverrides(entries)
	s.engine = game.NewEngine(s.world, st)

	s.buttons = movement.NewButtons(s.sourceStep)
	s.live = movement.NewLiveLocation(s.sourceFix, cfg.PositionRate, cfg.PositionBurst)
	s.sources.Register(game.MovementButtons, s.buttons)
	s.sources.Register(game.MovementLive, s.live)
	if _, err := s.sources.Switch(st.Mode); err != nil {
		s.logger.Printf("failed to start movement source %q: %v", st.Mode, err)
	}

	s.status = statusText(st, game.Outcome{Kind: game.ActionNone})
	return s
}

// loadOrDefaults reads the save blob and validates it. Any failure, from a
// store error to a single malformed field, abandons the whole blob: the
// game restarts from defaults rather than resurrecting half a save.
func (s *Session) loadOrDefaults() (game.State, []world.OverrideEntry) {
	ctx := context.Background()
	blob, ok, err := s.store.Get(s.saveKey)
	if err != nil {
		s.logger.Printf("failed to read save %q: %v", s.saveKey, err)
		s.telemetry.RecordLoadDiscarded()
		loggingPersistence.LoadDiscarded(ctx, s.pub, 0, loggingPersistence.LoadDiscardedPayload{
			Store:  s.store.Name(),
			Reason: err.Error(),
		}, nil)
		return game.DefaultState(), nil
	}
	if !ok {
		return game.DefaultState(), nil
	}
	doc, err := save.Decode(blob)
	if err != nil {
		s.logger.Printf("discarding save %q: %v", s.saveKey, err)
		s.telemetry.RecordLoadDiscarded()
		loggingPersistence.LoadDiscarded(ctx, s.pub, 0, loggingPersistence.LoadDiscardedPayload{
			Store:  s.store.Name(),
			Reason: err.Error(),
		}, nil)
		return game.DefaultState(), nil
	}
	st, entries := doc.State()
	loggingPersistence.Loaded(ctx, s.pub, 0, loggingPersistence.LoadedPayload{
		Store:     s.store.Name(),
		Overrides: len(entries),
		Held:      int(st.Held),
	}, nil)
	return st, entries
}

// HandleCellClick resolves one cell activation: pickup, place, craft, or
// an advisory explaining why nothing happened.
func (s *Session) HandleCellClick(ctx context.Context, c grid.Cell) game.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeqLocked()
	s.telemetry.RecordClick()
	out := s.engine.ClickCell(c)
	s.telemetry.RecordOutcome(out)

	actor := s.playerRefLocked()
	switch out.Kind {
	case game.ActionPickup:
		loggingGameplay.Pickup(ctx, s.pub, seq, actor, loggingGameplay.PickupPayload{
			Cell:  out.Cell.Key(),
			Value: int(out.Value),
		}, nil)
	case game.ActionPlace:
		loggingGameplay.Place(ctx, s.pub, seq, actor, loggingGameplay.PlacePayload{
			Cell:  out.Cell.Key(),
			Value: int(out.Value),
		}, nil)
	case game.ActionCraft:
		loggingGameplay.Craft(ctx, s.pub, seq, actor, loggingGameplay.CraftPayload{
			Cell:     out.Cell.Key(),
			Combined: int(out.Value),
		}, nil)
	default:
		if out.Kind.Advisory() {
			loggingGameplay.Rejected(ctx, s.pub, seq, actor, loggingGameplay.RejectedPayload{
				Cell:   c.Key(),
				Reason: string(out.Kind),
			}, nil)
		}
	}

	if out.Changed {
		s.views.RefreshCell(out.Cell, s.labelLocked)
		if out.WonNow {
			loggingGameplay.Win(ctx, s.pub, seq, actor, loggingGameplay.WinPayload{
				Held:   int(out.Held),
				Target: s.world.Rules().WinTarget,
			}, nil)
		}
		s.persistLocked(ctx, seq)
	}
	s.pushStatusLocked(out)
	return out
}

// HandleViewportSettled rebuilds the materialized rects to cover the new
// viewport. Logical state is never touched; cells scrolling out of view
// lose their visuals and nothing else.
func (s *Session) HandleViewportSettled(ctx context.Context, b grid.Bounds) view.ReconcileResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeqLocked()
	res := s.views.Reconcile(b, s.labelLocked)
	s.telemetry.RecordReconcile(res.Rendered, res.Removed)
	loggingViewport.Reconciled(ctx, s.pub, seq, loggingViewport.ReconciledPayload{
		Rendered: res.Rendered,
		Removed:  res.Removed,
		Clipped:  res.Clipped,
	}, nil)
	return res
}

// PressMove feeds one directional press to the buttons source. In live
// mode the buttons source is stopped and the press is swallowed.
func (s *Session) PressMove(di, dj int) bool {
	return s.buttons.Press(di, dj)
}

// PushPosition feeds one raw position fix to the live source. In buttons
// mode the live source is stopped and the fix is swallowed.
func (s *Session) PushPosition(p grid.LatLng) bool {
	return s.live.Feed(p)
}

// SwitchMovementMode stops the active movement source and starts the one
// for mode. The mode rides along in the save so a reload resumes with the
// same source.
func (s *Session) SwitchMovementMode(ctx context.Context, mode game.MovementMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeqLocked()
	prev := s.engine.State().Mode
	if _, err := s.sources.Switch(mode); err != nil {
		loggingMovement.SwitchFailed(ctx, s.pub, seq, s.playerRefLocked(), loggingMovement.SwitchFailedPayload{
			Mode:   string(mode),
			Reason: err.Error(),
		}, nil)
		s.status = modeUnavailableText(s.engine.State())
		s.surface.SetStatus(s.status)
		return err
	}
	if s.engine.SetMode(mode) {
		loggingMovement.ModeSwitched(ctx, s.pub, seq, s.playerRefLocked(), loggingMovement.ModeSwitchedPayload{
			From: string(prev),
			To:   string(mode),
		}, nil)
		s.persistLocked(ctx, seq)
	}
	return nil
}

// Reset wipes the game back to defaults: overrides cleared, held slot
// emptied, win flag lifted, player back on the origin, store key removed,
// buttons source restarted.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeqLocked()
	cleared := s.world.OverrideCount()
	s.world.RestoreOverrides(nil)
	s.engine.Reset(game.DefaultState())

	if err := s.store.Remove(s.saveKey); err != nil {
		s.logger.Printf("failed to clear save %q: %v", s.saveKey, err)
		s.telemetry.RecordSave(false)
		loggingPersistence.SaveFailed(ctx, s.pub, seq, loggingPersistence.SaveFailedPayload{
			Store:  s.store.Name(),
			Reason: err.Error(),
		}, nil)
	} else {
		loggingPersistence.Cleared(ctx, s.pub, seq, loggingPersistence.ClearedPayload{
			Store: s.store.Name(),
			Key:   s.saveKey,
		}, nil)
	}
	s.telemetry.RecordReset()

	if _, err := s.sources.Switch(game.MovementButtons); err != nil {
		s.logger.Printf("failed to restart buttons source: %v", err)
	}

	s.views.Refresh(s.labelLocked)
	center := s.world.Mapper().Center(grid.Cell{})
	s.surface.MoveMarker(center)
	s.surface.PanTo(center)

	loggingGameplay.Reset(ctx, s.pub, seq, s.playerRefLocked(), loggingGameplay.ResetPayload{
		OverridesCleared: cleared,
	}, nil)
	s.pushStatusLocked(game.Outcome{Kind: game.ActionNone})
}

// AttachSurface swaps in a rendering surface and replays the whole visual
// state onto it: last viewport, marker, pan, status line.
func (s *Session) AttachSurface(ctx context.Context, client string, sur view.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeqLocked()
	if sur == nil {
		sur = view.NopSurface{}
	}
	s.surface = sur
	s.views.SetSurface(sur)
	s.views.Refresh(s.labelLocked)

	center := s.world.Mapper().Center(s.engine.State().Player)
	sur.MoveMarker(center)
	sur.PanTo(center)
	sur.SetStatus(s.status)

	loggingViewport.SurfaceAttached(ctx, s.pub, seq, loggingViewport.SurfaceAttachedPayload{
		Client: client,
	}, nil)
}

// DetachSurface drops the current surface. Visual state keeps accumulating
// against a nop target until the next attach replays it.
func (s *Session) DetachSurface() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface = view.NopSurface{}
	s.views.SetSurface(s.surface)
}

// Close stops the movement sources. The store stays open; whoever opened
// it closes it.
func (s *Session) Close() {
	s.sources.StopAll()
}

// Rules returns the normalized world rules the session runs under.
func (s *Session) Rules() world.Rules {
	return s.world.Rules()
}

// State returns a copy of the current game state.
func (s *Session) State() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// StatusLine returns the current player-facing status text.
func (s *Session) StatusLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ActiveMode reports which movement source currently runs.
func (s *Session) ActiveMode() game.MovementMode {
	return s.sources.Active()
}

// DiagnosticsSnapshot summarizes the session for the diagnostics endpoint.
func (s *Session) DiagnosticsSnapshot() diagnosticsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.engine.State()
	return diagnosticsSnapshot{
		Seq:          s.seq,
		Held:         int(st.Held),
		Won:          st.Won,
		Player:       st.Player.Key(),
		Mode:         string(st.Mode),
		Overrides:    s.world.OverrideCount(),
		Store:        s.store.Name(),
		VisibleCells: s.views.MaterializedCount(),
	}
}

// TelemetrySnapshot returns the counter totals.
func (s *Session) TelemetrySnapshot() telemetrySnapshot {
	return s.telemetry.Snapshot()
}

// sourceStep receives relative steps forwarded by the buttons source.
// Stale tickets identify presses that raced a source switch; they are
// dropped before touching the engine.
func (s *Session) sourceStep(t movement.Ticket, di, dj int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.sources.ActiveTicket() {
		s.telemetry.RecordStaleDrop()
		loggingMovement.StaleDropped(context.Background(), s.pub, s.seq, s.playerRefLocked(), loggingMovement.StaleDroppedPayload{
			Source: s.buttons.Name(),
		}, nil)
		return
	}
	seq := s.nextSeqLocked()
	prev := s.engine.State().Player
	out := s.engine.MoveBy(di, dj)
	s.telemetry.RecordOutcome(out)
	s.moveOutcomeLocked(context.Background(), seq, prev, out)
}

// sourceFix receives throttled position fixes forwarded by the live
// source and snaps them to the cell lattice.
func (s *Session) sourceFix(t movement.Ticket, p grid.LatLng) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.sources.ActiveTicket() {
		s.telemetry.RecordStaleDrop()
		loggingMovement.StaleDropped(context.Background(), s.pub, s.seq, s.playerRefLocked(), loggingMovement.StaleDroppedPayload{
			Source: s.live.Name(),
		}, nil)
		return
	}
	seq := s.nextSeqLocked()
	prev := s.engine.State().Player
	out := s.engine.MoveTo(s.world.Mapper().CellAt(p))
	s.telemetry.RecordOutcome(out)
	s.moveOutcomeLocked(context.Background(), seq, prev, out)
}

func (s *Session) moveOutcomeLocked(ctx context.Context, seq uint64, prev grid.Cell, out game.Outcome) {
	if out.Changed {
		center := s.world.Mapper().Center(out.Player)
		s.surface.MoveMarker(center)
		s.surface.PanTo(center)
		loggingMovement.Step(ctx, s.pub, seq, s.playerRefLocked(), loggingMovement.StepPayload{
			From: prev.Key(),
			To:   out.Player.Key(),
		}, nil)
		s.persistLocked(ctx, seq)
	}
	s.pushStatusLocked(out)
}

// persistLocked saves the whole game in one blob. Failures are logged and
// counted; gameplay continues with durability suspended until a later
// save succeeds.
func (s *Session) persistLocked(ctx context.Context, seq uint64) {
	blob, err := save.Encode(save.Snapshot(s.engine.State(), s.world.OverrideEntries()))
	if err != nil {
		s.logger.Printf("failed to encode save: %v", err)
		s.telemetry.RecordSave(false)
		loggingPersistence.SaveFailed(ctx, s.pub, seq, loggingPersistence.SaveFailedPayload{
			Store:  s.store.Name(),
			Reason: err.Error(),
		}, nil)
		return
	}
	if err := s.store.Set(s.saveKey, blob); err != nil {
		s.logger.Printf("failed to write save %q: %v", s.saveKey, err)
		s.telemetry.RecordSave(false)
		loggingPersistence.SaveFailed(ctx, s.pub, seq, loggingPersistence.SaveFailedPayload{
			Store:  s.store.Name(),
			Reason: err.Error(),
		}, nil)
		return
	}
	s.telemetry.RecordSave(true)
}

func (s *Session) pushStatusLocked(out game.Outcome) {
	s.status = statusText(s.engine.State(), out)
	s.surface.SetStatus(s.status)
}

func (s *Session) labelLocked(c grid.Cell) string {
	v := s.world.EffectiveValue(c)
	if v == world.TokenNone {
		return ""
	}
	return strconv.Itoa(int(v))
}

func (s *Session) playerRefLocked() logging.EntityRef {
	return logging.EntityRef{
		ID:   s.engine.State().Player.Key(),
		Kind: logging.EntityKindPlayer,
	}
}

func (s *Session) nextSeqLocked() uint64 {
	s.seq++
	s.telemetry.RecordStimulus(s.seq)
	return s.seq
}
