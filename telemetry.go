package server

import (
	"fmt"
	"os"
	"sync/atomic"

	"merge-and-wander/server/internal/game"
)

type telemetryCounters struct {
	stimuli        atomic.Uint64
	clicks         atomic.Uint64
	moves          atomic.Uint64
	pickups        atomic.Uint64
	places         atomic.Uint64
	crafts         atomic.Uint64
	advisories     atomic.Uint64
	wins           atomic.Uint64
	resets         atomic.Uint64
	savesOK        atomic.Uint64
	savesFailed    atomic.Uint64
	loadsDiscarded atomic.Uint64
	reconciles     atomic.Uint64
	rectsRendered  atomic.Uint64
	rectsRemoved   atomic.Uint64
	staleDropped   atomic.Uint64
	debug          bool
}

type telemetrySnapshot struct {
	Stimuli        uint64 `json:"stimuli"`
	Clicks         uint64 `json:"clicks"`
	Moves          uint64 `json:"moves"`
	Pickups        uint64 `json:"pickups"`
	Places         uint64 `json:"places"`
	Crafts         uint64 `json:"crafts"`
	Advisories     uint64 `json:"advisories"`
	Wins           uint64 `json:"wins"`
	Resets         uint64 `json:"resets"`
	SavesOK        uint64 `json:"savesOk"`
	SavesFailed    uint64 `json:"savesFailed"`
	LoadsDiscarded uint64 `json:"loadsDiscarded"`
	Reconciles     uint64 `json:"reconciles"`
	RectsRendered  uint64 `json:"rectsRendered"`
	RectsRemoved   uint64 `json:"rectsRemoved"`
	StaleDropped   uint64 `json:"staleDropped"`
}

func newTelemetryCounters() *telemetryCounters {
	t := &telemetryCounters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		t.debug = true
	}
	return t
}

func (t *telemetryCounters) RecordStimulus(seq uint64) {
	t.stimuli.Add(1)
	if t.debug {
		fmt.Printf(
			"[telemetry] seq=%d clicks=%d moves=%d crafts=%d savesOk=%d savesFailed=%d\n",
			seq,
			t.clicks.Load(),
			t.moves.Load(),
			t.crafts.Load(),
			t.savesOK.Load(),
			t.savesFailed.Load(),
		)
	}
}

func (t *telemetryCounters) RecordClick() {
	t.clicks.Add(1)
}

func (t *telemetryCounters) RecordOutcome(out game.Outcome) {
	switch out.Kind {
	case game.ActionPickup:
		t.pickups.Add(1)
	case game.ActionPlace:
		t.places.Add(1)
	case game.ActionCraft:
		t.crafts.Add(1)
	case game.ActionMove:
		t.moves.Add(1)
	}
	if out.Kind.Advisory() {
		t.advisories.Add(1)
	}
	if out.WonNow {
		t.wins.Add(1)
	}
}

func (t *telemetryCounters) RecordSave(ok bool) {
	if ok {
		t.savesOK.Add(1)
	} else {
		t.savesFailed.Add(1)
	}
}

func (t *telemetryCounters) RecordLoadDiscarded() {
	t.loadsDiscarded.Add(1)
}

func (t *telemetryCounters) RecordReconcile(rendered, removed int) {
	if rendered < 0 {
		rendered = 0
	}
	if removed < 0 {
		removed = 0
	}
	t.reconciles.Add(1)
	t.rectsRendered.Add(uint64(rendered))
	t.rectsRemoved.Add(uint64(removed))
}

func (t *telemetryCounters) RecordReset() {
	t.resets.Add(1)
}

func (t *telemetryCounters) RecordStaleDrop() {
	t.staleDropped.Add(1)
}

func (t *telemetryCounters) DebugEnabled() bool {
	return t.debug
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		Stimuli:        t.stimuli.Load(),
		Clicks:         t.clicks.Load(),
		Moves:          t.moves.Load(),
		Pickups:        t.pickups.Load(),
		Places:         t.places.Load(),
		Crafts:         t.crafts.Load(),
		Advisories:     t.advisories.Load(),
		Wins:           t.wins.Load(),
		Resets:         t.resets.Load(),
		SavesOK:        t.savesOK.Load(),
		SavesFailed:    t.savesFailed.Load(),
		LoadsDiscarded: t.loadsDiscarded.Load(),
		Reconciles:     t.reconciles.Load(),
		RectsRendered:  t.rectsRendered.Load(),
		RectsRemoved:   t.rectsRemoved.Load(),
		StaleDropped:   t.staleDropped.Load(),
	}
}
