package save

import (
	"merge-and-wander/server/internal/game"
	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/world"
)

// DocumentVersion is the persisted-blob layout revision.
const DocumentVersion = 1

// CellRef is a lattice cell inside the persisted document.
type CellRef struct {
	I int `json:"i" jsonschema:"title=Row index,description=Cell row offset from the origin,required"`
	J int `json:"j" jsonschema:"title=Column index,description=Cell column offset from the origin,required"`
}

// OverrideRecord is one pinned cell inside the persisted document. Value 0
// pins the cell to empty.
type OverrideRecord struct {
	I     int `json:"i" jsonschema:"title=Row index,required"`
	J     int `json:"j" jsonschema:"title=Column index,required"`
	Value int `json:"value" jsonschema:"title=Pinned token value,description=0 pins the cell to empty; positive values pin a token,minimum=0,required"`
}

// Document is the whole persisted game in one blob: version, the held
// slot, the win flag, the player cell, every override, and the movement
// mode. There is no partial save and no partial load.
type Document struct {
	Ver       int              `json:"ver" jsonschema:"title=Layout version,description=Persisted-blob layout revision,required"`
	Held      int              `json:"held" jsonschema:"title=Held token,description=Value in the held slot; 0 is empty-handed,minimum=0,required"`
	Won       bool             `json:"won" jsonschema:"title=Win flag,description=Sticky win state frozen until reset"`
	Player    *CellRef         `json:"player" jsonschema:"title=Player cell,description=Cell the player stands on,required"`
	Overrides []OverrideRecord `json:"overrides,omitempty" jsonschema:"title=Override layer,description=Every cell pinned away from its procedural value"`
	Mode      string           `json:"mode,omitempty" jsonschema:"title=Movement mode,description=Active movement source; defaults to buttons,enum=buttons,enum=live"`
}

// Snapshot captures the live state into a version-stamped document.
// Override records come out in canonical order, so equal states encode
// byte-identically.
func Snapshot(st game.State, overrides []world.OverrideEntry) Document {
	doc := Document{
		Ver:    DocumentVersion,
		Held:   int(st.Held),
		Won:    st.Won,
		Player: &CellRef{I: st.Player.I, J: st.Player.J},
		Mode:   string(st.Mode),
	}
	if len(overrides) > 0 {
		doc.Overrides = make([]OverrideRecord, 0, len(overrides))
		for _, e := range overrides {
			doc.Overrides = append(doc.Overrides, OverrideRecord{
				I:     e.Cell.I,
				J:     e.Cell.J,
				Value: int(e.Value),
			})
		}
	}
	return doc
}

// State rebuilds the live state a validated document described.
func (d Document) State() (game.State, []world.OverrideEntry) {
	st := game.State{
		Held: world.Token(d.Held),
		Won:  d.Won,
		Mode: game.MovementButtons,
	}
	if d.Player != nil {
		st.Player = grid.Cell{I: d.Player.I, J: d.Player.J}
	}
	if mode, ok := game.ParseMovementMode(d.Mode); ok {
		st.Mode = mode
	}
	var entries []world.OverrideEntry
	if len(d.Overrides) > 0 {
		entries = make([]world.OverrideEntry, 0, len(d.Overrides))
		for _, r := range d.Overrides {
			entries = append(entries, world.OverrideEntry{
				Cell:  grid.Cell{I: r.I, J: r.J},
				Value: world.Token(r.Value),
			})
		}
	}
	return st, entries
}
