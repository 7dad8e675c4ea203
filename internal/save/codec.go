package save

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Encode serializes a document into the single persisted blob. Overrides
// are sorted by row then column first, so identical states always produce
// identical bytes.
func Encode(doc Document) ([]byte, error) {
	if doc.Player == nil {
		return nil, fmt.Errorf("encode save: player cell missing")
	}
	if len(doc.Overrides) > 1 {
		sorted := make([]OverrideRecord, len(doc.Overrides))
		copy(sorted, doc.Overrides)
		sort.Slice(sorted, func(a, b int) bool {
			if sorted[a].I != sorted[b].I {
				return sorted[a].I < sorted[b].I
			}
			return sorted[a].J < sorted[b].J
		})
		doc.Overrides = sorted
	}
	blob, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return blob, nil
}

// Decode parses and validates a persisted blob. Validation is
// all-or-nothing: any malformed or out-of-range field rejects the whole
// blob, and the caller falls back to a fresh default state rather than
// resurrecting half a save. Unknown fields are ignored so newer writers
// stay readable.
func Decode(blob []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(blob, &doc); err != nil {
		return Document{}, fmt.Errorf("decode save: %w", err)
	}
	if doc.Ver != DocumentVersion {
		return Document{}, fmt.Errorf("decode save: unsupported version %d", doc.Ver)
	}
	if doc.Player == nil {
		return Document{}, fmt.Errorf("decode save: player cell missing")
	}
	if doc.Held < 0 {
		return Document{}, fmt.Errorf("decode save: negative held value %d", doc.Held)
	}
	seen := make(map[CellRef]struct{}, len(doc.Overrides))
	for _, r := range doc.Overrides {
		if r.Value < 0 {
			return Document{}, fmt.Errorf("decode save: negative override value %d at %d,%d", r.Value, r.I, r.J)
		}
		ref := CellRef{I: r.I, J: r.J}
		if _, dup := seen[ref]; dup {
			return Document{}, fmt.Errorf("decode save: duplicate override for cell %d,%d", r.I, r.J)
		}
		seen[ref] = struct{}{}
	}
	return doc, nil
}
