package records

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeFixture reads a JSON snapshot used to seed a store. Dates
// are RFC 3339 timestamps; unknown fields and categories are rejected.
func DecodeFixture(r io.Reader) (Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("records: decode fixture: %w", err)
	}
	return snap, nil
}
