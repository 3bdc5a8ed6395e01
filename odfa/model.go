package odfa

import "github.com/SJieNg123/zids/zidserr"

// Edge is a single out-transition: (group_id, next_state, attack_id). A
// dummy padding edge (added to rows shorter than outmax during garbling) has
// GroupID = -1, NextState = 0, AttackID = 0.
type Edge struct {
	GroupID   int
	NextState int
	AttackID  int
}

// IsDummy reports whether this edge is a padding placeholder.
func (e Edge) IsDummy() bool { return e.GroupID == -1 }

// DummyEdge constructs the canonical padding edge used to fill a row out to
// outmax columns.
func DummyEdge() Edge {
	return Edge{GroupID: -1, NextState: 0, AttackID: 0}
}

// Row is one state's out-edges, in order, plus the symbol routing that
// decides which edge (if any) a given input byte takes. Alpha.SymToCols[x]
// lists the edge indices (columns, after PadToOutmax) symbol x may use in
// this row; a symbol absent from every column has no transition here. A
// zero-value Alpha (nil SymToCols) means the row was built without online
// OT support (offline-only decrypt/inspection use) and must not be passed
// to the per-row OT plan builder.
type Row struct {
	Edges []Edge
	Alpha RowAlphabet
}

// PadToOutmax returns a copy of the row's edges padded with DummyEdge() up
// to exactly outmax entries. It never truncates: a row with more than
// outmax edges is a validation error the caller must catch beforehand.
func (r Row) PadToOutmax(outmax int) []Edge {
	out := make([]Edge, 0, outmax)
	out = append(out, r.Edges...)
	for len(out) < outmax {
		out = append(out, DummyEdge())
	}
	return out
}

// ODFA is the sparsified automaton: states [0, NumStates), a start state, an
// accepting map (state -> attack id, 0 means non-accepting), and per-state
// rows of out-edges.
type ODFA struct {
	NumStates  int
	StartState int
	Accepting  map[int]int
	Rows       []Row
}

// Validate enforces the ODFA's structural invariants: row count matches
// NumStates, every edge's NextState is in range, AttackID is non-negative,
// and each row has at most outmax edges.
func (a *ODFA) Validate(outmax int) error {
	if a.NumStates <= 0 {
		return zidserr.MalformedODFAf("odfa: num_states must be positive")
	}
	if len(a.Rows) != a.NumStates {
		return zidserr.MalformedODFAf("odfa: expected %d rows, got %d", a.NumStates, len(a.Rows))
	}
	if a.StartState < 0 || a.StartState >= a.NumStates {
		return zidserr.MalformedODFAf("odfa: start_state %d out of range", a.StartState)
	}
	for state, aid := range a.Accepting {
		if state < 0 || state >= a.NumStates {
			return zidserr.MalformedODFAf("odfa: accepting state %d out of range", state)
		}
		if aid < 0 {
			return zidserr.MalformedODFAf("odfa: attack_id for state %d must be non-negative", state)
		}
	}
	for i, row := range a.Rows {
		if len(row.Edges) > outmax {
			return zidserr.MalformedODFAf("odfa: row %d has %d edges, exceeds outmax %d", i, len(row.Edges), outmax)
		}
		for _, e := range row.Edges {
			if e.NextState < 0 || e.NextState >= a.NumStates {
				return zidserr.MalformedODFAf("odfa: row %d edge targets out-of-range state %d", i, e.NextState)
			}
			if e.AttackID < 0 {
				return zidserr.MalformedODFAf("odfa: row %d edge has negative attack_id", i)
			}
		}
		if row.Alpha.SymToCols != nil {
			if err := row.Alpha.Validate(); err != nil {
				return err
			}
			for _, cols := range row.Alpha.SymToCols {
				for _, c := range cols {
					if c >= len(row.Edges) {
						return zidserr.MalformedODFAf("odfa: row %d alphabet references column %d beyond its %d real edges", i, c, len(row.Edges))
					}
				}
			}
		}
	}
	return nil
}
