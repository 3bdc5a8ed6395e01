package odfa

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/SJieNg123/zids/zidserr"
)

// edgeDoc is one edge in the --odfa JSON input file: a
// (group_id, next_state, attack_id) triple.
type edgeDoc struct {
	GroupID   int `json:"group_id"`
	NextState int `json:"next_state"`
	AttackID  int `json:"attack_id"`
}

// rowDoc is one state's row in the --odfa JSON input file. SymToCols is
// optional; when omitted, the builder falls back to DefaultRowAlphabet's
// col = x mod outmax partition for that row.
type rowDoc struct {
	Edges     []edgeDoc `json:"edges"`
	SymToCols [][]int   `json:"sym_to_cols,omitempty"`
}

// odfaDoc is the on-disk JSON shape accepted by the --odfa CLI flag: a
// plain, human-editable description of an ODFA, independent of the binary
// GDFA container format.
type odfaDoc struct {
	NumStates  int            `json:"num_states"`
	StartState int            `json:"start_state"`
	Accepting  map[string]int `json:"accepting"`
	Rows       []rowDoc       `json:"rows"`
}

// LoadFile reads and parses an --odfa JSON file, filling in each row's
// RowAlphabet from sym_to_cols when present or DefaultRowAlphabet(alphabetSize,
// outmax, cmax) otherwise.
func LoadFile(path string, alphabetSize, outmax, cmax int) (*ODFA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zidserr.MalformedODFAf("odfa: read %s: %v", path, err)
	}
	return Parse(data, alphabetSize, outmax, cmax)
}

// Parse decodes an ODFA from its JSON document form.
func Parse(data []byte, alphabetSize, outmax, cmax int) (*ODFA, error) {
	var doc odfaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zidserr.MalformedODFAf("odfa: malformed JSON: %v", err)
	}

	accepting := make(map[int]int, len(doc.Accepting))
	for k, v := range doc.Accepting {
		state, err := strconv.Atoi(k)
		if err != nil {
			return nil, zidserr.MalformedODFAf("odfa: accepting key %q is not an integer state", k)
		}
		accepting[state] = v
	}

	rows := make([]Row, len(doc.Rows))
	for i, rd := range doc.Rows {
		edges := make([]Edge, len(rd.Edges))
		for j, ed := range rd.Edges {
			edges[j] = Edge{GroupID: ed.GroupID, NextState: ed.NextState, AttackID: ed.AttackID}
		}
		var alpha RowAlphabet
		if rd.SymToCols != nil {
			alpha = RowAlphabet{AlphabetSize: alphabetSize, Outmax: outmax, Cmax: cmax, SymToCols: rd.SymToCols}
		} else {
			alpha = DefaultRowAlphabet(alphabetSize, outmax, cmax)
		}
		rows[i] = Row{Edges: edges, Alpha: alpha}
	}

	a := &ODFA{
		NumStates:  doc.NumStates,
		StartState: doc.StartState,
		Accepting:  accepting,
		Rows:       rows,
	}
	if err := a.Validate(outmax); err != nil {
		return nil, err
	}
	return a, nil
}

// SaveFile writes a as an --odfa-compatible JSON document, the inverse of
// LoadFile. sym_to_cols is always emitted explicitly so a round-tripped file
// never silently changes its row alphabet.
func SaveFile(path string, a *ODFA) error {
	doc := odfaDoc{
		NumStates:  a.NumStates,
		StartState: a.StartState,
		Accepting:  make(map[string]int, len(a.Accepting)),
		Rows:       make([]rowDoc, len(a.Rows)),
	}
	for state, aid := range a.Accepting {
		doc.Accepting[strconv.Itoa(state)] = aid
	}
	for i, row := range a.Rows {
		edges := make([]edgeDoc, len(row.Edges))
		for j, e := range row.Edges {
			edges[j] = edgeDoc{GroupID: e.GroupID, NextState: e.NextState, AttackID: e.AttackID}
		}
		doc.Rows[i] = rowDoc{Edges: edges, SymToCols: row.Alpha.SymToCols}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
