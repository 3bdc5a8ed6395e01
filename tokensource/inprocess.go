package tokensource

import (
	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/gdfa"
	"github.com/SJieNg123/zids/ot1ofm"
)

// RowTableProvider resolves a row id to the live OT256 table the server
// built for it. Used by InProcessSource when the client and OT responder
// share a process (tests, single-process demos).
type RowTableProvider interface {
	RowTable(rowID int) (*ot1ofm.Table256, error)
}

// InProcessSource answers GetToken by running the real 1-of-256 OT protocol
// in-process against a live Table256 per row, using the same per-row label
// derivation (gdfa.RowOTLabel) the server used to build each row's table.
type InProcessSource struct {
	Group    *ddhgroup.Group
	Label    []byte
	Tables   RowTableProvider
}

// NewInProcessSource binds a chooser-side source to a table provider and the
// base label the server's row tables were built with.
func NewInProcessSource(group *ddhgroup.Group, label []byte, tables RowTableProvider) *InProcessSource {
	return &InProcessSource{Group: group, Label: label, Tables: tables}
}

// GetToken implements Source.
func (s *InProcessSource) GetToken(rowID int, x byte) ([]byte, error) {
	table, err := s.Tables.RowTable(rowID)
	if err != nil {
		return nil, err
	}
	chooser := ot1ofm.NewChooser256(s.Group, gdfa.RowOTLabel(s.Label, rowID), table)
	return chooser.Choose(int(x))
}
