package ot1ofm

import (
	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/zidserr"
)

// Table256 wraps a Sender specialized to exactly 256 entries, the shape
// every GDFA row's OT table takes.
type Table256 struct {
	*Sender
}

// NewTable256 validates that table has exactly 256 fixed-length entries and
// builds the underlying 1-of-m sender.
func NewTable256(group *ddhgroup.Group, table [][]byte, label, sid []byte) (*Table256, error) {
	if len(table) != 256 {
		return nil, zidserr.InvalidParameterf("ot1ofm: OT256 table must have exactly 256 entries, got %d", len(table))
	}
	s, err := NewSender(group, table, label, sid)
	if err != nil {
		return nil, err
	}
	return &Table256{Sender: s}, nil
}

// Chooser256 is a Chooser specialized to the byte-valued 0..255 selector
// used by the online evaluator.
type Chooser256 struct {
	*Chooser
}

// NewChooser256 binds a receiver to a Table256.
func NewChooser256(group *ddhgroup.Group, label []byte, table *Table256) *Chooser256 {
	return &Chooser256{Chooser: NewChooser(group, label, table.Sender)}
}

// Choose retrieves the table entry for symbol x (0..255).
func (c *Chooser256) Choose(x int) ([]byte, error) {
	if x < 0 || x > 255 {
		return nil, zidserr.OutOfRangef("ot1ofm: OT256 selector must be a byte (0..255), got %d", x)
	}
	return c.Chooser.Choose(x)
}

// ChooseMany retrieves entries for a slice of symbols, preserving order.
func (c *Chooser256) ChooseMany(xs []byte) ([][]byte, error) {
	out := make([][]byte, len(xs))
	for i, x := range xs {
		v, err := c.Choose(int(x))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
