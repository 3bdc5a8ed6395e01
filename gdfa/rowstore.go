package gdfa

import "github.com/SJieNg123/zids/zidserr"

// RowStore is the immutable, read-only row-ciphertext matrix produced by
// BuildGDFA (or loaded from a container). A RowStore never mutates after
// construction, so concurrent evaluators may share one without locking.
type RowStore struct {
	rowBytes int
	rows     [][]byte
}

// NewRowStore validates that every row has exactly rowBytes bytes and wraps
// them for sharing.
func NewRowStore(rowBytes int, rows [][]byte) (*RowStore, error) {
	for i, r := range rows {
		if len(r) != rowBytes {
			return nil, zidserr.MalformedContainerf("gdfa: row %d has %d bytes, expected %d", i, len(r), rowBytes)
		}
	}
	return &RowStore{rowBytes: rowBytes, rows: rows}, nil
}

// NewRowStoreFromFlat splits a single concatenated rows.bin payload into
// NumStates fixed-length rows.
func NewRowStoreFromFlat(rowBytes, numStates int, flat []byte) (*RowStore, error) {
	if len(flat) != rowBytes*numStates {
		return nil, zidserr.MalformedContainerf("gdfa: rows payload has %d bytes, expected %d*%d=%d", len(flat), rowBytes, numStates, rowBytes*numStates)
	}
	rows := make([][]byte, numStates)
	for i := 0; i < numStates; i++ {
		rows[i] = flat[i*rowBytes : (i+1)*rowBytes]
	}
	return &RowStore{rowBytes: rowBytes, rows: rows}, nil
}

// NumRows returns the number of rows held.
func (s *RowStore) NumRows() int { return len(s.rows) }

// RowBytes returns the fixed per-row byte length.
func (s *RowStore) RowBytes() int { return s.rowBytes }

// Row returns the ciphertext bytes for rowID. The returned slice must not be
// mutated by the caller.
func (s *RowStore) Row(rowID int) ([]byte, error) {
	if rowID < 0 || rowID >= len(s.rows) {
		return nil, zidserr.OutOfRangef("gdfa: row id %d out of range [0,%d)", rowID, len(s.rows))
	}
	return s.rows[rowID], nil
}

// Flatten concatenates every row back into a single byte slice, the
// container rows.bin payload layout.
func (s *RowStore) Flatten() []byte {
	out := make([]byte, 0, s.rowBytes*len(s.rows))
	for _, r := range s.rows {
		out = append(out, r...)
	}
	return out
}
