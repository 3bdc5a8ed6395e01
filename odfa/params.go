// Package odfa defines the sparsified oblivious-DFA model, its packing
// parameters, the row-alphabet column-membership map, and the state
// permutation sampler.
package odfa

import "github.com/SJieNg123/zids/zidserr"

// SecurityParams are the (k_bits, kprime_bits, kappa, alphabet_size)
// cryptographic knobs.
type SecurityParams struct {
	KBits        int
	KPrimeBits   int
	Kappa        int
	AlphabetSize int
}

// DefaultSecurityParams returns the standard defaults: 128, 128, 128, 256.
func DefaultSecurityParams() SecurityParams {
	return SecurityParams{KBits: 128, KPrimeBits: 128, Kappa: 128, AlphabetSize: 256}
}

// Validate enforces that both bit counts are positive multiples of 8 and
// that kappa and alphabet size are positive.
func (s SecurityParams) Validate() error {
	if s.KBits <= 0 || s.KPrimeBits <= 0 || s.Kappa <= 0 {
		return zidserr.InvalidParameterf("odfa: security parameters must be positive")
	}
	if s.KBits%8 != 0 || s.KPrimeBits%8 != 0 {
		return zidserr.InvalidParameterf("odfa: k_bits and kprime_bits must be multiples of 8")
	}
	if s.AlphabetSize <= 0 {
		return zidserr.InvalidParameterf("odfa: alphabet_size must be positive")
	}
	return nil
}

// KBytes is k_bits/8.
func (s SecurityParams) KBytes() int { return s.KBits / 8 }

// KPrimeBytes is kprime_bits/8.
func (s SecurityParams) KPrimeBytes() int { return s.KPrimeBits / 8 }

// SparsityParams are (outmax, cmax): the automaton's bounded out-degree and
// the maximum number of columns any single symbol may belong to.
type SparsityParams struct {
	Outmax int
	Cmax   int
}

// Validate enforces 1 <= cmax <= alphabetSize and outmax >= 1.
func (sp SparsityParams) Validate(alphabetSize int) error {
	if sp.Outmax < 1 {
		return zidserr.InvalidParameterf("odfa: outmax must be >= 1")
	}
	if sp.Cmax < 1 || sp.Cmax > alphabetSize {
		return zidserr.InvalidParameterf("odfa: cmax must be in [1, alphabet_size]")
	}
	return nil
}

// PackingParams are the derived packing sizes:
// ot256_entry_len = cmax*kprime_bytes, gdfa_cell_pad_bits = outmax*kprime_bits.
type PackingParams struct {
	Sec             SecurityParams
	Sparsity        SparsityParams
	OT256EntryLen   int
	GDFACellPadBits int
}

// MakePacking derives PackingParams from validated security and sparsity
// parameters.
func MakePacking(sec SecurityParams, sp SparsityParams) (PackingParams, error) {
	if err := sec.Validate(); err != nil {
		return PackingParams{}, err
	}
	if err := sp.Validate(sec.AlphabetSize); err != nil {
		return PackingParams{}, err
	}
	return PackingParams{
		Sec:             sec,
		Sparsity:        sp,
		OT256EntryLen:   sp.Cmax * sec.KPrimeBytes(),
		GDFACellPadBits: sp.Outmax * sec.KPrimeBits,
	}, nil
}
