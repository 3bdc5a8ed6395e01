package gdfa

import (
	"crypto/rand"
	"fmt"

	"github.com/SJieNg123/zids/encode"
	"github.com/SJieNg123/zids/odfa"
	"github.com/SJieNg123/zids/zidscrypto"
)

// defaultAIDBits is the build-time constant aid_bits default.
const defaultAIDBits = 16

// Secrets are the server-only outputs of the offline build: the inverse
// permutation, and per (row, col) the pad seed and — when the build was
// GK-bound (see BuildOptions.PadSeedFunc) — the group key that produced it.
// Secrets must never be sent to the client.
type Secrets struct {
	InversePermutation []int
	PadSeeds           [][][]byte // PadSeeds[row][col]
	GK                 [][][]byte // GK[row][col], nil entries when not GK-bound
}

// PadSeedFunc derives the pad seed (and, optionally, the group key that
// produced it) for a given (row, col). When supplied to BuildOptions, the
// builder binds every cell's pad to a recoverable GK so that a later
// session's OT plan can reuse the same ciphertext row. kBytes is the pad
// seed length to return.
type PadSeedFunc func(row, col, kBytes int) (seed, gk []byte)

// BuildOptions configures the offline build.
type BuildOptions struct {
	AIDBits     int // defaults to 16 if zero
	PadSeedFunc PadSeedFunc
}

// BuildGDFA runs the offline GDFA builder: validate, plan the cell format,
// sample the permutation, then emit each permuted row's ciphertext bytes.
func BuildGDFA(a *odfa.ODFA, sec odfa.SecurityParams, sp odfa.SparsityParams, opts BuildOptions) (*PublicHeader, [][]byte, []odfa.RowAlphabet, *Secrets, error) {
	if err := a.Validate(sp.Outmax); err != nil {
		return nil, nil, nil, nil, err
	}
	pack, err := odfa.MakePacking(sec, sp)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	aidBits := opts.AIDBits
	if aidBits == 0 {
		aidBits = defaultAIDBits
	}
	cellFmt, err := odfa.PlanCellFormat(a.NumStates, pack, aidBits)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cellBytes := cellFmt.TotalBytes()
	rowBytes := sp.Outmax * cellBytes

	perm, err := odfa.SamplePermutation(a.NumStates)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("gdfa: sample permutation: %w", err)
	}
	invPerm, err := odfa.InversePermutation(perm)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	header := &PublicHeader{
		AlphabetSize: sec.AlphabetSize,
		Outmax:       sp.Outmax,
		Cmax:         sp.Cmax,
		NumStates:    a.NumStates,
		StartRow:     invPerm[a.StartState],
		Permutation:  perm,
		CellBytes:    cellBytes,
		RowBytes:     rowBytes,
		AIDBits:      aidBits,
	}

	secrets := &Secrets{
		InversePermutation: invPerm,
		PadSeeds:           make([][][]byte, a.NumStates),
		GK:                 make([][][]byte, a.NumStates),
	}

	rows := make([][]byte, a.NumStates)
	alphas := make([]odfa.RowAlphabet, a.NumStates)
	for newRow := 0; newRow < a.NumStates; newRow++ {
		oldState := perm[newRow]
		paddedEdges := a.Rows[oldState].PadToOutmax(sp.Outmax)
		alphas[newRow] = a.Rows[oldState].Alpha

		rowSeeds := make([][]byte, sp.Outmax)
		rowGKs := make([][]byte, sp.Outmax)
		rowBuf := make([]byte, 0, rowBytes)

		for c, edge := range paddedEdges {
			var seed, gk []byte
			if opts.PadSeedFunc != nil {
				seed, gk = opts.PadSeedFunc(newRow, c, sec.KBytes())
			} else {
				seed = make([]byte, sec.KBytes())
				if _, err := rand.Read(seed); err != nil {
					return nil, nil, nil, nil, fmt.Errorf("gdfa: sample pad seed: %w", err)
				}
			}
			rowSeeds[c] = seed
			rowGKs[c] = gk

			ns := invPerm[edge.NextState]
			plaintext := packCell(ns, edge.AttackID, cellFmt.NSBits, cellFmt.AIDBits, cellFmt.PadBits, cellBytes)
			pad := zidscrypto.GBits(seed, pack.GDFACellPadBits, []byte("PRG|GDFA|cell"))
			ciphertext := encode.XorBytes(plaintext, pad)
			rowBuf = append(rowBuf, ciphertext...)
		}

		rows[newRow] = rowBuf
		secrets.PadSeeds[newRow] = rowSeeds
		secrets.GK[newRow] = rowGKs
	}

	return header, rows, alphas, secrets, nil
}

// GKBoundPadSeedFunc returns a PadSeedFunc that samples a fresh kprime_bytes
// group key per (row, col) and derives the pad seed as
// PRF(GK, "ZIDS|SEED|row=..|col=..", k_bytes). Use this when the ciphertext
// matrix must remain decryptable by a later session's freshly-regenerated
// OT plan for the same GKs (the "rebuild ciphertexts with the same GKs"
// reuse mode).
func GKBoundPadSeedFunc(kPrimeBytes int) PadSeedFunc {
	return func(row, col, kBytes int) (seed, gk []byte) {
		gk = make([]byte, kPrimeBytes)
		if _, err := rand.Read(gk); err != nil {
			panic("gdfa: sample GK: " + err.Error())
		}
		seed = DeriveSeed(gk, row, col, kBytes)
		return seed, gk
	}
}

// DeriveSeed computes PRF(gk, "ZIDS|SEED|row=<row,4 bytes>|col=<col,2
// bytes>", kBytes), the pad-seed derivation rule shared by the offline
// builder (when GK-bound) and the online evaluator.
func DeriveSeed(gk []byte, row, col, kBytes int) []byte {
	info := append([]byte("ZIDS|SEED|row="), encode.I2OSP(uint64(row), 4)...)
	info = append(info, []byte("|col=")...)
	info = append(info, encode.I2OSP(uint64(col), 2)...)
	return zidscrypto.PRF(gk, info, kBytes)
}
