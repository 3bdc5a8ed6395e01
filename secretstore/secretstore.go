// Package secretstore implements the offline builder's --save-secrets and
// --master-key-hex CLI options: writing the inverse permutation and/or the
// full per-(row,col) pad-seed/group-key material to disk, optionally sealed
// under an operator-supplied master key so the secrets file is not left in
// the clear next to the public container.
package secretstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SJieNg123/zids/gdfa"
	"github.com/SJieNg123/zids/zidserr"
)

// Mode selects how much server secret material a build writes to disk:
// --save-secrets {none|invperm|full}.
type Mode string

const (
	ModeNone     Mode = "none"
	ModeInvPerm  Mode = "invperm"
	ModeFull     Mode = "full"
	secretsFile       = "secrets.json"
	nonceLen          = 12
)

// ParseMode validates a --save-secrets flag value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNone, ModeInvPerm, ModeFull:
		return Mode(s), nil
	default:
		return "", zidserr.InvalidParameterf("secretstore: unknown --save-secrets mode %q", s)
	}
}

// doc is the JSON shape written to secrets.json. GK and PadSeeds are
// omitted entirely in ModeInvPerm: full secrets are not the default.
type doc struct {
	InversePermutation []int      `json:"inverse_permutation"`
	PadSeeds           [][]string `json:"pad_seeds,omitempty"` // hex, [row][col]
	GK                 [][]string `json:"gk,omitempty"`        // hex, [row][col]
}

// MasterKey is a raw AES-128/192/256 key parsed from --master-key-hex. A
// nil MasterKey means secrets are written in the clear.
type MasterKey []byte

// ParseMasterKeyHex decodes a --master-key-hex flag value. An empty string
// returns a nil MasterKey (no sealing).
func ParseMasterKeyHex(hexStr string) (MasterKey, error) {
	if hexStr == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, zidserr.InvalidParameterf("secretstore: --master-key-hex is not valid hex: %v", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return MasterKey(key), nil
	default:
		return nil, zidserr.InvalidParameterf("secretstore: --master-key-hex must decode to 16, 24, or 32 bytes, got %d", len(key))
	}
}

// Seal encrypts plaintext under key with AES-GCM and a fresh nonce,
// returning nonce||ciphertext. A nil key returns plaintext unchanged.
func Seal(key MasterKey, plaintext []byte) ([]byte, error) {
	if key == nil {
		return plaintext, nil
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secretstore: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretstore: new GCM: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("secretstore: sample nonce: %w", err)
	}
	ct := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ct...), nil
}

// Open is the inverse of Seal. A nil key treats sealed as plaintext.
func Open(key MasterKey, sealed []byte) ([]byte, error) {
	if key == nil {
		return sealed, nil
	}
	if len(sealed) < nonceLen {
		return nil, zidserr.MalformedContainerf("secretstore: sealed secrets file shorter than nonce")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secretstore: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretstore: new GCM: %w", err)
	}
	pt, err := gcm.Open(nil, sealed[:nonceLen], sealed[nonceLen:], nil)
	if err != nil {
		return nil, zidserr.IntegrityFailuref("secretstore: secrets file failed to decrypt: %v", err)
	}
	return pt, nil
}

// Write persists secrets under outdir/secrets.json per mode, sealing the
// file under masterKey when non-nil. ModeNone writes nothing and returns "".
func Write(outdir string, mode Mode, secrets *gdfa.Secrets, masterKey MasterKey) (path string, err error) {
	if mode == ModeNone {
		return "", nil
	}
	d := doc{InversePermutation: secrets.InversePermutation}
	if mode == ModeFull {
		d.PadSeeds = hexMatrix(secrets.PadSeeds)
		d.GK = hexMatrix(secrets.GK)
	}
	plain, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("secretstore: marshal: %w", err)
	}
	sealed, err := Seal(masterKey, plain)
	if err != nil {
		return "", err
	}
	path = filepath.Join(outdir, secretsFile)
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return "", fmt.Errorf("secretstore: write %s: %w", path, err)
	}
	return path, nil
}

// Secrets is the decoded content of a secrets.json file.
type Secrets struct {
	InversePermutation []int
	PadSeeds           [][][]byte // nil if the file was written with ModeInvPerm
	GK                 [][][]byte // nil if the file was written with ModeInvPerm
}

// Read loads and, if masterKey is non-nil, unseals outdir/secrets.json.
func Read(outdir string, masterKey MasterKey) (*Secrets, error) {
	path := filepath.Join(outdir, secretsFile)
	sealed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("secretstore: read %s: %w", path, err)
	}
	plain, err := Open(masterKey, sealed)
	if err != nil {
		return nil, err
	}
	var d doc
	if err := json.Unmarshal(plain, &d); err != nil {
		return nil, zidserr.MalformedContainerf("secretstore: malformed secrets.json: %v", err)
	}
	gk, err := byteMatrix(d.GK)
	if err != nil {
		return nil, err
	}
	padSeeds, err := byteMatrix(d.PadSeeds)
	if err != nil {
		return nil, err
	}
	return &Secrets{InversePermutation: d.InversePermutation, PadSeeds: padSeeds, GK: gk}, nil
}

func byteMatrix(m [][]string) ([][][]byte, error) {
	if m == nil {
		return nil, nil
	}
	out := make([][][]byte, len(m))
	for i, row := range m {
		out[i] = make([][]byte, len(row))
		for j, h := range row {
			b, err := hex.DecodeString(h)
			if err != nil {
				return nil, zidserr.MalformedContainerf("secretstore: malformed hex at [%d][%d]: %v", i, j, err)
			}
			out[i][j] = b
		}
	}
	return out, nil
}

func hexMatrix(m [][][]byte) [][]string {
	out := make([][]string, len(m))
	for i, row := range m {
		out[i] = make([]string, len(row))
		for j, b := range row {
			out[i][j] = hex.EncodeToString(b)
		}
	}
	return out
}
