// Package container implements the two GDFA on-disk formats: the two-file
// layout (header.json + rows.bin) and the single-file magic-framed
// container, both with optional SHA-256 integrity verification of the rows
// payload.
package container

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/SJieNg123/zids/gdfa"
	"github.com/SJieNg123/zids/zidserr"

	"golang.org/x/crypto/blake2b"
)

// magic is the single-file container's 8-byte prefix, "ZIDSv1\0".
var magic = [8]byte{'Z', 'I', 'D', 'S', 'v', '1', 0, 0}

// gzipMagic is the two leading bytes that mark a gzip-framed header.json.
var gzipMagic = [2]byte{0x1f, 0x8b}

// TwoFile is the decoded pair of a GDFA two-file artifact.
type TwoFile struct {
	Header     *gdfa.PublicHeader
	RowsSHA256 string // hex lowercase, empty if not present
	Rows       []byte
}

// headerDoc mirrors gdfa.PublicHeader's JSON shape plus the optional
// rows_sha256 field allowed on the two-file header.
type headerDoc struct {
	gdfa.PublicHeader
	RowsSHA256 string `json:"rows_sha256,omitempty"`
}

// WriteTwoFile serializes header and rows into header.json/rows.bin bytes.
// When gzipHeader is true, header.json is gzip-framed (detectable by the
// leading 1f 8b magic). When includeDigest is true, rows_sha256 is set to
// the lowercase hex SHA-256 of rows.
func WriteTwoFile(header *gdfa.PublicHeader, rows []byte, gzipHeader, includeDigest bool) (headerBytes, rowsBytes []byte, err error) {
	if err := header.Validate(); err != nil {
		return nil, nil, err
	}
	if len(rows) != header.RowBytes*header.NumStates {
		return nil, nil, zidserr.MalformedContainerf("container: rows payload has %d bytes, expected %d", len(rows), header.RowBytes*header.NumStates)
	}

	doc := headerDoc{PublicHeader: *header}
	if includeDigest {
		sum := sha256.Sum256(rows)
		doc.RowsSHA256 = fmt.Sprintf("%x", sum)
	}
	plain, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("container: marshal header: %w", err)
	}

	if !gzipHeader {
		return plain, rows, nil
	}
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(plain); err != nil {
		return nil, nil, fmt.Errorf("container: gzip header: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, nil, fmt.Errorf("container: gzip header: %w", err)
	}
	return buf.Bytes(), rows, nil
}

// ReadTwoFile parses a header.json/rows.bin pair, transparently ungzipping
// the header when its leading bytes match the gzip magic. When verify is
// true and the header carries a rows_sha256 field, the rows payload's
// digest must match or IntegrityFailure is returned.
func ReadTwoFile(headerBytes, rowsBytes []byte, verify bool) (*TwoFile, error) {
	plain := headerBytes
	if len(headerBytes) >= 2 && headerBytes[0] == gzipMagic[0] && headerBytes[1] == gzipMagic[1] {
		gr, err := gzip.NewReader(bytes.NewReader(headerBytes))
		if err != nil {
			return nil, zidserr.MalformedContainerf("container: invalid gzip header: %v", err)
		}
		defer gr.Close()
		decoded, err := io.ReadAll(gr)
		if err != nil {
			return nil, zidserr.MalformedContainerf("container: invalid gzip header: %v", err)
		}
		plain = decoded
	}

	var doc headerDoc
	if err := json.Unmarshal(plain, &doc); err != nil {
		return nil, zidserr.MalformedContainerf("container: malformed header JSON: %v", err)
	}
	header := doc.PublicHeader
	if err := header.Validate(); err != nil {
		return nil, err
	}
	if len(rowsBytes) != header.RowBytes*header.NumStates {
		return nil, zidserr.MalformedContainerf("container: rows payload has %d bytes, expected %d", len(rowsBytes), header.RowBytes*header.NumStates)
	}

	if verify && doc.RowsSHA256 != "" {
		sum := sha256.Sum256(rowsBytes)
		if fmt.Sprintf("%x", sum) != doc.RowsSHA256 {
			return nil, zidserr.IntegrityFailuref("container: rows_sha256 mismatch")
		}
	}

	return &TwoFile{Header: &header, RowsSHA256: doc.RowsSHA256, Rows: rowsBytes}, nil
}

// WriteSingleFile serializes header and rows into the single-file
// container layout: magic, big-endian header_len, header_json, rows
// payload, trailing raw SHA-256 of rows.
func WriteSingleFile(header *gdfa.PublicHeader, rows []byte) ([]byte, error) {
	if err := header.Validate(); err != nil {
		return nil, err
	}
	if len(rows) != header.RowBytes*header.NumStates {
		return nil, zidserr.MalformedContainerf("container: rows payload has %d bytes, expected %d", len(rows), header.RowBytes*header.NumStates)
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("container: marshal header: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(magic[:])
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(headerJSON)))
	buf.Write(lenBuf[:])
	buf.Write(headerJSON)
	buf.Write(rows)
	sum := sha256.Sum256(rows)
	buf.Write(sum[:])
	return buf.Bytes(), nil
}

// ReadSingleFile parses the single-file container layout, rejecting wrong
// magic, insufficient bytes, malformed header JSON, and — when verify is
// true — a SHA-256 mismatch against the trailing digest.
func ReadSingleFile(data []byte, verify bool) (*TwoFile, error) {
	if len(data) < len(magic)+4+32 {
		return nil, zidserr.MalformedContainerf("container: truncated (only %d bytes)", len(data))
	}
	if !bytes.Equal(data[:8], magic[:]) {
		return nil, zidserr.MalformedContainerf("container: bad magic")
	}
	headerLen := binary.BigEndian.Uint32(data[8:12])
	offset := 12
	if uint64(offset)+uint64(headerLen)+32 > uint64(len(data)) {
		return nil, zidserr.MalformedContainerf("container: header_len %d overruns container", headerLen)
	}
	headerJSON := data[offset : offset+int(headerLen)]
	offset += int(headerLen)

	var header gdfa.PublicHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, zidserr.MalformedContainerf("container: malformed header JSON: %v", err)
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}

	rowsLen := header.RowBytes * header.NumStates
	if offset+rowsLen+32 != len(data) {
		return nil, zidserr.MalformedContainerf("container: rows payload length mismatch (have %d, want %d)", len(data)-offset-32, rowsLen)
	}
	rows := data[offset : offset+rowsLen]
	trailer := data[offset+rowsLen:]

	if verify {
		sum := sha256.Sum256(rows)
		if !bytes.Equal(sum[:], trailer) {
			return nil, zidserr.IntegrityFailuref("container: trailing SHA-256 mismatch")
		}
	}

	rowsCopy := append([]byte(nil), rows...)
	return &TwoFile{Header: &header, Rows: rowsCopy}, nil
}

// Fingerprint returns a short blake2b-128 hex digest of rows, for
// eyeballing in build logs. It is never written into either container
// format and plays no part in integrity verification, which uses SHA-256
// instead.
func Fingerprint(rows []byte) string {
	h, _ := blake2b.New(16, nil)
	h.Write(rows)
	return fmt.Sprintf("%x", h.Sum(nil))
}
