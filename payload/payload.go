// Package payload ports client/io/payload_reader.py's input-normalization
// and streaming readers: the input byte stream the GDFA evaluator consumes
// is read the way a CLI client actually gets it (bytes, text, files,
// stdin), with optional case normalization and filtering knobs all off by
// default so the raw 256-ary alphabet is preserved unless asked otherwise.
package payload

import (
	"bufio"
	"io"
	"os"

	"github.com/SJieNg123/zids/zidserr"
)

// AsciiCase selects optional ASCII-only case normalization.
type AsciiCase string

const (
	CaseNone  AsciiCase = "none"
	CaseLower AsciiCase = "lower"
	CaseUpper AsciiCase = "upper"
)

// Options are the payload_reader.py knobs. The zero value preserves the raw
// byte stream unchanged.
type Options struct {
	MaxLen               int // 0 means unlimited
	AsciiCase            AsciiCase
	StripNulls           bool
	FilterASCIIPrintable bool
}

const defaultChunkSize = 1 << 20

func apply(data []byte, opt Options) []byte {
	b := data
	if opt.MaxLen > 0 && len(b) > opt.MaxLen {
		b = b[:opt.MaxLen]
	}

	switch opt.AsciiCase {
	case CaseLower:
		out := make([]byte, len(b))
		for i, c := range b {
			if c >= 'A' && c <= 'Z' {
				c += 0x20
			}
			out[i] = c
		}
		b = out
	case CaseUpper:
		out := make([]byte, len(b))
		for i, c := range b {
			if c >= 'a' && c <= 'z' {
				c -= 0x20
			}
			out[i] = c
		}
		b = out
	}

	if opt.StripNulls {
		out := make([]byte, 0, len(b))
		for _, c := range b {
			if c != 0x00 {
				out = append(out, c)
			}
		}
		b = out
	}

	if opt.FilterASCIIPrintable {
		out := make([]byte, 0, len(b))
		for _, c := range b {
			if c == 0x09 || c == 0x0A || c == 0x0D || (c >= 0x20 && c <= 0x7E) {
				out = append(out, c)
			}
		}
		b = out
	}

	return b
}

// FromBytes returns a copy of data with options applied.
func FromBytes(data []byte, opt Options) []byte {
	cp := make([]byte, len(data))
	copy(cp, data)
	return apply(cp, opt)
}

// FromText encodes text as UTF-8 and applies options.
func FromText(text string, opt Options) []byte {
	return apply([]byte(text), opt)
}

// FromFile reads path in binary mode, stopping early once opt.MaxLen bytes
// have been accumulated, then applies options.
func FromFile(path string, opt Options) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readStream(f, opt)
}

// FromStdin reads os.Stdin fully (or up to opt.MaxLen bytes) and applies
// options.
func FromStdin(opt Options) ([]byte, error) {
	return readStream(os.Stdin, opt)
}

func readStream(r io.Reader, opt Options) ([]byte, error) {
	br := bufio.NewReaderSize(r, defaultChunkSize)
	out := make([]byte, 0, defaultChunkSize)
	buf := make([]byte, defaultChunkSize)
	for {
		if opt.MaxLen > 0 && len(out) >= opt.MaxLen {
			break
		}
		n, err := br.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return apply(out, opt), nil
}

// IterFileChunks yields path's raw bytes in fixed-size chunks (no options
// applied), invoking fn for each chunk until the file is exhausted or fn
// returns an error.
func IterFileChunks(path string, chunkSize int, fn func(chunk []byte) error) error {
	if chunkSize <= 0 {
		return zidserr.InvalidParameterf("payload: chunk_size must be positive")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if cbErr := fn(buf[:n]); cbErr != nil {
				return cbErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// SlidingWindows yields overlapping windows over data: window is the slice
// length, step the slide amount. When dropLast is false (the default), a
// final shorter window is still yielded; otherwise it is dropped.
func SlidingWindows(data []byte, window, step int, dropLast bool, fn func(w []byte) error) error {
	if window <= 0 || step <= 0 {
		return zidserr.InvalidParameterf("payload: window and step must be positive")
	}
	n := len(data)
	for i := 0; i < n; i += step {
		j := i + window
		if j <= n {
			if err := fn(data[i:j]); err != nil {
				return err
			}
		} else if !dropLast {
			if err := fn(data[i:n]); err != nil {
				return err
			}
			break
		} else {
			break
		}
	}
	return nil
}
