// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secretsplit.
//
// go-secretsplit is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package encoding provides the line-oriented text transport for shares.
//
// Each share's raw bytes are written as one line of hex (the default) or
// standard base64 text, terminated by '\n'. Decoding skips blank lines and
// tolerates CRLF line endings.
package encoding

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformedLine is returned when a line is not valid text in the
	// selected format.
	ErrMalformedLine = errors.New("malformed share line")

	// ErrUnknownFormat is returned for an unrecognised Format.
	ErrUnknownFormat = errors.New("unknown share encoding")
)

// Format is a byte-to-text encoding for shares.
type Format string

const (
	// FormatHex is lowercase hexadecimal.
	FormatHex Format = "hex"

	// FormatBase64 is standard padded base64.
	FormatBase64 Format = "base64"
)

// ParseFormat converts a format name. The empty string is FormatHex.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatHex, nil
	case FormatHex, FormatBase64:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want hex or base64)", ErrUnknownFormat, s)
	}
}

func (f Format) encode(b []byte) (string, error) {
	switch f {
	case FormatHex, "":
		return hex.EncodeToString(b), nil
	case FormatBase64:
		return base64.StdEncoding.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func (f Format) decode(s string) ([]byte, error) {
	switch f {
	case FormatHex, "":
		return hex.DecodeString(s)
	case FormatBase64:
		return base64.StdEncoding.DecodeString(s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// EncodeShares writes one encoded share per line. The whole batch is
// encoded before anything is written, so an encoding error produces no
// output.
func EncodeShares(w io.Writer, shares [][]byte, f Format) error {
	var buf bytes.Buffer
	for _, share := range shares {
		line, err := f.encode(share)
		if err != nil {
			return err
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write shares: %w", err)
	}
	return nil
}

// DecodeShares reads one encoded share per line until EOF. The final line
// need not be terminated.
func DecodeShares(r io.Reader, f Format) ([][]byte, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return nil, err
	}

	var shares [][]byte
	reader := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("failed to read shares: %w", readErr)
		}

		if text := strings.TrimSpace(line); text != "" {
			share, err := f.decode(text)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedLine, lineNo, err)
			}
			shares = append(shares, share)
		}

		if readErr == io.EOF {
			return shares, nil
		}
	}
}
