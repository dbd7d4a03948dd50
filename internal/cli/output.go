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

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-secretsplit/pkg/secretsplit"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// ParseOutputFormat converts a format name. The empty string is text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputFormatText, nil
	case OutputFormatText, OutputFormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %q (want text or json)", s)
	}
}

// Printer handles formatted output of errors and version information.
// Shares and payloads bypass it and are written raw.
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format OutputFormat, writer io.Writer) *Printer {
	return &Printer{
		format: format,
		writer: writer,
	}
}

// PrintError prints err with its kind
func (p *Printer) PrintError(err error) error {
	kind := secretsplit.ErrorKind(err)
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"kind":   kind,
			"error":  err.Error(),
		})
	default:
		_, werr := fmt.Fprintf(p.writer, "Error (%s): %v\n", kind, err)
		return werr
	}
}

// VersionInfo describes the build.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// PrintVersion prints build information
func (p *Printer) PrintVersion(info VersionInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(info)
	default:
		_, err := fmt.Fprintf(p.writer,
			"secretsplit version %s\nGit commit: %s\nBuild date: %s\nGo version: %s\nOS/Arch: %s/%s\n",
			info.Version, info.GitCommit, info.BuildDate, info.GoVersion, info.OS, info.Arch)
		return err
	}
}

func (p *Printer) printJSON(v interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
