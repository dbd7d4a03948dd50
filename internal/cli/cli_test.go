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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-secretsplit/pkg/correlation"
)

type result struct {
	stdout []byte
	stderr string
	code   int
}

func runCLI(t *testing.T, stdin []byte, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, bytes.NewReader(stdin), &stdout, &stderr)
	return result{stdout: stdout.Bytes(), stderr: stderr.String(), code: code}
}

func shareLines(t *testing.T, out []byte) []string {
	t.Helper()
	require.True(t, bytes.HasSuffix(out, []byte("\n")), "share output must end with a newline")
	return strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
}

func TestCreateCombine_Yup(t *testing.T) {
	created := runCLI(t, []byte("yup"), "create", "3", "2")
	require.Equal(t, 0, created.code, created.stderr)
	lines := shareLines(t, created.stdout)
	require.Len(t, lines, 3)

	for _, pair := range [][2]int{{0, 1}, {0, 2}, {1, 2}, {2, 0}} {
		input := lines[pair[0]] + "\n" + lines[pair[1]] + "\n"
		combined := runCLI(t, []byte(input), "combine")
		require.Equal(t, 0, combined.code, combined.stderr)
		assert.Equal(t, "yup", string(combined.stdout))
	}
}

func TestCreateCombine_BinaryBase64(t *testing.T) {
	payload := []byte{0x00, 0xff, 0xfe, '\n', 0x80, 0x00, 'y', 0xc3}
	created := runCLI(t, payload, "create", "5", "3", "--encoding", "base64")
	require.Equal(t, 0, created.code, created.stderr)
	lines := shareLines(t, created.stdout)
	require.Len(t, lines, 5)

	// Shares given with CRLF endings, blank lines and no final newline.
	input := "\r\n" + lines[4] + "\r\n\r\n" + lines[1] + "\r\n" + lines[2]
	combined := runCLI(t, []byte(input), "combine", "--encoding=base64")
	require.Equal(t, 0, combined.code, combined.stderr)
	assert.Equal(t, payload, combined.stdout)
}

func TestCreateCombine_EmptyPayload(t *testing.T) {
	created := runCLI(t, nil, "create", "1", "1")
	require.Equal(t, 0, created.code, created.stderr)

	combined := runCLI(t, created.stdout, "combine")
	require.Equal(t, 0, combined.code, combined.stderr)
	assert.Empty(t, combined.stdout)
}

func TestCreate_InvalidParameters(t *testing.T) {
	tests := [][]string{
		{"create", "0", "0"},
		{"create", "3", "0"},
		{"create", "3", "4"},
		{"create", "256", "2"},
		{"create", "three", "2"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			res := runCLI(t, []byte("data"), args...)
			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			assert.Contains(t, res.stderr, "Error (invalid_parameters)")
		})
	}
}

func TestCreate_WrongArgCount(t *testing.T) {
	res := runCLI(t, []byte("data"), "create", "3")
	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "Error")
}

func TestCombine_Failures(t *testing.T) {
	first := runCLI(t, []byte("yup"), "create", "3", "2")
	require.Equal(t, 0, first.code)
	second := runCLI(t, []byte("yup"), "create", "3", "2")
	require.Equal(t, 0, second.code)
	a := shareLines(t, first.stdout)
	b := shareLines(t, second.stdout)

	tampered := []byte(a[0])
	if tampered[len(tampered)-1] == '0' {
		tampered[len(tampered)-1] = '1'
	} else {
		tampered[len(tampered)-1] = '0'
	}

	tests := []struct {
		name  string
		input string
		kind  string
	}{
		{name: "no shares", input: "", kind: "invalid_parameters"},
		{name: "not hex", input: "zz\n", kind: "malformed_share"},
		{name: "too short", input: "01ab\n", kind: "malformed_share"},
		{name: "mixed splits", input: a[0] + "\n" + b[1] + "\n", kind: "inconsistent_shares"},
		{name: "under threshold", input: a[2] + "\n", kind: "authentication_failure"},
		{name: "tampered single share", input: string(tampered) + "\n", kind: "authentication_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, []byte(tt.input), "combine")
			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			assert.Contains(t, res.stderr, "Error ("+tt.kind+")")
		})
	}
}

func TestErrorOutputJSON(t *testing.T) {
	res := runCLI(t, []byte("zz\n"), "combine", "--output", "json")
	require.Equal(t, 1, res.code)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stderr), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "malformed_share", body["kind"])
	assert.Contains(t, body["error"], "line 1")
}

func TestEnvironmentConfiguration(t *testing.T) {
	t.Setenv("SECRETSPLIT_ENCODING", "base64")
	t.Setenv("SECRETSPLIT_COMPRESSION_LEVEL", "best")

	created := runCLI(t, []byte("from the environment"), "create", "2", "2")
	require.Equal(t, 0, created.code, created.stderr)

	// Hex decoding of base64 text fails, so the flag overrides the env.
	res := runCLI(t, created.stdout, "combine", "--encoding", "hex")
	assert.Equal(t, 1, res.code)

	combined := runCLI(t, created.stdout, "combine")
	require.Equal(t, 0, combined.code, combined.stderr)
	assert.Equal(t, "from the environment", string(combined.stdout))
}

func TestInvalidGlobalFlags(t *testing.T) {
	tests := [][]string{
		{"create", "2", "2", "--encoding", "base32"},
		{"create", "2", "2", "--compression-level", "ultra"},
		{"create", "2", "2", "--rng", "dice"},
		{"version", "--output", "yaml"},
		{"version", "--log-format", "xml"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			res := runCLI(t, []byte("x"), args...)
			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
		})
	}
}

func TestCreate_SoftwareRNG(t *testing.T) {
	created := runCLI(t, []byte("software"), "create", "2", "1", "--rng", "software")
	require.Equal(t, 0, created.code, created.stderr)
	lines := shareLines(t, created.stdout)

	combined := runCLI(t, []byte(lines[1]), "combine")
	require.Equal(t, 0, combined.code, combined.stderr)
	assert.Equal(t, "software", string(combined.stdout))
}

func TestVerboseLogging(t *testing.T) {
	t.Setenv(correlation.EnvVar, "ceremony-42")

	res := runCLI(t, []byte("top secret words"), "create", "3", "2", "-v", "--log-format", "json")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, `"correlation_id":"ceremony-42"`)
	assert.Contains(t, res.stderr, `"msg":"split payload"`)
	assert.NotContains(t, res.stderr, "top secret words")

	quiet := runCLI(t, []byte("x"), "create", "2", "2")
	require.Equal(t, 0, quiet.code)
	assert.Empty(t, quiet.stderr)
}

func TestMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secretsplit.prom")

	created := runCLI(t, []byte("metrics"), "create", "3", "2", "--metrics-textfile", path)
	require.Equal(t, 0, created.code, created.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `secretsplit_operations_total{operation="split",status="success"}`)

	failed := runCLI(t, []byte("01ab\n"), "combine", "--metrics-textfile", path)
	require.Equal(t, 1, failed.code)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `secretsplit_operations_total{operation="combine",status="error"}`)
}

func TestMetricsTextfileUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "secretsplit.prom")
	res := runCLI(t, []byte("x"), "create", "2", "2", "--metrics-textfile", path)
	assert.Equal(t, 0, res.code)
	assert.Len(t, shareLines(t, res.stdout), 2)
	assert.Contains(t, res.stderr, "Warning")
}

func TestVersion(t *testing.T) {
	res := runCLI(t, nil, "version")
	require.Equal(t, 0, res.code)
	assert.Contains(t, string(res.stdout), "secretsplit version "+Version)

	res = runCLI(t, nil, "version", "-o", "json")
	require.Equal(t, 0, res.code)
	var info VersionInfo
	require.NoError(t, json.Unmarshal(res.stdout, &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
