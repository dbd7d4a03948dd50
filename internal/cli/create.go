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
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-secretsplit/internal/encoding"
	"github.com/jeremyhahn/go-secretsplit/pkg/compression"
	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/rand"
	"github.com/jeremyhahn/go-secretsplit/pkg/logging"
	"github.com/jeremyhahn/go-secretsplit/pkg/secretsplit"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <n> <k>",
		Short: "Create n shares, k of which can restore the data from stdin",
		Long: `Create n shares, k of which can restore the data from stdin.

  n  total count of shares (1-255)
  k  count of shares required to restore the secret (1-n)

Shares are written to stdout, one per line. Nothing is written unless
all n shares were produced.`,
		Example: `  echo -n "yup" | secretsplit create 3 2 > shares.txt
  secretsplit create 5 3 --encoding base64 < secret.bin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseCount("n", args[0])
			if err != nil {
				return err
			}
			k, err := parseCount("k", args[1])
			if err != nil {
				return err
			}
			return a.run(cmd, "create", func(ctx context.Context) ([]byte, error) {
				return a.create(ctx, cmd.InOrStdin(), n, k)
			})
		},
	}
}

// parseCount parses a share count argument. Zero is passed through so the
// splitter reports it along with the other range checks.
func parseCount(name, s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer between 1 and %d, got %q",
			secretsplit.ErrInvalidParameters, name, secretsplit.MaxShares, s)
	}
	return uint8(v), nil
}

func (a *app) create(ctx context.Context, stdin io.Reader, n, k uint8) ([]byte, error) {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}

	resolver, err := rand.NewResolver(a.config.RandConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open entropy source: %w", err)
	}
	defer func() { _ = resolver.Close() }()
	a.logger.DebugContext(ctx, "entropy source ready", logging.String("rng", string(resolver.Mode())))

	codec, err := compression.New(compression.WithLevel(a.config.CompressionLevel))
	if err != nil {
		return nil, err
	}
	defer func() { _ = codec.Close() }()

	splitter, err := secretsplit.NewSplitter(
		secretsplit.WithRandom(resolver),
		secretsplit.WithCompression(codec),
		secretsplit.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	shares, err := splitter.SplitContext(ctx, data, n, k)
	if err != nil {
		return nil, err
	}

	raw := make([][]byte, len(shares))
	for i, share := range shares {
		raw[i] = share
	}
	var buf bytes.Buffer
	if err := encoding.EncodeShares(&buf, raw, a.config.Encoding); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
