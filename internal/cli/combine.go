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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-secretsplit/internal/encoding"
	"github.com/jeremyhahn/go-secretsplit/pkg/logging"
	"github.com/jeremyhahn/go-secretsplit/pkg/secretsplit"
)

func newCombineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "combine",
		Short: "Combine shares given from stdin",
		Long: `Combine shares given from stdin, one per line, and write the restored
data to stdout exactly as it was split. Blank lines are ignored.`,
		Example: `  head -n 2 shares.txt | secretsplit combine`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "combine", func(ctx context.Context) ([]byte, error) {
				return a.combine(ctx, cmd.InOrStdin())
			})
		},
	}
}

func (a *app) combine(ctx context.Context, stdin io.Reader) ([]byte, error) {
	lines, err := encoding.DecodeShares(stdin, a.config.Encoding)
	if err != nil {
		if errors.Is(err, encoding.ErrMalformedLine) {
			return nil, fmt.Errorf("%w: %w", secretsplit.ErrMalformedShare, err)
		}
		return nil, err
	}
	a.logger.DebugContext(ctx, "read shares", logging.Int("shares", len(lines)))

	shares := make([]secretsplit.Share, len(lines))
	for i, line := range lines {
		shares[i] = line
	}

	combiner, err := secretsplit.NewCombiner(secretsplit.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return combiner.CombineContext(ctx, shares)
}
