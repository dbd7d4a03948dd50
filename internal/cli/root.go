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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-secretsplit/pkg/correlation"
	"github.com/jeremyhahn/go-secretsplit/pkg/logging"
	"github.com/jeremyhahn/go-secretsplit/pkg/metrics"
)

// app carries the configuration resolved for one invocation.
type app struct {
	config *Config
	logger logging.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "secretsplit",
		Short: "Split data into shares, any k of which restore it",
		Long: `secretsplit splits data read from stdin into n shares so that any k
of them restore it and fewer reveal nothing.

The data is compressed and encrypted under a fresh key, and only that
key is threshold-shared. Every share carries the same ciphertext, one
share per line of hex (or base64) text.

Every flag can also be set through a SECRETSPLIT_ environment variable,
e.g. SECRETSPLIT_ENCODING=base64. The PKCS#11 PIN is read only from
SECRETSPLIT_PKCS11_PIN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			config, err := LoadConfig(v)
			if err != nil {
				return err
			}
			a.config = config
			a.logger = config.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}

	registerFlags(root.PersistentFlags())

	root.AddCommand(newCreateCmd(a))
	root.AddCommand(newCombineCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}

// Execute runs the CLI on the process arguments and stdio and returns the
// exit status.
func Execute() int {
	return Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run runs the CLI with args. Failures are reported on stderr with their
// kind and yield exit status 1.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{config: NewConfig(), logger: logging.NewNopLogger()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		_ = NewPrinter(a.config.OutputFormat, stderr).PrintError(err) // best-effort
		return 1
	}
	return 0
}

// run executes op under a correlation ID, writes the metrics textfile if
// configured, and only then writes op's output to stdout.
func (a *app) run(cmd *cobra.Command, name string, op func(ctx context.Context) ([]byte, error)) error {
	ctx := correlation.FromEnvironment(cmd.Context())
	a.logger.DebugContext(ctx, "starting operation", logging.String("operation", name))

	out, err := op(ctx)

	if path := a.config.MetricsTextfile; path != "" {
		if merr := metrics.WriteTextfile(path); merr != nil {
			a.logger.WarnContext(ctx, "metrics not written", logging.Error(merr))
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", merr)
		}
	}
	if err != nil {
		return err
	}

	if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
