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

package secretsplit

import (
	"crypto/rand"
	"io"

	"github.com/jeremyhahn/go-secretsplit/pkg/compression"
	"github.com/jeremyhahn/go-secretsplit/pkg/logging"
)

type options struct {
	random io.Reader
	codec  *compression.Codec
	logger logging.Logger
}

// Option configures a Splitter or Combiner.
type Option func(*options)

// WithRandom sets the CSPRNG used for the payload key and the polynomial
// coefficients. Defaults to crypto/rand.Reader. Combine ignores it.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		o.random = r
	}
}

// WithCompression sets the codec applied before encryption. Any level
// decodes with any other, so the option only affects Split output size.
func WithCompression(codec *compression.Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.random == nil {
		o.random = rand.Reader
	}
	if o.logger == nil {
		o.logger = logging.NewNopLogger()
	}
	if o.codec == nil {
		codec, err := compression.Default()
		if err != nil {
			return nil, err
		}
		o.codec = codec
	}
	return o, nil
}
