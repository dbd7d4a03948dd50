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
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-secretsplit/pkg/compression"
	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/chacha20poly1305"
	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-secretsplit/pkg/logging"
	"github.com/jeremyhahn/go-secretsplit/pkg/metrics"
)

// Combiner restores payloads from shares. It is safe for concurrent use.
type Combiner struct {
	codec  *compression.Codec
	logger logging.Logger
}

// NewCombiner creates a Combiner. WithRandom is accepted and ignored.
func NewCombiner(opts ...Option) (*Combiner, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Combiner{
		codec:  o.codec,
		logger: o.logger.With(logging.String("component", "combiner")),
	}, nil
}

// Combine restores the payload from shares of one split.
func Combine(shares []Share, opts ...Option) ([]byte, error) {
	c, err := NewCombiner(opts...)
	if err != nil {
		return nil, err
	}
	return c.Combine(shares)
}

// Combine restores the payload from shares of one split.
func (c *Combiner) Combine(shares []Share) ([]byte, error) {
	return c.CombineContext(context.Background(), shares)
}

// CombineContext is Combine with a context whose correlation ID tags the
// log records. The operation is not cancellable.
func (c *Combiner) CombineContext(ctx context.Context, shares []Share) ([]byte, error) {
	start := time.Now()

	data, err := c.combine(shares)
	elapsed := time.Since(start)
	if err != nil {
		kind := ErrorKind(err)
		metrics.RecordOperation(metrics.OpCombine, metrics.StatusError, elapsed.Seconds())
		metrics.RecordError(metrics.OpCombine, kind)
		c.logger.ErrorContext(ctx, "combine failed",
			logging.Int("shares", len(shares)),
			logging.String("error_kind", kind),
			logging.Error(err))
		return nil, err
	}

	metrics.RecordOperation(metrics.OpCombine, metrics.StatusSuccess, elapsed.Seconds())
	metrics.RecordPayload(metrics.OpCombine, len(data), len(shares))
	c.logger.InfoContext(ctx, "combined shares",
		logging.Int("shares", len(shares)),
		logging.Int("payload_bytes", len(data)),
		logging.Duration("duration", elapsed))
	return data, nil
}

func (c *Combiner) combine(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares provided", ErrInvalidParameters)
	}

	for i, share := range shares {
		if len(share) < KeyShareSize {
			return nil, fmt.Errorf("%w: share %d is %d bytes (minimum %d)",
				ErrMalformedShare, i, len(share), KeyShareSize)
		}
	}

	// All shares of one split carry the same ciphertext. Checking it before
	// key reconstruction separates mixed splits from tampering.
	ciphertext := shares[0].Ciphertext()
	for i, share := range shares[1:] {
		if !bytes.Equal(share.Ciphertext(), ciphertext) {
			return nil, fmt.Errorf("%w: ciphertext of share %d differs from share 0",
				ErrInconsistentShares, i+1)
		}
	}

	key, err := combineKey(shares)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
	chacha20poly1305.Zeroize(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	compressed, err := aead.Open(chacha20poly1305.ZeroNonce(), ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailure, err)
	}

	data, err := c.codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	return data, nil
}

// combineKey interpolates the payload key from the key share prefixes.
func combineKey(shares []Share) ([]byte, error) {
	keyShares := make([]secretsharing.Share, len(shares))
	defer func() {
		for _, ks := range keyShares {
			chacha20poly1305.Zeroize(ks.Value)
		}
	}()

	for i, share := range shares {
		ks, err := secretsharing.ParseShare(share.KeyShare())
		if err != nil {
			return nil, fmt.Errorf("%w: share %d: %w", ErrMalformedShare, i, err)
		}
		keyShares[i] = ks
	}

	key, err := secretsharing.Combine(keyShares)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShare, err)
	}
	return key, nil
}
