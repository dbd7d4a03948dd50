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
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jeremyhahn/go-secretsplit/pkg/compression"
	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/chacha20poly1305"
	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-secretsplit/pkg/logging"
	"github.com/jeremyhahn/go-secretsplit/pkg/metrics"
)

// Splitter splits payloads into shares. It holds no per-split state and is
// safe for concurrent use if its random source is.
type Splitter struct {
	random io.Reader
	codec  *compression.Codec
	logger logging.Logger
}

// NewSplitter creates a Splitter.
func NewSplitter(opts ...Option) (*Splitter, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Splitter{
		random: o.random,
		codec:  o.codec,
		logger: o.logger.With(logging.String("component", "splitter")),
	}, nil
}

// Split splits data into n shares, any k of which restore it.
func Split(data []byte, n, k uint8, opts ...Option) ([]Share, error) {
	s, err := NewSplitter(opts...)
	if err != nil {
		return nil, err
	}
	return s.Split(data, n, k)
}

// Split splits data into n shares, any k of which restore it.
func (s *Splitter) Split(data []byte, n, k uint8) ([]Share, error) {
	return s.SplitContext(context.Background(), data, n, k)
}

// SplitContext is Split with a context whose correlation ID tags the log
// records. The operation is not cancellable.
func (s *Splitter) SplitContext(ctx context.Context, data []byte, n, k uint8) ([]Share, error) {
	start := time.Now()

	shares, err := s.split(data, n, k)
	elapsed := time.Since(start)
	if err != nil {
		kind := ErrorKind(err)
		metrics.RecordOperation(metrics.OpSplit, metrics.StatusError, elapsed.Seconds())
		metrics.RecordError(metrics.OpSplit, kind)
		s.logger.ErrorContext(ctx, "split failed",
			logging.Int("n", int(n)),
			logging.Int("k", int(k)),
			logging.String("error_kind", kind),
			logging.Error(err))
		return nil, err
	}

	metrics.RecordOperation(metrics.OpSplit, metrics.StatusSuccess, elapsed.Seconds())
	metrics.RecordPayload(metrics.OpSplit, len(data), len(shares))
	s.logger.InfoContext(ctx, "split payload",
		logging.Int("n", int(n)),
		logging.Int("k", int(k)),
		logging.Int("payload_bytes", len(data)),
		logging.Int("share_bytes", len(shares[0])),
		logging.Duration("duration", elapsed))
	return shares, nil
}

func (s *Splitter) split(data []byte, n, k uint8) ([]Share, error) {
	if err := secretsharing.ValidateParameters(int(n), int(k)); err != nil {
		return nil, fmt.Errorf("%w: n=%d k=%d", ErrInvalidParameters, n, k)
	}

	key, err := chacha20poly1305.GenerateKey(s.random)
	if err != nil {
		return nil, err
	}
	defer chacha20poly1305.Zeroize(key)

	shamir, err := secretsharing.NewShamir(&secretsharing.ShareConfig{
		Threshold:   int(k),
		TotalShares: int(n),
		Random:      s.random,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	keyShares, err := shamir.Split(key)
	if err != nil {
		return nil, fmt.Errorf("failed to split key: %w", err)
	}

	ciphertext, err := s.seal(key, data)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, len(keyShares))
	for i, ks := range keyShares {
		shares[i], err = newShare(ks, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("failed to encode share %d: %w", ks.Index, err)
		}
	}
	for _, ks := range keyShares {
		chacha20poly1305.Zeroize(ks.Value)
	}
	return shares, nil
}

// seal compresses data and encrypts it under key with the zero nonce. Key
// is zeroized once the cipher has its own copy.
func (s *Splitter) seal(key, data []byte) ([]byte, error) {
	compressed := s.codec.Compress(data)

	aead, err := chacha20poly1305.New(key)
	chacha20poly1305.Zeroize(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	ciphertext, err := aead.Seal(chacha20poly1305.ZeroNonce(), compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt payload: %w", err)
	}
	return ciphertext, nil
}
