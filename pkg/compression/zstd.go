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

// Package compression provides the lossless codec applied to payloads
// before encryption. It uses Zstandard framing so shares can be combined by
// any zstd-capable implementation.
package compression

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrCorruptStream is returned when input is not a valid zstd stream.
	ErrCorruptStream = errors.New("compression: corrupt or foreign stream")

	// ErrUnknownLevel is returned by ParseLevel for unrecognised names.
	ErrUnknownLevel = errors.New("compression: unknown level")
)

// Level selects the compression speed/ratio trade-off.
type Level string

const (
	LevelFastest Level = "fastest"
	LevelDefault Level = "default"
	LevelBetter  Level = "better"
	LevelBest    Level = "best"
)

// ParseLevel converts a level name to a Level. The empty string is the
// default level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelDefault:
		return LevelDefault, nil
	case LevelFastest:
		return LevelFastest, nil
	case LevelBetter:
		return LevelBetter, nil
	case LevelBest:
		return LevelBest, nil
	default:
		return "", fmt.Errorf("%w: %q (want fastest, default, better or best)", ErrUnknownLevel, s)
	}
}

func (l Level) encoderLevel() zstd.EncoderLevel {
	switch l {
	case LevelFastest:
		return zstd.SpeedFastest
	case LevelBetter:
		return zstd.SpeedBetterCompression
	case LevelBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

type options struct {
	level          Level
	maxDecodedSize uint64
}

// Option configures a Codec.
type Option func(*options) error

// WithLevel sets the encoder level.
func WithLevel(level Level) Option {
	return func(o *options) error {
		if _, err := ParseLevel(string(level)); err != nil {
			return err
		}
		o.level = level
		return nil
	}
}

// WithMaxDecodedSize bounds the memory a single Decompress may allocate.
// Zero keeps the zstd default.
func WithMaxDecodedSize(n uint64) Option {
	return func(o *options) error {
		o.maxDecodedSize = n
		return nil
	}
}

// Codec compresses and decompresses whole buffers. A Codec is safe for
// concurrent use.
type Codec struct {
	level   Level
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a Codec.
func New(opts ...Option) (*Codec, error) {
	o := &options{level: LevelDefault}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	// Zero frames make empty input produce a real frame, so an empty
	// payload still decodes through the normal path.
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(o.level.encoderLevel()),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoderOpts := []zstd.DOption{zstd.WithDecoderConcurrency(0)}
	if o.maxDecodedSize > 0 {
		decoderOpts = append(decoderOpts, zstd.WithDecoderMaxMemory(o.maxDecodedSize))
	}
	decoder, err := zstd.NewReader(nil, decoderOpts...)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Codec{
		level:   o.level,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Level returns the encoder level of the codec.
func (c *Codec) Level() Level {
	return c.level
}

// Compress returns the zstd frame for data.
func (c *Codec) Compress(data []byte) []byte {
	return c.encoder.EncodeAll(data, nil)
}

// Decompress reverses Compress. Input that is not a complete zstd stream
// returns ErrCorruptStream.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	out, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	return out, nil
}

// Close releases encoder and decoder resources.
func (c *Codec) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}

var (
	defaultOnce  sync.Once
	defaultCodec *Codec
	defaultErr   error
)

// Default returns a shared Codec at the default level.
func Default() (*Codec, error) {
	defaultOnce.Do(func() {
		defaultCodec, defaultErr = New()
	})
	return defaultCodec, defaultErr
}

// Compress compresses data with the default codec.
func Compress(data []byte) ([]byte, error) {
	codec, err := Default()
	if err != nil {
		return nil, err
	}
	return codec.Compress(data), nil
}

// Decompress decompresses data with the default codec.
func Decompress(data []byte) ([]byte, error) {
	codec, err := Default()
	if err != nil {
		return nil, err
	}
	return codec.Decompress(data)
}
