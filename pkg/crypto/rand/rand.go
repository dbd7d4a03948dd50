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

// Package rand selects the entropy source used for one-time payload keys
// and polynomial coefficients.
//
// # RNG Sources
//
//   - Auto: PKCS#11 if configured, then TPM2, then software
//   - Software: crypto/rand
//   - TPM2: TPM2_GetRandom (requires the tpm2 build tag)
//   - PKCS11: C_GenerateRandom (requires the pkcs11 build tag)
//
// Every Resolver is an io.Reader, so it can be handed directly to the
// splitter:
//
//	rng, err := rand.NewResolver(&rand.Config{Mode: rand.ModeAuto})
//	if err != nil {
//	    return err
//	}
//	defer rng.Close()
//	shares, err := secretsplit.Split(data, 5, 3, secretsplit.WithRandom(rng))
//
// A hardware source that fails mid-operation returns an error; it is only
// replaced by FallbackMode when one is configured. Key generation never
// silently degrades.
package rand

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mode names an RNG source.
type Mode string

const (
	// ModeAuto selects the best available source.
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand.
	ModeSoftware Mode = "software"

	// ModeTPM2 uses the Trusted Platform Module 2.0 RNG.
	ModeTPM2 Mode = "tpm2"

	// ModePKCS11 uses a PKCS#11 token RNG.
	ModePKCS11 Mode = "pkcs11"
)

var (
	// ErrUnknownMode is returned for an unrecognised Mode.
	ErrUnknownMode = errors.New("rand: unknown RNG mode")

	// ErrNotCompiled is returned when a hardware source was excluded by
	// build tags.
	ErrNotCompiled = errors.New("rand: RNG support not compiled")

	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("rand: resolver closed")
)

// ParseMode converts a mode name. The empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeSoftware, ModeTPM2, ModePKCS11:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Config selects and configures an RNG source.
type Config struct {
	// Mode is the primary source. Defaults to ModeAuto.
	Mode Mode

	// FallbackMode is used when the primary source fails to produce bytes.
	// Empty means failures are returned to the caller.
	FallbackMode Mode

	// TPM2 configures ModeTPM2. Nil uses /dev/tpmrm0 defaults.
	TPM2 *TPM2Config

	// PKCS11 configures ModePKCS11. Required for that mode.
	PKCS11 *PKCS11Config
}

// TPM2Config configures the TPM2 source.
type TPM2Config struct {
	// Device is the TPM character device.
	Device string

	// MaxRequestSize caps bytes per TPM2_GetRandom call.
	MaxRequestSize int

	// UseSimulator connects to a TCP simulator (swtpm) instead of Device.
	UseSimulator  bool
	SimulatorHost string
	SimulatorPort int
}

// PKCS11Config configures the PKCS#11 source.
type PKCS11Config struct {
	// Module is the path to the PKCS#11 library.
	Module string

	// SlotID is the slot whose token provides randomness.
	SlotID uint

	// PIN logs in to the token when set.
	PIN string
}

// Resolver is a configured entropy source.
type Resolver interface {
	// Read fills p entirely or returns an error.
	io.Reader

	// Mode reports the source actually in use.
	Mode() Mode

	// Close releases hardware handles.
	Close() error
}

// NewResolver builds the Resolver described by cfg. A nil cfg is ModeAuto.
func NewResolver(cfg *Config) (Resolver, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeAuto
	}

	primary, err := newSource(mode, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.FallbackMode == "" || cfg.FallbackMode == primary.Mode() {
		return primary, nil
	}

	fallback, err := newSource(cfg.FallbackMode, cfg)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("failed to create fallback RNG: %w", err)
	}
	return &fallbackResolver{primary: primary, fallback: fallback}, nil
}

func newSource(mode Mode, cfg *Config) (Resolver, error) {
	switch mode {
	case ModeAuto:
		return newAutoResolver(cfg), nil
	case ModeSoftware:
		return softwareResolver{}, nil
	case ModeTPM2:
		return newTPM2Resolver(cfg.TPM2)
	case ModePKCS11:
		return newPKCS11Resolver(cfg.PKCS11)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// newAutoResolver prefers a configured PKCS#11 token, then a TPM, then
// crypto/rand. Hardware that cannot be opened is skipped.
func newAutoResolver(cfg *Config) Resolver {
	if cfg.PKCS11 != nil {
		if r, err := newPKCS11Resolver(cfg.PKCS11); err == nil {
			return r
		}
	}
	if r, err := newTPM2Resolver(cfg.TPM2); err == nil {
		return r
	}
	return softwareResolver{}
}

type softwareResolver struct{}

func (softwareResolver) Read(p []byte) (int, error) {
	return io.ReadFull(rand.Reader, p)
}

func (softwareResolver) Mode() Mode {
	return ModeSoftware
}

func (softwareResolver) Close() error {
	return nil
}

type fallbackResolver struct {
	primary  Resolver
	fallback Resolver
}

func (f *fallbackResolver) Read(p []byte) (int, error) {
	n, err := f.primary.Read(p)
	if err == nil {
		return n, nil
	}
	return f.fallback.Read(p)
}

func (f *fallbackResolver) Mode() Mode {
	return f.primary.Mode()
}

func (f *fallbackResolver) Close() error {
	return errors.Join(f.primary.Close(), f.fallback.Close())
}

// readChunked fills p from fn, requesting at most max bytes per call.
func readChunked(p []byte, max int, fn func(n int) ([]byte, error)) (int, error) {
	filled := 0
	for filled < len(p) {
		want := len(p) - filled
		if want > max {
			want = max
		}
		chunk, err := fn(want)
		if err != nil {
			return filled, err
		}
		if len(chunk) == 0 {
			return filled, io.ErrNoProgress
		}
		filled += copy(p[filled:], chunk)
	}
	return filled, nil
}
