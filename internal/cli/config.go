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
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-secretsplit/internal/encoding"
	"github.com/jeremyhahn/go-secretsplit/pkg/compression"
	"github.com/jeremyhahn/go-secretsplit/pkg/crypto/rand"
	"github.com/jeremyhahn/go-secretsplit/pkg/logging"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g.
// SECRETSPLIT_ENCODING=base64.
const EnvPrefix = "SECRETSPLIT"

// Flag names. Each is also read from EnvPrefix_<NAME> with dashes
// replaced by underscores.
const (
	flagEncoding         = "encoding"
	flagCompressionLevel = "compression-level"
	flagRNG              = "rng"
	flagTPMDevice        = "tpm-device"
	flagPKCS11Module     = "pkcs11-module"
	flagPKCS11Slot       = "pkcs11-slot"
	flagOutput           = "output"
	flagVerbose          = "verbose"
	flagLogFormat        = "log-format"
	flagMetricsTextfile  = "metrics-textfile"

	// keyPKCS11PIN has no flag so the PIN never appears in argv.
	keyPKCS11PIN = "pkcs11-pin"
)

// Config holds global CLI configuration
type Config struct {
	// Encoding is the text transport for shares on stdin/stdout
	Encoding encoding.Format

	// CompressionLevel is the zstd level used by create
	CompressionLevel compression.Level

	// RNG selects the entropy source for keys and coefficients
	RNG rand.Mode

	// TPMDevice is the TPM character device for the tpm2 source
	TPMDevice string

	// PKCS11Module, PKCS11Slot and PKCS11PIN configure the pkcs11 source
	PKCS11Module string
	PKCS11Slot   uint
	PKCS11PIN    string

	// OutputFormat controls error and version output (text, json)
	OutputFormat OutputFormat

	// Verbose enables structured logging on stderr
	Verbose bool

	// LogFormat is the structured log format (text, json)
	LogFormat string

	// MetricsTextfile is written after every run when set
	MetricsTextfile string
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Encoding:         encoding.FormatHex,
		CompressionLevel: compression.LevelDefault,
		RNG:              rand.ModeAuto,
		OutputFormat:     OutputFormatText,
		LogFormat:        logging.FormatText,
	}
}

// registerFlags adds the global flags to fs with their defaults.
func registerFlags(fs *pflag.FlagSet) {
	defaults := NewConfig()
	fs.String(flagEncoding, string(defaults.Encoding), "share text encoding (hex, base64)")
	fs.String(flagCompressionLevel, string(defaults.CompressionLevel), "zstd level for create (fastest, default, better, best)")
	fs.String(flagRNG, string(defaults.RNG), "entropy source (auto, software, tpm2, pkcs11)")
	fs.String(flagTPMDevice, "", "TPM device for the tpm2 entropy source (default /dev/tpmrm0)")
	fs.String(flagPKCS11Module, "", "PKCS#11 library for the pkcs11 entropy source")
	fs.Uint(flagPKCS11Slot, 0, "PKCS#11 slot for the pkcs11 entropy source")
	fs.StringP(flagOutput, "o", string(defaults.OutputFormat), "error and version output format (text, json)")
	fs.BoolP(flagVerbose, "v", false, "log operations to stderr")
	fs.String(flagLogFormat, defaults.LogFormat, "log format when verbose (text, json)")
	fs.String(flagMetricsTextfile, "", "write Prometheus metrics to this file after the run")
}

// newViper binds fs to a viper instance that also reads SECRETSPLIT_*
// environment variables. Flags set on the command line take precedence.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.BindEnv(keyPKCS11PIN); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", keyPKCS11PIN, err)
	}
	return v, nil
}

// LoadConfig builds and validates a Config from v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	format, err := encoding.ParseFormat(v.GetString(flagEncoding))
	if err != nil {
		return nil, err
	}
	level, err := compression.ParseLevel(v.GetString(flagCompressionLevel))
	if err != nil {
		return nil, err
	}
	mode, err := rand.ParseMode(v.GetString(flagRNG))
	if err != nil {
		return nil, err
	}
	output, err := ParseOutputFormat(v.GetString(flagOutput))
	if err != nil {
		return nil, err
	}
	logFormat := strings.ToLower(v.GetString(flagLogFormat))
	if logFormat != logging.FormatText && logFormat != logging.FormatJSON {
		return nil, fmt.Errorf("unknown log format: %q (want text or json)", logFormat)
	}

	return &Config{
		Encoding:         format,
		CompressionLevel: level,
		RNG:              mode,
		TPMDevice:        v.GetString(flagTPMDevice),
		PKCS11Module:     v.GetString(flagPKCS11Module),
		PKCS11Slot:       v.GetUint(flagPKCS11Slot),
		PKCS11PIN:        v.GetString(keyPKCS11PIN),
		OutputFormat:     output,
		Verbose:          v.GetBool(flagVerbose),
		LogFormat:        logFormat,
		MetricsTextfile:  v.GetString(flagMetricsTextfile),
	}, nil
}

// RandConfig returns the entropy source configuration.
func (c *Config) RandConfig() *rand.Config {
	cfg := &rand.Config{Mode: c.RNG}
	if c.TPMDevice != "" {
		cfg.TPM2 = &rand.TPM2Config{Device: c.TPMDevice}
	}
	if c.PKCS11Module != "" {
		cfg.PKCS11 = &rand.PKCS11Config{
			Module: c.PKCS11Module,
			SlotID: c.PKCS11Slot,
			PIN:    c.PKCS11PIN,
		}
	}
	return cfg
}

// NewLogger returns a structured logger on w when verbose, and a no-op
// logger otherwise.
func (c *Config) NewLogger(w io.Writer) logging.Logger {
	if !c.Verbose {
		return logging.NewNopLogger()
	}
	return logging.NewSlogAdapter(&logging.SlogConfig{
		Level:  logging.LevelDebug,
		Format: c.LogFormat,
		Writer: w,
	}).With(logging.String("app", "secretsplit"))
}
