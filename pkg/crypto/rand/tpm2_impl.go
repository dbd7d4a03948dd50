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

//go:build tpm2

package rand

import (
	"fmt"
	"sync"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
	"github.com/google/go-tpm/tpm2/transport/tcp"
	"github.com/google/go-tpm/tpmutil"
)

const (
	defaultTPMDevice         = "/dev/tpmrm0"
	defaultTPMMaxRequestSize = 32
	defaultSimulatorHost     = "localhost"
	defaultSimulatorPort     = 2321
)

// tpm2Resolver draws bytes with TPM2_GetRandom.
type tpm2Resolver struct {
	mu     sync.Mutex
	rwc    transport.TPMCloser
	config TPM2Config
}

func newTPM2Resolver(config *TPM2Config) (Resolver, error) {
	cfg := TPM2Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.Device == "" {
		cfg.Device = defaultTPMDevice
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = defaultTPMMaxRequestSize
	}
	if cfg.SimulatorHost == "" {
		cfg.SimulatorHost = defaultSimulatorHost
	}
	if cfg.SimulatorPort <= 0 {
		cfg.SimulatorPort = defaultSimulatorPort
	}

	var rwc transport.TPMCloser
	if cfg.UseSimulator {
		// swtpm listens on a command port and, one above it, a platform port.
		cmdAddr := fmt.Sprintf("%s:%d", cfg.SimulatorHost, cfg.SimulatorPort)
		platAddr := fmt.Sprintf("%s:%d", cfg.SimulatorHost, cfg.SimulatorPort+1)
		conn, err := tcp.Open(tcp.Config{
			CommandAddress:  cmdAddr,
			PlatformAddress: platAddr,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to TPM simulator at %s: %w", cmdAddr, err)
		}
		rwc = conn
	} else {
		dev, err := tpmutil.OpenTPM(cfg.Device)
		if err != nil {
			return nil, fmt.Errorf("failed to open TPM2 device %s: %w", cfg.Device, err)
		}
		rwc = transport.FromReadWriteCloser(dev)
	}

	return &tpm2Resolver{rwc: rwc, config: cfg}, nil
}

func (t *tpm2Resolver) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rwc == nil {
		return 0, ErrClosed
	}

	return readChunked(p, t.config.MaxRequestSize, func(n int) ([]byte, error) {
		getRandom := tpm2.GetRandom{BytesRequested: uint16(n)}
		rsp, err := getRandom.Execute(t.rwc)
		if err != nil {
			return nil, fmt.Errorf("TPM2 GetRandom failed: %w", err)
		}
		return rsp.RandomBytes.Buffer, nil
	})
}

func (t *tpm2Resolver) Mode() Mode {
	return ModeTPM2
}

func (t *tpm2Resolver) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rwc == nil {
		return nil
	}
	err := t.rwc.Close()
	t.rwc = nil
	return err
}
