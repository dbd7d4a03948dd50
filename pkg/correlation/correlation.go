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

// Package correlation tags split and combine operations with an ID so the
// log lines of one run can be grouped, including across the separate
// processes of a create/combine ceremony.
package correlation

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
)

type contextKey struct{}

// EnvVar lets a calling script supply the ID, so every process taking
// part in one ceremony logs the same value.
const EnvVar = "SECRETSPLIT_CORRELATION_ID"

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// GetCorrelationID retrieves the correlation ID from context.
// Returns an empty string if no correlation ID is found.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// NewID generates a new UUID v4 correlation ID.
func NewID() string {
	return uuid.New().String()
}

// GetOrGenerate retrieves an existing correlation ID from context
// or generates a new one if none exists.
func GetOrGenerate(ctx context.Context) string {
	if id := GetCorrelationID(ctx); id != "" {
		return id
	}
	return NewID()
}

// FromEnvironment returns ctx tagged with the ID from EnvVar, or with a
// fresh ID when the variable is unset or blank.
func FromEnvironment(ctx context.Context) context.Context {
	id := strings.TrimSpace(os.Getenv(EnvVar))
	if id == "" {
		id = GetOrGenerate(ctx)
	}
	return WithCorrelationID(ctx, id)
}
