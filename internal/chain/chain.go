// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package chain issues remote calls against deployed programs.
package chain

import (
	"context"

	"github.com/tokenvest/vestctl/internal/program"
)

// Signature identifies a submitted transaction. For Algorand it is the
// 52-character base32 transaction ID.
type Signature string

// IsZero reports whether the signature is empty.
func (s Signature) IsZero() bool { return s == "" }

func (s Signature) String() string { return string(s) }

// Call is one method invocation on a resolved program.
type Call struct {
	Handle *program.Handle
	Method string
	Args   program.Args
}

// Invoker performs a single remote call and returns its transaction signature.
// Implementations must not retry; every failure is returned as *RemoteError.
type Invoker interface {
	Invoke(ctx context.Context, call Call) (Signature, error)
}
