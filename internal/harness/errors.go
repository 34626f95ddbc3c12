// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package harness

import (
	"errors"

	"github.com/tokenvest/vestctl/internal/chain"
	"github.com/tokenvest/vestctl/internal/program"
	"github.com/tokenvest/vestctl/internal/util"
)

var (
	// ErrConfiguration indicates missing or invalid provider settings
	ErrConfiguration = util.ErrConfiguration

	// ErrNotFound indicates a program that cannot be resolved
	ErrNotFound = program.ErrNotFound

	// ErrRemote indicates a remote call that failed, was rejected, or timed out
	ErrRemote = chain.ErrRemote

	// ErrInvalidState indicates an operation called out of sequence
	ErrInvalidState = errors.New("invalid harness state")
)

type (
	ConfigurationError = util.ConfigurationError
	NotFoundError      = program.NotFoundError
	RemoteError        = chain.RemoteError
)
