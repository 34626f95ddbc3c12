// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package chain

import "errors"

var (
	// ErrRemote indicates a remote call that failed or was rejected
	ErrRemote = errors.New("remote call failed")

	// ErrSimulationFailed indicates the simulate endpoint reported a transaction failure
	ErrSimulationFailed = errors.New("simulation failed")
)

// RemoteError describes a failed remote call. TxID is set when the
// transaction was built before the failure.
type RemoteError struct {
	Method string
	TxID   string
	Reason string
	Err    error
}

func (e *RemoteError) Error() string {
	msg := "remote call " + e.Method + " failed: " + e.Reason
	if e.TxID != "" {
		msg += " (tx " + e.TxID + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
