// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package program

import "errors"

var (
	// ErrNotFound indicates no interface definition (or no deployment) for a program name
	ErrNotFound = errors.New("program not found")

	// ErrUnknownMethod indicates the program interface has no method with the given name
	ErrUnknownMethod = errors.New("unknown method")

	// ErrInvalidArgument indicates a call argument is missing, unexpected, or has the wrong shape
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidContract indicates an interface definition that cannot be used
	ErrInvalidContract = errors.New("invalid contract definition")
)

// NotFoundError reports a program that cannot be resolved.
type NotFoundError struct {
	Name    string
	Network string
	Reason  string
}

func (e *NotFoundError) Error() string {
	msg := "program not found: " + e.Name
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ArgumentError reports a call argument that cannot be encoded.
type ArgumentError struct {
	Method string
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Arg == "" {
		return "invalid argument for " + e.Method + ": " + e.Reason
	}
	return "invalid argument " + e.Arg + " for " + e.Method + ": " + e.Reason
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
