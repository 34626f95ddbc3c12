// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// supportsColor checks if w is a terminal that understands ANSI color codes
func supportsColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(f.Fd())) { // #nosec G115 - file descriptors are small integers
		return false
	}

	termEnv := os.Getenv("TERM")
	if termEnv == "" || termEnv == "dumb" {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

// Success renders s highlighted when w is a color terminal, plain otherwise.
func Success(w io.Writer, s string) string {
	if !supportsColor(w) {
		return s
	}
	return successStyle.Render(s)
}

// Failure renders s as an error when w is a color terminal, plain otherwise.
func Failure(w io.Writer, s string) string {
	if !supportsColor(w) {
		return s
	}
	return failureStyle.Render(s)
}
