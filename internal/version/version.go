// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package version reports the vestctl build. Values are injected with -ldflags:
//
//	go build -ldflags "-X github.com/tokenvest/vestctl/internal/version.Version=0.3.0" ./cmd/vestctl
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the line printed by -version.
func String() string {
	return fmt.Sprintf("vestctl %s (commit: %s, built: %s, %s, %s/%s)",
		Version, commit(), BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// commit falls back to the VCS revision stamped by the go tool.
func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return GitCommit
}
