// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := GitCommit
	defer func() { GitCommit = old }()
	GitCommit = "abc1234"

	s := String()
	for _, want := range []string{"vestctl " + Version, "commit: abc1234", "built: " + BuildTime} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
