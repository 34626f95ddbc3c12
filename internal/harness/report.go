// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package harness

import (
	"fmt"
	"io"

	"github.com/tokenvest/vestctl/internal/chain"
	"github.com/tokenvest/vestctl/internal/util"
)

// ReportPrefix starts the line written by Report.
const ReportPrefix = "Your transaction signature"

func writeReport(w io.Writer, sig chain.Signature) error {
	_, err := fmt.Fprintf(w, "%s %s\n", ReportPrefix, util.Success(w, sig.String()))
	return err
}
