// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// SimulationReport is the outcome of a simulated group.
type SimulationReport struct {
	Round          uint64
	TxIDs          []string
	FailureMessage string
	FailedAt       []uint64
	AppBudget      uint64
	Logs           [][]byte
}

// Failed reports whether the group would be rejected on-chain.
func (r SimulationReport) Failed() bool {
	return r.FailureMessage != ""
}

// Simulate runs signed transactions through the algod simulate endpoint
// instead of submitting them. A group the node would reject is not an
// error here; check Failed.
func Simulate(ctx context.Context, client *algod.Client, signedTxns [][]byte) (SimulationReport, error) {
	if len(signedTxns) == 0 {
		return SimulationReport{}, fmt.Errorf("no signed transactions to simulate")
	}

	decoded := make([]types.SignedTxn, len(signedTxns))
	report := SimulationReport{TxIDs: make([]string, len(signedTxns))}
	for i, raw := range signedTxns {
		if err := msgpack.Decode(raw, &decoded[i]); err != nil {
			return SimulationReport{}, fmt.Errorf("failed to decode signed transaction %d: %w", i+1, err)
		}
		report.TxIDs[i] = crypto.GetTxID(decoded[i].Txn)
	}

	req := models.SimulateRequest{
		TxnGroups:        []models.SimulateRequestTransactionGroup{{Txns: decoded}},
		AllowMoreLogging: true,
	}
	resp, err := client.SimulateTransaction(req).Do(ctx)
	if err != nil {
		return SimulationReport{}, fmt.Errorf("simulation API call failed: %w", err)
	}

	report.Round = resp.LastRound
	if len(resp.TxnGroups) == 0 {
		return report, nil
	}

	group := resp.TxnGroups[0]
	report.FailureMessage = group.FailureMessage
	report.FailedAt = group.FailedAt
	report.AppBudget = group.AppBudgetConsumed
	for _, txn := range group.TxnResults {
		report.Logs = append(report.Logs, txn.TxnResult.Logs...)
	}
	return report, nil
}

// WriteTo renders the report for a terminal.
func (r SimulationReport) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	if r.Failed() {
		fmt.Fprintf(&b, "Simulation FAILED (round %d)\n", r.Round)
		fmt.Fprintf(&b, "  Reason: %s\n", r.FailureMessage)
		if len(r.FailedAt) > 0 {
			fmt.Fprintf(&b, "  Failed at: %s\n", formatFailedAt(r.FailedAt))
		}
	} else {
		fmt.Fprintf(&b, "Simulation successful (round %d)\n", r.Round)
	}
	for i, txID := range r.TxIDs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, txID)
	}
	if r.AppBudget > 0 {
		fmt.Fprintf(&b, "App budget consumed: %d\n", r.AppBudget)
	}
	if len(r.Logs) > 0 {
		fmt.Fprintf(&b, "Logs (%d):\n", len(r.Logs))
		for i, entry := range r.Logs {
			fmt.Fprintf(&b, "  [%d] %s\n", i, formatLogEntry(entry))
		}
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// formatFailedAt renders the 0-based failure path 1-based.
func formatFailedAt(path []uint64) string {
	if len(path) == 0 {
		return "unknown"
	}
	parts := make([]string, len(path))
	parts[0] = fmt.Sprintf("transaction %d", path[0]+1)
	for i := 1; i < len(path); i++ {
		parts[i] = fmt.Sprintf("inner %d", path[i]+1)
	}
	return strings.Join(parts, " → ")
}

func formatLogEntry(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	if isPrintable(data) {
		return fmt.Sprintf("%q", string(data))
	}
	return fmt.Sprintf("(%d bytes) 0x%s", len(data), hex.EncodeToString(data))
}

// isPrintable checks if all bytes are printable ASCII.
func isPrintable(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for _, b := range data {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return len(data) > 0
}
