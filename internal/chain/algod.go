// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package chain

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/tokenvest/vestctl/internal/program"
	"github.com/tokenvest/vestctl/internal/provider"
	"github.com/tokenvest/vestctl/internal/util"
)

// AlgodInvoker submits ABI method calls through the provider's algod client
// and waits for confirmation. With Provider.Simulate set, calls are run
// through the simulate endpoint and never reach the network.
type AlgodInvoker struct {
	provider *provider.Provider
	simOut   io.Writer
}

// InvokerOption configures an AlgodInvoker.
type InvokerOption func(*AlgodInvoker)

// WithSimulationOutput writes every SimulationReport to w, rejected ones included.
func WithSimulationOutput(w io.Writer) InvokerOption {
	return func(a *AlgodInvoker) { a.simOut = w }
}

// NewAlgodInvoker returns an invoker bound to p.
func NewAlgodInvoker(p *provider.Provider, opts ...InvokerOption) *AlgodInvoker {
	a := &AlgodInvoker{provider: p}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Invoke builds, signs and submits one application call for call.Method.
func (a *AlgodInvoker) Invoke(ctx context.Context, call Call) (Signature, error) {
	if call.Handle == nil {
		return "", &RemoteError{Method: call.Method, Reason: "no program handle"}
	}
	method, err := call.Handle.Method(call.Method)
	if err != nil {
		return "", &RemoteError{Method: call.Method, Reason: "cannot build call", Err: err}
	}
	args, err := program.EncodeArgs(method, call.Args)
	if err != nil {
		return "", &RemoteError{Method: call.Method, Reason: "cannot build call", Err: err}
	}

	if a.provider.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.provider.Timeout)
		defer cancel()
	}

	client := a.provider.Client
	params, err := client.SuggestedParams().Do(ctx)
	if err != nil {
		return "", &RemoteError{Method: call.Method, Reason: "failed to get suggested params", Err: err}
	}

	var atc transaction.AtomicTransactionComposer
	err = atc.AddMethodCall(transaction.AddMethodCallParams{
		AppID:           call.Handle.AppID(),
		Method:          method,
		MethodArgs:      args,
		Sender:          a.provider.Address(),
		SuggestedParams: params,
		OnComplete:      types.NoOpOC,
		Signer:          a.provider.Signer(),
	})
	if err != nil {
		return "", &RemoteError{Method: call.Method, Reason: "cannot build call", Err: err}
	}

	group, err := atc.BuildGroup()
	if err != nil || len(group) == 0 {
		return "", &RemoteError{Method: call.Method, Reason: "cannot build call", Err: err}
	}
	txID := crypto.GetTxID(group[0].Txn)

	util.Debug("submitting method call",
		"program", call.Handle.Name(),
		"app_id", call.Handle.AppID(),
		"method", method.GetSignature(),
		"tx_id", txID,
		"simulate", a.provider.Simulate)

	if a.provider.Simulate {
		return a.simulate(ctx, &atc, call.Method, txID)
	}

	result, err := atc.Execute(client, ctx, uint64(a.provider.WaitRounds))
	if err != nil {
		reason := "submission failed"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timed out"
		}
		return "", &RemoteError{Method: call.Method, TxID: txID, Reason: reason, Err: err}
	}

	sig := txID
	if len(result.MethodResults) > 0 && result.MethodResults[0].TxID != "" {
		sig = result.MethodResults[0].TxID
		if derr := result.MethodResults[0].DecodeError; derr != nil {
			util.Log().Warn("cannot decode method return value", "method", call.Method, "error", derr)
		}
	}
	if sig == "" {
		return "", &RemoteError{Method: call.Method, Reason: "no transaction ID returned"}
	}

	util.Debug("method call confirmed", "tx_id", sig, "round", result.ConfirmedRound)
	return Signature(sig), nil
}

func (a *AlgodInvoker) simulate(ctx context.Context, atc *transaction.AtomicTransactionComposer, method, txID string) (Signature, error) {
	signed, err := atc.GatherSignatures()
	if err != nil {
		return "", &RemoteError{Method: method, TxID: txID, Reason: "signing failed", Err: err}
	}

	report, err := Simulate(ctx, a.provider.Client, signed)
	if err != nil {
		return "", &RemoteError{Method: method, TxID: txID, Reason: "simulation failed", Err: err}
	}
	if len(report.TxIDs) == 0 {
		return "", &RemoteError{Method: method, Reason: "no transaction ID returned"}
	}

	util.Log().Info("simulation result",
		"method", method,
		"tx_id", report.TxIDs[0],
		"round", report.Round,
		"failed", report.Failed(),
		"app_budget", report.AppBudget,
		"logs", len(report.Logs))
	if a.simOut != nil {
		if _, err := report.WriteTo(a.simOut); err != nil {
			util.Log().Warn("cannot write simulation report", "error", err)
		}
	}

	if report.Failed() {
		return "", &RemoteError{
			Method: method,
			TxID:   report.TxIDs[0],
			Reason: fmt.Sprintf("rejected at %s: %s", formatFailedAt(report.FailedAt), report.FailureMessage),
			Err:    ErrSimulationFailed,
		}
	}

	return Signature(report.TxIDs[0]), nil
}
