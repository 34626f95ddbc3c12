// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package harness

import (
	"context"
	"errors"

	"github.com/tokenvest/vestctl/internal/chain"
)

// Pending is the in-flight result of Invoke. Await is its only
// synchronisation point; later Awaits return the same outcome.
type Pending struct {
	harness *Harness
	method  string
	done    chan struct{}
	cancel  context.CancelFunc

	// written by run before done is closed
	sig chain.Signature
	err error

	// guarded by harness.mu
	awaited bool
}

func failedPending(err error) *Pending {
	done := make(chan struct{})
	close(done)
	return &Pending{done: done, err: err}
}

func (p *Pending) run(ctx context.Context, invoker chain.Invoker, call chain.Call) {
	defer close(p.done)
	defer p.cancel()

	sig, err := invoker.Invoke(ctx, call)
	switch {
	case err != nil:
		var remote *chain.RemoteError
		if !errors.As(err, &remote) {
			err = &chain.RemoteError{Method: call.Method, Reason: "call failed", Err: err}
		}
		p.err = err
	case sig.IsZero():
		p.err = &chain.RemoteError{Method: call.Method, Reason: "empty transaction signature"}
	default:
		p.sig = sig
	}
}

// Await blocks until the remote call completes or ctx is done.
// Abandoning the wait cancels the call and fails the harness with a
// *RemoteError. A transaction already accepted by the node may still
// confirm; its ID is not reported.
func (p *Pending) Await(ctx context.Context) (chain.Signature, error) {
	if p.harness == nil {
		return "", p.err
	}

	select {
	case <-p.done:
		return p.settle(p.sig, p.err)
	case <-ctx.Done():
		p.cancel()
		return p.settle("", &chain.RemoteError{Method: p.method, Reason: "abandoned while awaiting confirmation", Err: ctx.Err()})
	}
}

func (p *Pending) settle(sig chain.Signature, err error) (chain.Signature, error) {
	h := p.harness
	h.mu.Lock()
	defer h.mu.Unlock()

	if p.awaited {
		if h.state == StateFailed {
			return "", h.err
		}
		return p.sig, nil
	}
	p.awaited = true

	if err != nil {
		return "", h.fail("invoke", err)
	}
	h.log().Debug("invocation confirmed", "method", p.method, "signature", sig.String())
	return sig, nil
}
