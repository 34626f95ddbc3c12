// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package harness drives one remote call against a deployed program:
// configure a provider, resolve the program, invoke a method, report the
// transaction signature. Operations must run in that order; the first
// failure ends the sequence.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/tokenvest/vestctl/internal/chain"
	"github.com/tokenvest/vestctl/internal/program"
	"github.com/tokenvest/vestctl/internal/provider"
	"github.com/tokenvest/vestctl/internal/util"
)

// State is a step of the harness sequence.
type State int

const (
	StateUnconfigured State = iota
	StateConfigured
	StateProgramResolved
	StateInvoked
	StateReported
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateProgramResolved:
		return "program-resolved"
	case StateInvoked:
		return "invoked"
	case StateReported:
		return "reported"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// InvokerFactory builds the remote call backend once the provider exists.
type InvokerFactory func(p *provider.Provider) chain.Invoker

// Option configures a Harness.
type Option func(*Harness)

// WithInvoker replaces the algod backend.
func WithInvoker(f InvokerFactory) Option {
	return func(h *Harness) { h.newInvoker = f }
}

// WithOutput sets where Report writes. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) { h.out = w }
}

// WithLogger sets the structured logger. Defaults to util.Log().
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Harness runs the configure → resolve → invoke → report sequence.
type Harness struct {
	cfg        util.Config
	registry   *program.Registry
	newInvoker InvokerFactory
	out        io.Writer
	logger     *slog.Logger

	mu       sync.Mutex
	state    State
	err      error
	provider *provider.Provider
	invoker  chain.Invoker
	handle   *program.Handle
	pending  *Pending
}

// New creates a harness for cfg. Nothing is validated or contacted until Setup.
func New(cfg util.Config, registry *program.Registry, opts ...Option) *Harness {
	h := &Harness{
		cfg:      cfg,
		registry: registry,
		newInvoker: func(p *provider.Provider) chain.Invoker {
			return chain.NewAlgodInvoker(p)
		},
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// State returns the current step.
func (h *Harness) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Err returns the failure that ended the sequence, if any.
func (h *Harness) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Provider returns the configured provider, or nil before Setup.
func (h *Harness) Provider() *provider.Provider {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.provider
}

func (h *Harness) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return util.Log()
}

// expect checks the harness is in want. Caller holds h.mu.
func (h *Harness) expect(op string, want State) error {
	if h.state == StateFailed {
		return h.err
	}
	if h.state != want {
		return fmt.Errorf("%w: %s requires state %s, harness is %s", ErrInvalidState, op, want, h.state)
	}
	return nil
}

// fail records err as the terminal failure. Caller holds h.mu.
func (h *Harness) fail(op string, err error) error {
	h.state = StateFailed
	h.err = err
	h.log().Error(op+" failed", "error", err)
	return err
}

// Setup builds the provider from the harness configuration.
// Fails with *ConfigurationError; no remote call is made.
func (h *Harness) Setup(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.expect("setup", StateUnconfigured); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return h.fail("setup", err)
	}

	p, err := provider.New(h.cfg)
	if err != nil {
		return h.fail("setup", err)
	}

	h.provider = p
	h.invoker = h.newInvoker(p)
	h.state = StateConfigured
	h.log().Info("provider configured", "network", p.Network, "endpoint", p.Endpoint, "signer", p.Address().String())
	return nil
}

// ResolveProgram looks name up in the registry for the configured network.
// Fails with *NotFoundError; purely local.
func (h *Harness) ResolveProgram(name string) (*program.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.expect("resolve", StateConfigured); err != nil {
		return nil, err
	}
	if h.registry == nil {
		return nil, h.fail("resolve", &program.NotFoundError{Name: name, Network: h.provider.Network, Reason: "no interface registry"})
	}

	handle, err := h.registry.Resolve(name, program.Deployment{
		Network:     h.provider.Network,
		GenesisHash: h.provider.GenesisHash,
		AppIDs:      h.cfg.ProgramIDs,
	})
	if err != nil {
		return nil, h.fail("resolve", err)
	}

	h.handle = handle
	h.state = StateProgramResolved
	h.log().Info("program resolved", "program", handle.Name(), "network", handle.Network(), "app_id", handle.AppID())
	return handle, nil
}

// Invoke starts one remote call of method on handle and returns its
// pending result. The call is issued exactly once and never retried.
func (h *Harness) Invoke(ctx context.Context, handle *program.Handle, method string, args program.Args) *Pending {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.expect("invoke", StateProgramResolved); err != nil {
		return failedPending(err)
	}
	if handle == nil {
		handle = h.handle
	}
	if args == nil {
		args = program.Args{}
	}

	h.state = StateInvoked
	h.log().Info("invoking", "program", handle.Name(), "method", method)

	runCtx, cancel := context.WithCancel(ctx)
	p := &Pending{harness: h, method: method, done: make(chan struct{}), cancel: cancel}
	h.pending = p
	call := chain.Call{Handle: handle, Method: method, Args: args}
	go p.run(runCtx, h.invoker, call)
	return p
}

// Report writes the signature of the awaited call to the output.
func (h *Harness) Report(sig chain.Signature) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.expect("report", StateInvoked); err != nil {
		return err
	}
	if h.pending == nil || !h.pending.awaited {
		return fmt.Errorf("%w: report requires an awaited invocation", ErrInvalidState)
	}
	if sig.IsZero() {
		return fmt.Errorf("%w: empty transaction signature", ErrInvalidState)
	}

	if err := writeReport(h.out, sig); err != nil {
		return h.fail("report", err)
	}
	h.state = StateReported
	h.log().Info("transaction signature", "program", h.handle.Name(), "method", h.pending.method, "signature", sig.String())
	return nil
}

// Run executes the whole sequence for one method call.
func (h *Harness) Run(ctx context.Context, name, method string, args program.Args) (chain.Signature, error) {
	if err := h.Setup(ctx); err != nil {
		return "", err
	}
	handle, err := h.ResolveProgram(name)
	if err != nil {
		return "", err
	}
	sig, err := h.Invoke(ctx, handle, method, args).Await(ctx)
	if err != nil {
		return "", err
	}
	if err := h.Report(sig); err != nil {
		return "", err
	}
	return sig, nil
}
