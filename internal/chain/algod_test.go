// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package chain

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/tokenvest/vestctl/internal/program"
	"github.com/tokenvest/vestctl/internal/provider"
	"github.com/tokenvest/vestctl/internal/testutil"
	"github.com/tokenvest/vestctl/internal/util"
)

// testProvider returns a provider pointed at endpoint with a fresh account.
func testProvider(t *testing.T, endpoint string, simulate bool) *provider.Provider {
	t.Helper()
	cfg := util.DefaultConfig()
	cfg.ProviderURL = endpoint
	cfg.Wallet = testutil.GenerateTestAccount(t).Mnemonic
	cfg.Simulate = simulate
	cfg.Timeout = 10

	p, err := provider.New(cfg)
	if err != nil {
		t.Fatalf("provider.New() error = %v", err)
	}
	return p
}

func vestingHandle(t *testing.T) *program.Handle {
	t.Helper()
	initialize, err := abi.MethodFromSignature("initialize()void")
	if err != nil {
		t.Fatal(err)
	}
	unlock, err := abi.MethodFromSignature("unlock(byte[31])void")
	if err != nil {
		t.Fatal(err)
	}
	unlock.Args[0].Name = "seeds"
	contract := abi.Contract{Name: "TokenVesting", Methods: []abi.Method{initialize, unlock}}
	return program.NewHandle(contract, "localnet", 1234)
}

func TestAlgodInvoker_Initialize(t *testing.T) {
	algod := testutil.NewMockAlgodServer(t)
	p := testProvider(t, algod.URL(), false)

	sig, err := NewAlgodInvoker(p).Invoke(context.Background(), Call{
		Handle: vestingHandle(t),
		Method: "initialize",
		Args:   program.Args{},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if sig.IsZero() || len(sig.String()) != 52 {
		t.Errorf("signature = %q, want 52-char tx ID", sig)
	}

	submitted := algod.Submitted()
	if len(submitted) != 1 {
		t.Fatalf("submitted %d transactions, want 1", len(submitted))
	}
	txn := submitted[0].Txn
	if txn.Type != types.ApplicationCallTx || txn.ApplicationID != 1234 {
		t.Errorf("txn = %s app %d", txn.Type, txn.ApplicationID)
	}
	if txn.Sender != p.Address() {
		t.Errorf("sender = %s, want %s", txn.Sender, p.Address())
	}
	if len(txn.ApplicationArgs) != 1 {
		t.Fatalf("app args = %d, want selector only", len(txn.ApplicationArgs))
	}
	initialize, _ := abi.MethodFromSignature("initialize()void")
	if !bytes.Equal(txn.ApplicationArgs[0], initialize.GetSelector()) {
		t.Errorf("selector = %x, want %x", txn.ApplicationArgs[0], initialize.GetSelector())
	}
}

func TestAlgodInvoker_Simulate(t *testing.T) {
	algod := testutil.NewMockAlgodServer(t)
	p := testProvider(t, algod.URL(), true)
	var out bytes.Buffer

	sig, err := NewAlgodInvoker(p, WithSimulationOutput(&out)).Invoke(context.Background(), Call{Handle: vestingHandle(t), Method: "initialize"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if sig.IsZero() {
		t.Error("empty signature")
	}
	for _, want := range []string{"Simulation successful (round 100)", "1. " + sig.String(), `[0] "simulated"`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("report missing %q:\n%s", want, out.String())
		}
	}
	if n := algod.Requests(testutil.RouteSubmit); n != 0 {
		t.Errorf("simulate submitted %d transactions", n)
	}
	if n := algod.Requests(testutil.RouteSimulate); n != 1 {
		t.Errorf("simulate calls = %d, want 1", n)
	}
}

func TestAlgodInvoker_SimulateRejected(t *testing.T) {
	algod := testutil.NewMockAlgodServer(t)
	algod.SimulateFailure = "logic eval error: assert failed"
	p := testProvider(t, algod.URL(), true)
	var out bytes.Buffer

	_, err := NewAlgodInvoker(p, WithSimulationOutput(&out)).Invoke(context.Background(), Call{Handle: vestingHandle(t), Method: "initialize"})
	if !strings.Contains(out.String(), "Simulation FAILED (round 100)") || !strings.Contains(out.String(), "assert failed") {
		t.Errorf("report = %q", out.String())
	}
	if !errors.Is(err, ErrRemote) || !errors.Is(err, ErrSimulationFailed) {
		t.Fatalf("Invoke() error = %v, want ErrRemote wrapping ErrSimulationFailed", err)
	}
	if !strings.Contains(err.Error(), "assert failed") || !strings.Contains(err.Error(), "transaction 1") {
		t.Errorf("error = %q", err)
	}
}

func TestAlgodInvoker_Rejected(t *testing.T) {
	algod := testutil.NewMockAlgodServer(t)
	algod.RejectSubmit = "transaction rejected: overspend"
	p := testProvider(t, algod.URL(), false)

	_, err := NewAlgodInvoker(p).Invoke(context.Background(), Call{Handle: vestingHandle(t), Method: "initialize"})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Invoke() error = %v, want *RemoteError", err)
	}
	if remote.Method != "initialize" || len(remote.TxID) != 52 {
		t.Errorf("RemoteError = %+v", remote)
	}
	if n := algod.Requests(testutil.RouteSubmit); n != 1 {
		t.Errorf("submissions = %d, want exactly 1", n)
	}
}

func TestAlgodInvoker_TransportFailureNotRetried(t *testing.T) {
	algod := testutil.NewMockAlgodServer(t)
	p := testProvider(t, algod.URL(), false)
	algod.Close()

	_, err := NewAlgodInvoker(p).Invoke(context.Background(), Call{Handle: vestingHandle(t), Method: "initialize"})
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("Invoke() error = %v, want ErrRemote", err)
	}
	if n := algod.TotalRequests(); n != 0 {
		t.Errorf("closed server saw %d requests", n)
	}
}

func TestAlgodInvoker_ServerErrorNotRetried(t *testing.T) {
	algod := testutil.NewMockAlgodServer(t)
	p := testProvider(t, algod.URL(), false)
	// no route matches under this prefix, so every request fails once
	p.Client = testProvider(t, algod.URL()+"/broken", false).Client

	_, err := NewAlgodInvoker(p).Invoke(context.Background(), Call{Handle: vestingHandle(t), Method: "initialize"})
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("Invoke() error = %v, want ErrRemote", err)
	}
	if n := algod.TotalRequests(); n != 1 {
		t.Errorf("requests = %d, want exactly 1", n)
	}
}

func TestAlgodInvoker_BadCall(t *testing.T) {
	algod := testutil.NewMockAlgodServer(t)
	p := testProvider(t, algod.URL(), false)
	inv := NewAlgodInvoker(p)

	tests := []struct {
		name    string
		call    Call
		wantErr error
	}{
		{"no handle", Call{Method: "initialize"}, nil},
		{"unknown method", Call{Handle: vestingHandle(t), Method: "withdraw"}, program.ErrUnknownMethod},
		{"missing argument", Call{Handle: vestingHandle(t), Method: "unlock"}, program.ErrInvalidArgument},
		{"unexpected argument", Call{Handle: vestingHandle(t), Method: "initialize", Args: program.Args{"x": 1}}, program.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.Invoke(context.Background(), tt.call)
			if !errors.Is(err, ErrRemote) {
				t.Fatalf("Invoke() error = %v, want ErrRemote", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Invoke() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if n := algod.TotalRequests(); n != 0 {
		t.Errorf("bad calls reached algod %d times", n)
	}
}

func TestSimulationReport_WriteTo(t *testing.T) {
	report := SimulationReport{
		Round:          7,
		TxIDs:          []string{"TXID"},
		FailureMessage: "logic eval error",
		FailedAt:       []uint64{0, 1},
		Logs:           [][]byte{[]byte("hi"), {0x00, 0x01}},
	}
	var buf bytes.Buffer
	if _, err := report.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"FAILED (round 7)", "transaction 1 → inner 2", "1. TXID", `[0] "hi"`, "(2 bytes) 0x0001"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
