// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package program

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	contract, err := ParseContract([]byte(counterJSON))
	if err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry()
	if err := reg.RegisterContract(contract); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := mustRegistry(t)
	def, _ := reg.Lookup("Counter")
	if err := reg.Register(def); err == nil {
		t.Error("expected error registering Counter twice")
	}
	if got := reg.Names(); len(got) != 1 || got[0] != "Counter" {
		t.Errorf("Names() = %v", got)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	reg := mustRegistry(t)

	tests := []struct {
		name      string
		program   string
		d         Deployment
		wantAppID uint64
		wantErr   bool
	}{
		{"network entry", "Counter", Deployment{Network: "localnet"}, 1001, false},
		{"override wins", "Counter", Deployment{Network: "localnet", AppIDs: map[string]uint64{"Counter": 7}}, 7, false},
		{"zero override ignored", "Counter", Deployment{Network: "localnet", AppIDs: map[string]uint64{"Counter": 0}}, 1001, false},
		{"genesis hash fallback", "Counter", Deployment{Network: "testnet", GenesisHash: "SGO1GKSzyE7IEPItTxCByw9x8FmnrCDexi9/cOUJOiI="}, 2002, false},
		{"no deployment", "Counter", Deployment{Network: "mainnet"}, 0, true},
		{"unknown program", "Escrow", Deployment{Network: "localnet"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := reg.Resolve(tt.program, tt.d)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
				}
				var nf *NotFoundError
				if !errors.As(err, &nf) || nf.Name != tt.program {
					t.Errorf("error = %#v, want *NotFoundError for %s", err, tt.program)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if h.AppID() != tt.wantAppID {
				t.Errorf("AppID = %d, want %d", h.AppID(), tt.wantAppID)
			}
			if h.Network() != tt.d.Network {
				t.Errorf("Network = %q, want %q", h.Network(), tt.d.Network)
			}
		})
	}
}

func writeContract(t *testing.T, dir, file, name string) {
	t.Helper()
	data := strings.Replace(counterJSON, `"Counter"`, `"`+name+`"`, 1)
	if err := os.WriteFile(filepath.Join(dir, file), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "escrow.json", "Escrow")
	writeContract(t, dir, "auction.json", "Auction")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0600); err != nil {
		t.Fatal(err)
	}

	reg := mustRegistry(t)
	names, err := reg.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if strings.Join(names, ",") != "Auction,Escrow" {
		t.Errorf("LoadDir() = %v", names)
	}
	if got := strings.Join(reg.Names(), ","); got != "Auction,Counter,Escrow" {
		t.Errorf("Names() = %s", got)
	}

	// a reload drops definitions whose files are gone, builtins stay
	if err := os.Remove(filepath.Join(dir, "auction.json")); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir() reload error = %v", err)
	}
	if got := strings.Join(reg.Names(), ","); got != "Counter,Escrow" {
		t.Errorf("Names() after reload = %s", got)
	}
	def, _ := reg.Lookup("Escrow")
	if def.Source != filepath.Join(dir, "escrow.json") {
		t.Errorf("Source = %q", def.Source)
	}
}

func TestRegistry_LoadDirErrorsKeepRegistry(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "a.json", "Escrow")
	writeContract(t, dir, "b.json", "Escrow")

	reg := mustRegistry(t)
	if _, err := reg.LoadDir(dir); !errors.Is(err, ErrInvalidContract) {
		t.Errorf("LoadDir() error = %v, want ErrInvalidContract", err)
	}
	if _, err := reg.LoadDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("LoadDir() on missing dir should fail")
	}
	if got := reg.Names(); len(got) != 1 {
		t.Errorf("registry changed after failed load: %v", got)
	}
}

func TestRegistry_LoadDirRestoresBuiltin(t *testing.T) {
	dir := t.TempDir()
	reg := mustRegistry(t)

	writeContract(t, dir, "counter.json", "Counter")
	if _, err := reg.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	def, ok := reg.Lookup("Counter")
	if !ok || def.Source != filepath.Join(dir, "counter.json") {
		t.Fatalf("Lookup(Counter) = %q, %v; want the file override", def.Source, ok)
	}

	// a second reload while the override is present keeps it
	if _, err := reg.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if def, _ := reg.Lookup("Counter"); def.Source == SourceBuiltin {
		t.Fatal("override lost on reload")
	}

	if err := os.Remove(filepath.Join(dir, "counter.json")); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	def, ok = reg.Lookup("Counter")
	if !ok || def.Source != SourceBuiltin {
		t.Errorf("Lookup(Counter) = %q, %v; want builtin restored", def.Source, ok)
	}
	if _, err := reg.Resolve("Counter", Deployment{Network: "localnet"}); err != nil {
		t.Errorf("Resolve() after restore error = %v", err)
	}
}

func TestRegistry_RegisterBuiltinAfterOverride(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "escrow.json", "Escrow")
	reg := NewRegistry()
	if _, err := reg.LoadDir(dir); err != nil {
		t.Fatal(err)
	}

	def, _ := reg.Lookup("Escrow")
	def.Source = SourceBuiltin
	if err := reg.Register(def); err == nil {
		t.Error("Register() of a name already loaded from a file should fail")
	}
}

func TestRegistry_LoadDirConcurrent(t *testing.T) {
	dir := t.TempDir()
	writeContract(t, dir, "escrow.json", "Escrow")
	reg := mustRegistry(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reg.LoadDir(dir); err != nil {
				errs <- err
			}
			reg.Names()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("LoadDir() error = %v", err)
	}

	if got := strings.Join(reg.Names(), ","); got != "Counter,Escrow" {
		t.Errorf("Names() = %s", got)
	}
}
