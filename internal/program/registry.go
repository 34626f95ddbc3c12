// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package program

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/algorand/go-algorand-sdk/v2/abi"

	"github.com/tokenvest/vestctl/internal/util"
)

// Deployment selects which application ID a program name resolves to.
type Deployment struct {
	Network     string
	GenesisHash string
	AppIDs      map[string]uint64 // explicit overrides by program name
}

// Registry maps program names to interface definitions.
// Safe for concurrent use; LoadDir swaps file-backed definitions atomically.
type Registry struct {
	defs *util.StringRegistry[Definition]

	// builtins is never touched by LoadDir, so a removed override file
	// brings the compiled-in definition back.
	builtins *util.StringRegistry[Definition]

	// mu serializes Register and LoadDir
	mu sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:     util.NewStringRegistry[Definition](),
		builtins: util.NewStringRegistry[Definition](),
	}
}

// Register adds a definition. A name can only be registered once.
func (r *Registry) Register(def Definition) error {
	if err := validateContract(def.Contract); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.defs.Has(def.Name()) || r.builtins.Has(def.Name()) {
		return fmt.Errorf("program %s already registered", def.Name())
	}
	if def.Source == SourceBuiltin {
		r.builtins.Set(def.Name(), def)
	}
	r.defs.Set(def.Name(), def)
	return nil
}

// RegisterContract registers a compiled-in contract.
func (r *Registry) RegisterContract(contract abi.Contract) error {
	return r.Register(Definition{Contract: contract, Source: SourceBuiltin})
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	return r.defs.Get(name)
}

// Names returns the registered program names, sorted.
func (r *Registry) Names() []string {
	return r.defs.Keys()
}

// Resolve returns a handle for name deployed on d.
// Unknown names and programs without an application ID yield *NotFoundError.
func (r *Registry) Resolve(name string, d Deployment) (*Handle, error) {
	def, ok := r.defs.Get(name)
	if !ok {
		return nil, &NotFoundError{Name: name, Network: d.Network, Reason: "no interface definition registered"}
	}

	appID := d.AppIDs[name]
	if appID == 0 {
		if info, ok := def.Contract.Networks[d.Network]; ok {
			appID = info.AppID
		}
	}
	if appID == 0 && d.GenesisHash != "" {
		if info, ok := def.Contract.Networks[d.GenesisHash]; ok {
			appID = info.AppID
		}
	}
	if appID == 0 {
		return nil, &NotFoundError{Name: name, Network: d.Network, Reason: "no application ID for network " + d.Network}
	}

	return NewHandle(def.Contract, d.Network, appID), nil
}

// LoadDir registers every *.json contract in dir, replacing earlier
// file-backed definitions. A file declaring a builtin's name shadows the
// builtin until a later load no longer finds it. Reloads run one at a time
// and each reads the directory under the lock, so the last reload wins.
// Returns the names loaded from dir.
func (r *Registry) LoadDir(dir string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loaded, err := readDir(dir)
	if err != nil {
		return nil, err
	}

	next := make(map[string]Definition)
	for _, def := range r.builtins.Values() {
		next[def.Name()] = def
	}
	names := make([]string, 0, len(loaded))
	for _, def := range loaded {
		next[def.Name()] = def
		names = append(names, def.Name())
	}
	r.defs.Replace(next)

	sort.Strings(names)
	return names, nil
}

func readDir(dir string) ([]Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read interface directory: %w", err)
	}

	var defs []Definition
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !isContractFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		contract, err := ParseContract(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[contract.Name]; dup {
			return nil, fmt.Errorf("%w: %s defined in both %s and %s", ErrInvalidContract, contract.Name, prev, path)
		}
		seen[contract.Name] = path
		defs = append(defs, Definition{Contract: contract, Source: path})
	}
	return defs, nil
}

func isContractFile(name string) bool {
	return strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".")
}
