// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package program holds the callable interfaces of deployed programs.
// Interfaces are ARC-4 contract descriptions; a resolved Handle pairs one
// with the application ID it is deployed under on the selected network.
package program

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/algorand/go-algorand-sdk/v2/abi"
)

// Definition is a registered program interface and where it came from.
type Definition struct {
	Contract abi.Contract
	Source   string // file path, or "builtin"
}

// SourceBuiltin marks definitions compiled into the binary.
const SourceBuiltin = "builtin"

// Name returns the program name the definition is registered under.
func (d Definition) Name() string {
	return d.Contract.Name
}

// ParseContract decodes and validates an ARC-4 contract description.
func ParseContract(data []byte) (abi.Contract, error) {
	var contract abi.Contract
	if err := json.Unmarshal(data, &contract); err != nil {
		return abi.Contract{}, fmt.Errorf("%w: %v", ErrInvalidContract, err)
	}
	if err := validateContract(contract); err != nil {
		return abi.Contract{}, err
	}
	return contract, nil
}

func validateContract(contract abi.Contract) error {
	if contract.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidContract)
	}
	if len(contract.Methods) == 0 {
		return fmt.Errorf("%w: %s has no methods", ErrInvalidContract, contract.Name)
	}

	seen := make(map[string]bool, len(contract.Methods))
	for _, method := range contract.Methods {
		if method.Name == "" {
			return fmt.Errorf("%w: %s has a method without a name", ErrInvalidContract, contract.Name)
		}
		if seen[method.Name] {
			return fmt.Errorf("%w: %s declares method %s more than once", ErrInvalidContract, contract.Name, method.Name)
		}
		seen[method.Name] = true

		for i, arg := range method.Args {
			if err := validateArgType(arg.Type); err != nil {
				return fmt.Errorf("%w: %s.%s arg %d: %v", ErrInvalidContract, contract.Name, method.Name, i, err)
			}
		}
		if method.Returns.Type != voidReturn {
			if _, err := abi.TypeOf(method.Returns.Type); err != nil {
				return fmt.Errorf("%w: %s.%s returns: %v", ErrInvalidContract, contract.Name, method.Name, err)
			}
		}
	}
	return nil
}

func validateArgType(typ string) error {
	if isReferenceType(typ) || isTransactionType(typ) {
		return nil
	}
	_, err := abi.TypeOf(typ)
	return err
}

// Handle is a resolved, immutable reference to a deployed program's interface.
type Handle struct {
	name     string
	network  string
	appID    uint64
	contract abi.Contract
}

// NewHandle builds a handle directly, bypassing a registry.
func NewHandle(contract abi.Contract, network string, appID uint64) *Handle {
	return &Handle{name: contract.Name, network: network, appID: appID, contract: contract}
}

// Name returns the program name.
func (h *Handle) Name() string { return h.name }

// Network returns the network the handle was resolved for.
func (h *Handle) Network() string { return h.network }

// AppID returns the application ID of the deployed program.
func (h *Handle) AppID() uint64 { return h.appID }

// Method looks up a method by name.
func (h *Handle) Method(name string) (abi.Method, error) {
	for _, m := range h.contract.Methods {
		if m.Name == name {
			return m, nil
		}
	}
	return abi.Method{}, fmt.Errorf("%w: %s has no method %q", ErrUnknownMethod, h.name, name)
}

// Methods returns the program's methods sorted by name.
func (h *Handle) Methods() []abi.Method {
	methods := make([]abi.Method, len(h.contract.Methods))
	copy(methods, h.contract.Methods)
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })
	return methods
}
