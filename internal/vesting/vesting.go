// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package vesting is the callable interface of the TokenVesting program.
// It carries no release logic; it only shapes calls for the harness.
package vesting

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/algorand/go-algorand-sdk/v2/abi"

	"github.com/tokenvest/vestctl/internal/program"
)

// Name is the program name TokenVesting is registered under.
const Name = "TokenVesting"

// Method names.
const (
	MethodInitialize        = "initialize"
	MethodInit              = "init"
	MethodCreate            = "create"
	MethodUnlock            = "unlock"
	MethodChangeDestination = "change_destination"
)

//go:embed token_vesting.arc4.json
var contractJSON []byte

var (
	contractOnce sync.Once
	contract     abi.Contract
	contractErr  error
)

// Contract returns the embedded TokenVesting interface definition.
func Contract() (abi.Contract, error) {
	contractOnce.Do(func() {
		contract, contractErr = program.ParseContract(contractJSON)
	})
	return contract, contractErr
}

// ContractJSON returns a copy of the embedded ARC-4 description.
func ContractJSON() []byte {
	out := make([]byte, len(contractJSON))
	copy(out, contractJSON)
	return out
}

// Register adds the built-in TokenVesting definition to reg.
func Register(reg *program.Registry) error {
	c, err := Contract()
	if err != nil {
		return fmt.Errorf("embedded %s interface: %w", Name, err)
	}
	return reg.RegisterContract(c)
}
