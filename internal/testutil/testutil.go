// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package testutil provides reusable test infrastructure and utilities.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/tokenvest/vestctl/internal/provider"
)

// TestAccount is a generated signing account and its mnemonic.
type TestAccount struct {
	crypto.Account
	Mnemonic string
}

// GenerateTestAccount creates a fresh random account.
func GenerateTestAccount(t *testing.T) TestAccount {
	t.Helper()

	account := crypto.GenerateAccount()
	words, err := mnemonic.FromPrivateKey(account.PrivateKey)
	if err != nil {
		t.Fatalf("Failed to build mnemonic: %v", err)
	}
	return TestAccount{Account: account, Mnemonic: words}
}

// WriteTestKey generates an account and stores it as <dataDir>/keys/<name>.key.
func WriteTestKey(t *testing.T, dataDir, name string) TestAccount {
	t.Helper()

	account := GenerateTestAccount(t)
	if _, err := provider.WriteKeyFile(dataDir, name, account.Account); err != nil {
		t.Fatalf("Failed to write test key %s: %v", name, err)
	}
	return account
}

// ValidTestAddress returns a deterministic address distinct per index,
// for arguments that only need a well-formed account.
func ValidTestAddress(index int) types.Address {
	var addr types.Address
	addr[0] = byte(index)
	addr[1] = byte(index >> 8)
	addr[31] = 0xa5
	return addr
}

// WriteMnemonicFile stores account's mnemonic in a file named name under a
// fresh temporary directory and returns its absolute path.
func WriteMnemonicFile(t *testing.T, name string, account TestAccount) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(account.Mnemonic+"\n"), 0600); err != nil {
		t.Fatalf("Failed to write mnemonic file: %v", err)
	}
	return path
}
