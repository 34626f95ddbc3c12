// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"

	"github.com/tokenvest/vestctl/internal/util"
)

// KeyFileExt is the extension of named key files under <data_dir>/keys.
const KeyFileExt = ".key"

// mnemonicWords is the length of an Algorand mnemonic.
const mnemonicWords = 25

// KeysDir returns the directory holding named key files.
func KeysDir(dataDir string) string {
	return filepath.Join(dataDir, "keys")
}

// LoadWallet resolves the signer from wallet, which is one of:
//   - a 25-word mnemonic
//   - a path (absolute or relative to dataDir) to a file containing one
//   - a key name, read from <dataDir>/keys/<name>.key
func LoadWallet(wallet, dataDir string) (crypto.Account, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return crypto.Account{}, &util.ConfigurationError{Field: "wallet", Reason: "not set"}
	}

	if len(strings.Fields(wallet)) == mnemonicWords {
		return accountFromMnemonic(wallet)
	}

	path := util.ResolvePath(wallet, dataDir)
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(KeysDir(dataDir), wallet+KeyFileExt)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return crypto.Account{}, &util.ConfigurationError{
			Field:  "wallet",
			Reason: fmt.Sprintf("no mnemonic, file, or key named %q", wallet),
			Err:    err,
		}
	}
	return accountFromMnemonic(strings.TrimSpace(string(data)))
}

func accountFromMnemonic(words string) (crypto.Account, error) {
	privateKey, err := mnemonic.ToPrivateKey(strings.Join(strings.Fields(words), " "))
	if err != nil {
		return crypto.Account{}, &util.ConfigurationError{Field: "wallet", Reason: "invalid mnemonic", Err: err}
	}
	account, err := crypto.AccountFromPrivateKey(privateKey)
	if err != nil {
		return crypto.Account{}, &util.ConfigurationError{Field: "wallet", Reason: "invalid private key", Err: err}
	}
	return account, nil
}

// WriteKeyFile stores account's mnemonic as <dataDir>/keys/<name>.key
// and returns the file path. Existing files are never overwritten.
func WriteKeyFile(dataDir, name string, account crypto.Account) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid key name %q", name)
	}

	words, err := mnemonic.FromPrivateKey(account.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to encode mnemonic: %w", err)
	}

	dir := KeysDir(dataDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create keys directory: %w", err)
	}

	path := filepath.Join(dir, name+KeyFileExt)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.WriteString(words + "\n"); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write key file: %w", err)
	}
	return path, nil
}
