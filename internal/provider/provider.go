// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package provider builds the connection context used for every remote call:
// an algod client for the configured endpoint and the signing account.
package provider

import (
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/tokenvest/vestctl/internal/util"
)

// Provider bundles the network endpoint and signing identity.
// It is created once per harness and never mutated afterwards.
type Provider struct {
	Network     string
	Endpoint    string
	GenesisHash string
	Client      *algod.Client
	Simulate    bool
	WaitRounds  int
	Timeout     time.Duration

	account crypto.Account
}

// New validates cfg and builds a Provider from it.
// All failures are *util.ConfigurationError.
func New(cfg util.Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	account, err := LoadWallet(cfg.Wallet, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	client, err := algod.MakeClient(cfg.ProviderURL, cfg.ProviderToken)
	if err != nil {
		return nil, &util.ConfigurationError{Field: "provider_url", Reason: "cannot create algod client", Err: err}
	}

	util.Debug("provider configured", "network", cfg.Network, "endpoint", cfg.ProviderURL, "signer", account.Address.String())

	return &Provider{
		Network:     cfg.Network,
		Endpoint:    cfg.ProviderURL,
		GenesisHash: cfg.GenesisHash,
		Client:      client,
		Simulate:    cfg.Simulate,
		WaitRounds:  cfg.WaitRounds,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		account:     account,
	}, nil
}

// Address returns the signer's address.
func (p *Provider) Address() types.Address {
	return p.account.Address
}

// Signer returns a transaction signer backed by the provider's account.
func (p *Provider) Signer() transaction.TransactionSigner {
	return transaction.BasicAccountTransactionSigner{Account: p.account}
}
