// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package harness connects integration tests to a live algod node.
package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"

	"github.com/tokenvest/vestctl/internal/util"
)

// ErrNotConfigured means the environment does not name a node and signer.
var ErrNotConfigured = errors.New("integration environment not configured")

// NodeConfig is a live node the tests run against.
type NodeConfig struct {
	Config util.Config
	Client *algod.Client
}

// NewNodeConfig reads the node settings from the data directory's config.yaml
// and env, then checks the node answers.
// Returns ErrNotConfigured when VESTING_PROVIDER_URL or VESTING_WALLET is unset.
func NewNodeConfig(env util.Env) (*NodeConfig, error) {
	base, err := util.LoadConfig(util.ResolveDataDir("", env))
	if err != nil {
		return nil, err
	}
	cfg, err := util.ConfigFromEnv(base, env)
	if err != nil {
		return nil, err
	}
	if cfg.ProviderURL == "" || cfg.Wallet == "" {
		return nil, ErrNotConfigured
	}

	client, err := algod.MakeClient(cfg.ProviderURL, cfg.ProviderToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create algod client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.Status().Do(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to algod: %w", err)
	}

	return &NodeConfig{Config: cfg, Client: client}, nil
}

// ProgramID returns the application ID configured for name, if any.
func (n *NodeConfig) ProgramID(name string) (uint64, bool) {
	return n.Config.ProgramID(name)
}

// ConfirmedTransaction fetches a confirmed transaction by ID, waiting up to
// maxRounds for it to leave the pool.
func (n *NodeConfig) ConfirmedTransaction(txID string, maxRounds uint64) (models.PendingTransactionInfoResponse, error) {
	ctx := context.Background()

	status, err := n.Client.Status().Do(ctx)
	if err != nil {
		return models.PendingTransactionInfoResponse{}, fmt.Errorf("failed to get status: %w", err)
	}

	startRound := status.LastRound
	currentRound := startRound
	for currentRound < startRound+maxRounds {
		info, _, err := n.Client.PendingTransactionInformation(txID).Do(ctx)
		if err != nil {
			return models.PendingTransactionInfoResponse{}, fmt.Errorf("failed to get transaction info: %w", err)
		}
		if info.PoolError != "" {
			return info, fmt.Errorf("transaction rejected: %s", info.PoolError)
		}
		if info.ConfirmedRound > 0 {
			return info, nil
		}

		status, err = n.Client.StatusAfterBlock(currentRound).Do(ctx)
		if err != nil {
			return models.PendingTransactionInfoResponse{}, fmt.Errorf("failed to wait for round: %w", err)
		}
		currentRound = status.LastRound
	}
	return models.PendingTransactionInfoResponse{}, fmt.Errorf("transaction not confirmed after %d rounds", maxRounds)
}
