// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package vesting

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/tokenvest/vestctl/internal/program"
)

// SeedsLen is the size of the seed that derives a vesting account.
const SeedsLen = 31

// Seeds derives a vesting account.
type Seeds [SeedsLen]byte

// SeedsFromString left-aligns s in a zero-padded seed.
func SeedsFromString(s string) (Seeds, error) {
	var seeds Seeds
	if len(s) > SeedsLen {
		return seeds, fmt.Errorf("seed %q longer than %d bytes", s, SeedsLen)
	}
	copy(seeds[:], s)
	return seeds, nil
}

// SeedsFromHex decodes a hex seed of exactly SeedsLen bytes.
func SeedsFromHex(s string) (Seeds, error) {
	var seeds Seeds
	b, err := hex.DecodeString(s)
	if err != nil {
		return seeds, fmt.Errorf("invalid seed hex: %w", err)
	}
	if len(b) != SeedsLen {
		return seeds, fmt.Errorf("seed must be %d bytes, got %d", SeedsLen, len(b))
	}
	copy(seeds[:], b)
	return seeds, nil
}

func (s Seeds) String() string {
	return hex.EncodeToString(s[:])
}

// Schedule releases Amount once ReleaseTime (unix seconds) has passed.
type Schedule struct {
	ReleaseTime uint64
	Amount      uint64
}

// ErrTotalAmountOverflow is returned when the schedules' amounts do not fit in a uint64.
var ErrTotalAmountOverflow = errors.New("total amount overflows uint64")

// TotalAmount sums the amounts the program will pull from the source on create.
func TotalAmount(schedules []Schedule) (uint64, error) {
	var total uint64
	for _, s := range schedules {
		if s.Amount > math.MaxUint64-total {
			return 0, ErrTotalAmountOverflow
		}
		total += s.Amount
	}
	return total, nil
}

// InitializeArgs returns the (empty) arguments of initialize.
func InitializeArgs() program.Args {
	return program.Args{}
}

// InitArgs returns the arguments of init.
func InitArgs(seeds Seeds, numberOfSchedules uint32) program.Args {
	return program.Args{
		"seeds":               seeds[:],
		"number_of_schedules": uint64(numberOfSchedules),
	}
}

// CreateArgs returns the arguments of create. The schedule total must fit a uint64.
func CreateArgs(seeds Seeds, mint, destination types.Address, schedules []Schedule) (program.Args, error) {
	if len(schedules) == 0 {
		return nil, fmt.Errorf("create needs at least one schedule")
	}
	if _, err := TotalAmount(schedules); err != nil {
		return nil, err
	}

	tuples := make([]any, len(schedules))
	for i, s := range schedules {
		tuples[i] = []any{s.ReleaseTime, s.Amount}
	}
	return program.Args{
		"seeds":                     seeds[:],
		"mint_address":              mint,
		"destination_token_address": destination,
		"schedules":                 tuples,
	}, nil
}

// UnlockArgs returns the arguments of unlock.
func UnlockArgs(seeds Seeds) program.Args {
	return program.Args{"seeds": seeds[:]}
}

// ChangeDestinationArgs returns the arguments of change_destination.
func ChangeDestinationArgs(seeds Seeds) program.Args {
	return program.Args{"seeds": seeds[:]}
}
