// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/tokenvest/vestctl/internal/program"
	"github.com/tokenvest/vestctl/internal/vesting"
)

const vestingUsage = "vesting requires an instruction: initialize, init, create, unlock, change-destination"

// scheduleList collects repeated -schedule release_time:amount flags.
type scheduleList []vesting.Schedule

func (s *scheduleList) String() string {
	parts := make([]string, len(*s))
	for i, sc := range *s {
		parts[i] = fmt.Sprintf("%d:%d", sc.ReleaseTime, sc.Amount)
	}
	return strings.Join(parts, ",")
}

func (s *scheduleList) Set(v string) error {
	timeStr, amountStr, ok := strings.Cut(v, ":")
	if !ok {
		return fmt.Errorf("schedule %q must be release_time:amount", v)
	}
	releaseTime, err := strconv.ParseUint(timeStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid release time %q", timeStr)
	}
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", amountStr)
	}
	*s = append(*s, vesting.Schedule{ReleaseTime: releaseTime, Amount: amount})
	return nil
}

// vestingFlags are the typed inputs of every instruction; each uses a subset.
type vestingFlags struct {
	seed        string
	seedHex     string
	count       uint
	mint        string
	destination string
	schedules   scheduleList
}

func (f *vestingFlags) seeds() (vesting.Seeds, error) {
	switch {
	case f.seed != "" && f.seedHex != "":
		return vesting.Seeds{}, usageError{"use -seed or -seed-hex, not both"}
	case f.seedHex != "":
		seeds, err := vesting.SeedsFromHex(f.seedHex)
		if err != nil {
			return seeds, usageError{err.Error()}
		}
		return seeds, nil
	case f.seed != "":
		seeds, err := vesting.SeedsFromString(f.seed)
		if err != nil {
			return seeds, usageError{err.Error()}
		}
		return seeds, nil
	}
	return vesting.Seeds{}, usageError{"-seed or -seed-hex is required"}
}

// vestingCall maps an instruction and its flags to a method call.
func vestingCall(instruction string, f *vestingFlags) (string, program.Args, error) {
	if instruction == "initialize" {
		return vesting.MethodInitialize, vesting.InitializeArgs(), nil
	}

	seeds, err := f.seeds()
	if err != nil {
		return "", nil, err
	}

	switch instruction {
	case "init":
		count := f.count
		if count == 0 {
			count = uint(len(f.schedules))
		}
		if count == 0 || count > math.MaxUint32 {
			return "", nil, usageError{"init requires -count between 1 and 4294967295"}
		}
		return vesting.MethodInit, vesting.InitArgs(seeds, uint32(count)), nil

	case "create":
		mint, err := types.DecodeAddress(f.mint)
		if err != nil {
			return "", nil, usageError{fmt.Sprintf("invalid -mint: %v", err)}
		}
		destination, err := types.DecodeAddress(f.destination)
		if err != nil {
			return "", nil, usageError{fmt.Sprintf("invalid -destination: %v", err)}
		}
		args, err := vesting.CreateArgs(seeds, mint, destination, f.schedules)
		if err != nil {
			return "", nil, usageError{err.Error()}
		}
		return vesting.MethodCreate, args, nil

	case "unlock":
		return vesting.MethodUnlock, vesting.UnlockArgs(seeds), nil

	case "change-destination", "change_destination":
		return vesting.MethodChangeDestination, vesting.ChangeDestinationArgs(seeds), nil
	}
	return "", nil, usageError{fmt.Sprintf("unknown vesting instruction %q; %s", instruction, strings.TrimPrefix(vestingUsage, "vesting requires an instruction: "))}
}

func (a *app) cmdVesting(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError{vestingUsage}
	}
	instruction := args[0]

	var f vestingFlags
	fs := a.flagSet("vesting " + instruction)
	fs.StringVar(&f.seed, "seed", "", "Vesting account seed as text (up to 31 bytes)")
	fs.StringVar(&f.seedHex, "seed-hex", "", "Vesting account seed as 62 hex characters")
	fs.UintVar(&f.count, "count", 0, "init: number of schedules to size the account for (default: number of -schedule flags)")
	fs.StringVar(&f.mint, "mint", "", "create: address of the token being vested")
	fs.StringVar(&f.destination, "destination", "", "create: address receiving released tokens")
	fs.Var(&f.schedules, "schedule", "create: release_time:amount (repeatable)")
	simulate := fs.Bool("simulate", false, "Simulate the call instead of submitting it")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usageError{"vesting " + instruction + " takes no positional arguments"}
	}

	method, callArgs, err := vestingCall(instruction, &f)
	if err != nil {
		return err
	}
	return a.runCall(ctx, vesting.Name, method, callArgs, *simulate)
}
