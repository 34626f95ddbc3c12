// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/crypto"

	"github.com/tokenvest/vestctl/internal/chain"
	"github.com/tokenvest/vestctl/internal/harness"
	"github.com/tokenvest/vestctl/internal/program"
	"github.com/tokenvest/vestctl/internal/provider"
	"github.com/tokenvest/vestctl/internal/util"
	"github.com/tokenvest/vestctl/internal/vesting"
)

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("vestctl "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) cmdInvoke(ctx context.Context, args []string) error {
	fs := a.flagSet("invoke")
	programName := fs.String("program", vesting.Name, "Program name")
	method := fs.String("method", vesting.MethodInitialize, "Method name")
	rawArgs := fs.String("args", "{}", "Method arguments as a JSON object keyed by argument name")
	simulate := fs.Bool("simulate", false, "Simulate the call instead of submitting it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usageError{"invoke takes no positional arguments"}
	}

	callArgs, err := program.ParseArgs(*rawArgs)
	if err != nil {
		return usageError{err.Error()}
	}
	return a.runCall(ctx, *programName, *method, callArgs, *simulate)
}

// runCall runs the harness sequence for one call. Simulation reports go
// to stderr so stdout only carries the signature line.
func (a *app) runCall(ctx context.Context, programName, method string, callArgs program.Args, simulate bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if simulate {
		cfg.Simulate = true
	}
	reg, err := a.loadRegistry(cfg)
	if err != nil {
		return err
	}

	h := harness.New(cfg, reg,
		harness.WithOutput(a.stdout),
		harness.WithLogger(util.Log()),
		harness.WithInvoker(func(p *provider.Provider) chain.Invoker {
			return chain.NewAlgodInvoker(p, chain.WithSimulationOutput(a.stderr))
		}))
	_, err = h.Run(ctx, programName, method, callArgs)
	return err
}

func (a *app) cmdMethods(args []string) error {
	fs := a.flagSet("methods")
	programName := fs.String("program", "", "Only list this program")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	reg, err := a.loadRegistry(cfg)
	if err != nil {
		return err
	}

	names := reg.Names()
	if *programName != "" {
		if _, ok := reg.Lookup(*programName); !ok {
			return &program.NotFoundError{Name: *programName, Network: cfg.Network, Reason: "no interface definition registered"}
		}
		names = []string{*programName}
	}

	deployment := program.Deployment{Network: cfg.Network, GenesisHash: cfg.GenesisHash, AppIDs: cfg.ProgramIDs}
	for i, name := range names {
		def, _ := reg.Lookup(name)
		if i > 0 {
			_, _ = fmt.Fprintln(a.stdout)
		}

		appID := "not deployed on " + cfg.Network
		if h, err := reg.Resolve(name, deployment); err == nil {
			appID = fmt.Sprintf("app %d on %s", h.AppID(), cfg.Network)
		}
		_, _ = fmt.Fprintf(a.stdout, "%s (%s, %s)\n", name, appID, def.Source)

		h := program.NewHandle(def.Contract, cfg.Network, 0)
		for _, m := range h.Methods() {
			line := "  " + m.GetSignature()
			if m.Desc != "" {
				line += "  " + m.Desc
			}
			_, _ = fmt.Fprintln(a.stdout, line)
		}
	}
	return nil
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	fs := a.flagSet("watch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if cfg.InterfaceDir == "" {
		return &util.ConfigurationError{Field: "interface_dir", Reason: "not set (config.yaml or " + util.EnvInterfaceDir + ")"}
	}
	reg, err := a.loadRegistry(cfg)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.stdout, "Watching %s (%s)\n", cfg.InterfaceDir, strings.Join(reg.Names(), ", "))
	err = reg.Watch(ctx, cfg.InterfaceDir, func(names []string, err error) {
		if err != nil {
			_, _ = fmt.Fprintf(a.stdout, "%s %v\n", util.Failure(a.stdout, "Reload failed:"), err)
			return
		}
		_, _ = fmt.Fprintf(a.stdout, "%s %s\n", util.Success(a.stdout, "Reloaded:"), strings.Join(reg.Names(), ", "))
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

func (a *app) cmdKeygen(args []string) error {
	fs := a.flagSet("keygen")
	name := fs.String("name", "", "Key name (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return usageError{"keygen requires -name"}
	}

	account := crypto.GenerateAccount()
	path, err := provider.WriteKeyFile(a.dataDir, *name, account)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "%s %s\n", util.Success(a.stdout, "Created"), path)
	_, _ = fmt.Fprintf(a.stdout, "Address: %s\n", account.Address)
	return nil
}
