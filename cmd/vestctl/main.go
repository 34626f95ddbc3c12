// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// vestctl drives calls against the TokenVesting program and other ARC-4
// applications described in the interface directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tokenvest/vestctl/internal/harness"
	"github.com/tokenvest/vestctl/internal/program"
	"github.com/tokenvest/vestctl/internal/util"
	"github.com/tokenvest/vestctl/internal/version"
	"github.com/tokenvest/vestctl/internal/vesting"
)

// Exit codes by failure class.
const (
	exitOK       = 0
	exitError    = 1
	exitConfig   = 2
	exitNotFound = 3
	exitRemote   = 4
	exitUsage    = 64
)

const usage = `Usage: vestctl [-d dir] [-network name] <command> [flags]

Commands:
  invoke    Call a program method and print the transaction signature
  methods   List program interfaces and their methods
  watch     Reload the interface directory on change until interrupted
  vesting   Run a TokenVesting instruction built from typed flags
  keygen    Create a named signing key under <data dir>/keys

Global flags:
`

// app carries what every command needs.
type app struct {
	dataDir string
	network string
	env     util.Env
	stdout  io.Writer
	stderr  io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, util.OSEnv{})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, env util.Env) int {
	fs := flag.NewFlagSet("vestctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	printVersion := fs.Bool("version", false, "Print version and exit")
	dataDir := fs.String("d", "", "Data directory (default: ~/.vesting or VESTING_DATA)")
	network := fs.String("network", "", "Network name used to pick application IDs (overrides config)")
	fs.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *printVersion {
		_, _ = fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	_, debug := env.LookupEnv(util.EnvDebug)
	util.InitLoggerTo(stderr, debug)

	a := &app{
		dataDir: util.ResolveDataDir(*dataDir, env),
		network: *network,
		env:     env,
		stdout:  stdout,
		stderr:  stderr,
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	var err error
	switch rest[0] {
	case "invoke":
		err = a.cmdInvoke(ctx, rest[1:])
	case "methods":
		err = a.cmdMethods(rest[1:])
	case "watch":
		err = a.cmdWatch(ctx, rest[1:])
	case "vesting":
		err = a.cmdVesting(ctx, rest[1:])
	case "keygen":
		err = a.cmdKeygen(rest[1:])
	case "help":
		fs.Usage()
		return exitOK
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", rest[0])
		fs.Usage()
		return exitUsage
	}

	if err == nil {
		return exitOK
	}
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	var usageErr usageError
	if errors.As(err, &usageErr) {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	_, _ = fmt.Fprintf(stderr, "%s %v\n", util.Failure(stderr, "Error:"), err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, harness.ErrConfiguration):
		return exitConfig
	case errors.Is(err, harness.ErrNotFound):
		return exitNotFound
	case errors.Is(err, harness.ErrRemote):
		return exitRemote
	}
	return exitError
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// loadConfig reads config.yaml, overlays the environment and the -network flag.
func (a *app) loadConfig() (util.Config, error) {
	cfg, err := util.LoadConfig(a.dataDir)
	if err != nil {
		return cfg, err
	}
	cfg, err = util.ConfigFromEnv(cfg, a.env)
	if err != nil {
		return cfg, err
	}
	if a.network != "" {
		cfg.Network = a.network
	}
	return cfg, nil
}

// loadRegistry registers TokenVesting and every contract in the interface directory.
func (a *app) loadRegistry(cfg util.Config) (*program.Registry, error) {
	reg := program.NewRegistry()
	if err := vesting.Register(reg); err != nil {
		return nil, err
	}
	if cfg.InterfaceDir == "" {
		return reg, nil
	}
	names, err := reg.LoadDir(cfg.InterfaceDir)
	if err != nil {
		return nil, &util.ConfigurationError{Field: "interface_dir", Reason: "cannot load interfaces", Err: err}
	}
	util.Debug("interfaces loaded", "dir", cfg.InterfaceDir, "programs", names)
	return reg, nil
}
