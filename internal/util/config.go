// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults for values not present in config.yaml or the environment.
const (
	DefaultNetwork    = "localnet"
	DefaultWaitRounds = 4
	DefaultTimeout    = 90 // seconds
	DefaultDataDir    = "~/.vesting"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvDataDir       = "VESTING_DATA"
	EnvNetwork       = "VESTING_NETWORK"
	EnvProviderURL   = "VESTING_PROVIDER_URL"
	EnvProviderToken = "VESTING_PROVIDER_TOKEN"
	EnvWallet        = "VESTING_WALLET"
	EnvInterfaceDir  = "VESTING_INTERFACE_DIR"
	EnvDebug         = "VESTING_DEBUG"
)

// ErrConfiguration is the sentinel for every invalid or missing setting.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError names the setting that made the configuration unusable.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error: " + e.Field + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Config holds the provider and registry settings for a harness run.
// It is a plain value; nothing in it is read lazily from the environment.
type Config struct {
	Network       string            `yaml:"network" description:"Network name used to pick program application IDs" default:"localnet"`
	ProviderURL   string            `yaml:"provider_url" description:"algod endpoint URL (required)"`
	ProviderToken string            `yaml:"provider_token" description:"algod API token"`
	Wallet        string            `yaml:"wallet" description:"Signer: 25-word mnemonic, mnemonic file path, or key name under <data_dir>/keys (required)"`
	GenesisHash   string            `yaml:"genesis_hash" description:"Genesis hash used as a fallback key into contract networks"`
	InterfaceDir  string            `yaml:"interface_dir" description:"Directory of ARC-4 contract JSON files"`
	ProgramIDs    map[string]uint64 `yaml:"program_ids" description:"Application ID overrides keyed by program name"`
	WaitRounds    int               `yaml:"wait_rounds" description:"Rounds to wait for confirmation" default:"4"`
	Timeout       int               `yaml:"timeout" description:"Seconds before a remote call is abandoned" default:"90"`
	Simulate      bool              `yaml:"simulate" description:"Simulate calls instead of submitting them" default:"false"`

	// DataDir is where config.yaml and keys/ live. Not read from YAML.
	DataDir string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file or environment is present.
// ProviderURL and Wallet are intentionally empty; they must be supplied.
func DefaultConfig() Config {
	return Config{
		Network:    DefaultNetwork,
		WaitRounds: DefaultWaitRounds,
		Timeout:    DefaultTimeout,
		ProgramIDs: map[string]uint64{},
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// Env is the environment access used to resolve configuration.
type Env interface {
	LookupEnv(key string) (string, bool)
	Environ() []string
}

// OSEnv reads the process environment.
type OSEnv struct{}

func (OSEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (OSEnv) Environ() []string                   { return os.Environ() }

// MapEnv is an Env backed by a map.
type MapEnv map[string]string

func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapEnv) Environ() []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// ResolveDataDir returns the data directory from: flag > VESTING_DATA > default.
func ResolveDataDir(flagValue string, env Env) string {
	if flagValue != "" {
		return ExpandPath(flagValue)
	}
	if env != nil {
		if dir, ok := env.LookupEnv(EnvDataDir); ok && dir != "" {
			return ExpandPath(dir)
		}
	}
	return ExpandPath(DefaultDataDir)
}

// GetConfigPath returns the path to config.yaml in the data directory.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// LoadConfig loads config.yaml from the data directory.
// A missing file yields the defaults; a malformed one is an error.
func LoadConfig(dataDir string) (Config, error) {
	config, err := LoadConfigFromPath(GetConfigPath(dataDir))
	if err != nil {
		return config, err
	}
	config.DataDir = dataDir
	if config.InterfaceDir != "" {
		config.InterfaceDir = ResolvePath(config.InterfaceDir, dataDir)
	}
	return config, nil
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns the defaults.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, &ConfigurationError{Field: "config", Reason: "cannot read " + path, Err: err}
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, &ConfigurationError{Field: "config", Reason: "cannot parse " + path, Err: err}
	}
	config.fillDefaults()
	return config, nil
}

// ConfigFromEnv overlays environment settings onto base.
// Only explicitly set variables override base values.
func ConfigFromEnv(base Config, env Env) (Config, error) {
	config := base
	programIDs := make(map[string]uint64, len(base.ProgramIDs))
	for k, v := range base.ProgramIDs {
		programIDs[k] = v
	}
	config.ProgramIDs = programIDs
	if env == nil {
		return config, nil
	}

	if v, ok := env.LookupEnv(EnvNetwork); ok && v != "" {
		config.Network = v
	}
	if v, ok := env.LookupEnv(EnvProviderURL); ok && v != "" {
		config.ProviderURL = v
	}
	if v, ok := env.LookupEnv(EnvProviderToken); ok {
		config.ProviderToken = v
	}
	if v, ok := env.LookupEnv(EnvWallet); ok && v != "" {
		config.Wallet = v
	}
	if v, ok := env.LookupEnv(EnvInterfaceDir); ok && v != "" {
		config.InterfaceDir = ExpandPath(v)
	}

	// VESTING_PROGRAM_<Name>=<app id> pins an application ID per program
	for _, kv := range env.Environ() {
		name, raw, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(name, programIDEnvPrefix) || len(name) == len(programIDEnvPrefix) {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Config{}, &ConfigurationError{Field: name, Reason: "not an application ID", Err: err}
		}
		config.ProgramIDs[strings.TrimPrefix(name, programIDEnvPrefix)] = id
	}

	return config, nil
}

const programIDEnvPrefix = "VESTING_PROGRAM_"

// Validate checks that the settings required to build a provider are present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Network) == "" {
		return &ConfigurationError{Field: "network", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.ProviderURL) == "" {
		return &ConfigurationError{Field: "provider_url", Reason: "not set (config.yaml or " + EnvProviderURL + ")"}
	}
	if strings.TrimSpace(c.Wallet) == "" {
		return &ConfigurationError{Field: "wallet", Reason: "not set (config.yaml or " + EnvWallet + ")"}
	}
	if c.WaitRounds < 0 {
		return &ConfigurationError{Field: "wait_rounds", Reason: fmt.Sprintf("must be >= 0, got %d", c.WaitRounds)}
	}
	if c.Timeout < 0 {
		return &ConfigurationError{Field: "timeout", Reason: fmt.Sprintf("must be >= 0, got %d", c.Timeout)}
	}
	return nil
}

// ProgramID returns the configured application ID override for a program.
func (c *Config) ProgramID(name string) (uint64, bool) {
	id, ok := c.ProgramIDs[name]
	return id, ok && id != 0
}

func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.Network == "" {
		c.Network = defaults.Network
	}
	if c.WaitRounds == 0 {
		c.WaitRounds = defaults.WaitRounds
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.ProgramIDs == nil {
		c.ProgramIDs = map[string]uint64{}
	}
}

// ResolvePath resolves a path relative to baseDir.
// Absolute and ~ paths are returned expanded; empty stays empty.
func ResolvePath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	path = ExpandPath(path)
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
