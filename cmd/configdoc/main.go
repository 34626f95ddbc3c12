// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// configdoc generates markdown documentation from the config struct tags.
// Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md
package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/tokenvest/vestctl/internal/util"
)

// envVar documents one environment variable.
type envVar struct {
	Name        string
	Description string
}

var envVars = []envVar{
	{util.EnvDataDir, "Data directory holding config.yaml and keys/ (overridden by -d)"},
	{util.EnvNetwork, "Network name; overrides `network`"},
	{util.EnvProviderURL, "algod endpoint URL; overrides `provider_url`"},
	{util.EnvProviderToken, "algod API token; overrides `provider_token`"},
	{util.EnvWallet, "Signer mnemonic, mnemonic file, or key name; overrides `wallet`"},
	{util.EnvInterfaceDir, "Directory of ARC-4 contract JSON files; overrides `interface_dir`"},
	{"VESTING_PROGRAM_<Name>", "Application ID for program <Name>; overrides `program_ids`"},
	{util.EnvDebug, "Set to any value to enable debug logging"},
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		fmt.Println("Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md")
		fmt.Println()
		fmt.Println("Generates markdown documentation from Go struct tags.")
		return
	}
	writeDoc(os.Stdout)
}

func writeDoc(w io.Writer) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format+"\n", args...) }

	p("# Configuration Reference")
	p("")
	p("Auto-generated from Go struct tags. Do not edit manually.")
	p("")
	p("## config.yaml")
	p("")
	p("File: `config.yaml` in the data directory (`-d`, `%s`, or `%s`)", util.EnvDataDir, util.DefaultDataDir)
	p("")
	writeStructTable(w, reflect.TypeOf(util.Config{}))
	p("")
	p("## Environment Variables")
	p("")
	p("Set variables override config.yaml; the -network flag overrides both.")
	p("")
	p("| Variable | Description |")
	p("|----------|-------------|")
	for _, env := range envVars {
		p("| `%s` | %s |", env.Name, env.Description)
	}
}

func writeStructTable(w io.Writer, t reflect.Type) {
	_, _ = fmt.Fprintln(w, "| Field | Type | Default | Description |")
	_, _ = fmt.Fprintln(w, "|-------|------|---------|-------------|")

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]

		desc := field.Tag.Get("description")
		if desc == "" {
			desc = "(no description)"
		}
		def := field.Tag.Get("default")
		if def == "" {
			def = "(none)"
		}

		_, _ = fmt.Fprintf(w, "| `%s` | %s | `%s` | %s |\n", name, formatType(field.Type), def, desc)
	}
}

func formatType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "uint"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "[]" + formatType(t.Elem())
	case reflect.Map:
		return "map[" + formatType(t.Key()) + "]" + formatType(t.Elem())
	default:
		return t.String()
	}
}
