// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package program

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

const voidReturn = "void"

// Args are call arguments keyed by ARC-4 argument name. Unnamed arguments
// are addressed as arg0, arg1, ...
type Args map[string]any

// ParseArgs decodes a JSON object of call arguments. Empty input means no arguments.
// Numbers are kept as json.Number so uint64 values survive intact.
func ParseArgs(raw string) (Args, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Args{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var args Args
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: arguments must be a JSON object: %v", ErrInvalidArgument, err)
	}
	if args == nil {
		return Args{}, nil
	}
	return args, nil
}

// ArgName returns the key used for the i-th argument of method.
func ArgName(method abi.Method, i int) string {
	if name := method.Args[i].Name; name != "" {
		return name
	}
	return "arg" + strconv.Itoa(i)
}

// EncodeArgs orders and converts args into the values the atomic transaction
// composer expects for method. Every declared argument must be present and no
// undeclared key is accepted.
func EncodeArgs(method abi.Method, args Args) ([]interface{}, error) {
	declared := make(map[string]bool, len(method.Args))
	values := make([]interface{}, len(method.Args))

	for i, arg := range method.Args {
		name := ArgName(method, i)
		declared[name] = true

		raw, ok := args[name]
		if !ok {
			return nil, &ArgumentError{Method: method.Name, Arg: name, Reason: "missing"}
		}
		v, err := convertArg(arg.Type, raw)
		if err != nil {
			return nil, &ArgumentError{Method: method.Name, Arg: name, Reason: err.Error()}
		}
		values[i] = v
	}

	for name := range args {
		if !declared[name] {
			return nil, &ArgumentError{Method: method.Name, Arg: name, Reason: "not declared by " + method.GetSignature()}
		}
	}
	return values, nil
}

func isReferenceType(typ string) bool {
	switch typ {
	case "account", "asset", "application":
		return true
	}
	return false
}

func isTransactionType(typ string) bool {
	switch typ {
	case "txn", "pay", "keyreg", "acfg", "axfer", "afrz", "appl":
		return true
	}
	return false
}

// convertArg converts a JSON-shaped value into the Go value for ABI type typ.
func convertArg(typ string, v any) (any, error) {
	switch {
	case isTransactionType(typ):
		return nil, fmt.Errorf("transaction arguments (%s) are not supported", typ)
	case typ == "account":
		return toAddress(v)
	case typ == "asset" || typ == "application":
		return toUint(v, 64)
	case strings.HasSuffix(typ, "]"):
		return convertArray(typ, v)
	case strings.HasPrefix(typ, "("):
		return convertTuple(typ, v)
	case typ == "bool":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}
		return b, nil
	case typ == "string":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	case typ == "address":
		addr, err := toAddress(v)
		if err != nil {
			return nil, err
		}
		return addr[:], nil
	case typ == "byte":
		n, err := toUint(v, 8)
		if err != nil {
			return nil, err
		}
		return byte(n), nil
	case strings.HasPrefix(typ, "uint"):
		bits, err := strconv.Atoi(strings.TrimPrefix(typ, "uint"))
		if err != nil {
			return nil, fmt.Errorf("unsupported type %s", typ)
		}
		if bits > 64 {
			return toBigUint(v, bits)
		}
		return toUint(v, bits)
	}
	return nil, fmt.Errorf("unsupported type %s", typ)
}

func convertArray(typ string, v any) (any, error) {
	open := strings.LastIndex(typ, "[")
	if open < 0 {
		return nil, fmt.Errorf("malformed array type %s", typ)
	}
	elem, lenStr := typ[:open], typ[open+1:len(typ)-1]

	length := -1
	if lenStr != "" {
		n, err := strconv.Atoi(lenStr)
		if err != nil {
			return nil, fmt.Errorf("malformed array type %s", typ)
		}
		length = n
	}

	if elem == "byte" {
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		if length >= 0 && len(b) != length {
			return nil, fmt.Errorf("expected %d bytes, got %d", length, len(b))
		}
		return b, nil
	}

	items, err := toList(v)
	if err != nil {
		return nil, err
	}
	if length >= 0 && len(items) != length {
		return nil, fmt.Errorf("expected %d elements, got %d", length, len(items))
	}
	out := make([]interface{}, len(items))
	for i, item := range items {
		if out[i], err = convertArg(elem, item); err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return out, nil
}

func convertTuple(typ string, v any) (any, error) {
	fields, err := splitTuple(typ)
	if err != nil {
		return nil, err
	}
	items, err := toList(v)
	if err != nil {
		return nil, err
	}
	if len(items) != len(fields) {
		return nil, fmt.Errorf("expected %d tuple fields, got %d", len(fields), len(items))
	}
	out := make([]interface{}, len(items))
	for i := range items {
		if out[i], err = convertArg(fields[i], items[i]); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
	}
	return out, nil
}

// splitTuple splits "(a,(b,c),d[])" into its top-level component types.
func splitTuple(typ string) ([]string, error) {
	if !strings.HasPrefix(typ, "(") || !strings.HasSuffix(typ, ")") {
		return nil, fmt.Errorf("malformed tuple type %s", typ)
	}
	inner := typ[1 : len(typ)-1]
	if inner == "" {
		return nil, nil
	}

	var parts []string
	depth, start := 0, 0
	for i, ch := range inner {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("malformed tuple type %s", typ)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, inner[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("malformed tuple type %s", typ)
	}
	return append(parts, inner[start:]), nil
}

func toList(v any) ([]any, error) {
	if items, ok := v.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

// toBytes accepts []byte, [N]byte, a 0x-prefixed hex string, a base64 string,
// or a list of byte values.
func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return bytes.Clone(b), nil
	case string:
		if strings.HasPrefix(b, "0x") {
			out, err := hex.DecodeString(b[2:])
			if err != nil {
				return nil, fmt.Errorf("invalid hex: %v", err)
			}
			return out, nil
		}
		out, err := base64.StdEncoding.DecodeString(b)
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %v", err)
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, rv.Len())
		for i := range out {
			out[i] = byte(rv.Index(i).Uint())
		}
		return out, nil
	}

	items, err := toList(v)
	if err != nil {
		return nil, fmt.Errorf("expected bytes, got %T", v)
	}
	out := make([]byte, len(items))
	for i, item := range items {
		n, err := toUint(item, 8)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = byte(n)
	}
	return out, nil
}

func toAddress(v any) (types.Address, error) {
	switch a := v.(type) {
	case types.Address:
		return a, nil
	case string:
		addr, err := types.DecodeAddress(a)
		if err != nil {
			return types.Address{}, fmt.Errorf("invalid address: %v", err)
		}
		return addr, nil
	case []byte:
		if len(a) != len(types.Address{}) {
			return types.Address{}, fmt.Errorf("address must be %d bytes, got %d", len(types.Address{}), len(a))
		}
		var addr types.Address
		copy(addr[:], a)
		return addr, nil
	}
	return types.Address{}, fmt.Errorf("expected address, got %T", v)
}

func toUint(v any, bits int) (uint64, error) {
	var n uint64
	switch x := v.(type) {
	case uint64:
		n = x
	case uint32:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint8:
		n = uint64(x)
	case uint:
		n = uint64(x)
	case int:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d", x)
		}
		n = uint64(x)
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d", x)
		}
		n = uint64(x)
	case float64:
		if x < 0 || x != math.Trunc(x) || x > (1<<53) {
			return 0, fmt.Errorf("%v is not an exact unsigned integer", x)
		}
		n = uint64(x)
	case json.Number:
		parsed, err := strconv.ParseUint(x.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not a uint64", x)
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseUint(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a uint64", x)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("expected unsigned integer, got %T", v)
	}

	if bits < 64 && n>>uint(bits) != 0 {
		return 0, fmt.Errorf("%d overflows uint%d", n, bits)
	}
	return n, nil
}

func toBigUint(v any, bits int) (*big.Int, error) {
	var s string
	switch x := v.(type) {
	case *big.Int:
		s = x.String()
	case json.Number:
		s = x.String()
	case string:
		s = x
	default:
		n, err := toUint(v, 64)
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetUint64(n), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%q is not an unsigned integer", s)
	}
	if n.BitLen() > bits {
		return nil, fmt.Errorf("%s overflows uint%d", s, bits)
	}
	return n, nil
}
