// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package program

import (
	"bytes"
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

func TestParseArgs(t *testing.T) {
	args, err := ParseArgs(`{"amount": 18446744073709551615, "memo": "hi"}`)
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	n, err := toUint(args["amount"], 64)
	if err != nil || n != 18446744073709551615 {
		t.Errorf("amount = %d, %v", n, err)
	}

	for _, raw := range []string{"", "  ", "null"} {
		args, err := ParseArgs(raw)
		if err != nil || args == nil || len(args) != 0 {
			t.Errorf("ParseArgs(%q) = %v, %v; want empty", raw, args, err)
		}
	}

	for _, raw := range []string{"[1,2]", `"x"`, "{"} {
		if _, err := ParseArgs(raw); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParseArgs(%q) error = %v, want ErrInvalidArgument", raw, err)
		}
	}
}

func TestConvertArg(t *testing.T) {
	addr := crypto.GenerateAccount().Address

	tests := []struct {
		name string
		typ  string
		in   any
		want any
	}{
		{"uint64 from json", "uint64", mustNumber(t, "42"), uint64(42)},
		{"uint32 from float", "uint32", float64(7), uint64(7)},
		{"uint8 max", "uint8", 255, uint64(255)},
		{"uint128", "uint128", mustNumber(t, "340282366920938463463374607431768211455"), new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))},
		{"byte", "byte", 9, byte(9)},
		{"bool", "bool", true, true},
		{"string", "string", "hello", "hello"},
		{"address", "address", addr.String(), addr[:]},
		{"account", "account", addr.String(), addr},
		{"asset", "asset", 31566704, uint64(31566704)},
		{"application", "application", mustNumber(t, "5"), uint64(5)},
		{"byte[] base64", "byte[]", "AQID", []byte{1, 2, 3}},
		{"byte[3] hex", "byte[3]", "0x0a0b0c", []byte{10, 11, 12}},
		{"byte[2] list", "byte[2]", []any{1, 2}, []byte{1, 2}},
		{"byte[4] array", "byte[4]", [4]byte{4, 3, 2, 1}, []byte{4, 3, 2, 1}},
		{"uint16[]", "uint16[]", []any{1, 2}, []interface{}{uint64(1), uint64(2)}},
		{"tuple", "(uint64,bool)", []any{3, false}, []interface{}{uint64(3), false}},
		{"nested tuple array", "(uint64,(bool,string))[]", []any{[]any{1, []any{true, "a"}}}, []interface{}{[]interface{}{uint64(1), []interface{}{true, "a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertArg(tt.typ, tt.in)
			if err != nil {
				t.Fatalf("convertArg(%s) error = %v", tt.typ, err)
			}
			if want, ok := tt.want.(*big.Int); ok {
				if got.(*big.Int).Cmp(want) != 0 {
					t.Errorf("convertArg(%s) = %v, want %v", tt.typ, got, want)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("convertArg(%s) = %#v, want %#v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestConvertArg_Errors(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		in   any
	}{
		{"negative", "uint64", -1},
		{"fraction", "uint64", 1.5},
		{"overflow uint8", "uint8", 256},
		{"overflow uint128", "uint128", mustNumber(t, "340282366920938463463374607431768211456")},
		{"not a number", "uint64", "ten"},
		{"bool from string", "bool", "true"},
		{"string from number", "string", 1},
		{"bad address", "address", "NOTANADDRESS"},
		{"short byte array", "byte[31]", "0x00"},
		{"bad hex", "byte[]", "0xzz"},
		{"wrong array length", "uint64[2]", []any{1}},
		{"tuple arity", "(uint64,uint64)", []any{1}},
		{"not a list", "uint64[]", 4},
		{"transaction", "pay", nil},
		{"ufixed", "ufixed64x2", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := convertArg(tt.typ, tt.in); err == nil {
				t.Errorf("convertArg(%s, %v) = %v, want error", tt.typ, tt.in, got)
			}
		})
	}
}

func TestSplitTuple(t *testing.T) {
	tests := []struct {
		typ  string
		want []string
	}{
		{"()", nil},
		{"(uint64)", []string{"uint64"}},
		{"(uint64,address)", []string{"uint64", "address"}},
		{"(uint64,(bool,byte[]),string[2])", []string{"uint64", "(bool,byte[])", "string[2]"}},
	}
	for _, tt := range tests {
		got, err := splitTuple(tt.typ)
		if err != nil {
			t.Errorf("splitTuple(%s) error = %v", tt.typ, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitTuple(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}

	for _, bad := range []string{"uint64", "(uint64", "(a))", "((a)"} {
		if _, err := splitTuple(bad); err == nil {
			t.Errorf("splitTuple(%s) should fail", bad)
		}
	}
}

func TestEncodeArgs(t *testing.T) {
	method, err := abi.MethodFromSignature("create(byte[2],address,(uint64,uint64)[])void")
	if err != nil {
		t.Fatal(err)
	}
	method.Args[0].Name = "seeds"
	method.Args[1].Name = "dest"
	// third argument stays unnamed

	addr := crypto.GenerateAccount().Address
	args := Args{
		"seeds": "0x0102",
		"dest":  addr.String(),
		"arg2":  []any{[]any{100, 5}, []any{200, 10}},
	}

	values, err := EncodeArgs(method, args)
	if err != nil {
		t.Fatalf("EncodeArgs() error = %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("len(values) = %d, want 3", len(values))
	}
	if !bytes.Equal(values[0].([]byte), []byte{1, 2}) {
		t.Errorf("seeds = %v", values[0])
	}

	// the composer encodes each value with its ABI type; check they are accepted
	for i, arg := range method.Args {
		typ, err := abi.TypeOf(arg.Type)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := typ.Encode(values[i]); err != nil {
			t.Errorf("Encode(%s) error = %v", arg.Type, err)
		}
	}
}

func TestEncodeArgs_Errors(t *testing.T) {
	method, err := abi.MethodFromSignature("unlock(byte[31])void")
	if err != nil {
		t.Fatal(err)
	}
	method.Args[0].Name = "seeds"

	tests := []struct {
		name    string
		args    Args
		wantArg string
	}{
		{"missing", Args{}, "seeds"},
		{"extra", Args{"seeds": make([]byte, 31), "amount": 1}, "amount"},
		{"wrong shape", Args{"seeds": "0x00"}, "seeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeArgs(method, tt.args)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("EncodeArgs() error = %v, want ErrInvalidArgument", err)
			}
			var argErr *ArgumentError
			if !errors.As(err, &argErr) || argErr.Arg != tt.wantArg || argErr.Method != "unlock" {
				t.Errorf("error = %#v, want arg %s", err, tt.wantArg)
			}
		})
	}
}

func TestEncodeArgs_NoArgs(t *testing.T) {
	method, err := abi.MethodFromSignature("initialize()void")
	if err != nil {
		t.Fatal(err)
	}
	values, err := EncodeArgs(method, Args{})
	if err != nil || len(values) != 0 {
		t.Errorf("EncodeArgs() = %v, %v", values, err)
	}
	if _, err := EncodeArgs(method, Args{"x": 1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("EncodeArgs() with extra arg error = %v", err)
	}
}

func TestToAddress(t *testing.T) {
	addr := crypto.GenerateAccount().Address
	for _, in := range []any{addr, addr.String(), addr[:]} {
		got, err := toAddress(in)
		if err != nil || got != addr {
			t.Errorf("toAddress(%T) = %v, %v", in, got, err)
		}
	}
	if _, err := toAddress(make([]byte, 31)); err == nil {
		t.Error("toAddress(31 bytes) should fail")
	}
	if _, err := toAddress(types.Address{}.String() + "X"); err == nil {
		t.Error("toAddress(bad checksum) should fail")
	}
}

func mustNumber(t *testing.T, s string) any {
	t.Helper()
	args, err := ParseArgs(`{"n": ` + s + `}`)
	if err != nil {
		t.Fatal(err)
	}
	return args["n"]
}
