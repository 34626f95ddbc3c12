// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	sdkjson "github.com/algorand/go-algorand-sdk/v2/encoding/json"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// MockGenesisHash is the base64 genesis hash served by MockAlgodServer.
const MockGenesisHash = "SGO1GKSzyE7IEPItTxCByw9x8FmnrCDexi9/cOUJOiI="

// Routes recorded by MockAlgodServer.
const (
	RouteParams   = "GET /v2/transactions/params"
	RouteSubmit   = "POST /v2/transactions"
	RouteSimulate = "POST /v2/transactions/simulate"
	RouteStatus   = "GET /v2/status"
	RoutePending  = "GET /v2/transactions/pending"
	RouteWait     = "GET /v2/status/wait-for-block-after"
)

// MockAlgodServer serves the algod endpoints a single application call
// touches: suggested params, submit, status, pending info and simulate.
// Every submitted transaction confirms one round after LastRound.
type MockAlgodServer struct {
	Server *httptest.Server

	LastRound uint64
	// RejectSubmit, when set, fails every submission with this message.
	RejectSubmit string
	// SimulateFailure, when set, makes simulation report this failure.
	SimulateFailure string

	mu        sync.Mutex
	requests  map[string]int
	submitted []types.SignedTxn
}

// NewMockAlgodServer starts a mock algod closed at the end of the test.
func NewMockAlgodServer(t *testing.T) *MockAlgodServer {
	t.Helper()

	m := &MockAlgodServer{
		LastRound: 100,
		requests:  make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the server URL
func (m *MockAlgodServer) URL() string {
	return m.Server.URL
}

// Close shuts down the mock server
func (m *MockAlgodServer) Close() {
	m.Server.Close()
}

// Requests returns how many requests hit route.
func (m *MockAlgodServer) Requests(route string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[route]
}

// TotalRequests returns how many requests the server saw.
func (m *MockAlgodServer) TotalRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.requests {
		n += c
	}
	return n
}

// Submitted returns the transactions accepted so far.
func (m *MockAlgodServer) Submitted() []types.SignedTxn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.SignedTxn, len(m.submitted))
	copy(out, m.submitted)
	return out
}

func route(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/v2/transactions/pending/"):
		return RoutePending
	case strings.HasPrefix(path, "/v2/status/wait-for-block-after/"):
		return RouteWait
	}
	return r.Method + " " + path
}

func (m *MockAlgodServer) serve(w http.ResponseWriter, r *http.Request) {
	rt := route(r)
	m.mu.Lock()
	m.requests[rt]++
	m.mu.Unlock()

	switch rt {
	case RouteParams:
		writeJSON(w, http.StatusOK, map[string]any{
			"consensus-version": "future",
			"fee":               0,
			"genesis-hash":      MockGenesisHash,
			"genesis-id":        "testnet-v1.0",
			"last-round":        m.LastRound,
			"min-fee":           1000,
		})

	case RouteSubmit:
		m.handleSubmit(w, r)

	case RouteStatus, RouteWait:
		writeJSON(w, http.StatusOK, map[string]any{"last-round": m.LastRound})

	case RoutePending:
		writeMsgpack(w, models.PendingTransactionInfoResponse{ConfirmedRound: m.LastRound + 1})

	case RouteSimulate:
		group := models.SimulateTransactionGroupResult{
			TxnResults: []models.SimulateTransactionResult{{
				TxnResult: models.PendingTransactionResponse{Logs: [][]byte{[]byte("simulated")}},
			}},
		}
		if m.SimulateFailure != "" {
			group.FailureMessage = m.SimulateFailure
			group.FailedAt = []uint64{0}
		}
		// algod clients decode POST responses as JSON
		writeSDKJSON(w, models.SimulateResponse{
			Version:   2,
			LastRound: m.LastRound,
			TxnGroups: []models.SimulateTransactionGroupResult{group},
		})

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no route " + rt})
	}
}

func (m *MockAlgodServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	var stxn types.SignedTxn
	if err := msgpack.Decode(body, &stxn); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	if m.RejectSubmit != "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": m.RejectSubmit})
		return
	}

	m.mu.Lock()
	m.submitted = append(m.submitted, stxn)
	m.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"txId": crypto.GetTxID(stxn.Txn)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSDKJSON encodes with the SDK's codec so byte fields use its base64 form.
func writeSDKJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(sdkjson.Encode(v))
}

func writeMsgpack(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/msgpack")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(msgpack.Encode(v))
}
