package rpc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/retry"
	"github.com/thirdweb-dev/ledger-indexer/internal/rpc"
)

type jsonRPCRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// flakyNode answers eth_chainId with 0x38 after failing the first `failures` requests.
func flakyNode(t *testing.T, failures int32) (*httptest.Server, *int32, *[]string) {
	t.Helper()
	var calls int32
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req jsonRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		methods = append(methods, req.Method)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x38",
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &methods
}

func TestInitializeRetriesTransientStartupFailure(t *testing.T) {
	srv, calls, methods := flakyNode(t, 1)

	prev := config.Cfg.RPC
	t.Cleanup(func() { config.Cfg.RPC = prev })
	config.Cfg.RPC = config.RPCConfig{URL: srv.URL}

	var delays []time.Duration
	retrier := retry.NewRetrier(retry.DefaultPolicy(), retry.WithSleeper(func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}))

	client, err := rpc.Initialize(context.Background(), nil, retrier)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.Equal(t, []string{"eth_chainId"}, *methods)
	assert.Equal(t, []time.Duration{200 * time.Millisecond}, delays)
	assert.Equal(t, "56", client.GetChainID().String())
}

func TestInitializeRequiresURL(t *testing.T) {
	prev := config.Cfg.RPC
	t.Cleanup(func() { config.Cfg.RPC = prev })
	config.Cfg.RPC = config.RPCConfig{}

	_, err := rpc.Initialize(context.Background(), nil, retry.NewRetrier(retry.DefaultPolicy()))
	assert.Error(t, err)
}
