package esplora_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EvanJRichard/wallet-balance-tool/internal/infrastructure/explorer/esplora"
)

const testAddress = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/blocks/tip/height", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "2400000")
	})
	if handler != nil {
		mux.HandleFunc("/address/", handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func defaultOpts(apiURL string) esplora.ServiceOpts {
	return esplora.ServiceOpts{
		APIURL:            apiURL,
		RequestTimeout:    5 * time.Second,
		RequestsPerSecond: 100,
	}
}

func TestGetAddressBalance(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/address/"+testAddress, r.URL.Path)
		fmt.Fprint(w, `{
			"address": "`+testAddress+`",
			"chain_stats": {
				"funded_txo_count": 3,
				"funded_txo_sum": 150000,
				"spent_txo_count": 1,
				"spent_txo_sum": 50000,
				"tx_count": 4
			},
			"mempool_stats": {"funded_txo_sum": 0, "spent_txo_sum": 0}
		}`)
	})

	service, err := esplora.NewService(defaultOpts(server.URL))
	require.NoError(t, err)

	balance, err := service.GetAddressBalance(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(100000), balance)
}

func TestFailingGetAddressBalance(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "something went wrong", http.StatusInternalServerError)
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "not json")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.handler)

			service, err := esplora.NewService(defaultOpts(server.URL))
			require.NoError(t, err)

			balance, err := service.GetAddressBalance(
				context.Background(), testAddress,
			)
			assert.Error(t, err)
			assert.Zero(t, balance)
		})
	}
}

func TestFailingNewService(t *testing.T) {
	t.Run("invalid opts", func(t *testing.T) {
		tests := []struct {
			name string
			opts esplora.ServiceOpts
			err  error
		}{
			{
				name: "null api url",
				opts: esplora.ServiceOpts{
					RequestTimeout: time.Second, RequestsPerSecond: 1,
				},
				err: esplora.ErrNullAPIURL,
			},
			{
				name: "zero timeout",
				opts: esplora.ServiceOpts{
					APIURL: "http://localhost:3001", RequestsPerSecond: 1,
				},
				err: esplora.ErrInvalidRequestTimeout,
			},
			{
				name: "zero request rate",
				opts: esplora.ServiceOpts{
					APIURL: "http://localhost:3001", RequestTimeout: time.Second,
				},
				err: esplora.ErrInvalidRequestRate,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				service, err := esplora.NewService(tt.opts)
				assert.Nil(t, service)
				assert.ErrorIs(t, err, tt.err)
			})
		}
	})

	t.Run("unhealthy endpoint", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/blocks/tip/height", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		service, err := esplora.NewService(defaultOpts(server.URL))
		assert.Nil(t, service)
		assert.ErrorContains(t, err, "health check")
	})
}

func TestRequestCancellation(t *testing.T) {
	blocked := make(chan struct{})
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	})
	t.Cleanup(func() { close(blocked) })

	service, err := esplora.NewService(defaultOpts(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = service.GetAddressBalance(ctx, testAddress)
	assert.ErrorIs(t, err, context.Canceled)
}
