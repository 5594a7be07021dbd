package esplora

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/EvanJRichard/wallet-balance-tool/internal/core/ports"
	"github.com/EvanJRichard/wallet-balance-tool/pkg/circuitbreaker"
	"github.com/EvanJRichard/wallet-balance-tool/pkg/httputil"
)

var (
	// ErrNullAPIURL ...
	ErrNullAPIURL = errors.New("explorer endpoint must not be null")
	// ErrInvalidRequestRate ...
	ErrInvalidRequestRate = errors.New("requests per second must be a positive number")
	// ErrInvalidRequestTimeout ...
	ErrInvalidRequestTimeout = errors.New("request timeout must be a positive duration")
)

type esplora struct {
	apiURL  string
	client  *httputil.Client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

// ServiceOpts is the struct given to NewService.
type ServiceOpts struct {
	APIURL            string
	RequestTimeout    time.Duration
	RequestsPerSecond int
}

func (o ServiceOpts) validate() error {
	if len(o.APIURL) <= 0 {
		return ErrNullAPIURL
	}
	if o.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}
	if o.RequestsPerSecond <= 0 {
		return ErrInvalidRequestRate
	}
	return nil
}

// NewService returns a new esplora client as a ports.Explorer interface.
// Requests toward the endpoint are paced at the configured rate and
// guarded by a circuit breaker. The endpoint is probed once before
// returning.
func NewService(opts ServiceOpts) (ports.Explorer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	service := &esplora{
		apiURL:  opts.APIURL,
		client:  httputil.NewClient(opts.RequestTimeout),
		cb:      circuitbreaker.NewCircuitBreaker("esplora"),
		limiter: ratelimit.New(opts.RequestsPerSecond),
	}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (e *esplora) healthCheck() error {
	url := fmt.Sprintf("%s/blocks/tip/height", e.apiURL)
	status, resp, err := e.client.Get(context.Background(), url, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errors.New(resp)
	}
	return nil
}

// GetAddressBalance returns the confirmed balance of the address in
// satoshis, computed from the funded and spent output sums reported by the
// endpoint.
func (e *esplora) GetAddressBalance(
	ctx context.Context, address string,
) (uint64, error) {
	e.limiter.Take()

	iBalance, err := e.cb.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/address/%s", e.apiURL, address)
		status, resp, err := e.client.Get(ctx, url, nil)
		if err != nil {
			return nil, fmt.Errorf("error on retrieving address details: %w", err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("esplora: %d %s", status, resp)
		}

		details := addressDetails{}
		if err := json.Unmarshal([]byte(resp), &details); err != nil {
			return nil, fmt.Errorf("error on parsing address details: %w", err)
		}
		return details.ChainStats.balance(), nil
	})
	if err != nil {
		return 0, err
	}

	return iBalance.(uint64), nil
}
