/*

This file fetches the raw yield-pool listing from the upstream aggregator.

The upstream schema is open-ended and duck-typed; every field we consume is
optional here and defaulted explicitly. Turning a RawPool into something the
pipeline trusts is the normalizer's job, not this file's.

*/

package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/solyield/ysa/internal/logger"
)

var poolLogger = logger.GetForComponent("pool_retriever")

var ErrListingUnavailable = errors.New("pool listing unavailable")
var ErrMalformedListing = errors.New("malformed pool listing response")

// RawPool is one heterogeneous record from the upstream listing. Pointer
// fields distinguish "absent" from "zero"; the normalizer defaults them.
type RawPool struct {
	Chain            string   `json:"chain"`
	Project          string   `json:"project"`
	Symbol           string   `json:"symbol"`
	Pool             string   `json:"pool"`
	APY              *float64 `json:"apy"`
	APYBase          *float64 `json:"apyBase"`
	APYMean30d       *float64 `json:"apyMean30d"`
	TVLUsd           *float64 `json:"tvlUsd"`
	UnderlyingTokens []string `json:"underlyingTokens"`
	RewardTokens     []string `json:"rewardTokens"`
	URL              string   `json:"url"`
	ILRisk           string   `json:"ilRisk"`
	// APYUnit is not emitted by the current upstream. It is parsed anyway so
	// that a future explicit unit tag can bypass the percentage/decimal
	// heuristic in the normalizer.
	APYUnit string `json:"apyUnit"`
}

type listingResponse struct {
	Status string    `json:"status"`
	Data   []RawPool `json:"data"`
}

// Config holds the collector settings for one fetch.
type Config struct {
	URL     string
	Chain   string // pools from other chains are dropped, case-insensitive
	Timeout time.Duration
	Retries int
}

// GetPools fetches the upstream listing and returns the raw pools for the
// configured chain. Retries with linear backoff; the last error is returned
// when every attempt fails.
func GetPools(ctx context.Context, cfg Config) ([]RawPool, error) {
	if cfg.URL == "" {
		return nil, errors.New("listing URL cannot be empty")
	}
	if cfg.Chain == "" {
		return nil, errors.New("chain filter cannot be empty")
	}
	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}

	client := &http.Client{Timeout: cfg.Timeout}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		poolLogger.Debug().
			Str("url", cfg.URL).
			Int("attempt", attempt).
			Int("maxRetries", retries).
			Msg("Requesting pool listing")

		pools, err := fetchOnce(ctx, client, cfg)
		if err == nil {
			return pools, nil
		}

		lastErr = err
		poolLogger.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("Pool listing request failed, will retry if attempts remain")

		if attempt < retries {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	poolLogger.Error().
		Err(lastErr).
		Int("maxRetries", retries).
		Msg("All pool listing attempts failed")
	return nil, fmt.Errorf("%w: %d attempts failed: %w", ErrListingUnavailable, retries, lastErr)
}

func fetchOnce(ctx context.Context, client *http.Client, cfg Config) ([]RawPool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream returned status %d", ErrListingUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing response: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty response body", ErrMalformedListing)
	}

	var listing listingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedListing, err)
	}
	if listing.Data == nil {
		return nil, fmt.Errorf("%w: missing data field", ErrMalformedListing)
	}

	chain := strings.ToLower(cfg.Chain)
	pools := make([]RawPool, 0, len(listing.Data))
	for _, pool := range listing.Data {
		if strings.ToLower(pool.Chain) == chain {
			pools = append(pools, pool)
		}
	}

	poolLogger.Info().
		Int("totalPools", len(listing.Data)).
		Int("chainPools", len(pools)).
		Str("chain", cfg.Chain).
		Msg("Fetched pool listing")

	return pools, nil
}
