package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solyield/ysa/internal/config"
	"github.com/solyield/ysa/internal/datafetcher"
	"github.com/stretchr/testify/require"
)

const collectListing = `{
	"status": "success",
	"data": [
		{"chain": "Solana", "project": "orca", "symbol": "SOL-USDC", "pool": "p1", "apy": 8.2, "tvlUsd": 1200000},
		{"chain": "Solana", "project": "solend", "symbol": "USDC", "pool": "p2", "apy": 6.1, "tvlUsd": 40000000},
		{"chain": "Solana", "project": "raydium", "symbol": "RAY-SOL", "pool": "p3", "apy": 12.5, "tvlUsd": 800000},
		{"chain": "Solana", "project": "dust", "symbol": "A-B", "pool": "p4", "apy": 9.0, "tvlUsd": 50},
		{"chain": "Ethereum", "project": "uniswap-v3", "symbol": "ETH-USDC", "pool": "p5", "apy": 4.0, "tvlUsd": 90000000}
	]
}`

func TestCollect(t *testing.T) {
	t.Run("fetches normalizes and sorts by yield", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(collectListing))
		}))
		defer server.Close()

		p := New(datafetcher.Config{
			URL:     server.URL,
			Chain:   "Solana",
			Timeout: 2 * time.Second,
			Retries: 1,
		}, config.DefaultPipelineParameters)

		result, err := p.Collect(context.Background())
		require.NoError(t, err)

		// Four Solana pools before normalization, dust pool dropped after.
		require.Equal(t, 4, result.RawPoolCount)
		require.Len(t, result.Opportunities, 3)
		require.False(t, result.CollectedAt.IsZero())

		// Sorted by APY descending.
		require.Equal(t, "raydium", result.Opportunities[0].Protocol)
		require.Equal(t, "orca", result.Opportunities[1].Protocol)
		require.Equal(t, "solend", result.Opportunities[2].Protocol)
	})

	t.Run("upstream failure fails the cycle", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		p := New(datafetcher.Config{
			URL:     server.URL,
			Chain:   "Solana",
			Timeout: 2 * time.Second,
			Retries: 1,
		}, config.DefaultPipelineParameters)

		_, err := p.Collect(context.Background())
		require.ErrorIs(t, err, datafetcher.ErrListingUnavailable)
	})
}
