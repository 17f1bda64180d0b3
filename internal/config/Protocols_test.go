package config

import (
	"testing"

	"github.com/solyield/ysa/internal/types"
	"github.com/stretchr/testify/require"
)

func TestCategorizeProtocol(t *testing.T) {
	cases := []struct {
		protocol string
		want     types.Category
	}{
		{"Raydium", types.CategoryDex},
		{"orca", types.CategoryDex},
		{"solend", types.CategoryLending},
		{"marinade-finance", types.CategoryLiquidStaking},
		{"drift-protocol", types.CategoryDerivatives},
		{"tulip-garden", types.CategoryFarm},
		{"some-new-protocol", types.CategoryOther},
		{"", types.CategoryOther},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CategorizeProtocol(tc.protocol), "protocol %q", tc.protocol)
	}
}

func TestLookupScores(t *testing.T) {
	t.Run("known protocols match case-insensitively", func(t *testing.T) {
		require.Equal(t, 0.9, LookupAuditScore("Orca"))
		require.Equal(t, 0.95, LookupReputationScore("RAYDIUM"))
	})

	t.Run("substring match covers suffixed names", func(t *testing.T) {
		require.Equal(t, 0.9, LookupAuditScore("marinade-finance"))
		require.Equal(t, 0.9, LookupReputationScore("jito-liquid-staking-v2"))
	})

	t.Run("unknown protocols fall back to the default", func(t *testing.T) {
		require.Equal(t, DefaultProtocolScore, LookupAuditScore("brand-new-dapp"))
		require.Equal(t, DefaultProtocolScore, LookupReputationScore("brand-new-dapp"))
	})
}
