package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeanStdDev(t *testing.T) {
	t.Run("computes sample statistics", func(t *testing.T) {
		mean, stdDev, err := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		require.NoError(t, err)
		require.InDelta(t, 5.0, mean, 1e-9)
		// Sample (N-1) standard deviation, not population.
		require.InDelta(t, 2.13809, stdDev, 1e-4)
	})

	t.Run("identical values have zero deviation", func(t *testing.T) {
		mean, stdDev, err := MeanStdDev([]float64{3, 3, 3})
		require.NoError(t, err)
		require.Equal(t, 3.0, mean)
		require.Equal(t, 0.0, stdDev)
	})

	t.Run("fewer than two points is an error", func(t *testing.T) {
		_, _, err := MeanStdDev([]float64{1})
		require.ErrorIs(t, err, ErrInsufficientData)

		_, _, err = MeanStdDev(nil)
		require.ErrorIs(t, err, ErrInsufficientData)
	})
}
