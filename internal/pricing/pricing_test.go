package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(4550), ToCents(45.5))
	assert.Equal(t, int64(1999), ToCents(19.99))
	assert.Equal(t, int64(30), ToCents(0.1+0.2))
	assert.Equal(t, 19.99, FromCents(1999))
}

func TestApplyPercent(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		pct   float64
		want  int64
	}{
		{"ten percent", 10000, 10, 1000},
		{"rounds half up", 125, 10, 13},
		{"rounds down", 124, 10, 12},
		{"zero pct", 5000, 0, 0},
		{"full", 5000, 100, 5000},
		{"capped", 5000, 150, 5000},
		{"zero amount", 0, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyPercent(tt.cents, tt.pct))
		})
	}
}

func TestCompute(t *testing.T) {
	totals, err := Compute([]float64{45.00, 25.50}, 0)
	require.NoError(t, err)
	assert.Equal(t, Totals{PrixServices: 70.5, Reduction: 0, PrixFinal: 70.5}, totals)

	totals, err = Compute([]float64{45.00, 25.50}, 10)
	require.NoError(t, err)
	assert.Equal(t, 70.5, totals.PrixServices)
	assert.Equal(t, 7.05, totals.Reduction)
	assert.Equal(t, 63.45, totals.PrixFinal)
}

func TestComputeAddThenRemoveRestores(t *testing.T) {
	before, err := Compute([]float64{60}, 15)
	require.NoError(t, err)

	_, err = Compute([]float64{60, 20}, 15)
	require.NoError(t, err)

	after, err := Compute([]float64{60}, 15)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestComputeRejectsBadInput(t *testing.T) {
	_, err := Compute([]float64{10}, -1)
	assert.Error(t, err)
	_, err = Compute([]float64{10}, 101)
	assert.Error(t, err)
	_, err = Compute([]float64{-10}, 0)
	assert.Error(t, err)
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 59.97, LineTotal(19.99, 3))
}
