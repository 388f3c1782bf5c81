package economics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnuity(t *testing.T) {
	tests := []struct {
		name     string
		capex    float64
		n        float64
		wacc     float64
		expected float64
	}{
		{name: "textbook", capex: 1000, n: 20, wacc: 0.05, expected: 80.2426},
		{name: "zero wacc is straight line", capex: 1000, n: 20, wacc: 0, expected: 50},
		{name: "one year", capex: 1000, n: 1, wacc: 0.1, expected: 1100},
		{name: "zero capex", capex: 0, n: 25, wacc: 0.07, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Annuity(tt.capex, tt.n, tt.wacc)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-3)
		})
	}
}

func TestAnnuity_InvalidInput(t *testing.T) {
	_, err := Annuity(1000, 0, 0.05)
	assert.Error(t, err)

	_, err = Annuity(1000, 20, -0.01)
	assert.Error(t, err)

	_, err = Annuity(math.NaN(), 20, 0.05)
	assert.Error(t, err)
}

func TestAnnuityWithReinvest(t *testing.T) {
	plain, err := Annuity(1000, 20, 0.05)
	require.NoError(t, err)

	same, err := AnnuityWithReinvest(1000, 20, 0.05, 20, 0)
	require.NoError(t, err)
	assert.InDelta(t, plain, same, 1e-9)

	defaulted, err := AnnuityWithReinvest(1000, 20, 0.05, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, plain, defaulted, 1e-9)

	// one replacement after ten years
	withReplacement, err := AnnuityWithReinvest(1000, 20, 0.05, 10, 0)
	require.NoError(t, err)
	expected, err := Annuity(1000+1000/math.Pow(1.05, 10), 20, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, expected, withReplacement, 1e-9)

	cheaper, err := AnnuityWithReinvest(1000, 20, 0.05, 10, 0.02)
	require.NoError(t, err)
	assert.Less(t, cheaper, withReplacement)

	_, err = AnnuityWithReinvest(1000, 20, 0.05, 10, 1)
	assert.Error(t, err)
}

func TestEPCosts(t *testing.T) {
	assert.Equal(t, 130.0, EPCosts(100, 30))
}
