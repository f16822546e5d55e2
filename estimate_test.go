package saber

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecryptionFailureRate(t *testing.T) {

	// Known rates of the three parameter sets, in bits.
	for _, tt := range []struct {
		paramDef ParametersLiteral
		log2Rate float64
	}{
		{ParamsLightSaber, -120},
		{ParamsSaber, -136},
		{ParamsFireSaber, -165},
	} {

		params, err := NewParametersFromLiteral(tt.paramDef)
		require.NoError(t, err)

		rate := params.DecryptionFailureRate()
		require.InDelta(t, tt.log2Rate, rate, 6)

		if testing.Short() {
			break
		}
	}
}

func TestFailureDistTools(t *testing.T) {

	// Two fair coins sum to a binomial on {0, 1, 2}.
	coin := uniformDist(0, 1, 1)
	two := convPow(coin, 2)
	require.Equal(t, 0, two.min)
	require.InDeltaSlice(t, []float64{0.25, 0.5, 0.25}, two.pr, 1e-12)

	// Centered binomials carry no bias.
	for _, mu := range []int{6, 8, 10} {
		b := binomialDist(mu)
		require.Equal(t, -mu/2, b.min)
		require.Len(t, b.pr, mu+1)

		var total, mean float64
		for i, p := range b.pr {
			total += p
			mean += float64(b.min+i) * p
		}
		require.InDelta(t, 1, total, 1e-12)
		require.InDelta(t, 0, mean, 1e-12)
	}

	// The product of a symmetric factor stays symmetric.
	u := uniformDist(-4, 3, 1)
	v := binomialDist(8)
	prod := productDist(u, v)
	for i := range prod.pr {
		x := prod.min + i
		require.InDelta(t, prod.pr[i], prod.pr[-x-prod.min], 1e-15)
	}

	// Tails partition the mass around the threshold.
	d := conv(prod, prod)
	var total float64
	for _, p := range d.pr {
		total += p
	}
	require.InDelta(t, total, tailBelow(d, -1)+tailAbove(d, 0), 1e-12)
}
