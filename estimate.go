package saber

import (
	"math"
	"math/big"

	"github.com/lattisec/saber/utils"
	"github.com/lattisec/saber/utils/bignum"
)

// failureDist is a probability mass function over a contiguous integer
// range: pr[i] = P[X = min+i].
type failureDist struct {
	min int
	pr  []float64
}

// DecryptionFailureRate returns the base-two logarithm of the probability
// that an honestly generated ciphertext decapsulates to the wrong shared
// secret.
//
// A message bit survives the rounding chain if and only if the accumulated
// noise of its coefficient lies in [-2^(EQ-2), 2^(EQ-2)); the noise is the
// inner product of the key and ciphertext rounding residues with the two
// binomial secrets, plus the scaled ciphertext compression residue. The
// per-coefficient failure probability is computed exactly by convolution
// powers of the residue-times-secret product distribution, under the
// standard heuristic that the 2*L*N noise terms are independent; the rate
// over all N message bits follows as 1-(1-delta)^N, evaluated in multiple
// precision since delta is far below the float64 rounding unit.
func (p Parameters) DecryptionFailureRate() float64 {

	// centered rounding residue of the EQ->EP key rounding: uniform
	residue := uniformDist(-(1 << (EQ - EP - 1)), 1<<(EQ-EP-1)-1, 1)

	// centered binomial secret coefficient
	secret := binomialDist(p.mu)

	term := productDist(residue, secret)
	noise := convPow(term, 2*p.l*N)

	// scaled residue of the EP->ET ciphertext compression
	shift := 1 << (EP - p.et - 1)
	noise = conv(noise, uniformDist(-shift, shift-1, 1<<(EQ-EP)))

	bound := 1 << (EQ - 2)
	delta := tailBelow(noise, -bound-1) + tailAbove(noise, bound)

	if delta == 0 {
		return math.Inf(-1)
	}

	const prec = 256

	one := bignum.NewFloat(1.0, prec)
	survive := new(big.Float).Sub(one, bignum.NewFloat(delta, prec))
	rate := new(big.Float).Sub(one, bignum.Pow(survive, bignum.NewFloat(N, prec)))

	log2Rate := new(big.Float).Quo(bignum.Log(rate), bignum.Log2(prec))

	f, _ := log2Rate.Float64()
	return f
}

// uniformDist returns the uniform distribution over {stride*k : lo <= k <= hi}.
func uniformDist(lo, hi, stride int) failureDist {
	d := failureDist{min: lo * stride, pr: make([]float64, (hi-lo)*stride+1)}
	w := 1 / float64(hi-lo+1)
	for k := lo; k <= hi; k++ {
		d.pr[(k-lo)*stride] = w
	}
	return d
}

// binomialDist returns the centered binomial distribution of width mu:
// P[X = k] = C(mu, k+mu/2) / 2^mu.
func binomialDist(mu int) failureDist {
	d := failureDist{min: -mu / 2, pr: make([]float64, mu+1)}

	c := 1.0
	for k := 0; k <= mu; k++ {
		d.pr[k] = c / float64(uint64(1)<<mu)
		c = c * float64(mu-k) / float64(k+1)
	}

	return d
}

// productDist returns the distribution of X*Y for independent X and Y.
func productDist(x, y failureDist) failureDist {

	corners := []int{
		x.min * y.min,
		x.min * (y.min + len(y.pr) - 1),
		(x.min + len(x.pr) - 1) * y.min,
		(x.min + len(x.pr) - 1) * (y.min + len(y.pr) - 1),
	}

	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo = utils.MinInt(lo, c)
		hi = utils.MaxInt(hi, c)
	}

	d := failureDist{min: lo, pr: make([]float64, hi-lo+1)}
	for i, px := range x.pr {
		if px == 0 {
			continue
		}
		for j, py := range y.pr {
			d.pr[(x.min+i)*(y.min+j)-lo] += px * py
		}
	}

	return d
}

// conv returns the distribution of X+Y for independent X and Y, trimmed to
// its nonzero support.
func conv(x, y failureDist) failureDist {

	d := failureDist{min: x.min + y.min, pr: make([]float64, len(x.pr)+len(y.pr)-1)}
	for i, px := range x.pr {
		if px == 0 {
			continue
		}
		for j, py := range y.pr {
			d.pr[i+j] += px * py
		}
	}

	return trim(d)
}

// convPow returns the distribution of the sum of n independent copies of x,
// by binary exponentiation over conv.
func convPow(x failureDist, n int) failureDist {

	acc := failureDist{min: 0, pr: []float64{1}}
	base := x

	for n > 0 {
		if n&1 == 1 {
			acc = conv(acc, base)
		}
		if n >>= 1; n > 0 {
			base = conv(base, base)
		}
	}

	return acc
}

// trim drops the leading and trailing zero-probability entries. Entries
// whose true probability underflows float64 vanish here; they lie hundreds
// of binary orders below the failure threshold contributions.
func trim(d failureDist) failureDist {
	lo, hi := 0, len(d.pr)

	for lo < hi && d.pr[lo] == 0 {
		lo++
	}
	for hi > lo && d.pr[hi-1] == 0 {
		hi--
	}

	return failureDist{min: d.min + lo, pr: d.pr[lo:hi]}
}

// tailAbove returns P[X >= bound].
func tailAbove(d failureDist, bound int) float64 {
	var t float64
	for i := len(d.pr) - 1; i >= 0 && d.min+i >= bound; i-- {
		t += d.pr[i]
	}
	return t
}

// tailBelow returns P[X <= bound].
func tailBelow(d failureDist, bound int) float64 {
	var t float64
	for i := 0; i < len(d.pr) && d.min+i <= bound; i++ {
		t += d.pr[i]
	}
	return t
}
