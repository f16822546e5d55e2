package ring

import (
	"fmt"
)

// Inverses of the odd interpolation divisors modulo 2^32.
const (
	inv3 uint32 = 0xAAAAAAAB
	inv5 uint32 = 0xCCCCCCCD
)

// toomScratch holds the intermediate buffers of one four-way Toom-Cook
// multiplication: the seven evaluations of each operand (blocks of n/4
// coefficients), the seven block products (2(n/4)-1 coefficients) and the
// recomposition accumulator (2n-1 coefficients).
type toomScratch struct {
	ea  [7][]uint32
	eb  [7][]uint32
	w   [7][]uint32
	acc []uint32
}

func newToomScratch(n int) *toomScratch {

	k := n >> 2

	sc := new(toomScratch)

	buf := make([]uint32, 14*k+7*(2*k-1)+2*n-1)

	for i := 0; i < 7; i++ {
		sc.ea[i], buf = buf[:k], buf[k:]
	}

	for i := 0; i < 7; i++ {
		sc.eb[i], buf = buf[:k], buf[k:]
	}

	for i := 0; i < 7; i++ {
		sc.w[i], buf = buf[:2*k-1], buf[2*k-1:]
	}

	sc.acc = buf

	return sc
}

// MulAddToom multiplies p1 by p2 in Z_{2^LogQ}[X]/(X^N + 1) with four-way
// Toom-Cook and adds the result on p3. The operands are split into four
// blocks of N/4 coefficients, evaluated at the seven points
// {0, 1, -1, 2, -2, 3, inf}, the block products are computed with the
// schoolbook algorithm and the product blocks are recovered by
// interpolation.
//
// All intermediates are carried modulo 2^32. The interpolation divides by 2,
// 6, 12, 24 and 40: the odd factors are removed by multiplication with their
// inverse modulo 2^32 and the powers of two by shifts, which are exact since
// the shifted values are divisible integers. The longest shift chain
// discards 4 bits, so every recovered coefficient is exact modulo 2^28,
// which covers any modulus up to 2^MaxLogQ.
func (r *Ring) MulAddToom(p1, p2, p3 Poly) {
	n := r.N

	if len(p1.Coeffs) != n || len(p2.Coeffs) != n || len(p3.Coeffs) != n {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d len(p3)=%d ring degree=%d", len(p1.Coeffs), len(p2.Coeffs), len(p3.Coeffs), n))
	}

	sc := r.pool.Get()
	mulAddToom(p1.Coeffs, p2.Coeffs, p3.Coeffs, n, r.Mask, sc)
	r.pool.Put(sc)
}

func mulAddToom(p1, p2, p3 []uint16, n int, mask uint16, sc *toomScratch) {
	toomEvaluate(p1, n, &sc.ea)
	toomEvaluate(p2, n, &sc.eb)
	toomPointwise(&sc.ea, &sc.eb, &sc.w, n>>2)
	toomInterpolate(&sc.w)
	toomRecompose(&sc.w, sc.acc, p3, n, mask)
}

// toomEvaluate splits p into four blocks A0..A3 of n/4 coefficients and
// evaluates A0 + A1 y + A2 y^2 + A3 y^3 at y in {0, 1, -1, 2, -2, 3, inf},
// coefficient-wise on e[0]..e[6].
func toomEvaluate(p []uint16, n int, e *[7][]uint32) {

	k := n >> 2

	a0, a1, a2, a3 := p[:k], p[k:2*k], p[2*k:3*k], p[3*k:]
	e0, e1, e2, e3, e4, e5, e6 := e[0], e[1], e[2], e[3], e[4], e[5], e[6]

	for j := 0; j < k; j++ {

		x0 := uint32(a0[j])
		x1 := uint32(a1[j])
		x2 := uint32(a2[j])
		x3 := uint32(a3[j])

		s02 := x0 + x2
		s13 := x1 + x3
		t02 := x0 + x2<<2
		t13 := x1<<1 + x3<<3

		e0[j] = x0
		e1[j] = s02 + s13
		e2[j] = s02 - s13
		e3[j] = t02 + t13
		e4[j] = t02 - t13
		e5[j] = x0 + 3*x1 + 9*x2 + 27*x3
		e6[j] = x3
	}
}

// toomPointwise multiplies the seven evaluation pairs block-wise with the
// schoolbook algorithm, accumulating modulo 2^32.
func toomPointwise(ea, eb, w *[7][]uint32, k int) {

	for i := 0; i < 7; i++ {

		wi := w[i]
		for j := range wi {
			wi[j] = 0
		}

		eai, ebi := ea[i], eb[i]

		for u := 0; u < k; u++ {
			x := eai[u]
			wiTmp := wi[u:]
			for v := 0; v < k; v++ {
				wiTmp[v] += x * ebi[v]
			}
		}
	}
}

// toomInterpolate recovers, coefficient-wise and in place, the seven blocks
// c0..c6 of the product from its evaluations w0..w6, where
// w(y) = c0 + c1 y + ... + c6 y^6:
//
//	z1 = w(1) + w(-1) - 2 w(0) - 2 c6           = 2 c2 +  2 c4
//	z2 = w(2) + w(-2) - 2 w(0) - 128 c6         = 8 c2 + 32 c4
//	x1 = w(1) - w(-1)                           = 2 (c1 + c3 + c5)
//	x2 = w(2) - w(-2)                           = 4 (c1 + 4 c3 + 16 c5)
//	t  = 2 (w(3) - w(0)) + 15 z1 - 6 z2 - 1458 c6 = 6 (c1 + 9 c3 + 81 c5)
//
// from which c4 = (z2 - 4 z1)/24, c2 = z1/2 - c4, and with h1 = x1/2,
// h9 = t/6: v1 = (x2 - 2 x1)/12 = c3 + 5 c5, c5 = (h9 - h1 - 8 v1)/40,
// c3 = v1 - 5 c5, c1 = h1 - c3 - c5.
func toomInterpolate(w *[7][]uint32) {

	w0v, w1v, w2v, w3v, w4v, w5v, w6v := w[0], w[1], w[2], w[3], w[4], w[5], w[6]

	for j := range w0v {

		w0 := w0v[j]
		w1 := w1v[j]
		w2 := w2v[j]
		w3 := w3v[j]
		w4 := w4v[j]
		w5 := w5v[j]
		w6 := w6v[j]

		z1 := w1 + w2 - (w0+w6)<<1
		z2 := w3 + w4 - w0<<1 - w6<<7

		c4 := (z2 - z1<<2) * inv3 >> 3
		c2 := z1>>1 - c4

		x1 := w1 - w2
		x2 := w3 - w4
		t := (w5-w0)<<1 + 15*z1 - 6*z2 - 1458*w6

		h1 := x1 >> 1
		h9 := t * inv3 >> 1
		v1 := (x2 - x1<<1) * inv3 >> 2

		c5 := (h9 - h1 - v1<<3) * inv5 >> 3
		c3 := v1 - 5*c5
		c1 := h1 - c3 - c5

		w1v[j] = c1
		w2v[j] = c2
		w3v[j] = c3
		w4v[j] = c4
		w5v[j] = c5
	}
}

// toomRecompose sums the seven product blocks at their offsets, reduces
// modulo X^N + 1 and accumulates the result on p3 modulo 2^LogQ.
func toomRecompose(w *[7][]uint32, acc []uint32, p3 []uint16, n int, mask uint16) {

	k := n >> 2

	for i := range acc {
		acc[i] = 0
	}

	for i := 0; i < 7; i++ {
		wi := w[i]
		accTmp := acc[i*k:]
		for j := 0; j < 2*k-1; j++ {
			accTmp[j] += wi[j]
		}
	}

	// X^N = -1
	for i := n; i < 2*n-1; i++ {
		acc[i-n] -= acc[i]
	}

	m := uint32(mask)
	for i := 0; i < n; i++ {
		p3[i] = uint16((uint32(p3[i]) + acc[i]) & m)
	}
}
