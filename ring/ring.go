// Package ring implements modular arithmetic for polynomials in
// Z_{2^LogQ}[X]/(X^N + 1) with power-of-two moduli, including:
//
//   - coefficient-wise operations with the output argument last;
//   - negacyclic polynomial multiplication, either schoolbook or four-way
//     Toom-Cook with evaluation points {0, 1, -1, 2, -2, 3, inf};
//   - batched operations over polynomials laid out side by side, processed
//     stage by stage and bit-for-bit equivalent to the single-polynomial
//     operations applied slot by slot.
package ring

import (
	"fmt"

	"github.com/lattisec/saber/utils/structs"
)

// MinN is the smallest supported ring degree.
const MinN = 16

// MaxLogQ is the largest supported modulus exponent; coefficients are stored
// in uint16.
const MaxLogQ = 16

// Ring keeps the degree and modulus of the polynomial ring
// Z_{2^LogQ}[X]/(X^N + 1), together with a pool of multiplication scratch
// buffers. All its methods are thread-safe and leave their output with
// coefficients reduced below 2^LogQ.
type Ring struct {

	// N is the ring degree, i.e. the number of coefficients of a polynomial.
	N int

	// LogQ is the base-two logarithm of the modulus.
	LogQ int

	// Mask is 2^LogQ - 1.
	Mask uint16

	pool *structs.SyncPool[*toomScratch]
}

// NewRing creates a new Ring of degree n with modulus 2^logQ. The degree must
// be a power of two greater than or equal to MinN and logQ must lie in
// [1, MaxLogQ].
func NewRing(n, logQ int) (r *Ring, err error) {
	if n < MinN || n&(n-1) != 0 {
		return nil, fmt.Errorf("invalid ring degree n=%d: must be a power of two >= %d", n, MinN)
	}

	if logQ < 1 || logQ > MaxLogQ {
		return nil, fmt.Errorf("invalid modulus exponent logQ=%d: must lie in [1, %d]", logQ, MaxLogQ)
	}

	r = &Ring{N: n, LogQ: logQ, Mask: uint16(1<<logQ - 1)}
	r.pool = structs.NewSyncPool(func() *toomScratch { return newToomScratch(n) })

	return r, nil
}

// Modulus returns 2^LogQ.
func (r *Ring) Modulus() uint64 {
	return 1 << r.LogQ
}

// Add adds p1 to p2 coefficient-wise and returns the result on p3.
func (r *Ring) Add(p1, p2, p3 Poly) {
	addVec(p1.Coeffs, p2.Coeffs, p3.Coeffs, r.Mask)
}

// Sub subtracts p2 from p1 coefficient-wise and returns the result on p3.
func (r *Ring) Sub(p1, p2, p3 Poly) {
	subVec(p1.Coeffs, p2.Coeffs, p3.Coeffs, r.Mask)
}

// Neg sets each coefficient of p1 to its additive inverse and returns the
// result on p2.
func (r *Ring) Neg(p1, p2 Poly) {
	negVec(p1.Coeffs, p2.Coeffs, r.Mask)
}

// Reduce reduces each coefficient of p1 below the modulus and returns the
// result on p2.
func (r *Ring) Reduce(p1, p2 Poly) {
	maskVec(p1.Coeffs, p2.Coeffs, r.Mask)
}

// AddScalar adds scalar to each coefficient of p1 and returns the result on
// p2.
func (r *Ring) AddScalar(p1 Poly, scalar uint16, p2 Poly) {
	addScalarVec(p1.Coeffs, scalar, p2.Coeffs, r.Mask)
}

// MulScalar multiplies each coefficient of p1 by scalar and returns the
// result on p2.
func (r *Ring) MulScalar(p1 Poly, scalar uint16, p2 Poly) {
	mulScalarVec(p1.Coeffs, scalar, p2.Coeffs, r.Mask)
}

// AddScalarThenShift adds scalar to each coefficient of p1, reduces the sum
// below the modulus and shifts it right by shift bits, returning the result
// on p2. The output coefficients lie below 2^(LogQ-shift); this is the
// rounding step moving a polynomial from the ring modulo 2^LogQ to the ring
// modulo 2^(LogQ-shift).
func (r *Ring) AddScalarThenShift(p1 Poly, scalar uint16, shift int, p2 Poly) {
	addScalarShiftVec(p1.Coeffs, scalar, shift, p2.Coeffs, r.Mask)
}

// MulAddSchoolbook multiplies p1 by p2 in Z_{2^LogQ}[X]/(X^N + 1) with the
// quadratic schoolbook algorithm and adds the result on p3. It is the
// reference against which the Toom-Cook path is validated.
func (r *Ring) MulAddSchoolbook(p1, p2, p3 Poly) {
	n := r.N

	if len(p1.Coeffs) != n || len(p2.Coeffs) != n || len(p3.Coeffs) != n {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d len(p3)=%d ring degree=%d", len(p1.Coeffs), len(p2.Coeffs), len(p3.Coeffs), n))
	}

	mulAddSchoolbook(p1.Coeffs, p2.Coeffs, p3.Coeffs, n, r.Mask)
}

func mulAddSchoolbook(p1, p2, p3 []uint16, n int, mask uint16) {

	acc := make([]uint32, 2*n-1)

	for i := 0; i < n; i++ {
		x := uint32(p1[i])
		accTmp := acc[i:]
		for j := 0; j < n; j++ {
			accTmp[j] += x * uint32(p2[j])
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
