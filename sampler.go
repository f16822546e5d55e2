package saber

import (
	"encoding/binary"
	"fmt"

	"github.com/lattisec/saber/ring"
	"github.com/lattisec/saber/utils/structs"
)

// genMatrix expands the SeedSize-byte seed seedA into the L x L public
// matrix a, row by row at EQ bits per coefficient. The expansion is
// deterministic: equal seeds yield equal matrices.
func genMatrix(p Parameters, h Hasher, seedA []byte, a structs.Matrix[ring.Poly]) {
	l := p.L()

	buf := make([]byte, l*l*polyBytesQ)
	h.XOF(buf, seedA)

	for i := 0; i < l; i++ {
		for j := 0; j < l; j++ {
			unpackPolyQ(buf[(i*l+j)*polyBytesQ:(i*l+j+1)*polyBytesQ], a[i][j])
		}
	}
}

// genSecret expands the NoiseSeedSize-byte seed into the secret vector s,
// with coefficients drawn from the centered binomial distribution of width
// Mu and reduced modulo q. The expansion is deterministic: equal seeds yield
// equal secrets.
func genSecret(p Parameters, h Hasher, seed []byte, s []ring.Poly) {
	cb := p.coinBytes()

	buf := make([]byte, p.L()*cb)
	h.XOF(buf, seed)

	for i := range s {
		cbd(buf[i*cb:(i+1)*cb], p.Mu(), s[i], p.RingQ().Mask)
	}
}

// cbd maps mu*N/8 uniformly random bytes of buf on the coefficients of pol,
// each drawn from the centered binomial distribution of width mu: the
// difference of the bit counts of two mu/2-bit strings, reduced below the
// modulus. The bit counting packs mu/2 independent counters in one word, one
// per output half-sample, and accumulates the spread input into all counters
// at once.
func cbd(buf []byte, mu int, pol ring.Poly, mask uint16) {
	switch mu {
	case 10:
		cbd10(buf, pol, mask)
	case 8:
		cbd8(buf, pol, mask)
	case 6:
		cbd6(buf, pol, mask)
	default:
		panic(fmt.Errorf("unsupported binomial width %d", mu))
	}
}

// cbd10: five bytes per four coefficients, counters in 5-bit groups.
func cbd10(buf []byte, pol ring.Poly, mask uint16) {
	for i := 0; i < len(pol.Coeffs)/4; i++ {
		c := buf[5*i : 5*i+5]
		t := uint64(c[0]) | uint64(c[1])<<8 | uint64(c[2])<<16 | uint64(c[3])<<24 | uint64(c[4])<<32

		var d uint64
		for j := 0; j < 5; j++ {
			d += (t >> j) & 0x0842108421
		}

		for j := 0; j < 4; j++ {
			a := uint16(d>>(10*j)) & 0x1F
			b := uint16(d>>(10*j+5)) & 0x1F
			pol.Coeffs[4*i+j] = (a - b) & mask
		}
	}
}

// cbd8: four bytes per four coefficients, counters in nibbles.
func cbd8(buf []byte, pol ring.Poly, mask uint16) {
	for i := 0; i < len(pol.Coeffs)/4; i++ {
		t := binary.LittleEndian.Uint32(buf[4*i:])

		var d uint32
		for j := 0; j < 4; j++ {
			d += (t >> j) & 0x11111111
		}

		for j := 0; j < 4; j++ {
			a := uint16(d>>(8*j)) & 0xF
			b := uint16(d>>(8*j+4)) & 0xF
			pol.Coeffs[4*i+j] = (a - b) & mask
		}
	}
}

// cbd6: three bytes per four coefficients, counters in 3-bit groups.
func cbd6(buf []byte, pol ring.Poly, mask uint16) {
	for i := 0; i < len(pol.Coeffs)/4; i++ {
		c := buf[3*i : 3*i+3]
		t := uint32(c[0]) | uint32(c[1])<<8 | uint32(c[2])<<16

		var d uint32
		for j := 0; j < 3; j++ {
			d += (t >> j) & 0x249249
		}

		for j := 0; j < 4; j++ {
			a := uint16(d>>(6*j)) & 0x7
			b := uint16(d>>(6*j+3)) & 0x7
			pol.Coeffs[4*i+j] = (a - b) & mask
		}
	}
}
