package saber

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lattisec/saber/ring"
	"github.com/lattisec/saber/utils/sampling"
)

type packTestContext struct {
	ringQ *ring.Ring
	ringP *ring.Ring
	prng  sampling.PRNG
}

func genPackTestContext(t *testing.T) *packTestContext {

	tc := new(packTestContext)

	var err error
	if tc.ringQ, err = ring.NewRing(N, EQ); err != nil {
		t.Fatal(err)
	}
	if tc.ringP, err = ring.NewRing(N, EP); err != nil {
		t.Fatal(err)
	}
	if tc.prng, err = sampling.NewKeyedPRNG([]byte{'p', 'a', 'c', 'k'}); err != nil {
		t.Fatal(err)
	}

	return tc
}

// randomPoly returns a polynomial of r with uniform coefficients of the
// given bit width.
func (tc *packTestContext) randomPoly(r *ring.Ring, width int) ring.Poly {

	p := r.NewPoly()

	buff := make([]byte, 2*r.N)
	if _, err := tc.prng.Read(buff); err != nil {
		panic(err)
	}

	mask := uint16(1)<<width - 1
	for i := range p.Coeffs {
		p.Coeffs[i] = (uint16(buff[2*i]) | uint16(buff[2*i+1])<<8) & mask
	}

	return p
}

func TestPack(t *testing.T) {

	tc := genPackTestContext(t)

	testBitsRoundTrip(tc, t)
	testPackMatchesBits(tc, t)
	testPackImpulse(tc, t)
	testPackVectors(tc, t)
	testMsgRoundTrip(tc, t)
	testPackPanics(tc, t)
}

func testBitsRoundTrip(tc *packTestContext, t *testing.T) {

	for _, width := range []int{3, 4, 6, 10, 13} {
		t.Run(fmt.Sprintf("BitsRoundTrip/Width=%d", width), func(t *testing.T) {

			p := tc.randomPoly(tc.ringQ, width)

			data := make([]byte, width*N/8)
			for i, c := range p.Coeffs {
				bitsPut(data, i*width, width, c)
			}

			for i, c := range p.Coeffs {
				require.Equal(t, c, bitsGet(data, i*width, width))
			}
		})
	}
}

// testPackMatchesBits pins the unrolled 13-bit and 10-bit codecs to the
// generic accessors, in both directions.
func testPackMatchesBits(tc *packTestContext, t *testing.T) {

	t.Run("PackMatchesBits/Q", func(t *testing.T) {

		p := tc.randomPoly(tc.ringQ, EQ)

		unrolled := make([]byte, polyBytesQ)
		packPolyQ(p, unrolled)

		generic := make([]byte, polyBytesQ)
		for i, c := range p.Coeffs {
			bitsPut(generic, i*EQ, EQ, c)
		}
		require.Equal(t, generic, unrolled)

		out := tc.ringQ.NewPoly()
		unpackPolyQ(unrolled, out)
		require.True(t, p.Equal(&out))

		for i := range p.Coeffs {
			require.Equal(t, p.Coeffs[i], bitsGet(unrolled, i*EQ, EQ))
		}
	})

	t.Run("PackMatchesBits/P", func(t *testing.T) {

		p := tc.randomPoly(tc.ringP, EP)

		unrolled := make([]byte, polyBytesP)
		packPolyP(p, unrolled)

		generic := make([]byte, polyBytesP)
		for i, c := range p.Coeffs {
			bitsPut(generic, i*EP, EP, c)
		}
		require.Equal(t, generic, unrolled)

		out := tc.ringP.NewPoly()
		unpackPolyP(unrolled, out)
		require.True(t, p.Equal(&out))
	})

	for _, et := range []int{3, 4, 6} {
		t.Run(fmt.Sprintf("PackMatchesBits/T/ET=%d", et), func(t *testing.T) {

			p := tc.randomPoly(tc.ringP, et)

			data := make([]byte, et*N/8)
			packPolyT(p, et, data)

			out := tc.ringP.NewPoly()
			unpackPolyT(data, et, out)
			require.True(t, p.Equal(&out))
		})
	}
}

// testPackImpulse pins the bit order of the stream: coefficient zero
// occupies the low bits of byte zero.
func testPackImpulse(tc *packTestContext, t *testing.T) {

	t.Run("PackImpulse", func(t *testing.T) {

		p := tc.ringQ.NewPoly()
		data := make([]byte, polyBytesQ)

		p.Coeffs[0] = 1
		packPolyQ(p, data)
		require.Equal(t, byte(0x01), data[0])
		for _, b := range data[1:] {
			require.Equal(t, byte(0), b)
		}

		p.Coeffs[0] = 0
		p.Coeffs[1] = 1 // Bit 13 of the stream
		packPolyQ(p, data)
		require.Equal(t, byte(0x00), data[0])
		require.Equal(t, byte(0x20), data[1])

		for i := range p.Coeffs {
			p.Coeffs[i] = 1<<EQ - 1
		}
		packPolyQ(p, data)
		for _, b := range data {
			require.Equal(t, byte(0xFF), b)
		}

		q := tc.ringP.NewPoly()
		data = make([]byte, polyBytesP)

		q.Coeffs[1] = 1 // Bit 10 of the stream
		packPolyP(q, data)
		require.Equal(t, byte(0x00), data[0])
		require.Equal(t, byte(0x04), data[1])

		for i := range q.Coeffs {
			q.Coeffs[i] = 1<<EP - 1
		}
		packPolyP(q, data)
		for _, b := range data {
			require.Equal(t, byte(0xFF), b)
		}

		// ET-bit impulse at coefficient one lands on bit ET.
		for _, et := range []int{3, 4, 6} {
			r := tc.ringP.NewPoly()
			r.Coeffs[1] = 1
			data := make([]byte, et*N/8)
			packPolyT(r, et, data)
			require.Equal(t, byte(1<<et), data[0])
		}
	})
}

func testPackVectors(tc *packTestContext, t *testing.T) {

	t.Run("PackVectors", func(t *testing.T) {

		l := 3

		vq := make([]ring.Poly, l)
		for i := range vq {
			vq[i] = tc.randomPoly(tc.ringQ, EQ)
		}

		data := make([]byte, l*polyBytesQ)
		packVecQ(vq, data)

		out := tc.ringQ.NewPolyVector(l)
		unpackVecQ(data, out)
		for i := range vq {
			require.True(t, vq[i].Equal(&out[i]))
		}

		vp := make([]ring.Poly, l)
		for i := range vp {
			vp[i] = tc.randomPoly(tc.ringP, EP)
		}

		data = make([]byte, l*polyBytesP)
		packVecP(vp, data)

		out = tc.ringP.NewPolyVector(l)
		unpackVecP(data, out)
		for i := range vp {
			require.True(t, vp[i].Equal(&out[i]))
		}
	})
}

func testMsgRoundTrip(tc *packTestContext, t *testing.T) {

	t.Run("MsgRoundTrip", func(t *testing.T) {

		msg := make([]byte, MessageSize)
		if _, err := tc.prng.Read(msg); err != nil {
			t.Fatal(err)
		}

		p := tc.ringQ.NewPoly()
		msgUnpack(msg, p)

		for i, c := range p.Coeffs {
			require.Equal(t, uint16(msg[i>>3]>>(i&7))&1, c)
		}

		out := make([]byte, MessageSize)
		msgPack(p, out)
		require.Equal(t, msg, out)
	})
}

func testPackPanics(tc *packTestContext, t *testing.T) {

	t.Run("PackPanics", func(t *testing.T) {

		p := tc.ringQ.NewPoly()

		require.Panics(t, func() { packPolyQ(p, make([]byte, polyBytesQ-1)) })
		require.Panics(t, func() { unpackPolyQ(make([]byte, polyBytesQ-1), p) })
		require.Panics(t, func() { packPolyP(p, make([]byte, polyBytesQ)) })
		require.Panics(t, func() { packPolyT(p, 4, make([]byte, 3*N/8)) })
	})
}
