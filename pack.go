package saber

import (
	"fmt"

	"github.com/lattisec/saber/ring"
)

// Packed polynomials are little-endian bitstreams: coefficient i occupies
// bits [i*width, (i+1)*width), and bit b of the stream is bit b mod 8 of byte
// b/8. The generic accessors below work at any width up to 16; the 13-bit and
// 10-bit widths, which dominate the cost of packing keys and ciphertexts,
// additionally have unrolled paths producing the same streams.

// bitsPut writes the width low bits of v at bit offset off of dst. The target
// bits of dst must be zero.
func bitsPut(dst []byte, off, width int, v uint16) {
	x := (uint32(v) & (1<<width - 1)) << (off & 7)
	i := off >> 3
	dst[i] |= byte(x)
	for x >>= 8; x != 0; x >>= 8 {
		i++
		dst[i] |= byte(x)
	}
}

// bitsGet reads width bits at bit offset off of src.
func bitsGet(src []byte, off, width int) uint16 {
	i := off >> 3
	x := uint32(src[i]) >> (off & 7)
	for read := 8 - off&7; read < width; read += 8 {
		i++
		x |= uint32(src[i]) << read
	}
	return uint16(x & (1<<width - 1))
}

func checkPack(p ring.Poly, data []byte, width int) {
	if len(p.Coeffs) != N || len(data) != width*N/8 {
		panic(fmt.Errorf("len(coeffs)=%d len(data)=%d width=%d", len(p.Coeffs), len(data), width))
	}
}

// packPolyQ packs p at EQ bits per coefficient on dst, eight coefficients per
// thirteen bytes.
func packPolyQ(p ring.Poly, dst []byte) {
	checkPack(p, dst, EQ)

	for i := 0; i < N/8; i++ {
		c := p.Coeffs[8*i : 8*i+8]
		d := dst[13*i : 13*i+13]

		d[0] = byte(c[0])
		d[1] = byte(c[0]>>8)&0x1F | byte(c[1]&0x07)<<5
		d[2] = byte(c[1] >> 3)
		d[3] = byte(c[1]>>11)&0x03 | byte(c[2]&0x3F)<<2
		d[4] = byte(c[2]>>6)&0x7F | byte(c[3]&0x01)<<7
		d[5] = byte(c[3] >> 1)
		d[6] = byte(c[3]>>9)&0x0F | byte(c[4]&0x0F)<<4
		d[7] = byte(c[4] >> 4)
		d[8] = byte(c[4]>>12)&0x01 | byte(c[5]&0x7F)<<1
		d[9] = byte(c[5]>>7)&0x3F | byte(c[6]&0x03)<<6
		d[10] = byte(c[6] >> 2)
		d[11] = byte(c[6]>>10)&0x07 | byte(c[7]&0x1F)<<3
		d[12] = byte(c[7] >> 5)
	}
}

// unpackPolyQ unpacks src at EQ bits per coefficient on p.
func unpackPolyQ(src []byte, p ring.Poly) {
	checkPack(p, src, EQ)

	for i := 0; i < N/8; i++ {
		s := src[13*i : 13*i+13]
		c := p.Coeffs[8*i : 8*i+8]

		c[0] = uint16(s[0]) | uint16(s[1]&0x1F)<<8
		c[1] = uint16(s[1])>>5 | uint16(s[2])<<3 | uint16(s[3]&0x03)<<11
		c[2] = uint16(s[3])>>2 | uint16(s[4]&0x7F)<<6
		c[3] = uint16(s[4])>>7 | uint16(s[5])<<1 | uint16(s[6]&0x0F)<<9
		c[4] = uint16(s[6])>>4 | uint16(s[7])<<4 | uint16(s[8]&0x01)<<12
		c[5] = uint16(s[8])>>1 | uint16(s[9]&0x3F)<<7
		c[6] = uint16(s[9])>>6 | uint16(s[10])<<2 | uint16(s[11]&0x07)<<10
		c[7] = uint16(s[11])>>3 | uint16(s[12])<<5
	}
}

// packPolyP packs p at EP bits per coefficient on dst, four coefficients per
// five bytes.
func packPolyP(p ring.Poly, dst []byte) {
	checkPack(p, dst, EP)

	for i := 0; i < N/4; i++ {
		c := p.Coeffs[4*i : 4*i+4]
		d := dst[5*i : 5*i+5]

		d[0] = byte(c[0])
		d[1] = byte(c[0]>>8)&0x03 | byte(c[1]&0x3F)<<2
		d[2] = byte(c[1]>>6)&0x0F | byte(c[2]&0x0F)<<4
		d[3] = byte(c[2]>>4)&0x3F | byte(c[3]&0x03)<<6
		d[4] = byte(c[3] >> 2)
	}
}

// unpackPolyP unpacks src at EP bits per coefficient on p.
func unpackPolyP(src []byte, p ring.Poly) {
	checkPack(p, src, EP)

	for i := 0; i < N/4; i++ {
		s := src[5*i : 5*i+5]
		c := p.Coeffs[4*i : 4*i+4]

		c[0] = uint16(s[0]) | uint16(s[1]&0x03)<<8
		c[1] = uint16(s[1])>>2 | uint16(s[2]&0x0F)<<6
		c[2] = uint16(s[2])>>4 | uint16(s[3]&0x3F)<<4
		c[3] = uint16(s[3])>>6 | uint16(s[4])<<2
	}
}

// packPolyT packs p at et bits per coefficient on dst.
func packPolyT(p ring.Poly, et int, dst []byte) {
	checkPack(p, dst, et)

	for i := range dst {
		dst[i] = 0
	}
	for i, c := range p.Coeffs {
		bitsPut(dst, i*et, et, c)
	}
}

// unpackPolyT unpacks src at et bits per coefficient on p.
func unpackPolyT(src []byte, et int, p ring.Poly) {
	checkPack(p, src, et)

	for i := range p.Coeffs {
		p.Coeffs[i] = bitsGet(src, i*et, et)
	}
}

// packVecQ packs the polynomials of v back to back at EQ bits per
// coefficient on dst.
func packVecQ(v []ring.Poly, dst []byte) {
	for i := range v {
		packPolyQ(v[i], dst[i*polyBytesQ:(i+1)*polyBytesQ])
	}
}

// unpackVecQ unpacks len(v) polynomials packed back to back at EQ bits per
// coefficient from src on v.
func unpackVecQ(src []byte, v []ring.Poly) {
	for i := range v {
		unpackPolyQ(src[i*polyBytesQ:(i+1)*polyBytesQ], v[i])
	}
}

// packVecP packs the polynomials of v back to back at EP bits per
// coefficient on dst.
func packVecP(v []ring.Poly, dst []byte) {
	for i := range v {
		packPolyP(v[i], dst[i*polyBytesP:(i+1)*polyBytesP])
	}
}

// unpackVecP unpacks len(v) polynomials packed back to back at EP bits per
// coefficient from src on v.
func unpackVecP(src []byte, v []ring.Poly) {
	for i := range v {
		unpackPolyP(src[i*polyBytesP:(i+1)*polyBytesP], v[i])
	}
}

// msgUnpack spreads the MessageSize-byte message msg on the binary
// polynomial p, least significant bit first.
func msgUnpack(msg []byte, p ring.Poly) {
	checkPack(p, msg, 1)

	for i := 0; i < MessageSize; i++ {
		for j := 0; j < 8; j++ {
			p.Coeffs[8*i+j] = uint16(msg[i]>>j) & 1
		}
	}
}

// msgPack collects the low bit of each coefficient of p on the
// MessageSize-byte message msg.
func msgPack(p ring.Poly, msg []byte) {
	checkPack(p, msg, 1)

	for i := 0; i < MessageSize; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			b |= byte(p.Coeffs[8*i+j]&1) << j
		}
		msg[i] = b
	}
}
