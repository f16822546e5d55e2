package ring

import (
	"fmt"
	"unsafe"
)

// addVec evaluates p3 = (p1 + p2) & mask.
// p1, p2, p3 must be of the same size.
func addVec(p1, p2, p3 []uint16, mask uint16) {

	N := len(p1)

	if len(p2) != N || len(p3) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d len(p3)=%d", N, len(p2), len(p3)))
	}

	for j := 0; j < N-(N&15); j = j + 16 {

		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		x := (*[16]uint16)(unsafe.Pointer(&p1[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		y := (*[16]uint16)(unsafe.Pointer(&p2[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		z := (*[16]uint16)(unsafe.Pointer(&p3[j]))

		z[0] = (x[0] + y[0]) & mask
		z[1] = (x[1] + y[1]) & mask
		z[2] = (x[2] + y[2]) & mask
		z[3] = (x[3] + y[3]) & mask
		z[4] = (x[4] + y[4]) & mask
		z[5] = (x[5] + y[5]) & mask
		z[6] = (x[6] + y[6]) & mask
		z[7] = (x[7] + y[7]) & mask
		z[8] = (x[8] + y[8]) & mask
		z[9] = (x[9] + y[9]) & mask
		z[10] = (x[10] + y[10]) & mask
		z[11] = (x[11] + y[11]) & mask
		z[12] = (x[12] + y[12]) & mask
		z[13] = (x[13] + y[13]) & mask
		z[14] = (x[14] + y[14]) & mask
		z[15] = (x[15] + y[15]) & mask
	}

	for i := N - (N & 15); i < N; i++ {
		p3[i] = (p1[i] + p2[i]) & mask
	}
}

// subVec evaluates p3 = (p1 - p2) & mask.
// p1, p2, p3 must be of the same size.
func subVec(p1, p2, p3 []uint16, mask uint16) {

	N := len(p1)

	if len(p2) != N || len(p3) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d len(p3)=%d", N, len(p2), len(p3)))
	}

	for j := 0; j < N-(N&15); j = j + 16 {

		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		x := (*[16]uint16)(unsafe.Pointer(&p1[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		y := (*[16]uint16)(unsafe.Pointer(&p2[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		z := (*[16]uint16)(unsafe.Pointer(&p3[j]))

		z[0] = (x[0] - y[0]) & mask
		z[1] = (x[1] - y[1]) & mask
		z[2] = (x[2] - y[2]) & mask
		z[3] = (x[3] - y[3]) & mask
		z[4] = (x[4] - y[4]) & mask
		z[5] = (x[5] - y[5]) & mask
		z[6] = (x[6] - y[6]) & mask
		z[7] = (x[7] - y[7]) & mask
		z[8] = (x[8] - y[8]) & mask
		z[9] = (x[9] - y[9]) & mask
		z[10] = (x[10] - y[10]) & mask
		z[11] = (x[11] - y[11]) & mask
		z[12] = (x[12] - y[12]) & mask
		z[13] = (x[13] - y[13]) & mask
		z[14] = (x[14] - y[14]) & mask
		z[15] = (x[15] - y[15]) & mask
	}

	for i := N - (N & 15); i < N; i++ {
		p3[i] = (p1[i] - p2[i]) & mask
	}
}

// negVec evaluates p2 = -p1 & mask.
// p1, p2 must be of the same size.
func negVec(p1, p2 []uint16, mask uint16) {

	N := len(p1)

	if len(p2) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d", N, len(p2)))
	}

	for j := 0; j < N-(N&15); j = j + 16 {

		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		x := (*[16]uint16)(unsafe.Pointer(&p1[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		z := (*[16]uint16)(unsafe.Pointer(&p2[j]))

		z[0] = -x[0] & mask
		z[1] = -x[1] & mask
		z[2] = -x[2] & mask
		z[3] = -x[3] & mask
		z[4] = -x[4] & mask
		z[5] = -x[5] & mask
		z[6] = -x[6] & mask
		z[7] = -x[7] & mask
		z[8] = -x[8] & mask
		z[9] = -x[9] & mask
		z[10] = -x[10] & mask
		z[11] = -x[11] & mask
		z[12] = -x[12] & mask
		z[13] = -x[13] & mask
		z[14] = -x[14] & mask
		z[15] = -x[15] & mask
	}

	for i := N - (N & 15); i < N; i++ {
		p2[i] = -p1[i] & mask
	}
}

// maskVec evaluates p2 = p1 & mask.
// p1, p2 must be of the same size.
func maskVec(p1, p2 []uint16, mask uint16) {

	N := len(p1)

	if len(p2) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d", N, len(p2)))
	}

	for j := 0; j < N-(N&15); j = j + 16 {

		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		x := (*[16]uint16)(unsafe.Pointer(&p1[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		z := (*[16]uint16)(unsafe.Pointer(&p2[j]))

		z[0] = x[0] & mask
		z[1] = x[1] & mask
		z[2] = x[2] & mask
		z[3] = x[3] & mask
		z[4] = x[4] & mask
		z[5] = x[5] & mask
		z[6] = x[6] & mask
		z[7] = x[7] & mask
		z[8] = x[8] & mask
		z[9] = x[9] & mask
		z[10] = x[10] & mask
		z[11] = x[11] & mask
		z[12] = x[12] & mask
		z[13] = x[13] & mask
		z[14] = x[14] & mask
		z[15] = x[15] & mask
	}

	for i := N - (N & 15); i < N; i++ {
		p2[i] = p1[i] & mask
	}
}

// addScalarVec evaluates p2 = (p1 + scalar) & mask.
// p1, p2 must be of the same size.
func addScalarVec(p1 []uint16, scalar uint16, p2 []uint16, mask uint16) {

	N := len(p1)

	if len(p2) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d", N, len(p2)))
	}

	for j := 0; j < N-(N&15); j = j + 16 {

		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		x := (*[16]uint16)(unsafe.Pointer(&p1[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		z := (*[16]uint16)(unsafe.Pointer(&p2[j]))

		z[0] = (x[0] + scalar) & mask
		z[1] = (x[1] + scalar) & mask
		z[2] = (x[2] + scalar) & mask
		z[3] = (x[3] + scalar) & mask
		z[4] = (x[4] + scalar) & mask
		z[5] = (x[5] + scalar) & mask
		z[6] = (x[6] + scalar) & mask
		z[7] = (x[7] + scalar) & mask
		z[8] = (x[8] + scalar) & mask
		z[9] = (x[9] + scalar) & mask
		z[10] = (x[10] + scalar) & mask
		z[11] = (x[11] + scalar) & mask
		z[12] = (x[12] + scalar) & mask
		z[13] = (x[13] + scalar) & mask
		z[14] = (x[14] + scalar) & mask
		z[15] = (x[15] + scalar) & mask
	}

	for i := N - (N & 15); i < N; i++ {
		p2[i] = (p1[i] + scalar) & mask
	}
}

// addScalarShiftVec evaluates p2 = ((p1 + scalar) & mask) >> shift.
// p1, p2 must be of the same size.
func addScalarShiftVec(p1 []uint16, scalar uint16, shift int, p2 []uint16, mask uint16) {

	N := len(p1)

	if len(p2) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d", N, len(p2)))
	}

	s := uint(shift)

	for j := 0; j < N-(N&15); j = j + 16 {

		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		x := (*[16]uint16)(unsafe.Pointer(&p1[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		z := (*[16]uint16)(unsafe.Pointer(&p2[j]))

		z[0] = ((x[0] + scalar) & mask) >> s
		z[1] = ((x[1] + scalar) & mask) >> s
		z[2] = ((x[2] + scalar) & mask) >> s
		z[3] = ((x[3] + scalar) & mask) >> s
		z[4] = ((x[4] + scalar) & mask) >> s
		z[5] = ((x[5] + scalar) & mask) >> s
		z[6] = ((x[6] + scalar) & mask) >> s
		z[7] = ((x[7] + scalar) & mask) >> s
		z[8] = ((x[8] + scalar) & mask) >> s
		z[9] = ((x[9] + scalar) & mask) >> s
		z[10] = ((x[10] + scalar) & mask) >> s
		z[11] = ((x[11] + scalar) & mask) >> s
		z[12] = ((x[12] + scalar) & mask) >> s
		z[13] = ((x[13] + scalar) & mask) >> s
		z[14] = ((x[14] + scalar) & mask) >> s
		z[15] = ((x[15] + scalar) & mask) >> s
	}

	for i := N - (N & 15); i < N; i++ {
		p2[i] = ((p1[i] + scalar) & mask) >> s
	}
}

// mulScalarVec evaluates p2 = (p1 * scalar) & mask. The products are carried
// in uint32.
// p1, p2 must be of the same size.
func mulScalarVec(p1 []uint16, scalar uint16, p2 []uint16, mask uint16) {

	N := len(p1)

	if len(p2) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d", N, len(p2)))
	}

	s := uint32(scalar)
	m := uint32(mask)

	for j := 0; j < N-(N&15); j = j + 16 {

		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		x := (*[16]uint16)(unsafe.Pointer(&p1[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 16*/
		z := (*[16]uint16)(unsafe.Pointer(&p2[j]))

		z[0] = uint16(uint32(x[0]) * s & m)
		z[1] = uint16(uint32(x[1]) * s & m)
		z[2] = uint16(uint32(x[2]) * s & m)
		z[3] = uint16(uint32(x[3]) * s & m)
		z[4] = uint16(uint32(x[4]) * s & m)
		z[5] = uint16(uint32(x[5]) * s & m)
		z[6] = uint16(uint32(x[6]) * s & m)
		z[7] = uint16(uint32(x[7]) * s & m)
		z[8] = uint16(uint32(x[8]) * s & m)
		z[9] = uint16(uint32(x[9]) * s & m)
		z[10] = uint16(uint32(x[10]) * s & m)
		z[11] = uint16(uint32(x[11]) * s & m)
		z[12] = uint16(uint32(x[12]) * s & m)
		z[13] = uint16(uint32(x[13]) * s & m)
		z[14] = uint16(uint32(x[14]) * s & m)
		z[15] = uint16(uint32(x[15]) * s & m)
	}

	for i := N - (N & 15); i < N; i++ {
		p2[i] = uint16(uint32(p1[i]) * s & m)
	}
}
