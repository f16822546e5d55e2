package buffer

import (
	"unsafe"
)

// EqualAsUint64Slice casts the two input slices to []uint64 and compares
// them element-wise. User must ensure that T can be stored in an uint64.
func EqualAsUint64Slice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	/* #nosec G103 -- behavior and consequences well understood, pointer type cast */
	ap := *(*[]uint64)(unsafe.Pointer(&a))
	/* #nosec G103 -- behavior and consequences well understood, pointer type cast */
	bp := *(*[]uint64)(unsafe.Pointer(&b))
	for i := range ap {
		if ap[i] != bp[i] {
			return false
		}
	}
	return true
}

// EqualAsUint32Slice casts the two input slices to []uint32 and compares
// them element-wise. User must ensure that T can be stored in an uint32.
func EqualAsUint32Slice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	/* #nosec G103 -- behavior and consequences well understood, pointer type cast */
	ap := *(*[]uint32)(unsafe.Pointer(&a))
	/* #nosec G103 -- behavior and consequences well understood, pointer type cast */
	bp := *(*[]uint32)(unsafe.Pointer(&b))
	for i := range ap {
		if ap[i] != bp[i] {
			return false
		}
	}
	return true
}

// EqualAsUint16Slice casts the two input slices to []uint16 and compares
// them element-wise. User must ensure that T can be stored in an uint16.
func EqualAsUint16Slice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	/* #nosec G103 -- behavior and consequences well understood, pointer type cast */
	ap := *(*[]uint16)(unsafe.Pointer(&a))
	/* #nosec G103 -- behavior and consequences well understood, pointer type cast */
	bp := *(*[]uint16)(unsafe.Pointer(&b))
	for i := range ap {
		if ap[i] != bp[i] {
			return false
		}
	}
	return true
}

// EqualAsUint8Slice casts the two input slices to []uint8 and compares them
// element-wise. User must ensure that T can be stored in an uint8.
func EqualAsUint8Slice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	/* #nosec G103 -- behavior and consequences well understood, pointer type cast */
	ap := *(*[]uint8)(unsafe.Pointer(&a))
	/* #nosec G103 -- behavior and consequences well understood, pointer type cast */
	bp := *(*[]uint8)(unsafe.Pointer(&b))
	for i := range ap {
		if ap[i] != bp[i] {
			return false
		}
	}
	return true
}
