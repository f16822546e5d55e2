package saber

import (
	"fmt"

	"github.com/zeebo/blake3"
	"go.cypherpunks.ru/gogost/v5/gost34112012256"
	"golang.org/x/crypto/sha3"
)

// Hasher provides the two symmetric primitives of the scheme: a 256-bit hash
// for key derivation and an extendable output function for expanding seeds
// into matrix and secret coefficients. Every call runs on a fresh hash state,
// so implementations are safe for concurrent use.
type Hasher interface {
	// Hash256 writes on out the 256-bit digest of the concatenation of the
	// in slices. out must be HashSize bytes.
	Hash256(out []byte, in ...[]byte)

	// XOF expands in into len(out) bytes on out.
	XOF(out, in []byte)

	// String returns the name of the backend.
	String() string
}

func checkDigest(out []byte) {
	if len(out) != HashSize {
		panic(fmt.Errorf("len(out)=%d: digest size is %d", len(out), HashSize))
	}
}

// SHA3Hasher implements Hasher with SHA3-256 as the hash and SHAKE-128 as
// the XOF. It is the default backend of the scheme.
type SHA3Hasher struct{}

// Hash256 writes on out the SHA3-256 digest of the concatenation of the in
// slices.
func (SHA3Hasher) Hash256(out []byte, in ...[]byte) {
	checkDigest(out)

	h := sha3.New256()
	for i := range in {
		h.Write(in[i])
	}
	h.Sum(out[:0])
}

// XOF expands in into len(out) bytes of SHAKE-128 output on out.
func (SHA3Hasher) XOF(out, in []byte) {
	h := sha3.NewShake128()
	h.Write(in)
	h.Read(out)
}

func (SHA3Hasher) String() string {
	return "SHA3"
}

// GOSTHasher implements Hasher with the GOST R 34.11-2012 (Streebog) hash.
// Streebog has no native extendable output mode, so the XOF is the counter
// construction H(in || ctr) || H(in || ctr+1) || ... with a little-endian
// 32-bit counter, truncated to the requested length.
type GOSTHasher struct{}

// Hash256 writes on out the 256-bit Streebog digest of the concatenation of
// the in slices.
func (GOSTHasher) Hash256(out []byte, in ...[]byte) {
	checkDigest(out)

	h := gost34112012256.New()
	for i := range in {
		h.Write(in[i])
	}
	h.Sum(out[:0])
}

// XOF expands in into len(out) bytes of counter-mode Streebog output on out.
func (GOSTHasher) XOF(out, in []byte) {
	var ctr [4]byte
	var block [HashSize]byte

	h := gost34112012256.New()

	for n := 0; n < len(out); {
		h.Reset()
		h.Write(in)
		h.Write(ctr[:])
		h.Sum(block[:0])

		n += copy(out[n:], block[:])

		for i := range ctr {
			if ctr[i]++; ctr[i] != 0 {
				break
			}
		}
	}
}

func (GOSTHasher) String() string {
	return "GOST"
}

// Blake3Hasher implements Hasher with BLAKE3 in both roles, using its native
// extendable output mode as the XOF.
type Blake3Hasher struct{}

// Hash256 writes on out the 256-bit BLAKE3 digest of the concatenation of
// the in slices.
func (Blake3Hasher) Hash256(out []byte, in ...[]byte) {
	checkDigest(out)

	h := blake3.New()
	for i := range in {
		h.Write(in[i])
	}
	h.Sum(out[:0])
}

// XOF expands in into len(out) bytes of BLAKE3 extended output on out.
func (Blake3Hasher) XOF(out, in []byte) {
	h := blake3.New()
	h.Write(in)
	h.Digest().Read(out)
}

func (Blake3Hasher) String() string {
	return "BLAKE3"
}
