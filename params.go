package saber

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/lattisec/saber/ring"
)

const (
	// N is the degree of the polynomials of the ring R_q.
	N = 256

	// EQ is the base-two logarithm of the ciphertext modulus q.
	EQ = 13

	// EP is the base-two logarithm of the rounding modulus p.
	EP = 10

	// SeedSize is the byte size of the public matrix seed.
	SeedSize = 32

	// NoiseSeedSize is the byte size of the secret sampling seed.
	NoiseSeedSize = 32

	// MessageSize is the byte size of the 256-bit message encrypted by the
	// IND-CPA primitive.
	MessageSize = N / 8

	// HashSize is the byte size of the digests of the Hasher backends.
	HashSize = 32

	// SharedSecretSize is the byte size of the shared secret established by
	// the KEM.
	SharedSecretSize = 32
)

// ParametersLiteral is a literal representation of Saber parameters. It has
// public fields and is used to express unchecked user-defined parameters
// literally into Go programs. The NewParametersFromLiteral function resolves
// it into a validated Parameters object.
type ParametersLiteral struct {
	// L is the dimension of the module, i.e. the number of polynomials per
	// vector.
	L int

	// Mu is the width of the centered binomial distribution of the secrets.
	Mu int

	// ET is the base-two logarithm of the ciphertext compression modulus t.
	ET int
}

// Standard parameter sets.
var (
	// ParamsLightSaber is the light security parameter set (L=2).
	ParamsLightSaber = ParametersLiteral{L: 2, Mu: 10, ET: 3}

	// ParamsSaber is the recommended parameter set (L=3).
	ParamsSaber = ParametersLiteral{L: 3, Mu: 8, ET: 4}

	// ParamsFireSaber is the high security parameter set (L=4).
	ParamsFireSaber = ParametersLiteral{L: 4, Mu: 6, ET: 6}
)

// Parameters represents a parameter set for the Saber KEM. Its fields are
// checked at construction and read-only afterwards.
type Parameters struct {
	l  int
	mu int
	et int

	h1 uint16
	h2 uint16

	ringQ *ring.Ring
	ringP *ring.Ring
}

// NewParametersFromLiteral instantiates a set of Parameters from a
// ParametersLiteral specification. It returns the empty parameters Parameters{}
// and a non-nil error if the specification is invalid.
func NewParametersFromLiteral(paramDef ParametersLiteral) (params Parameters, err error) {

	switch paramDef.L {
	case 2, 3, 4:
	default:
		return Parameters{}, fmt.Errorf("saber.NewParametersFromLiteral: invalid module dimension L=%d: must be 2, 3 or 4", paramDef.L)
	}

	switch paramDef.Mu {
	case 6, 8, 10:
	default:
		return Parameters{}, fmt.Errorf("saber.NewParametersFromLiteral: invalid binomial width Mu=%d: must be 6, 8 or 10", paramDef.Mu)
	}

	switch paramDef.ET {
	case 3, 4, 6:
	default:
		return Parameters{}, fmt.Errorf("saber.NewParametersFromLiteral: invalid compression exponent ET=%d: must be 3, 4 or 6", paramDef.ET)
	}

	params = Parameters{
		l:  paramDef.L,
		mu: paramDef.Mu,
		et: paramDef.ET,
		h1: 1 << (EQ - EP - 1),
		h2: (1 << (EP - 2)) - (1 << (EP - paramDef.ET - 1)) + (1 << (EQ - EP - 1)),
	}

	if params.ringQ, err = ring.NewRing(N, EQ); err != nil {
		return Parameters{}, err
	}

	if params.ringP, err = ring.NewRing(N, EP); err != nil {
		return Parameters{}, err
	}

	return params, nil
}

// ParametersLiteral returns the ParametersLiteral of the target Parameters.
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{L: p.l, Mu: p.mu, ET: p.et}
}

// L returns the module dimension.
func (p Parameters) L() int {
	return p.l
}

// N returns the ring degree.
func (p Parameters) N() int {
	return N
}

// Mu returns the width of the centered binomial distribution of the secrets.
func (p Parameters) Mu() int {
	return p.mu
}

// ET returns the base-two logarithm of the ciphertext compression modulus.
func (p Parameters) ET() int {
	return p.et
}

// H1 returns the rounding constant 2^(EQ-EP-1).
func (p Parameters) H1() uint16 {
	return p.h1
}

// H2 returns the decryption rounding constant.
func (p Parameters) H2() uint16 {
	return p.h2
}

// RingQ returns the polynomial ring modulo 2^EQ.
func (p Parameters) RingQ() *ring.Ring {
	return p.ringQ
}

// RingP returns the polynomial ring modulo 2^EP.
func (p Parameters) RingP() *ring.Ring {
	return p.ringP
}

// Byte sizes of a single polynomial packed at EQ and EP bits per coefficient.
const (
	polyBytesQ = EQ * N / 8
	polyBytesP = EP * N / 8
)

// polyBytesT is the byte size of a polynomial packed at ET bits per
// coefficient.
func (p Parameters) polyBytesT() int {
	return p.et * N / 8
}

// coinBytes is the number of XOF bytes consumed to sample one secret
// polynomial.
func (p Parameters) coinBytes() int {
	return p.mu * N / 8
}

// PublicKeySize returns the byte size of a packed public key.
func (p Parameters) PublicKeySize() int {
	return p.l*polyBytesP + SeedSize
}

// cpaPrivateKeySize is the byte size of the packed IND-CPA secret vector.
func (p Parameters) cpaPrivateKeySize() int {
	return p.l * polyBytesQ
}

// PrivateKeySize returns the byte size of a packed KEM private key, i.e. the
// secret vector followed by the public key copy, the public key hash and the
// rejection seed.
func (p Parameters) PrivateKeySize() int {
	return p.cpaPrivateKeySize() + p.PublicKeySize() + HashSize + SharedSecretSize
}

// CiphertextSize returns the byte size of a packed ciphertext.
func (p Parameters) CiphertextSize() int {
	return p.l*polyBytesP + p.polyBytesT()
}

// Equal checks two Parameter structs for equality.
func (p Parameters) Equal(other Parameters) bool {
	return cmp.Equal(p.ParametersLiteral(), other.ParametersLiteral())
}

// MarshalBinary returns a []byte representation of the parameter set.
func (p Parameters) MarshalBinary() ([]byte, error) {
	return p.MarshalJSON()
}

// UnmarshalBinary decodes a slice of bytes on the target Parameters.
func (p *Parameters) UnmarshalBinary(data []byte) (err error) {
	return p.UnmarshalJSON(data)
}

// MarshalJSON returns a JSON representation of this parameter set. See
// Marshal from the encoding/json package.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the
// receiver Parameter. See Unmarshal from the encoding/json package.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var params ParametersLiteral
	if err = json.Unmarshal(data, &params); err != nil {
		return err
	}
	*p, err = NewParametersFromLiteral(params)
	return
}
