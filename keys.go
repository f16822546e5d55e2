package saber

import (
	"io"

	"github.com/lattisec/saber/utils/structs"
)

// PublicKey is a packed public key: the rounded vector b at EP bits per
// coefficient, followed by the SeedSize-byte matrix seed.
type PublicKey struct {
	Data structs.Vector[uint8]
}

// NewPublicKey returns a new zero public key sized for params.
func NewPublicKey(params Parameters) *PublicKey {
	return &PublicKey{Data: make(structs.Vector[uint8], params.PublicKeySize())}
}

// SeedA returns the matrix seed of the key as a view on its buffer.
func (pk PublicKey) SeedA() []byte {
	return pk.Data[len(pk.Data)-SeedSize:]
}

// Equal checks two public keys for equality.
func (pk PublicKey) Equal(other *PublicKey) bool {
	return pk.Data.Equal(other.Data)
}

// CopyNew returns a deep copy of the key.
func (pk PublicKey) CopyNew() *PublicKey {
	return &PublicKey{Data: pk.Data.CopyNew()}
}

// BinarySize returns the serialized size of the object in bytes.
func (pk PublicKey) BinarySize() int {
	return pk.Data.BinarySize()
}

// WriteTo writes the object on an io.Writer. See the utils/buffer package
// for the recommended writer types.
func (pk PublicKey) WriteTo(w io.Writer) (n int64, err error) {
	return pk.Data.WriteTo(w)
}

// ReadFrom reads the object from an io.Reader. See the utils/buffer package
// for the recommended reader types.
func (pk *PublicKey) ReadFrom(r io.Reader) (n int64, err error) {
	return pk.Data.ReadFrom(r)
}

// MarshalBinary encodes the object on a newly allocated slice of bytes.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	return pk.Data.MarshalBinary()
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary or
// WriteTo on the object.
func (pk *PublicKey) UnmarshalBinary(p []byte) error {
	return pk.Data.UnmarshalBinary(p)
}

// PrivateKey is a packed decapsulation key: the secret vector s at EQ bits
// per coefficient, a copy of the public key, the hash of the public key and
// the SharedSecretSize-byte rejection seed z. The public key copy always
// byte-equals the public key returned alongside the private key.
type PrivateKey struct {
	Data structs.Vector[uint8]
}

// NewPrivateKey returns a new zero private key sized for params.
func NewPrivateKey(params Parameters) *PrivateKey {
	return &PrivateKey{Data: make(structs.Vector[uint8], params.PrivateKeySize())}
}

// Equal checks two private keys for equality.
func (sk PrivateKey) Equal(other *PrivateKey) bool {
	return sk.Data.Equal(other.Data)
}

// CopyNew returns a deep copy of the key.
func (sk PrivateKey) CopyNew() *PrivateKey {
	return &PrivateKey{Data: sk.Data.CopyNew()}
}

// BinarySize returns the serialized size of the object in bytes.
func (sk PrivateKey) BinarySize() int {
	return sk.Data.BinarySize()
}

// WriteTo writes the object on an io.Writer. See the utils/buffer package
// for the recommended writer types.
func (sk PrivateKey) WriteTo(w io.Writer) (n int64, err error) {
	return sk.Data.WriteTo(w)
}

// ReadFrom reads the object from an io.Reader. See the utils/buffer package
// for the recommended reader types.
func (sk *PrivateKey) ReadFrom(r io.Reader) (n int64, err error) {
	return sk.Data.ReadFrom(r)
}

// MarshalBinary encodes the object on a newly allocated slice of bytes.
func (sk PrivateKey) MarshalBinary() ([]byte, error) {
	return sk.Data.MarshalBinary()
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary or
// WriteTo on the object.
func (sk *PrivateKey) UnmarshalBinary(p []byte) error {
	return sk.Data.UnmarshalBinary(p)
}
