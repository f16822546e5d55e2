package saber

import (
	"io"

	"github.com/lattisec/saber/utils/structs"
)

// Ciphertext is a packed ciphertext: the rounded vector b' at EP bits per
// coefficient, followed by the compressed scalar cm at ET bits per
// coefficient.
type Ciphertext struct {
	Data structs.Vector[uint8]
}

// NewCiphertext returns a new zero ciphertext sized for params.
func NewCiphertext(params Parameters) *Ciphertext {
	return &Ciphertext{Data: make(structs.Vector[uint8], params.CiphertextSize())}
}

// Equal checks two ciphertexts for equality.
func (ct Ciphertext) Equal(other *Ciphertext) bool {
	return ct.Data.Equal(other.Data)
}

// CopyNew returns a deep copy of the ciphertext.
func (ct Ciphertext) CopyNew() *Ciphertext {
	return &Ciphertext{Data: ct.Data.CopyNew()}
}

// BinarySize returns the serialized size of the object in bytes.
func (ct Ciphertext) BinarySize() int {
	return ct.Data.BinarySize()
}

// WriteTo writes the object on an io.Writer. See the utils/buffer package
// for the recommended writer types.
func (ct Ciphertext) WriteTo(w io.Writer) (n int64, err error) {
	return ct.Data.WriteTo(w)
}

// ReadFrom reads the object from an io.Reader. See the utils/buffer package
// for the recommended reader types.
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {
	return ct.Data.ReadFrom(r)
}

// MarshalBinary encodes the object on a newly allocated slice of bytes.
func (ct Ciphertext) MarshalBinary() ([]byte, error) {
	return ct.Data.MarshalBinary()
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary or
// WriteTo on the object.
func (ct *Ciphertext) UnmarshalBinary(p []byte) error {
	return ct.Data.UnmarshalBinary(p)
}
