package ring

import (
	"io"

	"github.com/lattisec/saber/utils/structs"
)

// Poly is a polynomial with coefficients in Z_{2^LogQ}, stored in a single
// uint16 slice of length N.
type Poly struct {
	Coeffs []uint16
}

// NewPoly returns a new zero polynomial of degree r.N.
func (r *Ring) NewPoly() Poly {
	return Poly{Coeffs: make([]uint16, r.N)}
}

// NewPolyVector returns a vector of size zero polynomials of degree r.N.
func (r *Ring) NewPolyVector(size int) structs.Vector[Poly] {
	v := make(structs.Vector[Poly], size)
	for i := range v {
		v[i] = r.NewPoly()
	}
	return v
}

// N returns the number of coefficients of the polynomial.
func (pol Poly) N() int {
	return len(pol.Coeffs)
}

// Zero sets all coefficients of the polynomial to zero.
func (pol Poly) Zero() {
	for i := range pol.Coeffs {
		pol.Coeffs[i] = 0
	}
}

// Copy copies the coefficients of other on the receiver. The two polynomials
// must have the same degree.
func (pol Poly) Copy(other Poly) {
	copy(pol.Coeffs, other.Coeffs)
}

// CopyNew returns a deep copy of the polynomial.
func (pol Poly) CopyNew() *Poly {
	cpy := Poly{Coeffs: make([]uint16, len(pol.Coeffs))}
	copy(cpy.Coeffs, pol.Coeffs)
	return &cpy
}

// Equal returns whether the two polynomials have identical coefficients.
func (pol Poly) Equal(other *Poly) bool {
	return structs.Vector[uint16](pol.Coeffs).Equal(structs.Vector[uint16](other.Coeffs))
}

// BinarySize returns the serialized size of the polynomial in bytes.
func (pol Poly) BinarySize() int {
	return structs.Vector[uint16](pol.Coeffs).BinarySize()
}

// WriteTo writes the polynomial on w. It implements the io.WriterTo
// interface; see the utils/buffer package for the recommended writer types.
func (pol Poly) WriteTo(w io.Writer) (n int64, err error) {
	return structs.Vector[uint16](pol.Coeffs).WriteTo(w)
}

// ReadFrom reads the polynomial from r. It implements the io.ReaderFrom
// interface; see the utils/buffer package for the recommended reader types.
func (pol *Poly) ReadFrom(r io.Reader) (n int64, err error) {
	v := structs.Vector[uint16](pol.Coeffs)
	if n, err = v.ReadFrom(r); err != nil {
		return
	}
	pol.Coeffs = []uint16(v)
	return
}

// MarshalBinary encodes the polynomial on a newly allocated slice of bytes.
func (pol Poly) MarshalBinary() (p []byte, err error) {
	return structs.Vector[uint16](pol.Coeffs).MarshalBinary()
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary or
// WriteTo on the polynomial.
func (pol *Poly) UnmarshalBinary(p []byte) (err error) {
	v := structs.Vector[uint16](pol.Coeffs)
	if err = v.UnmarshalBinary(p); err != nil {
		return
	}
	pol.Coeffs = []uint16(v)
	return
}
