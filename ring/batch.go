package ring

import (
	"bufio"
	"fmt"
	"io"

	"github.com/lattisec/saber/utils/buffer"
	"github.com/lattisec/saber/utils/structs"
)

// Batch widths supported by BatchPoly.
const (
	BatchWidth2 = 2
	BatchWidth4 = 4
)

// BatchPoly holds Width independent polynomials of degree N side by side in
// one contiguous coefficient buffer; slot i occupies Coeffs[i*N:(i+1)*N].
//
// The batched operations of the Ring run each stage of their schedule over
// all slots before moving to the next stage, and never mix coefficients of
// different slots. Their outputs are bit-for-bit the outputs of the
// corresponding single-polynomial operation applied slot by slot.
type BatchPoly struct {
	Width  int
	Coeffs []uint16
}

// NewBatchPoly returns a new zero BatchPoly of the given width. The width
// must be BatchWidth2 or BatchWidth4.
func (r *Ring) NewBatchPoly(width int) (BatchPoly, error) {
	if width != BatchWidth2 && width != BatchWidth4 {
		return BatchPoly{}, fmt.Errorf("invalid batch width %d: must be %d or %d", width, BatchWidth2, BatchWidth4)
	}
	return BatchPoly{Width: width, Coeffs: make([]uint16, width*r.N)}, nil
}

// Merge copies the polynomials ps into a new BatchPoly of width len(ps).
func (r *Ring) Merge(ps []Poly) (BatchPoly, error) {

	b, err := r.NewBatchPoly(len(ps))
	if err != nil {
		return BatchPoly{}, err
	}

	for i := range ps {
		if len(ps[i].Coeffs) != r.N {
			return BatchPoly{}, fmt.Errorf("slot %d: degree %d does not match ring degree %d", i, len(ps[i].Coeffs), r.N)
		}
		copy(b.Coeffs[i*r.N:], ps[i].Coeffs)
	}

	return b, nil
}

// Split returns the slots of b as freshly allocated polynomials.
func (r *Ring) Split(b BatchPoly) []Poly {
	ps := make([]Poly, b.Width)
	for i := range ps {
		ps[i] = r.NewPoly()
		copy(ps[i].Coeffs, b.Slot(i).Coeffs)
	}
	return ps
}

// Slot returns the i-th polynomial of the batch as a view sharing its
// coefficient buffer with b.
func (b BatchPoly) Slot(i int) Poly {
	n := len(b.Coeffs) / b.Width
	return Poly{Coeffs: b.Coeffs[i*n : (i+1)*n]}
}

// Equal returns whether the two batches have the same width and identical
// coefficients.
func (b BatchPoly) Equal(other *BatchPoly) bool {
	return b.Width == other.Width && structs.Vector[uint16](b.Coeffs).Equal(structs.Vector[uint16](other.Coeffs))
}

// BinarySize returns the serialized size of the batch in bytes.
func (b BatchPoly) BinarySize() int {
	return 8 + structs.Vector[uint16](b.Coeffs).BinarySize()
}

// WriteTo writes the batch on w. It implements the io.WriterTo interface;
// see the utils/buffer package for the recommended writer types.
func (b BatchPoly) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		if n, err = buffer.WriteUint64(w, uint64(b.Width)); err != nil {
			return n, fmt.Errorf("buffer.WriteUint64: %w", err)
		}

		var inc int64
		inc, err = structs.Vector[uint16](b.Coeffs).WriteTo(w)

		return n + inc, err

	default:
		return b.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads the batch from r. It implements the io.ReaderFrom
// interface; see the utils/buffer package for the recommended reader types.
func (b *BatchPoly) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var width uint64
		var inc int
		if inc, err = buffer.ReadUint64(r, &width); err != nil {
			return int64(inc), fmt.Errorf("buffer.ReadUint64: %w", err)
		}

		n = int64(inc)
		b.Width = int(width)

		c := structs.Vector[uint16](b.Coeffs)
		var inc64 int64
		if inc64, err = c.ReadFrom(r); err != nil {
			return n + inc64, err
		}
		b.Coeffs = []uint16(c)

		return n + inc64, nil

	default:
		return b.ReadFrom(bufio.NewReader(r))
	}
}

func checkBatch(b1, b2 BatchPoly) {
	if b1.Width != b2.Width || len(b1.Coeffs) != len(b2.Coeffs) {
		panic(fmt.Errorf("batch mismatch: width %d vs %d, len %d vs %d", b1.Width, b2.Width, len(b1.Coeffs), len(b2.Coeffs)))
	}
}

// AddBatch adds b1 to b2 slot-wise and returns the result on b3.
func (r *Ring) AddBatch(b1, b2, b3 BatchPoly) {
	checkBatch(b1, b2)
	checkBatch(b1, b3)
	addVec(b1.Coeffs, b2.Coeffs, b3.Coeffs, r.Mask)
}

// SubBatch subtracts b2 from b1 slot-wise and returns the result on b3.
func (r *Ring) SubBatch(b1, b2, b3 BatchPoly) {
	checkBatch(b1, b2)
	checkBatch(b1, b3)
	subVec(b1.Coeffs, b2.Coeffs, b3.Coeffs, r.Mask)
}

// ReduceBatch reduces every coefficient of b1 below the modulus and returns
// the result on b2.
func (r *Ring) ReduceBatch(b1, b2 BatchPoly) {
	checkBatch(b1, b2)
	maskVec(b1.Coeffs, b2.Coeffs, r.Mask)
}

// MulScalarBatch multiplies every coefficient of b1 by scalar and returns
// the result on b2.
func (r *Ring) MulScalarBatch(b1 BatchPoly, scalar uint16, b2 BatchPoly) {
	checkBatch(b1, b2)
	mulScalarVec(b1.Coeffs, scalar, b2.Coeffs, r.Mask)
}

// AddScalarThenShiftBatch applies the AddScalarThenShift rounding step to
// every slot of b1 and returns the result on b2.
func (r *Ring) AddScalarThenShiftBatch(b1 BatchPoly, scalar uint16, shift int, b2 BatchPoly) {
	checkBatch(b1, b2)
	addScalarShiftVec(b1.Coeffs, scalar, shift, b2.Coeffs, r.Mask)
}

// newToomBatchScratch allocates Toom-Cook scratch with room for width slots
// laid side by side: slot s of the evaluations occupies [s*k, (s+1)*k) and
// slot s of the block products [s*(2k-1), (s+1)*(2k-1)), with k = n/4.
func newToomBatchScratch(n, width int) *toomScratch {

	k := (n >> 2) * width
	kw := (2*(n>>2) - 1) * width

	sc := new(toomScratch)

	buf := make([]uint32, 14*k+7*kw+2*n-1)

	for i := 0; i < 7; i++ {
		sc.ea[i], buf = buf[:k], buf[k:]
	}

	for i := 0; i < 7; i++ {
		sc.eb[i], buf = buf[:k], buf[k:]
	}

	for i := 0; i < 7; i++ {
		sc.w[i], buf = buf[:kw], buf[kw:]
	}

	sc.acc = buf

	return sc
}

// slotViews returns the views of the seven scratch arrays restricted to slot
// s, with l coefficients per slot.
func slotViews(e *[7][]uint32, s, l int) *[7][]uint32 {
	var v [7][]uint32
	for i := range v {
		v[i] = e[i][s*l : (s+1)*l]
	}
	return &v
}

// MulAddToomBatch multiplies b1 by b2 slot-wise with four-way Toom-Cook and
// adds the result on b3. The evaluation, block product, interpolation and
// recomposition stages each run over all slots before the next stage starts,
// on one shared scratch allocation; the interpolation stage is a single pass
// over the concatenated block products of all slots.
func (r *Ring) MulAddToomBatch(b1, b2, b3 BatchPoly) {
	checkBatch(b1, b2)
	checkBatch(b1, b3)

	n := r.N
	k := n >> 2
	width := b1.Width

	sc := newToomBatchScratch(n, width)

	for s := 0; s < width; s++ {
		toomEvaluate(b1.Coeffs[s*n:(s+1)*n], n, slotViews(&sc.ea, s, k))
		toomEvaluate(b2.Coeffs[s*n:(s+1)*n], n, slotViews(&sc.eb, s, k))
	}

	for s := 0; s < width; s++ {
		toomPointwise(slotViews(&sc.ea, s, k), slotViews(&sc.eb, s, k), slotViews(&sc.w, s, 2*k-1), k)
	}

	toomInterpolate(&sc.w)

	for s := 0; s < width; s++ {
		toomRecompose(slotViews(&sc.w, s, 2*k-1), sc.acc, b3.Coeffs[s*n:(s+1)*n], n, r.Mask)
	}
}

// MulAddSchoolbookBatch multiplies b1 by b2 slot-wise with the schoolbook
// algorithm and adds the result on b3.
func (r *Ring) MulAddSchoolbookBatch(b1, b2, b3 BatchPoly) {
	checkBatch(b1, b2)
	checkBatch(b1, b3)

	n := r.N

	for i := 0; i < b1.Width; i++ {
		mulAddSchoolbook(b1.Coeffs[i*n:(i+1)*n], b2.Coeffs[i*n:(i+1)*n], b3.Coeffs[i*n:(i+1)*n], n, r.Mask)
	}
}
