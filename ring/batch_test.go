package ring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lattisec/saber/utils/buffer"
	"github.com/lattisec/saber/utils/sampling"
)

var batchWidths = []int{BatchWidth2, BatchWidth4}

// newUniformBatch returns a batch of the given width with uniform slots.
func newUniformBatch(tc *testParams, width int) BatchPoly {

	polys := make([]Poly, width)
	for i := range polys {
		polys[i] = newUniformPoly(tc)
	}

	b, err := tc.ring.Merge(polys)
	if err != nil {
		panic(err)
	}

	return b
}

func TestBatch(t *testing.T) {

	for _, p := range testParameters {

		tc, err := genTestParams(p.n, p.logQ)
		if err != nil {
			t.Fatal(err)
		}

		testNewBatchPoly(tc, t)
		testMergeSplit(tc, t)
		testBatchOps(tc, t)
		testBatchMulAdd(tc, t)
		testBatchSlotIsolation(tc, t)
		testBatchSerialization(tc, t)
	}
}

func testNewBatchPoly(tc *testParams, t *testing.T) {
	t.Run(testString("NewBatchPoly", tc.ring), func(t *testing.T) {

		r := tc.ring

		for _, width := range []int{0, 1, 3, 5, 8} {
			_, err := r.NewBatchPoly(width)
			require.Error(t, err)
		}

		for _, width := range batchWidths {
			b, err := r.NewBatchPoly(width)
			require.NoError(t, err)
			require.Equal(t, width, b.Width)
			require.Equal(t, width*r.N, len(b.Coeffs))
		}
	})
}

func testMergeSplit(tc *testParams, t *testing.T) {
	t.Run(testString("MergeSplit", tc.ring), func(t *testing.T) {

		r := tc.ring

		for _, width := range batchWidths {

			polys := make([]Poly, width)
			for i := range polys {
				polys[i] = newUniformPoly(tc)
			}

			b, err := r.Merge(polys)
			require.NoError(t, err)

			for i := range polys {
				slot := b.Slot(i)
				require.True(t, polys[i].Equal(&slot))
			}

			split := r.Split(b)
			require.Equal(t, width, len(split))
			for i := range split {
				require.True(t, polys[i].Equal(&split[i]))
			}

			// Slot returns a view on the batch buffer, Split a copy.
			slot := b.Slot(0)
			slot.Coeffs[0] ^= 1
			require.Equal(t, slot.Coeffs[0], b.Coeffs[0])
			require.NotEqual(t, slot.Coeffs[0], split[0].Coeffs[0])
		}

		// Merging a polynomial of the wrong degree fails.
		_, err := r.Merge([]Poly{newUniformPoly(tc), {Coeffs: make([]uint16, r.N>>1)}})
		require.Error(t, err)

		// Merging an unsupported number of polynomials fails.
		_, err = r.Merge([]Poly{newUniformPoly(tc)})
		require.Error(t, err)
	})
}

func testBatchOps(tc *testParams, t *testing.T) {
	t.Run(testString("BatchOps", tc.ring), func(t *testing.T) {

		r := tc.ring

		for _, width := range batchWidths {

			b1 := newUniformBatch(tc, width)
			b2 := newUniformBatch(tc, width)
			b3, err := r.NewBatchPoly(width)
			require.NoError(t, err)

			scalar := uint16(sampling.RandUint64()) & r.Mask
			shift := 3

			single := func(op func(i int, p3 Poly)) BatchPoly {
				out, err := r.NewBatchPoly(width)
				require.NoError(t, err)
				for i := 0; i < width; i++ {
					p3 := r.NewPoly()
					op(i, p3)
					copy(out.Coeffs[i*r.N:], p3.Coeffs)
				}
				return out
			}

			r.AddBatch(b1, b2, b3)
			want := single(func(i int, p3 Poly) { r.Add(b1.Slot(i), b2.Slot(i), p3) })
			require.True(t, want.Equal(&b3))

			r.SubBatch(b1, b2, b3)
			want = single(func(i int, p3 Poly) { r.Sub(b1.Slot(i), b2.Slot(i), p3) })
			require.True(t, want.Equal(&b3))

			r.ReduceBatch(b1, b3)
			want = single(func(i int, p3 Poly) { r.Reduce(b1.Slot(i), p3) })
			require.True(t, want.Equal(&b3))

			r.MulScalarBatch(b1, scalar, b3)
			want = single(func(i int, p3 Poly) { r.MulScalar(b1.Slot(i), scalar, p3) })
			require.True(t, want.Equal(&b3))

			r.AddScalarThenShiftBatch(b1, scalar, shift, b3)
			want = single(func(i int, p3 Poly) { r.AddScalarThenShift(b1.Slot(i), scalar, shift, p3) })
			require.True(t, want.Equal(&b3))
		}

		// Mismatched widths panic.
		b2 := newUniformBatch(tc, BatchWidth2)
		b4 := newUniformBatch(tc, BatchWidth4)
		require.Panics(t, func() { r.AddBatch(b2, b4, b2) })
	})
}

func testBatchMulAdd(tc *testParams, t *testing.T) {
	t.Run(testString("BatchMulAdd", tc.ring), func(t *testing.T) {

		r := tc.ring

		for _, width := range batchWidths {

			for trial := 0; trial < 8; trial++ {

				b1 := newUniformBatch(tc, width)
				b2 := newUniformBatch(tc, width)
				b3 := newUniformBatch(tc, width) // Nonzero accumulator

				// The batched product must match the single-slot product
				// bit for bit.
				want, err := r.NewBatchPoly(width)
				require.NoError(t, err)
				copy(want.Coeffs, b3.Coeffs)
				for i := 0; i < width; i++ {
					r.MulAddToom(b1.Slot(i), b2.Slot(i), want.Slot(i))
				}

				r.MulAddToomBatch(b1, b2, b3)
				require.True(t, want.Equal(&b3))
			}

			b1 := newUniformBatch(tc, width)
			b2 := newUniformBatch(tc, width)
			b3 := newUniformBatch(tc, width)

			want, err := r.NewBatchPoly(width)
			require.NoError(t, err)
			copy(want.Coeffs, b3.Coeffs)
			for i := 0; i < width; i++ {
				r.MulAddSchoolbook(b1.Slot(i), b2.Slot(i), want.Slot(i))
			}

			r.MulAddSchoolbookBatch(b1, b2, b3)
			require.True(t, want.Equal(&b3))
		}
	})
}

func testBatchSlotIsolation(tc *testParams, t *testing.T) {
	t.Run(testString("BatchSlotIsolation", tc.ring), func(t *testing.T) {

		r := tc.ring

		for _, width := range batchWidths {

			b1 := newUniformBatch(tc, width)
			b2 := newUniformBatch(tc, width)

			b3a, err := r.NewBatchPoly(width)
			require.NoError(t, err)
			r.MulAddToomBatch(b1, b2, b3a)

			// Overwriting every slot but the first must leave the first
			// output slot unchanged.
			for i := 1; i < width; i++ {
				cpy := newUniformPoly(tc)
				copy(b1.Coeffs[i*r.N:], cpy.Coeffs)
				cpy = newUniformPoly(tc)
				copy(b2.Coeffs[i*r.N:], cpy.Coeffs)
			}

			b3b, err := r.NewBatchPoly(width)
			require.NoError(t, err)
			r.MulAddToomBatch(b1, b2, b3b)

			slot0 := b3b.Slot(0)
			require.True(t, b3a.Slot(0).Equal(&slot0))
			for i := 1; i < width; i++ {
				slotI := b3b.Slot(i)
				require.False(t, b3a.Slot(i).Equal(&slotI))
			}
		}
	})
}

func testBatchSerialization(tc *testParams, t *testing.T) {
	t.Run(testString("MarshalBinary/BatchPoly", tc.ring), func(t *testing.T) {
		for _, width := range batchWidths {
			b := newUniformBatch(tc, width)
			buffer.RequireSerializerCorrect(t, &b)
		}
	})
}
