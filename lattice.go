package saber

import (
	"github.com/lattisec/saber/ring"
	"github.com/lattisec/saber/utils/structs"
)

// matVecMulAdd computes b[i] += sum_j a[i][j] * s[j], or with transpose
// b[i] += sum_j a[j][i] * s[j], accumulating in the given ring.
func matVecMulAdd(r *ring.Ring, a structs.Matrix[ring.Poly], s, b []ring.Poly, transpose bool) {
	for i := range b {
		for j := range s {
			cell := a[i][j]
			if transpose {
				cell = a[j][i]
			}
			r.MulAddToom(cell, s[j], b[i])
		}
	}
}

// innerProdAdd computes acc += <b, s> in the given ring.
func innerProdAdd(r *ring.Ring, b, s []ring.Poly, acc ring.Poly) {
	for j := range b {
		r.MulAddToom(b[j], s[j], acc)
	}
}

// The batched layer runs the same accumulation schedules on BatchPoly
// operands holding one independent instance per slot. The cells are
// accumulated in the same j-ascending order as the single-instance
// functions, so each slot of the outputs is bit-for-bit the output of the
// corresponding single-instance call.

// matVecMulAddBatch computes, slot-wise, b[i] += sum_j a[i][j] * s[j], or
// with transpose b[i] += sum_j a[j][i] * s[j]. Cell (i,j) of a holds the
// (i,j) matrix entries of all instances of the batch, one per slot.
func matVecMulAddBatch(r *ring.Ring, a structs.Matrix[ring.BatchPoly], s, b []ring.BatchPoly, transpose bool) {
	for i := range b {
		for j := range s {
			cell := a[i][j]
			if transpose {
				cell = a[j][i]
			}
			r.MulAddToomBatch(cell, s[j], b[i])
		}
	}
}

// innerProdAddBatch computes acc += <b, s> slot-wise.
func innerProdAddBatch(r *ring.Ring, b, s []ring.BatchPoly, acc ring.BatchPoly) {
	for j := range b {
		r.MulAddToomBatch(b[j], s[j], acc)
	}
}

// mergeMatrix assembles the batched matrix whose cell (i,j) holds
// as[w][i][j] in slot w. Each source cell is read once per slot it fills;
// instances sharing a matrix may pass the same Matrix value.
func mergeMatrix(r *ring.Ring, as []structs.Matrix[ring.Poly]) (structs.Matrix[ring.BatchPoly], error) {

	l := len(as[0])
	slots := make([]ring.Poly, len(as))

	a := make(structs.Matrix[ring.BatchPoly], l)
	for i := range a {
		a[i] = make(structs.Vector[ring.BatchPoly], l)
		for j := range a[i] {
			for w := range as {
				slots[w] = as[w][i][j]
			}
			cell, err := r.Merge(slots)
			if err != nil {
				return nil, err
			}
			a[i][j] = cell
		}
	}

	return a, nil
}

// mergeVectors assembles the batched vector whose entry j holds vs[w][j] in
// slot w.
func mergeVectors(r *ring.Ring, vs [][]ring.Poly) ([]ring.BatchPoly, error) {

	l := len(vs[0])
	slots := make([]ring.Poly, len(vs))

	v := make([]ring.BatchPoly, l)
	for j := range v {
		for w := range vs {
			slots[w] = vs[w][j]
		}
		entry, err := r.Merge(slots)
		if err != nil {
			return nil, err
		}
		v[j] = entry
	}

	return v, nil
}

// newMatrix returns an l x l matrix of zero polynomials.
func newMatrix(r *ring.Ring, l int) structs.Matrix[ring.Poly] {
	a := make(structs.Matrix[ring.Poly], l)
	for i := range a {
		a[i] = r.NewPolyVector(l)
	}
	return a
}

// newBatchVector returns a vector of l zero batches of the given width.
func newBatchVector(r *ring.Ring, l, width int) ([]ring.BatchPoly, error) {
	v := make([]ring.BatchPoly, l)
	for j := range v {
		b, err := r.NewBatchPoly(width)
		if err != nil {
			return nil, err
		}
		v[j] = b
	}
	return v, nil
}
