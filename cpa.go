package saber

import (
	"bytes"
	"fmt"
	"io"

	"github.com/lattisec/saber/ring"
	"github.com/lattisec/saber/utils/sampling"
	"github.com/lattisec/saber/utils/structs"
)

// cpaKeyGen draws fresh seeds from src and generates a key pair on the
// packed buffers pk (rounded vector, then matrix seed) and sk (secret vector
// at EQ bits per coefficient). The published matrix seed is an XOF image of
// the drawn bytes, never the raw draw.
func cpaKeyGen(p Parameters, h Hasher, src sampling.PRNG, pk, sk []byte) error {
	l := p.L()
	ringQ := p.RingQ()

	seedA := pk[l*polyBytesP:]

	var seedInit [SeedSize]byte
	if _, err := io.ReadFull(src, seedInit[:]); err != nil {
		return fmt.Errorf("matrix seed: %w", err)
	}
	h.XOF(seedA, seedInit[:])

	var noiseSeed [NoiseSeedSize]byte
	if _, err := io.ReadFull(src, noiseSeed[:]); err != nil {
		return fmt.Errorf("noise seed: %w", err)
	}

	a := newMatrix(ringQ, l)
	genMatrix(p, h, seedA, a)

	s := ringQ.NewPolyVector(l)
	genSecret(p, h, noiseSeed[:], s)

	b := ringQ.NewPolyVector(l)
	matVecMulAdd(ringQ, a, s, b, true)

	for i := range b {
		ringQ.AddScalarThenShift(b[i], p.H1(), EQ-EP, b[i])
	}

	packVecP(b, pk[:l*polyBytesP])
	packVecQ(s, sk)

	return nil
}

// cpaEncrypt encrypts the MessageSize-byte message m under the packed public
// key pk with the NoiseSeedSize-byte noise seed coins, writing the packed
// ciphertext on ct. The function is deterministic: equal (pk, m, coins)
// yield equal ciphertexts.
func cpaEncrypt(p Parameters, h Hasher, pk, m, coins, ct []byte) {
	l := p.L()
	ringQ, ringP := p.RingQ(), p.RingP()

	a := newMatrix(ringQ, l)
	genMatrix(p, h, pk[l*polyBytesP:], a)

	sp := ringQ.NewPolyVector(l)
	genSecret(p, h, coins, sp)

	bp := ringQ.NewPolyVector(l)
	matVecMulAdd(ringQ, a, sp, bp, false)

	for i := range bp {
		ringQ.AddScalarThenShift(bp[i], p.H1(), EQ-EP, bp[i])
	}
	packVecP(bp, ct[:l*polyBytesP])

	b := ringP.NewPolyVector(l)
	unpackVecP(pk[:l*polyBytesP], b)

	// v = <b, s'> + h1 - m*2^(EP-1), rounded to ET bits
	v := ringP.NewPoly()
	innerProdAdd(ringP, b, sp, v)

	mp := ringP.NewPoly()
	msgUnpack(m, mp)
	ringP.MulScalar(mp, 1<<(EP-1), mp)
	ringP.Sub(v, mp, v)
	ringP.AddScalarThenShift(v, p.H1(), EP-p.ET(), v)

	packPolyT(v, p.ET(), ct[l*polyBytesP:])
}

// cpaDecrypt decrypts the packed ciphertext ct with the packed secret vector
// sk, writing the MessageSize-byte message on m. It always produces a value;
// whether the value is the encrypted message is established one layer up by
// re-encryption.
func cpaDecrypt(p Parameters, sk, ct, m []byte) {
	l := p.L()
	ringP := p.RingP()

	s := p.RingQ().NewPolyVector(l)
	unpackVecQ(sk, s)

	bp := ringP.NewPolyVector(l)
	unpackVecP(ct[:l*polyBytesP], bp)

	// m = high bit of <b', s> + h2 - cm*2^(EP-ET)
	v := ringP.NewPoly()
	innerProdAdd(ringP, bp, s, v)

	cm := ringP.NewPoly()
	unpackPolyT(ct[l*polyBytesP:], p.ET(), cm)
	ringP.MulScalar(cm, 1<<(EP-p.ET()), cm)
	ringP.Sub(v, cm, v)
	ringP.AddScalarThenShift(v, p.H2(), EP-1, v)

	msgPack(v, m)
}

// cpaKeyGenBatch generates len(pks) independent key pairs, advancing the
// matrix-vector step of all instances together through the batched lattice
// layer. Seeds are drawn per instance; no secret material is shared across
// slots.
func cpaKeyGenBatch(p Parameters, h Hasher, src sampling.PRNG, pks, sks [][]byte) error {
	width := len(pks)
	l := p.L()
	ringQ := p.RingQ()

	as := make([]structs.Matrix[ring.Poly], width)
	ss := make([][]ring.Poly, width)

	for k := 0; k < width; k++ {
		seedA := pks[k][l*polyBytesP:]

		var seedInit [SeedSize]byte
		if _, err := io.ReadFull(src, seedInit[:]); err != nil {
			return fmt.Errorf("matrix seed: %w", err)
		}
		h.XOF(seedA, seedInit[:])

		var noiseSeed [NoiseSeedSize]byte
		if _, err := io.ReadFull(src, noiseSeed[:]); err != nil {
			return fmt.Errorf("noise seed: %w", err)
		}

		as[k] = newMatrix(ringQ, l)
		genMatrix(p, h, seedA, as[k])

		ss[k] = ringQ.NewPolyVector(l)
		genSecret(p, h, noiseSeed[:], ss[k])
	}

	a, err := mergeMatrix(ringQ, as)
	if err != nil {
		return err
	}

	s, err := mergeVectors(ringQ, ss)
	if err != nil {
		return err
	}

	b, err := newBatchVector(ringQ, l, width)
	if err != nil {
		return err
	}

	matVecMulAddBatch(ringQ, a, s, b, true)

	for i := range b {
		ringQ.AddScalarThenShiftBatch(b[i], p.H1(), EQ-EP, b[i])
	}

	for k := 0; k < width; k++ {
		for i := range b {
			packPolyP(b[i].Slot(k), pks[k][i*polyBytesP:(i+1)*polyBytesP])
		}
		packVecQ(ss[k], sks[k])
	}

	return nil
}

// cpaEncryptBatch encrypts one message per slot, advancing all instances
// together through the batched lattice layer. Slots whose public keys carry
// an equal matrix seed share one expansion of the matrix; sharing never
// changes the outputs.
func cpaEncryptBatch(p Parameters, h Hasher, pks, ms, coins, cts [][]byte) error {
	width := len(pks)
	l := p.L()
	ringQ, ringP := p.RingQ(), p.RingP()

	as := make([]structs.Matrix[ring.Poly], width)
	sps := make([][]ring.Poly, width)
	bs := make([][]ring.Poly, width)

	for k := 0; k < width; k++ {
		seedA := pks[k][l*polyBytesP:]

		for j := 0; j < k; j++ {
			if bytes.Equal(seedA, pks[j][l*polyBytesP:]) {
				as[k] = as[j]
				break
			}
		}
		if as[k] == nil {
			as[k] = newMatrix(ringQ, l)
			genMatrix(p, h, seedA, as[k])
		}

		sps[k] = ringQ.NewPolyVector(l)
		genSecret(p, h, coins[k], sps[k])

		bs[k] = ringP.NewPolyVector(l)
		unpackVecP(pks[k][:l*polyBytesP], bs[k])
	}

	a, err := mergeMatrix(ringQ, as)
	if err != nil {
		return err
	}

	sp, err := mergeVectors(ringQ, sps)
	if err != nil {
		return err
	}

	bp, err := newBatchVector(ringQ, l, width)
	if err != nil {
		return err
	}

	matVecMulAddBatch(ringQ, a, sp, bp, false)

	for i := range bp {
		ringQ.AddScalarThenShiftBatch(bp[i], p.H1(), EQ-EP, bp[i])
	}

	for k := 0; k < width; k++ {
		for i := range bp {
			packPolyP(bp[i].Slot(k), cts[k][i*polyBytesP:(i+1)*polyBytesP])
		}
	}

	b, err := mergeVectors(ringP, bs)
	if err != nil {
		return err
	}

	v, err := ringP.NewBatchPoly(width)
	if err != nil {
		return err
	}

	innerProdAddBatch(ringP, b, sp, v)

	mps := make([]ring.Poly, width)
	for k := range mps {
		mps[k] = ringP.NewPoly()
		msgUnpack(ms[k], mps[k])
	}

	mp, err := ringP.Merge(mps)
	if err != nil {
		return err
	}

	ringP.MulScalarBatch(mp, 1<<(EP-1), mp)
	ringP.SubBatch(v, mp, v)
	ringP.AddScalarThenShiftBatch(v, p.H1(), EP-p.ET(), v)

	for k := 0; k < width; k++ {
		packPolyT(v.Slot(k), p.ET(), cts[k][l*polyBytesP:])
	}

	return nil
}

// cpaDecryptBatch decrypts one ciphertext per slot, advancing all instances
// together through the batched lattice layer.
func cpaDecryptBatch(p Parameters, sks, cts, ms [][]byte) error {
	width := len(sks)
	l := p.L()
	ringP := p.RingP()

	ss := make([][]ring.Poly, width)
	bps := make([][]ring.Poly, width)
	cms := make([]ring.Poly, width)

	for k := 0; k < width; k++ {
		ss[k] = p.RingQ().NewPolyVector(l)
		unpackVecQ(sks[k], ss[k])

		bps[k] = ringP.NewPolyVector(l)
		unpackVecP(cts[k][:l*polyBytesP], bps[k])

		cms[k] = ringP.NewPoly()
		unpackPolyT(cts[k][l*polyBytesP:], p.ET(), cms[k])
	}

	bp, err := mergeVectors(ringP, bps)
	if err != nil {
		return err
	}

	s, err := mergeVectors(ringP, ss)
	if err != nil {
		return err
	}

	v, err := ringP.NewBatchPoly(width)
	if err != nil {
		return err
	}

	innerProdAddBatch(ringP, bp, s, v)

	cm, err := ringP.Merge(cms)
	if err != nil {
		return err
	}

	ringP.MulScalarBatch(cm, 1<<(EP-p.ET()), cm)
	ringP.SubBatch(v, cm, v)
	ringP.AddScalarThenShiftBatch(v, p.H2(), EP-1, v)

	for k := 0; k < width; k++ {
		msgPack(v.Slot(k), ms[k])
	}

	return nil
}
