package saber

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lattisec/saber/utils"
	"github.com/lattisec/saber/utils/buffer"
	"github.com/lattisec/saber/utils/sampling"
)

var testLiterals = []ParametersLiteral{ParamsLightSaber, ParamsSaber, ParamsFireSaber}

func testString(opname string, p Parameters) string {
	return fmt.Sprintf("%s/L=%d/Mu=%d/ET=%d", opname, p.L(), p.Mu(), p.ET())
}

type testContext struct {
	params Parameters
	scheme *Scheme
	prng   sampling.PRNG
}

func genTestContext(paramDef ParametersLiteral) (tc *testContext, err error) {

	tc = new(testContext)

	if tc.params, err = NewParametersFromLiteral(paramDef); err != nil {
		return nil, err
	}

	if tc.prng, err = sampling.NewKeyedPRNG([]byte(fmt.Sprintf("saber-L%d", paramDef.L))); err != nil {
		return nil, err
	}

	if tc.scheme, err = NewScheme(tc.params, WithPRNG(tc.prng)); err != nil {
		return nil, err
	}

	return
}

func TestSaber(t *testing.T) {

	testNewParameters(t)
	testNewScheme(t)

	for _, paramDef := range testLiterals {

		tc, err := genTestContext(paramDef)
		if err != nil {
			t.Fatal(err)
		}

		testParametersMarshal(tc, t)
		testSizes(tc, t)
		testGenerateKeyPair(tc, t)
		testEncapsDecaps(tc, t)
		testDeterministicEncaps(tc, t)
		testImplicitRejection(tc, t)
		testCPARoundTrip(tc, t)
		testCPABatchMatchesSingle(tc, t)
		testBatchKeyGen(tc, t)
		testBatchWidthsAgree(tc, t)
		testBatchSlotIsolation(tc, t)
		testBatchErrors(tc, t)
		testHasherBackends(tc, t)
		testKuznyechikSource(tc, t)
		testSerialization(tc, t)
	}
}

func testNewParameters(t *testing.T) {
	t.Run("NewParameters", func(t *testing.T) {

		_, err := NewParametersFromLiteral(ParametersLiteral{L: 5, Mu: 8, ET: 4})
		require.Error(t, err)

		_, err = NewParametersFromLiteral(ParametersLiteral{L: 3, Mu: 7, ET: 4})
		require.Error(t, err)

		_, err = NewParametersFromLiteral(ParametersLiteral{L: 3, Mu: 8, ET: 5})
		require.Error(t, err)

		p, err := NewParametersFromLiteral(ParamsSaber)
		require.NoError(t, err)
		require.Equal(t, 3, p.L())
		require.Equal(t, 256, p.N())
		require.Equal(t, uint64(1<<13), p.RingQ().Modulus())
		require.Equal(t, uint64(1<<10), p.RingP().Modulus())
		require.Equal(t, uint16(4), p.H1())

		// h2 = 2^(EP-2) - 2^(EP-ET-1) + 2^(EQ-EP-1) per parameter set
		for _, tt := range []struct {
			paramDef ParametersLiteral
			h2       uint16
		}{
			{ParamsLightSaber, 196},
			{ParamsSaber, 228},
			{ParamsFireSaber, 252},
		} {
			p, err := NewParametersFromLiteral(tt.paramDef)
			require.NoError(t, err)
			require.Equal(t, tt.h2, p.H2())
		}

		q, err := NewParametersFromLiteral(ParamsSaber)
		require.NoError(t, err)
		require.True(t, p.Equal(q))

		r, err := NewParametersFromLiteral(ParamsFireSaber)
		require.NoError(t, err)
		require.False(t, p.Equal(r))
	})
}

func testNewScheme(t *testing.T) {
	t.Run("NewScheme", func(t *testing.T) {

		_, err := NewScheme(Parameters{})
		require.Error(t, err)

		params, err := NewParametersFromLiteral(ParamsSaber)
		require.NoError(t, err)

		_, err = NewScheme(params, WithHasher(nil))
		require.Error(t, err)

		_, err = NewScheme(params, WithPRNG(nil))
		require.Error(t, err)

		_, err = NewScheme(params, WithBatchWidth(3))
		require.Error(t, err)

		s, err := NewScheme(params)
		require.NoError(t, err)
		require.Equal(t, 2, s.BatchWidth())
		require.True(t, params.Equal(s.Parameters()))

		s, err = NewScheme(params, WithBatchWidth(4), WithHasher(GOSTHasher{}))
		require.NoError(t, err)
		require.Equal(t, 4, s.BatchWidth())
	})
}

func testParametersMarshal(tc *testContext, t *testing.T) {
	t.Run(testString("Parameters/Marshal", tc.params), func(t *testing.T) {

		data, err := tc.params.MarshalBinary()
		require.NoError(t, err)

		var p Parameters
		require.NoError(t, p.UnmarshalBinary(data))
		require.True(t, tc.params.Equal(p))

		// The decoded parameters are fully usable, not only comparable.
		require.NotNil(t, p.RingQ())
		require.NotNil(t, p.RingP())
	})
}

func testSizes(tc *testContext, t *testing.T) {
	t.Run(testString("Sizes", tc.params), func(t *testing.T) {

		sizes := map[int]struct{ pk, sk, ct int }{
			2: {672, 1568, 736},
			3: {992, 2304, 1088},
			4: {1312, 3040, 1472},
		}

		want := sizes[tc.params.L()]
		require.Equal(t, want.pk, tc.params.PublicKeySize())
		require.Equal(t, want.sk, tc.params.PrivateKeySize())
		require.Equal(t, want.ct, tc.params.CiphertextSize())
	})
}

func testGenerateKeyPair(tc *testContext, t *testing.T) {
	t.Run(testString("GenerateKeyPair", tc.params), func(t *testing.T) {

		p := tc.params

		pk, sk, err := tc.scheme.GenerateKeyPair()
		require.NoError(t, err)
		require.Len(t, []byte(pk.Data), p.PublicKeySize())
		require.Len(t, []byte(sk.Data), p.PrivateKeySize())
		require.Len(t, pk.SeedA(), SeedSize)

		// The private key embeds a verbatim copy of the public key,
		// followed by its hash and the rejection seed.
		off := p.cpaPrivateKeySize()
		require.True(t, bytes.Equal(pk.Data, sk.Data[off:off+p.PublicKeySize()]))

		var digest [HashSize]byte
		SHA3Hasher{}.Hash256(digest[:], pk.Data)
		require.True(t, bytes.Equal(digest[:], sk.Data[off+p.PublicKeySize():off+p.PublicKeySize()+HashSize]))

		pk2, sk2, err := tc.scheme.GenerateKeyPair()
		require.NoError(t, err)
		require.False(t, pk.Equal(pk2))
		require.False(t, sk.Equal(sk2))
	})
}

func testEncapsDecaps(tc *testContext, t *testing.T) {
	t.Run(testString("EncapsDecaps", tc.params), func(t *testing.T) {

		keys := 16
		cycles := 1000

		pks := make([]*PublicKey, keys)
		sks := make([]*PrivateKey, keys)
		for i := range pks {
			var err error
			if pks[i], sks[i], err = tc.scheme.GenerateKeyPair(); err != nil {
				t.Fatal(err)
			}
		}

		for i := 0; i < cycles; i++ {

			k := i % keys

			ct, ssEnc, err := tc.scheme.Encapsulate(pks[k])
			require.NoError(t, err)
			require.Len(t, ssEnc, SharedSecretSize)
			require.Len(t, []byte(ct.Data), tc.params.CiphertextSize())

			ssDec, err := tc.scheme.Decapsulate(sks[k], ct)
			require.NoError(t, err)
			require.Equal(t, ssEnc, ssDec)
		}
	})
}

func testDeterministicEncaps(tc *testContext, t *testing.T) {
	t.Run(testString("DeterministicEncaps", tc.params), func(t *testing.T) {

		pk, sk, err := tc.scheme.GenerateKeyPair()
		require.NoError(t, err)

		m := make([]byte, MessageSize)
		for i := range m {
			m[i] = byte(i)
		}

		ct1, ss1, err := tc.scheme.EncapsulateDeterministic(pk, m)
		require.NoError(t, err)

		ct2, ss2, err := tc.scheme.EncapsulateDeterministic(pk, m)
		require.NoError(t, err)
		require.True(t, ct1.Equal(ct2))
		require.Equal(t, ss1, ss2)

		ssDec, err := tc.scheme.Decapsulate(sk, ct1)
		require.NoError(t, err)
		require.Equal(t, ss1, ssDec)

		m[0] ^= 1
		ct3, ss3, err := tc.scheme.EncapsulateDeterministic(pk, m)
		require.NoError(t, err)
		require.False(t, ct1.Equal(ct3))
		require.NotEqual(t, ss1, ss3)

		_, _, err = tc.scheme.EncapsulateDeterministic(pk, m[:MessageSize-1])
		require.Error(t, err)
	})
}

func testImplicitRejection(tc *testContext, t *testing.T) {
	t.Run(testString("ImplicitRejection", tc.params), func(t *testing.T) {

		pk, sk, err := tc.scheme.GenerateKeyPair()
		require.NoError(t, err)

		ct, ss, err := tc.scheme.Encapsulate(pk)
		require.NoError(t, err)

		for _, pos := range []int{0, len(ct.Data) / 2, len(ct.Data) - 1} {

			corrupted := ct.CopyNew()
			corrupted.Data[pos] ^= 0x01

			// A forged ciphertext never errors; it derives a secret bound
			// to the rejection seed instead.
			ssRej, err := tc.scheme.Decapsulate(sk, corrupted)
			require.NoError(t, err)
			require.Len(t, ssRej, SharedSecretSize)
			require.NotEqual(t, ss, ssRej)

			ssRej2, err := tc.scheme.Decapsulate(sk, corrupted)
			require.NoError(t, err)
			require.Equal(t, ssRej, ssRej2)
		}

		ssDec, err := tc.scheme.Decapsulate(sk, ct)
		require.NoError(t, err)
		require.Equal(t, ss, ssDec)
	})
}

func testCPARoundTrip(tc *testContext, t *testing.T) {
	t.Run(testString("CPARoundTrip", tc.params), func(t *testing.T) {

		p := tc.params
		h := SHA3Hasher{}

		pk := make([]byte, p.PublicKeySize())
		sk := make([]byte, p.cpaPrivateKeySize())
		require.NoError(t, cpaKeyGen(p, h, tc.prng, pk, sk))

		trials := 2500
		if p.L() == 3 {
			trials = 10000
		}

		m := make([]byte, MessageSize)
		coins := make([]byte, NoiseSeedSize)
		ct := make([]byte, p.CiphertextSize())
		mOut := make([]byte, MessageSize)

		for i := 0; i < trials; i++ {

			if _, err := tc.prng.Read(m); err != nil {
				t.Fatal(err)
			}
			if _, err := tc.prng.Read(coins); err != nil {
				t.Fatal(err)
			}

			cpaEncrypt(p, h, pk, m, coins, ct)
			cpaDecrypt(p, sk, ct, mOut)

			require.True(t, bytes.Equal(m, mOut))
		}
	})
}

func testCPABatchMatchesSingle(tc *testContext, t *testing.T) {
	t.Run(testString("CPABatchMatchesSingle", tc.params), func(t *testing.T) {

		p := tc.params
		h := SHA3Hasher{}

		for _, width := range []int{2, 4} {

			// Key generation reads its seeds in slot order, so a batched
			// call consumes the same stream as sequential single calls.
			prng1, err := sampling.NewKeyedPRNG([]byte{'k', 'g', byte(width)})
			require.NoError(t, err)
			prng2, err := sampling.NewKeyedPRNG([]byte{'k', 'g', byte(width)})
			require.NoError(t, err)

			pkSingle := make([][]byte, width)
			skSingle := make([][]byte, width)
			pkBatch := make([][]byte, width)
			skBatch := make([][]byte, width)
			for k := 0; k < width; k++ {
				pkSingle[k] = make([]byte, p.PublicKeySize())
				skSingle[k] = make([]byte, p.cpaPrivateKeySize())
				pkBatch[k] = make([]byte, p.PublicKeySize())
				skBatch[k] = make([]byte, p.cpaPrivateKeySize())

				require.NoError(t, cpaKeyGen(p, h, prng1, pkSingle[k], skSingle[k]))
			}

			require.NoError(t, cpaKeyGenBatch(p, h, prng2, pkBatch, skBatch))

			for k := 0; k < width; k++ {
				require.True(t, bytes.Equal(pkSingle[k], pkBatch[k]))
				require.True(t, bytes.Equal(skSingle[k], skBatch[k]))
			}

			ms := make([][]byte, width)
			coins := make([][]byte, width)
			ctSingle := make([][]byte, width)
			ctBatch := make([][]byte, width)
			for k := 0; k < width; k++ {
				ms[k] = make([]byte, MessageSize)
				coins[k] = make([]byte, NoiseSeedSize)
				if _, err := tc.prng.Read(ms[k]); err != nil {
					t.Fatal(err)
				}
				if _, err := tc.prng.Read(coins[k]); err != nil {
					t.Fatal(err)
				}

				ctSingle[k] = make([]byte, p.CiphertextSize())
				ctBatch[k] = make([]byte, p.CiphertextSize())

				cpaEncrypt(p, h, pkSingle[k], ms[k], coins[k], ctSingle[k])
			}

			require.NoError(t, cpaEncryptBatch(p, h, pkBatch, ms, coins, ctBatch))

			for k := 0; k < width; k++ {
				require.True(t, bytes.Equal(ctSingle[k], ctBatch[k]))
			}

			msOut := make([][]byte, width)
			for k := 0; k < width; k++ {
				msOut[k] = make([]byte, MessageSize)
			}

			require.NoError(t, cpaDecryptBatch(p, skBatch, ctBatch, msOut))

			for k := 0; k < width; k++ {
				require.True(t, bytes.Equal(ms[k], msOut[k]))

				mSingle := make([]byte, MessageSize)
				cpaDecrypt(p, skSingle[k], ctSingle[k], mSingle)
				require.True(t, bytes.Equal(mSingle, msOut[k]))
			}
		}
	})
}

func testBatchKeyGen(tc *testContext, t *testing.T) {
	t.Run(testString("BatchKeyGen", tc.params), func(t *testing.T) {

		n := 5 // Chunks of the batch width plus a single-path remainder

		pks, sks, err := tc.scheme.GenerateKeyPairBatch(n)
		require.NoError(t, err)
		require.Len(t, pks, n)
		require.Len(t, sks, n)

		fingerprints := make([]uint64, 0, 2*n)
		for i := 0; i < n; i++ {
			fingerprints = append(fingerprints,
				binary.LittleEndian.Uint64(pks[i].Data[:8]),
				binary.LittleEndian.Uint64(sks[i].Data[:8]))
		}
		require.True(t, utils.AllDistinct(fingerprints))

		// Every batched key pair works on the single path.
		for i := 0; i < n; i++ {
			ct, ssEnc, err := tc.scheme.Encapsulate(pks[i])
			require.NoError(t, err)

			ssDec, err := tc.scheme.Decapsulate(sks[i], ct)
			require.NoError(t, err)
			require.Equal(t, ssEnc, ssDec)
		}

		_, _, err = tc.scheme.GenerateKeyPairBatch(0)
		require.Error(t, err)
	})
}

func testBatchWidthsAgree(tc *testContext, t *testing.T) {
	t.Run(testString("BatchWidthsAgree", tc.params), func(t *testing.T) {

		n := 5

		var refPKs []*PublicKey
		var refSKs []*PrivateKey
		var refCTs []*Ciphertext
		var refSSs [][]byte

		// The batched entry points read the entropy source in slot order
		// for every width, so a keyed source pins down the whole run.
		for _, width := range []int{1, 2, 4} {

			prng, err := sampling.NewKeyedPRNG([]byte("width-agreement"))
			require.NoError(t, err)

			scheme, err := NewScheme(tc.params, WithPRNG(prng), WithBatchWidth(width))
			require.NoError(t, err)

			pks, sks, err := scheme.GenerateKeyPairBatch(n)
			require.NoError(t, err)

			cts, sss, err := scheme.EncapsulateBatch(pks)
			require.NoError(t, err)

			if width == 1 {
				refPKs, refSKs, refCTs, refSSs = pks, sks, cts, sss
				continue
			}

			for i := 0; i < n; i++ {
				require.True(t, refPKs[i].Equal(pks[i]))
				require.True(t, refSKs[i].Equal(sks[i]))
				require.True(t, refCTs[i].Equal(cts[i]))
				require.Equal(t, refSSs[i], sss[i])
			}
		}

		// Decapsulation is deterministic, so every width must also agree
		// with the single entry point.
		for _, width := range []int{1, 2, 4} {

			scheme, err := NewScheme(tc.params, WithBatchWidth(width))
			require.NoError(t, err)

			sss, err := scheme.DecapsulateBatch(refSKs, refCTs)
			require.NoError(t, err)

			for i := 0; i < n; i++ {
				require.Equal(t, refSSs[i], sss[i])

				ss, err := scheme.Decapsulate(refSKs[i], refCTs[i])
				require.NoError(t, err)
				require.Equal(t, refSSs[i], ss)
			}
		}
	})
}

func testBatchSlotIsolation(tc *testContext, t *testing.T) {
	t.Run(testString("BatchSlotIsolation", tc.params), func(t *testing.T) {

		n := 4

		pks, sks, err := tc.scheme.GenerateKeyPairBatch(n)
		require.NoError(t, err)

		cts, sss, err := tc.scheme.EncapsulateBatch(pks)
		require.NoError(t, err)

		corrupted := make([]*Ciphertext, n)
		for i := range cts {
			corrupted[i] = cts[i].CopyNew()
		}
		corrupted[1].Data[7] ^= 0xFF

		for _, width := range []int{2, 4} {

			scheme, err := NewScheme(tc.params, WithBatchWidth(width))
			require.NoError(t, err)

			out, err := scheme.DecapsulateBatch(sks, corrupted)
			require.NoError(t, err)

			// The forged slot rejects; its lattice neighbours return the
			// exact bytes of the honest run.
			for i := 0; i < n; i++ {
				if i == 1 {
					require.NotEqual(t, sss[i], out[i])
					require.Len(t, out[i], SharedSecretSize)
				} else {
					require.Equal(t, sss[i], out[i])
				}
			}
		}
	})
}

func testBatchErrors(tc *testContext, t *testing.T) {
	t.Run(testString("BatchErrors", tc.params), func(t *testing.T) {

		pks, sks, err := tc.scheme.GenerateKeyPairBatch(2)
		require.NoError(t, err)

		_, _, err = tc.scheme.EncapsulateBatch(nil)
		require.Error(t, err)

		_, err = tc.scheme.DecapsulateBatch(nil, nil)
		require.Error(t, err)

		cts, _, err := tc.scheme.EncapsulateBatch(pks)
		require.NoError(t, err)

		_, err = tc.scheme.DecapsulateBatch(sks, cts[:1])
		require.Error(t, err)

		// One malformed input fails the whole call before any work.
		bad := &PublicKey{Data: make([]byte, 3)}
		_, _, err = tc.scheme.EncapsulateBatch([]*PublicKey{pks[0], bad})
		require.Error(t, err)

		badCT := &Ciphertext{Data: make([]byte, 3)}
		_, err = tc.scheme.DecapsulateBatch(sks, []*Ciphertext{cts[0], badCT})
		require.Error(t, err)

		_, err = tc.scheme.Decapsulate(sks[0], badCT)
		require.Error(t, err)

		_, _, err = tc.scheme.Encapsulate(bad)
		require.Error(t, err)
	})
}

func testHasherBackends(tc *testContext, t *testing.T) {

	for _, hasher := range []Hasher{SHA3Hasher{}, GOSTHasher{}, Blake3Hasher{}} {

		t.Run(testString("Backend/"+hasher.String(), tc.params), func(t *testing.T) {

			prng, err := sampling.NewKeyedPRNG([]byte(hasher.String()))
			require.NoError(t, err)

			scheme, err := NewScheme(tc.params, WithPRNG(prng), WithHasher(hasher))
			require.NoError(t, err)

			pk, sk, err := scheme.GenerateKeyPair()
			require.NoError(t, err)

			ct, ssEnc, err := scheme.Encapsulate(pk)
			require.NoError(t, err)

			ssDec, err := scheme.Decapsulate(sk, ct)
			require.NoError(t, err)
			require.Equal(t, ssEnc, ssDec)

			corrupted := ct.CopyNew()
			corrupted.Data[0] ^= 0x01
			ssRej, err := scheme.Decapsulate(sk, corrupted)
			require.NoError(t, err)
			require.NotEqual(t, ssDec, ssRej)

			// Same entropy, same backend: the whole run reproduces.
			prng2, err := sampling.NewKeyedPRNG([]byte(hasher.String()))
			require.NoError(t, err)

			scheme2, err := NewScheme(tc.params, WithPRNG(prng2), WithHasher(hasher))
			require.NoError(t, err)

			pk2, sk2, err := scheme2.GenerateKeyPair()
			require.NoError(t, err)
			require.True(t, pk.Equal(pk2))
			require.True(t, sk.Equal(sk2))
		})
	}

	t.Run(testString("Backend/Primitives", tc.params), func(t *testing.T) {

		msg := []byte("saber backend primitives")

		for _, hasher := range []Hasher{SHA3Hasher{}, GOSTHasher{}, Blake3Hasher{}} {

			// Multi-slice inputs hash as their concatenation.
			var one, two [HashSize]byte
			hasher.Hash256(one[:], msg)
			hasher.Hash256(two[:], msg[:4], msg[4:])
			require.Equal(t, one, two)

			// The XOF stream is prefix stable.
			long := make([]byte, 128)
			short := make([]byte, 64)
			hasher.XOF(long, msg)
			hasher.XOF(short, msg)
			require.Equal(t, short, long[:64])

			require.Panics(t, func() {
				hasher.Hash256(make([]byte, HashSize-1), msg)
			})
		}
	})
}

func testKuznyechikSource(tc *testContext, t *testing.T) {
	t.Run(testString("KuznyechikSource", tc.params), func(t *testing.T) {

		seed := make([]byte, sampling.KuznyechikSeedSize)
		for i := range seed {
			seed[i] = byte(i)
		}

		run := func() (*PublicKey, *PrivateKey, *Ciphertext, []byte) {

			prng, err := sampling.NewKuznyechikPRNG(seed)
			require.NoError(t, err)

			scheme, err := NewScheme(tc.params, WithPRNG(prng))
			require.NoError(t, err)

			pk, sk, err := scheme.GenerateKeyPair()
			require.NoError(t, err)

			ct, ss, err := scheme.Encapsulate(pk)
			require.NoError(t, err)

			ssDec, err := scheme.Decapsulate(sk, ct)
			require.NoError(t, err)
			require.Equal(t, ss, ssDec)

			return pk, sk, ct, ss
		}

		pk1, sk1, ct1, ss1 := run()
		pk2, sk2, ct2, ss2 := run()

		require.True(t, pk1.Equal(pk2))
		require.True(t, sk1.Equal(sk2))
		require.True(t, ct1.Equal(ct2))
		require.Equal(t, ss1, ss2)
	})
}

func testSerialization(tc *testContext, t *testing.T) {
	t.Run(testString("Serialization", tc.params), func(t *testing.T) {

		pk, sk, err := tc.scheme.GenerateKeyPair()
		require.NoError(t, err)

		ct, _, err := tc.scheme.Encapsulate(pk)
		require.NoError(t, err)

		buffer.RequireSerializerCorrect(t, pk)
		buffer.RequireSerializerCorrect(t, sk)
		buffer.RequireSerializerCorrect(t, ct)

		// A deserialized key pair is functional.
		data, err := sk.MarshalBinary()
		require.NoError(t, err)

		skTest := new(PrivateKey)
		require.NoError(t, skTest.UnmarshalBinary(data))

		ss, err := tc.scheme.Decapsulate(skTest, ct)
		require.NoError(t, err)

		ssWant, err := tc.scheme.Decapsulate(sk, ct)
		require.NoError(t, err)
		require.Equal(t, ssWant, ss)

		require.True(t, pk.Equal(pk.CopyNew()))
		require.True(t, sk.Equal(sk.CopyNew()))
		require.True(t, ct.Equal(ct.CopyNew()))
	})
}
