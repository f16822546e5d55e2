package saber

import (
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/lattisec/saber/utils/sampling"
)

// Scheme instantiates the KEM for a fixed parameter set, hash backend,
// entropy source and batch width. Every backend choice is fixed at
// construction; no operation branches on configuration inside its inner
// loops. A Scheme is safe for concurrent use if its entropy source is.
type Scheme struct {
	params Parameters
	hasher Hasher
	source sampling.PRNG
	width  int
}

// Option modifies a Scheme at construction.
type Option func(*Scheme) error

// WithHasher sets the hash/XOF backend. The default is SHA3Hasher.
func WithHasher(h Hasher) Option {
	return func(s *Scheme) error {
		if h == nil {
			return fmt.Errorf("nil Hasher")
		}
		s.hasher = h
		return nil
	}
}

// WithPRNG sets the entropy source used to draw key generation seeds and
// encapsulation messages. The default reads from the system entropy source.
// Deterministic derivations never touch the source.
func WithPRNG(prng sampling.PRNG) Option {
	return func(s *Scheme) error {
		if prng == nil {
			return fmt.Errorf("nil PRNG")
		}
		s.source = prng
		return nil
	}
}

// WithBatchWidth sets the number of instances the batched entry points
// advance concurrently through the ring layer. Supported widths are 1, 2
// (the default) and 4; width 1 degrades the batched entry points to the
// single-instance path.
func WithBatchWidth(width int) Option {
	return func(s *Scheme) error {
		switch width {
		case 1, 2, 4:
			s.width = width
			return nil
		default:
			return fmt.Errorf("unsupported batch width %d: must be 1, 2 or 4", width)
		}
	}
}

// NewScheme instantiates a KEM from a validated parameter set and the given
// options.
func NewScheme(params Parameters, opts ...Option) (*Scheme, error) {

	if params.ringQ == nil || params.ringP == nil {
		return nil, fmt.Errorf("saber.NewScheme: uninitialized parameters")
	}

	source, err := sampling.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("saber.NewScheme: %w", err)
	}

	s := &Scheme{
		params: params,
		hasher: SHA3Hasher{},
		source: source,
		width:  2,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("saber.NewScheme: %w", err)
		}
	}

	return s, nil
}

// Parameters returns the parameter set of the scheme.
func (s *Scheme) Parameters() Parameters {
	return s.params
}

// BatchWidth returns the configured batch width.
func (s *Scheme) BatchWidth() int {
	return s.width
}

// deriveCoins computes the deterministic encryption coins
// KDF1(m, pk) = H(H(m) || pk).
func (s *Scheme) deriveCoins(coins, m, pk []byte) {
	var seed [HashSize]byte
	s.hasher.Hash256(seed[:], m)
	s.hasher.Hash256(coins, seed[:], pk)
}

// deriveShared computes the shared secret KDF2(m, ct) = H(m || ct).
func (s *Scheme) deriveShared(ss, m, ct []byte) {
	s.hasher.Hash256(ss, m, ct)
}

func (s *Scheme) checkPublicKey(pk *PublicKey) error {
	if pk == nil || len(pk.Data) != s.params.PublicKeySize() {
		return fmt.Errorf("saber: invalid public key: expected %d bytes", s.params.PublicKeySize())
	}
	return nil
}

func (s *Scheme) checkPrivateKey(sk *PrivateKey) error {
	if sk == nil || len(sk.Data) != s.params.PrivateKeySize() {
		return fmt.Errorf("saber: invalid private key: expected %d bytes", s.params.PrivateKeySize())
	}
	return nil
}

func (s *Scheme) checkCiphertext(ct *Ciphertext) error {
	if ct == nil || len(ct.Data) != s.params.CiphertextSize() {
		return fmt.Errorf("saber: invalid ciphertext: expected %d bytes", s.params.CiphertextSize())
	}
	return nil
}

// GenerateKeyPair generates a fresh key pair. The private key carries the
// secret vector, a copy of the public key, its hash and the rejection seed
// consumed on decapsulation failure.
func (s *Scheme) GenerateKeyPair() (*PublicKey, *PrivateKey, error) {
	p := s.params

	pk := NewPublicKey(p)
	sk := NewPrivateKey(p)

	if err := cpaKeyGen(p, s.hasher, s.source, pk.Data, sk.Data[:p.cpaPrivateKeySize()]); err != nil {
		return nil, nil, fmt.Errorf("saber: key generation: %w", err)
	}

	if err := s.finishPrivateKey(pk, sk); err != nil {
		return nil, nil, fmt.Errorf("saber: key generation: %w", err)
	}

	return pk, sk, nil
}

// finishPrivateKey appends the public key copy, the public key hash and a
// fresh rejection seed to the secret vector of sk.
func (s *Scheme) finishPrivateKey(pk *PublicKey, sk *PrivateKey) error {
	p := s.params
	off := p.cpaPrivateKeySize()

	copy(sk.Data[off:], pk.Data)
	off += p.PublicKeySize()

	s.hasher.Hash256(sk.Data[off:off+HashSize], pk.Data)
	off += HashSize

	if _, err := io.ReadFull(s.source, sk.Data[off:]); err != nil {
		return fmt.Errorf("rejection seed: %w", err)
	}

	return nil
}

// Encapsulate draws a random message, encrypts it under pk with coins
// derived from the message and the key, and returns the ciphertext together
// with the established SharedSecretSize-byte shared secret.
func (s *Scheme) Encapsulate(pk *PublicKey) (*Ciphertext, []byte, error) {
	if err := s.checkPublicKey(pk); err != nil {
		return nil, nil, err
	}

	var m [MessageSize]byte
	if _, err := io.ReadFull(s.source, m[:]); err != nil {
		return nil, nil, fmt.Errorf("saber: encapsulation: message: %w", err)
	}

	return s.encapsulate(pk, m[:])
}

// EncapsulateDeterministic encapsulates the given MessageSize-byte message
// instead of a random draw. Fixing the message fixes the ciphertext and the
// shared secret; it is intended for reproducible test vectors.
func (s *Scheme) EncapsulateDeterministic(pk *PublicKey, m []byte) (*Ciphertext, []byte, error) {
	if err := s.checkPublicKey(pk); err != nil {
		return nil, nil, err
	}

	if len(m) != MessageSize {
		return nil, nil, fmt.Errorf("saber: invalid message size %d: expected %d", len(m), MessageSize)
	}

	return s.encapsulate(pk, m)
}

func (s *Scheme) encapsulate(pk *PublicKey, m []byte) (*Ciphertext, []byte, error) {
	p := s.params

	var coins [NoiseSeedSize]byte
	s.deriveCoins(coins[:], m, pk.Data)

	ct := NewCiphertext(p)
	cpaEncrypt(p, s.hasher, pk.Data, m, coins[:], ct.Data)

	ss := make([]byte, SharedSecretSize)
	s.deriveShared(ss, m, ct.Data)

	return ct, ss, nil
}

// Decapsulate recovers the shared secret established by ct. It always
// succeeds on well-sized inputs: the decrypted message is re-encrypted with
// re-derived coins, the ciphertexts are compared in constant time, and on a
// mismatch the rejection seed replaces the message, in constant time, before
// the one final derivation step that both paths share. The mismatch is never
// branched on.
func (s *Scheme) Decapsulate(sk *PrivateKey, ct *Ciphertext) ([]byte, error) {
	p := s.params

	if err := s.checkPrivateKey(sk); err != nil {
		return nil, err
	}
	if err := s.checkCiphertext(ct); err != nil {
		return nil, err
	}

	skCPA := sk.Data[:p.cpaPrivateKeySize()]
	pk := sk.Data[p.cpaPrivateKeySize() : p.cpaPrivateKeySize()+p.PublicKeySize()]
	z := sk.Data[len(sk.Data)-SharedSecretSize:]

	var m [MessageSize]byte
	cpaDecrypt(p, skCPA, ct.Data, m[:])

	var coins [NoiseSeedSize]byte
	s.deriveCoins(coins[:], m[:], pk)

	ctPrime := make([]byte, p.CiphertextSize())
	cpaEncrypt(p, s.hasher, pk, m[:], coins[:], ctPrime)

	ok := subtle.ConstantTimeCompare(ct.Data, ctPrime)
	subtle.ConstantTimeCopy(1-ok, m[:], z)

	ss := make([]byte, SharedSecretSize)
	s.deriveShared(ss, m[:], ct.Data)

	return ss, nil
}

// GenerateKeyPairBatch generates n independent key pairs, advancing the
// lattice steps of BatchWidth instances concurrently; a remainder shorter
// than the batch width falls back to the single-instance path.
func (s *Scheme) GenerateKeyPairBatch(n int) ([]*PublicKey, []*PrivateKey, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("saber: invalid batch size %d", n)
	}

	p := s.params

	pks := make([]*PublicKey, n)
	sks := make([]*PrivateKey, n)
	for i := range pks {
		pks[i] = NewPublicKey(p)
		sks[i] = NewPrivateKey(p)
	}

	for i := 0; i < n; {
		if w := s.width; w > 1 && n-i >= w {

			pkData := make([][]byte, w)
			skData := make([][]byte, w)
			for k := 0; k < w; k++ {
				pkData[k] = pks[i+k].Data
				skData[k] = sks[i+k].Data[:p.cpaPrivateKeySize()]
			}

			if err := cpaKeyGenBatch(p, s.hasher, s.source, pkData, skData); err != nil {
				return nil, nil, fmt.Errorf("saber: key generation: %w", err)
			}

			i += w

		} else {

			if err := cpaKeyGen(p, s.hasher, s.source, pks[i].Data, sks[i].Data[:p.cpaPrivateKeySize()]); err != nil {
				return nil, nil, fmt.Errorf("saber: key generation: %w", err)
			}

			i++
		}
	}

	for i := range sks {
		if err := s.finishPrivateKey(pks[i], sks[i]); err != nil {
			return nil, nil, fmt.Errorf("saber: key generation: %w", err)
		}
	}

	return pks, sks, nil
}

// EncapsulateBatch encapsulates under every key of pks, advancing BatchWidth
// instances concurrently through the batched pipeline; a remainder shorter
// than the batch width falls back to the single-instance path. One error
// covers the whole call, with no partial results.
func (s *Scheme) EncapsulateBatch(pks []*PublicKey) ([]*Ciphertext, [][]byte, error) {
	n := len(pks)
	if n == 0 {
		return nil, nil, fmt.Errorf("saber: empty batch")
	}

	for _, pk := range pks {
		if err := s.checkPublicKey(pk); err != nil {
			return nil, nil, err
		}
	}

	p := s.params

	ms := make([][]byte, n)
	coins := make([][]byte, n)
	cts := make([]*Ciphertext, n)

	for i := 0; i < n; i++ {
		ms[i] = make([]byte, MessageSize)
		if _, err := io.ReadFull(s.source, ms[i]); err != nil {
			return nil, nil, fmt.Errorf("saber: encapsulation: message: %w", err)
		}

		coins[i] = make([]byte, NoiseSeedSize)
		s.deriveCoins(coins[i], ms[i], pks[i].Data)

		cts[i] = NewCiphertext(p)
	}

	if err := s.encryptBatch(pks, ms, coins, cts); err != nil {
		return nil, nil, fmt.Errorf("saber: encapsulation: %w", err)
	}

	sss := make([][]byte, n)
	for i := 0; i < n; i++ {
		sss[i] = make([]byte, SharedSecretSize)
		s.deriveShared(sss[i], ms[i], cts[i].Data)
	}

	return cts, sss, nil
}

// encryptBatch runs the deterministic encryption of every slot, batched in
// groups of the configured width with a single-instance remainder.
func (s *Scheme) encryptBatch(pks []*PublicKey, ms, coins [][]byte, cts []*Ciphertext) error {
	p := s.params
	n := len(pks)

	for i := 0; i < n; {
		if w := s.width; w > 1 && n-i >= w {

			pkData := make([][]byte, w)
			ctData := make([][]byte, w)
			for k := 0; k < w; k++ {
				pkData[k] = pks[i+k].Data
				ctData[k] = cts[i+k].Data
			}

			if err := cpaEncryptBatch(p, s.hasher, pkData, ms[i:i+w], coins[i:i+w], ctData); err != nil {
				return err
			}

			i += w

		} else {
			cpaEncrypt(p, s.hasher, pks[i].Data, ms[i], coins[i], cts[i].Data)
			i++
		}
	}

	return nil
}

// DecapsulateBatch decapsulates cts[i] with sks[i] for every slot, advancing
// BatchWidth instances concurrently; a remainder shorter than the batch
// width falls back to the single-instance path. Re-encryption mismatches
// stay inside their slot: a corrupted slot yields its rejection value
// through the constant-time substitution while every other slot returns the
// same bytes the single-instance path would.
func (s *Scheme) DecapsulateBatch(sks []*PrivateKey, cts []*Ciphertext) ([][]byte, error) {
	n := len(sks)
	if n == 0 {
		return nil, fmt.Errorf("saber: empty batch")
	}
	if len(cts) != n {
		return nil, fmt.Errorf("saber: %d private keys against %d ciphertexts", n, len(cts))
	}

	for i := range sks {
		if err := s.checkPrivateKey(sks[i]); err != nil {
			return nil, err
		}
		if err := s.checkCiphertext(cts[i]); err != nil {
			return nil, err
		}
	}

	p := s.params
	cpaSize := p.cpaPrivateKeySize()

	ms := make([][]byte, n)
	for i := range ms {
		ms[i] = make([]byte, MessageSize)
	}

	for i := 0; i < n; {
		if w := s.width; w > 1 && n-i >= w {

			skData := make([][]byte, w)
			ctData := make([][]byte, w)
			for k := 0; k < w; k++ {
				skData[k] = sks[i+k].Data[:cpaSize]
				ctData[k] = cts[i+k].Data
			}

			if err := cpaDecryptBatch(p, skData, ctData, ms[i:i+w]); err != nil {
				return nil, fmt.Errorf("saber: decapsulation: %w", err)
			}

			i += w

		} else {
			cpaDecrypt(p, sks[i].Data[:cpaSize], cts[i].Data, ms[i])
			i++
		}
	}

	pkOf := func(i int) []byte {
		return sks[i].Data[cpaSize : cpaSize+p.PublicKeySize()]
	}

	coins := make([][]byte, n)
	ctPrimes := make([][]byte, n)
	for i := 0; i < n; i++ {
		coins[i] = make([]byte, NoiseSeedSize)
		s.deriveCoins(coins[i], ms[i], pkOf(i))
		ctPrimes[i] = make([]byte, p.CiphertextSize())
	}

	for i := 0; i < n; {
		if w := s.width; w > 1 && n-i >= w {

			pkData := make([][]byte, w)
			for k := 0; k < w; k++ {
				pkData[k] = pkOf(i + k)
			}

			if err := cpaEncryptBatch(p, s.hasher, pkData, ms[i:i+w], coins[i:i+w], ctPrimes[i:i+w]); err != nil {
				return nil, fmt.Errorf("saber: decapsulation: %w", err)
			}

			i += w

		} else {
			cpaEncrypt(p, s.hasher, pkOf(i), ms[i], coins[i], ctPrimes[i])
			i++
		}
	}

	sss := make([][]byte, n)
	for i := 0; i < n; i++ {
		z := sks[i].Data[len(sks[i].Data)-SharedSecretSize:]

		ok := subtle.ConstantTimeCompare(cts[i].Data, ctPrimes[i])
		subtle.ConstantTimeCopy(1-ok, ms[i], z)

		sss[i] = make([]byte, SharedSecretSize)
		s.deriveShared(sss[i], ms[i], cts[i].Data)
	}

	return sss, nil
}
