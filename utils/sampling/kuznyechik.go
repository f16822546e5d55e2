package sampling

import (
	"fmt"
	"sync"

	"go.cypherpunks.ru/gogost/v5/gost3412128"
)

// KuznyechikSeedSize is the seed size of the KuznyechikPRNG in bytes.
const KuznyechikSeedSize = gost3412128.KeySize

// KuznyechikPRNG is a deterministic PRNG running the GOST R 34.12-2015
// (Kuznyechik) block cipher in counter mode. The whole generator state is
// the pair (key, counter) held by the structure; the counter is incremented
// big-endian once per 16-byte keystream block. Forward sequence security is
// obtained by calling Rekey, which replaces the key and the counter with
// fresh keystream and makes earlier outputs uncomputable from the new state.
// WARNING: KuznyechikPRNG should NOT be called by multiple threads. If that
// occurs, the generated sequence will not be deterministic.
type KuznyechikPRNG struct {
	mutex   sync.Mutex
	seed    []byte
	cipher  *gost3412128.Cipher
	counter [gost3412128.BlockSize]byte
	stream  [gost3412128.BlockSize]byte
	avail   int
}

// NewKuznyechikPRNG creates a new instance of KuznyechikPRNG seeded with the
// given KuznyechikSeedSize-byte seed, used as the initial cipher key. The
// counter starts at zero.
func NewKuznyechikPRNG(seed []byte) (*KuznyechikPRNG, error) {

	if len(seed) != KuznyechikSeedSize {
		return nil, fmt.Errorf("invalid seed size %d: must be %d bytes", len(seed), KuznyechikSeedSize)
	}

	prng := new(KuznyechikPRNG)
	prng.seed = make([]byte, KuznyechikSeedSize)
	copy(prng.seed, seed)
	prng.cipher = gost3412128.NewCipher(seed)

	return prng, nil
}

// Key returns a copy of the seed used to instantiate the PRNG.
// This value can be used with `NewKuznyechikPRNG` to instantiate a new PRNG
// that will produce the same stream of bytes.
func (prng *KuznyechikPRNG) Key() (key []byte) {
	key = make([]byte, len(prng.seed))
	copy(key, prng.seed)
	return
}

// Read reads bytes from the KuznyechikPRNG on sum.
// WARNING: Read() should NOT be called concurrently by multiple threads. If
// that occurs, the generated sequence will not be deterministic.
func (prng *KuznyechikPRNG) Read(sum []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()

	for n < len(sum) {
		if prng.avail == 0 {
			prng.nextBlock()
		}
		c := copy(sum[n:], prng.stream[gost3412128.BlockSize-prng.avail:])
		prng.avail -= c
		n += c
	}

	return n, nil
}

// Rekey replaces the cipher key with the next 32 bytes of keystream and the
// counter with the following 16, then discards any buffered keystream.
// Outputs generated before the call cannot be recomputed from the new state.
func (prng *KuznyechikPRNG) Rekey() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()

	var update [gost3412128.KeySize + gost3412128.BlockSize]byte

	for i := 0; i < len(update); i += gost3412128.BlockSize {
		prng.incrementCounter()
		prng.cipher.Encrypt(update[i:i+gost3412128.BlockSize], prng.counter[:])
	}

	prng.cipher = gost3412128.NewCipher(update[:gost3412128.KeySize])
	copy(prng.counter[:], update[gost3412128.KeySize:])
	prng.avail = 0
}

// Reset restores the PRNG to the state it had right after
// NewKuznyechikPRNG.
func (prng *KuznyechikPRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()

	prng.cipher = gost3412128.NewCipher(prng.seed)
	prng.counter = [gost3412128.BlockSize]byte{}
	prng.avail = 0
}

func (prng *KuznyechikPRNG) nextBlock() {
	prng.incrementCounter()
	prng.cipher.Encrypt(prng.stream[:], prng.counter[:])
	prng.avail = gost3412128.BlockSize
}

func (prng *KuznyechikPRNG) incrementCounter() {
	for i := gost3412128.BlockSize - 1; i >= 0; i-- {
		prng.counter[i]++
		if prng.counter[i] != 0 {
			return
		}
	}
}
