package sampling

import (
	"crypto/rand"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// KeyLength is the length of the keys generated by NewPRNG.
const KeyLength = 32

// KeyedPRNG deterministically generates a sequence of random bytes from a key with
// the blake2b XOF. Two KeyedPRNG with the same key produce the same sequence, which
// makes sampled verifications reproducible.
type KeyedPRNG struct {
	mutex sync.Mutex
	key   []byte
	xof   blake2b.XOF
}

// NewKeyedPRNG creates a new KeyedPRNG seeded with key. A nil key is treated as
// an empty key.
func NewKeyedPRNG(key []byte) (prng *KeyedPRNG, err error) {
	prng = &KeyedPRNG{key: append([]byte{}, key...)}
	if prng.xof, err = blake2b.NewXOF(blake2b.OutputLengthUnknown, prng.key); err != nil {
		return nil, xerrors.Errorf("cannot NewKeyedPRNG: %w", err)
	}
	return prng, nil
}

// NewPRNG creates a new KeyedPRNG seeded with a random key of KeyLength bytes.
func NewPRNG() (*KeyedPRNG, error) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, xerrors.Errorf("cannot NewPRNG: %w", err)
	}
	return NewKeyedPRNG(key)
}

// Key returns a copy of the key used to seed the PRNG.
func (prng *KeyedPRNG) Key() (key []byte) {
	return append([]byte{}, prng.key...)
}

// Read reads the next len(sum) bytes of the sequence.
func (prng *KeyedPRNG) Read(sum []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	return prng.xof.Read(sum)
}

// Reset restarts the sequence.
func (prng *KeyedPRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	prng.xof.Reset()
}
