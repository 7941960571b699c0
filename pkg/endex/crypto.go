package endex

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 10000
	keySize          = 32
	ivSize           = aes.BlockSize // 16
	blockSize        = aes.BlockSize // keystream is addressed in 16-byte blocks
)

// DeriveKey derives a 32-byte AES-256 key from password and salt using
// PBKDF2-HMAC-SHA256 with 10,000 iterations, per spec §4.A.
func DeriveKey(password string, salt [16]byte) ([keySize]byte, error) {
	raw := pbkdf2.Key([]byte(password), salt[:], pbkdf2Iterations, keySize, sha256.New)

	var key [keySize]byte
	copy(key[:], raw)

	return key, nil
}

// RandomSalt draws a fresh 16-byte salt from the platform CSPRNG.
func RandomSalt() ([16]byte, error) {
	var salt [16]byte

	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return salt, newErr(CryptoInit, err)
	}

	return salt, nil
}

// ZeroKey overwrites key material in place. Called when a handle closes.
func ZeroKey(key *[keySize]byte) {
	for i := range key {
		key[i] = 0
	}
}

// streamProcess XORs data in place with the AES-256-CTR keystream for
// the byte range starting at absolute offset off, given the file's
// 16-byte volume salt-derived key. It implements the spec §4.A
// keystream addressing rule: the IV is 16 zero bytes with a 64-bit
// big-endian block number in the low 8 bytes, where
// block_number = off / 16, and the first off%16 bytes of keystream for
// that block are discarded before XORing data.
//
// Because the keystream is a pure function of (key, off), two callers
// encrypting disjoint byte ranges never interfere with each other, even
// though they may run concurrently on the same mapping.
func streamProcess(key [keySize]byte, off uint64, data []byte) error {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return newErr(CryptoInit, err)
	}

	blockNumber := off / blockSize
	skip := int(off % blockSize)

	var iv [ivSize]byte
	binary.BigEndian.PutUint64(iv[ivSize-8:], blockNumber)

	stream := cipher.NewCTR(block, iv[:])
	if skip > 0 {
		discard := make([]byte, skip)
		stream.XORKeyStream(discard, discard)
	}

	stream.XORKeyStream(data, data)

	return nil
}
