package ethutil

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// GeneratePrivateKey derives a deterministic treasury key from a secret and
// a nonce. The same (secret, nonce) pair always yields the same key.
func GeneratePrivateKey(secret, nonce []byte) (*ecdsa.PrivateKey, error) {
	seed := sha256.Sum256(append(secret, nonce...))
	randomSeed := bytes.Repeat(seed[:], 2)
	reader := bytes.NewReader(randomSeed)
	return ecdsa.GenerateKey(ethcrypto.S256(), reader)
}
