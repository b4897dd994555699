// Package crypto implements the secure-session primitives: Diffie-Hellman
// key agreement with its fixed-width handshake frame, and the AES-CBC
// message envelope used for all post-handshake traffic.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
)

// SessionKeySize is the length of the derived symmetric key in bytes.
const SessionKeySize = sha256.Size

// ErrKeyExchangeFailed reports a malformed or unusable peer value during
// the handshake. The connection it occurred on must be discarded.
var ErrKeyExchangeFailed = errors.New("crypto: key exchange failed")

// KeyPair is one side's ephemeral DH keys for a single session. The private
// exponent never leaves the process and should be discarded once the shared
// secret is derived.
type KeyPair struct {
	Private *big.Int
	Public  *big.Int
}

// GenerateKeyPair draws a fresh private exponent uniformly from [0, p) and
// computes the matching public key g^private mod p.
func GenerateKeyPair(g, p *big.Int) (*KeyPair, error) {
	private, err := rand.Int(rand.Reader, p)
	if err != nil {
		return nil, fmt.Errorf("crypto: generating private key: %w", err)
	}
	return &KeyPair{
		Private: private,
		Public:  new(big.Int).Exp(g, private, p),
	}, nil
}

// SharedSecret computes peerPublic^private mod p. The peer's public value
// must lie in (1, p-1); anything outside that range can never produce a
// usable key and aborts the exchange.
func SharedSecret(peerPublic, private, p *big.Int) (*big.Int, error) {
	one := big.NewInt(1)
	pMinusOne := new(big.Int).Sub(p, one)
	if peerPublic.Cmp(one) <= 0 || peerPublic.Cmp(pMinusOne) >= 0 {
		return nil, fmt.Errorf("%w: peer public key out of range", ErrKeyExchangeFailed)
	}
	return new(big.Int).Exp(peerPublic, private, p), nil
}

// SessionKey derives the symmetric key from a shared secret: SHA-256 over
// the secret's minimal big-endian byte representation. Both peers of a
// correct exchange obtain byte-identical keys.
func SessionKey(secret *big.Int) []byte {
	sum := sha256.Sum256(secret.Bytes())
	return sum[:]
}
