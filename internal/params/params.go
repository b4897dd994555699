// Package params provides the Diffie-Hellman group parameters shared by
// every session on a server instance: a well-known default group, a
// generator for fresh safe primes, and a SQLite-backed cache so the
// expensive generation step is not repeated across restarts.
package params

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultBits is the recommended prime size.
const DefaultBits = 2048

// Group is a DH group: an odd prime modulus and a generator.
type Group struct {
	P *big.Int
	G *big.Int
}

// 2048-bit MODP Group from RFC 3526, generator 2.
const rfc3526Prime2048 = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728E5A8AACAA68FFFFFFFFFFFFFFFF"

// DefaultGroup returns the RFC 3526 2048-bit MODP group.
func DefaultGroup() Group {
	p, _ := new(big.Int).SetString(rfc3526Prime2048, 16)
	return Group{P: p, G: big.NewInt(2)}
}

// Generate searches for a fresh safe prime of the given bit length and
// returns it with generator 2. A safe prime p = 2q+1 with q prime and
// p ≡ 11 (mod 24) guarantees 2 generates the full group, matching what
// the reference parameter generator produces. The search is CPU-heavy and
// can be cancelled through ctx.
func Generate(ctx context.Context, bits int) (Group, error) {
	if bits < 16 {
		return Group{}, fmt.Errorf("params: prime size %d too small", bits)
	}
	q := new(big.Int)
	one := big.NewInt(1)
	rem := big.NewInt(11)
	mod := big.NewInt(24)

	for {
		if err := ctx.Err(); err != nil {
			return Group{}, fmt.Errorf("params: generation cancelled: %w", err)
		}
		p, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			return Group{}, fmt.Errorf("params: drawing prime candidate: %w", err)
		}
		if new(big.Int).Mod(p, mod).Cmp(rem) != 0 {
			continue
		}
		q.Rsh(new(big.Int).Sub(p, one), 1)
		if q.ProbablyPrime(20) {
			return Group{P: p, G: big.NewInt(2)}, nil
		}
	}
}

// Validate checks the structural invariants of a group: p an odd probable
// prime and g in (1, p-1).
func (g Group) Validate() error {
	if g.P == nil || g.G == nil {
		return fmt.Errorf("params: group is incomplete")
	}
	if g.P.Bit(0) == 0 || !g.P.ProbablyPrime(20) {
		return fmt.Errorf("params: modulus is not prime")
	}
	pMinusOne := new(big.Int).Sub(g.P, big.NewInt(1))
	if g.G.Cmp(big.NewInt(1)) <= 0 || g.G.Cmp(pMinusOne) >= 0 {
		return fmt.Errorf("params: generator out of range")
	}
	return nil
}
