package transfer

import (
	crand "crypto/rand"
	"math/big"
	mrand "math/rand"
)

// Source draws uniform integers in [0, max). Selectors take a Source instead
// of touching process-wide random state, so tests can pin the draws.
type Source interface {
	Int(max *big.Int) (*big.Int, error)
}

// CryptoSource returns a Source backed by crypto/rand.
func CryptoSource() Source { return cryptoSource{} }

type cryptoSource struct{}

func (cryptoSource) Int(max *big.Int) (*big.Int, error) {
	return crand.Int(crand.Reader, max)
}

// SeededSource returns a deterministic Source; the same seed yields the same
// sequence of draws. Not safe for concurrent use.
func SeededSource(seed int64) Source {
	return &seededSource{r: mrand.New(mrand.NewSource(seed))}
}

type seededSource struct {
	r *mrand.Rand
}

func (s *seededSource) Int(max *big.Int) (*big.Int, error) {
	return new(big.Int).Rand(s.r, max), nil
}
