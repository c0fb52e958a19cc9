// Package bloomfilter implements the Bloom Fast-Negative filter (C14):
// an O(1) "might this exact content already exist?" pre-check that runs
// before the costlier ART resonance gate, using md5+sha1 double
// hashing and the standard optimal m/k sizing formulas.
package bloomfilter

import (
	"crypto/md5"
	"crypto/sha1"
	"math"
	"math/big"
	"sync"
)

// Filter is a space-efficient probabilistic set membership test. False
// positives are possible; false negatives are not. Safe for concurrent
// use.
type Filter struct {
	mu   sync.RWMutex
	bits []byte
	m    int // bit array size
	k    int // hash function count
}

// New builds a Filter sized for expectedItems elements at the given
// false-positive rate, matching bloom.py's constructor defaults and
// clamps (non-positive expectedItems becomes 1, fpRate outside (0,1)
// becomes 0.01).
func New(expectedItems int, fpRate float64) *Filter {
	if expectedItems <= 0 {
		expectedItems = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}

	// Optimal bit array size: m = -n*ln(p) / (ln2)^2
	m := int(-float64(expectedItems) * math.Log(fpRate) / (math.Ln2 * math.Ln2))
	if m < 64 {
		m = 64
	}

	// Optimal hash function count: k = (m/n) * ln2
	k := int(float64(m) / float64(expectedItems) * math.Ln2)
	if k < 1 {
		k = 1
	}

	return &Filter{
		bits: make([]byte, m/8+1),
		m:    m,
		k:    k,
	}
}

// hashPositions generates k bit positions for item using double hashing
// over md5/sha1 digests, mirroring bloom.py's _hashes.
func (f *Filter) hashPositions(item string) []int {
	h1 := new(big.Int).SetBytes(md5Sum(item))
	h2 := new(big.Int).SetBytes(sha1Sum(item))
	mBig := big.NewInt(int64(f.m))

	positions := make([]int, f.k)
	acc := new(big.Int)
	for i := 0; i < f.k; i++ {
		acc.Mul(big.NewInt(int64(i)), h2)
		acc.Add(acc, h1)
		acc.Mod(acc, mBig)
		positions[i] = int(acc.Int64())
	}
	return positions
}

func md5Sum(s string) []byte {
	sum := md5.Sum([]byte(s))
	return sum[:]
}

func sha1Sum(s string) []byte {
	sum := sha1.Sum([]byte(s))
	return sum[:]
}

// Add inserts item into the filter.
func (f *Filter) Add(item string) {
	positions := f.hashPositions(item)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pos := range positions {
		byteIdx, bitIdx := pos/8, pos%8
		f.bits[byteIdx] |= 1 << uint(bitIdx)
	}
}

// MightContain reports whether item MIGHT be present. A false result
// guarantees item was never added.
func (f *Filter) MightContain(item string) bool {
	positions := f.hashPositions(item)
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, pos := range positions {
		byteIdx, bitIdx := pos/8, pos%8
		if f.bits[byteIdx]&(1<<uint(bitIdx)) == 0 {
			return false
		}
	}
	return true
}

// SizeBytes is the filter's memory footprint.
func (f *Filter) SizeBytes() int { return len(f.bits) }

// HashCount is the number of hash functions (k) in use.
func (f *Filter) HashCount() int { return f.k }

// BitCount is the size of the underlying bit array (m).
func (f *Filter) BitCount() int { return f.m }
