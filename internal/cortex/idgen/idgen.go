// Package idgen generates stable, content-derived engram ids: a
// base36-encoded hash over an engram's tenant, content, and creation
// time.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// encodeBase36 converts data to a base36 string of exactly length
// characters, zero-padded on the left and truncated to the least
// significant digits if it overflows.
func encodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)

	base := big.NewInt(36)
	zero := big.NewInt(0)
	mod := new(big.Int)

	chars := make([]byte, 0, length)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}

	var out strings.Builder
	for i := len(chars) - 1; i >= 0; i-- {
		out.WriteByte(chars[i])
	}

	str := out.String()
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	if len(str) > length {
		str = str[len(str)-length:]
	}
	return str
}

// EngramID derives a stable "eng-xxxxxxxx" id from an engram's tenant,
// content, and creation timestamp. nonce lets a caller retry on the
// rare collision without changing any other input.
func EngramID(tenantID, content string, createdAt time.Time, nonce int) string {
	payload := fmt.Sprintf("%s|%s|%d|%d", tenantID, content, createdAt.UnixNano(), nonce)
	sum := sha256.Sum256([]byte(payload))
	// 5 bytes -> ~7.7 base36 digits; 8 chars gives comfortable headroom
	// against collisions at the scale this engine targets.
	return "eng-" + encodeBase36(sum[:5], 8)
}

// SilentTwinID hashes the given id into a "sil-" prefixed id; the same
// input always yields the same output.
func SilentTwinID(activeID string) string {
	sum := sha256.Sum256([]byte("silent\x00" + activeID))
	return "sil-" + encodeBase36(sum[:5], 8)
}
