package types

import (
	"crypto/sha256"
	"encoding/hex"
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ChainHash computes the hash-chain entry for an engram row: it binds
// the previous hash, the engram id, and the content hash so any
// tampering with an earlier row is detectable by verify_chain.
func ChainHash(prevHash, engramID, contentHash string) string {
	return sha256Hex(prevHash + "\x00" + engramID + "\x00" + contentHash)
}
