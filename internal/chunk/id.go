package chunk

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a fixed 256-bit hash.
type Digest [32]byte

// HashString digests a single string.
func HashString(s string) Digest {
	return sha256.Sum256([]byte(s))
}

// Combine builds an aggregate hash: H(content || dep1 || dep2 ...).
// The order of deps must be deterministic.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// DeriveID computes a deterministic chunk item id from the resolved module
// path and the chunking-context fingerprint. Identical inputs always produce
// the identical id, so manifest consumers can correlate ids across
// incremental rebuilds.
func DeriveID(modulePath, contextFingerprint string) string {
	d := Combine(HashString(modulePath), HashString(contextFingerprint))
	return hex.EncodeToString(d[:8])
}
