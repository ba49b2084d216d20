package compilecache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Fingerprint computes the cache key for input: a SHA-256 digest over
// source contents, their relative paths, the declared API version, the
// host toolchain identity and compilation flags (spec §4.C). Sources are
// hashed in path-sorted order so fingerprint does not depend on traversal
// order.
func Fingerprint(input FingerprintInput) string {
	sources := make([]SourceFile, len(input.Sources))
	copy(sources, input.Sources)
	sort.Slice(sources, func(i, j int) bool { return sources[i].RelativePath < sources[j].RelativePath })

	h := sha256.New()
	for _, s := range sources {
		h.Write([]byte(s.RelativePath))
		h.Write([]byte{0})
		h.Write(s.Content)
		h.Write([]byte{0})
	}
	h.Write([]byte(input.APIVersion))
	h.Write([]byte{0})
	h.Write([]byte(input.ToolchainID))
	h.Write([]byte{0})
	for _, f := range input.Flags {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
