// Package util provides content hashing helpers.
package util

import (
	"crypto/sha256"
	"encoding/hex"
)

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// FieldsHash hashes an ordered list of fields. Fields are length-prefixed so
// ("ab", "c") and ("a", "bc") hash differently.
func FieldsHash(fields ...string) string {
	h := sha256.New()
	var n [8]byte
	for _, f := range fields {
		l := uint64(len(f))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}
