// Package hrw implements rendezvous (highest random weight) hashing.
package hrw

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Index returns the position in members with the highest score for key.
// ok is false when members is empty. The same key, member set and seed
// always yield the same index; removing a member only moves the keys that
// were assigned to it.
func Index(key string, members []string, seed string) (idx int, ok bool) {
	if len(members) == 0 {
		return 0, false
	}
	keyB := []byte(key)
	var best uint64
	for i, m := range members {
		s := score(keyB, m, seed)
		if i == 0 || s > best {
			best, idx = s, i
		}
	}
	return idx, true
}

func score(key []byte, member string, seed string) uint64 {
	// 8 byte digest, read as a big endian uint64
	h, _ := blake2b.New(8, nil)
	if seed != "" {
		h.Write([]byte(seed))
		h.Write([]byte{0})
	}
	h.Write(key)
	h.Write([]byte{0})
	h.Write([]byte(member))
	return binary.BigEndian.Uint64(h.Sum(nil))
}
