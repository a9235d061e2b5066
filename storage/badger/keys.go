package badger

import (
	"encoding/binary"

	"github.com/poiesic/recallit/core"
)

// Key prefixes for different data types
const (
	passagePrefix = "psg"
	ownerPrefix   = "own"
)

// ownerHash collapses an owner name to a fixed-width hash so every key
// carrying it stays fixed-length and prefix scans stay exact.
func ownerHash(owner string) uint64 {
	return uint64(core.IDFromContent(owner))
}

// makePassageKey generates the primary key for a passage.
// Format: psg:<ownerHash>:<passageID>, both hashes in BigEndian order so
// lexicographic iteration groups one owner's passages together.
func makePassageKey(owner string, id core.ID) []byte {
	prefix := passagePrefix + ":"
	buf := make([]byte, len(prefix)+17) // 8 bytes owner + ':' + 8 bytes id
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], ownerHash(owner))
	offset += 8
	buf[offset] = ':'
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeOwnerScanPrefix generates the key prefix covering every passage of
// one owner.
func makeOwnerScanPrefix(owner string) []byte {
	prefix := passagePrefix + ":"
	buf := make([]byte, len(prefix)+9) // 8 bytes owner + trailing ':'
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], ownerHash(owner))
	buf[offset+8] = ':'
	return buf
}

// makeOwnerKey generates the key holding an owner's name.
// Format: own:<ownerHash>
func makeOwnerKey(owner string) []byte {
	prefix := ownerPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], ownerHash(owner))
	return buf
}

// ownerScanPrefix covers every owner-name key.
func ownerScanPrefix() []byte {
	return []byte(ownerPrefix + ":")
}

// passageScanPrefix covers every passage key of every owner.
func passageScanPrefix() []byte {
	return []byte(passagePrefix + ":")
}
