package xalloc

import (
	"encoding/binary"
	"unsafe"
)

const (
	// slotMetaSize is the slot prefix: a 4-byte offset from the chunk base
	// back to the prefix itself, then the 1-byte arena index.
	slotMetaSize = 5

	// largeMetaSize is the large-mapping prefix: the 8-byte total mapping
	// size, then the 1-byte large sentinel.
	largeMetaSize = 9

	// largeFlag is the flag byte preceding every large-path pointer. Bucket
	// pointers carry their arena index there instead, always < arenaCount.
	largeFlag = 0xff
)

// headerPages is how many leading 4 KiB pages of a chunk stay resident for
// the header; everything past them is advised away at reserve time.
const headerPages = 5

// bitmapWords sizes the free-slot bitmap. 2497 words (159808 bits) cover
// the slot count of every bucket; the smallest needs 159780.
const bitmapWords = 2497

// msbHigh selects the bitmap bit for the first slot of a word; slots run
// MSB-first so a fully taken word compares equal to all ones.
const msbHigh = uint64(1) << 63

// chunkHeader sits at the base of every bucket chunk. The slot array
// follows immediately after. The explicit padding pins the layout the slot
// offsets are computed against.
type chunkHeader struct {
	encodedSize uint8
	_           [7]byte
	next        *chunkHeader
	lastOffset  uint32
	_           [4]byte
	bitmap      [bitmapWords]uint64
}

const headerSize = int(unsafe.Sizeof(chunkHeader{}))

// Layout assertions: the header is exactly the 20000 bytes the slot
// geometry assumes, and fits inside the pages kept resident.
var (
	_ [20000]byte = [unsafe.Sizeof(chunkHeader{})]byte{}
	_ [headerPages*smallPage - headerSize]byte
)

// slotTaken reports whether slot i is marked taken.
func (h *chunkHeader) slotTaken(i uint32) bool {
	return h.bitmap[i>>6]&(msbHigh>>(i&63)) != 0
}

// takeSlot marks slot i taken and moves the search cursor onto it.
func (h *chunkHeader) takeSlot(i uint32) {
	h.lastOffset = i
	h.bitmap[i>>6] |= msbHigh >> (i & 63)
}

// releaseSlot clears slot i. The cursor is left alone; a stale cursor only
// costs the next scan one extra wrap.
func (h *chunkHeader) releaseSlot(i uint32) {
	h.bitmap[i>>6] &^= msbHigh >> (i & 63)
}

// slotPayload returns the user pointer for slot i after stamping the slot
// prefix: the self-offset back to the prefix and the owning arena. The
// prefix is written through a byte view so the payload region is only ever
// treated as raw bytes.
func (h *chunkHeader) slotPayload(bucket int, i uint32, arena uint8) unsafe.Pointer {
	prefixOff := uint32(headerSize) + i*uint32(slotStride(bucket))
	prefix := unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(h), prefixOff)), slotMetaSize)
	binary.LittleEndian.PutUint32(prefix[:4], prefixOff)
	prefix[4] = arena
	return unsafe.Add(unsafe.Pointer(h), prefixOff+slotMetaSize)
}

// headerOfPointer recovers the chunk header behind a bucket pointer by
// following the self-offset stored in the slot prefix. The prefix offset is
// returned so callers can derive the slot index once they know the bucket.
func headerOfPointer(p unsafe.Pointer) (*chunkHeader, uint32) {
	prefix := unsafe.Add(p, -slotMetaSize)
	prefixOff := binary.LittleEndian.Uint32(unsafe.Slice((*byte)(prefix), 4))
	h := (*chunkHeader)(unsafe.Add(prefix, -int(prefixOff)))
	return h, prefixOff
}

// slotIndex converts a slot prefix offset back to its slot number.
func slotIndex(prefixOff uint32, bucket int) uint32 {
	return (prefixOff - uint32(headerSize)) / uint32(slotStride(bucket))
}

// flagByte reads the flag preceding a user pointer: largeFlag for the
// large path, otherwise the arena index stamped at allocation time.
func flagByte(p unsafe.Pointer) uint8 {
	return *(*uint8)(unsafe.Add(p, -1))
}

// largeBase returns the mapping base and total size behind a large-path
// pointer.
func largeBase(p unsafe.Pointer) (unsafe.Pointer, int) {
	base := unsafe.Add(p, -largeMetaSize)
	size := binary.LittleEndian.Uint64(unsafe.Slice((*byte)(base), 8))
	return base, int(size)
}
