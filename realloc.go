package xalloc

import (
	"unsafe"

	"github.com/sirupsen/logrus"
)

// Realloc resizes an allocation to size bytes, preserving contents. The
// pointer is returned unchanged whenever the new size still fits its
// current backing and is not small enough to be worth reclaiming; otherwise
// a fresh allocation is made, the payload copied, and the old one freed.
//
// Realloc(nil, n) returns nil rather than allocating, unlike the usual
// realloc contract. Callers are expected to handle the nil case themselves.
func Realloc(prev unsafe.Pointer, size int) unsafe.Pointer {
	if prev == nil {
		return nil
	}
	if size < 0 {
		panic("xalloc: negative allocation size")
	}

	flag := flagByte(prev)
	if flag == largeFlag {
		_, total := largeBase(prev)
		payload := total - largeMetaSize

		// Grown past the mapping, or shrunk below three quarters of it:
		// move. Anything in between keeps the mapping.
		if size > payload || size < payload*3/4 {
			return moveAllocation(prev, size, payload)
		}
		return prev
	}
	if flag >= arenaCount {
		logrus.WithFields(logrus.Fields{"ptr": prev, "flag": flag}).
			Fatal("xalloc: corrupt arena flag")
	}

	h, _ := headerOfPointer(prev)
	cur := decodeSize(h.encodedSize)

	// The bucketed shrink threshold is two thirds, looser than the large
	// path's, so neighboring buckets do not ping-pong. The smallest bucket
	// is pinned: there is nothing below it to shrink into.
	if size > bucketMax || size > cur || (size < cur*2/3 && cur != bucketMin) {
		return moveAllocation(prev, size, cur)
	}
	return prev
}

// ReallocBytes resizes a slice previously returned by MallocBytes to
// length n. A nil slice yields nil, mirroring Realloc.
func ReallocBytes(b []byte, n int) []byte {
	d := unsafe.SliceData(b)
	if d == nil {
		return nil
	}
	p := Realloc(unsafe.Pointer(d), n)
	return unsafe.Slice((*byte)(p), payloadFor(n))[:n]
}

// moveAllocation is the relocating path: allocate fresh, copy whatever fits
// of the old payload, free the old allocation.
func moveAllocation(prev unsafe.Pointer, size, prevPayload int) unsafe.Pointer {
	next := Malloc(size)
	n := min(size, prevPayload)
	copy(unsafe.Slice((*byte)(next), n), unsafe.Slice((*byte)(prev), n))
	Free(prev)
	return next
}
