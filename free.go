package xalloc

import (
	"unsafe"

	"github.com/sirupsen/logrus"
)

// Free returns an allocation to the allocator. Passing nil is a no-op.
// Large allocations are unmapped outright; bucket allocations have their
// slot bit cleared in the arena stamped into the slot at allocation time,
// which need not be the freeing caller's current favorite. A flag byte
// that is neither the large sentinel nor a valid arena index means the
// heap is corrupt, which is fatal.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	flag := flagByte(p)
	if flag == largeFlag {
		base, size := largeBase(p)
		if err := release(base, size); err != nil {
			logrus.WithError(err).WithField("ptr", p).Fatal("xalloc: large unmap failed")
		}
		return
	}
	if flag >= arenaCount {
		logrus.WithFields(logrus.Fields{"ptr": p, "flag": flag}).
			Fatal("xalloc: corrupt arena flag")
	}
	pushSlot(p, flag)
}

// FreeBytes releases a slice previously returned by MallocBytes or
// ReallocBytes. A nil slice is a no-op.
func FreeBytes(b []byte) {
	if d := unsafe.SliceData(b); d != nil {
		Free(unsafe.Pointer(d))
	}
}

// pushSlot clears the slot behind p on the arena's stack. Chunks are never
// unmapped here; a drained chunk simply goes cold and the OS is free to
// evict its physical pages.
func pushSlot(p unsafe.Pointer, arena uint8) {
	h, prefixOff := headerOfPointer(p)
	bucket := bucketOfSize(decodeSize(h.encodedSize))
	if bucket < 0 {
		logrus.WithFields(logrus.Fields{"ptr": p, "encoded": h.encodedSize}).
			Fatal("xalloc: chunk header holds no valid bucket size")
	}

	st := &stacks[bucket][arena]
	st.mu.Lock()
	h.releaseSlot(slotIndex(prefixOff, bucket))
	st.mu.Unlock()
}
