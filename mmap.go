//go:build unix

package xalloc

import (
	"encoding/binary"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// anonMap reserves an anonymous private read-write region of size bytes.
func anonMap(size int) ([]byte, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrap(err, "mmap")
	}
	return mem, nil
}

// reserveChunk maps a fresh chunk for the bucket and initializes its
// header. Everything past the header pages is advised as not needed, so the
// OS drops any physical backing until a slot is actually touched. Failure
// to reserve or advise is fatal: the allocator cannot recover from OS
// refusal.
func reserveChunk(bucket int) *chunkHeader {
	size := chunkBytes(bucket)
	mem, err := anonMap(size)
	if err != nil {
		logrus.WithError(err).WithField("size", humanize.IBytes(uint64(size))).
			Fatal("xalloc: cannot reserve chunk")
	}
	if err := unix.Madvise(mem[headerPages*smallPage:], unix.MADV_DONTNEED); err != nil {
		logrus.WithError(errors.Wrap(err, "madvise")).
			WithField("size", humanize.IBytes(uint64(size))).
			Fatal("xalloc: cannot advise chunk tail")
	}

	// A fresh anonymous mapping is zero-filled, so the bitmap and cursor
	// are already clear; only the encoded size needs writing.
	h := (*chunkHeader)(unsafe.Pointer(&mem[0]))
	h.encodedSize = encodeSize(bucketSizes[bucket])
	return h
}

// reserveLarge maps a standalone region for a request beyond the largest
// bucket and returns the payload pointer. The mapping is rounded up to the
// page size; its first bytes record the total size and the large sentinel.
func reserveLarge(n int) unsafe.Pointer {
	total := (n + largeMetaSize + smallPage - 1) &^ (smallPage - 1)
	mem, err := anonMap(total)
	if err != nil {
		logrus.WithError(err).WithField("size", humanize.IBytes(uint64(total))).
			Fatal("xalloc: cannot reserve large allocation")
	}
	binary.LittleEndian.PutUint64(mem[:8], uint64(total))
	mem[8] = largeFlag
	return unsafe.Pointer(&mem[largeMetaSize])
}

// release unmaps a region previously obtained from anonMap.
func release(base unsafe.Pointer, size int) error {
	if err := unix.Munmap(unsafe.Slice((*byte)(base), size)); err != nil {
		return errors.Wrap(err, "munmap")
	}
	return nil
}
