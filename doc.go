// Package xalloc implements a bucketed, arena-partitioned memory allocator
// backed by anonymous page mappings.
//
// # Overview
//
// xalloc is a drop-in allocation trio: allocate N bytes, free a pointer,
// resize an allocation in place when possible. It is built for
// multi-threaded workloads mixing small and large allocations:
//
//   - Requests up to 8192 bytes are served from 21 fixed bucket sizes
//     (8, 12, 16, 24, ... powers of two interleaved with 1.5x steps)
//   - Each bucket keeps 8 parallel arena stacks of 2 MiB-multiple chunks,
//     so concurrent callers rarely share a lock
//   - Larger requests map a dedicated region and unmap it on free
//
// # Basic Usage
//
//	p := xalloc.Malloc(64)
//	defer xalloc.Free(p)
//
//	// or through byte slices
//	buf := xalloc.MallocBytes(1024)
//	buf = xalloc.ReallocBytes(buf, 2048)
//	xalloc.FreeBytes(buf)
//
// Note that Realloc(nil, n) returns nil instead of allocating; callers
// that may hold a nil pointer must allocate explicitly.
//
// # Thread Safety
//
// All operations are safe for concurrent use. Every (bucket, arena) pair
// has its own mutex and an operation takes at most one of them. Allocation
// first tries the caller's favorite arena without blocking and drifts to
// the next arena on contention, so throughput degrades gradually rather
// than serializing on a single lock.
//
// # Memory Layout
//
// A chunk begins with a header (encoded bucket size, stack link, a search
// cursor, and a free-slot bitmap) followed by equally sized slots. Each
// slot carries a 5-byte prefix: a self-offset back to the chunk base and
// the owning arena index, which is how Free finds the bookkeeping without
// any lookup table. Large allocations carry their mapping size and a
// sentinel byte in front of the payload instead.
//
// Chunks reserve generous virtual ranges, but everything past the header
// is advised to the OS as not needed until touched, so physical footprint
// tracks live data rather than reservations.
//
// # Lifecycle
//
// The bucket/arena matrix is initialized when the package is imported,
// mapping one chunk per cell. Call TearDown at process end to return every
// mapping to the OS; the allocator must not be used afterwards.
//
// xalloc requires a Unix-like OS for its mapping primitives.
package xalloc
