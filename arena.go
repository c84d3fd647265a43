package xalloc

import (
	"sync"
	"unsafe"

	"github.com/sirupsen/logrus"
)

// bucketStack is one cell of the bucket/arena matrix: a singly linked stack
// of chunks holding slots of a single bucket size, guarded by its own
// mutex. The head is the most recently mapped chunk.
type bucketStack struct {
	mu   sync.Mutex
	head *chunkHeader
}

// stacks is the process-wide bucket/arena matrix. Eight parallel replicas
// per bucket partition lock contention between threads.
var stacks [bucketCount][arenaCount]bucketStack

// favorites hands out per-caller arena preference vectors, one entry per
// bucket. The pool is per-P under the hood, so a busy goroutine tends to
// get its own vector back and contention drift sticks; a cold pool yields a
// zeroed vector, which aims the first allocation at arena 0.
var favorites = sync.Pool{
	New: func() any { return new([bucketCount]uint8) },
}

// init builds the matrix eagerly: one mapped chunk per (bucket, arena)
// cell. Virtual address use is large, physical use is not; everything past
// each chunk header was advised away at reserve time.
func init() {
	if bucketSizes[0] != bucketMin || bucketSizes[bucketCount-1] != bucketMax {
		panic("xalloc: bucket size table does not span bucketMin..bucketMax")
	}
	for b := range stacks {
		if slotsPerChunk(b) > bitmapWords*64 {
			panic("xalloc: chunk slot count exceeds header bitmap")
		}
		for a := range stacks[b] {
			h := reserveChunk(b)
			h.next = stacks[b][a].head
			stacks[b][a].head = h
		}
	}
}

// TearDown unmaps every chunk in the matrix. The host arranges to call it
// at process end; the allocator must not be used afterwards. Unmap failures
// are logged and skipped so the walk always completes.
func TearDown() {
	for b := range stacks {
		for a := range stacks[b] {
			st := &stacks[b][a]
			st.mu.Lock()
			for h := st.head; h != nil; {
				next := h.next
				if err := release(unsafe.Pointer(h), chunkBytes(b)); err != nil {
					logrus.WithError(err).Warn("xalloc: chunk unmap failed during teardown")
				}
				h = next
			}
			st.head = nil
			st.mu.Unlock()
		}
	}
}

// lockArena locks one arena of the bucket and returns its stack and index.
// The caller's favorite arena is tried without blocking first; if somebody
// else holds it, the favorite advances to the next arena and the call
// blocks there. This is the only cross-thread contention point on the
// allocation path.
func lockArena(bucket int, fav *[bucketCount]uint8) (*bucketStack, uint8) {
	arena := fav[bucket]
	st := &stacks[bucket][arena]
	if !st.mu.TryLock() {
		arena = (arena + 1) % arenaCount
		fav[bucket] = arena
		st = &stacks[bucket][arena]
		st.mu.Lock()
	}
	return st, arena
}
