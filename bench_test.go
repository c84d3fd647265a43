package xalloc

import (
	"fmt"
	"testing"
)

var sinkBytes []byte

// BenchmarkMallocFree pairs the allocator against Go's native allocator on
// a tight allocate/free cycle per size.
func BenchmarkMallocFree(b *testing.B) {
	for _, size := range []int{8, 128, 1024, 8192} {
		b.Run(fmt.Sprintf("size%d/Xalloc", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Free(Malloc(size))
			}
		})
		b.Run(fmt.Sprintf("size%d/Builtin", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				sinkBytes = make([]byte, size)
			}
		})
	}
}

// BenchmarkMallocFreeParallel exercises the arena fallback under real
// contention.
func BenchmarkMallocFreeParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			Free(Malloc(512))
		}
	})
}

func BenchmarkLargePath(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Free(Malloc(100000))
	}
}

// BenchmarkReallocCycle grows and shrinks across two buckets, hitting the
// move paths in both directions and one in-place resize.
func BenchmarkReallocCycle(b *testing.B) {
	p := Malloc(100)
	for i := 0; i < b.N; i++ {
		p = Realloc(p, 200) // moves up to the 256 bucket
		p = Realloc(p, 180) // stays: above the shrink threshold
		p = Realloc(p, 100) // moves back down
	}
	Free(p)
}
