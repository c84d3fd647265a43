package xalloc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketTable(t *testing.T) {
	require.Equal(t, bucketMin, bucketSizes[0])
	require.Equal(t, bucketMax, bucketSizes[bucketCount-1])

	for b := 1; b < bucketCount; b++ {
		assert.Greater(t, bucketSizes[b], bucketSizes[b-1], "table must be strictly increasing")
	}

	// Doubling pattern: every size is 2^k or 3*2^(k-1).
	for _, size := range bucketSizes {
		pow := size&(size-1) == 0
		intermediate := size%3 == 0 && (size/3)&(size/3-1) == 0
		assert.True(t, pow || intermediate, "size %d is neither 2^k nor 3*2^(k-1)", size)
	}
}

func TestBucketFor(t *testing.T) {
	// Exact sizes select their own bucket, one past selects the next.
	for b, size := range bucketSizes {
		assert.Equal(t, b, bucketFor(size), "bucketFor(%d)", size)
		if b < bucketCount-1 {
			assert.Equal(t, b+1, bucketFor(size+1), "bucketFor(%d)", size+1)
		}
	}
	assert.Equal(t, 0, bucketFor(0))
	assert.Equal(t, 0, bucketFor(1))
}

func TestEncodedSizeRoundTrip(t *testing.T) {
	for _, size := range bucketSizes {
		t.Run(fmt.Sprintf("size%d", size), func(t *testing.T) {
			enc := encodeSize(size)
			require.Equal(t, size, decodeSize(enc))
		})
	}

	// Encodings must stay distinct across the table.
	seen := make(map[uint8]int)
	for _, size := range bucketSizes {
		enc := encodeSize(size)
		prev, dup := seen[enc]
		require.False(t, dup, "sizes %d and %d share encoding %#x", prev, size, enc)
		seen[enc] = size
	}
}

func TestChunkGeometry(t *testing.T) {
	for b := range bucketSizes {
		t.Run(fmt.Sprintf("bucket%d", bucketSizes[b]), func(t *testing.T) {
			count := slotsPerChunk(b)
			require.Positive(t, count)
			require.LessOrEqual(t, count, bitmapWords*64, "slot count must fit the bitmap")
			require.LessOrEqual(t, count*slotStride(b)+headerSize, chunkBytes(b),
				"slots plus header must fit the mapping")
			require.Zero(t, chunkBytes(b)%allocChunk)
		})
	}
}

func TestBucketOfSize(t *testing.T) {
	for b, size := range bucketSizes {
		assert.Equal(t, b, bucketOfSize(size))
	}
	assert.Equal(t, -1, bucketOfSize(7))
	assert.Equal(t, -1, bucketOfSize(8193))
}
