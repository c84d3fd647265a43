package xalloc

import "unsafe"

// Malloc allocates size bytes and returns a pointer to them. It never
// returns nil: a zero size still yields a valid pointer from the smallest
// bucket. Sizes up to 8192 bytes are served from the bucket stacks; larger
// requests map their own region. Negative sizes panic.
func Malloc(size int) unsafe.Pointer {
	if size < 0 {
		panic("xalloc: negative allocation size")
	}
	if size > bucketMax {
		return reserveLarge(size)
	}
	return popSlot(bucketFor(size))
}

// MallocBytes allocates n bytes and returns them as a slice of length n.
// The capacity is the full usable payload behind the pointer.
func MallocBytes(n int) []byte {
	p := Malloc(n)
	return unsafe.Slice((*byte)(p), payloadFor(n))[:n]
}

// payloadFor returns the usable payload size backing a request of n bytes:
// the bucket size, or the page-rounded large mapping minus its prefix.
func payloadFor(n int) int {
	if n > bucketMax {
		return (n+largeMetaSize+smallPage-1)&^(smallPage-1) - largeMetaSize
	}
	return bucketSizes[bucketFor(n)]
}

// popSlot claims one free slot for the bucket and returns its payload
// pointer. It walks the chosen arena's chunk stack front to back; within a
// chunk the search resumes one past the cursor left by the previous claim
// and wraps once. If every chunk is full, a fresh chunk is mapped, pushed,
// and its slot 0 handed out.
func popSlot(bucket int) unsafe.Pointer {
	count := uint32(slotsPerChunk(bucket))

	fav := favorites.Get().(*[bucketCount]uint8)
	defer favorites.Put(fav)
	st, arena := lockArena(bucket, fav)

	var (
		h      *chunkHeader
		offset uint32
		found  bool
	)
	for h = st.head; h != nil; h = h.next {
		last := h.lastOffset
		offset = (last + 1) % count
		for offset != last {
			word, shift := offset>>6, offset&63

			// At a word boundary, a fully taken word is skipped whole.
			// The skip may not jump the terminating cursor; if the cursor
			// sits inside the word, step onto it and end the wrap.
			if shift == 0 && h.bitmap[word] == ^uint64(0) {
				if (last+count-offset)%count < 64 {
					offset = last
				} else {
					offset = (offset + 64) % count
				}
				continue
			}
			if h.bitmap[word]&(msbHigh>>shift) == 0 {
				found = true
				break
			}
			offset = (offset + 1) % count
		}
		if found {
			break
		}
	}

	if !found {
		// The scan only concludes the arena is full after running off the
		// end of the list; anything else means it skipped a chunk.
		if h != nil {
			panic("xalloc: slot scan stopped before the end of the stack")
		}
		h = reserveChunk(bucket)
		h.next = st.head
		st.head = h
		offset = 0
	}

	h.takeSlot(offset)
	p := h.slotPayload(bucket, offset, arena)
	st.mu.Unlock()
	return p
}
