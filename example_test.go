package xalloc

import "fmt"

// Example demonstrates the byte-slice surface.
func Example() {
	buf := MallocBytes(24)
	fmt.Printf("len=%d cap=%d\n", len(buf), cap(buf))

	copy(buf, "hello")

	// Growing past the bucket moves the data to a bigger one.
	buf = ReallocBytes(buf, 64)
	fmt.Printf("len=%d cap=%d data=%s\n", len(buf), cap(buf), buf[:5])

	FreeBytes(buf)
	// Output:
	// len=24 cap=24
	// len=64 cap=64 data=hello
}

// ExampleRealloc shows the in-place cases and the nil deviation.
func ExampleRealloc() {
	// nil in, nil out: Realloc never allocates from nothing.
	fmt.Println(Realloc(nil, 128) == nil)

	// 100 and 120 share the 128 bucket, so the pointer stays put.
	p := Malloc(100)
	q := Realloc(p, 120)
	fmt.Println(p == q)

	Free(q)
	// Output:
	// true
	// true
}
