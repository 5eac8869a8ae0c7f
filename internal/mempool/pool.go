// Package mempool recycles scratch slices on the detection hot path.
package mempool

import "sync"

// step is the bucket granularity; a request for n elements is served from
// the bucket rounded up to the next multiple.
const step = 1024

func sizeClass(n int) int {
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

// Pool hands out zeroed slices of T grouped by size class.
type Pool[T any] struct {
	buckets sync.Map // size class -> *sync.Pool
}

func (p *Pool[T]) bucket(cls int) *sync.Pool {
	if b, ok := p.buckets.Load(cls); ok {
		return b.(*sync.Pool)
	}
	b, _ := p.buckets.LoadOrStore(cls, &sync.Pool{New: func() any {
		buf := make([]T, cls)
		return &buf
	}})
	return b.(*sync.Pool)
}

// Get returns a zeroed slice of length n. Return it with Put.
func (p *Pool[T]) Get(n int) []T {
	if n <= 0 {
		return nil
	}
	cls := sizeClass(n)
	bp := p.bucket(cls).Get().(*[]T)
	buf := *bp
	if cap(buf) < cls {
		buf = make([]T, cls)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

// Put recycles buf. Slices whose capacity is not a size class are dropped.
func (p *Pool[T]) Put(buf []T) {
	c := cap(buf)
	if c == 0 || sizeClass(c) != c {
		return
	}
	buf = buf[:c]
	p.bucket(c).Put(&buf)
}

// Shared pools used by the detector.
var (
	Float32 Pool[float32]
	Bool    Pool[bool]
)
