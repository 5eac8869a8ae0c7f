package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeClass(t *testing.T) {
	tests := []struct{ in, want int }{
		{1, 1024}, {1024, 1024}, {1025, 2048}, {4096, 4096}, {5000, 5120},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sizeClass(tt.in), "n=%d", tt.in)
	}
}

func TestGetReturnsZeroedSlices(t *testing.T) {
	var p Pool[bool]
	buf := p.Get(10)
	assert.Len(t, buf, 10)
	assert.Equal(t, 1024, cap(buf))
	for i := range buf {
		buf[i] = true
	}
	p.Put(buf)

	again := p.Get(2000)
	assert.Len(t, again, 2000)
	for _, v := range again {
		assert.False(t, v)
	}

	reused := p.Get(5)
	for _, v := range reused {
		assert.False(t, v, "recycled buffers are cleared")
	}
}

func TestPutIgnoresForeignSlices(t *testing.T) {
	var p Pool[float32]
	p.Put(nil)
	p.Put(make([]float32, 10))
	assert.Nil(t, p.Get(0))
	assert.Len(t, p.Get(10), 10)
}

func TestConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				buf := Float32.Get(500 + g*100 + i)
				buf[0] = 1
				Float32.Put(buf)
			}
		}()
	}
	wg.Wait()
}
