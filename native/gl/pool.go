package gl

import (
	"github.com/go-gl/gl/v4.6-core/gl"
	lru "github.com/hashicorp/golang-lru/v2"
)

// packBufferPool keeps pixel pack buffers keyed by their size, so repeated
// read backs of the same texture do not allocate a new buffer object.
// Evicted buffers are deleted. It must only be used on the GL thread.
type packBufferPool struct {
	cache *lru.Cache[int, uint32]
}

func newPackBufferPool(size int) *packBufferPool {
	cache, _ := lru.NewWithEvict[int, uint32](size, deletePackBufferOnEvict)
	return &packBufferPool{cache: cache}
}

func deletePackBufferOnEvict(_ int, pbo uint32) {
	gl.DeleteBuffers(1, &pbo)
}

// Acquire returns a buffer object of exactly size bytes, bound to GL_PIXEL_PACK_BUFFER.
func (p *packBufferPool) Acquire(size int) uint32 {
	pbo, ok := p.cache.Get(size)
	if ok {
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pbo)
		return pbo
	}

	gl.GenBuffers(1, &pbo)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pbo)
	gl.BufferData(gl.PIXEL_PACK_BUFFER, size, nil, gl.STREAM_READ)

	p.cache.Add(size, pbo)

	return pbo
}

func (p *packBufferPool) Purge() {
	if p != nil {
		p.cache.Purge()
	}
}
