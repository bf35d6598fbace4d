package soft

import (
	"errors"
	"fmt"
	"sync"

	"github.com/oliverbestmann/glarray/native"
)

var errBufferReleased = errors.New("buffer was released")

// Buffer is an in memory buffer object.
type Buffer struct {
	device *Device
	glo    int

	mu       sync.Mutex
	data     []byte
	released bool
}

var _ native.Buffer = (*Buffer)(nil)

func (b *Buffer) GLO() int {
	return b.glo
}

func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.data)
}

func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkRange(len(p), off); err != nil {
		return 0, err
	}

	return copy(p, b.data[off:]), nil
}

func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkRange(len(p), off); err != nil {
		return 0, err
	}

	return copy(b.data[off:], p), nil
}

// checkRange must be called with b.mu held.
func (b *Buffer) checkRange(size int, off int64) error {
	if b.released {
		return errBufferReleased
	}

	if off < 0 || off+int64(size) > int64(len(b.data)) {
		return fmt.Errorf("out of range: offset=%d size=%d buffer size=%d", off, size, len(b.data))
	}

	return nil
}

// Released reports whether Release was called.
func (b *Buffer) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.released
}

func (b *Buffer) Release() {
	b.mu.Lock()

	if b.released {
		b.mu.Unlock()
		return
	}

	b.released = true
	b.data = nil
	b.mu.Unlock()

	b.device.free()
}
