package gl

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/oliverbestmann/glarray/native"
)

// Buffer is a GL buffer object. It is bound to GL_COPY_WRITE_BUFFER for
// transfers, which leaves the vertex and pixel bindings untouched.
type Buffer struct {
	device *Device

	glo  uint32
	size int

	released bool
}

var _ native.Buffer = (*Buffer)(nil)

// CreateBuffer works like NewBuffer but returns the concrete type.
func (d *Device) CreateBuffer(data []byte, reserve int) (*Buffer, error) {
	size := reserve
	if data != nil {
		size = len(data)
	}

	if size <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d", size)
	}

	b := &Buffer{device: d, size: size}

	err := d.do(func() error {
		gl.GenBuffers(1, &b.glo)
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.glo)
		gl.BufferData(gl.COPY_WRITE_BUFFER, size, bytesPtr(data), gl.DYNAMIC_DRAW)
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

		if err := glError("create buffer"); err != nil {
			gl.DeleteBuffers(1, &b.glo)
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return b, nil
}

func (b *Buffer) GLO() int {
	return int(b.glo)
}

func (b *Buffer) Size() int {
	return b.size
}

func (b *Buffer) checkRange(size int, off int64) error {
	if off < 0 || off+int64(size) > int64(b.size) {
		return fmt.Errorf("out of range: offset=%d size=%d buffer size=%d", off, size, b.size)
	}

	return nil
}

func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if err := b.checkRange(len(p), off); err != nil {
		return 0, err
	}

	if len(p) == 0 {
		return 0, nil
	}

	err := b.device.do(func() error {
		if b.released {
			return fmt.Errorf("buffer %d was released", b.glo)
		}

		gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.glo)
		gl.GetBufferSubData(gl.COPY_WRITE_BUFFER, int(off), len(p), gl.Ptr(p))
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

		return glError("read buffer")
	})

	if err != nil {
		return 0, err
	}

	return len(p), nil
}

func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if err := b.checkRange(len(p), off); err != nil {
		return 0, err
	}

	if len(p) == 0 {
		return 0, nil
	}

	err := b.device.do(func() error {
		if b.released {
			return fmt.Errorf("buffer %d was released", b.glo)
		}

		gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.glo)
		gl.BufferSubData(gl.COPY_WRITE_BUFFER, int(off), len(p), gl.Ptr(p))
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

		return glError("write buffer")
	})

	if err != nil {
		return 0, err
	}

	return len(p), nil
}

func (b *Buffer) Release() {
	_ = b.device.do(func() error {
		if b.released {
			return nil
		}

		b.released = true
		gl.DeleteBuffers(1, &b.glo)
		return nil
	})
}
