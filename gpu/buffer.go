package gpu

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/oliverbestmann/glarray/native"
)

// Buffer is a handle to a native buffer. It follows the same lifetime
// rules as TextureArray and can be used as source of TextureArray.Write
// and as destination of TextureArray.ReadInto.
type Buffer struct {
	native native.Buffer

	size int
	glo  int

	ctx *Context
}

// bufferWrapper is implemented by handles that can hand out their native buffer.
type bufferWrapper interface {
	nativeBuffer() native.Buffer
}

var _ bufferWrapper = (*Buffer)(nil)

func (b *Buffer) nativeBuffer() native.Buffer {
	if b == nil {
		return nil
	}

	return b.native
}

// unwrapBuffer replaces a buffer handle by its native buffer. All other
// values are returned unchanged.
func unwrapBuffer(value any) (any, error) {
	wrapper, ok := value.(bufferWrapper)
	if !ok {
		return value, nil
	}

	buf := wrapper.nativeBuffer()
	if buf == nil {
		return nil, ErrUnsupported
	}

	return buf, nil
}

func (b *Buffer) context() *Context {
	return b.ctx
}

func (b *Buffer) resource() native.Resource {
	if b.native == nil || isReleased(b.native) {
		return nil
	}

	return b.native
}

func (b *Buffer) buffer() (native.Buffer, error) {
	if b.native == nil {
		return nil, ErrUnsupported
	}

	return b.native, nil
}

func (b *Buffer) String() string {
	if b.ctx == nil {
		return "<Buffer: INCOMPLETE>"
	}

	return fmt.Sprintf("<Buffer: %d>", b.glo)
}

func (b *Buffer) Equal(other any) bool {
	o, ok := other.(*Buffer)
	if !ok || o == nil {
		return false
	}

	if b == o {
		return true
	}

	return b.native != nil && b.native == o.native
}

func (b *Buffer) Hash() uintptr {
	return uintptr(unsafe.Pointer(b))
}

// Size returns the size of the buffer in bytes.
func (b *Buffer) Size() int {
	return b.size
}

func (b *Buffer) GLO() int {
	return b.glo
}

// Read reads size bytes starting at offset. A negative size reads up to
// the end of the buffer.
func (b *Buffer) Read(size, offset int) ([]byte, error) {
	defer runtime.KeepAlive(b)

	buf, err := b.buffer()
	if err != nil {
		return nil, err
	}

	if size < 0 {
		size = b.size - offset
	}

	if size < 0 {
		return nil, fmt.Errorf("offset %d out of range", offset)
	}

	data := make([]byte, size)
	if _, err := buf.ReadAt(data, int64(offset)); err != nil {
		return nil, err
	}

	return data, nil
}

// Write copies data into the buffer starting at offset.
func (b *Buffer) Write(data []byte, offset int) error {
	defer runtime.KeepAlive(b)

	buf, err := b.buffer()
	if err != nil {
		return err
	}

	_, err = buf.WriteAt(data, int64(offset))
	return err
}

// Release frees the native buffer. Calling Release more than once does nothing.
func (b *Buffer) Release() {
	if b.native == nil || isReleased(b.native) {
		return
	}

	b.native.Release()
	b.native = native.NewInvalid("Buffer")

	runtime.SetFinalizer(b, nil)
}
