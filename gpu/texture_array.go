package gpu

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/oliverbestmann/glarray/native"
)

// DefaultMaxLevel is the max level passed by callers that want the full
// mipmap chain.
const DefaultMaxLevel = 1000

// TextureArray is a handle to a native array texture. A TextureArray is
// created by Context.TextureArray and must be released with Release once
// it is not needed anymore. Size, format and GLO are cached and stay
// readable after the texture was released.
//
// A TextureArray is not safe for concurrent use.
type TextureArray struct {
	native native.Texture

	width      int
	height     int
	layers     int
	components int
	samples    int
	dtype      string
	glo        int

	ctx   *Context
	extra any
}

type ReadOptions struct {
	// row alignment of the returned data, defaults to 1
	Alignment int
}

type ReadIntoOptions struct {
	// row alignment of the written data, defaults to 1
	Alignment int

	// byte offset into the destination
	WriteOffset int
}

type WriteOptions struct {
	// region to write, nil writes the full texture
	Viewport native.Viewport

	// row alignment of the source data, defaults to 1
	Alignment int
}

func (t *TextureArray) texture() (native.Texture, error) {
	if t.native == nil {
		return nil, ErrUnsupported
	}

	return t.native, nil
}

func (t *TextureArray) context() *Context {
	return t.ctx
}

func (t *TextureArray) resource() native.Resource {
	if t.native == nil || isReleased(t.native) {
		return nil
	}

	return t.native
}

func (t *TextureArray) String() string {
	if t.ctx == nil {
		return "<TextureArray: INCOMPLETE>"
	}

	return fmt.Sprintf("<TextureArray: %d>", t.glo)
}

// Equal reports whether other is a *TextureArray referencing the same
// native texture. Released handles are never equal to each other.
func (t *TextureArray) Equal(other any) bool {
	o, ok := other.(*TextureArray)
	if !ok || o == nil {
		return false
	}

	if t == o {
		return true
	}

	return t.native != nil && t.native == o.native
}

// Hash returns a value derived from the identity of the handle, not from
// its content.
func (t *TextureArray) Hash() uintptr {
	return uintptr(unsafe.Pointer(t))
}

func (t *TextureArray) Width() int {
	return t.width
}

func (t *TextureArray) Height() int {
	return t.height
}

func (t *TextureArray) Layers() int {
	return t.layers
}

// Size returns width, height and layers.
func (t *TextureArray) Size() [3]int {
	return [3]int{t.width, t.height, t.layers}
}

func (t *TextureArray) Components() int {
	return t.components
}

// Samples is always zero, array textures do not support multisampling.
func (t *TextureArray) Samples() int {
	return t.samples
}

func (t *TextureArray) Dtype() string {
	return t.dtype
}

func (t *TextureArray) GLO() int {
	return t.glo
}

func (t *TextureArray) Context() *Context {
	return t.ctx
}

// Extra returns a value attached by the caller.
func (t *TextureArray) Extra() any {
	return t.extra
}

func (t *TextureArray) SetExtra(value any) {
	t.extra = value
}

func (t *TextureArray) RepeatX() (bool, error) {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return false, err
	}

	return tex.RepeatX()
}

func (t *TextureArray) SetRepeatX(value bool) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	return tex.SetRepeatX(value)
}

func (t *TextureArray) RepeatY() (bool, error) {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return false, err
	}

	return tex.RepeatY()
}

func (t *TextureArray) SetRepeatY(value bool) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	return tex.SetRepeatY(value)
}

func (t *TextureArray) Filter() (native.Filter, error) {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return native.Filter{}, err
	}

	return tex.Filter()
}

func (t *TextureArray) SetFilter(value native.Filter) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	return tex.SetFilter(value)
}

func (t *TextureArray) Swizzle() (string, error) {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return "", err
	}

	return tex.Swizzle()
}

func (t *TextureArray) SetSwizzle(value string) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	return tex.SetSwizzle(value)
}

func (t *TextureArray) Anisotropy() (float32, error) {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return 0, err
	}

	return tex.Anisotropy()
}

func (t *TextureArray) SetAnisotropy(value float32) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	return tex.SetAnisotropy(value)
}

// Read returns the content of the base level, all layers in order.
func (t *TextureArray) Read(opts *ReadOptions) ([]byte, error) {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &ReadOptions{}
	}

	return tex.Read(alignmentOrDefault(opts.Alignment))
}

// ReadInto reads the base level into dst. The destination can be a byte
// slice, a *Buffer or anything the native texture accepts.
func (t *TextureArray) ReadInto(dst any, opts *ReadIntoOptions) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	if opts == nil {
		opts = &ReadIntoOptions{}
	}

	// a buffer handle must outlive the transfer into its native buffer
	defer runtime.KeepAlive(dst)

	dst, err = unwrapBuffer(dst)
	if err != nil {
		return err
	}

	return tex.ReadInto(dst, alignmentOrDefault(opts.Alignment), opts.WriteOffset)
}

// Write uploads data into the base level. The data can be a byte slice,
// a *Buffer or anything the native texture accepts.
func (t *TextureArray) Write(data any, opts *WriteOptions) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	if opts == nil {
		opts = &WriteOptions{}
	}

	defer runtime.KeepAlive(data)

	data, err = unwrapBuffer(data)
	if err != nil {
		return err
	}

	return tex.Write(data, opts.Viewport, alignmentOrDefault(opts.Alignment))
}

// BuildMipmaps generates the mipmap levels from base up to maxLevel.
// Use DefaultMaxLevel to build the full chain.
func (t *TextureArray) BuildMipmaps(base, maxLevel int) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	return tex.BuildMipmaps(base, maxLevel)
}

// Use binds the texture to the given texture unit.
func (t *TextureArray) Use(location int) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	return tex.Use(location)
}

// BindToImage binds a level of the texture to an image unit. A format of
// zero selects the internal format of the texture.
func (t *TextureArray) BindToImage(unit int, read, write bool, level int, format uint32) error {
	defer runtime.KeepAlive(t)

	tex, err := t.texture()
	if err != nil {
		return err
	}

	return tex.Bind(unit, read, write, level, format)
}

// Release frees the native texture. Any further call to a method that
// needs the native texture fails with native.ErrReleased.
func (t *TextureArray) Release() {
	if t.native == nil || isReleased(t.native) {
		return
	}

	t.native.Release()
	t.native = native.NewInvalid("TextureArray")

	runtime.SetFinalizer(t, nil)
}

func alignmentOrDefault(alignment int) int {
	if alignment == 0 {
		return 1
	}

	return alignment
}
