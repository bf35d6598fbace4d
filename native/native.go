// Package native describes the contract between the gpu handles and the
// layer that actually owns GPU resources. Implementations live in the
// soft and gl sub packages.
//
// Values passed through this contract are opaque to the gpu package: it
// never validates alignments, viewports, filters or swizzles, it only
// forwards them. Every error returned by an implementation reaches the
// caller unchanged.
package native

import "io"

// Device creates native resources. All resources created by a device
// share its GPU context.
type Device interface {
	NewTextureArray(desc TextureArrayDescriptor) (Texture, error)

	// NewBuffer creates a buffer initialized with data. If data is nil,
	// a zeroed buffer of reserve bytes is created instead.
	NewBuffer(data []byte, reserve int) (Buffer, error)

	// Release frees the device. Resources still alive afterwards are invalid.
	Release()
}

// TextureArrayDescriptor describes a new array texture.
type TextureArrayDescriptor struct {
	Width  int
	Height int
	Layers int

	// number of components per pixel, 1 to 4
	Components int

	// element type, one of the Dtype constants
	Dtype string

	// initial pixel data, may be nil
	Data []byte

	// row alignment of Data
	Alignment int
}

// Resource is anything a Device created.
type Resource interface {
	// GLO returns the numeric object name of the resource.
	GLO() int

	// Release frees the resource. Calling it more than once does nothing.
	Release()
}

// Texture is a native array texture.
type Texture interface {
	Resource

	Read(alignment int) ([]byte, error)
	ReadInto(dst any, alignment int, offset int) error
	Write(data any, viewport Viewport, alignment int) error

	BuildMipmaps(base, maxLevel int) error
	Use(location int) error
	Bind(unit int, read, write bool, level int, format uint32) error

	RepeatX() (bool, error)
	SetRepeatX(value bool) error
	RepeatY() (bool, error)
	SetRepeatY(value bool) error
	Filter() (Filter, error)
	SetFilter(value Filter) error
	Swizzle() (string, error)
	SetSwizzle(value string) error
	Anisotropy() (float32, error)
	SetAnisotropy(value float32) error
}

// Buffer is a native buffer object. Reads and writes outside of
// the buffer fail, short transfers are reported as errors.
type Buffer interface {
	Resource
	io.ReaderAt
	io.WriterAt

	Size() int
}

// Filter holds the minification and magnification filter, using the
// OpenGL enum values.
type Filter struct {
	Min int32
	Mag int32
}

// Filter values as defined by OpenGL.
const (
	Nearest              int32 = 0x2600
	Linear               int32 = 0x2601
	NearestMipmapNearest int32 = 0x2700
	LinearMipmapNearest  int32 = 0x2701
	NearestMipmapLinear  int32 = 0x2702
	LinearMipmapLinear   int32 = 0x2703
)

// Viewport restricts a write to a region of the texture. A nil viewport
// covers the whole texture. Three values are read as (width, height, layers)
// starting at the origin, six values as (x, y, layer, width, height, layers).
type Viewport []int
