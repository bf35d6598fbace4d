package gl

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/oliverbestmann/glarray/native"
)

// Texture is a GL_TEXTURE_2D_ARRAY. Sampler state is mirrored on the Go
// side like the driver would report it. All fields after creation are
// only accessed on the GL thread.
type Texture struct {
	device *Device

	glo        uint32
	width      int
	height     int
	layers     int
	components int
	format     pixelFormat
	pixelSize  int

	released bool

	repeatX    bool
	repeatY    bool
	filter     native.Filter
	swizzle    string
	anisotropy float32
}

var _ native.Texture = (*Texture)(nil)

// CreateTextureArray works like NewTextureArray but returns the concrete type.
func (d *Device) CreateTextureArray(desc native.TextureArrayDescriptor) (*Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 || desc.Layers <= 0 {
		return nil, fmt.Errorf("invalid size %dx%dx%d", desc.Width, desc.Height, desc.Layers)
	}

	format, err := lookupFormat(desc.Dtype, desc.Components)
	if err != nil {
		return nil, err
	}

	if err := native.CheckAlignment(desc.Alignment); err != nil {
		return nil, err
	}

	itemSize, _ := native.ItemSize(desc.Dtype)
	pixelSize := itemSize * desc.Components

	if desc.Data != nil {
		expected := native.NewLayout(desc.Width, desc.Height, desc.Layers, pixelSize, desc.Alignment).Size()
		if len(desc.Data) != expected {
			return nil, fmt.Errorf("data size mismatch %d != %d", len(desc.Data), expected)
		}
	}

	t := &Texture{
		device:     d,
		width:      desc.Width,
		height:     desc.Height,
		layers:     desc.Layers,
		components: desc.Components,
		format:     format,
		pixelSize:  pixelSize,

		repeatX:    true,
		repeatY:    true,
		filter:     native.Filter{Min: native.Linear, Mag: native.Linear},
		swizzle:    native.DefaultSwizzle,
		anisotropy: 1,
	}

	err = d.do(func() error {
		gl.GenTextures(1, &t.glo)
		t.bind(d.defaultUnit)

		gl.PixelStorei(gl.UNPACK_ALIGNMENT, int32(desc.Alignment))

		gl.TexImage3D(gl.TEXTURE_2D_ARRAY, 0, format.internal,
			int32(desc.Width), int32(desc.Height), int32(desc.Layers), 0,
			format.format, format.typ, bytesPtr(desc.Data))

		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

		if err := glError("create texture array"); err != nil {
			gl.DeleteTextures(1, &t.glo)
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return t, nil
}

func bytesPtr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}

	return gl.Ptr(data)
}

// bind must be called on the GL thread.
func (t *Texture) bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, t.glo)
}

func (t *Texture) GLO() int {
	return int(t.glo)
}

func (t *Texture) Release() {
	_ = t.device.do(func() error {
		if t.released {
			return nil
		}

		t.released = true
		gl.DeleteTextures(1, &t.glo)
		return nil
	})
}

// run executes fn on the GL thread after checking that the texture is alive.
func (t *Texture) run(fn func() error) error {
	return t.device.do(func() error {
		if t.released {
			return fmt.Errorf("texture array %d was released", t.glo)
		}

		return fn()
	})
}

func (t *Texture) Read(alignment int) ([]byte, error) {
	if err := native.CheckAlignment(alignment); err != nil {
		return nil, err
	}

	layout := native.NewLayout(t.width, t.height, t.layers, t.pixelSize, alignment)
	out := make([]byte, layout.Size())

	err := t.run(func() error {
		t.bind(t.device.defaultUnit)
		gl.PixelStorei(gl.PACK_ALIGNMENT, int32(alignment))

		t.device.pool.Acquire(len(out))
		defer gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

		gl.GetTexImage(gl.TEXTURE_2D_ARRAY, 0, t.format.format, t.format.typ, gl.PtrOffset(0))

		ptr := gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, len(out), gl.MAP_READ_BIT)
		if ptr == nil {
			return glError("map pixel pack buffer")
		}

		copy(out, unsafe.Slice((*byte)(ptr), len(out)))
		gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)

		return glError("read texture array")
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// ReadInto reads straight into a buffer object if dst is a *Buffer of this
// device. Byte slices and other io.WriterAt values receive a copy.
func (t *Texture) ReadInto(dst any, alignment int, offset int) error {
	if err := native.CheckAlignment(alignment); err != nil {
		return err
	}

	if offset < 0 {
		return fmt.Errorf("invalid write offset %d", offset)
	}

	size := native.NewLayout(t.width, t.height, t.layers, t.pixelSize, alignment).Size()

	switch dst := dst.(type) {
	case *Buffer:
		if offset+size > dst.size {
			return fmt.Errorf("destination too small, need %d bytes at offset %d, have %d", size, offset, dst.size)
		}

		return t.run(func() error {
			t.bind(t.device.defaultUnit)
			gl.PixelStorei(gl.PACK_ALIGNMENT, int32(alignment))

			gl.BindBuffer(gl.PIXEL_PACK_BUFFER, dst.glo)
			gl.GetTexImage(gl.TEXTURE_2D_ARRAY, 0, t.format.format, t.format.typ, gl.PtrOffset(offset))
			gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

			return glError("read texture array into buffer")
		})

	case []byte:
		if offset+size > len(dst) {
			return fmt.Errorf("destination too small, need %d bytes at offset %d, have %d", size, offset, len(dst))
		}

		data, err := t.Read(alignment)
		if err != nil {
			return err
		}

		copy(dst[offset:], data)
		return nil

	case io.WriterAt:
		data, err := t.Read(alignment)
		if err != nil {
			return err
		}

		_, err = dst.WriteAt(data, int64(offset))
		return err

	default:
		return fmt.Errorf("unsupported destination type %T", dst)
	}
}

func (t *Texture) Write(data any, viewport native.Viewport, alignment int) error {
	if err := native.CheckAlignment(alignment); err != nil {
		return err
	}

	region, err := viewport.Region(t.width, t.height, t.layers)
	if err != nil {
		return err
	}

	size := native.NewLayout(region.Width(), region.Height(), region.Layers(), t.pixelSize, alignment).Size()

	box := native.ConvertBox[int32](region)

	upload := func(ptr unsafe.Pointer) {
		t.bind(t.device.defaultUnit)
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, int32(alignment))

		gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0,
			box.Min[0], box.Min[1], box.Min[2],
			box.Width(), box.Height(), box.Layers(),
			t.format.format, t.format.typ, ptr)
	}

	switch data := data.(type) {
	case *Buffer:
		if size > data.size {
			return fmt.Errorf("data size mismatch %d != %d", data.size, size)
		}

		return t.run(func() error {
			gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, data.glo)
			upload(gl.PtrOffset(0))
			gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, 0)

			return glError("write texture array from buffer")
		})

	case []byte:
		if len(data) != size {
			return fmt.Errorf("data size mismatch %d != %d", len(data), size)
		}

		return t.run(func() error {
			upload(bytesPtr(data))
			return glError("write texture array")
		})

	case io.ReaderAt:
		buf := make([]byte, size)
		if _, err := data.ReadAt(buf, 0); err != nil {
			return fmt.Errorf("read source data: %w", err)
		}

		return t.Write(buf, viewport, alignment)

	default:
		return fmt.Errorf("unsupported data type %T", data)
	}
}

func (t *Texture) BuildMipmaps(base, maxLevel int) error {
	if err := native.CheckMipmapRange(base, maxLevel); err != nil {
		return err
	}

	return t.run(func() error {
		t.bind(t.device.defaultUnit)

		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_BASE_LEVEL, int32(base))
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAX_LEVEL, int32(maxLevel))
		gl.GenerateMipmap(gl.TEXTURE_2D_ARRAY)

		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

		if err := glError("build mipmaps"); err != nil {
			return err
		}

		t.filter = native.Filter{Min: native.LinearMipmapLinear, Mag: native.Linear}
		return nil
	})
}

func (t *Texture) Use(location int) error {
	if location < 0 {
		return fmt.Errorf("invalid texture unit %d", location)
	}

	return t.run(func() error {
		t.bind(uint32(location))
		return glError("use texture array")
	})
}

func (t *Texture) Bind(unit int, read, write bool, level int, format uint32) error {
	if err := native.CheckImageAccess(read, write); err != nil {
		return err
	}

	var access uint32 = gl.READ_WRITE
	switch {
	case !write:
		access = gl.READ_ONLY
	case !read:
		access = gl.WRITE_ONLY
	}

	if format == 0 {
		format = uint32(t.format.internal)
	}

	return t.run(func() error {
		gl.BindImageTexture(uint32(unit), t.glo, int32(level), true, 0, access, format)
		return glError("bind texture array to image unit")
	})
}

func (t *Texture) RepeatX() (bool, error) {
	var value bool
	err := t.run(func() error {
		value = t.repeatX
		return nil
	})

	return value, err
}

func (t *Texture) SetRepeatX(value bool) error {
	return t.run(func() error {
		t.bind(t.device.defaultUnit)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, wrapMode(value))

		t.repeatX = value
		return glError("set repeat x")
	})
}

func (t *Texture) RepeatY() (bool, error) {
	var value bool
	err := t.run(func() error {
		value = t.repeatY
		return nil
	})

	return value, err
}

func (t *Texture) SetRepeatY(value bool) error {
	return t.run(func() error {
		t.bind(t.device.defaultUnit)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, wrapMode(value))

		t.repeatY = value
		return glError("set repeat y")
	})
}

func wrapMode(repeat bool) int32 {
	if repeat {
		return gl.REPEAT
	}

	return gl.CLAMP_TO_EDGE
}

func (t *Texture) Filter() (native.Filter, error) {
	var value native.Filter
	err := t.run(func() error {
		value = t.filter
		return nil
	})

	return value, err
}

func (t *Texture) SetFilter(value native.Filter) error {
	return t.run(func() error {
		t.bind(t.device.defaultUnit)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, value.Min)
		gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, value.Mag)

		if err := glError("set filter"); err != nil {
			return err
		}

		t.filter = value
		return nil
	})
}

func (t *Texture) Swizzle() (string, error) {
	var value string
	err := t.run(func() error {
		value = t.swizzle
		return nil
	})

	return value, err
}

func (t *Texture) SetSwizzle(value string) error {
	swizzle, err := native.NormalizeSwizzle(value)
	if err != nil {
		return err
	}

	return t.run(func() error {
		t.bind(t.device.defaultUnit)

		for idx, ch := range swizzle {
			gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_SWIZZLE_R+uint32(idx), swizzleEnums[ch])
		}

		if err := glError("set swizzle"); err != nil {
			return err
		}

		t.swizzle = swizzle
		return nil
	})
}

func (t *Texture) Anisotropy() (float32, error) {
	var value float32
	err := t.run(func() error {
		value = t.anisotropy
		return nil
	})

	return value, err
}

func (t *Texture) SetAnisotropy(value float32) error {
	return t.run(func() error {
		value = native.ClampAnisotropy(value, t.device.maxAnisotropy)

		if t.device.maxAnisotropy > 1 {
			t.bind(t.device.defaultUnit)
			gl.TexParameterf(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAX_ANISOTROPY, value)

			if err := glError("set anisotropy"); err != nil {
				return err
			}
		}

		t.anisotropy = value
		return nil
	})
}
