package soft

import (
	"errors"
	"fmt"
	"io"
	"math/bits"
	"slices"
	"sync"

	"github.com/oliverbestmann/glarray/native"
)

var errTextureReleased = errors.New("texture array was released")

// Texture is an in memory array texture. Every mip level is kept tightly
// packed, layer after layer.
type Texture struct {
	device *Device

	glo        int
	width      int
	height     int
	layers     int
	components int
	dtype      string

	// components * item size
	pixelSize int

	mu       sync.Mutex
	levels   [][]byte
	released bool

	repeatX    bool
	repeatY    bool
	filter     native.Filter
	swizzle    string
	anisotropy float32

	baseLevel int
	maxLevel  int
}

var _ native.Texture = (*Texture)(nil)

func (t *Texture) GLO() int {
	return t.glo
}

// Released reports whether Release was called.
func (t *Texture) Released() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.released
}

func (t *Texture) Release() {
	t.mu.Lock()

	if t.released {
		t.mu.Unlock()
		return
	}

	t.released = true
	t.levels = nil
	t.mu.Unlock()

	t.device.unbind(t)
	t.device.free()
}

func (t *Texture) levelSize(level int) (int, int) {
	return max(1, t.width>>level), max(1, t.height>>level)
}

func (t *Texture) levelLayout(level, alignment int) native.Layout {
	width, height := t.levelSize(level)
	return native.NewLayout(width, height, t.layers, t.pixelSize, alignment)
}

func (t *Texture) Read(alignment int) ([]byte, error) {
	if err := native.CheckAlignment(alignment); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return nil, errTextureReleased
	}

	src := t.levelLayout(0, 1)
	dst := t.levelLayout(0, alignment)

	rowBytes := t.width * t.pixelSize
	out := make([]byte, dst.Size())

	for layer := range t.layers {
		for y := range t.height {
			srcOffset := src.Offset(y, layer)
			dstOffset := dst.Offset(y, layer)
			copy(out[dstOffset:dstOffset+rowBytes], t.levels[0][srcOffset:srcOffset+rowBytes])
		}
	}

	return out, nil
}

// ReadInto accepts a byte slice or any io.WriterAt, native buffers included.
func (t *Texture) ReadInto(dst any, alignment int, offset int) error {
	data, err := t.Read(alignment)
	if err != nil {
		return err
	}

	if offset < 0 {
		return fmt.Errorf("invalid write offset %d", offset)
	}

	switch dst := dst.(type) {
	case []byte:
		if offset+len(data) > len(dst) {
			return fmt.Errorf("destination too small, need %d bytes at offset %d, have %d", len(data), offset, len(dst))
		}

		copy(dst[offset:], data)
		return nil

	case io.WriterAt:
		_, err := dst.WriteAt(data, int64(offset))
		return err

	default:
		return fmt.Errorf("unsupported destination type %T", dst)
	}
}

// Write accepts a byte slice or any io.ReaderAt, native buffers included.
func (t *Texture) Write(data any, viewport native.Viewport, alignment int) error {
	if err := native.CheckAlignment(alignment); err != nil {
		return err
	}

	region, err := viewport.Region(t.width, t.height, t.layers)
	if err != nil {
		return err
	}

	layout := native.NewLayout(region.Width(), region.Height(), region.Layers(), t.pixelSize, alignment)

	src, err := sourceBytes(data, layout.Size())
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return errTextureReleased
	}

	dst := t.levelLayout(0, 1)
	rowBytes := region.Width() * t.pixelSize

	for layer := range region.Layers() {
		for y := range region.Height() {
			srcOffset := layout.Offset(y, layer)
			dstOffset := dst.Offset(region.Min[1]+y, region.Min[2]+layer) + region.Min[0]*t.pixelSize
			copy(t.levels[0][dstOffset:dstOffset+rowBytes], src[srcOffset:srcOffset+rowBytes])
		}
	}

	return nil
}

func sourceBytes(data any, size int) ([]byte, error) {
	switch data := data.(type) {
	case []byte:
		if len(data) != size {
			return nil, fmt.Errorf("data size mismatch %d != %d", len(data), size)
		}

		return data, nil

	case io.ReaderAt:
		buf := make([]byte, size)
		if _, err := data.ReadAt(buf, 0); err != nil {
			return nil, fmt.Errorf("read source data: %w", err)
		}

		return buf, nil

	default:
		return nil, fmt.Errorf("unsupported data type %T", data)
	}
}

func (t *Texture) BuildMipmaps(base, maxLevel int) error {
	if err := native.CheckMipmapRange(base, maxLevel); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return errTextureReleased
	}

	if base >= len(t.levels) {
		return fmt.Errorf("base level %d is not defined", base)
	}

	last := min(maxLevel, bits.Len(uint(max(t.width, t.height)))-1)

	t.levels = t.levels[:base+1]
	for level := base + 1; level <= last; level++ {
		t.levels = append(t.levels, t.downsample(level))
	}

	t.baseLevel = base
	t.maxLevel = maxLevel
	t.filter = native.Filter{Min: native.LinearMipmapLinear, Mag: native.Linear}

	return nil
}

// Levels returns the number of defined mip levels.
func (t *Texture) Levels() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.levels)
}

// Level returns a tightly packed copy of the given mip level.
func (t *Texture) Level(level int) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if level < 0 || level >= len(t.levels) {
		return nil, false
	}

	return slices.Clone(t.levels[level]), true
}

func (t *Texture) Use(location int) error {
	if location < 0 {
		return fmt.Errorf("invalid texture unit %d", location)
	}

	if t.Released() {
		return errTextureReleased
	}

	t.device.bindUnit(location, t)
	return nil
}

func (t *Texture) Bind(unit int, read, write bool, level int, format uint32) error {
	if err := native.CheckImageAccess(read, write); err != nil {
		return err
	}

	if unit < 0 {
		return fmt.Errorf("invalid image unit %d", unit)
	}

	t.mu.Lock()
	released, levels := t.released, len(t.levels)
	t.mu.Unlock()

	if released {
		return errTextureReleased
	}

	if level < 0 || level >= levels {
		return fmt.Errorf("level %d is not defined", level)
	}

	t.device.bindImage(unit, ImageBinding{
		Texture: t,
		Read:    read,
		Write:   write,
		Level:   level,
		Format:  format,
	})

	return nil
}

func (t *Texture) RepeatX() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.repeatX, t.check()
}

func (t *Texture) SetRepeatX(value bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(); err != nil {
		return err
	}

	t.repeatX = value
	return nil
}

func (t *Texture) RepeatY() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.repeatY, t.check()
}

func (t *Texture) SetRepeatY(value bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(); err != nil {
		return err
	}

	t.repeatY = value
	return nil
}

func (t *Texture) Filter() (native.Filter, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.filter, t.check()
}

func (t *Texture) SetFilter(value native.Filter) error {
	switch value.Min {
	case native.Nearest, native.Linear,
		native.NearestMipmapNearest, native.LinearMipmapNearest,
		native.NearestMipmapLinear, native.LinearMipmapLinear:
	default:
		return fmt.Errorf("invalid min filter 0x%x", value.Min)
	}

	if value.Mag != native.Nearest && value.Mag != native.Linear {
		return fmt.Errorf("invalid mag filter 0x%x", value.Mag)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(); err != nil {
		return err
	}

	t.filter = value
	return nil
}

func (t *Texture) Swizzle() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.swizzle, t.check()
}

func (t *Texture) SetSwizzle(value string) error {
	swizzle, err := native.NormalizeSwizzle(value)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(); err != nil {
		return err
	}

	t.swizzle = swizzle
	return nil
}

func (t *Texture) Anisotropy() (float32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.anisotropy, t.check()
}

func (t *Texture) SetAnisotropy(value float32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(); err != nil {
		return err
	}

	t.anisotropy = native.ClampAnisotropy(value, MaxAnisotropy)
	return nil
}

// check must be called with t.mu held.
func (t *Texture) check() error {
	if t.released {
		return errTextureReleased
	}

	return nil
}
