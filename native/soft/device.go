// Package soft implements the native contract in memory. It keeps pixel
// data in plain byte slices and tracks texture and image unit bindings
// like a driver would, which makes it the backend of choice for tests
// and for machines without a GPU.
package soft

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oliverbestmann/glarray/native"
)

// MaxAnisotropy is the largest anisotropy value the device supports.
const MaxAnisotropy float32 = 16

var ErrDeviceReleased = errors.New("device released")

// ImageBinding records a texture bound to an image unit.
type ImageBinding struct {
	Texture *Texture
	Read    bool
	Write   bool
	Level   int
	Format  uint32
}

// Device is an in memory GPU device.
type Device struct {
	mu sync.Mutex

	nextGLO  int
	live     int
	released bool

	units  map[int]*Texture
	images map[int]ImageBinding
}

var _ native.Device = (*Device)(nil)

func New() *Device {
	return &Device{
		units:  map[int]*Texture{},
		images: map[int]ImageBinding{},
	}
}

func (d *Device) NewTextureArray(desc native.TextureArrayDescriptor) (native.Texture, error) {
	return d.CreateTextureArray(desc)
}

// CreateTextureArray works like NewTextureArray but returns the concrete type.
func (d *Device) CreateTextureArray(desc native.TextureArrayDescriptor) (*Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 || desc.Layers <= 0 {
		return nil, fmt.Errorf("invalid size %dx%dx%d", desc.Width, desc.Height, desc.Layers)
	}

	if err := native.CheckComponents(desc.Components); err != nil {
		return nil, err
	}

	itemSize, err := native.ItemSize(desc.Dtype)
	if err != nil {
		return nil, err
	}

	if err := native.CheckAlignment(desc.Alignment); err != nil {
		return nil, err
	}

	glo, err := d.allocate()
	if err != nil {
		return nil, err
	}

	tex := &Texture{
		device:     d,
		glo:        glo,
		width:      desc.Width,
		height:     desc.Height,
		layers:     desc.Layers,
		components: desc.Components,
		dtype:      desc.Dtype,
		pixelSize:  desc.Components * itemSize,

		repeatX:    true,
		repeatY:    true,
		filter:     native.Filter{Min: native.Linear, Mag: native.Linear},
		swizzle:    native.DefaultSwizzle,
		anisotropy: 1,
	}

	tex.levels = [][]byte{make([]byte, tex.levelLayout(0, 1).Size())}

	if desc.Data != nil {
		if err := tex.Write(desc.Data, nil, desc.Alignment); err != nil {
			d.free()
			return nil, err
		}
	}

	slog.Debug("Created texture array",
		slog.Int("glo", glo),
		slog.Int("width", desc.Width),
		slog.Int("height", desc.Height),
		slog.Int("layers", desc.Layers),
	)

	return tex, nil
}

func (d *Device) NewBuffer(data []byte, reserve int) (native.Buffer, error) {
	return d.CreateBuffer(data, reserve)
}

// CreateBuffer works like NewBuffer but returns the concrete type.
func (d *Device) CreateBuffer(data []byte, reserve int) (*Buffer, error) {
	if data == nil && reserve <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d", reserve)
	}

	glo, err := d.allocate()
	if err != nil {
		return nil, err
	}

	buf := &Buffer{device: d, glo: glo}

	if data != nil {
		buf.data = append([]byte(nil), data...)
	} else {
		buf.data = make([]byte, reserve)
	}

	return buf, nil
}

// Release marks the device as released. Existing resources keep
// their memory, new resources can not be created anymore.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.released = true
	clear(d.units)
	clear(d.images)
}

// Live returns the number of resources that were created but not yet released.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.live
}

// BoundTexture returns the texture bound to the given texture unit.
func (d *Device) BoundTexture(location int) (*Texture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, ok := d.units[location]
	return tex, ok
}

// BoundImage returns the image binding of the given image unit.
func (d *Device) BoundImage(unit int) (ImageBinding, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	binding, ok := d.images[unit]
	return binding, ok
}

func (d *Device) allocate() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return 0, ErrDeviceReleased
	}

	d.nextGLO += 1
	d.live += 1

	return d.nextGLO, nil
}

func (d *Device) free() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.live -= 1
}

func (d *Device) bindUnit(location int, tex *Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.units[location] = tex
}

func (d *Device) bindImage(unit int, binding ImageBinding) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.images[unit] = binding
}

// unbind removes a released texture from all units.
func (d *Device) unbind(tex *Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for location, bound := range d.units {
		if bound == tex {
			delete(d.units, location)
		}
	}

	for unit, binding := range d.images {
		if binding.Texture == tex {
			delete(d.images, unit)
		}
	}
}
