// Package gpu wraps native GPU resources into handles with an explicit
// lifetime. A handle is released exactly once, either by calling Release
// or, depending on the GCMode of its Context, after the garbage collector
// found it unreachable.
package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/oliverbestmann/glarray/native"
)

var ErrContextReleased = errors.New("context already released")

// Context owns a native device and collects native resources whose handles
// were garbage collected while running in GCModeContextGC.
type Context struct {
	device native.Device

	mu       sync.Mutex
	gcMode   GCMode
	objects  []native.Resource
	released bool
}

func NewContext(device native.Device, mode GCMode) *Context {
	return &Context{device: device, gcMode: mode}
}

// Device returns the native device this context creates resources on.
func (c *Context) Device() native.Device {
	return c.device
}

func (c *Context) GCMode() GCMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gcMode
}

// SetGCMode changes the policy for handles collected from now on. Resources
// already queued stay queued until the next call to GC.
func (c *Context) SetGCMode(mode GCMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gcMode = mode
}

// Objects returns a snapshot of the resources waiting to be released,
// in the order they were collected.
func (c *Context) Objects() []native.Resource {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.objects)
}

func (c *Context) PendingObjects() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.objects)
}

// GC releases all queued resources and returns how many were released.
func (c *Context) GC() int {
	c.mu.Lock()
	objects := c.objects
	c.objects = nil
	c.mu.Unlock()

	for _, obj := range objects {
		obj.Release()
	}

	if len(objects) > 0 {
		slog.Debug("Released collected objects", slog.Int("count", len(objects)))
	}

	return len(objects)
}

// Release frees all queued resources and the native device. Factories
// fail with ErrContextReleased afterwards.
func (c *Context) Release() {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}

	c.released = true
	c.mu.Unlock()

	c.GC()

	if c.device != nil {
		c.device.Release()
	}
}

// enqueue adds obj to the pending list. Once the context is released,
// nobody calls GC anymore and obj is released right away.
func (c *Context) enqueue(obj native.Resource) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		obj.Release()
		return
	}

	c.objects = append(c.objects, obj)
	c.mu.Unlock()
}

func (c *Context) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released || c.device == nil {
		return ErrContextReleased
	}

	return nil
}

// TextureArrayOptions configures a new TextureArray. A nil value selects
// the defaults.
type TextureArrayOptions struct {
	// row alignment of the initial data, defaults to 1
	Alignment int

	// element type, defaults to "f1"
	Dtype string
}

// TextureArray creates a new array texture of size (width, height, layers).
// The data may be nil, in which case the texture content is undefined.
func (c *Context) TextureArray(size [3]int, components int, data []byte, opts *TextureArrayOptions) (*TextureArray, error) {
	if err := c.checkOpen(); err != nil {
		return nil, fmt.Errorf("create texture array: %w", err)
	}

	if opts == nil {
		opts = &TextureArrayOptions{}
	}

	alignment := opts.Alignment
	if alignment == 0 {
		alignment = 1
	}

	dtype := opts.Dtype
	if dtype == "" {
		dtype = native.DtypeF1
	}

	texture, err := c.device.NewTextureArray(native.TextureArrayDescriptor{
		Width:      size[0],
		Height:     size[1],
		Layers:     size[2],
		Components: components,
		Dtype:      dtype,
		Data:       data,
		Alignment:  alignment,
	})

	if err != nil {
		return nil, fmt.Errorf("create texture array: %w", err)
	}

	handle := &TextureArray{
		native:     texture,
		width:      size[0],
		height:     size[1],
		layers:     size[2],
		components: components,
		dtype:      dtype,
		glo:        texture.GLO(),
		ctx:        c,
	}

	return registerWithGC(handle), nil
}

// BufferOptions configures a new Buffer. A nil value selects the defaults.
type BufferOptions struct {
	// size of a zeroed buffer, used if no data is given
	Reserve int
}

// Buffer creates a new buffer holding a copy of data. If data is nil,
// a zeroed buffer of opts.Reserve bytes is created.
func (c *Context) Buffer(data []byte, opts *BufferOptions) (*Buffer, error) {
	if err := c.checkOpen(); err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}

	if opts == nil {
		opts = &BufferOptions{}
	}

	buffer, err := c.device.NewBuffer(data, opts.Reserve)
	if err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}

	handle := &Buffer{
		native: buffer,
		size:   buffer.Size(),
		glo:    buffer.GLO(),
		ctx:    c,
	}

	return registerWithGC(handle), nil
}
