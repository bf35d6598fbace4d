// Package gl implements the native contract on top of OpenGL 4.3 or newer.
//
// OpenGL requires its context to be current on the calling thread. The
// device owns one goroutine that is locked to its OS thread and holds the
// context of a hidden glfw window. Every GL call is sent to that goroutine,
// so textures can be used and released from any goroutine, including the
// finalizer goroutine of the runtime.
package gl

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/oliverbestmann/glarray/native"
)

var ErrDeviceReleased = errors.New("device released")

type Options struct {
	// Title of the hidden window that provides the context.
	Title string

	// Number of pixel pack buffers kept around for read back.
	// Defaults to 8.
	PackBuffers int
}

// Device is an OpenGL device running on its own OS thread.
type Device struct {
	mu     sync.Mutex
	calls  chan func()
	done   chan struct{}
	closed bool

	// only touched on the GL thread
	window        *glfw.Window
	pool          *packBufferPool
	defaultUnit   uint32
	maxAnisotropy float32
}

var _ native.Device = (*Device)(nil)

// Open creates a hidden window, makes its context current on a dedicated
// thread and loads the GL function pointers.
func Open(opts *Options) (*Device, error) {
	if opts == nil {
		opts = &Options{}
	}

	if opts.Title == "" {
		opts.Title = "glarray"
	}

	if opts.PackBuffers == 0 {
		opts.PackBuffers = 8
	}

	d := &Device{
		calls: make(chan func()),
		done:  make(chan struct{}),
	}

	ready := make(chan error, 1)
	go d.loop(opts, ready)

	if err := <-ready; err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Device) loop(opts *Options, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	defer close(d.done)

	if err := d.initialize(opts); err != nil {
		ready <- err
		return
	}

	ready <- nil

	for call := range d.calls {
		call()
	}

	d.pool.Purge()
	d.window.Destroy()
	glfw.Terminate()
}

func (d *Device) initialize(opts *Options) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(1, 1, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create window: %w", err)
	}

	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return fmt.Errorf("load gl functions: %w", err)
	}

	var units int32
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &units)

	var maxAnisotropy float32
	gl.GetFloatv(gl.MAX_TEXTURE_MAX_ANISOTROPY, &maxAnisotropy)

	// anisotropic filtering is core since 4.6 only
	if glError("query max anisotropy") != nil || maxAnisotropy < 1 {
		maxAnisotropy = 1
	}

	d.window = window
	d.pool = newPackBufferPool(opts.PackBuffers)
	d.defaultUnit = uint32(max(units-1, 0))
	d.maxAnisotropy = maxAnisotropy

	slog.Info("Created OpenGL context",
		slog.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		slog.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		slog.Int("textureUnits", int(units)),
	)

	return nil
}

// do runs fn on the GL thread and waits for it to finish.
func (d *Device) do(fn func() error) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDeviceReleased
	}

	result := make(chan error, 1)
	d.calls <- func() { result <- fn() }
	d.mu.Unlock()

	return <-result
}

// Release destroys the context. Resources still alive are freed by the
// driver together with the context.
func (d *Device) Release() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	d.closed = true
	close(d.calls)
	d.mu.Unlock()

	<-d.done
}

func (d *Device) NewTextureArray(desc native.TextureArrayDescriptor) (native.Texture, error) {
	return d.CreateTextureArray(desc)
}

func (d *Device) NewBuffer(data []byte, reserve int) (native.Buffer, error) {
	return d.CreateBuffer(data, reserve)
}

// glError returns the pending GL error, if any, and clears the error queue.
func glError(op string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}

	for gl.GetError() != gl.NO_ERROR {
		// drain remaining flags
	}

	return fmt.Errorf("%s: %s", op, errorName(code))
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("GL error 0x%x", code)
	}
}
