package gpu

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/oliverbestmann/glarray/native/soft"
)

// dropTextureArray creates a texture array and returns only its native
// texture, leaving the handle unreachable.
func dropTextureArray(t *testing.T, ctx *Context) *soft.Texture {
	t.Helper()

	tex, err := ctx.TextureArray([3]int{2, 2, 1}, 1, nil, nil)
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	return tex.native.(*soft.Texture)
}

// dropBuffer creates a buffer and returns only its native buffer.
func dropBuffer(t *testing.T, ctx *Context) *soft.Buffer {
	t.Helper()

	buf, err := ctx.Buffer(nil, &BufferOptions{Reserve: 16})
	if err != nil {
		t.Fatalf("create buffer: %s", err)
	}

	return buf.native.(*soft.Buffer)
}

// spinGC runs the garbage collector in a loop until the returned function is called.
func spinGC() (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		for {
			select {
			case <-done:
				return
			default:
				runtime.GC()
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// eventually runs the garbage collector until cond holds or a second passed.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)

	for time.Now().Before(deadline) {
		runtime.GC()

		if cond() {
			return true
		}

		time.Sleep(5 * time.Millisecond)
	}

	return cond()
}

func TestGC_Auto(t *testing.T) {
	ctx, dev := newContext(t, GCModeAuto)

	tex := dropTextureArray(t, ctx)

	if !eventually(tex.Released) {
		t.Fatal("native texture was not released by the finalizer")
	}

	if ctx.PendingObjects() != 0 {
		t.Fatalf("auto mode must not queue objects, got %d", ctx.PendingObjects())
	}

	if dev.Live() != 0 {
		t.Fatalf("expected no live resources, got %d", dev.Live())
	}
}

func TestGC_ContextGC(t *testing.T) {
	ctx, dev := newContext(t, GCModeContextGC)

	tex := dropTextureArray(t, ctx)

	if !eventually(func() bool { return ctx.PendingObjects() > 0 }) {
		t.Fatal("native texture was not queued")
	}

	// more collections must not queue the texture again
	runtime.GC()
	runtime.GC()

	objects := ctx.Objects()
	if len(objects) != 1 || objects[0].GLO() != tex.GLO() {
		t.Fatalf("expected exactly the dropped texture, got %v", objects)
	}

	if tex.Released() {
		t.Fatal("queued texture must not be released before GC")
	}

	if released := ctx.GC(); released != 1 {
		t.Fatalf("expected one released object, got %d", released)
	}

	if !tex.Released() || dev.Live() != 0 {
		t.Fatal("texture still alive after GC")
	}

	if ctx.PendingObjects() != 0 || ctx.GC() != 0 {
		t.Fatal("queue not empty after GC")
	}
}

func TestGC_None(t *testing.T) {
	ctx, dev := newContext(t, GCModeNone)

	tex := dropTextureArray(t, ctx)

	for range 5 {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}

	if tex.Released() || ctx.PendingObjects() != 0 {
		t.Fatal("gc mode none must leave the texture alone")
	}

	if dev.Live() != 1 {
		t.Fatalf("expected one live resource, got %d", dev.Live())
	}
}

func TestGC_ReleasedHandleIsNotQueued(t *testing.T) {
	ctx, _ := newContext(t, GCModeContextGC)

	func() {
		tex := newTextureArray(t, ctx)
		tex.Release()
	}()

	for range 5 {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}

	if ctx.PendingObjects() != 0 {
		t.Fatalf("released handle was queued")
	}
}

func TestGC_ContextReleaseDrainsQueue(t *testing.T) {
	dev := soft.New()
	ctx := NewContext(dev, GCModeContextGC)

	tex := dropTextureArray(t, ctx)

	if !eventually(func() bool { return ctx.PendingObjects() > 0 }) {
		t.Fatal("native texture was not queued")
	}

	ctx.Release()

	if !tex.Released() || ctx.PendingObjects() != 0 {
		t.Fatal("context release must drain the queue")
	}
}

func TestGC_CollectWithoutContext(t *testing.T) {
	// must not panic
	collect(&TextureArray{})
	collect(&Buffer{})
}

func TestGCMode_Parse(t *testing.T) {
	cases := []struct {
		value string
		mode  GCMode
		err   bool
	}{
		{value: "", mode: GCModeNone},
		{value: "none", mode: GCModeNone},
		{value: "auto", mode: GCModeAuto},
		{value: "Context_GC", mode: GCModeContextGC},
		{value: "sometimes", err: true},
	}

	for _, tc := range cases {
		mode, err := ParseGCMode(tc.value)
		if tc.err {
			if err == nil {
				t.Fatalf("%q: expected an error", tc.value)
			}

			continue
		}

		if err != nil || mode != tc.mode {
			t.Fatalf("%q: got %s, %v", tc.value, mode, err)
		}

		if tc.value != "" && mode.String() != strings.ToLower(tc.value) {
			t.Fatalf("%q: round trip gave %q", tc.value, mode.String())
		}
	}
}

func TestContext_SetGCMode(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	ctx.SetGCMode(GCModeContextGC)

	if ctx.GCMode() != GCModeContextGC {
		t.Fatalf("unexpected mode %s", ctx.GCMode())
	}
}

func TestGC_ContextGCQueuesEveryDroppedHandle(t *testing.T) {
	ctx, dev := newContext(t, GCModeContextGC)

	const count = 5

	var textures []*soft.Texture
	for range count {
		textures = append(textures, dropTextureArray(t, ctx))
	}

	if !eventually(func() bool { return ctx.PendingObjects() == count }) {
		t.Fatalf("expected %d queued objects, got %d", count, ctx.PendingObjects())
	}

	runtime.GC()
	runtime.GC()

	if ctx.PendingObjects() != count {
		t.Fatalf("queue grew to %d after more collections", ctx.PendingObjects())
	}

	if released := ctx.GC(); released != count {
		t.Fatalf("expected %d released objects, got %d", count, released)
	}

	for _, tex := range textures {
		if !tex.Released() {
			t.Fatalf("texture %d still alive after GC", tex.GLO())
		}
	}

	if dev.Live() != 0 {
		t.Fatalf("expected no live resources, got %d", dev.Live())
	}
}

func TestGC_BufferAuto(t *testing.T) {
	ctx, _ := newContext(t, GCModeAuto)

	buf := dropBuffer(t, ctx)

	if !eventually(buf.Released) {
		t.Fatal("native buffer was not released by the finalizer")
	}

	if ctx.PendingObjects() != 0 {
		t.Fatalf("auto mode must not queue objects, got %d", ctx.PendingObjects())
	}
}

func TestGC_BufferContextGC(t *testing.T) {
	ctx, _ := newContext(t, GCModeContextGC)

	buf := dropBuffer(t, ctx)

	if !eventually(func() bool { return ctx.PendingObjects() == 1 }) {
		t.Fatal("native buffer was not queued")
	}

	if buf.Released() {
		t.Fatal("queued buffer must not be released before GC")
	}

	if ctx.GC() != 1 || !buf.Released() {
		t.Fatal("buffer not released by GC")
	}
}

func TestGC_HandleStaysValidDuringCalls(t *testing.T) {
	ctx, _ := newContext(t, GCModeAuto)

	stop := spinGC()
	defer stop()

	size := [3]int{64, 64, 8}
	data := make([]byte, 64*64*8*4)

	for idx := range 200 {
		tex, err := ctx.TextureArray(size, 4, nil, nil)
		if err != nil {
			t.Fatalf("create: %s", err)
		}

		// the handle is not referenced after the call starts
		if err := tex.Write(data, nil); err != nil {
			t.Fatalf("iteration %d: write: %s", idx, err)
		}

		tex, err = ctx.TextureArray(size, 4, data, nil)
		if err != nil {
			t.Fatalf("create: %s", err)
		}

		if _, err := tex.Read(nil); err != nil {
			t.Fatalf("iteration %d: read: %s", idx, err)
		}
	}
}

func TestGC_BufferStaysValidDuringTransfer(t *testing.T) {
	ctx, _ := newContext(t, GCModeAuto)

	stop := spinGC()
	defer stop()

	tex, err := ctx.TextureArray([3]int{64, 64, 4}, 4, nil, nil)
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	defer tex.Release()

	for idx := range 200 {
		buf, err := ctx.Buffer(nil, &BufferOptions{Reserve: 64 * 64 * 4 * 4})
		if err != nil {
			t.Fatalf("create buffer: %s", err)
		}

		if err := tex.ReadInto(buf, nil); err != nil {
			t.Fatalf("iteration %d: read into buffer: %s", idx, err)
		}
	}
}

func TestGC_EnqueueAfterContextRelease(t *testing.T) {
	ctx := NewContext(soft.New(), GCModeContextGC)

	handle, err := ctx.TextureArray([3]int{2, 2, 1}, 1, nil, nil)
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	tex := handle.native.(*soft.Texture)

	ctx.Release()
	runtime.KeepAlive(handle)

	if !eventually(tex.Released) {
		t.Fatal("texture collected after the context was released must be released")
	}

	if ctx.PendingObjects() != 0 {
		t.Fatalf("released context queued %d objects", ctx.PendingObjects())
	}
}
