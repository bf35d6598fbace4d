package gpu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/oliverbestmann/glarray/native"
	"github.com/oliverbestmann/glarray/native/soft"
)

func newContext(t *testing.T, mode GCMode) (*Context, *soft.Device) {
	t.Helper()

	dev := soft.New()

	ctx := NewContext(dev, mode)
	t.Cleanup(ctx.Release)

	return ctx, dev
}

func newTextureArray(t *testing.T, ctx *Context) *TextureArray {
	t.Helper()

	tex, err := ctx.TextureArray([3]int{4, 2, 3}, 4, nil, nil)
	if err != nil {
		t.Fatalf("create texture array: %s", err)
	}

	return tex
}

func pattern(n int) []byte {
	buf := make([]byte, n)
	for idx := range buf {
		buf[idx] = byte(idx*13 + 1)
	}

	return buf
}

func TestTextureArray_CachedAttributes(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	tex, err := ctx.TextureArray([3]int{8, 4, 2}, 3, nil, &TextureArrayOptions{Dtype: native.DtypeU2})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	defer tex.Release()

	if tex.Size() != [3]int{8, 4, 2} || tex.Width() != 8 || tex.Height() != 4 || tex.Layers() != 2 {
		t.Fatalf("unexpected size %v", tex.Size())
	}

	if tex.Components() != 3 || tex.Dtype() != native.DtypeU2 || tex.Samples() != 0 {
		t.Fatalf("unexpected format: components=%d dtype=%s samples=%d", tex.Components(), tex.Dtype(), tex.Samples())
	}

	if tex.GLO() <= 0 {
		t.Fatalf("expected a positive glo, got %d", tex.GLO())
	}

	if tex.Context() != ctx {
		t.Fatal("handle does not reference its context")
	}
}

func TestTextureArray_DefaultDtype(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	tex := newTextureArray(t, ctx)
	defer tex.Release()

	if tex.Dtype() != native.DtypeF1 {
		t.Fatalf("expected dtype f1, got %s", tex.Dtype())
	}
}

func TestTextureArray_CreateErrorIsWrapped(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	_, err := ctx.TextureArray([3]int{4, 4, 1}, 4, nil, &TextureArrayOptions{Alignment: 3})
	if !errors.Is(err, native.ErrAlignment) {
		t.Fatalf("expected ErrAlignment, got %v", err)
	}
}

func TestTextureArray_WriteRead(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	tex := newTextureArray(t, ctx)
	defer tex.Release()

	data := pattern(4 * 2 * 3 * 4)
	if err := tex.Write(data, nil); err != nil {
		t.Fatalf("write: %s", err)
	}

	read, err := tex.Read(nil)
	if err != nil {
		t.Fatalf("read: %s", err)
	}

	if !bytes.Equal(read, data) {
		t.Fatal("read back differs from the written data")
	}
}

func TestTextureArray_WriteViewport(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	tex, err := ctx.TextureArray([3]int{2, 2, 2}, 1, make([]byte, 8), &TextureArrayOptions{Dtype: native.DtypeU1})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	defer tex.Release()

	// a single texel in the second layer
	err = tex.Write([]byte{42}, &WriteOptions{Viewport: native.Viewport{1, 1, 1, 1, 1, 1}})
	if err != nil {
		t.Fatalf("write: %s", err)
	}

	read, err := tex.Read(nil)
	if err != nil {
		t.Fatalf("read: %s", err)
	}

	expected := []byte{0, 0, 0, 0, 0, 0, 0, 42}
	if !bytes.Equal(read, expected) {
		t.Fatalf("expected %v, got %v", expected, read)
	}
}

func TestTextureArray_NativeErrorsPassThrough(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	tex := newTextureArray(t, ctx)
	defer tex.Release()

	_, err := tex.Read(&ReadOptions{Alignment: 3})
	if err != native.ErrAlignment {
		t.Fatalf("expected the native error unchanged, got %v", err)
	}
}

func TestTextureArray_ReleaseTwice(t *testing.T) {
	ctx, dev := newContext(t, GCModeNone)

	tex := newTextureArray(t, ctx)
	softTex := tex.native.(*soft.Texture)

	tex.Release()
	tex.Release()

	if !softTex.Released() {
		t.Fatal("native texture was not released")
	}

	if dev.Live() != 0 {
		t.Fatalf("expected no live resources, got %d", dev.Live())
	}
}

func TestTextureArray_UseAfterRelease(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	tex := newTextureArray(t, ctx)
	glo := tex.GLO()

	tex.Release()

	calls := map[string]func() error{
		"Read":         func() error { _, err := tex.Read(nil); return err },
		"ReadInto":     func() error { return tex.ReadInto(make([]byte, 96), nil) },
		"Write":        func() error { return tex.Write(make([]byte, 96), nil) },
		"BuildMipmaps": func() error { return tex.BuildMipmaps(0, DefaultMaxLevel) },
		"Use":          func() error { return tex.Use(0) },
		"BindToImage":  func() error { return tex.BindToImage(0, true, false, 0, 0) },
		"RepeatX":      func() error { _, err := tex.RepeatX(); return err },
		"SetRepeatY":   func() error { return tex.SetRepeatY(true) },
		"Filter":       func() error { _, err := tex.Filter(); return err },
		"SetSwizzle":   func() error { return tex.SetSwizzle("RGBA") },
		"Anisotropy":   func() error { _, err := tex.Anisotropy(); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, native.ErrReleased) {
				t.Fatalf("expected ErrReleased, got %v", err)
			}
		})
	}

	if tex.GLO() != glo || tex.Size() != [3]int{4, 2, 3} || tex.Components() != 4 {
		t.Fatal("cached attributes changed after release")
	}

	if tex.String() != "<TextureArray: 1>" {
		t.Fatalf("unexpected string %q", tex.String())
	}
}

func TestTextureArray_Equal(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	a := newTextureArray(t, ctx)
	b := newTextureArray(t, ctx)

	if !a.Equal(a) {
		t.Fatal("handle must equal itself")
	}

	if a.Equal(b) {
		t.Fatal("separately created handles must not be equal")
	}

	alias := &TextureArray{native: a.native, ctx: ctx}
	if !a.Equal(alias) || !alias.Equal(a) {
		t.Fatal("handles of the same native texture must be equal")
	}

	if a.Equal("texture") || a.Equal((*TextureArray)(nil)) {
		t.Fatal("handle must not equal a value of another kind")
	}

	if a.Hash() == b.Hash() {
		t.Fatal("distinct handles must have distinct hashes")
	}

	a.Release()
	b.Release()

	if a.Equal(b) {
		t.Fatal("released handles must not be equal")
	}
}

func TestTextureArray_ZeroValue(t *testing.T) {
	var tex TextureArray

	if tex.String() != "<TextureArray: INCOMPLETE>" {
		t.Fatalf("unexpected string %q", tex.String())
	}

	if _, err := tex.Read(nil); !errors.Is(err, errors.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	if err := tex.Write(nil, &WriteOptions{Viewport: native.Viewport{1}}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	if err := tex.BindToImage(-1, false, false, -1, 0); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	if _, err := tex.Swizzle(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	// must not panic
	tex.Release()
}

func TestTextureArray_BuildMipmapsAndSampler(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	tex, err := ctx.TextureArray([3]int{4, 4, 2}, 1, pattern(32), &TextureArrayOptions{Dtype: native.DtypeU1})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	defer tex.Release()

	if err := tex.BuildMipmaps(0, DefaultMaxLevel); err != nil {
		t.Fatalf("build mipmaps: %s", err)
	}

	if levels := tex.native.(*soft.Texture).Levels(); levels != 3 {
		t.Fatalf("expected 3 levels, got %d", levels)
	}

	filter, err := tex.Filter()
	if err != nil {
		t.Fatalf("filter: %s", err)
	}

	if filter != (native.Filter{Min: native.LinearMipmapLinear, Mag: native.Linear}) {
		t.Fatalf("unexpected filter %+v", filter)
	}

	if err := tex.SetSwizzle("bgr"); err != nil {
		t.Fatalf("set swizzle: %s", err)
	}

	if swizzle, _ := tex.Swizzle(); swizzle != "BGR" {
		t.Fatalf("unexpected swizzle %q", swizzle)
	}

	if err := tex.SetRepeatX(false); err != nil {
		t.Fatalf("set repeat x: %s", err)
	}

	if repeat, _ := tex.RepeatX(); repeat {
		t.Fatal("repeat x still enabled")
	}
}

func TestTextureArray_UseAndBindToImage(t *testing.T) {
	ctx, dev := newContext(t, GCModeNone)

	tex := newTextureArray(t, ctx)
	defer tex.Release()

	if err := tex.Use(3); err != nil {
		t.Fatalf("use: %s", err)
	}

	if bound, ok := dev.BoundTexture(3); !ok || bound.GLO() != tex.GLO() {
		t.Fatal("texture not bound to unit 3")
	}

	if err := tex.BindToImage(1, true, true, 0, 0); err != nil {
		t.Fatalf("bind to image: %s", err)
	}

	if _, ok := dev.BoundImage(1); !ok {
		t.Fatal("texture not bound to image unit 1")
	}

	if err := tex.BindToImage(1, false, false, 0, 0); err == nil {
		t.Fatal("expected an error for an image binding without access")
	}
}

func TestTextureArray_Extra(t *testing.T) {
	ctx, _ := newContext(t, GCModeNone)

	tex := newTextureArray(t, ctx)
	defer tex.Release()

	if tex.Extra() != nil {
		t.Fatal("extra must be empty initially")
	}

	tex.SetExtra("material")

	if tex.Extra() != "material" {
		t.Fatalf("unexpected extra %v", tex.Extra())
	}
}

func TestContext_ReleasedFactories(t *testing.T) {
	ctx := NewContext(soft.New(), GCModeNone)
	ctx.Release()
	ctx.Release()

	if _, err := ctx.TextureArray([3]int{1, 1, 1}, 1, nil, nil); !errors.Is(err, ErrContextReleased) {
		t.Fatalf("expected ErrContextReleased, got %v", err)
	}

	if _, err := ctx.Buffer(nil, &BufferOptions{Reserve: 4}); !errors.Is(err, ErrContextReleased) {
		t.Fatalf("expected ErrContextReleased, got %v", err)
	}
}
