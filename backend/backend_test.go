package backend

import (
	"testing"

	"github.com/oliverbestmann/glarray/gpu"
	"github.com/oliverbestmann/glarray/native/soft"
)

func TestOpen(t *testing.T) {
	dev, err := Open("soft")
	if err != nil {
		t.Fatalf("open: %s", err)
	}

	defer dev.Release()

	if _, ok := dev.(*soft.Device); !ok {
		t.Fatalf("unexpected device %T", dev)
	}

	if _, err := Open("vulkan"); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestNewContextFromEnv(t *testing.T) {
	t.Setenv("GLARRAY_BACKEND", "soft")
	t.Setenv("GLARRAY_GC_MODE", "auto")

	ctx, err := NewContextFromEnv()
	if err != nil {
		t.Fatalf("new context: %s", err)
	}

	defer ctx.Release()

	if ctx.GCMode() != gpu.GCModeAuto {
		t.Fatalf("unexpected gc mode %s", ctx.GCMode())
	}

	tex, err := ctx.TextureArray([3]int{2, 2, 2}, 4, nil, nil)
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	tex.Release()
}
