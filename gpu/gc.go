package gpu

import (
	"log/slog"
	"reflect"
	"runtime"

	"github.com/oliverbestmann/glarray/native"
)

type collectable interface {
	context() *Context

	// resource returns the native resource, or nil if the handle was released
	resource() native.Resource
}

// registerWithGC installs a finalizer on value that applies the GCMode
// of the values context once the value is garbage collected.
func registerWithGC[T collectable](value T) T {
	runtime.SetFinalizer(value, collect[T])

	return value
}

func collect[T collectable](value T) {
	ctx := value.context()
	if ctx == nil {
		return
	}

	res := value.resource()
	if res == nil {
		return
	}

	typ := reflect.TypeOf(value).String()

	switch ctx.GCMode() {
	case GCModeAuto:
		slog.Debug("Releasing garbage collected instance", slog.String("type", typ), slog.Int("glo", res.GLO()))
		res.Release()

	case GCModeContextGC:
		slog.Debug("Queueing garbage collected instance", slog.String("type", typ), slog.Int("glo", res.GLO()))
		ctx.enqueue(res)
	}
}

func isReleased(res native.Resource) bool {
	_, ok := res.(*native.Invalid)
	return ok
}
