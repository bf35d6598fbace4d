package gpu

import (
	"fmt"
	"strings"
)

// GCMode decides what happens to a handle that the garbage collector
// reclaims before Release was called on it.
type GCMode int

const (
	// GCModeNone leaves the native resource alone. It is freed together
	// with its device, or never.
	GCModeNone GCMode = iota

	// GCModeAuto releases the native resource right away on the
	// finalizer goroutine. Only use it with backends that are safe to
	// call from any goroutine.
	GCModeAuto

	// GCModeContextGC queues the native resource on its Context. The
	// owner frees the queue at a safe point by calling Context.GC.
	GCModeContextGC
)

func (m GCMode) String() string {
	switch m {
	case GCModeNone:
		return "none"
	case GCModeAuto:
		return "auto"
	case GCModeContextGC:
		return "context_gc"
	default:
		return fmt.Sprintf("GCMode(%d)", int(m))
	}
}

// ParseGCMode parses the names returned by GCMode.String. The empty
// string is read as GCModeNone.
func ParseGCMode(value string) (GCMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return GCModeNone, nil
	case "auto":
		return GCModeAuto, nil
	case "context_gc":
		return GCModeContextGC, nil
	default:
		return GCModeNone, fmt.Errorf("unknown gc mode %q", value)
	}
}
