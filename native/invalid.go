package native

import (
	"errors"
	"fmt"
)

// ErrReleased is returned by every call on an object that was released.
var ErrReleased = errors.New("object already released")

// Invalid takes the place of a native resource after it was released.
// Each release installs a new Invalid, so two released handles never
// compare equal.
type Invalid struct {
	// Kind names the released object, e.g. "TextureArray".
	Kind string
}

var _ Texture = (*Invalid)(nil)
var _ Buffer = (*Invalid)(nil)

func NewInvalid(kind string) *Invalid {
	return &Invalid{Kind: kind}
}

func (inv *Invalid) err() error {
	return fmt.Errorf("%s: %w", inv.Kind, ErrReleased)
}

func (inv *Invalid) GLO() int  { return 0 }
func (inv *Invalid) Size() int { return 0 }

// Release does nothing, the object is gone already.
func (inv *Invalid) Release() {}

func (inv *Invalid) ReadAt([]byte, int64) (int, error)       { return 0, inv.err() }
func (inv *Invalid) WriteAt([]byte, int64) (int, error)      { return 0, inv.err() }
func (inv *Invalid) Read(int) ([]byte, error)                { return nil, inv.err() }
func (inv *Invalid) ReadInto(any, int, int) error            { return inv.err() }
func (inv *Invalid) Write(any, Viewport, int) error          { return inv.err() }
func (inv *Invalid) BuildMipmaps(int, int) error             { return inv.err() }
func (inv *Invalid) Use(int) error                           { return inv.err() }
func (inv *Invalid) Bind(int, bool, bool, int, uint32) error { return inv.err() }
func (inv *Invalid) RepeatX() (bool, error)                  { return false, inv.err() }
func (inv *Invalid) SetRepeatX(bool) error                   { return inv.err() }
func (inv *Invalid) RepeatY() (bool, error)                  { return false, inv.err() }
func (inv *Invalid) SetRepeatY(bool) error                   { return inv.err() }
func (inv *Invalid) Filter() (Filter, error)                 { return Filter{}, inv.err() }
func (inv *Invalid) SetFilter(Filter) error                  { return inv.err() }
func (inv *Invalid) Swizzle() (string, error)                { return "", inv.err() }
func (inv *Invalid) SetSwizzle(string) error                 { return inv.err() }
func (inv *Invalid) Anisotropy() (float32, error)            { return 0, inv.err() }
func (inv *Invalid) SetAnisotropy(float32) error             { return inv.err() }
