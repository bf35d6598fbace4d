package native

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Element types as understood by both backends.
const (
	DtypeF1 = "f1"
	DtypeF2 = "f2"
	DtypeF4 = "f4"
	DtypeU1 = "u1"
	DtypeU2 = "u2"
	DtypeU4 = "u4"
	DtypeI1 = "i1"
	DtypeI2 = "i2"
	DtypeI4 = "i4"
)

var itemSizes = map[string]int{
	DtypeF1: 1, DtypeF2: 2, DtypeF4: 4,
	DtypeU1: 1, DtypeU2: 2, DtypeU4: 4,
	DtypeI1: 1, DtypeI2: 2, DtypeI4: 4,
}

var (
	ErrAlignment  = errors.New("the alignment must be 1, 2, 4 or 8")
	ErrComponents = errors.New("the components must be 1, 2, 3 or 4")
)

// ItemSize returns the size in bytes of a single component of the given dtype.
func ItemSize(dtype string) (int, error) {
	size, ok := itemSizes[dtype]
	if !ok {
		return 0, fmt.Errorf("invalid dtype %q", dtype)
	}

	return size, nil
}

func CheckAlignment(alignment int) error {
	switch alignment {
	case 1, 2, 4, 8:
		return nil
	default:
		return ErrAlignment
	}
}

func CheckComponents(components int) error {
	if components < 1 || components > 4 {
		return ErrComponents
	}

	return nil
}

// AlignUp rounds value up to the next multiple of alignment.
func AlignUp[T constraints.Integer](value, alignment T) T {
	return (value + alignment - 1) / alignment * alignment
}

// Layout describes how pixels of a texture array region are laid out
// in client memory: rows padded to the alignment, then height rows per
// layer, then layers.
type Layout struct {
	Stride int
	Height int
	Layers int
}

// NewLayout computes the client memory layout of a width x height x layers region.
func NewLayout(width, height, layers, pixelSize, alignment int) Layout {
	return Layout{
		Stride: AlignUp(width*pixelSize, alignment),
		Height: height,
		Layers: layers,
	}
}

// Size returns the number of bytes the layout occupies.
func (l Layout) Size() int {
	return l.Stride * l.Height * l.Layers
}

// Offset returns the offset of the first byte of row y in the given layer.
func (l Layout) Offset(y, layer int) int {
	return (layer*l.Height + y) * l.Stride
}
