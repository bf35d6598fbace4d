package native

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

type numeric interface {
	constraints.Integer | constraints.Float
}

// Box is an axis aligned box in (x, y, layer) space. Max is exclusive.
type Box[T numeric] struct {
	Min [3]T
	Max [3]T
}

func BoxFromSize[T numeric](pos [3]T, size [3]T) Box[T] {
	return Box[T]{
		Min: pos,
		Max: [3]T{pos[0] + size[0], pos[1] + size[1], pos[2] + size[2]},
	}
}

// ConvertBox converts the coordinates of b to another numeric type.
func ConvertBox[To, From numeric](b Box[From]) Box[To] {
	var out Box[To]

	for idx := range 3 {
		out.Min[idx] = To(b.Min[idx])
		out.Max[idx] = To(b.Max[idx])
	}

	return out
}

func (b Box[T]) Size() [3]T {
	return [3]T{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

func (b Box[T]) Width() T {
	return b.Max[0] - b.Min[0]
}

func (b Box[T]) Height() T {
	return b.Max[1] - b.Min[1]
}

func (b Box[T]) Layers() T {
	return b.Max[2] - b.Min[2]
}

func (b Box[T]) Empty() bool {
	return b.Width() <= 0 || b.Height() <= 0 || b.Layers() <= 0
}

// Contains reports whether other lies completely within b.
func (b Box[T]) Contains(other Box[T]) bool {
	for idx := range 3 {
		if other.Min[idx] < b.Min[idx] || other.Max[idx] > b.Max[idx] {
			return false
		}
	}

	return true
}

func (b Box[T]) String() string {
	return fmt.Sprintf("(%v, %v, %v, %v, %v, %v)",
		b.Min[0], b.Min[1], b.Min[2],
		b.Width(), b.Height(), b.Layers())
}

// Region resolves the viewport against a texture of the given size.
func (v Viewport) Region(width, height, layers int) (Box[int], error) {
	full := BoxFromSize([3]int{}, [3]int{width, height, layers})

	var region Box[int]

	switch len(v) {
	case 0:
		if v != nil {
			return Box[int]{}, fmt.Errorf("the viewport must be a tuple of 3 or 6 values, got 0")
		}

		return full, nil

	case 3:
		region = BoxFromSize([3]int{}, [3]int{v[0], v[1], v[2]})

	case 6:
		region = BoxFromSize([3]int{v[0], v[1], v[2]}, [3]int{v[3], v[4], v[5]})

	default:
		return Box[int]{}, fmt.Errorf("the viewport must be a tuple of 3 or 6 values, got %d", len(v))
	}

	if region.Empty() || !full.Contains(region) {
		return Box[int]{}, fmt.Errorf("viewport %s not in texture region %s", region, full)
	}

	return region, nil
}
