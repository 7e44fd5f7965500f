package tensor

import (
	"fmt"
	"slices"
)

// Shape lists tensor dimensions, outermost first.
type Shape []int

// NumElements returns the product of the dimensions; a rank-0 shape holds one element.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate rejects empty or negative dimensions.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d <= 0 }); i >= 0 {
		return fmt.Errorf("dimension %d is %d, must be positive", i, s[i])
	}
	return nil
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// Strides returns row-major element strides.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// Offset converts a multi-dimensional index into a flat row-major offset.
func (s Shape) Offset(idx ...int) (int, error) {
	if len(idx) != len(s) {
		return 0, fmt.Errorf("index rank %d does not match shape rank %d", len(idx), len(s))
	}
	strides := s.Strides()
	off := 0
	for i, v := range idx {
		if v < 0 || v >= s[i] {
			return 0, fmt.Errorf("index %d out of range for dimension %d of size %d", v, i, s[i])
		}
		off += v * strides[i]
	}
	return off, nil
}
