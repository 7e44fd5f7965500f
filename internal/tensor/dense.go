package tensor

import (
	"fmt"
	"sort"
)

// Tensor is a dense, row-major tensor holding either float32 or int64 elements.
//
// Tensors are treated as immutable once handed to a model session; callers that need
// to change values should work on a Clone.
type Tensor struct {
	shape Shape
	dtype DataType
	f32   []float32
	i64   []int64
}

// FromFloat32 wraps data in a float32 tensor of the given shape. The slice is not copied.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)", len(data), shape, shape.NumElements())
	}
	return &Tensor{shape: shape.Clone(), dtype: Float32, f32: data}, nil
}

// FromInt64 wraps data in an int64 tensor of the given shape. The slice is not copied.
func FromInt64(data []int64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)", len(data), shape, shape.NumElements())
	}
	return &Tensor{shape: shape.Clone(), dtype: Int64, i64: data}, nil
}

// Zeros allocates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	t := &Tensor{shape: shape.Clone(), dtype: dtype}
	switch dtype {
	case Float32:
		t.f32 = make([]float32, shape.NumElements())
	case Int64:
		t.i64 = make([]int64, shape.NumElements())
	default:
		return nil, fmt.Errorf("unsupported data type %s", dtype)
	}
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// ByteSize returns the size of the element buffer in bytes.
func (t *Tensor) ByteSize() int {
	return t.NumElements() * t.dtype.Size()
}

// Float32 returns the backing float32 slice, or nil for non-float tensors.
func (t *Tensor) Float32() []float32 {
	return t.f32
}

// Int64 returns the backing int64 slice, or nil for non-integer tensors.
func (t *Tensor) Int64() []int64 {
	return t.i64
}

// At returns the element at idx converted to float64.
func (t *Tensor) At(idx ...int) (float64, error) {
	off, err := t.shape.Offset(idx...)
	if err != nil {
		return 0, err
	}
	if t.dtype == Int64 {
		return float64(t.i64[off]), nil
	}
	return float64(t.f32[off]), nil
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{shape: t.shape.Clone(), dtype: t.dtype}
	if t.f32 != nil {
		c.f32 = append([]float32(nil), t.f32...)
	}
	if t.i64 != nil {
		c.i64 = append([]int64(nil), t.i64...)
	}
	return c
}

// String returns a short description such as "float32[1 3 640 640]".
func (t *Tensor) String() string {
	return fmt.Sprintf("%s%v", t.dtype, []int(t.shape))
}

// Map holds named tensors, the unit exchanged with model sessions.
type Map map[string]*Tensor

// Names returns the tensor names in lexical order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of the map; tensors are shared.
func (m Map) Clone() Map {
	c := make(Map, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
