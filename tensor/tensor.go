// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensors exchanged with inference sessions.
//
// The package defines:
//   - Tensor: a dense row-major buffer with a shape and element type
//   - Map: named tensors, the unit passed to and returned by sessions
//   - Shape, DataType: core type definitions
//
// Example:
//
//	pixels, err := tensor.FromFloat32(data, tensor.Shape{1, 3, 640, 640})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outputs, err := session.Forward(ctx, tensor.Map{"images": pixels})
package tensor

import (
	"github.com/born-ml/taskpipe/internal/tensor"
)

// Tensor is a dense row-major tensor.
type Tensor = tensor.Tensor

// Map holds named tensors.
type Map = tensor.Map

// Shape is a tensor shape.
type Shape = tensor.Shape

// DataType is a tensor element type.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Int64   = tensor.Int64
)

// FromFloat32 wraps data in a float32 tensor. The slice is not copied.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromFloat32(data, shape)
}

// FromInt64 wraps data in an int64 tensor. The slice is not copied.
func FromInt64(data []int64, shape Shape) (*Tensor, error) {
	return tensor.FromInt64(data, shape)
}

// Zeros allocates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.Zeros(shape, dtype)
}
