// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package onnx reads the descriptive part of ONNX model files: producer, opsets,
// graph inputs and outputs, and metadata_props.
//
// Weights and nodes are skipped; inference runs in an external runtime.
//
// # Example Usage
//
//	info, err := onnx.ReadFile("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.Opset(), info.LibraryName())
//	for _, in := range info.Inputs {
//	    fmt.Println(in.Name, in.ElemType, in.Shape())
//	}
package onnx

import (
	"github.com/born-ml/taskpipe/internal/onnx"
)

// ModelInfo is the descriptive content of an ONNX model.
type ModelInfo = onnx.ModelInfo

// ValueInfo describes a graph input or output.
type ValueInfo = onnx.ValueInfo

// Dim is one tensor dimension, fixed or symbolic.
type Dim = onnx.Dim

// Opset is an imported operator set.
type Opset = onnx.Opset

// ElemType is an ONNX tensor element type.
type ElemType = onnx.ElemType

// Common element types.
const (
	Float = onnx.Float
	Int64 = onnx.Int64
	Uint8 = onnx.Uint8
)

// ErrMalformed is returned for bytes that are not a valid ModelProto.
var ErrMalformed = onnx.ErrMalformed

// Read decodes a serialized ModelProto.
func Read(data []byte) (*ModelInfo, error) {
	return onnx.Read(data)
}

// ReadFile reads and decodes an ONNX file.
func ReadFile(path string) (*ModelInfo, error) {
	return onnx.ReadFile(path)
}
