package onnx

import (
	"strconv"
	"strings"
)

// ElemType is an ONNX TensorProto.DataType value.
type ElemType int32

// ONNX element types.
const (
	Undefined ElemType = iota
	Float
	Uint8
	Int8
	Uint16
	Int16
	Int32
	Int64
	String
	Bool
	Float16
	Double
	Uint32
	Uint64
	Complex64
	Complex128
	BFloat16
)

var elemNames = map[ElemType]string{
	Undefined: "undefined",
	Float:     "float32",
	Uint8:     "uint8",
	Int8:      "int8",
	Uint16:    "uint16",
	Int16:     "int16",
	Int32:     "int32",
	Int64:     "int64",
	String:    "string",
	Bool:      "bool",
	Float16:   "float16",
	Double:    "float64",
	Uint32:    "uint32",
	Uint64:    "uint64",
	BFloat16:  "bfloat16",
}

// String returns a short type name.
func (t ElemType) String() string {
	if name, ok := elemNames[t]; ok {
		return name
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Dim is one tensor dimension: a fixed size or a named symbolic one.
type Dim struct {
	Value int64
	Param string
}

// String returns the size, the symbol name, or "?".
func (d Dim) String() string {
	switch {
	case d.Param != "":
		return d.Param
	case d.Value > 0:
		return strconv.FormatInt(d.Value, 10)
	default:
		return "?"
	}
}

// ValueInfo describes a graph input or output.
type ValueInfo struct {
	Name     string
	ElemType ElemType
	Dims     []Dim
}

// Shape formats the dimensions as "[batch 3 640 640]".
func (v ValueInfo) Shape() string {
	parts := make([]string, len(v.Dims))
	for i, d := range v.Dims {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Opset is an imported operator set.
type Opset struct {
	Domain  string
	Version int64
}

// ModelInfo is the descriptive content of an ONNX model.
type ModelInfo struct {
	IRVersion       int64
	ProducerName    string
	ProducerVersion string
	Domain          string
	ModelVersion    int64
	DocString       string
	Opsets          []Opset

	GraphName       string
	Inputs          []ValueInfo
	Outputs         []ValueInfo
	NumNodes        int
	NumInitializers int

	// Metadata holds metadata_props in file order; later duplicates win.
	Metadata map[string]string
}

// Opset returns the version of the default ("" or "ai.onnx") operator set, or 0.
func (m *ModelInfo) Opset() int64 {
	for _, o := range m.Opsets {
		if o.Domain == "" || o.Domain == "ai.onnx" {
			return o.Version
		}
	}
	return 0
}

// LibraryName returns the exporting library recorded in metadata_props, if any.
func (m *ModelInfo) LibraryName() string {
	return m.Metadata["library_name"]
}

// InputNames returns the graph input names in declared order.
func (m *ModelInfo) InputNames() []string {
	names := make([]string, len(m.Inputs))
	for i, in := range m.Inputs {
		names[i] = in.Name
	}
	return names
}

// OutputNames returns the graph output names in declared order.
func (m *ModelInfo) OutputNames() []string {
	names := make([]string, len(m.Outputs))
	for i, out := range m.Outputs {
		names[i] = out.Name
	}
	return names
}
