// Package onnxtest encodes small ONNX models for tests.
package onnxtest

import (
	"github.com/born-ml/taskpipe/internal/onnx"
	"google.golang.org/protobuf/encoding/protowire"
)

// Encode serializes the descriptive fields of info as a ModelProto. The graph carries
// NumNodes empty nodes and NumInitializers empty initializers.
func Encode(info *onnx.ModelInfo) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(info.IRVersion))
	b = appendString(b, 2, info.ProducerName)
	b = appendString(b, 3, info.ProducerVersion)
	b = appendString(b, 4, info.Domain)
	b = appendVarint(b, 5, uint64(info.ModelVersion))
	b = appendString(b, 6, info.DocString)

	var g []byte
	for range info.NumNodes {
		g = appendBytes(g, 1, nil)
	}
	g = appendString(g, 2, info.GraphName)
	for range info.NumInitializers {
		g = appendBytes(g, 5, nil)
	}
	for _, in := range info.Inputs {
		g = appendBytes(g, 11, valueInfo(in))
	}
	for _, out := range info.Outputs {
		g = appendBytes(g, 12, valueInfo(out))
	}
	b = appendBytes(b, 7, g)

	for _, o := range info.Opsets {
		var ob []byte
		ob = appendString(ob, 1, o.Domain)
		ob = appendVarint(ob, 2, uint64(o.Version))
		b = appendBytes(b, 8, ob)
	}
	for k, v := range info.Metadata {
		var eb []byte
		eb = appendString(eb, 1, k)
		eb = appendString(eb, 2, v)
		b = appendBytes(b, 14, eb)
	}
	return b
}

func valueInfo(vi onnx.ValueInfo) []byte {
	var shape []byte
	for _, d := range vi.Dims {
		var db []byte
		if d.Param != "" {
			db = appendString(db, 2, d.Param)
		} else {
			db = appendVarint(db, 1, uint64(d.Value))
		}
		shape = appendBytes(shape, 1, db)
	}
	var tt []byte
	tt = appendVarint(tt, 1, uint64(vi.ElemType))
	tt = appendBytes(tt, 2, shape)

	var b []byte
	b = appendString(b, 1, vi.Name)
	b = appendBytes(b, 2, appendBytes(nil, 1, tt))
	return b
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}
