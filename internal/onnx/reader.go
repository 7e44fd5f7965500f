package onnx

import (
	"errors"
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from onnx.proto.
const (
	modelIRVersion       = 1
	modelProducerName    = 2
	modelProducerVersion = 3
	modelDomain          = 4
	modelVersion         = 5
	modelDocString       = 6
	modelGraph           = 7
	modelOpsetImport     = 8
	modelMetadataProps   = 14

	graphNode        = 1
	graphName        = 2
	graphInitializer = 5
	graphInput       = 11
	graphOutput      = 12

	valueInfoName = 1
	valueInfoType = 2

	typeTensor = 1

	tensorTypeElemType = 1
	tensorTypeShape    = 2

	shapeDim = 1

	dimValue = 1
	dimParam = 2

	opsetDomain  = 1
	opsetVersion = 2

	entryKey   = 1
	entryValue = 2
)

// ErrMalformed reports a truncated or invalid protobuf encoding.
var ErrMalformed = errors.New("malformed onnx model")

// ReadFile reads the model description from an .onnx file.
//
//nolint:gosec // G304: reading a user-supplied model path is intentional.
func ReadFile(path string) (*ModelInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	info, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// Read decodes the model description from serialized ModelProto bytes.
func Read(data []byte) (*ModelInfo, error) {
	info := &ModelInfo{Metadata: map[string]string{}}
	err := walk(data, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == modelIRVersion && typ == protowire.VarintType:
			info.IRVersion = int64(n)
		case num == modelProducerName && typ == protowire.BytesType:
			info.ProducerName = string(v)
		case num == modelProducerVersion && typ == protowire.BytesType:
			info.ProducerVersion = string(v)
		case num == modelDomain && typ == protowire.BytesType:
			info.Domain = string(v)
		case num == modelVersion && typ == protowire.VarintType:
			info.ModelVersion = int64(n)
		case num == modelDocString && typ == protowire.BytesType:
			info.DocString = string(v)
		case num == modelGraph && typ == protowire.BytesType:
			return readGraph(v, info)
		case num == modelOpsetImport && typ == protowire.BytesType:
			o, err := readOpset(v)
			if err != nil {
				return err
			}
			info.Opsets = append(info.Opsets, o)
		case num == modelMetadataProps && typ == protowire.BytesType:
			k, val, err := readEntry(v)
			if err != nil {
				return err
			}
			info.Metadata[k] = val
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// walk calls fn for every top-level field of msg. v is set for length-delimited fields,
// n for varints.
func walk(msg []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error) error {
	for len(msg) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(msg)
		if tagLen < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(tagLen))
		}
		msg = msg[tagLen:]

		var (
			v      []byte
			n      uint64
			valLen int
		)
		switch typ {
		case protowire.VarintType:
			n, valLen = protowire.ConsumeVarint(msg)
		case protowire.BytesType:
			v, valLen = protowire.ConsumeBytes(msg)
		default:
			valLen = protowire.ConsumeFieldValue(num, typ, msg)
		}
		if valLen < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(valLen))
		}
		msg = msg[valLen:]

		if err := fn(num, typ, v, n); err != nil {
			return err
		}
	}
	return nil
}

func readGraph(msg []byte, info *ModelInfo) error {
	return walk(msg, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case graphNode:
			info.NumNodes++
		case graphInitializer:
			info.NumInitializers++
		case graphName:
			info.GraphName = string(v)
		case graphInput, graphOutput:
			vi, err := readValueInfo(v)
			if err != nil {
				return err
			}
			if num == graphInput {
				info.Inputs = append(info.Inputs, vi)
			} else {
				info.Outputs = append(info.Outputs, vi)
			}
		}
		return nil
	})
}

func readValueInfo(msg []byte) (ValueInfo, error) {
	var vi ValueInfo
	err := walk(msg, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		switch {
		case num == valueInfoName && typ == protowire.BytesType:
			vi.Name = string(v)
		case num == valueInfoType && typ == protowire.BytesType:
			return walk(v, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
				if num == typeTensor && typ == protowire.BytesType {
					return readTensorType(v, &vi)
				}
				return nil
			})
		}
		return nil
	})
	return vi, err
}

func readTensorType(msg []byte, vi *ValueInfo) error {
	return walk(msg, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == tensorTypeElemType && typ == protowire.VarintType:
			vi.ElemType = ElemType(n)
		case num == tensorTypeShape && typ == protowire.BytesType:
			return walk(v, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
				if num != shapeDim || typ != protowire.BytesType {
					return nil
				}
				d, err := readDim(v)
				if err != nil {
					return err
				}
				vi.Dims = append(vi.Dims, d)
				return nil
			})
		}
		return nil
	})
}

func readDim(msg []byte) (Dim, error) {
	var d Dim
	err := walk(msg, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == dimValue && typ == protowire.VarintType:
			d.Value = int64(n)
		case num == dimParam && typ == protowire.BytesType:
			d.Param = string(v)
		}
		return nil
	})
	return d, err
}

func readOpset(msg []byte) (Opset, error) {
	var o Opset
	err := walk(msg, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == opsetDomain && typ == protowire.BytesType:
			o.Domain = string(v)
		case num == opsetVersion && typ == protowire.VarintType:
			o.Version = int64(n)
		}
		return nil
	})
	return o, err
}

func readEntry(msg []byte) (key, value string, err error) {
	err = walk(msg, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case entryKey:
			key = string(v)
		case entryValue:
			value = string(v)
		}
		return nil
	})
	return key, value, err
}
