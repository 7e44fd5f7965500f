// Package onnx reads the descriptive parts of an .onnx file: producer, opsets, graph
// inputs and outputs, and metadata_props. Weights and nodes are skipped, not decoded.
//
// Exporters record the modeling library in metadata_props (for example
// "library_name": "timm"), which is how a bare model file reveals its family.
//
// Example usage:
//
//	info, err := onnx.ReadFile("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s %s opset %d\n", info.ProducerName, info.ProducerVersion, info.Opset())
//	for _, in := range info.Inputs {
//	    fmt.Printf("input %s %s %v\n", in.Name, in.ElemType, in.Dims)
//	}
package onnx
