package modeling

import (
	"testing"

	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/onnx"
	"github.com/stretchr/testify/assert"
)

func TestInferFamily(t *testing.T) {
	yoloxGraph := &onnx.ModelInfo{Metadata: map[string]string{"library_name": "YOLOX"}}

	tests := []struct {
		name string
		cfg  models.Config
		info *onnx.ModelInfo
		want models.Family
	}{
		{name: "config library name", cfg: models.Config{LibraryName: "timm"}, info: yoloxGraph, want: models.FamilyTimm},
		{name: "pretrained config", cfg: models.Config{Pretrained: &models.TransformConfig{}}, info: yoloxGraph, want: models.FamilyTimm},
		{name: "graph metadata", info: yoloxGraph, want: models.FamilyYOLOX},
		{name: "nothing declared", info: &onnx.ModelInfo{}, want: models.FamilyTransformers},
		{name: "no graph", want: models.FamilyTransformers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferFamily(tt.cfg, tt.info))
		})
	}
}
