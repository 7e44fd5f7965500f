package modeling

import (
	"strings"

	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/onnx"
)

// InferFamily returns the library a model was exported from. The configuration's
// library_name wins, then a timm pretrained config, then the ONNX metadata. Models
// declaring nothing are transformers models.
func InferFamily(cfg models.Config, info *onnx.ModelInfo) models.Family {
	if name := strings.TrimSpace(cfg.LibraryName); name != "" {
		return models.Family(strings.ToLower(name))
	}
	if cfg.Pretrained != nil {
		return models.FamilyTimm
	}
	if info != nil {
		if name := strings.TrimSpace(info.LibraryName()); name != "" {
			return models.Family(strings.ToLower(name))
		}
	}
	return models.FamilyTransformers
}
