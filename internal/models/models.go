//go:generate go run go.uber.org/mock/mockgen -source=models.go -destination=../mocks/mock_models.go -package=mocks

// Package models defines the model contract consumed by pipelines and resolves a
// caller's model handle into a constructed model instance.
package models

import (
	"context"

	"github.com/born-ml/taskpipe/internal/accel"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/born-ml/taskpipe/internal/tensor"
)

// Family is the modeling library a model was exported from.
type Family string

// Known library families.
const (
	FamilyTransformers Family = "transformers"
	FamilyTimm         Family = "timm"
	FamilyYOLOX        Family = "yolox"
)

// TransformConfig is the pretrained input transform of a timm model.
type TransformConfig struct {
	// InputSize is (channels, height, width).
	InputSize     [3]int     `json:"input_size"`
	Mean          [3]float64 `json:"mean"`
	Std           [3]float64 `json:"std"`
	CropPct       float64    `json:"crop_pct"`
	Interpolation string     `json:"interpolation"`
}

// Config is the subset of a model's configuration the pipelines read.
type Config struct {
	ModelType     string            `json:"model_type"`
	LibraryName   string            `json:"library_name"`
	Architectures []string          `json:"architectures"`
	ID2Label      map[string]string `json:"id2label"`
	Pretrained    *TransformConfig  `json:"pretrained_cfg,omitempty"`
}

// Model is a constructed, runnable model.
//
// Forward receives tensors only; any per-call metadata stays with the caller.
type Model interface {
	// Class is the model class the instance was built as.
	Class() tasks.ModelClass

	// Family is the modeling library the model comes from.
	Family() Family

	// Config returns the model configuration.
	Config() Config

	// Preprocessors returns the preprocessors attached to the model, in declared order.
	Preprocessors() []preprocess.Preprocessor

	// Forward runs inference.
	Forward(ctx context.Context, inputs tensor.Map) (tensor.Map, error)
}

// LoadOptions is forwarded to the loader when constructing a model.
type LoadOptions struct {
	// Accelerator is passed through verbatim.
	Accelerator accel.Config

	// Token authorizes the model fetch.
	Token string

	// Revision pins the model version; empty means the loader default.
	Revision string
}

// Loader constructs a model of a given class from an identifier.
type Loader interface {
	Load(ctx context.Context, class tasks.ModelClass, id string, opts LoadOptions) (Model, error)
}
