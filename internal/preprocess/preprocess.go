//go:generate go run go.uber.org/mock/mockgen -source=preprocess.go -destination=../mocks/mock_preprocess.go -package=mocks

// Package preprocess defines preprocessor capabilities and resolves which
// preprocessor a pipeline uses.
package preprocess

import (
	"context"
	"image"

	"github.com/born-ml/taskpipe/internal/tensor"
)

// Preprocessor converts raw input into model-ready tensors.
// Concrete capabilities are expressed by the narrower interfaces below.
type Preprocessor interface {
	// Name identifies the preprocessor type, e.g. "YoloXImageProcessor".
	Name() string
}

// DataFormat is the channel layout of image tensors.
type DataFormat string

// Supported channel layouts.
const (
	ChannelsFirst DataFormat = "channels_first"
	ChannelsLast  DataFormat = "channels_last"
)

// Ratio maps network-input coordinates back to original-image coordinates:
// original = network / Ratio along each axis.
type Ratio struct {
	Width  float64
	Height float64
}

// UniformRatio returns a ratio with the same factor on both axes.
func UniformRatio(r float64) Ratio {
	return Ratio{Width: r, Height: r}
}

// ImageOptions configures image preprocessing.
type ImageOptions struct {
	// DataFormat overrides the processor's default channel layout when set.
	DataFormat DataFormat
}

// ImageFeatures is the output of an image processor.
type ImageFeatures struct {
	// Tensors are fed to the model as-is.
	Tensors tensor.Map

	// Ratios holds one resize ratio per image. Nil when the processor does not resize
	// in a way that needs undoing.
	Ratios []Ratio

	// Sizes holds the original (width, height) of each image.
	Sizes []image.Point
}

// ImageProcessor is the capability required by image tasks.
type ImageProcessor interface {
	Preprocessor
	ProcessImages(ctx context.Context, images []image.Image, opts ImageOptions) (*ImageFeatures, error)
}

// Tokenizer is the capability required by text tasks.
type Tokenizer interface {
	Preprocessor
	Tokenize(texts []string) (tensor.Map, error)
}
