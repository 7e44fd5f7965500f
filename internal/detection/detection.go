//go:generate go run go.uber.org/mock/mockgen -source=detection.go -destination=../mocks/mock_detection.go -package=mocks

// Package detection implements the specialized object-detection pipeline: load an image,
// run the image processor, forward through the model and turn raw head outputs into
// ranked, filtered detections in original-image coordinates.
package detection

import (
	"context"
	"image"
	"time"

	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tensor"
)

// Box is an axis-aligned bounding box in original-image pixel coordinates.
type Box struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// Area returns the box area, zero for degenerate boxes.
func (b Box) Area() float64 {
	w, h := b.XMax-b.XMin, b.YMax-b.YMin
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU returns the intersection over union of b and o.
func (b Box) IoU(o Box) float64 {
	inter := Box{
		XMin: max(b.XMin, o.XMin),
		YMin: max(b.YMin, o.YMin),
		XMax: min(b.XMax, o.XMax),
		YMax: min(b.YMax, o.YMax),
	}.Area()
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Detection is one detected object.
type Detection struct {
	Label   string  `json:"label"`
	ClassID int     `json:"-"`
	Score   float64 `json:"score"`
	Box     Box     `json:"box"`
}

// Options configures PostProcessObjectDetection.
type Options struct {
	NMSThreshold   float64
	ScoreThreshold float64

	// Ratios maps boxes back to original-image coordinates, one per image.
	Ratios []preprocess.Ratio

	// Sizes clips boxes to the original image bounds when set.
	Sizes []image.Point

	// P6 selects the four-level head layout (strides 8 to 64).
	P6 bool

	// DataFormat is the layout of the model outputs; empty means the processor default.
	DataFormat preprocess.DataFormat

	// Labels names class indices; unnamed classes fall back to their index.
	Labels map[int]string
}

// PostProcessor is an image processor that can also decode detection heads.
type PostProcessor interface {
	preprocess.ImageProcessor

	// PostProcessObjectDetection decodes raw outputs, applies score filtering and NMS, rescales
	// boxes with the per-image ratios and returns one result set per image.
	PostProcessObjectDetection(outputs tensor.Map, opts Options) ([][]Detection, error)
}

// ImageLoader resolves caller input into a decoded image within timeout.
type ImageLoader interface {
	Load(ctx context.Context, src any, timeout time.Duration) (image.Image, error)
}
