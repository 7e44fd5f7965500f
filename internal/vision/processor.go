package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"

	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tensor"
	"golang.org/x/image/draw"
)

// SizeSpec is a size field of a preprocessor config: a bare integer, {"shortest_edge": n}
// or {"height": h, "width": w}.
type SizeSpec struct {
	ShortestEdge int `json:"shortest_edge,omitempty"`
	Height       int `json:"height,omitempty"`
	Width        int `json:"width,omitempty"`
}

// UnmarshalJSON accepts the bare-integer form as a square size.
func (s *SizeSpec) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = SizeSpec{Height: n, Width: n}
		return nil
	}
	type plain SizeSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("size: %w", err)
	}
	*s = SizeSpec(p)
	return nil
}

// ProcessorConfig is the subset of preprocessor_config.json read by Processor.
type ProcessorConfig struct {
	ImageProcessorType   string    `json:"image_processor_type"`
	FeatureExtractorType string    `json:"feature_extractor_type"`
	DoResize             *bool     `json:"do_resize"`
	Size                 *SizeSpec `json:"size"`
	DoCenterCrop         bool      `json:"do_center_crop"`
	CropSize             *SizeSpec `json:"crop_size"`
	DoRescale            *bool     `json:"do_rescale"`
	RescaleFactor        float64   `json:"rescale_factor"`
	DoNormalize          *bool     `json:"do_normalize"`
	ImageMean            []float64 `json:"image_mean"`
	ImageStd             []float64 `json:"image_std"`

	// Resample uses PIL filter codes: 0 nearest, 2 bilinear, 3 bicubic.
	Resample *int `json:"resample"`
}

// Processor is a resize, crop and normalize image processor configured from a
// preprocessor config.
type Processor struct {
	name      string
	transform Transform
}

// NewProcessor builds a processor from cfg.
func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	t := Transform{
		Scale:         1.0 / 255,
		Normalize:     true,
		Mean:          ImageNetMean,
		Std:           ImageNetStd,
		Interpolation: draw.BiLinear,
		DataFormat:    preprocess.ChannelsFirst,
	}

	if cfg.DoResize == nil || *cfg.DoResize {
		size := SizeSpec{Height: 224, Width: 224}
		if cfg.Size != nil {
			size = *cfg.Size
		}
		switch {
		case size.ShortestEdge > 0:
			t.ShortestEdge = size.ShortestEdge
		case size.Height > 0 && size.Width > 0:
			t.Resize = image.Pt(size.Width, size.Height)
		default:
			return nil, fmt.Errorf("vision: invalid size %+v", size)
		}
	}
	if cfg.DoCenterCrop && cfg.CropSize != nil {
		if cfg.CropSize.Height <= 0 || cfg.CropSize.Width <= 0 {
			return nil, fmt.Errorf("vision: invalid crop size %+v", *cfg.CropSize)
		}
		t.Crop = image.Pt(cfg.CropSize.Width, cfg.CropSize.Height)
	}
	if cfg.DoRescale != nil && !*cfg.DoRescale {
		t.Scale = 1
	} else if cfg.RescaleFactor > 0 {
		t.Scale = cfg.RescaleFactor
	}
	if cfg.DoNormalize != nil && !*cfg.DoNormalize {
		t.Normalize = false
	}
	if len(cfg.ImageMean) > 0 || len(cfg.ImageStd) > 0 {
		if len(cfg.ImageMean) != 3 || len(cfg.ImageStd) != 3 {
			return nil, fmt.Errorf("vision: image_mean and image_std need 3 values, got %d and %d", len(cfg.ImageMean), len(cfg.ImageStd))
		}
		copy(t.Mean[:], cfg.ImageMean)
		copy(t.Std[:], cfg.ImageStd)
	}
	if cfg.Resample != nil {
		switch *cfg.Resample {
		case 0:
			t.Interpolation = draw.NearestNeighbor
		case 3:
			t.Interpolation = draw.CatmullRom
		}
	}

	name := cfg.ImageProcessorType
	if name == "" {
		name = cfg.FeatureExtractorType
	}
	if name == "" {
		name = "ImageProcessor"
	}
	return &Processor{name: name, transform: t}, nil
}

// NewTransformProcessor wraps a ready-made transform.
func NewTransformProcessor(name string, t Transform) *Processor {
	return &Processor{name: name, transform: t}
}

// LoadProcessor reads a preprocessor_config.json file.
func LoadProcessor(path string) (*Processor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	var cfg ProcessorConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("vision: parse %s: %w", path, err)
	}
	return NewProcessor(cfg)
}

// Name implements preprocess.Preprocessor.
func (p *Processor) Name() string {
	return p.name
}

// Transform returns the configured transform.
func (p *Processor) Transform() Transform {
	return p.transform
}

// ProcessImages implements preprocess.ImageProcessor. It emits "pixel_values"; every image
// must transform to the same size.
func (p *Processor) ProcessImages(ctx context.Context, images []image.Image, opts preprocess.ImageOptions) (*preprocess.ImageFeatures, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("vision: no images")
	}
	t := p.transform
	if opts.DataFormat != "" {
		t.DataFormat = opts.DataFormat
	}

	var (
		data  []float32
		out   image.Point
		sizes = make([]image.Point, len(images))
	)
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sizes[i] = img.Bounds().Size()
		size := t.OutputSize(sizes[i])
		if i == 0 {
			out = size
		} else if size != out {
			return nil, fmt.Errorf("vision: image %d transforms to %v, expected %v for batching", i, size, out)
		}
		data = t.Apply(data, img)
	}

	shape := tensor.Shape{len(images), 3, out.Y, out.X}
	if t.DataFormat == preprocess.ChannelsLast {
		shape = tensor.Shape{len(images), out.Y, out.X, 3}
	}
	pixels, err := tensor.FromFloat32(data, shape)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	return &preprocess.ImageFeatures{
		Tensors: tensor.Map{"pixel_values": pixels},
		Sizes:   sizes,
	}, nil
}
