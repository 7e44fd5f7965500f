// Package yolox implements the YOLOX image processor: letterbox preprocessing and
// decoding of detection heads into boxes in original-image coordinates.
package yolox

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/born-ml/taskpipe/internal/parallel"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tensor"
	"golang.org/x/image/draw"
)

// ProcessorType is the image_processor_type value of YOLOX preprocessor configs.
const ProcessorType = "YoloXImageProcessor"

// Size is a network input size in pixels.
type Size struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// Config is the YOLOX preprocessor configuration.
type Config struct {
	Size       Size                  `json:"size"`
	PadValue   *float64              `json:"pad_value,omitempty"`
	DataFormat preprocess.DataFormat `json:"data_format,omitempty"`

	// InputName is the model input the pixel tensor is fed to.
	InputName string `json:"input_name,omitempty"`
}

// DefaultConfig is the 640x640 channels-first configuration YOLOX models ship with.
func DefaultConfig() Config {
	return Config{
		Size:       Size{Height: 640, Width: 640},
		DataFormat: preprocess.ChannelsFirst,
		InputName:  "images",
	}
}

const defaultPadValue = 114

// Processor is a YOLOX image processor. It is safe for concurrent use.
type Processor struct {
	cfg  Config
	pad  float64
	rows parallel.Config
}

// New returns a processor for cfg, filling unset fields from DefaultConfig.
func New(cfg Config) (*Processor, error) {
	def := DefaultConfig()
	if cfg.Size == (Size{}) {
		cfg.Size = def.Size
	}
	if cfg.Size.Height <= 0 || cfg.Size.Width <= 0 {
		return nil, fmt.Errorf("yolox: invalid input size %dx%d", cfg.Size.Width, cfg.Size.Height)
	}
	if cfg.DataFormat == "" {
		cfg.DataFormat = def.DataFormat
	}
	if err := checkFormat(cfg.DataFormat); err != nil {
		return nil, err
	}
	if cfg.InputName == "" {
		cfg.InputName = def.InputName
	}
	pad := float64(defaultPadValue)
	if cfg.PadValue != nil {
		pad = *cfg.PadValue
	}
	return &Processor{cfg: cfg, pad: pad, rows: parallel.DefaultConfig()}, nil
}

// Load reads a preprocessor_config.json file.
func Load(path string) (*Processor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yolox: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("yolox: parse %s: %w", path, err)
	}
	return New(cfg)
}

// Name implements preprocess.Preprocessor.
func (p *Processor) Name() string {
	return ProcessorType
}

// Config returns the effective configuration.
func (p *Processor) Config() Config {
	return p.cfg
}

// ProcessImages letterboxes every image into the network size, top-left aligned and
// padded with the pad value, and stacks them into one float32 batch tensor.
func (p *Processor) ProcessImages(ctx context.Context, images []image.Image, opts preprocess.ImageOptions) (*preprocess.ImageFeatures, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("yolox: no images")
	}
	format := p.cfg.DataFormat
	if opts.DataFormat != "" {
		format = opts.DataFormat
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	h, w := p.cfg.Size.Height, p.cfg.Size.Width
	plane := h * w
	data := make([]float32, len(images)*3*plane)
	ratios := make([]preprocess.Ratio, len(images))
	sizes := make([]image.Point, len(images))

	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		canvas, ratio := p.letterbox(img)
		ratios[i] = preprocess.UniformRatio(ratio)
		sizes[i] = img.Bounds().Size()

		base := i * 3 * plane
		err := parallel.RowsContext(ctx, h, p.rows, func(y0, y1 int) error {
			for y := y0; y < y1; y++ {
				for x := 0; x < w; x++ {
					px := canvas.RGBAAt(x, y)
					rgb := [3]float32{float32(px.R), float32(px.G), float32(px.B)}
					for c, v := range rgb {
						if format == preprocess.ChannelsFirst {
							data[base+c*plane+y*w+x] = v
						} else {
							data[base+(y*w+x)*3+c] = v
						}
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	shape := tensor.Shape{len(images), 3, h, w}
	if format == preprocess.ChannelsLast {
		shape = tensor.Shape{len(images), h, w, 3}
	}
	pixels, err := tensor.FromFloat32(data, shape)
	if err != nil {
		return nil, fmt.Errorf("yolox: %w", err)
	}
	return &preprocess.ImageFeatures{
		Tensors: tensor.Map{p.cfg.InputName: pixels},
		Ratios:  ratios,
		Sizes:   sizes,
	}, nil
}

// letterbox resizes img by min(H/h, W/w) onto a padded canvas of the network size.
func (p *Processor) letterbox(img image.Image) (*image.RGBA, float64) {
	h, w := p.cfg.Size.Height, p.cfg.Size.Width
	src := img.Bounds()
	ratio := min(float64(h)/float64(src.Dy()), float64(w)/float64(src.Dx()))

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	pad := uint8(min(max(p.pad, 0), 255))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.RGBA{R: pad, G: pad, B: pad, A: 255}}, image.Point{}, draw.Src)

	rw := min(int(float64(src.Dx())*ratio), w)
	rh := min(int(float64(src.Dy())*ratio), h)
	draw.BiLinear.Scale(canvas, image.Rect(0, 0, rw, rh), img, src, draw.Src, nil)
	return canvas, ratio
}

func checkFormat(f preprocess.DataFormat) error {
	switch f {
	case preprocess.ChannelsFirst, preprocess.ChannelsLast:
		return nil
	default:
		return fmt.Errorf("yolox: unsupported data format %q", f)
	}
}
