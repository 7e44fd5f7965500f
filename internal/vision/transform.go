// Package vision holds image transforms shared by image processors: resize, center crop,
// rescale and per-channel normalization into float32 tensors.
package vision

import (
	"image"
	"math"

	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/parallel"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"golang.org/x/image/draw"
)

// ImageNet statistics used when a model declares none.
var (
	ImageNetMean = [3]float64{0.485, 0.456, 0.406}
	ImageNetStd  = [3]float64{0.229, 0.224, 0.225}
)

// DefaultCropPct is the timm default center-crop fraction.
const DefaultCropPct = 0.875

// Transform converts one image into normalized float32 pixels.
type Transform struct {
	// ShortestEdge resizes the shorter side to this length, keeping the aspect ratio.
	// Zero disables aspect-preserving resize.
	ShortestEdge int

	// Resize forces an exact output size when non-zero and ShortestEdge is zero.
	Resize image.Point

	// Crop center-crops to this size when non-zero.
	Crop image.Point

	// Scale multiplies raw 0-255 values before normalization.
	Scale float64

	Normalize bool
	Mean      [3]float64
	Std       [3]float64

	Interpolation draw.Interpolator
	DataFormat    preprocess.DataFormat
}

// Interpolator maps timm/PIL interpolation names to x/image interpolators.
func Interpolator(name string) draw.Interpolator {
	switch name {
	case "nearest":
		return draw.NearestNeighbor
	case "bicubic", "lanczos":
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// TimmTransform builds the eval transform of a timm pretrained config: resize the shorter
// side to floor(size / crop_pct), center crop to size, scale to [0, 1] and normalize.
func TimmTransform(cfg *models.TransformConfig) Transform {
	c := models.TransformConfig{
		InputSize: [3]int{3, 224, 224},
		Mean:      ImageNetMean,
		Std:       ImageNetStd,
		CropPct:   DefaultCropPct,
	}
	if cfg != nil {
		if cfg.InputSize[1] > 0 && cfg.InputSize[2] > 0 {
			c.InputSize = cfg.InputSize
		}
		if cfg.Std != ([3]float64{}) {
			c.Mean, c.Std = cfg.Mean, cfg.Std
		}
		if cfg.CropPct > 0 {
			c.CropPct = cfg.CropPct
		}
		c.Interpolation = cfg.Interpolation
	}

	h, w := c.InputSize[1], c.InputSize[2]
	t := Transform{
		Crop:          image.Pt(w, h),
		Scale:         1.0 / 255,
		Normalize:     true,
		Mean:          c.Mean,
		Std:           c.Std,
		Interpolation: Interpolator(c.Interpolation),
		DataFormat:    preprocess.ChannelsFirst,
	}
	if w == h {
		t.ShortestEdge = int(math.Floor(float64(h) / c.CropPct))
	} else {
		t.Resize = image.Pt(int(math.Floor(float64(w)/c.CropPct)), int(math.Floor(float64(h)/c.CropPct)))
	}
	return t
}

// OutputSize returns the (width, height) Apply produces for an input of size src.
func (t Transform) OutputSize(src image.Point) image.Point {
	size := t.resized(src)
	if t.Crop.X > 0 && t.Crop.Y > 0 {
		size = t.Crop
	}
	return size
}

func (t Transform) resized(src image.Point) image.Point {
	switch {
	case t.ShortestEdge > 0:
		if src.X <= src.Y {
			return image.Pt(t.ShortestEdge, int(float64(src.Y)*float64(t.ShortestEdge)/float64(src.X)))
		}
		return image.Pt(int(float64(src.X)*float64(t.ShortestEdge)/float64(src.Y)), t.ShortestEdge)
	case t.Resize.X > 0 && t.Resize.Y > 0:
		return t.Resize
	default:
		return src
	}
}

// Apply runs the transform and appends the pixels of img to dst in the configured layout.
func (t Transform) Apply(dst []float32, img image.Image) []float32 {
	src := img.Bounds()
	size := t.resized(src.Size())

	interp := t.Interpolation
	if interp == nil {
		interp = draw.BiLinear
	}
	resized := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	interp.Scale(resized, resized.Bounds(), img, src, draw.Src, nil)

	out := t.OutputSize(src.Size())
	// Offsets of the centered crop; negative when the crop is larger than the image.
	left := (size.X - out.X) / 2
	top := (size.Y - out.Y) / 2

	scale := t.Scale
	if scale == 0 {
		scale = 1
	}

	plane := out.X * out.Y
	base := len(dst)
	dst = append(dst, make([]float32, 3*plane)...)
	parallel.Rows(out.Y, parallel.DefaultConfig(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < out.X; x++ {
				var rgb [3]float64
				sx, sy := x+left, y+top
				if sx >= 0 && sy >= 0 && sx < size.X && sy < size.Y {
					px := resized.RGBAAt(sx, sy)
					rgb = [3]float64{float64(px.R), float64(px.G), float64(px.B)}
				}
				for c, v := range rgb {
					v *= scale
					if t.Normalize && t.Std[c] != 0 {
						v = (v - t.Mean[c]) / t.Std[c]
					}
					if t.DataFormat == preprocess.ChannelsLast {
						dst[base+(y*out.X+x)*3+c] = float32(v)
					} else {
						dst[base+c*plane+y*out.X+x] = float32(v)
					}
				}
			}
		}
	})
	return dst
}
