package yolox

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newProcessor(t *testing.T, cfg Config) *Processor {
	t.Helper()
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func TestProcessImages_LetterboxChannelsFirst(t *testing.T) {
	p := newProcessor(t, Config{Size: Size{Height: 64, Width: 64}})
	red := color.RGBA{R: 255, A: 255}

	feats, err := p.ProcessImages(context.Background(), []image.Image{solid(320, 160, red)}, preprocess.ImageOptions{})
	require.NoError(t, err)

	pixels := feats.Tensors["images"]
	require.NotNil(t, pixels)
	assert.Equal(t, tensor.Shape{1, 3, 64, 64}, pixels.Shape())
	assert.Equal(t, []preprocess.Ratio{preprocess.UniformRatio(0.2)}, feats.Ratios)
	assert.Equal(t, []image.Point{{X: 320, Y: 160}}, feats.Sizes)

	// Resized content occupies the top 64x32 band.
	r, err := pixels.At(0, 0, 16, 32)
	require.NoError(t, err)
	assert.InDelta(t, 255, r, 1)
	g, err := pixels.At(0, 1, 16, 32)
	require.NoError(t, err)
	assert.InDelta(t, 0, g, 1)

	// Below it is padding.
	for c := 0; c < 3; c++ {
		v, err := pixels.At(0, c, 50, 10)
		require.NoError(t, err)
		assert.InDelta(t, 114, v, 1e-6)
	}
}

func TestProcessImages_ChannelsLastOverride(t *testing.T) {
	p := newProcessor(t, Config{Size: Size{Height: 32, Width: 48}})
	blue := color.RGBA{B: 200, A: 255}

	feats, err := p.ProcessImages(context.Background(), []image.Image{solid(16, 16, blue), solid(96, 32, blue)},
		preprocess.ImageOptions{DataFormat: preprocess.ChannelsLast})
	require.NoError(t, err)

	pixels := feats.Tensors["images"]
	assert.Equal(t, tensor.Shape{2, 32, 48, 3}, pixels.Shape())
	assert.Equal(t, []preprocess.Ratio{preprocess.UniformRatio(2), preprocess.UniformRatio(0.5)}, feats.Ratios)

	b, err := pixels.At(0, 10, 10, 2)
	require.NoError(t, err)
	assert.InDelta(t, 200, b, 1)

	// Right of the first image's 32x32 resize is padding.
	pad, err := pixels.At(0, 10, 40, 0)
	require.NoError(t, err)
	assert.InDelta(t, 114, pad, 1e-6)
}

func TestProcessImages_Errors(t *testing.T) {
	p := newProcessor(t, DefaultConfig())

	_, err := p.ProcessImages(context.Background(), nil, preprocess.ImageOptions{})
	assert.Error(t, err)

	_, err = p.ProcessImages(context.Background(), []image.Image{solid(2, 2, color.RGBA{})},
		preprocess.ImageOptions{DataFormat: "planar"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ProcessImages(ctx, []image.Image{solid(2, 2, color.RGBA{})}, preprocess.ImageOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	p := newProcessor(t, Config{})
	assert.Equal(t, DefaultConfig(), p.Config())
	assert.Equal(t, ProcessorType, p.Name())

	_, err := New(Config{Size: Size{Height: -1, Width: 10}})
	assert.Error(t, err)

	_, err = New(Config{DataFormat: "nhwc"})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preprocessor_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"image_processor_type": "YoloXImageProcessor",
		"size": {"height": 320, "width": 416},
		"pad_value": 0,
		"data_format": "channels_last"
	}`), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Size{Height: 320, Width: 416}, p.Config().Size)
	assert.Equal(t, preprocess.ChannelsLast, p.Config().DataFormat)
	assert.InDelta(t, 0, p.pad, 1e-9)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
