package yolox

import (
	"image"
	"testing"

	"github.com/born-ml/taskpipe/internal/detection"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodedOutputs(t *testing.T, rows ...[]float32) tensor.Map {
	t.Helper()
	width := len(rows[0])
	data := make([]float32, 0, len(rows)*width)
	for _, r := range rows {
		data = append(data, r...)
	}
	out, err := tensor.FromFloat32(data, tensor.Shape{1, len(rows), width})
	require.NoError(t, err)
	return tensor.Map{"output": out}
}

func TestPostProcess_Decoded(t *testing.T) {
	p := newProcessor(t, DefaultConfig())
	outputs := decodedOutputs(t,
		[]float32{100, 100, 40, 40, 0.9, 0.9, 0.1},
		[]float32{102, 101, 40, 40, 0.8, 0.9, 0.1},
		[]float32{102, 101, 40, 40, 0.8, 0.1, 0.9},
		[]float32{300, 300, 20, 20, 0.2, 0.5, 0.1},
	)

	res, err := p.PostProcessObjectDetection(outputs, detection.Options{
		NMSThreshold:   0.45,
		ScoreThreshold: 0.3,
		Ratios:         []preprocess.Ratio{preprocess.UniformRatio(0.5)},
		Sizes:          []image.Point{{X: 1000, Y: 220}},
		Labels:         map[int]string{0: "person"},
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Len(t, res[0], 2)

	first := res[0][0]
	assert.Equal(t, "person", first.Label)
	assert.InDelta(t, 0.81, first.Score, 1e-6)
	assert.InDelta(t, 160, first.Box.XMin, 1e-4)
	assert.InDelta(t, 160, first.Box.YMin, 1e-4)
	assert.InDelta(t, 240, first.Box.XMax, 1e-4)
	assert.InDelta(t, 220, first.Box.YMax, 1e-4)

	second := res[0][1]
	assert.Equal(t, "1", second.Label)
	assert.Equal(t, 1, second.ClassID)
	assert.InDelta(t, 0.72, second.Score, 1e-6)
}

func TestPostProcess_DecodedRejectsIntegers(t *testing.T) {
	p := newProcessor(t, DefaultConfig())
	ints, err := tensor.FromInt64(make([]int64, 7), tensor.Shape{1, 1, 7})
	require.NoError(t, err)

	_, err = p.PostProcessObjectDetection(tensor.Map{"output": ints}, detection.Options{})
	assert.Error(t, err)
}

// headMaps builds stride-8/16/32 maps for a 64x64 input filled with low logits.
func headMaps(t *testing.T, format preprocess.DataFormat) (tensor.Map, func(name string, gy, gx int, row []float32)) {
	t.Helper()
	const ch = 7
	grids := map[string]int{"b": 8, "c": 4, "a": 2}
	out := tensor.Map{}
	for name, g := range grids {
		data := make([]float32, ch*g*g)
		for i := range data {
			data[i] = -10
		}
		shape := tensor.Shape{1, ch, g, g}
		if format == preprocess.ChannelsLast {
			shape = tensor.Shape{1, g, g, ch}
		}
		m, err := tensor.FromFloat32(data, shape)
		require.NoError(t, err)
		out[name] = m
	}

	set := func(name string, gy, gx int, row []float32) {
		m := out[name]
		g := grids[name]
		for c, v := range row {
			if format == preprocess.ChannelsFirst {
				m.Float32()[(c*g+gy)*g+gx] = v
			} else {
				m.Float32()[(gy*g+gx)*ch+c] = v
			}
		}
	}
	return out, set
}

func TestPostProcess_Heads(t *testing.T) {
	for _, format := range []preprocess.DataFormat{preprocess.ChannelsFirst, preprocess.ChannelsLast} {
		t.Run(string(format), func(t *testing.T) {
			p := newProcessor(t, Config{Size: Size{Height: 64, Width: 64}})
			outputs, set := headMaps(t, format)

			// Stride-16 cell (gx=1, gy=2), centered, 16x16 box.
			set("c", 2, 1, []float32{0.5, 0.5, 0, 0, 10, 10, -10})

			res, err := p.PostProcessObjectDetection(outputs, detection.Options{
				NMSThreshold:   0.45,
				ScoreThreshold: 0.1,
				DataFormat:     format,
			})
			require.NoError(t, err)
			require.Len(t, res, 1)
			require.Len(t, res[0], 1)

			d := res[0][0]
			assert.Equal(t, 0, d.ClassID)
			assert.Greater(t, d.Score, 0.99)
			assert.InDelta(t, 16, d.Box.XMin, 1e-4)
			assert.InDelta(t, 32, d.Box.YMin, 1e-4)
			assert.InDelta(t, 32, d.Box.XMax, 1e-4)
			assert.InDelta(t, 48, d.Box.YMax, 1e-4)
		})
	}
}

func TestPostProcess_HeadCountMismatch(t *testing.T) {
	p := newProcessor(t, Config{Size: Size{Height: 64, Width: 64}})
	outputs, _ := headMaps(t, preprocess.ChannelsFirst)

	_, err := p.PostProcessObjectDetection(outputs, detection.Options{P6: true})
	assert.Error(t, err)

	_, err = p.PostProcessObjectDetection(outputs, detection.Options{DataFormat: "planar"})
	assert.Error(t, err)
}

func TestNMS(t *testing.T) {
	box := func(x float64) detection.Box {
		return detection.Box{XMin: x, YMin: 0, XMax: x + 10, YMax: 10}
	}
	cands := []candidate{
		{box: box(1), score: 0.6, class: 0},
		{box: box(0), score: 0.9, class: 0},
		{box: box(0), score: 0.8, class: 1},
		{box: box(50), score: 0.3, class: 0},
	}

	kept := nms(cands, 0.5)
	require.Len(t, kept, 3)
	assert.InDelta(t, 0.9, kept[0].score, 1e-9)
	assert.InDelta(t, 0.8, kept[1].score, 1e-9)
	assert.InDelta(t, 0.3, kept[2].score, 1e-9)

	// A threshold of one never suppresses.
	assert.Len(t, nms(cands, 1), 4)
}
