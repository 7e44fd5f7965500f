package yolox

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/born-ml/taskpipe/internal/detection"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tensor"
)

// Head strides of the standard and P6 YOLOX variants.
var (
	strides   = []int{8, 16, 32}
	stridesP6 = []int{8, 16, 32, 64}
)

// candidate is a decoded box in network-input coordinates.
type candidate struct {
	box   detection.Box
	score float64
	class int
}

// PostProcessObjectDetection implements detection.PostProcessor.
//
// outputs either holds one already-decoded [B, N, 5+C] tensor, or one raw head map per
// stride laid out as [B, 5+C, h, w] (channels_first) or [B, h, w, 5+C] (channels_last).
// Raw head objectness and class logits go through a sigmoid; decoded tensors are taken as is.
func (p *Processor) PostProcessObjectDetection(outputs tensor.Map, opts detection.Options) ([][]detection.Detection, error) {
	format := p.cfg.DataFormat
	if opts.DataFormat != "" {
		format = opts.DataFormat
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	var (
		perImage [][]candidate
		err      error
	)
	if decoded, ok := singleRank3(outputs); ok {
		perImage, err = fromDecoded(decoded, opts.ScoreThreshold)
	} else {
		perImage, err = p.fromHeads(outputs, format, opts.P6, opts.ScoreThreshold)
	}
	if err != nil {
		return nil, err
	}

	results := make([][]detection.Detection, len(perImage))
	for i, cands := range perImage {
		kept := nms(cands, opts.NMSThreshold)

		ratio := preprocess.UniformRatio(1)
		if i < len(opts.Ratios) {
			ratio = opts.Ratios[i]
		}
		dets := make([]detection.Detection, 0, len(kept))
		for _, c := range kept {
			box := rescale(c.box, ratio)
			if i < len(opts.Sizes) {
				box = clip(box, float64(opts.Sizes[i].X), float64(opts.Sizes[i].Y))
			}
			dets = append(dets, detection.Detection{
				Label:   label(opts.Labels, c.class),
				ClassID: c.class,
				Score:   c.score,
				Box:     box,
			})
		}
		results[i] = dets
	}
	return results, nil
}

func singleRank3(outputs tensor.Map) (*tensor.Tensor, bool) {
	if len(outputs) != 1 {
		return nil, false
	}
	for _, t := range outputs {
		if len(t.Shape()) == 3 {
			return t, true
		}
	}
	return nil, false
}

func fromDecoded(t *tensor.Tensor, threshold float64) ([][]candidate, error) {
	shape := t.Shape()
	data := t.Float32()
	if data == nil {
		return nil, fmt.Errorf("yolox: expected float32 outputs, got %s", t.DType())
	}
	batch, n, width := shape[0], shape[1], shape[2]
	if width < 6 {
		return nil, fmt.Errorf("yolox: decoded output %v has no class scores", shape)
	}

	out := make([][]candidate, batch)
	for b := 0; b < batch; b++ {
		for i := 0; i < n; i++ {
			row := data[(b*n+i)*width : (b*n+i+1)*width]
			if c, ok := score(row, threshold, float64(row[0]), float64(row[1]), float64(row[2]), float64(row[3]), false); ok {
				out[b] = append(out[b], c)
			}
		}
	}
	return out, nil
}

func (p *Processor) fromHeads(outputs tensor.Map, format preprocess.DataFormat, p6 bool, threshold float64) ([][]candidate, error) {
	want := strides
	if p6 {
		want = stridesP6
	}

	heads := make([]*tensor.Tensor, 0, len(outputs))
	for _, name := range outputs.Names() {
		t := outputs[name]
		if len(t.Shape()) != 4 {
			return nil, fmt.Errorf("yolox: output %q has shape %v, expected one rank-4 map per stride", name, t.Shape())
		}
		heads = append(heads, t)
	}
	if len(heads) != len(want) {
		return nil, fmt.Errorf("yolox: got %d head outputs, expected %d (p6=%t)", len(heads), len(want), p6)
	}

	// Finer strides have more cells.
	slices.SortStableFunc(heads, func(a, b *tensor.Tensor) int {
		ah, aw := spatial(a.Shape(), format)
		bh, bw := spatial(b.Shape(), format)
		return cmp.Compare(bh*bw, ah*aw)
	})

	batch := heads[0].Shape()[0]
	out := make([][]candidate, batch)
	row := []float32{}
	for level, head := range heads {
		stride := float64(want[level])
		shape := head.Shape()
		data := head.Float32()
		if data == nil {
			return nil, fmt.Errorf("yolox: expected float32 outputs, got %s", head.DType())
		}
		if shape[0] != batch {
			return nil, fmt.Errorf("yolox: head batch sizes differ: %d and %d", shape[0], batch)
		}
		gh, gw := spatial(shape, format)
		ch := shape[1]
		if format == preprocess.ChannelsLast {
			ch = shape[3]
		}
		if ch < 6 {
			return nil, fmt.Errorf("yolox: head %v has no class channels", shape)
		}
		if cap(row) < ch {
			row = make([]float32, ch)
		}
		row = row[:ch]

		for b := 0; b < batch; b++ {
			for gy := 0; gy < gh; gy++ {
				for gx := 0; gx < gw; gx++ {
					for c := 0; c < ch; c++ {
						if format == preprocess.ChannelsFirst {
							row[c] = data[((b*ch+c)*gh+gy)*gw+gx]
						} else {
							row[c] = data[((b*gh+gy)*gw+gx)*ch+c]
						}
					}
					cx := (float64(row[0]) + float64(gx)) * stride
					cy := (float64(row[1]) + float64(gy)) * stride
					w := math.Exp(float64(row[2])) * stride
					h := math.Exp(float64(row[3])) * stride
					if c, ok := score(row, threshold, cx, cy, w, h, true); ok {
						out[b] = append(out[b], c)
					}
				}
			}
		}
	}
	return out, nil
}

func spatial(shape tensor.Shape, format preprocess.DataFormat) (h, w int) {
	if format == preprocess.ChannelsLast {
		return shape[1], shape[2]
	}
	return shape[2], shape[3]
}

// score picks the best class of one prediction row; ok is false below threshold.
func score(row []float32, threshold, cx, cy, w, h float64, activate bool) (candidate, bool) {
	act := func(v float32) float64 {
		if activate {
			return sigmoid(float64(v))
		}
		return float64(v)
	}

	obj := act(row[4])
	best, bestScore := 0, -1.0
	for c := 5; c < len(row); c++ {
		if s := act(row[c]); s > bestScore {
			best, bestScore = c-5, s
		}
	}
	s := obj * bestScore
	if s < threshold {
		return candidate{}, false
	}
	return candidate{
		box:   detection.Box{XMin: cx - w/2, YMin: cy - h/2, XMax: cx + w/2, YMax: cy + h/2},
		score: s,
		class: best,
	}, true
}

// nms greedily keeps the highest-scoring boxes, suppressing same-class boxes whose
// IoU with a kept box exceeds threshold.
func nms(cands []candidate, threshold float64) []candidate {
	sorted := slices.Clone(cands)
	slices.SortStableFunc(sorted, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	kept := make([]candidate, 0, len(sorted))
	for _, c := range sorted {
		suppressed := false
		for _, k := range kept {
			if k.class == c.class && k.box.IoU(c.box) > threshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}
	return kept
}

func rescale(b detection.Box, r preprocess.Ratio) detection.Box {
	if r.Width <= 0 || r.Height <= 0 {
		return b
	}
	return detection.Box{
		XMin: b.XMin / r.Width,
		YMin: b.YMin / r.Height,
		XMax: b.XMax / r.Width,
		YMax: b.YMax / r.Height,
	}
}

func clip(b detection.Box, w, h float64) detection.Box {
	return detection.Box{
		XMin: min(max(b.XMin, 0), w),
		YMin: min(max(b.YMin, 0), h),
		XMax: min(max(b.XMax, 0), w),
		YMax: min(max(b.YMax, 0), h),
	}
}

func label(labels map[int]string, class int) string {
	if l, ok := labels[class]; ok {
		return l
	}
	return strconv.Itoa(class)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
