package detection

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"strconv"

	"github.com/born-ml/taskpipe/internal/imageio"
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/pipeline"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/born-ml/taskpipe/internal/tensor"
	"github.com/go-playground/validator/v10"
)

// Default post-processing thresholds.
const (
	DefaultNMSThreshold   = 0.45
	DefaultScoreThreshold = 0.1
)

// Keyword parameters understood by the pipeline.
const (
	ParamTimeout        = "timeout"
	ParamDataFormat     = "data_format"
	ParamNMSThreshold   = "nms_threshold"
	ParamScoreThreshold = "score_threshold"
	ParamP6             = "p6"
	ParamTopK           = "top_k"
)

var (
	preprocessKeys  = []string{ParamTimeout, ParamDataFormat}
	postprocessKeys = []string{ParamNMSThreshold, ParamScoreThreshold, ParamP6, ParamTopK, ParamDataFormat}
)

// Features are the model inputs produced by Preprocess, with the resize ratios kept aside.
type Features struct {
	Tensors tensor.Map
	Ratios  []preprocess.Ratio
	Sizes   []image.Point
}

// Outputs are the raw model outputs with the ratios reattached.
type Outputs struct {
	Tensors tensor.Map
	Ratios  []preprocess.Ratio
	Sizes   []image.Point
}

type postprocessParams struct {
	NMSThreshold   float64               `validate:"gte=0,lte=1"`
	ScoreThreshold float64               `validate:"gte=0,lte=1"`
	TopK           int                   `validate:"gte=0"`
	DataFormat     preprocess.DataFormat `validate:"omitempty,oneof=channels_first channels_last"`
	P6             bool
}

// Pipeline is the object-detection body driven by pipeline.Runner.
type Pipeline struct {
	model     models.Model
	processor PostProcessor
	images    ImageLoader
	labels    map[int]string
	validate  *validator.Validate
	log       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithImageLoader replaces the default image loader.
func WithImageLoader(l ImageLoader) Option {
	return func(p *Pipeline) {
		p.images = l
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// New returns the detection body for model and processor.
func New(model models.Model, processor PostProcessor, opts ...Option) *Pipeline {
	p := &Pipeline{
		model:     model,
		processor: processor,
		images:    imageio.NewLoader(nil),
		labels:    labelsOf(model.Config()),
		validate:  validator.New(),
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewRunner wraps a detection body in a runnable pipeline. kwargs are the
// construction-time parameters every call starts from.
func NewRunner(model models.Model, processor PostProcessor, kwargs pipeline.Params, opts ...Option) *pipeline.Runner[any, *Features, *Outputs, []Detection] {
	p := New(model, processor, opts...)
	return pipeline.NewRunner[any, *Features, *Outputs, []Detection](tasks.ObjectDetection, p, kwargs, p.log)
}

// SanitizeParameters implements pipeline.Body. Keys outside the known set are dropped.
func (p *Pipeline) SanitizeParameters(kwargs pipeline.Params) (pre, fwd, post pipeline.Params) {
	pre, fwd, post = pipeline.Params{}, pipeline.Params{}, pipeline.Params{}
	kwargs.Pick(pre, preprocessKeys...)
	kwargs.Pick(post, postprocessKeys...)
	return pre, fwd, post
}

// Preprocess implements pipeline.Body.
func (p *Pipeline) Preprocess(ctx context.Context, input any, params pipeline.Params) (*Features, error) {
	timeout, err := params.Duration(ParamTimeout, 0)
	if err != nil {
		return nil, err
	}
	format, err := params.String(ParamDataFormat, "")
	if err != nil {
		return nil, err
	}

	img, err := p.images.Load(ctx, input, timeout)
	if err != nil {
		var loadErr *imageio.ImageLoadError
		if errors.As(err, &loadErr) {
			return nil, err
		}
		return nil, &imageio.ImageLoadError{Source: fmt.Sprintf("%T", input), Err: err}
	}

	feats, err := p.processor.ProcessImages(ctx, []image.Image{img}, preprocess.ImageOptions{
		DataFormat: preprocess.DataFormat(format),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.processor.Name(), err)
	}
	return &Features{Tensors: feats.Tensors, Ratios: feats.Ratios, Sizes: feats.Sizes}, nil
}

// Forward implements pipeline.Body. Only tensors reach the model.
func (p *Pipeline) Forward(ctx context.Context, features *Features, _ pipeline.Params) (*Outputs, error) {
	out, err := p.model.Forward(ctx, features.Tensors)
	if err != nil {
		return nil, err
	}
	return &Outputs{Tensors: out, Ratios: features.Ratios, Sizes: features.Sizes}, nil
}

// Postprocess implements pipeline.Body. It returns the first image's detections sorted
// by descending score, truncated to top_k when top_k is non-zero.
func (p *Pipeline) Postprocess(_ context.Context, raw *Outputs, params pipeline.Params) ([]Detection, error) {
	pp, err := p.postprocessParams(params)
	if err != nil {
		return nil, err
	}

	perImage, err := p.processor.PostProcessObjectDetection(raw.Tensors, Options{
		NMSThreshold:   pp.NMSThreshold,
		ScoreThreshold: pp.ScoreThreshold,
		Ratios:         raw.Ratios,
		Sizes:          raw.Sizes,
		P6:             pp.P6,
		DataFormat:     pp.DataFormat,
		Labels:         p.labels,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: post-process: %w", p.processor.Name(), err)
	}
	if len(perImage) == 0 {
		return []Detection{}, nil
	}

	results := slices.Clone(perImage[0])
	slices.SortStableFunc(results, func(a, b Detection) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if pp.TopK > 0 && len(results) > pp.TopK {
		results = results[:pp.TopK]
	}

	p.log.Debug("detections", "count", len(results), "score_threshold", pp.ScoreThreshold)
	return results, nil
}

func (p *Pipeline) postprocessParams(params pipeline.Params) (postprocessParams, error) {
	var (
		pp  postprocessParams
		err error
	)
	if pp.NMSThreshold, err = params.Float(ParamNMSThreshold, DefaultNMSThreshold); err != nil {
		return pp, err
	}
	if pp.ScoreThreshold, err = params.Float(ParamScoreThreshold, DefaultScoreThreshold); err != nil {
		return pp, err
	}
	if pp.TopK, err = params.Int(ParamTopK, 0); err != nil {
		return pp, err
	}
	if pp.P6, err = params.Bool(ParamP6, false); err != nil {
		return pp, err
	}
	format, err := params.String(ParamDataFormat, "")
	if err != nil {
		return pp, err
	}
	pp.DataFormat = preprocess.DataFormat(format)

	if err := p.validate.Struct(pp); err != nil {
		return pp, fmt.Errorf("invalid detection parameters: %w", err)
	}
	return pp, nil
}

func labelsOf(cfg models.Config) map[int]string {
	labels := make(map[int]string, len(cfg.ID2Label))
	for k, v := range cfg.ID2Label {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		labels[id] = v
	}
	return labels
}
