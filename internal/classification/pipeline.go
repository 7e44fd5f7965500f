// Package classification implements the image-classification pipeline for models that
// carry their own pretrained transform, such as timm exports.
package classification

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/born-ml/taskpipe/internal/imageio"
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/pipeline"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/born-ml/taskpipe/internal/tensor"
	"github.com/born-ml/taskpipe/internal/vision"
	"github.com/go-playground/validator/v10"
)

// DefaultTopK is the number of predictions returned when top_k is not set.
const DefaultTopK = 5

// Keyword parameters understood by the pipeline.
const (
	ParamTimeout         = "timeout"
	ParamTopK            = "top_k"
	ParamFunctionToApply = "function_to_apply"
)

// Score activations.
const (
	Softmax = "softmax"
	Sigmoid = "sigmoid"
	None    = "none"
)

// InputName is the model input the pixel tensor is fed to.
const InputName = "pixel_values"

// Prediction is one ranked class.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ImageLoader resolves caller input into a decoded image within timeout.
type ImageLoader interface {
	Load(ctx context.Context, src any, timeout time.Duration) (image.Image, error)
}

type postprocessParams struct {
	TopK     int    `validate:"gte=1"`
	Function string `validate:"oneof=softmax sigmoid none"`
}

// Pipeline classifies one image with the model's own transform.
type Pipeline struct {
	model     models.Model
	transform vision.Transform
	images    ImageLoader
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

// New returns the classification body for model.
func New(model models.Model, opts ...Option) *Pipeline {
	p := &Pipeline{
		model:     model,
		transform: vision.TimmTransform(model.Config().Pretrained),
		images:    imageio.NewLoader(nil),
		validate:  validator.New(),
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewRunner wraps a classification body in a runnable pipeline.
func NewRunner(model models.Model, kwargs pipeline.Params, opts ...Option) *pipeline.Runner[any, tensor.Map, tensor.Map, []Prediction] {
	p := New(model, opts...)
	return pipeline.NewRunner[any, tensor.Map, tensor.Map, []Prediction](tasks.ImageClassification, p, kwargs, p.log)
}

// SanitizeParameters implements pipeline.Body.
func (p *Pipeline) SanitizeParameters(kwargs pipeline.Params) (pre, fwd, post pipeline.Params) {
	pre, fwd, post = pipeline.Params{}, pipeline.Params{}, pipeline.Params{}
	kwargs.Pick(pre, ParamTimeout)
	kwargs.Pick(post, ParamTopK, ParamFunctionToApply)
	return pre, fwd, post
}

// Preprocess implements pipeline.Body.
func (p *Pipeline) Preprocess(ctx context.Context, input any, params pipeline.Params) (tensor.Map, error) {
	timeout, err := params.Duration(ParamTimeout, 0)
	if err != nil {
		return nil, err
	}
	img, err := p.images.Load(ctx, input, timeout)
	if err != nil {
		if errors.Is(err, imageio.ErrImageLoad) {
			return nil, err
		}
		return nil, &imageio.ImageLoadError{Source: fmt.Sprintf("%T", input), Err: err}
	}

	size := p.transform.OutputSize(img.Bounds().Size())
	pixels, err := tensor.FromFloat32(p.transform.Apply(nil, img), tensor.Shape{1, 3, size.Y, size.X})
	if err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}
	return tensor.Map{InputName: pixels}, nil
}

// Forward implements pipeline.Body.
func (p *Pipeline) Forward(ctx context.Context, inputs tensor.Map, _ pipeline.Params) (tensor.Map, error) {
	return p.model.Forward(ctx, inputs)
}

// Postprocess implements pipeline.Body. It scores the first row of the logits and returns
// the top_k classes by descending score.
func (p *Pipeline) Postprocess(_ context.Context, outputs tensor.Map, params pipeline.Params) ([]Prediction, error) {
	var (
		pp  postprocessParams
		err error
	)
	if pp.TopK, err = params.Int(ParamTopK, DefaultTopK); err != nil {
		return nil, err
	}
	if pp.Function, err = params.String(ParamFunctionToApply, Softmax); err != nil {
		return nil, err
	}
	if err := p.validate.Struct(pp); err != nil {
		return nil, fmt.Errorf("invalid classification parameters: %w", err)
	}

	logits, err := logitsOf(outputs)
	if err != nil {
		return nil, err
	}
	scores := activate(logits, pp.Function)

	labels := p.model.Config().ID2Label
	preds := make([]Prediction, len(scores))
	for i, s := range scores {
		l, ok := labels[strconv.Itoa(i)]
		if !ok {
			l = "LABEL_" + strconv.Itoa(i)
		}
		preds[i] = Prediction{Label: l, Score: s}
	}
	slices.SortStableFunc(preds, func(a, b Prediction) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return preds[:min(pp.TopK, len(preds))], nil
}

// logitsOf returns the first row of the "logits" output, or of the only output.
func logitsOf(outputs tensor.Map) ([]float32, error) {
	t, ok := outputs["logits"]
	if !ok {
		if len(outputs) != 1 {
			return nil, fmt.Errorf("classification: expected a logits output, got %v", outputs.Names())
		}
		for _, only := range outputs {
			t = only
		}
	}
	shape := t.Shape()
	data := t.Float32()
	if data == nil || len(shape) == 0 || len(shape) > 2 {
		return nil, fmt.Errorf("classification: unexpected logits %s", t)
	}
	return data[:shape[len(shape)-1]], nil
}

func activate(logits []float32, fn string) []float64 {
	out := make([]float64, len(logits))
	switch fn {
	case Sigmoid:
		for i, v := range logits {
			out[i] = 1 / (1 + math.Exp(-float64(v)))
		}
	case Softmax:
		peak := math.Inf(-1)
		for _, v := range logits {
			peak = max(peak, float64(v))
		}
		var sum float64
		for i, v := range logits {
			out[i] = math.Exp(float64(v) - peak)
			sum += out[i]
		}
		for i := range out {
			out[i] /= sum
		}
	default:
		for i, v := range logits {
			out[i] = float64(v)
		}
	}
	return out
}
