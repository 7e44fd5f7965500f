// Package dispatch turns a task request into a runnable pipeline: it looks the task up,
// resolves the model and its preprocessor, selects the pipeline kind and constructs it.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/taskpipe/internal/accel"
	"github.com/born-ml/taskpipe/internal/classification"
	"github.com/born-ml/taskpipe/internal/detection"
	"github.com/born-ml/taskpipe/internal/imageio"
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/pipeline"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tasks"
)

// ErrNoEngine is returned when a generic pipeline is selected but no engine is configured.
var ErrNoEngine = errors.New("no generic pipeline engine configured")

// Options is the caller's pipeline request beyond the task.
type Options struct {
	// Model is absent (task default), an identifier or a built instance.
	Model models.Handle

	// Accelerator is forwarded to model construction. The zero value means cpu.
	Accelerator accel.Config

	// FeatureExtractor and ImageProcessor override preprocessor resolution.
	// ImageProcessor wins when both are set.
	FeatureExtractor preprocess.Preprocessor
	ImageProcessor   preprocess.Preprocessor

	// UseFast is forwarded to the generic engine; nil means true.
	UseFast *bool

	// Token and Revision are forwarded to the model fetch for identifier handles only.
	Token    string
	Revision string

	// Extra holds pipeline keyword configuration such as detection thresholds.
	Extra pipeline.Params
}

func (o Options) useFast() bool {
	return o.UseFast == nil || *o.UseFast
}

func (o Options) explicit() preprocess.Handle {
	if o.ImageProcessor != nil {
		return preprocess.Explicit(o.ImageProcessor)
	}
	return preprocess.Explicit(o.FeatureExtractor)
}

// Plan is a resolved request, ready for construction.
type Plan struct {
	Task  tasks.Descriptor
	Model models.Model

	// Origin is the identifier the model was built from; empty for a passed instance.
	Origin string

	Family       models.Family
	Preprocessor preprocess.Preprocessor
	Kind         pipeline.Kind
}

// Builder builds pipelines.
type Builder struct {
	resolver *models.Resolver
	lookup   preprocess.Lookup
	engine   pipeline.Engine
	images   detection.ImageLoader
	log      *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLookup sets the default preprocessor lookup by model identifier.
func WithLookup(l preprocess.Lookup) Option {
	return func(b *Builder) {
		b.lookup = l
	}
}

// WithEngine sets the generic pipeline engine.
func WithEngine(e pipeline.Engine) Option {
	return func(b *Builder) {
		b.engine = e
	}
}

// WithImageLoader sets the image loader of specialized pipelines.
func WithImageLoader(l detection.ImageLoader) Option {
	return func(b *Builder) {
		b.images = l
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// NewBuilder returns a builder constructing models through loader.
func NewBuilder(loader models.Loader, opts ...Option) *Builder {
	b := &Builder{
		resolver: models.NewResolver(loader),
		images:   imageio.NewLoader(nil),
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves and constructs the pipeline for task.
func (b *Builder) Build(ctx context.Context, task tasks.ID, opts Options) (pipeline.Pipeline, error) {
	plan, err := b.Resolve(ctx, task, opts)
	if err != nil {
		return nil, err
	}
	return b.Construct(ctx, plan, opts)
}

// Resolve performs every resolution step without constructing the pipeline.
func (b *Builder) Resolve(ctx context.Context, task tasks.ID, opts Options) (*Plan, error) {
	d, err := tasks.Lookup(task)
	if err != nil {
		return nil, err
	}

	acc := opts.Accelerator
	if acc.Provider == "" {
		acc.Provider = accel.CPU
	}

	model, origin, err := b.resolver.Resolve(ctx, opts.Model, d, acc, models.Auth{Token: opts.Token, Revision: opts.Revision})
	if err != nil {
		return nil, err
	}

	family := model.Family()
	b.log.Debug("model resolved", "task", string(task), "model", opts.Model.String(), "origin", origin, "family", family)

	pre, err := preprocess.Resolve(ctx, b.lookup, preprocess.Request{
		Task:              d.ID,
		Modality:          d.Modality,
		Explicit:          opts.explicit(),
		Origin:            origin,
		Attached:          model.Preprocessors(),
		SelfPreprocessing: pipeline.SelfPreprocessing(family),
	})
	if err != nil {
		return nil, err
	}

	kind := pipeline.Select(d.ID, family)
	b.log.Debug("pipeline selected", "task", string(task), "family", family, "kind", kind.String())

	return &Plan{
		Task:         d,
		Model:        model,
		Origin:       origin,
		Family:       family,
		Preprocessor: pre,
		Kind:         kind,
	}, nil
}

// Construct instantiates the pipeline of a resolved plan.
func (b *Builder) Construct(ctx context.Context, plan *Plan, opts Options) (pipeline.Pipeline, error) {
	if plan.Kind == pipeline.KindGeneric {
		if b.engine == nil {
			return nil, fmt.Errorf("%s (%s): %w", plan.Task.ID, plan.Family, ErrNoEngine)
		}
		return b.engine.New(ctx, pipeline.GenericRequest{
			Task:             plan.Task.ID,
			Implementation:   plan.Task.Implementation,
			Model:            plan.Model,
			FeatureExtractor: opts.FeatureExtractor,
			Preprocessor:     plan.Preprocessor,
			UseFast:          opts.useFast(),
			Extra:            opts.Extra.Merge(nil),
		})
	}

	switch plan.Task.ID {
	case tasks.ObjectDetection:
		processor, ok := plan.Preprocessor.(detection.PostProcessor)
		if !ok {
			return nil, fmt.Errorf("object detection needs an image processor with detection post-processing, got %s", describe(plan.Preprocessor))
		}
		return detection.NewRunner(plan.Model, processor, opts.Extra,
			detection.WithImageLoader(b.images),
			detection.WithLogger(b.log)), nil

	case tasks.ImageClassification:
		return classification.NewRunner(plan.Model, opts.Extra,
			classification.WithImageLoader(b.images),
			classification.WithLogger(b.log)), nil

	default:
		return nil, fmt.Errorf("no specialized pipeline for task %q and family %q", plan.Task.ID, plan.Family)
	}
}

func describe(p preprocess.Preprocessor) string {
	if p == nil {
		return "none"
	}
	return p.Name()
}
