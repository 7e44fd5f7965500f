//go:generate go run go.uber.org/mock/mockgen -source=pipeline.go -destination=../mocks/mock_pipeline.go -package=mocks

// Package pipeline defines the runnable pipeline contract, the generic-versus-specialized
// selection rule and the staged runner used by specialized pipelines.
//
// A specialized pipeline implements Body: sanitize parameters, preprocess, forward,
// postprocess. Runner drives those stages strictly in order for every call; a failing
// stage aborts the call with the stage's error and no partial result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/google/uuid"
)

// Pipeline is a runnable inference pipeline.
type Pipeline interface {
	// Task is the task the pipeline serves.
	Task() tasks.ID

	// Kind reports whether the pipeline is generic or specialized.
	Kind() Kind

	// Run executes one invocation. kwargs override the construction-time parameters.
	Run(ctx context.Context, input any, kwargs Params) (any, error)
}

// GenericRequest is everything the generic engine receives to build a pipeline.
type GenericRequest struct {
	Task           tasks.ID
	Implementation string
	Model          models.Model

	// FeatureExtractor is the caller's explicit feature extractor, passed through.
	FeatureExtractor preprocess.Preprocessor

	// Preprocessor is the resolved preprocessor; nil for self-preprocessing families.
	Preprocessor preprocess.Preprocessor

	UseFast bool

	// Extra holds the remaining caller configuration, uninterpreted.
	Extra Params
}

// Engine builds generic single-task pipelines.
type Engine interface {
	New(ctx context.Context, req GenericRequest) (Pipeline, error)
}

// Body is the stage contract of a specialized pipeline.
type Body[In, Features, Raw, Out any] interface {
	// SanitizeParameters partitions kwargs into preprocess, forward and postprocess parameters.
	SanitizeParameters(kwargs Params) (pre, fwd, post Params)

	Preprocess(ctx context.Context, input In, params Params) (Features, error)
	Forward(ctx context.Context, features Features, params Params) (Raw, error)
	Postprocess(ctx context.Context, raw Raw, params Params) (Out, error)
}

// Runner runs a Body as a Pipeline.
type Runner[In, Features, Raw, Out any] struct {
	task     tasks.ID
	body     Body[In, Features, Raw, Out]
	defaults Params
	log      *slog.Logger
}

// NewRunner wraps body. defaults are the construction-time kwargs every call starts from.
func NewRunner[In, Features, Raw, Out any](task tasks.ID, body Body[In, Features, Raw, Out], defaults Params, log *slog.Logger) *Runner[In, Features, Raw, Out] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner[In, Features, Raw, Out]{
		task:     task,
		body:     body,
		defaults: defaults.Merge(nil),
		log:      log,
	}
}

// Task implements Pipeline.
func (r *Runner[In, Features, Raw, Out]) Task() tasks.ID {
	return r.task
}

// Kind implements Pipeline.
func (r *Runner[In, Features, Raw, Out]) Kind() Kind {
	return KindSpecialized
}

// Body returns the wrapped stage implementation.
func (r *Runner[In, Features, Raw, Out]) Body() Body[In, Features, Raw, Out] {
	return r.body
}

// Run implements Pipeline.
func (r *Runner[In, Features, Raw, Out]) Run(ctx context.Context, input any, kwargs Params) (any, error) {
	in, ok := input.(In)
	if !ok {
		var zero In
		return nil, fmt.Errorf("%s pipeline: unsupported input %T, expected %T", r.task, input, zero)
	}
	return r.Call(ctx, in, kwargs)
}

// Call is the typed form of Run.
func (r *Runner[In, Features, Raw, Out]) Call(ctx context.Context, input In, kwargs Params) (Out, error) {
	var zero Out
	log := r.log.With("task", string(r.task), "invocation", uuid.NewString())

	pre, fwd, post := r.body.SanitizeParameters(r.defaults.Merge(kwargs))

	start := time.Now()
	features, err := r.body.Preprocess(ctx, input, pre)
	if err != nil {
		return zero, err
	}
	log.Debug("preprocess done", "elapsed", time.Since(start))

	start = time.Now()
	raw, err := r.body.Forward(ctx, features, fwd)
	if err != nil {
		return zero, err
	}
	log.Debug("forward done", "elapsed", time.Since(start))

	start = time.Now()
	out, err := r.body.Postprocess(ctx, raw, post)
	if err != nil {
		return zero, err
	}
	log.Debug("postprocess done", "elapsed", time.Since(start))

	return out, nil
}
