//go:generate go run go.uber.org/mock/mockgen -source=resolve.go -destination=../mocks/mock_lookup.go -package=mocks

package preprocess

import (
	"context"
	"errors"
	"fmt"

	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/samber/lo"
)

// Lookup fetches the default preprocessor registered for a model identifier.
type Lookup interface {
	Lookup(ctx context.Context, modelID string, modality tasks.Modality) (Preprocessor, error)
}

// Handle is the caller's preprocessor choice: an explicit override or nothing.
type Handle struct {
	p Preprocessor
}

// None returns an empty handle.
func None() Handle {
	return Handle{}
}

// Explicit returns a handle overriding every other resolution strategy.
// A nil preprocessor yields an empty handle.
func Explicit(p Preprocessor) Handle {
	return Handle{p: p}
}

// Preprocessor returns the override and whether one is set.
func (h Handle) Preprocessor() (Preprocessor, bool) {
	return h.p, h.p != nil
}

// Capability reports whether a preprocessor can serve a modality.
type Capability struct {
	Name  string
	Match func(Preprocessor) bool
}

// CapabilityFor returns the capability required by a modality.
func CapabilityFor(m tasks.Modality) Capability {
	switch m {
	case tasks.Text:
		return Capability{Name: "tokenizer", Match: func(p Preprocessor) bool {
			_, ok := p.(Tokenizer)
			return ok
		}}
	default:
		return Capability{Name: "image processor", Match: func(p Preprocessor) bool {
			_, ok := p.(ImageProcessor)
			return ok
		}}
	}
}

// ErrPreprocessorNotFound is matched by NotFoundError through errors.Is.
var ErrPreprocessorNotFound = errors.New("preprocessor not found")

// NotFoundError reports that no strategy produced a preprocessor.
type NotFoundError struct {
	Task       tasks.ID
	Capability string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not automatically find a %s for the %q model, you must pass one explicitly "+
		"with the ImageProcessor or FeatureExtractor option", e.Capability, e.Task)
}

// Is makes errors.Is(err, ErrPreprocessorNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrPreprocessorNotFound
}

// Request carries everything preprocessor resolution looks at.
type Request struct {
	// Task is the task being built, used in error messages.
	Task tasks.ID

	// Modality selects the required capability.
	Modality tasks.Modality

	// Explicit is the caller's override.
	Explicit Handle

	// Origin is the identifier the model was built from; empty when the caller
	// supplied a ready instance.
	Origin string

	// Attached are the preprocessors owned by the model, in declared order.
	Attached []Preprocessor

	// SelfPreprocessing is set when the model's library family preprocesses
	// internally; resolution is skipped.
	SelfPreprocessing bool
}

// Resolve picks the preprocessor for a pipeline.
//
// Precedence: self-preprocessing family (nil, nil) > explicit override > default
// looked up by origin identifier > first attached preprocessor with the required
// capability. When nothing matches a *NotFoundError is returned.
func Resolve(ctx context.Context, lookup Lookup, req Request) (Preprocessor, error) {
	if req.SelfPreprocessing {
		return nil, nil
	}

	if p, ok := req.Explicit.Preprocessor(); ok {
		return p, nil
	}

	capability := CapabilityFor(req.Modality)

	if req.Origin != "" && lookup != nil {
		p, err := lookup.Lookup(ctx, req.Origin, req.Modality)
		if err != nil {
			return nil, fmt.Errorf("failed to load default preprocessor for %q: %w", req.Origin, err)
		}
		if p == nil {
			return nil, &NotFoundError{Task: req.Task, Capability: capability.Name}
		}
		return p, nil
	}

	if p, ok := lo.Find(req.Attached, capability.Match); ok {
		return p, nil
	}

	return nil, &NotFoundError{Task: req.Task, Capability: capability.Name}
}
