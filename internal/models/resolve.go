package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/taskpipe/internal/accel"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/samber/lo"
)

type handleKind int

const (
	kindDefault handleKind = iota
	kindID
	kindInstance
	kindInvalid
)

// Handle is the caller's model reference: absent, an identifier or a built instance.
// The zero value is the absent handle.
type Handle struct {
	kind  handleKind
	id    string
	model Model
	raw   any
}

// Default returns the absent handle; the task's default model is used.
func Default() Handle {
	return Handle{kind: kindDefault}
}

// ByID returns a handle constructing the model from an identifier.
func ByID(id string) Handle {
	if id == "" {
		return Handle{kind: kindInvalid, raw: id}
	}
	return Handle{kind: kindID, id: id}
}

// Instance returns a handle passing a built model through.
func Instance(m Model) Handle {
	if m == nil {
		return Handle{kind: kindDefault}
	}
	return Handle{kind: kindInstance, model: m}
}

// From converts an untyped caller value: nil, a string or a Model.
// Any other value yields a handle that fails resolution.
func From(v any) Handle {
	switch x := v.(type) {
	case nil:
		return Default()
	case Handle:
		return x
	case string:
		return ByID(x)
	case Model:
		return Instance(x)
	default:
		return Handle{kind: kindInvalid, raw: v}
	}
}

// String describes the handle for logs and error messages.
func (h Handle) String() string {
	switch h.kind {
	case kindDefault:
		return "<default>"
	case kindID:
		return h.id
	case kindInstance:
		return fmt.Sprintf("%s instance", h.model.Class().Name)
	default:
		return fmt.Sprintf("%v (%T)", h.raw, h.raw)
	}
}

// ErrInvalidModelReference is matched by InvalidReferenceError through errors.Is.
var ErrInvalidModelReference = errors.New("invalid model reference")

// InvalidReferenceError reports a model argument that is neither absent, an
// identifier nor an instance of an accepted class.
type InvalidReferenceError struct {
	Task   tasks.ID
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidReferenceError) Error() string {
	msg := fmt.Sprintf("model %s is not supported for task %q", e.Value, e.Task)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg + "; pass either a model identifier string or a pre-built model instance"
}

// Is makes errors.Is(err, ErrInvalidModelReference) true.
func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrInvalidModelReference
}

// Auth carries the fetch credentials forwarded only for identifier handles.
type Auth struct {
	Token    string
	Revision string
}

// Resolver turns handles into model instances. It is the only component that
// constructs models.
type Resolver struct {
	Loader Loader
}

// NewResolver creates a resolver backed by loader.
func NewResolver(loader Loader) *Resolver {
	return &Resolver{Loader: loader}
}

// Resolve returns the model and the identifier it was built from. The identifier
// is empty when the caller supplied a ready instance.
func (r *Resolver) Resolve(ctx context.Context, h Handle, task tasks.Descriptor, acc accel.Config, auth Auth) (Model, string, error) {
	switch h.kind {
	case kindDefault:
		if task.DefaultModel == "" {
			return nil, "", &InvalidReferenceError{
				Task:   task.ID,
				Value:  h.String(),
				Reason: "the task has no default model",
			}
		}
		m, err := r.Loader.Load(ctx, task.PrimaryClass(), task.DefaultModel, LoadOptions{Accelerator: acc})
		if err != nil {
			return nil, "", fmt.Errorf("failed to load default model %q: %w", task.DefaultModel, err)
		}
		return m, task.DefaultModel, nil

	case kindID:
		m, err := r.Loader.Load(ctx, task.PrimaryClass(), h.id, LoadOptions{
			Accelerator: acc,
			Token:       auth.Token,
			Revision:    auth.Revision,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to load model %q: %w", h.id, err)
		}
		return m, h.id, nil

	case kindInstance:
		if !task.Accepts(h.model.Class()) {
			return nil, "", &InvalidReferenceError{
				Task:   task.ID,
				Value:  h.String(),
				Reason: "accepted classes are " + classNames(task.Classes),
			}
		}
		return h.model, "", nil

	default:
		return nil, "", &InvalidReferenceError{Task: task.ID, Value: h.String()}
	}
}

func classNames(classes []tasks.ModelClass) string {
	return strings.Join(lo.Map(classes, func(c tasks.ModelClass, _ int) string { return c.Name }), ", ")
}
