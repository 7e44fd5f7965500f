package pipeline

import (
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/tasks"
)

// Kind is the pipeline implementation chosen for an invocation.
type Kind int

// Pipeline kinds.
const (
	KindGeneric Kind = iota
	KindSpecialized
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindSpecialized:
		return "specialized"
	default:
		return "unknown"
	}
}

// Specialization pairs a task with the library family its specialized pipeline targets.
type Specialization struct {
	Task   tasks.ID
	Family models.Family

	// SelfPreprocessing is set when models of the family preprocess their own input,
	// so no preprocessor is resolved for them.
	SelfPreprocessing bool
}

var specializations = []Specialization{
	{Task: tasks.ImageClassification, Family: models.FamilyTimm, SelfPreprocessing: true},
	{Task: tasks.ObjectDetection, Family: models.FamilyYOLOX},
}

// Specializations returns the registered (task, family) specializations.
func Specializations() []Specialization {
	return append([]Specialization(nil), specializations...)
}

// Lookup returns the specialization registered for the exact (task, family) pair.
func Lookup(task tasks.ID, family models.Family) (Specialization, bool) {
	for _, s := range specializations {
		if s.Task == task && s.Family == family {
			return s, true
		}
	}
	return Specialization{}, false
}

// Select returns KindSpecialized only for a registered (task, family) pair.
func Select(task tasks.ID, family models.Family) Kind {
	if _, ok := Lookup(task, family); ok {
		return KindSpecialized
	}
	return KindGeneric
}

// SelfPreprocessing reports whether models of family preprocess internally.
// It holds for the family regardless of the task being built.
func SelfPreprocessing(family models.Family) bool {
	for _, s := range specializations {
		if s.Family == family && s.SelfPreprocessing {
			return true
		}
	}
	return false
}
