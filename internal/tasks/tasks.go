package tasks

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ID identifies an inference task, e.g. "image-classification".
type ID string

// Registered task identifiers.
const (
	ImageClassification ID = "image-classification"
	ObjectDetection     ID = "object-detection"
	TextClassification  ID = "text-classification"
)

// Modality is the kind of raw input a task consumes.
type Modality int

// Supported modalities.
const (
	Image Modality = iota
	Text
)

// String returns a human-readable modality name.
func (m Modality) String() string {
	switch m {
	case Image:
		return "image"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// ModelClass names a model class a task accepts. Models report their class, and
// loaders construct instances of a class from an identifier.
type ModelClass struct {
	Name string
}

// Accepted model classes.
var (
	ModelForImageClassification    = ModelClass{Name: "ModelForImageClassification"}
	ModelForObjectDetection        = ModelClass{Name: "ModelForObjectDetection"}
	ModelForSequenceClassification = ModelClass{Name: "ModelForSequenceClassification"}
)

// Descriptor is the resolution metadata of a task.
type Descriptor struct {
	// ID is the task identifier.
	ID ID

	// Implementation names the generic pipeline implementation serving the task.
	Implementation string

	// Classes lists accepted model classes; the first one is used for construction.
	Classes []ModelClass

	// DefaultModel is the identifier used when the caller supplies no model.
	// Empty when the task has no default.
	DefaultModel string

	// Modality is the raw input kind, which decides the preprocessor capability.
	Modality Modality
}

// Accepts reports whether class is one of the descriptor's accepted classes.
func (d Descriptor) Accepts(class ModelClass) bool {
	for _, c := range d.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// PrimaryClass returns the class used to construct models for the task.
func (d Descriptor) PrimaryClass() ModelClass {
	return d.Classes[0]
}

// ErrUnknownTask is matched by UnknownTaskError through errors.Is.
var ErrUnknownTask = errors.New("unknown task")

// UnknownTaskError reports a task identifier that is not registered.
type UnknownTaskError struct {
	Task ID
}

// Error implements the error interface.
func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task %q, available tasks are: %s", e.Task, strings.Join(Names(), ", "))
}

// Is makes errors.Is(err, ErrUnknownTask) true.
func (e *UnknownTaskError) Is(target error) bool {
	return target == ErrUnknownTask
}

var registry = map[ID]Descriptor{
	ImageClassification: {
		ID:             ImageClassification,
		Implementation: "ImageClassificationPipeline",
		Classes:        []ModelClass{ModelForImageClassification},
		DefaultModel:   "amd/resnet50",
		Modality:       Image,
	},
	ObjectDetection: {
		ID:             ObjectDetection,
		Implementation: "ObjectDetectionPipeline",
		Classes:        []ModelClass{ModelForObjectDetection},
		DefaultModel:   "amd/yolox-s",
		Modality:       Image,
	},
	TextClassification: {
		ID:             TextClassification,
		Implementation: "TextClassificationPipeline",
		Classes:        []ModelClass{ModelForSequenceClassification},
		Modality:       Text,
	},
}

// Lookup returns the descriptor of a registered task.
func Lookup(id ID) (Descriptor, error) {
	d, ok := registry[id]
	if !ok {
		return Descriptor{}, &UnknownTaskError{Task: id}
	}
	return d, nil
}

// Names returns the registered task identifiers in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for id := range registry {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return names
}

// All returns every registered descriptor ordered by task identifier.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(registry))
	for _, name := range Names() {
		out = append(out, registry[ID(name)])
	}
	return out
}
