// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pipelines builds accelerator-backed inference pipelines from a task name.
//
// A pipeline is built from a task, an optional model reference and an accelerator
// configuration. The model is fetched from the hub (or a local directory), its
// preprocessor is resolved, and either a specialized pipeline (YOLOX object detection,
// timm image classification) or a generic one is constructed.
//
// Example usage:
//
//	settings, err := pipelines.LoadSettings(".env")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	env, err := pipelines.Open(settings, runtime, logger, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer env.Close()
//
//	p, err := env.Build(ctx, pipelines.ObjectDetection, pipelines.Options{
//	    Model: pipelines.ByID("amd/yolox-s"),
//	    Extra: pipelines.Params{"score_threshold": 0.3, "top_k": 10},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := p.Run(ctx, "street.jpg", nil)
package pipelines

import (
	"github.com/born-ml/taskpipe/internal/accel"
	"github.com/born-ml/taskpipe/internal/classification"
	"github.com/born-ml/taskpipe/internal/config"
	"github.com/born-ml/taskpipe/internal/detection"
	"github.com/born-ml/taskpipe/internal/dispatch"
	"github.com/born-ml/taskpipe/internal/hub"
	"github.com/born-ml/taskpipe/internal/imageio"
	"github.com/born-ml/taskpipe/internal/modeling"
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/pipeline"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tasks"
)

// Core types.
type (
	// Pipeline is a runnable inference pipeline.
	Pipeline = pipeline.Pipeline

	// Params is a flat keyword configuration mapping.
	Params = pipeline.Params

	// Kind is generic or specialized.
	Kind = pipeline.Kind

	// Options is a pipeline request beyond the task.
	Options = dispatch.Options

	// Plan is a resolved pipeline request.
	Plan = dispatch.Plan

	// Engine builds generic pipelines.
	Engine = pipeline.Engine

	// GenericRequest is what an Engine receives.
	GenericRequest = pipeline.GenericRequest

	// TaskID identifies a task.
	TaskID = tasks.ID

	// Model is a constructed model.
	Model = models.Model

	// ModelHandle is absent, an identifier or a model instance.
	ModelHandle = models.Handle

	// Preprocessor converts raw input into model tensors.
	Preprocessor = preprocess.Preprocessor

	// AcceleratorConfig selects the execution backend.
	AcceleratorConfig = accel.Config

	// Runtime opens inference sessions.
	Runtime = modeling.Runtime

	// Session is an open inference session.
	Session = modeling.Session

	// Description is a model snapshot read without opening a session.
	Description = modeling.Description

	// Snapshot is a model snapshot on local disk.
	Snapshot = hub.Snapshot

	// Settings are the process settings read from the environment.
	Settings = config.Settings

	// Detection is one detected object.
	Detection = detection.Detection

	// Box is a bounding box in original-image pixels.
	Box = detection.Box

	// Prediction is one classification label and score.
	Prediction = classification.Prediction
)

// Registered tasks.
const (
	ImageClassification = tasks.ImageClassification
	ObjectDetection     = tasks.ObjectDetection
	TextClassification  = tasks.TextClassification
)

// Pipeline kinds.
const (
	KindGeneric     = pipeline.KindGeneric
	KindSpecialized = pipeline.KindSpecialized
)

// Error categories, usable with errors.Is.
var (
	ErrUnknownTask           = tasks.ErrUnknownTask
	ErrInvalidModelReference = models.ErrInvalidModelReference
	ErrPreprocessorNotFound  = preprocess.ErrPreprocessorNotFound
	ErrImageLoad             = imageio.ErrImageLoad
	ErrNoEngine              = dispatch.ErrNoEngine
)

// Typed errors, usable with errors.As.
type (
	UnknownTaskError           = tasks.UnknownTaskError
	InvalidModelReferenceError = models.InvalidReferenceError
	PreprocessorNotFoundError  = preprocess.NotFoundError
	ImageLoadError             = imageio.ImageLoadError
)

// Default refers to the task's default model.
func Default() ModelHandle {
	return models.Default()
}

// ByID refers to a model by hub identifier or local directory.
func ByID(id string) ModelHandle {
	return models.ByID(id)
}

// Instance passes a built model through.
func Instance(m Model) ModelHandle {
	return models.Instance(m)
}

// LoadSettings reads settings from the environment after loading the dotenv files.
func LoadSettings(dotenv ...string) (Settings, error) {
	return config.Load(dotenv...)
}

// Select reports the pipeline kind for a task and library family.
func Select(task TaskID, family string) Kind {
	return pipeline.Select(task, models.Family(family))
}
