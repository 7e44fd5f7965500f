// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package pipelines

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/born-ml/taskpipe/internal/dispatch"
	"github.com/born-ml/taskpipe/internal/hub"
	"github.com/born-ml/taskpipe/internal/modeling"
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/processors"
)

// Environment wires the hub cache, the model loader and the pipeline builder.
type Environment struct {
	manifest *hub.Manifest
	loader   *modeling.Loader
	builder  *dispatch.Builder
}

// Open opens the snapshot manifest under the settings' cache directory and returns a
// ready environment. engine may be nil when only specialized pipelines are built.
func Open(settings Settings, runtime Runtime, log *slog.Logger, engine Engine) (*Environment, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	manifest, err := hub.OpenManifest(settings.ManifestDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot manifest: %w", err)
	}

	opts := settings.HubOptions(log)
	opts.Manifest = manifest
	client := hub.New(opts)
	loader := modeling.NewLoader(client, runtime, log)

	return &Environment{
		manifest: manifest,
		loader:   loader,
		builder: dispatch.NewBuilder(loader,
			dispatch.WithLookup(processors.NewLookup(client)),
			dispatch.WithEngine(engine),
			dispatch.WithLogger(log)),
	}, nil
}

// Build resolves and constructs the pipeline for task.
func (e *Environment) Build(ctx context.Context, task TaskID, opts Options) (Pipeline, error) {
	return e.builder.Build(ctx, task, opts)
}

// Resolve resolves a request without constructing the pipeline.
func (e *Environment) Resolve(ctx context.Context, task TaskID, opts Options) (*Plan, error) {
	return e.builder.Resolve(ctx, task, opts)
}

// Describe reads a model snapshot without opening a session.
func (e *Environment) Describe(ctx context.Context, id, token, revision string) (*Description, error) {
	return e.loader.Describe(ctx, id, models.LoadOptions{Token: token, Revision: revision})
}

// Snapshots lists the cached snapshots.
func (e *Environment) Snapshots() ([]Snapshot, error) {
	return e.manifest.List()
}

// Close closes the snapshot manifest.
func (e *Environment) Close() error {
	return e.manifest.Close()
}
