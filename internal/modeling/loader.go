package modeling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/born-ml/taskpipe/internal/accel"
	"github.com/born-ml/taskpipe/internal/hub"
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/onnx"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/processors"
	"github.com/born-ml/taskpipe/internal/tasks"
)

// ModelFile is the graph file every snapshot carries.
const ModelFile = "model.onnx"

// Description is everything known about a model snapshot before a session is opened.
type Description struct {
	Snapshot      *hub.Snapshot
	Config        models.Config
	Info          *onnx.ModelInfo
	Family        models.Family
	Preprocessors []preprocess.Preprocessor
}

// Loader implements models.Loader on top of a hub and an inference runtime.
type Loader struct {
	hub     Snapshotter
	runtime Runtime
	log     *slog.Logger
}

// NewLoader returns a loader. A nil logger discards output.
func NewLoader(snapshots Snapshotter, runtime Runtime, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loader{hub: snapshots, runtime: runtime, log: log}
}

// Describe fetches the snapshot of id and reads it without opening a session.
func (l *Loader) Describe(ctx context.Context, id string, opts models.LoadOptions) (*Description, error) {
	snap, err := l.hub.Snapshot(ctx, id, hub.Request{Revision: opts.Revision, Token: opts.Token})
	if err != nil {
		return nil, err
	}

	cfg, err := readConfig(filepath.Join(snap.Dir, "config.json"))
	if err != nil {
		return nil, err
	}
	info, err := onnx.ReadFile(filepath.Join(snap.Dir, ModelFile))
	if err != nil {
		return nil, err
	}
	pre, err := processors.FromDir(snap.Dir)
	if err != nil {
		return nil, err
	}

	return &Description{
		Snapshot:      snap,
		Config:        cfg,
		Info:          info,
		Family:        InferFamily(cfg, info),
		Preprocessors: pre,
	}, nil
}

// Load implements models.Loader.
func (l *Loader) Load(ctx context.Context, class tasks.ModelClass, id string, opts models.LoadOptions) (models.Model, error) {
	acc := opts.Accelerator
	if err := acc.Validate(); err != nil {
		return nil, err
	}
	if err := accel.Probe(acc); err != nil {
		return nil, err
	}
	acc = acc.WithDefaults()

	d, err := l.Describe(ctx, id, opts)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(d.Snapshot.Dir, ModelFile)
	session, err := l.runtime.NewSession(ctx, path, d.Info, acc)
	if err != nil {
		return nil, fmt.Errorf("failed to open session for %s: %w", id, err)
	}

	l.log.Debug("model loaded",
		"model", id,
		"class", class.Name,
		"family", d.Family,
		"provider", acc.Provider,
		"opset", d.Info.Opset(),
		"preprocessors", len(d.Preprocessors))

	return &Model{class: class, desc: d, session: session}, nil
}

func readConfig(path string) (models.Config, error) {
	var cfg models.Config
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read model config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
