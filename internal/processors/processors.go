// Package processors builds the preprocessors a model snapshot declares and provides the
// default preprocessor lookup by model identifier.
package processors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/born-ml/taskpipe/internal/hub"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/born-ml/taskpipe/internal/tokenizer"
	"github.com/born-ml/taskpipe/internal/vision"
	"github.com/born-ml/taskpipe/internal/yolox"
)

// Files are the snapshot files preprocessors are built from.
var Files = []hub.File{
	{Name: "preprocessor_config.json", Optional: true},
	{Name: "tokenizer_config.json", Optional: true},
	{Name: "tokenizer.json", Optional: true},
}

// FromDir builds the preprocessors declared in dir: the image processor from
// preprocessor_config.json, then the tokenizer. A directory declaring neither yields none.
func FromDir(dir string) ([]preprocess.Preprocessor, error) {
	var out []preprocess.Preprocessor

	img, err := imageProcessor(filepath.Join(dir, "preprocessor_config.json"))
	if err != nil {
		return nil, err
	}
	if img != nil {
		out = append(out, img)
	}

	if exists(filepath.Join(dir, "tokenizer.json")) || exists(filepath.Join(dir, "tokenizer_config.json")) {
		tok, err := tokenizer.Load(dir)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: %w", err)
		}
		out = append(out, tok)
	}
	return out, nil
}

func imageProcessor(path string) (preprocess.ImageProcessor, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var head struct {
		ImageProcessorType string `json:"image_processor_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if head.ImageProcessorType == yolox.ProcessorType {
		return yolox.Load(path)
	}
	return vision.LoadProcessor(path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Snapshotter materializes files of a model identifier locally.
type Snapshotter interface {
	Snapshot(ctx context.Context, id string, req hub.Request) (*hub.Snapshot, error)
}

// Lookup is the default preprocessor lookup: it fetches the preprocessor files of a model
// identifier and returns the first preprocessor with the modality's capability.
type Lookup struct {
	hub Snapshotter
}

// NewLookup returns a lookup fetching through snapshots.
func NewLookup(snapshots Snapshotter) *Lookup {
	return &Lookup{hub: snapshots}
}

// Lookup implements preprocess.Lookup. It returns nil, nil when the model declares no
// suitable preprocessor.
func (l *Lookup) Lookup(ctx context.Context, modelID string, modality tasks.Modality) (preprocess.Preprocessor, error) {
	snap, err := l.hub.Snapshot(ctx, modelID, hub.Request{Files: Files})
	if err != nil {
		return nil, err
	}
	all, err := FromDir(snap.Dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", modelID, err)
	}
	capability := preprocess.CapabilityFor(modality)
	for _, p := range all {
		if capability.Match(p) {
			return p, nil
		}
	}
	return nil, nil
}
