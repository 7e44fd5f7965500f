//go:generate go run go.uber.org/mock/mockgen -source=runtime.go -destination=../mocks/mock_modeling.go -package=mocks

// Package modeling constructs models from hub snapshots: it fetches the model files,
// reads the configuration and ONNX metadata, infers the library family, attaches the
// declared preprocessors and opens an inference session on the requested accelerator.
//
// The inference runtime itself is external and plugged in through Runtime.
package modeling

import (
	"context"

	"github.com/born-ml/taskpipe/internal/accel"
	"github.com/born-ml/taskpipe/internal/hub"
	"github.com/born-ml/taskpipe/internal/onnx"
	"github.com/born-ml/taskpipe/internal/tensor"
)

// Session is an open inference session over one model file.
type Session interface {
	Forward(ctx context.Context, inputs tensor.Map) (tensor.Map, error)
	Close() error
}

// Runtime opens inference sessions.
type Runtime interface {
	NewSession(ctx context.Context, modelPath string, info *onnx.ModelInfo, acc accel.Config) (Session, error)
}

// Snapshotter materializes the files of a model identifier locally.
type Snapshotter interface {
	Snapshot(ctx context.Context, id string, req hub.Request) (*hub.Snapshot, error)
}
