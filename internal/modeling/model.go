package modeling

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/born-ml/taskpipe/internal/hub"
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/onnx"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/born-ml/taskpipe/internal/tensor"
)

// ErrClosed is returned by Forward after Close.
var ErrClosed = errors.New("model is closed")

var _ models.Model = (*Model)(nil)

// Model is a loaded model backed by a runtime session.
type Model struct {
	class tasks.ModelClass
	desc  *Description

	mu      sync.RWMutex
	session Session
}

// Class implements models.Model.
func (m *Model) Class() tasks.ModelClass {
	return m.class
}

// Family implements models.Model.
func (m *Model) Family() models.Family {
	return m.desc.Family
}

// Config implements models.Model.
func (m *Model) Config() models.Config {
	return m.desc.Config
}

// Preprocessors implements models.Model.
func (m *Model) Preprocessors() []preprocess.Preprocessor {
	return slices.Clone(m.desc.Preprocessors)
}

// Snapshot returns the snapshot the model was loaded from.
func (m *Model) Snapshot() *hub.Snapshot {
	return m.desc.Snapshot
}

// Info returns the ONNX metadata of the model graph.
func (m *Model) Info() *onnx.ModelInfo {
	return m.desc.Info
}

// Forward implements models.Model. Inputs are bound to the graph's declared inputs.
func (m *Model) Forward(ctx context.Context, inputs tensor.Map) (tensor.Map, error) {
	bound, err := bindInputs(m.desc.Info.InputNames(), inputs)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, ErrClosed
	}
	return m.session.Forward(ctx, bound)
}

// Close releases the session. It is safe to call more than once.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Close()
	m.session = nil
	return err
}

// bindInputs keeps the tensors the graph declares. A single unnamed pairing is bound
// by position, since exporters name the pixel input differently. Missing token_type_ids
// are zero-filled.
func bindInputs(declared []string, inputs tensor.Map) (tensor.Map, error) {
	if len(declared) == 0 {
		return inputs, nil
	}
	if len(declared) == 1 && len(inputs) == 1 {
		for _, t := range inputs {
			return tensor.Map{declared[0]: t}, nil
		}
	}

	bound := make(tensor.Map, len(declared))
	for _, name := range declared {
		t, ok := inputs[name]
		if !ok && name == "token_type_ids" && inputs["input_ids"] != nil {
			zeros, err := tensor.Zeros(inputs["input_ids"].Shape(), tensor.Int64)
			if err != nil {
				return nil, err
			}
			t, ok = zeros, true
		}
		if !ok {
			return nil, fmt.Errorf("missing model input %q (have %v)", name, inputs.Names())
		}
		bound[name] = t
	}
	return bound, nil
}
