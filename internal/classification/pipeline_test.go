package classification_test

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/born-ml/taskpipe/internal/classification"
	"github.com/born-ml/taskpipe/internal/imageio"
	"github.com/born-ml/taskpipe/internal/mocks"
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/pipeline"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/born-ml/taskpipe/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func timmModel(ctrl *gomock.Controller) *mocks.MockModel {
	m := mocks.NewMockModel(ctrl)
	m.EXPECT().Config().Return(models.Config{
		LibraryName: "timm",
		ID2Label:    map[string]string{"0": "tabby", "1": "tiger", "2": "lynx"},
		Pretrained: &models.TransformConfig{
			InputSize: [3]int{3, 32, 32},
			Mean:      [3]float64{0.5, 0.5, 0.5},
			Std:       [3]float64{0.5, 0.5, 0.5},
			CropPct:   1,
		},
	}).AnyTimes()
	return m
}

func logits(t *testing.T, values ...float32) tensor.Map {
	t.Helper()
	l, err := tensor.FromFloat32(values, tensor.Shape{1, len(values)})
	require.NoError(t, err)
	return tensor.Map{"logits": l}
}

func TestSanitizeParameters(t *testing.T) {
	ctrl := gomock.NewController(t)
	body := classification.New(timmModel(ctrl))

	pre, fwd, post := body.SanitizeParameters(pipeline.Params{"timeout": 2, "top_k": 1, "function_to_apply": "sigmoid", "nms_threshold": 0.3})
	assert.Equal(t, pipeline.Params{"timeout": 2}, pre)
	assert.Empty(t, fwd)
	assert.Equal(t, pipeline.Params{"top_k": 1, "function_to_apply": "sigmoid"}, post)
}

func TestPostprocess(t *testing.T) {
	tests := []struct {
		name   string
		params pipeline.Params
		labels []string
	}{
		{name: "default top_k", params: pipeline.Params{}, labels: []string{"tiger", "lynx", "tabby"}},
		{name: "top_k 1", params: pipeline.Params{"top_k": 1}, labels: []string{"tiger"}},
		{name: "sigmoid", params: pipeline.Params{"function_to_apply": "sigmoid", "top_k": 2}, labels: []string{"tiger", "lynx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			body := classification.New(timmModel(ctrl))

			preds, err := body.Postprocess(context.Background(), logits(t, 0.1, 3, 1), tt.params)
			require.NoError(t, err)

			got := make([]string, len(preds))
			for i, p := range preds {
				got[i] = p.Label
			}
			assert.Equal(t, tt.labels, got)
		})
	}
}

func TestPostprocess_SoftmaxSumsToOne(t *testing.T) {
	ctrl := gomock.NewController(t)
	body := classification.New(timmModel(ctrl))

	preds, err := body.Postprocess(context.Background(), logits(t, 1, 2, 3, 4), pipeline.Params{"top_k": 10})
	require.NoError(t, err)
	require.Len(t, preds, 4)
	assert.Equal(t, "LABEL_3", preds[0].Label)

	var sum float64
	for _, p := range preds {
		sum += p.Score
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestPostprocess_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	body := classification.New(timmModel(ctrl))

	_, err := body.Postprocess(context.Background(), logits(t, 1, 2), pipeline.Params{"function_to_apply": "relu"})
	assert.Error(t, err)

	_, err = body.Postprocess(context.Background(), logits(t, 1, 2), pipeline.Params{"top_k": 0})
	assert.Error(t, err)

	a, _ := tensor.FromFloat32([]float32{1}, tensor.Shape{1, 1})
	_, err = body.Postprocess(context.Background(), tensor.Map{"a": a, "b": a}, pipeline.Params{})
	assert.Error(t, err)
}

func TestPreprocess(t *testing.T) {
	ctrl := gomock.NewController(t)
	images := mocks.NewMockImageLoader(ctrl)
	body := classification.New(timmModel(ctrl), classification.WithImageLoader(images))

	images.EXPECT().Load(gomock.Any(), "cat.png", gomock.Any()).Return(image.NewRGBA(image.Rect(0, 0, 64, 48)), nil)

	inputs, err := body.Preprocess(context.Background(), "cat.png", pipeline.Params{})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3, 32, 32}, inputs[classification.InputName].Shape())
}

func TestPreprocess_LoadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	images := mocks.NewMockImageLoader(ctrl)
	body := classification.New(timmModel(ctrl), classification.WithImageLoader(images))

	images.EXPECT().Load(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := body.Preprocess(context.Background(), "https://example.com/cat.png", pipeline.Params{})
	assert.True(t, errors.Is(err, imageio.ErrImageLoad))
}

func TestRunner(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := timmModel(ctrl)
	images := mocks.NewMockImageLoader(ctrl)

	images.EXPECT().Load(gomock.Any(), gomock.Any(), gomock.Any()).Return(image.NewRGBA(image.Rect(0, 0, 32, 32)), nil)
	model.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(logits(t, 5, 0, 0), nil)

	r := classification.NewRunner(model, pipeline.Params{"top_k": 1}, classification.WithImageLoader(images))
	assert.Equal(t, tasks.ImageClassification, r.Task())

	out, err := r.Run(context.Background(), "cat.png", nil)
	require.NoError(t, err)
	preds := out.([]classification.Prediction)
	require.Len(t, preds, 1)
	assert.Equal(t, "tabby", preds[0].Label)
}
