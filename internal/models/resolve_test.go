package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/born-ml/taskpipe/internal/accel"
	"github.com/born-ml/taskpipe/internal/mocks"
	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func descriptor(t *testing.T, id tasks.ID) tasks.Descriptor {
	t.Helper()
	d, err := tasks.Lookup(id)
	require.NoError(t, err)
	return d
}

func TestResolve_DefaultModel(t *testing.T) {
	acc := accel.Config{Provider: accel.NPU, ConfigFile: "vaip_config.json"}

	for _, d := range tasks.All() {
		if d.DefaultModel == "" {
			continue
		}
		t.Run(string(d.ID), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			loader := mocks.NewMockLoader(ctrl)
			model := mocks.NewMockModel(ctrl)

			// Credentials are not forwarded for the default model.
			loader.EXPECT().
				Load(gomock.Any(), d.PrimaryClass(), d.DefaultModel, models.LoadOptions{Accelerator: acc}).
				Return(model, nil)

			got, origin, err := models.NewResolver(loader).Resolve(context.Background(), models.Default(), d, acc,
				models.Auth{Token: "secret", Revision: "v2"})
			require.NoError(t, err)
			assert.Same(t, model, got)
			assert.Equal(t, d.DefaultModel, origin)
		})
	}
}

func TestResolve_DefaultMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)

	_, _, err := models.NewResolver(loader).Resolve(context.Background(), models.Default(),
		descriptor(t, tasks.TextClassification), accel.Default(), models.Auth{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidModelReference))
	assert.Contains(t, err.Error(), "no default model")
}

func TestResolve_ByID(t *testing.T) {
	ids := []string{"amd/yolox-s", "my-org/yolox-finetuned", "/models/local-yolox"}
	d := descriptor(t, tasks.ObjectDetection)
	acc := accel.Default()

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			loader := mocks.NewMockLoader(ctrl)
			model := mocks.NewMockModel(ctrl)

			loader.EXPECT().
				Load(gomock.Any(), tasks.ModelForObjectDetection, id, models.LoadOptions{
					Accelerator: acc,
					Token:       "secret",
					Revision:    "v2",
				}).
				Return(model, nil)

			got, origin, err := models.NewResolver(loader).Resolve(context.Background(), models.ByID(id), d, acc,
				models.Auth{Token: "secret", Revision: "v2"})
			require.NoError(t, err)
			assert.Same(t, model, got)
			assert.Equal(t, id, origin)
		})
	}
}

func TestResolve_LoaderErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)
	boom := errors.New("401 unauthorized")
	loader.EXPECT().Load(gomock.Any(), gomock.Any(), "private/model", gomock.Any()).Return(nil, boom)

	_, _, err := models.NewResolver(loader).Resolve(context.Background(), models.ByID("private/model"),
		descriptor(t, tasks.ObjectDetection), accel.Default(), models.Auth{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestResolve_InstancePassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	model := mocks.NewMockModel(ctrl)
	model.EXPECT().Class().Return(tasks.ModelForObjectDetection).AnyTimes()

	got, origin, err := models.NewResolver(loader).Resolve(context.Background(), models.Instance(model),
		descriptor(t, tasks.ObjectDetection), accel.Default(), models.Auth{})
	require.NoError(t, err)
	assert.Same(t, model, got)
	assert.Empty(t, origin)
}

func TestResolve_InvalidReferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)
	d := descriptor(t, tasks.ObjectDetection)

	wrongClass := mocks.NewMockModel(ctrl)
	wrongClass.EXPECT().Class().Return(tasks.ModelForImageClassification).AnyTimes()

	tests := []struct {
		name   string
		handle models.Handle
		value  string
	}{
		{name: "unrelated type", handle: models.From(42), value: "42 (int)"},
		{name: "empty identifier", handle: models.From(""), value: " (string)"},
		{name: "instance of another class", handle: models.Instance(wrongClass), value: "ModelForImageClassification instance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := models.NewResolver(loader).Resolve(context.Background(), tt.handle, d, accel.Default(), models.Auth{})
			require.Error(t, err)

			var invalid *models.InvalidReferenceError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.value, invalid.Value)
			assert.Contains(t, err.Error(), "model identifier string or a pre-built model instance")
		})
	}
}

func TestFrom(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mocks.NewMockModel(ctrl)
	model.EXPECT().Class().Return(tasks.ModelForObjectDetection).AnyTimes()

	assert.Equal(t, "<default>", models.From(nil).String())
	assert.Equal(t, "amd/yolox-s", models.From("amd/yolox-s").String())
	assert.Equal(t, "ModelForObjectDetection instance", models.From(model).String())
	assert.Equal(t, "amd/resnet50", models.From(models.ByID("amd/resnet50")).String())
	assert.Equal(t, models.Default(), models.Handle{})
}
