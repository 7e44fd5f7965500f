package pipeline

import (
	"testing"

	"github.com/born-ml/taskpipe/internal/models"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		task   tasks.ID
		family models.Family
		want   Kind
	}{
		{name: "timm classification", task: tasks.ImageClassification, family: models.FamilyTimm, want: KindSpecialized},
		{name: "yolox detection", task: tasks.ObjectDetection, family: models.FamilyYOLOX, want: KindSpecialized},
		{name: "transformers classification", task: tasks.ImageClassification, family: models.FamilyTransformers, want: KindGeneric},
		{name: "timm detection", task: tasks.ObjectDetection, family: models.FamilyTimm, want: KindGeneric},
		{name: "yolox classification", task: tasks.ImageClassification, family: models.FamilyYOLOX, want: KindGeneric},
		{name: "text with timm", task: tasks.TextClassification, family: models.FamilyTimm, want: KindGeneric},
		{name: "empty family", task: tasks.ObjectDetection, family: "", want: KindGeneric},
		{name: "unknown task", task: "depth-estimation", family: models.FamilyTimm, want: KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.task, tt.family))
		})
	}
}

func TestSelfPreprocessing(t *testing.T) {
	assert.True(t, SelfPreprocessing(models.FamilyTimm))
	assert.False(t, SelfPreprocessing(models.FamilyYOLOX))
	assert.False(t, SelfPreprocessing(models.FamilyTransformers))
}

func TestSpecializations_ReturnsCopy(t *testing.T) {
	specs := Specializations()
	specs[0].Family = "mutated"
	assert.Equal(t, KindSpecialized, Select(tasks.ImageClassification, models.FamilyTimm))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "generic", KindGeneric.String())
	assert.Equal(t, "specialized", KindSpecialized.String())
	assert.Equal(t, "unknown", Kind(7).String())
}
