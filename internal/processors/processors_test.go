package processors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/taskpipe/internal/hub"
	"github.com/born-ml/taskpipe/internal/preprocess"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/born-ml/taskpipe/internal/tokenizer"
	"github.com/born-ml/taskpipe/internal/vision"
	"github.com/born-ml/taskpipe/internal/yolox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordPieceJSON = `{
	"added_tokens": [{"id": 0, "content": "[PAD]"}, {"id": 1, "content": "[UNK]"}],
	"model": {
		"type": "WordPiece",
		"unk_token": "[UNK]",
		"continuing_subword_prefix": "##",
		"vocab": {"[PAD]": 0, "[UNK]": 1, "[CLS]": 2, "[SEP]": 3, "hello": 4}
	}
}`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestFromDir(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  []any
	}{
		{
			name:  "yolox image processor",
			files: map[string]string{"preprocessor_config.json": `{"image_processor_type": "YoloXImageProcessor", "size": {"height": 320, "width": 320}}`},
			want:  []any{&yolox.Processor{}},
		},
		{
			name: "resize and crop image processor",
			files: map[string]string{"preprocessor_config.json": `{
				"image_processor_type": "ViTImageProcessor",
				"size": {"height": 224, "width": 224}
			}`},
			want: []any{&vision.Processor{}},
		},
		{
			name:  "tokenizer only",
			files: map[string]string{"tokenizer.json": wordPieceJSON},
			want:  []any{&tokenizer.Processor{}},
		},
		{
			name: "image processor before tokenizer",
			files: map[string]string{
				"preprocessor_config.json": `{"image_processor_type": "YoloXImageProcessor"}`,
				"tokenizer.json":           wordPieceJSON,
			},
			want: []any{&yolox.Processor{}, &tokenizer.Processor{}},
		},
		{
			name:  "nothing declared",
			files: map[string]string{"config.json": `{}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromDir(writeFiles(t, tt.files))
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.IsType(t, tt.want[i], got[i])
			}
		})
	}
}

func TestFromDir_Failures(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "malformed preprocessor config", files: map[string]string{"preprocessor_config.json": `{`}},
		{name: "invalid yolox config", files: map[string]string{"preprocessor_config.json": `{"image_processor_type": "YoloXImageProcessor", "size": {"height": -1, "width": 4}}`}},
		{name: "tokenizer config without vocabulary", files: map[string]string{"tokenizer_config.json": `{"tokenizer_class": "BertTokenizer"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDir(writeFiles(t, tt.files))
			assert.Error(t, err)
		})
	}
}

func TestLookup(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"preprocessor_config.json": `{"image_processor_type": "YoloXImageProcessor"}`,
		"tokenizer.json":           wordPieceJSON,
	})
	lookup := NewLookup(hub.New(hub.Options{Offline: true}))
	ctx := context.Background()

	img, err := lookup.Lookup(ctx, dir, tasks.Image)
	require.NoError(t, err)
	_, ok := img.(preprocess.ImageProcessor)
	assert.True(t, ok)

	tok, err := lookup.Lookup(ctx, dir, tasks.Text)
	require.NoError(t, err)
	_, ok = tok.(preprocess.Tokenizer)
	assert.True(t, ok)
}

func TestLookup_NothingSuitable(t *testing.T) {
	dir := writeFiles(t, map[string]string{"tokenizer.json": wordPieceJSON})
	got, err := NewLookup(hub.New(hub.Options{Offline: true})).Lookup(context.Background(), dir, tasks.Image)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookup_SnapshotFailure(t *testing.T) {
	_, err := NewLookup(hub.New(hub.Options{Offline: true})).Lookup(context.Background(), "amd/yolox-s", tasks.Image)
	assert.True(t, errors.Is(err, hub.ErrOffline))
}
