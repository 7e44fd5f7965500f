package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/taskpipe/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WordPieceDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTokenizer(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tokenizer_config.json"), []byte(`{
		"tokenizer_class": "DistilBertTokenizer",
		"model_max_length": 5,
		"cls_token": {"content": "[CLS]"},
		"sep_token": "[SEP]"
	}`), 0o600))

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "DistilBertTokenizer", p.Name())

	out, err := p.Tokenize([]string{"the movie was great", "great"})
	require.NoError(t, err)

	ids := out["input_ids"]
	mask := out["attention_mask"]
	assert.Equal(t, tensor.Shape{2, 5}, ids.Shape())
	assert.Equal(t, tensor.Int64, ids.DType())

	// Truncated to five tokens including [CLS] and [SEP]; the second row is padded.
	assert.Equal(t, []int64{2, 4, 5, 6, 3, 2, 7, 3, 0, 0}, ids.Int64())
	assert.Equal(t, []int64{1, 1, 1, 1, 1, 1, 1, 1, 0, 0}, mask.Int64())
}

func TestLoad_Failures(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tokenizer_config.json"), []byte(`{not json`), 0o600))
	_, err = Load(dir)
	assert.Error(t, err)
}

type fixedEncoder struct{}

func (fixedEncoder) Encode(text string) ([]int32, error) {
	if text == "" {
		return nil, nil
	}
	return []int32{int32(len(text))}, nil
}

func (fixedEncoder) Decode([]int32) (string, error) { return "", nil }

func (fixedEncoder) Name() string { return "fixed" }

func TestProcessor_Tokenize(t *testing.T) {
	p := NewProcessor(fixedEncoder{}, Options{PadID: 9})
	assert.Equal(t, "fixed", p.Name())

	out, err := p.Tokenize([]string{"abc", ""})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9}, out["input_ids"].Int64())
	assert.Equal(t, []int64{1, 0}, out["attention_mask"].Int64())

	_, err = p.Tokenize(nil)
	assert.Error(t, err)

	_, err = p.Tokenize([]string{""})
	assert.Error(t, err)
}
