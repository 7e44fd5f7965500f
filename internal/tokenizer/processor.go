package tokenizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/born-ml/taskpipe/internal/tensor"
)

// DefaultMaxLength bounds sequences when the model declares no usable maximum.
const DefaultMaxLength = 512

// Special token strings read from tokenizer_config.json. Values are either plain strings
// or {"content": "..."} objects.
type specialToken string

func (s *specialToken) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = specialToken(str)
		return nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*s = specialToken(obj.Content)
	return nil
}

// Config is the subset of tokenizer_config.json the processor reads.
type Config struct {
	TokenizerClass   string       `json:"tokenizer_class"`
	ModelMaxLength   float64      `json:"model_max_length"`
	ClsToken         specialToken `json:"cls_token"`
	SepToken         specialToken `json:"sep_token"`
	PadToken         specialToken `json:"pad_token"`
	TiktokenEncoding string       `json:"tiktoken_encoding"`
}

// Options configures a Processor.
type Options struct {
	Name      string
	Prefix    []int32
	Suffix    []int32
	PadID     int32
	MaxLength int
}

// Processor implements the tokenizer capability over an Encoder.
type Processor struct {
	enc  Encoder
	opts Options
}

// NewProcessor wraps enc.
func NewProcessor(enc Encoder, opts Options) *Processor {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if opts.Name == "" {
		opts.Name = enc.Name()
	}
	return &Processor{enc: enc, opts: opts}
}

// Load builds a processor from a model directory: tokenizer.json (WordPiece) when present,
// otherwise the tiktoken encoding named in tokenizer_config.json.
func Load(dir string) (*Processor, error) {
	var cfg Config
	data, err := os.ReadFile(filepath.Join(dir, "tokenizer_config.json"))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse tokenizer_config.json: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read tokenizer_config.json: %w", err)
	}

	maxLen := DefaultMaxLength
	if cfg.ModelMaxLength > 0 && cfg.ModelMaxLength < 1e6 {
		maxLen = int(cfg.ModelMaxLength)
	}

	path := filepath.Join(dir, "tokenizer.json")
	if _, err := os.Stat(path); err == nil {
		wp, err := LoadWordPiece(path)
		if err != nil {
			return nil, err
		}
		opts := Options{Name: cfg.TokenizerClass, MaxLength: maxLen}
		if id, ok := wp.TokenID(tokenOr(cfg.ClsToken, "[CLS]")); ok {
			opts.Prefix = []int32{id}
		}
		if id, ok := wp.TokenID(tokenOr(cfg.SepToken, "[SEP]")); ok {
			opts.Suffix = []int32{id}
		}
		if id, ok := wp.TokenID(tokenOr(cfg.PadToken, "[PAD]")); ok {
			opts.PadID = id
		}
		return NewProcessor(wp, opts), nil
	}

	if cfg.TiktokenEncoding != "" {
		tok, err := NewTikToken(cfg.TiktokenEncoding)
		if err != nil {
			return nil, err
		}
		return NewProcessor(tok, Options{Name: cfg.TokenizerClass, MaxLength: maxLen}), nil
	}
	return nil, fmt.Errorf("no tokenizer.json or tiktoken encoding in %s", dir)
}

func tokenOr(tok specialToken, def string) string {
	if tok == "" {
		return def
	}
	return string(tok)
}

// Name implements preprocess.Preprocessor.
func (p *Processor) Name() string {
	return p.opts.Name
}

// Encoder returns the wrapped encoder.
func (p *Processor) Encoder() Encoder {
	return p.enc
}

// Tokenize implements preprocess.Tokenizer. It returns "input_ids" and "attention_mask"
// of shape [len(texts), longest], padded with the pad id.
func (p *Processor) Tokenize(texts []string) (tensor.Map, error) {
	if len(texts) == 0 {
		return nil, errors.New("tokenizer: no texts")
	}
	budget := p.opts.MaxLength - len(p.opts.Prefix) - len(p.opts.Suffix)
	if budget < 0 {
		budget = 0
	}

	rows := make([][]int32, len(texts))
	longest := 0
	for i, text := range texts {
		ids, err := p.enc.Encode(text)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: %w", err)
		}
		if len(ids) > budget {
			ids = ids[:budget]
		}
		row := make([]int32, 0, len(p.opts.Prefix)+len(ids)+len(p.opts.Suffix))
		row = append(row, p.opts.Prefix...)
		row = append(row, ids...)
		row = append(row, p.opts.Suffix...)
		rows[i] = row
		longest = max(longest, len(row))
	}
	if longest == 0 {
		return nil, errors.New("tokenizer: all texts encoded to empty sequences")
	}

	ids := make([]int64, len(rows)*longest)
	mask := make([]int64, len(rows)*longest)
	for i, row := range rows {
		for j := 0; j < longest; j++ {
			if j < len(row) {
				ids[i*longest+j] = int64(row[j])
				mask[i*longest+j] = 1
			} else {
				ids[i*longest+j] = int64(p.opts.PadID)
			}
		}
	}

	shape := tensor.Shape{len(rows), longest}
	idsT, err := tensor.FromInt64(ids, shape)
	if err != nil {
		return nil, err
	}
	maskT, err := tensor.FromInt64(mask, shape)
	if err != nil {
		return nil, err
	}
	return tensor.Map{"input_ids": idsT, "attention_mask": maskT}, nil
}
