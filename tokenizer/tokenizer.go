// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer provides the text preprocessors used by text pipelines.
//
// Supported encoders:
//   - WordPiece: BERT-style vocabularies read from a tokenizer.json
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base, o200k_base)
//
// Example usage:
//
//	import "github.com/born-ml/taskpipe/tokenizer"
//
//	// Load the tokenizer shipped with a model snapshot
//	p, err := tokenizer.Load("/models/distilbert-sst2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Batch into input_ids and attention_mask
//	inputs, err := p.Tokenize([]string{"the movie was great"})
package tokenizer

import (
	"github.com/born-ml/taskpipe/internal/tokenizer"
)

// DefaultMaxLength bounds sequences when the model declares no usable maximum.
const DefaultMaxLength = tokenizer.DefaultMaxLength

// Encoder converts text to token ids and back.
type Encoder = tokenizer.Encoder

// Processor batches texts into model inputs over an Encoder.
type Processor = tokenizer.Processor

// Options configures a Processor.
type Options = tokenizer.Options

// WordPiece is a greedy longest-match subword encoder.
type WordPiece = tokenizer.WordPiece

// TikToken wraps a tiktoken BPE encoding.
type TikToken = tokenizer.TikToken

// Load builds the tokenizer declared in a model snapshot directory.
//
// tokenizer.json is preferred; otherwise tokenizer_config.json must name a
// tiktoken encoding.
func Load(dir string) (*Processor, error) {
	return tokenizer.Load(dir)
}

// NewProcessor wraps enc.
func NewProcessor(enc Encoder, opts Options) *Processor {
	return tokenizer.NewProcessor(enc, opts)
}

// LoadWordPiece reads a WordPiece vocabulary from a tokenizer.json file.
func LoadWordPiece(path string) (*WordPiece, error) {
	return tokenizer.LoadWordPiece(path)
}

// NewWordPiece creates an encoder over vocab.
func NewWordPiece(vocab map[string]int32, lowercase bool) *WordPiece {
	return tokenizer.NewWordPiece(vocab, lowercase)
}

// NewTikToken loads the named encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel loads the encoding registered for an OpenAI model name.
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}
