// Package tokenizer turns text into the int64 id and mask tensors text models consume.
//
// Two encoders are provided:
//   - WordPiece, loaded from a HuggingFace tokenizer.json (BERT-style models)
//   - tiktoken, for models declaring an OpenAI encoding such as cl100k_base
//
// Processor wraps an encoder as the tokenizer capability used by text tasks: it adds the
// model's special tokens, truncates to the model's maximum length and pads the batch.
package tokenizer

// Encoder converts text to token ids.
type Encoder interface {
	// Encode converts text to token ids without special tokens.
	Encode(text string) ([]int32, error)

	// Decode converts token ids back to text.
	Decode(tokens []int32) (string, error)

	// Name identifies the encoder.
	Name() string
}
