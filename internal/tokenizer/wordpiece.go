package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// WordPiece is a greedy longest-match-first subword encoder (BERT family).
type WordPiece struct {
	vocab     map[string]int32
	inverse   map[int32]string
	unk       string
	prefix    string
	maxChars  int
	lowercase bool
}

type hfTokenizerFile struct {
	Model struct {
		Type                    string           `json:"type"`
		UnkToken                string           `json:"unk_token"`
		ContinuingSubwordPrefix *string          `json:"continuing_subword_prefix"`
		MaxInputCharsPerWord    int              `json:"max_input_chars_per_word"`
		Vocab                   map[string]int32 `json:"vocab"`
	} `json:"model"`
	Normalizer *struct {
		Type      string `json:"type"`
		Lowercase *bool  `json:"lowercase"`
	} `json:"normalizer"`
	AddedTokens []struct {
		ID      int32  `json:"id"`
		Content string `json:"content"`
	} `json:"added_tokens"`
}

// NewWordPiece builds an encoder over vocab with the "[UNK]" unknown token and "##" prefix.
func NewWordPiece(vocab map[string]int32, lowercase bool) *WordPiece {
	inverse := make(map[int32]string, len(vocab))
	for tok, id := range vocab {
		inverse[id] = tok
	}
	return &WordPiece{
		vocab:     vocab,
		inverse:   inverse,
		unk:       "[UNK]",
		prefix:    "##",
		maxChars:  100,
		lowercase: lowercase,
	}
}

// LoadWordPiece reads a HuggingFace tokenizer.json with a WordPiece model.
func LoadWordPiece(path string) (*WordPiece, error) {
	//nolint:gosec // Loading tokenizer from a model snapshot path is intentional.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer.json: %w", err)
	}
	var file hfTokenizerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer.json: %w", err)
	}
	if file.Model.Type != "WordPiece" {
		return nil, fmt.Errorf("unsupported tokenizer model type %q", file.Model.Type)
	}

	vocab := file.Model.Vocab
	for _, added := range file.AddedTokens {
		if _, ok := vocab[added.Content]; !ok {
			vocab[added.Content] = added.ID
		}
	}

	lowercase := false
	if n := file.Normalizer; n != nil && n.Type == "BertNormalizer" {
		lowercase = n.Lowercase == nil || *n.Lowercase
	}

	wp := NewWordPiece(vocab, lowercase)
	if file.Model.UnkToken != "" {
		wp.unk = file.Model.UnkToken
	}
	if file.Model.ContinuingSubwordPrefix != nil {
		wp.prefix = *file.Model.ContinuingSubwordPrefix
	}
	if file.Model.MaxInputCharsPerWord > 0 {
		wp.maxChars = file.Model.MaxInputCharsPerWord
	}
	return wp, nil
}

// TokenID returns the id of a whole token such as "[CLS]".
func (w *WordPiece) TokenID(token string) (int32, bool) {
	id, ok := w.vocab[token]
	return id, ok
}

// Encode implements Encoder.
func (w *WordPiece) Encode(text string) ([]int32, error) {
	if w.lowercase {
		text = strings.ToLower(text)
	}
	var ids []int32
	for _, word := range splitWords(text) {
		pieces, ok := w.encodeWord(word)
		if !ok {
			unk, found := w.vocab[w.unk]
			if !found {
				return nil, fmt.Errorf("word %q is not in the vocabulary and there is no %s token", word, w.unk)
			}
			pieces = []int32{unk}
		}
		ids = append(ids, pieces...)
	}
	return ids, nil
}

func (w *WordPiece) encodeWord(word string) ([]int32, bool) {
	runes := []rune(word)
	if len(runes) > w.maxChars {
		return nil, false
	}
	var ids []int32
	for start := 0; start < len(runes); {
		end := len(runes)
		found := false
		for ; end > start; end-- {
			piece := string(runes[start:end])
			if start > 0 {
				piece = w.prefix + piece
			}
			if id, ok := w.vocab[piece]; ok {
				ids = append(ids, id)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
		start = end
	}
	return ids, true
}

// Decode implements Encoder. Continuation pieces are glued to the previous word.
func (w *WordPiece) Decode(tokens []int32) (string, error) {
	var sb strings.Builder
	for i, id := range tokens {
		tok, ok := w.inverse[id]
		if !ok {
			return "", fmt.Errorf("unknown token id %d", id)
		}
		if rest, cont := strings.CutPrefix(tok, w.prefix); cont && i > 0 {
			sb.WriteString(rest)
			continue
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok)
	}
	return sb.String(), nil
}

// Name implements Encoder.
func (w *WordPiece) Name() string {
	return "WordPiece"
}

// splitWords splits on whitespace and isolates punctuation, the BERT pre-tokenization.
func splitWords(text string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}
