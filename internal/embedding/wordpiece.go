package embedding

import (
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/processor"
)

// WordPieceTokenizer is the uncased BERT tokenizer pipeline (normalize, split on
// whitespace and punctuation, greedy WordPiece, [CLS] ... [SEP]) over a model's vocab.txt.
type WordPieceTokenizer struct {
	mu  sync.Mutex
	tk  *tokenizer.Tokenizer
	sep int
}

// NewWordPieceTokenizer loads vocabPath, one token per line with the line number as its ID.
// The vocabulary must contain [UNK], [CLS] and [SEP].
func NewWordPieceTokenizer(vocabPath string) (*WordPieceTokenizer, error) {
	if vocabPath == "" {
		return nil, fmt.Errorf("vocabulary path is empty")
	}
	model, err := wordpiece.NewWordPieceFromFile(vocabPath, "[UNK]")
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary %s: %w", vocabPath, err)
	}
	tk := tokenizer.NewTokenizer(model)
	tk.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	tk.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())

	sepID, ok := tk.TokenToId("[SEP]")
	if !ok {
		return nil, fmt.Errorf("vocabulary %s has no [SEP] token", vocabPath)
	}
	clsID, ok := tk.TokenToId("[CLS]")
	if !ok {
		return nil, fmt.Errorf("vocabulary %s has no [CLS] token", vocabPath)
	}
	tk.WithPostProcessor(processor.NewBertProcessing(
		processor.PostToken{Id: sepID, Value: "[SEP]"},
		processor.PostToken{Id: clsID, Value: "[CLS]"},
	))
	return &WordPieceTokenizer{tk: tk, sep: sepID}, nil
}

// Tokenize encodes text with special tokens and pads or truncates it to maxTokens.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error) {
	t.mu.Lock()
	en, err := t.tk.EncodeSingle(text, true)
	t.mu.Unlock()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to tokenize: %w", err)
	}
	inputIDs, attentionMask, tokenTypeIDs = padTokens(en.Ids, maxTokens, t.sep)
	return inputIDs, attentionMask, tokenTypeIDs, nil
}

// TokenID returns the vocabulary ID of token.
func (t *WordPieceTokenizer) TokenID(token string) (int, bool) {
	return t.tk.TokenToId(token)
}
