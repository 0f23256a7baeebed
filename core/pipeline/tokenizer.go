package pipeline

import (
	"fmt"
	"sync"

	"github.com/siherrmann/annotator/model"
	"github.com/sugarme/tokenizer/pretrained"
)

// DefaultTokenizer loads a HuggingFace tokenizer.json and returns a tokenizer
// producing byte offsets. Continuation flags are taken from the word ids of the encoding.
func DefaultTokenizer(path string) (TokenizeFunc, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	var mu sync.Mutex
	return func(text string) (model.Encoding, error) {
		mu.Lock()
		en, err := tk.EncodeSingle(text, true)
		mu.Unlock()
		if err != nil {
			return model.Encoding{}, fmt.Errorf("failed to encode text: %w", err)
		}

		return newEncoding(text, en.GetIds(), en.GetTokens(), en.GetOffsets(), en.GetSpecialTokenMask(), en.GetWords()), nil
	}, nil
}

// newEncoding converts tokenizer output with byte offsets into an encoding.
// Offsets are clamped to the text. words holds the word id per token, -1 for special tokens.
func newEncoding(text string, ids []int, tokens []string, offsets [][]int, specialMask []int, words []int) model.Encoding {
	clamp := func(b int) int {
		if b < 0 {
			return 0
		}
		if b > len(text) {
			return len(text)
		}
		return b
	}

	enc := model.Encoding{
		IDs:         ids,
		Tokens:      tokens,
		Offsets:     make([]model.Span, len(offsets)),
		SpecialMask: make([]bool, len(specialMask)),
	}
	for i, o := range offsets {
		if len(o) == 2 {
			enc.Offsets[i] = model.Span{Start: clamp(o[0]), End: clamp(o[1])}
		}
	}
	for i, m := range specialMask {
		enc.SpecialMask[i] = m == 1
	}

	if len(words) == len(tokens) {
		enc.Continuation = make([]bool, len(tokens))
		for i := 1; i < len(words); i++ {
			enc.Continuation[i] = words[i] >= 0 && words[i] == words[i-1]
		}
	}

	return enc
}
