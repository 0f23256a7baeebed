package wordmap

import (
	"fmt"
	"strings"

	"github.com/siherrmann/annotator/model"
)

// Subword markers of the supported tokenizer families
const (
	WordPieceContinuation = "##"
	BPEWordStart          = "Ġ"
	SentencePieceStart    = "▁"
)

// MapWords groups tokens into words and returns one half-open token range per word.
// A word starts at every non-continuation token and wherever the text span is
// not contiguous with the previous token. Special tokens and tokens with an
// empty span belong to no word and close the running one.
// Offsets must be non-decreasing and, if text is not empty, lie within text.
func MapWords(tokens []model.Token, text string) ([]model.WordRange, error) {
	ranges := make([]model.WordRange, 0, len(tokens))
	open := false
	start := 0
	prevStart, prevEnd := -1, -1

	closeWord := func(end int) {
		if open {
			ranges = append(ranges, model.WordRange{Start: start, End: end})
			open = false
		}
	}

	for i, tok := range tokens {
		if tok.Special {
			closeWord(i)
			continue
		}
		if tok.Offset.End < tok.Offset.Start {
			return nil, &model.AlignmentError{Index: i, Reason: fmt.Sprintf("span end %d before start %d", tok.Offset.End, tok.Offset.Start)}
		}
		if tok.Offset.IsEmpty() {
			closeWord(i)
			continue
		}
		if tok.Offset.Start < prevStart {
			return nil, &model.AlignmentError{Index: i, Reason: fmt.Sprintf("span start %d before previous start %d", tok.Offset.Start, prevStart)}
		}
		if text != "" && (tok.Offset.Start < 0 || tok.Offset.End > len(text)) {
			return nil, &model.AlignmentError{Index: i, Reason: fmt.Sprintf("span [%d, %d) outside text of length %d", tok.Offset.Start, tok.Offset.End, len(text))}
		}

		if !open || !tok.Continuation || tok.Offset.Start > prevEnd {
			closeWord(i)
			start = i
			open = true
		}
		prevStart, prevEnd = tok.Offset.Start, tok.Offset.End
	}
	closeWord(len(tokens))

	return ranges, nil
}

// Tokens returns the tokens of enc. Missing continuation flags are inferred
// from the token markers. The encoding must be valid.
func Tokens(enc model.Encoding) []model.Token {
	if enc.Continuation == nil {
		enc.Continuation = InferContinuation(enc.Tokens)
	}
	tokens := make([]model.Token, enc.Len())
	for i := range tokens {
		tokens[i] = enc.TokenAt(i)
	}
	return tokens
}

// InferContinuation derives continuation flags from subword markers.
// With word start markers (BPE, SentencePiece) in the sequence, every token
// without a marker continues a word, otherwise WordPiece "##" marks continuations.
func InferContinuation(tokens []string) []bool {
	wordStartMarker := ""
	for _, t := range tokens {
		if strings.HasPrefix(t, BPEWordStart) {
			wordStartMarker = BPEWordStart
			break
		}
		if strings.HasPrefix(t, SentencePieceStart) {
			wordStartMarker = SentencePieceStart
			break
		}
	}

	flags := make([]bool, len(tokens))
	for i, t := range tokens {
		if wordStartMarker != "" {
			flags[i] = !strings.HasPrefix(t, wordStartMarker)
		} else {
			flags[i] = strings.HasPrefix(t, WordPieceContinuation)
		}
	}
	return flags
}

// CleanToken strips subword markers from a token
func CleanToken(token string) string {
	for _, marker := range []string{WordPieceContinuation, BPEWordStart, SentencePieceStart} {
		if strings.HasPrefix(token, marker) {
			return strings.TrimPrefix(token, marker)
		}
	}
	return token
}
