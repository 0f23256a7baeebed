package pipeline

import (
	"strings"
	"unicode"
)

// SentenceSplitter creates a splitter that ends sentences at '.', '!' or '?'
// followed by white space and at blank lines
func SentenceSplitter() SplitFunc {
	return func(text string) ([]Sentence, error) {
		var sentences []Sentence
		start := 0
		cut := func(end int) {
			sentences = appendTrimmed(sentences, text, start, end)
			start = end
		}

		for i := 0; i < len(text); i++ {
			switch text[i] {
			case '.', '!', '?':
				if i+1 == len(text) || isSpace(text[i+1]) {
					cut(i + 1)
				}
			case '\n':
				if i+1 < len(text) && text[i+1] == '\n' {
					cut(i)
				}
			}
		}
		cut(len(text))

		return sentences, nil
	}
}

// ParagraphSplitter creates a splitter that splits at blank lines only
func ParagraphSplitter() SplitFunc {
	return func(text string) ([]Sentence, error) {
		var paragraphs []Sentence
		pos := 0
		for _, para := range strings.Split(text, "\n\n") {
			paragraphs = appendTrimmed(paragraphs, text, pos, pos+len(para))
			pos += len(para) + 2 // Account for "\n\n"
		}
		return paragraphs, nil
	}
}

// appendTrimmed appends text[start:end] without surrounding white space, if any is left
func appendTrimmed(sentences []Sentence, text string, start, end int) []Sentence {
	segment := text[start:end]
	trimmed := strings.TrimSpace(segment)
	if trimmed == "" {
		return sentences
	}
	lead := len(segment) - len(strings.TrimLeftFunc(segment, unicode.IsSpace))
	return append(sentences, Sentence{
		Index: len(sentences),
		Start: start + lead,
		Text:  trimmed,
	})
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
