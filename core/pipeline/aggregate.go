package pipeline

import (
	"errors"
	"fmt"

	"github.com/siherrmann/annotator/core/annotation"
	"github.com/siherrmann/annotator/core/wordmap"
	"github.com/siherrmann/annotator/model"
)

var (
	// ErrInvalidTopK is returned for k < 1
	ErrInvalidTopK = errors.New("top k must be at least 1")
	// ErrNilVocabulary is returned when aggregating without vocabulary
	ErrNilVocabulary = errors.New("vocabulary is nil")
)

// Input is the tokenizer and model output for one sentence.
// Predictions is indexed like the encoding's tokens.
type Input struct {
	Text        string
	Encoding    model.Encoding
	Predictions [][]model.TagScore
}

// AggregateOptions configures an aggregation run
type AggregateOptions struct {
	// Number of ranked tags kept per subword
	TopK int
	// Word resolver, MajorityVote if nil
	Resolve model.ResolveFunc
}

// Result holds all three annotation tiers of one sentence.
// Words view Subwords and Phrases point to Words.
type Result struct {
	Text     string
	Subwords []model.SubwordAnnotation
	Words    []*model.WordAnnotation
	Phrases  []*model.PhraseAnnotation
}

// Records renders the phrases with vocab
func (r *Result) Records(vocab *model.Vocabulary) ([]model.PhraseRecord, error) {
	return annotation.RenderPhrases(r.Text, r.Phrases, vocab)
}

// BIOES returns the position tag of every word inside its phrase
func (r *Result) BIOES() []annotation.BIOESTag {
	return annotation.PhraseBIOES(r.Words, r.Phrases)
}

// Aggregate turns per-subword predictions into words and phrases.
// Special tokens are removed from tokens and predictions at the same
// positions before words are mapped. An input without regular tokens
// yields an empty result.
func Aggregate(in Input, vocab *model.Vocabulary, opts AggregateOptions) (*Result, error) {
	if opts.TopK < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidTopK, opts.TopK)
	}
	if vocab == nil {
		return nil, ErrNilVocabulary
	}
	resolve := opts.Resolve
	if resolve == nil {
		resolve = annotation.MajorityVote
	}

	if err := in.Encoding.Validate(); err != nil {
		return nil, err
	}
	if len(in.Predictions) != in.Encoding.Len() {
		return nil, &model.AlignmentError{Index: -1, Reason: fmt.Sprintf("%d predictions for %d tokens", len(in.Predictions), in.Encoding.Len())}
	}

	tokens := wordmap.Tokens(in.Encoding)
	kept := make([]model.Token, 0, len(tokens))
	predictions := make([][]model.TagScore, 0, len(tokens))
	for i, t := range tokens {
		if t.Special {
			continue
		}
		kept = append(kept, t)
		predictions = append(predictions, in.Predictions[i])
	}

	result := &Result{
		Text:     in.Text,
		Subwords: []model.SubwordAnnotation{},
		Words:    []*model.WordAnnotation{},
		Phrases:  []*model.PhraseAnnotation{},
	}
	if len(kept) == 0 {
		return result, nil
	}

	ranges, err := wordmap.MapWords(kept, in.Text)
	if err != nil {
		return nil, err
	}

	noEntity := vocab.NoEntity()
	result.Subwords = make([]model.SubwordAnnotation, len(kept))
	for i, t := range kept {
		s := model.NewSubwordAnnotation(wordmap.CleanToken(t.Text), t.Offset, predictions[i], noEntity)
		if len(s.RankedTags) > opts.TopK {
			s.RankedTags = s.RankedTags[:opts.TopK:opts.TopK]
		}
		result.Subwords[i] = s
	}

	result.Words, err = annotation.BuildWords(result.Subwords, ranges, noEntity, resolve)
	if err != nil {
		return nil, err
	}
	result.Phrases = annotation.MergePhrases(result.Words)

	return result, nil
}
