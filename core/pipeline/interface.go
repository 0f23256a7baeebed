package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/siherrmann/annotator/core/annotation"
	"github.com/siherrmann/annotator/helper"
	"github.com/siherrmann/annotator/model"
)

// TokenizeFunc splits text into subword tokens with byte offsets into text
type TokenizeFunc func(text string) (model.Encoding, error)

// PredictFunc returns, per token position of enc, up to k ranked tag candidates.
// Positions without prediction (e.g. special tokens) may be nil.
type PredictFunc func(text string, enc model.Encoding, k int) ([][]model.TagScore, error)

// SplitFunc splits a document into sentences
type SplitFunc func(text string) ([]Sentence, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// Sentence is a part of a document annotated on its own.
// Start is the byte offset of Text inside the document.
type Sentence struct {
	Index int
	Start int
	Text  string
}

// ErrIncompletePipeline is returned when tokenizer or predictor are missing
var ErrIncompletePipeline = errors.New("pipeline needs a tokenizer and a predictor")

// Pipeline combines tokenizer, model and optional splitter and embedder
type Pipeline struct {
	Tokenizer TokenizeFunc
	Predictor PredictFunc
	Splitter  SplitFunc // Optional, defaults to SentenceSplitter
	Embedder  EmbedFunc // Optional, used for mention embeddings
}

// NewPipeline creates a new annotation pipeline
func NewPipeline(tokenizer TokenizeFunc, predictor PredictFunc) *Pipeline {
	return &Pipeline{
		Tokenizer: tokenizer,
		Predictor: predictor,
	}
}

// SetSplitter sets the sentence splitting function
func (p *Pipeline) SetSplitter(splitter SplitFunc) {
	p.Splitter = splitter
}

// SetEmbedder sets the embedding function
func (p *Pipeline) SetEmbedder(embedder EmbedFunc) {
	p.Embedder = embedder
}

// Process annotates a single sentence: tokenize, predict, aggregate
func (p *Pipeline) Process(text string, vocab *model.Vocabulary, opts AggregateOptions) (*Result, error) {
	if p.Tokenizer == nil || p.Predictor == nil {
		return nil, ErrIncompletePipeline
	}
	if strings.TrimSpace(text) == "" {
		return Aggregate(Input{Text: text}, vocab, opts)
	}

	enc, err := p.Tokenizer(text)
	if err != nil {
		return nil, helper.NewError("tokenize", err)
	}

	predictions, err := p.Predictor(text, enc, opts.TopK)
	if err != nil {
		return nil, helper.NewError("predict", err)
	}

	return Aggregate(Input{Text: text, Encoding: enc, Predictions: predictions}, vocab, opts)
}

// DocumentResult contains the phrase records of every sentence of a document.
// LookupErrors joins the vocabulary lookup errors of all sentences, the
// affected records carry their numeric tag id as label.
type DocumentResult struct {
	Sentences    []model.SentenceRecord
	LookupErrors error
}

// Records returns the phrase records of all sentences in document order
func (r *DocumentResult) Records() []model.PhraseRecord {
	var records []model.PhraseRecord
	for _, s := range r.Sentences {
		records = append(records, s.Phrases...)
	}
	return records
}

// ProcessDocument splits text into sentences and annotates each of them.
// Phrase spans in the result are document offsets.
func (p *Pipeline) ProcessDocument(text string, vocab *model.Vocabulary, opts AggregateOptions) (*DocumentResult, error) {
	split := p.Splitter
	if split == nil {
		split = SentenceSplitter()
	}

	sentences, err := split(text)
	if err != nil {
		return nil, helper.NewError("split", err)
	}

	result := &DocumentResult{Sentences: make([]model.SentenceRecord, 0, len(sentences))}
	var lookupErrs []error
	for _, s := range sentences {
		res, err := p.Process(s.Text, vocab, opts)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("sentence %d", s.Index), err)
		}

		records, lookupErr := res.Records(vocab)
		if lookupErr != nil {
			lookupErrs = append(lookupErrs, lookupErr)
		}

		result.Sentences = append(result.Sentences, model.SentenceRecord{
			Index:   s.Index,
			Start:   s.Start,
			Text:    s.Text,
			Phrases: annotation.ShiftRecords(records, s.Start),
		})
	}
	result.LookupErrors = errors.Join(lookupErrs...)

	return result, nil
}
