package pipeline

import (
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/siherrmann/annotator/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock TokenizeFunc for testing: one token per word, wrapped in special tokens
func mockTokenizeFunc(text string) (model.Encoding, error) {
	enc := model.Encoding{
		Tokens:      []string{"<s>"},
		Offsets:     []model.Span{{}},
		SpecialMask: []bool{true},
	}
	start := -1
	for i, r := range text + " " {
		if unicode.IsSpace(r) || r == '.' {
			if start >= 0 {
				enc.Tokens = append(enc.Tokens, "Ġ"+text[start:i])
				enc.Offsets = append(enc.Offsets, model.Span{Start: start, End: i})
				enc.SpecialMask = append(enc.SpecialMask, false)
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	enc.Tokens = append(enc.Tokens, "</s>")
	enc.Offsets = append(enc.Offsets, model.Span{})
	enc.SpecialMask = append(enc.SpecialMask, true)
	return enc, nil
}

// Mock PredictFunc for testing: tags known words, everything else is no-entity
func mockPredictFunc(text string, enc model.Encoding, k int) ([][]model.TagScore, error) {
	known := map[string]int{"Grace": tagGraceKelly, "Kelly": tagGraceKelly, "Mika": tagMika, "Paris": tagParis, "Atlantis": 42}
	predictions := make([][]model.TagScore, enc.Len())
	for i, token := range enc.Tokens {
		if enc.SpecialMask[i] {
			continue
		}
		tag, ok := known[strings.TrimPrefix(token, "Ġ")]
		if !ok {
			tag = tagNone
		}
		predictions[i] = []model.TagScore{{ID: tag, Score: 0.8}, {ID: tagUKSinglesChart, Score: 0.1}}[:min(k, 2)]
	}
	return predictions, nil
}

// Mock PredictFunc that returns an error
func mockPredictFuncError(text string, enc model.Encoding, k int) ([][]model.TagScore, error) {
	return nil, errors.New("model error")
}

func TestNewPipeline(t *testing.T) {
	t.Run("Create new pipeline", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFunc)

		assert.NotNil(t, p)
		assert.NotNil(t, p.Tokenizer)
		assert.NotNil(t, p.Predictor)
		assert.Nil(t, p.Splitter)
		assert.Nil(t, p.Embedder)
	})

	t.Run("Set optional functions", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFunc)

		p.SetSplitter(ParagraphSplitter())
		p.SetEmbedder(func(text string) ([]float32, error) { return []float32{1}, nil })

		assert.NotNil(t, p.Splitter)
		assert.NotNil(t, p.Embedder)
	})
}

func TestPipelineProcess(t *testing.T) {
	vocab := testVocabulary(t)
	opts := AggregateOptions{TopK: 2}

	t.Run("Process text successfully", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFunc)

		result, err := p.Process("Grace Kelly by Mika", vocab, opts)
		require.NoError(t, err)

		records, err := result.Records(vocab)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Grace Kelly", records[0].Text)
		assert.Equal(t, "Mika_(singer)", records[1].Label)
	})

	t.Run("Process empty text", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFuncError)

		result, err := p.Process("   ", vocab, opts)

		require.NoError(t, err, "Expected the model not to be called for empty text")
		assert.Empty(t, result.Phrases)
	})

	t.Run("Process with model error", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFuncError)

		result, err := p.Process("Grace Kelly", vocab, opts)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "predict")
		assert.Nil(t, result)
	})

	t.Run("Process with tokenizer error", func(t *testing.T) {
		p := NewPipeline(func(text string) (model.Encoding, error) {
			return model.Encoding{}, errors.New("tokenizer error")
		}, mockPredictFunc)

		_, err := p.Process("Grace Kelly", vocab, opts)

		assert.ErrorContains(t, err, "tokenize")
	})

	t.Run("Process with misaligned model output", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, func(text string, enc model.Encoding, k int) ([][]model.TagScore, error) {
			return make([][]model.TagScore, 1), nil
		})

		_, err := p.Process("Grace Kelly", vocab, opts)

		assert.ErrorIs(t, err, model.ErrAlignment)
	})

	t.Run("Process without predictor", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, nil)

		_, err := p.Process("Grace Kelly", vocab, opts)

		assert.ErrorIs(t, err, ErrIncompletePipeline)
	})
}

func TestPipelineProcessDocument(t *testing.T) {
	vocab := testVocabulary(t)
	opts := AggregateOptions{TopK: 1}

	t.Run("Phrases carry document offsets", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFunc)
		text := "Grace Kelly by Mika. She lived in Paris."

		result, err := p.ProcessDocument(text, vocab, opts)

		require.NoError(t, err)
		require.NoError(t, result.LookupErrors)
		require.Len(t, result.Sentences, 2)
		assert.Equal(t, 21, result.Sentences[1].Start)

		records := result.Records()
		require.Len(t, records, 3)
		for _, r := range records {
			assert.Equal(t, r.Text, text[r.Start():r.End()], "Expected %s to point at its text", r.Label)
		}
		assert.Equal(t, "Paris", records[2].Label)
	})

	t.Run("Unknown tags are kept with their numeric label", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFunc)

		result, err := p.ProcessDocument("Mika. Atlantis sank.", vocab, opts)

		require.NoError(t, err)
		var lookupErr *model.VocabularyLookupError
		require.ErrorAs(t, result.LookupErrors, &lookupErr)
		assert.Equal(t, 42, lookupErr.ID)
		records := result.Records()
		require.Len(t, records, 2)
		assert.Equal(t, "42", records[1].Label)
	})

	t.Run("Uses the configured splitter", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFunc)
		p.SetSplitter(ParagraphSplitter())

		result, err := p.ProcessDocument("Grace Kelly. Mika\n\nParis", vocab, opts)

		require.NoError(t, err)
		require.Len(t, result.Sentences, 2)
		assert.Len(t, result.Sentences[0].Phrases, 2)
	})

	t.Run("Sentence errors abort the document", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFuncError)

		result, err := p.ProcessDocument("Grace Kelly. Mika.", vocab, opts)

		assert.ErrorContains(t, err, "sentence 0")
		assert.Nil(t, result)
	})

	t.Run("Splitter errors are returned", func(t *testing.T) {
		p := NewPipeline(mockTokenizeFunc, mockPredictFunc)
		p.SetSplitter(func(text string) ([]Sentence, error) { return nil, errors.New("split error") })

		_, err := p.ProcessDocument("Grace Kelly", vocab, opts)

		assert.ErrorContains(t, err, "split")
	})
}
