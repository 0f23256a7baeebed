package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/backends"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/knights-analytics/hugot/util/vectorutil"
	"github.com/siherrmann/annotator/helper"
	"github.com/siherrmann/annotator/model"
)

// DefaultPredictor creates a predictor from a token classification model.
// It also returns the model's tag vocabulary, built from the model's id to label map
// with noEntityLabel as no-entity tag.
func DefaultPredictor(modelName string, noEntityLabel string) (PredictFunc, *model.Vocabulary, error) {
	// Prepare model (download if needed)
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	// Only preprocessing and the forward pass of the pipeline are used,
	// the logits of every subword are ranked by tokenPredictions
	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "entity-linking-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithoutAggregation(),
		},
	}
	tcPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, nil, fmt.Errorf("failed to create token classification pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, nil, fmt.Errorf("failed to create token classification pipeline: %w", err)
	}

	vocab, err := model.NewVocabularyFromMap(tcPipeline.IDLabelMap, noEntityLabel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build vocabulary: %w", err)
	}

	var mu sync.Mutex
	return func(text string, enc model.Encoding, k int) ([][]model.TagScore, error) {
		mu.Lock()
		defer mu.Unlock()
		return runTokenClassification(tcPipeline, text, enc.Len(), k)
	}, vocab, nil
}

// runTokenClassification runs the forward pass of tc on text and ranks the
// tag scores of each of the n subwords
func runTokenClassification(tc *pipelines.TokenClassificationPipeline, text string, n int, k int) (predictions [][]model.TagScore, err error) {
	batch := backends.NewBatch(1)
	defer func() {
		err = errors.Join(err, batch.Destroy())
	}()

	if err := tc.Preprocess(batch, []string{text}); err != nil {
		return nil, fmt.Errorf("failed to tokenize text: %w", err)
	}
	if err := tc.Forward(batch); err != nil {
		return nil, fmt.Errorf("failed to run token classification: %w", err)
	}
	if len(batch.OutputValues) == 0 || len(batch.Input) == 0 {
		return make([][]model.TagScore, n), nil
	}

	logits, ok := batch.OutputValues[0].([][][]float32)
	if !ok {
		return nil, fmt.Errorf("expected 3D output, got type %T", batch.OutputValues[0])
	}
	if len(logits) == 0 {
		return make([][]model.TagScore, n), nil
	}

	return tokenPredictions(tc, batch.Input[0], logits[0], n, k), nil
}

// tokenPredictions turns the logits of one input into the k best tags per subword.
// Special tokens get no tags.
func tokenPredictions(tc *pipelines.TokenClassificationPipeline, input backends.TokenizedInput, logits [][]float32, n int, k int) [][]model.TagScore {
	probabilities := make([][]float32, len(logits))
	for j, tokenLogits := range logits {
		probabilities[j] = vectorutil.SoftMax(tokenLogits)
	}

	predictions := make([][]model.TagScore, n)
	for _, entity := range tc.GatherPreEntities(input, probabilities) {
		if entity.Index < 0 || entity.Index >= n {
			continue
		}
		predictions[entity.Index] = topK(entity.Scores, k)
	}
	return predictions
}

// topK returns the k highest scores with their tag ids, descending
func topK(scores []float32, k int) []model.TagScore {
	ranked := make([]model.TagScore, len(scores))
	for id, score := range scores {
		ranked[id] = model.TagScore{ID: id, Score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
