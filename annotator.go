package annotator

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/annotator/core/annotation"
	"github.com/siherrmann/annotator/core/graph"
	"github.com/siherrmann/annotator/core/pipeline"
	"github.com/siherrmann/annotator/database"
	"github.com/siherrmann/annotator/helper"
	"github.com/siherrmann/annotator/model"
	loadSql "github.com/siherrmann/annotator/sql"
	"golang.org/x/sync/errgroup"
)

// Annotator provides a unified interface to the annotation pipeline and the mention store
type Annotator struct {
	DB         *helper.Database             // Optional, nil for in-memory annotation only
	Documents  *database.DocumentsDBHandler // Optional
	Mentions   *database.MentionsDBHandler  // Optional
	Pipeline   *pipeline.Pipeline
	Vocabulary *model.Vocabulary
	Config     model.AnnotationConfig
	// Logging
	log *slog.Logger
}

// NewAnnotator creates a new Annotator.
// If dbConfig is nil no database is used and only the Annotate methods are available.
func NewAnnotator(dbConfig *helper.DatabaseConfiguration, embeddingDim int, config model.AnnotationConfig) (*Annotator, error) {
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("validate config", err)
	}

	logger := helper.NewLogger(os.Stdout, slog.LevelInfo)
	a := &Annotator{
		Config: config,
		log:    logger,
	}
	if dbConfig == nil {
		return a, nil
	}

	db := helper.NewDatabase("annotator", dbConfig, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Documents first, mentions reference them
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	mentions, err := database.NewMentionsDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create mentions handler", err)
	}

	a.DB = db
	a.Documents = documents
	a.Mentions = mentions
	return a, nil
}

// Close closes the database connection
func (a *Annotator) Close() error {
	if a.DB != nil && a.DB.Instance != nil {
		return a.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the tokenizer and model pipeline
func (a *Annotator) SetPipeline(pipeline *pipeline.Pipeline) {
	a.Pipeline = pipeline
}

// SetVocabulary sets the tag vocabulary used to render labels
func (a *Annotator) SetVocabulary(vocab *model.Vocabulary) {
	a.Vocabulary = vocab
}

// UseDefaultPipeline sets up the tokenizer from tokenizerPath and the token
// classification model modelName. The vocabulary is replaced by the model's labels.
// With EmbedMentions set, the default sentence embedder is added.
func (a *Annotator) UseDefaultPipeline(tokenizerPath string, modelName string) error {
	tokenizer, err := pipeline.DefaultTokenizer(tokenizerPath)
	if err != nil {
		return helper.NewError("create default tokenizer", err)
	}

	predictor, vocab, err := pipeline.DefaultPredictor(modelName, a.Config.NoEntityLabel)
	if err != nil {
		return helper.NewError("create default predictor", err)
	}

	p := pipeline.NewPipeline(tokenizer, predictor)
	if a.Config.EmbedMentions {
		embedder, err := pipeline.DefaultEmbedder("")
		if err != nil {
			return helper.NewError("create default embedder", err)
		}
		p.SetEmbedder(embedder)
	}

	a.Pipeline = p
	a.Vocabulary = vocab
	a.log.Info("Using default pipeline", slog.String("model", modelName), slog.Int("labels", vocab.Size()))
	return nil
}

// AnnotateText annotates a single sentence and returns its phrase records.
// Tags missing from the vocabulary are logged and rendered with their numeric id.
func (a *Annotator) AnnotateText(text string) ([]model.PhraseRecord, error) {
	opts, err := a.options()
	if err != nil {
		return nil, err
	}

	result, err := a.Pipeline.Process(text, a.Vocabulary, opts)
	if err != nil {
		return nil, helper.NewError("annotate text", err)
	}

	records, lookupErr := result.Records(a.Vocabulary)
	if lookupErr != nil {
		a.log.Warn("Unknown tags in annotation", slog.String("error", lookupErr.Error()))
	}
	return records, nil
}

// AnnotateTexts annotates independent sentences with Config.Workers workers.
// Results are in the order of texts.
func (a *Annotator) AnnotateTexts(ctx context.Context, texts []string) ([][]model.PhraseRecord, error) {
	if _, err := a.options(); err != nil {
		return nil, err
	}

	results := make([][]model.PhraseRecord, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.Workers)
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := a.AnnotateText(text)
			if err != nil {
				return helper.NewError(fmt.Sprintf("text %d", i), err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// AnnotateDocument splits doc.Content into sentences and annotates them.
// The sentence records are stored on the document.
func (a *Annotator) AnnotateDocument(doc *model.Document) error {
	opts, err := a.options()
	if err != nil {
		return err
	}

	result, err := a.Pipeline.ProcessDocument(doc.Content, a.Vocabulary, opts)
	if err != nil {
		return helper.NewError("annotate document", err)
	}
	if result.LookupErrors != nil {
		a.log.Warn("Unknown tags in document", slog.String("title", doc.Title), slog.String("error", result.LookupErrors.Error()))
	}

	doc.Sentences = result.Sentences
	return nil
}

// ProcessAndInsertDocument processes a document by:
// 1. Inserting the document metadata (without content)
// 2. Annotating the content sentence by sentence
// 3. Embedding the mention texts if EmbedMentions is set
// 4. Inserting all mentions in one transaction
// Returns the number of mentions inserted.
func (a *Annotator) ProcessAndInsertDocument(ctx context.Context, doc *model.Document) (int, error) {
	if a.DB == nil {
		return 0, helper.NewError("process document", fmt.Errorf("database not configured"))
	}
	if doc.Content == "" {
		return 0, helper.NewError("process document", fmt.Errorf("document content is empty"))
	}

	if err := a.AnnotateDocument(doc); err != nil {
		return 0, err
	}

	// Content is not stored
	content := doc.Content
	doc.Content = ""
	err := a.Documents.InsertDocument(doc)
	doc.Content = content
	if err != nil {
		return 0, helper.NewError("insert document", err)
	}

	a.log.Info("Inserted document", slog.String("document_id", doc.RID.String()), slog.String("title", doc.Title))

	mentions := doc.Mentions()
	if a.Config.EmbedMentions {
		if err := a.embedMentions(mentions); err != nil {
			return 0, err
		}
	}

	if err := a.Mentions.InsertMentions(ctx, mentions); err != nil {
		return 0, helper.NewError("insert mentions", err)
	}

	a.log.Info("Inserted mentions", slog.Int("num_mentions", len(mentions)), slog.String("document_id", doc.RID.String()))

	return len(mentions), nil
}

// DocumentMentions returns the stored mentions of a document in text order
func (a *Annotator) DocumentMentions(documentRID uuid.UUID) ([]*model.Mention, error) {
	if a.Mentions == nil {
		return nil, helper.NewError("document mentions", fmt.Errorf("database not configured"))
	}
	return a.Mentions.SelectMentionsByDocument(documentRID)
}

// MentionsByLabel returns stored mentions linked to label
func (a *Annotator) MentionsByLabel(label string, limit int) ([]*model.Mention, error) {
	if a.Mentions == nil {
		return nil, helper.NewError("mentions by label", fmt.Errorf("database not configured"))
	}
	return a.Mentions.SelectMentionsByLabel(label, limit)
}

// LabelCounts returns the most frequent stored labels
func (a *Annotator) LabelCounts(limit int) ([]model.LabelCount, error) {
	if a.Mentions == nil {
		return nil, helper.NewError("label counts", fmt.Errorf("database not configured"))
	}
	return a.Mentions.SelectLabelCounts(limit)
}

// RelatedLabels returns the labels reachable from label over sentence co-occurrences
// within maxHops, in breadth-first order starting with label itself.
func (a *Annotator) RelatedLabels(ctx context.Context, label string, maxHops int, minCount int) ([]*graph.TraversalResult, error) {
	if a.Mentions == nil {
		return nil, helper.NewError("related labels", fmt.Errorf("database not configured"))
	}
	return graph.BFS(ctx, a.Mentions, label, maxHops, minCount)
}

// SimilarMentions returns stored mentions whose embedding is similar to text.
// documentRIDs optionally restricts the search to these documents.
func (a *Annotator) SimilarMentions(text string, documentRIDs []uuid.UUID) ([]*model.Mention, error) {
	if a.Mentions == nil {
		return nil, helper.NewError("similar mentions", fmt.Errorf("database not configured"))
	}
	if a.Pipeline == nil || a.Pipeline.Embedder == nil {
		return nil, helper.NewError("similar mentions", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}

	embedding, err := a.Pipeline.Embedder(text)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	return a.Mentions.SelectMentionsBySimilarity(embedding, a.Config.SimilarityLimit, a.Config.SimilarityThreshold, documentRIDs)
}

// ChangeIndexType replaces the vector index of the mention embeddings
func (a *Annotator) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	if a.Mentions == nil {
		return helper.NewError("change index type", fmt.Errorf("database not configured"))
	}
	return a.Mentions.ChangeIndexType(ctx, indexType, params)
}

// options checks that the annotator is ready and builds the aggregation options
func (a *Annotator) options() (pipeline.AggregateOptions, error) {
	if a.Pipeline == nil {
		return pipeline.AggregateOptions{}, helper.NewError("annotate", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	if a.Vocabulary == nil {
		return pipeline.AggregateOptions{}, helper.NewError("annotate", fmt.Errorf("vocabulary not set, use SetVocabulary() first"))
	}

	resolve, err := annotation.ResolverByName(a.Config.Resolver)
	if err != nil {
		return pipeline.AggregateOptions{}, helper.NewError("annotate", err)
	}

	return pipeline.AggregateOptions{TopK: a.Config.TopK, Resolve: resolve}, nil
}

func (a *Annotator) embedMentions(mentions []*model.Mention) error {
	if a.Pipeline.Embedder == nil {
		return helper.NewError("embed mentions", fmt.Errorf("pipeline has no embedder"))
	}
	for i, m := range mentions {
		embedding, err := a.Pipeline.Embedder(m.Text)
		if err != nil {
			return helper.NewError(fmt.Sprintf("embed mention %d", i), err)
		}
		m.Embedding = embedding
	}
	return nil
}
