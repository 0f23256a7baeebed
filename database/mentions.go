package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/annotator/helper"
	"github.com/siherrmann/annotator/model"
	loadSql "github.com/siherrmann/annotator/sql"
)

// MentionsDBHandlerFunctions defines the interface for Mentions database operations.
type MentionsDBHandlerFunctions interface {
	InsertMention(mention *model.Mention) error
	InsertMentions(ctx context.Context, mentions []*model.Mention) error
	SelectMention(rid uuid.UUID) (*model.Mention, error)
	SelectMentionsByDocument(documentRID uuid.UUID) ([]*model.Mention, error)
	SelectMentionsByLabel(label string, limit int) ([]*model.Mention, error)
	SelectMentionsBySimilarity(embedding []float32, limit int, threshold float64, documentRIDs []uuid.UUID) ([]*model.Mention, error)
	SelectLabelCounts(limit int) ([]model.LabelCount, error)
	SelectCooccurringLabels(ctx context.Context, label string, minCount int) ([]model.LabelCount, error)
	UpdateMentionEmbedding(rid uuid.UUID, embedding []float32) error
	DeleteMention(rid uuid.UUID) error
	DeleteMentionsByDocument(documentRID uuid.UUID) error
}

// MentionsDBHandler handles mention-related database operations
type MentionsDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NewMentionsDBHandler creates a new mentions database handler.
// The documents table has to exist, mentions reference it.
// If force is true, it will reload the SQL functions even if they already exist.
func NewMentionsDBHandler(db *helper.Database, embeddingDim int, force bool) (*MentionsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	mentionsDbHandler := &MentionsDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadMentionsSql(mentionsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load mentions sql", err)
	}

	err = mentionsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized MentionsDBHandler")

	return mentionsDbHandler, nil
}

// CreateTable creates the 'mentions' table and its indexes if they do not exist
func (h *MentionsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_mentions($1);`, h.embeddingDim)
	if err != nil {
		log.Panicf("error initializing mentions table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table mentions")

	return nil
}

// InsertMention inserts a new mention of an existing document
func (h *MentionsDBHandler) InsertMention(mention *model.Mention) error {
	err := h.insertMention(context.Background(), h.db.Instance.QueryRowContext, mention)
	if err != nil {
		return helper.NewError("scan", err)
	}
	return nil
}

// InsertMentions inserts all mentions in one transaction
func (h *MentionsDBHandler) InsertMentions(ctx context.Context, mentions []*model.Mention) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}

	for i, mention := range mentions {
		err := h.insertMention(ctx, tx.QueryRowContext, mention)
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				h.db.Logger.Error("rollback failed", "error", rollbackErr)
			}
			return helper.NewError(fmt.Sprintf("insert mention %d", i), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	return nil
}

// SelectMention retrieves a mention by RID
func (h *MentionsDBHandler) SelectMention(rid uuid.UUID) (*model.Mention, error) {
	mention := &model.Mention{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_mention($1)`,
		rid,
	)

	err := scanMention(row, mention)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return mention, nil
}

// SelectMentionsByDocument retrieves the mentions of a document in text order
func (h *MentionsDBHandler) SelectMentionsByDocument(documentRID uuid.UUID) ([]*model.Mention, error) {
	return h.queryMentions(false, `SELECT * FROM select_mentions_by_document($1)`, documentRID)
}

// SelectMentionsByLabel retrieves mentions linked to label, best scored first.
// Labels are compared after NormalizeMentionText.
func (h *MentionsDBHandler) SelectMentionsByLabel(label string, limit int) ([]*model.Mention, error) {
	return h.queryMentions(false, `SELECT * FROM select_mentions_by_label($1, $2)`, model.NormalizeMentionText(label), limit)
}

// SelectMentionsBySimilarity performs vector similarity search over mention embeddings.
// If documentRIDs is nil or empty, searches across all documents.
func (h *MentionsDBHandler) SelectMentionsBySimilarity(embedding []float32, limit int, threshold float64, documentRIDs []uuid.UUID) ([]*model.Mention, error) {
	embeddingVector := pgvector.NewVector(embedding)

	var documentRIDsParam interface{}
	if len(documentRIDs) > 0 {
		documentRIDsParam = pq.Array(documentRIDs)
	}

	return h.queryMentions(
		true,
		`SELECT * FROM select_mentions_by_similarity($1, $2, $3, $4)`,
		embeddingVector,
		limit,
		threshold,
		documentRIDsParam,
	)
}

// SelectLabelCounts returns the most frequent labels with their mention count
func (h *MentionsDBHandler) SelectLabelCounts(limit int) ([]model.LabelCount, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_label_counts($1)`, limit)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanLabelCounts(rows)
}

// SelectCooccurringLabels returns the labels mentioned in the same sentence as label
// at least minCount times, most frequent first. Labels are compared after NormalizeMentionText.
func (h *MentionsDBHandler) SelectCooccurringLabels(ctx context.Context, label string, minCount int) ([]model.LabelCount, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_cooccurring_labels($1, $2)`, model.NormalizeMentionText(label), minCount)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	return scanLabelCounts(rows)
}

// UpdateMentionEmbedding sets the embedding of a mention
func (h *MentionsDBHandler) UpdateMentionEmbedding(rid uuid.UUID, embedding []float32) error {
	_, err := h.db.Instance.Exec(
		`SELECT update_mention_embedding($1, $2)`,
		rid,
		embeddingParam(embedding),
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteMention deletes a mention by RID
func (h *MentionsDBHandler) DeleteMention(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_mention($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteMentionsByDocument deletes all mentions of a document
func (h *MentionsDBHandler) DeleteMentionsByDocument(documentRID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_mentions_by_document($1)`,
		documentRID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// queryRowFunc is the QueryRowContext method of *sql.DB or *sql.Tx
type queryRowFunc func(ctx context.Context, query string, args ...interface{}) *sql.Row

func (h *MentionsDBHandler) insertMention(ctx context.Context, queryRow queryRowFunc, mention *model.Mention) error {
	row := queryRow(
		ctx,
		`SELECT * FROM insert_mention($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		mention.DocumentID,
		mention.SentenceIndex,
		mention.StartChar,
		mention.EndChar,
		mention.Text,
		mention.Label,
		model.NormalizeMentionText(mention.Label),
		mention.TagID,
		mention.Score,
		embeddingParam(mention.Embedding),
		mention.Metadata,
	)
	return scanMention(row, mention)
}

func (h *MentionsDBHandler) queryMentions(withSimilarity bool, query string, args ...interface{}) ([]*model.Mention, error) {
	rows, err := h.db.Instance.Query(query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var mentions []*model.Mention
	for rows.Next() {
		mention := &model.Mention{}
		if withSimilarity {
			err = scanMention(rows, mention, &mention.Similarity)
		} else {
			err = scanMention(rows, mention)
		}
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		mentions = append(mentions, mention)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return mentions, nil
}

// scanMention scans a mention row, extra receives additional trailing columns
func scanMention(row rowScanner, mention *model.Mention, extra ...interface{}) error {
	dest := []interface{}{
		&mention.ID,
		&mention.RID,
		&mention.DocumentID,
		&mention.DocumentRID,
		&mention.SentenceIndex,
		&mention.StartChar,
		&mention.EndChar,
		&mention.Text,
		&mention.Label,
		&mention.TagID,
		&mention.Score,
		pq.Array(&mention.Embedding),
		&mention.Metadata,
		&mention.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// embeddingParam returns a vector parameter, NULL for missing embeddings
func embeddingParam(embedding []float32) interface{} {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

func scanLabelCounts(rows *sql.Rows) ([]model.LabelCount, error) {
	defer rows.Close()

	var counts []model.LabelCount
	for rows.Next() {
		var c model.LabelCount
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, helper.NewError("scan", err)
		}
		counts = append(counts, c)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return counts, nil
}
