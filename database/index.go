package database

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/annotator/helper"
)

// Vector index types of the mention embedding column
const (
	IndexTypeHNSW    = "hnsw"
	IndexTypeIVFFlat = "ivfflat"
)

// ChangeIndexType replaces the mention embedding index.
// params are optional:
//   - hnsw: "m" (int, default 16), "ef_construction" (int, default 64)
//   - ivfflat: "lists" (int, default 100)
func (h *MentionsDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	createIndexSQL, err := mentionIndexSQL(indexType, params)
	if err != nil {
		return helper.NewError("change index type", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, err = h.db.Instance.ExecContext(ctx, `DROP INDEX IF EXISTS idx_mentions_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	h.db.Logger.Info("Dropped existing mention vector index")

	_, err = h.db.Instance.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	h.db.Logger.Info("Created mention vector index", "type", indexType, "params", params)

	return nil
}

// mentionIndexSQL builds the CREATE INDEX statement for indexType
func mentionIndexSQL(indexType string, params map[string]interface{}) (string, error) {
	intParam := func(name string, def int) int {
		if v, ok := params[name].(int); ok && v > 0 {
			return v
		}
		return def
	}

	switch indexType {
	case IndexTypeHNSW:
		return fmt.Sprintf(
			`CREATE INDEX idx_mentions_embedding ON mentions USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			intParam("m", 16), intParam("ef_construction", 64),
		), nil
	case IndexTypeIVFFlat:
		return fmt.Sprintf(
			`CREATE INDEX idx_mentions_embedding ON mentions USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			intParam("lists", 100),
		), nil
	default:
		return "", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType)
	}
}
