package model

import (
	"time"

	"github.com/google/uuid"
)

// Mention is a linked entity mention stored for a document
type Mention struct {
	ID            int64     `json:"id"`
	RID           uuid.UUID `json:"rid"`
	DocumentID    int64     `json:"document_id"`
	DocumentRID   uuid.UUID `json:"document_rid"`
	SentenceIndex int       `json:"sentence_index"`
	StartChar     int       `json:"start_char"`
	EndChar       int       `json:"end_char"`
	Text          string    `json:"text"`
	Label         string    `json:"label"`
	TagID         int       `json:"tag_id"`
	Score         float64   `json:"score"`
	Embedding     []float32 `json:"embedding,omitempty"`
	Metadata      Metadata  `json:"metadata,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
}

// NewMention creates a mention from a phrase record of the given sentence.
// The record's span is expected in document offsets.
func NewMention(record PhraseRecord, sentenceIndex int) *Mention {
	return &Mention{
		SentenceIndex: sentenceIndex,
		StartChar:     record.Start(),
		EndChar:       record.End(),
		Text:          record.Text,
		Label:         record.Label,
		TagID:         record.TagID,
		Score:         float64(record.Score),
		Metadata:      Metadata{},
	}
}

// Record converts the mention back to its phrase record
func (m *Mention) Record() PhraseRecord {
	return PhraseRecord{
		TextSpan: [2]int{m.StartChar, m.EndChar},
		Label:    m.Label,
		Text:     m.Text,
		TagID:    m.TagID,
		Score:    float32(m.Score),
	}
}

// LabelCount is the number of stored mentions of one label
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}
