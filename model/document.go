package model

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document represents an annotated source document
type Document struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Title     string    `json:"title"`
	Source    string    `json:"source,omitempty"`
	Content   string    `json:"content,omitempty" db:"-"` // Only used for annotation, not stored
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Results
	Sentences []SentenceRecord `json:"sentences,omitempty" db:"-"`
}

// NewDocumentFromFile reads a file and creates a Document with the file content.
// The title defaults to the filename without extension, the source to the path.
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(filePath)
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	if title == "" {
		title = filename
	}

	return &Document{
		Title:    title,
		Source:   filePath,
		Content:  string(content),
		Metadata: metadata,
	}, nil
}

// Mentions flattens the phrase records of all annotated sentences
func (d *Document) Mentions() []*Mention {
	var mentions []*Mention
	for _, s := range d.Sentences {
		for _, p := range s.Phrases {
			m := NewMention(p, s.Index)
			m.DocumentID = d.ID
			m.DocumentRID = d.RID
			mentions = append(mentions, m)
		}
	}
	return mentions
}
