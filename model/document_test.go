package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentFromFile(t *testing.T) {
	t.Run("Successfully reads file and creates document", func(t *testing.T) {
		// Create temporary file
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "test.txt")
		content := "This is test content"
		err := os.WriteFile(filePath, []byte(content), 0644)
		require.NoError(t, err)

		// Create document from file
		metadata := Metadata{"author": "test"}
		doc, err := NewDocumentFromFile(filePath, metadata)

		require.NoError(t, err)
		assert.Equal(t, "test", doc.Title, "Title should be filename without extension")
		assert.Equal(t, filePath, doc.Source, "Source should be file path")
		assert.Equal(t, content, doc.Content, "Content should match file content")
		assert.Equal(t, "test", doc.Metadata["author"])
	})

	t.Run("Returns error for non-existent file", func(t *testing.T) {
		doc, err := NewDocumentFromFile("/non/existent/file.txt", nil)

		require.Error(t, err)
		assert.Nil(t, doc)
	})

	t.Run("Handles empty file", func(t *testing.T) {
		// Create empty temporary file
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "empty.txt")
		err := os.WriteFile(filePath, []byte(""), 0644)
		require.NoError(t, err)

		doc, err := NewDocumentFromFile(filePath, nil)

		require.NoError(t, err)
		assert.Equal(t, "empty", doc.Title)
		assert.Equal(t, "", doc.Content)
	})

	t.Run("Handles file without extension", func(t *testing.T) {
		// Create temporary file without extension
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "README")
		content := "Readme content"
		err := os.WriteFile(filePath, []byte(content), 0644)
		require.NoError(t, err)

		doc, err := NewDocumentFromFile(filePath, nil)

		require.NoError(t, err)
		assert.Equal(t, "README", doc.Title, "Title should be full filename when no extension")
		assert.Equal(t, content, doc.Content)
	})

	t.Run("Handles file with multiple dots in name", func(t *testing.T) {
		// Create temporary file with dots in name
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "my.file.name.txt")
		content := "Content with dots"
		err := os.WriteFile(filePath, []byte(content), 0644)
		require.NoError(t, err)

		doc, err := NewDocumentFromFile(filePath, nil)

		require.NoError(t, err)
		assert.Equal(t, "my.file.name", doc.Title, "Title should remove only last extension")
		assert.Equal(t, content, doc.Content)
	})

	t.Run("Handles nil metadata", func(t *testing.T) {
		// Create temporary file
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "test.txt")
		err := os.WriteFile(filePath, []byte("content"), 0644)
		require.NoError(t, err)

		doc, err := NewDocumentFromFile(filePath, nil)

		require.NoError(t, err)
		assert.Nil(t, doc.Metadata)
	})

	t.Run("Handles unicode content", func(t *testing.T) {
		// Create temporary file with unicode
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "unicode.txt")
		unicodeContent := "Beyoncé sang in Zürich, 東京 and Москва 🎵"
		err := os.WriteFile(filePath, []byte(unicodeContent), 0644)
		require.NoError(t, err)

		doc, err := NewDocumentFromFile(filePath, nil)

		require.NoError(t, err)
		assert.Equal(t, unicodeContent, doc.Content)
	})
}

func TestDocumentMentions(t *testing.T) {
	t.Run("Flattens phrases of all sentences", func(t *testing.T) {
		doc := &Document{
			ID:  7,
			RID: uuid.New(),
			Sentences: []SentenceRecord{
				{Index: 0, Start: 0, Phrases: []PhraseRecord{
					{TextSpan: [2]int{0, 5}, Label: "Grace_Kelly", Text: "Grace", TagID: 3, Score: 0.9},
				}},
				{Index: 1, Start: 20},
				{Index: 2, Start: 40, Phrases: []PhraseRecord{
					{TextSpan: [2]int{41, 47}, Label: "Monaco", Text: "Monaco", TagID: 5, Score: 0.5},
				}},
			},
		}

		mentions := doc.Mentions()

		require.Len(t, mentions, 2)
		assert.Equal(t, int64(7), mentions[0].DocumentID)
		assert.Equal(t, doc.RID, mentions[0].DocumentRID)
		assert.Equal(t, 0, mentions[0].SentenceIndex)
		assert.Equal(t, 2, mentions[1].SentenceIndex)
		assert.Equal(t, 41, mentions[1].StartChar)
		assert.Equal(t, 47, mentions[1].EndChar)
		assert.Equal(t, "Monaco", mentions[1].Label)
		assert.InDelta(t, 0.5, mentions[1].Score, 1e-6)
	})

	t.Run("Document without sentences has no mentions", func(t *testing.T) {
		doc := &Document{}

		assert.Empty(t, doc.Mentions())
	})

	t.Run("Mention record round trip keeps span and label", func(t *testing.T) {
		record := PhraseRecord{TextSpan: [2]int{3, 9}, Label: "Paris", Text: "Paris!", TagID: 2, Score: 0.25}

		m := NewMention(record, 4)

		assert.Equal(t, 4, m.SentenceIndex)
		assert.Equal(t, record, m.Record())
	})
}
