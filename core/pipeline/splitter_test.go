package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceSplitter(t *testing.T) {
	split := SentenceSplitter()

	t.Run("Splits at sentence ends and keeps byte offsets", func(t *testing.T) {
		text := "Grace Kelly by Mika.  It reached the top!\n\nWhat next? Paris"

		sentences, err := split(text)

		require.NoError(t, err)
		require.Len(t, sentences, 4)
		for i, s := range sentences {
			assert.Equal(t, i, s.Index)
			assert.Equal(t, s.Text, text[s.Start:s.Start+len(s.Text)], "Expected offset of sentence %d to point at its text", i)
		}
		assert.Equal(t, "Grace Kelly by Mika.", sentences[0].Text)
		assert.Equal(t, "It reached the top!", sentences[1].Text)
		assert.Equal(t, "What next?", sentences[2].Text)
		assert.Equal(t, "Paris", sentences[3].Text)
	})

	t.Run("Does not split inside numbers or abbreviations without space", func(t *testing.T) {
		sentences, err := split("Version 2.5 of e.g.this")

		require.NoError(t, err)
		require.Len(t, sentences, 1)
	})

	t.Run("Blank lines end a sentence without punctuation", func(t *testing.T) {
		sentences, err := split("Title\n\nBody text.")

		require.NoError(t, err)
		require.Len(t, sentences, 2)
		assert.Equal(t, "Title", sentences[0].Text)
		assert.Equal(t, 7, sentences[1].Start)
	})

	t.Run("Empty and whitespace text give no sentences", func(t *testing.T) {
		sentences, err := split("")
		require.NoError(t, err)
		assert.Empty(t, sentences)

		sentences, err = split("  \n\n  ")
		require.NoError(t, err)
		assert.Empty(t, sentences)
	})

	t.Run("Multi-byte text keeps byte offsets", func(t *testing.T) {
		text := "Beyoncé sang. Zoë danced."

		sentences, err := split(text)

		require.NoError(t, err)
		require.Len(t, sentences, 2)
		assert.Equal(t, "Zoë danced.", text[sentences[1].Start:])
	})
}

func TestParagraphSplitter(t *testing.T) {
	split := ParagraphSplitter()

	t.Run("Splits at blank lines", func(t *testing.T) {
		text := "First. Still first.\n\n  Second\n\n\n\nThird"

		paragraphs, err := split(text)

		require.NoError(t, err)
		require.Len(t, paragraphs, 3)
		assert.Equal(t, "First. Still first.", paragraphs[0].Text)
		assert.Equal(t, "Second", paragraphs[1].Text)
		assert.Equal(t, "Third", paragraphs[2].Text)
		for _, p := range paragraphs {
			assert.Equal(t, p.Text, text[p.Start:p.Start+len(p.Text)])
		}
		assert.Equal(t, 2, paragraphs[2].Index)
	})
}
