package model

// PhraseRecord is the rendered form of a phrase annotation
type PhraseRecord struct {
	TextSpan [2]int  `json:"text_span"`
	Label    string  `json:"label"`
	Text     string  `json:"text,omitempty"`
	TagID    int     `json:"tag_id"`
	Score    float32 `json:"score"`
}

// Start returns the first byte of the phrase
func (r PhraseRecord) Start() int {
	return r.TextSpan[0]
}

// End returns the byte after the phrase
func (r PhraseRecord) End() int {
	return r.TextSpan[1]
}

// String returns the label, one phrase per line in plain text output
func (r PhraseRecord) String() string {
	return r.Label
}

// SentenceRecord holds the phrases found in one sentence of a document.
// Phrase spans are document offsets, Start is the sentence's first byte.
type SentenceRecord struct {
	Index   int            `json:"index"`
	Start   int            `json:"start"`
	Text    string         `json:"text"`
	Phrases []PhraseRecord `json:"phrases"`
}
