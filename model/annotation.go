package model

import "sort"

// TagScore is one ranked candidate tag of a subword
type TagScore struct {
	ID    int     `json:"id"`
	Score float32 `json:"score"`
}

// Span is a half-open byte range [Start, End) into the source text
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the length of the span in bytes
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no text
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Union returns the smallest span covering s and o
func (s Span) Union(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// SubwordAnnotation holds the ranked tags predicted for one subword token.
// Only ResolvedTag may change after construction, through Override.
type SubwordAnnotation struct {
	Token       string     `json:"token"`
	Offset      Span       `json:"offset"`
	RankedTags  []TagScore `json:"ranked_tags"`
	ResolvedTag int        `json:"resolved_tag"`
}

// NewSubwordAnnotation copies ranked, orders it by descending score and
// resolves the subword to the top entry. A subword without candidates
// resolves to noEntity.
func NewSubwordAnnotation(token string, offset Span, ranked []TagScore, noEntity int) SubwordAnnotation {
	tags := make([]TagScore, len(ranked))
	copy(tags, ranked)
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Score > tags[j].Score
	})

	resolved := noEntity
	if len(tags) > 0 {
		resolved = tags[0].ID
	}

	return SubwordAnnotation{
		Token:       token,
		Offset:      offset,
		RankedTags:  tags,
		ResolvedTag: resolved,
	}
}

// Override replaces the resolved tag
func (s *SubwordAnnotation) Override(tag int) {
	s.ResolvedTag = tag
}

// TopScore returns the score of the highest ranked tag, 0 without candidates
func (s SubwordAnnotation) TopScore() float32 {
	if len(s.RankedTags) == 0 {
		return 0
	}
	return s.RankedTags[0].Score
}

// ResolveFunc computes the tag of a word from its subwords
type ResolveFunc func(subwords []SubwordAnnotation, noEntity int) int

// WordAnnotation groups the contiguous subwords of one word.
// Subwords is a view into the sentence's subword slice.
type WordAnnotation struct {
	Subwords           []SubwordAnnotation `json:"subwords"`
	Offset             Span                `json:"offset"`
	ResolvedAnnotation int                 `json:"resolved_annotation"`

	annotations []int
	noEntity    int
	resolve     ResolveFunc
}

// NewWordAnnotation builds and resolves a word. subwords must not be empty.
func NewWordAnnotation(subwords []SubwordAnnotation, noEntity int, resolve ResolveFunc) (*WordAnnotation, error) {
	if len(subwords) == 0 {
		return nil, ErrEmptyWord
	}
	if resolve == nil {
		return nil, ErrNilResolver
	}

	w := &WordAnnotation{
		Subwords: subwords,
		noEntity: noEntity,
		resolve:  resolve,
	}
	w.Resolve()

	return w, nil
}

// Resolve recomputes the offset, the entity subwords and the resolved
// annotation from the current subwords.
func (w *WordAnnotation) Resolve() {
	w.Offset = w.Subwords[0].Offset
	w.annotations = w.annotations[:0]
	for i, s := range w.Subwords {
		w.Offset = w.Offset.Union(s.Offset)
		if s.ResolvedTag != w.noEntity {
			w.annotations = append(w.annotations, i)
		}
	}

	if len(w.annotations) == 0 {
		w.ResolvedAnnotation = w.noEntity
		return
	}
	w.ResolvedAnnotation = w.resolve(w.Subwords, w.noEntity)
}

// Annotations returns pointers into Subwords for the subwords not resolved
// to the no-entity tag at the last Resolve
func (w *WordAnnotation) Annotations() []*SubwordAnnotation {
	annotations := make([]*SubwordAnnotation, len(w.annotations))
	for i, idx := range w.annotations {
		annotations[i] = &w.Subwords[idx]
	}
	return annotations
}

// IsEmpty reports whether no subword of the word carries an entity tag
func (w *WordAnnotation) IsEmpty() bool {
	return len(w.annotations) == 0
}

// Score returns the mean top score of the subwords voting for the resolved tag
func (w *WordAnnotation) Score() float32 {
	var sum float32
	var n int
	for _, idx := range w.annotations {
		s := w.Subwords[idx]
		if s.ResolvedTag == w.ResolvedAnnotation {
			sum += s.TopScore()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

// PhraseAnnotation is a run of consecutive words sharing one resolved tag
type PhraseAnnotation struct {
	Words              []*WordAnnotation `json:"words"`
	ResolvedAnnotation int               `json:"resolved_annotation"`
}

// NewPhraseAnnotation starts a phrase with a single word
func NewPhraseAnnotation(word *WordAnnotation) *PhraseAnnotation {
	return &PhraseAnnotation{
		Words:              []*WordAnnotation{word},
		ResolvedAnnotation: word.ResolvedAnnotation,
	}
}

// Add appends word to the phrase. The word must resolve to the phrase's tag.
func (p *PhraseAnnotation) Add(word *WordAnnotation) error {
	if word.ResolvedAnnotation != p.ResolvedAnnotation {
		return ErrPhraseTagMismatch
	}
	p.Words = append(p.Words, word)
	return nil
}

// Span returns the min/max character offsets over the member words
func (p *PhraseAnnotation) Span() Span {
	span := p.Words[0].Offset
	for _, w := range p.Words[1:] {
		span = span.Union(w.Offset)
	}
	return span
}

// Score returns the mean word score of the phrase
func (p *PhraseAnnotation) Score() float32 {
	var sum float32
	for _, w := range p.Words {
		sum += w.Score()
	}
	return sum / float32(len(p.Words))
}
