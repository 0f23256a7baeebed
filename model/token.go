package model

import "fmt"

// Token is one subword produced by the tokenizer
type Token struct {
	ID           int    `json:"id"`
	Text         string `json:"text"`
	Offset       Span   `json:"offset"`
	Special      bool   `json:"special"`
	Continuation bool   `json:"continuation"`
}

// WordRange is a half-open range [Start, End) over subword indices
type WordRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of subwords in the range
func (r WordRange) Len() int {
	return r.End - r.Start
}

// Encoding is the tokenizer output for one sentence as parallel slices.
// Continuation may be nil, in which case it is inferred from the token markers.
type Encoding struct {
	IDs          []int    `json:"ids"`
	Tokens       []string `json:"tokens"`
	Offsets      []Span   `json:"offsets"`
	SpecialMask  []bool   `json:"special_mask"`
	Continuation []bool   `json:"continuation,omitempty"`
}

// Len returns the number of subword tokens
func (e Encoding) Len() int {
	return len(e.Tokens)
}

// Validate checks that all parallel slices have the same length.
// IDs may be empty when the encoding was built without vocabulary ids.
func (e Encoding) Validate() error {
	n := len(e.Tokens)
	if len(e.IDs) != 0 && len(e.IDs) != n {
		return &AlignmentError{Index: -1, Reason: fmt.Sprintf("%d ids for %d tokens", len(e.IDs), n)}
	}
	if len(e.Offsets) != n {
		return &AlignmentError{Index: -1, Reason: fmt.Sprintf("%d offsets for %d tokens", len(e.Offsets), n)}
	}
	if len(e.SpecialMask) != 0 && len(e.SpecialMask) != n {
		return &AlignmentError{Index: -1, Reason: fmt.Sprintf("%d special flags for %d tokens", len(e.SpecialMask), n)}
	}
	if e.Continuation != nil && len(e.Continuation) != n {
		return &AlignmentError{Index: -1, Reason: fmt.Sprintf("%d continuation flags for %d tokens", len(e.Continuation), n)}
	}
	return nil
}

// TokenAt returns the i-th token. The encoding must be valid.
func (e Encoding) TokenAt(i int) Token {
	t := Token{
		Text:   e.Tokens[i],
		Offset: e.Offsets[i],
	}
	if len(e.IDs) > 0 {
		t.ID = e.IDs[i]
	}
	if len(e.SpecialMask) > 0 {
		t.Special = e.SpecialMask[i]
	}
	if e.Continuation != nil {
		t.Continuation = e.Continuation[i]
	}
	return t
}
