package model

import (
	"errors"
	"fmt"
)

var (
	// ErrAlignment matches every AlignmentError
	ErrAlignment = errors.New("alignment error")
	// ErrEmptyWord is returned when a word is built without subwords
	ErrEmptyWord = errors.New("word has no subwords")
	// ErrNilResolver is returned when a word is built without a resolver
	ErrNilResolver = errors.New("resolver is nil")
	// ErrPhraseTagMismatch is returned when a word with a different tag is added to a phrase
	ErrPhraseTagMismatch = errors.New("word tag does not match phrase tag")
	// ErrNoEntityLabel is returned when a vocabulary lacks the no-entity label
	ErrNoEntityLabel = errors.New("vocabulary has no no-entity label")
)

// AlignmentError reports subword, offset and prediction streams that do not line up.
// Index is the offending token position, -1 when the streams differ in length.
type AlignmentError struct {
	Index  int
	Reason string
}

func (e *AlignmentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("alignment error: %s", e.Reason)
	}
	return fmt.Sprintf("alignment error at token %d: %s", e.Index, e.Reason)
}

// Is makes errors.Is(err, ErrAlignment) hold for every AlignmentError
func (e *AlignmentError) Is(target error) bool {
	return target == ErrAlignment
}

// VocabularyLookupError reports a tag id missing from the vocabulary
type VocabularyLookupError struct {
	ID int
}

func (e *VocabularyLookupError) Error() string {
	return fmt.Sprintf("tag id %d not in vocabulary", e.ID)
}
