package annotation

import "github.com/siherrmann/annotator/model"

// MergePhrases greedily merges consecutive non-empty words with the same
// resolved tag. Empty words are skipped and do not interrupt a run.
func MergePhrases(words []*model.WordAnnotation) []*model.PhraseAnnotation {
	phrases := []*model.PhraseAnnotation{}
	for _, w := range words {
		if w.IsEmpty() {
			continue
		}
		if len(phrases) > 0 {
			last := phrases[len(phrases)-1]
			if last.ResolvedAnnotation == w.ResolvedAnnotation {
				// Tags are equal, Add cannot fail
				_ = last.Add(w)
				continue
			}
		}
		phrases = append(phrases, model.NewPhraseAnnotation(w))
	}
	return phrases
}

// FlattenWords returns the member words of phrases in order
func FlattenWords(phrases []*model.PhraseAnnotation) []*model.WordAnnotation {
	var words []*model.WordAnnotation
	for _, p := range phrases {
		words = append(words, p.Words...)
	}
	return words
}
