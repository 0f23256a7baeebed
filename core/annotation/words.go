package annotation

import (
	"fmt"

	"github.com/siherrmann/annotator/model"
)

// BuildWords creates one resolved word per range. Each word views its
// subwords through a capped slice of subwords, no data is copied.
func BuildWords(subwords []model.SubwordAnnotation, ranges []model.WordRange, noEntity int, resolve model.ResolveFunc) ([]*model.WordAnnotation, error) {
	words := make([]*model.WordAnnotation, 0, len(ranges))
	for i, r := range ranges {
		if r.Start < 0 || r.End > len(subwords) || r.Start >= r.End {
			return nil, &model.AlignmentError{Index: r.Start, Reason: fmt.Sprintf("word %d range [%d, %d) invalid for %d subwords", i, r.Start, r.End, len(subwords))}
		}

		word, err := model.NewWordAnnotation(subwords[r.Start:r.End:r.End], noEntity, resolve)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, nil
}
