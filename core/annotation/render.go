package annotation

import (
	"errors"

	"github.com/siherrmann/annotator/model"
)

// RenderPhrases turns phrases into labeled records using vocab.
// Tag ids missing from vocab are rendered as their decimal id, the lookup
// errors are returned joined next to the complete records.
// text is used to fill the record text and may be empty.
func RenderPhrases(text string, phrases []*model.PhraseAnnotation, vocab *model.Vocabulary) ([]model.PhraseRecord, error) {
	records := make([]model.PhraseRecord, 0, len(phrases))
	var errs []error
	for _, p := range phrases {
		span := p.Span()
		label, err := vocab.Label(p.ResolvedAnnotation)
		if err != nil {
			errs = append(errs, err)
			label = vocab.LabelOrRaw(p.ResolvedAnnotation)
		}

		record := model.PhraseRecord{
			TextSpan: [2]int{span.Start, span.End},
			Label:    label,
			TagID:    p.ResolvedAnnotation,
			Score:    p.Score(),
		}
		if span.Start >= 0 && span.End <= len(text) && span.Start < span.End {
			record.Text = text[span.Start:span.End]
		}
		records = append(records, record)
	}
	return records, errors.Join(errs...)
}

// ShiftRecords moves record spans by offset, e.g. from sentence to document offsets
func ShiftRecords(records []model.PhraseRecord, offset int) []model.PhraseRecord {
	shifted := make([]model.PhraseRecord, len(records))
	for i, r := range records {
		r.TextSpan = [2]int{r.TextSpan[0] + offset, r.TextSpan[1] + offset}
		shifted[i] = r
	}
	return shifted
}
