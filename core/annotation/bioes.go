package annotation

import "github.com/siherrmann/annotator/model"

// BIOESTag marks the position of a word inside a mention
type BIOESTag int

// Tag values, in the order used by the training data
const (
	Begin BIOESTag = iota
	Inside
	Outside
	End
	Single
)

func (t BIOESTag) String() string {
	switch t {
	case Begin:
		return "B"
	case Inside:
		return "I"
	case Outside:
		return "O"
	case End:
		return "E"
	case Single:
		return "S"
	default:
		return "?"
	}
}

// BIOES converts in-mention flags to BIOES tags. Consecutive flagged
// positions form one mention.
func BIOES(inMention []bool) []BIOESTag {
	tags := make([]BIOESTag, len(inMention))
	for i, current := range inMention {
		before := i > 0 && inMention[i-1]
		after := i < len(inMention)-1 && inMention[i+1]
		switch {
		case !current:
			tags[i] = Outside
		case !before && !after:
			tags[i] = Single
		case !before:
			tags[i] = Begin
		case !after:
			tags[i] = End
		default:
			tags[i] = Inside
		}
	}
	return tags
}

// InMentionFlags reports for each word whether it carries an entity tag
func InMentionFlags(words []*model.WordAnnotation) []bool {
	flags := make([]bool, len(words))
	for i, w := range words {
		flags[i] = !w.IsEmpty()
	}
	return flags
}

// WordBIOES tags each word by its position in the phrase MergePhrases puts it in
func WordBIOES(words []*model.WordAnnotation) []BIOESTag {
	return PhraseBIOES(words, MergePhrases(words))
}

// PhraseBIOES tags each word by its position among the member words of its phrase.
// Words outside all phrases, including empty words inside a phrase span, are Outside.
func PhraseBIOES(words []*model.WordAnnotation, phrases []*model.PhraseAnnotation) []BIOESTag {
	position := make(map[*model.WordAnnotation]BIOESTag, len(words))
	for _, p := range phrases {
		last := len(p.Words) - 1
		for j, w := range p.Words {
			switch {
			case last == 0:
				position[w] = Single
			case j == 0:
				position[w] = Begin
			case j == last:
				position[w] = End
			default:
				position[w] = Inside
			}
		}
	}

	tags := make([]BIOESTag, len(words))
	for i, w := range words {
		tag, ok := position[w]
		if !ok {
			tag = Outside
		}
		tags[i] = tag
	}
	return tags
}
