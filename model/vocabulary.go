package model

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NoEntityLabel is the reserved label for subwords outside any mention
const NoEntityLabel = "|||O|||"

// Vocabulary maps tag ids to labels. Ids are positions in the label list.
type Vocabulary struct {
	labels   []string
	index    map[string]int
	noEntity int
}

// NewVocabulary builds a vocabulary from labels ordered by id.
// noEntityLabel must be one of the labels.
func NewVocabulary(labels []string, noEntityLabel string) (*Vocabulary, error) {
	v := &Vocabulary{
		labels: make([]string, len(labels)),
		index:  make(map[string]int, len(labels)),
	}
	copy(v.labels, labels)
	for id, label := range v.labels {
		key := norm.NFC.String(label)
		if _, ok := v.index[key]; !ok {
			v.index[key] = id
		}
	}

	id, ok := v.index[norm.NFC.String(noEntityLabel)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoEntityLabel, noEntityLabel)
	}
	v.noEntity = id

	return v, nil
}

// NewVocabularyFromMap builds a vocabulary from an id to label map such as
// a model's id2label config. Missing ids in between get their decimal id as label.
func NewVocabularyFromMap(idToLabel map[int]string, noEntityLabel string) (*Vocabulary, error) {
	size := 0
	for id := range idToLabel {
		if id < 0 {
			return nil, fmt.Errorf("negative tag id %d", id)
		}
		if id+1 > size {
			size = id + 1
		}
	}

	labels := make([]string, size)
	for id := range labels {
		label, ok := idToLabel[id]
		if !ok {
			label = strconv.Itoa(id)
		}
		labels[id] = label
	}

	return NewVocabulary(labels, noEntityLabel)
}

// LoadVocabulary reads one label per line, the line number being the tag id
func LoadVocabulary(path string, noEntityLabel string) (*Vocabulary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var labels []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		labels = append(labels, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	return NewVocabulary(labels, noEntityLabel)
}

// Size returns the number of labels
func (v *Vocabulary) Size() int {
	return len(v.labels)
}

// NoEntity returns the id of the no-entity label
func (v *Vocabulary) NoEntity() int {
	return v.noEntity
}

// Label returns the label of id or a VocabularyLookupError. A nil vocabulary knows no ids.
func (v *Vocabulary) Label(id int) (string, error) {
	if v == nil || id < 0 || id >= len(v.labels) {
		return "", &VocabularyLookupError{ID: id}
	}
	return v.labels[id], nil
}

// LabelOrRaw returns the label of id, falling back to the decimal id
func (v *Vocabulary) LabelOrRaw(id int) string {
	label, err := v.Label(id)
	if err != nil {
		return strconv.Itoa(id)
	}
	return label
}

// ID returns the id of label
func (v *Vocabulary) ID(label string) (int, bool) {
	id, ok := v.index[norm.NFC.String(label)]
	return id, ok
}

// IDOrNoEntity returns the id of label, or the no-entity id for unknown labels
func (v *Vocabulary) IDOrNoEntity(label string) int {
	if id, ok := v.ID(label); ok {
		return id
	}
	return v.noEntity
}

// NormalizeMentionText prepares mention text and labels for comparison:
// underscores become spaces, surrounding space is trimmed and the text is lower cased.
func NormalizeMentionText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}
