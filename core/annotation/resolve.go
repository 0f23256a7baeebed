package annotation

import (
	"fmt"

	"github.com/siherrmann/annotator/model"
)

// MajorityVote resolves a word to the most frequent entity tag among its subwords.
// Ties go to the tag whose subword has the highest top score, then to the tag seen first.
func MajorityVote(subwords []model.SubwordAnnotation, noEntity int) int {
	type tally struct {
		count int
		best  float32
	}

	tallies := make(map[int]*tally)
	var order []int
	for _, s := range subwords {
		if s.ResolvedTag == noEntity {
			continue
		}
		t, ok := tallies[s.ResolvedTag]
		if !ok {
			t = &tally{best: s.TopScore()}
			tallies[s.ResolvedTag] = t
			order = append(order, s.ResolvedTag)
		}
		t.count++
		t.best = max(t.best, s.TopScore())
	}
	if len(order) == 0 {
		return noEntity
	}

	winner := order[0]
	for _, tag := range order[1:] {
		w, c := tallies[winner], tallies[tag]
		if c.count > w.count || (c.count == w.count && c.best > w.best) {
			winner = tag
		}
	}
	return winner
}

// SummedScore resolves a word to the entity tag with the highest sum of
// subword top scores. Ties go to the tag seen first.
func SummedScore(subwords []model.SubwordAnnotation, noEntity int) int {
	sums := make(map[int]float32)
	var order []int
	for _, s := range subwords {
		if s.ResolvedTag == noEntity {
			continue
		}
		if _, ok := sums[s.ResolvedTag]; !ok {
			order = append(order, s.ResolvedTag)
		}
		sums[s.ResolvedTag] += s.TopScore()
	}
	if len(order) == 0 {
		return noEntity
	}

	winner := order[0]
	for _, tag := range order[1:] {
		if sums[tag] > sums[winner] {
			winner = tag
		}
	}
	return winner
}

// FirstSubword resolves a word to the tag of its first entity subword
func FirstSubword(subwords []model.SubwordAnnotation, noEntity int) int {
	for _, s := range subwords {
		if s.ResolvedTag != noEntity {
			return s.ResolvedTag
		}
	}
	return noEntity
}

// ResolverByName returns the resolver registered under name
func ResolverByName(name string) (model.ResolveFunc, error) {
	switch name {
	case model.ResolverMajority, "":
		return MajorityVote, nil
	case model.ResolverSummed:
		return SummedScore, nil
	case model.ResolverFirst:
		return FirstSubword, nil
	default:
		return nil, fmt.Errorf("unknown resolver %q", name)
	}
}
