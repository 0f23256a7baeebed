package graph

import (
	"context"

	"github.com/siherrmann/annotator/model"
)

// LabelGraph provides the labels co-occurring with a label.
// Two labels are adjacent when they are mentioned in the same sentence.
type LabelGraph interface {
	SelectCooccurringLabels(ctx context.Context, label string, minCount int) ([]model.LabelCount, error)
}

// TraversalResult contains a label and its distance from the source
type TraversalResult struct {
	Label    string
	Distance int
	Count    int64    // Co-occurrences with the previous label on Path
	Path     []string // Path from source to this label
}

// BFS performs breadth-first search from a source label.
// Only edges with at least minCount co-occurrences are followed.
func BFS(ctx context.Context, db LabelGraph, source string, maxHops int, minCount int) ([]*TraversalResult, error) {
	visited := map[string]bool{model.NormalizeMentionText(source): true}
	queue := []TraversalResult{{
		Label:    source,
		Distance: 0,
		Path:     []string{source},
	}}

	var results []*TraversalResult
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		// Stop if we've reached max hops
		if current.Distance >= maxHops {
			continue
		}

		neighbors, err := db.SelectCooccurringLabels(ctx, current.Label, minCount)
		if err != nil {
			return nil, err
		}

		for _, n := range neighbors {
			key := model.NormalizeMentionText(n.Label)
			if visited[key] {
				continue
			}
			visited[key] = true

			queue = append(queue, TraversalResult{
				Label:    n.Label,
				Distance: current.Distance + 1,
				Count:    n.Count,
				Path:     extendPath(current.Path, n.Label),
			})
		}
	}

	return results, nil
}

// DFS performs depth-first search from a source label
func DFS(ctx context.Context, db LabelGraph, source string, maxHops int, minCount int) ([]*TraversalResult, error) {
	visited := make(map[string]bool)
	var results []*TraversalResult

	err := dfsRecursive(ctx, db, TraversalResult{Label: source, Path: []string{source}}, maxHops, minCount, visited, &results)
	if err != nil {
		return nil, err
	}

	return results, nil
}

func dfsRecursive(
	ctx context.Context,
	db LabelGraph,
	current TraversalResult,
	maxHops int,
	minCount int,
	visited map[string]bool,
	results *[]*TraversalResult,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	visited[model.NormalizeMentionText(current.Label)] = true
	*results = append(*results, &current)

	if current.Distance >= maxHops {
		return nil
	}

	neighbors, err := db.SelectCooccurringLabels(ctx, current.Label, minCount)
	if err != nil {
		return err
	}

	for _, n := range neighbors {
		if visited[model.NormalizeMentionText(n.Label)] {
			continue
		}

		next := TraversalResult{
			Label:    n.Label,
			Distance: current.Distance + 1,
			Count:    n.Count,
			Path:     extendPath(current.Path, n.Label),
		}
		if err := dfsRecursive(ctx, db, next, maxHops, minCount, visited, results); err != nil {
			return err
		}
	}

	return nil
}

// Neighbors returns the labels directly co-occurring with label
func Neighbors(ctx context.Context, db LabelGraph, label string, minCount int) ([]*TraversalResult, error) {
	results, err := BFS(ctx, db, label, 1, minCount)
	if err != nil {
		return nil, err
	}

	// Skip the source label itself
	return results[1:], nil
}

func extendPath(path []string, label string) []string {
	newPath := make([]string, len(path), len(path)+1)
	copy(newPath, path)
	return append(newPath, label)
}
