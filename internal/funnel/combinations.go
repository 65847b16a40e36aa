package funnel

import (
	"context"
	"fmt"

	"github.com/hdrscope/hdrscope/internal/observation"
	"golang.org/x/sync/errgroup"
)

// Combinations returns every r-element subset of items, members kept in
// their order in items, subsets in lexicographic order of positions.
func Combinations[T any](items []T, r int) [][]T {
	n := len(items)
	if r <= 0 || r > n {
		return nil
	}

	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}

	var out [][]T
	for {
		combo := make([]T, r)
		for i, j := range idx {
			combo[i] = items[j]
		}
		out = append(out, combo)

		i := r - 1
		for i >= 0 && idx[i] == i+n-r {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < r; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// Subsets returns all non-empty subsets of items by ascending size, each
// size in combination order. There are 2^len(items)-1 of them.
func Subsets[T any](items []T) [][]T {
	var out [][]T
	for r := 1; r <= len(items); r++ {
		out = append(out, Combinations(items, r)...)
	}
	return out
}

// CombinationLabel names the n-th combination (1-based).
func CombinationLabel(n int, stages []Stage) string {
	return fmt.Sprintf("Combination %d: %s", n, joinStages(stages, " + "))
}

// RunCombinations evaluates every non-empty subset of heuristics in
// cascading mode, each with a fresh State. Up to workers subsets run at
// once; the result order is always the subset order.
func (e *Engine) RunCombinations(ctx context.Context, headers []observation.Header, heuristics []Stage, workers int) ([]*Report, error) {
	if err := ValidateStages(heuristics); err != nil {
		return nil, err
	}
	if err := observation.Validate(headers); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 1
	}

	subsets := Subsets(heuristics)
	reports := make([]*Report, len(subsets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, subset := range subsets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report := e.cascade(headers, subset)
			report.Index = i + 1
			report.Label = CombinationLabel(i+1, subset)
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
