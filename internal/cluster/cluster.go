// Package cluster groups near-duplicate claims with greedy single-pass
// Jaccard clustering over whitespace token sets of normalized text.
//
// The pairwise comparison is O(n²) per batch and is only acceptable because
// batches are hard-bounded. If batches ever need to grow past MaxBatch,
// switch to bucketed/shingled similarity as an explicit change - do not
// lift the bound.
package cluster

import (
	"errors"
	"fmt"

	"github.com/civicmesh/claimforge/internal/canonical"
)

// DefaultThreshold is the similarity at which two claims merge.
const DefaultThreshold = 0.78

// MaxBatch is the documented bound for one clustering batch.
const MaxBatch = 50

// ErrBatchTooLarge rejects batches over MaxBatch instead of silently running
// unbounded pairwise comparison.
var ErrBatchTooLarge = errors.New("cluster: batch exceeds maximum size")

// Item is one claim to cluster: the original text (used for representative
// selection) and its normalized form (used for similarity).
type Item struct {
	Original   string
	Normalized string
}

// Cluster is one group of near-duplicate items. Indices refer to the input
// slice. Only the representative survives downstream.
type Cluster struct {
	Representative int
	Members        []int
}

// Group clusters items greedily: iterate in order, seed a new cluster with
// the first unclustered item, absorb every later unclustered item whose
// similarity to the seed meets the threshold. The representative is the
// member with the longest original text, ties broken by first-seen order.
func Group(items []Item, threshold float64) ([]Cluster, error) {
	if len(items) > MaxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(items), MaxBatch)
	}
	if len(items) == 0 {
		return []Cluster{}, nil
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	tokenSets := make([]map[string]struct{}, len(items))
	for i, item := range items {
		set := make(map[string]struct{})
		for _, tok := range canonical.Tokens(item.Normalized) {
			set[tok] = struct{}{}
		}
		tokenSets[i] = set
	}

	clustered := make([]bool, len(items))
	var clusters []Cluster

	for i := range items {
		if clustered[i] {
			continue
		}
		c := Cluster{Members: []int{i}}
		clustered[i] = true

		for j := i + 1; j < len(items); j++ {
			if clustered[j] {
				continue
			}
			if jaccard(tokenSets[i], tokenSets[j]) >= threshold {
				c.Members = append(c.Members, j)
				clustered[j] = true
			}
		}

		c.Representative = pickRepresentative(items, c.Members)
		clusters = append(clusters, c)
	}

	return clusters, nil
}

// pickRepresentative returns the member index with the longest original
// text; first-seen wins ties, keeping the partition deterministic.
func pickRepresentative(items []Item, members []int) int {
	best := members[0]
	for _, m := range members[1:] {
		if len(items[m].Original) > len(items[best].Original) {
			best = m
		}
	}
	return best
}

// jaccard computes |a∩b| / |a∪b| over token sets. Two empty sets count as
// identical.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
