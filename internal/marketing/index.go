package marketing

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Hit is one similarity search result.
type Hit struct {
	ID    uuid.UUID
	Score float32
}

// Index is a flat inner-product index over L2-normalized vectors.
// Normalization makes the inner product equal to cosine similarity, so a
// vector matched against itself scores 1.0. The corpus is small enough
// that exhaustive search beats maintaining an approximate structure.
type Index struct {
	dim     int
	ids     []uuid.UUID
	vectors [][]float32
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int {
	return len(i.ids)
}

// Add normalizes and appends a vector.
func (i *Index) Add(id uuid.UUID, vec []float32) error {
	if len(vec) != i.dim {
		return fmt.Errorf("vector dimension %d, index expects %d", len(vec), i.dim)
	}
	i.ids = append(i.ids, id)
	i.vectors = append(i.vectors, Normalize(vec))
	return nil
}

// Search returns the k nearest entries to query, best first. k is capped
// at the index size.
func (i *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != i.dim {
		return nil, fmt.Errorf("query dimension %d, index expects %d", len(query), i.dim)
	}
	if k > len(i.ids) {
		k = len(i.ids)
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	normalized := Normalize(query)

	hits := make([]Hit, len(i.ids))
	for n, vec := range i.vectors {
		var score float32
		for d := range vec {
			score += vec[d] * normalized[d]
		}
		hits[n] = Hit{ID: i.ids[n], Score: score}
	}

	sort.Slice(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	return hits[:k], nil
}

// Normalize returns an L2-normalized copy of vec. A zero vector is
// returned unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		out := make([]float32, len(vec))
		copy(out, vec)
		return out
	}

	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(vec))
	for n, v := range vec {
		out[n] = v / norm
	}
	return out
}
