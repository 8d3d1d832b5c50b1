package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viant/vec/search"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
)

// computes the distance between a query vector and a stored one
type distanceFunc func(query, stored search.Float32s, queryMagnitude, storedMagnitude float32) float32

// resolves a metric name to its distance function
func distanceFor(metric string) (distanceFunc, error) {
	switch metric {
	case MetricL2, "":
		return euclideanDistance, nil
	case MetricCosine:
		return cosineDistance, nil
	default:
		return nil, apperrors.Configuration("storage.metric", fmt.Errorf("unsupported distance metric %q", metric))
	}
}

func euclideanDistance(query, stored search.Float32s, _, _ float32) float32 {
	return query.EuclideanDistance(stored)
}

// 1 - cosine similarity; a zero vector is maximally distant
func cosineDistance(query, stored search.Float32s, queryMagnitude, storedMagnitude float32) float32 {
	if queryMagnitude == 0 || storedMagnitude == 0 {
		return 2
	}

	return query.CosineDistance(stored)
}

// in-process index entry shared by the memory and bolt backends
type entry struct {
	seq       uint64
	text      string
	vector    search.Float32s
	magnitude float32
}

func newEntry(seq uint64, text string, embedding []float32) entry {
	v := search.Float32s(embedding)
	return entry{seq: seq, text: text, vector: v, magnitude: v.Magnitude()}
}

// brute-force k-nearest search, ties broken by insertion order.
// entries whose length differs from the query are not comparable and are skipped.
func nearest(entries []entry, query []float32, k int, distance distanceFunc) []string {
	if len(entries) == 0 {
		return []string{}
	}

	q := search.Float32s(query)
	qm := q.Magnitude()

	type scored struct {
		text     string
		seq      uint64
		distance float32
	}

	scores := make([]scored, 0, len(entries))
	for _, e := range entries {
		if len(e.vector) != len(q) {
			continue
		}

		scores = append(scores, scored{text: e.text, seq: e.seq, distance: distance(q, e.vector, qm, e.magnitude)})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].distance != scores[j].distance {
			return scores[i].distance < scores[j].distance
		}

		return scores[i].seq < scores[j].seq
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]string, k)
	for i := range results {
		results[i] = scores[i].text
	}

	return results
}

func validateUpsert(op, text string, embedding []float32, dimension int) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.Validation(op, "query text must not be empty")
	}

	return validateDimension(op, embedding, dimension)
}

func validateSearch(op string, embedding []float32, k, dimension int) error {
	if k < 1 {
		return apperrors.Validation(op, "k must be at least 1, got %d", k)
	}

	return validateDimension(op, embedding, dimension)
}

func validateDimension(op string, embedding []float32, dimension int) error {
	if dimension > 0 && len(embedding) != dimension {
		return apperrors.Validation(op, "embedding has %d dimensions, expected %d", len(embedding), dimension)
	}

	if len(embedding) == 0 {
		return apperrors.Validation(op, "embedding must not be empty")
	}

	return nil
}
