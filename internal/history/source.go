package history

import "context"

// produces raw historical query strings. results may be unordered and
// contain duplicates or blanks; callers dedup.
type Source interface {
	Name() string
	Queries(ctx context.Context) ([]string, error)
}

// a fixed list of queries, e.g. from a request body or a buffer drain
type StaticSource struct {
	Label string
	Items []string
}

func (s StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}

	return s.Label
}

func (s StaticSource) Queries(_ context.Context) ([]string, error) {
	return s.Items, nil
}
