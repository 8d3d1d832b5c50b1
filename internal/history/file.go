package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// reads queries from files matching a glob such as "history/**/*.sql".
// .json, .yaml and .yml files hold a list of strings; any other file
// holds one query per line.
type FileSource struct {
	pattern string
}

func NewFileSource(pattern string) *FileSource {
	return &FileSource{pattern: pattern}
}

func (s *FileSource) Name() string {
	return "file:" + s.pattern
}

func (s *FileSource) Queries(ctx context.Context) ([]string, error) {
	matches, err := doublestar.FilepathGlob(s.pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid history pattern %q: %w", s.pattern, err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("no history files match %q", s.pattern)
	}

	sort.Strings(matches)

	var queries []string
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			continue
		}

		items, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		queries = append(queries, items...)
	}

	return queries, nil
}

func readFile(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's glob
	if err != nil {
		return nil, err
	}

	var items []string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, err
		}
	default:
		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			items = append(items, scanner.Text())
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	return items, nil
}
