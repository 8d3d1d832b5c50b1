package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO required)
)

const pgAdminHistoryQuery = `
	SELECT query
	FROM query_history
	WHERE query IS NOT NULL AND query != ''
`

// reads the query tool history from a pgAdmin 4 configuration database
type PgAdminSource struct {
	path string
}

func NewPgAdminSource(path string) *PgAdminSource {
	return &PgAdminSource{path: path}
}

func (s *PgAdminSource) Name() string {
	return "pgadmin:" + s.path
}

func (s *PgAdminSource) Queries(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("pgadmin database not found at %s: %w", s.path, err)
	}

	// read-only so a running pgAdmin keeps ownership of the file
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", s.path))
	if err != nil {
		return nil, fmt.Errorf("opening pgadmin database: %w", err)
	}

	defer db.Close() //nolint:errcheck

	rows, err := db.QueryContext(ctx, pgAdminHistoryQuery)
	if err != nil {
		return nil, fmt.Errorf("reading pgadmin query history: %w", err)
	}

	defer rows.Close() //nolint:errcheck

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scanning pgadmin query history: %w", err)
		}

		queries = append(queries, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading pgadmin query history: %w", err)
	}

	return queries, nil
}
