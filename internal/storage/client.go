package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
	"codeberg.org/pgsuggest/server/internal/logger"
)

var _ Backend = (*PostgresStore)(nil)

// pgvector-backed store over a shared connection pool
type PostgresStore struct {
	pool      *pgxpool.Pool
	dimension int
	metric    string
	ownsPool  bool
}

// wraps an existing pool; Close leaves the pool open for its owner
func NewPostgresStore(pool *pgxpool.Pool, opts Options) (*PostgresStore, error) {
	if _, err := distanceFor(opts.Metric); err != nil {
		return nil, err
	}

	metric := opts.Metric
	if metric == "" {
		metric = MetricL2
	}

	return &PostgresStore{pool: pool, dimension: opts.Dimension, metric: metric}, nil
}

// opens a dedicated pool and verifies connectivity
func ConnectPostgres(ctx context.Context, connString string, opts Options) (*PostgresStore, error) {
	pool, err := NewPool(ctx, connString)
	if err != nil {
		return nil, err
	}

	store, err := NewPostgresStore(pool, opts)
	if err != nil {
		pool.Close()
		return nil, err
	}

	store.ownsPool = true

	return store, nil
}

// creates a pgx pool tuned for short request-scoped queries
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, apperrors.Configuration("postgres.connect", fmt.Errorf("failed to parse database url: %w", err))
	}

	// simple protocol keeps the pool usable behind transaction-mode poolers
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperrors.StoreUnavailable("postgres.connect", fmt.Errorf("failed to create connection pool: %w", err))
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.StoreUnavailable("postgres.connect", fmt.Errorf("failed to ping database: %w", err))
	}

	return pool, nil
}

// creates the vector extension, table, and HNSW index if missing
func (s *PostgresStore) Initialize(ctx context.Context) error {
	const op = "postgres.initialize"

	if s.dimension < 1 {
		return apperrors.Configuration(op, fmt.Errorf("embedding dimension must be set"))
	}

	statements := []string{
		createExtensionQuery,
		fmt.Sprintf(createTableQuery, s.dimension),
		fmt.Sprintf(createIndexQuery, s.operatorClass()),
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return apperrors.StoreUnavailable(op, err)
		}
	}

	logger.Info("vector store schema ready", "dimension", s.dimension, "metric", s.metric)

	return nil
}

func (s *PostgresStore) UpsertIfAbsent(ctx context.Context, text string, embedding []float32) (UpsertResult, error) {
	const op = "postgres.upsert"

	if err := validateUpsert(op, text, embedding, s.dimension); err != nil {
		return Inserted, err
	}

	var id int64

	err := s.pool.QueryRow(ctx, insertQuery, text, pgvector.NewVector(embedding)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// the conflict clause suppressed the insert
		return AlreadyPresent, nil
	}

	if err != nil {
		return Inserted, apperrors.StoreUnavailable(op, err)
	}

	return Inserted, nil
}

func (s *PostgresStore) NearestNeighbors(ctx context.Context, embedding []float32, k int) ([]string, error) {
	const op = "postgres.nearest"

	if err := validateSearch(op, embedding, k, s.dimension); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(nearestNeighborsQuery, s.operator()), pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, apperrors.StoreUnavailable(op, err)
	}

	defer rows.Close()

	results := make([]string, 0, k)
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, apperrors.StoreUnavailable(op, err)
		}

		results = append(results, text)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable(op, err)
	}

	return results, nil
}

// returns the total number of stored queries
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int

	if err := s.pool.QueryRow(ctx, countQuery).Scan(&count); err != nil {
		return 0, apperrors.StoreUnavailable("postgres.count", fmt.Errorf("failed to get query count: %w", err))
	}

	return count, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return apperrors.StoreUnavailable("postgres.ping", err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	if s.ownsPool {
		s.pool.Close()
	}

	return nil
}

func (s *PostgresStore) operator() string {
	if s.metric == MetricCosine {
		return "<=>"
	}

	return "<->"
}

func (s *PostgresStore) operatorClass() string {
	if s.metric == MetricCosine {
		return "vector_cosine_ops"
	}

	return "vector_l2_ops"
}
