package storage

const (
	createExtensionQuery = `CREATE EXTENSION IF NOT EXISTS vector`

	// %d is the embedding dimension
	createTableQuery = `
		CREATE TABLE IF NOT EXISTS query_embeddings (
			id SERIAL PRIMARY KEY,
			query_text TEXT UNIQUE NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	// %s is the operator class, vector_l2_ops or vector_cosine_ops
	createIndexQuery = `
		CREATE INDEX IF NOT EXISTS query_embeddings_embedding_idx
		ON query_embeddings USING hnsw (embedding %s)
	`

	countQuery = "SELECT COUNT(*) FROM query_embeddings"

	insertQuery = `
		INSERT INTO query_embeddings (query_text, embedding)
		VALUES ($1, $2)
		ON CONFLICT (query_text) DO NOTHING
		RETURNING id
	`

	// %s is the distance operator, <-> for l2 or <=> for cosine.
	// distance must stay the only sort key for the hnsw index to apply.
	nearestNeighborsQuery = `
		SELECT query_text
		FROM query_embeddings
		ORDER BY embedding %s $1
		LIMIT $2
	`
)
