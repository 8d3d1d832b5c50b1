package completion

// Request represents the request body for a completion
type Request struct {
	RecentQueries []string `json:"recent_queries"`
	CurrentQuery  string   `json:"current_query"`
}

// Response represents the completion response
type Response struct {
	Suggestion              string `json:"suggestion"`
	SimilarQueriesRetrieved int    `json:"similar_queries_retrieved"`
	Model                   string `json:"model"`
}
