package health

type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type StatsResponse struct {
	Queries        int    `json:"queries"`
	Store          string `json:"store"`
	Metric         string `json:"metric"`
	Dimension      int    `json:"dimension"`
	EmbedderModel  string `json:"embedder_model"`
	GeneratorModel string `json:"generator_model"`
	GeneratorReady bool   `json:"generator_ready"`
	PendingHistory int    `json:"pending_history"`
}
