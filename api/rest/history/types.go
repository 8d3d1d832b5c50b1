package history

// Request represents executed queries reported by a client
type Request struct {
	Queries []string `json:"queries" binding:"required,min=1,max=100"`
}

type Response struct {
	Accepted int `json:"accepted"`
}
