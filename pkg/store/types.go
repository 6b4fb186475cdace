package store

// Snippet is a retrieved knowledge excerpt carried from the retrieval
// pipeline into the response composer. Rank is 1-based and follows
// descending score order.
type Snippet struct {
	ChunkID   string  `json:"chunk_id"`
	SourceRef string  `json:"source_ref"`
	Excerpt   string  `json:"excerpt"`
	Score     float32 `json:"score"`
	Rank      int     `json:"rank"`
}

// CachedReply is the value stored in the reply cache for repeated
// (user, module, query) triples.
type CachedReply struct {
	Reply     string   `json:"reply"`
	Module    string   `json:"module"`
	Citations []string `json:"citations,omitempty"`
}
