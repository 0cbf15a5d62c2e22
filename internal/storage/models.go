package storage

// SearchResult is one cached poster lookup.
type SearchResult struct {
	Topic     string
	Query     string // normalized query text
	PosterURL string
	CachedAt  int64 // Unix timestamp
}
