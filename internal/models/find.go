package models

import "fmt"

const (
	// DefaultMinScore is the similarity floor applied when the caller does
	// not override it.
	DefaultMinScore = 0.7
	// DefaultMaxResults caps how many hits a search returns by default.
	DefaultMaxResults = 10
)

// FindParameters configure one similarity search. Construct them through
// NewFindParameters so the invariants (MinScore > 0, MaxResults > 0) hold
// for every value in circulation.
type FindParameters struct {
	minScore   float64
	maxResults int
}

// FindParametersBuilder accumulates overrides and validates them on Build.
type FindParametersBuilder struct {
	minScore   float64
	maxResults int
}

// NewFindParameters starts a builder preloaded with the defaults.
func NewFindParameters() *FindParametersBuilder {
	return &FindParametersBuilder{
		minScore:   DefaultMinScore,
		maxResults: DefaultMaxResults,
	}
}

// MinScore sets the lowest similarity score a hit may have.
func (b *FindParametersBuilder) MinScore(s float64) *FindParametersBuilder {
	b.minScore = s
	return b
}

// MaxResults sets the maximum number of hits to return.
func (b *FindParametersBuilder) MaxResults(n int) *FindParametersBuilder {
	b.maxResults = n
	return b
}

// Build validates the accumulated values and returns the parameters.
func (b *FindParametersBuilder) Build() (FindParameters, error) {
	if b.minScore <= 0 {
		return FindParameters{}, fmt.Errorf("find parameters: minimum score must be positive, got %v", b.minScore)
	}
	if b.maxResults <= 0 {
		return FindParameters{}, fmt.Errorf("find parameters: maximum results must be positive, got %d", b.maxResults)
	}
	return FindParameters{minScore: b.minScore, maxResults: b.maxResults}, nil
}

// MinScore returns the similarity floor.
func (p FindParameters) MinScore() float64 { return p.minScore }

// MaxResults returns the result cap.
func (p FindParameters) MaxResults() int { return p.maxResults }

// FindResult is one similarity-search hit. Score follows the cosine
// convention (0.0-1.0) but the range is not enforced here.
type FindResult struct {
	text     string
	score    float64
	metadata map[string]string
}

// NewFindResult copies metadata so later mutation of the caller's map cannot
// change the result.
func NewFindResult(text string, score float64, metadata map[string]string) FindResult {
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	return FindResult{text: text, score: score, metadata: md}
}

// Text returns the stored chunk text.
func (r FindResult) Text() string { return r.text }

// Score returns the similarity score.
func (r FindResult) Score() float64 { return r.score }

// Metadata returns a copy of the hit's metadata.
func (r FindResult) Metadata() map[string]string {
	md := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		md[k] = v
	}
	return md
}
