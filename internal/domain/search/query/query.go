package query

import "fmt"

// Strategy is the matching technique of a single clause.
type Strategy string

// Clause strategies.
const (
	// Term is an exact keyword match on a tag field.
	Term Strategy = "term"
	// Prefix matches typed prefixes (n-gram style) of a tag field.
	Prefix Strategy = "prefix"
	// Fuzzy matches every word with edit-distance tolerance, OR-combined.
	Fuzzy Strategy = "fuzzy"
	// Phrase matches the words in order.
	Phrase Strategy = "phrase"
	// Wildcard matches the text as a substring.
	Wildcard Strategy = "wildcard"
)

// IsValid checks if the strategy is known.
func (s Strategy) IsValid() bool {
	switch s {
	case Term, Prefix, Fuzzy, Phrase, Wildcard:
		return true
	}
	return false
}

// Clause is one disjunct of a multi-clause query with its own boost.
type Clause struct {
	Strategy Strategy
	Field    string
	Text     string
	Boost    float64
}

// Query is a backend-neutral disjunctive query: a document matches if any clause
// matches (minimum should match = 1); its score sums boosted clause scores.
type Query struct {
	text     string
	clauses  []Clause
	minScore float64
}

// New validates and creates a Query.
func New(text string, clauses []Clause, minScore float64) (Query, error) {
	if text == "" {
		return Query{}, fmt.Errorf("query text is required")
	}
	if len(clauses) == 0 {
		return Query{}, fmt.Errorf("at least one clause is required")
	}
	for i, c := range clauses {
		if !c.Strategy.IsValid() {
			return Query{}, fmt.Errorf("clause %d: unknown strategy %q", i, c.Strategy)
		}
		if c.Field == "" {
			return Query{}, fmt.Errorf("clause %d: field is required", i)
		}
		if c.Boost <= 0 {
			return Query{}, fmt.Errorf("clause %d: boost must be positive", i)
		}
	}
	if minScore < 0 {
		return Query{}, fmt.Errorf("min score must be non-negative")
	}
	return Query{text: text, clauses: clauses, minScore: minScore}, nil
}

// Text returns the original query text.
func (q Query) Text() string { return q.text }

// Clauses returns clauses in priority order.
func (q Query) Clauses() []Clause { return q.clauses }

// MinScore returns the score below which hits are discarded.
func (q Query) MinScore() float64 { return q.minScore }
