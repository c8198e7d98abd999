package mode

// Mode tells which backend served a search response.
type Mode string

// Search mode constants.
const (
	// Index means the primary search index served the results.
	Index Mode = "search_index"
	// Fallback means the index was unavailable or empty and the corpus store answered.
	Fallback Mode = "database_fallback"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Index || m == Fallback
}

// IsDegraded reports whether results came from the fallback path.
func (m Mode) IsDegraded() bool { return m == Fallback }
