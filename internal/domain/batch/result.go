// Package batch reports per-product outcomes of bulk index writes.
package batch

// Outcome is the result of writing one product document.
type Outcome struct {
	Key string
	SKU string
	Err error
}

// Failed reports whether the document was not written.
func (o Outcome) Failed() bool { return o.Err != nil }

// Tally accumulates outcomes across chunks. FirstErr keeps the earliest
// failure seen.
type Tally struct {
	Indexed  int
	Failed   int
	FirstErr error
}

// Add counts outcomes into the tally.
func (t *Tally) Add(outcomes ...Outcome) {
	for _, o := range outcomes {
		if !o.Failed() {
			t.Indexed++
			continue
		}
		t.Failed++
		if t.FirstErr == nil {
			t.FirstErr = o.Err
		}
	}
}

// Count tallies a slice of outcomes.
func Count(outcomes []Outcome) Tally {
	var t Tally
	t.Add(outcomes...)
	return t
}
