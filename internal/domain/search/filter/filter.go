// Package filter describes search pre-filters: a conjunction of tag any-of
// matches, tag exclusions and inclusive numeric bounds. Filters narrow results without
// contributing to relevance.
package filter

import (
	"fmt"
	"slices"
)

// MaxConditions bounds the conditions of one expression.
const MaxConditions = 16

// MaxValuesPerMatch caps the size of an any-of value set.
const MaxValuesPerMatch = 256

// Expression is a conjunction: a hit must satisfy every condition.
type Expression struct {
	conds []Condition
}

// NewExpression validates and creates an Expression. Two conditions on the
// same key are rejected since the result would be ambiguous.
func NewExpression(conds ...Condition) (Expression, error) {
	if len(conds) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	seen := make(map[string]struct{}, len(conds))
	for _, c := range conds {
		if c.key == "" {
			return Expression{}, fmt.Errorf("filter condition without key")
		}
		if _, dup := seen[c.key]; dup {
			return Expression{}, fmt.Errorf("duplicate filter on %q", c.key)
		}
		seen[c.key] = struct{}{}
	}
	return Expression{conds: slices.Clone(conds)}, nil
}

// Conditions returns the conditions in the order they were given.
func (e Expression) Conditions() []Condition { return e.conds }

// Get returns the condition on key.
func (e Expression) Get(key string) (Condition, bool) {
	for _, c := range e.conds {
		if c.key == key {
			return c, true
		}
	}
	return Condition{}, false
}

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conds) == 0 }

// Condition is either a tag any-of match, its negation, or a numeric range.
type Condition struct {
	key    string
	values []string
	negate bool
	bounds *Range
}

// NewMatch creates a tag condition matching any of the given values.
// Blank and repeated values are dropped.
func NewMatch(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	clean := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && !slices.Contains(clean, v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	if len(clean) > MaxValuesPerMatch {
		return Condition{}, fmt.Errorf("too many values for key %q (max %d)", key, MaxValuesPerMatch)
	}
	return Condition{key: key, values: clean}, nil
}

// NewExclude creates a tag condition rejecting every given value.
func NewExclude(key string, values ...string) (Condition, error) {
	c, err := NewMatch(key, values...)
	if err != nil {
		return Condition{}, err
	}
	c.negate = true
	return c, nil
}

// NewRange creates an inclusive numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, bounds: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Values returns the accepted tag values.
func (c Condition) Values() []string { return c.values }

// Range returns the numeric bounds, or nil for a tag match.
func (c Condition) Range() *Range { return c.bounds }

// IsMatch reports whether this is a tag match condition.
func (c Condition) IsMatch() bool { return len(c.values) > 0 }

// IsExclude reports whether a tag condition rejects its values.
func (c Condition) IsExclude() bool { return c.negate }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.bounds != nil }

// Accepts reports whether a tag value satisfies a match or exclude condition.
func (c Condition) Accepts(value string) bool {
	return slices.Contains(c.values, value) != c.negate
}

// Range is an inclusive numeric interval; a nil bound is open.
type Range struct {
	min *float64
	max *float64
}

// NewBounds validates and creates a Range. At least one bound is required.
func NewBounds(lo, hi *float64) (Range, error) {
	if lo == nil && hi == nil {
		return Range{}, fmt.Errorf("at least one range bound is required")
	}
	if lo != nil && hi != nil && *lo > *hi {
		return Range{}, fmt.Errorf("lower bound %g is above upper bound %g", *lo, *hi)
	}
	return Range{min: lo, max: hi}, nil
}

// Min returns the lower bound.
func (r Range) Min() *float64 { return r.min }

// Max returns the upper bound.
func (r Range) Max() *float64 { return r.max }

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.min != nil && v < *r.min {
		return false
	}
	if r.max != nil && v > *r.max {
		return false
	}
	return true
}
