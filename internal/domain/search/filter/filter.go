// Package filter describes structured predicates over hotel records.
package filter

import "fmt"

// MaxConditions is the maximum number of conditions in one expression.
const MaxConditions = 32

// Record is the view of a candidate a predicate is evaluated against.
type Record interface {
	Text(field string) (string, bool)
	Number(field string) (float64, bool)
}

// Expression is a conjunction of conditions. The zero value matches everything.
type Expression struct {
	conds []Condition
}

// NewExpression validates and creates an AND-combined Expression.
func NewExpression(conds ...Condition) (Expression, error) {
	if len(conds) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return Expression{conds: conds}, nil
}

// Conditions returns the conjuncts in insertion order.
func (e Expression) Conditions() []Condition { return e.conds }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conds) == 0 }

// Match evaluates every condition against rec.
func (e Expression) Match(rec Record) bool {
	for _, c := range e.conds {
		if !c.Match(rec) {
			return false
		}
	}
	return true
}

// Condition is a single clause: either an equality match or a numeric range.
type Condition struct {
	key       string
	equals    string
	rangeExpr *Range
}

// NewEquals creates an exact equality condition on a text field.
func NewEquals(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, equals: value}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Equals returns the equality value.
func (c Condition) Equals() string { return c.equals }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsEquals reports whether this is an equality condition.
func (c Condition) IsEquals() bool { return c.equals != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Match evaluates the condition against rec. A field the record does not expose never matches.
func (c Condition) Match(rec Record) bool {
	if c.rangeExpr != nil {
		v, ok := rec.Number(c.key)
		return ok && c.rangeExpr.Contains(v)
	}
	v, ok := rec.Text(c.key)
	return ok && v == c.equals
}

// Range is a numeric interval with exclusive bounds.
type Range struct {
	gt *float64
	lt *float64
}

// NewRangeFilter validates and creates a Range. At least one bound is required.
func NewRangeFilter(gt, lt *float64) (Range, error) {
	if gt == nil && lt == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	return Range{gt: gt, lt: lt}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// Contains reports whether v lies strictly inside the range.
func (r Range) Contains(v float64) bool {
	if r.gt != nil && v <= *r.gt {
		return false
	}
	if r.lt != nil && v >= *r.lt {
		return false
	}
	return true
}
