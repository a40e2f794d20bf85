// Package filter selects samples whose value satisfies a scalar comparison.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soltixdb/trendscope/internal/analytics"
)

// Operator is a scalar comparison operator
type Operator string

const (
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
)

// Predicate compares a sample value against a fixed threshold.
type Predicate struct {
	Op        Operator `json:"op"`
	Threshold float64  `json:"threshold"`
}

// LessThan is shorthand for Predicate{OpLess, threshold}.
func LessThan(threshold float64) Predicate {
	return Predicate{Op: OpLess, Threshold: threshold}
}

// GreaterThan is shorthand for Predicate{OpGreater, threshold}.
func GreaterThan(threshold float64) Predicate {
	return Predicate{Op: OpGreater, Threshold: threshold}
}

// Match reports whether v satisfies the predicate. An unknown operator
// matches nothing.
func (p Predicate) Match(v float64) bool {
	switch p.Op {
	case OpLess:
		return v < p.Threshold
	case OpLessEqual:
		return v <= p.Threshold
	case OpGreater:
		return v > p.Threshold
	case OpGreaterEqual:
		return v >= p.Threshold
	case OpEqual:
		return v == p.Threshold
	case OpNotEqual:
		return v != p.Threshold
	default:
		return false
	}
}

// Validate checks the operator is known.
func (p Predicate) Validate() error {
	switch p.Op {
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpEqual, OpNotEqual:
		return nil
	default:
		return fmt.Errorf("unknown operator %q", string(p.Op))
	}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s", p.Op, strconv.FormatFloat(p.Threshold, 'g', -1, 64))
}

// Parse builds a predicate from text such as "< 20" or ">=3.5".
// Two-character operators are matched before single-character ones.
func Parse(expr string) (Predicate, error) {
	s := strings.TrimSpace(expr)
	ops := []Operator{OpLessEqual, OpGreaterEqual, OpEqual, OpNotEqual, OpLess, OpGreater}

	for _, op := range ops {
		rest, ok := strings.CutPrefix(s, string(op))
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		threshold, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return Predicate{}, fmt.Errorf("invalid threshold in %q: %w", expr, err)
		}
		return Predicate{Op: op, Threshold: threshold}, nil
	}

	return Predicate{}, fmt.Errorf("invalid predicate %q: expected one of <, <=, >, >=, ==, != followed by a number", expr)
}

// Indices returns the positions of samples matching the predicate.
func Indices(series analytics.Series, pred Predicate) []int {
	indices := []int{}
	for i, s := range series {
		if pred.Match(s.Value) {
			indices = append(indices, i)
		}
	}
	return indices
}

// ByValue returns the matching samples in series order. No match yields an
// empty, non-nil series.
func ByValue(series analytics.Series, pred Predicate) analytics.Series {
	return series.Pick(Indices(series, pred))
}
