package store

import (
	"sort"
	"strings"
)

// Op is a filter comparison operator.
type Op string

const (
	OpEqual     Op = "=="
	OpGreater   Op = ">"
	OpLessEqual Op = "<="
)

// Filter is one field predicate of a query.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query describes a filtered, ordered, capped listing of one collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
}

// Where appends a field predicate and returns the query for chaining.
func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) matches(doc Document) bool {
	for _, f := range q.Filters {
		got, ok := doc.Fields[f.Field]
		if !ok {
			return false
		}
		cmp, comparable := compareValues(got, f.Value)
		if !comparable {
			return false
		}
		switch f.Op {
		case OpEqual:
			if cmp != 0 {
				return false
			}
		case OpGreater:
			if cmp <= 0 {
				return false
			}
		case OpLessEqual:
			if cmp > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// apply filters, orders and caps the full collection contents.
func (q Query) apply(docs []Document) []Document {
	matched := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if q.matches(doc) {
			matched = append(matched, doc)
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			cmp, ok := compareValues(matched[i].Fields[q.OrderBy], matched[j].Fields[q.OrderBy])
			if !ok {
				return false
			}
			if q.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched
}

// compareValues compares two field values of the same type. The second result
// is false when the values are not mutually comparable.
func compareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case Timestamp:
		bv, ok := b.(Timestamp)
		if !ok {
			return 0, false
		}
		switch {
		case av.before(bv):
			return -1, true
		case bv.before(av):
			return 1, true
		default:
			return 0, true
		}
	case nil:
		if b == nil {
			return 0, true
		}
		return 0, false
	default:
		return 0, false
	}
}
