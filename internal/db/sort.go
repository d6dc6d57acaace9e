package db

import (
	"sort"
	"strconv"
	"time"
)

// SortDocuments orders docs by a field, stable for equal values. Numeric strings compare as
// numbers so plant number "9" sorts before "10".
func SortDocuments(docs []*Document, field string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		if descending {
			return lessValue(docs[j].Data[field], docs[i].Data[field])
		}
		return lessValue(docs[i].Data[field], docs[j].Data[field])
	})
}

// NaturalLess compares two strings as numbers when both parse, and lexically otherwise.
// Numbers sort before non-numbers.
func NaturalLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if fa != fb {
			return fa < fb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	}
	return NaturalLess(asString(a), asString(b))
}

func asString(v interface{}) string {
	d := Document{Data: map[string]interface{}{"v": v}}
	return d.String("v")
}
