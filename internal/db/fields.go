package db

import (
	"strconv"
	"time"
)

// The readers below convert loosely typed document values. Firestore returns int64 or
// float64 for numbers depending on how they were written, and older documents written by
// the web client stored numbers and flags as strings.

// String returns the field as a string, formatting numbers.
func (d *Document) String(field string) string {
	switch v := d.Data[field].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// Float returns the field as a float64, parsing strings.
func (d *Document) Float(field string) float64 {
	switch v := d.Data[field].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return 0
}

// Bool returns the field as a bool. The strings "true", "yes" and "1" are true.
func (d *Document) Bool(field string) bool {
	switch v := d.Data[field].(type) {
	case bool:
		return v
	case string:
		switch v {
		case "true", "yes", "Yes", "1":
			return true
		}
	}
	return false
}

// Time returns the field as a time, or the zero time.
func (d *Document) Time(field string) time.Time {
	switch v := d.Data[field].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}
