// Package geo converts user-supplied latitude/longitude text into signed decimal degrees.
//
// Two notations are accepted: signed decimal ("19.1", "-73.25") and degrees/minutes/seconds
// with a hemisphere suffix ("19° 6' 0\" N"). The functions here are pure and do no I/O.
package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Field names the axis a coordinate belongs to. It only affects error messages and the
// hemisphere letter chosen by ToDMS; Normalize itself is symmetric.
type Field string

const (
	Latitude  Field = "latitude"
	Longitude Field = "longitude"
)

var (
	// ErrInvalidCoordinateFormat is matched by every *CoordinateError.
	ErrInvalidCoordinateFormat = errors.New("invalid coordinate format")
	// ErrCoordinateOutOfRange is matched by every *RangeError.
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")
)

// DMS separators may be any ASCII or Unicode space, NBSP included.
var (
	decimalPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	dmsPattern     = regexp.MustCompile(`^(\d{1,3})°[\s\p{Zs}]*(\d{1,2})'[\s\p{Zs}]*(\d{1,2}(\.\d+)?)"[\s\p{Zs}]*([NSEW])$`)
)

// CoordinateError reports a value that matched neither accepted notation.
type CoordinateError struct {
	Field Field
	Raw   string
}

func (e *CoordinateError) Error() string {
	field := e.Field
	if field == "" {
		field = "coordinate"
	}
	return fmt.Sprintf("%s: %q is neither a signed decimal nor a DMS value (e.g. 19° 6' 0\" N)", field, e.Raw)
}

// Is lets errors.Is(err, ErrInvalidCoordinateFormat) match.
func (e *CoordinateError) Is(target error) bool {
	return target == ErrInvalidCoordinateFormat
}

// RangeError reports a well-formed value outside the valid range of its axis.
type RangeError struct {
	Field Field
	Value float64
}

func (e *RangeError) Error() string {
	limit := 90.0
	if e.Field == Longitude {
		limit = 180.0
	}
	return fmt.Sprintf("%s: %v is outside [-%v, %v]", e.Field, e.Value, limit, limit)
}

// Is lets errors.Is(err, ErrCoordinateOutOfRange) match.
func (e *RangeError) Is(target error) bool {
	return target == ErrCoordinateOutOfRange
}

// Normalize parses raw as a signed decimal or a DMS coordinate and returns decimal degrees.
// The failure carries no field name; use NormalizeField when the axis is known.
func Normalize(raw string) (float64, error) {
	return NormalizeField("", raw)
}

// NormalizeField is Normalize with the axis recorded in any returned *CoordinateError.
//
// Degrees, minutes and seconds are not range checked, so "91° 0' 0\" N" yields 91.
func NormalizeField(field Field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)

	if decimalPattern.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &CoordinateError{Field: field, Raw: raw}
		}
		return v, nil
	}

	parts := dmsPattern.FindStringSubmatch(s)
	if parts == nil {
		return 0, &CoordinateError{Field: field, Raw: raw}
	}

	// The pattern guarantees these parse.
	degrees, _ := strconv.ParseFloat(parts[1], 64)
	minutes, _ := strconv.ParseFloat(parts[2], 64)
	seconds, _ := strconv.ParseFloat(parts[3], 64)

	decimal := degrees + minutes/60 + seconds/3600
	switch parts[5] {
	case "S", "W":
		decimal = -decimal
	}
	return decimal, nil
}

// CheckRange returns a *RangeError when value lies outside [-90, 90] for latitude or
// [-180, 180] for longitude.
func CheckRange(field Field, value float64) error {
	limit := 90.0
	if field == Longitude {
		limit = 180.0
	}
	if math.IsNaN(value) || value < -limit || value > limit {
		return &RangeError{Field: field, Value: value}
	}
	return nil
}

// ToDMS renders a decimal degree value in the DMS notation Normalize accepts, with seconds
// rounded to two decimal places. The hemisphere letter is N/S for latitude and E/W otherwise.
func ToDMS(value float64, field Field) string {
	hemisphere := "E"
	if value < 0 {
		hemisphere = "W"
	}
	if field == Latitude {
		hemisphere = "N"
		if value < 0 {
			hemisphere = "S"
		}
	}

	abs := math.Abs(value)
	// Work in hundredths of a second so rounding carries into minutes and degrees.
	total := math.Round(abs * 3600 * 100)
	degrees := math.Floor(total / (3600 * 100))
	total -= degrees * 3600 * 100
	minutes := math.Floor(total / (60 * 100))
	total -= minutes * 60 * 100
	seconds := total / 100

	return fmt.Sprintf("%d° %d' %s\" %s", int(degrees), int(minutes), formatSeconds(seconds), hemisphere)
}

func formatSeconds(s float64) string {
	out := strconv.FormatFloat(s, 'f', 2, 64)
	out = strings.TrimRight(out, "0")
	return strings.TrimSuffix(out, ".")
}
