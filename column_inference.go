package gristle

import (
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the date and time shapes a column value may take. time.Parse
// accepts fractional seconds after a seconds field even when the layout omits them.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006",
	"2.1.2006 15:04:05",
	"2.1.2006",
	"15:04:05",
	"15:04",
}

// isDatetime reports whether value parses with one of timeLayouts.
func isDatetime(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || value[0] < '0' || value[0] > '9' || !strings.ContainsAny(value, "-/.:") {
		return false
	}
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// classify returns the narrowest type value can be read as. Blank values report false.
func classify(value string) (columnType, bool) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return columnTypeText, false
	case isDatetime(value):
		return columnTypeDatetime, true
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return columnTypeInteger, true
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return columnTypeReal, true
	}
	return columnTypeText, true
}

// inferColumnType infers the value type shared by a slice of column values.
// Blank values are ignored. One text value makes the column text, a datetime
// among numbers makes it datetime, and integers widen to real.
func inferColumnType(values []string) columnType {
	inferred := columnTypeText
	seen := false
	for _, value := range values {
		ct, ok := classify(value)
		if !ok {
			continue
		}
		if ct == columnTypeText {
			return columnTypeText
		}
		if !seen || widerThan(ct, inferred) {
			inferred = ct
		}
		seen = true
	}
	return inferred
}

// widerThan orders the non-text types: datetime over real over integer.
func widerThan(a, b columnType) bool {
	rank := func(ct columnType) int {
		switch ct {
		case columnTypeInteger:
			return 1
		case columnTypeReal:
			return 2
		case columnTypeDatetime:
			return 3
		default:
			return 0
		}
	}
	return rank(a) > rank(b)
}

// matchesColumnType reports whether value can be read as ct.
// Numbers are accepted as real values, so "3" matches a real column.
func matchesColumnType(value string, ct columnType) bool {
	value = strings.TrimSpace(value)
	switch ct {
	case columnTypeInteger:
		_, err := strconv.ParseInt(value, 10, 64)
		return err == nil
	case columnTypeReal:
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	case columnTypeDatetime:
		return isDatetime(value)
	default:
		return true
	}
}

// columnValues collects the values of column index from records, skipping records that are too short.
func columnValues(records []Record, index int) []string {
	values := make([]string, 0, len(records))
	for _, record := range records {
		if v, ok := record.Field(index); ok {
			values = append(values, v)
		}
	}
	return values
}
