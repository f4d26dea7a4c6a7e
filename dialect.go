package gristle

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default dialect attributes
const (
	// DefaultDelimiter is assumed for input that holds nothing but blank lines
	DefaultDelimiter = ","
	// DefaultQuoteChar is the quote character used when none is detected or supplied
	DefaultQuoteChar = '"'
	// newlineChars are the characters that may never appear inside a field delimiter
	newlineChars = "\r\n"
)

// Dialect describes how a delimited file is laid out.
//
// A Dialect is an immutable value: it is either produced by a Detector or built
// explicitly by the caller, and every Reader and Writer receives its own copy.
type Dialect struct {
	// Delimiter separates fields. It may be longer than one character ("::", "||").
	Delimiter string `json:"delimiter"`
	// RecordDelimiter terminates records. Empty means one record per line.
	RecordDelimiter string `json:"record_delimiter,omitempty"`
	// QuoteChar encloses fields that contain delimiters or newlines.
	QuoteChar rune `json:"quote_char"`
	// Quoting enables quote handling. It only takes effect for single-character delimiters.
	Quoting bool `json:"quoting"`
	// HasHeader reports whether the first record is a header.
	HasHeader bool `json:"has_header"`
}

// NewDialect returns a newline-terminated dialect for delimiter with quoting enabled
// when the delimiter is a single character.
func NewDialect(delimiter string) Dialect {
	return Dialect{
		Delimiter: delimiter,
		QuoteChar: DefaultQuoteChar,
		Quoting:   utf8.RuneCountInString(delimiter) == 1,
	}
}

// WithHeader returns a copy of d with HasHeader set.
func (d Dialect) WithHeader(hasHeader bool) Dialect {
	d.HasHeader = hasHeader
	return d
}

// WithRecordDelimiter returns a copy of d with the record delimiter replaced.
func (d Dialect) WithRecordDelimiter(recordDelimiter string) Dialect {
	d.RecordDelimiter = recordDelimiter
	return d
}

// WithQuoting returns a copy of d with quoting switched on or off.
func (d Dialect) WithQuoting(quoting bool) Dialect {
	d.Quoting = quoting
	return d
}

// IsMultiChar reports whether the field delimiter is longer than one character.
func (d Dialect) IsMultiChar() bool {
	return utf8.RuneCountInString(d.Delimiter) > 1
}

// quoting reports whether quote handling is in effect.
func (d Dialect) quoting() bool {
	return d.Quoting && !d.IsMultiChar() && d.QuoteChar != 0
}

// Validate checks that the dialect can be used for reading and writing.
func (d Dialect) Validate() error {
	if d.Delimiter == "" {
		return fmt.Errorf("%w: empty delimiter", ErrInvalidDialect)
	}
	if !utf8.ValidString(d.Delimiter) {
		return fmt.Errorf("%w: delimiter is not valid UTF-8", ErrInvalidDialect)
	}
	if strings.ContainsAny(d.Delimiter, newlineChars) {
		return fmt.Errorf("%w: delimiter contains a newline", ErrInvalidDialect)
	}
	if d.RecordDelimiter != "" && strings.Contains(d.RecordDelimiter, d.Delimiter) {
		return fmt.Errorf("%w: record delimiter %q contains field delimiter %q", ErrInvalidDialect, d.RecordDelimiter, d.Delimiter)
	}
	if d.RecordDelimiter != "" && strings.Contains(d.Delimiter, d.RecordDelimiter) {
		return fmt.Errorf("%w: field delimiter %q contains record delimiter %q", ErrInvalidDialect, d.Delimiter, d.RecordDelimiter)
	}
	if d.quoting() {
		if d.QuoteChar == utf8.RuneError || strings.ContainsRune(newlineChars, d.QuoteChar) {
			return fmt.Errorf("%w: invalid quote character %q", ErrInvalidDialect, d.QuoteChar)
		}
		if strings.ContainsRune(d.Delimiter, d.QuoteChar) {
			return fmt.Errorf("%w: quote character equals delimiter", ErrInvalidDialect)
		}
	}
	return nil
}

// String returns a short human readable description, e.g. `delimiter="," quoting=true quote='"' header=true`.
func (d Dialect) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "delimiter=%q", d.Delimiter)
	if d.RecordDelimiter != "" {
		fmt.Fprintf(&b, " record_delimiter=%q", d.RecordDelimiter)
	}
	fmt.Fprintf(&b, " quoting=%t", d.quoting())
	if d.quoting() {
		fmt.Fprintf(&b, " quote=%q", d.QuoteChar)
	}
	fmt.Fprintf(&b, " header=%t", d.HasHeader)
	return b.String()
}

// Hints is a partial dialect supplied by the caller.
// Every attribute that is set wins over detection.
type Hints struct {
	Delimiter       string
	RecordDelimiter string
	QuoteChar       rune
	Quoting         *bool
	HasHeader       *bool
}

// Bool returns a pointer to b, for filling optional Hints fields.
func Bool(b bool) *bool {
	return &b
}

// Complete reports whether the hints fully determine a dialect, so detection can be skipped.
func (h Hints) Complete() bool {
	return h.Delimiter != "" && h.HasHeader != nil
}

// Dialect builds the explicit dialect described by the hints. Unset attributes
// take their defaults: no header, default quote char, quoting for single-character delimiters.
func (h Hints) Dialect() Dialect {
	d := NewDialect(h.Delimiter)
	return h.apply(d)
}

// blankInputDialect is the dialect for input whose sample holds only blank lines.
// Hinted attributes still apply. Such input is read rather than skipped, so its
// blank records survive a conversion.
func blankInputDialect(hints Hints) Dialect {
	return hints.apply(NewDialect(DefaultDelimiter))
}

// apply overrides the attributes of d that the hints set.
func (h Hints) apply(d Dialect) Dialect {
	if h.Delimiter != "" {
		if h.Delimiter != d.Delimiter {
			d.Quoting = utf8.RuneCountInString(h.Delimiter) == 1
		}
		d.Delimiter = h.Delimiter
	}
	if h.RecordDelimiter != "" {
		d.RecordDelimiter = h.RecordDelimiter
	}
	if h.QuoteChar != 0 {
		d.QuoteChar = h.QuoteChar
	}
	if h.Quoting != nil {
		d.Quoting = *h.Quoting
	}
	if h.HasHeader != nil {
		d.HasHeader = *h.HasHeader
	}
	return d
}
