package gristle

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var errNilWriter = errors.New("gristle: writer destination cannot be nil")

// Writer emits records in a Dialect.
//
// Fields are joined with the delimiter; the record delimiter, when set, follows the
// last field and every record ends with "\n". With a single-character delimiter and
// quoting enabled, fields containing the delimiter, the quote character, the record
// delimiter or a line break are quoted and inner quotes are doubled. Multi-character
// delimiters are written without any quoting, so a field that contains the delimiter
// cannot be read back unchanged.
//
// Each record is flushed to the destination before Write returns.
type Writer struct {
	dst     *bufio.Writer
	dialect Dialect
	quoting bool
	err     error
}

// NewWriter returns a Writer that writes records in dialect d to w.
func NewWriter(w io.Writer, d Dialect) *Writer {
	if w == nil {
		panic(errNilWriter.Error())
	}
	return &Writer{
		dst:     bufio.NewWriter(w),
		dialect: d,
		quoting: d.quoting(),
	}
}

// Write emits a single record.
func (w *Writer) Write(record []string) error {
	if w.err != nil {
		return w.err
	}
	for i, field := range record {
		if i > 0 {
			if _, err := w.dst.WriteString(w.dialect.Delimiter); err != nil {
				w.err = err
				return err
			}
		}
		if err := w.writeField(field); err != nil {
			w.err = err
			return err
		}
	}
	if w.dialect.RecordDelimiter != "" {
		if _, err := w.dst.WriteString(w.dialect.RecordDelimiter); err != nil {
			w.err = err
			return err
		}
	}
	if err := w.dst.WriteByte('\n'); err != nil {
		w.err = err
		return err
	}
	return w.Flush()
}

// WriteAll writes records and flushes.
func (w *Writer) WriteAll(records []Record) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the destination.
func (w *Writer) Flush() error {
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports any error that occurred during a previous Write or Flush.
func (w *Writer) Error() error {
	return w.err
}

func (w *Writer) writeField(field string) error {
	if !w.quoting || !w.fieldNeedsQuote(field) {
		_, err := w.dst.WriteString(field)
		return err
	}

	quote := w.dialect.QuoteChar
	if _, err := w.dst.WriteRune(quote); err != nil {
		return err
	}
	for _, c := range field {
		if c == quote {
			if _, err := w.dst.WriteRune(quote); err != nil {
				return err
			}
		}
		if _, err := w.dst.WriteRune(c); err != nil {
			return err
		}
	}
	_, err := w.dst.WriteRune(quote)
	return err
}

func (w *Writer) fieldNeedsQuote(field string) bool {
	if field == "" {
		return false
	}
	if strings.ContainsAny(field, newlineChars) ||
		strings.ContainsRune(field, w.dialect.QuoteChar) ||
		strings.Contains(field, w.dialect.Delimiter) {
		return true
	}
	return w.dialect.RecordDelimiter != "" && strings.Contains(field, w.dialect.RecordDelimiter)
}
