package gristle

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"unicode/utf8"
)

const defaultReaderBufferSize = 64 * 1024

// Reader reads records from a delimited stream described by a Dialect.
//
// Field delimiters may be longer than one character. Quoting is honoured only
// for single-character delimiters with Dialect.Quoting set: a quote opens a
// quoted field only at the start of a field, a doubled quote inside a quoted
// field is a literal quote, and quoted content may contain delimiters and
// newlines. Records end at Dialect.RecordDelimiter when it is set, otherwise at
// "\n" or "\r\n". A lone "\r" is ordinary content.
//
// Every call to Read returns a freshly allocated Record.
type Reader struct {
	br      *bufio.Reader
	dialect Dialect

	delim    []byte
	recDelim []byte
	quote    rune
	quoting  bool

	field []byte

	line       int // line of the next rune to be read, 1-based
	col        int // runes consumed on the current line
	recordLine int
}

// NewReader returns a Reader that parses r with dialect d.
// The dialect is not validated here; use Dialect.Validate first for untrusted input.
func NewReader(r io.Reader, d Dialect) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, defaultReaderBufferSize)
	}
	return &Reader{
		br:       br,
		dialect:  d,
		delim:    []byte(d.Delimiter),
		recDelim: []byte(d.RecordDelimiter),
		quote:    d.QuoteChar,
		quoting:  d.quoting(),
		line:     1,
	}
}

// Dialect returns the dialect the reader was created with.
func (r *Reader) Dialect() Dialect {
	return r.dialect
}

// Line returns the 1-based line on which the most recently read record started.
func (r *Reader) Line() int {
	return r.recordLine
}

// Read reads one record. At the end of input it returns nil, io.EOF.
// Input that ends inside a quoted field yields a *ParseError wrapping ErrUnterminatedQuote.
func (r *Reader) Read() (Record, error) {
	r.recordLine = r.line

	var (
		fields     Record
		protected  int // bytes of r.field that came from quoted content
		fieldStart = true
		inQuotes   bool
		quoteLine  int
		quoteCol   int
		sawInput   bool
	)
	r.field = r.field[:0]

	for {
		c, size, err := r.br.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			if inQuotes {
				return nil, &ParseError{Line: quoteLine, Column: quoteCol, Err: ErrUnterminatedQuote}
			}
			if !sawInput {
				return nil, io.EOF
			}
			if len(r.recDelim) > 0 {
				r.field = trimTrailingNewline(r.field, protected)
			}
			return append(fields, string(r.field)), nil
		}
		sawInput = true
		r.col++
		if c == utf8.RuneError && size == 1 {
			// invalid UTF-8 is kept byte for byte
			r.field = append(r.field, r.rawByte())
			fieldStart = false
			continue
		}

		if inQuotes {
			if c == r.quote {
				next, _, perr := r.br.ReadRune()
				if perr == nil && next == r.quote {
					r.col++
					r.field = utf8.AppendRune(r.field, c)
					continue
				}
				if perr == nil {
					_ = r.br.UnreadRune()
				}
				inQuotes = false
				protected = len(r.field)
				continue
			}
			if c == '\n' {
				r.line++
				r.col = 0
			}
			r.field = utf8.AppendRune(r.field, c)
			continue
		}

		if fieldStart && r.quoting && c == r.quote {
			inQuotes = true
			fieldStart = false
			quoteLine, quoteCol = r.line, r.col
			continue
		}
		fieldStart = false

		if len(r.recDelim) == 0 && c == '\n' {
			r.line++
			r.col = 0
			if n := len(r.field); n > protected && r.field[n-1] == '\r' {
				r.field = r.field[:n-1]
			}
			return append(fields, string(r.field)), nil
		}

		r.field = utf8.AppendRune(r.field, c)
		if c == '\n' {
			r.line++
			r.col = 0
		}

		if hasUnprotectedSuffix(r.field, r.recDelim, protected) {
			r.field = r.field[:len(r.field)-len(r.recDelim)]
			fields = append(fields, string(r.field))
			r.skipNewline()
			return fields, nil
		}
		if hasUnprotectedSuffix(r.field, r.delim, protected) {
			r.field = r.field[:len(r.field)-len(r.delim)]
			fields = append(fields, string(r.field))
			r.field = r.field[:0]
			protected = 0
			fieldStart = true
		}
	}
}

// ReadAll reads all remaining records.
func (r *Reader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// All returns an iterator over the remaining records. Iteration stops after the first error.
func (r *Reader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(record, err) || err != nil {
				return
			}
		}
	}
}

// Next implements RecordSource.
func (r *Reader) Next() (Record, error) {
	return r.Read()
}

// rawByte recovers the byte behind a utf8.RuneError of size 1.
func (r *Reader) rawByte() byte {
	if err := r.br.UnreadByte(); err != nil {
		return 0xff
	}
	b, err := r.br.ReadByte()
	if err != nil {
		return 0xff
	}
	return b
}

// skipNewline consumes one "\n" or "\r\n" directly following a record delimiter.
func (r *Reader) skipNewline() {
	b, err := r.br.Peek(1)
	if err != nil {
		return
	}
	switch b[0] {
	case '\n':
		_, _ = r.br.Discard(1)
	case '\r':
		b, err = r.br.Peek(2)
		if err != nil || b[1] != '\n' {
			return
		}
		_, _ = r.br.Discard(2)
	default:
		return
	}
	r.line++
	r.col = 0
}

// hasUnprotectedSuffix reports whether buf ends with sep and the match lies
// entirely after the first protected bytes.
func hasUnprotectedSuffix(buf, sep []byte, protected int) bool {
	if len(sep) == 0 || len(buf)-protected < len(sep) {
		return false
	}
	return bytes.HasSuffix(buf, sep)
}

func trimTrailingNewline(buf []byte, protected int) []byte {
	if n := len(buf); n > protected && buf[n-1] == '\n' {
		buf = buf[:n-1]
		if n := len(buf); n > protected && buf[n-1] == '\r' {
			buf = buf[:n-1]
		}
	}
	return buf
}

// RecordSource yields records one at a time and returns io.EOF when exhausted.
// Reader and the xlsx/parquet sources implement it.
type RecordSource interface {
	Next() (Record, error)
}

// sliceSource serves records from memory.
type sliceSource struct {
	records []Record
	pos     int
}

// NewSliceSource returns a RecordSource over records.
func NewSliceSource(records []Record) RecordSource {
	return &sliceSource{records: records}
}

func (s *sliceSource) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	record := s.records[s.pos]
	s.pos++
	out := make(Record, len(record))
	copy(out, record)
	return out, nil
}

// describeParseError adds the source path to a parse error, keeping the chain intact.
func describeParseError(path string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return NewErrorContext("read", path).WithDetails(fmt.Sprintf("line %d", pe.Line)).Error(err)
	}
	return err
}
