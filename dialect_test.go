package gristle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDialect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		delimiter   string
		wantQuoting bool
		wantMulti   bool
	}{
		{name: "Comma", delimiter: ",", wantQuoting: true, wantMulti: false},
		{name: "Tab", delimiter: "\t", wantQuoting: true, wantMulti: false},
		{name: "Double colon", delimiter: "::", wantQuoting: false, wantMulti: true},
		{name: "Non-ASCII single rune", delimiter: "¦", wantQuoting: true, wantMulti: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := NewDialect(tt.delimiter)
			assert.Equal(t, tt.delimiter, d.Delimiter)
			assert.Equal(t, DefaultQuoteChar, d.QuoteChar)
			assert.Equal(t, tt.wantQuoting, d.Quoting)
			assert.Equal(t, tt.wantMulti, d.IsMultiChar())
			assert.Empty(t, d.RecordDelimiter)
			assert.False(t, d.HasHeader)
		})
	}
}

func TestDialect_With(t *testing.T) {
	t.Parallel()

	base := NewDialect(",")
	d := base.WithHeader(true).WithRecordDelimiter("~").WithQuoting(false)

	assert.True(t, d.HasHeader)
	assert.Equal(t, "~", d.RecordDelimiter)
	assert.False(t, d.Quoting)

	// the original value is untouched
	assert.False(t, base.HasHeader)
	assert.Empty(t, base.RecordDelimiter)
	assert.True(t, base.Quoting)
}

func TestDialect_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect Dialect
		wantErr bool
	}{
		{name: "Comma", dialect: NewDialect(","), wantErr: false},
		{name: "Multi-character", dialect: NewDialect("::"), wantErr: false},
		{name: "Record delimiter", dialect: NewDialect("|").WithRecordDelimiter("^^"), wantErr: false},
		{name: "Empty delimiter", dialect: Dialect{QuoteChar: '"'}, wantErr: true},
		{name: "Newline delimiter", dialect: NewDialect("\n"), wantErr: true},
		{name: "Invalid UTF-8", dialect: NewDialect("\xff"), wantErr: true},
		{name: "Record delimiter contains delimiter", dialect: NewDialect("|").WithRecordDelimiter("||"), wantErr: true},
		{name: "Delimiter contains record delimiter", dialect: NewDialect("||").WithRecordDelimiter("|"), wantErr: true},
		{name: "Delimiter ends with record delimiter", dialect: NewDialect("::;").WithRecordDelimiter(";"), wantErr: true},
		{name: "Disjoint multi-character delimiters", dialect: NewDialect("||").WithRecordDelimiter("~~"), wantErr: false},
		{name: "Quote equals delimiter", dialect: Dialect{Delimiter: `"`, QuoteChar: '"', Quoting: true}, wantErr: true},
		{name: "Quote equals delimiter without quoting", dialect: Dialect{Delimiter: `"`, QuoteChar: '"'}, wantErr: false},
		{name: "Newline quote", dialect: Dialect{Delimiter: ",", QuoteChar: '\n', Quoting: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.dialect.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDialect)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDialect_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `delimiter="," quoting=true quote='"' header=true`, NewDialect(",").WithHeader(true).String())
	assert.Equal(t, `delimiter="::" record_delimiter="~" quoting=false header=false`, NewDialect("::").WithRecordDelimiter("~").String())
}

func TestHints(t *testing.T) {
	t.Parallel()

	t.Run("Complete needs delimiter and header", func(t *testing.T) {
		t.Parallel()

		assert.False(t, Hints{}.Complete())
		assert.False(t, Hints{Delimiter: ","}.Complete())
		assert.False(t, Hints{HasHeader: Bool(true)}.Complete())
		assert.True(t, Hints{Delimiter: ",", HasHeader: Bool(false)}.Complete())
	})

	t.Run("Dialect uses defaults for unset attributes", func(t *testing.T) {
		t.Parallel()

		d := Hints{Delimiter: "|"}.Dialect()
		assert.Equal(t, NewDialect("|"), d)
	})

	t.Run("Dialect applies every set attribute", func(t *testing.T) {
		t.Parallel()

		d := Hints{
			Delimiter:       ";",
			RecordDelimiter: "~",
			QuoteChar:       '\'',
			Quoting:         Bool(false),
			HasHeader:       Bool(true),
		}.Dialect()

		want := Dialect{Delimiter: ";", RecordDelimiter: "~", QuoteChar: '\'', Quoting: false, HasHeader: true}
		assert.Equal(t, want, d)
	})

	t.Run("Apply switches quoting with the delimiter length", func(t *testing.T) {
		t.Parallel()

		d := Hints{Delimiter: "::"}.apply(NewDialect(","))
		assert.False(t, d.Quoting)

		d = Hints{Delimiter: "\t"}.apply(NewDialect("::"))
		assert.True(t, d.Quoting)
	})
}

func TestErrorTypes(t *testing.T) {
	t.Parallel()

	t.Run("ParseError unwraps", func(t *testing.T) {
		t.Parallel()

		err := error(&ParseError{Line: 3, Column: 7, Err: ErrUnterminatedQuote})
		assert.ErrorIs(t, err, ErrUnterminatedQuote)
		assert.Equal(t, "gristle: parse error on line 3, column 7: gristle: unterminated quoted field", err.Error())
	})

	t.Run("DetectionError is ErrDetection", func(t *testing.T) {
		t.Parallel()

		err := error(&DetectionError{Reason: "no luck", Lines: 4})
		assert.ErrorIs(t, err, ErrDetection)
		assert.Contains(t, err.Error(), "no luck")

		var de *DetectionError
		assert.True(t, errors.As(err, &de))
		assert.Equal(t, 4, de.Lines)
	})

	t.Run("ErrorContext wraps", func(t *testing.T) {
		t.Parallel()

		err := NewErrorContext("read", "data.csv").WithDetails("line 2").Error(ErrUnterminatedQuote)
		assert.ErrorIs(t, err, ErrUnterminatedQuote)
		assert.Equal(t, "gristle: read failed, file: data.csv, details: line 2: gristle: unterminated quoted field", err.Error())

		assert.Equal(t, "gristle: open failed", NewErrorContext("open", "").Error(nil).Error())
	})
}
