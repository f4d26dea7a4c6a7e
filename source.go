package gristle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/hashicorp/go-multierror"
	"github.com/xuri/excelize/v2"
)

// Records opens a record source over the input and returns the dialect it is read with.
//
// Delimited input is detected from a peeked sample unless the hints fix both the
// delimiter and the header flag. Delimited input with nothing but blank lines is
// read with the hinted attributes over a comma dialect, never a detection error.
// XLSX and Parquet inputs are read as tables whose first record is the header.
func (in *Input) Records(ctx context.Context, detector *Detector, hints Hints) (RecordSource, Dialect, error) {
	switch in.Type {
	case FileTypeXLSX:
		src, err := newXLSXSource(in.reader)
		if err != nil {
			return nil, Dialect{}, NewErrorContext("open xlsx", in.Path).Error(err)
		}
		in.addCleanup(src.Close)
		return src, tabularDialect(hints), nil

	case FileTypeParquet:
		src, err := newParquetSource(ctx, in.reader)
		if err != nil {
			return nil, Dialect{}, NewErrorContext("open parquet", in.Path).Error(err)
		}
		in.addCleanup(src.Close)
		return src, tabularDialect(hints), nil

	default:
		if err := newValidator().validateHints(hints); err != nil {
			return nil, Dialect{}, err
		}
		if hints.Complete() {
			dialect := hints.Dialect()
			return &pathSource{src: NewReader(in.Reader(), dialect), path: in.Path}, dialect, nil
		}
		if detector == nil {
			detector = NewDetector()
		}
		dialect, r, err := detector.DetectReader(in.Reader(), hints)
		if errors.Is(err, ErrEmptySample) {
			dialect := blankInputDialect(hints)
			return &pathSource{src: NewReader(r, dialect), path: in.Path}, dialect, nil
		}
		if err != nil {
			return nil, Dialect{}, NewErrorContext("detect", in.String()).Error(err)
		}
		return &pathSource{src: NewReader(r, dialect), path: in.Path}, dialect, nil
	}
}

// pathSource names the input in parse errors.
type pathSource struct {
	src  RecordSource
	path string
}

func (s *pathSource) Next() (Record, error) {
	record, err := s.src.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, describeParseError(s.path, err)
	}
	return record, err
}

// addCleanup runs fn before the existing cleanup when the input is closed.
func (in *Input) addCleanup(fn func() error) {
	prev := in.cleanup
	in.cleanup = func() error {
		var result *multierror.Error
		result = multierror.Append(result, fn())
		if prev != nil {
			result = multierror.Append(result, prev())
		}
		return result.ErrorOrNil()
	}
}

// tabularDialect is the dialect reported for spreadsheet and columnar inputs.
// It only matters as the default layout of converted output.
func tabularDialect(hints Hints) Dialect {
	d := NewDialect(",").WithHeader(true)
	if hints.Delimiter != "" {
		d = NewDialect(hints.Delimiter).WithHeader(true)
	}
	if hints.HasHeader != nil {
		d.HasHeader = *hints.HasHeader
	}
	return d
}

// xlsxSource streams the rows of the first sheet of a workbook.
type xlsxSource struct {
	file    *excelize.File
	rows    *excelize.Rows
	sheet   string
	started bool
}

func newXLSXSource(r io.Reader) (*xlsxSource, error) {
	xlsxFile, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		_ = xlsxFile.Close()
		return nil, errors.New("no sheets found in XLSX file")
	}

	sheetName := sheetNames[0]
	rows, err := xlsxFile.Rows(sheetName)
	if err != nil {
		_ = xlsxFile.Close()
		return nil, fmt.Errorf("failed to open rows iterator for sheet %s: %w", sheetName, err)
	}
	return &xlsxSource{file: xlsxFile, rows: rows, sheet: sheetName}, nil
}

// Next returns the next row. Leading empty rows are skipped.
func (s *xlsxSource) Next() (Record, error) {
	for s.rows.Next() {
		row, err := s.rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row in sheet %s: %w", s.sheet, err)
		}
		if !s.started && len(row) == 0 {
			continue
		}
		s.started = true
		return Record(row), nil
	}
	if err := s.rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet %s: %w", s.sheet, err)
	}
	return nil, io.EOF
}

func (s *xlsxSource) Close() error {
	var result *multierror.Error
	result = multierror.Append(result, s.rows.Close(), s.file.Close())
	return result.ErrorOrNil()
}

// parquetSource serves the schema field names followed by every row of a Parquet file.
type parquetSource struct {
	table      arrow.Table
	reader     *array.TableReader
	header     Record
	headerSent bool
	batch      arrow.Record
	row        int64
}

func newParquetSource(ctx context.Context, r io.Reader) (*parquetSource, error) {
	// Parquet requires random access
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty parquet file")
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader from bytes: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}

	schema := table.Schema()
	header := make(Record, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	return &parquetSource{
		table:  table,
		reader: array.NewTableReader(table, 0),
		header: header,
	}, nil
}

func (s *parquetSource) Next() (Record, error) {
	if !s.headerSent {
		s.headerSent = true
		return append(Record(nil), s.header...), nil
	}
	for {
		if s.batch != nil && s.row < s.batch.NumRows() {
			record := make(Record, s.batch.NumCols())
			for j, col := range s.batch.Columns() {
				record[j] = arrowValueString(col, int(s.row))
			}
			s.row++
			return record, nil
		}
		if !s.reader.Next() {
			if err := s.reader.Err(); err != nil {
				return nil, fmt.Errorf("error reading table records: %w", err)
			}
			return nil, io.EOF
		}
		s.batch = s.reader.Record()
		s.row = 0
	}
}

func (s *parquetSource) Close() error {
	s.reader.Release()
	s.table.Release()
	return nil
}

// arrowValueString renders one cell. Nulls become empty fields.
func arrowValueString(col arrow.Array, i int) string {
	if col.IsNull(i) {
		return ""
	}
	return col.ValueStr(i)
}
