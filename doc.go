// Package gristle provides dialect detection and streaming conversion for
// delimited (CSV-like) text files.
//
// gristle infers how an unknown file is laid out (field delimiter, quoting,
// header) from a bounded sample, then reads and rewrites it record by record.
// Field delimiters may be longer than one character, which the standard
// encoding/csv package cannot handle.
//
// # Features
//
//   - Delimiter and header detection from a sample of at most 100 lines / 64 KiB
//   - Multi-character field delimiters such as "::" or "||"
//   - Optional record delimiters in addition to newlines
//   - Conversion between dialects, sequential or pipelined
//   - Column frequency tables with a bounded number of distinct values
//   - Scalar aggregates (min, max, sum, avg) over one or more inputs
//   - Compressed input and output (gzip, bzip2, xz, zstandard), XLSX and Parquet input
//
// # Basic Usage
//
// Detect a dialect and read records:
//
//	dialect, r, err := gristle.NewDetector().DetectReader(file, gristle.Hints{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for record, err := range gristle.NewReader(r, dialect).All() {
//	    ...
//	}
//
// Convert a file to another delimiter:
//
//	options := gristle.NewConvertOptions().WithOutputDelimiter("\t")
//	stats, err := gristle.Convert(ctx, in, out, options)
//
// # Hints
//
// Every attribute set in Hints wins over detection. When both the delimiter
// and the header flag are given, detection is skipped entirely.
//
// # Quoting
//
// Quoting applies to single-character delimiters only. Fields written with a
// multi-character delimiter are never quoted, so a value that contains the
// delimiter does not survive a round trip.
//
// # Empty Input
//
// Empty input is not an error for conversion or aggregation: it yields no
// records and produces empty output. Input made only of blank lines is read as
// blank records with a comma dialect unless hints say otherwise. Detection alone
// reports ErrEmptySample for both.
package gristle
