package gristle

import (
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// CompressionType represents the compression type
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// String returns the string representation of CompressionType
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGZ:
		return "gz"
	case CompressionBZ2:
		return "bz2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	switch c {
	case CompressionNone:
		return ""
	case CompressionGZ:
		return extGZ
	case CompressionBZ2:
		return extBZ2
	case CompressionXZ:
		return extXZ
	case CompressionZSTD:
		return extZSTD
	default:
		return ""
	}
}

// ConvertOptions configures a conversion pass.
//
// Example:
//
//	options := NewConvertOptions().
//		WithHints(Hints{Delimiter: "::"}).
//		WithOutputDelimiter("\t").
//		WithKeepHeader(true)
//
//	stats, err := Convert(ctx, in, out, options)
type ConvertOptions struct {
	// Hints override detected attributes of the input dialect
	Hints Hints
	// OutputDelimiter separates output fields. Empty keeps the input delimiter.
	OutputDelimiter string
	// OutputRecordDelimiter is written after the last field of every record
	OutputRecordDelimiter string
	// OutputQuoting enables minimal quoting for single-character output delimiters.
	// Nil enables it.
	OutputQuoting *bool
	// KeepHeader retains an input header record in the output
	KeepHeader bool
	// Pipelined runs reading and writing in separate goroutines
	Pipelined bool
	// QueueSize bounds the records in flight between the pipelined stages
	QueueSize QueueSize
	// Detector infers the input dialect. Nil uses NewDetector().
	Detector *Detector
	// Logger receives conversion diagnostics
	Logger zerolog.Logger
}

// NewConvertOptions creates default conversion options: detect everything,
// keep the input delimiter, drop the header, run sequentially.
//
// Modify with:
//   - WithHints(): Fix input dialect attributes instead of detecting them
//   - WithOutputDelimiter(), WithOutputRecordDelimiter(): Change the output layout
//   - WithKeepHeader(): Retain the input header
//   - WithPipeline(): Overlap reading and writing
func NewConvertOptions() ConvertOptions {
	return ConvertOptions{
		QueueSize: NewQueueSize(DefaultQueueSize),
		Logger:    zerolog.Nop(),
	}
}

// WithHints sets the input dialect hints.
func (o ConvertOptions) WithHints(hints Hints) ConvertOptions {
	o.Hints = hints
	return o
}

// WithOutputDelimiter sets the output field delimiter.
func (o ConvertOptions) WithOutputDelimiter(delimiter string) ConvertOptions {
	o.OutputDelimiter = delimiter
	return o
}

// WithOutputRecordDelimiter sets the output record delimiter.
func (o ConvertOptions) WithOutputRecordDelimiter(recordDelimiter string) ConvertOptions {
	o.OutputRecordDelimiter = recordDelimiter
	return o
}

// WithOutputQuoting switches output quoting on or off.
func (o ConvertOptions) WithOutputQuoting(quoting bool) ConvertOptions {
	o.OutputQuoting = &quoting
	return o
}

// WithKeepHeader retains or drops the input header record.
func (o ConvertOptions) WithKeepHeader(keep bool) ConvertOptions {
	o.KeepHeader = keep
	return o
}

// WithPipeline enables pipelined mode with a bounded queue of queueSize records.
func (o ConvertOptions) WithPipeline(queueSize int) ConvertOptions {
	o.Pipelined = true
	o.QueueSize = NewQueueSize(queueSize)
	return o
}

// WithDetector sets the detector used for the input.
func (o ConvertOptions) WithDetector(detector *Detector) ConvertOptions {
	o.Detector = detector
	return o
}

// WithLogger sets the logger.
func (o ConvertOptions) WithLogger(logger zerolog.Logger) ConvertOptions {
	o.Logger = logger
	return o
}

// outputDialect derives the output dialect from the input dialect.
func (o ConvertOptions) outputDialect(in Dialect) Dialect {
	delimiter := o.OutputDelimiter
	if delimiter == "" {
		delimiter = in.Delimiter
	}
	quote := in.QuoteChar
	if quote == 0 {
		quote = DefaultQuoteChar
	}
	out := Dialect{
		Delimiter:       delimiter,
		RecordDelimiter: o.OutputRecordDelimiter,
		QuoteChar:       quote,
		Quoting:         utf8.RuneCountInString(delimiter) == 1,
		HasHeader:       in.HasHeader && o.KeepHeader,
	}
	if o.OutputQuoting != nil {
		out.Quoting = *o.OutputQuoting
	}
	return out
}
