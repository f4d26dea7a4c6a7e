package gristle

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// ConvertStats describes a conversion pass.
type ConvertStats struct {
	// Input is the dialect the input was read with
	Input Dialect `json:"input"`
	// Output is the dialect the output was written with
	Output Dialect `json:"output"`
	// Records is the number of records read, header included
	Records int `json:"records"`
	// Written is the number of records written
	Written int `json:"written"`
	// HeaderDropped is set when an input header was left out of the output
	HeaderDropped bool `json:"header_dropped"`
}

// Convert reads delimited records from in and writes them to out in the output
// dialect described by opts. The input dialect is detected from a sample of in
// unless the hints fix it. Empty input produces empty output and no error; input
// made only of blank lines is copied as blank records.
func Convert(ctx context.Context, in io.Reader, out io.Writer, opts ConvertOptions) (ConvertStats, error) {
	hints := opts.Hints
	if err := newValidator().validateHints(hints); err != nil {
		return ConvertStats{}, err
	}
	if hints.Complete() {
		dialect := hints.Dialect()
		return ConvertRecords(ctx, NewReader(in, dialect), dialect, out, opts)
	}

	detector := opts.Detector
	if detector == nil {
		detector = NewDetector(WithDetectorLogger(opts.Logger))
	}
	dialect, r, err := detector.DetectReader(in, hints)
	if errors.Is(err, ErrEmptySample) {
		dialect = blankInputDialect(hints)
		opts.Logger.Debug().Str("dialect", dialect.String()).Msg("blank input, nothing to detect")
		return ConvertRecords(ctx, NewReader(r, dialect), dialect, out, opts)
	}
	if err != nil {
		return ConvertStats{}, err
	}
	return ConvertRecords(ctx, NewReader(r, dialect), dialect, out, opts)
}

// ConvertRecords writes every record of src, read in dialect in, to out.
// A header record is dropped unless opts.KeepHeader is set.
func ConvertRecords(ctx context.Context, src RecordSource, in Dialect, out io.Writer, opts ConvertOptions) (ConvertStats, error) {
	outDialect := opts.outputDialect(in)
	stats := ConvertStats{Input: in, Output: outDialect}
	if outDialect.Delimiter == "" {
		// only an empty source can be converted without knowing a delimiter
		if _, err := src.Next(); errors.Is(err, io.EOF) {
			return stats, nil
		}
		return stats, fmt.Errorf("%w: no output delimiter", ErrInvalidDialect)
	}
	if err := outDialect.Validate(); err != nil {
		return stats, fmt.Errorf("invalid output dialect: %w", err)
	}

	w := NewWriter(out, outDialect)
	dropHeader := in.HasHeader && !opts.KeepHeader

	var err error
	if opts.Pipelined {
		err = convertPipelined(ctx, src, w, dropHeader, opts.QueueSize, &stats)
	} else {
		err = convertSequential(ctx, src, w, dropHeader, &stats)
	}
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}

	opts.Logger.Debug().
		Int("records", stats.Records).
		Int("written", stats.Written).
		Bool("header_dropped", stats.HeaderDropped).
		Msg("conversion finished")
	return stats, err
}

func convertSequential(ctx context.Context, src RecordSource, w *Writer, dropHeader bool, stats *ConvertStats) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		stats.Records++
		if dropHeader && stats.Records == 1 {
			stats.HeaderDropped = true
			continue
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", stats.Records, err)
		}
		stats.Written++
	}
}

// convertPipelined reads in one goroutine and writes in another, connected by a
// bounded channel. There is a single producer and a single consumer, so output
// order equals input order.
func convertPipelined(ctx context.Context, src RecordSource, w *Writer, dropHeader bool, queueSize QueueSize, stats *ConvertStats) error {
	if !queueSize.IsValid() {
		queueSize = NewQueueSize(DefaultQueueSize)
	}
	g, gctx := errgroup.WithContext(ctx)
	records := make(chan Record, queueSize.Int())

	var read int
	g.Go(func() error {
		defer close(records)
		for {
			if err := gctx.Err(); err != nil {
				return err
			}
			record, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			read++
			if dropHeader && read == 1 {
				continue
			}
			select {
			case records <- record:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	var written int
	g.Go(func() error {
		for record := range records {
			if err := w.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", written+1, err)
			}
			written++
		}
		return nil
	})

	err := g.Wait()
	stats.Records = read
	stats.Written = written
	stats.HeaderDropped = dropHeader && read > 0
	return err
}
