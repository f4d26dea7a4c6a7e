package gristle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// maxLabelWidth caps the padded width of the value column in frequency output.
const maxLabelWidth = 50

// FrequencyEntry is one distinct value and the number of times it occurred.
type FrequencyEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FrequencyTable counts distinct values up to a fixed number of keys.
// Values are remembered in the order they were first seen, which breaks count ties.
type FrequencyTable struct {
	maxDistinct int
	index       map[string]int
	entries     []FrequencyEntry
	total       int
	truncated   bool
}

// NewFrequencyTable creates a table holding at most maxDistinct distinct values.
// A non-positive maxDistinct selects DefaultMaxDistinct.
func NewFrequencyTable(maxDistinct int) *FrequencyTable {
	if maxDistinct <= 0 {
		maxDistinct = DefaultMaxDistinct
	}
	return &FrequencyTable{
		maxDistinct: maxDistinct,
		index:       make(map[string]int),
	}
}

// Add counts one occurrence of value. It returns false, and marks the table as
// truncated, when value is new and the table already holds maxDistinct values.
// Known values are always counted.
func (t *FrequencyTable) Add(value string) bool {
	if i, ok := t.index[value]; ok {
		t.entries[i].Count++
		t.total++
		return true
	}
	if len(t.entries) >= t.maxDistinct {
		t.truncated = true
		return false
	}
	t.index[value] = len(t.entries)
	t.entries = append(t.entries, FrequencyEntry{Value: value, Count: 1})
	t.total++
	return true
}

// Count returns the number of occurrences recorded for value.
func (t *FrequencyTable) Count(value string) int {
	if i, ok := t.index[value]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct values.
func (t *FrequencyTable) Len() int {
	return len(t.entries)
}

// Total returns the sum of all counts.
func (t *FrequencyTable) Total() int {
	return t.total
}

// Truncated reports whether a distinct value was turned away because of the cap.
func (t *FrequencyTable) Truncated() bool {
	return t.truncated
}

// Entries returns the entries sorted by count, highest first. Equal counts keep first-seen order.
func (t *FrequencyTable) Entries() []FrequencyEntry {
	out := slices.Clone(t.entries)
	slices.SortStableFunc(out, func(a, b FrequencyEntry) int {
		return b.Count - a.Count
	})
	return out
}

// FrequencyStats describes one aggregation pass.
type FrequencyStats struct {
	// Records is the number of data records read, header excluded
	Records int `json:"records"`
	// Counted is the number of records whose column value was counted
	Counted int `json:"counted"`
	// Skipped is the number of records too short to have the column
	Skipped int `json:"skipped"`
	// Truncated is set when scanning stopped at the distinct-value cap
	Truncated bool `json:"truncated"`
}

type frequencyConfig struct {
	maxDistinct int
	skipHeader  bool
	logger      zerolog.Logger
}

// FrequencyOption configures AggregateFrequency.
type FrequencyOption func(*frequencyConfig)

// WithMaxDistinct sets the distinct-value cap.
func WithMaxDistinct(n int) FrequencyOption {
	return func(c *frequencyConfig) {
		c.maxDistinct = n
	}
}

// WithSkipHeader excludes the first record from the counts.
func WithSkipHeader(skip bool) FrequencyOption {
	return func(c *frequencyConfig) {
		c.skipHeader = skip
	}
}

// WithFrequencyLogger sets the logger used for aggregation diagnostics.
func WithFrequencyLogger(logger zerolog.Logger) FrequencyOption {
	return func(c *frequencyConfig) {
		c.logger = logger
	}
}

// AggregateFrequency counts the values of column (0-based) over every record of src.
// Records without the column are skipped. Scanning stops at the first new value
// beyond the distinct-value cap; the table then holds exactly that many values.
func AggregateFrequency(ctx context.Context, src RecordSource, column int, opts ...FrequencyOption) (*FrequencyTable, FrequencyStats, error) {
	cfg := frequencyConfig{maxDistinct: DefaultMaxDistinct, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	table := NewFrequencyTable(cfg.maxDistinct)
	var stats FrequencyStats
	if err := newValidator().validateColumn(column); err != nil {
		return table, stats, err
	}

	first := true
	for {
		if err := ctx.Err(); err != nil {
			return table, stats, err
		}
		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table, stats, err
		}
		if first {
			first = false
			if cfg.skipHeader {
				continue
			}
		}
		stats.Records++

		value, ok := record.Field(column)
		if !ok {
			stats.Skipped++
			continue
		}
		if !table.Add(value) {
			stats.Truncated = true
			cfg.logger.Debug().Int("max_distinct", table.maxDistinct).Msg("distinct value limit reached")
			break
		}
		stats.Counted++
	}

	if stats.Skipped > 0 {
		cfg.logger.Debug().Int("skipped", stats.Skipped).Int("column", column).Msg("records without the column were skipped")
	}
	return table, stats, nil
}

// WriteFrequency writes one line per entry: the value left-aligned and padded to
// the width of the longest value (at most 50 characters) plus four, then "-" and the count.
func WriteFrequency(w io.Writer, entries []FrequencyEntry) error {
	longest := 0
	for _, e := range entries {
		longest = max(longest, utf8.RuneCountInString(e.Value))
	}
	width := min(longest, maxLabelWidth) + 4

	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%-*s    -    %d\n", width, e.Value, e.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}
