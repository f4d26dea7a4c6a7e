package gristle

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// DefaultCandidates lists the delimiters tried by the detector, in priority order.
// Multi-character candidates follow the single-character ones.
var DefaultCandidates = []string{",", "|", "\t", ";", ":", "||", "::", "~~", "^|"}

// minBufferSize is the smallest buffer bufio accepts without resizing.
const minBufferSize = 16

// Detector infers a Dialect from a bounded sample of a delimited file.
// A Detector holds only configuration and may be shared between goroutines.
type Detector struct {
	sampleLines int
	sampleBytes int
	consistency float64
	candidates  []string
	logger      zerolog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithSampleLines limits the number of lines inspected.
func WithSampleLines(n int) DetectorOption {
	return func(d *Detector) {
		if n > 0 {
			d.sampleLines = n
		}
	}
}

// WithSampleBytes limits the number of bytes inspected.
func WithSampleBytes(n int) DetectorOption {
	return func(d *Detector) {
		if n > 0 {
			d.sampleBytes = max(n, minBufferSize)
		}
	}
}

// WithConsistency sets the share of lines (0,1] that must agree on a delimiter count.
func WithConsistency(threshold float64) DetectorOption {
	return func(d *Detector) {
		if threshold > 0 && threshold <= 1 {
			d.consistency = threshold
		}
	}
}

// WithCandidates replaces the candidate delimiters. Order is priority.
func WithCandidates(candidates ...string) DetectorOption {
	return func(d *Detector) {
		var valid []string
		for _, c := range candidates {
			if c != "" && !strings.ContainsAny(c, newlineChars) {
				valid = append(valid, c)
			}
		}
		if len(valid) > 0 {
			d.candidates = valid
		}
	}
}

// WithDetectorLogger sets the logger used for detection diagnostics.
func WithDetectorLogger(logger zerolog.Logger) DetectorOption {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a Detector with default limits.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		sampleLines: DefaultSampleLines,
		sampleBytes: DefaultSampleBytes,
		consistency: DefaultConsistency,
		candidates:  DefaultCandidates,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SampleBytes returns the byte budget of the sample.
func (d *Detector) SampleBytes() int {
	return d.sampleBytes
}

// DetectReader peeks a sample from r and detects its dialect. The returned reader
// yields the complete stream, sample included, so r itself must not be read again.
// Stdin and other non-seekable streams can be detected this way.
func (d *Detector) DetectReader(r io.Reader, hints Hints) (Dialect, io.Reader, error) {
	br := bufio.NewReaderSize(r, d.sampleBytes)
	sample, err := br.Peek(d.sampleBytes)
	complete := errors.Is(err, io.EOF)
	if err != nil && !complete && !errors.Is(err, bufio.ErrBufferFull) {
		return Dialect{}, br, fmt.Errorf("failed to read sample: %w", err)
	}
	dialect, err := d.detect(sample, complete, hints)
	return dialect, br, err
}

// Detect infers a dialect from sample, which is treated as the start of a larger input.
// Attributes set in hints are taken as given.
func (d *Detector) Detect(sample []byte, hints Hints) (Dialect, error) {
	return d.detect(sample, false, hints)
}

// DetectAll is Detect for a sample that holds the entire input.
func (d *Detector) DetectAll(data []byte, hints Hints) (Dialect, error) {
	return d.detect(data, true, hints)
}

func (d *Detector) detect(sample []byte, complete bool, hints Hints) (Dialect, error) {
	sample = d.boundSample(sample, complete)
	if len(bytes.TrimSpace(sample)) == 0 {
		return Dialect{}, fmt.Errorf("%w: %w", ErrDetection, ErrEmptySample)
	}

	quote := hints.QuoteChar
	if quote == 0 {
		quote = guessQuote(sample, d.candidates)
	}
	lines := logicalLines(sample, quote)
	if len(lines) == 0 {
		return Dialect{}, fmt.Errorf("%w: %w", ErrDetection, ErrEmptySample)
	}

	dialect := Dialect{QuoteChar: quote}
	if hints.Delimiter != "" {
		dialect.Delimiter = hints.Delimiter
	} else {
		delimiter, err := d.detectDelimiter(lines, quote)
		if err != nil {
			return Dialect{}, err
		}
		dialect.Delimiter = delimiter
	}
	dialect.Quoting = utf8.RuneCountInString(dialect.Delimiter) == 1
	dialect.RecordDelimiter = hints.RecordDelimiter
	if hints.Quoting != nil {
		dialect.Quoting = *hints.Quoting
	}

	if hints.HasHeader != nil {
		dialect.HasHeader = *hints.HasHeader
	} else {
		dialect.HasHeader = detectHeader(sample, dialect)
	}

	if err := dialect.Validate(); err != nil {
		return Dialect{}, err
	}
	d.logger.Debug().Str("dialect", dialect.String()).Int("lines", len(lines)).Msg("dialect detected")
	return dialect, nil
}

// boundSample applies the line and byte limits and drops a trailing partial line.
func (d *Detector) boundSample(sample []byte, complete bool) []byte {
	if len(sample) > d.sampleBytes {
		sample = sample[:d.sampleBytes]
		complete = false
	}
	if !complete {
		if i := bytes.LastIndexByte(sample, '\n'); i >= 0 {
			sample = sample[:i+1]
		}
	}
	n := 0
	for i, c := range sample {
		if c != '\n' {
			continue
		}
		n++
		if n == d.sampleLines {
			return sample[:i+1]
		}
	}
	return sample
}

// candidateStats summarises how one delimiter behaves across the sample.
type candidateStats struct {
	delimiter   string
	priority    int
	mode        int
	consistency float64
	owned       bool
}

func (d *Detector) detectDelimiter(lines []string, quote rune) (string, error) {
	var consistent []candidateStats
	for priority, candidate := range d.candidates {
		stats := scoreCandidate(candidate, lines, quote)
		stats.priority = priority
		d.logger.Debug().
			Str("candidate", candidate).
			Int("mode", stats.mode).
			Float64("consistency", stats.consistency).
			Bool("owned", stats.owned).
			Msg("delimiter candidate")
		if stats.mode == 0 || stats.consistency < d.consistency {
			continue
		}
		consistent = append(consistent, stats)
	}

	// a consistent multi-character delimiter wins over the characters it is made
	// of, even when those characters also occur inside field values
	var filtered []candidateStats
	for _, c := range consistent {
		if !shadowedByMulti(c, consistent) {
			filtered = append(filtered, c)
		}
	}

	if len(filtered) == 0 {
		return "", &DetectionError{Reason: "no delimiter candidate is consistent across the sample", Lines: len(lines)}
	}

	best := filtered[0]
	for _, c := range filtered[1:] {
		if c.consistency > best.consistency ||
			(c.consistency == best.consistency && c.owned && !best.owned) {
			best = c
		}
	}
	return best.delimiter, nil
}

func shadowedByMulti(c candidateStats, consistent []candidateStats) bool {
	if utf8.RuneCountInString(c.delimiter) != 1 {
		return false
	}
	for _, other := range consistent {
		if utf8.RuneCountInString(other.delimiter) > 1 && strings.Contains(other.delimiter, c.delimiter) {
			return true
		}
	}
	return false
}

// scoreCandidate counts candidate per line. Single-character candidates are counted
// outside quoted regions; multi-character ones are counted literally.
func scoreCandidate(candidate string, lines []string, quote rune) candidateStats {
	multi := utf8.RuneCountInString(candidate) > 1
	counts := make(map[int]int)
	owned := true
	for _, line := range lines {
		var n int
		if multi {
			n = strings.Count(line, candidate)
			if owned && !ownsRunes(line, candidate, n) {
				owned = false
			}
		} else {
			n = countOutsideQuotes(line, candidate, quote)
		}
		counts[n]++
	}

	mode, freq := 0, 0
	for count, f := range counts {
		if f > freq || (f == freq && count > mode) {
			mode, freq = count, f
		}
	}
	return candidateStats{
		delimiter:   candidate,
		mode:        mode,
		consistency: float64(freq) / float64(len(lines)),
		owned:       owned,
	}
}

// ownsRunes reports whether every occurrence of the token's characters in line
// is accounted for by the n occurrences of the token itself. Owned candidates
// win ties on consistency.
func ownsRunes(line, token string, n int) bool {
	seen := make(map[rune]bool)
	for _, r := range token {
		if seen[r] {
			continue
		}
		seen[r] = true
		if strings.Count(line, string(r)) != n*strings.Count(token, string(r)) {
			return false
		}
	}
	return true
}

func countOutsideQuotes(line, delimiter string, quote rune) int {
	d, _ := utf8.DecodeRuneInString(delimiter)
	inQuotes := false
	n := 0
	for _, r := range line {
		switch {
		case r == quote:
			inQuotes = !inQuotes
		case r == d && !inQuotes:
			n++
		}
	}
	return n
}

// logicalLines splits the sample into non-blank lines, keeping quoted line breaks
// inside their line. If quotes do not balance, physical lines are used instead.
func logicalLines(sample []byte, quote rune) []string {
	text := string(sample)
	var (
		lines    []string
		start    int
		inQuotes bool
	)
	for i, r := range text {
		switch {
		case r == quote:
			inQuotes = !inQuotes
		case r == '\n' && !inQuotes:
			lines = appendLine(lines, text[start:i])
			start = i + 1
		}
	}
	if inQuotes {
		lines = nil
		for _, line := range strings.Split(text, "\n") {
			lines = appendLine(lines, line)
		}
		return lines
	}
	return appendLine(lines, text[start:])
}

func appendLine(lines []string, line string) []string {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return lines
	}
	return append(lines, line)
}

// guessQuote picks the quote character. Double quotes are the default; single
// quotes are chosen only when the sample has no double quotes and single quotes
// sit at the start of a line or right after a candidate delimiter.
func guessQuote(sample []byte, candidates []string) rune {
	if bytes.ContainsRune(sample, '"') {
		return DefaultQuoteChar
	}
	text := string(sample)
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "'") {
			return '\''
		}
		for _, c := range candidates {
			if strings.Contains(line, c+"'") {
				return '\''
			}
		}
	}
	return DefaultQuoteChar
}

// detectHeader votes per column on whether the first record differs from the rest.
// A typed column (integer, real, datetime) votes for a header when the first value
// does not have the column's type. A text column whose values all have the same length
// votes for a header when the first value has a different length.
func detectHeader(sample []byte, dialect Dialect) bool {
	records, err := NewReader(bytes.NewReader(sample), dialect).ReadAll()
	if err != nil {
		// a sample may end inside a quoted field; use what was parsed
		var pe *ParseError
		if !errors.As(err, &pe) {
			return false
		}
	}
	if len(records) < 2 {
		return false
	}

	header, data := records[0], records[1:]
	score := 0
	for i, name := range header {
		values := nonEmpty(columnValues(data, i))
		if len(values) == 0 {
			continue
		}
		ct := inferColumnType(values)
		if ct != columnTypeText {
			if matchesColumnType(name, ct) {
				score--
			} else {
				score++
			}
			continue
		}
		length, constant := constantLength(values)
		if !constant {
			continue
		}
		if utf8.RuneCountInString(name) != length {
			score++
		} else {
			score--
		}
	}
	return score > 0
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func constantLength(values []string) (int, bool) {
	length := utf8.RuneCountInString(values[0])
	for _, v := range values[1:] {
		if utf8.RuneCountInString(v) != length {
			return 0, false
		}
	}
	return length, true
}
