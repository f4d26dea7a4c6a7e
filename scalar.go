package gristle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ScalarType is the type column values are interpreted as.
type ScalarType int

const (
	// ScalarInteger parses values as 64-bit integers
	ScalarInteger ScalarType = iota
	// ScalarFloat parses values as 64-bit floats
	ScalarFloat
	// ScalarString compares values as strings
	ScalarString
)

// String returns the flag name of the type
func (t ScalarType) String() string {
	switch t {
	case ScalarInteger:
		return "integer"
	case ScalarFloat:
		return "float"
	case ScalarString:
		return "string"
	default:
		return "unknown"
	}
}

// ParseScalarType converts a flag value into a ScalarType.
func ParseScalarType(s string) (ScalarType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int":
		return ScalarInteger, nil
	case "float", "real":
		return ScalarFloat, nil
	case "string", "str":
		return ScalarString, nil
	default:
		return 0, fmt.Errorf("unknown scalar type %q (expected integer, float or string)", s)
	}
}

// ScalarAction is the aggregate computed over a column.
type ScalarAction int

const (
	// ActionMin keeps the smallest value
	ActionMin ScalarAction = iota
	// ActionMax keeps the largest value
	ActionMax
	// ActionSum adds all values
	ActionSum
	// ActionAvg averages all values
	ActionAvg
)

// String returns the flag name of the action
func (a ScalarAction) String() string {
	switch a {
	case ActionMin:
		return "min"
	case ActionMax:
		return "max"
	case ActionSum:
		return "sum"
	case ActionAvg:
		return "avg"
	default:
		return "unknown"
	}
}

// ParseScalarAction converts a flag value into a ScalarAction.
func ParseScalarAction(s string) (ScalarAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min":
		return ActionMin, nil
	case "max":
		return ActionMax, nil
	case "sum":
		return ActionSum, nil
	case "avg", "mean":
		return ActionAvg, nil
	default:
		return 0, fmt.Errorf("unknown scalar action %q (expected min, max, sum or avg)", s)
	}
}

// ScalarAggregator folds column values into a single result.
type ScalarAggregator struct {
	typ    ScalarType
	action ScalarAction

	count   int
	invalid int
	ints    int64
	floats  float64
	str     string
}

// NewScalarAggregator validates the type and action combination.
// Sum and avg are not defined for strings.
func NewScalarAggregator(typ ScalarType, action ScalarAction) (*ScalarAggregator, error) {
	if typ == ScalarString && (action == ActionSum || action == ActionAvg) {
		return nil, fmt.Errorf("action %s is not supported for %s values", action, typ)
	}
	return &ScalarAggregator{typ: typ, action: action}, nil
}

// Add folds value into the aggregate. Blank values are ignored. Values that do
// not parse as the aggregator's type are counted as invalid and ignored.
func (a *ScalarAggregator) Add(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	switch a.typ {
	case ScalarInteger:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			a.invalid++
			return false
		}
		a.addInt(v)
	case ScalarFloat:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			a.invalid++
			return false
		}
		a.addFloat(v)
	case ScalarString:
		a.addString(value)
	}
	a.count++
	return true
}

func (a *ScalarAggregator) addInt(v int64) {
	switch {
	case a.count == 0:
		a.ints = v
	case a.action == ActionMin:
		a.ints = min(a.ints, v)
	case a.action == ActionMax:
		a.ints = max(a.ints, v)
	default:
		a.ints += v
	}
}

func (a *ScalarAggregator) addFloat(v float64) {
	switch {
	case a.count == 0:
		a.floats = v
	case a.action == ActionMin:
		a.floats = min(a.floats, v)
	case a.action == ActionMax:
		a.floats = max(a.floats, v)
	default:
		a.floats += v
	}
}

func (a *ScalarAggregator) addString(v string) {
	switch {
	case a.count == 0:
		a.str = v
	case a.action == ActionMin:
		a.str = min(a.str, v)
	case a.action == ActionMax:
		a.str = max(a.str, v)
	}
}

// Count returns the number of values folded in.
func (a *ScalarAggregator) Count() int {
	return a.count
}

// Invalid returns the number of values that could not be parsed.
func (a *ScalarAggregator) Invalid() int {
	return a.invalid
}

// Result returns the formatted aggregate. It returns ErrNoValues when nothing was added.
func (a *ScalarAggregator) Result() (string, error) {
	if a.count == 0 {
		return "", ErrNoValues
	}
	switch a.typ {
	case ScalarInteger:
		if a.action == ActionAvg {
			return formatFloat(float64(a.ints) / float64(a.count)), nil
		}
		return strconv.FormatInt(a.ints, 10), nil
	case ScalarFloat:
		if a.action == ActionAvg {
			return formatFloat(a.floats / float64(a.count)), nil
		}
		return formatFloat(a.floats), nil
	default:
		return a.str, nil
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type scalarConfig struct {
	skipHeader bool
	logger     zerolog.Logger
}

// ScalarOption configures AggregateScalar.
type ScalarOption func(*scalarConfig)

// WithScalarSkipHeader excludes the first record of the source.
func WithScalarSkipHeader(skip bool) ScalarOption {
	return func(c *scalarConfig) {
		c.skipHeader = skip
	}
}

// WithScalarLogger sets the logger used for aggregation diagnostics.
func WithScalarLogger(logger zerolog.Logger) ScalarOption {
	return func(c *scalarConfig) {
		c.logger = logger
	}
}

// AggregateScalar feeds column (0-based) of every record of src into agg.
// It may be called repeatedly with the same aggregator to combine several inputs.
func AggregateScalar(ctx context.Context, src RecordSource, column int, agg *ScalarAggregator, opts ...ScalarOption) error {
	cfg := scalarConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := newValidator().validateColumn(column); err != nil {
		return err
	}

	invalidBefore := agg.invalid
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if first {
			first = false
			if cfg.skipHeader {
				continue
			}
		}
		if value, ok := record.Field(column); ok {
			agg.Add(value)
		}
	}

	if n := agg.invalid - invalidBefore; n > 0 {
		cfg.logger.Warn().Int("invalid", n).Str("type", agg.typ.String()).Msg("values that could not be parsed were ignored")
	}
	return nil
}
