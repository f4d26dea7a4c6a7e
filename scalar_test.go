package gristle

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeRows builds "0|A|B|C\n" through "<n-1>|A|B|C\n".
func pipeRows(n int) string {
	var b strings.Builder
	for i := range n {
		b.WriteString(strconv.Itoa(i))
		b.WriteString("|A|B|C\n")
	}
	return b.String()
}

func TestParseScalarTypeAndAction(t *testing.T) {
	t.Parallel()

	t.Run("Types", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			in   string
			want ScalarType
		}{
			{"integer", ScalarInteger},
			{"int", ScalarInteger},
			{" Float ", ScalarFloat},
			{"real", ScalarFloat},
			{"string", ScalarString},
		}
		for _, tt := range tests {
			got, err := ParseScalarType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, "unknown", got.String())
		}

		_, err := ParseScalarType("decimal")
		assert.Error(t, err)
	})

	t.Run("Actions", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			in   string
			want ScalarAction
		}{
			{"min", ActionMin},
			{"MAX", ActionMax},
			{"sum", ActionSum},
			{"avg", ActionAvg},
			{"mean", ActionAvg},
		}
		for _, tt := range tests {
			got, err := ParseScalarAction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		}

		_, err := ParseScalarAction("median")
		assert.Error(t, err)
	})
}

func TestScalarAggregator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		typ    ScalarType
		action ScalarAction
		values []string
		want   string
	}{
		{name: "Integer min", typ: ScalarInteger, action: ActionMin, values: []string{"5", "-3", "7"}, want: "-3"},
		{name: "Integer max", typ: ScalarInteger, action: ActionMax, values: []string{"5", "-3", "7"}, want: "7"},
		{name: "Integer sum", typ: ScalarInteger, action: ActionSum, values: []string{"5", "-3", "7"}, want: "9"},
		{name: "Integer avg", typ: ScalarInteger, action: ActionAvg, values: []string{"1", "2"}, want: "1.5"},
		{name: "Float max", typ: ScalarFloat, action: ActionMax, values: []string{"1.5", "2.25", "-4"}, want: "2.25"},
		{name: "Float sum", typ: ScalarFloat, action: ActionSum, values: []string{"0.5", "0.25"}, want: "0.75"},
		{name: "Float avg", typ: ScalarFloat, action: ActionAvg, values: []string{"1", "2", "6"}, want: "3"},
		{name: "String min", typ: ScalarString, action: ActionMin, values: []string{"pear", "apple", "zebra"}, want: "apple"},
		{name: "String max", typ: ScalarString, action: ActionMax, values: []string{"pear", "apple", "zebra"}, want: "zebra"},
		{name: "Blank and invalid values are ignored", typ: ScalarInteger, action: ActionMax, values: []string{"", " 4 ", "n/a", "2"}, want: "4"},
		{name: "Negative values only", typ: ScalarInteger, action: ActionMax, values: []string{"-9", "-2"}, want: "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			agg, err := NewScalarAggregator(tt.typ, tt.action)
			require.NoError(t, err)
			for _, v := range tt.values {
				agg.Add(v)
			}
			got, err := agg.Result()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Counts invalid values", func(t *testing.T) {
		t.Parallel()

		agg, err := NewScalarAggregator(ScalarFloat, ActionMin)
		require.NoError(t, err)
		assert.True(t, agg.Add("1e3"))
		assert.False(t, agg.Add("abc"))
		assert.False(t, agg.Add("  "))
		assert.Equal(t, 1, agg.Count())
		assert.Equal(t, 1, agg.Invalid())
	})

	t.Run("No values", func(t *testing.T) {
		t.Parallel()

		agg, err := NewScalarAggregator(ScalarInteger, ActionMax)
		require.NoError(t, err)
		_, err = agg.Result()
		assert.ErrorIs(t, err, ErrNoValues)
	})

	t.Run("Sum and avg are not defined for strings", func(t *testing.T) {
		t.Parallel()

		_, err := NewScalarAggregator(ScalarString, ActionSum)
		assert.Error(t, err)
		_, err = NewScalarAggregator(ScalarString, ActionAvg)
		assert.Error(t, err)
	})
}

func TestAggregateScalar(t *testing.T) {
	t.Parallel()

	t.Run("Max of the first column", func(t *testing.T) {
		t.Parallel()

		input := pipeRows(100)
		dialect, err := NewDetector().DetectAll([]byte(input), Hints{})
		require.NoError(t, err)
		assert.Equal(t, "|", dialect.Delimiter)
		assert.False(t, dialect.HasHeader)

		agg, err := NewScalarAggregator(ScalarInteger, ActionMax)
		require.NoError(t, err)
		src := NewReader(strings.NewReader(input), dialect)
		require.NoError(t, AggregateScalar(context.Background(), src, 0, agg, WithScalarSkipHeader(dialect.HasHeader)))

		got, err := agg.Result()
		require.NoError(t, err)
		assert.Equal(t, "99", got)
		assert.Equal(t, 100, agg.Count())
	})

	t.Run("Combines several inputs", func(t *testing.T) {
		t.Parallel()

		agg, err := NewScalarAggregator(ScalarInteger, ActionMax)
		require.NoError(t, err)
		for range 2 {
			src := NewReader(strings.NewReader(pipeRows(100)), NewDialect("|"))
			require.NoError(t, AggregateScalar(context.Background(), src, 0, agg))
		}

		got, err := agg.Result()
		require.NoError(t, err)
		assert.Equal(t, "99", got)
		assert.Equal(t, 200, agg.Count())
	})

	t.Run("Empty input contributes nothing", func(t *testing.T) {
		t.Parallel()

		agg, err := NewScalarAggregator(ScalarInteger, ActionMax)
		require.NoError(t, err)
		require.NoError(t, AggregateScalar(context.Background(), NewReader(strings.NewReader(""), NewDialect("|")), 0, agg))
		_, err = agg.Result()
		assert.ErrorIs(t, err, ErrNoValues)

		require.NoError(t, AggregateScalar(context.Background(), NewReader(strings.NewReader(pipeRows(10)), NewDialect("|")), 0, agg))
		got, err := agg.Result()
		require.NoError(t, err)
		assert.Equal(t, "9", got)
	})

	t.Run("Skips the header and short records", func(t *testing.T) {
		t.Parallel()

		agg, err := NewScalarAggregator(ScalarInteger, ActionSum)
		require.NoError(t, err)
		src := NewSliceSource([]Record{{"id", "amount"}, {"1", "10"}, {"2"}, {"3", "5"}})
		require.NoError(t, AggregateScalar(context.Background(), src, 1, agg, WithScalarSkipHeader(true)))

		got, err := agg.Result()
		require.NoError(t, err)
		assert.Equal(t, "15", got)
		assert.Equal(t, 0, agg.Invalid())
	})

	t.Run("Negative column", func(t *testing.T) {
		t.Parallel()

		agg, err := NewScalarAggregator(ScalarInteger, ActionMax)
		require.NoError(t, err)
		assert.ErrorIs(t, AggregateScalar(context.Background(), NewSliceSource(nil), -2, agg), ErrInvalidColumn)
	})
}
