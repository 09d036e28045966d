package fileclean

import (
	"testing"

	"github.com/nao1215/fileclean/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategy_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range Strategies() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Strategy("interpolate").IsValid())
	assert.False(t, Strategy("").IsValid())
}

func TestDetectMissing(t *testing.T) {
	t.Parallel()

	t.Run("ordered by count, ties keep column order", func(t *testing.T) {
		t.Parallel()

		table := newTestTable(t,
			textColumn("city", "a", nil, "c", "d"),
			numericColumn("score", 1, nil, 3, nil),
			numericColumn("id", 1, 2, 3, 4),
			textColumn("name", nil, "b", "c", "d"),
		)

		report := DetectMissing(table)
		assert.Equal(t, MissingReport{
			{Name: "score", Count: 2, Percent: 50},
			{Name: "city", Count: 1, Percent: 25},
			{Name: "name", Count: 1, Percent: 25},
		}, report)
		assert.Equal(t, 4, report.Total())
	})

	t.Run("percentage rounded to two decimals", func(t *testing.T) {
		t.Parallel()

		table := newTestTable(t, numericColumn("x", nil, 2, 3))
		report := DetectMissing(table)
		require.Len(t, report, 1)
		assert.InDelta(t, 33.33, report[0].Percent, 1e-9)
	})

	t.Run("no missing values", func(t *testing.T) {
		t.Parallel()

		report := DetectMissing(newTestTable(t, numericColumn("x", 1, 2)))
		assert.Empty(t, report)
	})

	t.Run("empty table", func(t *testing.T) {
		t.Parallel()

		report := DetectMissing(newTestTable(t))
		assert.Empty(t, report)
		assert.Equal(t, 0, report.Total())
	})
}

func TestMissingReport_lines(t *testing.T) {
	t.Parallel()

	report := MissingReport{{Name: "Purchase_Amount", Count: 3, Percent: 11.11}}
	lines := report.lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "Column          Missing_Count Missing_Percent", lines[0])
	assert.Equal(t, "Purchase_Amount             3           11.11", lines[1])
}

func TestHandleMissing_Smart(t *testing.T) {
	t.Parallel()

	t.Run("numeric column filled with median", func(t *testing.T) {
		t.Parallel()

		table := newTestTable(t, numericColumn("amount", 10, 20, nil, 40))
		j := NewJournal()

		got, result := HandleMissing(table, StrategySmart, DefaultPolicy(), j)

		assert.Equal(t, []string{"10", "20", "20", "40"}, strs(got.ColumnAt(0)))
		assert.Equal(t, 0, got.ColumnAt(0).NullCount())
		require.Len(t, result.Fills, 1)
		assert.Equal(t, Fill{Column: "amount", Method: "median", Value: model.Number(20), Count: 1}, result.Fills[0])
		assert.Contains(t, j.Lines(), "  ✓ Filled 'amount' with median: 20.00")
		assert.True(t, result.Applied)
		assert.Equal(t, 0, result.RowsDropped)
	})

	t.Run("exactly thirty percent missing is dropped", func(t *testing.T) {
		t.Parallel()

		table := newTestTable(t,
			numericColumn("amount", 1, nil, 3, nil, 5, 6, nil, 8, 9, 10),
			numericColumn("id", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
		)

		got, result := HandleMissing(table, StrategySmart, DefaultPolicy(), nil)

		assert.Equal(t, 7, got.NumRows())
		assert.Equal(t, 3, result.RowsDropped)
		assert.Equal(t, []string{"amount"}, result.DroppedFor)
		assert.Equal(t, []string{"1", "3", "5", "6", "8", "9", "10"}, strs(got.ColumnAt(1)))
		assert.Empty(t, result.Fills)
	})

	t.Run("text column filled with mode", func(t *testing.T) {
		t.Parallel()

		table := newTestTable(t, textColumn("city", "Paris", nil, "Rome", "Paris"))
		j := NewJournal()

		got, result := HandleMissing(table, StrategySmart, DefaultPolicy(), j)

		assert.Equal(t, []string{"Paris", "Paris", "Rome", "Paris"}, strs(got.ColumnAt(0)))
		require.Len(t, result.Fills, 1)
		assert.Equal(t, "mode", result.Fills[0].Method)
		assert.Contains(t, j.Lines(), "  ✓ Filled 'city' with mode: Paris")
	})

	t.Run("mode ties pick the smallest value", func(t *testing.T) {
		t.Parallel()

		table := newTestTable(t, textColumn("tag", "b", "a", nil, "b", "a"))
		got, _ := HandleMissing(table, StrategySmart, DefaultPolicy(), nil)
		assert.Equal(t, "a", got.ColumnAt(0).Value(2).String())
	})

	t.Run("text column at fifty percent is dropped", func(t *testing.T) {
		t.Parallel()

		table := newTestTable(t, textColumn("note", "x", nil, nil, "y"))
		got, result := HandleMissing(table, StrategySmart, DefaultPolicy(), nil)
		assert.Equal(t, []string{"x", "y"}, strs(got.ColumnAt(0)))
		assert.Equal(t, 2, result.RowsDropped)
	})

	t.Run("percentages cascade over earlier drops", func(t *testing.T) {
		t.Parallel()

		// b is 40% missing on the input but 66.7% after a drops two rows
		table := newTestTable(t,
			numericColumn("a", nil, nil, 1, 2, 3),
			textColumn("b", "v", "w", nil, nil, "z"),
		)
		j := NewJournal()

		got, result := HandleMissing(table, StrategySmart, DefaultPolicy(), j)

		assert.Equal(t, 1, got.NumRows())
		assert.Equal(t, []string{"3"}, strs(got.ColumnAt(0)))
		assert.Equal(t, []string{"a", "b"}, result.DroppedFor)
		assert.Equal(t, 4, result.RowsDropped)
		assert.Equal(t, "Rows after handling missing values: 1", j.Lines()[j.Len()-1])
	})

	t.Run("filled columns have no nulls", func(t *testing.T) {
		t.Parallel()

		got, result := HandleMissing(loadDirty(t), StrategySmart, DefaultPolicy(), nil)
		require.NotEmpty(t, result.Fills)
		for _, f := range result.Fills {
			c, ok := got.Column(f.Column)
			require.True(t, ok)
			assert.Equal(t, 0, c.NullCount(), f.Column)
		}
		assert.Equal(t, 0, got.NullCount())
	})

	t.Run("thresholds come from the policy", func(t *testing.T) {
		t.Parallel()

		policy := DefaultPolicy()
		policy.NumericFillThreshold = 60
		table := newTestTable(t, numericColumn("a", nil, 2, 4))

		got, result := HandleMissing(table, StrategySmart, policy, nil)
		assert.Equal(t, []string{"3", "2", "4"}, strs(got.ColumnAt(0)))
		assert.Equal(t, 0, result.RowsDropped)
	})
}

func TestHandleMissing_Strategies(t *testing.T) {
	t.Parallel()

	source := func(t *testing.T) *model.Table {
		t.Helper()
		return newTestTable(t,
			numericColumn("n", 1, 2, nil, 6, 1),
			textColumn("s", "x", nil, "y", "x", "z"),
		)
	}

	tests := []struct {
		name     string
		strategy Strategy
		wantN    []string
		wantS    []string
		dropped  int
	}{
		{
			name:     "drop removes every row with a null",
			strategy: StrategyDrop,
			wantN:    []string{"1", "6", "1"},
			wantS:    []string{"x", "x", "z"},
			dropped:  2,
		},
		{
			name:     "fill_mean fills numeric columns only",
			strategy: StrategyFillMean,
			wantN:    []string{"1", "2", "2.5", "6", "1"},
			wantS:    []string{"x", "", "y", "x", "z"},
		},
		{
			name:     "fill_median fills numeric columns only",
			strategy: StrategyFillMedian,
			wantN:    []string{"1", "2", "1.5", "6", "1"},
			wantS:    []string{"x", "", "y", "x", "z"},
		},
		{
			name:     "fill_mode fills non-numeric columns only",
			strategy: StrategyFillMode,
			wantN:    []string{"1", "2", "", "6", "1"},
			wantS:    []string{"x", "x", "y", "x", "z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, result := HandleMissing(source(t), tt.strategy, DefaultPolicy(), nil)
			assert.True(t, result.Applied)
			assert.Equal(t, tt.wantN, strs(got.ColumnAt(0)))
			assert.Equal(t, tt.wantS, strs(got.ColumnAt(1)))
			assert.Equal(t, tt.dropped, result.RowsDropped)
		})
	}
}

func TestHandleMissing_UnknownStrategy(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, numericColumn("n", 1, nil))
	j := NewJournal()

	got, result := HandleMissing(table, Strategy("interpolate"), DefaultPolicy(), j)

	assert.Same(t, table, got)
	assert.False(t, result.Applied)
	assert.Contains(t, j.Lines(), "Unknown strategy: interpolate")
}

func TestHandleMissing_ModeWithoutValues(t *testing.T) {
	t.Parallel()

	table := newTestTable(t,
		model.NewColumn("blank", model.KindUnknown, values(nil, nil)),
		numericColumn("id", 1, 2),
	)

	got, result := HandleMissing(table, StrategyFillMode, DefaultPolicy(), nil)

	col := got.ColumnAt(0)
	assert.Equal(t, model.KindText, col.Kind())
	assert.Equal(t, []string{"Unknown", "Unknown"}, strs(col))
	require.Len(t, result.Fills, 1)
	assert.Equal(t, 2, result.Fills[0].Count)
}

func TestHandleMissing_EmptyTable(t *testing.T) {
	t.Parallel()

	for _, s := range Strategies() {
		empty := newTestTable(t, numericColumn("n"), textColumn("s"))
		got, result := HandleMissing(empty, s, DefaultPolicy(), nil)
		assert.Equal(t, 0, got.NumRows(), s)
		assert.Equal(t, 0, result.RowsDropped, s)
		assert.Empty(t, result.Fills, s)
	}
}

func TestFillColumn_UnknownColumn(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, numericColumn("n", 1, nil))
	j := NewJournal()
	var result MissingResult

	got, ok := fillColumn(table, "absent", "median", model.Number(1), j, &result)

	assert.False(t, ok)
	assert.Same(t, table, got)
	assert.Empty(t, result.Fills)
	assert.Equal(t, []string{"  ✗ Could not fill 'absent': " + ErrUnknownColumn.Error()}, j.Lines())

	got, ok = fillColumn(table, "n", "median", model.Number(1), j, &result)
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "1"}, strs(got.ColumnAt(0)))
	require.Len(t, result.Fills, 1)
	assert.Equal(t, Fill{Column: "n", Method: "median", Value: model.Number(1), Count: 1}, result.Fills[0])
}

func TestMedian(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []float64
		want float64
		ok   bool
	}{
		{name: "odd", in: []float64{40, 10, 20}, want: 20, ok: true},
		{name: "even averages the middle pair", in: []float64{25, 28}, want: 26.5, ok: true},
		{name: "single", in: []float64{7}, want: 7, ok: true},
		{name: "empty", in: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := median(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
