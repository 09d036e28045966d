package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()

	table, err := NewTable("test",
		NewColumn("id", KindNumeric, []Value{Number(1), Number(2), Number(3)}),
		NewColumn("name", KindText, []Value{Text("a"), Null(), Text("c")}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func TestNewTable(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		table := newTestTable(t)
		if table.Name() != "test" {
			t.Errorf("expected name 'test', got %s", table.Name())
		}
		rows, cols := table.Shape()
		if rows != 3 || cols != 2 {
			t.Errorf("Shape() = (%d, %d), want (3, 2)", rows, cols)
		}
		if !table.Header().Equal(NewHeader([]string{"id", "name"})) {
			t.Errorf("unexpected header %v", table.Header())
		}
		if table.NullCount() != 1 {
			t.Errorf("NullCount() = %d, want 1", table.NullCount())
		}
	})

	t.Run("no columns", func(t *testing.T) {
		t.Parallel()

		table, err := NewTable("empty")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.NumRows() != 0 || table.NumColumns() != 0 {
			t.Error("expected empty table")
		}
	})

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()

		_, err := NewTable("bad",
			NewColumn("a", KindNumeric, []Value{Number(1)}),
			NewColumn("b", KindNumeric, []Value{Number(1), Number(2)}),
		)
		if !errors.Is(err, ErrColumnLength) {
			t.Errorf("expected ErrColumnLength, got %v", err)
		}
	})

	t.Run("duplicate names", func(t *testing.T) {
		t.Parallel()

		_, err := NewTable("bad",
			NewColumn("a", KindNumeric, nil),
			NewColumn("a", KindText, nil),
		)
		if !errors.Is(err, ErrDuplicateColumnName) {
			t.Errorf("expected ErrDuplicateColumnName, got %v", err)
		}
	})
}

func TestTable_SelectRows(t *testing.T) {
	t.Parallel()

	table := newTestTable(t)
	selected := table.SelectRows([]int{2, 0})

	if selected.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", selected.NumRows())
	}
	row := selected.Row(0)
	if !row[0].Equal(Number(3)) || !row[1].Equal(Text("c")) {
		t.Errorf("unexpected first row %v", row)
	}
	if table.NumRows() != 3 {
		t.Error("source table must not change")
	}
}

func TestTable_ReplaceColumn(t *testing.T) {
	t.Parallel()

	table := newTestTable(t)

	replaced, err := table.ReplaceColumn(1, NewColumn("name", KindText, []Value{Text("x"), Text("y"), Text("z")}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replaced.NullCount() != 0 {
		t.Errorf("NullCount() = %d, want 0", replaced.NullCount())
	}
	if table.NullCount() != 1 {
		t.Error("source table must not change")
	}
	if replaced.ColumnAt(0) != table.ColumnAt(0) {
		t.Error("untouched columns should be shared")
	}

	if _, err := table.ReplaceColumn(5, NewColumn("x", KindText, nil)); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
	if _, err := table.ReplaceColumn(0, NewColumn("id", KindNumeric, nil)); !errors.Is(err, ErrColumnLength) {
		t.Errorf("expected ErrColumnLength, got %v", err)
	}
}

func TestTable_Rename(t *testing.T) {
	t.Parallel()

	table := newTestTable(t)

	renamed, err := table.Rename([]string{"ID", "Name"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !renamed.Header().Equal(NewHeader([]string{"ID", "Name"})) {
		t.Errorf("unexpected header %v", renamed.Header())
	}
	if _, err := table.Rename([]string{"x", "x"}); !errors.Is(err, ErrDuplicateColumnName) {
		t.Errorf("expected ErrDuplicateColumnName, got %v", err)
	}
	if _, err := table.Rename([]string{"x"}); !errors.Is(err, ErrColumnLength) {
		t.Errorf("expected ErrColumnLength, got %v", err)
	}
}

func TestTable_Equal(t *testing.T) {
	t.Parallel()

	table1 := newTestTable(t)
	table2 := newTestTable(t)
	if !table1.Equal(table2) {
		t.Error("expected tables to be equal")
	}

	table3 := table1.SelectRows([]int{0, 1})
	if table1.Equal(table3) {
		t.Error("expected tables with different rows to be not equal")
	}
}

func TestColumn_Integral(t *testing.T) {
	t.Parallel()

	if !NewColumn("a", KindNumeric, []Value{Number(1), Null(), Number(-3)}).Integral() {
		t.Error("expected whole numbers to be integral")
	}
	if NewColumn("a", KindNumeric, []Value{Number(1.5)}).Integral() {
		t.Error("expected 1.5 to be non integral")
	}
	if NewColumn("a", KindText, []Value{Text("1")}).Integral() {
		t.Error("text column is never integral")
	}
	if NewColumn("a", KindNumeric, []Value{Number(1e19), Number(1)}).Integral() {
		t.Error("expected values beyond int64 to be non integral")
	}
	if NewColumn("a", KindNumeric, []Value{Number(-1 << 63)}).Integral() {
		t.Error("expected the int64 boundary to fall back to floats")
	}
	if !NewColumn("a", KindNumeric, []Value{Number(1 << 62)}).Integral() {
		t.Error("expected 2^62 to be integral")
	}
}

func TestValue(t *testing.T) {
	t.Parallel()

	date := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	stamp := time.Date(2023, 5, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  Value
		output string
		kind   Kind
	}{
		{"null", Null(), "", KindUnknown},
		{"integer", Number(26), "26", KindNumeric},
		{"real", Number(150.5), "150.5", KindNumeric},
		{"text", Text("Lagos"), "Lagos", KindText},
		{"date", Datetime(date), "2023-05-15", KindDatetime},
		{"datetime", Datetime(stamp), "2023-05-15 10:30:00", KindDatetime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.value.String() != tt.output {
				t.Errorf("String() = %q, want %q", tt.value.String(), tt.output)
			}
			if tt.value.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.value.Kind(), tt.kind)
			}
		})
	}
}

func TestValue_Compare(t *testing.T) {
	t.Parallel()

	if Null().Compare(Number(1)) >= 0 {
		t.Error("null must sort first")
	}
	if Number(1).Compare(Number(2)) >= 0 {
		t.Error("expected 1 < 2")
	}
	if Text("Bob").Compare(Text("Charlie")) >= 0 {
		t.Error("expected Bob < Charlie")
	}
	if Number(2).Key() != Number(2.0).Key() {
		t.Error("equal numbers must share a key")
	}
	if Number(2).Key() == Text("2").Key() {
		t.Error("keys must differ across kinds")
	}
	if !Null().Equal(Value{}) {
		t.Error("zero Value must be null")
	}
}

func TestValue_Key(t *testing.T) {
	t.Parallel()

	negZero := Number(math.Copysign(0, -1))
	if !negZero.Equal(Number(0)) || negZero.Key() != Number(0).Key() {
		t.Errorf("-0 and 0 must share a key, got %q and %q", negZero.Key(), Number(0).Key())
	}

	tests := []struct {
		name string
		a, b time.Time
	}{
		{"before 1678", time.Date(1200, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(1200, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"after 2262", time.Date(2500, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2500, 3, 1, 0, 0, 0, 1, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if Datetime(tt.a).Key() == Datetime(tt.b).Key() {
				t.Errorf("distinct datetimes %v and %v share a key", tt.a, tt.b)
			}
			if Datetime(tt.a).Key() != Datetime(tt.a.In(time.FixedZone("X", 3600))).Key() {
				t.Error("the same instant must share a key across zones")
			}
		})
	}
}

func TestTableFromFilePath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"dirty_data.csv":         "dirty_data",
		"/tmp/data/users.csv.gz": "users",
		"logs.ltsv.zst":          "logs",
		"book.xlsx":              "book",
	}
	for in, want := range tests {
		if got := TableFromFilePath(in); got != want {
			t.Errorf("TableFromFilePath(%q) = %q, want %q", in, got, want)
		}
	}
}
