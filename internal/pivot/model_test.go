package pivot

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	json "github.com/goccy/go-json"
)

func TestModelChaining(t *testing.T) {
	m := NewModel(salesRows(), salesColumns())
	if m.DateGroupBy(Year).SetColumnOrder([]string{"date", "category"}).SortBy("total").Asc() != m {
		t.Fatal("setters should return the receiver")
	}
	if err := m.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := m.Config()
	if cfg.Order != Ascending || cfg.SortBy != "total" || cfg.DateGroupBy != Year {
		t.Errorf("config = %+v", cfg)
	}
	c, _ := m.Metadata().Lookup("date")
	if c.Aggregate != Year {
		t.Errorf("date column aggregate = %q", c.Aggregate)
	}
}

func TestModelStickyErrors(t *testing.T) {
	m := NewModel(salesRows(), salesColumns()).
		SetColumnOrder([]string{"region"}).
		SortBy("nope").
		SetColumnOrder(nil)
	_, err := m.Nest()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, target := range []error{ErrUnknownColumn, ErrEmptyColumnOrder} {
		if !errors.Is(err, target) {
			t.Errorf("error %v does not wrap %v", err, target)
		}
	}
	var ce *ColumnError
	if !errors.As(err, &ce) || ce.Column != "region" {
		t.Errorf("expected the first ColumnError to name region, got %v", ce)
	}
}

func TestModelWithoutMetadata(t *testing.T) {
	m := NewModel(salesRows(), nil)
	if _, err := m.Nest(); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
	m = NewModel(nil, nil).SortBy("total")
	if !errors.Is(m.Err(), ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", m.Err())
	}
}

func TestModelMisalignedRows(t *testing.T) {
	m := NewModel([][]any{{"2020-01-01", "A"}}, salesColumns())
	_, err := m.Nest()
	var rse *RowShapeError
	if !errors.As(err, &rse) || rse.Expected != 3 || rse.Actual != 2 {
		t.Fatalf("expected RowShapeError, got %v", err)
	}
}

func TestModelSetColumnMetadataResetsAggregate(t *testing.T) {
	m := NewModel(salesRows(), salesColumns()).SetAggregate(false)
	if m.Aggregating() {
		t.Fatal("aggregate should be off")
	}
	m.DateGroupBy(YearMonth).SetColumnMetadata(salesColumns())
	if !m.Aggregating() {
		t.Error("new metadata should re-enable rollups")
	}
	if c, _ := m.Metadata().Lookup("date"); c.Aggregate != YearMonth {
		t.Errorf("granularity not reapplied: %q", c.Aggregate)
	}
}

func TestModelSetDataReindexes(t *testing.T) {
	m := NewModel(salesRows(), salesColumns())
	first, err := m.Nest()
	if err != nil {
		t.Fatal(err)
	}
	m.SetData([][]any{{"2022-01-01", "C", 1}})
	second, err := m.Nest()
	if err != nil {
		t.Fatal(err)
	}
	if first.Measure("total") != 22 || second.Measure("total") != 1 {
		t.Errorf("totals = %v, %v", first.Measure("total"), second.Measure("total"))
	}
}

func TestModelNestedJSON(t *testing.T) {
	root, err := NewModel(salesRows(), salesColumns()).
		DateGroupBy(Year).
		SetColumnOrder([]string{"date", "category"}).
		Nest()
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), `{"key":"root","total":22,"values":[{"key":"2020","total":15,"date":"2020-01-01T00:00:00Z","values":[`) {
		t.Errorf("unexpected json: %s", b)
	}
}

func TestModelCustomComparator(t *testing.T) {
	byLength := func(a, b any) int {
		return len(keyString(a)) - len(keyString(b))
	}
	rows := [][]any{
		{"2020-01-01", "ccc", 1},
		{"2020-01-01", "a", 1},
		{"2020-01-01", "bb", 1},
	}
	root, err := NewModel(rows, salesColumns()).
		SetColumnOrder([]string{"category"}, false).
		SortBy("category").
		SetComparator(byLength).
		Nest()
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(keys(root.Children), ","); got != "a,bb,ccc" {
		t.Errorf("order = %s", got)
	}
}

func TestModelLogsBuild(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 2})

	if _, err := NewModel(salesRows(), salesColumns(), WithLogger(log)).Nest(); err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, `"msg"="indexed rows"`) || !strings.Contains(joined, `"msg"="built tree"`) {
		t.Errorf("missing log lines: %s", joined)
	}
}

func TestModelUnknownGranularityFallsBackToYear(t *testing.T) {
	var lines []string
	log := funcr.New(func(_, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	m := NewModel(salesRows(), salesColumns(), WithLogger(log)).DateGroupBy("week")
	if m.Err() != nil {
		t.Fatalf("unexpected error: %v", m.Err())
	}
	if g := m.Config().DateGroupBy; g != Year {
		t.Errorf("granularity = %q, want year", g)
	}
	if !strings.Contains(strings.Join(lines, "\n"), "unknown date granularity") {
		t.Errorf("fallback not logged: %v", lines)
	}

	lines = nil
	m.DateGroupBy(" YearMonth ")
	if len(lines) != 0 || m.Config().DateGroupBy != YearMonth {
		t.Errorf("known granularity should not warn: %v %q", lines, m.Config().DateGroupBy)
	}
}
