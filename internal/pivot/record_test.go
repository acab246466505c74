package pivot

import (
	"errors"
	"testing"
	"time"
)

func salesColumns() []Column {
	return []Column{
		{Name: "date", Field: "/sales/date", FieldType: Dimension, DataType: DataTypeDate},
		{Name: "category", Field: "/sales/category", FieldType: Dimension, DataType: DataTypeString},
		{Name: "total", Field: "/sales/total", FieldType: Measure, DataType: DataTypeNumber},
	}
}

func salesRows() [][]any {
	return [][]any{
		{"2020-01-15", "A", 10},
		{"2020-02-20", "A", 5},
		{"2021-03-01", "B", 7},
	}
}

func TestIndexRows(t *testing.T) {
	md := NormalizeColumns(salesColumns())
	recs, err := IndexRows(salesRows(), md)
	if err != nil {
		t.Fatalf("IndexRows: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	r := recs[0]
	if r.Raw("date") != "2020-01-15" || r.Raw("category") != "A" || r.Raw("total") != 10 {
		t.Fatalf("raw values not preserved: %v", r.Map())
	}
	dp, ok := r.Parsed("date").(DateParts)
	if !ok {
		t.Fatalf("date not parsed: %#v", r.Parsed("date"))
	}
	want := DateParts{Date: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), Year: "2020", Month: "0", YearMonth: "20200"}
	if dp != want {
		t.Errorf("parsed date = %+v, want %+v", dp, want)
	}
	if r.Parsed("category") != "A" || r.Parsed("total") != 10 {
		t.Errorf("pass-through parse changed values: %v", r.Map())
	}
	if v, ok := r.Get("date_parsed"); !ok || v.(DateParts).Year != "2020" {
		t.Errorf("Get(date_parsed) = %v, %v", v, ok)
	}
	if _, ok := r.Get("nope"); ok {
		t.Errorf("Get(nope) should miss")
	}
}

func TestIndexRowsRejectsMisalignedRows(t *testing.T) {
	md := NormalizeColumns(salesColumns())
	rows := [][]any{
		{"2020-01-15", "A", 10},
		{"2020-02-20", "A"},
	}
	_, err := IndexRows(rows, md)
	if !errors.Is(err, ErrRowShape) {
		t.Fatalf("expected ErrRowShape, got %v", err)
	}
	var rse *RowShapeError
	if !errors.As(err, &rse) {
		t.Fatalf("expected *RowShapeError, got %T", err)
	}
	if rse.Row != 1 || rse.Expected != 3 || rse.Actual != 2 {
		t.Errorf("unexpected shape error: %+v", rse)
	}
}

func TestIndexRowsIdempotent(t *testing.T) {
	md := NormalizeColumns(salesColumns())
	a, err := IndexRows(salesRows(), md)
	if err != nil {
		t.Fatal(err)
	}
	b, err := IndexRows(salesRows(), md)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		am, bm := a[i].Map(), b[i].Map()
		if len(am) != len(bm) {
			t.Fatalf("record %d differs in size", i)
		}
		for k, v := range am {
			if bm[k] != v {
				t.Errorf("record %d key %s: %v != %v", i, k, v, bm[k])
			}
		}
	}
}

func TestIndexRowsWithoutMetadata(t *testing.T) {
	if _, err := IndexRows(salesRows(), nil); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want DateParts
	}{
		{"iso date", "2021-12-03", DateParts{Year: "2021", Month: "11", YearMonth: "202111"}},
		{"rfc3339", "2019-07-04T10:00:00Z", DateParts{Year: "2019", Month: "6", YearMonth: "20196"}},
		{"time value", time.Date(2018, time.March, 9, 0, 0, 0, 0, time.UTC), DateParts{Year: "2018", Month: "2", YearMonth: "20182"}},
		{"epoch millis", float64(time.Date(2022, time.May, 1, 0, 0, 0, 0, time.UTC).UnixMilli()), DateParts{Year: "2022", Month: "4", YearMonth: "20224"}},
		{"garbage", "not a date", DateParts{}},
		{"nil", nil, DateParts{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.raw)
			if got.Year != tt.want.Year || got.Month != tt.want.Month || got.YearMonth != tt.want.YearMonth {
				t.Errorf("ParseDate(%v) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNumberFormatParseNumber(t *testing.T) {
	tests := []struct {
		nf   NumberFormat
		in   any
		want float64
		ok   bool
	}{
		{NumberFormat{}, "12.5", 12.5, true},
		{NumberFormat{}, 3, 3, true},
		{NumberFormat{}, "1,000", 0, false},
		{NumberFormat{Decimal: ',', Thousands: '.'}, "1.234,5", 1234.5, true},
		{NumberFormat{Thousands: ','}, "1,000", 1000, true},
		{NumberFormat{Decimal: ',', Thousands: ' '}, "2 500,25", 2500.25, true},
		{NumberFormat{}, "", 0, false},
		{NumberFormat{}, nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.nf.ParseNumber(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("%+v.ParseNumber(%v) = %v, %v; want %v, %v", tt.nf, tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
