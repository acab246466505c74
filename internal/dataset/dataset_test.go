package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/pivotree/internal/dataset"
	"github.com/KaramelBytes/pivotree/internal/pivot"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadJSON(t *testing.T) {
	p := writeFile(t, "sales.json", `{
  "columns": [
    {"name": "date", "fieldType": "dimension", "dataType": "date"},
    {"name": "category", "fieldType": "dimension"},
    {"name": "total", "fieldType": "measure", "dataType": "number"}
  ],
  "rows": [["2020-01-15", "A", 10], ["2020-02-20", "A", 5], ["2021-03-01", "B", 7]]
}`)
	ds, err := dataset.Load(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Name != "sales" || len(ds.Columns) != 3 || len(ds.Rows) != 3 {
		t.Fatalf("unexpected dataset: %+v", ds)
	}
	root, err := ds.Model().DateGroupBy(pivot.Year).SetColumnOrder([]string{"date", "category"}).Nest()
	if err != nil {
		t.Fatalf("nest: %v", err)
	}
	if root.Measure("total") != 22 || len(root.Children) != 2 {
		t.Fatalf("unexpected tree: %+v", root)
	}
}

func TestLoadJSONRejectsUnknownFields(t *testing.T) {
	p := writeFile(t, "bad.json", `{"columns": [{"name": "a"}], "rows": [], "extra": 1}`)
	if _, err := dataset.Load(p, dataset.Options{}); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, "regions.yml", `name: regional
columns:
  - name: region
    fieldType: dimension
  - name: revenue
    fieldType: measure
rows:
  - [north, 12.5]
  - [south, 7]
  - [north, 0.5]
`)
	ds, err := dataset.Load(p, dataset.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Name != "regional" {
		t.Errorf("name = %q", ds.Name)
	}
	root, err := ds.Model().SetColumnOrder([]string{"region"}).Nest()
	if err != nil {
		t.Fatalf("nest: %v", err)
	}
	if n, ok := root.Child("north"); !ok || n.Measure("revenue") != 13 {
		t.Fatalf("north = %+v", n)
	}
}

func TestLoadCSVInfersColumns(t *testing.T) {
	p := writeFile(t, "harvest.csv", "date,plot,yield,year\n"+
		"2024-08-10,A1,12.5,2024\n"+
		"2024-08-12,A1,11.5,2024\n"+
		"2025-08-15,B3,,2025\n")
	ds, err := dataset.Load(p, dataset.Options{Dimensions: []string{"Year"}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []struct {
		ft pivot.FieldType
		dt pivot.DataType
	}{
		{pivot.Dimension, pivot.DataTypeDate},
		{pivot.Dimension, pivot.DataTypeString},
		{pivot.Measure, pivot.DataTypeNumber},
		{pivot.Dimension, pivot.DataTypeString},
	}
	for i, w := range want {
		c := ds.Columns[i]
		if c.FieldType != w.ft || c.DataType != w.dt {
			t.Errorf("column %s = %s/%s, want %s/%s", c.Name, c.FieldType, c.DataType, w.ft, w.dt)
		}
	}
	if ds.Rows[0][2] != 12.5 || ds.Rows[2][2] != nil {
		t.Errorf("measure cells = %v, %v", ds.Rows[0][2], ds.Rows[2][2])
	}
	root, err := ds.Model().SetColumnOrder([]string{"plot"}, false).Nest()
	if err != nil {
		t.Fatalf("nest: %v", err)
	}
	if a, _ := root.Child("A1"); a.Measure("yield") != 24 {
		t.Errorf("A1 yield = %v", a.Measure("yield"))
	}
}

func TestLoadCSVSeparators(t *testing.T) {
	p := writeFile(t, "eu.csv", "region;amount\nnorth;1.234,5\nsouth;10,25\n")
	ds, err := dataset.Load(p, dataset.Options{Number: pivot.NumberFormat{Decimal: ',', Thousands: '.'}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows[0][1] != 1234.5 || ds.Rows[1][1] != 10.25 {
		t.Fatalf("rows = %v", ds.Rows)
	}
}

func TestLoadCSVMisalignedRow(t *testing.T) {
	p := writeFile(t, "short.csv", "a,b\n1,2\n3\n")
	_, err := dataset.Load(p, dataset.Options{})
	if !errors.Is(err, pivot.ErrRowShape) {
		t.Fatalf("expected ErrRowShape, got %v", err)
	}
}

func TestLoadUnsupported(t *testing.T) {
	p := writeFile(t, "notes.txt", "hello")
	if _, err := dataset.Load(p, dataset.Options{}); !errors.Is(err, dataset.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		ds   dataset.Dataset
		ok   bool
	}{
		{"ok", dataset.Dataset{Columns: []pivot.Column{{Name: "a"}}, Rows: [][]any{{1}}}, true},
		{"no columns", dataset.Dataset{}, false},
		{"duplicate", dataset.Dataset{Columns: []pivot.Column{{Name: "a"}, {Name: "a"}}}, false},
		{"blank name", dataset.Dataset{Columns: []pivot.Column{{Name: " "}}}, false},
		{"misaligned", dataset.Dataset{Columns: []pivot.Column{{Name: "a"}}, Rows: [][]any{{1, 2}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, ok=%v", err, tt.ok)
			}
		})
	}
}
