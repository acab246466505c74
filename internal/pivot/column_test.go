package pivot

import "testing"

func TestLabelFromField(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"/catalog/sales/Revenue", "Revenue"},
		{"/catalog/sales:Revenue", "sales:"},
		{"a/b:c", "b:"},
		{"plain", "plain"},
		{":leading", ":leading"},
		{"", ""},
		{"trailing/", ""},
	}
	for _, tt := range tests {
		if got := LabelFromField(tt.field); got != tt.want {
			t.Errorf("LabelFromField(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestNormalizeColumns(t *testing.T) {
	in := []Column{
		{Name: "date", Field: "/sales/order_date", FieldType: Dimension, DataType: DataTypeDate},
		{Name: "category", Field: "/sales/category", FieldType: Dimension, DataType: DataTypeString, Label: "Category"},
		{Name: "total", Field: "/sales/total", FieldType: Measure, DataType: DataTypeNumber},
		{Name: "other", Field: "x/y"},
	}
	md := NormalizeColumns(in)

	if len(md.Columns) != 4 || len(md.Names) != 4 {
		t.Fatalf("expected 4 columns, got %d/%d", len(md.Columns), len(md.Names))
	}
	if got := md.Index["date"].Label; got != "order_date" {
		t.Errorf("derived label = %q", got)
	}
	if got := md.Index["category"].Label; got != "Category" {
		t.Errorf("explicit label overwritten: %q", got)
	}
	if got := md.Index["date"].Parser; got != "date" {
		t.Errorf("date parser = %q", got)
	}
	for _, name := range []string{"category", "total", "other"} {
		if got := md.Index[name].Parser; got != PassThrough {
			t.Errorf("%s parser = %q, want %q", name, got, PassThrough)
		}
	}
	if len(md.Measures) != 1 || md.Measures[0] != "total" {
		t.Errorf("measures = %v", md.Measures)
	}
	if !md.IsMeasure("total") || md.IsMeasure("date") || md.IsMeasure("missing") {
		t.Errorf("IsMeasure classification wrong")
	}
	dims := md.Dimensions()
	if len(dims) != 3 || dims[0] != "date" || dims[1] != "category" || dims[2] != "other" {
		t.Errorf("dimensions = %v", dims)
	}
	if in[0].Label != "" || in[0].Parser != "" {
		t.Errorf("input descriptors were mutated: %+v", in[0])
	}
}
