package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.SortOrder != "desc" || !c.Aggregate || !c.NestExtras {
		t.Errorf("unexpected pivot defaults: %+v", c)
	}
	if c.OutputFormat != "json" || c.NumberFormat != "raw" || c.CurrencySymbol != "$" {
		t.Errorf("unexpected output defaults: %+v", c)
	}
	if c.BatchConcurrency != 4 || c.ServeAddr == "" {
		t.Errorf("unexpected run defaults: %+v", c)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{
		DateGroupBy:      "yearmonth",
		SortOrder:        "asc",
		Aggregate:        false,
		NestExtras:       false,
		Locale:           "de",
		OutputFormat:     "markdown",
		NumberFormat:     "thousands",
		BatchConcurrency: 2,
	}
	if err := Save(in, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.DateGroupBy != "yearmonth" || out.SortOrder != "asc" || out.Aggregate || out.NestExtras {
		t.Errorf("pivot settings not restored: %+v", out)
	}
	if out.Locale != "de" || out.OutputFormat != "markdown" || out.BatchConcurrency != 2 {
		t.Errorf("settings not restored: %+v", out)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(&Global{SortOrder: "asc", BatchConcurrency: 3}, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv("PIVOTREE_SORT_ORDER", "desc")
	t.Setenv("PIVOTREE_BATCH_CONCURRENCY", "0")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.SortOrder != "desc" {
		t.Errorf("env should win, got %q", c.SortOrder)
	}
	if c.BatchConcurrency != 1 {
		t.Errorf("non-positive concurrency should clamp to 1, got %d", c.BatchConcurrency)
	}
}
