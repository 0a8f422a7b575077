package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/niveshhub/fundsearch/internal/fund"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func collect(t *testing.T, src Source) ([]fund.RawRecord, Stats) {
	t.Helper()
	var records []fund.RawRecord
	stats, err := src.Stream(context.Background(), func(rec fund.RawRecord) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	return records, stats
}

func TestFileSourceStreamsAllObjects(t *testing.T) {
	path := writeCatalog(t, `[
		{"schemeCode": 100, "schemeName": "HDFC Large Cap Fund - Direct Growth"},
		{"schemeCode": 101, "schemeName": "Axis Bluechip Fund"},
		{"schemeCode": 102, "schemeName": "SBI Small Cap Fund"}
	]`)

	records, stats := collect(t, NewFileSource(path, 0))
	if len(records) != 3 {
		t.Fatalf("got %d records; want 3", len(records))
	}
	if stats.Emitted != 3 || stats.Malformed != 0 {
		t.Errorf("stats = %+v; want 3 emitted, 0 malformed", stats)
	}
	if records[0].SchemeCode != 100 || records[0].SchemeName != "HDFC Large Cap Fund - Direct Growth" {
		t.Errorf("first record = %+v", records[0])
	}
}

func TestFileSourceTinyChunksSplitObjects(t *testing.T) {
	// A chunk size smaller than any single object forces every record to
	// span multiple reads and exercises the carry-over buffer.
	path := writeCatalog(t, `[{"schemeCode":1,"schemeName":"Kotak Flexi Cap Fund"},{"schemeCode":2,"schemeName":"UTI Nifty Index Fund"}]`)

	records, stats := collect(t, NewFileSource(path, 7))
	if len(records) != 2 {
		t.Fatalf("got %d records; want 2", len(records))
	}
	if records[1].SchemeName != "UTI Nifty Index Fund" {
		t.Errorf("second record = %+v", records[1])
	}
	if stats.Emitted != 2 {
		t.Errorf("stats = %+v; want 2 emitted", stats)
	}
}

func TestFileSourceNestedBraces(t *testing.T) {
	path := writeCatalog(t, `[{"schemeCode":1,"schemeName":"Tata Digital Fund","meta":{"tags":{"a":1}}}]`)

	records, _ := collect(t, NewFileSource(path, 16))
	if len(records) != 1 {
		t.Fatalf("got %d records; want 1", len(records))
	}
	if records[0].SchemeName != "Tata Digital Fund" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestFileSourceDropsMalformedObjects(t *testing.T) {
	path := writeCatalog(t, `[
		{"schemeCode": 1, "schemeName": "Axis Bluechip Fund"},
		{"schemeCode": "not-a-number", "schemeName": 42},
		{"schemeCode": 2, "schemeName": "DSP Midcap Fund"}
	]`)

	records, stats := collect(t, NewFileSource(path, 32))
	if len(records) != 2 {
		t.Fatalf("got %d records; want 2", len(records))
	}
	if stats.Malformed != 1 {
		t.Errorf("Malformed = %d; want 1", stats.Malformed)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.json"), 0)
	_, err := src.Stream(context.Background(), func(fund.RawRecord) error { return nil })
	if err == nil {
		t.Fatal("Stream on a missing file succeeded; want error")
	}
}

func TestFileSourceEmptyArray(t *testing.T) {
	path := writeCatalog(t, `[]`)
	records, stats := collect(t, NewFileSource(path, 0))
	if len(records) != 0 || stats.Emitted != 0 {
		t.Errorf("got %d records, stats %+v; want none", len(records), stats)
	}
}
