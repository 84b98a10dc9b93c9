package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.csv")
	content := "testName,method,url,body\n" +
		"ping,GET,https://example.com/health,\n" +
		"create,POST,https://example.com/items,\"{\"\"a\"\":1}\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	rows, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Index != 1 || rows[1].Index != 2 {
		t.Fatalf("row indexes wrong: %d, %d", rows[0].Index, rows[1].Index)
	}
	if rows[0].Get("testName") != "ping" || rows[0].Get("method") != "GET" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Get("body") != `{"a":1}` {
		t.Fatalf("quoted JSON cell mangled: %q", rows[1].Get("body"))
	}
}

func TestLoadCSVRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragged.csv")
	content := "testName,method,url\nshort,GET\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	rows, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rows[0].Get("url") != "" {
		t.Fatalf("missing trailing cell should read empty, got %q", rows[0].Get("url"))
	}
}

func TestLoadCSVEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	rows, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestLoadXLSXFirstSheetOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"testName", "method", "url"}); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{"ping", "GET", "https://example.com"}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	// A second sheet must be ignored.
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SetSheetRow("Other", "A1", &[]interface{}{"ignored"}); err != nil {
		t.Fatalf("set other sheet: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}
	_ = f.Close()

	rows, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Get("testName") != "ping" || rows[0].Get("url") != "https://example.com" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("cases.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}
