package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	WeekStart string   `json:"weekStart"`
	SqFt      float64  `json:"sqft"`
	Passed    bool     `json:"qcPassed"`
	Names     []string `json:"names"`
	Missing   *string  `json:"missing"`
}

type table struct{}

func (table) Table() ([]string, [][]string) {
	return []string{"id", "vessel"}, [][]string{{"1", "CVN74"}, {"2", "LHD\t1"}}
}

func TestWriteEDN(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sample{WeekStart: "2024-03-04", SqFt: 120.5, Passed: true, Names: []string{"C-1"}}, "edn", false)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{:missing nil :names ["C-1"] :qc-passed true :sqft 120.5 :week-start "2024-03-04"}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteEDN_PrettyAndIntegers(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"count": 3, "items": []any{}}, true); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := "{\n  :count 3\n  :items []\n}\n"
	if buf.String() != want {
		t.Fatalf("got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteJSONDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]int{"a": 1}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "{\"a\":1}\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, table{}, "TSV", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "id\tvessel\n1\tCVN74\n2\tLHD 1\n" {
		t.Fatalf("got %q", buf.String())
	}
	if err := Write(&buf, sample{}, "tsv", false); err == nil {
		t.Fatalf("expected error for non-tabular value")
	}
	if err := Write(&buf, sample{}, "yaml", false); err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestKeyword(t *testing.T) {
	for in, want := range map[string]string{"weekStart": "week-start", "id": "id", "last editor": "last-editor", "deleted_ptps": "deleted-ptps"} {
		if got := Keyword(in); got != want {
			t.Fatalf("Keyword(%q) = %q, want %q", in, got, want)
		}
	}
}
