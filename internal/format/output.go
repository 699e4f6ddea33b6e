// Package format renders command results for machines: JSON by default, EDN,
// or tab-separated rows for values that know how to tabulate themselves.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	JSON = "json"
	EDN  = "edn"
	TSV  = "tsv"
)

// Tabular values can be written as TSV.
type Tabular interface {
	Table() (header []string, rows [][]string)
}

// Write writes v in the requested format. An empty format means JSON.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", JSON:
		return WriteJSON(w, v, pretty)
	case EDN:
		return WriteEDN(w, v, pretty)
	case TSV:
		t, ok := v.(Tabular)
		if !ok {
			return fmt.Errorf("format %s is not available for this command", TSV)
		}
		return WriteTSV(w, t)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON, one document per call.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteTSV writes a header line and one line per row. Tabs and newlines inside
// cells are replaced by spaces.
func WriteTSV(w io.Writer, t Tabular) error {
	header, rows := t.Table()
	clean := strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ")
	line := func(cells []string) error {
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = clean.Replace(c)
		}
		_, err := fmt.Fprintln(w, strings.Join(out, "\t"))
		return err
	}
	if err := line(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := line(r); err != nil {
			return err
		}
	}
	return nil
}
