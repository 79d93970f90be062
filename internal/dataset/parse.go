package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// jsonListKeys are the object keys that may hold the record list, in priority order.
var jsonListKeys = []string{"tools", "herramientas"}

func parseCSV(body []byte) ([]RawRecord, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var records []RawRecord
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, zipRecord(header, row))
	}
	return records, nil
}

func parseJSON(body []byte) ([]RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	items, err := recordList(doc)
	if err != nil {
		return nil, err
	}

	records := make([]RawRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
		rec := make(RawRecord, len(obj))
		for k, v := range obj {
			rec[k] = textValue(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordList(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range jsonListKeys {
			list, ok := v[key]
			if !ok {
				continue
			}
			if items, ok := list.([]any); ok {
				return items, nil
			}
			return nil, fmt.Errorf("%q is not a list", key)
		}
	}
	return nil, errors.New(`expected a list of records or an object with a "tools" list`)
}

// textValue renders a scalar JSON value as cell text. Nested values are not
// meaningful as a column and become "".
func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// parseSpreadsheet reads the first sheet of an XLSX workbook. The first
// non-blank row is the header.
func parseSpreadsheet(body []byte) ([]RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	var (
		header  []string
		records []RawRecord
	)
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if header == nil {
			header = row
			continue
		}
		records = append(records, zipRecord(header, row))
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
