package dataset

import (
	"fmt"
	"mime"
	"net/url"
	"strings"

	"aitools.app/recommender/internal/model"
)

// Format is a dataset encoding the cache knows how to parse.
type Format string

const (
	FormatCSV         Format = "csv"
	FormatJSON        Format = "json"
	FormatSpreadsheet Format = "spreadsheet"
)

// parser decodes a payload into raw rows in source order.
type parser func(body []byte) ([]RawRecord, error)

var parsers = map[Format]parser{
	FormatCSV:         parseCSV,
	FormatJSON:        parseJSON,
	FormatSpreadsheet: parseSpreadsheet,
}

// ClassifyFormat picks the parser for a source. The URL path suffix wins, then
// a CSV export hint in the query string, then the response content type.
// Anything still unknown is treated as a spreadsheet.
func ClassifyFormat(rawURL, contentType string) Format {
	path, query := splitURL(rawURL)
	path = strings.ToLower(path)

	switch {
	case strings.HasSuffix(path, ".json"):
		return FormatJSON
	case strings.HasSuffix(path, ".csv"), hasCSVHint(query):
		return FormatCSV
	case strings.HasSuffix(path, ".xlsx"), strings.HasSuffix(path, ".xlsm"), strings.HasSuffix(path, ".xls"):
		return FormatSpreadsheet
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
			return FormatJSON
		case mediaType == "text/csv", mediaType == "text/plain":
			return FormatCSV
		}
	}

	return FormatSpreadsheet
}

// Parse decodes body as format and normalizes every row.
func Parse(format Format, body []byte) ([]model.ToolRecord, error) {
	p, ok := parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrParse, format)
	}

	raw, err := p(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, format, err)
	}

	rows := make([]model.ToolRecord, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, Normalize(r))
	}
	return rows, nil
}

func splitURL(rawURL string) (string, url.Values) {
	u, err := url.Parse(rawURL)
	if err != nil {
		path, rawQuery, _ := strings.Cut(rawURL, "?")
		q, _ := url.ParseQuery(rawQuery)
		return path, q
	}
	return u.Path, u.Query()
}

// hasCSVHint recognises spreadsheet export links such as Google Sheets
// "...?output=csv" or "...?tqx=out:csv".
func hasCSVHint(q url.Values) bool {
	for _, key := range []string{"output", "format", "exportFormat"} {
		if strings.EqualFold(q.Get(key), "csv") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(q.Get("tqx")), "out:csv")
}
