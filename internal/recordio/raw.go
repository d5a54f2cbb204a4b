package recordio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

const maxLineBytes = 4 << 20

// ReadRawRecords reads one JSON object per line. Values of any JSON type
// are converted to strings; arrays are joined with ", ". Blank lines are
// ignored and lines that are not JSON objects are skipped with a warning.
func ReadRawRecords(r io.Reader, logger *slog.Logger) ([]model.RawRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var out []model.RawRecord
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		rec, err := decodeRaw(b)
		if err != nil {
			logger.Warn("skipping malformed input line", "line", line, "error", err)
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input line %d: %w", line+1, err)
	}
	return out, nil
}

// ReadRawFile opens path and reads raw records from it. "-" reads stdin.
func ReadRawFile(path string, logger *slog.Logger) ([]model.RawRecord, error) {
	if path == "-" {
		return ReadRawRecords(os.Stdin, logger)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()
	return ReadRawRecords(f, logger)
}

func decodeRaw(b []byte) (model.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("not a JSON object")
	}
	rec := make(model.RawRecord, len(m))
	for k, v := range m {
		rec[k] = stringify(v)
	}
	return rec, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// WriteRawRecords writes one JSON object per line.
func WriteRawRecords(w io.Writer, records []model.RawRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding raw record %d: %w", i, err)
		}
	}
	return nil
}
