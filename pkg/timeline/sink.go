package timeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kurishiro/voxlayer/pkg/errors"
)

// Sink consumes an ordered record stream. Builders and Reconcile know
// nothing about output formats; every format is an adapter implementing
// this interface (or the stream codecs below for file-shaped outputs).
type Sink interface {
	Write(ctx context.Context, t Timeline) error
}

// Format identifies a file-shaped timeline encoding.
type Format string

// Supported file formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath infers the timeline format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer timeline format from %q", filepath.Base(path))
	}
}

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV, FormatJSON, FormatYAML:
		return Format(strings.ToLower(s)), nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'csv', 'json', or 'yaml')", s)
	}
}

// Encode writes t to w in the given format.
// CSV preserves the timeline's column order; JSON and YAML emit one
// object per record with keys in encoder order.
func Encode(w io.Writer, t Timeline, f Format) error {
	switch f {
	case FormatCSV:
		return encodeCSV(w, t)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows(t))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(rows(t))
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", f)
	}
}

// Decode reads a timeline from r in the given format.
// CSV values come back as strings; JSON and YAML preserve scalar types.
func Decode(r io.Reader, f Format) (Timeline, error) {
	switch f {
	case FormatCSV:
		return decodeCSV(r)
	case FormatJSON:
		var raw []map[string]any
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid JSON timeline")
		}
		return fromRows(raw), nil
	case FormatYAML:
		var raw []map[string]any
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid YAML timeline")
		}
		return fromRows(raw), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", f)
	}
}

// WriterSink adapts a stream codec to the Sink interface.
type WriterSink struct {
	W      io.Writer
	Format Format
}

// Write encodes the timeline onto the underlying writer.
func (s WriterSink) Write(ctx context.Context, t Timeline) error {
	return Encode(s.W, t, s.Format)
}

// Ensure WriterSink implements Sink.
var _ Sink = WriterSink{}

// encodeCSV writes a header row of the timeline's columns, then one row
// per record. Records missing a column contribute an empty cell.
func encodeCSV(w io.Writer, t Timeline) error {
	cols := t.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for _, rec := range t {
		for i, c := range cols {
			row[i] = rec.String(c)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// decodeCSV reads a header row as column names, then one record per row.
func decodeCSV(r io.Reader) (Timeline, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid CSV timeline")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols := rows[0]
	var t Timeline
	for _, row := range rows[1:] {
		rec := NewRecord()
		for i, c := range cols {
			if i < len(row) {
				rec.Set(c, row[i])
			}
		}
		t = append(t, rec)
	}
	return t, nil
}

// rows converts a timeline to plain maps for the JSON/YAML encoders.
func rows(t Timeline) []map[string]any {
	out := make([]map[string]any, len(t))
	for i, rec := range t {
		out[i] = rec.Map()
	}
	return out
}

// fromRows rebuilds records from decoded maps. Map iteration order is
// unspecified, so columns are sorted for a deterministic record shape.
func fromRows(raw []map[string]any) Timeline {
	var t Timeline
	for _, m := range raw {
		cols := make([]string, 0, len(m))
		for c := range m {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		rec := NewRecord()
		for _, c := range cols {
			rec.Set(c, m[c])
		}
		t = append(t, rec)
	}
	return t
}
