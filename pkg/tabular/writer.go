// Package tabular writes delimited tables with minimal field quoting: a
// field is quoted only when it contains the delimiter, the quote
// character or a line break, and embedded quotes are doubled. Unlike
// encoding/csv it writes map-shaped rows against a fixed header, with
// absent fields serialised as empty strings - which is what the
// flattening stage needs, where the field set is only known once all
// rows of a run have been seen.
package tabular

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	defaultDelimiter = ","
	quote            = `"`
)

// FieldSet accumulates the union of field names observed across rows.
type FieldSet map[string]bool

func (fields FieldSet) Add(names ...string) {
	for _, name := range names {
		fields[name] = true
	}
}

func (fields FieldSet) Merge(other FieldSet) {
	for name := range other {
		fields[name] = true
	}
}

// Sorted returns the field names in deterministic (lexicographic) order.
func (fields FieldSet) Sorted() []string {
	names := maps.Keys(fields)
	slices.Sort(names)

	return names
}

// Writer emits one header followed by rows in a fixed column order.
type Writer struct {
	buffer    *bufio.Writer
	delimiter string
	columns   []string

	headerWritten bool
}

func NewWriter(w io.Writer, delimiter string) *Writer {
	if delimiter == "" {
		delimiter = defaultDelimiter
	}

	return &Writer{
		buffer:    bufio.NewWriterSize(w, 1024*1024),
		delimiter: delimiter,
	}
}

// WriteHeader fixes the column order for the table and emits the header
// line. Must be called exactly once, before any row.
func (writer *Writer) WriteHeader(columns []string) error {
	if writer.headerWritten {
		return fmt.Errorf("header already written")
	}

	writer.columns = columns
	writer.headerWritten = true

	return writer.writeLine(columns)
}

// WriteRow emits one row in header order. Fields absent from the row
// serialise as empty strings; fields outside the header are dropped.
func (writer *Writer) WriteRow(row map[string]string) error {
	if !writer.headerWritten {
		return fmt.Errorf("header not written")
	}

	values := make([]string, len(writer.columns))
	for i, column := range writer.columns {
		values[i] = row[column]
	}

	return writer.writeLine(values)
}

func (writer *Writer) writeLine(values []string) error {
	for i, value := range values {
		if i > 0 {
			if _, err := writer.buffer.WriteString(writer.delimiter); err != nil {
				return err
			}
		}

		if _, err := writer.buffer.WriteString(writer.quoteField(value)); err != nil {
			return err
		}
	}

	if _, err := writer.buffer.WriteString("\n"); err != nil {
		return err
	}

	return nil
}

func (writer *Writer) quoteField(value string) string {
	if !strings.Contains(value, writer.delimiter) && !strings.Contains(value, quote) &&
		!strings.ContainsAny(value, "\n\r") {
		return value
	}

	return quote + strings.ReplaceAll(value, quote, quote+quote) + quote
}

// Flush writes any buffered rows through to the underlying writer.
func (writer *Writer) Flush() error {
	return writer.buffer.Flush()
}
