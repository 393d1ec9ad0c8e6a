// Package source defines the adapter contract and helpers shared by the
// CSV-based adapters.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"daysheet/internal/model"
)

// Source is implemented by every adapter. Collect returns all events it can
// read; rows it cannot parse are counted in Batch.Skipped and logged. A
// returned error means the source as a whole is unusable.
type Source interface {
	Name() string
	Collect(ctx context.Context, p model.Period) (model.Batch, error)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVReader reads a CSV export whose first row is a header.
type CSVReader struct {
	r      *csv.Reader
	header map[string]int
	line   int
}

// NewCSVReader consumes the header row. An optional UTF-8 BOM is skipped.
// Every name in required must be present.
func NewCSVReader(in io.Reader, required ...string) (*CSVReader, error) {
	br := bufio.NewReader(in)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	names, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv: missing header row")
		}
		return nil, fmt.Errorf("csv: header: %w", err)
	}

	header := make(map[string]int, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		// Exports may repeat a column (Jira "Labels"); the first one wins.
		if _, dup := header[n]; !dup {
			header[n] = i
		}
	}
	for _, n := range required {
		if _, ok := header[n]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", n)
		}
	}
	return &CSVReader{r: r, header: header, line: 1}, nil
}

// Record is one data row addressed by column name.
type Record struct {
	Line   int
	fields []string
	header map[string]int
}

// Get returns the trimmed value of column name, or "" if absent.
func (rec Record) Get(name string) string {
	i, ok := rec.header[name]
	if !ok || i >= len(rec.fields) {
		return ""
	}
	return strings.TrimSpace(rec.fields[i])
}

// Next returns the next row. It returns io.EOF at the end of input. A
// malformed row is reported with its line number; the caller may continue.
func (c *CSVReader) Next() (Record, error) {
	fields, err := c.r.Read()
	c.line++
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{Line: c.line}, err
	}
	line, _ := c.r.FieldPos(0)
	return Record{Line: line, fields: fields, header: c.header}, nil
}
