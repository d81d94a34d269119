package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads a headered CSV stream. The UTF-8 BOM is stripped and the
// content is rejected up front when it is not valid UTF-8, so row handlers
// never see mojibake.
type CSVParser struct {
	delimiter rune
	headers   []string
	headerIdx map[string]int
	line      int
	reader    *csv.Reader
}

// ParserOption configures a CSVParser.
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter. Comma is the default.
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// NewCSVParser creates a parser over r without consuming the header yet.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{
		delimiter: ',',
		headerIdx: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	buf := bufio.NewReader(r)

	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	if err := checkUTF8(buf); err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(buf)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	// Rows with missing trailing fields are padded, not rejected
	p.reader.FieldsPerRecord = -1

	return p, nil
}

// ParseFromBytes creates a parser over an in-memory payload.
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

func checkUTF8(buf *bufio.Reader) error {
	head, err := buf.Peek(4096)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding check: %w", err)
	}
	if len(head) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(head) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader consumes the header row and builds the column lookup.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := strings.TrimSpace(h)
		p.headers[i] = name
		p.headerIdx[name] = i
	}
	p.line = 1

	return nil
}

// Headers returns the parsed header names in column order.
func (p *CSVParser) Headers() []string {
	return p.headers
}

// MissingHeaders returns the required column names absent from the header.
func (p *CSVParser) MissingHeaders(required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := p.headerIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Row is a parsed data row keyed by header name. LineNumber counts from the
// top of the file, header included, so it matches what the user sees in a
// spreadsheet.
type Row struct {
	LineNumber int
	fields     map[string]string
}

// Get returns the trimmed value of the named column, or "" when absent.
func (r *Row) Get(column string) string {
	return r.fields[column]
}

// GetOrDefault returns the named column's value or def when empty.
func (r *Row) GetOrDefault(column, def string) string {
	if v := r.fields[column]; v != "" {
		return v
	}
	return def
}

// IsEmpty reports whether every field in the row is blank.
func (r *Row) IsEmpty() bool {
	for _, v := range r.fields {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow returns the next data row, or io.EOF when the file is exhausted.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.line, err)
	}

	row := &Row{
		LineNumber: p.line,
		fields:     make(map[string]string, len(p.headers)),
	}
	for i, name := range p.headers {
		if i < len(record) {
			row.fields[name] = strings.TrimSpace(record[i])
		} else {
			row.fields[name] = ""
		}
	}

	return row, nil
}

// ReadAllRows drains the parser, skipping rows that are entirely blank.
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}
