// Package csvimport reads user-supplied CSV files: spreadsheet exports with a
// BOM, either comma or semicolon separated, with loosely spelled headers.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one data line. Line is the 1-based line number in the file, header included.
type Row struct {
	Line int
	Data map[string]string
}

func (r *Row) Get(column string) string {
	return r.Data[column]
}

func (r *Row) GetOrDefault(column, def string) string {
	if v := r.Data[column]; v != "" {
		return v
	}
	return def
}

func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

type Parser struct {
	reader    *csv.Reader
	headers   []string
	index     map[string]int
	delimiter rune
	line      int
}

type ParserOption func(*Parser)

// WithDelimiter disables delimiter detection.
func WithDelimiter(d rune) ParserOption {
	return func(p *Parser) { p.delimiter = d }
}

// NewParser reads at most maxSize bytes (0 means unlimited), strips a UTF-8 BOM,
// rejects non UTF-8 content and parses the header row.
func NewParser(r io.Reader, maxSize int64, opts ...ParserOption) (*Parser, error) {
	if maxSize > 0 {
		r = io.LimitReader(r, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, ErrFileTooLarge
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	p := &Parser{index: make(map[string]int)}
	for _, opt := range opts {
		opt(p)
	}
	if p.delimiter == 0 {
		p.delimiter = detectDelimiter(data)
	}

	p.reader = csv.NewReader(bytes.NewReader(data))
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1

	if err := p.readHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// detectDelimiter picks ';' when the first line has more semicolons than commas,
// which is what Excel produces with a Romanian locale.
func detectDelimiter(data []byte) rune {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

func (p *Parser) readHeader() error {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.line = 1
	for i, h := range record {
		name := NormalizeHeader(h)
		if name == "" {
			continue
		}
		if _, dup := p.index[name]; !dup {
			p.index[name] = i
		}
		p.headers = append(p.headers, name)
	}
	if len(p.headers) == 0 {
		return ErrMissingHeader
	}
	return nil
}

// NormalizeHeader maps "Cod Fiscal " and "cod-fiscal" to "cod_fiscal".
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, h)
}

func (p *Parser) Headers() []string {
	return p.headers
}

func (p *Parser) Delimiter() rune {
	return p.delimiter
}

func (p *Parser) HasHeader(name string) bool {
	_, ok := p.index[name]
	return ok
}

// RequireHeaders fails with *MissingHeadersError naming every absent column.
func (p *Parser) RequireHeaders(required ...string) error {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return &MissingHeadersError{Columns: missing}
	}
	return nil
}

// ReadRow returns io.EOF after the last row.
func (p *Parser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		p.line++
		return nil, fmt.Errorf("row %d: %w", p.line, err)
	}
	p.line++

	row := &Row{Line: p.line, Data: make(map[string]string, len(p.index))}
	for name, i := range p.index {
		if i < len(record) {
			row.Data[name] = strings.TrimSpace(record[i])
		} else {
			row.Data[name] = ""
		}
	}
	return row, nil
}

// ReadAll skips blank lines and fails with ErrNoDataRows when nothing is left.
func (p *Parser) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}
