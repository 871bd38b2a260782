package csvimport

import (
	"errors"
	"strings"
)

var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
)

// MissingHeadersError lists required columns absent from the header row.
type MissingHeadersError struct {
	Columns []string
}

func (e *MissingHeadersError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}
