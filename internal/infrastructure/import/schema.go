package csvimport

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindText Kind = iota
	KindDecimal
	KindEmail
	KindCUI
	KindEnum
	KindVATRate
)

// Column describes one expected CSV column.
type Column struct {
	Name      string
	Kind      Kind
	Required  bool
	MaxLength int
	Values    []string
	// UniqueInFile rejects a value already seen in an earlier row.
	UniqueInFile bool
}

// Schema validates rows column by column and remembers unique values across rows.
type Schema struct {
	columns []Column
	seen    map[string]map[string]int
}

func NewSchema(columns ...Column) *Schema {
	return &Schema{columns: columns, seen: make(map[string]map[string]int)}
}

func (s *Schema) RequiredColumns() []string {
	var names []string
	for _, c := range s.columns {
		if c.Required {
			names = append(names, c.Name)
		}
	}
	return names
}

// Validate returns every problem in the row; an empty result means the row is usable.
func (s *Schema) Validate(row *Row) []dataexchange.RowError {
	var errs []dataexchange.RowError
	fail := func(col, msg string) {
		errs = append(errs, dataexchange.RowError{Row: row.Line, Field: col, Message: msg})
	}

	for _, c := range s.columns {
		value := row.Get(c.Name)
		if value == "" {
			if c.Required {
				fail(c.Name, "is required")
			}
			continue
		}
		if c.MaxLength > 0 && utf8.RuneCountInString(value) > c.MaxLength {
			fail(c.Name, fmt.Sprintf("exceeds %d characters", c.MaxLength))
			continue
		}
		if err := checkKind(c, value); err != nil {
			fail(c.Name, err.Error())
			continue
		}
		if c.UniqueInFile {
			key := strings.ToUpper(value)
			if c.Kind == KindCUI {
				key = valueobject.NormalizeCUI(value)
			}
			if s.seen[c.Name] == nil {
				s.seen[c.Name] = make(map[string]int)
			}
			if first, dup := s.seen[c.Name][key]; dup {
				fail(c.Name, fmt.Sprintf("duplicate value %q, first seen in row %d", value, first))
				continue
			}
			s.seen[c.Name][key] = row.Line
		}
	}
	return errs
}

func checkKind(c Column, value string) error {
	switch c.Kind {
	case KindDecimal:
		d, err := ParseDecimal(value)
		if err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
		if d.IsNegative() {
			return fmt.Errorf("cannot be negative")
		}
	case KindVATRate:
		d, err := ParseDecimal(value)
		if err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
		if err := valueobject.ValidateVATRate(d); err != nil {
			return err
		}
	case KindEmail:
		if _, err := mail.ParseAddress(value); err != nil {
			return fmt.Errorf("%q is not a valid email", value)
		}
	case KindCUI:
		if err := valueobject.ValidateCUI(value); err != nil {
			return err
		}
	case KindEnum:
		if !slices.Contains(c.Values, strings.ToLower(value)) {
			return fmt.Errorf("must be one of %s", strings.Join(c.Values, ", "))
		}
	}
	return nil
}

// ParseDecimal accepts both "1234.50" and the Romanian "1234,50".
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if strings.Contains(value, ",") && !strings.Contains(value, ".") {
		value = strings.Replace(value, ",", ".", 1)
	}
	return decimal.NewFromString(value)
}
