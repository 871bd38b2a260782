package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser_FileChecks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxSize int64
		wantErr error
	}{
		{"empty", "", 0, ErrEmptyFile},
		{"whitespace only", " \n\n", 0, ErrEmptyFile},
		{"bom only", "\xEF\xBB\xBF", 0, ErrEmptyFile},
		{"latin-1 bytes", "nume\nS\xe3rbu", 0, ErrInvalidEncoding},
		{"too large", "name,cui\nA,1\n", 5, ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(strings.NewReader(tt.content), tt.maxSize)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParser_BOMAndHeaderNormalization(t *testing.T) {
	p, err := NewParser(strings.NewReader("\xEF\xBB\xBFName, Cod Fiscal ,e-mail\nȘtefan SRL,RO18547290,office@stefan.ro\n"), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "cod_fiscal", "e_mail"}, p.Headers())
	assert.Equal(t, ',', p.Delimiter())

	rows, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Ștefan SRL", rows[0].Get("name"))
	assert.Equal(t, "RO18547290", rows[0].Get("cod_fiscal"))
}

func TestParser_SemicolonDetection(t *testing.T) {
	p, err := NewParser(strings.NewReader("code;name;sale_price\nP1;Hârtie, A4;12,50\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, ';', p.Delimiter())

	rows, err := p.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Hârtie, A4", rows[0].Get("name"))

	price, err := ParseDecimal(rows[0].Get("sale_price"))
	require.NoError(t, err)
	assert.Equal(t, "12.5", price.String())
}

func TestParser_ShortRowsAndBlankLines(t *testing.T) {
	p, err := NewParser(strings.NewReader("code,name,unit\nA1,First\n,,\n\nA2,Second,kg\n"), 0)
	require.NoError(t, err)

	rows, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0].Get("unit"))
	assert.Equal(t, "buc", rows[0].GetOrDefault("unit", "buc"))
	assert.Equal(t, "kg", rows[1].Get("unit"))
}

func TestParser_RequireHeaders(t *testing.T) {
	p, err := NewParser(strings.NewReader("name,email\nx,y\n"), 0)
	require.NoError(t, err)

	require.NoError(t, p.RequireHeaders("name"))

	err = p.RequireHeaders("name", "cui", "type")
	var missing *MissingHeadersError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"cui", "type"}, missing.Columns)
	assert.Equal(t, "missing required columns: cui, type", err.Error())
}

func TestParser_HeaderOnly(t *testing.T) {
	p, err := NewParser(strings.NewReader("name,cui\n"), 0)
	require.NoError(t, err)
	_, err = p.ReadAll()
	assert.ErrorIs(t, err, ErrNoDataRows)
}
