package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("rejects empty file", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("rejects invalid UTF-8", func(t *testing.T) {
		_, err := ParseFromBytes([]byte{0xFF, 0xFE, 0x41, 0x42})
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("strips UTF-8 BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("sku,name\nA,B\n")...)
		p, err := ParseFromBytes(data)
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())
		assert.Equal(t, []string{"sku", "name"}, p.Headers())
	})
}

func TestCSVParserParseHeader(t *testing.T) {
	t.Run("trims header names", func(t *testing.T) {
		p, err := NewCSVParser(strings.NewReader("sku , name \nA,B\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())
		assert.Equal(t, []string{"sku", "name"}, p.Headers())
	})

	t.Run("reports missing required headers", func(t *testing.T) {
		p, err := NewCSVParser(strings.NewReader("sku,name\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())
		assert.Equal(t, []string{"cost_per_unit"}, p.MissingHeaders([]string{"sku", "cost_per_unit"}))
		assert.Empty(t, p.MissingHeaders([]string{"sku", "name"}))
	})
}

func TestCSVParserReadRow(t *testing.T) {
	t.Run("maps fields to headers", func(t *testing.T) {
		p, err := NewCSVParser(strings.NewReader("sku,name,unit\nBRK-100,Steel Bracket,each\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		row, err := p.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, 2, row.LineNumber)
		assert.Equal(t, "BRK-100", row.Get("sku"))
		assert.Equal(t, "Steel Bracket", row.Get("name"))
		assert.Equal(t, "each", row.Get("unit"))

		_, err = p.ReadRow()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("honors a custom delimiter", func(t *testing.T) {
		p, err := NewCSVParser(strings.NewReader("sku;name\nBRK-100;Steel Bracket\n"), WithDelimiter(';'))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		row, err := p.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "BRK-100", row.Get("sku"))
		assert.Equal(t, "Steel Bracket", row.Get("name"))
	})

	t.Run("pads short rows with empty fields", func(t *testing.T) {
		p, err := NewCSVParser(strings.NewReader("sku,name,unit\nBRK-100,Steel Bracket\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		row, err := p.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "", row.Get("unit"))
		assert.Equal(t, "each", row.GetOrDefault("unit", "each"))
	})
}

func TestCSVParserReadAllRows(t *testing.T) {
	p, err := NewCSVParser(strings.NewReader("sku,name\nA,Widget\n,\nB,Gadget\n"))
	require.NoError(t, err)
	require.NoError(t, p.ParseHeader())

	rows, err := p.ReadAllRows()
	require.NoError(t, err)
	// Blank rows are skipped
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Get("sku"))
	assert.Equal(t, "B", rows[1].Get("sku"))
	assert.Equal(t, 4, rows[1].LineNumber)
}

func TestErrorCollection(t *testing.T) {
	c := NewErrorCollection(2)
	c.Add(NewRowError(2, "sku", ErrCodeImportRequiredField, "sku is required"))
	c.Add(NewRowError(3, "cost_per_unit", ErrCodeImportInvalidType, "invalid decimal value"))
	c.Add(NewRowError(4, "", ErrCodeImportCSVParsing, "malformed row"))

	assert.Len(t, c.Errors(), 2)
	assert.Equal(t, 3, c.TotalCount())
	assert.True(t, c.IsTruncated())
	assert.Equal(t, "row 2, column 'sku': sku is required", c.Errors()[0].Error())
}
