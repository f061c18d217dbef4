package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testColumns = []string{"Venda", "Cliente", "Total"}
	testRows    = [][]string{
		{"202609011234", "Maria da Silva", "R$ 1025.00"},
		{"202609015678", "João Pereira", "R$ 512.50"},
	}
)

func TestCSVWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVExporter(DefaultCSVOptions()).WriteTable(&buf, testColumns, testRows)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\r\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Venda;Cliente;Total", lines[0])
	assert.Contains(t, lines[1], "202609011234")
}

func TestCSVWithoutHeader(t *testing.T) {
	options := DefaultCSVOptions()
	options.IncludeHeader = false

	var buf bytes.Buffer
	err := NewCSVExporter(options).WriteTable(&buf, testColumns, testRows)

	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Venda;Cliente")
}

func TestExcelWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := NewExcelExporter(DefaultExcelOptions()).WriteTable(&buf, testColumns, testRows)

	require.NoError(t, err)
	// xlsx files are zip archives
	assert.Equal(t, "PK", buf.String()[:2])
}

func TestPDFWriteTable(t *testing.T) {
	options := DefaultPDFOptions()
	options.Title = "Relatório de Vendas"

	var buf bytes.Buffer
	err := NewPDFGenerator(options).WriteTable(&buf, testColumns, testRows)

	require.NoError(t, err)
	assert.Equal(t, "%PDF", buf.String()[:4])
}

func TestPDFEmptyRows(t *testing.T) {
	var buf bytes.Buffer
	err := NewPDFGenerator(DefaultPDFOptions()).WriteTable(&buf, testColumns, nil)

	require.NoError(t, err)
	assert.Equal(t, "%PDF", buf.String()[:4])
}
