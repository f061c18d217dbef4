package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVExporter writes report tables as CSV.
type CSVExporter struct {
	options CSVOptions
}

// CSVOptions configures CSV export behavior.
type CSVOptions struct {
	Delimiter     rune `json:"delimiter"`
	UseCRLF       bool `json:"use_crlf"`
	IncludeHeader bool `json:"include_header"`
}

// DefaultCSVOptions returns default CSV export options. The semicolon
// delimiter keeps the files openable in pt-BR Excel locales where the comma
// is the decimal separator.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:     ';',
		UseCRLF:       true,
		IncludeHeader: true,
	}
}

func NewCSVExporter(options CSVOptions) *CSVExporter {
	return &CSVExporter{options: options}
}

// WriteTable writes the header row and all data rows to w.
func (e *CSVExporter) WriteTable(w io.Writer, columns []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	writer.Comma = e.options.Delimiter
	writer.UseCRLF = e.options.UseCRLF

	if e.options.IncludeHeader {
		if err := writer.Write(columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
