// Package parts maintains the part master: the product line, series, and part
// code hierarchy used to fill inspection headers, loaded from CSV or XLSX.
package parts

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Part is one row of the part master, keyed by line, series, and part code.
type Part struct {
	ID         uuid.UUID `json:"id"`
	Line       string    `json:"line"`
	Series     string    `json:"series"`
	Model      string    `json:"model"`
	PartCode   string    `json:"part_code"`
	BodyMat    string    `json:"body_mat"`
	ASMEClass  string    `json:"asme_class"`
	EndConnect string    `json:"end_connect"`
	Size       string    `json:"size"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Tier is one row of the vendor tier sampling reference shown to inspectors
// while they size a sample.
type Tier struct {
	Tier        string `json:"tier"`
	Description string `json:"description"`
	Sampling    string `json:"sampling"`
}

// ImportResult reports rows written and rows skipped for missing key fields.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Columns lists the import header names in file order.
var Columns = []string{"line", "series", "model", "part_code", "body_mat", "asme_class", "end_connect", "size"}

var keyColumns = []string{"line", "series", "part_code"}

// ReadRows returns every row of a CSV or XLSX file. XLSX files are read from
// the first sheet. The format is chosen by file extension.
func ReadRows(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		cr.LazyQuotes = true
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		return rows, nil
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		defer f.Close()

		sheet := f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidFile)
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
}

// ParseRows maps rows to parts using the header row. Header names match
// Columns case-insensitively and may appear in any order. Rows missing a key
// field are skipped; a repeated key keeps the last row.
func ParseRows(rows [][]string) ([]Part, int, error) {
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("%w: missing header row", ErrInvalidFile)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		index[name] = i
	}
	for _, col := range keyColumns {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("%w: missing %q column", ErrInvalidFile, col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		out     []Part
		skipped int
		seen    = make(map[string]int)
	)
	for _, row := range rows[1:] {
		p := Part{
			Line:       cell(row, "line"),
			Series:     cell(row, "series"),
			Model:      cell(row, "model"),
			PartCode:   cell(row, "part_code"),
			BodyMat:    cell(row, "body_mat"),
			ASMEClass:  cell(row, "asme_class"),
			EndConnect: cell(row, "end_connect"),
			Size:       cell(row, "size"),
		}
		if p.Line == "" || p.Series == "" || p.PartCode == "" {
			skipped++
			continue
		}

		key := p.Line + "\x00" + p.Series + "\x00" + p.PartCode
		if i, ok := seen[key]; ok {
			out[i] = p
			continue
		}
		seen[key] = len(out)
		out = append(out, p)
	}

	return out, skipped, nil
}
