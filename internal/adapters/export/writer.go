package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/okian/loadmon/internal/domain/model"
	"github.com/okian/loadmon/pkg/atomicfile"
	"github.com/xuri/excelize/v2"
)

// Output locations relative to the output directory.
const (
	Dir          = "powerbi"
	WorkbookName = "bi_tables.xlsx"
)

// File kinds reported for written outputs.
const (
	KindCSV  = "bi_csv"
	KindXLSX = "bi_xlsx"
)

// File is one written output.
type File struct {
	Kind string
	Path string
}

// Writer writes BI tables under <outDir>/powerbi.
type Writer struct {
	dir     string
	formats []Format
}

// NewWriter creates a Writer for the given formats.
func NewWriter(outDir string, formats []Format) *Writer {
	return &Writer{dir: filepath.Join(outDir, Dir), formats: formats}
}

// Write emits every table in each configured format and returns the files
// written. The context is checked between files.
func (w *Writer) Write(ctx context.Context, tables []Table) ([]File, error) {
	var files []File
	for _, f := range w.formats {
		switch f {
		case FormatCSV:
			for _, t := range tables {
				if err := ctx.Err(); err != nil {
					return files, err
				}
				path := filepath.Join(w.dir, t.Name+".csv")
				if err := atomicfile.Write(path, func(out io.Writer) error { return WriteCSV(out, t) }); err != nil {
					return files, fmt.Errorf("export %s: %w", t.Name, err)
				}
				files = append(files, File{Kind: KindCSV, Path: path})
			}
		case FormatXLSX:
			if err := ctx.Err(); err != nil {
				return files, err
			}
			path := filepath.Join(w.dir, WorkbookName)
			if err := atomicfile.Write(path, func(out io.Writer) error { return WriteWorkbook(out, tables) }); err != nil {
				return files, fmt.Errorf("export workbook: %w", err)
			}
			files = append(files, File{Kind: KindXLSX, Path: path})
		default:
			return files, fmt.Errorf("bi format %q: %w", f, model.ErrUnsupportedOption)
		}
	}
	return files, nil
}

// WriteCSV writes t with its header row.
func WriteCSV(out io.Writer, t Table) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWorkbook writes one sheet per table into an xlsx workbook.
func WriteWorkbook(out io.Writer, tables []Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := f.GetSheetName(0)
	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(first, t.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}

		header := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			header[j] = c
		}
		if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
			return err
		}
		for r, row := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			vals := make([]any, len(row))
			for j, v := range row {
				vals[j] = sheetValue(v)
			}
			if err := f.SetSheetRow(t.Name, cell, &vals); err != nil {
				return err
			}
		}
	}
	_, err := f.WriteTo(out)
	return err
}

// sheetValue keeps numbers numeric except infinities, which xlsx cannot hold.
func sheetValue(v any) any {
	if x, ok := v.(float64); ok && (math.IsInf(x, 0) || math.IsNaN(x)) {
		return formatCell(x)
	}
	return v
}
