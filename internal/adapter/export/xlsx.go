// Package export writes dashboard indexes as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// SheetName returns the worksheet title used for a level.
func SheetName(level domain.Level) string {
	if level == domain.LevelMunicipality {
		return "Municípios"
	}
	return "Estados"
}

// Filename returns the download name for a level.
func Filename(level domain.Level) string {
	if level == domain.LevelMunicipality {
		return "dengue-municipios.xlsx"
	}
	return "dengue-estados.xlsx"
}

// WriteWide writes one row per indexed entity with a column per year from
// minYear on. Missing cells stay blank so they are not confused with zero.
func WriteWide(w io.Writer, idx *domain.WideIndex, level domain.Level, minYear int) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := SheetName(level)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	var years []int
	for _, y := range idx.Years {
		if y >= minYear {
			years = append(years, y)
		}
	}

	header := []any{"Código", "Nome"}
	for _, y := range years {
		header = append(header, strconv.Itoa(y))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", 36); err != nil {
		return err
	}

	for i, key := range idx.Keys {
		k, _ := idx.Entity(key)
		row := make([]any, 0, len(header))
		if k.HasCode {
			row = append(row, k.Code)
		} else {
			row = append(row, nil)
		}
		row = append(row, k.Name)
		for _, y := range years {
			if v := idx.Value(key, y); v.Valid {
				row = append(row, v.Num)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %q: %w", key, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
