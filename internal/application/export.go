package application

import (
	"context"
	"fmt"
	"strings"

	"eduplan/internal/models"

	"github.com/xuri/excelize/v2"
)

// ExportExcel renders the current plans as an XLSX workbook with one sheet
// named after the tab.
func (s *PlanServiceImpl) ExportExcel(ctx context.Context) ([]byte, error) {
	set, err := s.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	return buildWorkbook(set)
}

func buildWorkbook(set models.PlanSet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := excelSheetName(set.TabName)
	if err := f.SetSheetName(excelDefaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := make([]interface{}, len(set.Headers))
	for i, h := range set.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for i, p := range set.Plans {
		row := make([]interface{}, len(set.Headers))
		for col, h := range set.Headers {
			row[col] = p.Fields[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write plan %s: %w", p.ID, err)
		}
	}

	if len(set.Headers) > 0 {
		if err := styleHeader(f, sheet, set.Headers); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func styleHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{excelHeaderColor}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", last, excelColumnWidth); err != nil {
		return err
	}
	for i, h := range headers {
		if strings.EqualFold(h, idHeader) {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheet, col, col, excelIDColumnWidth); err != nil {
				return err
			}
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// excelSheetName strips characters Excel forbids in sheet names and enforces
// the length limit.
func excelSheetName(tab string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return -1
		}
		return r
	}, tab)
	name = strings.Trim(strings.TrimSpace(name), "'")

	if r := []rune(name); len(r) > excelMaxSheetName {
		name = string(r[:excelMaxSheetName])
	}
	if name == "" {
		return excelFallbackName
	}
	return name
}
