// Package report renders census records as a spreadsheet.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"censusdesk/internal/census/models"
)

const (
	SheetName   = "Census Records"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
)

// Header is the first row of every export, in column order.
var Header = []string{
	"Record ID",
	"Family Head Name",
	"Number of Dependents",
	"Educated Members",
	"Non-Educated Members",
	"ID Proof Type",
	"ID Number",
	"Territory",
	"Submitted By",
	"Submitted At (UTC)",
	"Last Modified At (UTC)",
}

// WriteXLSX writes records, in the order given, to a single-sheet workbook.
func WriteXLSX(w io.Writer, records []*models.Record) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return fmt.Errorf("resolve header range: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve row %d: %w", i+2, err)
		}
		row := []any{
			r.ID.String(),
			r.FamilyHeadName,
			r.NumberOfDependents,
			r.NumberOfEducatedMembers,
			r.NumberOfNonEducatedMembers,
			string(r.IdentityProofType),
			r.IdentityNumber,
			string(r.Territory),
			r.SubmittedByContact,
			r.SubmittedAt.UTC().Format(timeLayout),
			r.LastModifiedAt.UTC().Format(timeLayout),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", lastCol, 22); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
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
