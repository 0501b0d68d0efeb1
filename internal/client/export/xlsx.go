// Package export writes a fetched document list to an Excel workbook.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

const sheetName = "Documents"

var headers = []string{"Filename", "Title", "Category", "Tags", "Status", "Confidence", "Size", "Uploaded"}

// WriteXLSX renders docs into a single-sheet workbook at path.
func WriteXLSX(path string, docs []domain.Document) error {
	book := excelize.NewFile()
	defer book.Close()

	index, err := book.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	book.SetActiveSheet(index)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := book.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for row, doc := range docs {
		values := []any{
			doc.Filename,
			doc.Title,
			doc.Category,
			strings.Join(doc.Tags, ", "),
			string(doc.Status),
			doc.Confidence,
			doc.Size,
			doc.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := book.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
