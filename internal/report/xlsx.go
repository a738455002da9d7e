package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/docsift/docsift/internal/fields"
)

// RenderXLSX produces a one-sheet workbook: field rows first, then an
// items sub-table for the first list-valued field.
func RenderXLSX(fs *fields.FieldSet) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Extracted"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet so the workbook has exactly one
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Field")
	write(2, 1, "Value")

	rendered := fs.Rendered()
	row := 2
	var itemsName string
	var items []fields.Item
	for _, name := range fs.Names() {
		v := fs.Get(name)
		if v.Items != nil {
			// items go to the sub-table below the field rows
			itemsName = name
			items = v.Items
			continue
		}
		write(1, row, name)
		write(2, row, rendered[name])
		row++
	}

	if itemsName != "" {
		row++ // blank spacer row
		write(1, row, itemsName)
		row++
		write(1, row, "Item")
		write(2, row, "Price")
		row++
		for _, it := range items {
			write(1, row, it.Name)
			if it.Price != nil {
				write(2, row, *it.Price)
			}
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
