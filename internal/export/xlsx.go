// Package export writes query results to spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aryannaik/sustainify/internal/catalog"
)

const sheet = "Sheet1"

var header = []interface{}{
	"id", "kind", "name", "category", "replaces", "score",
	"co2_kg", "water_l", "waste_g", "materials", "certifications", "tags", "description",
}

// WriteXLSX writes one row per product, in the given order.
func WriteXLSX(w io.Writer, items []catalog.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, p := range items {
		row := []interface{}{
			p.ID, string(p.Kind), p.Name, p.Category, p.Replaces, p.Score,
			p.Impact.CO2, p.Impact.Water, p.Impact.Waste,
			strings.Join(p.Materials, ", "),
			strings.Join(p.Certifications, ", "),
			strings.Join(p.Tags, ", "),
			p.Description,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
