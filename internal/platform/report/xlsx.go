// Package report renders migration summaries as Excel workbooks so the
// records office can review what a run skipped.
package report

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/hms/migrator/internal/migrate"
)

var skipHeader = []string{"#", "Key", "Reason", "Details"}

// WriteSkipReport writes one sheet per flow listing its skipped records,
// then saves the workbook at path. Flows with no skips still get a sheet
// so the report shows the flow ran.
func WriteSkipReport(path string, summaries map[string]*migrate.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	// Deterministic sheet order regardless of map iteration.
	flows := make([]string, 0, len(summaries))
	for flow := range summaries {
		flows = append(flows, flow)
	}
	sort.Strings(flows)

	for _, flow := range flows {
		if err := writeSheet(f, flow, summaries[flow]); err != nil {
			return err
		}
	}
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save skip report %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, flow string, summary *migrate.Summary) error {
	// Sheet names cap at 31 characters in the xlsx format.
	name := flow
	if len(name) > 31 {
		name = name[:31]
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for col, title := range skipHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, title); err != nil {
			return err
		}
		if err := f.SetCellStyle(name, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, sk := range summary.SkippedItems {
		row := i + 2
		values := []interface{}{i + 1, sk.Key, sk.Reason, formatFields(sk.Fields)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
		}
	}

	// Totals row under the listing.
	totalRow := len(summary.SkippedItems) + 3
	if err := f.SetCellValue(name, "A"+strconv.Itoa(totalRow), "Migrated: "+strconv.Itoa(summary.TotalMigrated)); err != nil {
		return err
	}
	return f.SetCellValue(name, "B"+strconv.Itoa(totalRow), "Skipped: "+strconv.Itoa(summary.SkippedCount))
}

func formatFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "; "
		}
		out += k + "=" + fields[k]
	}
	return out
}
