package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var resultsHeader = []interface{}{
	"Rank", "Similarity", "ID", "User", "Date", "Description", "Amount", "Type", "Category", "Method", "Balance",
}

// ExportXLSX writes the results and summary of response to an .xlsx workbook at path.
func ExportXLSX(path string, response *models.SearchResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeResultsSheet(f, response); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, response); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeResultsSheet(f *excelize.File, response *models.SearchResponse) error {
	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(resultsSheet, 1, 1, bold); err != nil {
		return err
	}
	for i, r := range response.Results {
		var balance interface{}
		if r.Balance != nil {
			balance = *r.Balance
		}
		row := []interface{}{
			i + 1, r.SimilarityScore, r.ID, r.UserID, r.Date, r.Description,
			r.Amount.Float64(), string(r.Type), r.Category, r.Method, balance,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.SetColWidth(resultsSheet, "F", "F", 40)
}

func writeSummarySheet(f *excelize.File, response *models.SearchResponse) error {
	rows := [][]interface{}{
		{"Query", response.Query},
		{"Top K", response.TopK},
		{"Results", response.ResultsFound},
	}
	if s := response.Summary; s != nil {
		rows = append(rows,
			[]interface{}{"Total amount", s.TotalAmount},
			[]interface{}{"Average amount", s.AverageAmount},
			[]interface{}{},
			[]interface{}{"Category", "Amount"},
		)
		for _, c := range s.CategoryBreakdown {
			rows = append(rows, []interface{}{c.Category, c.Amount})
		}
		rows = append(rows, []interface{}{}, []interface{}{"Month", "Amount"})
		for _, m := range sortedKeys(s.MonthlySummary) {
			rows = append(rows, []interface{}{m, s.MonthlySummary[m]})
		}
		if len(s.Insights) > 0 {
			rows = append(rows, []interface{}{}, []interface{}{"Insights"})
			for _, in := range s.Insights {
				rows = append(rows, []interface{}{in})
			}
		}
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 24)
}
