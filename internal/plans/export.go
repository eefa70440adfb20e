package plans

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"visaverse-backend/internal/domain"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWorkbook renders plan as an XLSX workbook with one sheet per section.
func WriteWorkbook(w io.Writer, plan domain.Plan) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		rows [][]any
	}{
		{"Summary", summaryRows(plan)},
		{"Timeline", timelineRows(plan.Timeline)},
		{"Checklist", checklistRows(plan.Checklist)},
		{"Documents", documentRows(plan.Documents)},
		{"Risks", riskRows(plan.Risks)},
		{"Sources", sourceRows(plan.Sources)},
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return err
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func summaryRows(plan domain.Plan) [][]any {
	s := plan.Summary
	return [][]any{
		{"Field", "Value"},
		{"Title", s.Title},
		{"Key advice", joinLines(s.KeyAdvice)},
		{"Assumptions", joinLines(s.Assumptions)},
		{"Confidence", s.Confidence},
		{"Generated at", plan.GeneratedAt},
	}
}

func timelineRows(items []domain.TimelineItem) [][]any {
	rows := [][]any{{"When", "Priority", "Actions"}}
	for _, it := range items {
		rows = append(rows, []any{it.When, string(it.Priority), joinLines(it.Actions)})
	}
	return rows
}

func checklistRows(items []domain.ChecklistItem) [][]any {
	rows := [][]any{{"ID", "Title", "Priority", "Estimated time", "Depends on", "Steps"}}
	for _, it := range items {
		rows = append(rows, []any{it.ID, it.Title, string(it.Priority), it.EstimatedTime, strings.Join(it.Dependencies, ", "), joinLines(it.Steps)})
	}
	return rows
}

func documentRows(cats []domain.DocumentCategory) [][]any {
	rows := [][]any{{"Category", "Document", "Priority", "Why", "Common mistakes"}}
	for _, cat := range cats {
		for _, it := range cat.Items {
			rows = append(rows, []any{cat.Category, it.Name, string(it.Priority), it.Why, joinLines(it.CommonMistakes)})
		}
	}
	return rows
}

func riskRows(risks []domain.RiskItem) [][]any {
	rows := [][]any{{"ID", "Severity", "Risk", "Why it matters", "Mitigation"}}
	for _, r := range risks {
		rows = append(rows, []any{r.ID, string(r.Severity), r.Risk, r.WhyItMatters, joinLines(r.Mitigation)})
	}
	return rows
}

func sourceRows(sources []domain.SourceRef) [][]any {
	rows := [][]any{{"Title", "Reference"}}
	for _, s := range sources {
		rows = append(rows, []any{s.Title, s.Ref})
	}
	return rows
}

func joinLines(items []string) string {
	return strings.Join(items, "\n")
}
