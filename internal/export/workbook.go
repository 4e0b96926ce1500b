package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
	"github.com/p-n-ai/curriculum-designer/internal/quiz"
)

// Workbook sheet names.
const (
	SheetOverview   = "Overview"
	SheetModules    = "Modules"
	SheetProjects   = "Projects"
	SheetAssessment = "Assessment"
	SheetReferences = "References"
)

// WriteWorkbook writes the curriculum as an XLSX workbook with one sheet
// per section.
func WriteWorkbook(w io.Writer, c *curriculum.Curriculum) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#EEF2FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	overview := [][]any{
		{"Field", "Value"},
		{"Subject", c.Subject},
		{"Target Audience", c.TargetAudience},
		{"Duration", c.Duration},
		{"Vision", c.Vision},
		{"Plan Title", c.ContentPlan.Title},
		{"Tips for Success", c.ContentPlan.LevelTips},
		{"Essential Tools", c.ContentPlan.Tools},
	}
	for i, obj := range c.LearningObjectives {
		overview = append(overview, []any{fmt.Sprintf("Objective %d", i+1), obj})
	}

	modules := [][]any{{"#", "Module", "Weeks", "Assessment", "Topics"}}
	for i, m := range c.ContentPlan.Modules {
		modules = append(modules, []any{i + 1, m.ModuleTitle, m.Weeks, m.Assessment, strings.Join(m.Topics, ", ")})
	}

	projects := [][]any{{"Title", "Level", "Description", "GitHub"}}
	for _, p := range c.ProjectsByIndustry {
		projects = append(projects, []any{p.Title, p.Level, p.Description, p.GithubLink})
	}

	assessment := [][]any{{"#", "Question", "Option A", "Option B", "Option C", "Option D", "Correct Answer"}}
	for i, q := range c.AssessmentQuestions {
		row := []any{i + 1, q.Question}
		for j := 0; j < 4; j++ {
			if j < len(q.Options) {
				row = append(row, q.Options[j])
			} else {
				row = append(row, "")
			}
		}
		row = append(row, quiz.CorrectOptionText(q))
		assessment = append(assessment, row)
	}

	refs := [][]any{{"Name", "Link"}}
	for _, r := range c.References {
		refs = append(refs, []any{r.Name, r.Link})
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetOverview, overview},
		{SheetModules, modules},
		{SheetProjects, projects},
		{SheetAssessment, assessment},
		{SheetReferences, refs},
	}
	for _, s := range sheets {
		if s.name != SheetOverview {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("creating sheet %s: %w", s.name, err)
			}
		}
		if err := writeRows(f, s.name, s.rows, header); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, r+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 28); err != nil {
		return fmt.Errorf("sizing %s columns: %w", sheet, err)
	}
	return nil
}
