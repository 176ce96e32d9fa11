package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"lecture-quiz/api/internal/quiz"
)

const (
	QuizSheet   = "Quiz"
	ResultSheet = "Result"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var quizHeaders = []string{"No", "Type", "Question", "Options / Pairs", "Answer", "Explanation"}

var resultHeaders = []string{"No", "Question", "Submitted", "Answer", "Correct"}

// Workbook renders set, and res when given, into xlsx bytes.
func Workbook(set quiz.Set, res *quiz.Result) ([]byte, error) {
	if set.Empty() {
		return nil, quiz.ErrNoQuiz
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), QuizSheet); err != nil {
		return nil, fmt.Errorf("failed to name Excel sheet: %w", err)
	}
	if err := writeRow(f, QuizSheet, 1, toAny(quizHeaders)); err != nil {
		return nil, err
	}
	for i, it := range set.Items {
		row := []any{i + 1, string(it.Kind), it.Question, choices(it), it.Answer, it.Explanation}
		if err := writeRow(f, QuizSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if res != nil {
		if _, err := f.NewSheet(ResultSheet); err != nil {
			return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
		}
		if err := writeRow(f, ResultSheet, 1, toAny(resultHeaders)); err != nil {
			return nil, err
		}
		for i, ir := range res.Items {
			mark := "no"
			if ir.IsCorrect {
				mark = "yes"
			}
			if err := writeRow(f, ResultSheet, i+2, []any{ir.Index + 1, ir.Question, ir.Submitted, ir.Answer, mark}); err != nil {
				return nil, err
			}
		}
		summary := len(res.Items) + 3
		if err := writeRow(f, ResultSheet, summary, []any{"Score", fmt.Sprintf("%d/%d", res.Correct, res.Total), fmt.Sprintf("%.1f%%", res.Percentage)}); err != nil {
			return nil, err
		}
	}

	idx, err := f.GetSheetIndex(QuizSheet)
	if err == nil {
		f.SetActiveSheet(idx)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name for a set.
func Filename(set quiz.Set) string {
	base := strings.TrimSuffix(strings.TrimSpace(set.SourceName), ".pdf")
	if base == "" {
		base = "quiz"
	}
	if set.ID != "" {
		return fmt.Sprintf("%s-%s.xlsx", base, shortID(set.ID))
	}
	return base + ".xlsx"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func choices(it quiz.Item) string {
	switch {
	case len(it.Options) > 0:
		parts := make([]string, len(it.Options))
		for i, o := range it.Options {
			parts[i] = fmt.Sprintf("%d. %s", i+1, o)
		}
		return strings.Join(parts, "\n")
	case len(it.Pairs) > 0:
		parts := make([]string, len(it.Pairs))
		for i, p := range it.Pairs {
			parts[i] = p.Left + " - " + p.Right
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
