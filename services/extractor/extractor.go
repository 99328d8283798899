// Package extractor turns tabular input (rows × named columns) into
// canonical task records using heuristic column matching.
package extractor

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"chronobot-controlplane/services/taskstore"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ParseError means the input could not be read as tabular data at all.
// Row-level heuristic misses are silent skips, never errors.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ошибка парсинга XLSX: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const (
	// Rows whose concatenated description trims to this length or less
	// produce no task.
	minDescriptionRunes = 10

	summaryWords    = 5
	summaryMaxRunes = 40
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// ExtractTasks parses an .xlsx workbook and produces one task per data
// row that yields a non-trivial description. The first sheet is read;
// its first row is the header.
func (e *Extractor) ExtractTasks(r io.Reader) ([]taskstore.Task, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("sheet %q is empty", sheets[0])}
	}

	headers := rows[0]
	resolved := ResolveColumns(headers, DescriptionGroups)

	tasks := make([]taskstore.Task, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		if task, ok := extractRow(headers, resolved, row, idx); ok {
			tasks = append(tasks, task)
		}
	}

	zap.L().Info("extracted tasks from spreadsheet",
		zap.Int("rows", len(rows)-1),
		zap.Int("tasks", len(tasks)),
	)

	return tasks, nil
}

func extractRow(headers []string, resolved []int, row []string, idx int) (taskstore.Task, bool) {
	parts := make([]string, 0, len(DescriptionGroups))
	wantContent := ""

	for i, group := range DescriptionGroups {
		col := resolved[i]
		if col < 0 || col >= len(row) {
			continue
		}

		value, ok := AcceptValue(row[col])
		if !ok {
			continue
		}

		if i == 0 {
			wantContent = value
		}
		parts = append(parts, fmt.Sprintf("%s: %s", group.Label, value))
	}

	description := strings.Join(parts, "\n")
	if utf8.RuneCountInString(strings.TrimSpace(description)) <= minDescriptionRunes {
		return taskstore.Task{}, false
	}

	raw := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(row) {
			raw[h] = row[i]
		}
	}

	return taskstore.Task{
		ID:          fmt.Sprintf("excel_%d", idx+1),
		Description: description,
		Summary:     rowSummary(wantContent, idx),
		SourceType:  taskstore.SourceExcel,
		RawFields:   raw,
	}, true
}

// rowSummary derives a short label from the "Хочу" content: its first
// five words, truncated to 40 runes.
func rowSummary(wantContent string, idx int) string {
	if wantContent == "" {
		return fmt.Sprintf("Задача %d", idx+1)
	}

	words := strings.Fields(wantContent)
	if len(words) > summaryWords {
		words = words[:summaryWords]
	}

	summary := strings.Join(words, " ")
	if runes := []rune(summary); len(runes) > summaryMaxRunes {
		summary = string(runes[:summaryMaxRunes]) + "..."
	}
	return summary
}
