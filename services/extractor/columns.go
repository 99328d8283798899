package extractor

import (
	"strings"
	"unicode/utf8"
)

// FieldGroup is one semantic part of a task description, matched against
// spreadsheet headers by any of its aliases.
type FieldGroup struct {
	Label   string
	Aliases []string
}

// DescriptionGroups lists the field groups in fixed priority order. The
// first group ("Хочу") additionally feeds the task summary.
var DescriptionGroups = []FieldGroup{
	{Label: "Хочу", Aliases: []string{"Хочу", "Want", "Wish"}},
	{Label: "Чтобы", Aliases: []string{"Чтобы", "So that", "For"}},
	{Label: "Критерии приемки", Aliases: []string{"Критерии приемки", "Acceptance Criteria", "Criteria"}},
	{Label: "Комментарии", Aliases: []string{"Комментарии", "Comments", "Comment"}},
}

// sentinelValues are service strings a spreadsheet cell may carry instead
// of real content.
var sentinelValues = map[string]struct{}{
	"nan":        {},
	"none":       {},
	"null":       {},
	"нет":        {},
	"не указано": {},
}

// ResolveColumn maps a field group to a header index. Ordered rules:
// exact case-sensitive header match against any alias, then substring
// match (header containing an alias, case-insensitive). Returns -1 when
// no header matches.
func ResolveColumn(headers []string, group FieldGroup) int {
	for _, alias := range group.Aliases {
		for i, h := range headers {
			if h == alias {
				return i
			}
		}
	}

	for _, alias := range group.Aliases {
		lowered := strings.ToLower(alias)
		for i, h := range headers {
			if strings.Contains(strings.ToLower(h), lowered) {
				return i
			}
		}
	}

	return -1
}

// ResolveColumns resolves every description group against the table
// headers once; absent groups map to -1.
func ResolveColumns(headers []string, groups []FieldGroup) []int {
	resolved := make([]int, len(groups))
	for i, g := range groups {
		resolved[i] = ResolveColumn(headers, g)
	}
	return resolved
}

// AcceptValue trims a resolved cell and reports whether it carries real
// content: longer than 3 runes and not a sentinel.
func AcceptValue(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if utf8.RuneCountInString(value) <= 3 {
		return "", false
	}
	if _, ok := sentinelValues[strings.ToLower(value)]; ok {
		return "", false
	}
	return value, true
}
