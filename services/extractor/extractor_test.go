package extractor

import (
	"bytes"
	"strings"
	"testing"

	"chronobot-controlplane/services/taskstore"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func buildWorkbook(t *testing.T, headers []string, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestResolveColumnExactMatch(t *testing.T) {
	headers := []string{"ID", "Хочу", "Критерии приемки"}

	require.Equal(t, 1, ResolveColumn(headers, DescriptionGroups[0]))
	require.Equal(t, 2, ResolveColumn(headers, DescriptionGroups[2]))
	require.Equal(t, -1, ResolveColumn(headers, DescriptionGroups[1]))
}

func TestResolveColumnPrefersExactOverSubstring(t *testing.T) {
	headers := []string{"Что я хочу сделать", "Хочу"}

	require.Equal(t, 1, ResolveColumn(headers, DescriptionGroups[0]))
}

func TestResolveColumnSubstringFallback(t *testing.T) {
	headers := []string{"Что я хочу сделать", "acceptance criteria (MVP)"}

	require.Equal(t, 0, ResolveColumn(headers, DescriptionGroups[0]))
	require.Equal(t, 1, ResolveColumn(headers, DescriptionGroups[2]))
}

func TestAcceptValue(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  string
		valid bool
	}{
		{name: "normal value", raw: "  Создать лендинг  ", want: "Создать лендинг", valid: true},
		{name: "too short", raw: "абв", valid: false},
		{name: "nan sentinel", raw: "nan", valid: false},
		{name: "nan sentinel uppercase", raw: "NaN", valid: false},
		{name: "russian sentinel", raw: "не указано", valid: false},
		{name: "нет sentinel", raw: "нет", valid: false},
		{name: "empty", raw: "   ", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AcceptValue(tt.raw)
			require.Equal(t, tt.valid, ok)
			if tt.valid {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractSingleWantColumn(t *testing.T) {
	buf := buildWorkbook(t, []string{"Хочу"}, [][]string{{"Создать лендинг"}})

	tasks, err := New().ExtractTasks(buf)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.Equal(t, "excel_1", tasks[0].ID)
	require.Equal(t, "Хочу: Создать лендинг", tasks[0].Description)
	require.Equal(t, "Создать лендинг", tasks[0].Summary)
	require.Equal(t, taskstore.SourceExcel, tasks[0].SourceType)
	require.Equal(t, map[string]string{"Хочу": "Создать лендинг"}, tasks[0].RawFields)
}

func TestExtractComposesGroupsInOrder(t *testing.T) {
	headers := []string{"Комментарии", "Чтобы", "Хочу"}
	buf := buildWorkbook(t, headers, [][]string{
		{"сделать до пятницы", "пользователи видели прайс", "страницу с ценами"},
	})

	tasks, err := New().ExtractTasks(buf)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.Equal(t,
		"Хочу: страницу с ценами\nЧтобы: пользователи видели прайс\nКомментарии: сделать до пятницы",
		tasks[0].Description)
}

func TestExtractSentinelRejection(t *testing.T) {
	buf := buildWorkbook(t, []string{"Хочу"}, [][]string{{"nan"}})

	tasks, err := New().ExtractTasks(buf)
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestExtractSkipsShortDescription(t *testing.T) {
	// "Хочу: сайт" is exactly 10 runes, at the skip threshold.
	buf := buildWorkbook(t, []string{"Хочу"}, [][]string{{"сайт"}})

	tasks, err := New().ExtractTasks(buf)
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestExtractRowIndexing(t *testing.T) {
	buf := buildWorkbook(t, []string{"Хочу"}, [][]string{
		{"Создать лендинг"},
		{"nan"},
		{"Создать интернет-магазин"},
	})

	tasks, err := New().ExtractTasks(buf)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// Row indices are positional, not sequential over accepted rows.
	require.Equal(t, "excel_1", tasks[0].ID)
	require.Equal(t, "excel_3", tasks[1].ID)
}

func TestSummaryFirstFiveWords(t *testing.T) {
	buf := buildWorkbook(t, []string{"Хочу"}, [][]string{
		{"один два три четыре пять шесть семь"},
	})

	tasks, err := New().ExtractTasks(buf)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "один два три четыре пять", tasks[0].Summary)
}

func TestSummaryTruncatedTo40Runes(t *testing.T) {
	long := "интерактивный анимированный адаптивный потрясающий восхитительный"
	buf := buildWorkbook(t, []string{"Хочу"}, [][]string{{long}})

	tasks, err := New().ExtractTasks(buf)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.True(t, strings.HasSuffix(tasks[0].Summary, "..."))
	require.Len(t, []rune(tasks[0].Summary), 43)
}

func TestSummaryFallbackWithoutWant(t *testing.T) {
	buf := buildWorkbook(t, []string{"Комментарии"}, [][]string{
		{"нужен интерактивный прототип с анимациями"},
	})

	tasks, err := New().ExtractTasks(buf)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Задача 1", tasks[0].Summary)
}

func TestExtractTasksParseError(t *testing.T) {
	_, err := New().ExtractTasks(strings.NewReader("definitely not a workbook"))
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
