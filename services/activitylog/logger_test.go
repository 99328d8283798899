package activitylog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chronobot-controlplane/pkg/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.BaseDir = t.TempDir()
	return NewLogger(cfg), cfg.Storage.BaseDir
}

func todayLogPath(baseDir string) string {
	name := fmt.Sprintf("activity_%s.csv", time.Now().Format("2006-01-02"))
	return filepath.Join(baseDir, "logs", name)
}

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestLogWritesHeaderAndRow(t *testing.T) {
	logger, baseDir := newTestLogger(t)

	logger.Log(Entry{
		UserID:      "42",
		SessionID:   "sess-1",
		Action:      "create_text_task",
		TaskID:      "text_1",
		Description: "Создай страницу с кнопкой",
		Platform:    "web",
	})

	records := readRecords(t, todayLogPath(baseDir))
	require.Len(t, records, 2)
	require.Equal(t, header, records[0])

	row := records[1]
	require.Equal(t, "42", row[1])
	require.Equal(t, "sess-1", row[2])
	require.Equal(t, "create_text_task", row[3])
	require.Equal(t, "text_1", row[4])
	require.Equal(t, "Создай страницу с кнопкой", row[5])
	require.Equal(t, "web", row[6])

	_, err := time.Parse(time.RFC3339, row[0])
	require.NoError(t, err)
}

func TestLogAppendsWithoutDuplicatingHeader(t *testing.T) {
	logger, baseDir := newTestLogger(t)

	logger.Log(Entry{UserID: "42", Action: "create_text_task", TaskID: "text_1"})
	logger.Log(Entry{UserID: "42", Action: "generate_code_start", TaskID: "text_1"})
	logger.Log(Entry{UserID: "42", Action: "generate_code_success", TaskID: "text_1"})

	records := readRecords(t, todayLogPath(baseDir))
	require.Len(t, records, 4)
	require.Equal(t, header, records[0])
	require.Equal(t, "create_text_task", records[1][3])
	require.Equal(t, "generate_code_start", records[2][3])
	require.Equal(t, "generate_code_success", records[3][3])
}

func TestLogTruncatesLongDescription(t *testing.T) {
	logger, baseDir := newTestLogger(t)

	long := strings.Repeat("о", 250)
	logger.Log(Entry{UserID: "42", Action: "create_text_task", Description: long})

	records := readRecords(t, todayLogPath(baseDir))
	require.Len(t, records, 2)
	require.Equal(t, maxDescriptionRunes, len([]rune(records[1][5])))
}

func TestLogDescriptionWithCommasAndNewlines(t *testing.T) {
	logger, baseDir := newTestLogger(t)

	description := "Хочу: лендинг, с формой\nЧтобы: собирать заявки"
	logger.Log(Entry{UserID: "42", Action: "create_text_task", Description: description})

	records := readRecords(t, todayLogPath(baseDir))
	require.Len(t, records, 2)
	require.Equal(t, description, records[1][5])
}

func TestLogSurvivesUnwritableDir(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.BaseDir = filepath.Join(t.TempDir(), "file-in-the-way")
	require.NoError(t, os.WriteFile(cfg.Storage.BaseDir, []byte("not a dir"), 0o644))

	logger := NewLogger(cfg)

	// Must not panic or return an error to the caller.
	logger.Log(Entry{UserID: "42", Action: "create_text_task"})
}
