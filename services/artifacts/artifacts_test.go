package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chronobot-controlplane/pkg/config"
	"chronobot-controlplane/services/taskstore"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.BaseDir = t.TempDir()
	return NewWriter(cfg), cfg.Storage.BaseDir
}

func testArtifact(taskID string, at time.Time) (taskstore.Task, taskstore.GeneratedArtifact) {
	task := taskstore.Task{
		ID:          taskID,
		Description: "Создай страницу с кнопкой",
		Summary:     "Создай страницу с кнопкой",
		SourceType:  taskstore.SourceText,
	}
	artifact := taskstore.GeneratedArtifact{
		TaskID:       taskID,
		RawCode:      "<button>Hi</button>",
		RenderedHTML: "<!DOCTYPE html><html><body><button>Hi</button></body></html>",
		GeneratedAt:  at,
	}
	return task, artifact
}

func TestSaveWritesHTMLAndSidecar(t *testing.T) {
	writer, baseDir := newTestWriter(t)

	at := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	task, artifact := testArtifact("text_1", at)

	htmlPath, metaPath, err := writer.Save("42", "sess-1", "web", task, artifact)
	require.NoError(t, err)

	dir := filepath.Join(baseDir, "users", "user_42", "codes")
	require.Equal(t, filepath.Join(dir, "task_text_1_20250601_123045.html"), htmlPath)
	require.Equal(t, filepath.Join(dir, "task_text_1_20250601_123045.json"), metaPath)

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	require.Equal(t, artifact.RenderedHTML, string(html))

	raw, err := os.ReadFile(metaPath)
	require.NoError(t, err)

	var meta Metadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	require.Equal(t, "text_1", meta.TaskID)
	require.Equal(t, "Создай страницу с кнопкой", meta.TaskDescription)
	require.Equal(t, "text", meta.TaskType)
	require.Equal(t, at.Format(time.RFC3339), meta.GeneratedAt)
	require.Equal(t, "task_text_1_20250601_123045.html", meta.HTMLFile)
	require.Equal(t, "42", meta.UserID)
	require.Equal(t, "sess-1", meta.SessionID)
	require.Equal(t, "web", meta.Platform)
}

func TestScanEmptyBaseDir(t *testing.T) {
	writer, _ := newTestWriter(t)

	projects, err := writer.Scan()
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestScanReturnsNewestFirst(t *testing.T) {
	writer, _ := newTestWriter(t)

	older, olderArt := testArtifact("text_1", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	_, _, err := writer.Save("42", "sess-1", "web", older, olderArt)
	require.NoError(t, err)

	newer, newerArt := testArtifact("text_2", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	newer.Description = "вторая задача"
	_, _, err = writer.Save("43", "sess-2", "web", newer, newerArt)
	require.NoError(t, err)

	projects, err := writer.Scan()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, "text_2", projects[0].TaskID)
	require.Equal(t, "text_1", projects[1].TaskID)

	html, err := os.ReadFile(projects[0].HTMLPath)
	require.NoError(t, err)
	require.NotEmpty(t, html)
}

func TestScanSkipsBrokenSidecars(t *testing.T) {
	writer, _ := newTestWriter(t)

	task, artifact := testArtifact("text_1", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	htmlPath, _, err := writer.Save("42", "sess-1", "web", task, artifact)
	require.NoError(t, err)

	dir := filepath.Dir(htmlPath)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "task_text_9_broken.json"), []byte("{not json"), 0o644))

	projects, err := writer.Scan()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "text_1", projects[0].TaskID)
}

func TestScanSkipsSidecarWithMissingHTML(t *testing.T) {
	writer, _ := newTestWriter(t)

	task, artifact := testArtifact("text_1", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	htmlPath, _, err := writer.Save("42", "sess-1", "web", task, artifact)
	require.NoError(t, err)
	require.NoError(t, os.Remove(htmlPath))

	projects, err := writer.Scan()
	require.NoError(t, err)
	require.Empty(t, projects)
}
