// Package artifacts owns the durable on-disk record of generated code:
// one HTML file per generation plus a JSON metadata sidecar referencing
// it. Gallery views scan this pairing to reconstruct history.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chronobot-controlplane/pkg/config"
	"chronobot-controlplane/services/taskstore"

	"go.uber.org/zap"
)

const timestampLayout = "20060102_150405"

type Metadata struct {
	TaskID          string `json:"task_id"`
	TaskDescription string `json:"task_description"`
	TaskSummary     string `json:"task_summary"`
	TaskType        string `json:"task_type"`
	GeneratedAt     string `json:"generated_at"`
	HTMLFile        string `json:"html_file"`
	UserID          string `json:"user_id"`
	SessionID       string `json:"session_id,omitempty"`
	Platform        string `json:"platform,omitempty"`
}

type Writer struct {
	baseDir string
}

func NewWriter(cfg *config.Config) *Writer {
	return &Writer{baseDir: cfg.Storage.BaseDir}
}

func (w *Writer) userCodesDir(userID string) string {
	return filepath.Join(w.baseDir, "users", fmt.Sprintf("user_%s", userID), "codes")
}

// Save writes the rendered HTML and its metadata sidecar for one
// generated task. Returns the two file paths.
func (w *Writer) Save(userID, sessionID, platform string, task taskstore.Task, artifact taskstore.GeneratedArtifact) (string, string, error) {
	dir := w.userCodesDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	stamp := artifact.GeneratedAt.Format(timestampLayout)
	htmlName := fmt.Sprintf("task_%s_%s.html", task.ID, stamp)
	htmlPath := filepath.Join(dir, htmlName)

	if err := os.WriteFile(htmlPath, []byte(artifact.RenderedHTML), 0o644); err != nil {
		return "", "", err
	}

	metadata := Metadata{
		TaskID:          task.ID,
		TaskDescription: task.Description,
		TaskSummary:     task.Summary,
		TaskType:        string(task.SourceType),
		GeneratedAt:     artifact.GeneratedAt.Format(time.RFC3339),
		HTMLFile:        htmlName,
		UserID:          userID,
		SessionID:       sessionID,
		Platform:        platform,
	}

	raw, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return "", "", err
	}

	metaPath := filepath.Join(dir, fmt.Sprintf("task_%s_%s.json", task.ID, stamp))
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		return "", "", err
	}

	zap.L().Info("artifact saved",
		zap.String("user_id", userID),
		zap.String("task_id", task.ID),
		zap.String("html_file", htmlName),
	)

	return htmlPath, metaPath, nil
}
