// Package activitylog appends one CSV row per user action to a daily
// log file. The core never reads these files back; logging failures are
// reported but never fail the triggering operation.
package activitylog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"chronobot-controlplane/pkg/config"

	"go.uber.org/zap"
)

var header = []string{"timestamp", "user_id", "session_id", "action", "task_id", "task_description", "platform"}

const maxDescriptionRunes = 100

type Entry struct {
	UserID      string
	SessionID   string
	Action      string
	TaskID      string
	Description string
	Platform    string
}

type Logger struct {
	mu  sync.Mutex
	dir string
}

func NewLogger(cfg *config.Config) *Logger {
	return &Logger{dir: filepath.Join(cfg.Storage.BaseDir, "logs")}
}

// Log appends one row to today's activity file, writing the header when
// the file is first created.
func (l *Logger) Log(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		zap.L().Error("failed to create activity log dir", zap.Error(err))
		return
	}

	path := filepath.Join(l.dir, fmt.Sprintf("activity_%s.csv", time.Now().Format("2006-01-02")))

	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		zap.L().Error("failed to open activity log", zap.Error(err))
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(header); err != nil {
			zap.L().Error("failed to write activity log header", zap.Error(err))
			return
		}
	}

	description := e.Description
	if runes := []rune(description); len(runes) > maxDescriptionRunes {
		description = string(runes[:maxDescriptionRunes])
	}

	record := []string{
		time.Now().Format(time.RFC3339),
		e.UserID,
		e.SessionID,
		e.Action,
		e.TaskID,
		description,
		e.Platform,
	}
	if err := w.Write(record); err != nil {
		zap.L().Error("failed to write activity log row", zap.Error(err))
		return
	}

	w.Flush()
	if err := w.Error(); err != nil {
		zap.L().Error("failed to flush activity log", zap.Error(err))
	}
}
