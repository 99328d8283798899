package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Project is one reconstructed gallery entry: a metadata sidecar paired
// with the HTML file it references.
type Project struct {
	Metadata
	HTMLPath string `json:"html_path"`
}

// Scan walks every user's codes directory and reconstructs history from
// the sidecar files, newest first. Sidecars whose HTML file is missing
// or unreadable are skipped.
func (w *Writer) Scan() ([]Project, error) {
	usersDir := filepath.Join(w.baseDir, "users")

	entries, err := os.ReadDir(usersDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	projects := make([]Project, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		codesDir := filepath.Join(usersDir, entry.Name(), "codes")
		projects = append(projects, scanCodesDir(codesDir)...)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].GeneratedAt > projects[j].GeneratedAt
	})

	return projects, nil
}

func scanCodesDir(dir string) []Project {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	projects := make([]Project, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			zap.L().Warn("failed to read metadata sidecar", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		var meta Metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			zap.L().Warn("failed to decode metadata sidecar", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		htmlPath := filepath.Join(dir, meta.HTMLFile)
		if _, err := os.Stat(htmlPath); err != nil {
			continue
		}

		projects = append(projects, Project{Metadata: meta, HTMLPath: htmlPath})
	}

	return projects
}
