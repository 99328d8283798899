package taskstore

import (
	"time"

	"gorm.io/datatypes"
)

// SourceType classifies how a task entered the system.
type SourceType string

const (
	SourceExcel   SourceType = "excel"
	SourceText    SourceType = "text"
	SourceExample SourceType = "example"
)

// Task is a unit of work submitted by a user. IDs are content-derived
// ({source}_{sequence}) and never reused within one user's history.
type Task struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Summary     string            `json:"summary"`
	SourceType  SourceType        `json:"source_type"`
	RawFields   map[string]string `json:"raw_fields,omitempty"`
}

// GeneratedArtifact is the result of running a task through the pipeline.
// At most one artifact is current per task; regeneration replaces it.
type GeneratedArtifact struct {
	TaskID       string    `json:"task_id"`
	RawCode      string    `json:"raw_code"`
	RenderedHTML string    `json:"rendered_html"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// UserState is the whole of one user's task history. It is replaced
// wholesale on every mutation; callers never share slices or maps with
// the store.
type UserState struct {
	UserID        string                       `json:"user_id"`
	Tasks         []Task                       `json:"tasks"`
	Artifacts     map[string]GeneratedArtifact `json:"artifacts"`
	CurrentTaskID string                       `json:"current_task_id,omitempty"`
}

// FindByDescription returns the first task whose description matches
// exactly. Deduplication is full-text equality, not fuzzy matching.
func (s *UserState) FindByDescription(description string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.Description == description {
			return t, true
		}
	}
	return Task{}, false
}

// FindByID returns the task with the given id.
func (s *UserState) FindByID(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// CountBySource returns how many tasks of the given sources exist.
func (s *UserState) CountBySource(sources ...SourceType) int {
	n := 0
	for _, t := range s.Tasks {
		for _, src := range sources {
			if t.SourceType == src {
				n++
				break
			}
		}
	}
	return n
}

// UserStateRecord is the persisted row: one row per user, the state
// serialized as a JSON document and replaced wholesale on mutation.
type UserStateRecord struct {
	UserID    string         `gorm:"column:user_id;primaryKey;type:varchar(64)"`
	State     datatypes.JSON `gorm:"column:state"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (UserStateRecord) TableName() string {
	return "user_states"
}
