// Package pipeline composes the extractor, generation client and
// sanitizer: it normalizes any input source into a task record,
// deduplicates against task history, drives the single generation call
// and finalizes the artifact.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"chronobot-controlplane/pkg/errutil"
	"chronobot-controlplane/services/activitylog"
	"chronobot-controlplane/services/artifacts"
	"chronobot-controlplane/services/extractor"
	"chronobot-controlplane/services/genclient"
	"chronobot-controlplane/services/sanitizer"
	"chronobot-controlplane/services/taskstore"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const textSummaryRunes = 50

// Session identifies the acting user for one front-end request.
type Session struct {
	UserID    string
	SessionID string
	Platform  string
}

type Service struct {
	store     taskstore.Store
	generator genclient.Generator
	sanitizer *sanitizer.Sanitizer
	extractor *extractor.Extractor
	writer    *artifacts.Writer
	activity  *activitylog.Logger
}

type Params struct {
	fx.In
	Store     taskstore.Store
	Generator genclient.Generator
	Sanitizer *sanitizer.Sanitizer
	Extractor *extractor.Extractor
	Writer    *artifacts.Writer
	Activity  *activitylog.Logger
}

func NewService(p Params) *Service {
	return &Service{
		store:     p.Store,
		generator: p.Generator,
		sanitizer: p.Sanitizer,
		extractor: p.Extractor,
		writer:    p.Writer,
		activity:  p.Activity,
	}
}

// IntakeText turns free text into a task. If a task with an identical
// description already exists, that task is returned instead of creating
// a duplicate and the history is left untouched.
func (s *Service) IntakeText(ctx context.Context, sess Session, description string) (taskstore.Task, bool, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return taskstore.Task{}, false, errutil.ValidationFailed("описание задачи не может быть пустым")
	}

	task, created, err := s.intake(ctx, sess, taskstore.SourceText, description, textSummary(description))
	if err != nil {
		return taskstore.Task{}, false, err
	}

	if created {
		s.activity.Log(activitylog.Entry{
			UserID: sess.UserID, SessionID: sess.SessionID, Platform: sess.Platform,
			Action: "create_text_task", TaskID: task.ID, Description: task.Description,
		})
	}
	return task, created, nil
}

// IntakeExample creates a task from the built-in example catalog.
func (s *Service) IntakeExample(ctx context.Context, sess Session, key string) (taskstore.Task, bool, error) {
	example, ok := findExample(key)
	if !ok {
		return taskstore.Task{}, false, errutil.NotFound(fmt.Sprintf("пример %q не найден", key))
	}

	task, created, err := s.intake(ctx, sess, taskstore.SourceExample, example.Description, example.Summary)
	if err != nil {
		return taskstore.Task{}, false, err
	}

	if created {
		s.activity.Log(activitylog.Entry{
			UserID: sess.UserID, SessionID: sess.SessionID, Platform: sess.Platform,
			Action: "use_example", TaskID: task.ID, Description: example.Summary,
		})
	}
	return task, created, nil
}

// intake appends a task with the next {source}_{n} id unless an
// identical description already exists; either way the task becomes
// current. Example tasks share the text sequence counter.
func (s *Service) intake(ctx context.Context, sess Session, source taskstore.SourceType, description, summary string) (taskstore.Task, bool, error) {
	var task taskstore.Task
	var created bool

	_, err := s.store.Update(ctx, sess.UserID, func(state *taskstore.UserState) error {
		if existing, ok := state.FindByDescription(description); ok {
			task = existing
			created = false
			state.CurrentTaskID = existing.ID
			return nil
		}

		n := state.CountBySource(taskstore.SourceText, taskstore.SourceExample)
		task = taskstore.Task{
			ID:          fmt.Sprintf("%s_%d", source, n+1),
			Description: description,
			Summary:     summary,
			SourceType:  source,
		}
		state.Tasks = append(state.Tasks, task)
		state.CurrentTaskID = task.ID
		created = true
		return nil
	})
	if err != nil {
		return taskstore.Task{}, false, err
	}

	return task, created, nil
}

// IntakeSpreadsheet extracts tasks from an uploaded workbook and appends
// the ones whose description is not already in the history. A parse
// failure commits nothing.
func (s *Service) IntakeSpreadsheet(ctx context.Context, sess Session, r io.Reader) ([]taskstore.Task, error) {
	extracted, err := s.extractor.ExtractTasks(r)
	if err != nil {
		return nil, err
	}

	result := make([]taskstore.Task, 0, len(extracted))
	_, err = s.store.Update(ctx, sess.UserID, func(state *taskstore.UserState) error {
		for _, task := range extracted {
			if existing, ok := state.FindByDescription(task.Description); ok {
				result = append(result, existing)
				continue
			}

			// Row indices restart per upload; the history sequence
			// keeps ids unique across uploads.
			task.ID = fmt.Sprintf("excel_%d", state.CountBySource(taskstore.SourceExcel)+1)
			state.Tasks = append(state.Tasks, task)
			result = append(result, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(activitylog.Entry{
		UserID: sess.UserID, SessionID: sess.SessionID, Platform: sess.Platform,
		Action: "upload_spreadsheet", Description: fmt.Sprintf("extracted %d tasks", len(result)),
	})

	return result, nil
}

// Run drives one generation for the task. When a current artifact
// already exists and regenerate is false, it is returned without
// calling the generation client. A generation failure propagates
// verbatim and leaves the prior artifact (if any) intact.
func (s *Service) Run(ctx context.Context, sess Session, taskID string, regenerate bool) (taskstore.GeneratedArtifact, error) {
	var task taskstore.Task
	var existing taskstore.GeneratedArtifact
	var done bool

	// Lookup and the short-circuit decision happen under the user's
	// lock so a concurrent generation cannot slip between them.
	_, err := s.store.Update(ctx, sess.UserID, func(state *taskstore.UserState) error {
		found, ok := state.FindByID(taskID)
		if !ok {
			return errutil.NotFound(fmt.Sprintf("задача %q не найдена", taskID))
		}
		task = found

		if artifact, ok := state.Artifacts[taskID]; ok && !regenerate {
			existing = artifact
			done = true
			state.CurrentTaskID = taskID
		}
		return nil
	})
	if err != nil {
		return taskstore.GeneratedArtifact{}, err
	}
	if done {
		return existing, nil
	}

	s.activity.Log(activitylog.Entry{
		UserID: sess.UserID, SessionID: sess.SessionID, Platform: sess.Platform,
		Action: "generate_code_start", TaskID: task.ID, Description: task.Description,
	})

	raw, err := s.generator.Generate(ctx, task.Description)
	if err != nil {
		zap.L().Error("generation failed",
			zap.String("user_id", sess.UserID),
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
		s.activity.Log(activitylog.Entry{
			UserID: sess.UserID, SessionID: sess.SessionID, Platform: sess.Platform,
			Action: "generate_code_failed", TaskID: task.ID, Description: task.Description,
		})
		return taskstore.GeneratedArtifact{}, err
	}

	artifact := taskstore.GeneratedArtifact{
		TaskID:       task.ID,
		RawCode:      raw,
		RenderedHTML: s.sanitizer.Render(raw),
		GeneratedAt:  time.Now(),
	}

	if _, _, err := s.writer.Save(sess.UserID, sess.SessionID, sess.Platform, task, artifact); err != nil {
		zap.L().Error("failed to persist artifact files",
			zap.String("user_id", sess.UserID),
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
		return taskstore.GeneratedArtifact{}, errutil.Internal("не удалось сохранить сгенерированный код", errutil.WithErr(err))
	}

	_, err = s.store.Update(ctx, sess.UserID, func(state *taskstore.UserState) error {
		if _, ok := state.FindByID(taskID); !ok {
			return errutil.NotFound(fmt.Sprintf("задача %q не найдена", taskID))
		}
		state.Artifacts[taskID] = artifact
		state.CurrentTaskID = taskID
		return nil
	})
	if err != nil {
		return taskstore.GeneratedArtifact{}, err
	}

	s.activity.Log(activitylog.Entry{
		UserID: sess.UserID, SessionID: sess.SessionID, Platform: sess.Platform,
		Action: "generate_code_success", TaskID: task.ID, Description: task.Description,
	})

	return artifact, nil
}

// Switch makes an existing task current without generating anything.
func (s *Service) Switch(ctx context.Context, sess Session, taskID string) (taskstore.Task, error) {
	var task taskstore.Task

	_, err := s.store.Update(ctx, sess.UserID, func(state *taskstore.UserState) error {
		found, ok := state.FindByID(taskID)
		if !ok {
			return errutil.NotFound(fmt.Sprintf("задача %q не найдена", taskID))
		}
		task = found
		state.CurrentTaskID = taskID
		return nil
	})
	if err != nil {
		return taskstore.Task{}, err
	}

	s.activity.Log(activitylog.Entry{
		UserID: sess.UserID, SessionID: sess.SessionID, Platform: sess.Platform,
		Action: "switch_task", TaskID: task.ID, Description: task.Description,
	})

	return task, nil
}

// ClearHistory removes the user's tasks and artifacts together.
func (s *Service) ClearHistory(ctx context.Context, sess Session) error {
	if err := s.store.Clear(ctx, sess.UserID); err != nil {
		return err
	}

	s.activity.Log(activitylog.Entry{
		UserID: sess.UserID, SessionID: sess.SessionID, Platform: sess.Platform,
		Action: "clear_history",
	})
	return nil
}

// State returns the user's task history.
func (s *Service) State(ctx context.Context, sess Session) (taskstore.UserState, error) {
	return s.store.Get(ctx, sess.UserID)
}

// Artifact returns the current artifact for a task, if any.
func (s *Service) Artifact(ctx context.Context, sess Session, taskID string) (taskstore.GeneratedArtifact, error) {
	state, err := s.store.Get(ctx, sess.UserID)
	if err != nil {
		return taskstore.GeneratedArtifact{}, err
	}

	artifact, ok := state.Artifacts[taskID]
	if !ok {
		return taskstore.GeneratedArtifact{}, errutil.NotFound(fmt.Sprintf("для задачи %q код еще не сгенерирован", taskID))
	}
	return artifact, nil
}

func textSummary(description string) string {
	runes := []rune(description)
	if len(runes) > textSummaryRunes {
		return string(runes[:textSummaryRunes]) + "..."
	}
	return description
}
