// Package httpapi is the REST boundary the front-end shells (web
// dashboard, chat bot) call into. It carries no pipeline logic of its
// own: every route delegates to the pipeline service.
package httpapi

import (
	"errors"
	"net/http"

	"chronobot-controlplane/pkg/config"
	"chronobot-controlplane/pkg/errutil"
	"chronobot-controlplane/pkg/health"
	"chronobot-controlplane/pkg/middleware"
	"chronobot-controlplane/services/artifacts"
	"chronobot-controlplane/services/extractor"
	"chronobot-controlplane/services/genclient"
	"chronobot-controlplane/services/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi.module",
	fx.Provide(
		NewHandler,
		NewRouter,
	),
)

type Handler struct {
	pipeline *pipeline.Service
	writer   *artifacts.Writer
	health   health.HealthService
}

type Params struct {
	fx.In
	Pipeline *pipeline.Service
	Writer   *artifacts.Writer
	Health   health.HealthService
}

func NewHandler(p Params) *Handler {
	return &Handler{
		pipeline: p.Pipeline,
		writer:   p.Writer,
		health:   p.Health,
	}
}

func NewRouter(cfg *config.Config, h *Handler) http.Handler {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Error())

	r.GET("/healthz", h.health.Liveness)
	r.GET("/readyz", h.health.Readiness)

	v1 := r.Group("/v1")
	{
		v1.GET("/examples", h.listExamples)
		v1.GET("/gallery", h.gallery)

		v1.POST("/tasks", h.createTextTask)
		v1.POST("/tasks/examples/:key", h.createExampleTask)
		v1.POST("/tasks/import", h.importSpreadsheet)
		v1.GET("/tasks", h.listTasks)
		v1.DELETE("/tasks", h.clearHistory)

		v1.POST("/tasks/:id/generate", h.generate)
		v1.POST("/tasks/:id/switch", h.switchTask)
		v1.GET("/tasks/:id/artifact", h.artifact)
	}

	return r
}

// session builds the request identity. The shells own user identity and
// pass it along; a session id is minted when they do not supply one.
func session(c *gin.Context) (pipeline.Session, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		_ = c.Error(errutil.BadRequest("заголовок X-User-ID обязателен"))
		return pipeline.Session{}, false
	}

	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	platform := c.GetHeader("X-Platform")
	if platform == "" {
		platform = "web"
	}

	return pipeline.Session{UserID: userID, SessionID: sessionID, Platform: platform}, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var parseErr *extractor.ParseError
	if errors.As(err, &parseErr) {
		err = errutil.UnprocessableEntity("не удалось разобрать файл", errutil.WithErr(parseErr))
	}

	var genErr *genclient.GenerationError
	if errors.As(err, &genErr) {
		code := errutil.StatusBadGateway
		if genErr.Kind == genclient.KindTimeout {
			code = errutil.StatusGatewayTimeout
		}
		err = errutil.New(code, "Не удалось сгенерировать код", errutil.WithErr(genErr))
	}

	_ = c.Error(err)
}

type createTaskRequest struct {
	Description string `json:"description" binding:"required"`
}

func (h *Handler) createTextTask(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errutil.BadRequest("некорректное тело запроса", errutil.WithErr(err)))
		return
	}

	task, created, err := h.pipeline.IntakeText(c.Request.Context(), sess, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"task": task, "created": created})
}

func (h *Handler) createExampleTask(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	task, created, err := h.pipeline.IntakeExample(c.Request.Context(), sess, c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"task": task, "created": created})
}

func (h *Handler) importSpreadsheet(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.fail(c, errutil.BadRequest("файл не найден в запросе", errutil.WithErr(err)))
		return
	}
	defer file.Close()

	tasks, err := h.pipeline.IntakeSpreadsheet(c.Request.Context(), sess, file)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tasks": tasks})
}

func (h *Handler) listTasks(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	state, err := h.pipeline.State(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err)
		return
	}

	// Artifact bodies are large; the listing only reports which tasks
	// are complete.
	complete := make([]string, 0, len(state.Artifacts))
	for id := range state.Artifacts {
		complete = append(complete, id)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":           state.Tasks,
		"current_task_id": state.CurrentTaskID,
		"complete":        complete,
	})
}

func (h *Handler) generate(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	regenerate := c.Query("regenerate") == "true"

	artifact, err := h.pipeline.Run(c.Request.Context(), sess, c.Param("id"), regenerate)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifact": artifact})
}

func (h *Handler) switchTask(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	task, err := h.pipeline.Switch(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *Handler) artifact(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	artifact, err := h.pipeline.Artifact(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(artifact.RenderedHTML))
}

func (h *Handler) clearHistory(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	if err := h.pipeline.ClearHistory(c.Request.Context(), sess); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) listExamples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": pipeline.Examples()})
}

func (h *Handler) gallery(c *gin.Context) {
	projects, err := h.writer.Scan()
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}
