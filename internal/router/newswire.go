package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/newsdeck/newswire/internal/apperr"
	"github.com/newsdeck/newswire/internal/domain"
	"github.com/newsdeck/newswire/internal/hub"
	"github.com/newsdeck/newswire/internal/scheduler"
	"github.com/newsdeck/newswire/internal/storage"
)

// NewswireRouter binds the admin and realtime surface: scheduler
// control, status, article listing, and the websocket endpoint.
type NewswireRouter struct {
	e     *echo.Echo
	ctx   context.Context
	sched *scheduler.Scheduler
	hub   *hub.Hub
	repo  storage.ArticleRepository
}

func NewNewswireRouter(e *echo.Echo, ctx context.Context, sched *scheduler.Scheduler, h *hub.Hub, repo storage.ArticleRepository) *NewswireRouter {
	return &NewswireRouter{
		e:     e,
		ctx:   ctx,
		sched: sched,
		hub:   h,
		repo:  repo,
	}
}

func (r *NewswireRouter) Bind() {
	r.e.GET("/status", r.statusHandler)
	r.e.POST("/scheduler/start", r.startHandler)
	r.e.POST("/scheduler/stop", r.stopHandler)
	r.e.POST("/fetch", r.fetchHandler)
	r.e.GET("/articles", r.articlesHandler)
	r.e.GET("/ws", r.hub.ServeWS)
}

type statusResponse struct {
	Scheduler scheduler.Status `json:"scheduler"`
	Hub       hub.Stats        `json:"hub"`
}

func (r *NewswireRouter) statusHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Scheduler: r.sched.Status(),
		Hub:       r.hub.Stats(),
	})
}

func (r *NewswireRouter) startHandler(c echo.Context) error {
	if err := r.sched.Start(r.ctx); err != nil {
		if errors.Is(err, apperr.ErrSchedulerRunning) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusOK, r.sched.Status())
}

func (r *NewswireRouter) stopHandler(c echo.Context) error {
	if err := r.sched.Stop(); err != nil {
		if errors.Is(err, apperr.ErrSchedulerStopped) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusOK, r.sched.Status())
}

// fetchHandler triggers one ingestion tick on demand. Budget and
// provider failures surface through the global error handler.
func (r *NewswireRouter) fetchHandler(c echo.Context) error {
	result, err := r.sched.Tick(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (r *NewswireRouter) articlesHandler(c echo.Context) error {
	var filter storage.Filter

	if status := c.QueryParam("status"); status != "" {
		s := domain.Status(status)
		if s != domain.StatusDraft && s != domain.StatusPublished {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown status"})
		}
		filter.Status = &s
	}

	filter.Category = c.QueryParam("category")

	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			n = 50
		}
		filter.Limit = n
	}

	articles, err := r.repo.FindAll(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articles)
}
