package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"FinFold/internal/domain/models"
	"FinFold/internal/service/ratelimit"
	"FinFold/internal/usecase"
	xhttp "FinFold/pkg/http"
	applogger "FinFold/pkg/logger"
	"FinFold/pkg/queue"
	"FinFold/pkg/util"
)

// RunsHandler exposes the evaluation-run API. Synchronous requests block
// until the walk finishes; async requests are queued and return 202 with
// the run ID to poll.
type RunsHandler struct {
	logger  *applogger.Logger
	runner  *usecase.Runner
	queue   queue.Service
	limiter *ratelimit.Limiter
}

// NewRunsHandler builds the handler. The queue is optional; without it
// async requests are rejected.
func NewRunsHandler(logger *applogger.Logger, runner *usecase.Runner, q queue.Service) *RunsHandler {
	return &RunsHandler{
		logger:  logger,
		runner:  runner,
		queue:   q,
		limiter: ratelimit.New(5, 0.5),
	}
}

func (h *RunsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/runs", h.Create)
	g.GET("/runs/:id", h.Get)
	g.GET("/runs/:id/rows", h.Rows)
}

func (h *RunsHandler) Create(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP()) {
		h.logger.Warn("run request rate limited", applogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many run requests"))
	}

	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	spec, err := specFromRequest(req)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	if req.Async {
		if h.queue == nil {
			return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("async runs require a queue backend"))
		}
		if err := h.queue.PublishMessage(c.Request().Context(), usecase.RunJobType, spec); err != nil {
			h.logger.Error("enqueue run", applogger.String("run_id", spec.ID), applogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("could not enqueue run").WithError(err))
		}
		h.runner.TrackPending(spec.ID)
		h.logger.Info("run enqueued", applogger.String("run_id", spec.ID))
		return xhttp.AcceptedResponse(c, models.RunSummary{RunID: spec.ID, Status: models.RunPending})
	}

	result, err := h.runner.Execute(c.Request().Context(), spec)
	if err != nil {
		h.logger.Error("run execute", applogger.String("run_id", spec.ID), applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()).WithError(err))
	}
	return xhttp.CreatedResponse(c, result)
}

func (h *RunsHandler) Get(c echo.Context) error {
	id := c.Param("id")
	summary, err := h.runner.GetRun(id)
	if err != nil {
		if errors.Is(err, usecase.ErrRunNotFound) {
			return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("run %s not found", id))
		}
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, summary)
}

func (h *RunsHandler) Rows(c echo.Context) error {
	req := &models.RunRowsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, total, err := h.runner.GetRows(c.Request().Context(), req.ID, req.Offset, req.Limit)
	if err != nil {
		if errors.Is(err, usecase.ErrRunNotFound) {
			return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("run %s not found", req.ID))
		}
		h.logger.Error("fetch rows", applogger.String("run_id", req.ID), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, total)
}

// specFromRequest parses the string spans and mints an ID so async callers
// can poll before the worker picks the job up.
func specFromRequest(req *models.RunRequest) (models.RunSpec, error) {
	initialTrain, err := util.ParseSpan(req.InitialTrainSpan)
	if err != nil {
		return models.RunSpec{}, xhttp.BadRequestErrorf("initial_train_span: %v", err)
	}
	test, err := util.ParseSpan(req.TestSpan)
	if err != nil {
		return models.RunSpec{}, xhttp.BadRequestErrorf("test_span: %v", err)
	}
	step, err := util.ParseSpan(req.StepSpan)
	if err != nil {
		return models.RunSpec{}, xhttp.BadRequestErrorf("step_span: %v", err)
	}

	return models.RunSpec{
		ID:               usecase.NewRunID(),
		InitialTrainSpan: initialTrain,
		TestSpan:         test,
		StepSpan:         step,
		FeatureColumns:   req.FeatureColumns,
		TargetColumn:     req.TargetColumn,
		Scaler:           req.Scaler,
		Model:            req.Model,
		PnLUpper:         req.PnLUpper,
		PnLLower:         req.PnLLower,
	}, nil
}
