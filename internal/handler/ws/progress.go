package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"FinFold/internal/middleware"
	"FinFold/internal/usecase"
	xhttp "FinFold/pkg/http"
	applogger "FinFold/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// ProgressHandler streams per-window events for a running evaluation over
// a websocket. The stream ends when the run closes its channel.
type ProgressHandler struct {
	logger   *applogger.Logger
	runner   *usecase.Runner
	pipeline *middleware.ProgressPipeline
	upgrader websocket.Upgrader
}

func NewProgressHandler(logger *applogger.Logger, runner *usecase.Runner, pipeline *middleware.ProgressPipeline) *ProgressHandler {
	return &ProgressHandler{
		logger:   logger,
		runner:   runner,
		pipeline: pipeline,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *ProgressHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/runs/:id", h.Stream)
}

func (h *ProgressHandler) Stream(c echo.Context) error {
	runID := c.Param("id")
	if _, err := h.runner.GetRun(runID); err != nil {
		if errors.Is(err, usecase.ErrRunNotFound) {
			return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("run %s not found", runID))
		}
		return xhttp.AppErrorResponse(c, err)
	}

	events, cancel := h.pipeline.Subscribe(runID)
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return nil
	}
	defer conn.Close()

	h.logger.Debug("progress stream opened", applogger.String("run_id", runID))

	// Drain client frames so close and pong handling work; the stream is
	// one-way otherwise.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Run finished: send the terminal summary, then close.
				if summary, err := h.runner.GetRun(runID); err == nil {
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = conn.WriteJSON(summary)
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("progress stream write failed",
					applogger.String("run_id", runID), applogger.Error(err))
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-clientGone:
			return nil
		}
	}
}
