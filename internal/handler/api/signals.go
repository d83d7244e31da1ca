package api

import (
	"context"
	"errors"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/service/ratelimit"
	"FxPulse/internal/usecase"
	xhttp "FxPulse/pkg/http"
	xlogger "FxPulse/pkg/logger"
	"FxPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// Purger drops cached market data.
type Purger interface {
	Purge(ctx context.Context) error
}

// SignalsHandler serves evaluation passes, single-instrument scores and the
// daily report.
type SignalsHandler struct {
	logger *xlogger.Logger
	sched  *usecase.Scheduler
	rl     *ratelimit.Limiter
	purger Purger
	loc    *time.Location
	now    func() time.Time
}

// NewSignalsHandler builds the handler. rl and purger may be nil.
func NewSignalsHandler(logger *xlogger.Logger, sched *usecase.Scheduler, rl *ratelimit.Limiter, purger Purger, loc *time.Location) *SignalsHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SignalsHandler{
		logger: logger,
		sched:  sched,
		rl:     rl,
		purger: purger,
		loc:    loc,
		now:    time.Now,
	}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/instruments", h.Instruments)
	g.GET("/pass/latest", h.LatestPass)
	g.POST("/pass", h.RunPass)
	g.GET("/score", h.Score)
	g.GET("/report", h.Report)
}

func (h *SignalsHandler) Instruments(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.sched.Evaluator().Instruments())
}

func (h *SignalsHandler) LatestPass(c echo.Context) error {
	pass, ok := h.sched.Latest()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no evaluation pass yet"))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return xhttp.SuccessResponse(c, pass)
}

func (h *SignalsHandler) RunPass(c echo.Context) error {
	if h.rl != nil && !h.rl.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many evaluation requests"))
	}

	req := &models.PassRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	at, replay, appErr := parseAt(req.At)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}

	ctx := c.Request().Context()
	if req.Refresh && h.purger != nil {
		if err := h.purger.Purge(ctx); err != nil {
			h.logger.Warn("cache purge failed", xlogger.Error(err))
		}
	}

	var (
		pass *models.EvaluationPass
		err  error
	)
	if replay {
		pass, err = h.sched.Replay(ctx, at)
	} else {
		pass, err = h.sched.RunOnce(ctx)
	}
	if err != nil {
		h.logger.Error("evaluation pass failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("evaluation failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, pass)
}

func (h *SignalsHandler) Score(c echo.Context) error {
	req := &models.ScoreRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	at, replay, appErr := parseAt(req.At)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	evaluate := h.sched.Evaluator().EvaluateSymbolAsOf
	if !replay {
		at = h.now()
		evaluate = h.sched.Evaluator().EvaluateSymbol
	}

	ev, err := evaluate(c.Request().Context(), req.Symbol, at)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownInstrument) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("instrument %s is not configured", req.Symbol).
				WithParam("symbol", req.Symbol))
		}
		h.logger.Error("score usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("evaluation failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, ev)
}

func (h *SignalsHandler) Report(c echo.Context) error {
	pass, ok := h.sched.Latest()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no evaluation pass yet"))
	}
	return xhttp.SuccessResponse(c, usecase.BuildReport(pass, h.loc))
}

// parseAt returns replay=false for an empty value.
func parseAt(s string) (time.Time, bool, *xhttp.AppError) {
	if s == "" {
		return time.Time{}, false, nil
	}
	t, ok := util.ParseTime(s)
	if !ok {
		return time.Time{}, false, xhttp.BadRequestError("at", "at must be RFC3339, YYYY-MM-DD or unix seconds").
			WithParam("value", s)
	}
	return t, true, nil
}
