package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	"LimesMS/internal/services/signal"
	"LimesMS/internal/usecase"
	xhttp "LimesMS/pkg/http"
	xlogger "LimesMS/pkg/logger"
)

// SignalsEchoHandler serves the signal, history, profile, asset and override endpoints.
type SignalsEchoHandler struct {
	logger *xlogger.Logger
	svc    *usecase.SignalService
}

func NewSignalsEchoHandler(logger *xlogger.Logger, svc *usecase.SignalService) *SignalsEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &SignalsEchoHandler{logger: logger, svc: svc}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/signal", h.Signal)
	g.GET("/signal/history", h.History)
	g.GET("/profiles", h.Profiles)
	g.GET("/assets", h.Assets)
	g.GET("/override", h.GetOverride)
	g.PUT("/override", h.PutOverride)
	g.DELETE("/override", h.DeleteOverride)
}

func (h *SignalsEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *SignalsEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var human *float64
	if req.Human != "" {
		v, err := strconv.ParseFloat(req.Human, 64)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.FieldError("human", "human must be a number").WithError(err))
		}
		human = &v
	}

	res, err := h.svc.Compute(c.Request().Context(), usecase.ComputeParams{
		Symbol:   req.Symbol,
		Profile:  req.Profile,
		Human:    human,
		ClientID: req.ClientID,
		Chart:    req.Chart,
	})
	if err != nil {
		return h.fail(c, "signal", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	recs, err := h.svc.History(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		return h.fail(c, "history", err)
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

// profileView flattens a profile config and reports the interval as a duration string.
type profileView struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
	signal.Config
	IntradayInterval string `json:"intraday_interval"`
}

func (h *SignalsEchoHandler) Profiles(c echo.Context) error {
	all := h.svc.Profiles()
	def := h.svc.DefaultProfile()
	out := make([]profileView, 0, len(all))
	for name, cfg := range all {
		out = append(out, profileView{
			Name:             name,
			Default:          name == def,
			Config:           cfg,
			IntradayInterval: cfg.IntradayInterval.String(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return xhttp.ListResponse(c, out, int64(len(out)))
}

func (h *SignalsEchoHandler) Assets(c echo.Context) error {
	req := &models.AssetsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	assets := h.svc.Assets(req.Q, req.Limit)
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.ListResponse(c, assets, int64(len(assets)))
}

func (h *SignalsEchoHandler) GetOverride(c echo.Context) error {
	req := &models.OverrideRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	v, err := h.svc.GetOverride(c.Request().Context(), req.ClientID)
	if err != nil {
		return h.fail(c, "override.get", err)
	}
	return xhttp.SuccessResponse(c, models.Override{ClientID: req.ClientID, Value: v})
}

func (h *SignalsEchoHandler) PutOverride(c echo.Context) error {
	// echo binds query params only for GET/DELETE; a body "client" still wins.
	req := &models.OverrideUpdateRequest{ClientID: c.QueryParam("client")}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.svc.SetOverride(c.Request().Context(), req.ClientID, *req.Value); err != nil {
		return h.fail(c, "override.put", err)
	}
	return xhttp.SuccessResponse(c, models.Override{ClientID: req.ClientID, Value: *req.Value})
}

func (h *SignalsEchoHandler) DeleteOverride(c echo.Context) error {
	req := &models.OverrideRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.svc.DeleteOverride(c.Request().Context(), req.ClientID); err != nil {
		return h.fail(c, "override.delete", err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *SignalsEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, domrepo.ErrSeriesNotFound):
		return xhttp.NotFoundError("series not found").WithError(err)
	case errors.Is(err, domrepo.ErrOverrideNotFound):
		return xhttp.NotFoundError("no override stored for client").WithError(err)
	case errors.Is(err, usecase.ErrUnknownProfile),
		errors.Is(err, usecase.ErrInvalidSymbol),
		errors.Is(err, usecase.ErrInvalidHuman):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.UnavailableError("series source timed out").WithError(err)
	default:
		return xhttp.InternalError("signal computation failed").WithError(err)
	}
}
