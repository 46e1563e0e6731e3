package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/app"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/domain"
)

type Handler struct {
	svc *app.TableService
}

func NewHandler(svc *app.TableService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/v1/styles", h.ListStyles)
	e.POST("/v1/tables", h.CreateTable)
	e.GET("/v1/tables/:id", h.GetTable)
	e.GET("/v1/tables/:id/qr", h.GetJoinQR)
	e.POST("/v1/tables/:id/reshuffle", h.Reshuffle)
	e.POST("/v1/tables/:id/reset", h.Reset)
	e.PUT("/v1/tables/:id/filter", h.SetFilter)
	e.PUT("/v1/tables/:id/style", h.SetStyle)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListStyles(c echo.Context) error {
	styles := h.svc.Styles()
	out := make([]string, len(styles))
	for i, s := range styles {
		out[i] = string(s)
	}
	return c.JSON(http.StatusOK, StylesResponse{Styles: out})
}

func (h *Handler) CreateTable(c echo.Context) error {
	var req CreateTableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	resp, err := h.svc.CreateTable(app.CreateTableRequest{Style: req.Style, Filter: req.Filter})
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(http.StatusCreated, TableCreatedResponse{
		ID:      resp.ID,
		Style:   string(resp.Style),
		Filter:  string(resp.Filter),
		JoinURL: resp.JoinURL,
	})
}

func (h *Handler) GetTable(c echo.Context) error {
	st, err := h.svc.Snapshot(c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) GetJoinQR(c echo.Context) error {
	png, err := h.svc.JoinQR(c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (h *Handler) Reshuffle(c echo.Context) error {
	if err := h.svc.Reshuffle(c.Param("id")); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *Handler) Reset(c echo.Context) error {
	var req ResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	err := h.svc.Reset(c.Param("id"), app.CreateTableRequest{Style: req.Style, Filter: req.Filter})
	if err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetFilter(c echo.Context) error {
	var req UpdateFilterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.svc.SetFilter(c.Param("id"), req.Filter); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetStyle(c echo.Context) error {
	var req UpdateStyleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.svc.SetStyle(c.Param("id"), req.Style); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, domain.ErrTableNotFound), errors.Is(err, domain.ErrTableClosed):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "table not found"})
	case errors.Is(err, domain.ErrUnknownStyle), errors.Is(err, domain.ErrUnknownFilter):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrReshuffleBusy):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
