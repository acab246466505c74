package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/labstack/echo/v4"

	"github.com/KaramelBytes/pivotree/internal/analysis"
	"github.com/KaramelBytes/pivotree/internal/dataset"
	"github.com/KaramelBytes/pivotree/internal/format"
)

// Handler serves pivot requests. Each request builds its own model.
type Handler struct {
	defaults analysis.Options
	numbers  format.Options
	log      logr.Logger
}

func NewHandler(defaults analysis.Options, numbers format.Options, log logr.Logger) *Handler {
	return &Handler{defaults: defaults, numbers: numbers, log: log.WithName("api")}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.JSONSerializer = JSONSerializer{}
	e.GET("/healthz", h.Health)
	api := e.Group("/api")
	api.POST("/pivot", h.Pivot)
	api.GET("/formats", h.Formats)
}

// pivotRequest is the body of POST /api/pivot. Options missing from the body
// keep the server defaults.
type pivotRequest struct {
	Dataset dataset.Dataset  `json:"dataset"`
	Options analysis.Options `json:"options"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Formats lists the number formatters accepted by ?numbers=.
func (h *Handler) Formats(c echo.Context) error {
	return c.JSON(http.StatusOK, format.Names)
}

// Pivot builds a tree from an inline dataset. ?format=markdown returns the
// outline instead of JSON, with ?numbers= selecting the number formatter.
func (h *Handler) Pivot(c echo.Context) error {
	req := pivotRequest{Options: h.defaults}
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %v", message(err))})
	}
	if req.Dataset.Name == "" {
		req.Dataset.Name = "inline"
	}
	if err := req.Dataset.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	rep, err := analysis.Run(c.Request().Context(), &req.Dataset, req.Options, h.log)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	h.log.V(1).Info("pivot served", "id", rep.ID, "dataset", rep.Dataset, "rows", rep.Rows)

	if c.QueryParam("format") == "markdown" {
		md := rep.Markdown(format.Get(c.QueryParam("numbers"), h.numbers))
		return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
	}
	return c.JSON(http.StatusOK, rep)
}

func message(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}
