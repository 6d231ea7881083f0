package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	models "EmaPull/internal/domain/models"
	domrepo "EmaPull/internal/domain/repository"
	"EmaPull/internal/usecase"
	xhttp "EmaPull/pkg/http"
	xlogger "EmaPull/pkg/logger"
)

// SnapshotsHandler serves cached EMA snapshots over HTTP.
type SnapshotsHandler struct {
	logger *xlogger.Logger
	reader *usecase.SnapshotReader
}

func NewSnapshotsHandler(logger *xlogger.Logger, reader *usecase.SnapshotReader) *SnapshotsHandler {
	return &SnapshotsHandler{logger: logger, reader: reader}
}

func (h *SnapshotsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/ema", h.List)
	g.GET("/ema/:symbol", h.Get)
	g.GET("/ema/:symbol/ttl", h.TTL)
}

// List returns every cached snapshot for the configured symbols.
func (h *SnapshotsHandler) List(c echo.Context) error {
	res, err := h.reader.ListSnapshots(c.Request().Context())
	if err != nil {
		h.logger.Error("list snapshots error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, res.Snapshots, int64(res.Count))
}

// Get returns the snapshot for one symbol, 404 when none is cached.
func (h *SnapshotsHandler) Get(c echo.Context) error {
	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.reader.GetSnapshot(c.Request().Context(), usecase.GetSnapshotParams{Symbol: models.PairSymbol(req.Symbol)})
	if err != nil {
		if errors.Is(err, domrepo.ErrSnapshotNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no snapshot for %s", req.Symbol))
		}
		h.logger.Error("get snapshot error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

// TTL returns the remaining cache lifetime for one symbol in seconds.
func (h *SnapshotsHandler) TTL(c echo.Context) error {
	req := &models.SnapshotTTLRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ttl, err := h.reader.SnapshotTTL(c.Request().Context(), models.PairSymbol(req.Symbol))
	if err != nil {
		h.logger.Error("snapshot ttl error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	if ttl < 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no snapshot for %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":      req.Symbol,
		"ttl_seconds": int64(ttl.Seconds()),
	})
}
