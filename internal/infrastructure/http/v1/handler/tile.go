package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/maps/internal/imaging"
	"github.com/jaennil/guide_helper/backend/maps/internal/infrastructure/http/v1/dto"
	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
	"github.com/jaennil/guide_helper/backend/maps/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

func parseInt32(c *gin.Context, name string) (int32, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s should be integer", name)
	}
	return int32(v), nil
}

func (h *Handler) parseTileRequest(c *gin.Context) (dto.TileRequest, error) {
	var req dto.TileRequest

	p, err := tile.ParseProvider(c.Param("provider"))
	if err != nil {
		return req, err
	}
	req.Provider = p

	if req.Z, err = parseInt32(c, "z"); err != nil {
		return req, err
	}
	if req.X, err = parseInt32(c, "x"); err != nil {
		return req, err
	}
	if req.Y, err = parseInt32(c, "y"); err != nil {
		return req, err
	}

	if err := h.validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

func (h *Handler) Tile(c *gin.Context) {
	l := requestLogger(c)

	req, err := h.parseTileRequest(c)
	if err != nil {
		l.Warn("invalid tile request", "path", c.Request.URL.Path, "error", err)
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	key := tile.NewKey(req.X, req.Y, req.Z, req.Provider)
	if err := key.Validate(); err != nil {
		l.Warn("tile outside provider range", "tile", key.String(), "error", err)
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	res := h.viewer.ResolveWithSource(c.Request.Context(), req.X, req.Y, req.Z, req.Provider)
	telemetry.SpanFromContext(c).SetAttributes(attribute.String("tile.source", res.Source.String()))

	var buf bytes.Buffer
	if err := imaging.EncodePNG(&buf, res.Image); err != nil {
		h.RespondWithInternalServerError(c, err)
		return
	}

	c.Header("X-Tile-Source", res.Source.String())
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// View renders the 2x2 block of tiles ending at (x, y) as one image.
func (h *Handler) View(c *gin.Context) {
	l := requestLogger(c)

	req, err := h.parseTileRequest(c)
	if err != nil {
		l.Warn("invalid view request", "path", c.Request.URL.Path, "error", err)
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	key := tile.NewKey(req.X, req.Y, req.Z, req.Provider)
	if err := key.Validate(); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	images := h.viewer.Neighborhood(c.Request.Context(), req.X, req.Y, req.Z, req.Provider)

	var buf bytes.Buffer
	if err := imaging.EncodePNG(&buf, imaging.Compose2x2(images)); err != nil {
		h.RespondWithInternalServerError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) Providers(c *gin.Context) {
	providers := tile.Providers()
	resp := make([]dto.ProviderResponse, 0, len(providers))
	for _, p := range providers {
		resp = append(resp, dto.NewProviderResponse(p))
	}

	h.RespondWithJSON(c, http.StatusOK, "got providers", resp)
}
