package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/maps/internal/infrastructure/http/v1/dto"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/settings"
	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
)

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		requestLogger(c).Warn("failed to decode request body", "path", c.Request.URL.Path, "error", err)
		h.RespondWithError(c, http.StatusBadRequest, ErrFailedToDecodeRequestBody)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (h *Handler) GetConfig(c *gin.Context) {
	h.RespondWithJSON(c, http.StatusOK, "got config", h.viewer.Config())
}

func (h *Handler) PutConfig(c *gin.Context) {
	var req dto.ConfigRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.viewer.SetConfig(c.Request.Context(), req.ToConfig()); err != nil {
		h.RespondWithInternalServerError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "config updated", h.viewer.Config())
}

func (h *Handler) PutCacheCapacity(c *gin.Context) {
	var req dto.CapacityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.viewer.SetCacheCapacity(c.Request.Context(), *req.Capacity); err != nil {
		h.RespondWithInternalServerError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "cache resized", h.viewer.Stats())
}

func (h *Handler) CacheStats(c *gin.Context) {
	h.RespondWithJSON(c, http.StatusOK, "got cache stats", h.viewer.Stats())
}

func (h *Handler) Favorites(c *gin.Context) {
	favs := h.viewer.Favorites()

	resp := make([]dto.FavoriteResponse, 0, len(favs))
	for slot, f := range favs {
		if f.Valid {
			resp = append(resp, dto.NewFavoriteResponse(slot, f))
		}
	}

	h.RespondWithJSON(c, http.StatusOK, "got favorites", resp)
}

func parseSlot(c *gin.Context) (int, error) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		return 0, settings.ErrInvalidSlot
	}
	return slot, nil
}

func (h *Handler) PutFavorite(c *gin.Context) {
	slot, err := parseSlot(c)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	var req dto.FavoriteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	// the stored name is NUL-terminated, so one byte of the field is reserved
	if len(req.Name) > settings.NameLength-1 {
		h.RespondWithError(c, http.StatusBadRequest, ErrFavoriteNameTooLong)
		return
	}

	p, err := tile.ParseProvider(req.Provider)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	fav, err := h.viewer.SetFavorite(slot, settings.Favorite{
		X:        req.X,
		Y:        req.Y,
		Z:        req.Z,
		Provider: p,
		Name:     req.Name,
	})
	if err != nil {
		h.respondWithSlotError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "favorite saved", dto.NewFavoriteResponse(slot, fav))
}

func (h *Handler) DeleteFavorite(c *gin.Context) {
	slot, err := parseSlot(c)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	if err := h.viewer.ClearFavorite(slot); err != nil {
		h.respondWithSlotError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "favorite cleared", nil)
}

func (h *Handler) respondWithSlotError(c *gin.Context, err error) {
	if errors.Is(err, settings.ErrInvalidSlot) {
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}
	h.RespondWithInternalServerError(c, err)
}
