package dto

import (
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/settings"
	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
)

type TileRequest struct {
	Provider tile.Provider
	X        int32 `validate:"gte=0"`
	Y        int32 `validate:"gte=0"`
	Z        int32 `validate:"gte=-4,lte=16"`
}

type ConfigRequest struct {
	DiskCacheCapacity *int  `json:"disk_cache_capacity" validate:"required,gte=0,lte=1000000"`
	EffectsEnabled    *bool `json:"effects_enabled" validate:"required"`
}

func (r ConfigRequest) ToConfig() settings.Config {
	return settings.Config{
		DiskCacheCapacity: *r.DiskCacheCapacity,
		EffectsEnabled:    *r.EffectsEnabled,
	}
}

type CapacityRequest struct {
	Capacity *int `json:"capacity" validate:"required,gte=0,lte=1000000"`
}

type FavoriteRequest struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        int     `json:"z" validate:"gte=-4,lte=16"`
	Provider string  `json:"provider" validate:"required"`
	Name     string  `json:"name"`
}

type FavoriteResponse struct {
	Slot     int     `json:"slot"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        int     `json:"z"`
	Provider string  `json:"provider"`
	Name     string  `json:"name"`
}

func NewFavoriteResponse(slot int, f settings.Favorite) FavoriteResponse {
	return FavoriteResponse{
		Slot:     slot,
		X:        f.X,
		Y:        f.Y,
		Z:        f.Z,
		Provider: f.Provider.String(),
		Name:     f.Name,
	}
}

type ProviderResponse struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	MinZoom  int32  `json:"min_zoom"`
	MaxZoom  int32  `json:"max_zoom"`
	Balanced bool   `json:"balanced"`
}

func NewProviderResponse(p tile.Provider) ProviderResponse {
	return ProviderResponse{
		ID:       int32(p),
		Name:     p.String(),
		MinZoom:  p.MinZoom(),
		MaxZoom:  p.MaxZoom(),
		Balanced: p.Balanced(),
	}
}
