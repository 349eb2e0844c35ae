package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/BartekStachowicz/fishspot-backend/internal/api"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/lake"
)

// SpotHandler は釣り座管理のHTTPハンドラー
type SpotHandler struct {
	service SpotServiceInterface
}

// NewSpotHandler はSpotHandlerを作成する
func NewSpotHandler(s SpotServiceInterface) *SpotHandler {
	return &SpotHandler{service: s}
}

// RegisterRoutes は釣り座関連のルートを登録する
func (h *SpotHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/:lakename", h.Add)
	g.PUT("/update/:lakename", h.Update)
	g.PUT("/update-all/:lakename", h.UpdateAll)
	g.GET("/one/:lakename/:id", h.GetByID)
	g.DELETE("/delete/:lakename/:id", h.Delete)
}

// AddSpotRequest は釣り座追加のリクエスト
type AddSpotRequest struct {
	Number  string          `json:"number" validate:"required"`
	Info    json.RawMessage `json:"info"`
	Options json.RawMessage `json:"options"`
}

// UpdateSpotRequest は釣り座更新のリクエスト
type UpdateSpotRequest struct {
	SpotID  string          `json:"spotId" validate:"required"`
	Number  string          `json:"number"`
	Info    json.RawMessage `json:"info"`
	Options json.RawMessage `json:"options"`
}

// UpdateAllSpotsRequest は全釣り座一括更新のリクエスト
type UpdateAllSpotsRequest struct {
	Info    json.RawMessage `json:"info"`
	Options json.RawMessage `json:"options"`
}

// Add は釣り座を追加する
func (h *SpotHandler) Add(c echo.Context) error {
	var req AddSpotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	input := &lake.Spot{Number: req.Number, Info: req.Info, Options: req.Options}

	id, err := h.service.AddSpot(c.Request().Context(), c.Param("lakename"), input)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"spotId": id})
}

// Update は釣り座を更新する
func (h *SpotHandler) Update(c echo.Context) error {
	var req UpdateSpotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	input := &lake.Spot{SpotID: req.SpotID, Number: req.Number, Info: req.Info, Options: req.Options}

	updated, err := h.service.UpdateSpot(c.Request().Context(), c.Param("lakename"), input)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdateAll は全釣り座の情報とオプションを一括更新する
func (h *SpotHandler) UpdateAll(c echo.Context) error {
	var req UpdateAllSpotsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}

	updated, err := h.service.UpdateAllSpots(c.Request().Context(), c.Param("lakename"), req.Info, req.Options)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// GetByID は釣り座を1件取得する
func (h *SpotHandler) GetByID(c echo.Context) error {
	spot, err := h.service.GetSpotByID(c.Request().Context(), c.Param("lakename"), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, spot)
}

// Delete は釣り座を削除する
func (h *SpotHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteSpot(c.Request().Context(), c.Param("lakename"), c.Param("id")); err != nil {
		return api.DomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
