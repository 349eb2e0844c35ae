package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/BartekStachowicz/fishspot-backend/internal/domain/competition"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/identifier"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/lake"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/reservation"
	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// StatusOf はドメインエラーをHTTPステータスコードに対応付ける
func StatusOf(err error) int {
	switch {
	case errors.Is(err, lake.ErrLakeNotFound),
		errors.Is(err, lake.ErrSpotNotFound),
		errors.Is(err, lake.ErrYearNotFound),
		errors.Is(err, reservation.ErrReservationNotFound),
		errors.Is(err, competition.ErrCompetitionNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrDateUnavailable):
		return http.StatusConflict
	case errors.Is(err, reservation.ErrInvalidName),
		errors.Is(err, reservation.ErrInvalidPhone),
		errors.Is(err, reservation.ErrInvalidTimestamp),
		errors.Is(err, competition.ErrInvalidTimestamp),
		errors.Is(err, identifier.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DomainError はドメインエラーをHTTPエラーに変換する
func DomainError(err error) *echo.HTTPError {
	return echo.NewHTTPError(StatusOf(err), err.Error())
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
	)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	// 5xx エラーのみログに残す
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
