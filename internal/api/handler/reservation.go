package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/BartekStachowicz/fishspot-backend/internal/api"
	"github.com/BartekStachowicz/fishspot-backend/internal/application"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/competition"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/reservation"
	"github.com/BartekStachowicz/fishspot-backend/internal/infrastructure/mail"
	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/logger"
)

// ReservationHandler は予約と大会のHTTPハンドラー
type ReservationHandler struct {
	service  ReservationServiceInterface
	notifier Notifier
}

// NewReservationHandler はReservationHandlerを作成する
// notifierはnil可（通知なしで動作する）
func NewReservationHandler(s ReservationServiceInterface, n Notifier) *ReservationHandler {
	return &ReservationHandler{service: s, notifier: n}
}

// RegisterRoutes は予約関連のルートを登録する
func (h *ReservationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/:lakename", h.Create)
	g.POST("/:lakename/competition", h.CreateCompetition)
	g.DELETE("/delete/:lakename/competition/:id", h.DeleteCompetition)
	g.PUT("/update/:lakename/:id", h.Update)
	g.GET("/one/:lakename/:id", h.GetByID)
	g.GET("/not-confirmed/:lakename", h.GetNotConfirmed)
	g.GET("/confirmed/:lakename/:year", h.GetAllByYear)
	g.GET("/byspots/:lakename/:spotId", h.GetBySpotID)
	g.GET("/todays/:lakename", h.GetTodays)
	g.GET("/todaysall", h.GetTodaysCombined)
	g.GET("/deposit-paid/:lakename", h.GetDepositPaid)
	g.GET("/deposit-non-paid/:lakename", h.GetDepositNonPaid)
	g.DELETE("/delete/:lakename/:id", h.Delete)
	g.DELETE("/delete-confirmed/:lakename/:id", h.DeleteConfirmed)
}

// ReservationRequest は予約の作成・更新リクエスト
// ワイヤ形状は保存ドキュメントと同じで、常に全フィールドを送る
type ReservationRequest struct {
	FullName          string                  `json:"fullName" validate:"required,max=40"`
	Phone             string                  `json:"phone" validate:"required"`
	Email             string                  `json:"email"`
	Data              []reservation.SpotEntry `json:"data" validate:"required,min=1"`
	Timestamp         string                  `json:"timestamp" validate:"omitempty,number"`
	Confirmed         bool                    `json:"confirmed"`
	Rejected          bool                    `json:"rejected"`
	Price             float64                 `json:"price"`
	FullPaymentMethod string                  `json:"fullPaymentMethod"`
	FullPaymentStatus string                  `json:"fullPaymentStatus"`
	DepositPrice      float64                 `json:"depositPrice"`
	DepositSoFar      float64                 `json:"depositSoFar"`
	IsDepositPaid     bool                    `json:"isDepositPaid"`
	IsDepositRequired bool                    `json:"isDepositRequired"`
}

func (r *ReservationRequest) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		FullName:          r.FullName,
		Phone:             r.Phone,
		Email:             r.Email,
		Data:              r.Data,
		Timestamp:         r.Timestamp,
		Confirmed:         r.Confirmed,
		Rejected:          r.Rejected,
		Price:             r.Price,
		FullPaymentMethod: r.FullPaymentMethod,
		FullPaymentStatus: r.FullPaymentStatus,
		DepositPrice:      r.DepositPrice,
		DepositSoFar:      r.DepositSoFar,
		IsDepositPaid:     r.IsDepositPaid,
		IsDepositRequired: r.IsDepositRequired,
	}
}

// CompetitionRequest は大会の登録リクエスト
type CompetitionRequest struct {
	Name      string   `json:"name"`
	Dates     []string `json:"dates" validate:"required,min=1"`
	Timestamp string   `json:"timestamp" validate:"omitempty,number"`
}

func (r *CompetitionRequest) toEntity() *competition.Competition {
	return &competition.Competition{
		Name:      r.Name,
		Dates:     r.Dates,
		Timestamp: r.Timestamp,
	}
}

// queryOptions はページング・絞り込みのクエリパラメーターを読み取る
func queryOptions(c echo.Context) application.QueryOptions {
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return application.QueryOptions{
		Offset: offset,
		Limit:  limit,
		Filter: c.QueryParam("filter"),
		Year:   c.QueryParam("year"),
	}
}

// notify はバックグラウンドでステータス通知メールを送信する
func (h *ReservationHandler) notify(r *reservation.Reservation, status mail.Status, lakeName string) {
	if h.notifier == nil || r == nil {
		return
	}
	go func() {
		if err := h.notifier.SendReservationStatus(r, status, lakeName); err != nil {
			logger.Warn("通知メール送信に失敗",
				zap.String("reservation_id", r.ID),
				zap.String("status", string(status)),
				zap.Error(err),
			)
		}
	}()
}

// Create は新規予約を登録する
// 受付通知は呼び出し元が渡した平文の連絡先へ送信する
func (h *ReservationHandler) Create(c echo.Context) error {
	lakeName := c.Param("lakename")
	var req ReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	input := req.toEntity()

	created, err := h.service.CreateReservation(c.Request().Context(), lakeName, input)
	if err != nil {
		return api.DomainError(err)
	}

	notification := created.Clone()
	notification.Email = input.Email
	notification.FullName = input.FullName
	notification.Phone = input.Phone
	h.notify(notification, mail.StatusPending, lakeName)

	return c.JSON(http.StatusCreated, created)
}

// CreateCompetition は大会を登録する
func (h *ReservationHandler) CreateCompetition(c echo.Context) error {
	lakeName := c.Param("lakename")
	var req CompetitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.service.CreateCompetition(c.Request().Context(), lakeName, req.toEntity())
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// DeleteCompetition は大会を削除する
func (h *ReservationHandler) DeleteCompetition(c echo.Context) error {
	if err := h.service.DeleteCompetition(c.Request().Context(), c.Param("lakename"), c.Param("id")); err != nil {
		return api.DomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Update は既存予約を更新し、確定通知を送信する
func (h *ReservationHandler) Update(c echo.Context) error {
	lakeName := c.Param("lakename")
	var req ReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.service.UpdateReservation(c.Request().Context(), lakeName, c.Param("id"), req.toEntity())
	if err != nil {
		return api.DomainError(err)
	}

	h.notify(updated, mail.StatusConfirmed, lakeName)
	return c.JSON(http.StatusOK, updated)
}

// GetByID は予約を1件取得する
func (h *ReservationHandler) GetByID(c echo.Context) error {
	r, err := h.service.GetReservationByID(c.Request().Context(), c.Param("lakename"), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, r)
}

// GetNotConfirmed は未確定の予約一覧を返す
func (h *ReservationHandler) GetNotConfirmed(c echo.Context) error {
	rs, err := h.service.GetNotConfirmedReservations(c.Request().Context(), c.Param("lakename"), queryOptions(c))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, rs)
}

// GetAllByYear は指定年の全予約一覧を返す
func (h *ReservationHandler) GetAllByYear(c echo.Context) error {
	rs, err := h.service.GetAllReservationsByYear(c.Request().Context(), c.Param("lakename"), c.Param("year"), queryOptions(c))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, rs)
}

// GetBySpotID は指定釣り座を含む予約一覧を返す
func (h *ReservationHandler) GetBySpotID(c echo.Context) error {
	rs, err := h.service.GetReservationsBySpotID(c.Request().Context(), c.Param("lakename"), c.Param("spotId"), queryOptions(c))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, rs)
}

// GetTodays は指定日に開始する予約一覧を返す
func (h *ReservationHandler) GetTodays(c echo.Context) error {
	rs, err := h.service.GetTodaysReservations(c.Request().Context(), c.Param("lakename"), c.QueryParam("date"), queryOptions(c))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, rs)
}

// GetTodaysCombined は全釣り場を対象にした指定日の予約一覧を返す
func (h *ReservationHandler) GetTodaysCombined(c echo.Context) error {
	rs, err := h.service.GetTodaysReservationsCombined(c.Request().Context(), c.QueryParam("date"), queryOptions(c))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, rs)
}

// GetDepositPaid は前払い済みの予約一覧を返す
func (h *ReservationHandler) GetDepositPaid(c echo.Context) error {
	rs, err := h.service.GetReservationsWithPaidDeposit(c.Request().Context(), c.Param("lakename"), queryOptions(c))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, rs)
}

// GetDepositNonPaid は前払い待ちの予約一覧を返す
func (h *ReservationHandler) GetDepositNonPaid(c echo.Context) error {
	rs, err := h.service.GetReservationsWithRequiredDeposit(c.Request().Context(), c.Param("lakename"), queryOptions(c))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, rs)
}

// Delete は予約を削除し、拒否通知を送信する
func (h *ReservationHandler) Delete(c echo.Context) error {
	lakeName := c.Param("lakename")
	removed, err := h.service.DeleteReservation(c.Request().Context(), lakeName, c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}

	h.notify(removed, mail.StatusRejected, lakeName)
	return c.NoContent(http.StatusNoContent)
}

// DeleteConfirmed は確定済み予約を通知なしで削除する
func (h *ReservationHandler) DeleteConfirmed(c echo.Context) error {
	if _, err := h.service.DeleteReservation(c.Request().Context(), c.Param("lakename"), c.Param("id")); err != nil {
		return api.DomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
