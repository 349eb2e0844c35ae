package handler

import (
	"context"
	"encoding/json"

	"github.com/BartekStachowicz/fishspot-backend/internal/application"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/competition"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/lake"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/reservation"
	"github.com/BartekStachowicz/fishspot-backend/internal/infrastructure/mail"
)

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, lakeName string, input *reservation.Reservation) (*reservation.Reservation, error)
	UpdateReservation(ctx context.Context, lakeName, id string, input *reservation.Reservation) (*reservation.Reservation, error)
	DeleteReservation(ctx context.Context, lakeName, id string) (*reservation.Reservation, error)
	GetReservationByID(ctx context.Context, lakeName, id string) (*reservation.Reservation, error)
	CreateCompetition(ctx context.Context, lakeName string, input *competition.Competition) (*competition.Competition, error)
	DeleteCompetition(ctx context.Context, lakeName, id string) error
	GetNotConfirmedReservations(ctx context.Context, lakeName string, opts application.QueryOptions) ([]*reservation.Reservation, error)
	GetAllReservationsByYear(ctx context.Context, lakeName, year string, opts application.QueryOptions) ([]*reservation.Reservation, error)
	GetReservationsBySpotID(ctx context.Context, lakeName, spotID string, opts application.QueryOptions) ([]*reservation.Reservation, error)
	GetReservationsWithPaidDeposit(ctx context.Context, lakeName string, opts application.QueryOptions) ([]*reservation.Reservation, error)
	GetReservationsWithRequiredDeposit(ctx context.Context, lakeName string, opts application.QueryOptions) ([]*reservation.Reservation, error)
	GetTodaysReservations(ctx context.Context, lakeName, date string, opts application.QueryOptions) ([]*reservation.Reservation, error)
	GetTodaysReservationsCombined(ctx context.Context, date string, opts application.QueryOptions) ([]*reservation.Reservation, error)
}

// SpotServiceInterface は釣り座サービスのインターフェース
type SpotServiceInterface interface {
	AddSpot(ctx context.Context, lakeName string, spot *lake.Spot) (string, error)
	UpdateSpot(ctx context.Context, lakeName string, input *lake.Spot) (*lake.Spot, error)
	UpdateAllSpots(ctx context.Context, lakeName string, info, options json.RawMessage) ([]*lake.Spot, error)
	DeleteSpot(ctx context.Context, lakeName, spotID string) error
	GetSpotByID(ctx context.Context, lakeName, spotID string) (*lake.Spot, error)
}

// Notifier は予約ステータスのメール通知インターフェース
type Notifier interface {
	SendReservationStatus(r *reservation.Reservation, status mail.Status, lakeName string) error
}
