package application

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BartekStachowicz/fishspot-backend/internal/domain/identifier"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/lake"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/reservation"
)

// DefaultQueryLimit はlimit未指定時の1ページあたりの件数
const DefaultQueryLimit = 20

// QueryOptions は読み取りクエリ共通のページング・絞り込み条件
// Yearが空の場合は現在の西暦年を対象にする
// Filterは復号後の氏名に対する大文字小文字を無視した部分一致
type QueryOptions struct {
	Offset int
	Limit  int
	Filter string
	Year   string
}

// GetNotConfirmedReservations は未確定かつ前払い不要の予約一覧を返す（作成時刻の昇順）
func (s *ReservationService) GetNotConfirmedReservations(ctx context.Context, lakeName string, opts QueryOptions) ([]*reservation.Reservation, error) {
	bucket, err := s.loadBucket(ctx, lakeName, opts.Year)
	if err != nil {
		return nil, err
	}
	return s.runPipeline(bucket, opts, true, func(r *reservation.Reservation) bool {
		return !r.Confirmed && !r.IsDepositRequired
	})
}

// GetAllReservationsByYear は指定年の全予約を返す（作成時刻の降順）
func (s *ReservationService) GetAllReservationsByYear(ctx context.Context, lakeName, year string, opts QueryOptions) ([]*reservation.Reservation, error) {
	opts.Year = year
	bucket, err := s.loadBucket(ctx, lakeName, year)
	if err != nil {
		return nil, err
	}
	return s.runPipeline(bucket, opts, false, nil)
}

// GetReservationsBySpotID は指定の釣り座を含む予約一覧を返す（作成時刻の降順）
func (s *ReservationService) GetReservationsBySpotID(ctx context.Context, lakeName, spotID string, opts QueryOptions) ([]*reservation.Reservation, error) {
	bucket, err := s.loadBucket(ctx, lakeName, opts.Year)
	if err != nil {
		return nil, err
	}
	return s.runPipeline(bucket, opts, false, func(r *reservation.Reservation) bool {
		for _, entry := range r.Data {
			if entry.SpotID == spotID {
				return true
			}
		}
		return false
	})
}

// GetReservationsWithPaidDeposit は前払い済みの予約一覧を返す（作成時刻の降順）
func (s *ReservationService) GetReservationsWithPaidDeposit(ctx context.Context, lakeName string, opts QueryOptions) ([]*reservation.Reservation, error) {
	bucket, err := s.loadBucket(ctx, lakeName, opts.Year)
	if err != nil {
		return nil, err
	}
	return s.runPipeline(bucket, opts, false, func(r *reservation.Reservation) bool {
		return r.IsDepositPaid
	})
}

// GetReservationsWithRequiredDeposit は前払いが必要で未払いかつ未確定の予約一覧を返す（作成時刻の降順）
func (s *ReservationService) GetReservationsWithRequiredDeposit(ctx context.Context, lakeName string, opts QueryOptions) ([]*reservation.Reservation, error) {
	bucket, err := s.loadBucket(ctx, lakeName, opts.Year)
	if err != nil {
		return nil, err
	}
	return s.runPipeline(bucket, opts, false, func(r *reservation.Reservation) bool {
		return r.IsDepositRequired && !r.IsDepositPaid && !r.Confirmed
	})
}

// GetTodaysReservations は指定日に開始する釣り座別の個別予約一覧を返す
// 複数釣り座の予約は釣り座ごとに分解し、日付リストを昇順整列した上で
// 最初の日付の暦日が対象日と一致するものだけを採用する
func (s *ReservationService) GetTodaysReservations(ctx context.Context, lakeName, date string, opts QueryOptions) ([]*reservation.Reservation, error) {
	bucket, err := s.loadBucket(ctx, lakeName, opts.Year)
	if err != nil {
		return nil, err
	}
	matched := matchIndividualByDay(bucket, date)
	return s.runPipeline(matched, opts, false, nil)
}

// GetTodaysReservationsCombined は全釣り場を対象にした指定日の個別予約一覧を返す
// 年バケットを持たない釣り場は読み飛ばす
func (s *ReservationService) GetTodaysReservationsCombined(ctx context.Context, date string, opts QueryOptions) ([]*reservation.Reservation, error) {
	lakes, err := s.lakeRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	year := opts.Year
	if year == "" {
		year = identifier.CurrentYear()
	}
	var merged []*reservation.Reservation
	for _, l := range lakes {
		bucket, ok := l.ReservationBucket(year)
		if !ok {
			continue
		}
		merged = append(merged, matchIndividualByDay(bucket, date)...)
	}
	return s.runPipeline(merged, opts, false, nil)
}

// loadBucket は釣り場を読み込み、指定年（空なら今年）の予約バケットを返す
// バケットが存在しない年はErrYearNotFound、空のバケットは空列として扱う
func (s *ReservationService) loadBucket(ctx context.Context, lakeName, year string) ([]*reservation.Reservation, error) {
	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	if year == "" {
		year = identifier.CurrentYear()
	}
	bucket, ok := l.ReservationBucket(year)
	if !ok {
		return nil, lake.ErrYearNotFound
	}
	return bucket, nil
}

// runPipeline は読み取りクエリ共通のパイプラインを実行する
// 述語 → 整列 → ページング → 復号（コピー） → 氏名フィルターの順
func (s *ReservationService) runPipeline(bucket []*reservation.Reservation, opts QueryOptions, ascending bool, pred func(*reservation.Reservation) bool) ([]*reservation.Reservation, error) {
	selected := make([]*reservation.Reservation, 0, len(bucket))
	for _, r := range bucket {
		if pred == nil || pred(r) {
			selected = append(selected, r)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if ascending {
			return selected[i].TimestampUnix() < selected[j].TimestampUnix()
		}
		return selected[i].TimestampUnix() > selected[j].TimestampUnix()
	})

	selected = paginate(selected, opts.Offset, opts.Limit)

	decrypted := make([]*reservation.Reservation, 0, len(selected))
	for _, r := range selected {
		d, err := s.codec.DecryptReservation(r)
		if err != nil {
			return nil, err
		}
		decrypted = append(decrypted, d)
	}

	if opts.Filter == "" {
		return decrypted, nil
	}
	needle := strings.ToLower(opts.Filter)
	filtered := make([]*reservation.Reservation, 0, len(decrypted))
	for _, r := range decrypted {
		if strings.Contains(strings.ToLower(r.FullName), needle) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func paginate(rs []*reservation.Reservation, offset, limit int) []*reservation.Reservation {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if offset >= len(rs) {
		return nil
	}
	end := offset + limit
	if end > len(rs) {
		end = len(rs)
	}
	return rs[offset:end]
}

// matchIndividualByDay は予約を釣り座別の個別予約に分解し、
// 最初の日付の暦日が対象日（エポック秒）と一致するものを返す
func matchIndividualByDay(bucket []*reservation.Reservation, date string) []*reservation.Reservation {
	target, err := strconv.ParseInt(date, 10, 64)
	if err != nil {
		return nil
	}
	var matched []*reservation.Reservation
	for _, r := range bucket {
		for _, individual := range r.Split() {
			earliest, ok := individual.Data[0].EarliestDate()
			if !ok {
				continue
			}
			ts, err := strconv.ParseInt(earliest, 10, 64)
			if err != nil {
				continue
			}
			if sameCalendarDay(ts, target) {
				matched = append(matched, individual)
			}
		}
	}
	return matched
}

func sameCalendarDay(a, b int64) bool {
	ta, tb := time.Unix(a, 0), time.Unix(b, 0)
	return ta.Year() == tb.Year() && ta.Month() == tb.Month() && ta.Day() == tb.Day()
}
