package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/BartekStachowicz/fishspot-backend/internal/domain/competition"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/identifier"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/lake"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/reservation"
	redislock "github.com/BartekStachowicz/fishspot-backend/internal/infrastructure/redis"
	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/logger"
	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/metrics"
)

// ReservationService は予約・大会操作と可用性インデックスの整合性を担うエンジン
// 各操作は釣り場の集約を読み込み、メモリ上で変更し、1回のSaveで永続化する
// 変更操作は釣り場単位で直列化される（LakeLockManager経由、nilの場合は呼び出し側の責務）
type ReservationService struct {
	lakeRepo    lake.Repository
	codec       *PIICodec
	lockManager *redislock.LakeLockManager
}

func NewReservationService(lr lake.Repository, codec *PIICodec, lm *redislock.LakeLockManager) *ReservationService {
	return &ReservationService{lakeRepo: lr, codec: codec, lockManager: lm}
}

// CreateReservation は新しい予約を作成する
// いずれかの釣り座・日付が予約不可の場合、予約全体を拒否する（部分予約は作らない）
func (s *ReservationService) CreateReservation(ctx context.Context, lakeName string, input *reservation.Reservation) (*reservation.Reservation, error) {
	if err := input.Validate(); err != nil {
		s.record("create", "invalid")
		return nil, err
	}
	if input.Timestamp == "" {
		input.Timestamp = strconv.FormatInt(time.Now().Unix(), 10)
	}

	release, err := s.acquireLock(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	defer release()

	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return nil, err
	}

	year := identifier.YearOfTimestamp(input.TimestampUnix())

	// 空き確認：1日でも塞がっていれば全体を拒否する
	for _, entry := range input.Data {
		spot := l.FindSpot(entry.SpotID)
		if spot == nil {
			s.record("create", "invalid")
			return nil, lake.ErrSpotNotFound
		}
		for _, d := range entry.Dates {
			if spot.IsBlocked(year, d.Date) {
				s.record("create", "conflict")
				return nil, reservation.ErrDateUnavailable
			}
		}
	}

	encrypted, err := s.codec.EncryptReservation(input)
	if err != nil {
		s.record("create", "error")
		return nil, err
	}
	encrypted.ID = identifier.Build(lakeName, input.Timestamp)
	encrypted.Confirmed = false
	encrypted.Rejected = false

	l.AppendReservation(year, encrypted)
	for _, entry := range encrypted.Data {
		spot := l.FindSpot(entry.SpotID)
		for _, d := range entry.Dates {
			spot.Block(year, d.Date)
		}
	}

	if err := s.lakeRepo.Save(ctx, l); err != nil {
		s.record("create", "error")
		return nil, fmt.Errorf("予約の保存に失敗: %w", err)
	}
	s.snapshot(ctx)
	s.record("create", "success")
	return encrypted, nil
}

// UpdateReservation は既存予約を更新する
// 日程の付け替えはclear-then-add方式：旧予約が保持していた日付を
// 予約の属する年に限って解除し、新しい日程を登録し直す
// 返り値には呼び出し元が渡した平文の個人情報を差し戻す
func (s *ReservationService) UpdateReservation(ctx context.Context, lakeName, id string, input *reservation.Reservation) (*reservation.Reservation, error) {
	year, err := identifier.YearOf(id)
	if err != nil {
		s.record("update", "invalid")
		return nil, err
	}
	if err := input.Validate(); err != nil {
		s.record("update", "invalid")
		return nil, err
	}

	release, err := s.acquireLock(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	defer release()

	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	bucket, ok := l.ReservationBucket(year)
	if !ok {
		s.record("update", "invalid")
		return nil, reservation.ErrReservationNotFound
	}
	idx := indexOfReservation(bucket, id)
	if idx < 0 {
		s.record("update", "invalid")
		return nil, reservation.ErrReservationNotFound
	}
	existing := bucket[idx]

	encryptedPII, err := s.codec.EncryptReservation(input)
	if err != nil {
		s.record("update", "error")
		return nil, err
	}

	// 旧日程の解除は予約自身の年・該当釣り座に限定する
	for _, entry := range existing.Data {
		spot := l.FindSpot(entry.SpotID)
		if spot == nil {
			continue
		}
		for _, d := range entry.Dates {
			spot.Unblock(year, d.Date)
		}
	}

	merged := applyUpdate(existing, input, encryptedPII)
	bucket[idx] = merged

	for _, entry := range merged.Data {
		spot := l.FindSpot(entry.SpotID)
		if spot == nil {
			continue
		}
		for _, d := range entry.Dates {
			spot.Block(year, d.Date)
		}
	}

	if err := s.lakeRepo.Save(ctx, l); err != nil {
		s.record("update", "error")
		return nil, fmt.Errorf("予約の更新に失敗: %w", err)
	}
	s.snapshot(ctx)
	s.record("update", "success")

	// 復号のラウンドトリップを避け、呼び出し元の平文をそのまま差し戻す
	response := merged.Clone()
	response.FullName = input.FullName
	response.Phone = input.Phone
	response.Email = input.Email
	return response, nil
}

// DeleteReservation は予約を削除し、保持していた日程の予約不可登録を解除する
// 解除は削除される予約が所有していた (釣り座, 年, 日付) の組に厳密に限定する
// 返り値は通知用に復号した削除前のレコード
func (s *ReservationService) DeleteReservation(ctx context.Context, lakeName, id string) (*reservation.Reservation, error) {
	year, err := identifier.YearOf(id)
	if err != nil {
		s.record("delete", "invalid")
		return nil, err
	}

	release, err := s.acquireLock(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	defer release()

	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	bucket, ok := l.ReservationBucket(year)
	if !ok {
		s.record("delete", "invalid")
		return nil, reservation.ErrReservationNotFound
	}
	idx := indexOfReservation(bucket, id)
	if idx < 0 {
		s.record("delete", "invalid")
		return nil, reservation.ErrReservationNotFound
	}
	removed := bucket[idx]
	l.Reservations[year] = append(bucket[:idx], bucket[idx+1:]...)

	for _, entry := range removed.Data {
		spot := l.FindSpot(entry.SpotID)
		if spot == nil {
			continue
		}
		for _, d := range entry.Dates {
			spot.Unblock(year, d.Date)
		}
	}

	if err := s.lakeRepo.Save(ctx, l); err != nil {
		s.record("delete", "error")
		return nil, fmt.Errorf("予約の削除に失敗: %w", err)
	}
	s.snapshot(ctx)
	s.record("delete", "success")
	return s.codec.DecryptReservation(removed)
}

// CreateCompetition は大会を登録し、全釣り座の該当年に日程をブロックする
// 既存予約との衝突確認は行わない（大会は既存予約と重なり得る）
func (s *ReservationService) CreateCompetition(ctx context.Context, lakeName string, input *competition.Competition) (*competition.Competition, error) {
	if input.Timestamp == "" {
		input.Timestamp = strconv.FormatInt(time.Now().Unix(), 10)
	}
	// エポック秒でないタイムスタンプは識別子から年を復元できなくなるため拒否する
	ts, err := strconv.ParseInt(input.Timestamp, 10, 64)
	if err != nil {
		s.recordCompetition("create", "invalid")
		return nil, competition.ErrInvalidTimestamp
	}

	release, err := s.acquireLock(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	defer release()

	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return nil, err
	}

	year := identifier.YearOfTimestamp(ts)
	input.ID = identifier.Build(lakeName, input.Timestamp)

	l.AppendCompetition(year, input)
	for _, spot := range l.Spots {
		for _, date := range input.Dates {
			spot.Block(year, date)
		}
	}

	if err := s.lakeRepo.Save(ctx, l); err != nil {
		s.recordCompetition("create", "error")
		return nil, fmt.Errorf("大会の保存に失敗: %w", err)
	}
	s.snapshot(ctx)
	s.recordCompetition("create", "success")
	return input, nil
}

// DeleteCompetition は大会を削除し、全釣り座の該当年から日程ブロックを解除する
func (s *ReservationService) DeleteCompetition(ctx context.Context, lakeName, id string) error {
	year, err := identifier.YearOf(id)
	if err != nil {
		return err
	}

	release, err := s.acquireLock(ctx, lakeName)
	if err != nil {
		return err
	}
	defer release()

	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return err
	}

	var target *competition.Competition
	idx := -1
	for i, c := range l.Competitions[year] {
		if c.ID == id {
			target, idx = c, i
			break
		}
	}
	if target == nil {
		return competition.ErrCompetitionNotFound
	}
	l.Competitions[year] = append(l.Competitions[year][:idx], l.Competitions[year][idx+1:]...)

	for _, spot := range l.Spots {
		for _, date := range target.Dates {
			spot.Unblock(year, date)
		}
	}

	if err := s.lakeRepo.Save(ctx, l); err != nil {
		s.recordCompetition("delete", "error")
		return fmt.Errorf("大会の削除に失敗: %w", err)
	}
	s.snapshot(ctx)
	s.recordCompetition("delete", "success")
	return nil
}

// GetReservationByID は予約を1件取得し、個人情報を復号して返す
func (s *ReservationService) GetReservationByID(ctx context.Context, lakeName, id string) (*reservation.Reservation, error) {
	year, err := identifier.YearOf(id)
	if err != nil {
		return nil, err
	}
	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	bucket, ok := l.ReservationBucket(year)
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	idx := indexOfReservation(bucket, id)
	if idx < 0 {
		return nil, reservation.ErrReservationNotFound
	}
	return s.codec.DecryptReservation(bucket[idx])
}

// applyUpdate は更新可能なフィールドだけを列挙して既存レコードへ反映する
// 動的なマージは行わない。個人情報と日程データは指定された場合のみ置き換え、
// 確定・支払い関連のフィールドは常にペイロードの値を採用する
func applyUpdate(existing, input, encryptedPII *reservation.Reservation) *reservation.Reservation {
	merged := existing.Clone()
	if input.FullName != "" {
		merged.FullName = encryptedPII.FullName
	}
	if input.Phone != "" {
		merged.Phone = encryptedPII.Phone
	}
	if input.Email != "" {
		merged.Email = encryptedPII.Email
	}
	if input.Data != nil {
		merged.Data = encryptedPII.Data
	}
	merged.Confirmed = input.Confirmed
	merged.Rejected = input.Rejected
	merged.Price = input.Price
	merged.FullPaymentMethod = input.FullPaymentMethod
	merged.FullPaymentStatus = input.FullPaymentStatus
	merged.DepositPrice = input.DepositPrice
	merged.DepositSoFar = input.DepositSoFar
	merged.IsDepositPaid = input.IsDepositPaid
	merged.IsDepositRequired = input.IsDepositRequired
	return merged
}

func indexOfReservation(bucket []*reservation.Reservation, id string) int {
	for i, r := range bucket {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// acquireLock は釣り場単位のロックを取得し、解放関数を返す
// ロックマネージャーが無い構成（テスト等）では何もしない
func (s *ReservationService) acquireLock(ctx context.Context, lakeName string) (func(), error) {
	if s.lockManager == nil {
		return func() {}, nil
	}
	start := time.Now()
	lock, err := s.lockManager.Acquire(ctx, lakeName)
	if err != nil {
		if m := metrics.Get(); m != nil {
			m.LakeLockDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		}
		return nil, fmt.Errorf("釣り場ロックの取得に失敗: %w", err)
	}
	if m := metrics.Get(); m != nil {
		m.LakeLockDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	}
	return func() {
		if err := lock.Release(ctx); err != nil {
			logger.Warn("釣り場ロックの解放に失敗", zap.String("lake", lakeName), zap.Error(err))
		}
	}, nil
}

// snapshot は保存後のベストエフォートなバックアップを実行する
// 失敗しても操作自体は成功として扱い、警告ログのみ残す
func (s *ReservationService) snapshot(ctx context.Context) {
	if err := s.lakeRepo.Snapshot(ctx); err != nil {
		logger.Warn("スナップショット作成に失敗", zap.Error(err))
		if m := metrics.Get(); m != nil {
			m.SnapshotsTotal.WithLabelValues("failed").Inc()
		}
		return
	}
	if m := metrics.Get(); m != nil {
		m.SnapshotsTotal.WithLabelValues("success").Inc()
	}
}

func (s *ReservationService) record(operation, status string) {
	if m := metrics.Get(); m != nil {
		m.ReservationsTotal.WithLabelValues(operation, status).Inc()
	}
}

func (s *ReservationService) recordCompetition(operation, status string) {
	if m := metrics.Get(); m != nil {
		m.CompetitionsTotal.WithLabelValues(operation, status).Inc()
	}
}
