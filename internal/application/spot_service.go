package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BartekStachowicz/fishspot-backend/internal/domain/identifier"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/lake"
	redislock "github.com/BartekStachowicz/fishspot-backend/internal/infrastructure/redis"
	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/logger"
	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/metrics"
)

// SpotService は釣り座の管理操作を提供する
// 料金や設備の情報はエンジンからは不透明なJSONとして受け渡す
type SpotService struct {
	lakeRepo    lake.Repository
	lockManager *redislock.LakeLockManager
}

func NewSpotService(lr lake.Repository, lm *redislock.LakeLockManager) *SpotService {
	return &SpotService{lakeRepo: lr, lockManager: lm}
}

// AddSpot は新しい釣り座を追加し、採番した識別子を返す
func (s *SpotService) AddSpot(ctx context.Context, lakeName string, spot *lake.Spot) (string, error) {
	release, err := s.acquireLock(ctx, lakeName)
	if err != nil {
		return "", err
	}
	defer release()

	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return "", err
	}

	spot.SpotID = identifier.Build(lakeName, spot.Number)
	l.Spots = append(l.Spots, spot)

	if err := s.lakeRepo.Save(ctx, l); err != nil {
		return "", fmt.Errorf("釣り座の追加に失敗: %w", err)
	}
	s.snapshot(ctx)
	return spot.SpotID, nil
}

// UpdateSpot は既存の釣り座を更新する
// 表示番号・情報・オプションのみ更新可能で、予約不可日程は保持される
func (s *SpotService) UpdateSpot(ctx context.Context, lakeName string, input *lake.Spot) (*lake.Spot, error) {
	release, err := s.acquireLock(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	defer release()

	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	spot := l.FindSpot(input.SpotID)
	if spot == nil {
		return nil, lake.ErrSpotNotFound
	}

	if input.Number != "" {
		spot.Number = input.Number
	}
	if input.Info != nil {
		spot.Info = input.Info
	}
	if input.Options != nil {
		spot.Options = input.Options
	}

	if err := s.lakeRepo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("釣り座の更新に失敗: %w", err)
	}
	s.snapshot(ctx)
	return spot, nil
}

// UpdateAllSpots は全釣り座の情報とオプションを一括で置き換える
func (s *SpotService) UpdateAllSpots(ctx context.Context, lakeName string, info, options json.RawMessage) ([]*lake.Spot, error) {
	release, err := s.acquireLock(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	defer release()

	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	for _, spot := range l.Spots {
		if info != nil {
			spot.Info = info
		}
		if options != nil {
			spot.Options = options
		}
	}

	if err := s.lakeRepo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("釣り座の一括更新に失敗: %w", err)
	}
	s.snapshot(ctx)
	return l.Spots, nil
}

// DeleteSpot は釣り座を削除する
func (s *SpotService) DeleteSpot(ctx context.Context, lakeName, spotID string) error {
	release, err := s.acquireLock(ctx, lakeName)
	if err != nil {
		return err
	}
	defer release()

	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return err
	}
	if l.FindSpot(spotID) == nil {
		return lake.ErrSpotNotFound
	}

	filtered := l.Spots[:0]
	for _, spot := range l.Spots {
		if spot.SpotID != spotID {
			filtered = append(filtered, spot)
		}
	}
	l.Spots = filtered

	if err := s.lakeRepo.Save(ctx, l); err != nil {
		return fmt.Errorf("釣り座の削除に失敗: %w", err)
	}
	s.snapshot(ctx)
	return nil
}

// GetSpotByID は釣り座を1件取得する
func (s *SpotService) GetSpotByID(ctx context.Context, lakeName, spotID string) (*lake.Spot, error) {
	l, err := s.lakeRepo.GetByName(ctx, lakeName)
	if err != nil {
		return nil, err
	}
	spot := l.FindSpot(spotID)
	if spot == nil {
		return nil, lake.ErrSpotNotFound
	}
	return spot, nil
}

func (s *SpotService) acquireLock(ctx context.Context, lakeName string) (func(), error) {
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

func (s *SpotService) snapshot(ctx context.Context) {
	if err := s.lakeRepo.Snapshot(ctx); err != nil {
		logger.Warn("スナップショット作成に失敗", zap.Error(err))
	}
}
