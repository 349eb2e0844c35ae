package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/logger"
	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/metrics"
)

// Snapshotter は釣り場ドキュメントのスナップショットを取得するインターフェース
type Snapshotter interface {
	Snapshot(ctx context.Context) error
}

// SnapshotWorker は定期的にバックアップスナップショットを取得するワーカー
// 書き込み時のスナップショットを補完する保険であり、失敗しても本処理には影響しない
type SnapshotWorker struct {
	repo     Snapshotter
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSnapshotWorker は新しいスナップショットワーカーを作成
func NewSnapshotWorker(repo Snapshotter, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		repo:     repo,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はワーカーを開始
func (w *SnapshotWorker) Start(ctx context.Context) {
	logger.Info("スナップショットワーカー開始",
		zap.Duration("interval", w.interval),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("スナップショットワーカー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("スナップショットワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.snapshot(ctx)
		}
	}
}

// Stop はワーカーを停止
func (w *SnapshotWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *SnapshotWorker) snapshot(ctx context.Context) {
	log := logger.Get()
	log.Debug("定期スナップショット開始")

	if err := w.repo.Snapshot(ctx); err != nil {
		log.Error("定期スナップショット失敗", zap.Error(err))
		if m := metrics.Get(); m != nil {
			m.SnapshotsTotal.WithLabelValues("failed").Inc()
		}
		return
	}

	log.Debug("定期スナップショット完了")
	if m := metrics.Get(); m != nil {
		m.SnapshotsTotal.WithLabelValues("success").Inc()
	}
}
