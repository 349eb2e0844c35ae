package lake

import "context"

// Repository は釣り場リポジトリのインターフェース
// 集約単位の読み込みと永続化のみを提供し、部分更新は行わない
type Repository interface {
	// GetByName は名前から釣り場を取得する
	GetByName(ctx context.Context, name string) (*Lake, error)

	// GetAll は全釣り場を取得する
	GetAll(ctx context.Context) ([]*Lake, error)

	// Save は釣り場の集約全体を永続化する
	Save(ctx context.Context, lake *Lake) error

	// Snapshot はバックアップを作成する（ベストエフォート、失敗してもSaveを妨げない）
	Snapshot(ctx context.Context) error
}
