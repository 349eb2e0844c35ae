package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BartekStachowicz/fishspot-backend/internal/domain/lake"
)

type lakeRow struct {
	Name      string          `db:"name"`
	Document  json.RawMessage `db:"document"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// LakeRepository は釣り場集約をJSONBドキュメントとして永続化するリポジトリ
// 集約の形（spots / 年キーの reservations / competition）はそのまま保存される
type LakeRepository struct {
	db *sqlx.DB
}

func NewLakeRepository(db *sqlx.DB) *LakeRepository {
	return &LakeRepository{db: db}
}

func (r *LakeRepository) GetByName(ctx context.Context, name string) (*lake.Lake, error) {
	var row lakeRow
	query := `SELECT name, document, updated_at FROM lakes WHERE name = $1`
	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lake.ErrLakeNotFound
		}
		return nil, fmt.Errorf("釣り場取得に失敗: %w", err)
	}
	return r.toEntity(&row)
}

func (r *LakeRepository) GetAll(ctx context.Context) ([]*lake.Lake, error) {
	var rows []lakeRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT name, document, updated_at FROM lakes ORDER BY name`); err != nil {
		return nil, fmt.Errorf("釣り場一覧取得に失敗: %w", err)
	}
	lakes := make([]*lake.Lake, len(rows))
	for i, row := range rows {
		l, err := r.toEntity(&row)
		if err != nil {
			return nil, err
		}
		lakes[i] = l
	}
	return lakes, nil
}

func (r *LakeRepository) Save(ctx context.Context, l *lake.Lake) error {
	document, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("釣り場のシリアライズに失敗: %w", err)
	}
	query := `
		INSERT INTO lakes (name, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, l.Name, document); err != nil {
		return fmt.Errorf("釣り場の保存に失敗: %w", err)
	}
	return nil
}

// Snapshot は全釣り場の現在のドキュメントをバックアップテーブルに複製する
// ベストエフォートであり、失敗してもSaveの結果には影響しない
func (r *LakeRepository) Snapshot(ctx context.Context) error {
	query := `
		INSERT INTO lake_snapshots (name, document, taken_at)
		SELECT name, document, NOW() FROM lakes`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("スナップショット作成に失敗: %w", err)
	}
	return nil
}

func (r *LakeRepository) toEntity(row *lakeRow) (*lake.Lake, error) {
	var l lake.Lake
	if err := json.Unmarshal(row.Document, &l); err != nil {
		return nil, fmt.Errorf("釣り場のデシリアライズに失敗: %w", err)
	}
	l.Name = row.Name
	return &l, nil
}

var _ lake.Repository = (*LakeRepository)(nil)
