package competition

import "errors"

// Competition ドメインのエラー定義
var (
	ErrCompetitionNotFound = errors.New("大会が見つかりません")
	ErrInvalidTimestamp    = errors.New("タイムスタンプの形式が不正です")
)

// Competition は大会による日程ブロックを表す
// 作成時に全釣り座へ日程を予約不可として登録し、削除時に登録を解除する
type Competition struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Dates     []string `json:"dates"`
	Timestamp string   `json:"timestamp"`
}
