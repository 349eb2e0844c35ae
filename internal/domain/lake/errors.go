package lake

import "errors"

// Lake ドメインのエラー定義
var (
	ErrLakeNotFound = errors.New("釣り場が見つかりません")
	ErrSpotNotFound = errors.New("釣り座が見つかりません")
	ErrYearNotFound = errors.New("指定年の予約データが見つかりません")
)
