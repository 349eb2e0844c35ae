package reservation

import "errors"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound = errors.New("予約が見つかりません")
	ErrInvalidName         = errors.New("氏名は1文字以上40文字以下である必要があります")
	ErrInvalidPhone        = errors.New("電話番号の形式が不正です")
	ErrInvalidTimestamp    = errors.New("タイムスタンプの形式が不正です")
	ErrDateUnavailable     = errors.New("選択された日程は予約できません")
)
