package identifier

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidID は識別子の形式が不正な場合のエラー
var ErrInvalidID = errors.New("識別子の形式が不正です")

// Build は湖名とセグメントから複合識別子を生成する
// 形式: $LN + 湖名の先頭文字 + 末尾文字（大文字） + "." + セグメント + "." + UUID
// セグメントは予約・大会ではエポック秒、釣り座では表示番号を用いる
func Build(lakeName, segment string) string {
	prefix := "$LN"
	if lakeName != "" {
		prefix += lakeName[:1] + lakeName[len(lakeName)-1:]
	}
	return strings.ToUpper(prefix) + "." + segment + "." + uuid.NewString()
}

// YearOf は識別子に埋め込まれたエポック秒から西暦年（4桁文字列）を導出する
func YearOf(id string) (string, error) {
	parts := strings.Split(id, ".")
	if len(parts) < 3 {
		return "", ErrInvalidID
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidID
	}
	return YearOfTimestamp(ts), nil
}

// YearOfTimestamp はエポック秒を西暦年（4桁文字列）に変換する
func YearOfTimestamp(ts int64) string {
	return strconv.Itoa(time.Unix(ts, 0).Year())
}

// CurrentYear は現在の西暦年（4桁文字列）を返す
func CurrentYear() string {
	return strconv.Itoa(time.Now().Year())
}
