package reservation

import (
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"
)

// DateEntry は1日分の予約日と日毎価格を表す（日付はエポック秒の文字列）
type DateEntry struct {
	Date         string  `json:"date"`
	PriceForDate float64 `json:"priceForDate"`
}

// SpotEntry は釣り座1つ分の予約日リストを表す
// 1件の予約は複数の釣り座・非連続の日付範囲をまたぐことがある
type SpotEntry struct {
	SpotID string      `json:"spotId"`
	Dates  []DateEntry `json:"dates"`
}

// Reservation は予約エンティティを表す
// FullName / Phone / Email は集約内では常に暗号化済みで保持される
// 復号された値は読み取り用の射影であり、永続化してはならない
type Reservation struct {
	ID                string      `json:"id"`
	FullName          string      `json:"fullName"`
	Phone             string      `json:"phone"`
	Email             string      `json:"email"`
	Data              []SpotEntry `json:"data"`
	Timestamp         string      `json:"timestamp"`
	Confirmed         bool        `json:"confirmed"`
	Rejected          bool        `json:"rejected"`
	Price             float64     `json:"price"`
	FullPaymentMethod string      `json:"fullPaymentMethod"`
	FullPaymentStatus string      `json:"fullPaymentStatus"`
	DepositPrice      float64     `json:"depositPrice"`
	DepositSoFar      float64     `json:"depositSoFar"`
	IsDepositPaid     bool        `json:"isDepositPaid"`
	IsDepositRequired bool        `json:"isDepositRequired"`
}

const (
	minNameLength = 1
	maxNameLength = 40
)

var phonePattern = regexp.MustCompile(`^(\+\d{1,3})?\d{9,15}$`)

// Validate は氏名・電話番号・タイムスタンプの形式を検証する
// 氏名の長さはバイト数ではなく文字数で数える（ポーランド語等の多バイト文字を含むため）
func (r *Reservation) Validate() error {
	if n := utf8.RuneCountInString(r.FullName); n < minNameLength || n > maxNameLength {
		return ErrInvalidName
	}
	if !phonePattern.MatchString(r.Phone) {
		return ErrInvalidPhone
	}
	// タイムスタンプは空（作成時に現在時刻で補完）か、エポック秒でなければならない
	// 不正な値を通すと識別子から年を復元できない予約が生まれる
	if r.Timestamp != "" {
		if _, err := strconv.ParseInt(r.Timestamp, 10, 64); err != nil {
			return ErrInvalidTimestamp
		}
	}
	return nil
}

// TimestampUnix は作成タイムスタンプをエポック秒として返す（不正な値は0）
func (r *Reservation) TimestampUnix() int64 {
	ts, err := strconv.ParseInt(r.Timestamp, 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// Clone は予約の深いコピーを返す
// 復号済みの射影を作る際に、保存中の集約を書き換えないために使う
func (r *Reservation) Clone() *Reservation {
	c := *r
	c.Data = make([]SpotEntry, len(r.Data))
	for i, entry := range r.Data {
		dates := make([]DateEntry, len(entry.Dates))
		copy(dates, entry.Dates)
		c.Data[i] = SpotEntry{SpotID: entry.SpotID, Dates: dates}
	}
	return &c
}

// Split は複数の釣り座をまたぐ予約を釣り座ごとの個別予約に分解する
func (r *Reservation) Split() []*Reservation {
	individual := make([]*Reservation, 0, len(r.Data))
	for _, entry := range r.Data {
		c := r.Clone()
		c.Data = []SpotEntry{{SpotID: entry.SpotID, Dates: append([]DateEntry(nil), entry.Dates...)}}
		individual = append(individual, c)
	}
	return individual
}

// EarliestDate は釣り座エントリーの日付リストを昇順に整列し、最初の日付を返す
// 日付を持たないエントリーはfalseを返す
func (e *SpotEntry) EarliestDate() (string, bool) {
	if len(e.Dates) == 0 {
		return "", false
	}
	sort.Slice(e.Dates, func(i, j int) bool {
		a, _ := strconv.ParseInt(e.Dates[i].Date, 10, 64)
		b, _ := strconv.ParseInt(e.Dates[j].Date, 10, 64)
		return a < b
	})
	return e.Dates[0].Date, true
}
