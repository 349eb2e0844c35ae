package lake

import (
	"encoding/json"

	"github.com/BartekStachowicz/fishspot-backend/internal/domain/competition"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/reservation"
)

// Lake は釣り場の集約ルートを表す
// リポジトリから操作ごとに読み込まれ、変更後にそのまま永続化される
// エンジン側で操作をまたいで保持してはならない
type Lake struct {
	Name         string                                `json:"name"`
	Spots        []*Spot                               `json:"spots"`
	Reservations map[string][]*reservation.Reservation `json:"reservations"`
	Competitions map[string][]*competition.Competition `json:"competition"`
}

// Spot は釣り座を表す
// Info と Options は料金・設備情報で、エンジンからは不透明なまま受け渡す
type Spot struct {
	SpotID           string              `json:"spotId"`
	Number           string              `json:"number"`
	Info             json.RawMessage     `json:"info,omitempty"`
	Options          json.RawMessage     `json:"options,omitempty"`
	UnavailableDates map[string][]string `json:"unavailableDates"`
}

// FindSpot はspotIdから釣り座を返す（見つからない場合はnil）
func (l *Lake) FindSpot(spotID string) *Spot {
	for _, s := range l.Spots {
		if s.SpotID == spotID {
			return s
		}
	}
	return nil
}

// ReservationBucket は指定年の予約バケットを返す
func (l *Lake) ReservationBucket(year string) ([]*reservation.Reservation, bool) {
	if l.Reservations == nil {
		return nil, false
	}
	bucket, ok := l.Reservations[year]
	return bucket, ok
}

// AppendReservation は予約を年バケットに追加する（バケットは無ければ作成）
func (l *Lake) AppendReservation(year string, r *reservation.Reservation) {
	if l.Reservations == nil {
		l.Reservations = make(map[string][]*reservation.Reservation)
	}
	l.Reservations[year] = append(l.Reservations[year], r)
}

// AppendCompetition は大会を年バケットに追加する（バケットは無ければ作成）
func (l *Lake) AppendCompetition(year string, c *competition.Competition) {
	if l.Competitions == nil {
		l.Competitions = make(map[string][]*competition.Competition)
	}
	l.Competitions[year] = append(l.Competitions[year], c)
}

// IsBlocked は指定年・日付キーが予約不可かを返す
func (s *Spot) IsBlocked(year, date string) bool {
	if s.UnavailableDates == nil {
		return false
	}
	for _, d := range s.UnavailableDates[year] {
		if d == date {
			return true
		}
	}
	return false
}

// Block は日付キーを予約不可として登録する
// 裏側の保存形式はリストだが、重複登録しない集合として扱う
func (s *Spot) Block(year, date string) {
	if s.UnavailableDates == nil {
		s.UnavailableDates = make(map[string][]string)
	}
	if s.IsBlocked(year, date) {
		return
	}
	s.UnavailableDates[year] = append(s.UnavailableDates[year], date)
}

// Unblock は日付キーの予約不可登録を解除する（未登録なら何もしない）
func (s *Spot) Unblock(year, date string) {
	if s.UnavailableDates == nil {
		return
	}
	dates := s.UnavailableDates[year]
	filtered := dates[:0]
	for _, d := range dates {
		if d != date {
			filtered = append(filtered, d)
		}
	}
	s.UnavailableDates[year] = filtered
}
