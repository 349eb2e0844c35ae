// Package mail は予約ステータスのメール通知を提供する
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/BartekStachowicz/fishspot-backend/internal/config"
	"github.com/BartekStachowicz/fishspot-backend/internal/domain/reservation"
)

// Status は通知メールの種別
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// Mailer はSMTP経由で予約通知を送信する
type Mailer struct {
	cfg *config.MailConfig
}

func New(cfg *config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendReservationStatus は予約者へステータス通知を送信する
// 宛先メールアドレスが空の場合は何もしない
func (m *Mailer) SendReservationStatus(r *reservation.Reservation, status Status, lakeName string) error {
	if r.Email == "" {
		return nil
	}

	msg := m.buildMessage(r, status, lakeName)

	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{r.Email}, msg); err != nil {
		return fmt.Errorf("メール送信に失敗: %w", err)
	}
	return nil
}

func (m *Mailer) buildMessage(r *reservation.Reservation, status Status, lakeName string) []byte {
	date := formatDate(r.TimestampUnix())
	firstName := r.FullName
	if i := strings.IndexByte(firstName, ' '); i > 0 {
		firstName = firstName[:i]
	}

	var header, text1, text2, state, link string
	switch status {
	case StatusConfirmed:
		header = "Rezerwacja zaakceptowana!"
		text1 = "Twoja rezerwacja została potwierdzona! Poniżej możesz zobaczyć informacje dotyczące twojej rezerwacji."
		state = "Potwierdzona"
		link = m.cfg.BaseURL + lakeName + "/podsumowanie/" + r.ID
	case StatusRejected:
		header = "Rezerwacja została odrzucona!"
		text1 = "Twoja rezerwacja została odrzucona. Przepraszamy za utrudnienia."
		state = "Odrzucona"
	default:
		header = "Rezerwacja złożona pomyślnie!"
		text1 = "Twoja rezerwacja została pomyślnie złożona. Poniżej możesz zobaczyć informacje dotyczące twojej rezerwacji."
		text2 = "W kolejnym mailu prześlemy potwierdzenie rezerwacji."
		state = "Oczekująca"
		link = m.cfg.BaseURL + lakeName + "/podsumowanie/" + r.ID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", r.Email)
	fmt.Fprintf(&b, "Subject: Rezerwacja z dnia %s Leśna Przystań Ocieka\r\n", date)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Cześć %s!\r\n\r\n", firstName)
	fmt.Fprintf(&b, "%s\r\n%s\r\n", header, text1)
	if text2 != "" {
		fmt.Fprintf(&b, "%s\r\n", text2)
	}
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Numer rezerwacji: %s\r\n", r.ID)
	fmt.Fprintf(&b, "Imię i nazwisko: %s\r\n", r.FullName)
	fmt.Fprintf(&b, "Telefon: %s\r\n", r.Phone)
	fmt.Fprintf(&b, "Data rezerwacji: %s\r\n", date)
	fmt.Fprintf(&b, "Status: %s\r\n", state)
	if link != "" {
		fmt.Fprintf(&b, "\r\nSzczegóły rezerwacji: %s\r\n", link)
	}
	return []byte(b.String())
}

// formatDate はエポック秒をDD-MM-YYYY形式に整形する
func formatDate(ts int64) string {
	return time.Unix(ts, 0).Format("02-01-2006")
}
