package application

import (
	"fmt"

	"github.com/BartekStachowicz/fishspot-backend/internal/domain/reservation"
)

// Cipher は個人情報フィールドを暗号化・復号する外部コラボレーターのインターフェース
// 鍵素材はエンジンに公開されない
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// PIICodec は予約の氏名・電話番号・メールアドレスを
// 書き込み時に暗号化し、読み取り時に復号するアダプター
// どちらの操作も元の予約を書き換えず、コピーを返す
type PIICodec struct {
	cipher Cipher
}

func NewPIICodec(cipher Cipher) *PIICodec {
	return &PIICodec{cipher: cipher}
}

// EncryptReservation は個人情報を暗号化した予約のコピーを返す
func (c *PIICodec) EncryptReservation(r *reservation.Reservation) (*reservation.Reservation, error) {
	encrypted := r.Clone()
	var err error
	if encrypted.FullName, err = c.cipher.Encrypt(r.FullName); err != nil {
		return nil, fmt.Errorf("氏名の暗号化に失敗: %w", err)
	}
	if encrypted.Phone, err = c.cipher.Encrypt(r.Phone); err != nil {
		return nil, fmt.Errorf("電話番号の暗号化に失敗: %w", err)
	}
	if encrypted.Email, err = c.cipher.Encrypt(r.Email); err != nil {
		return nil, fmt.Errorf("メールアドレスの暗号化に失敗: %w", err)
	}
	return encrypted, nil
}

// DecryptReservation は個人情報を復号した予約のコピー（読み取り用射影）を返す
func (c *PIICodec) DecryptReservation(r *reservation.Reservation) (*reservation.Reservation, error) {
	decrypted := r.Clone()
	var err error
	if decrypted.FullName, err = c.cipher.Decrypt(r.FullName); err != nil {
		return nil, fmt.Errorf("氏名の復号に失敗: %w", err)
	}
	if decrypted.Phone, err = c.cipher.Decrypt(r.Phone); err != nil {
		return nil, fmt.Errorf("電話番号の復号に失敗: %w", err)
	}
	if decrypted.Email, err = c.cipher.Decrypt(r.Email); err != nil {
		return nil, fmt.Errorf("メールアドレスの復号に失敗: %w", err)
	}
	return decrypted, nil
}
