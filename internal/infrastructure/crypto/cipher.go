package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// AESCipher は個人情報フィールドを暗号化するためのAES-GCM暗号
// 鍵素材は外部から渡され、エンジン側には公開されない
type AESCipher struct {
	aead cipher.AEAD
}

// NewAESCipher は秘密鍵文字列からAESCipherを作成する
// 鍵はSHA-256で256bitに正規化される
func NewAESCipher(secret string) (*AESCipher, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("暗号の初期化に失敗: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("暗号の初期化に失敗: %w", err)
	}
	return &AESCipher{aead: aead}, nil
}

// Encrypt は平文を暗号化しbase64文字列を返す
// 空文字列はそのまま返す（メールアドレス未入力の予約を許容するため）
func (c *AESCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ノンス生成に失敗: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt は暗号文を復号する
// 暗号文として解釈できない値（平文や空文字列）はそのまま返す
func (c *AESCipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) <= c.aead.NonceSize() {
		return ciphertext, nil
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return ciphertext, nil
	}
	return string(plaintext), nil
}
