package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// LakeLockManager は釣り場単位の排他制御を提供する
// 集約のload+mutate+persistは釣り場ごとに直列化されなければならない
type LakeLockManager struct {
	client     *redis.Client
	ttl        time.Duration
	maxRetries int
	retryDelay time.Duration
}

// LakeLock は取得済みのロックを表す
type LakeLock struct {
	client *redis.Client
	key    string
	value  string
}

func NewLakeLockManager(client *redis.Client) *LakeLockManager {
	return &LakeLockManager{
		client:     client,
		ttl:        10 * time.Second,
		maxRetries: 3,
		retryDelay: 100 * time.Millisecond,
	}
}

// Acquire は釣り場名に対するロックをリトライ付きで取得する
func (m *LakeLockManager) Acquire(ctx context.Context, lakeName string) (*LakeLock, error) {
	key := fmt.Sprintf("lock:lake:%s", lakeName)
	value := uuid.NewString()

	var lastErr error
	for i := 0; i < m.maxRetries; i++ {
		// SetNXでキーが存在しない場合のみロックを取得
		ok, err := m.client.SetNX(ctx, key, value, m.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		if ok {
			return &LakeLock{client: m.client, key: key, value: value}, nil
		}
		lastErr = ErrLockNotAcquired
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
	return nil, lastErr
}

// Release はロックを解放する
// 所有者確認と削除はLuaスクリプトでアトミックに実行する
func (l *LakeLock) Release(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	result, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}
