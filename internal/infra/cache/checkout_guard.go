package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const defaultCheckoutLockTTL = 30 * time.Second

// CheckoutGuard は同じユーザーのチェックアウトが同時に走らないようにするロック。
// TTLが切れれば解放されるので、プロセスが落ちてもロックは残らない
type CheckoutGuard struct {
	client *Client
	ttl    time.Duration
}

func NewCheckoutGuard(client *Client, ttl time.Duration) *CheckoutGuard {
	if ttl <= 0 {
		ttl = defaultCheckoutLockTTL
	}
	return &CheckoutGuard{client: client, ttl: ttl}
}

func (g *CheckoutGuard) Acquire(ctx context.Context, userID int64) (func(), bool, error) {
	key := g.client.CheckoutLockKey(userID)
	// 取得ごとのトークン。解放時に自分のロックかを確かめる
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, g.ttl)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// 呼び出し元のctxがキャンセル済みでも消す
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = g.client.DeleteIfEquals(ctx, key, token)
	}
	return release, true, nil
}
