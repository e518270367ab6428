package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrAlreadyRedeemed = errors.New("invitation already redeemed")

const redeemedKeyPrefix = "invite:redeemed:"

// InviteLedger records consumed invitation ids until the token would have
// expired anyway, which makes every invitation single-use.
type InviteLedger struct {
	client *redis.Client
	now    func() time.Time
}

func NewInviteLedger(provider *RedisProvider) *InviteLedger {
	return &InviteLedger{client: provider.Client, now: time.Now}
}

// Redeem atomically marks id as consumed with the given outcome.
// It returns ErrAlreadyRedeemed if id was consumed before.
func (l *InviteLedger) Redeem(ctx context.Context, id, outcome string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(l.now())
	if ttl < time.Second {
		ttl = time.Second
	}

	ok, err := l.client.SetNX(ctx, redeemedKeyPrefix+id, outcome, ttl).Result()
	if err != nil {
		return fmt.Errorf("redeem invitation: %w", err)
	}
	if !ok {
		return ErrAlreadyRedeemed
	}
	return nil
}

// Release forgets a redemption so the invitation can be used again.
func (l *InviteLedger) Release(ctx context.Context, id string) error {
	if err := l.client.Del(ctx, redeemedKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("release invitation: %w", err)
	}
	return nil
}
