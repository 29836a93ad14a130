package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bomberos-dev/guardias/backend/internal/config"
	"github.com/bomberos-dev/guardias/backend/internal/utils"
)

// ErrLockHeld means another request currently owns the (dni, fecha) window.
var ErrLockHeld = errors.New("el lock de agenda ya está tomado")

// RedisLocker closes the check-then-write race: the overlap check and the
// commit happen under a SET NX lock per (dni, fecha). The TTL bounds how long
// a crashed request can block a slot.
type RedisLocker struct {
	cfg    *config.Config
	client *redis.Client
}

func NewRedisLocker(cfg *config.Config, client *redis.Client) *RedisLocker {
	return &RedisLocker{
		cfg:    cfg,
		client: client,
	}
}

func (l *RedisLocker) Acquire(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(l.cfg.Redis.OperationTimeout)*time.Second)
	defer cancel()

	token := utils.GenerateRandomToken(20)

	ok, err := l.client.SetNX(ctx, key, token, time.Duration(l.cfg.Redis.LockTTL)*time.Second).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrLockHeld
	}

	return token, nil
}

// Release only deletes the key while it still holds our token. If the TTL
// expired and another request took the lock over, their key stays untouched.
func (l *RedisLocker) Release(key string, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(l.cfg.Redis.OperationTimeout)*time.Second)
	defer cancel()

	current, err := l.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if current != token {
		return nil
	}

	return l.client.Del(ctx, key).Err()
}
