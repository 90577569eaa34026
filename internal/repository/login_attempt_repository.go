package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginAttemptPrefix = "login_attempts:"

// LoginAttemptRepository counts failed logins per email in Redis. A nil
// client turns every call into a no-op.
type LoginAttemptRepository struct {
	client *redis.Client
}

// NewLoginAttemptRepository constructs the repository.
func NewLoginAttemptRepository(client *redis.Client) *LoginAttemptRepository {
	return &LoginAttemptRepository{client: client}
}

// Failures returns the number of failures recorded in the current window.
func (r *LoginAttemptRepository) Failures(ctx context.Context, email string) (int, error) {
	if r.client == nil {
		return 0, nil
	}
	n, err := r.client.Get(ctx, loginAttemptPrefix+email).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get login attempts: %w", err)
	}
	return n, nil
}

// RecordFailure increments the failure counter. The window starts with the
// first failure and is not extended by later ones.
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, email string, window time.Duration) (int, error) {
	if r.client == nil {
		return 0, nil
	}
	key := loginAttemptPrefix + email
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr login attempts: %w", err)
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return int(n), fmt.Errorf("redis expire login attempts: %w", err)
		}
	}
	return int(n), nil
}

// Reset clears the failure counter after a successful login.
func (r *LoginAttemptRepository) Reset(ctx context.Context, email string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, loginAttemptPrefix+email).Err(); err != nil {
		return fmt.Errorf("redis reset login attempts: %w", err)
	}
	return nil
}
