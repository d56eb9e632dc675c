package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jotbox/jotbox/internal/model"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
)

const (
	otpKeyPrefix        = "otp:"
	otpAttemptKeyPrefix = "otp_attempts:"
)

// RedisOtpRepo keeps pending codes in redis so multiple server instances can
// share them. Keys expire with the code, and consumption is a single scripted
// compare-and-delete.
type RedisOtpRepo struct {
	client *redis.Client
}

func NewRedisOtpRepo(client *redis.Client) *RedisOtpRepo {
	return &RedisOtpRepo{client: client}
}

func (r *RedisOtpRepo) Save(ctx context.Context, code *model.OtpCode) error {
	payload, err := json.Marshal(code)
	if err != nil {
		return err
	}
	ttl := time.Until(time.Unix(code.ExpiresAt, 0))
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, otpKeyPrefix+code.Email, payload, ttl).Err(); err != nil {
		return err
	}
	return r.client.Del(ctx, otpAttemptKeyPrefix+code.Email).Err()
}

func (r *RedisOtpRepo) GetByEmail(ctx context.Context, email string) (*model.OtpCode, error) {
	payload, err := r.client.Get(ctx, otpKeyPrefix+email).Result()
	if err == redis.Nil {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	code, err := decodeOtpCode(payload)
	if err != nil {
		return nil, err
	}
	attempts, err := r.client.Get(ctx, otpAttemptKeyPrefix+email).Int()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	code.Attempts = attempts
	return code, nil
}

func (r *RedisOtpRepo) IncrementAttempts(ctx context.Context, email, id string) (int, error) {
	current, err := r.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if current.ID != id {
		return 0, appErr.ErrNotFound
	}
	key := otpAttemptKeyPrefix + email
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	ttl := time.Until(time.Unix(current.ExpiresAt, 0))
	if ttl > 0 {
		_ = r.client.Expire(ctx, key, ttl).Err()
	}
	return int(count), nil
}

// consumeScript deletes the pending code only when it still carries the
// expected id, so a stale consume cannot destroy a newer code and two
// concurrent consumes cannot both succeed.
var consumeScript = redis.NewScript(`
local payload = redis.call('GET', KEYS[1])
if not payload then return 0 end
local code = cjson.decode(payload)
if code.id ~= ARGV[1] then return 0 end
redis.call('DEL', KEYS[1])
redis.call('DEL', KEYS[2])
return 1
`)

func (r *RedisOtpRepo) Consume(ctx context.Context, email, id string) error {
	keys := []string{otpKeyPrefix + email, otpAttemptKeyPrefix + email}
	deleted, err := consumeScript.Run(ctx, r.client, keys, id).Int()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func decodeOtpCode(payload string) (*model.OtpCode, error) {
	var code model.OtpCode
	if err := json.Unmarshal([]byte(payload), &code); err != nil {
		return nil, err
	}
	return &code, nil
}
