package account

import (
	"context"
	"errors"
	"fmt"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v9"
)

const (
	redisAccountKeyPrefix = "account:"
	redisAccountIDKey     = "account-id-seq"

	fieldID                  = "id"
	fieldEmail               = "email"
	fieldPasswordHash        = "password_hash"
	fieldResetTokenHash      = "reset_token_hash"
	fieldResetTokenExpiresAt = "reset_token_expires_at"
	fieldCreatedAt           = "created_at"
)

// Every write is a single script, so the reset token and its expiry
// are always set and removed together.

var createScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return false
end
local id = redis.call("INCR", KEYS[2])
redis.call("HSET", KEYS[1], "id", id, "email", ARGV[1], "password_hash", ARGV[2], "created_at", ARGV[3])
return redis.call("HGETALL", KEYS[1])
`)

var setResetTokenScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return false
end
redis.call("HSET", KEYS[1], "reset_token_hash", ARGV[1], "reset_token_expires_at", ARGV[2])
return redis.call("HGETALL", KEYS[1])
`)

var redeemResetTokenScript = redis.NewScript(`
local stored = redis.call("HMGET", KEYS[1], "reset_token_hash", "reset_token_expires_at")
if not stored[1] or not stored[2] or stored[1] ~= ARGV[1] then
	return false
end
if tonumber(stored[2]) <= tonumber(ARGV[2]) then
	return false
end
redis.call("HSET", KEYS[1], "password_hash", ARGV[3])
redis.call("HDEL", KEYS[1], "reset_token_hash", "reset_token_expires_at")
return redis.call("HGETALL", KEYS[1])
`)

type RedisAccountRepository struct {
	redisClient redis.UniversalClient
}

func NewRedisRepository(redisClient redis.UniversalClient) *RedisAccountRepository {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	return &RedisAccountRepository{redisClient: redisClient}
}

func (r *RedisAccountRepository) Create(ctx context.Context, input account.CreateInput) (a account.Account, err error) {
	values, err := createScript.Run(
		ctx,
		r.redisClient,
		[]string{accountKey(input.Email), redisAccountIDKey},
		string(input.Email),
		string(input.PasswordHash),
		input.CreatedAt.UnixMilli(),
	).Slice()
	if errors.Is(err, redis.Nil) {
		return a, account.ErrAccountAlreadyExists
	}
	if err != nil {
		return a, fmt.Errorf("could not create account: %w", err)
	}
	return decodeAccountReply(values)
}

func (r *RedisAccountRepository) GetByEmail(ctx context.Context, email c.Email) (a account.Account, err error) {
	fields, err := r.redisClient.HGetAll(ctx, accountKey(email)).Result()
	if err != nil {
		return a, fmt.Errorf("could not get account: %w", err)
	}
	if len(fields) == 0 {
		return a, account.ErrAccountDoesNotExist
	}
	return decodeAccount(fields)
}

func (r *RedisAccountRepository) SetResetToken(
	ctx context.Context,
	input account.SetResetTokenInput,
) (a account.Account, err error) {
	values, err := setResetTokenScript.Run(
		ctx,
		r.redisClient,
		[]string{accountKey(input.Email)},
		string(input.TokenHash),
		input.ExpiresAt.UnixMilli(),
	).Slice()
	if errors.Is(err, redis.Nil) {
		return a, account.ErrAccountDoesNotExist
	}
	if err != nil {
		return a, fmt.Errorf("could not set reset token: %w", err)
	}
	return decodeAccountReply(values)
}

func (r *RedisAccountRepository) GetByResetToken(
	ctx context.Context,
	input account.ResetTokenQuery,
) (a account.Account, err error) {
	a, err = r.GetByEmail(ctx, input.Email)
	if errors.Is(err, account.ErrAccountDoesNotExist) {
		return a, account.ErrInvalidOrExpiredResetToken
	}
	if err != nil {
		return a, err
	}
	if !a.HasPendingReset(input.Now) || a.ResetTokenHash.Value != input.TokenHash {
		return account.Account{}, account.ErrInvalidOrExpiredResetToken
	}
	return a, nil
}

func (r *RedisAccountRepository) RedeemResetToken(
	ctx context.Context,
	input account.RedeemResetTokenInput,
) (a account.Account, err error) {
	values, err := redeemResetTokenScript.Run(
		ctx,
		r.redisClient,
		[]string{accountKey(input.Email)},
		string(input.TokenHash),
		input.Now.UnixMilli(),
		string(input.PasswordHash),
	).Slice()
	if errors.Is(err, redis.Nil) {
		return a, account.ErrInvalidOrExpiredResetToken
	}
	if err != nil {
		return a, fmt.Errorf("could not redeem reset token: %w", err)
	}
	return decodeAccountReply(values)
}

func accountKey(email c.Email) string {
	return redisAccountKeyPrefix + string(email)
}

// decodeAccountReply decodes the flat field/value list HGETALL returns inside a script.
func decodeAccountReply(values []interface{}) (a account.Account, err error) {
	if len(values)%2 != 0 {
		return a, fmt.Errorf("unexpected account reply of length %d", len(values))
	}
	fields := make(map[string]string, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		k, ok := values[i].(string)
		if !ok {
			return a, fmt.Errorf("unexpected account field %v", values[i])
		}
		v, ok := values[i+1].(string)
		if !ok {
			return a, fmt.Errorf("unexpected value of account field %s", k)
		}
		fields[k] = v
	}
	return decodeAccount(fields)
}

func decodeAccount(fields map[string]string) (a account.Account, err error) {
	id, err := strconv.ParseInt(fields[fieldID], 10, 64)
	if err != nil {
		return a, fmt.Errorf("invalid account id: %w", err)
	}
	createdAt, err := decodeUnixMilli(fields[fieldCreatedAt])
	if err != nil {
		return a, fmt.Errorf("invalid account creation time: %w", err)
	}

	a = account.Account{
		ID:           account.ID(id),
		Email:        c.Email(fields[fieldEmail]),
		PasswordHash: account.PasswordHash(fields[fieldPasswordHash]),
		CreatedAt:    createdAt,
	}
	if hash, ok := fields[fieldResetTokenHash]; ok {
		a.ResetTokenHash = c.Some(account.ResetTokenHash(hash))
	}
	if raw, ok := fields[fieldResetTokenExpiresAt]; ok {
		expiresAt, err := decodeUnixMilli(raw)
		if err != nil {
			return a, fmt.Errorf("invalid reset token expiry: %w", err)
		}
		a.ResetTokenExpiresAt = c.Some(expiresAt)
	}
	return a, a.Validate()
}

func decodeUnixMilli(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
