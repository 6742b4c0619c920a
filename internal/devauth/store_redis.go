// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package devauth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/safar/internal/platform/apperr"
	"github.com/taibuivan/safar/internal/platform/constants"
)

// redeemScript deletes KEYS[1] only when it holds ARGV[1].
// It answers -1 for a missing key, 0 for a mismatch and 1 when consumed.
var redeemScript = redis.NewScript(`
local stored = redis.call('GET', KEYS[1])
if not stored then
	return -1
end
if stored ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1])
return 1
`)

// RedisCodeRepository implements CodeRepository using Redis.
type RedisCodeRepository struct {
	client *redis.Client
}

// NewCodeRepository creates a Redis-backed CodeRepository.
func NewCodeRepository(client *redis.Client) *RedisCodeRepository {
	return &RedisCodeRepository{client: client}
}

/*
Set stores a code hash for mobile with a TTL.

Parameters:
  - context: context.Context
  - mobile: string
  - codeHash: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisCodeRepository) Set(context context.Context, mobile, codeHash string, ttl time.Duration) error {
	if err := repository.client.Set(context, constants.RedisPrefixOTP+mobile, codeHash, ttl).Err(); err != nil {
		return fmt.Errorf("redis_code_set_failed: %w", err)
	}
	return nil
}

/*
Redeem consumes the pending code for mobile when its hash equals codeHash.

Description: The compare and the delete run as one Lua script, so two
concurrent redemptions of the same code cannot both succeed.

Parameters:
  - context: context.Context
  - mobile: string
  - codeHash: string

Returns:
  - bool: true when the code was consumed, false on a mismatch
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisCodeRepository) Redeem(context context.Context, mobile, codeHash string) (bool, error) {
	outcome, err := redeemScript.Run(context, repository.client, []string{constants.RedisPrefixOTP + mobile}, codeHash).Int()
	if err != nil {
		return false, fmt.Errorf("redis_code_redeem_failed: %w", err)
	}

	switch outcome {
	case -1:
		return false, apperr.NotFound("Verification code is invalid or expired")
	case 0:
		return false, nil
	default:
		return true, nil
	}
}
