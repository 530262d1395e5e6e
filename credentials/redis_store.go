package credentials

import (
	"context"
	"fmt"

	"github.com/jrsteele09/secops-console/users"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps the entries as two string keys under a namespace:
//
//	{namespace}:token → session token
//	{namespace}:user  → serialized profile
//
// Both keys are written and deleted in one MULTI/EXEC transaction.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
}

func NewRedisStore(rdb *redis.Client, namespace string) *RedisStore {
	return &RedisStore{rdb: rdb, namespace: namespace}
}

func (rs *RedisStore) key(name string) string {
	return fmt.Sprintf("%s:%s", rs.namespace, name)
}

func (rs *RedisStore) Save(ctx context.Context, token string, user users.Profile) error {
	rawUser, err := EncodeProfile(user)
	if err != nil {
		return errors.Wrap(err, "[RedisStore.Save] encode profile")
	}
	_, err = rs.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, rs.key(TokenKey), token, 0)
		pipe.Set(ctx, rs.key(UserKey), rawUser, 0)
		return nil
	})
	return errors.Wrap(err, "[RedisStore.Save] exec")
}

func (rs *RedisStore) Read(ctx context.Context) (string, *users.Profile) {
	values, err := rs.rdb.MGet(ctx, rs.key(TokenKey), rs.key(UserKey)).Result()
	if err != nil {
		log.Err(err).Msg("Failed to read session from redis")
		return "", nil
	}
	token, _ := values[0].(string)
	rawUser, _ := values[1].(string)
	return token, DecodeProfile(rawUser)
}

func (rs *RedisStore) Clear(ctx context.Context) error {
	_, err := rs.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, rs.key(TokenKey), rs.key(UserKey))
		return nil
	})
	return errors.Wrap(err, "[RedisStore.Clear] exec")
}
