package store

import (
	"context"
	"crypto/tls"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	redis "github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

var (
	_ Repository       = (*RedisStore)(nil)
	_ ConditionalAdder = (*RedisStore)(nil)
)

const (
	redisIDsKey   = "users"
	redisNamesKey = "users:names"
)

func redisUserKey(id uuid.UUID) string {
	return "user:" + id.String()
}

// RedisStore is an implementation of Repository backed by Redis.  Each user
// lives in its own hash ("user:<id>" with name and email fields); the set
// "users" lists every id and the hash "users:names" maps names to ids.
// Writes run inside WATCH/MULTI transactions so the name index never
// disagrees with the record it points at.  A transaction that loses a race
// is reported as a query error, not retried.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig configures the connection to Redis.
type RedisConfig struct {
	Addr     string
	Password string // empty string means no auth
	DB       int
	TLS      *tls.Config
}

// NewRedisStore connects to Redis and verifies connectivity with a ping.
// Unlike the relational engine it does not wait for the server to come up.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	}
	if cfg.TLS != nil {
		opts.TLSConfig = cfg.TLS
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, connectionError("ping", err)
	}
	return &RedisStore{client: client}, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) AddUser(ctx context.Context, u User) error {
	key := redisUserKey(u.ID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		oldName, err := tx.HGet(ctx, key, "name").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		return s.write(ctx, tx, u, oldName)
	}, key)
	if err != nil {
		return queryError("add_user", err)
	}
	return nil
}

func (s *RedisStore) AddUserIfAbsent(ctx context.Context, u User) (bool, error) {
	key := redisUserKey(u.ID)
	added := false
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		if err := s.write(ctx, tx, u, ""); err != nil {
			return err
		}
		added = true
		return nil
	}, key)
	if err != nil {
		return false, queryError("add_user_if_absent", err)
	}
	return added, nil
}

// write stores u and moves its name index entry from oldName if the name
// changed.  It must run inside a WATCH on the user's key.
func (s *RedisStore) write(ctx context.Context, tx *redis.Tx, u User, oldName string) error {
	key := redisUserKey(u.ID)

	// Only drop the old index entry if it still points at this user.
	dropOld := false
	if oldName != "" && oldName != u.Name {
		owner, err := tx.HGet(ctx, redisNamesKey, oldName).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		dropOld = owner == u.ID.String()
	}

	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "name", u.Name, "email", u.Email)
		pipe.SAdd(ctx, redisIDsKey, u.ID.String())
		if dropOld {
			pipe.HDel(ctx, redisNamesKey, oldName)
		}
		pipe.HSet(ctx, redisNamesKey, u.Name, u.ID.String())
		return nil
	})
	return err
}

func (s *RedisStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	fields, err := s.client.HGetAll(ctx, redisUserKey(id)).Result()
	if err != nil {
		return nil, queryError("get_user", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return &User{ID: id, Name: fields["name"], Email: fields["email"]}, nil
}

func (s *RedisStore) GetUserID(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	n, err := s.client.Exists(ctx, redisUserKey(id)).Result()
	if err != nil {
		return uuid.Nil, false, queryError("get_user_id", err)
	}
	if n == 0 {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

func (s *RedisStore) GetUserIDByName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	raw, err := s.client.HGet(ctx, redisNamesKey, name).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, queryError("get_user_id_by_name", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, unknownError("get_user_id_by_name", err)
	}
	return id, true, nil
}

// GetAllUsers reads the id set and then fetches every hash in one
// pipeline.
func (s *RedisStore) GetAllUsers(ctx context.Context) ([]User, error) {
	ids, err := s.client.SMembers(ctx, redisIDsKey).Result()
	if err != nil {
		return nil, queryError("get_all_users", err)
	}
	users := make([]User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, raw := range ids {
			cmds[i] = pipe.HGetAll(ctx, "user:"+raw)
		}
		return nil
	})
	if err != nil {
		return nil, queryError("get_all_users", err)
	}

	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		id, err := uuid.Parse(ids[i])
		if err != nil {
			return nil, unknownError("get_all_users", err)
		}
		users = append(users, User{ID: id, Name: fields["name"], Email: fields["email"]})
	}
	return users, nil
}

func (s *RedisStore) UpdateUserByID(ctx context.Context, id uuid.UUID, u User) (bool, error) {
	key := redisUserKey(id)
	updated := false
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		oldName, err := tx.HGet(ctx, key, "name").Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		u.ID = id
		if err := s.write(ctx, tx, u, oldName); err != nil {
			return err
		}
		updated = true
		return nil
	}, key)
	if err != nil {
		return false, queryError("update_user_by_id", err)
	}
	return updated, nil
}

func (s *RedisStore) UpdateUserByName(ctx context.Context, name string, u User) (bool, error) {
	id, ok, err := s.GetUserIDByName(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return s.UpdateUserByID(ctx, id, u)
}
