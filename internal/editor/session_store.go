package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	EDITOR_SESSION_PREFIX = "editor:session:"
	EDITOR_LOCK_PREFIX    = "editor:lock:"
)

type memoryEntry struct {
	data      []byte
	version   int64
	expiresAt time.Time
}

// checkVersion applies the Save contract to what is currently stored.
func checkVersion(sess *Session, exists bool, stored int64) error {
	if !exists {
		if sess.Version != 0 {
			return ErrSessionNotFound
		}
		return nil
	}
	if stored != sess.Version {
		return ErrStaleSession
	}
	return nil
}

// MemoryStore keeps sessions in process. Suitable for a single instance.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	locks    map[string]time.Time
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sess.ID]
	if ok && s.now().After(entry.expiresAt) {
		delete(s.sessions, sess.ID)
		ok = false
	}
	if err := checkVersion(sess, ok, entry.version); err != nil {
		return err
	}

	next := *sess
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}
	s.sessions[sess.ID] = memoryEntry{data: data, version: next.Version, expiresAt: s.now().Add(ttl)}
	sess.Version = next.Version
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if ok && s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Lock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, ok := s.locks[id]; ok && s.now().Before(until) {
		return false, nil
	}
	s.locks[id] = s.now().Add(ttl)
	return true, nil
}

func (s *MemoryStore) Unlock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	return nil
}

// RedisStore shares sessions between console instances.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient}
}

// Save is a compare-and-swap on the stored version, guarded by WATCH.
func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	key := EDITOR_SESSION_PREFIX + sess.ID

	next := *sess
	err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
		exists := true
		var stored struct {
			Version int64 `json:"version"`
		}
		val, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
			exists = false
		case err != nil:
			return fmt.Errorf("redis get session: %w", err)
		default:
			if err := json.Unmarshal(val, &stored); err != nil {
				return err
			}
		}
		if err := checkVersion(sess, exists, stored.Version); err != nil {
			return err
		}

		next.Version = sess.Version + 1
		jsonData, err := json.Marshal(&next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, jsonData, ttl)
			return nil
		})
		return err
	}, key)
	if err == redis.TxFailedErr {
		return ErrStaleSession
	}
	if err != nil {
		return err
	}
	sess.Version = next.Version
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	val, err := s.redis.Get(ctx, EDITOR_SESSION_PREFIX+id).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, EDITOR_SESSION_PREFIX+id).Err()
}

func (s *RedisStore) Lock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return s.redis.SetNX(ctx, EDITOR_LOCK_PREFIX+id, 1, ttl).Result()
}

func (s *RedisStore) Unlock(ctx context.Context, id string) error {
	return s.redis.Del(ctx, EDITOR_LOCK_PREFIX+id).Err()
}
