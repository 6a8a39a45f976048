// Package storage persists string and JSON values under an application prefix.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound    = errors.New("storage: key not found")
	ErrUnavailable = errors.New("storage: backend unavailable")
)

type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Key builds "<prefix>:<userID>:<parts...>".
func (s *Store) Key(userID string, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, s.prefix, userID)
	segments = append(segments, parts...)
	return strings.Join(segments, ":")
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if s.client == nil {
		return "", ErrUnavailable
	}
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.client == nil {
		return ErrUnavailable
	}
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return ErrUnavailable
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the value at key into v. A value that is not valid JSON
// is reported as an error so callers can fall back to defaults.
func (s *Store) GetJSON(ctx context.Context, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
